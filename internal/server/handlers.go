package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"math/rand"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/textile-qc-mcp/internal/analysis"
	"github.com/ironsheep/textile-qc-mcp/internal/colorimetry"
	"github.com/ironsheep/textile-qc-mcp/internal/colorqc"
	"github.com/ironsheep/textile-qc-mcp/internal/config"
	"github.com/ironsheep/textile-qc-mcp/internal/imaging"
	"github.com/ironsheep/textile-qc-mcp/internal/sampling"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "textile_load", "textile_analyze").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	if s.debug {
		log.Printf("tool %s finished in %s (error: %v)", params.Name, time.Since(start), err)
	}
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Merges per-call settings over the server settings
//  5. Calls the matching pipeline and returns its result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Image Information
	case "textile_load":
		return s.handleLoad(args)
	case "textile_dimensions":
		return s.handleDimensions(args)

	// Region and Sampling
	case "textile_crop_region":
		return s.handleCropRegion(args)
	case "textile_sample_points":
		return s.handleSamplePoints(args)

	// Color Difference
	case "textile_delta_e":
		return s.handleDeltaE(args)

	// Analysis
	case "textile_analyze_color":
		return s.handleAnalyzeColor(args)
	case "textile_analyze_pattern":
		return s.handleAnalyzePattern(args)
	case "textile_analyze_single":
		return s.handleAnalyzeSingle(args)
	case "textile_analyze":
		return s.handleAnalyze(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// settingsFor deep-copies the server settings, merges the per-call JSON
// settings over them and normalizes the result. artifacts forces both
// pipelines to render their images.
func (s *Server) settingsFor(raw json.RawMessage, artifacts bool) (config.Settings, error) {
	base, err := json.Marshal(s.settings)
	if err != nil {
		return config.Settings{}, fmt.Errorf("failed to copy settings: %w", err)
	}
	var out config.Settings
	if err := json.Unmarshal(base, &out); err != nil {
		return config.Settings{}, fmt.Errorf("failed to copy settings: %w", err)
	}
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &out); err != nil {
			return config.Settings{}, fmt.Errorf("invalid settings: %w", err)
		}
	}
	if artifacts {
		out.Color.Artifacts, out.Pattern.Artifacts = true, true
	}
	return out.Normalize()
}

// loadPair loads the reference and sample images through the cache.
func (s *Server) loadPair(refPath, samplePath string) (ref, sample image.Image, err error) {
	if refPath == "" || samplePath == "" {
		return nil, nil, errors.New("reference and sample paths are required")
	}
	if ref, err = s.cache.Load(refPath); err != nil {
		return nil, nil, fmt.Errorf("reference: %w", err)
	}
	if sample, err = s.cache.Load(samplePath); err != nil {
		return nil, nil, fmt.Errorf("sample: %w", err)
	}
	return ref, sample, nil
}

// === Image Information Handlers ===

type loadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleLoad(args json.RawMessage) (interface{}, error) {
	var a loadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleDimensions(args json.RawMessage) (interface{}, error) {
	var a loadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Region and Sampling Handlers ===

type cropRegionArgs struct {
	Path   string           `json:"path"`
	Region *sampling.Region `json:"region"`
	Scale  float64          `json:"scale"`
}

// CropRegionResult is a cropped region with its global offset.
type CropRegionResult struct {
	OffsetX int             `json:"offset_x"`
	OffsetY int             `json:"offset_y"`
	Image   *imaging.Raster `json:"image"`
}

func (s *Server) handleCropRegion(args json.RawMessage) (interface{}, error) {
	var a cropRegionArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	raster, off, err := imaging.CropPreview(img, a.Region, a.Scale)
	if err != nil {
		return nil, err
	}
	return &CropRegionResult{OffsetX: off.X, OffsetY: off.Y, Image: raster}, nil
}

type samplePointsArgs struct {
	Path    string           `json:"path"`
	Region  *sampling.Region `json:"region,omitempty"`
	Count   int              `json:"count"`
	Mode    string           `json:"mode"`
	Points  []sampling.Point `json:"points,omitempty"`
	Seed    int64            `json:"seed,omitempty"`
	Overlay bool             `json:"overlay"`
}

// SamplePointsResult lists the resolved sampling points in global
// coordinates and the averaging radius the color pipeline would use.
type SamplePointsResult struct {
	Width   int              `json:"width"`
	Height  int              `json:"height"`
	Radius  int              `json:"radius"`
	Points  []sampling.Point `json:"points"`
	Overlay *imaging.Raster  `json:"overlay,omitempty"`
}

func (s *Server) handleSamplePoints(args json.RawMessage) (interface{}, error) {
	var a samplePointsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Count == 0 {
		a.Count = colorqc.DefaultPointCount
	}
	mode, err := sampling.ParseMode(a.Mode)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	var rng *rand.Rand
	if a.Seed != 0 {
		rng = rand.New(rand.NewSource(a.Seed))
	}
	b := img.Bounds()
	points, err := sampling.ResolvePoints(rng, sampling.Request{
		Region: a.Region,
		Width:  b.Dx(),
		Height: b.Dy(),
		Count:  a.Count,
		Mode:   mode,
		Points: a.Points,
	})
	if err != nil {
		return nil, err
	}

	res := &SamplePointsResult{
		Width:  b.Dx(),
		Height: b.Dy(),
		Radius: colorqc.SamplingRadius(b.Dx(), b.Dy()),
		Points: points,
	}
	if a.Overlay {
		overlay := colorqc.DrawSamplingOverlay(imaging.NRGBA(img), points, image.Point{}, res.Radius)
		if res.Overlay, err = imaging.NewRaster("sampling_points", overlay); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// === Color Difference Handler ===

type deltaEArgs struct {
	Lab1 *colorimetry.Lab `json:"lab1,omitempty"`
	Lab2 *colorimetry.Lab `json:"lab2,omitempty"`
	Hex1 string           `json:"hex1,omitempty"`
	Hex2 string           `json:"hex2,omitempty"`
}

// DeltaEResult compares two colors with every supported formula.
type DeltaEResult struct {
	Lab1   colorimetry.Lab    `json:"lab1"`
	Lab2   colorimetry.Lab    `json:"lab2"`
	DE76   colorimetry.DeltaE `json:"de76"`
	DE94   colorimetry.DeltaE `json:"de94"`
	DE2000 colorimetry.DeltaE `json:"de00"`
	Score  colorimetry.Score  `json:"score"`
}

// labFrom returns lab when given, else the D65 Lab of the sRGB hex color.
func labFrom(lab *colorimetry.Lab, hex, name string) (colorimetry.Lab, error) {
	if lab != nil {
		return *lab, nil
	}
	if hex == "" {
		return colorimetry.Lab{}, fmt.Errorf("%s: a lab or hex value is required", name)
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorimetry.Lab{}, fmt.Errorf("%s: %w", name, err)
	}
	return colorimetry.SRGBToLab(colorimetry.RGB{R: c.R, G: c.G, B: c.B}), nil
}

func (s *Server) handleDeltaE(args json.RawMessage) (interface{}, error) {
	var a deltaEArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	lab1, err := labFrom(a.Lab1, a.Hex1, "color1")
	if err != nil {
		return nil, err
	}
	lab2, err := labFrom(a.Lab2, a.Hex2, "color2")
	if err != nil {
		return nil, err
	}
	de := colorimetry.DeltaE2000(lab1, lab2)
	return &DeltaEResult{
		Lab1:   lab1,
		Lab2:   lab2,
		DE76:   colorimetry.DeltaE76(lab1, lab2),
		DE94:   colorimetry.DeltaE94(lab1, lab2),
		DE2000: de,
		Score:  colorimetry.DeltaEToScore(de),
	}, nil
}

// === Analysis Handlers ===

type pairArgs struct {
	Reference string          `json:"reference"`
	Sample    string          `json:"sample"`
	Settings  json.RawMessage `json:"settings,omitempty"`
	Artifacts bool            `json:"artifacts"`
	OutputDir string          `json:"output_dir,omitempty"`
}

// parsePair decodes pair arguments, loads both images and resolves settings.
func (s *Server) parsePair(args json.RawMessage) (*pairArgs, image.Image, image.Image, config.Settings, error) {
	var a pairArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, nil, nil, config.Settings{}, err
	}
	ref, sample, err := s.loadPair(a.Reference, a.Sample)
	if err != nil {
		return nil, nil, nil, config.Settings{}, err
	}
	settings, err := s.settingsFor(a.Settings, a.Artifacts)
	if err != nil {
		return nil, nil, nil, config.Settings{}, err
	}
	return &a, ref, sample, settings, nil
}

func (s *Server) handleAnalyzeColor(args json.RawMessage) (interface{}, error) {
	_, ref, sample, settings, err := s.parsePair(args)
	if err != nil {
		return nil, err
	}
	return analysis.RunColor(ref, sample, settings, nil)
}

func (s *Server) handleAnalyzePattern(args json.RawMessage) (interface{}, error) {
	_, ref, sample, settings, err := s.parsePair(args)
	if err != nil {
		return nil, err
	}
	return analysis.RunPattern(ref, sample, settings)
}

type singleArgs struct {
	Sample    string          `json:"sample"`
	Settings  json.RawMessage `json:"settings,omitempty"`
	Artifacts bool            `json:"artifacts"`
}

func (s *Server) handleAnalyzeSingle(args json.RawMessage) (interface{}, error) {
	var a singleArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Sample == "" {
		return nil, errors.New("sample path is required")
	}
	img, err := s.cache.Load(a.Sample)
	if err != nil {
		return nil, err
	}
	settings, err := s.settingsFor(a.Settings, a.Artifacts)
	if err != nil {
		return nil, err
	}
	return analysis.RunSingle(img, settings, nil)
}

// AnalyzeResult is a full report plus the files written for it, if any.
type AnalyzeResult struct {
	*analysis.Report
	Files []string `json:"files,omitempty"`
}

func (s *Server) handleAnalyze(args json.RawMessage) (interface{}, error) {
	a, ref, sample, settings, err := s.parsePair(args)
	if err != nil {
		return nil, err
	}
	rep, err := analysis.Run(ref, sample, settings, nil)
	if err != nil {
		return nil, err
	}

	res := &AnalyzeResult{Report: rep}
	if a.OutputDir != "" {
		if res.Files, err = analysis.WriteOutputs(a.OutputDir, rep, rep.Rasters()); err != nil {
			return nil, err
		}
	}
	return res, nil
}
