package server

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ironsheep/textile-qc-mcp/internal/analysis"
	"github.com/ironsheep/textile-qc-mcp/internal/colorqc"
	"github.com/ironsheep/textile-qc-mcp/internal/imaging"
	"github.com/ironsheep/textile-qc-mcp/internal/pattern"
	"github.com/ironsheep/textile-qc-mcp/internal/scoring"
)

// createTestImageFile writes img as a PNG under t.TempDir and returns its path
func createTestImageFile(t *testing.T, name string, img image.Image) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// fabricImage is a 2x2-block random texture. gb scales the green and blue
// channels, so gb < 1 shifts the fabric towards red.
func fabricImage(w, h int, gb float64) *image.NRGBA {
	rng := rand.New(rand.NewSource(1))
	levels := make([]uint8, (w/2+1)*(h/2+1))
	for i := range levels {
		levels[i] = uint8(rng.Intn(256))
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := levels[(y/2)*(w/2+1)+x/2]
			t := uint8(float64(v) * gb)
			img.SetNRGBA(x, y, color.NRGBA{v, t, t, 255})
		}
	}
	return img
}

// callTool sends a tools/call request through handleRequest.
func callTool(t *testing.T, s *Server, name string, args interface{}) *MCPResponse {
	t.Helper()

	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}

	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeResult unmarshals the text content of a successful response into v.
func decodeResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v (%v)", resp.Error.Message, resp.Error.Data)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content: got %#v", result["content"])
	}
	if content[0]["type"] != "text" {
		t.Errorf("content type: got %v, want text", content[0]["type"])
	}
	text, _ := content[0]["text"].(string)
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("failed to decode result %q: %v", text, err)
	}
}

// expectToolError asserts a tool execution failure whose data mentions want.
func expectToolError(t *testing.T, resp *MCPResponse, want string) {
	t.Helper()

	if resp.Error == nil {
		t.Fatal("Expected an error response")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
	}
	data, _ := resp.Error.Data.(string)
	if !strings.Contains(data, want) {
		t.Errorf("Error data: got %q, want it to contain %q", data, want)
	}
}

func TestHandleToolsCall_Load(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, "load.png", solidImage(100, 80, color.NRGBA{200, 30, 30, 255}))

	var info imaging.ImageInfo
	decodeResult(t, callTool(t, s, "textile_load", map[string]interface{}{"path": imgPath}), &info)

	if info.Width != 100 || info.Height != 80 {
		t.Errorf("size: got %dx%d, want 100x80", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %q, want png", info.Format)
	}
}

func TestHandleToolsCall_Dimensions(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, "dims.png", solidImage(200, 150, color.NRGBA{0, 255, 0, 255}))

	var dims imaging.DimensionsResult
	decodeResult(t, callTool(t, s, "textile_dimensions", map[string]interface{}{"path": imgPath}), &dims)

	if dims.Width != 200 || dims.Height != 150 {
		t.Errorf("size: got %dx%d, want 200x150", dims.Width, dims.Height)
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := New()
	resp := callTool(t, s, "textile_load", map[string]interface{}{"path": "/nonexistent/fabric.png"})
	expectToolError(t, resp, "/nonexistent/fabric.png")
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	s := New()
	resp := callTool(t, s, "nonexistent_tool", map[string]interface{}{})
	expectToolError(t, resp, "unknown tool: nonexistent_tool")
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New()

	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`not valid json`),
	}

	resp := s.handleToolsCall(req)

	if resp.Error == nil {
		t.Fatal("Expected error for invalid params")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
	}
}

func TestHandleToolsCall_CropRegion(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, "crop.png", solidImage(100, 80, color.NRGBA{90, 90, 200, 255}))

	tests := []struct {
		name            string
		region          map[string]interface{}
		scale           float64
		wantOffX, wantY int
		wantW, wantH    int
	}{
		{"rect", map[string]interface{}{"type": "rect", "x": 10, "y": 20, "w": 30, "h": 40}, 0, 10, 20, 30, 40},
		{"rect scaled", map[string]interface{}{"type": "rect", "x": 10, "y": 20, "w": 30, "h": 40}, 0.5, 10, 20, 15, 20},
		{"rect clipped", map[string]interface{}{"x": 90, "y": 70, "w": 30, "h": 30}, 0, 90, 70, 10, 10},
		{"circle", map[string]interface{}{"type": "circle", "cx": 50, "cy": 40, "r": 10}, 0, 40, 30, 20, 20},
		{"full", map[string]interface{}{"type": "full"}, 0, 0, 0, 100, 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := map[string]interface{}{"path": imgPath, "region": tt.region}
			if tt.scale != 0 {
				args["scale"] = tt.scale
			}

			var res CropRegionResult
			decodeResult(t, callTool(t, s, "textile_crop_region", args), &res)

			if res.OffsetX != tt.wantOffX || res.OffsetY != tt.wantY {
				t.Errorf("offset: got (%d,%d), want (%d,%d)", res.OffsetX, res.OffsetY, tt.wantOffX, tt.wantY)
			}
			if res.Image == nil {
				t.Fatal("Image is nil")
			}
			if res.Image.Width != tt.wantW || res.Image.Height != tt.wantH {
				t.Errorf("size: got %dx%d, want %dx%d", res.Image.Width, res.Image.Height, tt.wantW, tt.wantH)
			}
			if res.Image.MimeType != "image/png" || res.Image.ImageBase64 == "" {
				t.Errorf("image: mime %q, %d bytes of base64", res.Image.MimeType, len(res.Image.ImageBase64))
			}
		})
	}
}

func TestHandleToolsCall_CropRegion_Errors(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, "crop.png", solidImage(50, 50, color.NRGBA{90, 90, 200, 255}))

	tests := []struct {
		name   string
		region map[string]interface{}
	}{
		{"outside image", map[string]interface{}{"x": 60, "y": 60, "w": 10, "h": 10}},
		{"incomplete rect", map[string]interface{}{"x": 1, "y": 1}},
		{"incomplete circle", map[string]interface{}{"type": "circle", "cx": 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, "textile_crop_region", map[string]interface{}{"path": imgPath, "region": tt.region})
			if resp.Error == nil || resp.Error.Code != -32000 {
				t.Errorf("Expected tool error, got %+v", resp.Error)
			}
		})
	}
}

func TestHandleToolsCall_SamplePoints_Random(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, "points.png", solidImage(120, 100, color.NRGBA{128, 128, 128, 255}))

	args := map[string]interface{}{
		"path":    imgPath,
		"region":  map[string]interface{}{"x": 20, "y": 10, "w": 60, "h": 50},
		"seed":    7,
		"overlay": true,
	}

	var res SamplePointsResult
	decodeResult(t, callTool(t, s, "textile_sample_points", args), &res)

	if len(res.Points) != colorqc.DefaultPointCount {
		t.Fatalf("points: got %d, want %d", len(res.Points), colorqc.DefaultPointCount)
	}
	for _, p := range res.Points {
		if p.X < 20 || p.X >= 80 || p.Y < 10 || p.Y >= 60 {
			t.Errorf("point (%d,%d) outside region", p.X, p.Y)
		}
		if p.Manual {
			t.Errorf("random point (%d,%d) marked manual", p.X, p.Y)
		}
	}
	if res.Width != 120 || res.Height != 100 {
		t.Errorf("size: got %dx%d", res.Width, res.Height)
	}
	if res.Radius != colorqc.SamplingRadius(120, 100) {
		t.Errorf("Radius: got %d, want %d", res.Radius, colorqc.SamplingRadius(120, 100))
	}
	if res.Overlay == nil || res.Overlay.Name != "sampling_points" {
		t.Errorf("Overlay: got %+v", res.Overlay)
	}

	// Same seed, same points
	var again SamplePointsResult
	decodeResult(t, callTool(t, s, "textile_sample_points", args), &again)
	for i := range res.Points {
		if res.Points[i] != again.Points[i] {
			t.Errorf("point %d: got %+v, want %+v", i, again.Points[i], res.Points[i])
		}
	}
}

func TestHandleToolsCall_SamplePoints_Manual(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, "points.png", solidImage(64, 64, color.NRGBA{128, 128, 128, 255}))

	points := []map[string]int{{"x": 5, "y": 6}, {"x": 30, "y": 40}}

	var res SamplePointsResult
	decodeResult(t, callTool(t, s, "textile_sample_points", map[string]interface{}{
		"path":   imgPath,
		"count":  2,
		"mode":   "manual",
		"points": points,
	}), &res)

	if len(res.Points) != 2 {
		t.Fatalf("points: got %d, want 2", len(res.Points))
	}
	if res.Points[0].X != 5 || res.Points[0].Y != 6 || !res.Points[0].Manual {
		t.Errorf("first point: got %+v", res.Points[0])
	}
	if res.Overlay != nil {
		t.Error("Overlay should be omitted unless requested")
	}

	// A manual selection must match the count
	resp := callTool(t, s, "textile_sample_points", map[string]interface{}{
		"path":   imgPath,
		"count":  3,
		"mode":   "manual",
		"points": points,
	})
	if resp.Error == nil {
		t.Error("Expected error for manual point count mismatch")
	}

	resp = callTool(t, s, "textile_sample_points", map[string]interface{}{"path": imgPath, "mode": "grid"})
	if resp.Error == nil {
		t.Error("Expected error for unknown sampling mode")
	}
}

func TestHandleToolsCall_DeltaE(t *testing.T) {
	s := New()

	t.Run("identical hex", func(t *testing.T) {
		var res DeltaEResult
		decodeResult(t, callTool(t, s, "textile_delta_e", map[string]interface{}{
			"hex1": "#808080",
			"hex2": "#808080",
		}), &res)
		if res.DE76 != 0 || res.DE94 != 0 || res.DE2000 != 0 {
			t.Errorf("differences: got %v/%v/%v, want 0", res.DE76, res.DE94, res.DE2000)
		}
		if res.Score != 100 {
			t.Errorf("Score: got %v, want 100", res.Score)
		}
		if math.Abs(res.Lab1.L-53.59) > 0.1 {
			t.Errorf("Lab1.L: got %v, want about 53.59", res.Lab1.L)
		}
	})

	t.Run("lightness step", func(t *testing.T) {
		var res DeltaEResult
		decodeResult(t, callTool(t, s, "textile_delta_e", map[string]interface{}{
			"lab1": map[string]float64{"l": 50, "a": 0, "b": 0},
			"lab2": map[string]float64{"l": 60, "a": 0, "b": 0},
		}), &res)
		if math.Abs(float64(res.DE76)-10) > 1e-9 {
			t.Errorf("DE76: got %v, want 10", res.DE76)
		}
		if res.DE2000 <= 0 || res.DE2000 >= res.DE76 {
			t.Errorf("DE2000: got %v, want in (0, %v)", res.DE2000, res.DE76)
		}
		if res.Score >= 100 {
			t.Errorf("Score: got %v, want below 100", res.Score)
		}
	})

	t.Run("lab wins over hex", func(t *testing.T) {
		var res DeltaEResult
		decodeResult(t, callTool(t, s, "textile_delta_e", map[string]interface{}{
			"lab1": map[string]float64{"l": 40, "a": 10, "b": -5},
			"hex1": "#ffffff",
			"lab2": map[string]float64{"l": 40, "a": 10, "b": -5},
		}), &res)
		if res.DE2000 != 0 {
			t.Errorf("DE2000: got %v, want 0", res.DE2000)
		}
	})

	t.Run("missing color", func(t *testing.T) {
		resp := callTool(t, s, "textile_delta_e", map[string]interface{}{"hex1": "#000000"})
		expectToolError(t, resp, "color2")
	})

	t.Run("bad hex", func(t *testing.T) {
		resp := callTool(t, s, "textile_delta_e", map[string]interface{}{"hex1": "zzz", "hex2": "#000000"})
		expectToolError(t, resp, "color1")
	})
}

func TestHandleToolsCall_AnalyzeColor(t *testing.T) {
	s := New()
	ref := createTestImageFile(t, "ref.png", fabricImage(64, 64, 1))
	sample := createTestImageFile(t, "sample.png", fabricImage(64, 64, 1))

	var res colorqc.Result
	decodeResult(t, callTool(t, s, "textile_analyze_color", map[string]interface{}{
		"reference": ref,
		"sample":    sample,
		"settings":  map[string]interface{}{"seed": 3},
	}), &res)

	if len(res.Points) != colorqc.DefaultPointCount {
		t.Errorf("points: got %d, want %d", len(res.Points), colorqc.DefaultPointCount)
	}
	if res.MeanDE2000 != 0 {
		t.Errorf("MeanDE2000: got %v, want 0", res.MeanDE2000)
	}
	if res.OverallStatus != scoring.Pass {
		t.Errorf("OverallStatus: got %s, want PASS", res.OverallStatus)
	}
	if res.Artifacts != nil {
		t.Error("Artifacts should be omitted unless requested")
	}
}

func TestHandleToolsCall_AnalyzePattern(t *testing.T) {
	s := New()
	ref := createTestImageFile(t, "ref.png", fabricImage(64, 64, 1))

	var res pattern.Result
	decodeResult(t, callTool(t, s, "textile_analyze_pattern", map[string]interface{}{
		"reference": ref,
		"sample":    ref,
		"artifacts": true,
	}), &res)

	if res.FinalStatus != scoring.Pass {
		t.Errorf("FinalStatus: got %s, want PASS", res.FinalStatus)
	}
	if res.Composite < 99.9 {
		t.Errorf("Composite: got %v, want about 100", res.Composite)
	}
	if len(res.Artifacts) == 0 {
		t.Error("artifacts=true should return rasters")
	}
}

func TestHandleToolsCall_AnalyzeSingle(t *testing.T) {
	s := New()
	sample := createTestImageFile(t, "single.png", solidImage(60, 60, color.NRGBA{128, 128, 128, 255}))

	var rep analysis.SingleReport
	decodeResult(t, callTool(t, s, "textile_analyze_single", map[string]interface{}{
		"sample":    sample,
		"artifacts": true,
	}), &rep)

	if rep.Result == nil || len(rep.Result.Measurements) != colorqc.DefaultPointCount {
		t.Fatalf("Result: got %+v", rep.Result)
	}
	if rep.Result.Overlay == nil {
		t.Error("artifacts=true should return the sampling overlay")
	}
	if !strings.HasPrefix(rep.ID, "QC_") {
		t.Errorf("ID: got %q", rep.ID)
	}

	resp := callTool(t, s, "textile_analyze_single", map[string]interface{}{})
	expectToolError(t, resp, "sample path is required")
}

// analyzeSummary is the part of the full report the handler tests inspect.
type analyzeSummary struct {
	ID       string           `json:"report_id"`
	Decision scoring.Decision `json:"decision"`
	Color    struct {
		Points []json.RawMessage `json:"points"`
	} `json:"color"`
	Files []string `json:"files"`
}

func TestHandleToolsCall_Analyze(t *testing.T) {
	s := New()
	ref := createTestImageFile(t, "ref.png", fabricImage(64, 64, 1))
	sample := createTestImageFile(t, "sample.png", fabricImage(64, 64, 0.3))

	var res analyzeSummary
	decodeResult(t, callTool(t, s, "textile_analyze", map[string]interface{}{
		"reference": ref,
		"sample":    sample,
		"settings":  map[string]interface{}{"seed": 3},
	}), &res)

	if res.Decision != scoring.Reject {
		t.Errorf("Decision: got %s, want REJECT", res.Decision)
	}
	if len(res.Files) != 0 {
		t.Errorf("Files: got %v, want none without output_dir", res.Files)
	}
}

func TestHandleToolsCall_Analyze_OutputDir(t *testing.T) {
	s := New()
	ref := createTestImageFile(t, "ref.png", fabricImage(64, 64, 1))
	out := filepath.Join(t.TempDir(), "qc")

	var res analyzeSummary
	decodeResult(t, callTool(t, s, "textile_analyze", map[string]interface{}{
		"reference":  ref,
		"sample":     ref,
		"artifacts":  true,
		"output_dir": out,
	}), &res)

	if res.Decision != scoring.Accept {
		t.Errorf("Decision: got %s, want ACCEPT", res.Decision)
	}
	if len(res.Files) < 2 {
		t.Fatalf("Files: got %v, want the report and rasters", res.Files)
	}

	var sawReport bool
	for _, f := range res.Files {
		if _, err := os.Stat(f); err != nil {
			t.Errorf("%s: %v", f, err)
		}
		if filepath.Base(f) == analysis.ReportFile {
			sawReport = true
		}
	}
	if !sawReport {
		t.Errorf("Files should include %s", analysis.ReportFile)
	}
}

func TestHandleToolsCall_Analyze_MissingPaths(t *testing.T) {
	s := New()
	ref := createTestImageFile(t, "ref.png", fabricImage(32, 32, 1))

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{"no sample", map[string]interface{}{"reference": ref}, "reference and sample paths are required"},
		{"missing reference file", map[string]interface{}{"reference": "/nonexistent/ref.png", "sample": ref}, "reference"},
		{"missing sample file", map[string]interface{}{"reference": ref, "sample": "/nonexistent/sample.png"}, "sample"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectToolError(t, callTool(t, s, "textile_analyze", tt.args), tt.want)
		})
	}
}

func TestHandleToolsCall_SettingsOverlay(t *testing.T) {
	s := New()
	ref := createTestImageFile(t, "ref.png", fabricImage(64, 64, 1))

	var res colorqc.Result
	decodeResult(t, callTool(t, s, "textile_analyze_color", map[string]interface{}{
		"reference": ref,
		"sample":    ref,
		"settings": map[string]interface{}{
			"seed":  9,
			"color": map[string]interface{}{"point_count": 3},
		},
	}), &res)

	if len(res.Points) != 3 {
		t.Errorf("points: got %d, want 3", len(res.Points))
	}
	if s.settings.Color.PointCount != colorqc.DefaultPointCount {
		t.Errorf("server settings changed: point count %d", s.settings.Color.PointCount)
	}

	resp := callTool(t, s, "textile_analyze_color", map[string]interface{}{
		"reference": ref,
		"sample":    ref,
		"settings":  map[string]interface{}{"color": map[string]interface{}{"primary_illuminant": "X9"}},
	})
	if resp.Error == nil {
		t.Error("Expected error for unknown illuminant")
	}
}

func TestSettingsFor(t *testing.T) {
	s := New()
	s.settings.Operator = "line 1"

	got, err := s.settingsFor(json.RawMessage(`{"operator":"line 2","color":{"test_illuminants":["A"]}}`), true)
	if err != nil {
		t.Fatalf("settingsFor failed: %v", err)
	}
	if got.Operator != "line 2" {
		t.Errorf("Operator: got %q, want line 2", got.Operator)
	}
	if !got.Color.Artifacts || !got.Pattern.Artifacts {
		t.Error("artifacts should be forced on for both pipelines")
	}
	if len(got.Color.TestIlluminants) != 1 {
		t.Errorf("TestIlluminants: got %v", got.Color.TestIlluminants)
	}

	if s.settings.Operator != "line 1" || s.settings.Color.Artifacts {
		t.Error("settingsFor must not modify the server settings")
	}
	if len(s.settings.Color.TestIlluminants) == 1 {
		t.Error("settingsFor must not share slices with the server settings")
	}

	same, err := s.settingsFor(nil, false)
	if err != nil {
		t.Fatalf("settingsFor(nil) failed: %v", err)
	}
	if same.Operator != "line 1" {
		t.Errorf("Operator: got %q, want line 1", same.Operator)
	}

	if _, err := s.settingsFor(json.RawMessage(`{"color":`), false); err == nil {
		t.Error("Expected error for malformed settings")
	}
}

func TestExecuteTool_AllTools(t *testing.T) {
	s := New()

	// Every listed tool must be dispatched; bad arguments are fine, an
	// unknown-tool error is not.
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			_, err := s.executeTool(tool.Name, json.RawMessage(`{}`))
			if err != nil && strings.Contains(err.Error(), "unknown tool") {
				t.Errorf("tool %s is not dispatched", tool.Name)
			}
		})
	}
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	s := New()
	_, err := s.executeTool("unknown_tool", json.RawMessage(`{}`))
	if err == nil {
		t.Error("Expected error for unknown tool")
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := New()
	_, err := s.executeTool("textile_load", json.RawMessage(`not json`))
	if err == nil {
		t.Error("Expected error for invalid JSON")
	}
}
