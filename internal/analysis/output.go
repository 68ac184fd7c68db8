package analysis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/textile-qc-mcp/internal/imaging"
)

// ReportFile is the name of the JSON report written by WriteOutputs.
const ReportFile = "report.json"

// Rasters returns every artifact of the report, color first.
func (r *Report) Rasters() []*imaging.Raster {
	var out []*imaging.Raster
	if a := r.Color.Artifacts; a != nil {
		for _, ra := range []*imaging.Raster{a.ReferenceOverlay, a.SampleOverlay, a.Heatmap, a.HistogramChart} {
			if ra != nil {
				out = append(out, ra)
			}
		}
	}
	return append(out, r.Pattern.Artifacts...)
}

// Rasters returns the sampling overlay when it was rendered.
func (r *SingleReport) Rasters() []*imaging.Raster {
	if r.Result.Overlay == nil {
		return nil
	}
	return []*imaging.Raster{r.Result.Overlay}
}

// WriteOutputs writes report as indented JSON to dir/report.json and each
// raster to dir/<name>.png, creating dir when needed. It returns the written
// paths.
func WriteOutputs(dir string, report any, rasters []*imaging.Raster) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	path := filepath.Join(dir, ReportFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}
	written := []string{path}

	for _, ra := range rasters {
		png, err := ra.PNG()
		if err != nil {
			return written, err
		}
		path := filepath.Join(dir, ra.Name+".png")
		if err := os.WriteFile(path, png, 0644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", ra.Name, err)
		}
		written = append(written, path)
	}
	return written, nil
}
