package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePNG(t *testing.T, dir, name string, gb float64) string {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 48, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 48; x++ {
			v := uint8((x*37 + y*91) % 256)
			c := uint8(float64(v) * gb)
			img.SetNRGBA(x, y, color.NRGBA{v, c, c, 255})
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode %s: %v", path, err)
	}
	return path
}

func TestParseAnalyzeFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"pair", []string{"-r", "ref.png", "-s", "sample.png"}, ""},
		{"single", []string{"--single", "--sample", "sample.png"}, ""},
		{"missing sample", []string{"-r", "ref.png"}, "--sample is required"},
		{"missing reference", []string{"-s", "sample.png"}, "--reference is required"},
		{"unknown flag", []string{"--bogus"}, "unknown flag"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			_, err := parseAnalyzeFlags(tt.args, &out)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error: got %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestAnalyzeOptions_Settings(t *testing.T) {
	o := &analyzeOptions{operator: "night shift", seed: 11, artifacts: true, output: "/tmp/qc"}
	s, err := o.settings()
	if err != nil {
		t.Fatalf("settings failed: %v", err)
	}
	if s.Operator != "night shift" || s.Seed != 11 || s.OutputDir != "/tmp/qc" {
		t.Errorf("overrides not applied: %+v", s)
	}
	if !s.Color.Artifacts || !s.Pattern.Artifacts {
		t.Error("--artifacts should enable both pipelines")
	}
}

func TestRunAnalyze_Summary(t *testing.T) {
	dir := t.TempDir()
	ref := writePNG(t, dir, "ref.png", 1)

	var out bytes.Buffer
	if err := runAnalyze([]string{"-r", ref, "-s", ref, "--seed", "5"}, &out); err != nil {
		t.Fatalf("runAnalyze failed: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "ACCEPT") {
		t.Errorf("summary should report ACCEPT:\n%s", got)
	}
	if strings.Contains(got, "wrote") {
		t.Errorf("nothing should be written without an output directory:\n%s", got)
	}
}

func TestRunAnalyze_OutputAndJSON(t *testing.T) {
	dir := t.TempDir()
	ref := writePNG(t, dir, "ref.png", 1)
	sample := writePNG(t, dir, "sample.png", 0.3)
	outDir := filepath.Join(dir, "out")

	var out bytes.Buffer
	err := runAnalyze([]string{"-r", ref, "-s", sample, "-o", outDir, "--seed", "5", "--json"}, &out)
	if err != nil {
		t.Fatalf("runAnalyze failed: %v", err)
	}

	var rep struct {
		ID       string `json:"report_id"`
		Decision string `json:"decision"`
	}
	if err := json.Unmarshal(out.Bytes(), &rep); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if rep.Decision != "REJECT" {
		t.Errorf("Decision: got %s, want REJECT", rep.Decision)
	}
	if _, err := os.Stat(filepath.Join(outDir, "report.json")); err != nil {
		t.Errorf("report.json not written: %v", err)
	}
}

func TestRunAnalyze_Single(t *testing.T) {
	dir := t.TempDir()
	sample := writePNG(t, dir, "sample.png", 1)

	var out bytes.Buffer
	if err := runAnalyze([]string{"--single", "-s", sample, "--seed", "2"}, &out); err != nil {
		t.Fatalf("runAnalyze failed: %v", err)
	}
	if !strings.Contains(out.String(), "5 measurements") {
		t.Errorf("summary should count measurements:\n%s", out.String())
	}
}

func TestRunAnalyze_MissingFile(t *testing.T) {
	var out bytes.Buffer
	err := runAnalyze([]string{"-r", "/nonexistent/ref.png", "-s", "/nonexistent/sample.png"}, &out)
	if err == nil || !strings.Contains(err.Error(), "sample") {
		t.Errorf("error: got %v, want a sample load error", err)
	}
}
