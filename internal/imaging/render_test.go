package imaging

import (
	"bytes"
	"encoding/base64"
	"image/color"
	"image/png"
	"testing"
)

func TestColormap_Endpoints(t *testing.T) {
	tests := []struct {
		cmap Colormap
		t    float64
		want color.NRGBA
	}{
		{Jet, 0, color.NRGBA{0, 0, 127, 255}},
		{Jet, 1, color.NRGBA{127, 0, 0, 255}},
		{Hot, 0, color.NRGBA{0, 0, 0, 255}},
		{Hot, 1, color.NRGBA{255, 255, 255, 255}},
		{Hot, -3, color.NRGBA{0, 0, 0, 255}},
		{Hot, 7, color.NRGBA{255, 255, 255, 255}},
		{Inferno, 0, color.NRGBA{0, 0, 4, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.cmap.Name(), func(t *testing.T) {
			if got := tt.cmap.At(tt.t); got != tt.want {
				t.Errorf("At(%v): got %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestColormap_Midpoint(t *testing.T) {
	// Hot has four stops, so t=1/3 lands exactly on red.
	if got := Hot.At(1.0 / 3.0); got.R != 255 || got.G > 1 || got.B != 0 {
		t.Errorf("Hot.At(1/3): got %v, want red", got)
	}
}

func TestColormap_Apply(t *testing.T) {
	p := &Plane{W: 2, H: 1, Pix: []float64{3, 9}}
	img := Hot.Apply(p)
	if img.NRGBAAt(0, 0) != Hot.At(0) || img.NRGBAAt(1, 0) != Hot.At(1) {
		t.Errorf("Apply: got %v and %v", img.NRGBAAt(0, 0), img.NRGBAAt(1, 0))
	}

	fixed := Jet.ApplyRange(&Plane{W: 1, H: 1, Pix: []float64{0}}, 0, 255)
	if fixed.NRGBAAt(0, 0) != Jet.At(0) {
		t.Errorf("ApplyRange: got %v", fixed.NRGBAAt(0, 0))
	}
}

func TestNewRaster(t *testing.T) {
	img := createPatternImage(30, 20)

	raster, err := NewRaster("pattern", img)
	if err != nil {
		t.Fatalf("NewRaster failed: %v", err)
	}
	if raster.Name != "pattern" || raster.MimeType != "image/png" {
		t.Errorf("metadata: got %q %q", raster.Name, raster.MimeType)
	}
	if raster.Width != 30 || raster.Height != 20 {
		t.Errorf("size: got %dx%d, want 30x20", raster.Width, raster.Height)
	}

	data, err := base64.StdEncoding.DecodeString(raster.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
	r, g, b, _ := decoded.At(25, 15).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Errorf("bottom-right pixel: got (%d,%d,%d), want white", r>>8, g>>8, b>>8)
	}
}

func TestEncodePNG(t *testing.T) {
	img := Solid(4, 3, color.NRGBA{10, 200, 30, 255})

	data, err := EncodePNG(img)
	if err != nil {
		t.Fatalf("EncodePNG failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatalf("EncodePNG did not produce a PNG header: % x", data[:min(8, len(data))])
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode png: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Errorf("size: got %dx%d, want 4x3", b.Dx(), b.Dy())
	}
	r, g, b, _ := decoded.At(2, 1).RGBA()
	if r>>8 != 10 || g>>8 != 200 || b>>8 != 30 {
		t.Errorf("pixel: got (%d,%d,%d), want (10,200,30)", r>>8, g>>8, b>>8)
	}
}

func TestRaster_PNG_Invalid(t *testing.T) {
	r := &Raster{Name: "broken", ImageBase64: "%%%"}
	if _, err := r.PNG(); err == nil {
		t.Error("expected error for invalid base64")
	}
}

func TestRGBHistogram(t *testing.T) {
	h := RGBHistogram(createInMemoryImage(10, 10, color.RGBA{255, 0, 128, 255}))

	if len(h.R) != 256 || len(h.G) != 256 || len(h.B) != 256 {
		t.Fatalf("bins: got %d/%d/%d, want 256", len(h.R), len(h.G), len(h.B))
	}
	if h.R[255] != 100 || h.G[0] != 100 || h.B[128] != 100 {
		t.Errorf("counts: R[255]=%d G[0]=%d B[128]=%d, want 100", h.R[255], h.G[0], h.B[128])
	}
	if h.Peak() != 100 {
		t.Errorf("Peak: got %d, want 100", h.Peak())
	}

	chart := h.Chart(320, 160)
	if b := chart.Bounds(); b.Dx() != 320 || b.Dy() != 160 {
		t.Errorf("chart size: got %dx%d", b.Dx(), b.Dy())
	}
}
