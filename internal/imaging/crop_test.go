package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/ironsheep/textile-qc-mcp/internal/sampling"
)

func TestCropToRegion(t *testing.T) {
	img := createPatternImage(100, 100)

	tests := []struct {
		name       string
		region     *sampling.Region
		wantW      int
		wantH      int
		wantOffset image.Point
	}{
		{"nil is full", nil, 100, 100, image.Point{}},
		{"explicit full", sampling.Full(), 100, 100, image.Point{}},
		{"rect", sampling.Rect(10, 20, 30, 40), 30, 40, image.Pt(10, 20)},
		{"rect clipped", sampling.Rect(90, 80, 50, 50), 10, 20, image.Pt(90, 80)},
		{"circle", sampling.Circle(50, 50, 20), 40, 40, image.Pt(30, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cropped, offset, err := CropToRegion(img, tt.region)
			if err != nil {
				t.Fatalf("CropToRegion failed: %v", err)
			}
			b := cropped.Bounds()
			if b.Min != (image.Point{}) {
				t.Errorf("crop not anchored at origin: %v", b)
			}
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("size: got %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
			if offset != tt.wantOffset {
				t.Errorf("offset: got %v, want %v", offset, tt.wantOffset)
			}
		})
	}
}

func TestCropToRegion_RectContent(t *testing.T) {
	img := createPatternImage(100, 100)
	cropped, offset, err := CropToRegion(img, sampling.Rect(40, 40, 20, 20))
	if err != nil {
		t.Fatalf("CropToRegion failed: %v", err)
	}

	// Every local pixel equals the global pixel at local + offset.
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			got := cropped.NRGBAAt(x, y)
			want := img.RGBAAt(x+offset.X, y+offset.Y)
			if got.R != want.R || got.G != want.G || got.B != want.B || got.A != 255 {
				t.Fatalf("pixel (%d,%d): got %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestCropToRegion_CircleMask(t *testing.T) {
	img := createInMemoryImage(100, 100, color.RGBA{200, 100, 50, 255})
	cropped, _, err := CropToRegion(img, sampling.Circle(50, 50, 20))
	if err != nil {
		t.Fatalf("CropToRegion failed: %v", err)
	}

	center := cropped.NRGBAAt(20, 20)
	if center != (color.NRGBA{200, 100, 50, 255}) {
		t.Errorf("center pixel: got %v, want opaque source color", center)
	}
	for _, p := range []image.Point{{0, 0}, {39, 0}, {0, 39}, {39, 39}} {
		if c := cropped.NRGBAAt(p.X, p.Y); c != (color.NRGBA{}) {
			t.Errorf("corner %v: got %v, want transparent black", p, c)
		}
	}
}

func TestCropToRegion_Errors(t *testing.T) {
	img := createInMemoryImage(50, 50, color.White)
	r := 5

	tests := []struct {
		name   string
		region *sampling.Region
	}{
		{"incomplete circle", &sampling.Region{Kind: sampling.KindCircle, R: &r}},
		{"outside image", sampling.Rect(100, 100, 10, 10)},
		{"zero width", sampling.Rect(0, 0, 0, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := CropToRegion(img, tt.region); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCropPreview(t *testing.T) {
	img := createPatternImage(100, 100)

	raster, offset, err := CropPreview(img, sampling.Rect(0, 0, 50, 40), 0.5)
	if err != nil {
		t.Fatalf("CropPreview failed: %v", err)
	}
	if raster.Width != 25 || raster.Height != 20 {
		t.Errorf("size: got %dx%d, want 25x20", raster.Width, raster.Height)
	}
	if offset != (image.Point{}) {
		t.Errorf("offset: got %v, want (0,0)", offset)
	}

	data, err := raster.PNG()
	if err != nil {
		t.Fatalf("PNG failed: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Bounds().Dx() != 25 {
		t.Errorf("decoded width: got %d, want 25", decoded.Bounds().Dx())
	}
}

func TestResize(t *testing.T) {
	img := createPatternImage(100, 60)

	tests := []struct {
		name string
		got  image.Image
		w, h int
	}{
		{"resize", Resize(img, 50, 30), 50, 30},
		{"same size", Resize(img, 100, 60), 100, 60},
		{"scale quarter", Scale(img, 0.25), 25, 15},
		{"scale floor", Scale(createInMemoryImage(2, 2, color.White), 0.25), 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.got.Bounds()
			if b.Dx() != tt.w || b.Dy() != tt.h {
				t.Errorf("size: got %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.w, tt.h)
			}
		})
	}
}

func TestResizePlane(t *testing.T) {
	p := NewPlane(40, 20).Map(func(float64) float64 { return 77 })
	out := ResizePlane(p, 10, 5)
	if out.W != 10 || out.H != 5 {
		t.Fatalf("size: got %dx%d, want 10x5", out.W, out.H)
	}
	for i, v := range out.Pix {
		if v != 77 {
			t.Fatalf("pixel %d: got %v, want 77", i, v)
		}
	}
}
