package imaging

import (
	"image"
	"image/color"
	"math"
)

// Plane is a single-channel float64 image stored row-major.
//
// Intensity planes derived from 8-bit images keep the 0-255 range; normalized
// planes use 0-1. Operations never modify their inputs and return new planes.
type Plane struct {
	W, H int
	Pix  []float64
}

// NewPlane allocates a zero-filled w×h plane.
func NewPlane(w, h int) *Plane {
	return &Plane{W: w, H: h, Pix: make([]float64, w*h)}
}

// At returns the value at (x, y).
func (p *Plane) At(x, y int) float64 { return p.Pix[y*p.W+x] }

// Set stores v at (x, y).
func (p *Plane) Set(x, y int, v float64) { p.Pix[y*p.W+x] = v }

// AtClamped reads with replicated borders.
func (p *Plane) AtClamped(x, y int) float64 {
	return p.Pix[clamp(y, 0, p.H-1)*p.W+clamp(x, 0, p.W-1)]
}

// AtReflect reads with mirrored borders (OpenCV BORDER_REFLECT_101).
func (p *Plane) AtReflect(x, y int) float64 {
	return p.Pix[reflect101(y, p.H)*p.W+reflect101(x, p.W)]
}

// Clone returns a deep copy.
func (p *Plane) Clone() *Plane {
	out := &Plane{W: p.W, H: p.H, Pix: make([]float64, len(p.Pix))}
	copy(out.Pix, p.Pix)
	return out
}

// Bounds returns the plane rectangle anchored at the origin.
func (p *Plane) Bounds() image.Rectangle { return image.Rect(0, 0, p.W, p.H) }

// MinMax returns the smallest and largest values.
func (p *Plane) MinMax() (lo, hi float64) {
	if len(p.Pix) == 0 {
		return 0, 0
	}
	lo, hi = p.Pix[0], p.Pix[0]
	for _, v := range p.Pix[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// Max returns the largest value.
func (p *Plane) Max() float64 {
	_, hi := p.MinMax()
	return hi
}

// Normalize min-max scales values into [lo, hi]. A constant plane maps to lo.
func (p *Plane) Normalize(lo, hi float64) *Plane {
	min, max := p.MinMax()
	out := NewPlane(p.W, p.H)
	span := max - min
	if span == 0 {
		for i := range out.Pix {
			out.Pix[i] = lo
		}
		return out
	}
	for i, v := range p.Pix {
		out.Pix[i] = lo + (v-min)/span*(hi-lo)
	}
	return out
}

// Map applies fn to every value.
func (p *Plane) Map(fn func(float64) float64) *Plane {
	out := NewPlane(p.W, p.H)
	for i, v := range p.Pix {
		out.Pix[i] = fn(v)
	}
	return out
}

// Quantize rounds and saturates every value to 0-255, matching an 8-bit store.
func (p *Plane) Quantize() *Plane {
	return p.Map(func(v float64) float64 { return float64(saturate8(v)) })
}

// AbsDiff returns |a - b| element-wise. Both planes must share dimensions.
func AbsDiff(a, b *Plane) *Plane {
	out := NewPlane(a.W, a.H)
	for i := range out.Pix {
		out.Pix[i] = math.Abs(a.Pix[i] - b.Pix[i])
	}
	return out
}

// Mul returns a * b element-wise. Both planes must share dimensions.
func Mul(a, b *Plane) *Plane {
	out := NewPlane(a.W, a.H)
	for i := range out.Pix {
		out.Pix[i] = a.Pix[i] * b.Pix[i]
	}
	return out
}

// Floor truncates every value toward negative infinity and saturates to
// 0-255, matching a cast to an 8-bit store.
func (p *Plane) Floor() *Plane {
	return p.Map(func(v float64) float64 { return math.Max(0, math.Min(255, math.Floor(v))) })
}

// Mean returns the arithmetic mean of all values.
func (p *Plane) Mean() float64 {
	if len(p.Pix) == 0 {
		return 0
	}
	var sum float64
	for _, v := range p.Pix {
		sum += v
	}
	return sum / float64(len(p.Pix))
}

// Crop returns the sub-plane inside r, clipped to the plane.
func (p *Plane) Crop(r image.Rectangle) *Plane {
	r = r.Intersect(p.Bounds())
	out := NewPlane(r.Dx(), r.Dy())
	for y := 0; y < out.H; y++ {
		copy(out.Pix[y*out.W:(y+1)*out.W], p.Pix[(y+r.Min.Y)*p.W+r.Min.X:])
	}
	return out
}

// Gray8 converts the plane to an 8-bit grayscale image, saturating to 0-255.
func (p *Plane) Gray8() *image.Gray {
	img := image.NewGray(p.Bounds())
	for i, v := range p.Pix {
		img.Pix[i] = saturate8(v)
	}
	return img
}

// PlaneFromGray copies an 8-bit grayscale image into a plane.
func PlaneFromGray(img *image.Gray) *Plane {
	b := img.Bounds()
	p := NewPlane(b.Dx(), b.Dy())
	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			p.Set(x, y, float64(img.GrayAt(x+b.Min.X, y+b.Min.Y).Y))
		}
	}
	return p
}

// GrayOverBlack composites img over a black background and converts the result
// to an 8-bit luma plane (ITU-R BT.601 weights). Pixels with zero alpha become 0.
func GrayOverBlack(img image.Image) *Plane {
	b := img.Bounds()
	p := NewPlane(b.Dx(), b.Dy())
	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			// RGBA() is alpha-premultiplied, which is exactly a composite over black.
			r, g, bl, _ := img.At(x+b.Min.X, y+b.Min.Y).RGBA()
			luma := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(bl>>8)
			p.Set(x, y, float64(saturate8(luma)))
		}
	}
	return p
}

// OverBlack returns an opaque copy of img composited over black.
func OverBlack(img image.Image) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, _ := img.At(x+b.Min.X, y+b.Min.Y).RGBA()
			out.SetNRGBA(x, y, color.NRGBA{uint8(r >> 8), uint8(g >> 8), uint8(bl >> 8), 255})
		}
	}
	return out
}

func saturate8(v float64) uint8 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(math.Round(v))
}

// reflect101 mirrors an out-of-range index without repeating the edge sample.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
