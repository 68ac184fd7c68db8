package imaging

import (
	"image"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Colormap maps a normalized value in [0, 1] to a display color.
type Colormap struct {
	name  string
	stops []colorful.Color
}

// Name returns the colormap's conventional name.
func (c Colormap) Name() string { return c.name }

func hexStops(hexes ...string) []colorful.Color {
	out := make([]colorful.Color, len(hexes))
	for i, h := range hexes {
		out[i], _ = colorful.Hex(h)
	}
	return out
}

// Stock colormaps used by the diff visualizations.
var (
	// Jet runs dark blue, blue, cyan, yellow, red, dark red.
	Jet = Colormap{"jet", hexStops("#00007f", "#0000ff", "#00ffff", "#ffff00", "#ff0000", "#7f0000")}

	// Hot runs black, red, yellow, white.
	Hot = Colormap{"hot", hexStops("#000000", "#ff0000", "#ffff00", "#ffffff")}

	// Inferno is a perceptually ordered black-purple-orange-yellow ramp.
	Inferno = Colormap{"inferno", hexStops("#000004", "#320a5e", "#781c6d", "#bc3754", "#ed6925", "#fbb61a", "#fcffa4")}
)

// At returns the color for t, clamped to [0, 1].
func (c Colormap) At(t float64) color.NRGBA {
	if t <= 0 || t != t {
		return nrgba(c.stops[0])
	}
	if t >= 1 {
		return nrgba(c.stops[len(c.stops)-1])
	}
	seg := t * float64(len(c.stops)-1)
	i := int(seg)
	return nrgba(c.stops[i].BlendRgb(c.stops[i+1], seg-float64(i)))
}

// Apply renders an intensity plane with the colormap after min-max scaling.
func (c Colormap) Apply(p *Plane) *image.NRGBA {
	return c.ApplyRange(p.Normalize(0, 1), 0, 1)
}

// ApplyRange renders p with values in [lo, hi] mapped across the colormap.
func (c Colormap) ApplyRange(p *Plane, lo, hi float64) *image.NRGBA {
	img := image.NewNRGBA(p.Bounds())
	span := hi - lo
	if span == 0 {
		span = 1
	}
	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			img.SetNRGBA(x, y, c.At((p.At(x, y)-lo)/span))
		}
	}
	return img
}

func nrgba(c colorful.Color) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}
