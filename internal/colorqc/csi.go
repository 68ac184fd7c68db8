package colorqc

import (
	"image"
	"image/color"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/textile-qc-mcp/internal/colorimetry"
	"github.com/ironsheep/textile-qc-mcp/internal/imaging"
)

// csiScale is the downscale applied before the whole-image CSI comparison.
const csiScale = 0.25

// labDistance returns the per-pixel CIE76 distance between two same-sized
// images together with a mask of the pixels that are opaque in both.
func labDistance(ref, sample *image.NRGBA) (*imaging.Plane, *imaging.Mask) {
	w, h := ref.Rect.Dx(), ref.Rect.Dy()
	dist := imaging.NewPlane(w, h)
	valid := imaging.NewMask(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := ref.NRGBAAt(ref.Rect.Min.X+x, ref.Rect.Min.Y+y)
			b := sample.NRGBAAt(sample.Rect.Min.X+x, sample.Rect.Min.Y+y)
			if a.A == 0 || b.A == 0 {
				continue
			}
			// go-colorful scales L to [0,1]; DistanceLab*100 is ΔE76 in CIE units.
			d := toColorful(a).DistanceLab(toColorful(b)) * 100
			dist.Set(x, y, d)
			valid.Set(x, y, true)
		}
	}
	return dist, valid
}

// toColorful drops alpha; callers have already excluded transparent pixels.
func toColorful(c color.NRGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// ComputeCSI returns the color similarity index of two same-sized images:
// both are downscaled by 4, and the mean per-pixel ΔE76 over pixels opaque in
// both maps to 100·(1 − mean/100), clamped to [0, 100]. With no comparable
// pixel the index is 0.
func ComputeCSI(ref, sample *image.NRGBA) colorimetry.Score {
	dist, valid := labDistance(imaging.Scale(ref, csiScale), imaging.Scale(sample, csiScale))
	values := maskedValues(dist, valid)
	if len(values) == 0 {
		return 0
	}
	return colorimetry.ClampScore(100 * (1 - stat.Mean(values, nil)/100))
}

// maskedValues collects the plane values where valid is set.
func maskedValues(p *imaging.Plane, valid *imaging.Mask) []float64 {
	values := make([]float64, 0, valid.Count())
	for i, ok := range valid.Pix {
		if ok {
			values = append(values, p.Pix[i])
		}
	}
	return values
}

// heatmapFloor is the smallest upper bound of the ΔE heatmap scale.
const heatmapFloor = 5.0

// DeltaEHeatmap renders the full-resolution per-pixel ΔE76 with the INFERNO
// colormap over [0, max(p99, 5)].
func DeltaEHeatmap(ref, sample *image.NRGBA) *image.NRGBA {
	dist, valid := labDistance(ref, sample)
	hi := heatmapFloor
	if values := maskedValues(dist, valid); len(values) > 0 {
		sort.Float64s(values)
		hi = max(hi, stat.Quantile(0.99, stat.Empirical, values, nil))
	}
	return imaging.Inferno.ApplyRange(dist, 0, hi)
}
