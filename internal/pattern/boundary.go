package pattern

import (
	"image"
	"image/color"
	"sort"

	"github.com/anthonynsimon/bild/blend"

	"github.com/ironsheep/textile-qc-mcp/internal/imaging"
)

// Boundary extraction parameters.
const (
	boundaryPercentile = 70.0
	boundaryMinArea    = 100
	fillOpacity        = 0.4
)

var boundaryRed = color.NRGBA{255, 0, 0, 255}

// Boundary marks where a difference map is significant and summarizes how
// much of the image that covers.
type Boundary struct {
	// BinaryCoefficient is 100 - changed/unchanged·100, or 0 when every
	// pixel changed.
	BinaryCoefficient float64 `json:"binary_coefficient"`

	// WeightedCoefficient is the same ratio with each changed pixel weighted
	// by its normalized difference.
	WeightedCoefficient float64 `json:"weighted_coefficient"`

	// Regions counts the outlined regions larger than 100 px.
	Regions int `json:"regions"`

	ChangedPixels int `json:"changed_pixels"`
	TotalPixels   int `json:"total_pixels"`

	Mask      *imaging.Mask `json:"-"`
	Contoured image.Image   `json:"-"`
	Filled    image.Image   `json:"-"`
}

// Boundaries thresholds diff at its 70th percentile, cleans the mask with a
// 7×7 close (twice), a 7×7 open and a 5×5 dilation (twice), then outlines the
// external regions on sample. diff values are expected in [0, 1].
func Boundaries(sample image.Image, diff *imaging.Plane) *Boundary {
	mask := imaging.Threshold(diff, percentile(diff.Pix, boundaryPercentile)).
		Close(7, 2).
		Open(7, 1).
		Dilate(5, 2)
	outlines := imaging.ExternalOutlines(mask, boundaryMinArea)

	b := &Boundary{
		Regions:       len(outlines),
		ChangedPixels: mask.Count(),
		TotalPixels:   diff.W * diff.H,
		Mask:          mask,
	}
	b.BinaryCoefficient, b.WeightedCoefficient = coefficients(mask, diff)

	base := imaging.Resize(imaging.OverBlack(sample), diff.W, diff.H)
	b.Contoured = drawOutlines(base, outlines)
	b.Filled = fillOutlines(base, outlines)
	return b
}

// coefficients returns the binary and intensity-weighted similarity of a
// change mask. Both are 0 when no pixel is unchanged.
func coefficients(mask *imaging.Mask, diff *imaging.Plane) (binary, weighted float64) {
	colored := mask.Count()
	unchanged := len(mask.Pix) - colored
	if unchanged == 0 {
		return 0, 0
	}
	hi := diff.Max() + 1e-10
	var sum float64
	for i, on := range mask.Pix {
		if on {
			sum += diff.Pix[i] / hi
		}
	}
	binary = 100 - float64(colored)/float64(unchanged)*100
	weighted = 100 - sum/float64(unchanged)*100
	return binary, weighted
}

// drawOutlines paints every outline's edge in thick red on a copy of base.
func drawOutlines(base *image.NRGBA, outlines []imaging.Outline) *image.NRGBA {
	out := imaging.Clone(base)
	for _, o := range outlines {
		edge := o.Boundary.Dilate(3, 1)
		for i, on := range edge.Pix {
			if on {
				out.SetNRGBA(i%edge.W, i/edge.W, boundaryRed)
			}
		}
	}
	return out
}

// fillOutlines tints each outlined region 40% red and then draws the edges.
func fillOutlines(base *image.NRGBA, outlines []imaging.Outline) *image.NRGBA {
	b := base.Bounds()
	tinted := blend.Opacity(base, imaging.Solid(b.Dx(), b.Dy(), boundaryRed), fillOpacity)

	out := imaging.Clone(base)
	for _, o := range outlines {
		for i, on := range o.Filled.Pix {
			if on {
				x, y := i%o.Filled.W, i/o.Filled.W
				out.Set(x, y, tinted.At(x, y))
			}
		}
	}
	return drawOutlines(out, outlines)
}

// percentile returns the p-th percentile of values with linear interpolation
// between closest ranks.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	pos := p / 100 * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
