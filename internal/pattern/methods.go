package pattern

import (
	"image"
	"math"
	"math/cmplx"

	"github.com/ironsheep/textile-qc-mcp/internal/colorimetry"
	"github.com/ironsheep/textile-qc-mcp/internal/imaging"
)

// MethodResult is the output of one scored method.
type MethodResult struct {
	// Score is the similarity in [0, 100].
	Score float64

	// Diff is the colorized difference visualization.
	Diff image.Image

	// DiffMap is the per-pixel difference in [0, 1] that drives the boundary
	// overlay. Only the gradient and phase methods set it.
	DiffMap *imaging.Plane
}

// StructuralSSIM scores two preprocessed planes with SSIM. The diff image is
// the JET-colored dissimilarity map.
func StructuralSSIM(ref, sample *imaging.Plane) (*MethodResult, error) {
	s, mean, err := SSIMMap(ref, sample)
	if err != nil {
		return nil, err
	}
	return &MethodResult{
		Score: float64(colorimetry.ClampScore(mean * 100)),
		Diff:  imaging.Jet.ApplyRange(dissimilarity(s), 0, dataRange),
	}, nil
}

// GradientSimilarity compares Sobel gradient magnitudes. SSIM runs on the
// magnitudes scaled to 8 bits; the diff map is the absolute difference of
// the magnitudes min-max scaled to [0, 1].
func GradientSimilarity(ref, sample *imaging.Plane) (*MethodResult, error) {
	refMag := imaging.Sobel(ref)
	samMag := imaging.Sobel(sample)

	s, mean, err := SSIMMap(refMag.Normalize(0, dataRange).Floor(), samMag.Normalize(0, dataRange).Floor())
	if err != nil {
		return nil, err
	}
	return &MethodResult{
		Score:   float64(colorimetry.ClampScore(mean * 100)),
		Diff:    imaging.Hot.ApplyRange(dissimilarity(s), 0, dataRange),
		DiffMap: imaging.AbsDiff(refMag.Normalize(0, 1), samMag.Normalize(0, 1)),
	}, nil
}

// phaseEps keeps the cross-power normalization finite at empty frequencies.
const phaseEps = 2.220446049250313e-16

// phaseWindow is the side of the window summed around the correlation peak.
const phaseWindow = 5

// PhaseResponse returns the phase correlation peak response of a and b in
// [0, 1]-ish units: the sum of the normalized correlation surface over a 5×5
// window around its maximum. Identical planes give 1.
func PhaseResponse(a, b *imaging.Plane) float64 {
	fa := imaging.FFT2(a)
	fb := imaging.FFT2(b)
	cross := &imaging.Spectrum{W: fa.W, H: fa.H, Data: make([]complex128, len(fa.Data))}
	for i := range fa.Data {
		r := fa.Data[i] * cmplx.Conj(fb.Data[i])
		cross.Data[i] = r / complex(cmplx.Abs(r)+phaseEps, 0)
	}
	surface := imaging.IFFT2(cross).Real()

	var px, py int
	peak := math.Inf(-1)
	for y := 0; y < surface.H; y++ {
		for x := 0; x < surface.W; x++ {
			if v := surface.At(x, y); v > peak {
				peak, px, py = v, x, y
			}
		}
	}
	return peakWindowSum(surface, px, py)
}

// peakWindowSum sums the phaseWindow×phaseWindow cells around (px, py) with the
// surface viewed zero-shift centred, the layout the peak is read in. Cells that
// fall past the edges of that centred view are dropped, not wrapped.
func peakWindowSum(surface *imaging.Plane, px, py int) float64 {
	w, h := surface.W, surface.H
	// Position of the peak once the zero shift sits at (w/2, h/2).
	cx := (px + w/2) % w
	cy := (py + h/2) % h

	var sum float64
	r := phaseWindow / 2
	for sy := max(cy-r, 0); sy <= min(cy+r, h-1); sy++ {
		for sx := max(cx-r, 0); sx <= min(cx+r, w-1); sx++ {
			sum += surface.At((sx-w/2+w)%w, (sy-h/2+h)%h)
		}
	}
	return sum
}

// PhaseCorrelation scores the phase correlation response. A non-finite
// response scores 0. The diff image is the INFERNO-colored absolute
// difference and the diff map is that difference over 255.
func PhaseCorrelation(ref, sample *imaging.Plane) (*MethodResult, error) {
	var score float64
	if resp := PhaseResponse(ref, sample); !math.IsNaN(resp) && !math.IsInf(resp, 0) {
		score = float64(colorimetry.ClampScore(resp * 100))
	}
	diff := imaging.AbsDiff(ref, sample)
	return &MethodResult{
		Score:   score,
		Diff:    imaging.Inferno.ApplyRange(diff, 0, dataRange),
		DiffMap: diff.Map(func(v float64) float64 { return v / dataRange }),
	}, nil
}
