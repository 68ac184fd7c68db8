package pattern

import (
	"fmt"
	"image"
	"image/color"

	"github.com/ironsheep/textile-qc-mcp/internal/imaging"
)

// Verdict grades a structural similarity score.
type Verdict string

// Verdicts, best first.
const (
	Identical   Verdict = "IDENTICAL"
	VerySimilar Verdict = "VERY SIMILAR"
	Similar     Verdict = "SIMILAR"
	Different   Verdict = "DIFFERENT"
)

// VerdictFor maps a similarity score to its verdict.
func VerdictFor(similarity float64) Verdict {
	switch {
	case similarity >= 99.9:
		return Identical
	case similarity >= 99.0:
		return VerySimilar
	case similarity >= 95.0:
		return Similar
	default:
		return Different
	}
}

// Fusion weights of the five difference signals.
var fusionWeights = [5]float64{0.25, 0.20, 0.25, 0.15, 0.15}

// Structural match parameters.
const (
	claheClip          = 2.0
	claheTiles         = 8
	fusedThreshold     = 100
	minChangedRegionPx = 50
)

// StructuralResult is the fused structural difference between two images.
type StructuralResult struct {
	TotalPixels      int     `json:"total_pixels"`
	ChangedPixels    int     `json:"changed_pixels"`
	ChangePercentage float64 `json:"change_percentage"`
	SimilarityScore  float64 `json:"similarity_score"`
	Verdict          Verdict `json:"verdict"`

	// Regions are the changed areas that survived the size filter.
	Regions []imaging.Component `json:"regions"`

	// Mask marks changed pixels; Diff shows them red on black.
	Mask *imaging.Mask `json:"-"`
	Diff image.Image   `json:"-"`
}

// StructuralMatch detects structural changes between ref and sample.
//
// Both images are resized to their common minimum size, converted to gray and
// contrast-equalized with CLAHE. Five difference signals are thresholded and
// cleaned independently: raw intensity, Canny edges, Sobel magnitude, Fourier
// magnitude and inverted SSIM. Their weighted sum is thresholded again,
// cleaned with a 5×5 open and close, and regions under 50 px are dropped.
func StructuralMatch(ref, sample image.Image) (*StructuralResult, error) {
	rb, sb := ref.Bounds(), sample.Bounds()
	w, h := min(rb.Dx(), sb.Dx()), min(rb.Dy(), sb.Dy())
	if w < ssimWindow || h < ssimWindow {
		return nil, fmt.Errorf("structural match: %dx%d: %w", w, h, ErrTooSmall)
	}

	a := imaging.CLAHE(imaging.GrayOverBlack(imaging.Resize(ref, w, h)), claheClip, claheTiles, claheTiles)
	b := imaging.CLAHE(imaging.GrayOverBlack(imaging.Resize(sample, w, h)), claheClip, claheTiles, claheTiles)

	signals, err := differenceSignals(a, b)
	if err != nil {
		return nil, fmt.Errorf("structural match: %w", err)
	}

	fused := imaging.NewPlane(w, h)
	for i := range fused.Pix {
		var v float64
		for k, s := range signals {
			if s.Pix[i] {
				v += fusionWeights[k] * 255
			}
		}
		fused.Pix[i] = v
	}
	combined := imaging.Threshold(fused.Floor(), fusedThreshold).Open(5, 1).Close(5, 1)

	regions := imaging.Components(combined, minChangedRegionPx)
	mask := imaging.Keep(w, h, regions)

	res := &StructuralResult{
		TotalPixels:   w * h,
		ChangedPixels: mask.Count(),
		Regions:       regions,
		Mask:          mask,
		Diff:          mask.Image(color.NRGBA{255, 0, 0, 255}, color.NRGBA{0, 0, 0, 255}),
	}
	res.ChangePercentage = float64(res.ChangedPixels) / float64(res.TotalPixels) * 100
	res.SimilarityScore = max(0, 100-res.ChangePercentage)
	res.Verdict = VerdictFor(res.SimilarityScore)
	return res, nil
}

// differenceSignals returns the five cleaned binary difference masks in
// fusion order.
func differenceSignals(a, b *imaging.Plane) ([5]*imaging.Mask, error) {
	var out [5]*imaging.Mask

	out[0] = imaging.Threshold(imaging.AbsDiff(a, b), 30).Open(3, 1).Close(3, 1)

	out[1] = imaging.Xor(imaging.Canny(a, 50, 150), imaging.Canny(b, 50, 150)).Dilate(3, 2)

	ga := imaging.Sobel(a).Normalize(0, 255).Floor()
	gb := imaging.Sobel(b).Normalize(0, 255).Floor()
	out[2] = imaging.Threshold(imaging.AbsDiff(ga, gb), 40).Open(3, 1).Close(3, 1)

	magDiff := imaging.AbsDiff(imaging.FFT2(a).Magnitude(), imaging.FFT2(b).Magnitude())
	freq := imaging.IFFT2(realSpectrum(magDiff)).Magnitude().Normalize(0, 255).Floor()
	out[3] = imaging.Threshold(freq, 30).Open(3, 1)

	s, _, err := SSIMMap(a, b)
	if err != nil {
		return out, err
	}
	out[4] = imaging.Threshold(dissimilarity(s), 200).Open(3, 1).Close(3, 1)
	return out, nil
}

// realSpectrum lifts a real plane into a spectrum with zero imaginary parts.
func realSpectrum(p *imaging.Plane) *imaging.Spectrum {
	s := &imaging.Spectrum{W: p.W, H: p.H, Data: make([]complex128, len(p.Pix))}
	for i, v := range p.Pix {
		s.Data[i] = complex(v, 0)
	}
	return s
}
