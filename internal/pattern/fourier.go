package pattern

import (
	"fmt"
	"image"
	"math"

	"github.com/ironsheep/textile-qc-mcp/internal/imaging"
)

// Fourier peak search parameters.
const (
	maxPeaks      = 5
	peakFloor     = 1e-6
	dcHalfWidth   = 2
	minSuppress   = 3
	suppressRatio = 0.15
)

// Peak is a dominant frequency in the centered magnitude spectrum.
type Peak struct {
	X         int     `json:"px"`
	Y         int     `json:"py"`
	Radius    float64 `json:"radius"`
	Angle     float64 `json:"angle"`
	Magnitude float64 `json:"magnitude"`
}

// FourierResult describes the periodicity of one image.
type FourierResult struct {
	Peaks []Peak `json:"peaks"`

	// FundamentalPeriod is the repeat length in pixels implied by the
	// strongest peak, or 0 without one.
	FundamentalPeriod float64 `json:"fundamental_period"`

	// DominantOrientation is the strongest peak's angle in degrees,
	// counterclockwise from +x with y pointing up.
	DominantOrientation float64 `json:"dominant_orientation"`

	// Anisotropy is the ratio of the largest to the smallest nonzero peak
	// radius; 1 when fewer than two exist.
	Anisotropy float64 `json:"anisotropy"`

	Width  int `json:"width"`
	Height int `json:"height"`

	// LogMagnitude is log1p of the centered magnitude spectrum.
	LogMagnitude *imaging.Plane `json:"-"`
}

// FourierComparison holds the analyses of both images.
type FourierComparison struct {
	Reference *FourierResult `json:"reference"`
	Sample    *FourierResult `json:"sample"`
}

// FourierAnalysis finds the dominant spatial frequencies of img.
//
// The DC term and its 5×5 neighborhood are ignored. Up to five peaks are
// taken greedily from the magnitude spectrum; after each, a square of half
// width max(3, 0.15·radius) around it is cleared so the next one is distinct.
func FourierAnalysis(img image.Image) (*FourierResult, error) {
	b := img.Bounds()
	if b.Dx() < 2 || b.Dy() < 2 {
		return nil, fmt.Errorf("fourier analysis: %dx%d image too small", b.Dx(), b.Dy())
	}
	gray := imaging.GrayOverBlack(img)
	w, h := gray.W, gray.H

	mag := imaging.FFTShift(imaging.FFT2(gray).Magnitude())
	res := &FourierResult{
		Width:        w,
		Height:       h,
		Anisotropy:   1,
		LogMagnitude: mag.Map(math.Log1p),
	}

	cx, cy := w/2, h/2
	work := mag.Clone()
	clearSquare(work, cx, cy, dcHalfWidth)

	for len(res.Peaks) < maxPeaks {
		px, py, v := argmax(work)
		if v < peakFloor {
			break
		}
		dx, dy := float64(px-cx), float64(py-cy)
		radius := math.Hypot(dx, dy)
		res.Peaks = append(res.Peaks, Peak{
			X:         px,
			Y:         py,
			Radius:    radius,
			Angle:     math.Atan2(-dy, dx) * 180 / math.Pi,
			Magnitude: v,
		})
		clearSquare(work, px, py, max(minSuppress, int(radius*suppressRatio)))
	}

	if len(res.Peaks) > 0 {
		first := res.Peaks[0]
		if first.Radius > 0 {
			res.FundamentalPeriod = float64(max(w, h)) / first.Radius
		}
		res.DominantOrientation = first.Angle
	}

	var radii []float64
	for _, p := range res.Peaks {
		if p.Radius > 0 {
			radii = append(radii, p.Radius)
		}
	}
	if len(radii) >= 2 {
		lo, hi := radii[0], radii[0]
		for _, r := range radii[1:] {
			lo, hi = min(lo, r), max(hi, r)
		}
		res.Anisotropy = hi / lo
	}
	return res, nil
}

// Spectrum renders the log magnitude with the HOT colormap.
func (r *FourierResult) Spectrum() image.Image {
	return imaging.Hot.Apply(r.LogMagnitude)
}

// argmax returns the first position of the largest value in raster order.
func argmax(p *imaging.Plane) (x, y int, v float64) {
	best := 0
	for i, val := range p.Pix {
		if val > p.Pix[best] {
			best = i
		}
	}
	return best % p.W, best / p.W, p.Pix[best]
}

// clearSquare zeroes the (2r+1)×(2r+1) square around (cx, cy), clipped to p.
func clearSquare(p *imaging.Plane, cx, cy, r int) {
	for y := max(0, cy-r); y < min(p.H, cy+r+1); y++ {
		for x := max(0, cx-r); x < min(p.W, cx+r+1); x++ {
			p.Set(x, y, 0)
		}
	}
}
