package pattern

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/textile-qc-mcp/internal/imaging"
)

// SSIM constants for 8-bit data.
const (
	ssimWindow = 7
	ssimK1     = 0.01
	ssimK2     = 0.03
	dataRange  = 255.0
)

// ErrTooSmall is returned when an image is smaller than the SSIM window.
var ErrTooSmall = errors.New("image smaller than the 7x7 window")

// SSIMMap returns the per-pixel structural similarity of a and b and its mean.
//
// Local statistics use a uniform 7×7 window with sample (n-1) covariance.
// The mean excludes a 3-pixel border where the window would leave the image.
// Both planes must share dimensions.
func SSIMMap(a, b *imaging.Plane) (*imaging.Plane, float64, error) {
	if a.W != b.W || a.H != b.H {
		return nil, 0, fmt.Errorf("ssim: size mismatch %dx%d vs %dx%d", a.W, a.H, b.W, b.H)
	}
	if a.W < ssimWindow || a.H < ssimWindow {
		return nil, 0, fmt.Errorf("ssim: %dx%d: %w", a.W, a.H, ErrTooSmall)
	}

	const np = ssimWindow * ssimWindow
	cov := float64(np) / float64(np-1)
	c1 := (ssimK1 * dataRange) * (ssimK1 * dataRange)
	c2 := (ssimK2 * dataRange) * (ssimK2 * dataRange)

	ux := imaging.BoxMean(a, ssimWindow)
	uy := imaging.BoxMean(b, ssimWindow)
	uxx := imaging.BoxMean(imaging.Mul(a, a), ssimWindow)
	uyy := imaging.BoxMean(imaging.Mul(b, b), ssimWindow)
	uxy := imaging.BoxMean(imaging.Mul(a, b), ssimWindow)

	s := imaging.NewPlane(a.W, a.H)
	for i := range s.Pix {
		mx, my := ux.Pix[i], uy.Pix[i]
		vx := cov * (uxx.Pix[i] - mx*mx)
		vy := cov * (uyy.Pix[i] - my*my)
		vxy := cov * (uxy.Pix[i] - mx*my)

		num := (2*mx*my + c1) * (2*vxy + c2)
		den := (mx*mx + my*my + c1) * (vx + vy + c2)
		s.Pix[i] = num / den
	}

	pad := (ssimWindow - 1) / 2
	mean := s.Crop(image.Rect(pad, pad, a.W-pad, a.H-pad)).Mean()
	return s, mean, nil
}

// dissimilarity renders 255 - uint8(map·255), the bright-is-different view
// of an SSIM map.
func dissimilarity(s *imaging.Plane) *imaging.Plane {
	return s.Map(func(v float64) float64 { return v * dataRange }).Floor().
		Map(func(v float64) float64 { return dataRange - v })
}
