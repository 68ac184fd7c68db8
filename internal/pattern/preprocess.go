package pattern

import (
	"image"

	"github.com/ironsheep/textile-qc-mcp/internal/imaging"
)

// Bilateral filter parameters applied before every structural comparison.
const (
	bilateralDiameter = 9
	bilateralSigma    = 75.0
)

// structurePlane composites img over black, converts it to gray and smooths
// it with an edge-preserving bilateral filter. The result is 8-bit valued.
func structurePlane(img image.Image) *imaging.Plane {
	gray := imaging.GrayOverBlack(img)
	return imaging.Bilateral(gray, bilateralDiameter, bilateralSigma, bilateralSigma)
}

// structurePair preprocesses both images and resizes the sample plane to the
// reference when their sizes differ.
func structurePair(ref, sample image.Image) (r, s *imaging.Plane) {
	r = structurePlane(ref)
	s = structurePlane(sample)
	if s.W != r.W || s.H != r.H {
		s = imaging.ResizePlane(s, r.W, r.H)
	}
	return r, s
}
