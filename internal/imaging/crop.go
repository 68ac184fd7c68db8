package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/textile-qc-mcp/internal/sampling"
)

// CropToRegion extracts the region of interest from img.
//
// Parameters:
//   - img: source image in global coordinates.
//   - region: region of interest; nil or full returns a copy of the whole image.
//
// Returns:
//   - *image.NRGBA: the cropped image, anchored at (0,0).
//   - image.Point: the crop offset, i.e. the global coordinate of the crop's
//     top-left pixel. Subtract it from a global point to index the crop.
//   - error: non-nil if the region is incomplete or does not overlap img.
//
// Rectangles are clipped to the image. Circles are cropped to their bounding
// box and then masked: a disc centered on the crop with radius min(w,h)/2
// stays opaque, everything outside gets alpha 0 and black RGB so that later
// statistics can exclude it.
func CropToRegion(img image.Image, region *sampling.Region) (*image.NRGBA, image.Point, error) {
	b := img.Bounds()
	if region.IsFull() {
		return imaging.Clone(img), image.Point{}, nil
	}
	if err := region.Validate(); err != nil {
		return nil, image.Point{}, err
	}

	rect := region.Bounds(b.Dx(), b.Dy())
	if rect.Empty() {
		return nil, image.Point{}, fmt.Errorf("region %s does not overlap the %dx%d image", region, b.Dx(), b.Dy())
	}

	cropped := imaging.Crop(img, rect.Add(b.Min))
	if region.Kind == sampling.KindCircle {
		maskCircle(cropped)
	}
	return cropped, rect.Min, nil
}

// maskCircle clears every pixel outside the centered inscribed disc.
func maskCircle(img *image.NRGBA) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	cx, cy := w/2, h/2
	r := min(w, h) / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy > r*r {
				img.SetNRGBA(x, y, color.NRGBA{})
			}
		}
	}
}

// Resize scales img to w×h with bilinear interpolation.
func Resize(img image.Image, w, h int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return imaging.Clone(img)
	}
	return imaging.Resize(img, w, h, imaging.Linear)
}

// Scale resizes img by factor, keeping at least one pixel per side.
func Scale(img image.Image, factor float64) *image.NRGBA {
	b := img.Bounds()
	return Resize(img, max(1, int(float64(b.Dx())*factor)), max(1, int(float64(b.Dy())*factor)))
}

// ResizePlane scales an 8-bit intensity plane to w×h with bilinear
// interpolation. Values are rounded to whole intensities.
func ResizePlane(p *Plane, w, h int) *Plane {
	if p.W == w && p.H == h {
		return p.Clone()
	}
	return GrayOverBlack(imaging.Resize(p.Gray8(), w, h, imaging.Linear))
}

// CropPreview crops img to the region and encodes the result, optionally
// scaled, for display.
func CropPreview(img image.Image, region *sampling.Region, scale float64) (*Raster, image.Point, error) {
	cropped, offset, err := CropToRegion(img, region)
	if err != nil {
		return nil, image.Point{}, err
	}
	var out image.Image = cropped
	if scale != 1.0 && scale > 0 {
		out = Scale(cropped, scale)
	}
	raster, err := NewRaster("crop", out)
	if err != nil {
		return nil, image.Point{}, err
	}
	return raster, offset, nil
}

// NRGBA returns img as an *image.NRGBA anchored at (0,0), copying only when
// the input is not already in that form.
func NRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}

// Clone returns a copy of img anchored at (0,0).
func Clone(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

// Solid returns a w×h image filled with c.
func Solid(w, h int, c color.Color) *image.NRGBA {
	return imaging.New(w, h, c)
}
