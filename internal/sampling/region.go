// Package sampling selects the pixel locations at which fabric color is measured.
//
// Every coordinate handled here is a global coordinate, meaning a position in the
// original uncropped image. Converting to the cropped (local) image happens at pixel
// access time in the color pipeline, by subtracting the crop offset.
package sampling

import (
	"fmt"
	"image"
)

// Kind identifies the shape of a region of interest.
type Kind string

// Region kinds.
const (
	KindFull   Kind = "full"
	KindRect   Kind = "rect"
	KindCircle Kind = "circle"
)

// Region is a region of interest in global image coordinates.
//
// Geometry fields are pointers so that a field omitted by the caller can be told
// apart from an explicit zero. A region missing a field required by its Kind is
// invalid and rejects every point. A nil *Region means the full image.
//
// An empty Kind is treated as a rectangle; "square" is accepted as an alias.
type Region struct {
	Kind Kind `json:"type" yaml:"type"`

	X *int `json:"x,omitempty" yaml:"x,omitempty"`
	Y *int `json:"y,omitempty" yaml:"y,omitempty"`
	W *int `json:"w,omitempty" yaml:"w,omitempty"`
	H *int `json:"h,omitempty" yaml:"h,omitempty"`

	CX *int `json:"cx,omitempty" yaml:"cx,omitempty"`
	CY *int `json:"cy,omitempty" yaml:"cy,omitempty"`
	R  *int `json:"r,omitempty" yaml:"r,omitempty"`
}

// Rect returns a rectangular region with its top-left corner at (x, y).
func Rect(x, y, w, h int) *Region {
	return &Region{Kind: KindRect, X: &x, Y: &y, W: &w, H: &h}
}

// Circle returns a circular region centered at (cx, cy).
func Circle(cx, cy, r int) *Region {
	return &Region{Kind: KindCircle, CX: &cx, CY: &cy, R: &r}
}

// Full returns an explicit full-image region.
func Full() *Region {
	return &Region{Kind: KindFull}
}

// shape resolves the effective kind, folding aliases and the empty default.
func (r *Region) shape() Kind {
	if r == nil {
		return KindFull
	}
	switch r.Kind {
	case KindFull, KindCircle:
		return r.Kind
	default:
		return KindRect
	}
}

// IsFull reports whether the region imposes no restriction.
func (r *Region) IsFull() bool {
	return r.shape() == KindFull
}

// Complete reports whether every field required by the region's kind is set.
func (r *Region) Complete() bool {
	switch r.shape() {
	case KindFull:
		return true
	case KindCircle:
		return r.CX != nil && r.CY != nil && r.R != nil
	default:
		return r.X != nil && r.Y != nil && r.W != nil && r.H != nil
	}
}

// usable reports whether the geometry is complete with positive extents.
func (r *Region) usable() bool {
	if !r.Complete() {
		return false
	}
	switch r.shape() {
	case KindCircle:
		return *r.R > 0
	case KindRect:
		return *r.W > 0 && *r.H > 0
	}
	return true
}

// Contains reports whether (x, y) lies inside the region geometry. Image bounds
// are not considered; see IsPointValid. Invalid geometry contains nothing.
func (r *Region) Contains(x, y int) bool {
	if !r.usable() {
		return false
	}
	switch r.shape() {
	case KindFull:
		return true
	case KindCircle:
		dx := x - *r.CX
		dy := y - *r.CY
		return dx*dx+dy*dy <= *r.R**r.R
	default:
		return *r.X <= x && x <= *r.X+*r.W && *r.Y <= y && y <= *r.Y+*r.H
	}
}

// Bounds returns the region's bounding box clipped to a w×h image. The box is
// half-open: Max is one past the last candidate coordinate. An incomplete or
// degenerate region yields an empty rectangle.
func (r *Region) Bounds(imgW, imgH int) image.Rectangle {
	img := image.Rect(0, 0, imgW, imgH)
	if !r.usable() {
		return image.Rectangle{}
	}
	var box image.Rectangle
	switch r.shape() {
	case KindFull:
		return img
	case KindCircle:
		box = image.Rect(*r.CX-*r.R, *r.CY-*r.R, *r.CX+*r.R, *r.CY+*r.R)
	default:
		box = image.Rect(*r.X, *r.Y, *r.X+*r.W, *r.Y+*r.H)
	}
	return box.Intersect(img)
}

// String describes the region for logs.
func (r *Region) String() string {
	if !r.Complete() {
		return fmt.Sprintf("%s(incomplete)", r.shape())
	}
	switch r.shape() {
	case KindFull:
		return "full"
	case KindCircle:
		return fmt.Sprintf("circle(cx=%d, cy=%d, r=%d)", *r.CX, *r.CY, *r.R)
	default:
		return fmt.Sprintf("rect(x=%d, y=%d, w=%d, h=%d)", *r.X, *r.Y, *r.W, *r.H)
	}
}

// Validate returns an error when the region is incomplete or degenerate.
func (r *Region) Validate() error {
	if !r.Complete() {
		return fmt.Errorf("region %s: missing required fields", r.shape())
	}
	switch r.shape() {
	case KindCircle:
		if *r.R <= 0 {
			return fmt.Errorf("region %s: radius must be positive", r)
		}
	case KindRect:
		if *r.W <= 0 || *r.H <= 0 {
			return fmt.Errorf("region %s: width and height must be positive", r)
		}
	}
	return nil
}
