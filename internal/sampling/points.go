package sampling

import (
	"errors"
	"fmt"
	"image"
	"log"
	"math/rand"
	"time"
)

// attemptsPerPoint bounds rejection sampling at attemptsPerPoint·n draws.
const attemptsPerPoint = 200

// ErrManualPointCount is returned in manual mode when the number of valid
// caller-supplied points differs from the requested count.
var ErrManualPointCount = errors.New("manual point count mismatch")

// Point is a sampling location in global image coordinates.
type Point struct {
	X      int  `json:"x" yaml:"x"`
	Y      int  `json:"y" yaml:"y"`
	Manual bool `json:"is_manual" yaml:"is_manual,omitempty"`
}

// Mode selects how sampling points are chosen.
type Mode string

// Sampling modes.
const (
	ModeManual Mode = "manual"
	ModeRandom Mode = "random"
)

// ParseMode accepts "manual" or "random"; anything else is an error.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeManual, ModeRandom:
		return Mode(s), nil
	case "":
		return ModeRandom, nil
	}
	return "", fmt.Errorf("invalid sampling mode %q (want manual or random)", s)
}

// IsPointValid reports whether (x, y) lies within [0,imgW)×[0,imgH) and inside
// the region. A nil region is the full image. A region missing a field required
// by its kind rejects every point.
func IsPointValid(x, y int, region *Region, imgW, imgH int) bool {
	if x < 0 || y < 0 || x >= imgW || y >= imgH {
		return false
	}
	return region.Contains(x, y)
}

// BoundingBox returns the candidate box for random sampling: the region's
// bounds clipped to the image.
func BoundingBox(region *Region, imgW, imgH int) image.Rectangle {
	return region.Bounds(imgW, imgH)
}

// newRand returns rng, or a time-seeded source when rng is nil.
func newRand(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// GenerateRandomPoints rejection-samples up to n unique valid points inside the
// region. When the attempt budget of 200·n draws is spent, the points found so
// far are returned; a short result is not an error.
func GenerateRandomPoints(rng *rand.Rand, region *Region, n, imgW, imgH int) []Point {
	if n <= 0 {
		return nil
	}
	box := BoundingBox(region, imgW, imgH)
	if box.Empty() {
		return nil
	}
	rng = newRand(rng)

	points := make([]Point, 0, n)
	seen := make(map[image.Point]struct{}, n)
	for attempt := 0; attempt < attemptsPerPoint*n && len(points) < n; attempt++ {
		x := box.Min.X + rng.Intn(box.Dx())
		y := box.Min.Y + rng.Intn(box.Dy())
		if !IsPointValid(x, y, region, imgW, imgH) {
			continue
		}
		key := image.Pt(x, y)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		points = append(points, Point{X: x, Y: y})
	}
	return points
}

// Request describes one sampling decision.
type Request struct {
	Region *Region
	Width  int
	Height int
	Count  int
	Mode   Mode
	Points []Point

	// TopUp completes a short manual selection with random points instead of
	// failing. Single-image analysis always tops up.
	TopUp bool
}

// ResolvePoints applies the sampling-mode policy.
//
// In manual mode only the caller's valid points are used, and a valid count
// other than Count returns ErrManualPointCount; they are marked Manual. In
// random mode (or with TopUp) valid caller points come first, random points
// fill the remainder and the result is truncated to Count. Invalid caller
// points are logged and dropped.
func ResolvePoints(rng *rand.Rand, req Request) ([]Point, error) {
	if req.Count < 0 {
		return nil, fmt.Errorf("point count must not be negative, got %d", req.Count)
	}

	valid := make([]Point, 0, len(req.Points))
	seen := make(map[image.Point]struct{}, len(req.Points))
	for _, p := range req.Points {
		if !IsPointValid(p.X, p.Y, req.Region, req.Width, req.Height) {
			log.Printf("sampling: rejected point (%d, %d) outside %s", p.X, p.Y, req.Region)
			continue
		}
		key := image.Pt(p.X, p.Y)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		valid = append(valid, p)
	}

	if req.Mode == ModeManual {
		for i := range valid {
			valid[i].Manual = true
		}
		if !req.TopUp {
			if len(valid) != req.Count {
				return nil, fmt.Errorf("%w: %d valid of %d supplied, want %d",
					ErrManualPointCount, len(valid), len(req.Points), req.Count)
			}
			return valid, nil
		}
	}

	points := valid
	if missing := req.Count - len(points); missing > 0 {
		// Draw extra candidates so collisions with caller points still fill the gap.
		for _, p := range GenerateRandomPoints(rng, req.Region, missing+len(points), req.Width, req.Height) {
			if len(points) >= req.Count {
				break
			}
			if _, dup := seen[image.Pt(p.X, p.Y)]; dup {
				continue
			}
			seen[image.Pt(p.X, p.Y)] = struct{}{}
			points = append(points, p)
		}
	}
	if len(points) > req.Count {
		points = points[:req.Count]
	}
	if len(points) < req.Count {
		log.Printf("sampling: only %d of %d points fit inside %s", len(points), req.Count, req.Region)
	}
	return points, nil
}
