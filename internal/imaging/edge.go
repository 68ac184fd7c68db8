package imaging

import "math"

// Canny performs Canny edge detection on an 8-bit intensity plane and returns
// the edge pixels as a mask.
//
// Parameters:
//   - p: intensity plane in the 0-255 range. No smoothing is applied here;
//     callers that want a blur run one first.
//   - thresholdLow: gradient magnitude below which candidates are discarded.
//   - thresholdHigh: gradient magnitude above which edges are always kept.
//
// # Algorithm
//
//  1. Gradient computation: 3×3 Sobel operators, L1 magnitude |Gx| + |Gy|,
//     direction atan2(Gy, Gx)
//
//  2. Non-maximum suppression: thin edges to 1-pixel width by keeping only
//     local maxima in the gradient direction
//
//  3. Hysteresis thresholding:
//     - Pixels above thresholdHigh are strong edges (always kept)
//     - Pixels between thresholdLow and thresholdHigh are weak edges
//     (kept only if 8-connected, directly or through other weak edges, to a
//     strong edge)
//     - Pixels below thresholdLow are discarded
//
// Typical thresholds for woven fabric are 50 and 150.
func Canny(p *Plane, thresholdLow, thresholdHigh float64) *Mask {
	width, height := p.W, p.H
	gx, gy := SobelXY(p)

	magnitude := NewPlane(width, height)
	for i := range magnitude.Pix {
		magnitude.Pix[i] = math.Abs(gx.Pix[i]) + math.Abs(gy.Pix[i])
	}

	// Non-maximum suppression
	suppressed := NewPlane(width, height)
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			angle := math.Atan2(gy.At(x, y), gx.At(x, y))
			mag := magnitude.At(x, y)

			// Determine neighbors to compare based on gradient direction
			var n1, n2 float64
			if (angle >= -math.Pi/8 && angle < math.Pi/8) || (angle >= 7*math.Pi/8 || angle < -7*math.Pi/8) {
				n1 = magnitude.At(x-1, y)
				n2 = magnitude.At(x+1, y)
			} else if (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8) {
				n1 = magnitude.At(x+1, y+1)
				n2 = magnitude.At(x-1, y-1)
			} else if (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8) {
				n1 = magnitude.At(x, y-1)
				n2 = magnitude.At(x, y+1)
			} else {
				n1 = magnitude.At(x-1, y+1)
				n2 = magnitude.At(x+1, y-1)
			}

			if mag > n1 && mag >= n2 {
				suppressed.Set(x, y, mag)
			}
		}
	}

	// Double threshold and edge tracking by hysteresis
	edges := NewMask(width, height)
	var stack [][2]int
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if suppressed.At(x, y) > thresholdHigh {
				edges.Set(x, y, true)
				stack = append(stack, [2]int{x, y})
			}
		}
	}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := c[0]+dx, c[1]+dy
				if nx < 0 || ny < 0 || nx >= width || ny >= height || edges.At(nx, ny) {
					continue
				}
				if suppressed.At(nx, ny) > thresholdLow {
					edges.Set(nx, ny, true)
					stack = append(stack, [2]int{nx, ny})
				}
			}
		}
	}
	return edges
}
