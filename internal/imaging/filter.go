package imaging

import "math"

var (
	sobelX = [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY = [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}
)

// SobelXY returns the horizontal and vertical 3×3 Sobel derivatives of p.
// Borders are mirrored.
func SobelXY(p *Plane) (gx, gy *Plane) {
	gx = NewPlane(p.W, p.H)
	gy = NewPlane(p.W, p.H)
	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			var sx, sy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					v := p.AtReflect(x+kx, y+ky)
					sx += v * sobelX[ky+1][kx+1]
					sy += v * sobelY[ky+1][kx+1]
				}
			}
			gx.Set(x, y, sx)
			gy.Set(x, y, sy)
		}
	}
	return gx, gy
}

// Sobel returns the gradient magnitude sqrt(Gx² + Gy²).
func Sobel(p *Plane) *Plane {
	gx, gy := SobelXY(p)
	out := NewPlane(p.W, p.H)
	for i := range out.Pix {
		out.Pix[i] = math.Hypot(gx.Pix[i], gy.Pix[i])
	}
	return out
}

// BoxMean returns the mean over a size×size window centered on each pixel,
// with mirrored borders. size should be odd.
func BoxMean(p *Plane, size int) *Plane {
	r := size / 2
	n := float64(size)

	// Separable: rows into tmp, then columns into out.
	tmp := NewPlane(p.W, p.H)
	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			var sum float64
			for k := -r; k <= r; k++ {
				sum += p.AtReflect(x+k, y)
			}
			tmp.Set(x, y, sum/n)
		}
	}
	out := NewPlane(p.W, p.H)
	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			var sum float64
			for k := -r; k <= r; k++ {
				sum += tmp.AtReflect(x, y+k)
			}
			out.Set(x, y, sum/n)
		}
	}
	return out
}

// Bilateral applies an edge-preserving bilateral filter.
//
// Parameters follow the usual convention:
//   - d: neighborhood diameter in pixels (a disc of radius d/2 is used)
//   - sigmaColor: range sigma, in intensity units
//   - sigmaSpace: spatial sigma, in pixels
//
// Each output pixel is the average of its neighbors weighted by
// exp(-dist²/2σs²)·exp(-Δ²/2σc²), so smoothing stops at strong intensity
// edges such as the boundary between two yarn colors.
func Bilateral(p *Plane, d int, sigmaColor, sigmaSpace float64) *Plane {
	radius := d / 2
	if radius < 1 {
		return p.Clone()
	}
	colorCoeff := -0.5 / (sigmaColor * sigmaColor)
	spaceCoeff := -0.5 / (sigmaSpace * sigmaSpace)

	type tap struct {
		dx, dy int
		w      float64
	}
	var taps []tap
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			r2 := float64(dx*dx + dy*dy)
			if r2 > float64(radius*radius) {
				continue
			}
			taps = append(taps, tap{dx, dy, math.Exp(r2 * spaceCoeff)})
		}
	}

	var colorWeight [256]float64
	for i := range colorWeight {
		colorWeight[i] = math.Exp(float64(i*i) * colorCoeff)
	}

	out := NewPlane(p.W, p.H)
	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			center := p.At(x, y)
			var sum, wsum float64
			for _, t := range taps {
				v := p.AtReflect(x+t.dx, y+t.dy)
				diff := int(math.Abs(v-center) + 0.5)
				if diff > 255 {
					diff = 255
				}
				w := t.w * colorWeight[diff]
				sum += v * w
				wsum += w
			}
			out.Set(x, y, sum/wsum)
		}
	}
	return out.Quantize()
}

// CLAHE applies contrast-limited adaptive histogram equalization to an 8-bit
// intensity plane.
//
// The plane is split into a tilesX×tilesY grid. Each tile's histogram is
// clipped at clipLimit times the mean bin height, the excess is redistributed
// uniformly, and the resulting lookup tables are bilinearly interpolated
// between tile centers.
func CLAHE(p *Plane, clipLimit float64, tilesX, tilesY int) *Plane {
	if p.W == 0 || p.H == 0 {
		return p.Clone()
	}
	tw := ceilDiv(p.W, tilesX)
	th := ceilDiv(p.H, tilesY)
	nx := ceilDiv(p.W, tw)
	ny := ceilDiv(p.H, th)

	src := p.Quantize()
	luts := make([][256]float64, nx*ny)
	for ty := 0; ty < ny; ty++ {
		for tx := 0; tx < nx; tx++ {
			x0, y0 := tx*tw, ty*th
			x1, y1 := min(x0+tw, p.W), min(y0+th, p.H)
			area := (x1 - x0) * (y1 - y0)

			var hist [256]int
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					hist[int(src.At(x, y))]++
				}
			}

			if clipLimit > 0 {
				limit := int(clipLimit * float64(area) / 256)
				if limit < 1 {
					limit = 1
				}
				excess := 0
				for i := range hist {
					if hist[i] > limit {
						excess += hist[i] - limit
						hist[i] = limit
					}
				}
				share := excess / 256
				residual := excess - share*256
				for i := range hist {
					hist[i] += share
				}
				if residual > 0 {
					step := max(256/residual, 1)
					for i := 0; i < 256 && residual > 0; i += step {
						hist[i]++
						residual--
					}
				}
			}

			lut := &luts[ty*nx+tx]
			scale := 255 / float64(area)
			cdf := 0
			for i := range hist {
				cdf += hist[i]
				lut[i] = float64(saturate8(float64(cdf) * scale))
			}
		}
	}

	out := NewPlane(p.W, p.H)
	for y := 0; y < p.H; y++ {
		fy := (float64(y)+0.5)/float64(th) - 0.5
		ty0 := int(math.Floor(fy))
		wy := fy - float64(ty0)
		ty1 := clamp(ty0+1, 0, ny-1)
		ty0 = clamp(ty0, 0, ny-1)
		for x := 0; x < p.W; x++ {
			fx := (float64(x)+0.5)/float64(tw) - 0.5
			tx0 := int(math.Floor(fx))
			wx := fx - float64(tx0)
			tx1 := clamp(tx0+1, 0, nx-1)
			tx0 = clamp(tx0, 0, nx-1)

			v := int(src.At(x, y))
			top := luts[ty0*nx+tx0][v]*(1-wx) + luts[ty0*nx+tx1][v]*wx
			bottom := luts[ty1*nx+tx0][v]*(1-wx) + luts[ty1*nx+tx1][v]*wx
			out.Set(x, y, float64(saturate8(top*(1-wy)+bottom*wy)))
		}
	}
	return out
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}
