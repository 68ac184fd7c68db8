package colorqc

import (
	"image"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/textile-qc-mcp/internal/colorimetry"
)

// SamplingRadius returns the disc radius used around each sampling point:
// 4% of the shorter side, never less than 12 pixels.
func SamplingRadius(w, h int) int {
	return max(12, int(float64(min(w, h))*0.04))
}

// RegionStats summarizes the pixels of one sampling disc.
type RegionStats struct {
	CX int `json:"cx"`
	CY int `json:"cy"`
	R  int `json:"r"`

	// RGB is the mean of the valid pixels in [0, 1]; RGB255 is the same mean
	// on the 8-bit scale and RGBStd the population deviation in [0, 1].
	RGB    colorimetry.RGB  `json:"rgb"`
	RGB255 [3]float64       `json:"rgb255"`
	RGBStd [3]float64       `json:"rgb_std"`
	Hex    string           `json:"hex"`
	XYZ    colorimetry.XYZ  `json:"xyz"`
	Lab    colorimetry.Lab  `json:"lab"`
	CMYK   colorimetry.CMYK `json:"cmyk"`

	// Pixels is the number of opaque pixels averaged. Zero means the disc
	// fell on fully transparent pixels and the stats describe black.
	Pixels int `json:"pixels"`
}

// ComputeRegionStats averages the disc of radius r around (cx, cy).
//
// The center is first clipped to [r, w-1-r]×[r, h-1-r] so the disc stays
// inside the image where possible. Only pixels with alpha > 0 contribute;
// when none do, the stats describe black.
func ComputeRegionStats(img *image.NRGBA, cx, cy, r int) RegionStats {
	b := img.Rect
	w, h := b.Dx(), b.Dy()
	cx = clipCenter(cx, r, w)
	cy = clipCenter(cy, r, h)

	var rs, gs, bs []float64
	for y := max(0, cy-r); y <= min(h-1, cy+r); y++ {
		for x := max(0, cx-r); x <= min(w-1, cx+r); x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy > r*r {
				continue
			}
			c := img.NRGBAAt(b.Min.X+x, b.Min.Y+y)
			if c.A == 0 {
				continue
			}
			rs = append(rs, float64(c.R)/255)
			gs = append(gs, float64(c.G)/255)
			bs = append(bs, float64(c.B)/255)
		}
	}

	st := RegionStats{CX: cx, CY: cy, R: r, Pixels: len(rs)}
	if len(rs) > 0 {
		var rStd, gStd, bStd float64
		st.RGB.R, rStd = stat.PopMeanStdDev(rs, nil)
		st.RGB.G, gStd = stat.PopMeanStdDev(gs, nil)
		st.RGB.B, bStd = stat.PopMeanStdDev(bs, nil)
		st.RGBStd = [3]float64{rStd, gStd, bStd}
	}
	st.RGB255 = [3]float64{st.RGB.R * 255, st.RGB.G * 255, st.RGB.B * 255}
	st.Hex = colorful.Color{R: st.RGB.R, G: st.RGB.G, B: st.RGB.B}.Clamped().Hex()
	st.XYZ = colorimetry.SRGBToXYZ(st.RGB)
	st.Lab = colorimetry.SRGBToLab(st.RGB)
	st.CMYK = colorimetry.RGBToCMYK(st.RGB)
	return st
}

// clipCenter keeps a disc center r pixels away from both edges. When the
// image is narrower than the disc the lower bound wins.
func clipCenter(c, r, size int) int {
	return max(r, min(size-1-r, c))
}
