package imaging

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/histogram"
	"github.com/fogleman/gg"
)

// ChannelHistogram holds 256-bin counts for the red, green and blue channels.
type ChannelHistogram struct {
	R []int `json:"r"`
	G []int `json:"g"`
	B []int `json:"b"`
}

// RGBHistogram counts 8-bit channel values over every pixel of img.
func RGBHistogram(img image.Image) *ChannelHistogram {
	h := histogram.NewRGBAHistogram(img)
	return &ChannelHistogram{
		R: append([]int(nil), h.R.Bins...),
		G: append([]int(nil), h.G.Bins...),
		B: append([]int(nil), h.B.Bins...),
	}
}

// Peak returns the largest bin count across all channels.
func (h *ChannelHistogram) Peak() int {
	peak := 0
	for _, bins := range [][]int{h.R, h.G, h.B} {
		for _, v := range bins {
			peak = max(peak, v)
		}
	}
	return peak
}

// Chart draws the three channel curves on a white canvas of the given size.
func (h *ChannelHistogram) Chart(width, height int) image.Image {
	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	const margin = 8.0
	plotW := float64(width) - 2*margin
	plotH := float64(height) - 2*margin

	dc.SetRGB(0.8, 0.8, 0.8)
	dc.SetLineWidth(1)
	dc.DrawRectangle(margin, margin, plotW, plotH)
	dc.Stroke()

	peak := float64(h.Peak())
	if peak == 0 {
		return dc.Image()
	}

	curves := []struct {
		bins []int
		c    color.Color
	}{
		{h.R, color.NRGBA{220, 38, 38, 255}},
		{h.G, color.NRGBA{22, 163, 74, 255}},
		{h.B, color.NRGBA{37, 99, 235, 255}},
	}
	dc.SetLineWidth(1.5)
	for _, curve := range curves {
		dc.SetColor(curve.c)
		for i, v := range curve.bins {
			x := margin + float64(i)/255*plotW
			y := margin + plotH - float64(v)/peak*plotH
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.Stroke()
	}
	return dc.Image()
}
