package colorqc

import (
	"image"
	"image/color"
	"strconv"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/ironsheep/textile-qc-mcp/internal/imaging"
	"github.com/ironsheep/textile-qc-mcp/internal/sampling"
)

// Marker colors for the sampling overlay.
var (
	manualColor = color.NRGBA{34, 197, 94, 255}
	randomColor = color.NRGBA{249, 115, 22, 255}
)

// Artifacts are the optional visual outputs of a color analysis.
type Artifacts struct {
	ReferenceOverlay   *imaging.Raster           `json:"reference_overlay"`
	SampleOverlay      *imaging.Raster           `json:"sample_overlay"`
	Heatmap            *imaging.Raster           `json:"heatmap"`
	ReferenceHistogram *imaging.ChannelHistogram `json:"reference_histogram"`
	SampleHistogram    *imaging.ChannelHistogram `json:"sample_histogram"`
	HistogramChart     *imaging.Raster           `json:"histogram_chart"`
}

// DrawSamplingOverlay marks each point on a copy of img: a double ring of
// radius r, a center dot and the 1-based point number. Manual points are
// green and random points orange. Points are global; offset is subtracted to
// place them on img.
func DrawSamplingOverlay(img image.Image, points []sampling.Point, offset image.Point, r int) image.Image {
	dc := gg.NewContextForImage(img)
	dc.SetFontFace(basicfont.Face7x13)

	for i, p := range points {
		x := float64(p.X - offset.X)
		y := float64(p.Y - offset.Y)
		c := randomColor
		if p.Manual {
			c = manualColor
		}
		dc.SetColor(c)

		dc.SetLineWidth(3)
		dc.DrawCircle(x, y, float64(r+2))
		dc.Stroke()
		dc.SetLineWidth(2)
		dc.DrawCircle(x, y, float64(r))
		dc.Stroke()
		dc.DrawCircle(x, y, 4)
		dc.Fill()

		label := strconv.Itoa(i + 1)
		lx, ly := x+8, y-8
		dc.SetColor(color.White)
		for _, d := range [][2]float64{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			dc.DrawString(label, lx+d[0], ly+d[1])
		}
		dc.SetColor(c)
		dc.DrawString(label, lx, ly)
	}
	return dc.Image()
}

// buildArtifacts renders the overlays, ΔE heatmap and histograms.
func buildArtifacts(ref, sample *image.NRGBA, points []sampling.Point, offset image.Point, r int) (*Artifacts, error) {
	a := &Artifacts{
		ReferenceHistogram: imaging.RGBHistogram(ref),
		SampleHistogram:    imaging.RGBHistogram(sample),
	}

	var err error
	if a.ReferenceOverlay, err = imaging.NewRaster("reference_overlay", DrawSamplingOverlay(ref, points, offset, r)); err != nil {
		return nil, err
	}
	if a.SampleOverlay, err = imaging.NewRaster("sample_overlay", DrawSamplingOverlay(sample, points, offset, r)); err != nil {
		return nil, err
	}
	if a.Heatmap, err = imaging.NewRaster("delta_e_heatmap", DeltaEHeatmap(ref, sample)); err != nil {
		return nil, err
	}
	if a.HistogramChart, err = imaging.NewRaster("histograms", histogramPair(a.ReferenceHistogram, a.SampleHistogram)); err != nil {
		return nil, err
	}
	return a, nil
}

// histogramPair places the reference and sample charts side by side.
func histogramPair(ref, sample *imaging.ChannelHistogram) image.Image {
	const w, h = 320, 160
	dc := gg.NewContext(2*w, h)
	dc.DrawImage(ref.Chart(w, h), 0, 0)
	dc.DrawImage(sample.Chart(w, h), w, 0)
	return dc.Image()
}
