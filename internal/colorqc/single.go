package colorqc

import (
	"image"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/textile-qc-mcp/internal/colorimetry"
	"github.com/ironsheep/textile-qc-mcp/internal/imaging"
	"github.com/ironsheep/textile-qc-mcp/internal/sampling"
)

// Measurement is the color of one sampling point in single-image mode.
type Measurement struct {
	ID     int                    `json:"id"`
	X      int                    `json:"x"`
	Y      int                    `json:"y"`
	Manual bool                   `json:"is_manual"`
	RGB    [3]float64             `json:"rgb"`
	XYZ    colorimetry.XYZ        `json:"xyz"`
	Lab    colorimetry.Lab        `json:"lab"`
	CMYK   colorimetry.CMYK       `json:"cmyk"`
	Hex    string                 `json:"hex"`
	Under  colorimetry.Illuminant `json:"illuminant"`
}

// ChannelStats describes one Lab channel across the measurements.
type ChannelStats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// channelStats returns population statistics of vs, which must not be empty.
func channelStats(vs []float64) ChannelStats {
	var c ChannelStats
	c.Mean, c.Std = stat.PopMeanStdDev(vs, nil)
	c.Min, c.Max = floats.Min(vs), floats.Max(vs)
	return c
}

// SingleSummary aggregates the measurements of one sample.
type SingleSummary struct {
	MeanL           float64      `json:"mean_l"`
	StdL            float64      `json:"std_l"`
	StdChroma       float64      `json:"std_chroma"`
	L               ChannelStats `json:"l_stats"`
	A               ChannelStats `json:"a_stats"`
	B               ChannelStats `json:"b_stats"`
	MeanRGB         [3]float64   `json:"mean_rgb"`
	DominantChannel string       `json:"dominant_channel"`
}

// SingleResult is the outcome of a single-image analysis.
type SingleResult struct {
	Measurements []Measurement   `json:"measurements"`
	Summary      SingleSummary   `json:"summary"`
	Radius       int             `json:"radius"`
	Overlay      *imaging.Raster `json:"overlay,omitempty"`
}

// Labs returns the Lab value of every measurement.
func (r *SingleResult) Labs() []colorimetry.Lab {
	labs := make([]colorimetry.Lab, len(r.Measurements))
	for i, m := range r.Measurements {
		labs[i] = m.Lab
	}
	return labs
}

// RGBs returns the 8-bit mean RGB of every measurement.
func (r *SingleResult) RGBs() [][3]float64 {
	rgbs := make([][3]float64, len(r.Measurements))
	for i, m := range r.Measurements {
		rgbs[i] = m.RGB
	}
	return rgbs
}

// AnalyzeSingle measures the color of one sample without a reference.
//
// Valid caller points are used first and random points always complete the
// set, whatever the sampling mode. XYZ is adapted to the primary illuminant
// and Lab is taken against that illuminant's white.
func AnalyzeSingle(sample image.Image, cfg Config, rng *rand.Rand) (*SingleResult, error) {
	if err := checkImage("sample", sample); err != nil {
		return nil, err
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	img := imaging.NRGBA(sample)
	w, h := img.Rect.Dx(), img.Rect.Dy()
	points, err := sampling.ResolvePoints(rng, cfg.pointRequest(w, h, true))
	if err != nil {
		return nil, err
	}

	r := SamplingRadius(w, h)
	res := &SingleResult{Radius: r, Measurements: make([]Measurement, 0, len(points))}
	ill := cfg.PrimaryIlluminant
	for i, p := range points {
		lx := max(0, min(w-1, p.X-cfg.CropOffset.X))
		ly := max(0, min(h-1, p.Y-cfg.CropOffset.Y))
		st := ComputeRegionStats(img, lx, ly, r)

		res.Measurements = append(res.Measurements, Measurement{
			ID:     i + 1,
			X:      p.X,
			Y:      p.Y,
			Manual: p.Manual,
			RGB:    st.RGB255,
			XYZ:    colorimetry.Adapt(st.XYZ, ill),
			Lab:    colorimetry.LabUnder(st.XYZ, ill),
			CMYK:   st.CMYK,
			Hex:    st.Hex,
			Under:  ill,
		})
	}
	res.Summary = Summarize(res.Labs(), res.RGBs())

	if cfg.Artifacts {
		res.Overlay, err = imaging.NewRaster("sample_overlay", DrawSamplingOverlay(img, points, cfg.CropOffset, r))
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

var channelNames = [3]string{"R", "G", "B"}

// Summarize computes per-channel Lab statistics, chroma spread and RGB
// channel balance over a set of measurements. Deviations are population
// deviations.
func Summarize(labs []colorimetry.Lab, rgbs [][3]float64) SingleSummary {
	var s SingleSummary
	if len(labs) > 0 {
		ls := make([]float64, len(labs))
		as := make([]float64, len(labs))
		bs := make([]float64, len(labs))
		chromas := make([]float64, len(labs))
		for i, lab := range labs {
			ls[i], as[i], bs[i] = lab.L, lab.A, lab.B
			chromas[i] = lab.Chroma()
		}
		s.L, s.A, s.B = channelStats(ls), channelStats(as), channelStats(bs)
		s.MeanL, s.StdL = s.L.Mean, s.L.Std
		_, s.StdChroma = stat.PopMeanStdDev(chromas, nil)
	}
	if len(rgbs) > 0 {
		for c := 0; c < 3; c++ {
			col := make([]float64, len(rgbs))
			for i, rgb := range rgbs {
				col[i] = rgb[c]
			}
			s.MeanRGB[c] = stat.Mean(col, nil)
		}
		s.DominantChannel = channelNames[floats.MaxIdx(s.MeanRGB[:])]
	}
	return s
}
