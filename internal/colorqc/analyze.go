package colorqc

import (
	"errors"
	"fmt"
	"image"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/textile-qc-mcp/internal/colorimetry"
	"github.com/ironsheep/textile-qc-mcp/internal/imaging"
	"github.com/ironsheep/textile-qc-mcp/internal/sampling"
	"github.com/ironsheep/textile-qc-mcp/internal/scoring"
)

// Input errors.
var (
	ErrNilImage   = errors.New("image is nil")
	ErrEmptyImage = errors.New("image has no pixels")
)

// PointResult is the comparison at one sampling point. X and Y are global
// coordinates.
type PointResult struct {
	ID     int                `json:"id"`
	X      int                `json:"x"`
	Y      int                `json:"y"`
	Manual bool               `json:"is_manual"`
	Ref    RegionStats        `json:"ref"`
	Sample RegionStats        `json:"sample"`
	DE76   colorimetry.DeltaE `json:"de76"`
	DE94   colorimetry.DeltaE `json:"de94"`
	DE2000 colorimetry.DeltaE `json:"de00"`
	Status scoring.Status     `json:"status"`
}

// Result is the outcome of a reference/sample color comparison.
type Result struct {
	Points        []PointResult      `json:"points"`
	Radius        int                `json:"radius"`
	MeanDE2000    colorimetry.DeltaE `json:"mean_de00"`
	StdDE2000     colorimetry.DeltaE `json:"std_de00"`
	OverallStatus scoring.Status     `json:"overall_status"`
	CSI           colorimetry.Score  `json:"csi"`
	Illuminants   []IlluminantResult `json:"illuminants"`
	Artifacts     *Artifacts         `json:"artifacts,omitempty"`

	// Sample is the sample as analyzed, resized to the reference when needed.
	Sample *image.NRGBA `json:"-"`
}

// DEValues returns the per-point ΔE2000 values in point order.
func (r *Result) DEValues() []float64 {
	values := make([]float64, len(r.Points))
	for i, p := range r.Points {
		values[i] = float64(p.DE2000)
	}
	return values
}

// checkImage rejects nil and zero-area inputs.
func checkImage(name string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("%s: %w", name, ErrNilImage)
	}
	if img.Bounds().Empty() {
		return fmt.Errorf("%s: %w", name, ErrEmptyImage)
	}
	return nil
}

// Analyze compares sample against ref at the configured sampling points.
//
// The sample is resized to the reference size when they differ. Each point
// is mapped from global to local coordinates via cfg.CropOffset, averaged over
// a disc of SamplingRadius on both images, and compared with ΔE76, ΔE94 and
// ΔE2000. The mean ΔE2000 decides the overall status; with no usable point it
// is INSUFFICIENT_DATA and the illuminant analysis is skipped. The
// whole-image CSI is always computed. rng drives random sampling; nil uses a
// time-seeded source.
func Analyze(ref, sample image.Image, cfg Config, rng *rand.Rand) (*Result, error) {
	if err := checkImage("reference", ref); err != nil {
		return nil, err
	}
	if err := checkImage("sample", sample); err != nil {
		return nil, err
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	refImg := imaging.NRGBA(ref)
	w, h := refImg.Rect.Dx(), refImg.Rect.Dy()
	samImg := imaging.Resize(sample, w, h)

	points, err := sampling.ResolvePoints(rng, cfg.pointRequest(w, h, false))
	if err != nil {
		return nil, err
	}

	r := SamplingRadius(w, h)
	res := &Result{Radius: r, Sample: samImg, Points: make([]PointResult, 0, len(points))}
	for i, p := range points {
		lx := max(0, min(w-1, p.X-cfg.CropOffset.X))
		ly := max(0, min(h-1, p.Y-cfg.CropOffset.Y))
		refStats := ComputeRegionStats(refImg, lx, ly, r)
		samStats := ComputeRegionStats(samImg, lx, ly, r)

		pr := PointResult{
			ID:     i + 1,
			X:      p.X,
			Y:      p.Y,
			Manual: p.Manual,
			Ref:    refStats,
			Sample: samStats,
			DE76:   colorimetry.DeltaE76(refStats.Lab, samStats.Lab),
			DE94:   colorimetry.DeltaE94(refStats.Lab, samStats.Lab),
			DE2000: colorimetry.DeltaE2000(refStats.Lab, samStats.Lab),
		}
		pr.Status = scoring.LowerIsBetter(float64(pr.DE2000), cfg.Thresholds.Pass, cfg.Thresholds.Conditional)
		res.Points = append(res.Points, pr)
	}

	if len(res.Points) == 0 {
		res.OverallStatus = scoring.InsufficientData
	} else {
		mean, std := stat.PopMeanStdDev(res.DEValues(), nil)
		res.MeanDE2000 = colorimetry.DeltaE(mean)
		res.StdDE2000 = colorimetry.DeltaE(std)
		res.OverallStatus = scoring.LowerIsBetter(mean, cfg.Thresholds.Pass, cfg.GlobalThreshold)
	}

	res.CSI = ComputeCSI(refImg, samImg)
	if len(res.Points) > 0 {
		res.Illuminants = AnalyzeIlluminants(res.Points, cfg.PrimaryIlluminant, cfg.TestIlluminants, res.MeanDE2000, res.CSI)
	}

	if cfg.Artifacts {
		res.Artifacts, err = buildArtifacts(refImg, samImg, points, cfg.CropOffset, r)
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}
