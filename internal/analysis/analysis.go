// Package analysis runs a complete QC pass: optional crop to the region of
// interest, the color and pattern pipelines, score selection, the final
// decision and the written findings.
package analysis

import (
	"errors"
	"fmt"
	"image"
	"log"
	"math/rand"
	"time"

	"github.com/ironsheep/textile-qc-mcp/internal/colorimetry"
	"github.com/ironsheep/textile-qc-mcp/internal/colorqc"
	"github.com/ironsheep/textile-qc-mcp/internal/config"
	"github.com/ironsheep/textile-qc-mcp/internal/imaging"
	"github.com/ironsheep/textile-qc-mcp/internal/pattern"
	"github.com/ironsheep/textile-qc-mcp/internal/recommend"
	"github.com/ironsheep/textile-qc-mcp/internal/scoring"
)

// ErrMissingImage is returned when an input image is nil.
var ErrMissingImage = errors.New("missing image")

// now is replaced in tests.
var now = time.Now

// ColorScore is the reported color score and the method that produced it.
type ColorScore struct {
	Method scoring.ColorMethod `json:"method"`
	Score  colorimetry.Score   `json:"score"`
	Status scoring.Status      `json:"status"`
}

// PatternScore is the reported pattern score and the method that produced it.
type PatternScore struct {
	Method scoring.PatternMethod `json:"method"`
	Score  colorimetry.Score     `json:"score"`
	Status scoring.Status        `json:"status"`
}

// Report is the JSON-serializable outcome of Run.
type Report struct {
	ID        string          `json:"report_id"`
	CreatedAt time.Time       `json:"created_at"`
	Operator  string          `json:"operator,omitempty"`
	Settings  config.Settings `json:"settings"`

	// Width and Height are the analyzed reference size after cropping.
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	CropOffset image.Point `json:"crop_offset"`

	Color   *colorqc.Result `json:"color"`
	Pattern *pattern.Result `json:"pattern"`

	ColorScore   ColorScore        `json:"color_score"`
	PatternScore PatternScore      `json:"pattern_score"`
	OverallScore colorimetry.Score `json:"overall_score"`
	Decision     scoring.Decision  `json:"decision"`

	ColorFindings   recommend.Summary `json:"color_findings"`
	PatternFindings recommend.Summary `json:"pattern_findings"`
}

// SingleReport is the JSON-serializable outcome of RunSingle.
type SingleReport struct {
	ID         string                `json:"report_id"`
	CreatedAt  time.Time             `json:"created_at"`
	Operator   string                `json:"operator,omitempty"`
	Settings   config.Settings       `json:"settings"`
	Width      int                   `json:"width"`
	Height     int                   `json:"height"`
	CropOffset image.Point           `json:"crop_offset"`
	Result     *colorqc.SingleResult `json:"result"`
	Findings   recommend.Summary     `json:"findings"`
}

// reportID names a report after its creation time.
func reportID(t time.Time) string {
	return "QC_" + t.Format("060102_150405")
}

// randFor returns rng, or a source seeded from the settings when rng is nil
// and a seed is configured. A nil result makes sampling time-seeded.
func randFor(rng *rand.Rand, seed int64) *rand.Rand {
	if rng == nil && seed != 0 {
		return rand.New(rand.NewSource(seed))
	}
	return rng
}

// crop applies the region crop to img when the settings ask for it and
// returns the image to analyze with its offset in global coordinates.
func crop(img image.Image, s config.Settings) (image.Image, image.Point, error) {
	if !s.CropToRegion || s.Color.Region.IsFull() {
		return img, image.Point{}, nil
	}
	cropped, off, err := imaging.CropToRegion(img, s.Color.Region)
	if err != nil {
		return nil, image.Point{}, fmt.Errorf("crop to region: %w", err)
	}
	return cropped, off, nil
}

// colorConfig returns the color configuration for images cropped at off out
// of a global image of size global.
func colorConfig(s config.Settings, global image.Rectangle, off image.Point) colorqc.Config {
	cc := s.Color
	cc.GlobalWidth = global.Dx()
	cc.GlobalHeight = global.Dy()
	cc.CropOffset = off
	return cc
}

// pair is a reference/sample pair ready for the pipelines.
type pair struct {
	settings config.Settings
	ref      image.Image
	sample   image.Image
	offset   image.Point
	color    colorqc.Config
}

// prepare normalizes the settings, then crops both images when requested.
func prepare(ref, sample image.Image, s config.Settings) (*pair, error) {
	if ref == nil {
		return nil, fmt.Errorf("reference: %w", ErrMissingImage)
	}
	if sample == nil {
		return nil, fmt.Errorf("sample: %w", ErrMissingImage)
	}
	s, err := s.Normalize()
	if err != nil {
		return nil, err
	}

	refImg, off, err := crop(ref, s)
	if err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	samImg, _, err := crop(sample, s)
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}
	return &pair{
		settings: s,
		ref:      refImg,
		sample:   samImg,
		offset:   off,
		color:    colorConfig(s, ref.Bounds(), off),
	}, nil
}

// RunColor runs only the color pipeline, with the same cropping and seeding
// as Run.
func RunColor(ref, sample image.Image, s config.Settings, rng *rand.Rand) (*colorqc.Result, error) {
	p, err := prepare(ref, sample, s)
	if err != nil {
		return nil, err
	}
	return colorqc.Analyze(p.ref, p.sample, p.color, randFor(rng, p.settings.Seed))
}

// RunPattern runs only the pattern pipeline, with the same cropping as Run.
func RunPattern(ref, sample image.Image, s config.Settings) (*pattern.Result, error) {
	p, err := prepare(ref, sample, s)
	if err != nil {
		return nil, err
	}
	return pattern.Analyze(p.ref, p.sample, p.settings.Pattern)
}

// Run compares sample against ref.
//
// Settings are normalized first. When CropToRegion is set and the region is
// not the full image, both images are cropped to it and sampling points stay
// in the reference's global coordinates. The color and pattern pipelines run
// on the same (cropped) pair; the configured scoring methods select the
// reported scores and their statuses decide ACCEPT, CONDITIONAL or REJECT.
// rng drives random sampling; nil falls back to Settings.Seed, then to a
// time-seeded source.
func Run(ref, sample image.Image, s config.Settings, rng *rand.Rand) (*Report, error) {
	p, err := prepare(ref, sample, s)
	if err != nil {
		return nil, err
	}
	s = p.settings

	cr, err := colorqc.Analyze(p.ref, p.sample, p.color, randFor(rng, s.Seed))
	if err != nil {
		return nil, fmt.Errorf("color analysis: %w", err)
	}
	pr, err := pattern.Analyze(p.ref, p.sample, s.Pattern)
	if err != nil {
		return nil, fmt.Errorf("pattern analysis: %w", err)
	}

	created := now()
	b := p.ref.Bounds()
	rep := &Report{
		ID:         reportID(created),
		CreatedAt:  created,
		Operator:   s.Operator,
		Settings:   s,
		Width:      b.Dx(),
		Height:     b.Dy(),
		CropOffset: p.offset,
		Color:      cr,
		Pattern:    pr,
	}

	cs, cst := scoring.ColorScore(s.Scoring.Color, scoring.ColorInputs{
		MeanDE2000: cr.MeanDE2000,
		CSI:        cr.CSI,
		Overall:    cr.OverallStatus,
		CSIGood:    s.Color.CSIGood,
		CSIWarn:    s.Color.CSIWarn,
	})
	ps, pst := scoring.PatternScore(s.Scoring.Pattern, pr.ScoringInputs(s.Pattern))
	rep.ColorScore = ColorScore{Method: s.Scoring.Color, Score: cs, Status: cst}
	rep.PatternScore = PatternScore{Method: s.Scoring.Pattern, Score: ps, Status: pst}
	rep.OverallScore = scoring.Overall(cs, ps)
	rep.Decision = scoring.Decide(cst, pst)

	rep.ColorFindings = recommend.ForColor(recommend.ColorInput{
		MeanDE2000:  float64(cr.MeanDE2000),
		DEValues:    cr.DEValues(),
		CSI:         float64(cr.CSI),
		Pass:        s.Color.Thresholds.Pass,
		Conditional: s.Color.Thresholds.Conditional,
		CSIGood:     s.Color.CSIGood,
		CSIWarn:     s.Color.CSIWarn,
	})
	var structural *float64
	if pr.Structural != nil {
		v := pr.Structural.SimilarityScore
		structural = &v
	}
	rep.PatternFindings = recommend.ForPattern(pr.Composite, pr.ScoreMap(), structural,
		s.Pattern.GlobalThreshold, s.Pattern.Thresholds)

	log.Printf("analysis %s: color %.1f (%s), pattern %.1f (%s), decision %s",
		rep.ID, float64(cs), cst, float64(ps), pst, rep.Decision)
	return rep, nil
}

// RunSingle measures one sample without a reference. Cropping and seeding
// follow Run.
func RunSingle(sample image.Image, s config.Settings, rng *rand.Rand) (*SingleReport, error) {
	if sample == nil {
		return nil, fmt.Errorf("sample: %w", ErrMissingImage)
	}
	s, err := s.Normalize()
	if err != nil {
		return nil, err
	}

	samImg, off, err := crop(sample, s)
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}
	res, err := colorqc.AnalyzeSingle(samImg, colorConfig(s, sample.Bounds(), off), randFor(rng, s.Seed))
	if err != nil {
		return nil, fmt.Errorf("single-image analysis: %w", err)
	}

	created := now()
	b := samImg.Bounds()
	rep := &SingleReport{
		ID:         reportID(created),
		CreatedAt:  created,
		Operator:   s.Operator,
		Settings:   s,
		Width:      b.Dx(),
		Height:     b.Dy(),
		CropOffset: off,
		Result:     res,
		Findings:   recommend.ForSingle(res.Measurements),
	}
	log.Printf("analysis %s: %d measurements, %s", rep.ID, len(res.Measurements), rep.Findings.Status)
	return rep, nil
}
