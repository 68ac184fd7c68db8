package pattern

import (
	"errors"
	"fmt"
	"image"
	"log"

	"github.com/ironsheep/textile-qc-mcp/internal/imaging"
	"github.com/ironsheep/textile-qc-mcp/internal/scoring"
)

// Input errors.
var (
	ErrNilImage   = errors.New("image is nil")
	ErrEmptyImage = errors.New("image has no pixels")
)

// Result is the outcome of a pattern comparison. Optional analyses are nil
// when disabled or failed; failures are listed by name.
type Result struct {
	// Scores holds the computed methods only.
	Scores       map[Method]float64        `json:"scores"`
	MethodStatus map[Method]scoring.Status `json:"method_status"`
	Composite    float64                   `json:"composite_score"`
	FinalStatus  scoring.Status            `json:"final_status"`

	GradientBoundary *Boundary          `json:"gradient_boundary,omitempty"`
	PhaseBoundary    *Boundary          `json:"phase_boundary,omitempty"`
	Structural       *StructuralResult  `json:"structural,omitempty"`
	Fourier          *FourierComparison `json:"fourier,omitempty"`
	GLCM             *GLCMComparison    `json:"glcm,omitempty"`

	Failures map[string]string `json:"failures,omitempty"`

	// DiffImages are the per-method visualizations.
	DiffImages map[Method]image.Image `json:"-"`

	Artifacts []*imaging.Raster `json:"artifacts,omitempty"`
}

// ScoreMap returns the scores keyed by plain method name.
func (r *Result) ScoreMap() map[string]float64 {
	out := make(map[string]float64, len(r.Scores))
	for m, v := range r.Scores {
		out[string(m)] = v
	}
	return out
}

// ScoringInputs packages the result for scoring.PatternScore.
func (r *Result) ScoringInputs(cfg Config) scoring.PatternInputs {
	cfg = cfg.WithDefaults()
	return scoring.PatternInputs{
		Scores:     r.ScoreMap(),
		Composite:  r.Composite,
		Final:      r.FinalStatus,
		Thresholds: cfg.Thresholds,
		Global:     cfg.GlobalThreshold,
	}
}

func (r *Result) fail(name string, err error) {
	log.Printf("pattern: %s skipped: %v", name, err)
	if r.Failures == nil {
		r.Failures = make(map[string]string)
	}
	r.Failures[name] = err.Error()
}

// Composite sums 0.25·score over the given scores. Methods that did not run
// contribute nothing, so the result is never renormalized.
func Composite(scores map[Method]float64) float64 {
	var sum float64
	for _, m := range Methods {
		if v, ok := scores[m]; ok {
			sum += methodWeight * v
		}
	}
	return sum
}

// FinalStatus classifies a composite score: PASS at or above global,
// CONDITIONAL within 15 points below it, FAIL otherwise.
func FinalStatus(composite, global float64) scoring.Status {
	return scoring.HigherIsBetter(composite, global, global-conditionalBand)
}

// Analyze compares the structure of sample against ref.
//
// SSIM, gradient and phase failures abort the analysis. The structural
// match, Fourier and GLCM analyses are isolated: a failure is logged,
// recorded in Failures and leaves the field nil.
func Analyze(ref, sample image.Image, cfg Config) (*Result, error) {
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

	res := &Result{
		Scores:       make(map[Method]float64),
		MethodStatus: make(map[Method]scoring.Status),
		DiffImages:   make(map[Method]image.Image),
	}
	refPlane, samPlane := structurePair(ref, sample)

	scored := []struct {
		method Method
		run    func(a, b *imaging.Plane) (*MethodResult, error)
	}{
		{SSIM, StructuralSSIM},
		{Gradient, GradientSimilarity},
		{Phase, PhaseCorrelation},
	}
	for _, s := range scored {
		if !cfg.Enabled(s.method) {
			continue
		}
		mr, err := s.run(refPlane, samPlane)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.method, err)
		}
		res.Scores[s.method] = mr.Score
		res.DiffImages[s.method] = mr.Diff
		switch s.method {
		case Gradient:
			res.GradientBoundary = Boundaries(sample, mr.DiffMap)
		case Phase:
			res.PhaseBoundary = Boundaries(sample, mr.DiffMap)
		}
	}

	if cfg.Enabled(Structural) {
		if st, err := StructuralMatch(ref, sample); err != nil {
			res.fail(string(Structural), err)
		} else {
			res.Structural = st
			res.Scores[Structural] = st.SimilarityScore
			res.DiffImages[Structural] = st.Diff
		}
	}

	if !cfg.DisableFourier {
		if fc, err := compareFourier(ref, sample); err != nil {
			res.fail("fourier", err)
		} else {
			res.Fourier = fc
		}
	}
	if !cfg.DisableGLCM {
		if gc, err := compareGLCM(ref, sample); err != nil {
			res.fail("glcm", err)
		} else {
			res.GLCM = gc
		}
	}

	for m, v := range res.Scores {
		th := cfg.Thresholds[string(m)]
		res.MethodStatus[m] = scoring.HigherIsBetter(v, th.Pass, th.Conditional)
	}
	res.Composite = Composite(res.Scores)
	res.FinalStatus = FinalStatus(res.Composite, cfg.GlobalThreshold)

	if cfg.Artifacts {
		var err error
		if res.Artifacts, err = res.rasters(); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func compareFourier(ref, sample image.Image) (*FourierComparison, error) {
	r, err := FourierAnalysis(ref)
	if err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	s, err := FourierAnalysis(sample)
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}
	return &FourierComparison{Reference: r, Sample: s}, nil
}

func compareGLCM(ref, sample image.Image) (*GLCMComparison, error) {
	r, err := GLCMAnalysis(ref)
	if err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	s, err := GLCMAnalysis(sample)
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}
	return &GLCMComparison{Reference: r, Sample: s}, nil
}

// rasters encodes every visualization the analysis produced, in a fixed
// order.
func (r *Result) rasters() ([]*imaging.Raster, error) {
	type named struct {
		name string
		img  image.Image
	}
	var all []named
	for _, m := range Methods {
		if d, ok := r.DiffImages[m]; ok {
			all = append(all, named{string(m) + "_diff", d})
		}
	}
	if b := r.GradientBoundary; b != nil {
		all = append(all, named{"gradient_contours", b.Contoured}, named{"gradient_filled", b.Filled})
	}
	if b := r.PhaseBoundary; b != nil {
		all = append(all, named{"phase_contours", b.Contoured}, named{"phase_filled", b.Filled})
	}
	if f := r.Fourier; f != nil {
		all = append(all, named{"fft_reference", f.Reference.Spectrum()}, named{"fft_sample", f.Sample.Spectrum()})
	}
	if g := r.GLCM; g != nil {
		all = append(all, named{"glcm_reference", g.Reference.Heatmap()}, named{"glcm_sample", g.Sample.Heatmap()})
	}

	out := make([]*imaging.Raster, 0, len(all))
	for _, n := range all {
		raster, err := imaging.NewRaster(n.name, n.img)
		if err != nil {
			return nil, err
		}
		out = append(out, raster)
	}
	return out, nil
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
