// Package scoring maps raw metric values to quality statuses and reduces the
// color and pattern verdicts to one decision.
package scoring

import (
	"fmt"

	"github.com/ironsheep/textile-qc-mcp/internal/colorimetry"
)

// Status is the verdict for one metric or pipeline.
type Status string

// Statuses.
const (
	Pass             Status = "PASS"
	Conditional      Status = "CONDITIONAL"
	Fail             Status = "FAIL"
	InsufficientData Status = "INSUFFICIENT_DATA"
)

// Decision is the overall verdict for a reference/sample pair.
type Decision string

// Decisions.
const (
	Accept            Decision = "ACCEPT"
	ConditionalAccept Decision = "CONDITIONAL"
	Reject            Decision = "REJECT"
)

// Thresholds are the pass and conditional cutoffs for one metric.
type Thresholds struct {
	Pass        float64 `json:"pass" yaml:"pass"`
	Conditional float64 `json:"conditional" yaml:"conditional"`
}

// HigherIsBetter classifies a score-like value: PASS at or above pass,
// CONDITIONAL at or above cond, FAIL below.
func HigherIsBetter(value, pass, cond float64) Status {
	switch {
	case value >= pass:
		return Pass
	case value >= cond:
		return Conditional
	default:
		return Fail
	}
}

// LowerIsBetter classifies a distance-like value: PASS strictly below pass,
// CONDITIONAL up to and including cond, FAIL above.
func LowerIsBetter(value, pass, cond float64) Status {
	switch {
	case value < pass:
		return Pass
	case value <= cond:
		return Conditional
	default:
		return Fail
	}
}

// Decide combines the color and pattern statuses. Both must PASS to accept;
// either FAIL rejects; anything else, including insufficient data on one
// side, is conditional.
func Decide(color, pattern Status) Decision {
	switch {
	case color == Fail || pattern == Fail:
		return Reject
	case color == Pass && pattern == Pass:
		return Accept
	default:
		return ConditionalAccept
	}
}

// ColorMethod selects which color metric becomes the reported color score.
type ColorMethod string

// Color scoring methods.
const (
	ColorDeltaE  ColorMethod = "delta_e"
	ColorCSI     ColorMethod = "csi"
	ColorCSI2000 ColorMethod = "csi2000"
)

// ParseColorMethod validates a color scoring method name. Empty selects delta_e.
func ParseColorMethod(s string) (ColorMethod, error) {
	switch m := ColorMethod(s); m {
	case ColorDeltaE, ColorCSI, ColorCSI2000:
		return m, nil
	case "":
		return ColorDeltaE, nil
	}
	return "", fmt.Errorf("invalid color scoring method %q (want delta_e, csi or csi2000)", s)
}

// ColorInputs are the color pipeline outputs a scoring method draws on.
type ColorInputs struct {
	MeanDE2000 colorimetry.DeltaE
	CSI        colorimetry.Score
	Overall    Status // status from the point-wise ΔE classification
	CSIGood    float64
	CSIWarn    float64
}

// ColorScore returns the reported color score and status for method.
//
//   - delta_e: score is DeltaEToScore(mean ΔE2000), status is the point-wise
//     overall status
//   - csi: score is the CSI, status from the CSI thresholds
//   - csi2000: the mean of CSI and DeltaEToScore(mean ΔE2000), both already on
//     the 0-100 higher-is-better scale, classified with the CSI thresholds
//
// With insufficient sampling data the delta_e method keeps INSUFFICIENT_DATA.
func ColorScore(method ColorMethod, in ColorInputs) (colorimetry.Score, Status) {
	deScore := colorimetry.DeltaEToScore(in.MeanDE2000)
	switch method {
	case ColorCSI:
		return in.CSI, HigherIsBetter(float64(in.CSI), in.CSIGood, in.CSIWarn)
	case ColorCSI2000:
		if in.Overall == InsufficientData {
			return in.CSI, HigherIsBetter(float64(in.CSI), in.CSIGood, in.CSIWarn)
		}
		s := colorimetry.AverageScores(in.CSI, deScore)
		return s, HigherIsBetter(float64(s), in.CSIGood, in.CSIWarn)
	default:
		if in.Overall == InsufficientData {
			return 0, InsufficientData
		}
		return deScore, in.Overall
	}
}

// PatternMethod selects which pattern metric becomes the reported pattern score.
type PatternMethod string

// Pattern scoring methods. The single-method names match the pattern
// pipeline's method keys.
const (
	PatternAll        PatternMethod = "all"
	PatternSSIM       PatternMethod = "ssim"
	PatternGradient   PatternMethod = "gradient"
	PatternPhase      PatternMethod = "phase"
	PatternStructural PatternMethod = "structural"
)

// ParsePatternMethod validates a pattern scoring method name. Empty selects all.
func ParsePatternMethod(s string) (PatternMethod, error) {
	switch m := PatternMethod(s); m {
	case PatternAll, PatternSSIM, PatternGradient, PatternPhase, PatternStructural:
		return m, nil
	case "":
		return PatternAll, nil
	}
	return "", fmt.Errorf("invalid pattern scoring method %q (want all, ssim, gradient, phase or structural)", s)
}

// PatternInputs are the pattern pipeline outputs a scoring method draws on.
type PatternInputs struct {
	Scores     map[string]float64
	Composite  float64
	Final      Status
	Thresholds map[string]Thresholds
	Global     float64 // composite threshold; fallback cutoffs are Global and Global-15
}

// PatternScore returns the reported pattern score and status for method.
// "all" reports the composite and its final status. A single method reports
// that method's score classified against its own thresholds, falling back to
// the composite when the method was not computed.
func PatternScore(method PatternMethod, in PatternInputs) (colorimetry.Score, Status) {
	if method != PatternAll {
		if v, ok := in.Scores[string(method)]; ok {
			th, ok := in.Thresholds[string(method)]
			if !ok {
				th = Thresholds{Pass: in.Global, Conditional: in.Global - 15}
			}
			return colorimetry.ClampScore(v), HigherIsBetter(v, th.Pass, th.Conditional)
		}
	}
	return colorimetry.ClampScore(in.Composite), in.Final
}

// Methods selects the reported color and pattern scores.
type Methods struct {
	Color   ColorMethod   `json:"color_scoring_method" yaml:"color_scoring_method"`
	Pattern PatternMethod `json:"pattern_scoring_method" yaml:"pattern_scoring_method"`
}

// Normalize validates both methods and fills empty ones with their defaults.
func (m Methods) Normalize() (Methods, error) {
	c, err := ParseColorMethod(string(m.Color))
	if err != nil {
		return m, err
	}
	p, err := ParsePatternMethod(string(m.Pattern))
	if err != nil {
		return m, err
	}
	return Methods{Color: c, Pattern: p}, nil
}

// Overall is the mean of the reported color and pattern scores.
func Overall(color, pattern colorimetry.Score) colorimetry.Score {
	return colorimetry.AverageScores(color, pattern)
}
