// Package recommend turns analysis metrics into findings and a conclusion
// for the operator.
package recommend

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/textile-qc-mcp/internal/colorqc"
	"github.com/ironsheep/textile-qc-mcp/internal/scoring"
)

// Level places a metric relative to its thresholds.
type Level string

// Levels, best first.
const (
	Excellent Level = "excellent"
	Good      Level = "good"
	Marginal  Level = "marginal"
	Poor      Level = "poor"
)

// Outcome is the conclusion of a set of findings. Comparisons conclude
// pass, conditional or fail; single-image analyses conclude good, warn or
// poor.
type Outcome string

// Outcomes.
const (
	OutcomePass        Outcome = "pass"
	OutcomeConditional Outcome = "conditional"
	OutcomeFail        Outcome = "fail"
	OutcomeGood        Outcome = "good"
	OutcomeWarn        Outcome = "warn"
	OutcomePoor        Outcome = "poor"
)

// Finding is one assessed metric.
type Finding struct {
	Metric         string `json:"metric"`
	Value          string `json:"value"`
	Evaluation     string `json:"evaluation"`
	Recommendation string `json:"recommendation"`
	Level          Level  `json:"level"`
}

// Summary is the full set of findings with a conclusion.
type Summary struct {
	Findings   []Finding `json:"findings"`
	Conclusion string    `json:"conclusion"`
	Status     Outcome   `json:"status"`
}

// RelativePosition grades value against pass and cond. A zero cond defaults
// to 0.7·pass when higher is better and 2.5·pass otherwise.
//
// Higher is better: excellent at or above pass, good at or above the
// midpoint of pass and cond, marginal at or above cond. Lower is better:
// excellent up to half of pass, good up to pass, marginal up to cond.
func RelativePosition(value, pass, cond float64, higherIsBetter bool) Level {
	if cond == 0 {
		if higherIsBetter {
			cond = pass * 0.7
		} else {
			cond = pass * 2.5
		}
	}

	if higherIsBetter {
		switch {
		case value >= pass:
			return Excellent
		case value >= (pass+cond)/2:
			return Good
		case value >= cond:
			return Marginal
		default:
			return Poor
		}
	}
	switch {
	case value <= pass*0.5:
		return Excellent
	case value <= pass:
		return Good
	case value <= cond:
		return Marginal
	default:
		return Poor
	}
}

// ColorInput carries the color metrics and thresholds to assess.
type ColorInput struct {
	MeanDE2000  float64
	DEValues    []float64
	CSI         float64
	Pass        float64
	Conditional float64
	CSIGood     float64
	CSIWarn     float64
}

// ForColor assesses mean ΔE2000, point-to-point consistency and the CSI.
// Consistency is reported only with more than one point. Without any sampled
// point only the CSI is assessed and the outcome is at best conditional.
func ForColor(in ColorInput) Summary {
	var s Summary
	sampled := len(in.DEValues) > 0

	de := RelativePosition(in.MeanDE2000, in.Pass, in.Conditional, false)
	evalKey := map[Level]string{Excellent: "de_imperceptible", Good: "de_slight", Marginal: "de_noticeable"}[de]
	recKey := map[Level]string{Excellent: "de_rec_none", Good: "de_rec_acceptable", Marginal: "de_rec_check_dye"}[de]
	if de == Poor {
		evalKey, recKey = "de_severe", "de_rec_reject"
		if in.MeanDE2000 <= in.Conditional*2 {
			evalKey, recKey = "de_significant", "de_rec_investigate"
		}
	}
	if sampled {
		s.add("mean_delta_e", fmt.Sprintf("%.2f", in.MeanDE2000), evalKey, recKey, de)
	}

	if len(in.DEValues) > 1 {
		_, std := stat.PopMeanStdDev(in.DEValues, nil)
		switch {
		case std <= in.Pass*0.25:
			s.add("consistency", fmt.Sprintf("%.2f", std), "std_excellent", "std_rec_stable", Excellent)
		case std <= in.Pass*0.5:
			s.add("consistency", fmt.Sprintf("%.2f", std), "std_good", "std_rec_stable", Good)
		case std <= in.Pass:
			s.add("consistency", fmt.Sprintf("%.2f", std), "std_moderate", "std_rec_monitor", Marginal)
		default:
			s.add("consistency", fmt.Sprintf("%.2f", std), "std_high", "std_rec_check", Poor)
		}
	}

	csi := RelativePosition(in.CSI, in.CSIGood, in.CSIWarn, true)
	s.add("csi_score", fmt.Sprintf("%.2f", in.CSI), "csi_"+string(csi), map[Level]string{
		Excellent: "csi_rec_approved",
		Good:      "csi_rec_conditional",
		Marginal:  "csi_rec_review",
		Poor:      "csi_rec_reject",
	}[csi], csi)

	switch {
	case !sampled && csi == Poor:
		s.conclude(OutcomeFail)
	case !sampled:
		s.conclude(OutcomeConditional)
	case csi == Excellent && (de == Excellent || de == Good):
		s.conclude(OutcomePass)
	case csi == Poor || de == Poor:
		s.conclude(OutcomeFail)
	default:
		s.conclude(OutcomeConditional)
	}
	return s
}

// compositeCondRatio sets the composite's conditional cutoff relative to the
// global threshold.
const compositeCondRatio = 0.85

// methodOrder breaks ties when picking the weakest method.
var methodOrder = []string{"ssim", "gradient", "phase", "structural"}

// ForPattern assesses the composite score, the structural similarity when
// present and the weakest method when it falls below its pass threshold.
// Methods without thresholds use global as their pass cutoff.
func ForPattern(composite float64, scores map[string]float64, structural *float64,
	global float64, thresholds map[string]scoring.Thresholds) Summary {

	var s Summary

	comp := RelativePosition(composite, global, global*compositeCondRatio, true)
	s.add("composite_score", fmt.Sprintf("%.1f%%", composite), "comp_"+string(comp), map[Level]string{
		Excellent: "comp_rec_optimal",
		Good:      "comp_rec_monitor",
		Marginal:  "comp_rec_calibrate",
		Poor:      "comp_rec_stop",
	}[comp], comp)

	if structural != nil {
		ss := *structural
		v := fmt.Sprintf("%.2f%%", ss)
		switch {
		case ss >= 99.5:
			s.add("structural_match", v, "struct_identical", "struct_rec_none", Excellent)
		case ss >= 97:
			s.add("structural_match", v, "struct_minor", "struct_rec_tension", Good)
		case ss >= 90:
			s.add("structural_match", v, "struct_moderate", "struct_rec_inspect", Marginal)
		default:
			s.add("structural_match", v, "struct_severe", "struct_rec_overhaul", Poor)
		}
	}

	if name, worst, ok := weakest(scores); ok {
		pass := global
		if th, ok := thresholds[name]; ok {
			pass = th.Pass
		}
		if worst < pass {
			s.Findings = append(s.Findings, Finding{
				Metric:         text("worst_metric") + ": " + name,
				Value:          fmt.Sprintf("%.1f%%", worst),
				Evaluation:     text("worst_below_pass"),
				Recommendation: text("worst_rec"),
				Level:          Poor,
			})
		}
	}

	switch comp {
	case Excellent:
		s.conclude(OutcomePass)
	case Poor:
		s.conclude(OutcomeFail)
	default:
		s.conclude(OutcomeConditional)
	}
	return s
}

// weakest returns the lowest-scoring method. Ties go to the earlier method in
// pipeline order, then to the alphabetically first name.
func weakest(scores map[string]float64) (string, float64, bool) {
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	rank := func(name string) int {
		for i, m := range methodOrder {
			if m == name {
				return i
			}
		}
		return len(methodOrder)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := rank(names[i]), rank(names[j])
		if ri != rj {
			return ri < rj
		}
		return names[i] < names[j]
	})

	best, worst := "", math.Inf(1)
	for _, name := range names {
		if v := scores[name]; v < worst {
			best, worst = name, v
		}
	}
	return best, worst, best != ""
}

// ForSingle assesses lightness, chroma spread, uniformity and channel
// balance of single-image measurements. Fewer than two measurements yield no
// findings and a good outcome.
func ForSingle(ms []colorqc.Measurement) Summary {
	var s Summary
	if len(ms) < 2 {
		s.conclude(OutcomeGood)
		return s
	}

	res := &colorqc.SingleResult{Measurements: ms}
	sum := colorqc.Summarize(res.Labs(), res.RGBs())

	lum := fmt.Sprintf("%.1f", sum.MeanL)
	switch {
	case sum.MeanL > 75:
		s.add("luminance", lum, "lum_bright", "lum_rec_bright", Marginal)
	case sum.MeanL > 35:
		s.add("luminance", lum, "lum_medium", "lum_rec_medium", Good)
	default:
		s.add("luminance", lum, "lum_dark", "lum_rec_dark", Marginal)
	}

	chroma := fmt.Sprintf("%.2f", sum.StdChroma)
	switch {
	case sum.StdChroma < 2:
		s.add("chroma", chroma, "chroma_narrow", "chroma_rec_uniform", Excellent)
	case sum.StdChroma < 5:
		s.add("chroma", chroma, "chroma_moderate", "chroma_rec_monitor", Marginal)
	default:
		s.add("chroma", chroma, "chroma_wide", "chroma_rec_investigate", Poor)
	}

	unif := fmt.Sprintf("%.2f", sum.StdL)
	switch {
	case sum.StdL < 2:
		s.add("color_uniformity", unif, "uniformity_excellent", "uniformity_rec_ok", Excellent)
	case sum.StdL < 5:
		s.add("color_uniformity", unif, "uniformity_good", "uniformity_rec_check", Marginal)
	default:
		s.add("color_uniformity", unif, "uniformity_poor", "uniformity_rec_fix", Poor)
	}

	rgb := sum.MeanRGB
	dom := map[string]float64{"R": rgb[0], "G": rgb[1], "B": rgb[2]}[sum.DominantChannel]
	s.Findings = append(s.Findings, Finding{
		Metric: text("dominant_channel"),
		Value:  fmt.Sprintf("%s (%.0f)", sum.DominantChannel, dom),
		Evaluation: fmt.Sprintf("Dominant channel is %s (%.0f/255). RGB balance: R=%.0f, G=%.0f, B=%.0f.",
			sum.DominantChannel, dom, rgb[0], rgb[1], rgb[2]),
		Recommendation: text("dominant_rec"),
		Level:          Good,
	})

	issues := spreadIssues(sum.StdL) + spreadIssues(sum.StdChroma)
	switch {
	case issues == 0:
		s.conclude(OutcomeGood)
	case issues <= 2:
		s.conclude(OutcomeWarn)
	default:
		s.conclude(OutcomePoor)
	}
	return s
}

// spreadIssues scores a deviation: 0 below 2, 1 below 5, else 2.
func spreadIssues(std float64) int {
	switch {
	case std >= 5:
		return 2
	case std >= 2:
		return 1
	default:
		return 0
	}
}

func (s *Summary) add(metric, value, evalKey, recKey string, level Level) {
	s.Findings = append(s.Findings, Finding{
		Metric:         text(metric),
		Value:          value,
		Evaluation:     text(evalKey),
		Recommendation: text(recKey),
		Level:          level,
	})
}

func (s *Summary) conclude(o Outcome) {
	s.Status = o
	switch o {
	case OutcomeGood, OutcomeWarn, OutcomePoor:
		s.Conclusion = text("conclusion_single_" + string(o))
	default:
		s.Conclusion = text("conclusion_" + string(o))
	}
}
