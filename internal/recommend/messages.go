package recommend

// messages holds the English finding texts by key.
var messages = map[string]string{
	"mean_delta_e":     "Mean ΔE2000",
	"consistency":      "Consistency (Std Dev)",
	"csi_score":        "CSI Score",
	"composite_score":  "Composite Score",
	"structural_match": "Structural Match",
	"worst_metric":     "Weakest Metric",
	"luminance":        "Luminance (L*)",
	"chroma":           "Chroma Spread",
	"color_uniformity": "Color Uniformity",
	"dominant_channel": "Dominant Channel",

	"de_imperceptible":   "Imperceptible difference: within instrument noise.",
	"de_slight":          "Slight difference: visible only under controlled lighting.",
	"de_noticeable":      "Noticeable difference: perceptible to trained observers.",
	"de_significant":     "Significant mismatch: clearly visible to the naked eye.",
	"de_severe":          "Severe mismatch: unacceptable color deviation.",
	"de_rec_none":        "No action required. Process is optimal.",
	"de_rec_acceptable":  "Acceptable for most applications. Continue monitoring.",
	"de_rec_check_dye":   "Review dye concentration, temperature, and timing parameters.",
	"de_rec_investigate": "Investigate root cause. Check raw material batch and process variables.",
	"de_rec_reject":      "Reject batch and initiate corrective action procedure.",

	"std_excellent":   "Excellent uniformity: highly consistent across all regions.",
	"std_good":        "Good uniformity: minor regional variations within tolerance.",
	"std_moderate":    "Moderate variation: some regions deviate noticeably.",
	"std_high":        "High variation: significant inconsistency across sample.",
	"std_rec_stable":  "Process is stable. Maintain current parameters.",
	"std_rec_monitor": "Monitor uniformity. Check application equipment calibration.",
	"std_rec_check":   "Check application evenness, roller pressure, and dye bath circulation.",

	"csi_excellent":       "Excellent color match: meets or exceeds quality standard.",
	"csi_good":            "Good match: within acceptable production tolerance.",
	"csi_marginal":        "Marginal match: at the boundary of acceptable limits.",
	"csi_poor":            "Poor match: below minimum quality threshold.",
	"csi_rec_approved":    "Approved. Proceed with production.",
	"csi_rec_conditional": "Conditional approval. Increase inspection frequency.",
	"csi_rec_review":      "Requires supervisory review before proceeding.",
	"csi_rec_reject":      "Reject. Do not proceed without corrective measures.",

	"comp_excellent":     "Excellent structural alignment: pattern integrity preserved.",
	"comp_good":          "Good alignment: minor deviations within production tolerance.",
	"comp_marginal":      "Marginal alignment: approaching quality limits.",
	"comp_poor":          "Poor alignment: significant pattern deviation detected.",
	"comp_rec_optimal":   "Process is optimal. No corrective action needed.",
	"comp_rec_monitor":   "Monitor production line. Schedule preventive maintenance.",
	"comp_rec_calibrate": "Calibrate alignment sensors and verify fabric feed tension.",
	"comp_rec_stop":      "Stop production. Perform full machine calibration and inspection.",

	"struct_identical":    "Structurally identical: no geometric distortion detected.",
	"struct_minor":        "Minor structural deviation: within acceptable range.",
	"struct_moderate":     "Moderate distortion: visible pattern shift or stretch.",
	"struct_severe":       "Severe distortion: significant layout deformation.",
	"struct_rec_none":     "No layout issues. Fabric handling is consistent.",
	"struct_rec_tension":  "Check fabric tension and roller alignment.",
	"struct_rec_inspect":  "Inspect weaving/knitting parameters and fabric feed mechanism.",
	"struct_rec_overhaul": "Full mechanical overhaul required. Check loom/knitting machine setup.",

	"worst_below_pass": "Below pass threshold: this metric is the primary quality limiter.",
	"worst_rec":        "Focus improvement efforts on this metric first.",

	"lum_bright":     "High luminance: sample appears bright/light.",
	"lum_medium":     "Medium luminance: standard mid-tone range.",
	"lum_dark":       "Low luminance: sample appears dark/deep.",
	"lum_rec_bright": "Verify lightness is intentional. Check for over-bleaching or under-dyeing.",
	"lum_rec_medium": "Luminance within expected range. No action needed.",
	"lum_rec_dark":   "Verify darkness is intentional. Check for over-dyeing or insufficient rinsing.",

	"chroma_narrow":          "Narrow chroma spread: color is highly uniform.",
	"chroma_moderate":        "Moderate chroma spread: acceptable color variation.",
	"chroma_wide":            "Wide chroma spread: significant color variation across sample.",
	"chroma_rec_uniform":     "Color distribution is consistent. Process is well-controlled.",
	"chroma_rec_monitor":     "Monitor dye distribution. Check for uneven application.",
	"chroma_rec_investigate": "Investigate dye bath uniformity and fabric preparation consistency.",

	"uniformity_excellent": "Excellent color uniformity across all sampling points.",
	"uniformity_good":      "Good uniformity: minor point-to-point variation.",
	"uniformity_poor":      "Poor uniformity: significant variation between sampling points.",
	"uniformity_rec_ok":    "Dyeing process is consistent. Maintain current parameters.",
	"uniformity_rec_check": "Check dye penetration and fabric absorbency uniformity.",
	"uniformity_rec_fix":   "Significant non-uniformity. Review entire dyeing process chain.",

	"dominant_rec": "Verify color balance matches target specification.",

	"conclusion_pass":        "Sample meets all quality standards within the defined tolerances. Approved for production.",
	"conclusion_conditional": "Sample is near quality limits. Conditional approval granted; increased monitoring and secondary verification recommended.",
	"conclusion_fail":        "Sample does not meet the required quality standards. Reject and initiate root cause analysis before re-processing.",

	"conclusion_single_good": "Sample color properties are within normal ranges. Suitable for further processing or comparison.",
	"conclusion_single_warn": "Some color properties show notable variation. Manual review recommended before proceeding.",
	"conclusion_single_poor": "Significant color non-uniformity detected. Investigate dyeing process before using this batch.",
}

// text returns the message for key, or the key itself when none exists.
func text(key string) string {
	if m, ok := messages[key]; ok {
		return m
	}
	return key
}
