package colorqc

import (
	"log"
	"strings"

	"github.com/ironsheep/textile-qc-mcp/internal/colorimetry"
	"github.com/ironsheep/textile-qc-mcp/internal/scoring"
)

// Illuminant analysis classifies its CSI with fixed cutoffs.
const (
	illuminantGood = 90.0
	illuminantWarn = 70.0
)

// IlluminantResult is the color agreement under one test illuminant.
type IlluminantResult struct {
	Illuminant colorimetry.Illuminant `json:"illuminant"`
	MeanDE2000 colorimetry.DeltaE     `json:"mean_de00"`
	CSI        colorimetry.Score      `json:"csi"`
	Status     scoring.Status         `json:"status"`
}

// AnalyzeIlluminants re-evaluates the sampled points under each test
// illuminant. The primary illuminant reuses the canonical mean ΔE2000 and CSI.
// Others adapt both sides' XYZ with Bradford, convert to Lab against the
// target white and average ΔE2000; that mean is rescaled with DeltaEToScore.
// Names without a tabulated white point are skipped.
func AnalyzeIlluminants(points []PointResult, primary colorimetry.Illuminant, tests []colorimetry.Illuminant,
	meanDE colorimetry.DeltaE, csi colorimetry.Score) []IlluminantResult {

	results := make([]IlluminantResult, 0, len(tests))
	for _, name := range tests {
		ill := colorimetry.Illuminant(strings.TrimSpace(string(name)))
		if !ill.Known() {
			log.Printf("colorqc: skipping unknown test illuminant %q", name)
			continue
		}

		res := IlluminantResult{Illuminant: ill}
		if ill == primary {
			res.MeanDE2000 = meanDE
			res.CSI = csi
		} else {
			var sum float64
			for _, p := range points {
				ref := colorimetry.LabUnder(p.Ref.XYZ, ill)
				sam := colorimetry.LabUnder(p.Sample.XYZ, ill)
				sum += float64(colorimetry.DeltaE2000(ref, sam))
			}
			if len(points) > 0 {
				res.MeanDE2000 = colorimetry.DeltaE(sum / float64(len(points)))
			}
			res.CSI = colorimetry.DeltaEToScore(res.MeanDE2000)
		}
		res.Status = scoring.HigherIsBetter(float64(res.CSI), illuminantGood, illuminantWarn)
		results = append(results, res)
	}
	return results
}
