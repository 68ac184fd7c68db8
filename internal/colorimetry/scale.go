package colorimetry

import "math"

// DeltaE is a perceptual color difference. Lower is better; it has no upper bound.
type DeltaE float64

// Score is a 0-100 quality value where higher is better (CSI, rescaled ΔE,
// pattern similarity).
type Score float64

// ClampScore limits v to [0, 100]. NaN maps to 0.
func ClampScore(v float64) Score {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return Score(v)
}

// DeltaEToScore rescales a mean ΔE onto the Score scale as 100 - 10·ΔE,
// clamped to [0, 100]. A ΔE of 0 scores 100 and a ΔE of 10 or more scores 0.
func DeltaEToScore(de DeltaE) Score {
	return ClampScore(100 - 10*float64(de))
}

// AverageScores returns the arithmetic mean of scores that share the Score scale.
func AverageScores(scores ...Score) Score {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += float64(s)
	}
	return ClampScore(sum / float64(len(scores)))
}
