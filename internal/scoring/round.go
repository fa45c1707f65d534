package scoring

import "math"

// NeutralScore is the defined fallback when a scorer has no evidence to
// work with. Insufficient data is never an error.
const NeutralScore = 50

// roundHalfUp is the single rounding rule shared by every scorer so that
// snapshots from different passes stay comparable.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// clampScore forces an integer score into [0,100].
func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// meanInt averages integer scores. Callers guarantee len(xs) > 0.
func meanInt(xs []int) float64 {
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}
