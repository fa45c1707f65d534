package scoring

import (
	"time"

	"github.com/adawatch/drep-radar/internal/types"
)

// CategoryScores holds the five scorecard columns plus the overall mean.
type CategoryScores struct {
	Treasury         int `json:"treasury"`
	Decentralization int `json:"decentralization"`
	Security         int `json:"security"`
	Innovation       int `json:"innovation"`
	Transparency     int `json:"transparency"`
	Overall          int `json:"overall"`
}

// Scorecard is one immutable scoring snapshot for a DRep. Snapshots are
// keyed by (DRepID, Epoch) and ordered by CalculatedAt; shift detection
// compares snapshot N to snapshot N-1.
type Scorecard struct {
	DRepID        string         `json:"drep_id"`
	Epoch         int            `json:"epoch"`
	Scores        CategoryScores `json:"scores"`
	VotesAnalyzed int            `json:"votes_analyzed"`
	CalculatedAt  time.Time      `json:"calculated_at"`
}

// BuildScorecard runs the scorers whose preference keys intersect the
// delegator's selection and folds the results into a scorecard. With an
// empty selection every score, including overall, is the neutral 50.
func BuildScorecard(drep types.EnrichedDRep, votes []MatchedVote, selected []types.PreferenceKey, epoch int, now time.Time) Scorecard {
	card := Scorecard{
		DRepID: drep.ID,
		Epoch:  epoch,
		Scores: CategoryScores{
			Treasury:         NeutralScore,
			Decentralization: NeutralScore,
			Security:         NeutralScore,
			Innovation:       NeutralScore,
			Transparency:     NeutralScore,
			Overall:          NeutralScore,
		},
		VotesAnalyzed: countMatched(votes),
		CalculatedAt:  now,
	}

	if len(selected) == 0 {
		return card
	}

	// Fold selected key scores into their categories; two treasury keys
	// may land in the same column, in which case the column is their mean.
	byCategory := make(map[Category][]int)
	for _, key := range selected {
		scorer, ok := Scorers[key]
		if !ok {
			continue
		}
		byCategory[scorer.Category()] = append(byCategory[scorer.Category()], scorer.Score(votes, drep))
	}
	if len(byCategory) == 0 {
		return card
	}

	var active []int
	for cat, scores := range byCategory {
		value := clampScore(roundHalfUp(meanInt(scores)))
		active = append(active, value)
		switch cat {
		case CategoryTreasury:
			card.Scores.Treasury = value
		case CategoryDecentralization:
			card.Scores.Decentralization = value
		case CategorySecurity:
			card.Scores.Security = value
		case CategoryInnovation:
			card.Scores.Innovation = value
		case CategoryTransparency:
			card.Scores.Transparency = value
		}
	}
	card.Scores.Overall = clampScore(roundHalfUp(meanInt(active)))
	return card
}

func countMatched(votes []MatchedVote) int {
	n := 0
	for _, mv := range votes {
		if mv.Proposal != nil {
			n++
		}
	}
	return n
}

// activeCategories returns the scorecard columns a preference selection
// touches, in stable column order.
func activeCategories(selected []types.PreferenceKey) []Category {
	seen := make(map[Category]bool)
	for _, key := range selected {
		if scorer, ok := Scorers[key]; ok {
			seen[scorer.Category()] = true
		}
	}
	var out []Category
	for _, cat := range []Category{CategoryTreasury, CategoryDecentralization, CategorySecurity, CategoryInnovation, CategoryTransparency} {
		if seen[cat] {
			out = append(out, cat)
		}
	}
	return out
}

// Composite reputation pillar weights.
const (
	weightParticipation = 0.30
	weightRationale     = 0.35
	weightReliability   = 0.20
	weightProfile       = 0.15
)

// rationaleCurveMidpoint is where diminishing returns kick in.
const rationaleCurveMidpoint = 60.0

// RationaleCurve applies diminishing returns to the raw rationale rate:
// linear up to the midpoint, then each additional point counts half, so a
// raw 100 curves to 80. Monotonic over [0,100].
func RationaleCurve(rate float64) float64 {
	if rate < 0 {
		return 0
	}
	if rate <= rationaleCurveMidpoint {
		return rate
	}
	curved := rationaleCurveMidpoint + (rate-rationaleCurveMidpoint)*0.5
	if curved > 100 {
		return 100
	}
	return curved
}

// CompositeDRepScore computes the DRep's own reputation score from the
// four weighted pillars. The reliability pillar arrives precomputed from
// the ingestion layer's streak/recency/gap/tenure sub-metrics.
func CompositeDRepScore(drep types.EnrichedDRep) int {
	score := weightParticipation*drep.ParticipationRate +
		weightRationale*RationaleCurve(drep.RationaleRate) +
		weightReliability*drep.ReliabilityScore +
		weightProfile*drep.ProfileCompleteness
	return clampScore(roundHalfUp(score))
}
