package scoring

import "github.com/adawatch/drep-radar/internal/types"

// ShiftThreshold is the overall-score delta at or below which a shift is
// reported. This is a degradation detector: positive movement and small
// negative movement are never reported.
const ShiftThreshold = -8

// categoryShiftFloor is the per-category delta magnitude considered
// notable enough to include in the report.
const categoryShiftFloor = 5

// CategoryShift records material movement in one scorecard column.
type CategoryShift struct {
	Category Category `json:"category"`
	Previous int      `json:"previous"`
	Current  int      `json:"current"`
	Delta    int      `json:"delta"`
}

// AlignmentShift reports material negative movement between two scorecard
// snapshots for the same DRep. Exists only transiently as detector output.
type AlignmentShift struct {
	DRepID          string          `json:"drep_id"`
	DRepName        string          `json:"drep_name"`
	PreviousOverall int             `json:"previous_overall"`
	CurrentOverall  int             `json:"current_overall"`
	Delta           int             `json:"delta"`
	CategoryShifts  []CategoryShift `json:"category_shifts"`
}

// DetectShift compares the current scorecard against the previous
// snapshot. Returns nil when there is no previous snapshot or when the
// overall delta stays above the threshold.
func DetectShift(prev *Scorecard, curr Scorecard, drepName string, selected []types.PreferenceKey) *AlignmentShift {
	if prev == nil {
		return nil
	}

	delta := curr.Scores.Overall - prev.Scores.Overall
	if delta > ShiftThreshold {
		return nil
	}

	scope := activeCategories(selected)
	if len(scope) == 0 {
		scope = []Category{CategoryTreasury, CategoryDecentralization, CategorySecurity, CategoryInnovation, CategoryTransparency}
	}

	var shifts []CategoryShift
	for _, cat := range scope {
		prevScore := categoryScore(prev.Scores, cat)
		currScore := categoryScore(curr.Scores, cat)
		d := currScore - prevScore
		if d >= categoryShiftFloor || d <= -categoryShiftFloor {
			shifts = append(shifts, CategoryShift{
				Category: cat,
				Previous: prevScore,
				Current:  currScore,
				Delta:    d,
			})
		}
	}

	return &AlignmentShift{
		DRepID:          curr.DRepID,
		DRepName:        drepName,
		PreviousOverall: prev.Scores.Overall,
		CurrentOverall:  curr.Scores.Overall,
		Delta:           delta,
		CategoryShifts:  shifts,
	}
}

func categoryScore(s CategoryScores, cat Category) int {
	switch cat {
	case CategoryTreasury:
		return s.Treasury
	case CategoryDecentralization:
		return s.Decentralization
	case CategorySecurity:
		return s.Security
	case CategoryInnovation:
		return s.Innovation
	case CategoryTransparency:
		return s.Transparency
	default:
		return NeutralScore
	}
}
