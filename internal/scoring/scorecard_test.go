package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adawatch/drep-radar/internal/types"
)

func TestBuildScorecard_EmptySelectionIsAllNeutral(t *testing.T) {
	drep := types.EnrichedDRep{ID: "drep1", ParticipationRate: 90, RationaleRate: 90}
	votes := matchedAgainst(
		[]types.DRepVote{voteOn("drep1", "tx1", types.VoteNo, true)},
		treasuryProposal("tx1", 25_000_000),
	)

	card := BuildScorecard(drep, votes, nil, 540, testTime)

	assert.Equal(t, NeutralScore, card.Scores.Treasury)
	assert.Equal(t, NeutralScore, card.Scores.Decentralization)
	assert.Equal(t, NeutralScore, card.Scores.Security)
	assert.Equal(t, NeutralScore, card.Scores.Innovation)
	assert.Equal(t, NeutralScore, card.Scores.Transparency)
	assert.Equal(t, NeutralScore, card.Scores.Overall)
	assert.Equal(t, 1, card.VotesAnalyzed)
	assert.Equal(t, 540, card.Epoch)
}

func TestBuildScorecard_TreasuryKeysShareOneColumn(t *testing.T) {
	drep := types.EnrichedDRep{ID: "drep1", RationaleRate: 75}
	votes := matchedAgainst(
		[]types.DRepVote{voteOn("drep1", "tx1", types.VoteNo, false)},
		treasuryProposal("tx1", 25_000_000),
	)

	selected := []types.PreferenceKey{
		types.PrefTreasuryConservative,
		types.PrefTreasuryGrowth,
		types.PrefResponsibleGov,
	}
	card := BuildScorecard(drep, votes, selected, 540, testTime)

	// conservative scores 100 on the blocked major spend, growth scores 20
	// for the unexplained No; the shared column is their mean.
	assert.Equal(t, 60, card.Scores.Treasury)
	assert.Equal(t, 75, card.Scores.Transparency)

	// Unselected categories stay neutral and out of the overall.
	assert.Equal(t, NeutralScore, card.Scores.Decentralization)
	assert.Equal(t, NeutralScore, card.Scores.Security)
	assert.Equal(t, NeutralScore, card.Scores.Innovation)

	// mean(60, 75) = 67.5 rounds half up.
	assert.Equal(t, 68, card.Scores.Overall)
}

func TestBuildScorecard_SingleCategory(t *testing.T) {
	drep := types.EnrichedDRep{ID: "drep1", SizeTier: types.SizeWhale}

	card := BuildScorecard(drep, nil, []types.PreferenceKey{types.PrefDecentralization}, 540, testTime)

	assert.Equal(t, 12, card.Scores.Decentralization)
	assert.Equal(t, 12, card.Scores.Overall)
	assert.Equal(t, 0, card.VotesAnalyzed)
}

func TestBuildScorecard_UnmatchedVotesNotCounted(t *testing.T) {
	drep := types.EnrichedDRep{ID: "drep1"}
	votes := matchedAgainst(
		[]types.DRepVote{
			voteOn("drep1", "tx1", types.VoteYes, false),
			voteOn("drep1", "tx-unknown", types.VoteYes, false),
		},
		treasuryProposal("tx1", 1_000),
	)

	card := BuildScorecard(drep, votes, []types.PreferenceKey{types.PrefTreasuryConservative}, 540, testTime)
	assert.Equal(t, 1, card.VotesAnalyzed)
}

func TestRationaleCurve(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		expected float64
	}{
		{name: "zero stays zero", rate: 0, expected: 0},
		{name: "linear below the midpoint", rate: 40, expected: 40},
		{name: "exact midpoint", rate: 60, expected: 60},
		{name: "half credit above the midpoint", rate: 80, expected: 70},
		{name: "full rate curves to eighty", rate: 100, expected: 80},
		{name: "negative clamps to zero", rate: -5, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, RationaleCurve(tt.rate), 0.0001)
		})
	}
}

func TestRationaleCurve_Monotonic(t *testing.T) {
	prev := RationaleCurve(0)
	for rate := 1.0; rate <= 100; rate++ {
		curr := RationaleCurve(rate)
		assert.GreaterOrEqual(t, curr, prev, "curve dipped at %v", rate)
		prev = curr
	}
}

func TestCompositeDRepScore(t *testing.T) {
	tests := []struct {
		name     string
		drep     types.EnrichedDRep
		expected int
	}{
		{
			name:     "all zero",
			drep:     types.EnrichedDRep{},
			expected: 0,
		},
		{
			name: "perfect pillars cap at the curved rationale",
			drep: types.EnrichedDRep{
				ParticipationRate:   100,
				RationaleRate:       100,
				ReliabilityScore:    100,
				ProfileCompleteness: 100,
			},
			// 0.30*100 + 0.35*80 + 0.20*100 + 0.15*100 = 93
			expected: 93,
		},
		{
			name: "weighted mix",
			drep: types.EnrichedDRep{
				ParticipationRate:   100,
				RationaleRate:       100,
				ReliabilityScore:    50,
				ProfileCompleteness: 100,
			},
			// 30 + 28 + 10 + 15 = 83
			expected: 83,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CompositeDRepScore(tt.drep))
		})
	}
}
