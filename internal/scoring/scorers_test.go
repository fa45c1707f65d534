package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adawatch/drep-radar/internal/types"
)

func TestTreasuryConservativeScorer(t *testing.T) {
	scorer := Scorers[types.PrefTreasuryConservative]

	tests := []struct {
		name     string
		votes    []MatchedVote
		expected int
	}{
		{
			name:     "no relevant votes is neutral",
			votes:    nil,
			expected: NeutralScore,
		},
		{
			name: "blocking a major spend scores full marks",
			votes: matchedAgainst(
				[]types.DRepVote{voteOn("d1", "tx1", types.VoteNo, false)},
				treasuryProposal("tx1", 25_000_000),
			),
			expected: 100,
		},
		{
			name: "waving a major spend through scores lowest",
			votes: matchedAgainst(
				[]types.DRepVote{voteOn("d1", "tx1", types.VoteYes, false)},
				treasuryProposal("tx1", 25_000_000),
			),
			expected: 10,
		},
		{
			name: "abstaining is neutral regardless of tier",
			votes: matchedAgainst(
				[]types.DRepVote{voteOn("d1", "tx1", types.VoteAbstain, true)},
				treasuryProposal("tx1", 25_000_000),
			),
			expected: NeutralScore,
		},
		{
			name: "missing withdrawal amount is neutral",
			votes: matchedAgainst(
				[]types.DRepVote{voteOn("d1", "tx1", types.VoteNo, false)},
				treasuryProposal("tx1"),
			),
			expected: NeutralScore,
		},
		{
			name: "mixed record averages per-vote points",
			votes: matchedAgainst(
				[]types.DRepVote{
					voteOn("d1", "tx1", types.VoteNo, false),  // major: 100
					voteOn("d1", "tx2", types.VoteYes, false), // routine: 60
				},
				treasuryProposal("tx1", 25_000_000),
				treasuryProposal("tx2", 1_000),
			),
			expected: 80,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, scorer.Score(tt.votes, types.EnrichedDRep{}))
		})
	}
}

func TestTreasuryGrowthScorer(t *testing.T) {
	scorer := Scorers[types.PrefTreasuryGrowth]

	tests := []struct {
		name     string
		votes    []MatchedVote
		expected int
	}{
		{
			name:     "no relevant votes is neutral",
			votes:    nil,
			expected: NeutralScore,
		},
		{
			name: "reasoned yes on a significant spend scores high",
			votes: matchedAgainst(
				[]types.DRepVote{voteOn("d1", "tx1", types.VoteYes, true)},
				treasuryProposal("tx1", 5_000_000),
			),
			expected: 90,
		},
		{
			name: "reasoned yes on a routine spend scores lower",
			votes: matchedAgainst(
				[]types.DRepVote{voteOn("d1", "tx1", types.VoteYes, true)},
				treasuryProposal("tx1", 1_000),
			),
			expected: 70,
		},
		{
			name: "unexplained yes is penalized",
			votes: matchedAgainst(
				[]types.DRepVote{voteOn("d1", "tx1", types.VoteYes, false)},
				treasuryProposal("tx1", 5_000_000),
			),
			expected: 45,
		},
		{
			name: "unexplained no scores lowest",
			votes: matchedAgainst(
				[]types.DRepVote{voteOn("d1", "tx1", types.VoteNo, false)},
				treasuryProposal("tx1", 25_000_000),
			),
			expected: 20,
		},
		{
			name: "reasoned no is a defensible objection",
			votes: matchedAgainst(
				[]types.DRepVote{voteOn("d1", "tx1", types.VoteNo, true)},
				treasuryProposal("tx1", 25_000_000),
			),
			expected: 40,
		},
		{
			name: "abstain is neutral",
			votes: matchedAgainst(
				[]types.DRepVote{voteOn("d1", "tx1", types.VoteAbstain, false)},
				treasuryProposal("tx1", 5_000_000),
			),
			expected: NeutralScore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, scorer.Score(tt.votes, types.EnrichedDRep{}))
		})
	}
}

func TestDecentralizationScorer(t *testing.T) {
	scorer := Scorers[types.PrefDecentralization]

	tests := []struct {
		name     string
		tier     types.SizeTier
		expected int
	}{
		{name: "small DRep scores highest", tier: types.SizeSmall, expected: 95},
		{name: "medium DRep", tier: types.SizeMedium, expected: 72},
		{name: "large DRep", tier: types.SizeLarge, expected: 45},
		{name: "whale scores lowest", tier: types.SizeWhale, expected: 12},
		{name: "unknown tier is neutral", tier: "", expected: NeutralScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drep := types.EnrichedDRep{SizeTier: tt.tier}
			assert.Equal(t, tt.expected, scorer.Score(nil, drep))
		})
	}
}

func TestSecurityScorer(t *testing.T) {
	scorer := Scorers[types.PrefSecurityFirst]

	t.Run("no relevant votes falls back to habits", func(t *testing.T) {
		drep := types.EnrichedDRep{ParticipationRate: 80, RationaleRate: 50}
		// 0.6*80 + 0.4*50 = 68
		assert.Equal(t, 68, scorer.Score(nil, drep))
	})

	t.Run("vote evidence blends with habits", func(t *testing.T) {
		drep := types.EnrichedDRep{ParticipationRate: 80, RationaleRate: 50}
		votes := matchedAgainst(
			[]types.DRepVote{voteOn("d1", "tx1", types.VoteNo, true)},
			proposalOfType("tx1", types.ProposalParameterChange),
		)
		// vote points: 85 + 10 rationale bonus = 95
		// 0.6*95 + 0.4*68 = 84.2 -> 84
		assert.Equal(t, 84, scorer.Score(votes, drep))
	})

	t.Run("yes on a protocol change scores low", func(t *testing.T) {
		drep := types.EnrichedDRep{ParticipationRate: 0, RationaleRate: 0}
		votes := matchedAgainst(
			[]types.DRepVote{voteOn("d1", "tx1", types.VoteYes, false)},
			proposalOfType("tx1", types.ProposalHardForkInitiation),
		)
		// 0.6*40 + 0.4*0 = 24
		assert.Equal(t, 24, scorer.Score(votes, drep))
	})

	t.Run("abstain counts as caution", func(t *testing.T) {
		drep := types.EnrichedDRep{ParticipationRate: 100, RationaleRate: 100}
		votes := matchedAgainst(
			[]types.DRepVote{voteOn("d1", "tx1", types.VoteAbstain, false)},
			proposalOfType("tx1", types.ProposalNoConfidence),
		)
		// 0.6*70 + 0.4*100 = 82
		assert.Equal(t, 82, scorer.Score(votes, drep))
	})
}

func TestInnovationScorer(t *testing.T) {
	scorer := Scorers[types.PrefInnovation]

	infoInnovation := proposalOfType("tx1", types.ProposalInfoAction)
	infoInnovation.Meta = &types.ProposalMetadata{Title: "DeFi liquidity program"}

	t.Run("no relevant votes uses participation floor", func(t *testing.T) {
		drep := types.EnrichedDRep{ParticipationRate: 60}
		// 60*0.5 + 25 = 55
		assert.Equal(t, 55, scorer.Score(nil, drep))
	})

	t.Run("all yes on innovation proposals", func(t *testing.T) {
		drep := types.EnrichedDRep{ParticipationRate: 60}
		votes := matchedAgainst(
			[]types.DRepVote{voteOn("d1", "tx1", types.VoteYes, false)},
			infoInnovation,
		)
		// 60*0.5 + 1.0*100*0.5 = 80
		assert.Equal(t, 80, scorer.Score(votes, drep))
	})

	t.Run("half yes halves the vote half", func(t *testing.T) {
		second := proposalOfType("tx2", types.ProposalHardForkInitiation)
		drep := types.EnrichedDRep{ParticipationRate: 60}
		votes := matchedAgainst(
			[]types.DRepVote{
				voteOn("d1", "tx1", types.VoteYes, false),
				voteOn("d1", "tx2", types.VoteNo, false),
			},
			infoInnovation, second,
		)
		// 60*0.5 + 0.5*100*0.5 = 55
		assert.Equal(t, 55, scorer.Score(votes, drep))
	})
}

func TestTransparencyScorer(t *testing.T) {
	scorer := Scorers[types.PrefResponsibleGov]

	tests := []struct {
		name          string
		rationaleRate float64
		expected      int
	}{
		{name: "passes the rationale rate through", rationaleRate: 75, expected: 75},
		{name: "rounds half up", rationaleRate: 66.5, expected: 67},
		{name: "zero rate", rationaleRate: 0, expected: 0},
		{name: "full rate", rationaleRate: 100, expected: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drep := types.EnrichedDRep{RationaleRate: tt.rationaleRate}
			assert.Equal(t, tt.expected, scorer.Score(nil, drep))
		})
	}
}

func TestScorers_RegistryCoversAllKeys(t *testing.T) {
	for _, key := range types.AllPreferenceKeys {
		scorer, ok := Scorers[key]
		assert.True(t, ok, "missing scorer for %s", key)
		assert.Equal(t, key, scorer.Key())
	}
}
