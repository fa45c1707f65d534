package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adawatch/drep-radar/internal/types"
)

func TestEvaluateVoteAlignment(t *testing.T) {
	allPrefs := types.AllPreferenceKeys

	tests := []struct {
		name      string
		proposal  types.RawProposal
		choice    types.VoteChoice
		rationale bool
		selected  []types.PreferenceKey
		expected  AlignmentStatus
	}{
		{
			name:     "conservative delegator sees No on a spend as aligned",
			proposal: treasuryProposal("tx1", 25_000_000),
			choice:   types.VoteNo,
			selected: []types.PreferenceKey{types.PrefTreasuryConservative},
			expected: StatusAligned,
		},
		{
			name:     "conservative delegator sees Yes on a spend as unaligned",
			proposal: treasuryProposal("tx1", 25_000_000),
			choice:   types.VoteYes,
			selected: []types.PreferenceKey{types.PrefTreasuryConservative},
			expected: StatusUnaligned,
		},
		{
			name:      "growth delegator requires a rationale behind Yes",
			proposal:  treasuryProposal("tx1", 5_000_000),
			choice:    types.VoteYes,
			rationale: true,
			selected:  []types.PreferenceKey{types.PrefTreasuryGrowth},
			expected:  StatusAligned,
		},
		{
			name:     "growth delegator sees unexplained Yes as unaligned",
			proposal: treasuryProposal("tx1", 5_000_000),
			choice:   types.VoteYes,
			selected: []types.PreferenceKey{types.PrefTreasuryGrowth},
			expected: StatusUnaligned,
		},
		{
			name:     "security delegator sees caution as aligned",
			proposal: proposalOfType("tx1", types.ProposalParameterChange),
			choice:   types.VoteAbstain,
			selected: []types.PreferenceKey{types.PrefSecurityFirst},
			expected: StatusAligned,
		},
		{
			name:     "security delegator is neutral on Yes",
			proposal: proposalOfType("tx1", types.ProposalParameterChange),
			choice:   types.VoteYes,
			selected: []types.PreferenceKey{types.PrefSecurityFirst},
			expected: StatusNeutral,
		},
		{
			name:      "responsible governance rewards any published rationale",
			proposal:  proposalOfType("tx1", types.ProposalNewConstitution),
			choice:    types.VoteYes,
			rationale: true,
			selected:  []types.PreferenceKey{types.PrefResponsibleGov},
			expected:  StatusAligned,
		},
		{
			name:     "responsible governance flags a silent vote",
			proposal: proposalOfType("tx1", types.ProposalNewCommittee),
			choice:   types.VoteNo,
			selected: []types.PreferenceKey{types.PrefResponsibleGov},
			expected: StatusUnaligned,
		},
		{
			name:     "no overlap between selection and proposal is neutral",
			proposal: treasuryProposal("tx1", 5_000_000),
			choice:   types.VoteNo,
			selected: []types.PreferenceKey{types.PrefInnovation},
			expected: StatusNeutral,
		},
		{
			name:     "empty selection is neutral",
			proposal: treasuryProposal("tx1", 5_000_000),
			choice:   types.VoteNo,
			selected: nil,
			expected: StatusNeutral,
		},
		{
			name:     "aligned plus neutral resolves to aligned",
			proposal: treasuryProposal("tx1", 25_000_000),
			choice:   types.VoteNo,
			selected: allPrefs,
			expected: StatusAligned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			votes := matchedAgainst(
				[]types.DRepVote{voteOn("d1", tt.proposal.TxHash, tt.choice, tt.rationale)},
				tt.proposal,
			)
			require.Len(t, votes, 1)

			verdict := EvaluateVoteAlignment(VoteContextFrom(votes[0]), tt.selected)
			assert.Equal(t, tt.expected, verdict.Status)
			assert.NotNil(t, verdict.Reasons)
		})
	}
}

func TestEvaluateVoteAlignment_UnalignedWins(t *testing.T) {
	// Yes with rationale on a major spend: treasury-growth reads it as
	// aligned, treasury-conservative as unaligned. Disagreement surfaces.
	votes := matchedAgainst(
		[]types.DRepVote{voteOn("d1", "tx1", types.VoteYes, true)},
		treasuryProposal("tx1", 25_000_000),
	)

	verdict := EvaluateVoteAlignment(VoteContextFrom(votes[0]), []types.PreferenceKey{
		types.PrefTreasuryConservative,
		types.PrefTreasuryGrowth,
	})

	assert.Equal(t, StatusUnaligned, verdict.Status)
	assert.Len(t, verdict.Reasons, 2)
}

func TestEvaluateVoteAlignment_UnmatchedVoteIsNeutral(t *testing.T) {
	votes := MatchVotes([]types.DRepVote{voteOn("d1", "tx-unknown", types.VoteYes, false)}, nil)

	verdict := EvaluateVoteAlignment(VoteContextFrom(votes[0]), types.AllPreferenceKeys)
	assert.Equal(t, StatusNeutral, verdict.Status)
	assert.Empty(t, verdict.Reasons)
}

func TestEvaluateVoteAlignment_ReasonsMentionSpendTier(t *testing.T) {
	votes := matchedAgainst(
		[]types.DRepVote{voteOn("d1", "tx1", types.VoteNo, false)},
		treasuryProposal("tx1", 25_000_000),
	)

	verdict := EvaluateVoteAlignment(VoteContextFrom(votes[0]), []types.PreferenceKey{types.PrefTreasuryConservative})
	require.Len(t, verdict.Reasons, 1)
	assert.Contains(t, verdict.Reasons[0], "major treasury spend")
}
