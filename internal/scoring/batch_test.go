package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adawatch/drep-radar/internal/types"
)

func TestComputeScorecards(t *testing.T) {
	proposals := []types.RawProposal{
		treasuryProposal("tx1", 25_000_000),
		proposalOfType("tx2", types.ProposalParameterChange),
	}

	dreps := []types.EnrichedDRep{
		{ID: "a", ParticipationRate: 90, RationaleRate: 80, SizeTier: types.SizeSmall},
		{ID: "b", ParticipationRate: 40, RationaleRate: 10, SizeTier: types.SizeWhale},
		{ID: "c"},
	}
	votesByDRep := map[string][]types.DRepVote{
		"a": {
			voteOn("a", "tx1", types.VoteNo, true),
			voteOn("a", "tx2", types.VoteNo, true),
		},
		"b": {voteOn("b", "tx1", types.VoteYes, false)},
	}

	cards := ComputeScorecards(dreps, votesByDRep, proposals, types.AllPreferenceKeys, 541, 2, testTime)
	require.Len(t, cards, 3)

	// Results land at the same index as their input DRep.
	for i, drep := range dreps {
		assert.Equal(t, drep.ID, cards[i].DRepID)
		assert.Equal(t, 541, cards[i].Epoch)
	}

	// The pool computes exactly what the serial path computes.
	classified := ClassifyProposals(proposals)
	for i, drep := range dreps {
		expected := BuildScorecard(drep, MatchVotes(votesByDRep[drep.ID], classified), types.AllPreferenceKeys, 541, testTime)
		assert.Equal(t, expected, cards[i])
	}

	assert.Equal(t, 2, cards[0].VotesAnalyzed)
	assert.Equal(t, 1, cards[1].VotesAnalyzed)
	assert.Equal(t, 0, cards[2].VotesAnalyzed)
}

func TestComputeScorecards_DefaultsWorkerCount(t *testing.T) {
	dreps := []types.EnrichedDRep{{ID: "a"}}

	cards := ComputeScorecards(dreps, nil, nil, nil, 541, 0, testTime)
	require.Len(t, cards, 1)
	assert.Equal(t, NeutralScore, cards[0].Scores.Overall)
}

func TestComputeScorecards_Empty(t *testing.T) {
	assert.Empty(t, ComputeScorecards(nil, nil, nil, types.AllPreferenceKeys, 541, 4, testTime))
}
