package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adawatch/drep-radar/internal/types"
)

func TestMatchVotes(t *testing.T) {
	proposals := ClassifyProposals([]types.RawProposal{
		treasuryProposal("tx1", 5_000_000),
		proposalOfType("tx2", types.ProposalParameterChange),
	})

	votes := []types.DRepVote{
		voteOn("drep1", "tx2", types.VoteNo, false),
		voteOn("drep1", "tx-missing", types.VoteYes, false),
		voteOn("drep1", "tx1", types.VoteYes, true),
	}

	matched := MatchVotes(votes, proposals)
	require.Len(t, matched, 3)

	// Input order survives the join.
	assert.Equal(t, "tx2", matched[0].Vote.ProposalTxHash)
	require.NotNil(t, matched[0].Proposal)
	assert.Equal(t, types.ProposalParameterChange, matched[0].Proposal.Proposal.Type)

	// A vote on an unrecorded proposal is carried through unmatched.
	assert.Nil(t, matched[1].Proposal)

	require.NotNil(t, matched[2].Proposal)
	assert.Equal(t, "tx1", matched[2].Proposal.Proposal.TxHash)
}

func TestMatchVotes_IndexDisambiguates(t *testing.T) {
	p1 := treasuryProposal("tx1", 500)
	p2 := treasuryProposal("tx1", 30_000_000)
	p2.Index = 1

	proposals := ClassifyProposals([]types.RawProposal{p1, p2})

	vote := voteOn("drep1", "tx1", types.VoteNo, false)
	vote.ProposalIndex = 1

	matched := MatchVotes([]types.DRepVote{vote}, proposals)
	require.Len(t, matched, 1)
	require.NotNil(t, matched[0].Proposal)
	require.NotNil(t, matched[0].Proposal.Tier)
	assert.Equal(t, types.TierMajor, *matched[0].Proposal.Tier)
}

func TestMatchVotes_EmptyInputs(t *testing.T) {
	assert.Empty(t, MatchVotes(nil, nil))

	matched := MatchVotes([]types.DRepVote{voteOn("drep1", "tx1", types.VoteYes, false)}, nil)
	require.Len(t, matched, 1)
	assert.Nil(t, matched[0].Proposal)
}
