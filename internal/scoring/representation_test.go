package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adawatch/drep-radar/internal/types"
)

func pollVote(txHash string, index int, choice types.VoteChoice) types.PollVote {
	return types.PollVote{
		DelegatorID:    "delegator1",
		ProposalTxHash: txHash,
		ProposalIndex:  index,
		Choice:         choice,
		VotedAt:        testTime,
	}
}

func TestScoreRepresentation(t *testing.T) {
	drepVotes := []types.DRepVote{
		voteOn("drep1", "tx1", types.VoteYes, false),
		voteOn("drep1", "tx2", types.VoteNo, false),
		voteOn("drep1", "tx3", types.VoteYes, false),
	}

	t.Run("two of three agreements scores 67", func(t *testing.T) {
		polls := []types.PollVote{
			pollVote("tx1", 0, types.VoteYes),
			pollVote("tx2", 0, types.VoteNo),
			pollVote("tx3", 0, types.VoteNo),
		}

		result := ScoreRepresentation(polls, drepVotes)
		require.NotNil(t, result.Score)
		assert.Equal(t, 67, *result.Score)
		assert.Equal(t, 2, result.Aligned)
		assert.Equal(t, 1, result.Misaligned)
		assert.Equal(t, 3, result.Total)
	})

	t.Run("no overlap yields nil score", func(t *testing.T) {
		polls := []types.PollVote{pollVote("tx-other", 0, types.VoteYes)}

		result := ScoreRepresentation(polls, drepVotes)
		assert.Nil(t, result.Score)
		assert.Equal(t, 0, result.Total)
		assert.Empty(t, result.Comparisons)
	})

	t.Run("empty inputs yield nil score", func(t *testing.T) {
		result := ScoreRepresentation(nil, nil)
		assert.Nil(t, result.Score)
		assert.NotNil(t, result.Comparisons)
	})

	t.Run("unaligned comparisons sort first", func(t *testing.T) {
		polls := []types.PollVote{
			pollVote("tx1", 0, types.VoteYes), // aligned
			pollVote("tx3", 0, types.VoteNo),  // unaligned
		}

		result := ScoreRepresentation(polls, drepVotes)
		require.Len(t, result.Comparisons, 2)
		assert.False(t, result.Comparisons[0].Aligned)
		assert.Equal(t, "tx3", result.Comparisons[0].ProposalTxHash)
	})

	t.Run("ordering is deterministic regardless of input order", func(t *testing.T) {
		polls := []types.PollVote{
			pollVote("tx1", 0, types.VoteYes),
			pollVote("tx2", 0, types.VoteNo),
			pollVote("tx3", 0, types.VoteNo),
		}
		reversed := []types.PollVote{polls[2], polls[1], polls[0]}

		a := ScoreRepresentation(polls, drepVotes)
		b := ScoreRepresentation(reversed, drepVotes)

		assert.Equal(t, a.Comparisons, b.Comparisons)
		assert.Equal(t, *a.Score, *b.Score)
	})

	t.Run("abstain matches abstain", func(t *testing.T) {
		abstainVotes := []types.DRepVote{voteOn("drep1", "tx9", types.VoteAbstain, false)}
		polls := []types.PollVote{pollVote("tx9", 0, types.VoteAbstain)}

		result := ScoreRepresentation(polls, abstainVotes)
		require.NotNil(t, result.Score)
		assert.Equal(t, 100, *result.Score)
	})
}

func TestCommunityMajority(t *testing.T) {
	tests := []struct {
		name       string
		choices    []types.VoteChoice
		expected   types.VoteChoice
		trustWorth bool
	}{
		{
			name:       "below the response floor",
			choices:    []types.VoteChoice{types.VoteYes, types.VoteYes},
			trustWorth: false,
		},
		{
			name:       "clear majority",
			choices:    []types.VoteChoice{types.VoteYes, types.VoteYes, types.VoteNo},
			expected:   types.VoteYes,
			trustWorth: true,
		},
		{
			name:       "tie for first is rejected",
			choices:    []types.VoteChoice{types.VoteYes, types.VoteYes, types.VoteNo, types.VoteNo},
			trustWorth: false,
		},
		{
			name:       "abstain can win",
			choices:    []types.VoteChoice{types.VoteAbstain, types.VoteAbstain, types.VoteYes},
			expected:   types.VoteAbstain,
			trustWorth: true,
		},
		{
			name:       "empty set",
			choices:    nil,
			trustWorth: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			choice, ok := CommunityMajority(tt.choices)
			assert.Equal(t, tt.trustWorth, ok)
			if tt.trustWorth {
				assert.Equal(t, tt.expected, choice)
			}
		})
	}
}
