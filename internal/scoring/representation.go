package scoring

import (
	"sort"

	"github.com/adawatch/drep-radar/internal/types"
)

// MinPollResponses is the floor below which a community majority is not
// trusted for a proposal.
const MinPollResponses = 3

// Comparison pairs a delegator's poll vote with their DRep's on-chain
// vote on the same proposal.
type Comparison struct {
	ProposalTxHash  string           `json:"proposal_tx_hash"`
	ProposalIndex   int              `json:"proposal_index"`
	DelegatorChoice types.VoteChoice `json:"delegator_choice"`
	DRepChoice      types.VoteChoice `json:"drep_choice"`
	Aligned         bool             `json:"aligned"`
}

// RepresentationResult scores how well one DRep's on-chain votes mirror a
// delegator's stated positions. Score is nil when no proposals overlap.
type RepresentationResult struct {
	Score       *int         `json:"score"`
	Aligned     int          `json:"aligned"`
	Misaligned  int          `json:"misaligned"`
	Total       int          `json:"total"`
	Comparisons []Comparison `json:"comparisons"`
}

// ScoreRepresentation compares poll votes against DRep votes by proposal
// identity. Comparisons are returned with unaligned cases first so
// disagreements surface; the ordering is deterministic regardless of the
// input order.
func ScoreRepresentation(pollVotes []types.PollVote, drepVotes []types.DRepVote) RepresentationResult {
	drepByKey := make(map[proposalKey]types.VoteChoice, len(drepVotes))
	for _, v := range drepVotes {
		drepByKey[proposalKey{v.ProposalTxHash, v.ProposalIndex}] = v.Choice
	}

	result := RepresentationResult{Comparisons: []Comparison{}}
	for _, pv := range pollVotes {
		drepChoice, ok := drepByKey[proposalKey{pv.ProposalTxHash, pv.ProposalIndex}]
		if !ok {
			continue
		}
		aligned := pv.Choice == drepChoice
		if aligned {
			result.Aligned++
		} else {
			result.Misaligned++
		}
		result.Total++
		result.Comparisons = append(result.Comparisons, Comparison{
			ProposalTxHash:  pv.ProposalTxHash,
			ProposalIndex:   pv.ProposalIndex,
			DelegatorChoice: pv.Choice,
			DRepChoice:      drepChoice,
			Aligned:         aligned,
		})
	}

	if result.Total == 0 {
		return result
	}

	sort.Slice(result.Comparisons, func(i, j int) bool {
		a, b := result.Comparisons[i], result.Comparisons[j]
		if a.Aligned != b.Aligned {
			return !a.Aligned
		}
		if a.ProposalTxHash != b.ProposalTxHash {
			return a.ProposalTxHash < b.ProposalTxHash
		}
		return a.ProposalIndex < b.ProposalIndex
	})

	score := clampScore(roundHalfUp(float64(result.Aligned) / float64(result.Total) * 100))
	result.Score = &score
	return result
}

// CommunityMajority returns the majority choice among poll responses for
// one proposal. The majority is not trusted below MinPollResponses or on
// a tie for first place.
func CommunityMajority(choices []types.VoteChoice) (types.VoteChoice, bool) {
	if len(choices) < MinPollResponses {
		return "", false
	}

	counts := make(map[types.VoteChoice]int, 3)
	for _, c := range choices {
		counts[c]++
	}

	var best types.VoteChoice
	bestCount, tied := 0, false
	for _, c := range []types.VoteChoice{types.VoteYes, types.VoteNo, types.VoteAbstain} {
		switch {
		case counts[c] > bestCount:
			best, bestCount, tied = c, counts[c], false
		case counts[c] == bestCount && counts[c] > 0:
			tied = true
		}
	}
	if tied {
		return "", false
	}
	return best, true
}
