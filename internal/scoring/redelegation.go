package scoring

import (
	"sort"

	"github.com/adawatch/drep-radar/internal/types"
)

// MinComparableProposals is the floor below which a candidate DRep is
// excluded from recommendations rather than shown with a low-confidence
// match rate. Mirrors the community-majority response floor.
const MinComparableProposals = 3

// Candidate is one alternate DRep ranked by historical agreement with the
// delegator's own poll votes.
type Candidate struct {
	DRepID      string `json:"drep_id"`
	DisplayName string `json:"display_name"`
	MatchRate   int    `json:"match_rate"` // percent
	Matched     int    `json:"matched"`
	Compared    int    `json:"compared"`
	DRepScore   int    `json:"drep_score"`
}

// RecommendDReps ranks the DRep population by how often each candidate's
// on-chain vote matched the delegator's poll vote on the same proposal.
// Sorted by match rate descending, composite score breaking ties;
// candidates below the comparison floor are omitted. Limit <= 0 means no
// limit.
func RecommendDReps(pollVotes []types.PollVote, dreps []types.EnrichedDRep, votesByDRep map[string][]types.DRepVote, limit int) []Candidate {
	pollByKey := make(map[proposalKey]types.VoteChoice, len(pollVotes))
	for _, pv := range pollVotes {
		pollByKey[proposalKey{pv.ProposalTxHash, pv.ProposalIndex}] = pv.Choice
	}

	type ranked struct {
		Candidate
		rate float64
	}

	var candidates []ranked
	for _, drep := range dreps {
		matched, compared := 0, 0
		for _, v := range votesByDRep[drep.ID] {
			choice, ok := pollByKey[proposalKey{v.ProposalTxHash, v.ProposalIndex}]
			if !ok {
				continue
			}
			compared++
			if v.Choice == choice {
				matched++
			}
		}
		if compared < MinComparableProposals {
			continue
		}
		rate := float64(matched) / float64(compared)
		candidates = append(candidates, ranked{
			Candidate: Candidate{
				DRepID:      drep.ID,
				DisplayName: drep.DisplayName,
				MatchRate:   clampScore(roundHalfUp(rate * 100)),
				Matched:     matched,
				Compared:    compared,
				DRepScore:   drep.DRepScore,
			},
			rate: rate,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].rate != candidates[j].rate {
			return candidates[i].rate > candidates[j].rate
		}
		if candidates[i].DRepScore != candidates[j].DRepScore {
			return candidates[i].DRepScore > candidates[j].DRepScore
		}
		return candidates[i].DRepID < candidates[j].DRepID
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]Candidate, len(candidates))
	for i, c := range candidates {
		out[i] = c.Candidate
	}
	return out
}
