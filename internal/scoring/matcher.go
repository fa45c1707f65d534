package scoring

import "github.com/adawatch/drep-radar/internal/types"

// MatchedVote joins a cast vote to its classified proposal. Proposal is
// nil when the vote references a transaction the indexer has not recorded;
// unmatched votes are carried through rather than dropped.
type MatchedVote struct {
	Vote     types.DRepVote      `json:"vote"`
	Proposal *ClassifiedProposal `json:"proposal,omitempty"`
}

type proposalKey struct {
	txHash string
	index  int
}

// MatchVotes joins votes to proposals by (txHash, index). Order-preserving
// over the vote list, O(votes + proposals).
func MatchVotes(votes []types.DRepVote, proposals []ClassifiedProposal) []MatchedVote {
	byKey := make(map[proposalKey]*ClassifiedProposal, len(proposals))
	for i := range proposals {
		p := &proposals[i]
		byKey[proposalKey{p.Proposal.TxHash, p.Proposal.Index}] = p
	}

	matched := make([]MatchedVote, len(votes))
	for i, v := range votes {
		matched[i] = MatchedVote{
			Vote:     v,
			Proposal: byKey[proposalKey{v.ProposalTxHash, v.ProposalIndex}],
		}
	}
	return matched
}

// relevantVotes filters matched votes down to those whose proposal carries
// the given preference key.
func relevantVotes(votes []MatchedVote, key types.PreferenceKey) []MatchedVote {
	var out []MatchedVote
	for _, mv := range votes {
		if mv.Proposal != nil && mv.Proposal.RelevantPrefs.Has(key) {
			out = append(out, mv)
		}
	}
	return out
}
