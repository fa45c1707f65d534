package scoring

import (
	"fmt"
	"strings"

	"github.com/adawatch/drep-radar/internal/types"
)

// PrefSet is a set of preference keys. Built once by the classifier and
// never mutated afterwards.
type PrefSet map[types.PreferenceKey]struct{}

func newPrefSet(keys ...types.PreferenceKey) PrefSet {
	s := make(PrefSet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether the set contains the key.
func (s PrefSet) Has(k types.PreferenceKey) bool {
	_, ok := s[k]
	return ok
}

// Keys returns the members in the stable enum order.
func (s PrefSet) Keys() []types.PreferenceKey {
	out := make([]types.PreferenceKey, 0, len(s))
	for _, k := range types.AllPreferenceKeys {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// ClassifiedProposal is a derived, non-owning view of a RawProposal tagged
// with the preference categories it speaks to and, for treasury actions,
// the spend-size tier. Recomputed whenever classification rules change.
type ClassifiedProposal struct {
	Proposal      *types.RawProposal  `json:"proposal"`
	Title         string              `json:"title"`
	RelevantPrefs PrefSet             `json:"-"`
	WithdrawalAda *float64            `json:"withdrawal_ada,omitempty"`
	Tier          *types.TreasuryTier `json:"treasury_tier,omitempty"`
}

// innovationKeywords flag InfoAction proposals that speak to ecosystem and
// DeFi growth. Matched case-insensitively against title plus abstract.
var innovationKeywords = []string{
	"defi",
	"dex",
	"dapp",
	"innovation",
	"innovative",
	"startup",
	"incubat",
	"accelerat",
	"liquidity",
	"smart contract",
	"developer",
	"ecosystem growth",
	"tooling",
}

// ClassifyProposal tags a raw proposal with its relevant preference keys
// and treasury tier. Malformed or absent metadata degrades to defaults;
// classification never fails.
func ClassifyProposal(p types.RawProposal) ClassifiedProposal {
	cp := ClassifiedProposal{
		Proposal: &p,
		Title:    proposalTitle(p),
	}

	switch p.Type {
	case types.ProposalTreasuryWithdrawals:
		cp.RelevantPrefs = newPrefSet(types.PrefTreasuryConservative, types.PrefTreasuryGrowth)
		if ada, ok := totalWithdrawalAda(p); ok {
			tier := classifyTreasuryTier(ada)
			cp.WithdrawalAda = &ada
			cp.Tier = &tier
		}
	case types.ProposalParameterChange:
		cp.RelevantPrefs = newPrefSet(types.PrefSecurityFirst)
	case types.ProposalHardForkInitiation:
		cp.RelevantPrefs = newPrefSet(types.PrefSecurityFirst, types.PrefInnovation)
	case types.ProposalNoConfidence:
		cp.RelevantPrefs = newPrefSet(types.PrefDecentralization, types.PrefSecurityFirst)
	case types.ProposalInfoAction:
		if mentionsInnovation(p) {
			cp.RelevantPrefs = newPrefSet(types.PrefInnovation)
		} else {
			cp.RelevantPrefs = newPrefSet(types.PrefResponsibleGov)
		}
	default:
		// NewCommittee, NewConstitution and anything unrecognized.
		cp.RelevantPrefs = newPrefSet(types.PrefResponsibleGov)
	}

	return cp
}

// ClassifyProposals classifies a batch, preserving input order.
func ClassifyProposals(proposals []types.RawProposal) []ClassifiedProposal {
	out := make([]ClassifiedProposal, len(proposals))
	for i, p := range proposals {
		out[i] = ClassifyProposal(p)
	}
	return out
}

// classifyTreasuryTier applies the three-way ADA threshold.
func classifyTreasuryTier(ada float64) types.TreasuryTier {
	switch {
	case ada > 20_000_000:
		return types.TierMajor
	case ada >= 1_000_000:
		return types.TierSignificant
	default:
		return types.TierRoutine
	}
}

// totalWithdrawalAda sums the withdrawal entries. An empty withdrawal
// array yields no amount and no tier.
func totalWithdrawalAda(p types.RawProposal) (float64, bool) {
	if len(p.WithdrawalsLovelace) == 0 {
		return 0, false
	}
	var total uint64
	for _, lovelace := range p.WithdrawalsLovelace {
		total += lovelace
	}
	return float64(total) / types.LovelacePerAda, true
}

func mentionsInnovation(p types.RawProposal) bool {
	if p.Meta == nil {
		return false
	}
	text := strings.ToLower(p.Meta.Title + " " + p.Meta.Abstract)
	for _, kw := range innovationKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// proposalTitle prefers the structured metadata title and otherwise falls
// back to a placeholder built from the transaction hash.
func proposalTitle(p types.RawProposal) string {
	if p.Meta != nil && strings.TrimSpace(p.Meta.Title) != "" {
		return strings.TrimSpace(p.Meta.Title)
	}
	hash := p.TxHash
	if len(hash) > 8 {
		hash = hash[:8]
	}
	return fmt.Sprintf("Proposal %s…#%d", hash, p.Index)
}
