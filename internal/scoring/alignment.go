package scoring

import (
	"fmt"

	"github.com/adawatch/drep-radar/internal/types"
)

// AlignmentStatus classifies one vote against one delegator's values.
type AlignmentStatus string

const (
	StatusAligned   AlignmentStatus = "aligned"
	StatusUnaligned AlignmentStatus = "unaligned"
	StatusNeutral   AlignmentStatus = "neutral"
)

// VoteAlignment is the per-vote verdict with human-readable reasons.
// Multiple matched preferences may each contribute a reason.
type VoteAlignment struct {
	Status  AlignmentStatus `json:"status"`
	Reasons []string        `json:"reasons"`
}

// VoteContext carries everything the evaluator needs about a single vote
// and its proposal.
type VoteContext struct {
	Choice        types.VoteChoice
	HasRationale  bool
	ProposalType  types.ProposalType
	Tier          *types.TreasuryTier
	RelevantPrefs PrefSet
}

// VoteContextFrom builds a VoteContext from a matched vote. A vote with no
// matched proposal has no relevant preferences and evaluates to neutral.
func VoteContextFrom(mv MatchedVote) VoteContext {
	ctx := VoteContext{
		Choice:       mv.Vote.Choice,
		HasRationale: mv.Vote.HasRationale(),
	}
	if mv.Proposal != nil {
		ctx.ProposalType = mv.Proposal.Proposal.Type
		ctx.Tier = mv.Proposal.Tier
		ctx.RelevantPrefs = mv.Proposal.RelevantPrefs
	}
	return ctx
}

// EvaluateVoteAlignment classifies one vote against the delegator's
// selected preferences. With no selection, or no overlap between the
// selection and the proposal's relevant set, the verdict is neutral.
// When matched preferences disagree, unaligned wins so disagreements
// surface rather than wash out.
func EvaluateVoteAlignment(v VoteContext, selected []types.PreferenceKey) VoteAlignment {
	var aligned, unaligned bool
	var reasons []string

	for _, key := range selected {
		if !v.RelevantPrefs.Has(key) {
			continue
		}
		verdict, reason := evaluateForPreference(v, key)
		switch verdict {
		case StatusAligned:
			aligned = true
		case StatusUnaligned:
			unaligned = true
		}
		if reason != "" {
			reasons = append(reasons, reason)
		}
	}

	status := StatusNeutral
	switch {
	case unaligned:
		status = StatusUnaligned
	case aligned:
		status = StatusAligned
	}
	if reasons == nil {
		reasons = []string{}
	}
	return VoteAlignment{Status: status, Reasons: reasons}
}

func evaluateForPreference(v VoteContext, key types.PreferenceKey) (AlignmentStatus, string) {
	switch key {
	case types.PrefTreasuryConservative:
		switch v.Choice {
		case types.VoteNo:
			return StatusAligned, fmt.Sprintf("Voted No on %s", spendLabel(v.Tier))
		case types.VoteYes:
			return StatusUnaligned, fmt.Sprintf("Voted Yes on %s", spendLabel(v.Tier))
		default:
			return StatusNeutral, "Abstained on treasury spend"
		}

	case types.PrefTreasuryGrowth:
		if v.Choice == types.VoteYes {
			if v.HasRationale {
				return StatusAligned, "Backed treasury investment with a written rationale"
			}
			return StatusUnaligned, "Backed treasury spend without explaining why"
		}
		return StatusNeutral, ""

	case types.PrefSecurityFirst:
		// Caution is framed as aligned for security-minded delegators.
		if v.Choice == types.VoteNo || v.Choice == types.VoteAbstain {
			return StatusAligned, fmt.Sprintf("Took the cautious position (%s) on a protocol change", v.Choice)
		}
		return StatusNeutral, ""

	case types.PrefInnovation:
		if v.Choice == types.VoteYes {
			return StatusAligned, "Voted Yes on an innovation-oriented proposal"
		}
		return StatusNeutral, ""

	case types.PrefResponsibleGov:
		if v.HasRationale {
			return StatusAligned, "Published a rationale for the vote"
		}
		return StatusUnaligned, "No rationale published for the vote"

	default:
		// strong-decentralization has no per-vote rule; it is judged by
		// voting-power tier in the category scorer.
		return StatusNeutral, ""
	}
}

func spendLabel(tier *types.TreasuryTier) string {
	if tier == nil {
		return "a treasury spend"
	}
	return fmt.Sprintf("a %s treasury spend", *tier)
}
