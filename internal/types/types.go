package types

import (
	"encoding/json"
	"time"
)

// LovelacePerAda is the number of lovelace in one ADA.
const LovelacePerAda = 1_000_000

// ProposalType identifies the kind of on-chain governance action.
type ProposalType string

const (
	ProposalTreasuryWithdrawals ProposalType = "TreasuryWithdrawals"
	ProposalParameterChange     ProposalType = "ParameterChange"
	ProposalHardForkInitiation  ProposalType = "HardForkInitiation"
	ProposalInfoAction          ProposalType = "InfoAction"
	ProposalNoConfidence        ProposalType = "NoConfidence"
	ProposalNewCommittee        ProposalType = "NewCommittee"
	ProposalNewConstitution     ProposalType = "NewConstitution"
	ProposalUnknown             ProposalType = "Unknown"
)

// NormalizeProposalType maps raw upstream type strings, including the older
// aliases some indexers still emit, onto the closed ProposalType enum.
func NormalizeProposalType(raw string) ProposalType {
	switch raw {
	case "TreasuryWithdrawals":
		return ProposalTreasuryWithdrawals
	case "ParameterChange":
		return ProposalParameterChange
	case "HardForkInitiation":
		return ProposalHardForkInitiation
	case "InfoAction":
		return ProposalInfoAction
	case "NoConfidence":
		return ProposalNoConfidence
	case "NewCommittee", "NewConstitutionalCommittee":
		return ProposalNewCommittee
	case "NewConstitution", "UpdateConstitution":
		return ProposalNewConstitution
	default:
		return ProposalUnknown
	}
}

// PreferenceKey is one of the declared delegator values a DRep can be
// scored against. The set is closed; the classifier and scorers switch
// exhaustively over it.
type PreferenceKey string

const (
	PrefTreasuryConservative PreferenceKey = "treasury-conservative"
	PrefTreasuryGrowth       PreferenceKey = "smart-treasury-growth"
	PrefSecurityFirst        PreferenceKey = "protocol-security-first"
	PrefInnovation           PreferenceKey = "innovation-defi-growth"
	PrefDecentralization     PreferenceKey = "strong-decentralization"
	PrefResponsibleGov       PreferenceKey = "responsible-governance"
)

// AllPreferenceKeys lists every preference key in stable order.
var AllPreferenceKeys = []PreferenceKey{
	PrefTreasuryConservative,
	PrefTreasuryGrowth,
	PrefSecurityFirst,
	PrefInnovation,
	PrefDecentralization,
	PrefResponsibleGov,
}

// ParsePreferenceKey validates a raw string against the closed enum.
func ParsePreferenceKey(raw string) (PreferenceKey, bool) {
	for _, k := range AllPreferenceKeys {
		if string(k) == raw {
			return k, true
		}
	}
	return "", false
}

// TreasuryTier buckets a treasury withdrawal by total ADA requested.
type TreasuryTier string

const (
	TierRoutine     TreasuryTier = "routine"     // < 1,000,000 ADA
	TierSignificant TreasuryTier = "significant" // 1,000,000 - 20,000,000 ADA
	TierMajor       TreasuryTier = "major"       // > 20,000,000 ADA
)

// VoteChoice is a governance ballot option.
type VoteChoice string

const (
	VoteYes     VoteChoice = "Yes"
	VoteNo      VoteChoice = "No"
	VoteAbstain VoteChoice = "Abstain"
)

// ParseVoteChoice validates a raw ballot string.
func ParseVoteChoice(raw string) (VoteChoice, bool) {
	switch VoteChoice(raw) {
	case VoteYes, VoteNo, VoteAbstain:
		return VoteChoice(raw), true
	}
	return "", false
}

// SizeTier buckets a DRep by delegated voting power.
type SizeTier string

const (
	SizeSmall  SizeTier = "Small"
	SizeMedium SizeTier = "Medium"
	SizeLarge  SizeTier = "Large"
	SizeWhale  SizeTier = "Whale"
)

// ProposalMetadata is the optional free-text metadata attached to a
// governance action. Fields degrade to empty strings when the anchor is
// missing or malformed; absence is never an error.
type ProposalMetadata struct {
	Title    string `json:"title,omitempty"`
	Abstract string `json:"abstract,omitempty"`
}

// RawProposal is one governance action as recorded by the chain indexer.
// Identified by (TxHash, Index); immutable once recorded.
type RawProposal struct {
	TxHash              string            `json:"tx_hash"`
	Index               int               `json:"index"`
	Type                ProposalType      `json:"type"`
	WithdrawalsLovelace []uint64          `json:"withdrawals_lovelace,omitempty"`
	Meta                *ProposalMetadata `json:"meta,omitempty"`
	ProposedEpoch       int               `json:"proposed_epoch"`
	RatifiedEpoch       *int              `json:"ratified_epoch,omitempty"`
	EnactedEpoch        *int              `json:"enacted_epoch,omitempty"`
	DroppedEpoch        *int              `json:"dropped_epoch,omitempty"`
	ExpiredEpoch        *int              `json:"expired_epoch,omitempty"`
	BlockTime           time.Time         `json:"block_time"`
}

// VoteRationale is the optional justification attached to a vote.
type VoteRationale struct {
	URL  string          `json:"url,omitempty"`
	Hash string          `json:"hash,omitempty"`
	Body json.RawMessage `json:"body,omitempty"`
}

// DRepVote is one vote cast by a DRep on a proposal. Append-only; at most
// one per (DRep, proposal).
type DRepVote struct {
	DRepID         string         `json:"drep_id"`
	ProposalTxHash string         `json:"proposal_tx_hash"`
	ProposalIndex  int            `json:"proposal_index"`
	VoteTxHash     string         `json:"vote_tx_hash"`
	Choice         VoteChoice     `json:"choice"`
	BlockTime      time.Time      `json:"block_time"`
	Rationale      *VoteRationale `json:"rationale,omitempty"`
}

// HasRationale reports whether any rationale anchor accompanies the vote.
func (v DRepVote) HasRationale() bool {
	return v.Rationale != nil && (v.Rationale.URL != "" || v.Rationale.Hash != "" || len(v.Rationale.Body) > 0)
}

// ReliabilityMetrics are the sub-metrics the ingestion layer folds into a
// single reliability score: current voting streak, days since the last
// vote, the longest gap between votes, and tenure as a registered DRep.
type ReliabilityMetrics struct {
	StreakEpochs   int `json:"streak_epochs"`
	RecencyDays    int `json:"recency_days"`
	LongestGapDays int `json:"longest_gap_days"`
	TenureEpochs   int `json:"tenure_epochs"`
}

// VoteTally counts a DRep's votes by direction.
type VoteTally struct {
	Yes     int `json:"yes"`
	No      int `json:"no"`
	Abstain int `json:"abstain"`
}

// EnrichedDRep is a snapshot of one DRep's aggregate stats, owned by the
// ingestion layer. Rates are percentages in [0,100]. The snapshot is
// superseded wholesale on each scoring pass, never patched field by field.
type EnrichedDRep struct {
	ID                  string             `json:"id"`
	DisplayName         string             `json:"display_name"`
	ParticipationRate   float64            `json:"participation_rate"`
	RationaleRate       float64            `json:"rationale_rate"`
	ReliabilityScore    float64            `json:"reliability_score"`
	Reliability         ReliabilityMetrics `json:"reliability"`
	ProfileCompleteness float64            `json:"profile_completeness"`
	SizeTier            SizeTier           `json:"size_tier"`
	Tally               VoteTally          `json:"tally"`
	DRepScore           int                `json:"drep_score"`
}

// PollVote is a delegator's own stated position on a proposal, collected
// off-chain through the representation polls.
type PollVote struct {
	DelegatorID    string     `json:"delegator_id"`
	ProposalTxHash string     `json:"proposal_tx_hash"`
	ProposalIndex  int        `json:"proposal_index"`
	Choice         VoteChoice `json:"choice"`
	VotedAt        time.Time  `json:"voted_at"`
}
