package scoring

import "github.com/adawatch/drep-radar/internal/types"

// Category is a scorecard column. Two treasury preference keys share the
// treasury column; responsible-governance feeds the transparency column.
type Category string

const (
	CategoryTreasury         Category = "treasury"
	CategoryDecentralization Category = "decentralization"
	CategorySecurity         Category = "security"
	CategoryInnovation       Category = "innovation"
	CategoryTransparency     Category = "transparency"
)

// Scorer reduces a DRep's relevant votes and aggregate stats to a 0-100
// score for one preference key. Implementations are pure and never fail;
// insufficient data maps to a defined fallback.
type Scorer interface {
	Key() types.PreferenceKey
	Category() Category
	Score(votes []MatchedVote, drep types.EnrichedDRep) int
}

// Scorers is the registry keyed by preference key. The aggregator folds
// over this map instead of branching per category.
var Scorers = map[types.PreferenceKey]Scorer{
	types.PrefTreasuryConservative: treasuryConservativeScorer{},
	types.PrefTreasuryGrowth:       treasuryGrowthScorer{},
	types.PrefDecentralization:     decentralizationScorer{},
	types.PrefSecurityFirst:        securityScorer{},
	types.PrefInnovation:           innovationScorer{},
	types.PrefResponsibleGov:       transparencyScorer{},
}

// --- treasury-conservative ---

// conservativePoints awards per-vote points by spend tier and direction.
// Voting No on the largest spends earns the most; waving a major spend
// through earns the least. Reconstructed to match the boundary behavior
// observed upstream (No/major 100, Yes/major 10, Abstain 50).
var conservativePoints = map[types.TreasuryTier]map[types.VoteChoice]int{
	types.TierRoutine:     {types.VoteYes: 60, types.VoteNo: 70},
	types.TierSignificant: {types.VoteYes: 30, types.VoteNo: 85},
	types.TierMajor:       {types.VoteYes: 10, types.VoteNo: 100},
}

type treasuryConservativeScorer struct{}

func (treasuryConservativeScorer) Key() types.PreferenceKey { return types.PrefTreasuryConservative }
func (treasuryConservativeScorer) Category() Category       { return CategoryTreasury }

func (treasuryConservativeScorer) Score(votes []MatchedVote, _ types.EnrichedDRep) int {
	relevant := relevantVotes(votes, types.PrefTreasuryConservative)
	if len(relevant) == 0 {
		return NeutralScore
	}
	points := make([]int, 0, len(relevant))
	for _, mv := range relevant {
		points = append(points, conservativeVotePoints(mv))
	}
	return clampScore(roundHalfUp(meanInt(points)))
}

func conservativeVotePoints(mv MatchedVote) int {
	if mv.Vote.Choice == types.VoteAbstain {
		return NeutralScore
	}
	if mv.Proposal.Tier == nil {
		// No withdrawal amount recorded, so no spend size to judge.
		return NeutralScore
	}
	return conservativePoints[*mv.Proposal.Tier][mv.Vote.Choice]
}

// --- smart-treasury-growth ---

// growthYesPoints rewards reasoned Yes votes, scaled up on larger tiers.
var growthYesPoints = map[types.TreasuryTier]int{
	types.TierRoutine:     70,
	types.TierSignificant: 90,
	types.TierMajor:       90,
}

type treasuryGrowthScorer struct{}

func (treasuryGrowthScorer) Key() types.PreferenceKey { return types.PrefTreasuryGrowth }
func (treasuryGrowthScorer) Category() Category       { return CategoryTreasury }

func (treasuryGrowthScorer) Score(votes []MatchedVote, _ types.EnrichedDRep) int {
	relevant := relevantVotes(votes, types.PrefTreasuryGrowth)
	if len(relevant) == 0 {
		return NeutralScore
	}
	points := make([]int, 0, len(relevant))
	for _, mv := range relevant {
		points = append(points, growthVotePoints(mv))
	}
	return clampScore(roundHalfUp(meanInt(points)))
}

func growthVotePoints(mv MatchedVote) int {
	hasRationale := mv.Vote.HasRationale()
	switch mv.Vote.Choice {
	case types.VoteYes:
		if mv.Proposal.Tier == nil {
			return NeutralScore
		}
		if hasRationale {
			return growthYesPoints[*mv.Proposal.Tier]
		}
		return 45
	case types.VoteNo:
		if hasRationale {
			// A reasoned objection is defensible even to a growth-minded delegator.
			return 40
		}
		return 20
	default:
		return NeutralScore
	}
}

// --- strong-decentralization ---

// decentralizationPoints is a pure lookup on voting-power tier: smaller
// DReps structurally reduce concentration risk.
var decentralizationPoints = map[types.SizeTier]int{
	types.SizeSmall:  95,
	types.SizeMedium: 72,
	types.SizeLarge:  45,
	types.SizeWhale:  12,
}

type decentralizationScorer struct{}

func (decentralizationScorer) Key() types.PreferenceKey { return types.PrefDecentralization }
func (decentralizationScorer) Category() Category       { return CategoryDecentralization }

func (decentralizationScorer) Score(_ []MatchedVote, drep types.EnrichedDRep) int {
	if pts, ok := decentralizationPoints[drep.SizeTier]; ok {
		return pts
	}
	return NeutralScore
}

// --- protocol-security-first ---

type securityScorer struct{}

func (securityScorer) Key() types.PreferenceKey { return types.PrefSecurityFirst }
func (securityScorer) Category() Category       { return CategorySecurity }

func (securityScorer) Score(votes []MatchedVote, drep types.EnrichedDRep) int {
	fallback := 0.6*drep.ParticipationRate + 0.4*drep.RationaleRate

	relevant := relevantVotes(votes, types.PrefSecurityFirst)
	if len(relevant) == 0 {
		return clampScore(roundHalfUp(fallback))
	}

	points := make([]int, 0, len(relevant))
	for _, mv := range relevant {
		points = append(points, securityVotePoints(mv))
	}
	// Vote evidence dominates, participation/rationale habits still count.
	blended := 0.6*meanInt(points) + 0.4*fallback
	return clampScore(roundHalfUp(blended))
}

// securityVotePoints rewards caution on security-tagged proposals; a
// rationale earns a bonus in either direction.
func securityVotePoints(mv MatchedVote) int {
	var base int
	switch mv.Vote.Choice {
	case types.VoteNo:
		base = 85
	case types.VoteAbstain:
		base = 70
	default:
		base = 40
	}
	if mv.Vote.HasRationale() {
		base += 10
	}
	return clampScore(base)
}

// --- innovation-defi-growth ---

type innovationScorer struct{}

func (innovationScorer) Key() types.PreferenceKey { return types.PrefInnovation }
func (innovationScorer) Category() Category       { return CategoryInnovation }

func (innovationScorer) Score(votes []MatchedVote, drep types.EnrichedDRep) int {
	relevant := relevantVotes(votes, types.PrefInnovation)
	if len(relevant) == 0 {
		return clampScore(roundHalfUp(drep.ParticipationRate*0.5 + 25))
	}

	yes := 0
	for _, mv := range relevant {
		if mv.Vote.Choice == types.VoteYes {
			yes++
		}
	}
	yesRatio := float64(yes) / float64(len(relevant))
	return clampScore(roundHalfUp(drep.ParticipationRate*0.5 + yesRatio*100*0.5))
}

// --- responsible-governance (transparency) ---

type transparencyScorer struct{}

func (transparencyScorer) Key() types.PreferenceKey { return types.PrefResponsibleGov }
func (transparencyScorer) Category() Category       { return CategoryTransparency }

// Score is a direct pass-through of the rationale rate; no vote-level
// computation is involved.
func (transparencyScorer) Score(_ []MatchedVote, drep types.EnrichedDRep) int {
	return clampScore(roundHalfUp(drep.RationaleRate))
}
