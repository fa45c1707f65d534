package ingest

import (
	"sort"
	"time"

	"github.com/adawatch/drep-radar/internal/scoring"
	"github.com/adawatch/drep-radar/internal/types"
)

// Delegation size tier cutoffs, in ADA.
const (
	sizeMediumAda = 1_000_000
	sizeLargeAda  = 10_000_000
	sizeWhaleAda  = 50_000_000
)

// SizeTierFor buckets delegated voting power into the size tiers the
// decentralization scorer consumes.
func SizeTierFor(amountLovelace uint64) types.SizeTier {
	ada := float64(amountLovelace) / types.LovelacePerAda
	switch {
	case ada >= sizeWhaleAda:
		return types.SizeWhale
	case ada >= sizeLargeAda:
		return types.SizeLarge
	case ada >= sizeMediumAda:
		return types.SizeMedium
	default:
		return types.SizeSmall
	}
}

// Reliability pillar weights. Streak dominates because a long unbroken
// run of epochs with votes is the strongest signal that the DRep will
// still be voting next epoch.
const (
	reliabilityWeightStreak  = 0.35
	reliabilityWeightRecency = 0.25
	reliabilityWeightGap     = 0.20
	reliabilityWeightTenure  = 0.20

	streakFullCreditEpochs = 10
	recencyGraceDays       = 30
	tenureFullCreditEpochs = 73 // one year of 5-day epochs
)

// ReliabilityScore folds the four sub-metrics into a 0-100 pillar.
func ReliabilityScore(m types.ReliabilityMetrics) float64 {
	streak := float64(m.StreakEpochs) / streakFullCreditEpochs * 100
	if streak > 100 {
		streak = 100
	}

	// Full credit within the grace window, then two points off per day.
	recency := 100.0
	if m.RecencyDays > recencyGraceDays {
		recency = 100 - float64(m.RecencyDays-recencyGraceDays)*2
		if recency < 0 {
			recency = 0
		}
	}

	gap := 100 - float64(m.LongestGapDays)
	if gap < 0 {
		gap = 0
	}

	tenure := float64(m.TenureEpochs) / tenureFullCreditEpochs * 100
	if tenure > 100 {
		tenure = 100
	}

	return reliabilityWeightStreak*streak +
		reliabilityWeightRecency*recency +
		reliabilityWeightGap*gap +
		reliabilityWeightTenure*tenure
}

// ProfileCompleteness scores how much of the registration metadata the
// DRep filled in. A bare drep_id with nothing attached scores 0.
func ProfileCompleteness(reg DRepRegistration) float64 {
	score := 0.0
	if reg.HasMetadata {
		score += 40
	}
	if reg.HasGivenName {
		score += 20
	}
	if reg.HasObjectives {
		score += 20
	}
	if reg.HasMotivations {
		score += 20
	}
	return score
}

// EnrichDRep builds the per-DRep aggregate snapshot from a registration,
// the DRep's votes, and the proposals the DRep could have voted on. The
// epoch math for reliability runs off the vote timestamps.
func EnrichDRep(reg DRepRegistration, votes []types.DRepVote, totalProposals int, currentEpoch int, now time.Time) types.EnrichedDRep {
	drep := types.EnrichedDRep{
		ID:          reg.ID,
		DisplayName: reg.DisplayName,
		SizeTier:    SizeTierFor(reg.AmountLovelace),
	}

	withRationale := 0
	for _, v := range votes {
		switch v.Choice {
		case types.VoteYes:
			drep.Tally.Yes++
		case types.VoteNo:
			drep.Tally.No++
		case types.VoteAbstain:
			drep.Tally.Abstain++
		}
		if v.HasRationale() {
			withRationale++
		}
	}

	if totalProposals > 0 {
		drep.ParticipationRate = float64(len(votes)) / float64(totalProposals) * 100
		if drep.ParticipationRate > 100 {
			drep.ParticipationRate = 100
		}
	}
	if len(votes) > 0 {
		drep.RationaleRate = float64(withRationale) / float64(len(votes)) * 100
	}

	drep.Reliability = reliabilityMetrics(votes, reg.ActiveEpoch, currentEpoch, now)
	drep.ReliabilityScore = ReliabilityScore(drep.Reliability)
	drep.ProfileCompleteness = ProfileCompleteness(reg)
	drep.DRepScore = scoring.CompositeDRepScore(drep)
	return drep
}

// epochLength approximates the Cardano mainnet epoch for streak math.
const epochLength = 5 * 24 * time.Hour

func reliabilityMetrics(votes []types.DRepVote, activeEpoch, currentEpoch int, now time.Time) types.ReliabilityMetrics {
	m := types.ReliabilityMetrics{
		TenureEpochs: currentEpoch - activeEpoch,
	}
	if m.TenureEpochs < 0 {
		m.TenureEpochs = 0
	}
	if len(votes) == 0 {
		m.RecencyDays = m.TenureEpochs * 5
		m.LongestGapDays = m.RecencyDays
		return m
	}

	// The indexer usually returns votes in block order, but the gap math
	// needs it guaranteed.
	times := make([]time.Time, 0, len(votes))
	for _, v := range votes {
		times = append(times, v.BlockTime)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	last := times[len(times)-1]
	m.RecencyDays = int(now.Sub(last).Hours() / 24)
	if m.RecencyDays < 0 {
		m.RecencyDays = 0
	}

	for i := 1; i < len(times); i++ {
		gap := int(times[i].Sub(times[i-1]).Hours() / 24)
		if gap > m.LongestGapDays {
			m.LongestGapDays = gap
		}
	}
	if m.RecencyDays > m.LongestGapDays {
		m.LongestGapDays = m.RecencyDays
	}

	// Streak counts consecutive epochs, ending now, that contain a vote.
	voted := make(map[int]bool, len(times))
	for _, t := range times {
		voted[int(now.Sub(t)/epochLength)] = true
	}
	for e := 0; voted[e]; e++ {
		m.StreakEpochs++
	}
	return m
}
