package main

import (
	"context"
	"time"

	"github.com/adawatch/drep-radar/internal/ingest"
	"github.com/adawatch/drep-radar/internal/scoring"
	"github.com/adawatch/drep-radar/internal/types"
)

// runScoringPass recomputes the canonical scorecard snapshot for every
// DRep. Canonical snapshots score against the full preference set so the
// same two snapshots back every delegator's shift check.
func (s *Server) runScoringPass(ctx context.Context) error {
	start := time.Now()
	now := start.UTC()
	epoch := ingest.CurrentEpoch(now)

	dreps, err := s.repo.GetDReps(ctx)
	if err != nil {
		return err
	}
	votesByDRep, err := s.repo.GetAllVotes(ctx)
	if err != nil {
		return err
	}
	proposals, err := s.repo.GetProposals(ctx)
	if err != nil {
		return err
	}

	cards := scoring.ComputeScorecards(dreps, votesByDRep, proposals, types.AllPreferenceKeys, epoch, s.cfg.ScoringWorkers, now)

	totalVotes := 0
	for i, card := range cards {
		if err := s.repo.SaveScorecard(ctx, card); err != nil {
			return err
		}
		totalVotes += card.VotesAnalyzed

		// Compare against the snapshot from an earlier epoch, if any.
		recent, err := s.repo.GetRecentScorecards(ctx, card.DRepID, 2)
		if err != nil {
			return err
		}
		var prev *scoring.Scorecard
		for j := range recent {
			if recent[j].Epoch < epoch {
				prev = &recent[j]
				break
			}
		}
		if shift := scoring.DetectShift(prev, card, dreps[i].DisplayName, types.AllPreferenceKeys); shift != nil {
			s.metrics.IncrementShiftsDetected()
			s.logger.ShiftLogger(shift.DRepID, shift.Delta, len(shift.CategoryShifts))
		}
	}

	s.metrics.IncrementScoringPasses()
	s.metrics.AddScorecardsComputed(len(cards))
	s.logger.ScoringPassLogger(epoch, len(cards), totalVotes, time.Since(start))

	// Cached responses were built from the superseded snapshots.
	s.cache.Flush()
	s.rankings.InvalidateAll()
	return nil
}
