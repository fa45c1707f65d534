package ingest

import (
	"context"
	"time"

	"github.com/adawatch/drep-radar/internal/database"
	"github.com/adawatch/drep-radar/internal/monitoring"
	"github.com/adawatch/drep-radar/internal/scoring"
)

// Cardano mainnet Shelley era start, the anchor for epoch arithmetic.
var shelleyStart = time.Date(2020, time.July, 29, 21, 44, 51, 0, time.UTC)

const shelleyStartEpoch = 208

// CurrentEpoch derives the mainnet epoch number from wall-clock time.
func CurrentEpoch(now time.Time) int {
	if now.Before(shelleyStart) {
		return shelleyStartEpoch
	}
	return shelleyStartEpoch + int(now.Sub(shelleyStart)/(5*24*time.Hour))
}

// Syncer pulls the governance dataset from the chain indexer into local
// storage and refreshes the enriched DRep snapshots.
type Syncer struct {
	client  *Client
	repo    *database.Repository
	logger  *monitoring.Logger
	metrics *monitoring.Metrics
}

// NewSyncer creates a syncer.
func NewSyncer(client *Client, repo *database.Repository, logger *monitoring.Logger, metrics *monitoring.Metrics) *Syncer {
	return &Syncer{client: client, repo: repo, logger: logger, metrics: metrics}
}

// Sync runs one full pull: proposals, votes, then DRep registrations,
// re-enriching every DRep snapshot from the fresh data. Partial failures
// abort the sync; the previous snapshots stay valid.
func (s *Syncer) Sync(ctx context.Context) error {
	start := time.Now()

	proposals, err := s.client.FetchProposals(ctx)
	s.logger.SyncLogger("proposals", len(proposals), time.Since(start), err)
	if err != nil {
		s.metrics.IncrementIngestFailures()
		return err
	}
	for _, p := range proposals {
		if err := scoring.ValidateProposal(p); err != nil {
			continue
		}
		if err := s.repo.UpsertProposal(ctx, p); err != nil {
			s.metrics.IncrementIngestFailures()
			return err
		}
	}

	voteStart := time.Now()
	votes, err := s.client.FetchVotes(ctx)
	s.logger.SyncLogger("votes", len(votes), time.Since(voteStart), err)
	if err != nil {
		s.metrics.IncrementIngestFailures()
		return err
	}
	for _, v := range votes {
		if err := scoring.ValidateVote(v); err != nil {
			continue
		}
		if err := s.repo.UpsertVote(ctx, v); err != nil {
			s.metrics.IncrementIngestFailures()
			return err
		}
	}

	drepStart := time.Now()
	registrations, err := s.client.FetchDReps(ctx)
	s.logger.SyncLogger("dreps", len(registrations), time.Since(drepStart), err)
	if err != nil {
		s.metrics.IncrementIngestFailures()
		return err
	}

	now := time.Now().UTC()
	epoch := CurrentEpoch(now)
	for _, reg := range registrations {
		drepVotes, err := s.repo.GetVotesByDRep(ctx, reg.ID)
		if err != nil {
			return err
		}
		enriched := EnrichDRep(reg, drepVotes, len(proposals), epoch, now)
		if err := s.repo.UpsertDRep(ctx, enriched, now); err != nil {
			return err
		}
	}

	s.metrics.IncrementIngestSyncs()
	return nil
}
