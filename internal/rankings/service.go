package rankings

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/adawatch/drep-radar/internal/cache"
	"github.com/adawatch/drep-radar/internal/database"
	"github.com/adawatch/drep-radar/internal/types"
)

// Entry is one leaderboard row.
type Entry struct {
	Rank              int            `json:"rank"`
	DRepID            string         `json:"drep_id"`
	DisplayName       string         `json:"display_name"`
	DRepScore         int            `json:"drep_score"`
	ParticipationRate float64        `json:"participation_rate"`
	RationaleRate     float64        `json:"rationale_rate"`
	SizeTier          types.SizeTier `json:"size_tier"`
	VotesCast         int            `json:"votes_cast"`
}

// Response is the leaderboard payload.
type Response struct {
	Entries     []Entry   `json:"entries"`
	Total       int       `json:"total"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Service ranks DReps by their composite reputation score.
type Service struct {
	repo  *database.Repository
	cache *cache.Cache
}

// NewService creates a new rankings service
func NewService(repo *database.Repository, c *cache.Cache) *Service {
	return &Service{repo: repo, cache: c}
}

const defaultLimit = 50
const maxLimit = 500

// Leaderboard returns the top DReps by composite score. Ties are broken
// by DRep id so ranks are stable between requests.
func (s *Service) Leaderboard(ctx context.Context, limit int) (*Response, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	key := cache.Key("leaderboard", strconv.Itoa(limit))
	if data, ok := s.cache.Get(key); ok {
		var resp Response
		if err := json.Unmarshal(data, &resp); err == nil {
			return &resp, nil
		}
		s.cache.Invalidate(key)
	}

	dreps, err := s.repo.GetLeaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Entries:     make([]Entry, 0, len(dreps)),
		Total:       len(dreps),
		GeneratedAt: time.Now().UTC(),
	}
	for i, d := range dreps {
		resp.Entries = append(resp.Entries, Entry{
			Rank:              i + 1,
			DRepID:            d.ID,
			DisplayName:       d.DisplayName,
			DRepScore:         d.DRepScore,
			ParticipationRate: d.ParticipationRate,
			RationaleRate:     d.RationaleRate,
			SizeTier:          d.SizeTier,
			VotesCast:         d.Tally.Yes + d.Tally.No + d.Tally.Abstain,
		})
	}

	if data, err := json.Marshal(resp); err == nil {
		s.cache.Set(key, data)
	} else {
		slog.Warn("Failed to cache leaderboard", "error", err)
	}
	return resp, nil
}

// InvalidateAll drops cached rankings after a scoring pass.
func (s *Service) InvalidateAll() {
	s.cache.Flush()
}
