package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adawatch/drep-radar/internal/cache"
	"github.com/adawatch/drep-radar/internal/config"
	"github.com/adawatch/drep-radar/internal/database"
	apperrors "github.com/adawatch/drep-radar/internal/errors"
	"github.com/adawatch/drep-radar/internal/ingest"
	"github.com/adawatch/drep-radar/internal/monitoring"
	"github.com/adawatch/drep-radar/internal/rankings"
	"github.com/adawatch/drep-radar/internal/scoring"
	"github.com/adawatch/drep-radar/internal/types"
)

// Server holds the HTTP handler dependencies.
type Server struct {
	cfg      config.Config
	repo     *database.Repository
	rankings *rankings.Service
	cache    *cache.Cache
	logger   *monitoring.Logger
	metrics  *monitoring.Metrics
}

// NewServer creates the handler set.
func NewServer(cfg config.Config, repo *database.Repository, rank *rankings.Service, c *cache.Cache, logger *monitoring.Logger, metrics *monitoring.Metrics) *Server {
	return &Server{
		cfg:      cfg,
		repo:     repo,
		rankings: rank,
		cache:    c,
		logger:   logger,
		metrics:  metrics,
	}
}

// Routes registers all API routes on the engine.
func (s *Server) Routes(r *gin.Engine) {
	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api")
	{
		api.GET("/dreps/:id/scorecard", s.handleScorecard)
		api.GET("/dreps/:id/alignment", s.handleAlignment)
		api.GET("/dreps/:id/shift", s.handleShift)
		api.GET("/delegators/:id/representation", s.handleRepresentation)
		api.GET("/delegators/:id/recommendations", s.handleRecommendations)
		api.POST("/delegators/:id/poll-votes", s.handlePollVote)
		api.GET("/leaderboard", s.handleLeaderboard)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"epoch":   ingest.CurrentEpoch(time.Now().UTC()),
		"metrics": s.metrics.Snapshot(),
	})
}

// parsePrefs reads the comma-separated prefs query parameter. An absent
// parameter means an empty selection; an unknown key is a client error.
func parsePrefs(c *gin.Context) ([]types.PreferenceKey, error) {
	raw := strings.TrimSpace(c.Query("prefs"))
	if raw == "" {
		return nil, nil
	}
	var out []types.PreferenceKey
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, ok := types.ParsePreferenceKey(part)
		if !ok {
			return nil, apperrors.NewValidationError("unknown preference key", part)
		}
		out = append(out, key)
	}
	return out, nil
}

// loadDRep resolves the path DRep or aborts with 404.
func (s *Server) loadDRep(c *gin.Context) (*types.EnrichedDRep, bool) {
	id := c.Param("id")
	drep, err := s.repo.GetDRep(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return nil, false
	}
	if drep == nil {
		appErr := apperrors.NewNotFoundError("DRep", id)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
		return nil, false
	}
	return drep, true
}

// matchedVotesFor loads and matches one DRep's votes against the
// classified proposal set.
func (s *Server) matchedVotesFor(c *gin.Context, drepID string) ([]scoring.MatchedVote, error) {
	ctx := c.Request.Context()
	proposals, err := s.repo.GetProposals(ctx)
	if err != nil {
		return nil, err
	}
	votes, err := s.repo.GetVotesByDRep(ctx, drepID)
	if err != nil {
		return nil, err
	}
	return scoring.MatchVotes(votes, scoring.ClassifyProposals(proposals)), nil
}

func (s *Server) handleScorecard(c *gin.Context) {
	drep, ok := s.loadDRep(c)
	if !ok {
		return
	}
	selected, err := parsePrefs(c)
	if err != nil {
		appErr := apperrors.ToAppError(err)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
		return
	}

	epoch := ingest.CurrentEpoch(time.Now().UTC())
	key := cache.Key("scorecard", drep.ID, c.Query("prefs"), strconv.Itoa(epoch))
	if data, ok := s.cache.Get(key); ok {
		c.Data(http.StatusOK, "application/json", data)
		return
	}

	matched, err := s.matchedVotesFor(c, drep.ID)
	if err != nil {
		c.Error(err)
		return
	}

	card := scoring.BuildScorecard(*drep, matched, selected, epoch, time.Now().UTC())
	resp := gin.H{
		"drep": gin.H{
			"id":           drep.ID,
			"display_name": drep.DisplayName,
			"drep_score":   drep.DRepScore,
			"size_tier":    drep.SizeTier,
		},
		"scorecard": card,
	}
	if data, err := json.Marshal(resp); err == nil {
		s.cache.Set(key, data)
		c.Data(http.StatusOK, "application/json", data)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// voteVerdict is one row of the per-vote alignment breakdown.
type voteVerdict struct {
	ProposalTxHash string                  `json:"proposal_tx_hash"`
	ProposalIndex  int                     `json:"proposal_index"`
	ProposalTitle  string                  `json:"proposal_title,omitempty"`
	Choice         types.VoteChoice        `json:"choice"`
	HasRationale   bool                    `json:"has_rationale"`
	Status         scoring.AlignmentStatus `json:"status"`
	Reasons        []string                `json:"reasons"`
}

func (s *Server) handleAlignment(c *gin.Context) {
	drep, ok := s.loadDRep(c)
	if !ok {
		return
	}
	selected, err := parsePrefs(c)
	if err != nil {
		appErr := apperrors.ToAppError(err)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
		return
	}

	matched, err := s.matchedVotesFor(c, drep.ID)
	if err != nil {
		c.Error(err)
		return
	}

	verdicts := make([]voteVerdict, 0, len(matched))
	for _, mv := range matched {
		verdict := scoring.EvaluateVoteAlignment(scoring.VoteContextFrom(mv), selected)
		row := voteVerdict{
			ProposalTxHash: mv.Vote.ProposalTxHash,
			ProposalIndex:  mv.Vote.ProposalIndex,
			Choice:         mv.Vote.Choice,
			HasRationale:   mv.Vote.HasRationale(),
			Status:         verdict.Status,
			Reasons:        verdict.Reasons,
		}
		if mv.Proposal != nil {
			row.ProposalTitle = mv.Proposal.Title
		}
		verdicts = append(verdicts, row)
	}

	c.JSON(http.StatusOK, gin.H{
		"drep_id":  drep.ID,
		"verdicts": verdicts,
	})
}

func (s *Server) handleShift(c *gin.Context) {
	drep, ok := s.loadDRep(c)
	if !ok {
		return
	}
	selected, err := parsePrefs(c)
	if err != nil {
		appErr := apperrors.ToAppError(err)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
		return
	}

	recent, err := s.repo.GetRecentScorecards(c.Request.Context(), drep.ID, 2)
	if err != nil {
		c.Error(err)
		return
	}
	if len(recent) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"drep_id": drep.ID,
			"current": nil,
			"shift":   nil,
		})
		return
	}

	// Both sides of the comparison are snapshots the scoring pass persisted
	// over the full preference set; the selection only scopes which category
	// movements get reported.
	curr := recent[0]
	var prev *scoring.Scorecard
	if len(recent) > 1 && recent[1].Epoch < curr.Epoch {
		prev = &recent[1]
	}

	shift := scoring.DetectShift(prev, curr, drep.DisplayName, selected)
	if shift != nil {
		s.metrics.IncrementShiftsDetected()
		s.logger.ShiftLogger(shift.DRepID, shift.Delta, len(shift.CategoryShifts))
	}

	c.JSON(http.StatusOK, gin.H{
		"drep_id": drep.ID,
		"current": curr,
		"shift":   shift,
	})
}

func (s *Server) handleRepresentation(c *gin.Context) {
	delegatorID := c.Param("id")
	drepID := strings.TrimSpace(c.Query("drep"))
	if drepID == "" {
		appErr := apperrors.NewValidationError("missing required query parameter", "drep")
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
		return
	}

	ctx := c.Request.Context()
	drep, err := s.repo.GetDRep(ctx, drepID)
	if err != nil {
		c.Error(err)
		return
	}
	if drep == nil {
		appErr := apperrors.NewNotFoundError("DRep", drepID)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
		return
	}

	pollVotes, err := s.repo.GetPollVotes(ctx, delegatorID)
	if err != nil {
		c.Error(err)
		return
	}
	drepVotes, err := s.repo.GetVotesByDRep(ctx, drepID)
	if err != nil {
		c.Error(err)
		return
	}

	result := scoring.ScoreRepresentation(pollVotes, drepVotes)
	c.JSON(http.StatusOK, gin.H{
		"delegator_id":   delegatorID,
		"drep_id":        drepID,
		"representation": result,
	})
}

type pollVoteRequest struct {
	ProposalTxHash string `json:"proposal_tx_hash" binding:"required"`
	ProposalIndex  int    `json:"proposal_index"`
	Choice         string `json:"choice" binding:"required"`
}

func (s *Server) handlePollVote(c *gin.Context) {
	var req pollVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := apperrors.NewValidationError("invalid poll vote payload", err.Error())
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
		return
	}

	choice, ok := types.ParseVoteChoice(req.Choice)
	if !ok {
		appErr := apperrors.NewValidationError("unknown vote choice", req.Choice)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
		return
	}

	vote := types.PollVote{
		DelegatorID:    c.Param("id"),
		ProposalTxHash: req.ProposalTxHash,
		ProposalIndex:  req.ProposalIndex,
		Choice:         choice,
		VotedAt:        time.Now().UTC(),
	}
	if err := scoring.ValidatePollVote(vote); err != nil {
		appErr := apperrors.ToAppError(err)
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
		return
	}

	if err := s.repo.SavePollVote(c.Request.Context(), vote); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "recorded"})
}

func (s *Server) handleRecommendations(c *gin.Context) {
	delegatorID := c.Param("id")
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			appErr := apperrors.NewValidationError("limit must be a positive integer", raw)
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
			return
		}
		limit = n
	}

	ctx := c.Request.Context()
	pollVotes, err := s.repo.GetPollVotes(ctx, delegatorID)
	if err != nil {
		c.Error(err)
		return
	}
	dreps, err := s.repo.GetDReps(ctx)
	if err != nil {
		c.Error(err)
		return
	}
	votesByDRep, err := s.repo.GetAllVotes(ctx)
	if err != nil {
		c.Error(err)
		return
	}

	candidates := scoring.RecommendDReps(pollVotes, dreps, votesByDRep, limit)
	c.JSON(http.StatusOK, gin.H{
		"delegator_id": delegatorID,
		"candidates":   candidates,
	})
}

func (s *Server) handleLeaderboard(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			appErr := apperrors.NewValidationError("limit must be a positive integer", raw)
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr)
			return
		}
		limit = n
	}

	resp, err := s.rankings.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
