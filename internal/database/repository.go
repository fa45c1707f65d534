package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adawatch/drep-radar/internal/scoring"
	"github.com/adawatch/drep-radar/internal/types"
)

// Repository provides data access for proposals, votes, DReps, poll
// responses and scorecard snapshots.
type Repository struct {
	db *DB
}

// NewRepository creates a new repository
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// UpsertProposal stores or refreshes one governance proposal. The
// lifecycle epochs may move from NULL to a value as the action resolves;
// the identity fields never change.
func (r *Repository) UpsertProposal(ctx context.Context, p types.RawProposal) error {
	stmt, err := r.db.GetPreparedStatement("upsert_proposal")
	if err != nil {
		return err
	}

	var withdrawals sql.NullString
	if len(p.WithdrawalsLovelace) > 0 {
		data, err := json.Marshal(p.WithdrawalsLovelace)
		if err != nil {
			return fmt.Errorf("failed to marshal withdrawals: %w", err)
		}
		withdrawals = sql.NullString{String: string(data), Valid: true}
	}

	var title, abstract sql.NullString
	if p.Meta != nil {
		title = sql.NullString{String: p.Meta.Title, Valid: true}
		abstract = sql.NullString{String: p.Meta.Abstract, Valid: true}
	}

	_, err = stmt.ExecContext(ctx,
		p.TxHash, p.Index, string(p.Type), withdrawals, title, abstract,
		p.ProposedEpoch, nullableInt(p.RatifiedEpoch), nullableInt(p.EnactedEpoch),
		nullableInt(p.DroppedEpoch), nullableInt(p.ExpiredEpoch), p.BlockTime)
	if err != nil {
		return fmt.Errorf("failed to upsert proposal %s#%d: %w", p.TxHash, p.Index, err)
	}
	return nil
}

// UpsertVote stores one DRep vote. A second vote by the same DRep on the
// same proposal is ignored; the chain guarantees at most one.
func (r *Repository) UpsertVote(ctx context.Context, v types.DRepVote) error {
	stmt, err := r.db.GetPreparedStatement("upsert_vote")
	if err != nil {
		return err
	}

	var url, hash, body sql.NullString
	if v.Rationale != nil {
		url = sql.NullString{String: v.Rationale.URL, Valid: v.Rationale.URL != ""}
		hash = sql.NullString{String: v.Rationale.Hash, Valid: v.Rationale.Hash != ""}
		if len(v.Rationale.Body) > 0 {
			body = sql.NullString{String: string(v.Rationale.Body), Valid: true}
		}
	}

	_, err = stmt.ExecContext(ctx,
		v.DRepID, v.ProposalTxHash, v.ProposalIndex, v.VoteTxHash,
		string(v.Choice), v.BlockTime, url, hash, body)
	if err != nil {
		return fmt.Errorf("failed to upsert vote %s: %w", v.VoteTxHash, err)
	}
	return nil
}

// UpsertDRep replaces a DRep's enriched snapshot.
func (r *Repository) UpsertDRep(ctx context.Context, d types.EnrichedDRep, now time.Time) error {
	stmt, err := r.db.GetPreparedStatement("upsert_drep")
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(ctx,
		d.ID, d.DisplayName, d.ParticipationRate, d.RationaleRate, d.ReliabilityScore,
		d.Reliability.StreakEpochs, d.Reliability.RecencyDays, d.Reliability.LongestGapDays,
		d.Reliability.TenureEpochs, d.ProfileCompleteness, string(d.SizeTier),
		d.Tally.Yes, d.Tally.No, d.Tally.Abstain, d.DRepScore, now)
	if err != nil {
		return fmt.Errorf("failed to upsert drep %s: %w", d.ID, err)
	}
	return nil
}

// SavePollVote records a delegator's stated position. Re-voting on the
// same proposal replaces the earlier response.
func (r *Repository) SavePollVote(ctx context.Context, v types.PollVote) error {
	stmt, err := r.db.GetPreparedStatement("insert_poll_vote")
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(ctx,
		uuid.New().String(), v.DelegatorID, v.ProposalTxHash, v.ProposalIndex,
		string(v.Choice), v.VotedAt)
	if err != nil {
		return fmt.Errorf("failed to save poll vote: %w", err)
	}
	return nil
}

// SaveScorecard stores a scoring snapshot, replacing any earlier snapshot
// for the same (DRep, epoch) so exactly one canonical row remains.
func (r *Repository) SaveScorecard(ctx context.Context, card scoring.Scorecard) error {
	stmt, err := r.db.GetPreparedStatement("upsert_scorecard")
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(ctx,
		card.DRepID, card.Epoch,
		card.Scores.Treasury, card.Scores.Decentralization, card.Scores.Security,
		card.Scores.Innovation, card.Scores.Transparency, card.Scores.Overall,
		card.VotesAnalyzed, card.CalculatedAt)
	if err != nil {
		return fmt.Errorf("failed to save scorecard for %s epoch %d: %w", card.DRepID, card.Epoch, err)
	}
	return nil
}

// GetProposals returns every stored proposal.
func (r *Repository) GetProposals(ctx context.Context) ([]types.RawProposal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT tx_hash, cert_index, type, withdrawals_lovelace,
		title, abstract, proposed_epoch, ratified_epoch, enacted_epoch, dropped_epoch,
		expired_epoch, block_time FROM proposals ORDER BY block_time ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query proposals: %w", err)
	}
	defer rows.Close()

	var out []types.RawProposal
	for rows.Next() {
		var (
			p           types.RawProposal
			typ         string
			withdrawals sql.NullString
			title       sql.NullString
			abstract    sql.NullString
			ratified    sql.NullInt64
			enacted     sql.NullInt64
			dropped     sql.NullInt64
			expired     sql.NullInt64
		)
		if err := rows.Scan(&p.TxHash, &p.Index, &typ, &withdrawals, &title, &abstract,
			&p.ProposedEpoch, &ratified, &enacted, &dropped, &expired, &p.BlockTime); err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}
		p.Type = types.ProposalType(typ)
		if withdrawals.Valid {
			if err := json.Unmarshal([]byte(withdrawals.String), &p.WithdrawalsLovelace); err != nil {
				return nil, fmt.Errorf("failed to unmarshal withdrawals: %w", err)
			}
		}
		if title.Valid || abstract.Valid {
			p.Meta = &types.ProposalMetadata{Title: title.String, Abstract: abstract.String}
		}
		p.RatifiedEpoch = intPtr(ratified)
		p.EnactedEpoch = intPtr(enacted)
		p.DroppedEpoch = intPtr(dropped)
		p.ExpiredEpoch = intPtr(expired)
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetVotesByDRep returns one DRep's votes in block order.
func (r *Repository) GetVotesByDRep(ctx context.Context, drepID string) ([]types.DRepVote, error) {
	stmt, err := r.db.GetPreparedStatement("get_votes_by_drep")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, drepID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes for %s: %w", drepID, err)
	}
	defer rows.Close()

	return scanVotes(rows)
}

// GetAllVotes returns every vote grouped by DRep, the shape the batch
// scoring pass consumes.
func (r *Repository) GetAllVotes(ctx context.Context) (map[string][]types.DRepVote, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT drep_id, proposal_tx_hash, proposal_index,
		vote_tx_hash, choice, block_time, rationale_url, rationale_hash, rationale_body
		FROM drep_votes ORDER BY block_time ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	votes, err := scanVotes(rows)
	if err != nil {
		return nil, err
	}
	byDRep := make(map[string][]types.DRepVote)
	for _, v := range votes {
		byDRep[v.DRepID] = append(byDRep[v.DRepID], v)
	}
	return byDRep, nil
}

func scanVotes(rows *sql.Rows) ([]types.DRepVote, error) {
	var out []types.DRepVote
	for rows.Next() {
		var (
			v    types.DRepVote
			ch   string
			url  sql.NullString
			hash sql.NullString
			body sql.NullString
		)
		if err := rows.Scan(&v.DRepID, &v.ProposalTxHash, &v.ProposalIndex, &v.VoteTxHash,
			&ch, &v.BlockTime, &url, &hash, &body); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		v.Choice = types.VoteChoice(ch)
		if url.Valid || hash.Valid || body.Valid {
			v.Rationale = &types.VoteRationale{URL: url.String, Hash: hash.String}
			if body.Valid {
				v.Rationale.Body = json.RawMessage(body.String)
			}
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetDRep returns one DRep's enriched snapshot.
func (r *Repository) GetDRep(ctx context.Context, drepID string) (*types.EnrichedDRep, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, display_name, participation_rate, rationale_rate,
		reliability_score, streak_epochs, recency_days, longest_gap_days, tenure_epochs,
		profile_completeness, size_tier, yes_votes, no_votes, abstain_votes, drep_score, updated_at
		FROM dreps WHERE id = ?`, drepID)

	d, err := scanDRep(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get drep %s: %w", drepID, err)
	}
	return d, nil
}

// GetDReps returns every DRep snapshot.
func (r *Repository) GetDReps(ctx context.Context) ([]types.EnrichedDRep, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, display_name, participation_rate, rationale_rate,
		reliability_score, streak_epochs, recency_days, longest_gap_days, tenure_epochs,
		profile_completeness, size_tier, yes_votes, no_votes, abstain_votes, drep_score, updated_at
		FROM dreps ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query dreps: %w", err)
	}
	defer rows.Close()

	var out []types.EnrichedDRep
	for rows.Next() {
		d, err := scanDRep(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan drep: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// GetLeaderboard returns the top DReps by composite score.
func (r *Repository) GetLeaderboard(ctx context.Context, limit int) ([]types.EnrichedDRep, error) {
	stmt, err := r.db.GetPreparedStatement("get_leaderboard")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var out []types.EnrichedDRep
	for rows.Next() {
		d, err := scanDRep(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan drep: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanDRep(row scannable) (*types.EnrichedDRep, error) {
	var (
		d         types.EnrichedDRep
		tier      string
		updatedAt time.Time
	)
	err := row.Scan(&d.ID, &d.DisplayName, &d.ParticipationRate, &d.RationaleRate,
		&d.ReliabilityScore, &d.Reliability.StreakEpochs, &d.Reliability.RecencyDays,
		&d.Reliability.LongestGapDays, &d.Reliability.TenureEpochs,
		&d.ProfileCompleteness, &tier, &d.Tally.Yes, &d.Tally.No, &d.Tally.Abstain,
		&d.DRepScore, &updatedAt)
	if err != nil {
		return nil, err
	}
	d.SizeTier = types.SizeTier(tier)
	return &d, nil
}

// GetPollVotes returns one delegator's poll responses.
func (r *Repository) GetPollVotes(ctx context.Context, delegatorID string) ([]types.PollVote, error) {
	stmt, err := r.db.GetPreparedStatement("get_poll_votes")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, delegatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query poll votes for %s: %w", delegatorID, err)
	}
	defer rows.Close()

	var out []types.PollVote
	for rows.Next() {
		var (
			v  types.PollVote
			ch string
		)
		if err := rows.Scan(&v.DelegatorID, &v.ProposalTxHash, &v.ProposalIndex, &ch, &v.VotedAt); err != nil {
			return nil, fmt.Errorf("failed to scan poll vote: %w", err)
		}
		v.Choice = types.VoteChoice(ch)
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetRecentScorecards returns a DRep's most recent snapshots, newest
// first. Two snapshots are enough for shift detection.
func (r *Repository) GetRecentScorecards(ctx context.Context, drepID string, limit int) ([]scoring.Scorecard, error) {
	stmt, err := r.db.GetPreparedStatement("get_scorecards_by_drep")
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, drepID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scorecards for %s: %w", drepID, err)
	}
	defer rows.Close()

	var out []scoring.Scorecard
	for rows.Next() {
		var card scoring.Scorecard
		if err := rows.Scan(&card.DRepID, &card.Epoch,
			&card.Scores.Treasury, &card.Scores.Decentralization, &card.Scores.Security,
			&card.Scores.Innovation, &card.Scores.Transparency, &card.Scores.Overall,
			&card.VotesAnalyzed, &card.CalculatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan scorecard: %w", err)
		}
		out = append(out, card)
	}
	return out, rows.Err()
}

func nullableInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
