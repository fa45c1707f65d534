package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the sqlite connection with pooling and prepared statements.
type DB struct {
	*sql.DB
	prepared map[string]*sql.Stmt
	mutex    sync.RWMutex
}

// NewDB opens the governance database, running migrations and preparing
// the hot-path statements.
func NewDB(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "drep_radar.db")
	connStr := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	database := &DB{
		DB:       db,
		prepared: make(map[string]*sql.Stmt),
	}

	if err := database.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := database.initPreparedStatements(); err != nil {
		return nil, fmt.Errorf("failed to initialize prepared statements: %w", err)
	}

	slog.Info("Database initialized", "path", dbPath)
	return database, nil
}

// migrate creates the necessary tables
func (db *DB) migrate() error {
	queries := []string{
		// Governance proposals, keyed by the on-chain action id.
		`CREATE TABLE IF NOT EXISTS proposals (
			tx_hash TEXT NOT NULL,
			cert_index INTEGER NOT NULL,
			type TEXT NOT NULL,
			withdrawals_lovelace TEXT, -- JSON array
			title TEXT,
			abstract TEXT,
			proposed_epoch INTEGER NOT NULL,
			ratified_epoch INTEGER,
			enacted_epoch INTEGER,
			dropped_epoch INTEGER,
			expired_epoch INTEGER,
			block_time DATETIME NOT NULL,
			PRIMARY KEY (tx_hash, cert_index)
		)`,

		// DRep votes, at most one per (drep, proposal).
		`CREATE TABLE IF NOT EXISTS drep_votes (
			drep_id TEXT NOT NULL,
			proposal_tx_hash TEXT NOT NULL,
			proposal_index INTEGER NOT NULL,
			vote_tx_hash TEXT NOT NULL,
			choice TEXT NOT NULL,
			block_time DATETIME NOT NULL,
			rationale_url TEXT,
			rationale_hash TEXT,
			rationale_body TEXT,
			PRIMARY KEY (drep_id, proposal_tx_hash, proposal_index)
		)`,

		// Enriched DRep snapshots, replaced wholesale on each sync.
		`CREATE TABLE IF NOT EXISTS dreps (
			id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			participation_rate REAL NOT NULL,
			rationale_rate REAL NOT NULL,
			reliability_score REAL NOT NULL,
			streak_epochs INTEGER NOT NULL,
			recency_days INTEGER NOT NULL,
			longest_gap_days INTEGER NOT NULL,
			tenure_epochs INTEGER NOT NULL,
			profile_completeness REAL NOT NULL,
			size_tier TEXT NOT NULL,
			yes_votes INTEGER NOT NULL,
			no_votes INTEGER NOT NULL,
			abstain_votes INTEGER NOT NULL,
			drep_score INTEGER NOT NULL,
			updated_at DATETIME NOT NULL
		)`,

		// Delegator poll responses collected off-chain.
		`CREATE TABLE IF NOT EXISTS poll_votes (
			id TEXT NOT NULL,
			delegator_id TEXT NOT NULL,
			proposal_tx_hash TEXT NOT NULL,
			proposal_index INTEGER NOT NULL,
			choice TEXT NOT NULL,
			voted_at DATETIME NOT NULL,
			PRIMARY KEY (delegator_id, proposal_tx_hash, proposal_index)
		)`,

		// Scorecard snapshots: one canonical row per (drep, epoch).
		`CREATE TABLE IF NOT EXISTS scorecards (
			drep_id TEXT NOT NULL,
			epoch INTEGER NOT NULL,
			treasury INTEGER NOT NULL,
			decentralization INTEGER NOT NULL,
			security INTEGER NOT NULL,
			innovation INTEGER NOT NULL,
			transparency INTEGER NOT NULL,
			overall INTEGER NOT NULL,
			votes_analyzed INTEGER NOT NULL,
			calculated_at DATETIME NOT NULL,
			PRIMARY KEY (drep_id, epoch)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_drep_votes_drep ON drep_votes(drep_id, block_time)`,
		`CREATE INDEX IF NOT EXISTS idx_drep_votes_proposal ON drep_votes(proposal_tx_hash, proposal_index)`,
		`CREATE INDEX IF NOT EXISTS idx_poll_votes_delegator ON poll_votes(delegator_id)`,
		`CREATE INDEX IF NOT EXISTS idx_scorecards_drep ON scorecards(drep_id, calculated_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_dreps_score ON dreps(drep_score DESC)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}
	return nil
}

// initPreparedStatements initializes frequently used prepared statements
func (db *DB) initPreparedStatements() error {
	statements := map[string]string{
		"upsert_proposal": `INSERT INTO proposals (
			tx_hash, cert_index, type, withdrawals_lovelace, title, abstract,
			proposed_epoch, ratified_epoch, enacted_epoch, dropped_epoch, expired_epoch, block_time
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(tx_hash, cert_index) DO UPDATE SET
			ratified_epoch = excluded.ratified_epoch,
			enacted_epoch = excluded.enacted_epoch,
			dropped_epoch = excluded.dropped_epoch,
			expired_epoch = excluded.expired_epoch,
			title = excluded.title,
			abstract = excluded.abstract`,

		"upsert_vote": `INSERT INTO drep_votes (
			drep_id, proposal_tx_hash, proposal_index, vote_tx_hash, choice,
			block_time, rationale_url, rationale_hash, rationale_body
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(drep_id, proposal_tx_hash, proposal_index) DO NOTHING`,

		"upsert_drep": `INSERT INTO dreps (
			id, display_name, participation_rate, rationale_rate, reliability_score,
			streak_epochs, recency_days, longest_gap_days, tenure_epochs,
			profile_completeness, size_tier, yes_votes, no_votes, abstain_votes,
			drep_score, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			participation_rate = excluded.participation_rate,
			rationale_rate = excluded.rationale_rate,
			reliability_score = excluded.reliability_score,
			streak_epochs = excluded.streak_epochs,
			recency_days = excluded.recency_days,
			longest_gap_days = excluded.longest_gap_days,
			tenure_epochs = excluded.tenure_epochs,
			profile_completeness = excluded.profile_completeness,
			size_tier = excluded.size_tier,
			yes_votes = excluded.yes_votes,
			no_votes = excluded.no_votes,
			abstain_votes = excluded.abstain_votes,
			drep_score = excluded.drep_score,
			updated_at = excluded.updated_at`,

		"insert_poll_vote": `INSERT INTO poll_votes (
			id, delegator_id, proposal_tx_hash, proposal_index, choice, voted_at
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(delegator_id, proposal_tx_hash, proposal_index) DO UPDATE SET
			choice = excluded.choice,
			voted_at = excluded.voted_at`,

		"upsert_scorecard": `INSERT INTO scorecards (
			drep_id, epoch, treasury, decentralization, security, innovation,
			transparency, overall, votes_analyzed, calculated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(drep_id, epoch) DO UPDATE SET
			treasury = excluded.treasury,
			decentralization = excluded.decentralization,
			security = excluded.security,
			innovation = excluded.innovation,
			transparency = excluded.transparency,
			overall = excluded.overall,
			votes_analyzed = excluded.votes_analyzed,
			calculated_at = excluded.calculated_at`,

		"get_votes_by_drep": `SELECT drep_id, proposal_tx_hash, proposal_index, vote_tx_hash,
			choice, block_time, rationale_url, rationale_hash, rationale_body
			FROM drep_votes WHERE drep_id = ? ORDER BY block_time ASC`,

		"get_scorecards_by_drep": `SELECT drep_id, epoch, treasury, decentralization, security,
			innovation, transparency, overall, votes_analyzed, calculated_at
			FROM scorecards WHERE drep_id = ? ORDER BY calculated_at DESC LIMIT ?`,

		"get_poll_votes": `SELECT delegator_id, proposal_tx_hash, proposal_index, choice, voted_at
			FROM poll_votes WHERE delegator_id = ? ORDER BY voted_at ASC`,

		"get_leaderboard": `SELECT id, display_name, participation_rate, rationale_rate,
			reliability_score, streak_epochs, recency_days, longest_gap_days, tenure_epochs,
			profile_completeness, size_tier, yes_votes, no_votes, abstain_votes, drep_score, updated_at
			FROM dreps ORDER BY drep_score DESC, id ASC LIMIT ?`,
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, query := range statements {
		stmt, err := db.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement %s: %w", name, err)
		}
		db.prepared[name] = stmt
	}
	return nil
}

// GetPreparedStatement retrieves a prepared statement
func (db *DB) GetPreparedStatement(name string) (*sql.Stmt, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	stmt, exists := db.prepared[name]
	if !exists {
		return nil, fmt.Errorf("prepared statement %s not found", name)
	}
	return stmt, nil
}

// Close closes the database connection and prepared statements
func (db *DB) Close() error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	for name, stmt := range db.prepared {
		if err := stmt.Close(); err != nil {
			slog.Warn("Failed to close prepared statement", "name", name, "error", err)
		}
	}
	db.prepared = make(map[string]*sql.Stmt)
	return db.DB.Close()
}
