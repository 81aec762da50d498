// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/humangate/internal/model"
	"github.com/verte-zerg/humangate/internal/session"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for session records and run history.
type Store struct {
	db *sql.DB
}

var _ session.Backend = (*Store)(nil)

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS session_records (
			key TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS challenge_runs (
			id INTEGER PRIMARY KEY,
			session_id TEXT NOT NULL,
			challenge TEXT NOT NULL,
			passed INTEGER NOT NULL,
			score REAL,
			attempts INTEGER NOT NULL,
			ended_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_challenge_runs_ended_at ON challenge_runs(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_challenge_runs_challenge ON challenge_runs(challenge);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Load implements session.Backend.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM session_records WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(payload), nil
}

// Save implements session.Backend.
func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_records (key, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		key, string(data), time.Now().Format(time.RFC3339Nano))
	return err
}

// Delete implements session.Backend.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session_records WHERE key = ?`, key)
	return err
}

// InsertRun stores one terminal challenge evaluation.
func (s *Store) InsertRun(ctx context.Context, run model.Run) (int64, error) {
	var score sql.NullFloat64
	if run.Score != nil {
		score = sql.NullFloat64{Float64: *run.Score, Valid: true}
	}
	passed := 0
	if run.Passed {
		passed = 1
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO challenge_runs (session_id, challenge, passed, score, attempts, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.SessionID,
		string(run.Challenge),
		passed,
		score,
		run.Attempts,
		run.EndedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListRuns returns runs filtered by stats config, oldest first.
func (s *Store) ListRuns(ctx context.Context, cfg model.StatsConfig) ([]model.Run, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Challenge != "" {
		clauses = append(clauses, "challenge = ?")
		args = append(args, string(cfg.Challenge))
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT session_id, challenge, passed, score, attempts, ended_at
		FROM challenge_runs
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.Run
	for rows.Next() {
		var (
			run       model.Run
			challenge string
			passed    int
			score     sql.NullFloat64
			endedAt   string
		)
		if err := rows.Scan(&run.SessionID, &challenge, &passed, &score, &run.Attempts, &endedAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		run.Challenge = model.ChallengeID(challenge)
		run.Passed = passed == 1
		if score.Valid {
			v := score.Float64
			run.Score = &v
		}
		run.EndedAt = parsed
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(runs) > cfg.Last {
		runs = runs[len(runs)-cfg.Last:]
	}
	return runs, nil
}

// ChallengeAggregates summarizes the run history per challenge.
func (s *Store) ChallengeAggregates(ctx context.Context) ([]model.ChallengeAggregate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT challenge, COUNT(*) AS runs, SUM(passed) AS passed,
			COALESCE(SUM(score), 0) AS score_sum, COUNT(score) AS scored,
			COALESCE(MAX(score), 0) AS best_score, MAX(attempts) AS attempts
		FROM challenge_runs
		GROUP BY challenge
		ORDER BY challenge`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.ChallengeAggregate
	for rows.Next() {
		var (
			agg       model.ChallengeAggregate
			challenge string
		)
		if err := rows.Scan(&challenge, &agg.Runs, &agg.Passed, &agg.ScoreSum, &agg.Scored, &agg.BestScore, &agg.Attempts); err != nil {
			return nil, err
		}
		agg.Challenge = model.ChallengeID(challenge)
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
