package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"example.com/ab-bot/internal/game"
	_ "modernc.org/sqlite"
)

// SQLiteSessionStore keeps one row per player in a local SQLite file.
// Used by single-node deployments that have no Redis.
type SQLiteSessionStore struct {
	db *sql.DB
}

var _ game.SessionStore = (*SQLiteSessionStore)(nil)

func NewSQLiteSessionStore(dbPath string) (*SQLiteSessionStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// one writer at a time avoids SQLITE_BUSY on upserts
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteSessionStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteSessionStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS sessions (
		player_id  TEXT PRIMARY KEY,
		mode       TEXT NOT NULL,
		turn       INTEGER NOT NULL,
		secret     TEXT NOT NULL DEFAULT '',
		candidates TEXT NOT NULL DEFAULT '',
		guess      TEXT NOT NULL DEFAULT '',
		best_score INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteSessionStore) Load(ctx context.Context, playerID string) (game.SessionSnapshot, bool, error) {
	query := `
		SELECT mode, turn, secret, candidates, guess, best_score
		FROM sessions WHERE player_id = ?`

	var snap game.SessionSnapshot
	err := s.db.QueryRowContext(ctx, query, playerID).Scan(
		&snap.Mode, &snap.Turn, &snap.Secret, &snap.Candidates, &snap.Guess, &snap.BestScore,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return game.SessionSnapshot{}, false, nil
	}
	if err != nil {
		return game.SessionSnapshot{}, false, fmt.Errorf("scan session row: %w", err)
	}
	return snap, true, nil
}

func (s *SQLiteSessionStore) Save(ctx context.Context, playerID string, snap game.SessionSnapshot) error {
	query := `
	INSERT INTO sessions (player_id, mode, turn, secret, candidates, guess, best_score, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(player_id) DO UPDATE SET
		mode = excluded.mode,
		turn = excluded.turn,
		secret = excluded.secret,
		candidates = excluded.candidates,
		guess = excluded.guess,
		best_score = excluded.best_score,
		updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		playerID, snap.Mode, snap.Turn, snap.Secret, snap.Candidates, snap.Guess, snap.BestScore,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteSessionStore) Close() error {
	return s.db.Close()
}
