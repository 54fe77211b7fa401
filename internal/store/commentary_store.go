package store

import (
	"context"
	"fmt"
	"log/slog"

	"example.com/ab-bot/internal/game"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CommentaryStore reads the bot's canned lines from reply_content.
type CommentaryStore struct {
	db  *pgxpool.Pool
	log *slog.Logger
}

func NewCommentaryStore(db *pgxpool.Pool, log *slog.Logger) *CommentaryStore {
	if log == nil {
		log = slog.Default()
	}
	return &CommentaryStore{db: db, log: log}
}

// Load returns every known table in position order. Rows with an unknown
// kind are skipped.
func (s *CommentaryStore) Load(ctx context.Context) (game.StaticTables, error) {
	rows, err := s.db.Query(ctx, `
		SELECT kind, content
		FROM reply_content
		ORDER BY kind, position
	`)
	if err != nil {
		return nil, fmt.Errorf("query reply_content: %w", err)
	}
	defer rows.Close()

	out := game.StaticTables{}
	for rows.Next() {
		var kind, content string
		if err := rows.Scan(&kind, &content); err != nil {
			return nil, fmt.Errorf("scan reply_content: %w", err)
		}
		t, ok := game.ParseTable(kind)
		if !ok {
			s.log.Warn("skipping unknown commentary kind", "kind", kind)
			continue
		}
		out[t] = append(out[t], content)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read reply_content: %w", err)
	}
	return out, nil
}
