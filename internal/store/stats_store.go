package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"example.com/ab-bot/internal/game"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PlayerStats struct {
	PlayerID       string    `json:"-"`
	PlayerWins     int       `json:"playerWins"`
	GiveUps        int       `json:"giveUps"`
	ComputerWins   int       `json:"computerWins"`
	Contradictions int       `json:"contradictions"`
	BestTurns      *int      `json:"bestTurns"` // nil until the first PlayerGuesses win
	UpdatedAt      time.Time `json:"updatedAt"`
}

// StatsStore keeps per-player counters. It records finished games for
// game.Service and seeds best scores for sessions that expired.
type StatsStore struct {
	db *pgxpool.Pool
}

func NewStatsStore(db *pgxpool.Pool) *StatsStore {
	return &StatsStore{db: db}
}

var (
	_ game.OutcomeRecorder = (*StatsStore)(nil)
	_ game.BestScoreSource = (*StatsStore)(nil)
)

func (s *StatsStore) InitForPlayer(ctx context.Context, playerID string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO player_stats (player_id)
		VALUES ($1)
		ON CONFLICT (player_id) DO NOTHING
	`, playerID)
	return err
}

// Record bumps the counter for o and keeps the lowest winning turn count.
func (s *StatsStore) Record(ctx context.Context, playerID string, o game.Outcome) error {
	var pw, gu, cw, ct int
	var best *int
	switch o.Kind {
	case game.OutcomePlayerWon:
		pw = 1
		best = &o.Turns
	case game.OutcomeGaveUp:
		gu = 1
	case game.OutcomeComputerWon:
		cw = 1
	case game.OutcomeContradiction:
		ct = 1
	default:
		return fmt.Errorf("unknown outcome %q", o.Kind)
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO player_stats (player_id, player_wins, give_ups, computer_wins, contradictions, best_turns, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (player_id) DO UPDATE SET
			player_wins    = player_stats.player_wins + EXCLUDED.player_wins,
			give_ups       = player_stats.give_ups + EXCLUDED.give_ups,
			computer_wins  = player_stats.computer_wins + EXCLUDED.computer_wins,
			contradictions = player_stats.contradictions + EXCLUDED.contradictions,
			best_turns     = CASE
				WHEN EXCLUDED.best_turns IS NULL THEN player_stats.best_turns
				WHEN player_stats.best_turns IS NULL THEN EXCLUDED.best_turns
				ELSE LEAST(player_stats.best_turns, EXCLUDED.best_turns)
			END,
			updated_at     = now()
	`, playerID, pw, gu, cw, ct, best)
	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}
	return nil
}

func (s *StatsStore) BestScore(ctx context.Context, playerID string) (int, bool, error) {
	var best *int
	err := s.db.QueryRow(ctx,
		`SELECT best_turns FROM player_stats WHERE player_id=$1`, playerID,
	).Scan(&best)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && best == nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return *best, true, nil
}

func (s *StatsStore) Get(ctx context.Context, playerID string) (PlayerStats, error) {
	var st PlayerStats
	err := s.db.QueryRow(ctx, `
		SELECT player_id, player_wins, give_ups, computer_wins, contradictions, best_turns, updated_at
		FROM player_stats
		WHERE player_id=$1
	`, playerID).Scan(&st.PlayerID, &st.PlayerWins, &st.GiveUps, &st.ComputerWins, &st.Contradictions, &st.BestTurns, &st.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		// no games yet
		return PlayerStats{PlayerID: playerID}, nil
	}
	if err != nil {
		return PlayerStats{}, err
	}
	return st, nil
}
