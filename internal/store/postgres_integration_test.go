//go:build integration

package store

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"example.com/ab-bot/internal/game"
	"example.com/ab-bot/internal/migrate"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		url = "postgres://ab:ab@localhost:5432/ab?sslmode=disable"
	}
	require.NoError(t, migrate.Up(url, slog.Default()), "migrations")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx), "postgres is not reachable")
	t.Cleanup(pool.Close)
	return pool
}

func TestUserStore_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	users := NewUserStore(newPool(t))

	u := User{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		DisplayName:  "Amy",
	}
	require.NoError(t, users.Create(ctx, u))

	got, err := users.GetByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.False(t, got.CreatedAt.IsZero())

	dup := u
	dup.ID = uuid.NewString()
	require.ErrorIs(t, users.Create(ctx, dup), ErrEmailTaken)

	_, err = users.GetByID(ctx, uuid.NewString())
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestStatsStore_RecordKeepsBest(t *testing.T) {
	ctx := context.Background()
	stats := NewStatsStore(newPool(t))
	player := uuid.NewString()

	_, ok, err := stats.BestScore(ctx, player)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, stats.Record(ctx, player, game.Outcome{Kind: game.OutcomeGaveUp, Turns: 3}))
	_, ok, err = stats.BestScore(ctx, player)
	require.NoError(t, err)
	assert.False(t, ok, "giving up sets no best score")

	require.NoError(t, stats.Record(ctx, player, game.Outcome{Kind: game.OutcomePlayerWon, Turns: 7, NewBest: true}))
	require.NoError(t, stats.Record(ctx, player, game.Outcome{Kind: game.OutcomePlayerWon, Turns: 5, NewBest: true}))
	require.NoError(t, stats.Record(ctx, player, game.Outcome{Kind: game.OutcomePlayerWon, Turns: 9}))
	require.NoError(t, stats.Record(ctx, player, game.Outcome{Kind: game.OutcomeComputerWon, Turns: 6}))
	require.NoError(t, stats.Record(ctx, player, game.Outcome{Kind: game.OutcomeContradiction, Turns: 4}))

	best, ok, err := stats.BestScore(ctx, player)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5, best)

	st, err := stats.Get(ctx, player)
	require.NoError(t, err)
	assert.Equal(t, 3, st.PlayerWins)
	assert.Equal(t, 1, st.GiveUps)
	assert.Equal(t, 1, st.ComputerWins)
	assert.Equal(t, 1, st.Contradictions)
}

func TestCommentaryStore_LoadsSeededLines(t *testing.T) {
	tables, err := NewCommentaryStore(newPool(t), nil).Load(context.Background())
	require.NoError(t, err)

	defaults := game.DefaultTables()
	for _, tbl := range []game.Table{game.TableNoMode, game.TableEncourage, game.TableComplaint, game.TableFlourish} {
		assert.NotEmpty(t, tables[tbl], tbl.String())
		assert.Subset(t, tables[tbl], defaults[tbl][:1], tbl.String())
	}
}
