package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "LOG_FORMAT", "LOG_LEVEL", "PORT", "HTTP_ADDR",
		"SESSION_BACKEND", "SESSION_TTL", "DATABASE_URL", "RUN_MIGRATIONS",
		"REDIS_ADDR", "REDIS_DB", "SQLITE_PATH", "JWT_SECRET", "JWT_TTL",
		"LINE_CHANNEL_SECRET", "LINE_CHANNEL_TOKEN", "GAME_SEED", "COMMENTARY_REFRESH",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadFromEnv(t *testing.T) {
	cases := []struct {
		name string
		run  func(t *testing.T)
	}{
		{
			name: "defaults run without any service",
			run: func(t *testing.T) {
				clearEnv(t)
				c, err := LoadFromEnv()
				require.NoError(t, err)
				assert.Equal(t, ":8080", c.HTTP.Addr)
				assert.Equal(t, BackendMemory, c.Session.Backend)
				assert.Empty(t, c.Postgres.URL)
				assert.False(t, c.LineEnabled())
				assert.Equal(t, int64(0), c.Game.Seed)
			},
		},
		{
			name: "values are read",
			run: func(t *testing.T) {
				clearEnv(t)
				t.Setenv("PORT", "9000")
				t.Setenv("SESSION_BACKEND", "sqlite")
				t.Setenv("SQLITE_PATH", "/tmp/x.db")
				t.Setenv("GAME_SEED", "42")
				t.Setenv("COMMENTARY_REFRESH", "5m")
				t.Setenv("LINE_CHANNEL_SECRET", "s")
				t.Setenv("LINE_CHANNEL_TOKEN", "t")
				t.Setenv("LOG_LEVEL", "debug")

				c, err := LoadFromEnv()
				require.NoError(t, err)
				assert.Equal(t, ":9000", c.HTTP.Addr)
				assert.Equal(t, BackendSQLite, c.Session.Backend)
				assert.Equal(t, "/tmp/x.db", c.SQLite.Path)
				assert.Equal(t, int64(42), c.Game.Seed)
				assert.Equal(t, 5*time.Minute, c.Game.CommentaryRefresh)
				assert.True(t, c.LineEnabled())
			},
		},
		{
			name: "bad values fall back to defaults",
			run: func(t *testing.T) {
				clearEnv(t)
				t.Setenv("SESSION_TTL", "forever")
				t.Setenv("REDIS_DB", "x")
				c, err := LoadFromEnv()
				require.NoError(t, err)
				assert.Equal(t, 7*24*time.Hour, c.Session.TTL)
				assert.Equal(t, 0, c.Redis.DB)
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, c.run)
	}
}

func TestValidate_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown backend", func(c *Config) { c.Session.Backend = "etcd" }},
		{"line secret without token", func(c *Config) { c.Line.ChannelSecret = "s" }},
		{"line token without secret", func(c *Config) { c.Line.ChannelToken = "t" }},
		{"default jwt secret in prod", func(c *Config) { c.Env = "prod" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
		{"migrations without database", func(c *Config) { c.Postgres.RunMigrations = true }},
		{"redis without address", func(c *Config) { c.Session.Backend = BackendRedis; c.Redis.Addr = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			c, err := LoadFromEnv()
			require.NoError(t, err)
			tc.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
