package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config describes all runtime settings for the server.
// Loaded once in main, validated, then passed down explicitly.
type Config struct {
	Env string // dev|stage|prod

	Log struct {
		Format string // text|json
		Level  string // debug|info|warn|error
	}

	HTTP struct {
		Addr              string
		ReadHeaderTimeout time.Duration
		ReadTimeout       time.Duration
		WriteTimeout      time.Duration
		IdleTimeout       time.Duration
		ShutdownTimeout   time.Duration
	}

	Session struct {
		Backend string        // memory|redis|sqlite
		TTL     time.Duration // redis only; 0 => keep forever
	}

	// Postgres is optional: an empty URL turns accounts, stats and
	// commentary loading off.
	Postgres struct {
		URL           string
		RunMigrations bool
	}

	Redis struct {
		Addr string
		DB   int
	}

	SQLite struct {
		Path string
	}

	Auth struct {
		Secret   string
		TokenTTL time.Duration
	}

	Line struct {
		ChannelSecret string
		ChannelToken  string
	}

	Game struct {
		Seed              int64         // 0 => time based
		CommentaryRefresh time.Duration // 0 => load once at startup
	}
}

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

func LoadFromEnv() (Config, error) {
	var c Config

	c.Env = envString("APP_ENV", "dev")
	c.Log.Format = envString("LOG_FORMAT", "text")
	c.Log.Level = envString("LOG_LEVEL", "info")

	port := envString("PORT", "8080")
	c.HTTP.Addr = envString("HTTP_ADDR", ":"+port)
	c.HTTP.ReadHeaderTimeout = envDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second)
	c.HTTP.ReadTimeout = envDuration("HTTP_READ_TIMEOUT", 0)
	c.HTTP.WriteTimeout = envDuration("HTTP_WRITE_TIMEOUT", 0)
	c.HTTP.IdleTimeout = envDuration("HTTP_IDLE_TIMEOUT", 60*time.Second)
	c.HTTP.ShutdownTimeout = envDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second)

	c.Session.Backend = envString("SESSION_BACKEND", BackendMemory)
	c.Session.TTL = envDuration("SESSION_TTL", 7*24*time.Hour)

	c.Postgres.URL = envString("DATABASE_URL", "")
	c.Postgres.RunMigrations = envBool("RUN_MIGRATIONS", false)

	c.Redis.Addr = envString("REDIS_ADDR", "localhost:6379")
	c.Redis.DB = envInt("REDIS_DB", 0)

	c.SQLite.Path = envString("SQLITE_PATH", "./data/sessions.db")

	c.Auth.Secret = envString("JWT_SECRET", "dev-secret-change-me")
	c.Auth.TokenTTL = envDuration("JWT_TTL", 24*time.Hour)

	c.Line.ChannelSecret = envString("LINE_CHANNEL_SECRET", "")
	c.Line.ChannelToken = envString("LINE_CHANNEL_TOKEN", "")

	c.Game.Seed = int64(envInt("GAME_SEED", 0))
	c.Game.CommentaryRefresh = envDuration("COMMENTARY_REFRESH", 0)

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("HTTP addr is empty")
	}
	if c.Auth.Secret == "" {
		return errors.New("JWT_SECRET is empty")
	}
	if c.Env != "dev" && c.Auth.Secret == "dev-secret-change-me" {
		return fmt.Errorf("refuse to run with default JWT_SECRET in %s", c.Env)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("unsupported LOG_FORMAT=%q (want text|json)", c.Log.Format)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported LOG_LEVEL=%q (want debug|info|warn|error)", c.Log.Level)
	}

	switch c.Session.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Redis.Addr == "" {
			return errors.New("REDIS_ADDR is empty")
		}
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return errors.New("SQLITE_PATH is empty")
		}
	default:
		return fmt.Errorf("unsupported SESSION_BACKEND=%q (want memory|redis|sqlite)", c.Session.Backend)
	}
	if c.Session.TTL < 0 {
		return errors.New("SESSION_TTL must not be negative")
	}

	if (c.Line.ChannelSecret == "") != (c.Line.ChannelToken == "") {
		return errors.New("LINE_CHANNEL_SECRET and LINE_CHANNEL_TOKEN must be set together")
	}
	if c.Postgres.RunMigrations && c.Postgres.URL == "" {
		return errors.New("RUN_MIGRATIONS needs DATABASE_URL")
	}
	if c.Game.CommentaryRefresh < 0 {
		return errors.New("COMMENTARY_REFRESH must not be negative")
	}
	return nil
}

// LineEnabled reports whether the LINE webhook should be served.
func (c Config) LineEnabled() bool {
	return c.Line.ChannelSecret != ""
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
