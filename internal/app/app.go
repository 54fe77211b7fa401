package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"example.com/ab-bot/internal/auth"
	"example.com/ab-bot/internal/chat"
	"example.com/ab-bot/internal/config"
	"example.com/ab-bot/internal/game"
	"example.com/ab-bot/internal/httpapi"
	"example.com/ab-bot/internal/migrate"
	"example.com/ab-bot/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg config.Config
	log *slog.Logger

	db     *pgxpool.Pool             // nil without DATABASE_URL
	rdb    *redis.Client             // nil unless SESSION_BACKEND=redis
	sqlite *store.SQLiteSessionStore // nil unless SESSION_BACKEND=sqlite

	tables     *game.SwappableTables
	commentary *store.CommentaryStore // nil without DATABASE_URL

	srv *http.Server
}

type Options struct {
	Static http.Handler // optional; if nil, no frontend is served
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger, opts Options) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	a := &App{cfg: cfg, log: log, tables: game.NewSwappableTables()}

	ok := false
	defer func() {
		if !ok {
			_ = a.Close(context.Background())
		}
	}()

	// Quick connectivity checks (fail fast).
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// --- Postgres (optional) ---
	if cfg.Postgres.URL != "" {
		if cfg.Postgres.RunMigrations {
			if err := migrate.Up(cfg.Postgres.URL, log); err != nil {
				return nil, err
			}
		}
		dbpool, err := pgxpool.New(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("pgxpool: %w", err)
		}
		a.db = dbpool
		if err := dbpool.Ping(pingCtx); err != nil {
			return nil, fmt.Errorf("postgres ping: %w", err)
		}
		a.commentary = store.NewCommentaryStore(dbpool, log)
	} else {
		log.Info("DATABASE_URL not set; accounts and stats disabled")
	}

	// --- Sessions ---
	sessions, err := a.sessionStore(pingCtx)
	if err != nil {
		return nil, err
	}

	// --- Game ---
	if a.commentary != nil {
		a.refreshCommentary(ctx)
	}
	engine := game.NewEngine(game.NewRand(cfg.Game.Seed), a.tables)

	svcOpts := []game.ServiceOption{game.WithLogger(log)}
	var stats *store.StatsStore
	if a.db != nil {
		stats = store.NewStatsStore(a.db)
		svcOpts = append(svcOpts, game.WithRecorder(stats), game.WithBestScores(stats))
	}
	bot := game.NewService(engine, sessions, svcOpts...)

	// --- Auth ---
	authSvc := auth.NewService([]byte(cfg.Auth.Secret))
	authH := &httpapi.AuthHandler{
		Sessions: bot,
		Auth:     authSvc,
		TokenTTL: cfg.Auth.TokenTTL,
		Log:      log,
	}
	if a.db != nil {
		authH.Users = store.NewUserStore(a.db)
		authH.Stats = stats
	}

	// --- Transports ---
	var line *chat.LineHandler
	if cfg.LineEnabled() {
		replier, err := chat.NewSDKReplier(cfg.Line.ChannelSecret, cfg.Line.ChannelToken)
		if err != nil {
			return nil, err
		}
		line = chat.NewLineHandler(cfg.Line.ChannelSecret, bot, replier, log)
	}
	chatSrv := chat.NewServer(chat.Config{}, bot, authSvc, line, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	authH.Routes(r)
	r.Handle("/api/*", http.HandlerFunc(httpapi.NotFound))
	chatSrv.Routes(r)

	if opts.Static != nil {
		r.Get("/*", opts.Static.ServeHTTP)
	}

	a.srv = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	log.Info("app configured",
		"session_backend", cfg.Session.Backend,
		"accounts", a.db != nil,
		"line", line != nil,
	)
	ok = true
	return a, nil
}

func (a *App) sessionStore(ctx context.Context) (game.SessionStore, error) {
	switch a.cfg.Session.Backend {
	case config.BackendRedis:
		a.rdb = redis.NewClient(&redis.Options{
			Addr: a.cfg.Redis.Addr,
			DB:   a.cfg.Redis.DB,
		})
		if err := a.rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping (%s db=%d): %w", a.cfg.Redis.Addr, a.cfg.Redis.DB, err)
		}
		return game.NewRedisSessionStore(a.rdb, a.cfg.Session.TTL), nil

	case config.BackendSQLite:
		s, err := store.NewSQLiteSessionStore(a.cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("sqlite sessions: %w", err)
		}
		a.sqlite = s
		return s, nil

	default:
		return game.NewMemorySessionStore(), nil
	}
}

// refreshCommentary reloads the commentary tables. A failed load keeps the
// tables already in use.
func (a *App) refreshCommentary(ctx context.Context) {
	t, err := a.commentary.Load(ctx)
	if err != nil {
		a.log.Warn("commentary load failed; keeping current lines", "err", err)
		return
	}
	a.tables.Swap(t)
	a.log.Debug("commentary loaded", "tables", len(t))
}

// Handler exposes the router, for tests.
func (a *App) Handler() http.Handler {
	return a.srv.Handler
}

func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	a.log.Info("http server starting", "addr", a.cfg.HTTP.Addr)

	g.Go(func() error {
		err := a.srv.ListenAndServe()
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		a.log.Info("http server shutting down")
		_ = a.srv.Shutdown(shutdownCtx)
		return nil
	})

	if a.commentary != nil && a.cfg.Game.CommentaryRefresh > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(a.cfg.Game.CommentaryRefresh)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					a.refreshCommentary(gctx)
				}
			}
		})
	}

	err := g.Wait()
	_ = a.Close(context.Background())
	return err
}

func (a *App) Close(ctx context.Context) error {
	// best-effort
	if a.db != nil {
		a.db.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.sqlite != nil {
		_ = a.sqlite.Close()
	}
	return nil
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"dur", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
