package chat

import (
	"context"
	"log/slog"
	"time"

	"example.com/ab-bot/internal/auth"
	"example.com/ab-bot/internal/game"
	"github.com/go-chi/chi/v5"
)

// Bot is the conversation backend both transports talk to.
type Bot interface {
	Handle(ctx context.Context, playerID, text string) ([]game.Reply, error)
	Welcome(name string) []game.Reply
	Sticker() []game.Reply
}

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type Config struct {
	PingInterval time.Duration // 0 => 25s
	AuthTimeout  time.Duration // how long a tokenless socket may wait for an auth message; 0 => 10s
}

type Server struct {
	cfg      Config
	bot      Bot
	verifier TokenVerifier
	line     *LineHandler
	log      *slog.Logger
}

// NewServer builds the chat transports. line may be nil when the LINE
// channel is not configured.
func NewServer(cfg Config, bot Bot, verifier TokenVerifier, line *LineHandler, log *slog.Logger) *Server {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 25 * time.Second
	}
	if cfg.AuthTimeout <= 0 {
		cfg.AuthTimeout = 10 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		cfg:      cfg,
		bot:      bot,
		verifier: verifier,
		line:     line,
		log:      log,
	}
}

func (s *Server) Routes(r chi.Router) {
	r.Get("/ws", s.handleWS)
	if s.line != nil {
		r.Post("/line/webhook", s.line.ServeHTTP)
	}
}
