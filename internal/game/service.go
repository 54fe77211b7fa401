package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// OutcomeRecorder is told about every finished game.
type OutcomeRecorder interface {
	Record(ctx context.Context, playerID string, o Outcome) error
}

// BestScoreSource seeds the best score of a player whose session is gone
// (for example after a Redis TTL expiry).
type BestScoreSource interface {
	BestScore(ctx context.Context, playerID string) (best int, ok bool, err error)
}

// Service runs turns for many players:
// - serializes turns per player (one in-flight message per player)
// - loads the session, runs the engine, saves the result
// - reports finished games
type Service struct {
	engine *Engine
	store  SessionStore
	log    *slog.Logger

	recorder OutcomeRecorder
	best     BestScoreSource

	locks playerLocks
}

type ServiceOption func(*Service)

func WithRecorder(r OutcomeRecorder) ServiceOption {
	return func(s *Service) { s.recorder = r }
}

func WithBestScores(b BestScoreSource) ServiceOption {
	return func(s *Service) { s.best = b }
}

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.log = l }
}

func NewService(engine *Engine, store SessionStore, opts ...ServiceOption) *Service {
	s := &Service{
		engine: engine,
		store:  store,
		log:    slog.Default(),
		locks:  playerLocks{m: make(map[string]*playerLock)},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handle runs one text message from playerID and returns what to say back.
func (s *Service) Handle(ctx context.Context, playerID, text string) ([]Reply, error) {
	unlock := s.locks.lock(playerID)
	defer unlock()

	sess, err := s.load(ctx, playerID)
	if err != nil {
		return nil, err
	}

	turn := s.engine.Handle(sess, text)
	s.log.Debug("turn handled",
		"player", playerID,
		"mode", turn.Session.Mode.String(),
		"turn", turn.Session.Turn,
	)

	if err := s.store.Save(ctx, playerID, turn.Session.Snapshot()); err != nil {
		return nil, fmt.Errorf("save session %s: %w", playerID, err)
	}

	if turn.Outcome != nil {
		s.finished(ctx, playerID, *turn.Outcome)
	}
	return turn.Replies, nil
}

// Welcome greets a player who just followed the bot.
func (s *Service) Welcome(name string) []Reply {
	return s.engine.Welcome(name)
}

// Sticker answers a sticker message.
func (s *Service) Sticker() []Reply {
	return s.engine.Sticker()
}

// Session returns the current session of playerID without changing it.
func (s *Service) Session(ctx context.Context, playerID string) (Session, error) {
	unlock := s.locks.lock(playerID)
	defer unlock()
	return s.load(ctx, playerID)
}

func (s *Service) load(ctx context.Context, playerID string) (Session, error) {
	snap, found, err := s.store.Load(ctx, playerID)
	if err != nil {
		return Session{}, fmt.Errorf("load session %s: %w", playerID, err)
	}
	if !found {
		return s.fresh(ctx, playerID), nil
	}

	sess, err := RestoreSession(snap)
	if err != nil {
		// a broken record must not lock the player out; keep what we can
		s.log.Warn("discarding unreadable session", "player", playerID, "err", err)
		sess = NewSession()
		if snap.BestScore > 0 {
			sess.BestScore = snap.BestScore
		}
	}
	return sess, nil
}

func (s *Service) fresh(ctx context.Context, playerID string) Session {
	sess := NewSession()
	if s.best == nil {
		return sess
	}
	best, ok, err := s.best.BestScore(ctx, playerID)
	if err != nil {
		s.log.Warn("best score lookup failed", "player", playerID, "err", err)
		return sess
	}
	if ok {
		sess.BestScore = best
	}
	return sess
}

func (s *Service) finished(ctx context.Context, playerID string, o Outcome) {
	s.log.Info("game finished",
		"player", playerID,
		"outcome", string(o.Kind),
		"turns", o.Turns,
		"new_best", o.NewBest,
	)
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, playerID, o); err != nil {
		s.log.Warn("record outcome failed", "player", playerID, "err", err)
	}
}

// playerLocks hands out one mutex per player and forgets it when unused.
type playerLocks struct {
	mu sync.Mutex
	m  map[string]*playerLock
}

type playerLock struct {
	mu   sync.Mutex
	refs int
}

func (l *playerLocks) lock(playerID string) (unlock func()) {
	l.mu.Lock()
	pl, ok := l.m[playerID]
	if !ok {
		pl = &playerLock{}
		l.m[playerID] = pl
	}
	pl.refs++
	l.mu.Unlock()

	pl.mu.Lock()
	return func() {
		pl.mu.Unlock()

		l.mu.Lock()
		pl.refs--
		if pl.refs == 0 {
			delete(l.m, playerID)
		}
		l.mu.Unlock()
	}
}
