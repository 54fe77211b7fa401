package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"example.com/ab-bot/internal/game"
	"example.com/ab-bot/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserStore interface {
	Create(ctx context.Context, u store.User) error
	GetByEmail(ctx context.Context, email string) (store.User, error)
	GetByID(ctx context.Context, id string) (store.User, error)
}

type StatsStore interface {
	InitForPlayer(ctx context.Context, playerID string) error
	Get(ctx context.Context, playerID string) (store.PlayerStats, error)
}

type SessionReader interface {
	Session(ctx context.Context, playerID string) (game.Session, error)
}

type TokenIssuer interface {
	Sign(userID, displayName string, guest bool, ttl time.Duration) (string, error)
	TokenVerifier
}

// AuthHandler serves the account API. Users and Stats are nil when the
// server runs without Postgres; only guest tokens work then.
type AuthHandler struct {
	Users    UserStore
	Stats    StatsStore
	Sessions SessionReader
	Auth     TokenIssuer
	TokenTTL time.Duration
	Log      *slog.Logger
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GuestRequest struct {
	DisplayName string `json:"displayName"`
}

type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type SessionView struct {
	Mode           string `json:"mode"`
	Turn           int    `json:"turn"`
	BestScore      *int   `json:"bestScore"`
	CandidatesLeft int    `json:"candidatesLeft,omitempty"`
}

const (
	minPasswordLen = 6
	maxNameLen     = 32
)

// Routes mounts the API under r.
func (h *AuthHandler) Routes(r chi.Router) {
	r.Post("/api/auth/register", h.Register)
	r.Post("/api/auth/login", h.Login)
	r.Post("/api/auth/guest", h.Guest)
	r.With(AuthMiddleware(h.Auth)).Get("/api/me", h.Me)
}

func (h *AuthHandler) accountsEnabled(w http.ResponseWriter) bool {
	if h.Users == nil {
		writeError(w, http.StatusServiceUnavailable, "accounts_disabled", "accounts need a database; use /api/auth/guest")
		return false
	}
	return true
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.accountsEnabled(w) {
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.DisplayName = strings.TrimSpace(req.DisplayName)

	if req.Email == "" || req.Password == "" || req.DisplayName == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "email, password and displayName are required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid email")
		return
	}
	if len(req.Password) < minPasswordLen {
		writeError(w, http.StatusBadRequest, "bad_request", "password must be at least 6 chars")
		return
	}
	if len([]rune(req.DisplayName)) > maxNameLen {
		writeError(w, http.StatusBadRequest, "bad_request", "displayName is too long")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to hash password")
		return
	}

	u := store.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
	}

	if err := h.Users.Create(r.Context(), u); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "email_taken", "email already exists")
			return
		}
		h.logger().Error("create user failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to create user")
		return
	}

	// an empty stats row; missing rows read as zeros anyway
	if h.Stats != nil {
		if err := h.Stats.InitForPlayer(r.Context(), u.ID); err != nil {
			h.logger().Warn("init stats failed", "user", u.ID, "err", err)
		}
	}

	h.issue(w, http.StatusCreated, u.ID, u.DisplayName, false)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.accountsEnabled(w) {
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "email and password are required")
		return
	}

	u, err := h.Users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			h.logger().Error("load user failed", "err", err)
		}
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
		return
	}

	h.issue(w, http.StatusOK, u.ID, u.DisplayName, false)
}

// Guest hands out a token for a fresh anonymous player.
func (h *AuthHandler) Guest(w http.ResponseWriter, r *http.Request) {
	var req GuestRequest
	// the body is optional
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json")
		return
	}
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		name = "玩家"
	}
	if len([]rune(name)) > maxNameLen {
		writeError(w, http.StatusBadRequest, "bad_request", "displayName is too long")
		return
	}

	h.issue(w, http.StatusOK, "guest-"+uuid.NewString(), name, true)
}

func (h *AuthHandler) issue(w http.ResponseWriter, status int, userID, name string, guest bool) {
	token, err := h.Auth.Sign(userID, name, guest, h.TokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}
	writeJSON(w, status, LoginResponse{AccessToken: token, UserID: userID, DisplayName: name})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing auth context")
		return
	}

	resp := map[string]any{
		"id":          claims.UserID,
		"displayName": claims.DisplayName,
		"guest":       claims.Guest,
	}

	if !claims.Guest && h.Users != nil {
		u, err := h.Users.GetByID(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "user not found")
			return
		}
		resp["email"] = u.Email
		resp["displayName"] = u.DisplayName
		resp["createdAt"] = u.CreatedAt
	}

	if h.Stats != nil {
		st, err := h.Stats.Get(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal", "failed to load stats")
			return
		}
		resp["stats"] = st
	}

	if h.Sessions != nil {
		sess, err := h.Sessions.Session(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal", "failed to load session")
			return
		}
		resp["session"] = sessionView(sess)
	}

	writeJSON(w, http.StatusOK, resp)
}

func sessionView(s game.Session) SessionView {
	v := SessionView{
		Mode:           s.Mode.String(),
		Turn:           s.Turn,
		CandidatesLeft: len(s.Candidates),
	}
	if s.BestScore != game.NoBestScore {
		best := s.BestScore
		v.BestScore = &best
	}
	return v
}

func (h *AuthHandler) logger() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}
