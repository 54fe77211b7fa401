package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"example.com/ab-bot/internal/auth"
	"example.com/ab-bot/internal/game"
	"example.com/ab-bot/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUsers struct {
	mu   sync.Mutex
	byID map[string]store.User
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]store.User{}} }

func (m *memUsers) Create(_ context.Context, u store.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.byID {
		if v.Email == u.Email {
			return store.ErrEmailTaken
		}
	}
	u.CreatedAt = time.Now()
	m.byID[u.ID] = u
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.byID {
		if v.Email == email {
			return v, nil
		}
	}
	return store.User{}, store.ErrUserNotFound
}

func (m *memUsers) GetByID(_ context.Context, id string) (store.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return store.User{}, store.ErrUserNotFound
	}
	return u, nil
}

type memStats struct{}

func (memStats) InitForPlayer(context.Context, string) error { return nil }

func (memStats) Get(_ context.Context, id string) (store.PlayerStats, error) {
	best := 4
	return store.PlayerStats{PlayerID: id, PlayerWins: 2, BestTurns: &best}, nil
}

type testEnv struct {
	srv      *httptest.Server
	sessions *game.Service
}

func newTestEnv(t *testing.T, withDB bool) testEnv {
	t.Helper()
	sessions := game.NewService(game.NewEngine(game.NewRand(1), nil), game.NewMemorySessionStore(),
		game.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	h := &AuthHandler{
		Sessions: sessions,
		Auth:     auth.NewService([]byte("test")),
		TokenTTL: time.Hour,
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if withDB {
		h.Users = newMemUsers()
		h.Stats = memStats{}
	}

	r := chi.NewRouter()
	h.Routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return testEnv{srv: srv, sessions: sessions}
}

func (e testEnv) do(t *testing.T, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, e.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestAuthHandler(t *testing.T) {
	cases := []struct {
		name string
		run  func(t *testing.T)
	}{
		{
			name: "register, login and me",
			run: func(t *testing.T) {
				env := newTestEnv(t, true)

				code, body := env.do(t, http.MethodPost, "/api/auth/register", "",
					`{"email":" Amy@Example.com ","password":"secret1","displayName":"Amy"}`)
				require.Equal(t, http.StatusCreated, code, body)
				assert.NotEmpty(t, body["accessToken"])

				code, body = env.do(t, http.MethodPost, "/api/auth/register", "",
					`{"email":"amy@example.com","password":"secret2","displayName":"Amy2"}`)
				assert.Equal(t, http.StatusConflict, code)
				assert.Equal(t, "email_taken", body["code"])

				code, _ = env.do(t, http.MethodPost, "/api/auth/login", "",
					`{"email":"amy@example.com","password":"wrong!!"}`)
				assert.Equal(t, http.StatusUnauthorized, code)

				code, body = env.do(t, http.MethodPost, "/api/auth/login", "",
					`{"email":"amy@example.com","password":"secret1"}`)
				require.Equal(t, http.StatusOK, code)
				token := body["accessToken"].(string)

				code, body = env.do(t, http.MethodGet, "/api/me", token, "")
				require.Equal(t, http.StatusOK, code)
				assert.Equal(t, "amy@example.com", body["email"])
				assert.Equal(t, false, body["guest"])
				stats := body["stats"].(map[string]any)
				assert.EqualValues(t, 2, stats["playerWins"])
				session := body["session"].(map[string]any)
				assert.Equal(t, "none", session["mode"])
			},
		},
		{
			name: "register validates input",
			run: func(t *testing.T) {
				env := newTestEnv(t, true)
				for _, body := range []string{
					`not json`,
					`{"email":"a@b.c","password":"secret1"}`,
					`{"email":"nope","password":"secret1","displayName":"x"}`,
					`{"email":"a@b.c","password":"123","displayName":"x"}`,
				} {
					code, resp := env.do(t, http.MethodPost, "/api/auth/register", "", body)
					assert.Equal(t, http.StatusBadRequest, code, body)
					assert.Equal(t, "bad_request", resp["code"])
				}
			},
		},
		{
			name: "guest works without a database and sees the live session",
			run: func(t *testing.T) {
				env := newTestEnv(t, false)

				code, body := env.do(t, http.MethodPost, "/api/auth/guest", "", `{"displayName":"小明"}`)
				require.Equal(t, http.StatusOK, code)
				assert.Equal(t, "小明", body["displayName"])
				id := body["userId"].(string)
				assert.True(t, strings.HasPrefix(id, "guest-"))
				token := body["accessToken"].(string)

				_, err := env.sessions.Handle(context.Background(), id, "電腦猜")
				require.NoError(t, err)

				code, body = env.do(t, http.MethodGet, "/api/me", token, "")
				require.Equal(t, http.StatusOK, code)
				assert.Equal(t, true, body["guest"])
				assert.Nil(t, body["stats"])
				session := body["session"].(map[string]any)
				assert.Equal(t, "computer", session["mode"])
				assert.EqualValues(t, game.PoolSize, session["candidatesLeft"])
				assert.Nil(t, session["bestScore"])
			},
		},
		{
			name: "guest body is optional",
			run: func(t *testing.T) {
				env := newTestEnv(t, false)
				code, body := env.do(t, http.MethodPost, "/api/auth/guest", "", "")
				require.Equal(t, http.StatusOK, code)
				assert.Equal(t, "玩家", body["displayName"])
			},
		},
		{
			name: "accounts are disabled without a database",
			run: func(t *testing.T) {
				env := newTestEnv(t, false)
				code, body := env.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"a@b.c","password":"x"}`)
				assert.Equal(t, http.StatusServiceUnavailable, code)
				assert.Equal(t, "accounts_disabled", body["code"])
			},
		},
		{
			name: "me needs a valid token",
			run: func(t *testing.T) {
				env := newTestEnv(t, false)
				code, _ := env.do(t, http.MethodGet, "/api/me", "", "")
				assert.Equal(t, http.StatusUnauthorized, code)
				code, _ = env.do(t, http.MethodGet, "/api/me", "garbage", "")
				assert.Equal(t, http.StatusUnauthorized, code)
			},
		},
		{
			name: "wrong method is rejected by the router",
			run: func(t *testing.T) {
				env := newTestEnv(t, false)
				code, _ := env.do(t, http.MethodGet, "/api/auth/guest", "", "")
				assert.Equal(t, http.StatusMethodNotAllowed, code)
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, c.run)
	}
}
