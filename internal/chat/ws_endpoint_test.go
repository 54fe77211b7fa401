package chat

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"example.com/ab-bot/internal/auth"
	"example.com/ab-bot/internal/game"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testVerifier struct{}

func (v testVerifier) Verify(token string) (*auth.Claims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &auth.Claims{UserID: "u1", DisplayName: "Alice"}, nil
}

func newWSServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := NewServer(Config{AuthTimeout: time.Second}, newTestBot(), testVerifier{}, nil, quietLog())
	r := chi.NewRouter()
	srv.Routes(r)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func wsURL(ts *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + path
}

func readEnvelope(t *testing.T, ws *websocket.Conn) Envelope {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env
}

func readReplies(t *testing.T, ws *websocket.Conn) []game.Reply {
	t.Helper()
	env := readEnvelope(t, ws)
	require.Equal(t, TypeReplies, env.Type, string(env.Payload))
	var p RepliesPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	return p.Replies
}

func send(t *testing.T, ws *websocket.Conn, typ string, payload any) {
	t.Helper()
	require.NoError(t, ws.WriteJSON(Envelope{Type: typ, Payload: mustJSON(payload)}))
}

func TestWS_Endpoint_Auth(t *testing.T) {
	ts := newWSServer(t)

	cases := []struct {
		name        string
		urlPath     string
		header      string
		sendAuthMsg string
		wantCode    int // 0 => expect upgrade and a greeting
	}{
		{name: "success_auth_header", urlPath: "/ws", header: "Bearer good"},
		{name: "success_query_token", urlPath: "/ws?token=good"},
		{name: "success_auth_message", urlPath: "/ws", sendAuthMsg: "good"},
		{name: "unauthorized_header", urlPath: "/ws", header: "Bearer bad", wantCode: http.StatusUnauthorized},
		{name: "unauthorized_query", urlPath: "/ws?token=bad", wantCode: http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hdr := http.Header{}
			if tc.header != "" {
				hdr.Set("Authorization", tc.header)
			}

			ws, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, tc.urlPath), hdr)
			if tc.wantCode != 0 {
				if err == nil {
					_ = ws.Close()
					t.Fatalf("expected dial error, got nil")
				}
				require.NotNil(t, resp, "expected HTTP response (err=%v)", err)
				assert.Equal(t, tc.wantCode, resp.StatusCode)
				return
			}
			require.NoError(t, err)
			defer ws.Close()

			if tc.sendAuthMsg != "" {
				send(t, ws, TypeAuth, AuthPayload{Token: tc.sendAuthMsg})
			}

			replies := readReplies(t, ws)
			require.Len(t, replies, 2)
			assert.Equal(t, "Alice你好，歡迎你的加入~", replies[0].Text)
			assert.Equal(t, game.ReplyModePrompt, replies[1].Kind)
		})
	}
}

func TestWS_Endpoint_AuthMessageRequired(t *testing.T) {
	ts := newWSServer(t)

	ws, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/ws"), nil)
	require.NoError(t, err)
	defer ws.Close()

	send(t, ws, TypeMessage, MessagePayload{Text: "電腦猜"})
	env := readEnvelope(t, ws)
	assert.Equal(t, TypeError, env.Type)

	var p ErrorPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, "unauthorized", p.Code)
}

func TestWS_Endpoint_Conversation(t *testing.T) {
	ts := newWSServer(t)

	ws, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/ws?token=good"), nil)
	require.NoError(t, err)
	defer ws.Close()
	readReplies(t, ws) // greeting

	send(t, ws, TypeMessage, MessagePayload{Text: "電腦猜"})
	replies := readReplies(t, ws)
	require.Len(t, replies, 1)
	assert.True(t, strings.HasPrefix(replies[0].Text, "我先猜"))

	send(t, ws, TypeMessage, MessagePayload{Text: "3A1B"})
	replies = readReplies(t, ws)
	assert.Equal(t, "你的A、B數量好像怪怪的喔~", replies[0].Text)

	send(t, ws, TypeSticker, struct{}{})
	replies = readReplies(t, ws)
	assert.Equal(t, game.MarkAngry, replies[0].Emphasis[0].Mark)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("{nope")))
	env := readEnvelope(t, ws)
	assert.Equal(t, TypeError, env.Type)

	send(t, ws, "set_secret", struct{}{})
	env = readEnvelope(t, ws)
	assert.Equal(t, TypeError, env.Type)
}
