package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"example.com/ab-bot/internal/auth"
	"example.com/ab-bot/internal/game"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // MVP
}

const maxMessageSize = 4 << 10

var (
	errAuthRequired = errors.New("first message must be auth")
	errInvalidToken = errors.New("invalid token")
)

type clientConn struct {
	ws   *websocket.Conn
	send chan []byte

	closeOnce sync.Once
}

func (c *clientConn) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
		_ = c.ws.Close()
	})
}

func (c *clientConn) sendEnvelope(env Envelope) {
	b, err := json.Marshal(env)
	if err != nil {
		return
	}
	select {
	case c.send <- b:
	default:
		// writer is behind; drop
	}
}

func (c *clientConn) sendError(code, msg string) {
	c.sendEnvelope(Envelope{Type: TypeError, Payload: mustJSON(ErrorPayload{Code: code, Message: msg})})
}

// handleWS is the browser chat endpoint.
// The JWT comes from "Authorization: Bearer", ?token=, or a first
// {"type":"auth"} message.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	token := requestToken(r)

	var claims *auth.Claims
	if token != "" {
		c, err := s.verifier.Verify(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		claims = c
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	ws.SetReadLimit(maxMessageSize)

	if claims == nil {
		claims, err = s.awaitAuth(ws)
		if err != nil {
			_ = ws.WriteJSON(Envelope{
				Type:    TypeError,
				Payload: mustJSON(ErrorPayload{Code: "unauthorized", Message: err.Error()}),
			})
			_ = ws.Close()
			return
		}
	}

	playerID := claims.UserID
	log := s.log.With("player", playerID, "transport", "ws")
	log.Debug("ws connected")

	cc := &clientConn{
		ws:   ws,
		send: make(chan []byte, 64),
	}

	// writer loop
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(s.cfg.PingInterval)
		defer ticker.Stop()

		for {
			select {
			case msg, ok := <-cc.send:
				if !ok {
					return
				}
				_ = ws.WriteMessage(websocket.TextMessage, msg)
			case <-ticker.C:
				_ = ws.WriteMessage(websocket.PingMessage, []byte{})
			}
		}
	}()

	// greeting
	cc.sendEnvelope(repliesEnvelope(s.bot.Welcome(claims.DisplayName)))

	// reader loop
	ctx := r.Context()
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			break
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			cc.sendError("bad_json", "invalid json")
			continue
		}

		switch env.Type {
		case TypeMessage:
			var p MessagePayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				cc.sendError("bad_input", "invalid payload")
				continue
			}
			s.handleText(ctx, cc, playerID, p.Text)

		case TypeSticker:
			cc.sendEnvelope(repliesEnvelope(s.bot.Sticker()))

		case TypeAuth:
			cc.sendError("bad_input", "already authenticated")

		default:
			cc.sendError("unknown_type", "unknown message type")
		}
	}

	// disconnect
	cc.Close()
	<-done
	log.Debug("ws disconnected")
}

func (s *Server) handleText(ctx context.Context, cc *clientConn, playerID, text string) {
	replies, err := s.bot.Handle(ctx, playerID, text)
	if err != nil {
		s.log.Error("handle message failed", "player", playerID, "err", err)
		cc.sendError("internal", "could not process message, try again")
		return
	}
	cc.sendEnvelope(repliesEnvelope(replies))
}

func (s *Server) awaitAuth(ws *websocket.Conn) (*auth.Claims, error) {
	_ = ws.SetReadDeadline(time.Now().Add(s.cfg.AuthTimeout))
	defer func() { _ = ws.SetReadDeadline(time.Time{}) }()

	var env Envelope
	if err := ws.ReadJSON(&env); err != nil {
		return nil, errAuthRequired
	}
	if env.Type != TypeAuth {
		return nil, errAuthRequired
	}
	var p AuthPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil || p.Token == "" {
		return nil, errAuthRequired
	}
	claims, err := s.verifier.Verify(p.Token)
	if err != nil {
		return nil, errInvalidToken
	}
	return claims, nil
}

func requestToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

func repliesEnvelope(replies []game.Reply) Envelope {
	return Envelope{Type: TypeReplies, Payload: mustJSON(RepliesPayload{Replies: replies})}
}
