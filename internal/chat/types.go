package chat

import (
	"encoding/json"

	"example.com/ab-bot/internal/game"
)

// Envelope WS envelope: {"type":"...","payload":{...}}
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client to server.
const (
	TypeAuth    = "auth"
	TypeMessage = "message"
	TypeSticker = "sticker"
)

// Server to client.
const (
	TypeReplies = "replies"
	TypeError   = "error"
)

type AuthPayload struct {
	Token string `json:"token"`
}

type MessagePayload struct {
	Text string `json:"text"`
}

type RepliesPayload struct {
	Replies []game.Reply `json:"replies"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
