package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"example.com/ab-bot/internal/game"
	"github.com/line/line-bot-sdk-go/v7/linebot"
)

// LineReplier sends replies back through the LINE Messaging API.
type LineReplier interface {
	Reply(ctx context.Context, replyToken string, replies []game.Reply) error
	DisplayName(ctx context.Context, userID string) (string, error)
}

// LineHandler is the LINE webhook: it verifies the channel signature and
// feeds text, sticker and follow events to the bot.
type LineHandler struct {
	secret  string
	bot     Bot
	replier LineReplier
	log     *slog.Logger
}

func NewLineHandler(channelSecret string, bot Bot, replier LineReplier, log *slog.Logger) *LineHandler {
	if log == nil {
		log = slog.Default()
	}
	return &LineHandler{
		secret:  channelSecret,
		bot:     bot,
		replier: replier,
		log:     log.With("transport", "line"),
	}
}

func (h *LineHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	events, err := linebot.ParseRequest(h.secret, r)
	if err != nil {
		if errors.Is(err, linebot.ErrInvalidSignature) {
			http.Error(w, "invalid signature", http.StatusBadRequest)
			return
		}
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	for _, ev := range events {
		if err := h.handleEvent(r.Context(), ev); err != nil {
			h.log.Error("line event failed", "type", string(ev.Type), "err", err)
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (h *LineHandler) handleEvent(ctx context.Context, ev *linebot.Event) error {
	if ev.Source == nil || ev.Source.UserID == "" || ev.ReplyToken == "" {
		return nil
	}
	userID := ev.Source.UserID

	var replies []game.Reply
	switch ev.Type {
	case linebot.EventTypeFollow:
		name, err := h.replier.DisplayName(ctx, userID)
		if err != nil {
			h.log.Warn("profile lookup failed", "user", userID, "err", err)
		}
		replies = h.bot.Welcome(name)

	case linebot.EventTypeMessage:
		switch msg := ev.Message.(type) {
		case *linebot.TextMessage:
			out, err := h.bot.Handle(ctx, linePlayerID(userID), msg.Text)
			if err != nil {
				return fmt.Errorf("handle text: %w", err)
			}
			replies = out
		case *linebot.StickerMessage:
			replies = h.bot.Sticker()
		default:
			return nil
		}

	default:
		return nil
	}

	if len(replies) == 0 {
		return nil
	}
	return h.replier.Reply(ctx, ev.ReplyToken, replies)
}

// linePlayerID keeps LINE users apart from web accounts and guests.
func linePlayerID(userID string) string {
	return "line-" + userID
}

// SDKReplier is the LineReplier backed by the official SDK client.
type SDKReplier struct {
	client *linebot.Client
}

func NewSDKReplier(channelSecret, channelToken string) (*SDKReplier, error) {
	client, err := linebot.New(channelSecret, channelToken)
	if err != nil {
		return nil, fmt.Errorf("line client: %w", err)
	}
	return &SDKReplier{client: client}, nil
}

func (s *SDKReplier) Reply(ctx context.Context, replyToken string, replies []game.Reply) error {
	msgs, err := renderLine(replies)
	if err != nil {
		return err
	}
	if _, err := s.client.ReplyMessage(replyToken, msgs...).WithContext(ctx).Do(); err != nil {
		return fmt.Errorf("line reply: %w", err)
	}
	return nil
}

func (s *SDKReplier) DisplayName(ctx context.Context, userID string) (string, error) {
	p, err := s.client.GetProfile(userID).WithContext(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("line profile: %w", err)
	}
	return p.DisplayName, nil
}
