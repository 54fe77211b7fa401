package chat

import (
	"fmt"

	"example.com/ab-bot/internal/game"
	"github.com/line/line-bot-sdk-go/v7/linebot"
)

// LINE accepts at most five messages per reply token.
const maxLineMessages = 5

type lineEmoji struct {
	productID string
	emojiID   string
}

var lineEmojis = map[game.Mark]lineEmoji{
	game.MarkCrying:    {productID: "5ac1bfd5040ab15980c9b435", emojiID: "179"},
	game.MarkSmirk:     {productID: "5ac21c46040ab15980c9b442", emojiID: "036"},
	game.MarkSad:       {productID: "5ac21c46040ab15980c9b442", emojiID: "052"},
	game.MarkAngry:     {productID: "5ac1bfd5040ab15980c9b435", emojiID: "007"},
	game.MarkSurprised: {productID: "5ac1bfd5040ab15980c9b435", emojiID: "006"},
}

const modePromptAlt = "請選擇遊戲方式"

const modePromptJSON = `{
  "type": "bubble",
  "hero": {
    "type": "image",
    "url": "https://www.core-corner.com/Web/Images/Page/F4Ey0AZZ_20170816.jpg",
    "size": "full",
    "aspectRatio": "20:13",
    "aspectMode": "cover"
  },
  "body": {
    "type": "box",
    "layout": "vertical",
    "contents": [
      {"type": "text", "text": "請選擇遊戲方式：", "weight": "bold", "size": "xl"},
      {"type": "text", "text": "遊戲說明請看我的主頁~", "size": "sm", "color": "#999999", "margin": "md"}
    ]
  },
  "footer": {
    "type": "box",
    "layout": "vertical",
    "spacing": "sm",
    "contents": [
      {
        "type": "button",
        "style": "link",
        "height": "sm",
        "action": {"type": "message", "label": "自己猜", "text": "玩家猜"}
      },
      {
        "type": "box",
        "layout": "horizontal",
        "contents": [
          {
            "type": "button",
            "style": "link",
            "height": "sm",
            "action": {"type": "message", "label": "電腦猜", "text": "電腦猜"}
          },
          {
            "type": "button",
            "style": "link",
            "height": "sm",
            "action": {"type": "message", "label": "(請先想好數字)", "text": "電腦猜"}
          }
        ]
      }
    ]
  }
}`

// renderLine turns engine replies into LINE messages. Marks become LINE
// emojis at the placeholder; the mode prompt becomes a flex bubble.
func renderLine(replies []game.Reply) ([]linebot.SendingMessage, error) {
	out := make([]linebot.SendingMessage, 0, len(replies))
	for _, r := range replies {
		switch r.Kind {
		case game.ReplyModePrompt:
			container, err := linebot.UnmarshalFlexMessageJSON([]byte(modePromptJSON))
			if err != nil {
				return nil, fmt.Errorf("mode prompt: %w", err)
			}
			out = append(out, linebot.NewFlexMessage(modePromptAlt, container))
		default:
			out = append(out, lineText(r))
		}
	}
	if len(out) > maxLineMessages {
		out = out[:maxLineMessages]
	}
	return out, nil
}

func lineText(r game.Reply) *linebot.TextMessage {
	if len(r.Emphasis) == 0 {
		return linebot.NewTextMessage(r.PlainText())
	}

	msg := linebot.NewTextMessage(r.Text)
	runes := []rune(r.Text)
	for _, e := range r.Emphasis {
		em, ok := lineEmojis[e.Mark]
		if !ok || e.Offset >= len(runes) {
			continue
		}
		msg = msg.AddEmoji(linebot.NewEmoji(utf16Index(runes, e.Offset), em.productID, em.emojiID)).(*linebot.TextMessage)
	}
	return msg
}

// utf16Index converts a rune offset to the UTF-16 offset LINE expects.
func utf16Index(runes []rune, offset int) int {
	n := 0
	for _, r := range runes[:offset] {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}
