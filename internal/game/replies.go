package game

import "strings"

// Placeholder marks where an emphasis mark goes inside reply text.
const Placeholder = "$"

// ReplyKind tells the transport how to render a reply item.
type ReplyKind string

const (
	ReplyText       ReplyKind = "text"
	ReplyModePrompt ReplyKind = "mode_prompt"
)

// Mark is a decoration the transport places at an offset (an emoji on LINE).
type Mark string

const (
	MarkCrying    Mark = "crying"
	MarkSmirk     Mark = "smirk"
	MarkSad       Mark = "sad"
	MarkAngry     Mark = "angry"
	MarkSurprised Mark = "surprised"
)

// Emphasis places a mark at a character (rune) offset of the reply text.
type Emphasis struct {
	Offset int  `json:"offset"`
	Mark   Mark `json:"mark"`
}

// Reply is one item of what the bot says back.
type Reply struct {
	Kind     ReplyKind  `json:"kind"`
	Text     string     `json:"text,omitempty"`
	Emphasis []Emphasis `json:"emphasis,omitempty"`
}

// Text is a plain text reply.
func Text(s string) Reply {
	return Reply{Kind: ReplyText, Text: s}
}

// ModePrompt asks the player to choose who guesses.
func ModePrompt() Reply {
	return Reply{Kind: ReplyModePrompt}
}

// Marked binds marks to the Placeholder occurrences of text, left to right.
// Marks without a placeholder left are dropped.
func Marked(text string, marks ...Mark) Reply {
	r := Text(text)
	runes := []rune(text)
	from := 0
	for _, m := range marks {
		idx := indexRune(runes, from, '$')
		if idx < 0 {
			break
		}
		r.Emphasis = append(r.Emphasis, Emphasis{Offset: idx, Mark: m})
		from = idx + 1
	}
	return r
}

func indexRune(runes []rune, from int, want rune) int {
	for i := from; i < len(runes); i++ {
		if runes[i] == want {
			return i
		}
	}
	return -1
}

// PlainText renders r with its placeholders removed, for transports that
// cannot show marks.
func (r Reply) PlainText() string {
	return strings.ReplaceAll(r.Text, Placeholder, "")
}
