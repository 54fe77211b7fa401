package cli

import (
	"fmt"
	"strings"

	"example.com/ab-bot/internal/game"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// C holds pre-configured color objects for printing to the console.
var C = struct {
	Bot, Mark, Info, Header, Prompt, Debug *color.Color
}{
	Bot:    color.New(color.FgHiWhite),
	Mark:   color.New(color.FgHiYellow),
	Info:   color.New(color.FgCyan),
	Header: color.New(color.FgWhite, color.Bold),
	Prompt: color.New(color.FgGreen),
	Debug:  color.New(color.FgMagenta),
}

// ModePromptText is the terminal version of the mode chooser.
const ModePromptText = "請選擇遊戲方式：輸入「玩家猜」自己猜，或先想好數字再輸入「電腦猜」"

var markFaces = map[game.Mark]string{
	game.MarkCrying:    "(T_T)",
	game.MarkSmirk:     "(¬‿¬)",
	game.MarkSad:       "(._.)",
	game.MarkAngry:     "(╬ Ò﹏Ó)",
	game.MarkSurprised: "(O_O)",
}

// RenderText replaces each marked placeholder with a face; unmarked
// placeholders are dropped.
func RenderText(r game.Reply) string {
	faces := make(map[int]string, len(r.Emphasis))
	for _, e := range r.Emphasis {
		faces[e.Offset] = markFaces[e.Mark]
	}

	var b strings.Builder
	for i, ch := range []rune(r.Text) {
		if string(ch) != game.Placeholder {
			b.WriteRune(ch)
			continue
		}
		if f := faces[i]; f != "" {
			b.WriteString(C.Mark.Sprint(f))
		}
	}
	return b.String()
}

// StatusTable renders the session as a small table.
func StatusTable(s game.Session) string {
	t := table.NewWriter()
	t.SetTitle("狀態")
	t.AppendHeader(table.Row{"項目", "值"})
	t.AppendRow(table.Row{"模式", modeLabel(s.Mode)})
	if !s.Idle() {
		t.AppendRow(table.Row{"回合", s.Turn})
	}
	if s.Mode == game.ModeComputerGuesses {
		t.AppendRow(table.Row{"剩餘可能", len(s.Candidates)})
		t.AppendRow(table.Row{"我猜", string(s.Guess)})
	}
	best := "-"
	if s.BestScore != game.NoBestScore {
		best = fmt.Sprintf("%d", s.BestScore)
	}
	t.AppendRow(table.Row{"最佳成績", best})

	t.SetStyle(table.StyleRounded)
	t.Style().Title.Align = text.AlignCenter
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	return t.Render()
}

func modeLabel(m game.Mode) string {
	switch m {
	case game.ModePlayerGuesses:
		return "玩家猜"
	case game.ModeComputerGuesses:
		return "電腦猜"
	default:
		return "未開始"
	}
}
