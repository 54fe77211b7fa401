package game

import (
	"errors"
	"fmt"
	"strings"
)

// Player input the engine reacts to regardless of the feedback grammar.
const (
	tokenStartGame   = "開始遊戲"
	tokenGameStart   = "遊戲開始"
	tokenRestart     = "重新開始"
	tokenPlayerGuess = "玩家猜"
	tokenEngineGuess = "電腦猜"
	tokenGiveUp      = "我放棄"
)

// OutcomeKind is how a game ended.
type OutcomeKind string

const (
	OutcomePlayerWon     OutcomeKind = "player_won"
	OutcomeGaveUp        OutcomeKind = "gave_up"
	OutcomeComputerWon   OutcomeKind = "computer_won"
	OutcomeContradiction OutcomeKind = "contradiction"
)

// Outcome describes a finished game.
type Outcome struct {
	Kind    OutcomeKind
	Turns   int
	NewBest bool // PlayerWon only
}

// Turn is the result of handling one player message.
type Turn struct {
	Session Session
	Replies []Reply
	Outcome *Outcome // nil while the game goes on
}

// Engine sequences a conversation: mode choice, guesses, feedback, endings.
// It holds no per-player state, so one Engine serves every session; callers
// must not run two turns of the same session at once.
type Engine struct {
	rnd    Rand
	tables Tables
}

// NewEngine returns an engine drawing from rnd. A nil tables uses DefaultTables.
func NewEngine(rnd Rand, tables Tables) *Engine {
	if tables == nil {
		tables = DefaultTables()
	}
	return &Engine{rnd: rnd, tables: tables}
}

// Handle applies one message to s.
func (e *Engine) Handle(s Session, input string) Turn {
	text := strings.TrimSpace(input)

	switch text {
	case tokenStartGame, tokenGameStart, tokenRestart:
		return Turn{Session: s.reset(), Replies: []Reply{ModePrompt()}}
	case tokenPlayerGuess:
		return e.start(s, ModePlayerGuesses)
	case tokenEngineGuess:
		return e.start(s, ModeComputerGuesses)
	}

	switch s.Mode {
	case ModeNone:
		return Turn{Session: s, Replies: []Reply{Marked(e.line(TableNoMode), MarkCrying)}}
	case ModePlayerGuesses:
		return e.playerTurn(s, text)
	case ModeComputerGuesses:
		return e.computerTurn(s, text)
	default:
		return Turn{Session: s.reset(), Replies: []Reply{ModePrompt()}}
	}
}

// Welcome greets a new follower. The session is not touched.
func (e *Engine) Welcome(name string) []Reply {
	return []Reply{Text(name + "你好，歡迎你的加入~"), ModePrompt()}
}

// Sticker answers a sticker message. The session is not touched.
func (e *Engine) Sticker() []Reply {
	return []Reply{Marked("傳什麼貼圖啦$", MarkAngry)}
}

func (e *Engine) start(s Session, mode Mode) Turn {
	s = s.reset()
	s.Mode = mode
	s.Turn = 1

	switch mode {
	case ModePlayerGuesses:
		s.Secret = RandomCode(e.rnd)
		return Turn{Session: s, Replies: []Reply{
			Text("選好數字了，開始猜吧~"),
			Marked("如果想放棄，可以從下方選項選擇放棄，我不會笑你，但會笑在心裡$", MarkSmirk),
		}}
	case ModeComputerGuesses:
		g := NewGuesser(e.rnd)
		s.Guess = g.Initial()
		s.Candidates = g.Pool()
		return Turn{Session: s, Replies: []Reply{Text("我先猜" + string(s.Guess))}}
	default:
		return Turn{Session: s.reset(), Replies: []Reply{ModePrompt()}}
	}
}

func (e *Engine) playerTurn(s Session, text string) Turn {
	if text == tokenGiveUp {
		replies := []Reply{Text("太遜了吧，答案是" + string(s.Secret) + "啦~"), ModePrompt()}
		return Turn{
			Session: s.reset(),
			Replies: replies,
			Outcome: &Outcome{Kind: OutcomeGaveUp, Turns: s.Turn},
		}
	}

	guess, err := ParseCode(text)
	switch {
	case errors.Is(err, ErrUnrecognized):
		return Turn{Session: s, Replies: []Reply{Marked(e.line(TableComplaint), MarkSad)}}
	case errors.Is(err, ErrDuplicateDigits):
		return Turn{Session: s, Replies: []Reply{Text("數字怎麼可以重複，這樣我怎麼給你結果~")}}
	case guess == s.Secret:
		return e.playerWon(s)
	}

	r := Score(s.Secret, guess)
	line := string(guess) + " => " + r.String()
	if closeCall(r) {
		line += "，" + e.line(TableEncourage)
	}
	s.Turn++
	return Turn{Session: s, Replies: []Reply{Text(line)}}
}

func (e *Engine) playerWon(s Session) Turn {
	turns := s.Turn
	hadBest := s.BestScore != NoBestScore

	replies := []Reply{
		Text("恭喜你猜對了，正確答案就是" + string(s.Secret)),
		Text(fmt.Sprintf("很厲害嘛，總共猜了%d次~", turns)),
	}
	newBest := s.recordBest(turns)
	if newBest && hadBest {
		replies = append(replies, Text(fmt.Sprintf("打破紀錄了，你的最佳成績變成%d次!", turns)))
	}
	replies = append(replies, ModePrompt())

	return Turn{
		Session: s.reset(),
		Replies: replies,
		Outcome: &Outcome{Kind: OutcomePlayerWon, Turns: turns, NewBest: newBest},
	}
}

func (e *Engine) computerTurn(s Session, text string) Turn {
	fb, err := ParseReply(text)
	switch {
	case errors.Is(err, ErrUnrecognized):
		return Turn{Session: s, Replies: []Reply{Text("跟我說結果嘛，我想繼續猜~")}}
	case err != nil:
		return Turn{Session: s, Replies: []Reply{Text("你的A、B數量好像怪怪的喔~")}}
	case fb == Win:
		return e.computerWon(s)
	}

	g := ResumeGuesser(e.rnd, s.Candidates, s.Guess)
	next, err := g.Advance(fb)
	if errors.Is(err, ErrExhausted) {
		return Turn{
			Session: s.reset(),
			Replies: []Reply{
				Text("你是不是之前有講錯啊，怎麼沒答案!"),
				Text("想繼續玩就從下方選項選擇重新開始吧~"),
			},
			Outcome: &Outcome{Kind: OutcomeContradiction, Turns: s.Turn},
		}
	}
	if err != nil {
		return Turn{Session: s, Replies: []Reply{Text("你的A、B數量好像怪怪的喔~")}}
	}

	prefix := "那我猜"
	if closeCall(fb) {
		if l := e.line(TableFlourish); l != "" {
			prefix = l
		}
	}
	s.Candidates = g.Pool()
	s.Guess = next
	s.Turn++
	return Turn{Session: s, Replies: []Reply{Text(prefix + string(next))}}
}

func (e *Engine) computerWon(s Session) Turn {
	n := s.Turn
	var r Reply
	switch {
	case n <= 4:
		r = Text(fmt.Sprintf("我只花了%d次就猜對了，厲害吧!", n))
	case n <= 8:
		r = Text(fmt.Sprintf("太棒了~我花了%d次猜對", n))
	default:
		r = Marked(fmt.Sprintf("什麼$，我居然花了%d次才猜對，該閉關修煉了!", n), MarkSurprised)
	}
	return Turn{
		Session: s.reset(),
		Replies: []Reply{r, ModePrompt()},
		Outcome: &Outcome{Kind: OutcomeComputerWon, Turns: n},
	}
}

// closeCall keeps the original trigger, a+b==4 || a==3, as written.
func closeCall(r ScoreResult) bool {
	return r.A+r.B == CodeLen || r.A == CodeLen-1
}

func (e *Engine) line(t Table) string {
	return pick(e.rnd, e.tables.Lines(t))
}
