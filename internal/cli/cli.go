package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"example.com/ab-bot/internal/game"
	"github.com/peterh/liner"
)

const localPlayer = "local"

// CLI plays the bot in a terminal, one player, sessions in memory.
type CLI struct {
	bot *game.Service
	out io.Writer
	log *slog.Logger
}

func New(bot *game.Service, out io.Writer, log *slog.Logger) *CLI {
	if log == nil {
		log = slog.Default()
	}
	return &CLI{bot: bot, out: out, log: log}
}

// Run reads lines until /quit, Ctrl-C or EOF.
func (c *CLI) Run(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(completer)

	C.Header.Fprintln(c.out, "--- 1A2B ---")
	c.render(c.bot.Welcome(""))
	C.Debug.Fprintln(c.out, "指令: /status /sticker /help /quit")

	for {
		if ctx.Err() != nil {
			return nil
		}
		input, err := line.Prompt("> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				C.Info.Fprintln(c.out, "\n掰掰~")
				return nil
			}
			return fmt.Errorf("error reading line: %w", err)
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		quit, err := c.Exec(ctx, input)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// Exec handles one line of input and reports whether the user asked to quit.
func (c *CLI) Exec(ctx context.Context, input string) (bool, error) {
	switch strings.ToLower(input) {
	case "/quit", "/q":
		C.Info.Fprintln(c.out, "掰掰~")
		return true, nil
	case "/help", "/h":
		c.printHelp()
		return false, nil
	case "/status", "/s":
		sess, err := c.bot.Session(ctx, localPlayer)
		if err != nil {
			return false, err
		}
		fmt.Fprintln(c.out, StatusTable(sess))
		return false, nil
	case "/sticker":
		c.render(c.bot.Sticker())
		return false, nil
	}

	replies, err := c.bot.Handle(ctx, localPlayer, input)
	if err != nil {
		return false, fmt.Errorf("handle %q: %w", input, err)
	}
	c.render(replies)
	return false, nil
}

func (c *CLI) render(replies []game.Reply) {
	for _, r := range replies {
		if r.Kind == game.ReplyModePrompt {
			C.Prompt.Fprintln(c.out, ModePromptText)
			continue
		}
		C.Bot.Fprintln(c.out, RenderText(r))
	}
}

func (c *CLI) printHelp() {
	C.Header.Fprintln(c.out, "玩法")
	fmt.Fprintln(c.out, "  玩家猜      我想一個數字，你來猜")
	fmt.Fprintln(c.out, "  電腦猜      你想一個數字，我來猜，回我 1A2B、3A、都沒有…")
	fmt.Fprintln(c.out, "  我放棄      看答案")
	fmt.Fprintln(c.out, "  重新開始    回到選單")
	C.Header.Fprintln(c.out, "指令")
	fmt.Fprintln(c.out, "  /status     目前狀態")
	fmt.Fprintln(c.out, "  /sticker    傳貼圖")
	fmt.Fprintln(c.out, "  /quit       離開")
}

func completer(line string) []string {
	var out []string
	for _, w := range []string{"玩家猜", "電腦猜", "我放棄", "重新開始", "都沒有", "答對了", "/status", "/sticker", "/help", "/quit"} {
		if strings.HasPrefix(w, line) {
			out = append(out, w)
		}
	}
	return out
}
