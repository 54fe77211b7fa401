package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"example.com/ab-bot/internal/cli"
	"example.com/ab-bot/internal/game"
)

func main() {
	seed := flag.Int64("seed", 0, "random seed (0 = time based)")
	logLevel := flag.String("loglevel", "warn", "debug|info|warn|error")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		level = slog.LevelWarn
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	bot := game.NewService(
		game.NewEngine(game.NewRand(*seed), nil),
		game.NewMemorySessionStore(),
		game.WithLogger(log),
	)

	if err := cli.New(bot, os.Stdout, log).Run(ctx); err != nil {
		log.Error("abcli", "err", err)
		os.Exit(1)
	}
}
