package main

import (
	"bufio"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/tomz197/airclash/internal/config"
	"github.com/tomz197/airclash/internal/logger"
	"github.com/tomz197/airclash/internal/loop"
)

func main() {
	cfg, err := config.Load(config.GetEnv("AIRCLASH_CONFIG", config.DefaultPath))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid environment override: %v\n", err)
		os.Exit(1)
	}

	log, logFile, err := logger.OpenFile(logger.FilePath, "game", cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	log.Info("starting", "level", cfg.Level, "player", cfg.PlayerName)

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	reader := bufio.NewReader(os.Stdin)
	err = loop.Run(reader, os.Stdout, loop.Options{Config: cfg, Logger: log})
	if err != nil {
		_ = term.Restore(fd, oldState)
		log.Error("game error", "err", err)
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}
