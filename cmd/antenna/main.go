package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"Antenna/internal/cli/client"
	"Antenna/internal/cli/commands"
	"Antenna/internal/config"
	"Antenna/internal/logger"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	// Load unified config (env + flags)
	cfg := config.NewConfig()

	if cfg.Version {
		printVersion()
		return
	}

	// логи в stderr, вывод команд в stdout
	sugar := logger.New(cfg.LogLevel, nil)
	defer func() { _ = sugar.Sync() }()
	commands.Logger = sugar

	// каталог кэшей читается из окружения
	if cfg.ClientDBPath != "" {
		_ = os.Setenv("CLIENT_DB_PATH", cfg.ClientDBPath)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// dispatcher
	exitCode := commands.Dispatch(ctx, cfg, flag.Args())
	if exitCode == 0 {
		return
	}
	os.Exit(exitCode)
}

func printVersion() {
	fmt.Printf("Antenna CLI\nVersion: %s\nBuild date: %s\nService: %s\n", version, buildDate, client.BugreporterURL())
}
