package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"hufschlaeger.net/pipefy-exporter/internal/cli"
	"hufschlaeger.net/pipefy-exporter/internal/logger"
	"hufschlaeger.net/pipefy-exporter/internal/service"
)

func main() {
	cfg, err := cli.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Fehler beim Parsen der Flags: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Logger konnte nicht erstellt werden: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exporter, err := service.NewFromConfig(ctx, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Initialisierung fehlgeschlagen: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = exporter.Close() }()

	if cfg.Schedule != "" {
		err = service.Schedule(ctx, cfg.Schedule, log, exporter.Run)
	} else {
		err = exporter.Run(ctx)
	}
	if err != nil {
		log.Error("export failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "❌ Export fehlgeschlagen: %v\n", err)
		os.Exit(1)
	}
}
