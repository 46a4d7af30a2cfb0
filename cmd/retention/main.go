// Package main содержит точку входа для очистки журнала аудита по расписанию.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/magabrotheeeer/boost-admin/internal/app/retention"
	"github.com/magabrotheeeer/boost-admin/internal/config"
	"github.com/magabrotheeeer/boost-admin/internal/lib/sl"
)

func main() {
	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	cfg := config.MustLoad()
	logger := sl.New(cfg.Env, os.Stdout)

	logger.Info("starting retention", slog.String("env", cfg.Env), slog.Bool("once", *once))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := retention.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize retention app", sl.Err(err))
		os.Exit(1)
	}

	if *once {
		err = app.RunOnce(ctx)
	} else {
		err = app.Run(ctx)
	}
	if err != nil {
		logger.Error("retention stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("retention stopped gracefully")
}
