package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"goldpredict/app"
	"goldpredict/config"
	qhttp "goldpredict/http"
	"goldpredict/logging"
	"goldpredict/monitoring"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() (err error) {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	// 1. Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	// 2. Logger
	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closeLog()) }()

	// 3. Load dataset and model. A failure halts the app but the page still
	// comes up to show the error.
	metrics := monitoring.NewMetrics()
	startup := app.Initialize(cfg, app.WithLogger(logger), app.WithMetrics(metrics))

	var watcher *monitoring.Watcher
	if cfg.Watch.Enabled && startup.OK() {
		watcher, err = monitoring.NewWatcher(map[string]string{
			"dataset": cfg.Dataset.Path,
			"model":   cfg.Model.Path,
		}, logger, metrics)
		if err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		watcher.Start()
	}

	// 4. Start HTTP server
	server, err := qhttp.NewServer(cfg.HTTP, startup, metrics, logger)
	if err != nil {
		return err
	}
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// 5. Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err = <-serverErr:
		logger.Error("HTTP server failed", zap.Error(err))
	case <-ctx.Done():
		logger.Info("shutting down")
		err = server.Stop(context.Background())
	}
	if watcher != nil {
		err = multierr.Append(err, watcher.Close())
	}
	logger.Info("exiting")
	return err
}
