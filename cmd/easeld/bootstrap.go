package main

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"easel/internal/client"
	"easel/internal/config"
	"easel/internal/daemon"
	"easel/internal/logging"
	"easel/internal/notifications"
	"easel/internal/registry"
	"easel/internal/watcher"
	"easel/internal/workflow"
)

func buildDaemon(cfg *config.Config, logger *slog.Logger) (*daemon.Daemon, error) {
	store, err := registry.Open(cfg)
	if err != nil {
		return nil, err
	}
	d, err := daemon.New(cfg, store, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return d, nil
}

// startWatcher launches the drop-directory uploader when enabled. The watcher
// submits through the HTTP client so dropped files take the exact same path
// as CLI uploads. The returned function stops the watcher and waits for it.
func startWatcher(ctx context.Context, cfg *config.Config, logger *slog.Logger) func() {
	if !cfg.Watch.Enabled || cfg.Watch.Dir == "" {
		return func() {}
	}

	session := workflow.NewSession()
	uploader := workflow.NewUploadCoordinator(
		session,
		client.New(cfg, logger),
		notifications.NewService(cfg),
		logger,
	)
	w, err := watcher.New(cfg.Watch.Dir, uploader, logger)
	if err != nil {
		logger.Warn("watcher disabled", logging.Error(err))
		return func() {}
	}

	watchCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := w.Run(watchCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("watcher stopped", logging.Error(err))
		}
	}()
	return func() {
		cancel()
		wg.Wait()
	}
}
