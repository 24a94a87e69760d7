package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"cinelog/internal/catalog"
	"cinelog/internal/config"
	"cinelog/internal/httpapi"
	"cinelog/internal/identity"
	"cinelog/internal/logging"
	"cinelog/internal/query"
	"cinelog/internal/reconcile"
	"cinelog/internal/tmdb"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	lock := flock.New(cfg.LockFilePath())
	locked, err := lock.TryLock()
	if err != nil {
		logger.Error("acquire instance lock", logging.Error(err))
		return
	}
	if !locked {
		logger.Error("another cinelogd instance is already running",
			logging.String("lock", cfg.LockFilePath()))
		return
	}
	defer lock.Unlock() //nolint:errcheck

	store, err := catalog.Open(cfg)
	if err != nil {
		logger.Error("open catalog store", logging.Error(err))
		return
	}
	defer store.Close()

	connector, err := tmdb.New(
		cfg.TMDB.APIKey,
		cfg.TMDB.BaseURL,
		cfg.TMDB.Language,
		tmdb.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.TMDB.RequestTimeout) * time.Second}),
		tmdb.WithSeasonDepth(cfg.Catalog.SeasonDepth),
	)
	if err != nil {
		logger.Error("build tmdb client", logging.Error(err))
		return
	}

	cache := identity.NewCache(logger)
	reconciler := reconcile.New(store, cache, logger)
	orchestrator := query.New(store, connector, reconciler, logger)

	server := httpapi.New(cfg.Paths.APIBind, orchestrator, logger)
	if err := server.Start(ctx); err != nil {
		logger.Error("start api server", logging.Error(err))
		return
	}

	<-ctx.Done()
	server.Stop()
	logger.Info("cinelogd shutting down")
}
