// StreamVault - Streaming Media Catalog and Recommendation Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/streamvault

// Command server runs the StreamVault API: MongoDB-backed catalog and
// activity storage, JWT-authenticated HTTP surface and the
// recommendation engine with its background refresher, all under one
// suture supervision tree.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/streamvault/internal/api"
	"github.com/tomtom215/streamvault/internal/auth"
	"github.com/tomtom215/streamvault/internal/config"
	"github.com/tomtom215/streamvault/internal/logging"
	"github.com/tomtom215/streamvault/internal/recommend"
	"github.com/tomtom215/streamvault/internal/refresh"
	"github.com/tomtom215/streamvault/internal/store"
	"github.com/tomtom215/streamvault/internal/supervisor"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()
	logger.Info().
		Str("addr", cfg.Server.Addr()).
		Str("database", cfg.Mongo.Database).
		Msg("Starting StreamVault")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongo, err := store.NewMongo(ctx, store.MongoOptions{
		URI:                cfg.Mongo.URL,
		Database:           cfg.Mongo.Database,
		ConnectTimeout:     cfg.Mongo.ConnectTimeout,
		BreakerMaxFailures: cfg.Mongo.BreakerMaxFailures,
		BreakerCooldown:    cfg.Mongo.BreakerCooldown,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := mongo.Close(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("Store disconnect failed")
		}
	}()

	if err := mongo.EnsureIndexes(ctx); err != nil {
		return err
	}

	engine, err := recommend.NewEngine(mongo, &cfg.Recommend, logger)
	if err != nil {
		return err
	}

	jwtManager, err := auth.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	if err != nil {
		return err
	}

	handler := api.NewHandler(mongo, engine, jwtManager, cfg, logger)
	router := api.NewRouter(handler, api.NewMiddleware(&cfg.Server))

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	treeConfig := supervisor.DefaultTreeConfig()
	treeConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeConfig)
	tree.AddAPIService(supervisor.NewHTTPService(server, cfg.Server.ShutdownTimeout))

	if cfg.Refresh.Enabled {
		worker, err := refresh.NewWorker(mongo, engine, cfg.Refresh, logger)
		if err != nil {
			return err
		}
		tree.AddBackgroundService(worker)
	} else {
		logger.Info().Msg("Background refresh disabled")
	}

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info().Msg("Shutdown complete")
	return nil
}
