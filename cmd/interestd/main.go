// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

// Package main is the entry point for the Interestd server.
//
// Interestd models per-user research interests from two content
// streams: short-form social posts and academic paper abstracts. It
// extracts keywords, filters them against an external knowledge graph,
// maintains calendar-bucketed short-term interest models, folds them
// into a cumulative long-term model, and serves interest queries,
// trend views and cross-user similarity over HTTP.
//
// # Initialization order
//
//  1. Configuration: koanf v2 layered sources (defaults, YAML file,
//     INTERESTD_* environment variables)
//  2. Logging: zerolog, JSON or console format
//  3. Database: embedded DuckDB store
//  4. Knowledge client: MediaWiki-compatible lookup with badger cache,
//     rate limiting and a circuit breaker
//  5. Engine: the interest pipeline
//  6. Task runner: watermill in-process queue for builds and merges
//  7. Supervision: suture tree running the task runner and HTTP server
//
// # Signal handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the HTTP server drains
// in-flight requests, the task runner stops accepting work, and the
// database closes last.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/openrima/interestd/internal/api"
	"github.com/openrima/interestd/internal/config"
	"github.com/openrima/interestd/internal/database"
	"github.com/openrima/interestd/internal/interests"
	"github.com/openrima/interestd/internal/knowledge"
	"github.com/openrima/interestd/internal/logging"
	"github.com/openrima/interestd/internal/similarity"
	"github.com/openrima/interestd/internal/supervisor"
	"github.com/openrima/interestd/internal/tasks"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "interestd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	log := logging.Component("main")
	log.Info().Msg("interestd starting")

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("database close failed")
		}
	}()

	var cache knowledge.Cache
	if cfg.Knowledge.CachePath != "" {
		cache, err = knowledge.NewBadgerCache(cfg.Knowledge.CachePath, cfg.Knowledge.CacheTTL)
		if err != nil {
			return fmt.Errorf("open knowledge cache: %w", err)
		}
	} else {
		cache = knowledge.NewMemoryCache(cfg.Knowledge.CacheTTL)
	}
	defer func() {
		if err := cache.Close(); err != nil {
			log.Error().Err(err).Msg("knowledge cache close failed")
		}
	}()

	resolver := knowledge.NewClient(knowledge.ClientConfig{
		BaseURL:            cfg.Knowledge.BaseURL,
		Timeout:            cfg.Knowledge.Timeout,
		RatePerSecond:      cfg.Knowledge.RatePerSecond,
		Burst:              cfg.Knowledge.Burst,
		BreakerMaxFailures: cfg.Knowledge.BreakerMaxFailures,
		BreakerOpenFor:     cfg.Knowledge.BreakerOpenFor,
	}, cache)

	scorer := similarity.NewScorer(nil, resolver)
	engine := interests.NewEngine(db, resolver, scorer, &cfg.Engine)

	runner, err := tasks.NewRunner(&cfg.Tasks, cfg.Engine.MergeDelay, engine)
	if err != nil {
		return fmt.Errorf("create task runner: %w", err)
	}
	defer func() {
		if err := runner.Close(); err != nil {
			log.Error().Err(err).Msg("task runner close failed")
		}
	}()

	handler := api.NewHandler(engine, runner, db, cfg)
	router := api.NewRouter(handler, &cfg.API)

	treeCfg := supervisor.DefaultTreeConfig()
	tree := supervisor.NewTree(treeCfg)
	tree.AddPipelineService(runner)
	tree.AddAPIService(supervisor.NewHTTPService(&cfg.Server, router, treeCfg.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)).
		Str("database", cfg.Database.Path).
		Msg("interestd ready")

	err = tree.Serve(ctx)
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("supervisor: %w", err)
	}
	log.Info().Msg("interestd stopped")
	return nil
}
