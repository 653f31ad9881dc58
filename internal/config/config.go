// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

// Package config loads and validates Interestd configuration using
// koanf v2 with layered sources: struct defaults, an optional YAML file,
// then environment variables.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Logging   LoggingConfig   `koanf:"logging"`
	Knowledge KnowledgeConfig `koanf:"knowledge"`
	Engine    EngineConfig    `koanf:"engine"`
	Tasks     TasksConfig     `koanf:"tasks"`
	API       APIConfig       `koanf:"api"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file path; ":memory:" opens an in-memory store.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	// Threads caps DuckDB worker threads; 0 uses runtime.NumCPU().
	Threads int `koanf:"threads"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// KnowledgeConfig holds the external knowledge-graph lookup settings.
type KnowledgeConfig struct {
	// BaseURL is the MediaWiki-compatible API endpoint used for category
	// enrichment and redirect resolution.
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`

	// RatePerSecond and Burst bound outbound lookup traffic.
	RatePerSecond float64 `koanf:"rate_per_second"`
	Burst         int     `koanf:"burst"`

	// CachePath enables the persistent badger lookup cache when non-empty.
	// Empty string keeps the cache in memory only.
	CachePath string        `koanf:"cache_path"`
	CacheTTL  time.Duration `koanf:"cache_ttl"`

	// Circuit breaker thresholds for the upstream lookup.
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerOpenFor     time.Duration `koanf:"breaker_open_for"`
}

// EngineConfig holds the interest pipeline tunables.
type EngineConfig struct {
	// TermCap is the extraction cap per content item.
	TermCap int `koanf:"term_cap"`

	// PaperModelMonth is the fixed bucket month for papers, which carry
	// only a publication year.
	PaperModelMonth int `koanf:"paper_model_month"`

	// MergeAlpha is the blend factor of the merge function: the share of
	// the new short-term weight when a keyword appears in both tiers.
	MergeAlpha float64 `koanf:"merge_alpha"`

	// MergeDecay scales long-term weights absent from the new batch.
	MergeDecay float64 `koanf:"merge_decay"`

	// MergeFloor drops decayed long-term weights below this value.
	MergeFloor float64 `koanf:"merge_floor"`

	// ScholarQuota is the share of top-K slots reserved for scholar
	// records before backfill.
	ScholarQuota float64 `koanf:"scholar_quota"`

	// TrendMonths and TrendYears are the default trend window sizes.
	TrendMonths int `koanf:"trend_months"`
	TrendYears  int `koanf:"trend_years"`

	// TrendTopKeywords is how many all-time top keywords the trend view tracks.
	TrendTopKeywords int `koanf:"trend_top_keywords"`

	// MergeDelay is how long after a short-term build the follow-up
	// long-term merge is enqueued.
	MergeDelay time.Duration `koanf:"merge_delay"`
}

// TasksConfig holds the async task runner settings.
type TasksConfig struct {
	Workers     int           `koanf:"workers"`
	QueueBuffer int           `koanf:"queue_buffer"`
	TaskTimeout time.Duration `koanf:"task_timeout"`
}

// APIConfig holds HTTP API behavior settings.
type APIConfig struct {
	DefaultTopCount int           `koanf:"default_top_count"`
	MaxTopCount     int           `koanf:"max_top_count"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// Validate checks the configuration for values the pipeline cannot
// operate with. It is called by Load after all layers are applied.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Engine.TermCap <= 0 {
		return fmt.Errorf("engine.term_cap must be positive, got %d", c.Engine.TermCap)
	}
	if c.Engine.PaperModelMonth < 1 || c.Engine.PaperModelMonth > 12 {
		return fmt.Errorf("engine.paper_model_month %d out of range", c.Engine.PaperModelMonth)
	}
	if c.Engine.MergeAlpha <= 0 || c.Engine.MergeAlpha >= 1 {
		return fmt.Errorf("engine.merge_alpha must be in (0,1), got %g", c.Engine.MergeAlpha)
	}
	if c.Engine.MergeDecay <= 0 || c.Engine.MergeDecay > 1 {
		return fmt.Errorf("engine.merge_decay must be in (0,1], got %g", c.Engine.MergeDecay)
	}
	if c.Engine.ScholarQuota < 0 || c.Engine.ScholarQuota > 1 {
		return fmt.Errorf("engine.scholar_quota must be in [0,1], got %g", c.Engine.ScholarQuota)
	}
	if c.Engine.TrendMonths <= 0 || c.Engine.TrendYears <= 0 {
		return fmt.Errorf("engine trend windows must be positive")
	}
	if c.Engine.TrendTopKeywords <= 0 {
		return fmt.Errorf("engine.trend_top_keywords must be positive")
	}
	if c.Tasks.Workers <= 0 {
		return fmt.Errorf("tasks.workers must be positive, got %d", c.Tasks.Workers)
	}
	if c.API.DefaultTopCount <= 0 || c.API.MaxTopCount < c.API.DefaultTopCount {
		return fmt.Errorf("api top count bounds invalid: default %d, max %d",
			c.API.DefaultTopCount, c.API.MaxTopCount)
	}
	return nil
}
