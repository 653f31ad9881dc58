// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package knowledge

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/openrima/interestd/internal/logging"
	"github.com/openrima/interestd/internal/metrics"
)

// ClientConfig configures the knowledge-graph client.
type ClientConfig struct {
	// BaseURL is a MediaWiki-compatible api.php endpoint.
	BaseURL string
	Timeout time.Duration

	RatePerSecond float64
	Burst         int

	BreakerMaxFailures uint32
	BreakerOpenFor     time.Duration
}

// Client resolves terms against a MediaWiki-style knowledge graph with
// caching, outbound rate limiting and a circuit breaker. It implements
// Resolver.
type Client struct {
	baseURL string
	http    *http.Client
	cache   Cache
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[Lookup]
	logger  zerolog.Logger
}

// NewClient creates a knowledge-graph client. The cache is owned by the
// caller and must be closed separately.
func NewClient(cfg ClientConfig, cache Cache) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}
	if cfg.BreakerMaxFailures == 0 {
		cfg.BreakerMaxFailures = 5
	}
	if cfg.BreakerOpenFor <= 0 {
		cfg.BreakerOpenFor = 30 * time.Second
	}

	logger := logging.Component("knowledge")

	breaker := gobreaker.NewCircuitBreaker[Lookup](gobreaker.Settings{
		Name:        "knowledge-graph",
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerMaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	})

	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout},
		cache:   cache,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		breaker: breaker,
		logger:  logger,
	}
}

// Resolve looks up a term's categories and canonical redirect. Cached
// results (including negative ones) are served without network I/O.
// "Not found" is a nil-error Lookup with Found=false; only transport
// failures return an error.
func (c *Client) Resolve(ctx context.Context, term string) (Lookup, error) {
	key := strings.ToLower(strings.TrimSpace(term))
	if key == "" {
		return Lookup{}, nil
	}

	if l, ok := c.cache.Get(key); ok {
		metrics.KnowledgeCacheHits.Inc()
		return l, nil
	}
	metrics.KnowledgeCacheMisses.Inc()

	if err := c.limiter.Wait(ctx); err != nil {
		return Lookup{}, fmt.Errorf("rate limit wait: %w", err)
	}

	l, err := c.breaker.Execute(func() (Lookup, error) {
		return c.fetch(ctx, key)
	})
	if err != nil {
		metrics.KnowledgeLookupErrors.Inc()
		return Lookup{}, err
	}

	c.cache.Set(key, l)
	return l, nil
}

// mediawikiResponse is the subset of the query API response we consume.
type mediawikiResponse struct {
	Query struct {
		Redirects []struct {
			From string `json:"from"`
			To   string `json:"to"`
		} `json:"redirects"`
		Pages map[string]struct {
			Title      string `json:"title"`
			Missing    *bool  `json:"missing,omitempty"`
			Categories []struct {
				Title string `json:"title"`
			} `json:"categories"`
		} `json:"pages"`
	} `json:"query"`
}

// fetch performs one uncached lookup round trip.
func (c *Client) fetch(ctx context.Context, term string) (Lookup, error) {
	params := url.Values{
		"action":    {"query"},
		"format":    {"json"},
		"redirects": {"1"},
		"prop":      {"categories"},
		"clshow":    {"!hidden"},
		"cllimit":   {"50"},
		"titles":    {term},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return Lookup{}, fmt.Errorf("build lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Lookup{}, fmt.Errorf("knowledge lookup for %q: %w", term, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Lookup{}, fmt.Errorf("knowledge lookup for %q: unexpected status %d", term, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Lookup{}, fmt.Errorf("read lookup response: %w", err)
	}

	var mw mediawikiResponse
	if err := json.Unmarshal(body, &mw); err != nil {
		return Lookup{}, fmt.Errorf("decode lookup response: %w", err)
	}

	return buildLookup(&mw), nil
}

// buildLookup converts a MediaWiki response into a Lookup. The category
// namespace prefix is stripped from category titles.
func buildLookup(mw *mediawikiResponse) Lookup {
	var l Lookup

	for _, redirect := range mw.Query.Redirects {
		if redirect.To != "" {
			l.Canonical = strings.ToLower(redirect.To)
			break
		}
	}

	for _, page := range mw.Query.Pages {
		if page.Missing != nil {
			continue
		}
		l.Found = true
		for _, cat := range page.Categories {
			name := cat.Title
			if idx := strings.Index(name, ":"); idx >= 0 {
				name = name[idx+1:]
			}
			l.Categories = append(l.Categories, name)
		}
	}
	return l
}
