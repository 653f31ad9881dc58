// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package interests

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/openrima/interestd/internal/config"
	"github.com/openrima/interestd/internal/database"
	"github.com/openrima/interestd/internal/extraction"
	"github.com/openrima/interestd/internal/knowledge"
	"github.com/openrima/interestd/internal/logging"
	"github.com/openrima/interestd/internal/metrics"
	"github.com/openrima/interestd/internal/models"
	"github.com/openrima/interestd/internal/similarity"
)

// Engine coordinates the pipeline stages against the store. All
// methods are safe for concurrent use; builds and merges for the same
// user serialize on per-user locks so overlapping cycles cannot
// interleave writes.
type Engine struct {
	db       *database.DB
	resolver knowledge.Resolver
	scorer   *similarity.Scorer
	cfg      *config.EngineConfig
	logger   zerolog.Logger

	// userLocks serializes pipeline writes per (user, stage) key.
	userLocks sync.Map
}

// NewEngine wires the pipeline together.
func NewEngine(db *database.DB, resolver knowledge.Resolver, scorer *similarity.Scorer, cfg *config.EngineConfig) *Engine {
	return &Engine{
		db:       db,
		resolver: resolver,
		scorer:   scorer,
		cfg:      cfg,
		logger:   logging.Component("engine"),
	}
}

func (e *Engine) lock(userID int64, stage string) func() {
	key := fmt.Sprintf("%d|%s", userID, stage)
	v, _ := e.userLocks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// ExtractKeywords runs extraction over arbitrary text without touching
// any user state, with optional knowledge-graph filtering. Backs the
// public extraction endpoint.
func (e *Engine) ExtractKeywords(ctx context.Context, text string, algorithm extraction.Algorithm, filter bool) []models.KeywordWeight {
	raw := e.extract(text, algorithm)

	if filter {
		filtered := FilterAndNormalize(ctx, e.resolver, nil, raw)
		out := make([]models.KeywordWeight, 0, len(filtered))
		for _, t := range filtered {
			out = append(out, models.KeywordWeight{Keyword: t.Keyword, Weight: t.Weight})
		}
		return out
	}

	out := make([]models.KeywordWeight, 0, len(raw))
	for keyword, weight := range raw {
		out = append(out, models.KeywordWeight{Keyword: keyword, Weight: weight})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Keyword < out[j].Keyword
	})
	return out
}

// extract runs one algorithm over text under the configured term cap,
// timing the pass.
func (e *Engine) extract(text string, algorithm extraction.Algorithm) map[string]float64 {
	start := time.Now()
	raw := extraction.Extract(text, algorithm, e.cfg.TermCap)
	metrics.ExtractionDuration.WithLabelValues(string(algorithm)).Observe(time.Since(start).Seconds())
	return raw
}

// Similarity scores two keyword sets. Backs the public similarity
// endpoint; a nil score means at least one side was empty.
func (e *Engine) Similarity(ctx context.Context, a, b []string, algorithm similarity.Algorithm) (*float64, error) {
	return e.scorer.Score(ctx, a, b, algorithm)
}

// ProfileSimilarity scores two users by their long-term keywords. A nil
// score means at least one user has no long-term model yet.
func (e *Engine) ProfileSimilarity(ctx context.Context, userA, userB int64, algorithm similarity.Algorithm) (*float64, error) {
	keywordsA, err := e.longTermKeywords(ctx, userA)
	if err != nil {
		return nil, err
	}
	keywordsB, err := e.longTermKeywords(ctx, userB)
	if err != nil {
		return nil, err
	}
	return e.scorer.Score(ctx, keywordsA, keywordsB, algorithm)
}

func (e *Engine) longTermKeywords(ctx context.Context, userID int64) ([]string, error) {
	interests, err := e.db.LongTermInterests(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load long-term keywords for user %d: %w", userID, err)
	}
	keywords := make([]string, 0, len(interests))
	for _, in := range interests {
		keywords = append(keywords, in.Keyword)
	}
	return keywords, nil
}

// LongTermInterests returns the user's long-term model, highest weight
// first.
func (e *Engine) LongTermInterests(ctx context.Context, userID int64) ([]models.LongTermInterest, error) {
	return e.db.LongTermInterests(ctx, userID)
}

// ShortTermInterests returns the user's short-term rows matching the
// filter.
func (e *Engine) ShortTermInterests(ctx context.Context, userID int64, filter database.ShortTermFilter) ([]models.ShortTermInterest, error) {
	return e.db.ShortTermInterests(ctx, userID, filter)
}

// AddManualInterest records a user-entered long-term interest.
func (e *Engine) AddManualInterest(ctx context.Context, userID int64, keyword string, weight float64) (*models.LongTermInterest, error) {
	return e.db.UpsertManualLongTermInterest(ctx, userID, keyword, weight)
}

// RemoveInterest deletes a long-term interest and blacklists its
// keyword so rebuilt models cannot resurrect it. Short-term records for
// the keyword are purged as part of the blacklist.
func (e *Engine) RemoveInterest(ctx context.Context, userID int64, keyword string) error {
	defer e.lock(userID, "write")()
	if err := e.db.BlacklistKeyword(ctx, userID, keyword); err != nil {
		return err
	}
	e.logger.Info().Int64("user_id", userID).Str("keyword", keyword).
		Msg("interest removed and keyword blacklisted")
	return nil
}

// Blacklist returns the user's suppression rules.
func (e *Engine) Blacklist(ctx context.Context, userID int64) ([]models.BlacklistedKeyword, error) {
	return e.db.BlacklistedKeywords(ctx, userID)
}

// Unblacklist lifts a suppression rule. Already-purged records stay
// gone until the next build cycle re-derives them.
func (e *Engine) Unblacklist(ctx context.Context, userID int64, keyword string) error {
	return e.db.UnblacklistKeyword(ctx, userID, keyword)
}

// AddPost ingests one social content item.
func (e *Engine) AddPost(ctx context.Context, post *models.Post) (int64, error) {
	return e.db.InsertPost(ctx, post)
}

// AddPaper ingests one academic content item.
func (e *Engine) AddPaper(ctx context.Context, paper *models.Paper) (int64, error) {
	return e.db.InsertPaper(ctx, paper)
}

// ActivityStats returns content counts per time bucket: posts by month
// over the social trend window, papers by year over the scholar one.
func (e *Engine) ActivityStats(ctx context.Context, userID int64, now time.Time) (posts, papers []models.ActivityBucket, err error) {
	posts, err = e.db.PostActivity(ctx, userID, e.cfg.TrendMonths, now)
	if err != nil {
		return nil, nil, err
	}
	papers, err = e.db.PaperActivity(ctx, userID, e.cfg.TrendYears, now)
	if err != nil {
		return nil, nil, err
	}
	return posts, papers, nil
}
