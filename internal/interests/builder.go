// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package interests

import (
	"context"
	"fmt"

	"github.com/openrima/interestd/internal/database"
	"github.com/openrima/interestd/internal/extraction"
	"github.com/openrima/interestd/internal/metrics"
	"github.com/openrima/interestd/internal/models"
)

// bucketKey identifies one calendar bucket of the short-term model.
type bucketKey struct {
	Month int
	Year  int
}

// termAgg accumulates one keyword's contributions within a bucket. Two
// items surfacing the same term never overwrite each other: the weight
// keeps the strongest appearance and every contributing item is kept as
// evidence.
type termAgg struct {
	weight     float64
	categories []string
	postIDs    []int64
	paperIDs   []int64
}

// bucketAgg collects one bucket's terms and the items that fed them.
type bucketAgg struct {
	terms   map[string]*termAgg
	itemIDs []int64
}

// BuildShortTerm consumes the user's pending content for one source,
// extracting and filtering each item individually. Posts bucket by
// their posted month; papers bucket by publication year at the
// configured paper month. Items that yield no keywords are still
// marked processed so the pipeline always moves forward; a bucket
// whose storage fails leaves its items pending for the next run.
// Running the build twice with no new content is a no-op.
func (e *Engine) BuildShortTerm(ctx context.Context, userID int64, source models.Source) error {
	defer e.lock(userID, "write")()

	switch source {
	case models.SourceSocial:
		return e.buildSocial(ctx, userID)
	case models.SourceScholar:
		return e.buildScholar(ctx, userID)
	default:
		return fmt.Errorf("cannot build short-term model for source %q", source)
	}
}

func (e *Engine) buildSocial(ctx context.Context, userID int64) error {
	posts, err := e.db.UnprocessedPosts(ctx, userID)
	if err != nil {
		return fmt.Errorf("load pending posts: %w", err)
	}
	if len(posts) == 0 {
		return nil
	}

	blacklist, err := e.db.BlacklistSet(ctx, userID)
	if err != nil {
		return fmt.Errorf("load blacklist: %w", err)
	}

	buckets := make(map[bucketKey]*bucketAgg)
	for _, p := range posts {
		raw := e.extract(p.FullText, extraction.AlgorithmYake)
		terms := FilterAndNormalize(ctx, e.resolver, blacklist, raw)

		key := bucketKey{Month: int(p.PostedAt.Month()), Year: p.PostedAt.Year()}
		accumulate(buckets, key, terms, p.ID, models.SourceSocial)

		e.logger.Debug().
			Int64("user_id", userID).Int64("post_id", p.ID).
			Int("month", key.Month).Int("year", key.Year).
			Int("keywords", len(terms)).
			Msg("post extracted")
	}

	processed := e.storeBuckets(ctx, userID, models.SourceSocial, buckets)
	if err := e.db.MarkPostsProcessed(ctx, processed); err != nil {
		return fmt.Errorf("mark posts processed: %w", err)
	}
	metrics.ContentItemsProcessed.WithLabelValues(string(models.SourceSocial)).Add(float64(len(processed)))
	return nil
}

func (e *Engine) buildScholar(ctx context.Context, userID int64) error {
	papers, err := e.db.UnprocessedPapers(ctx, userID)
	if err != nil {
		return fmt.Errorf("load pending papers: %w", err)
	}
	if len(papers) == 0 {
		return nil
	}

	blacklist, err := e.db.BlacklistSet(ctx, userID)
	if err != nil {
		return fmt.Errorf("load blacklist: %w", err)
	}

	buckets := make(map[bucketKey]*bucketAgg)
	for _, p := range papers {
		text := p.Abstract
		if p.Title != "" {
			text = p.Title + ". " + p.Abstract
		}
		raw := e.extract(text, extraction.AlgorithmSingleRank)
		terms := FilterAndNormalize(ctx, e.resolver, blacklist, raw)

		key := bucketKey{Month: e.cfg.PaperModelMonth, Year: p.Year}
		accumulate(buckets, key, terms, p.ID, models.SourceScholar)

		e.logger.Debug().
			Int64("user_id", userID).Int64("paper_id", p.ID).
			Int("year", p.Year).Int("keywords", len(terms)).
			Msg("paper extracted")
	}

	processed := e.storeBuckets(ctx, userID, models.SourceScholar, buckets)
	if err := e.db.MarkPapersProcessed(ctx, processed); err != nil {
		return fmt.Errorf("mark papers processed: %w", err)
	}
	metrics.ContentItemsProcessed.WithLabelValues(string(models.SourceScholar)).Add(float64(len(processed)))
	return nil
}

// accumulate folds one item's filtered terms into its bucket. The item
// is recorded even when it contributed nothing, so it still gets marked
// processed with the rest of the bucket.
func accumulate(buckets map[bucketKey]*bucketAgg, key bucketKey, terms []FilteredTerm, itemID int64, source models.Source) {
	b := buckets[key]
	if b == nil {
		b = &bucketAgg{terms: make(map[string]*termAgg)}
		buckets[key] = b
	}
	b.itemIDs = append(b.itemIDs, itemID)

	for _, t := range terms {
		agg := b.terms[t.Keyword]
		if agg == nil {
			agg = &termAgg{categories: t.Categories}
			b.terms[t.Keyword] = agg
		}
		if t.Weight > agg.weight {
			agg.weight = t.Weight
		}
		if source == models.SourceScholar {
			agg.paperIDs = append(agg.paperIDs, itemID)
		} else {
			agg.postIDs = append(agg.postIDs, itemID)
		}
	}
}

// storeBuckets upserts each bucket's accumulated terms with their
// evidence links and category enrichment, returning the item IDs of
// every bucket stored in full. A failing bucket is logged and skipped
// so its items stay pending; other buckets still land.
func (e *Engine) storeBuckets(ctx context.Context, userID int64, source models.Source, buckets map[bucketKey]*bucketAgg) []int64 {
	var processed []int64
	for key, b := range buckets {
		if err := e.storeBucket(ctx, userID, source, key, b); err != nil {
			e.logger.Error().Err(err).
				Int64("user_id", userID).
				Int("month", key.Month).Int("year", key.Year).
				Str("source", string(source)).
				Msg("bucket not stored, items stay pending")
			continue
		}
		processed = append(processed, b.itemIDs...)
	}
	return processed
}

func (e *Engine) storeBucket(ctx context.Context, userID int64, source models.Source, key bucketKey, b *bucketAgg) error {
	for name, agg := range b.terms {
		_, err := e.db.UpsertShortTermInterest(ctx, database.ShortTermUpsert{
			UserID:     userID,
			Keyword:    name,
			Source:     source,
			Weight:     agg.weight,
			ModelMonth: key.Month,
			ModelYear:  key.Year,
			PostIDs:    agg.postIDs,
			PaperIDs:   agg.paperIDs,
		})
		if err != nil {
			return fmt.Errorf("store %s interest %q: %w", source, name, err)
		}

		if len(agg.categories) > 0 {
			kw, err := e.db.GetOrCreateKeyword(ctx, name)
			if err != nil {
				return err
			}
			if err := e.db.AddKeywordCategories(ctx, kw.ID, agg.categories); err != nil {
				return err
			}
		}
	}
	metrics.KeywordsStored.WithLabelValues(string(source)).Add(float64(len(b.terms)))
	return nil
}
