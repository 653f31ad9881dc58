// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package interests

import (
	"context"
	"fmt"
	"time"

	"github.com/openrima/interestd/internal/database"
	"github.com/openrima/interestd/internal/metrics"
	"github.com/openrima/interestd/internal/models"
)

// MergeFunc combines an existing long-term weight with a new
// short-term weight for the same keyword. Implementations must return
// a value within [min(long, short), max(long, short)].
type MergeFunc func(long, short float64) float64

// EWMAMerge blends the two tiers with fixed weighting toward the newer
// signal: (1-alpha)*long + alpha*short. The result always lies between
// the inputs for alpha in (0,1).
func EWMAMerge(alpha float64) MergeFunc {
	return func(long, short float64) float64 {
		return (1-alpha)*long + alpha*short
	}
}

// MergeLongTerm folds the user's unmerged short-term rows into the
// long-term tier. Keywords present in both tiers blend via the merge
// function; short-only keywords enter at their short-term weight;
// long-only keywords decay and fall out entirely below the floor.
// Manual entries are never touched. The whole rebuild is one
// transaction, so readers see either the old model or the new one.
func (e *Engine) MergeLongTerm(ctx context.Context, userID int64) error {
	defer e.lock(userID, "write")()

	start := time.Now()

	unmerged, err := e.db.ShortTermInterests(ctx, userID, database.ShortTermFilter{Unmerged: true})
	if err != nil {
		return fmt.Errorf("load unmerged short-term rows: %w", err)
	}
	if len(unmerged) == 0 {
		return nil
	}

	existing, err := e.db.LongTermInterests(ctx, userID)
	if err != nil {
		return fmt.Errorf("load long-term tier: %w", err)
	}

	// Sum the new signal per keyword across buckets, tracking which
	// content streams contributed.
	type shortAgg struct {
		weight  float64
		social  bool
		scholar bool
	}
	fresh := make(map[string]*shortAgg)
	for _, in := range unmerged {
		agg, ok := fresh[in.Keyword]
		if !ok {
			agg = &shortAgg{}
			fresh[in.Keyword] = agg
		}
		agg.weight += in.Weight
		switch in.Source {
		case models.SourceSocial:
			agg.social = true
		case models.SourceScholar:
			agg.scholar = true
		case models.SourceBoth:
			agg.social, agg.scholar = true, true
		}
	}

	merge := EWMAMerge(e.cfg.MergeAlpha)
	var upserts []database.LongTermUpsert
	seen := make(map[string]bool, len(fresh))

	for _, old := range existing {
		if old.Source == models.SourceManual {
			continue
		}
		agg, ok := fresh[old.Keyword]
		if !ok {
			// Absent from the new batch: decay, drop below the floor.
			decayed := old.Weight * e.cfg.MergeDecay
			if decayed < e.cfg.MergeFloor {
				continue
			}
			upserts = append(upserts, database.LongTermUpsert{
				Keyword: old.Keyword,
				Source:  old.Source,
				Weight:  decayed,
			})
			continue
		}

		seen[old.Keyword] = true
		upserts = append(upserts, database.LongTermUpsert{
			Keyword: old.Keyword,
			Source:  composeSource(old.Source, agg.social, agg.scholar),
			Weight:  merge(old.Weight, agg.weight),
		})
	}

	for keyword, agg := range fresh {
		if seen[keyword] {
			continue
		}
		upserts = append(upserts, database.LongTermUpsert{
			Keyword: keyword,
			Source:  composeSource("", agg.social, agg.scholar),
			Weight:  agg.weight,
		})
	}

	if err := e.db.ReplaceLongTermInterests(ctx, userID, upserts); err != nil {
		return fmt.Errorf("rebuild long-term tier: %w", err)
	}

	metrics.MergeCycles.Inc()
	metrics.MergeDuration.Observe(time.Since(start).Seconds())
	e.logger.Info().
		Int64("user_id", userID).
		Int("short_term_rows", len(unmerged)).
		Int("long_term_rows", len(upserts)).
		Dur("elapsed", time.Since(start)).
		Msg("long-term merge complete")
	return nil
}

// composeSource widens provenance as evidence accumulates: once a
// keyword has been seen from both content streams it stays "both".
func composeSource(previous models.Source, social, scholar bool) models.Source {
	switch previous {
	case models.SourceBoth:
		return models.SourceBoth
	case models.SourceSocial:
		social = true
	case models.SourceScholar:
		scholar = true
	}
	switch {
	case social && scholar:
		return models.SourceBoth
	case scholar:
		return models.SourceScholar
	default:
		return models.SourceSocial
	}
}
