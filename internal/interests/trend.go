// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package interests

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/openrima/interestd/internal/database"
	"github.com/openrima/interestd/internal/models"
)

// Trend returns the user's interest evolution for one content stream.
// Social trends cover the last window calendar months, scholar trends
// the last window years; window <= 0 uses the configured default. The
// view tracks the stream's all-time top keywords by peak weight; each
// bucket reports those keywords' weights, zero when absent, so the
// series can be stacked.
func (e *Engine) Trend(ctx context.Context, userID int64, source models.Source, window int, now time.Time) ([]models.TrendBucket, error) {
	if source != models.SourceSocial && source != models.SourceScholar {
		return nil, fmt.Errorf("no trend view for source %q", source)
	}

	rows, err := e.db.ShortTermInterests(ctx, userID, database.ShortTermFilter{Source: source})
	if err != nil {
		return nil, err
	}

	keys := e.trendBuckets(source, window, now)
	inWindow := make(map[bucketKey]bool, len(keys))
	for _, k := range keys {
		inWindow[k] = true
	}

	// Tracked keywords rank by their strongest record across all time,
	// not only inside the window, so a chart can show a historically
	// dominant interest flatlining.
	peaks := make(map[string]float64)
	weights := make(map[bucketKey]map[string]float64)
	for _, in := range rows {
		if in.Weight > peaks[in.Keyword] {
			peaks[in.Keyword] = in.Weight
		}
		key := bucketKey{Month: in.ModelMonth, Year: in.ModelYear}
		if !inWindow[key] {
			continue
		}
		if weights[key] == nil {
			weights[key] = make(map[string]float64)
		}
		weights[key][in.Keyword] += in.Weight
	}

	type kw struct {
		name string
		peak float64
	}
	ranked := make([]kw, 0, len(peaks))
	for name, peak := range peaks {
		ranked = append(ranked, kw{name, peak})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].peak != ranked[j].peak {
			return ranked[i].peak > ranked[j].peak
		}
		return ranked[i].name < ranked[j].name
	})
	if len(ranked) > e.cfg.TrendTopKeywords {
		ranked = ranked[:e.cfg.TrendTopKeywords]
	}

	buckets := make([]models.TrendBucket, 0, len(keys))
	for _, key := range keys {
		bucket := models.TrendBucket{Label: trendLabel(source, key)}
		for _, k := range ranked {
			bucket.Keywords = append(bucket.Keywords, models.KeywordWeight{
				Keyword: k.name,
				Weight:  weights[key][k.name],
			})
		}
		buckets = append(buckets, bucket)
	}
	return buckets, nil
}

// trendBuckets lists the window's bucket keys, oldest first.
func (e *Engine) trendBuckets(source models.Source, window int, now time.Time) []bucketKey {
	if source == models.SourceScholar {
		if window <= 0 {
			window = e.cfg.TrendYears
		}
		keys := make([]bucketKey, 0, window)
		for y := now.Year() - window + 1; y <= now.Year(); y++ {
			keys = append(keys, bucketKey{Month: e.cfg.PaperModelMonth, Year: y})
		}
		return keys
	}
	if window <= 0 {
		window = e.cfg.TrendMonths
	}
	// Anchor at the first of the month so month arithmetic cannot
	// overflow into a neighboring month.
	base := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	keys := make([]bucketKey, 0, window)
	for i := window - 1; i >= 0; i-- {
		t := base.AddDate(0, -i, 0)
		keys = append(keys, bucketKey{Month: int(t.Month()), Year: t.Year()})
	}
	return keys
}

func trendLabel(source models.Source, key bucketKey) string {
	if source == models.SourceScholar {
		return fmt.Sprintf("%d", key.Year)
	}
	return fmt.Sprintf("%s %d", time.Month(key.Month).String(), key.Year)
}
