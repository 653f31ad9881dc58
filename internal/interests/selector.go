// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package interests

import (
	"context"
	"sort"
	"time"

	"github.com/openrima/interestd/internal/database"
	"github.com/openrima/interestd/internal/models"
)

// Order selects how a top-K result is sorted after the quota split.
type Order string

const (
	// OrderWeight sorts by descending weight, the default.
	OrderWeight Order = "weight"

	// OrderChronological sorts by record creation time, newest first.
	OrderChronological Order = "chronological"
)

// TopInterests returns the user's top count long-term interests with a
// provenance quota: floor(count*quota) slots go to scholar-backed
// records first, the rest to social ones. When one pool runs short the
// other backfills, scholar records first, so the result is always
// min(count, total) records.
func (e *Engine) TopInterests(ctx context.Context, userID int64, count int, order Order) ([]models.LongTermInterest, error) {
	all, err := e.db.LongTermInterests(ctx, userID)
	if err != nil {
		return nil, err
	}
	selected := SelectTop(all, count, e.cfg.ScholarQuota)
	if order == OrderChronological {
		sort.SliceStable(selected, func(i, j int) bool {
			return selected[i].CreatedAt.After(selected[j].CreatedAt)
		})
	}
	return selected, nil
}

// TopShortTerm returns the top keywords of the user's current
// short-term bucket under the same quota split as the long-term view.
// Social rows live in the current calendar month's bucket; scholar rows
// are pinned to the paper model month of the current year, so both
// buckets feed the pools. A non-empty source restricts to one stream.
func (e *Engine) TopShortTerm(ctx context.Context, userID int64, source models.Source, count int, order Order, now time.Time) ([]models.ShortTermInterest, error) {
	now = now.UTC()

	var rows []models.ShortTermInterest
	if source == "" || source == models.SourceSocial {
		social, err := e.db.ShortTermInterests(ctx, userID, database.ShortTermFilter{
			Source:     models.SourceSocial,
			ModelMonth: int(now.Month()),
			ModelYear:  now.Year(),
		})
		if err != nil {
			return nil, err
		}
		rows = append(rows, social...)
	}
	if source == "" || source == models.SourceScholar {
		scholar, err := e.db.ShortTermInterests(ctx, userID, database.ShortTermFilter{
			Source:     models.SourceScholar,
			ModelMonth: e.cfg.PaperModelMonth,
			ModelYear:  now.Year(),
		})
		if err != nil {
			return nil, err
		}
		rows = append(rows, scholar...)
	}

	selected := SelectTopShort(rows, count, e.cfg.ScholarQuota)
	if order == OrderChronological {
		sort.SliceStable(selected, func(i, j int) bool {
			return selected[i].CreatedAt.After(selected[j].CreatedAt)
		})
	}
	return selected, nil
}

// rankedRecord carries the fields the quota selector orders by.
type rankedRecord struct {
	scholar bool
	weight  float64
	keyword string
}

// SelectTop applies the quota split to an already-loaded long-term
// model. Records tie-break by weight descending then keyword name, and
// "both"-sourced records count as scholar-backed.
func SelectTop(all []models.LongTermInterest, count int, quota float64) []models.LongTermInterest {
	records := make([]rankedRecord, len(all))
	for i, in := range all {
		records[i] = rankedRecord{
			scholar: in.Source == models.SourceScholar || in.Source == models.SourceBoth,
			weight:  in.Weight,
			keyword: in.Keyword,
		}
	}

	picked := pickTop(records, count, quota)
	if len(picked) == 0 {
		return nil
	}
	selected := make([]models.LongTermInterest, len(picked))
	for i, idx := range picked {
		selected[i] = all[idx]
	}
	return selected
}

// SelectTopShort is the short-term counterpart of SelectTop.
func SelectTopShort(all []models.ShortTermInterest, count int, quota float64) []models.ShortTermInterest {
	records := make([]rankedRecord, len(all))
	for i, in := range all {
		records[i] = rankedRecord{
			scholar: in.Source == models.SourceScholar || in.Source == models.SourceBoth,
			weight:  in.Weight,
			keyword: in.Keyword,
		}
	}

	picked := pickTop(records, count, quota)
	if len(picked) == 0 {
		return nil
	}
	selected := make([]models.ShortTermInterest, len(picked))
	for i, idx := range picked {
		selected[i] = all[idx]
	}
	return selected
}

// pickTop partitions records into scholar and social pools, reserves
// floor(count*quota) scholar slots, backfills depleted pools scholar
// first, and returns the winning indices sorted by weight descending
// then keyword name.
func pickTop(records []rankedRecord, count int, quota float64) []int {
	if count <= 0 || len(records) == 0 {
		return nil
	}

	var scholar, social []int
	for i, r := range records {
		if r.scholar {
			scholar = append(scholar, i)
		} else {
			social = append(social, i)
		}
	}
	byWeight := func(pool []int) func(i, j int) bool {
		return func(i, j int) bool {
			a, b := records[pool[i]], records[pool[j]]
			if a.weight != b.weight {
				return a.weight > b.weight
			}
			return a.keyword < b.keyword
		}
	}
	sort.SliceStable(scholar, byWeight(scholar))
	sort.SliceStable(social, byWeight(social))

	scholarSlots := int(float64(count) * quota)
	if scholarSlots > len(scholar) {
		scholarSlots = len(scholar)
	}
	socialSlots := count - scholarSlots
	if socialSlots > len(social) {
		socialSlots = len(social)
	}

	// Backfill unused slots, scholar records first.
	if remaining := count - scholarSlots - socialSlots; remaining > 0 {
		if extra := len(scholar) - scholarSlots; extra > 0 {
			take := min(extra, remaining)
			scholarSlots += take
			remaining -= take
		}
		if extra := len(social) - socialSlots; extra > 0 && remaining > 0 {
			socialSlots += min(extra, remaining)
		}
	}

	picked := make([]int, 0, scholarSlots+socialSlots)
	picked = append(picked, scholar[:scholarSlots]...)
	picked = append(picked, social[:socialSlots]...)
	sort.SliceStable(picked, func(i, j int) bool {
		a, b := records[picked[i]], records[picked[j]]
		if a.weight != b.weight {
			return a.weight > b.weight
		}
		return a.keyword < b.keyword
	})
	return picked
}
