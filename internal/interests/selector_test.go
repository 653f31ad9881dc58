// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package interests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/openrima/interestd/internal/database"
	"github.com/openrima/interestd/internal/models"
)

func makePool(scholar, social int) []models.LongTermInterest {
	var all []models.LongTermInterest
	for i := 0; i < scholar; i++ {
		all = append(all, models.LongTermInterest{
			Keyword: fmt.Sprintf("scholar-%02d", i),
			Source:  models.SourceScholar,
			Weight:  1.0 - float64(i)*0.01,
		})
	}
	for i := 0; i < social; i++ {
		all = append(all, models.LongTermInterest{
			Keyword: fmt.Sprintf("social-%02d", i),
			Source:  models.SourceSocial,
			Weight:  0.9 - float64(i)*0.01,
		})
	}
	return all
}

func countBySource(selected []models.LongTermInterest) (scholar, social int) {
	for _, in := range selected {
		if in.Source == models.SourceScholar || in.Source == models.SourceBoth {
			scholar++
		} else {
			social++
		}
	}
	return scholar, social
}

func TestSelectTopQuota(t *testing.T) {
	tests := []struct {
		name                     string
		scholarPool, socialPool  int
		count                    int
		wantScholar, wantSocial  int
	}{
		{
			name:        "both pools full",
			scholarPool: 20, socialPool: 20,
			count:       10,
			wantScholar: 6, wantSocial: 4,
		},
		{
			name:        "scholar pool short backfills from social",
			scholarPool: 3, socialPool: 20,
			count:       10,
			wantScholar: 3, wantSocial: 7,
		},
		{
			name:        "social pool short backfills from scholar",
			scholarPool: 20, socialPool: 2,
			count:       10,
			wantScholar: 8, wantSocial: 2,
		},
		{
			name:        "total smaller than count",
			scholarPool: 2, socialPool: 3,
			count:       10,
			wantScholar: 2, wantSocial: 3,
		},
		{
			name:        "empty model",
			scholarPool: 0, socialPool: 0,
			count:       10,
			wantScholar: 0, wantSocial: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selected := SelectTop(makePool(tt.scholarPool, tt.socialPool), tt.count, 0.6)
			scholar, social := countBySource(selected)
			if scholar != tt.wantScholar || social != tt.wantSocial {
				t.Errorf("split = %d scholar / %d social, want %d / %d",
					scholar, social, tt.wantScholar, tt.wantSocial)
			}
			if want := min(tt.count, tt.scholarPool+tt.socialPool); len(selected) != want {
				t.Errorf("len(selected) = %d, want %d", len(selected), want)
			}
		})
	}
}

func TestSelectTopOrdering(t *testing.T) {
	selected := SelectTop(makePool(10, 10), 10, 0.6)
	for i := 1; i < len(selected); i++ {
		if selected[i].Weight > selected[i-1].Weight {
			t.Errorf("result not sorted by weight at %d: %v after %v",
				i, selected[i].Weight, selected[i-1].Weight)
		}
	}
}

func TestSelectTopPicksHighestWithinPools(t *testing.T) {
	all := makePool(20, 20)
	selected := SelectTop(all, 10, 0.6)

	picked := make(map[string]bool)
	for _, in := range selected {
		picked[in.Keyword] = true
	}
	// Quota slots must go to each pool's heaviest records.
	for _, want := range []string{"scholar-00", "scholar-05", "social-00", "social-03"} {
		if !picked[want] {
			t.Errorf("expected %s in selection, got %v", want, picked)
		}
	}
	if picked["scholar-06"] || picked["social-04"] {
		t.Errorf("selection overflowed a pool quota: %v", picked)
	}
}

func TestSelectTopBothCountsAsScholar(t *testing.T) {
	all := []models.LongTermInterest{
		{Keyword: "a", Source: models.SourceBoth, Weight: 0.9},
		{Keyword: "b", Source: models.SourceSocial, Weight: 0.8},
	}
	selected := SelectTop(all, 1, 1.0)
	if len(selected) != 1 || selected[0].Keyword != "a" {
		t.Errorf("selected = %+v, want the both-sourced record", selected)
	}
}

func TestSelectTopZeroCount(t *testing.T) {
	if got := SelectTop(makePool(5, 5), 0, 0.6); got != nil {
		t.Errorf("SelectTop(count=0) = %v, want nil", got)
	}
}

func TestSelectTopShortQuota(t *testing.T) {
	var all []models.ShortTermInterest
	for i := 0; i < 10; i++ {
		all = append(all, models.ShortTermInterest{
			Keyword: fmt.Sprintf("scholar-%02d", i),
			Source:  models.SourceScholar,
			Weight:  1.0 - float64(i)*0.01,
		})
	}
	for i := 0; i < 10; i++ {
		all = append(all, models.ShortTermInterest{
			Keyword: fmt.Sprintf("social-%02d", i),
			Source:  models.SourceSocial,
			Weight:  0.9 - float64(i)*0.01,
		})
	}

	selected := SelectTopShort(all, 10, 0.6)
	if len(selected) != 10 {
		t.Fatalf("len(selected) = %d, want 10", len(selected))
	}
	var scholar, social int
	for _, in := range selected {
		if in.Source == models.SourceScholar {
			scholar++
		} else {
			social++
		}
	}
	if scholar != 6 || social != 4 {
		t.Errorf("split = %d scholar / %d social, want 6 / 4", scholar, social)
	}
	for i := 1; i < len(selected); i++ {
		if selected[i].Weight > selected[i-1].Weight {
			t.Errorf("result not sorted by weight at %d", i)
		}
	}
}

func TestTopInterestsChronologicalOrder(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	for i, kw := range []string{"machine learning", "robotics", "genomics"} {
		if _, err := e.AddManualInterest(ctx, 1, kw, 0.5+float64(i)*0.1); err != nil {
			t.Fatalf("AddManualInterest(%q): %v", kw, err)
		}
	}

	byWeight, err := e.TopInterests(ctx, 1, 3, OrderWeight)
	if err != nil {
		t.Fatalf("TopInterests(weight): %v", err)
	}
	for i := 1; i < len(byWeight); i++ {
		if byWeight[i].Weight > byWeight[i-1].Weight {
			t.Errorf("weight order violated at %d", i)
		}
	}

	chrono, err := e.TopInterests(ctx, 1, 3, OrderChronological)
	if err != nil {
		t.Fatalf("TopInterests(chronological): %v", err)
	}
	if len(chrono) != 3 {
		t.Fatalf("len = %d, want 3", len(chrono))
	}
	for i := 1; i < len(chrono); i++ {
		if chrono[i].CreatedAt.After(chrono[i-1].CreatedAt) {
			t.Errorf("chronological order violated at %d: %v after %v",
				i, chrono[i].CreatedAt, chrono[i-1].CreatedAt)
		}
	}
}

func TestTopShortTermCurrentBucket(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)

	seed := func(kw string, source models.Source, weight float64, month, year int) {
		t.Helper()
		_, err := e.db.UpsertShortTermInterest(ctx, database.ShortTermUpsert{
			UserID: 1, Keyword: kw, Source: source, Weight: weight,
			ModelMonth: month, ModelYear: year,
		})
		if err != nil {
			t.Fatalf("seed %q: %v", kw, err)
		}
	}

	seed("robotics", models.SourceSocial, 0.6, 5, 2026)
	seed("genomics", models.SourceSocial, 0.4, 4, 2026) // stale bucket
	seed("machine learning", models.SourceScholar, 0.8, 1, 2026)
	seed("deep learning", models.SourceScholar, 0.7, 1, 2025) // stale year

	got, err := e.TopShortTerm(ctx, 1, "", 10, OrderWeight, now)
	if err != nil {
		t.Fatalf("TopShortTerm: %v", err)
	}

	keywords := make(map[string]bool)
	for _, in := range got {
		keywords[in.Keyword] = true
	}
	if !keywords["robotics"] || !keywords["machine learning"] {
		t.Errorf("current buckets missing from result: %v", keywords)
	}
	if keywords["genomics"] || keywords["deep learning"] {
		t.Errorf("stale buckets leaked into result: %v", keywords)
	}

	scholarOnly, err := e.TopShortTerm(ctx, 1, models.SourceScholar, 10, OrderWeight, now)
	if err != nil {
		t.Fatalf("TopShortTerm(scholar): %v", err)
	}
	if len(scholarOnly) != 1 || scholarOnly[0].Keyword != "machine learning" {
		t.Errorf("scholar-only result = %+v, want just machine learning", scholarOnly)
	}
}
