// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package interests

import (
	"context"
	"testing"
	"time"

	"github.com/openrima/interestd/internal/database"
	"github.com/openrima/interestd/internal/models"
)

func TestTrendSocial(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	seed := []database.ShortTermUpsert{
		{UserID: 1, Keyword: "robotics", Source: models.SourceSocial, Weight: 0.6, ModelMonth: 7, ModelYear: 2026},
		{UserID: 1, Keyword: "robotics", Source: models.SourceSocial, Weight: 0.4, ModelMonth: 8, ModelYear: 2026},
		{UserID: 1, Keyword: "genomics", Source: models.SourceSocial, Weight: 0.3, ModelMonth: 8, ModelYear: 2026},
		// Outside the six-month window: still tracked, zero-filled.
		{UserID: 1, Keyword: "economics", Source: models.SourceSocial, Weight: 0.9, ModelMonth: 1, ModelYear: 2026},
		// Different source: must not appear in the social view.
		{UserID: 1, Keyword: "statistics", Source: models.SourceScholar, Weight: 0.9, ModelMonth: 1, ModelYear: 2026},
	}
	for _, u := range seed {
		if _, err := e.db.UpsertShortTermInterest(ctx, u); err != nil {
			t.Fatalf("UpsertShortTermInterest() error = %v", err)
		}
	}

	buckets, err := e.Trend(ctx, 1, models.SourceSocial, 0, now)
	if err != nil {
		t.Fatalf("Trend() error = %v", err)
	}
	if len(buckets) != 6 {
		t.Fatalf("len(buckets) = %d, want 6 months", len(buckets))
	}
	if buckets[0].Label != "March 2026" || buckets[5].Label != "August 2026" {
		t.Errorf("window = %q..%q, want March 2026..August 2026",
			buckets[0].Label, buckets[5].Label)
	}

	// Keyword selection spans all time; economics peaked in January and
	// carries zero weight through the whole window.
	for _, b := range buckets {
		sawEconomics := false
		for _, kw := range b.Keywords {
			if kw.Keyword == "economics" {
				sawEconomics = true
				if kw.Weight != 0 {
					t.Errorf("%s economics = %v, want 0 (outside window)", b.Label, kw.Weight)
				}
			}
			if kw.Keyword == "statistics" {
				t.Error("scholar keyword leaked into social trend")
			}
		}
		if !sawEconomics {
			t.Errorf("%s missing tracked keyword economics", b.Label)
		}
	}

	// Tracked keywords appear in every bucket, zero-weighted when absent.
	last := buckets[5]
	weights := make(map[string]float64)
	for _, kw := range last.Keywords {
		weights[kw.Keyword] = kw.Weight
	}
	if weights["robotics"] != 0.4 {
		t.Errorf("August robotics = %v, want 0.4", weights["robotics"])
	}
	if weights["genomics"] != 0.3 {
		t.Errorf("August genomics = %v, want 0.3", weights["genomics"])
	}
	july := buckets[4]
	for _, kw := range july.Keywords {
		if kw.Keyword == "genomics" && kw.Weight != 0 {
			t.Errorf("July genomics = %v, want 0 (absent that month)", kw.Weight)
		}
	}
}

func TestTrendScholar(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	for year, weight := range map[int]float64{2024: 0.7, 2026: 0.5} {
		_, err := e.db.UpsertShortTermInterest(ctx, database.ShortTermUpsert{
			UserID: 1, Keyword: "optimization", Source: models.SourceScholar,
			Weight: weight, ModelMonth: 1, ModelYear: year,
		})
		if err != nil {
			t.Fatalf("UpsertShortTermInterest() error = %v", err)
		}
	}

	buckets, err := e.Trend(ctx, 1, models.SourceScholar, 0, now)
	if err != nil {
		t.Fatalf("Trend() error = %v", err)
	}
	if len(buckets) != 5 {
		t.Fatalf("len(buckets) = %d, want 5 years", len(buckets))
	}
	if buckets[0].Label != "2022" || buckets[4].Label != "2026" {
		t.Errorf("window = %q..%q, want 2022..2026", buckets[0].Label, buckets[4].Label)
	}

	byYear := make(map[string]float64)
	for _, b := range buckets {
		for _, kw := range b.Keywords {
			if kw.Keyword == "optimization" {
				byYear[b.Label] = kw.Weight
			}
		}
	}
	if byYear["2024"] != 0.7 || byYear["2026"] != 0.5 {
		t.Errorf("optimization by year = %v, want 2024:0.7 2026:0.5", byYear)
	}
	if byYear["2023"] != 0 {
		t.Errorf("2023 optimization = %v, want 0", byYear["2023"])
	}
}

func TestTrendRejectsOtherSources(t *testing.T) {
	e := newTestEngine(t)
	for _, src := range []models.Source{models.SourceManual, models.SourceBoth, "bogus"} {
		if _, err := e.Trend(context.Background(), 1, src, 0, time.Now()); err == nil {
			t.Errorf("Trend(%q) expected error, got nil", src)
		}
	}
}

func TestTrendTracksTopKeywordsOnly(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	// More keywords than the tracked cap; only the heaviest survive.
	cfg := testEngineConfig()
	cfg.TrendTopKeywords = 2
	e.cfg = cfg

	for i, kw := range []string{"alpha", "beta", "gamma", "delta"} {
		_, err := e.db.UpsertShortTermInterest(ctx, database.ShortTermUpsert{
			UserID: 1, Keyword: kw, Source: models.SourceSocial,
			Weight: 0.9 - float64(i)*0.2, ModelMonth: 8, ModelYear: 2026,
		})
		if err != nil {
			t.Fatalf("UpsertShortTermInterest() error = %v", err)
		}
	}

	buckets, err := e.Trend(ctx, 1, models.SourceSocial, 0, now)
	if err != nil {
		t.Fatalf("Trend() error = %v", err)
	}
	last := buckets[len(buckets)-1]
	if len(last.Keywords) != 2 {
		t.Fatalf("tracked keywords = %d, want 2", len(last.Keywords))
	}
	names := map[string]bool{}
	for _, kw := range last.Keywords {
		names[kw.Keyword] = true
	}
	if !names["alpha"] || !names["beta"] {
		t.Errorf("tracked = %v, want alpha and beta", names)
	}
}

func TestTrendCustomWindow(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	_, err := e.db.UpsertShortTermInterest(ctx, database.ShortTermUpsert{
		UserID: 1, Keyword: "robotics", Source: models.SourceSocial,
		Weight: 0.6, ModelMonth: 8, ModelYear: 2026,
	})
	if err != nil {
		t.Fatalf("UpsertShortTermInterest() error = %v", err)
	}

	buckets, err := e.Trend(ctx, 1, models.SourceSocial, 3, now)
	if err != nil {
		t.Fatalf("Trend() error = %v", err)
	}
	if len(buckets) != 3 {
		t.Fatalf("len(buckets) = %d, want 3 months", len(buckets))
	}
	if buckets[0].Label != "June 2026" || buckets[2].Label != "August 2026" {
		t.Errorf("window = %q..%q, want June 2026..August 2026",
			buckets[0].Label, buckets[2].Label)
	}

	years, err := e.Trend(ctx, 1, models.SourceScholar, 2, now)
	if err != nil {
		t.Fatalf("Trend() error = %v", err)
	}
	if len(years) != 2 {
		t.Fatalf("len(years) = %d, want 2", len(years))
	}
	if years[0].Label != "2025" || years[1].Label != "2026" {
		t.Errorf("window = %q..%q, want 2025..2026", years[0].Label, years[1].Label)
	}
}
