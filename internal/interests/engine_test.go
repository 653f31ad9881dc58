// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package interests

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/openrima/interestd/internal/config"
	"github.com/openrima/interestd/internal/database"
	"github.com/openrima/interestd/internal/knowledge"
	"github.com/openrima/interestd/internal/models"
	"github.com/openrima/interestd/internal/similarity"
)

// testResolver recognizes a handful of research terms; everything else
// is unknown and filtered out as noise.
func testResolver() knowledge.Resolver {
	entries := map[string]knowledge.Lookup{}
	for _, term := range []string{
		"machine learning", "deep learning", "neural networks",
		"graph theory", "reinforcement learning", "robotics",
		"computer vision", "optimization", "statistics", "genomics",
		"climate", "economics",
	} {
		entries[term] = knowledge.Lookup{
			Found:      true,
			Categories: []string{"science", term + " studies"},
		}
	}
	return &knowledge.StaticResolver{Entries: entries}
}

func testEngineConfig() *config.EngineConfig {
	return &config.EngineConfig{
		TermCap:          20,
		PaperModelMonth:  1,
		MergeAlpha:       0.6,
		MergeDecay:       0.9,
		MergeFloor:       0.001,
		ScholarQuota:     0.6,
		TrendMonths:      6,
		TrendYears:       5,
		TrendTopKeywords: 10,
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", Threads: 1, MaxMemory: "256MB"})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	resolver := testResolver()
	scorer := similarity.NewScorer(nil, resolver)
	return NewEngine(db, resolver, scorer, testEngineConfig())
}

func TestBuildShortTermSocial(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	postedAt := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	texts := []string{
		"Reading about machine learning and neural networks again today",
		"machine learning models keep surprising me",
		"great survey on deep learning architectures",
	}
	for _, text := range texts {
		if _, err := e.AddPost(ctx, &models.Post{UserID: 1, FullText: text, PostedAt: postedAt}); err != nil {
			t.Fatalf("AddPost() error = %v", err)
		}
	}

	if err := e.BuildShortTerm(ctx, 1, models.SourceSocial); err != nil {
		t.Fatalf("BuildShortTerm() error = %v", err)
	}

	rows, err := e.ShortTermInterests(ctx, 1, database.ShortTermFilter{ModelMonth: 3, ModelYear: 2026})
	if err != nil {
		t.Fatalf("ShortTermInterests() error = %v", err)
	}
	if len(rows) == 0 {
		t.Fatal("no short-term rows after build")
	}

	counts := make(map[string]int)
	for _, r := range rows {
		counts[r.Keyword] = r.PostCount
		if r.Source != models.SourceSocial {
			t.Errorf("Source = %q, want %q", r.Source, models.SourceSocial)
		}
		if r.Weight <= 0 || r.Weight > 1 {
			t.Errorf("keyword %q weight = %v, want in (0,1]", r.Keyword, r.Weight)
		}
		if r.PostCount == 0 {
			t.Errorf("keyword %q has no post evidence", r.Keyword)
		}
	}
	// Evidence accrues per contributing item: two posts mention machine
	// learning, one mentions deep learning.
	if counts["machine learning"] < 2 {
		t.Errorf("machine learning PostCount = %d, want >= 2 (counts %v)", counts["machine learning"], counts)
	}
	if counts["deep learning"] != 1 {
		t.Errorf("deep learning PostCount = %d, want 1 (counts %v)", counts["deep learning"], counts)
	}

	// Unknown filler words never survive the knowledge filter.
	for kw := range counts {
		if kw == "reading" || kw == "surprising" || kw == "today" {
			t.Errorf("noise keyword %q survived filtering", kw)
		}
	}
}

func TestBuildShortTermItemWeightsNormalized(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.AddPost(ctx, &models.Post{
		UserID: 1, FullText: "thinking about machine learning and robotics",
		PostedAt: time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("AddPost() error = %v", err)
	}
	if err := e.BuildShortTerm(ctx, 1, models.SourceSocial); err != nil {
		t.Fatalf("BuildShortTerm() error = %v", err)
	}

	rows, err := e.ShortTermInterests(ctx, 1, database.ShortTermFilter{ModelMonth: 6, ModelYear: 2026})
	if err != nil {
		t.Fatalf("ShortTermInterests() error = %v", err)
	}
	if len(rows) == 0 {
		t.Fatal("no rows after build")
	}
	var total float64
	for _, r := range rows {
		total += r.Weight
	}
	// A single item's surviving terms are rescaled to unit sum.
	if math.Abs(total-1.0) > 1e-9 {
		t.Errorf("weights sum = %v, want 1.0", total)
	}
}

func TestBuildShortTermIdempotent(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.AddPost(ctx, &models.Post{
		UserID: 1, FullText: "robotics and computer vision demo",
		PostedAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("AddPost() error = %v", err)
	}

	if err := e.BuildShortTerm(ctx, 1, models.SourceSocial); err != nil {
		t.Fatalf("BuildShortTerm() first error = %v", err)
	}
	first, err := e.ShortTermInterests(ctx, 1, database.ShortTermFilter{})
	if err != nil {
		t.Fatalf("ShortTermInterests() error = %v", err)
	}

	// Second build has no pending content and must change nothing.
	if err := e.BuildShortTerm(ctx, 1, models.SourceSocial); err != nil {
		t.Fatalf("BuildShortTerm() second error = %v", err)
	}
	second, err := e.ShortTermInterests(ctx, 1, database.ShortTermFilter{})
	if err != nil {
		t.Fatalf("ShortTermInterests() error = %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("row count changed across idempotent rebuild: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Keyword != second[i].Keyword || first[i].Weight != second[i].Weight {
			t.Errorf("row %d changed: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestBuildShortTermScholar(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.AddPaper(ctx, &models.Paper{
		UserID: 1,
		Title:  "Advances in reinforcement learning",
		Abstract: "We study reinforcement learning with neural networks. " +
			"Reinforcement learning agents trained on graph theory benchmarks " +
			"show that optimization of neural networks remains central.",
		Year: 2025,
	})
	if err != nil {
		t.Fatalf("AddPaper() error = %v", err)
	}

	if err := e.BuildShortTerm(ctx, 1, models.SourceScholar); err != nil {
		t.Fatalf("BuildShortTerm() error = %v", err)
	}

	rows, err := e.ShortTermInterests(ctx, 1, database.ShortTermFilter{Source: models.SourceScholar})
	if err != nil {
		t.Fatalf("ShortTermInterests() error = %v", err)
	}
	if len(rows) == 0 {
		t.Fatal("no scholar rows after build")
	}
	for _, r := range rows {
		if r.ModelMonth != 1 {
			t.Errorf("ModelMonth = %d, want papers pinned to month 1", r.ModelMonth)
		}
		if r.ModelYear != 2025 {
			t.Errorf("ModelYear = %d, want 2025", r.ModelYear)
		}
		if r.PaperCount == 0 {
			t.Errorf("keyword %q has no paper evidence", r.Keyword)
		}
	}
}

func TestBlacklistExcludedFromBuild(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	if err := e.RemoveInterest(ctx, 1, "machine learning"); err != nil {
		t.Fatalf("RemoveInterest() error = %v", err)
	}

	_, err := e.AddPost(ctx, &models.Post{
		UserID: 1, FullText: "machine learning and robotics all day",
		PostedAt: time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("AddPost() error = %v", err)
	}
	if err := e.BuildShortTerm(ctx, 1, models.SourceSocial); err != nil {
		t.Fatalf("BuildShortTerm() error = %v", err)
	}

	rows, err := e.ShortTermInterests(ctx, 1, database.ShortTermFilter{})
	if err != nil {
		t.Fatalf("ShortTermInterests() error = %v", err)
	}
	for _, r := range rows {
		if r.Keyword == "machine learning" {
			t.Error("blacklisted keyword resurfaced in a rebuild")
		}
	}
}

func TestMergeLongTerm(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	// Seed short-term rows directly so weights are exact.
	seed := []database.ShortTermUpsert{
		{UserID: 1, Keyword: "robotics", Source: models.SourceSocial, Weight: 0.5, ModelMonth: 3, ModelYear: 2026},
		{UserID: 1, Keyword: "genomics", Source: models.SourceScholar, Weight: 0.5, ModelMonth: 1, ModelYear: 2026},
	}
	for _, u := range seed {
		if _, err := e.db.UpsertShortTermInterest(ctx, u); err != nil {
			t.Fatalf("UpsertShortTermInterest() error = %v", err)
		}
	}

	if err := e.MergeLongTerm(ctx, 1); err != nil {
		t.Fatalf("MergeLongTerm() first error = %v", err)
	}

	long, err := e.LongTermInterests(ctx, 1)
	if err != nil {
		t.Fatalf("LongTermInterests() error = %v", err)
	}
	weights := make(map[string]float64)
	for _, in := range long {
		weights[in.Keyword] = in.Weight
	}
	// First merge: short-only keywords enter at their short-term weight.
	if weights["robotics"] != 0.5 || weights["genomics"] != 0.5 {
		t.Fatalf("first merge weights = %v, want both at 0.5", weights)
	}

	// New cycle: robotics strengthens, genomics is absent and decays.
	_, err = e.db.UpsertShortTermInterest(ctx, database.ShortTermUpsert{
		UserID: 1, Keyword: "robotics", Source: models.SourceSocial,
		Weight: 0.9, ModelMonth: 4, ModelYear: 2026,
	})
	if err != nil {
		t.Fatalf("UpsertShortTermInterest() error = %v", err)
	}
	if err := e.MergeLongTerm(ctx, 1); err != nil {
		t.Fatalf("MergeLongTerm() second error = %v", err)
	}

	long, err = e.LongTermInterests(ctx, 1)
	if err != nil {
		t.Fatalf("LongTermInterests() error = %v", err)
	}
	weights = make(map[string]float64)
	for _, in := range long {
		weights[in.Keyword] = in.Weight
	}

	// EWMA with alpha 0.6: 0.4*0.5 + 0.6*0.9 = 0.74.
	if math.Abs(weights["robotics"]-0.74) > 1e-9 {
		t.Errorf("robotics weight = %v, want 0.74", weights["robotics"])
	}
	// Decay 0.9: 0.5 * 0.9 = 0.45.
	if math.Abs(weights["genomics"]-0.45) > 1e-9 {
		t.Errorf("genomics weight = %v, want 0.45", weights["genomics"])
	}
}

func TestMergeMonotonicBetweenInputs(t *testing.T) {
	merge := EWMAMerge(0.6)
	tests := []struct{ long, short float64 }{
		{0.3, 0.7},
		{0.7, 0.3},
		{0.0, 1.0},
		{0.5, 0.5},
	}
	for _, tt := range tests {
		got := merge(tt.long, tt.short)
		low, high := math.Min(tt.long, tt.short), math.Max(tt.long, tt.short)
		if got < low || got > high {
			t.Errorf("EWMAMerge(%v, %v) = %v, outside [%v, %v]",
				tt.long, tt.short, got, low, high)
		}
	}
}

func TestMergeComposesSources(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	// Same keyword from both content streams in one batch.
	for _, u := range []database.ShortTermUpsert{
		{UserID: 1, Keyword: "statistics", Source: models.SourceSocial, Weight: 0.4, ModelMonth: 3, ModelYear: 2026},
		{UserID: 1, Keyword: "statistics", Source: models.SourceScholar, Weight: 0.6, ModelMonth: 1, ModelYear: 2026},
	} {
		if _, err := e.db.UpsertShortTermInterest(ctx, u); err != nil {
			t.Fatalf("UpsertShortTermInterest() error = %v", err)
		}
	}
	if err := e.MergeLongTerm(ctx, 1); err != nil {
		t.Fatalf("MergeLongTerm() error = %v", err)
	}

	long, err := e.LongTermInterests(ctx, 1)
	if err != nil {
		t.Fatalf("LongTermInterests() error = %v", err)
	}
	if len(long) != 1 {
		t.Fatalf("len(long) = %d, want 1", len(long))
	}
	if long[0].Source != models.SourceBoth {
		t.Errorf("Source = %q, want %q", long[0].Source, models.SourceBoth)
	}
}

func TestMergeNoNewSignalIsNoop(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.db.UpsertShortTermInterest(ctx, database.ShortTermUpsert{
		UserID: 1, Keyword: "economics", Source: models.SourceSocial,
		Weight: 0.5, ModelMonth: 3, ModelYear: 2026,
	})
	if err != nil {
		t.Fatalf("UpsertShortTermInterest() error = %v", err)
	}
	if err := e.MergeLongTerm(ctx, 1); err != nil {
		t.Fatalf("MergeLongTerm() first error = %v", err)
	}
	before, err := e.LongTermInterests(ctx, 1)
	if err != nil {
		t.Fatalf("LongTermInterests() error = %v", err)
	}

	// All short-term rows already merged: nothing decays, nothing moves.
	if err := e.MergeLongTerm(ctx, 1); err != nil {
		t.Fatalf("MergeLongTerm() second error = %v", err)
	}
	after, err := e.LongTermInterests(ctx, 1)
	if err != nil {
		t.Fatalf("LongTermInterests() error = %v", err)
	}
	if len(before) != len(after) {
		t.Fatalf("row count changed: %d vs %d", len(before), len(after))
	}
	for i := range before {
		if before[i].Weight != after[i].Weight {
			t.Errorf("weight changed without new signal: %v vs %v",
				before[i].Weight, after[i].Weight)
		}
	}
}

func TestRemoveInterestBlacklists(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.db.UpsertShortTermInterest(ctx, database.ShortTermUpsert{
		UserID: 1, Keyword: "climate", Source: models.SourceSocial,
		Weight: 0.5, ModelMonth: 3, ModelYear: 2026,
	})
	if err != nil {
		t.Fatalf("UpsertShortTermInterest() error = %v", err)
	}
	if err := e.MergeLongTerm(ctx, 1); err != nil {
		t.Fatalf("MergeLongTerm() error = %v", err)
	}

	if err := e.RemoveInterest(ctx, 1, "climate"); err != nil {
		t.Fatalf("RemoveInterest() error = %v", err)
	}

	long, err := e.LongTermInterests(ctx, 1)
	if err != nil {
		t.Fatalf("LongTermInterests() error = %v", err)
	}
	if len(long) != 0 {
		t.Errorf("len(long) = %d, want 0 after removal", len(long))
	}
	short, err := e.ShortTermInterests(ctx, 1, database.ShortTermFilter{})
	if err != nil {
		t.Fatalf("ShortTermInterests() error = %v", err)
	}
	if len(short) != 0 {
		t.Errorf("len(short) = %d, want 0 after removal", len(short))
	}

	rules, err := e.Blacklist(ctx, 1)
	if err != nil {
		t.Fatalf("Blacklist() error = %v", err)
	}
	if len(rules) != 1 || rules[0].Keyword != "climate" {
		t.Errorf("blacklist = %+v, want single climate rule", rules)
	}
}

func TestProfileSimilarity(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	// User 3 has no model: similarity is undefined, not zero.
	score, err := e.ProfileSimilarity(ctx, 1, 3, similarity.AlgorithmEmbedding)
	if err != nil {
		t.Fatalf("ProfileSimilarity() error = %v", err)
	}
	if score != nil {
		t.Errorf("score = %v, want nil for empty profile", *score)
	}

	for user, keyword := range map[int64]string{1: "machine learning", 2: "machine learning"} {
		if _, err := e.AddManualInterest(ctx, user, keyword, 1.0); err != nil {
			t.Fatalf("AddManualInterest() error = %v", err)
		}
	}
	score, err = e.ProfileSimilarity(ctx, 1, 2, similarity.AlgorithmEmbedding)
	if err != nil {
		t.Fatalf("ProfileSimilarity() error = %v", err)
	}
	if score == nil {
		t.Fatal("score = nil, want value for identical profiles")
	}
	if math.Abs(*score-1.0) > 1e-9 {
		t.Errorf("identical profiles score = %v, want 1.0", *score)
	}
}
