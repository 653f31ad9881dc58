// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package similarity

import (
	"context"
	"math"
	"testing"

	"github.com/openrima/interestd/internal/knowledge"
)

func graphResolver() knowledge.Resolver {
	return &knowledge.StaticResolver{Entries: map[string]knowledge.Lookup{
		"machine learning": {Found: true, Categories: []string{"Artificial intelligence", "Learning"}},
		"deep learning":    {Found: true, Categories: []string{"Artificial intelligence", "Neural networks"}},
		"baking":           {Found: true, Categories: []string{"Cooking"}},
	}}
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		input   string
		want    Algorithm
		wantErr bool
	}{
		{input: "embedding", want: AlgorithmEmbedding},
		{input: "graphlink", want: AlgorithmGraphLink},
		{input: "cosine", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.input)
			if tt.wantErr != (err != nil) {
				t.Fatalf("ParseAlgorithm(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseAlgorithm(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestScoreEmptySetsUndefined(t *testing.T) {
	s := NewScorer(nil, nil)

	tests := []struct {
		name string
		a, b []string
	}{
		{name: "both empty", a: nil, b: nil},
		{name: "left empty", a: nil, b: []string{"chess"}},
		{name: "right empty", a: []string{"chess"}, b: nil},
		{name: "whitespace only", a: []string{"  ", ""}, b: []string{"chess"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Score(context.Background(), tt.a, tt.b, AlgorithmEmbedding)
			if err != nil {
				t.Fatalf("Score: %v", err)
			}
			if got != nil {
				t.Errorf("Score = %v, want nil for an empty side", *got)
			}
		})
	}
}

func TestScoreEmbeddingIdenticalSets(t *testing.T) {
	s := NewScorer(nil, nil)
	set := []string{"machine learning", "chess", "genomics"}

	got, err := s.Score(context.Background(), set, set, AlgorithmEmbedding)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if got == nil {
		t.Fatal("Score = nil for non-empty sets")
	}
	if math.Abs(*got-1.0) > 1e-9 {
		t.Errorf("identical sets scored %v, want 1.0", *got)
	}
}

func TestScoreEmbeddingOrderingByOverlap(t *testing.T) {
	s := NewScorer(nil, nil)
	ctx := context.Background()

	base := []string{"machine learning", "neural networks"}
	near := []string{"machine learning", "chess"}
	far := []string{"baking", "gardening"}

	nearScore, err := s.Score(ctx, base, near, AlgorithmEmbedding)
	if err != nil {
		t.Fatalf("Score near: %v", err)
	}
	farScore, err := s.Score(ctx, base, far, AlgorithmEmbedding)
	if err != nil {
		t.Fatalf("Score far: %v", err)
	}

	if *nearScore <= *farScore {
		t.Errorf("overlapping sets scored %v, disjoint sets %v, want overlap higher", *nearScore, *farScore)
	}
	for _, v := range []float64{*nearScore, *farScore} {
		if v < 0 || v > 1 {
			t.Errorf("score %v outside [0,1]", v)
		}
	}
}

func TestScoreEmbeddingSymmetric(t *testing.T) {
	s := NewScorer(nil, nil)
	ctx := context.Background()
	a := []string{"quantum computing", "cryptography"}
	b := []string{"quantum computing", "chess"}

	ab, err := s.Score(ctx, a, b, AlgorithmEmbedding)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	ba, err := s.Score(ctx, b, a, AlgorithmEmbedding)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if *ab != *ba {
		t.Errorf("Score(a,b) = %v, Score(b,a) = %v, want symmetric", *ab, *ba)
	}
}

func TestScoreGraphLinkSharedCategories(t *testing.T) {
	s := NewScorer(nil, graphResolver())
	ctx := context.Background()

	// No literal keyword overlap, but both resolve into the
	// "artificial intelligence" category.
	related, err := s.Score(ctx, []string{"machine learning"}, []string{"deep learning"}, AlgorithmGraphLink)
	if err != nil {
		t.Fatalf("Score related: %v", err)
	}
	unrelated, err := s.Score(ctx, []string{"machine learning"}, []string{"baking"}, AlgorithmGraphLink)
	if err != nil {
		t.Fatalf("Score unrelated: %v", err)
	}

	if *related <= 0 {
		t.Errorf("category-linked terms scored %v, want > 0", *related)
	}
	if *unrelated != 0 {
		t.Errorf("unrelated terms scored %v, want 0", *unrelated)
	}
	if *related <= *unrelated {
		t.Errorf("related %v <= unrelated %v", *related, *unrelated)
	}
}

func TestScoreUnknownAlgorithm(t *testing.T) {
	s := NewScorer(nil, nil)
	if _, err := s.Score(context.Background(), []string{"a"}, []string{"b"}, Algorithm("magic")); err == nil {
		t.Fatal("Score accepted an unknown algorithm")
	}
}

func TestHashingEmbedderDeterministic(t *testing.T) {
	e := NewHashingEmbedder(0)
	if e.Dims() != defaultDims {
		t.Fatalf("Dims() = %d, want default %d", e.Dims(), defaultDims)
	}

	a := e.Embed("reinforcement learning")
	b := e.Embed("Reinforcement  Learning ")
	if cosine(a, b) < 0.999 {
		t.Error("case and whitespace variants embed differently")
	}

	norm := 0.0
	for _, v := range a {
		norm += v * v
	}
	if math.Abs(norm-1.0) > 1e-9 {
		t.Errorf("embedding norm = %v, want 1.0", math.Sqrt(norm))
	}
}

func TestHashingEmbedderSubwordOverlap(t *testing.T) {
	e := NewHashingEmbedder(0)

	related := cosine(e.Embed("database"), e.Embed("databases"))
	unrelated := cosine(e.Embed("database"), e.Embed("volcano"))
	if related <= unrelated {
		t.Errorf("morphological variants scored %v, unrelated words %v", related, unrelated)
	}
}

func TestCosineZeroVector(t *testing.T) {
	if got := cosine(make([]float64, 8), make([]float64, 8)); got != 0 {
		t.Errorf("cosine of zero vectors = %v, want 0", got)
	}
}

func TestNormalizeTerms(t *testing.T) {
	got := normalizeTerms([]string{" Chess ", "chess", "", "Go", "go", "shogi"})
	want := []string{"chess", "go", "shogi"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("term[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
