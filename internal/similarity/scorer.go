// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package similarity

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/openrima/interestd/internal/knowledge"
	"github.com/openrima/interestd/internal/logging"
)

// Algorithm selects a similarity metric.
type Algorithm string

const (
	// AlgorithmEmbedding scores keyword sets by embedding-space cosine.
	AlgorithmEmbedding Algorithm = "embedding"

	// AlgorithmGraphLink scores keyword sets by knowledge-graph
	// relatedness over shared taxonomy categories.
	AlgorithmGraphLink Algorithm = "graphlink"
)

// ParseAlgorithm converts a string into an Algorithm, rejecting unknown
// values.
func ParseAlgorithm(v string) (Algorithm, error) {
	switch Algorithm(v) {
	case AlgorithmEmbedding, AlgorithmGraphLink:
		return Algorithm(v), nil
	}
	return "", fmt.Errorf("unknown similarity algorithm %q", v)
}

// Scorer computes keyword-set similarity with a pluggable embedding
// source and knowledge resolver.
type Scorer struct {
	embedder Embedder
	resolver knowledge.Resolver
	logger   zerolog.Logger
}

// NewScorer creates a Scorer. A nil embedder falls back to the hashing
// embedder; the resolver is required only for AlgorithmGraphLink.
func NewScorer(embedder Embedder, resolver knowledge.Resolver) *Scorer {
	if embedder == nil {
		embedder = NewHashingEmbedder(0)
	}
	return &Scorer{
		embedder: embedder,
		resolver: resolver,
		logger:   logging.Component("similarity"),
	}
}

// Score computes the similarity of two keyword sets in [0,1]. Either
// set being empty makes the similarity undefined: nil is returned with
// no error. Both metrics are symmetric in their arguments.
func (s *Scorer) Score(ctx context.Context, a, b []string, algorithm Algorithm) (*float64, error) {
	a, b = normalizeTerms(a), normalizeTerms(b)
	if len(a) == 0 || len(b) == 0 {
		return nil, nil
	}

	var score float64
	switch algorithm {
	case AlgorithmEmbedding:
		score = cosine(meanVector(s.embedder, a), meanVector(s.embedder, b))
	case AlgorithmGraphLink:
		setA, err := s.conceptSet(ctx, a)
		if err != nil {
			return nil, err
		}
		setB, err := s.conceptSet(ctx, b)
		if err != nil {
			return nil, err
		}
		score = jaccard(setA, setB)
	default:
		return nil, fmt.Errorf("unknown similarity algorithm %q", algorithm)
	}

	return &score, nil
}

// conceptSet expands keywords with their knowledge-graph categories so
// two profiles relate through shared concepts, not only literal keyword
// overlap. Resolver failures degrade a term to its literal form.
func (s *Scorer) conceptSet(ctx context.Context, terms []string) (map[string]struct{}, error) {
	set := make(map[string]struct{}, len(terms)*2)
	for _, term := range terms {
		set[term] = struct{}{}
		if s.resolver == nil {
			continue
		}
		lookup, err := s.resolver.Resolve(ctx, term)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.logger.Debug().Err(err).Str("term", term).Msg("lookup failed, using literal term")
			continue
		}
		for _, cat := range lookup.Categories {
			set[strings.ToLower(cat)] = struct{}{}
		}
	}
	return set, nil
}

// jaccard computes |A∩B| / |A∪B| for two concept sets.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// normalizeTerms lower-cases, trims and dedupes a keyword list,
// preserving first-seen order.
func normalizeTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
