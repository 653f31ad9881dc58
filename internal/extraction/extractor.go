// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package extraction

import (
	"fmt"
	"sort"
)

// Algorithm selects an extraction strategy. The caller picks the
// algorithm by content type; the extractor itself is agnostic.
type Algorithm string

const (
	// AlgorithmYake is the statistical extractor for short informal text.
	AlgorithmYake Algorithm = "yake"

	// AlgorithmSingleRank is the graph-ranking extractor for longer
	// structured text.
	AlgorithmSingleRank Algorithm = "singlerank"
)

// ParseAlgorithm converts a string into an Algorithm, rejecting unknown
// values rather than coercing them.
func ParseAlgorithm(v string) (Algorithm, error) {
	switch Algorithm(v) {
	case AlgorithmYake, AlgorithmSingleRank:
		return Algorithm(v), nil
	}
	return "", fmt.Errorf("unknown extraction algorithm %q", v)
}

// Extract runs the selected algorithm over text and returns up to
// maxTerms candidate phrases mapped to raw salience scores. Higher score
// means more salient for both algorithms. Degenerate input returns an
// empty map.
func Extract(text string, algorithm Algorithm, maxTerms int) map[string]float64 {
	if maxTerms <= 0 {
		return map[string]float64{}
	}

	tokens := tokenize(text)
	if len(tokens) == 0 {
		return map[string]float64{}
	}

	var scored map[string]float64
	switch algorithm {
	case AlgorithmSingleRank:
		scored = scoreSingleRank(tokens)
	default:
		scored = scoreYake(tokens)
	}

	return topN(scored, maxTerms)
}

// topN keeps the maxTerms highest-scored terms. Ties break
// lexicographically so extraction stays deterministic.
func topN(scores map[string]float64, maxTerms int) map[string]float64 {
	if len(scores) <= maxTerms {
		return scores
	}

	terms := make([]string, 0, len(scores))
	for term := range scores {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if scores[terms[i]] != scores[terms[j]] {
			return scores[terms[i]] > scores[terms[j]]
		}
		return terms[i] < terms[j]
	})

	out := make(map[string]float64, maxTerms)
	for _, term := range terms[:maxTerms] {
		out[term] = scores[term]
	}
	return out
}
