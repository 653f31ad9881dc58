// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package extraction

import "math"

const (
	// singleRankWindow is the co-occurrence window over non-stopword tokens.
	singleRankWindow = 10

	// pagerankDamping and pagerankIterations follow the standard
	// TextRank parameterization.
	pagerankDamping    = 0.85
	pagerankIterations = 30
	pagerankTolerance  = 1e-6
)

// scoreSingleRank builds a weighted co-occurrence graph over the
// document's words, ranks words with weighted PageRank, and scores each
// candidate phrase by the sum of its member word scores. Suited to text
// long enough to produce a connected graph; a paper abstract qualifies,
// a two-word post degenerates gracefully to frequency order.
func scoreSingleRank(tokens []token) map[string]float64 {
	words := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !t.stop {
			words = append(words, t.text)
		}
	}
	if len(words) == 0 {
		return map[string]float64{}
	}

	nodes, index := buildIndex(words)
	edges := buildCooccurrence(words, index, len(nodes))
	scores := pagerank(nodes, edges)

	out := make(map[string]float64)
	for _, phrase := range phrases(tokens) {
		text := phraseText(phrase)
		if _, seen := out[text]; seen {
			continue
		}
		sum := 0.0
		for _, t := range phrase {
			sum += scores[index[t.text]]
		}
		out[text] = sum
	}
	return out
}

// buildIndex assigns each unique word a node index in first-seen order.
func buildIndex(words []string) (nodes []string, index map[string]int) {
	index = make(map[string]int, len(words))
	for _, w := range words {
		if _, ok := index[w]; !ok {
			index[w] = len(nodes)
			nodes = append(nodes, w)
		}
	}
	return nodes, index
}

// buildCooccurrence accumulates symmetric edge weights within the window.
func buildCooccurrence(words []string, index map[string]int, n int) []map[int]float64 {
	edges := make([]map[int]float64, n)
	for i := range edges {
		edges[i] = make(map[int]float64)
	}

	for i, w := range words {
		wi := index[w]
		end := i + singleRankWindow
		if end > len(words) {
			end = len(words)
		}
		for j := i + 1; j < end; j++ {
			wj := index[words[j]]
			if wi == wj {
				continue
			}
			edges[wi][wj]++
			edges[wj][wi]++
		}
	}
	return edges
}

// pagerank runs weighted PageRank until convergence or the iteration cap.
func pagerank(nodes []string, edges []map[int]float64) []float64 {
	n := len(nodes)
	scores := make([]float64, n)
	next := make([]float64, n)
	outWeight := make([]float64, n)

	for i := range scores {
		scores[i] = 1.0 / float64(n)
		for _, w := range edges[i] {
			outWeight[i] += w
		}
	}

	base := (1 - pagerankDamping) / float64(n)
	for iter := 0; iter < pagerankIterations; iter++ {
		for i := range next {
			next[i] = base
		}
		for i := range edges {
			if outWeight[i] == 0 {
				continue
			}
			share := pagerankDamping * scores[i] / outWeight[i]
			for j, w := range edges[i] {
				next[j] += share * w
			}
		}

		delta := 0.0
		for i := range scores {
			delta += math.Abs(next[i] - scores[i])
		}
		copy(scores, next)
		if delta < pagerankTolerance {
			break
		}
	}
	return scores
}
