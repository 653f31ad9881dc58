// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package similarity

import (
	"hash/fnv"
	"math"
	"strings"
)

// Embedder maps a term into a fixed-dimension vector. Implementations
// must be deterministic for a given term.
type Embedder interface {
	Embed(term string) []float64
	Dims() int
}

// defaultDims is the hashed feature space size. Large enough that token
// collisions are rare for keyword-scale vocabularies.
const defaultDims = 512

// HashingEmbedder embeds a term by feature-hashing its tokens and
// character trigrams into a fixed-width count vector, L2-normalized.
// Subword features let morphologically related terms ("database",
// "databases") land near each other without any trained model; a
// trained embedding source can be swapped in behind the Embedder
// interface without touching the scorer.
type HashingEmbedder struct {
	dims int
}

// NewHashingEmbedder creates an embedder with the given dimension count,
// or the default when dims <= 0.
func NewHashingEmbedder(dims int) *HashingEmbedder {
	if dims <= 0 {
		dims = defaultDims
	}
	return &HashingEmbedder{dims: dims}
}

// Dims returns the embedding dimension count.
func (e *HashingEmbedder) Dims() int { return e.dims }

// Embed returns the L2-normalized hashed feature vector for term.
// An empty term embeds to the zero vector.
func (e *HashingEmbedder) Embed(term string) []float64 {
	vec := make([]float64, e.dims)

	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return vec
	}

	for _, tok := range strings.Fields(term) {
		vec[e.bucket("t:"+tok)] += 2 // whole tokens weigh double

		padded := "^" + tok + "$"
		for i := 0; i+3 <= len(padded); i++ {
			vec[e.bucket("g:"+padded[i:i+3])]++
		}
	}

	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// bucket hashes a feature string into a dimension index.
func (e *HashingEmbedder) bucket(feature string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(feature))
	return int(h.Sum32() % uint32(e.dims))
}

// meanVector averages the embeddings of all terms in the set.
func meanVector(e Embedder, terms []string) []float64 {
	mean := make([]float64, e.Dims())
	for _, term := range terms {
		for i, v := range e.Embed(term) {
			mean[i] += v
		}
	}
	for i := range mean {
		mean[i] /= float64(len(terms))
	}
	return mean
}

// cosine returns the cosine similarity of two vectors, clamped to
// [0,1]. Hashed count vectors are non-negative, so clamping only guards
// float error at the boundaries.
func cosine(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	c := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Min(1, math.Max(0, c))
}
