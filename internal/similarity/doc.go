// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

// Package similarity computes a scalar similarity in [0,1] between two
// keyword sets. Two metrics are provided: an embedding-space cosine
// score with a pluggable embedding source, and a knowledge-graph
// relatedness score built from shared taxonomy categories.
//
// Similarity of an empty set is undefined: Score returns nil rather
// than zero. Both metrics are symmetric.
package similarity
