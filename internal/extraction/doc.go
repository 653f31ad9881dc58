// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

// Package extraction implements statistical keyword extraction over raw
// text. Two interchangeable algorithms are provided:
//
//   - AlgorithmYake: frequency/position statistics tuned for short
//     informal text such as social posts.
//   - AlgorithmSingleRank: co-occurrence graph ranking tuned for longer
//     structured text such as paper abstracts.
//
// Extraction is a pure function of the input text. Degenerate input
// (empty text, all stopwords, no statistics) yields an empty mapping,
// never an error.
package extraction
