// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

// Package interests implements the interest modeling pipeline: keyword
// filtering against the knowledge graph, short-term model builds per
// calendar bucket, the long-term merge, top-K selection with source
// quotas, and the trend and activity views. The Engine type ties the
// stages to the store and is the single entry point used by the HTTP
// API and the task runner.
package interests
