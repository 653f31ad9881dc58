// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

// Package knowledge resolves keywords against an external knowledge
// graph: taxonomy categories plus an optional canonical redirect name.
//
// The packaged Client speaks the MediaWiki query API and is wrapped with
// a circuit breaker, an outbound rate limiter and a lookup cache, since
// the pipeline performs one lookup per candidate term. Results are
// advisory: a term that cannot be resolved still flows through the
// pipeline, only un-enriched.
package knowledge
