// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package knowledge

import "context"

// Lookup is the result of resolving one term.
type Lookup struct {
	// Canonical is the redirect target when the knowledge graph knows
	// the term under another name; empty when the term is already
	// canonical or unknown.
	Canonical string `json:"canonical,omitempty"`

	// Categories are the taxonomy labels attached to the term, in the
	// order the knowledge graph returns them.
	Categories []string `json:"categories"`

	// Found reports whether the knowledge graph has an entry for the
	// term at all. A found term with zero categories is treated as
	// noise by the filter; a not-found term likewise.
	Found bool `json:"found"`
}

// Resolver resolves a term to its knowledge-graph categories and
// optional canonical name. "Not found" is a successful Lookup with
// Found=false, not an error; errors mean the lookup itself failed
// (unreachable upstream, timeout).
type Resolver interface {
	Resolve(ctx context.Context, term string) (Lookup, error)
}

// StaticResolver resolves from a fixed table. Used in tests and as an
// offline fallback.
type StaticResolver struct {
	// Entries maps lower-cased terms to their lookup results.
	Entries map[string]Lookup
}

// Resolve returns the table entry for term, or a not-found Lookup.
func (s *StaticResolver) Resolve(_ context.Context, term string) (Lookup, error) {
	if l, ok := s.Entries[term]; ok {
		return l, nil
	}
	return Lookup{}, nil
}
