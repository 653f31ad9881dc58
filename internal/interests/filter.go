// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package interests

import (
	"context"
	"sort"
	"strings"

	"github.com/openrima/interestd/internal/knowledge"
	"github.com/openrima/interestd/internal/logging"
	"github.com/openrima/interestd/internal/metrics"
)

// FilteredTerm is one extracted keyword that survived knowledge-graph
// filtering, with its normalized weight and any taxonomy labels the
// graph attached.
type FilteredTerm struct {
	Keyword    string
	Weight     float64
	Categories []string
}

// FilterAndNormalize runs raw extraction scores through the knowledge
// graph and the user's blacklist, then rescales surviving weights to
// sum to 1.
//
// A term the graph knows nothing about, or knows but files under no
// category, is dropped as noise. A term whose lookup fails outright
// (upstream unreachable, breaker open) is kept un-enriched: transient
// infrastructure trouble must not erase signal. Canonical names from
// redirects replace the surface form, merging weights when two surface
// forms collapse onto one canonical term.
func FilterAndNormalize(ctx context.Context, resolver knowledge.Resolver, blacklist map[string]struct{}, raw map[string]float64) []FilteredTerm {
	log := logging.Ctx(ctx)

	type entry struct {
		weight     float64
		categories []string
	}
	kept := make(map[string]*entry, len(raw))

	for term, weight := range raw {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if _, banned := blacklist[term]; banned {
			metrics.KeywordsBlacklisted.Inc()
			continue
		}

		name := term
		var categories []string

		lookup, err := resolver.Resolve(ctx, term)
		switch {
		case err != nil:
			metrics.KnowledgeLookupErrors.Inc()
			log.Debug().Err(err).Str("term", term).
				Msg("knowledge lookup failed, keeping term un-enriched")
		case !lookup.Found || len(lookup.Categories) == 0:
			continue
		default:
			if lookup.Canonical != "" {
				name = strings.ToLower(lookup.Canonical)
			}
			categories = lookup.Categories
		}

		// Redirects can collapse two surface forms onto one canonical
		// name; the weights add up.
		if _, banned := blacklist[name]; banned {
			metrics.KeywordsBlacklisted.Inc()
			continue
		}
		if e, ok := kept[name]; ok {
			e.weight += weight
			if len(e.categories) == 0 {
				e.categories = categories
			}
		} else {
			kept[name] = &entry{weight: weight, categories: categories}
		}
	}

	var total float64
	for _, e := range kept {
		total += e.weight
	}
	if total <= 0 {
		return nil
	}

	terms := make([]FilteredTerm, 0, len(kept))
	for name, e := range kept {
		terms = append(terms, FilteredTerm{
			Keyword:    name,
			Weight:     e.weight / total,
			Categories: e.categories,
		})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Weight != terms[j].Weight {
			return terms[i].Weight > terms[j].Weight
		}
		return terms[i].Keyword < terms[j].Keyword
	})
	return terms
}
