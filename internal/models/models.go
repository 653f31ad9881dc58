// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

// Package models defines the domain types shared across the interest
// modeling pipeline: keywords, categories, the two interest tiers,
// content items and blacklist entries.
package models

import (
	"fmt"
	"time"
)

// Source identifies where an interest record's signal came from.
// It is a closed tag set; provenance that spans both content streams
// uses SourceBoth rather than a composed string.
type Source string

const (
	// SourceSocial marks interests derived from short-form social posts.
	SourceSocial Source = "social"

	// SourceScholar marks interests derived from academic paper abstracts.
	SourceScholar Source = "scholar"

	// SourceManual marks interests entered directly by the user.
	SourceManual Source = "manual"

	// SourceBoth marks long-term interests supported by posts and papers.
	SourceBoth Source = "both"
)

// Valid reports whether s is one of the known source tags.
func (s Source) Valid() bool {
	switch s {
	case SourceSocial, SourceScholar, SourceManual, SourceBoth:
		return true
	}
	return false
}

// ParseSource converts a string into a Source, rejecting unknown values.
func ParseSource(v string) (Source, error) {
	s := Source(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown source %q", v)
	}
	return s, nil
}

// Keyword is a canonical lower-cased term. Immutable once created except
// for growth of its category set.
type Keyword struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Categories []string  `json:"categories,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Category is a taxonomy label attached to keywords. Created on demand,
// never deleted by the pipeline.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BlacklistedKeyword is a user-scoped permanent suppression rule.
type BlacklistedKeyword struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Keyword   string    `json:"keyword"`
	CreatedAt time.Time `json:"created_at"`
}

// ShortTermInterest is a keyword weight scoped to one user and one
// calendar bucket. At most one row exists per
// (user, keyword, model_month, model_year).
type ShortTermInterest struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	KeywordID  int64     `json:"-"`
	Keyword    string    `json:"keyword"`
	Source     Source    `json:"source"`
	Weight     float64   `json:"weight"`
	ModelMonth int       `json:"model_month"`
	ModelYear  int       `json:"model_year"`
	UsedInCalc bool      `json:"used_in_calc"`
	PostCount  int       `json:"post_count"`
	PaperCount int       `json:"paper_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// LongTermInterest is a cumulative, cross-bucket keyword weight for a
// user. The set of rows for a user is fully rebuilt each merge cycle.
type LongTermInterest struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	KeywordID  int64     `json:"-"`
	Keyword    string    `json:"keyword"`
	Source     Source    `json:"source"`
	Weight     float64   `json:"weight"`
	PostCount  int       `json:"post_count"`
	PaperCount int       `json:"paper_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// Post is a short-form social content item. PostedAt drives month/year
// bucketing; UsedInCalc marks whether its text has already contributed
// to a short-term cycle.
type Post struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	FullText   string    `json:"full_text"`
	PostedAt   time.Time `json:"posted_at"`
	UsedInCalc bool      `json:"used_in_calc"`
	CreatedAt  time.Time `json:"created_at"`
}

// Paper is an academic content item. Year drives bucketing (papers are
// bucketed at month 1 of their publication year).
type Paper struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Title      string    `json:"title"`
	Abstract   string    `json:"abstract"`
	Year       int       `json:"year"`
	UsedInCalc bool      `json:"used_in_calc"`
	CreatedAt  time.Time `json:"created_at"`
}

// KeywordWeight is a (keyword, weight) pair used in trend buckets and
// normalized extraction output.
type KeywordWeight struct {
	Keyword string  `json:"keyword"`
	Weight  float64 `json:"weight"`
}

// TrendBucket is one time bucket of the trend view: a label such as
// "March 2026" or "2026" plus the weights of the tracked keywords that
// have records in that bucket.
type TrendBucket struct {
	Label    string          `json:"label"`
	Keywords []KeywordWeight `json:"keywords"`
}

// ActivityBucket counts content items per time bucket for the activity
// stats view.
type ActivityBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}
