// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package api

import "time"

// extractRequest is the body of the public extraction endpoint. Filter
// defaults to true; false skips knowledge-graph enrichment and returns
// the raw extractor scores.
type extractRequest struct {
	Text      string `json:"text" validate:"required,min=1,max=200000"`
	Algorithm string `json:"algorithm" validate:"omitempty,oneof=yake singlerank"`
	Filter    *bool  `json:"filter"`
}

// similarityRequest is the body of the public similarity endpoint.
type similarityRequest struct {
	KeywordsA []string `json:"keywords_a" validate:"required,min=1,max=500,dive,min=1,max=200"`
	KeywordsB []string `json:"keywords_b" validate:"required,min=1,max=500,dive,min=1,max=200"`
	Algorithm string   `json:"algorithm" validate:"omitempty,oneof=embedding graphlink"`
}

// postRequest ingests one social content item.
type postRequest struct {
	FullText string    `json:"full_text" validate:"required,min=1,max=10000"`
	PostedAt time.Time `json:"posted_at" validate:"required"`
}

// paperRequest ingests one academic content item.
type paperRequest struct {
	Title    string `json:"title" validate:"max=1000"`
	Abstract string `json:"abstract" validate:"required,min=1,max=100000"`
	Year     int    `json:"year" validate:"required,gte=1900,lte=2100"`
}

// buildRequest triggers a short-term build for one content stream.
type buildRequest struct {
	Source string `json:"source" validate:"required,oneof=social scholar"`
}

// manualInterestRequest adds a user-entered long-term interest.
type manualInterestRequest struct {
	Keyword string  `json:"keyword" validate:"required,min=1,max=200"`
	Weight  float64 `json:"weight" validate:"gte=0,lte=1"`
}
