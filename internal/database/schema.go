// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext bounds schema creation.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createSchema creates sequences, tables and indexes. All DDL is
// idempotent; there are no migrations while the schema is pre-release.
func (db *DB) createSchema() error {
	ctx, cancel := schemaContext()
	defer cancel()

	statements := []string{
		`CREATE SEQUENCE IF NOT EXISTS seq_keywords START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_categories START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_blacklist START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_posts START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_papers START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_short_term START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_long_term START 1`,

		`CREATE TABLE IF NOT EXISTS keywords (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_keywords'),
			name VARCHAR NOT NULL UNIQUE,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,

		`CREATE TABLE IF NOT EXISTS categories (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_categories'),
			name VARCHAR NOT NULL UNIQUE
		)`,

		`CREATE TABLE IF NOT EXISTS keyword_categories (
			keyword_id BIGINT NOT NULL,
			category_id BIGINT NOT NULL,
			UNIQUE (keyword_id, category_id)
		)`,

		`CREATE TABLE IF NOT EXISTS blacklisted_keywords (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_blacklist'),
			user_id BIGINT NOT NULL,
			keyword_id BIGINT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			UNIQUE (user_id, keyword_id)
		)`,

		`CREATE TABLE IF NOT EXISTS posts (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_posts'),
			user_id BIGINT NOT NULL,
			full_text VARCHAR NOT NULL,
			posted_at TIMESTAMP NOT NULL,
			used_in_calc BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,

		`CREATE TABLE IF NOT EXISTS papers (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_papers'),
			user_id BIGINT NOT NULL,
			title VARCHAR NOT NULL DEFAULT '',
			abstract VARCHAR NOT NULL,
			year INTEGER NOT NULL,
			used_in_calc BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,

		`CREATE TABLE IF NOT EXISTS short_term_interests (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_short_term'),
			user_id BIGINT NOT NULL,
			keyword_id BIGINT NOT NULL,
			source VARCHAR NOT NULL,
			weight DOUBLE NOT NULL,
			model_month INTEGER NOT NULL,
			model_year INTEGER NOT NULL,
			used_in_calc BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			updated_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			UNIQUE (user_id, keyword_id, model_month, model_year)
		)`,

		`CREATE TABLE IF NOT EXISTS long_term_interests (
			id BIGINT PRIMARY KEY DEFAULT nextval('seq_long_term'),
			user_id BIGINT NOT NULL,
			keyword_id BIGINT NOT NULL,
			source VARCHAR NOT NULL,
			weight DOUBLE NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			updated_at TIMESTAMP NOT NULL DEFAULT current_timestamp,
			UNIQUE (user_id, keyword_id)
		)`,

		// Evidence links: which content items support which interest rows.
		`CREATE TABLE IF NOT EXISTS short_term_interest_posts (
			interest_id BIGINT NOT NULL,
			post_id BIGINT NOT NULL,
			UNIQUE (interest_id, post_id)
		)`,
		`CREATE TABLE IF NOT EXISTS short_term_interest_papers (
			interest_id BIGINT NOT NULL,
			paper_id BIGINT NOT NULL,
			UNIQUE (interest_id, paper_id)
		)`,
		`CREATE TABLE IF NOT EXISTS long_term_interest_posts (
			interest_id BIGINT NOT NULL,
			post_id BIGINT NOT NULL,
			UNIQUE (interest_id, post_id)
		)`,
		`CREATE TABLE IF NOT EXISTS long_term_interest_papers (
			interest_id BIGINT NOT NULL,
			paper_id BIGINT NOT NULL,
			UNIQUE (interest_id, paper_id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sti_user_bucket
			ON short_term_interests (user_id, model_year, model_month)`,
		`CREATE INDEX IF NOT EXISTS idx_sti_user_unmerged
			ON short_term_interests (user_id, used_in_calc)`,
		`CREATE INDEX IF NOT EXISTS idx_lti_user
			ON long_term_interests (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_posts_user_pending
			ON posts (user_id, used_in_calc)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_user_pending
			ON papers (user_id, used_in_calc)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute schema statement: %s: %w", stmt, err)
		}
	}
	return nil
}
