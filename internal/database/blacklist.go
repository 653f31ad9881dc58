// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package database

import (
	"context"
	"fmt"

	"github.com/openrima/interestd/internal/models"
)

// BlacklistKeyword adds a permanent per-user suppression rule for the
// named keyword and purges every existing interest record for it, both
// short-term and long-term. Idempotent.
func (db *DB) BlacklistKeyword(ctx context.Context, userID int64, name string) error {
	kw, err := db.GetOrCreateKeyword(ctx, name)
	if err != nil {
		return err
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO blacklisted_keywords (user_id, keyword_id)
		 SELECT ?, ?
		 WHERE NOT EXISTS (
			SELECT 1 FROM blacklisted_keywords
			WHERE user_id = ? AND keyword_id = ?)`,
		userID, kw.ID, userID, kw.ID)
	if err != nil && !isConflict(err) {
		return fmt.Errorf("insert blacklist entry: %w", err)
	}

	purges := []string{
		`DELETE FROM short_term_interest_posts WHERE interest_id IN
			(SELECT id FROM short_term_interests WHERE user_id = ? AND keyword_id = ?)`,
		`DELETE FROM short_term_interest_papers WHERE interest_id IN
			(SELECT id FROM short_term_interests WHERE user_id = ? AND keyword_id = ?)`,
		`DELETE FROM long_term_interest_posts WHERE interest_id IN
			(SELECT id FROM long_term_interests WHERE user_id = ? AND keyword_id = ?)`,
		`DELETE FROM long_term_interest_papers WHERE interest_id IN
			(SELECT id FROM long_term_interests WHERE user_id = ? AND keyword_id = ?)`,
		`DELETE FROM short_term_interests WHERE user_id = ? AND keyword_id = ?`,
		`DELETE FROM long_term_interests WHERE user_id = ? AND keyword_id = ?`,
	}
	for _, stmt := range purges {
		if _, err := db.conn.ExecContext(ctx, stmt, userID, kw.ID); err != nil {
			return fmt.Errorf("purge blacklisted interests: %w", err)
		}
	}
	return nil
}

// UnblacklistKeyword removes a suppression rule. Removing a rule that
// does not exist is not an error. Past purges are not undone.
func (db *DB) UnblacklistKeyword(ctx context.Context, userID int64, name string) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM blacklisted_keywords
		 WHERE user_id = ? AND keyword_id IN
			(SELECT id FROM keywords WHERE name = lower(trim(?)))`,
		userID, name)
	if err != nil {
		return fmt.Errorf("delete blacklist entry: %w", err)
	}
	return nil
}

// BlacklistedKeywords returns the user's suppression rules sorted by
// keyword name.
func (db *DB) BlacklistedKeywords(ctx context.Context, userID int64) ([]models.BlacklistedKeyword, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT b.id, b.user_id, k.name, b.created_at
		 FROM blacklisted_keywords b
		 JOIN keywords k ON k.id = b.keyword_id
		 WHERE b.user_id = ?
		 ORDER BY k.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("query blacklist: %w", err)
	}
	defer rows.Close()

	var entries []models.BlacklistedKeyword
	for rows.Next() {
		var e models.BlacklistedKeyword
		if err := rows.Scan(&e.ID, &e.UserID, &e.Keyword, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan blacklist entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// BlacklistSet returns the user's blacklisted keyword names as a set
// for fast membership checks during filtering.
func (db *DB) BlacklistSet(ctx context.Context, userID int64) (map[string]struct{}, error) {
	entries, err := db.BlacklistedKeywords(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		set[e.Keyword] = struct{}{}
	}
	return set, nil
}
