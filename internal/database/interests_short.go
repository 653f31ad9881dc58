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

// ShortTermUpsert carries one short-term interest write: the keyword,
// its weight within one calendar bucket, and the content items that
// produced it.
type ShortTermUpsert struct {
	UserID     int64
	Keyword    string
	Source     models.Source
	Weight     float64
	ModelMonth int
	ModelYear  int
	PostIDs    []int64
	PaperIDs   []int64
}

// ShortTermFilter narrows short-term interest listings. Zero values
// mean "any".
type ShortTermFilter struct {
	ModelMonth int
	ModelYear  int
	Source     models.Source
	Unmerged   bool
}

// UpsertShortTermInterest creates or replaces the row keyed by
// (user, keyword, month, year), refreshing weight and source, and
// attaches the evidence links. Returns the interest row ID.
func (db *DB) UpsertShortTermInterest(ctx context.Context, u ShortTermUpsert) (int64, error) {
	kw, err := db.GetOrCreateKeyword(ctx, u.Keyword)
	if err != nil {
		return 0, err
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO short_term_interests
			(user_id, keyword_id, source, weight, model_month, model_year)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, keyword_id, model_month, model_year)
		 DO UPDATE SET
			source = excluded.source,
			weight = excluded.weight,
			used_in_calc = false,
			updated_at = now()`,
		u.UserID, kw.ID, string(u.Source), u.Weight, u.ModelMonth, u.ModelYear)
	if err != nil {
		return 0, fmt.Errorf("upsert short-term interest %q: %w", u.Keyword, err)
	}

	var id int64
	err = db.conn.QueryRowContext(ctx,
		`SELECT id FROM short_term_interests
		 WHERE user_id = ? AND keyword_id = ? AND model_month = ? AND model_year = ?`,
		u.UserID, kw.ID, u.ModelMonth, u.ModelYear).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("reselect short-term interest: %w", err)
	}

	for _, postID := range u.PostIDs {
		_, err = db.conn.ExecContext(ctx,
			`INSERT INTO short_term_interest_posts (interest_id, post_id)
			 SELECT ?, ?
			 WHERE NOT EXISTS (
				SELECT 1 FROM short_term_interest_posts
				WHERE interest_id = ? AND post_id = ?)`,
			id, postID, id, postID)
		if err != nil && !isConflict(err) {
			return 0, fmt.Errorf("attach post evidence: %w", err)
		}
	}
	for _, paperID := range u.PaperIDs {
		_, err = db.conn.ExecContext(ctx,
			`INSERT INTO short_term_interest_papers (interest_id, paper_id)
			 SELECT ?, ?
			 WHERE NOT EXISTS (
				SELECT 1 FROM short_term_interest_papers
				WHERE interest_id = ? AND paper_id = ?)`,
			id, paperID, id, paperID)
		if err != nil && !isConflict(err) {
			return 0, fmt.Errorf("attach paper evidence: %w", err)
		}
	}
	return id, nil
}

// ShortTermInterests lists a user's short-term rows matching the
// filter, highest weight first. Evidence counts are included.
func (db *DB) ShortTermInterests(ctx context.Context, userID int64, filter ShortTermFilter) ([]models.ShortTermInterest, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	query := `SELECT s.id, s.user_id, s.keyword_id, k.name, s.source, s.weight,
			s.model_month, s.model_year, s.used_in_calc, s.created_at,
			(SELECT COUNT(*) FROM short_term_interest_posts p WHERE p.interest_id = s.id),
			(SELECT COUNT(*) FROM short_term_interest_papers p WHERE p.interest_id = s.id)
		 FROM short_term_interests s
		 JOIN keywords k ON k.id = s.keyword_id
		 WHERE s.user_id = ?`
	args := []any{userID}

	if filter.ModelMonth != 0 {
		query += ` AND s.model_month = ?`
		args = append(args, filter.ModelMonth)
	}
	if filter.ModelYear != 0 {
		query += ` AND s.model_year = ?`
		args = append(args, filter.ModelYear)
	}
	if filter.Source != "" {
		query += ` AND s.source = ?`
		args = append(args, string(filter.Source))
	}
	if filter.Unmerged {
		query += ` AND s.used_in_calc = false`
	}
	query += ` ORDER BY s.weight DESC, k.name`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query short-term interests: %w", err)
	}
	defer rows.Close()

	var interests []models.ShortTermInterest
	for rows.Next() {
		var in models.ShortTermInterest
		var src string
		if err := rows.Scan(&in.ID, &in.UserID, &in.KeywordID, &in.Keyword, &src,
			&in.Weight, &in.ModelMonth, &in.ModelYear, &in.UsedInCalc,
			&in.CreatedAt, &in.PostCount, &in.PaperCount); err != nil {
			return nil, fmt.Errorf("scan short-term interest: %w", err)
		}
		in.Source = models.Source(src)
		interests = append(interests, in)
	}
	return interests, rows.Err()
}
