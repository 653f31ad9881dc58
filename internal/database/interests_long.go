// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/openrima/interestd/internal/models"
)

// LongTermUpsert carries one computed long-term row for a rebuild.
// Evidence links are copied from the user's short-term rows for the
// same keyword inside the rebuild transaction.
type LongTermUpsert struct {
	Keyword string
	Source  models.Source
	Weight  float64
}

// ReplaceLongTermInterests rebuilds the user's long-term tier in one
// transaction: the old rows and their evidence links are dropped, the
// computed rows inserted, evidence copied over from the short-term
// tier, and the consumed short-term rows marked merged. Manual entries
// survive the rebuild untouched.
func (db *DB) ReplaceLongTermInterests(ctx context.Context, userID int64, upserts []LongTermUpsert) error {
	// Resolve keyword IDs outside the transaction; creation takes the
	// per-name lock.
	keywordIDs := make(map[string]int64, len(upserts))
	for _, u := range upserts {
		kw, err := db.GetOrCreateKeyword(ctx, u.Keyword)
		if err != nil {
			return err
		}
		keywordIDs[u.Keyword] = kw.ID
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin long-term rebuild: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	clears := []string{
		`DELETE FROM long_term_interest_posts WHERE interest_id IN
			(SELECT id FROM long_term_interests WHERE user_id = ? AND source <> 'manual')`,
		`DELETE FROM long_term_interest_papers WHERE interest_id IN
			(SELECT id FROM long_term_interests WHERE user_id = ? AND source <> 'manual')`,
		`DELETE FROM long_term_interests WHERE user_id = ? AND source <> 'manual'`,
	}
	for _, stmt := range clears {
		if _, err := tx.ExecContext(ctx, stmt, userID); err != nil {
			return fmt.Errorf("clear long-term interests: %w", err)
		}
	}

	for _, u := range upserts {
		kwID := keywordIDs[u.Keyword]

		var id int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO long_term_interests (user_id, keyword_id, source, weight)
			 VALUES (?, ?, ?, ?)
			 ON CONFLICT (user_id, keyword_id)
			 DO UPDATE SET
				source = excluded.source,
				weight = excluded.weight,
				updated_at = now()
			 RETURNING id`,
			userID, kwID, string(u.Source), u.Weight).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert long-term interest %q: %w", u.Keyword, err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO long_term_interest_posts (interest_id, post_id)
			 SELECT DISTINCT ?, sp.post_id
			 FROM short_term_interest_posts sp
			 JOIN short_term_interests s ON s.id = sp.interest_id
			 WHERE s.user_id = ? AND s.keyword_id = ?
			   AND NOT EXISTS (
				SELECT 1 FROM long_term_interest_posts lp
				WHERE lp.interest_id = ? AND lp.post_id = sp.post_id)`,
			id, userID, kwID, id)
		if err != nil {
			return fmt.Errorf("copy post evidence: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO long_term_interest_papers (interest_id, paper_id)
			 SELECT DISTINCT ?, sp.paper_id
			 FROM short_term_interest_papers sp
			 JOIN short_term_interests s ON s.id = sp.interest_id
			 WHERE s.user_id = ? AND s.keyword_id = ?
			   AND NOT EXISTS (
				SELECT 1 FROM long_term_interest_papers lp
				WHERE lp.interest_id = ? AND lp.paper_id = sp.paper_id)`,
			id, userID, kwID, id)
		if err != nil {
			return fmt.Errorf("copy paper evidence: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE short_term_interests SET used_in_calc = true, updated_at = current_timestamp
		 WHERE user_id = ? AND used_in_calc = false`, userID); err != nil {
		return fmt.Errorf("mark short-term rows merged: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit long-term rebuild: %w", err)
	}
	return nil
}

// LongTermInterests lists a user's long-term rows, highest weight
// first, with evidence counts.
func (db *DB) LongTermInterests(ctx context.Context, userID int64) ([]models.LongTermInterest, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT l.id, l.user_id, l.keyword_id, k.name, l.source, l.weight, l.created_at,
			(SELECT COUNT(*) FROM long_term_interest_posts p WHERE p.interest_id = l.id),
			(SELECT COUNT(*) FROM long_term_interest_papers p WHERE p.interest_id = l.id)
		 FROM long_term_interests l
		 JOIN keywords k ON k.id = l.keyword_id
		 WHERE l.user_id = ?
		 ORDER BY l.weight DESC, k.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("query long-term interests: %w", err)
	}
	defer rows.Close()

	var interests []models.LongTermInterest
	for rows.Next() {
		var in models.LongTermInterest
		var src string
		if err := rows.Scan(&in.ID, &in.UserID, &in.KeywordID, &in.Keyword, &src,
			&in.Weight, &in.CreatedAt, &in.PostCount, &in.PaperCount); err != nil {
			return nil, fmt.Errorf("scan long-term interest: %w", err)
		}
		in.Source = models.Source(src)
		interests = append(interests, in)
	}
	return interests, rows.Err()
}

// UpsertManualLongTermInterest records a user-entered interest. Manual
// rows carry source "manual" and are preserved across merge rebuilds.
func (db *DB) UpsertManualLongTermInterest(ctx context.Context, userID int64, keyword string, weight float64) (*models.LongTermInterest, error) {
	kw, err := db.GetOrCreateKeyword(ctx, keyword)
	if err != nil {
		return nil, err
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO long_term_interests (user_id, keyword_id, source, weight)
		 VALUES (?, ?, 'manual', ?)
		 ON CONFLICT (user_id, keyword_id)
		 DO UPDATE SET
			source = 'manual',
			weight = excluded.weight,
			updated_at = now()`,
		userID, kw.ID, weight)
	if err != nil {
		return nil, fmt.Errorf("upsert manual interest %q: %w", keyword, err)
	}

	var in models.LongTermInterest
	var src string
	err = db.conn.QueryRowContext(ctx,
		`SELECT l.id, l.user_id, l.keyword_id, k.name, l.source, l.weight, l.created_at
		 FROM long_term_interests l
		 JOIN keywords k ON k.id = l.keyword_id
		 WHERE l.user_id = ? AND l.keyword_id = ?`,
		userID, kw.ID).Scan(&in.ID, &in.UserID, &in.KeywordID, &in.Keyword,
		&src, &in.Weight, &in.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reselect manual interest: %w", err)
	}
	in.Source = models.Source(src)
	return &in, nil
}
