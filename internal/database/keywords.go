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
	"strings"

	"github.com/openrima/interestd/internal/models"
)

// GetOrCreateKeyword returns the canonical keyword row for name,
// creating it if absent. Names are stored lower-cased and trimmed.
func (db *DB) GetOrCreateKeyword(ctx context.Context, name string) (*models.Keyword, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, fmt.Errorf("empty keyword name")
	}

	mu := db.lockKeyword(name)
	defer mu.Unlock()

	ctx, cancel := opContext(ctx)
	defer cancel()

	kw, err := db.keywordByName(ctx, name)
	if err == nil {
		return kw, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO keywords (name) VALUES (?)`, name)
	if err != nil {
		if isConflict(err) {
			return db.keywordByName(ctx, name)
		}
		return nil, fmt.Errorf("insert keyword %q: %w", name, err)
	}
	return db.keywordByName(ctx, name)
}

func (db *DB) keywordByName(ctx context.Context, name string) (*models.Keyword, error) {
	var kw models.Keyword
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM keywords WHERE name = ?`, name).
		Scan(&kw.ID, &kw.Name, &kw.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query keyword %q: %w", name, err)
	}
	return &kw, nil
}

// AddKeywordCategories attaches taxonomy labels to a keyword, creating
// category rows on demand. Existing links are left untouched.
func (db *DB) AddKeywordCategories(ctx context.Context, keywordID int64, categories []string) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	for _, name := range categories {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}

		catID, err := db.getOrCreateCategory(ctx, name)
		if err != nil {
			return err
		}

		_, err = db.conn.ExecContext(ctx,
			`INSERT INTO keyword_categories (keyword_id, category_id)
			 SELECT ?, ?
			 WHERE NOT EXISTS (
				SELECT 1 FROM keyword_categories
				WHERE keyword_id = ? AND category_id = ?)`,
			keywordID, catID, keywordID, catID)
		if err != nil && !isConflict(err) {
			return fmt.Errorf("link keyword %d to category %q: %w", keywordID, name, err)
		}
	}
	return nil
}

func (db *DB) getOrCreateCategory(ctx context.Context, name string) (int64, error) {
	var id int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM categories WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("query category %q: %w", name, err)
	}

	err = db.conn.QueryRowContext(ctx,
		`INSERT INTO categories (name) VALUES (?) RETURNING id`, name).Scan(&id)
	if err != nil {
		if isConflict(err) {
			if qerr := db.conn.QueryRowContext(ctx,
				`SELECT id FROM categories WHERE name = ?`, name).Scan(&id); qerr == nil {
				return id, nil
			}
		}
		return 0, fmt.Errorf("insert category %q: %w", name, err)
	}
	return id, nil
}

// KeywordCategories returns the taxonomy labels attached to a keyword,
// sorted by name.
func (db *DB) KeywordCategories(ctx context.Context, keywordID int64) ([]string, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT c.name
		 FROM categories c
		 JOIN keyword_categories kc ON kc.category_id = c.id
		 WHERE kc.keyword_id = ?
		 ORDER BY c.name`, keywordID)
	if err != nil {
		return nil, fmt.Errorf("query keyword categories: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
