// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/openrima/interestd/internal/models"
)

// InsertPost stores one social content item and returns its ID.
func (db *DB) InsertPost(ctx context.Context, post *models.Post) (int64, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	var id int64
	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO posts (user_id, full_text, posted_at)
		 VALUES (?, ?, ?) RETURNING id`,
		post.UserID, post.FullText, post.PostedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}
	return id, nil
}

// InsertPaper stores one academic content item and returns its ID.
func (db *DB) InsertPaper(ctx context.Context, paper *models.Paper) (int64, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	var id int64
	err := db.conn.QueryRowContext(ctx,
		`INSERT INTO papers (user_id, title, abstract, year)
		 VALUES (?, ?, ?, ?) RETURNING id`,
		paper.UserID, paper.Title, paper.Abstract, paper.Year).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert paper: %w", err)
	}
	return id, nil
}

// UnprocessedPosts returns the user's posts not yet consumed by a
// short-term cycle, oldest first.
func (db *DB) UnprocessedPosts(ctx context.Context, userID int64) ([]models.Post, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, full_text, posted_at, used_in_calc, created_at
		 FROM posts
		 WHERE user_id = ? AND used_in_calc = false
		 ORDER BY posted_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.FullText, &p.PostedAt,
			&p.UsedInCalc, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// UnprocessedPapers returns the user's papers not yet consumed by a
// short-term cycle, oldest publication year first.
func (db *DB) UnprocessedPapers(ctx context.Context, userID int64) ([]models.Paper, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, title, abstract, year, used_in_calc, created_at
		 FROM papers
		 WHERE user_id = ? AND used_in_calc = false
		 ORDER BY year, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed papers: %w", err)
	}
	defer rows.Close()

	var papers []models.Paper
	for rows.Next() {
		var p models.Paper
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Abstract, &p.Year,
			&p.UsedInCalc, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan paper: %w", err)
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// MarkPostsProcessed flags the given posts as consumed. Items that
// yielded no keywords are still marked so the pipeline makes forward
// progress.
func (db *DB) MarkPostsProcessed(ctx context.Context, ids []int64) error {
	return db.markProcessed(ctx, "posts", ids)
}

// MarkPapersProcessed flags the given papers as consumed.
func (db *DB) MarkPapersProcessed(ctx context.Context, ids []int64) error {
	return db.markProcessed(ctx, "papers", ids)
}

func (db *DB) markProcessed(ctx context.Context, table string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	ctx, cancel := opContext(ctx)
	defer cancel()

	stmt := fmt.Sprintf(`UPDATE %s SET used_in_calc = true WHERE id = ?`, table)
	for _, id := range ids {
		if _, err := db.conn.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("mark %s %d processed: %w", table, id, err)
		}
	}
	return nil
}

// PostActivity counts the user's posts per calendar month over the
// window ending now, most recent bucket last. Months with no posts get
// a zero bucket.
func (db *DB) PostActivity(ctx context.Context, userID int64, months int, now time.Time) ([]models.ActivityBucket, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	counts := make(map[string]int)
	rows, err := db.conn.QueryContext(ctx,
		`SELECT EXTRACT(month FROM posted_at), EXTRACT(year FROM posted_at), COUNT(*)
		 FROM posts
		 WHERE user_id = ?
		 GROUP BY 1, 2`, userID)
	if err != nil {
		return nil, fmt.Errorf("query post activity: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var month, year, count int
		if err := rows.Scan(&month, &year, &count); err != nil {
			return nil, fmt.Errorf("scan post activity: %w", err)
		}
		counts[fmt.Sprintf("%04d-%02d", year, month)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Anchor at the first of the month so month arithmetic cannot
	// overflow into a neighboring month.
	base := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	buckets := make([]models.ActivityBucket, 0, months)
	for i := months - 1; i >= 0; i-- {
		t := base.AddDate(0, -i, 0)
		key := fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
		buckets = append(buckets, models.ActivityBucket{
			Label: t.Format("January 2006"),
			Count: counts[key],
		})
	}
	return buckets, nil
}

// PaperActivity counts the user's papers per publication year over the
// window ending at the current year, most recent bucket last.
func (db *DB) PaperActivity(ctx context.Context, userID int64, years int, now time.Time) ([]models.ActivityBucket, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	counts := make(map[int]int)
	rows, err := db.conn.QueryContext(ctx,
		`SELECT year, COUNT(*) FROM papers WHERE user_id = ? GROUP BY year`, userID)
	if err != nil {
		return nil, fmt.Errorf("query paper activity: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var year, count int
		if err := rows.Scan(&year, &count); err != nil {
			return nil, fmt.Errorf("scan paper activity: %w", err)
		}
		counts[year] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	buckets := make([]models.ActivityBucket, 0, years)
	for y := now.Year() - years + 1; y <= now.Year(); y++ {
		buckets = append(buckets, models.ActivityBucket{
			Label: fmt.Sprintf("%d", y),
			Count: counts[y],
		})
	}
	return buckets, nil
}
