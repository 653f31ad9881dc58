// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openrima/interestd/internal/config"
	"github.com/openrima/interestd/internal/database"
	"github.com/openrima/interestd/internal/interests"
	"github.com/openrima/interestd/internal/knowledge"
	"github.com/openrima/interestd/internal/models"
	"github.com/openrima/interestd/internal/similarity"
)

func newTestRunner(t *testing.T, mergeDelay time.Duration) (*Runner, *interests.Engine) {
	t.Helper()

	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", Threads: 1, MaxMemory: "256MB"})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	resolver := &knowledge.StaticResolver{Entries: map[string]knowledge.Lookup{
		"machine learning": {Found: true, Categories: []string{"computer science"}},
		"robotics":         {Found: true, Categories: []string{"engineering"}},
	}}
	engine := interests.NewEngine(db, resolver, similarity.NewScorer(nil, resolver), &config.EngineConfig{
		TermCap:          20,
		PaperModelMonth:  1,
		MergeAlpha:       0.6,
		MergeDecay:       0.9,
		MergeFloor:       0.001,
		ScholarQuota:     0.6,
		TrendMonths:      6,
		TrendYears:       5,
		TrendTopKeywords: 10,
	})

	runner, err := NewRunner(&config.TasksConfig{
		Workers:     2,
		QueueBuffer: 16,
		TaskTimeout: 30 * time.Second,
	}, mergeDelay, engine)
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	t.Cleanup(func() { _ = runner.Close() })
	return runner, engine
}

func startRunner(t *testing.T, r *Runner) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = r.Serve(ctx) }()

	select {
	case <-r.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("task router did not start")
	}
}

func TestEnqueueDeduplicates(t *testing.T) {
	runner, _ := newTestRunner(t, 0)

	// Without a running router the first enqueue stays inflight, so
	// the identical second one must be refused.
	if err := runner.EnqueueBuild(context.Background(), 1, models.SourceSocial); err != nil {
		t.Fatalf("first EnqueueBuild() error = %v", err)
	}
	err := runner.EnqueueBuild(context.Background(), 1, models.SourceSocial)
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second EnqueueBuild() error = %v, want ErrAlreadyRunning", err)
	}

	// A different source is a different task identity.
	if err := runner.EnqueueBuild(context.Background(), 1, models.SourceScholar); err != nil {
		t.Errorf("scholar EnqueueBuild() error = %v, want nil", err)
	}
	// As is a different user.
	if err := runner.EnqueueBuild(context.Background(), 2, models.SourceSocial); err != nil {
		t.Errorf("user 2 EnqueueBuild() error = %v, want nil", err)
	}
}

func TestEnqueueRejectsUnbuildableSources(t *testing.T) {
	runner, _ := newTestRunner(t, 0)
	for _, src := range []models.Source{models.SourceManual, models.SourceBoth, "bogus"} {
		if err := runner.EnqueueBuild(context.Background(), 1, src); err == nil {
			t.Errorf("EnqueueBuild(%q) expected error, got nil", src)
		}
	}
}

func TestBuildTaskRunsAndSchedulesMerge(t *testing.T) {
	runner, engine := newTestRunner(t, 0)
	startRunner(t, runner)
	ctx := context.Background()

	_, err := engine.AddPost(ctx, &models.Post{
		UserID:   1,
		FullText: "spent the weekend on machine learning and robotics",
		PostedAt: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("AddPost() error = %v", err)
	}

	if err := runner.EnqueueBuild(ctx, 1, models.SourceSocial); err != nil {
		t.Fatalf("EnqueueBuild() error = %v", err)
	}

	// The build runs async and, with no settle delay, chains straight
	// into the merge; wait for the long-term tier to appear.
	deadline := time.Now().Add(10 * time.Second)
	for {
		long, err := engine.LongTermInterests(ctx, 1)
		if err != nil {
			t.Fatalf("LongTermInterests() error = %v", err)
		}
		if len(long) > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("long-term model never materialized")
		}
		time.Sleep(20 * time.Millisecond)
	}

	// The identity clears after completion, so the same task can be
	// enqueued again.
	deadline = time.Now().Add(5 * time.Second)
	for {
		err := runner.EnqueueBuild(ctx, 1, models.SourceSocial)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrAlreadyRunning) {
			t.Fatalf("re-enqueue error = %v", err)
		}
		if time.Now().After(deadline) {
			t.Fatal("task identity never cleared")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestMergeTaskRuns(t *testing.T) {
	runner, engine := newTestRunner(t, 0)
	startRunner(t, runner)
	ctx := context.Background()

	if _, err := engine.AddManualInterest(ctx, 1, "robotics", 0.8); err != nil {
		t.Fatalf("AddManualInterest() error = %v", err)
	}
	if err := runner.EnqueueMerge(ctx, 1); err != nil {
		t.Fatalf("EnqueueMerge() error = %v", err)
	}

	// Merge with no unmerged short-term rows is a no-op; it must still
	// complete and release its identity.
	deadline := time.Now().Add(5 * time.Second)
	for {
		if err := runner.EnqueueMerge(ctx, 1); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("merge identity never cleared")
		}
		time.Sleep(20 * time.Millisecond)
	}
}
