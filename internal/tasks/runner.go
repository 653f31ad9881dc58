// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/openrima/interestd/internal/config"
	"github.com/openrima/interestd/internal/interests"
	"github.com/openrima/interestd/internal/logging"
	"github.com/openrima/interestd/internal/metrics"
	"github.com/openrima/interestd/internal/models"
)

// ErrAlreadyRunning is returned by the enqueue methods when an
// identical task is queued or executing. Callers treat it as "accepted
// earlier", not as a failure.
var ErrAlreadyRunning = errors.New("task already running")

// Task names as they appear in metrics and logs.
const (
	TaskBuild = "build_short_term"
	TaskMerge = "merge_long_term"
)

const (
	topicBuild = "interestd.task.build"
	topicMerge = "interestd.task.merge"
)

// payload is the wire form of one task.
type payload struct {
	Task   string `json:"task"`
	UserID int64  `json:"user_id"`
	Source string `json:"source,omitempty"`
}

// identity returns the dedupe key: one build per (user, source), one
// merge per user.
func (p payload) identity() string {
	return fmt.Sprintf("%s|%d|%s", p.Task, p.UserID, p.Source)
}

// Runner executes pipeline tasks off an in-process queue.
type Runner struct {
	engine     *interests.Engine
	pubsub     *gochannel.GoChannel
	router     *message.Router
	cfg        *config.TasksConfig
	mergeDelay time.Duration
	logger     zerolog.Logger

	// inflight holds the identities of queued or running tasks.
	inflight sync.Map

	// slots bounds concurrent task execution across topics.
	slots chan struct{}

	// timers tracks pending delayed merges so Close can stop them.
	timersMu sync.Mutex
	timers   map[string]*time.Timer
	closed   bool
}

// NewRunner builds the task runner. Serve must be called before
// enqueued tasks execute.
func NewRunner(cfg *config.TasksConfig, mergeDelay time.Duration, engine *interests.Engine) (*Runner, error) {
	logger := logging.Component("tasks")
	wmLogger := newWatermillLogger(logger)

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: int64(cfg.QueueBuffer),
	}, wmLogger)

	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: 30 * time.Second,
	}, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create task router: %w", err)
	}
	router.AddMiddleware(middleware.Recoverer)

	r := &Runner{
		engine:     engine,
		pubsub:     pubsub,
		router:     router,
		cfg:        cfg,
		mergeDelay: mergeDelay,
		logger:     logger,
		slots:      make(chan struct{}, cfg.Workers),
		timers:     make(map[string]*time.Timer),
	}

	router.AddNoPublisherHandler("build-handler", topicBuild, pubsub, r.handleBuild)
	router.AddNoPublisherHandler("merge-handler", topicMerge, pubsub, r.handleMerge)
	return r, nil
}

// EnqueueBuild queues a short-term build for one user and source.
func (r *Runner) EnqueueBuild(ctx context.Context, userID int64, source models.Source) error {
	if source != models.SourceSocial && source != models.SourceScholar {
		return fmt.Errorf("cannot build for source %q", source)
	}
	return r.enqueue(ctx, topicBuild, payload{
		Task:   TaskBuild,
		UserID: userID,
		Source: string(source),
	})
}

// EnqueueMerge queues a long-term merge for one user.
func (r *Runner) EnqueueMerge(ctx context.Context, userID int64) error {
	return r.enqueue(ctx, topicMerge, payload{Task: TaskMerge, UserID: userID})
}

func (r *Runner) enqueue(ctx context.Context, topic string, p payload) error {
	key := p.identity()
	if _, loaded := r.inflight.LoadOrStore(key, struct{}{}); loaded {
		metrics.TasksRejected.WithLabelValues(p.Task).Inc()
		return fmt.Errorf("%s for user %d: %w", p.Task, p.UserID, ErrAlreadyRunning)
	}

	body, err := json.Marshal(p)
	if err != nil {
		r.inflight.Delete(key)
		return fmt.Errorf("marshal task payload: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.SetContext(ctx)
	if err := r.pubsub.Publish(topic, msg); err != nil {
		r.inflight.Delete(key)
		return fmt.Errorf("publish %s task: %w", p.Task, err)
	}

	metrics.TasksEnqueued.WithLabelValues(p.Task).Inc()
	r.logger.Debug().Str("task", p.Task).Int64("user_id", p.UserID).
		Str("source", p.Source).Msg("task enqueued")
	return nil
}

func (r *Runner) handleBuild(msg *message.Message) error {
	var p payload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		return fmt.Errorf("decode build payload: %w", err)
	}
	defer r.inflight.Delete(p.identity())

	source, err := models.ParseSource(p.Source)
	if err != nil {
		return err
	}

	runErr := r.run(p, func(ctx context.Context) error {
		return r.engine.BuildShortTerm(ctx, p.UserID, source)
	})
	if runErr == nil {
		r.scheduleMerge(p.UserID)
	}
	return runErr
}

func (r *Runner) handleMerge(msg *message.Message) error {
	var p payload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		return fmt.Errorf("decode merge payload: %w", err)
	}
	defer r.inflight.Delete(p.identity())

	return r.run(p, func(ctx context.Context) error {
		return r.engine.MergeLongTerm(ctx, p.UserID)
	})
}

// run executes one task under the worker slot limit and timeout, with
// its outcome recorded whether it returns, errors or panics.
func (r *Runner) run(p payload, fn func(context.Context) error) (err error) {
	r.slots <- struct{}{}
	defer func() { <-r.slots }()

	ctx := context.Background()
	if r.cfg.TaskTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.TaskTimeout)
		defer cancel()
	}

	start := time.Now()
	status := "ok"
	defer func() {
		if rec := recover(); rec != nil {
			status = "panic"
			err = fmt.Errorf("task %s panicked: %v", p.Task, rec)
			r.logger.Error().Str("task", p.Task).Int64("user_id", p.UserID).
				Interface("panic", rec).Msg("task panicked")
		}
		metrics.ObserveTask(p.Task, status, time.Since(start))
	}()

	if err = fn(ctx); err != nil {
		status = "error"
		r.logger.Error().Err(err).Str("task", p.Task).
			Int64("user_id", p.UserID).Msg("task failed")
		return err
	}

	r.logger.Info().Str("task", p.Task).Int64("user_id", p.UserID).
		Str("source", p.Source).Dur("elapsed", time.Since(start)).
		Msg("task complete")
	return nil
}

// scheduleMerge enqueues the follow-up merge after the settle delay so
// a burst of builds for one user collapses into a single merge.
func (r *Runner) scheduleMerge(userID int64) {
	if r.mergeDelay <= 0 {
		_ = r.enqueueMergeNow(userID)
		return
	}

	key := fmt.Sprintf("merge-timer|%d", userID)
	r.timersMu.Lock()
	defer r.timersMu.Unlock()
	if r.closed {
		return
	}
	if _, pending := r.timers[key]; pending {
		return
	}
	r.timers[key] = time.AfterFunc(r.mergeDelay, func() {
		r.timersMu.Lock()
		delete(r.timers, key)
		r.timersMu.Unlock()
		_ = r.enqueueMergeNow(userID)
	})
}

func (r *Runner) enqueueMergeNow(userID int64) error {
	err := r.EnqueueMerge(context.Background(), userID)
	if err != nil && !errors.Is(err, ErrAlreadyRunning) {
		r.logger.Error().Err(err).Int64("user_id", userID).
			Msg("scheduled merge enqueue failed")
	}
	return err
}

// Serve runs the task router until ctx is canceled. It implements
// suture.Service.
func (r *Runner) Serve(ctx context.Context) error {
	r.logger.Info().Int("workers", r.cfg.Workers).Msg("task runner starting")
	return r.router.Run(ctx)
}

// Running reports whether the router has started and is accepting
// messages.
func (r *Runner) Running() <-chan struct{} {
	return r.router.Running()
}

// Close stops pending merge timers and shuts the pub/sub down.
func (r *Runner) Close() error {
	r.timersMu.Lock()
	r.closed = true
	for key, timer := range r.timers {
		timer.Stop()
		delete(r.timers, key)
	}
	r.timersMu.Unlock()

	if err := r.router.Close(); err != nil {
		return err
	}
	return r.pubsub.Close()
}

// String implements fmt.Stringer for supervisor logs.
func (r *Runner) String() string { return "task-runner" }
