// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package api

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/openrima/interestd/internal/config"
	"github.com/openrima/interestd/internal/database"
	"github.com/openrima/interestd/internal/extraction"
	"github.com/openrima/interestd/internal/interests"
	"github.com/openrima/interestd/internal/models"
	"github.com/openrima/interestd/internal/similarity"
	"github.com/openrima/interestd/internal/tasks"
)

// Handler bundles the dependencies of the HTTP endpoints.
type Handler struct {
	engine    *interests.Engine
	runner    *tasks.Runner
	db        *database.DB
	cfg       *config.Config
	startedAt time.Time
}

// NewHandler builds the endpoint handler set.
func NewHandler(engine *interests.Engine, runner *tasks.Runner, db *database.DB, cfg *config.Config) *Handler {
	return &Handler{
		engine:    engine,
		runner:    runner,
		db:        db,
		cfg:       cfg,
		startedAt: time.Now(),
	}
}

// HealthLive reports process liveness.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondData(w, http.StatusOK, map[string]interface{}{
		"status": "alive",
		"uptime": time.Since(h.startedAt).String(),
	})
}

// HealthReady reports readiness, including store reachability.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "DATABASE_ERROR",
			"database not reachable", err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{"status": "ready"})
}

// Extract runs keyword extraction over arbitrary text. Public: no user
// state involved.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "malformed request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	algorithm := extraction.AlgorithmYake
	if req.Algorithm != "" {
		algorithm, _ = extraction.ParseAlgorithm(req.Algorithm)
	}

	filter := req.Filter == nil || *req.Filter

	keywords := h.engine.ExtractKeywords(r.Context(), req.Text, algorithm, filter)
	respondData(w, http.StatusOK, map[string]interface{}{
		"algorithm": string(algorithm),
		"filtered":  filter,
		"keywords":  keywords,
	})
}

// Similarity scores two keyword sets. Public.
func (h *Handler) Similarity(w http.ResponseWriter, r *http.Request) {
	var req similarityRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "malformed request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	algorithm := similarity.AlgorithmEmbedding
	if req.Algorithm != "" {
		algorithm, _ = similarity.ParseAlgorithm(req.Algorithm)
	}

	score, err := h.engine.Similarity(r.Context(), req.KeywordsA, req.KeywordsB, algorithm)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "SIMILARITY_ERROR",
			"similarity computation failed", err)
		return
	}
	respondData(w, http.StatusOK, similarityPayload(string(algorithm), score))
}

// similarityPayload renders a score as a percentage rounded to two
// decimals, or "N/A" when it is undefined because one side had no
// keywords.
func similarityPayload(algorithm string, score *float64) map[string]interface{} {
	payload := map[string]interface{}{"algorithm": algorithm}
	if score == nil {
		payload["score"] = "N/A"
	} else {
		payload["score"] = math.Round(*score*10000) / 100
	}
	return payload
}

// AddPost ingests one social content item for a user.
func (h *Handler) AddPost(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid user id", err)
		return
	}

	var req postRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "malformed request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	id, err := h.engine.AddPost(r.Context(), &models.Post{
		UserID:   userID,
		FullText: req.FullText,
		PostedAt: req.PostedAt,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "store post failed", err)
		return
	}
	respondData(w, http.StatusCreated, map[string]interface{}{"id": id})
}

// AddPaper ingests one academic content item for a user.
func (h *Handler) AddPaper(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid user id", err)
		return
	}

	var req paperRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "malformed request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	id, err := h.engine.AddPaper(r.Context(), &models.Paper{
		UserID:   userID,
		Title:    req.Title,
		Abstract: req.Abstract,
		Year:     req.Year,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "store paper failed", err)
		return
	}
	respondData(w, http.StatusCreated, map[string]interface{}{"id": id})
}

// TriggerBuild queues a short-term build for one content stream. A
// duplicate of a queued build is reported as a conflict, not an error
// the client must retry.
func (h *Handler) TriggerBuild(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid user id", err)
		return
	}

	var req buildRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "malformed request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	source, _ := models.ParseSource(req.Source)
	if err := h.runner.EnqueueBuild(r.Context(), userID, source); err != nil {
		if errors.Is(err, tasks.ErrAlreadyRunning) {
			respondError(w, http.StatusConflict, "ALREADY_RUNNING",
				"an identical build is already queued", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "TASK_ERROR", "enqueue build failed", err)
		return
	}
	respondData(w, http.StatusAccepted, map[string]interface{}{
		"task":   tasks.TaskBuild,
		"source": req.Source,
	})
}

// TriggerMerge queues a long-term merge.
func (h *Handler) TriggerMerge(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid user id", err)
		return
	}

	if err := h.runner.EnqueueMerge(r.Context(), userID); err != nil {
		if errors.Is(err, tasks.ErrAlreadyRunning) {
			respondError(w, http.StatusConflict, "ALREADY_RUNNING",
				"a merge is already queued for this user", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "TASK_ERROR", "enqueue merge failed", err)
		return
	}
	respondData(w, http.StatusAccepted, map[string]interface{}{"task": tasks.TaskMerge})
}

// LongTermInterests returns the user's long-term model.
func (h *Handler) LongTermInterests(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid user id", err)
		return
	}

	interests, err := h.engine.LongTermInterests(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "load interests failed", err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{"interests": interests})
}

// TopInterests returns the user's top-K long-term interests under the
// scholar quota. `order=chronological` sorts the selection by creation
// time instead of weight.
func (h *Handler) TopInterests(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid user id", err)
		return
	}

	count, err := intQuery(r, "count", h.cfg.API.DefaultTopCount)
	if err != nil || count <= 0 {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid count parameter", err)
		return
	}
	if count > h.cfg.API.MaxTopCount {
		count = h.cfg.API.MaxTopCount
	}

	order := interests.OrderWeight
	switch r.URL.Query().Get("order") {
	case "", string(interests.OrderWeight):
	case string(interests.OrderChronological):
		order = interests.OrderChronological
	default:
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid order parameter", nil)
		return
	}

	top, err := h.engine.TopInterests(r.Context(), userID, count, order)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "load interests failed", err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"count":     len(top),
		"interests": top,
	})
}

// ShortTermInterests returns short-term rows, optionally filtered by
// source and calendar bucket.
func (h *Handler) ShortTermInterests(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid user id", err)
		return
	}

	filter := database.ShortTermFilter{}
	if raw := r.URL.Query().Get("source"); raw != "" {
		source, err := models.ParseSource(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid source parameter", err)
			return
		}
		filter.Source = source
	}
	if filter.ModelMonth, err = intQuery(r, "month", 0); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid month parameter", err)
		return
	}
	if filter.ModelYear, err = intQuery(r, "year", 0); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid year parameter", err)
		return
	}

	rows, err := h.engine.ShortTermInterests(r.Context(), userID, filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "load interests failed", err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{"interests": rows})
}

// TopShortTerm returns the top keywords of the user's current
// short-term bucket, optionally restricted to one source.
func (h *Handler) TopShortTerm(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid user id", err)
		return
	}

	var source models.Source
	if raw := r.URL.Query().Get("source"); raw != "" {
		source, err = models.ParseSource(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid source parameter", err)
			return
		}
	}
	count, err := intQuery(r, "count", 5)
	if err != nil || count <= 0 {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid count parameter", err)
		return
	}

	order := interests.OrderWeight
	switch r.URL.Query().Get("order") {
	case "", string(interests.OrderWeight):
	case string(interests.OrderChronological):
		order = interests.OrderChronological
	default:
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid order parameter", nil)
		return
	}

	rows, err := h.engine.TopShortTerm(r.Context(), userID, source, count, order, time.Now())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "load interests failed", err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{"interests": rows})
}

// AddManualInterest records a user-entered long-term interest. A zero
// weight defaults to full strength.
func (h *Handler) AddManualInterest(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid user id", err)
		return
	}

	var req manualInterestRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "malformed request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	if req.Weight == 0 {
		req.Weight = 1.0
	}

	interest, err := h.engine.AddManualInterest(r.Context(), userID, req.Keyword, req.Weight)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "store interest failed", err)
		return
	}
	respondData(w, http.StatusCreated, interest)
}

// RemoveInterest deletes a long-term interest and permanently
// blacklists the keyword for the user.
func (h *Handler) RemoveInterest(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid user id", err)
		return
	}
	keyword := chi.URLParam(r, "keyword")
	if keyword == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "keyword required", nil)
		return
	}

	if err := h.engine.RemoveInterest(r.Context(), userID, keyword); err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "remove interest failed", err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"keyword":     keyword,
		"blacklisted": true,
	})
}

// Blacklist returns the user's suppression rules.
func (h *Handler) Blacklist(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid user id", err)
		return
	}

	entries, err := h.engine.Blacklist(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "load blacklist failed", err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{"blacklist": entries})
}

// Unblacklist lifts a suppression rule.
func (h *Handler) Unblacklist(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid user id", err)
		return
	}
	keyword := chi.URLParam(r, "keyword")
	if keyword == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "keyword required", nil)
		return
	}

	if err := h.engine.Unblacklist(r.Context(), userID, keyword); err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "remove rule failed", err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{"keyword": keyword})
}

// Trend returns the interest evolution view for one content stream.
func (h *Handler) Trend(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid user id", err)
		return
	}

	source, err := models.ParseSource(r.URL.Query().Get("source"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid source parameter", err)
		return
	}
	window, err := intQuery(r, "window", 0)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid window parameter", err)
		return
	}

	buckets, err := h.engine.Trend(r.Context(), userID, source, window, time.Now())
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "trend unavailable for source", err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"source":  string(source),
		"buckets": buckets,
	})
}

// Activity returns content counts per time bucket for both streams.
func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid user id", err)
		return
	}

	posts, papers, err := h.engine.ActivityStats(r.Context(), userID, time.Now())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "load activity failed", err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"posts":  posts,
		"papers": papers,
	})
}

// ProfileSimilarity scores two users by their long-term models.
func (h *Handler) ProfileSimilarity(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid user id", err)
		return
	}
	otherRaw := chi.URLParam(r, "otherID")
	otherID, err := strconv.ParseInt(otherRaw, 10, 64)
	if err != nil || otherID <= 0 {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid other user id", err)
		return
	}

	algorithm := similarity.AlgorithmEmbedding
	if raw := r.URL.Query().Get("algorithm"); raw != "" {
		algorithm, err = similarity.ParseAlgorithm(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "invalid algorithm parameter", err)
			return
		}
	}

	score, err := h.engine.ProfileSimilarity(r.Context(), userID, otherID, algorithm)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "SIMILARITY_ERROR",
			"similarity computation failed", err)
		return
	}
	respondData(w, http.StatusOK, similarityPayload(string(algorithm), score))
}
