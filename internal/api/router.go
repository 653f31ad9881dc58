// Interestd - Interest Modeling and Profile Analytics
// Copyright 2026 OpenRIMA contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/openrima/interestd

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openrima/interestd/internal/config"
)

// NewRouter assembles the HTTP surface: middleware stack, health and
// metrics endpoints, the public extraction/similarity endpoints and
// the per-user interest API.
func NewRouter(h *Handler, cfg *config.APIConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(AccessLog())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         86400,
	}))

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimitReqs > 0 {
			window := cfg.RateLimitWindow
			if window <= 0 {
				window = time.Minute
			}
			r.Use(httprate.Limit(cfg.RateLimitReqs, window,
				httprate.WithKeyFuncs(httprate.KeyByIP)))
		}
		r.Use(PrometheusMetrics())

		// Public analysis endpoints: no user state.
		r.Post("/extract", h.Extract)
		r.Post("/similarity", h.Similarity)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Post("/posts", h.AddPost)
			r.Post("/papers", h.AddPaper)

			r.Post("/build", h.TriggerBuild)
			r.Post("/merge", h.TriggerMerge)

			r.Get("/interests", h.LongTermInterests)
			r.Post("/interests", h.AddManualInterest)
			r.Delete("/interests/{keyword}", h.RemoveInterest)
			r.Get("/interests/top", h.TopInterests)
			r.Get("/interests/short-term", h.ShortTermInterests)
			r.Get("/interests/short-term/top", h.TopShortTerm)

			r.Get("/trend", h.Trend)
			r.Get("/activity", h.Activity)

			r.Get("/blacklist", h.Blacklist)
			r.Delete("/blacklist/{keyword}", h.Unblacklist)

			r.Get("/similarity/{otherID}", h.ProfileSimilarity)
		})
	})

	return r
}
