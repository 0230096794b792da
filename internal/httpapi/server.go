// Copyright (c) 2026 SkillGuard Authors. All rights reserved.
// SPDX-License-Identifier: MIT

// Package httpapi exposes the scan pipeline over HTTP: start a scan, poll
// an attempt, health and metrics. The handlers are glue over the pipeline
// and the attempt store; no scan logic lives here.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ChrysKoum/skillguard-directory/internal/fetch"
	"github.com/ChrysKoum/skillguard-directory/internal/pipeline"
	"github.com/ChrysKoum/skillguard-directory/internal/store"
	"github.com/ChrysKoum/skillguard-directory/pkg/types"
)

// cacheWindow is how long a completed scan satisfies a non-forced rescan.
const cacheWindow = 24 * time.Hour

// AttemptStore is the persistence surface the server needs. Both the
// Postgres and the in-memory store satisfy it.
type AttemptStore interface {
	CreateAttempt(ctx context.Context, slug, sourceURL string) (string, error)
	RecordStage(ctx context.Context, attemptID string, status types.Status, progress types.Progress) error
	SaveReport(ctx context.Context, attemptID string, status types.Status, report any) error
	MarkError(ctx context.Context, attemptID, message string) error
	GetAttempt(ctx context.Context, attemptID string) (*store.Attempt, error)
	RecentCompleted(ctx context.Context, slug string, maxAge time.Duration) (*store.Attempt, error)
}

// Server wires the pipeline and store into HTTP handlers.
type Server struct {
	pipeline    *pipeline.Pipeline
	store       AttemptStore
	metrics     *Metrics
	log         *zap.Logger
	router      *mux.Router
	scanTimeout time.Duration
}

// Config configures the server.
type Config struct {
	Pipeline    *pipeline.Pipeline
	Store       AttemptStore
	Registry    *prometheus.Registry // Defaults to a fresh registry
	Logger      *zap.Logger
	ScanTimeout time.Duration // Per-attempt deadline (default 10m)
}

// NewServer builds the router.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	timeout := cfg.ScanTimeout
	if timeout == 0 {
		timeout = 10 * time.Minute
	}

	s := &Server{
		pipeline:    cfg.Pipeline,
		store:       cfg.Store,
		metrics:     NewMetrics(registry),
		log:         logger,
		scanTimeout: timeout,
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/scan", s.handleStartScan).Methods(http.MethodPost)
	r.HandleFunc("/api/scan/{id}", s.handleGetScan).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	s.router = r

	return s
}

// Handler returns the HTTP handler for mounting.
func (s *Server) Handler() http.Handler { return s.router }

type scanRequest struct {
	URL         string `json:"url"`
	ForceRescan bool   `json:"force_rescan"`
}

type scanResponse struct {
	AttemptID string `json:"attempt_id"`
	Slug      string `json:"slug"`
	Cached    bool   `json:"cached"`
}

// handleStartScan validates the URL, applies the 24h cache policy, then
// launches the pipeline in the background. Clients poll GET /api/scan/{id}.
func (s *Server) handleStartScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ref, err := fetch.ParseRepoURL(req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	slug := ref.Slug()

	if !req.ForceRescan {
		if recent, err := s.store.RecentCompleted(r.Context(), slug, cacheWindow); err == nil {
			writeJSON(w, http.StatusOK, scanResponse{AttemptID: recent.ID, Slug: slug, Cached: true})
			return
		}
	}

	attemptID, err := s.store.CreateAttempt(r.Context(), slug, req.URL)
	if err != nil {
		s.log.Error("creating attempt", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not create scan attempt")
		return
	}

	s.metrics.ScansStarted.Inc()
	go s.runScan(attemptID, req.URL)

	writeJSON(w, http.StatusAccepted, scanResponse{AttemptID: attemptID, Slug: slug, Cached: false})
}

// runScan executes one attempt detached from the request, bounded by the
// configured scan timeout.
func (s *Server) runScan(attemptID, url string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.scanTimeout)
	defer cancel()
	started := time.Now()

	// Terminal writes go through a context that survives the scan
	// timeout: a timed-out attempt must still land in a terminal state
	// that pollers can observe.
	persistCtx := context.WithoutCancel(ctx)

	report, err := s.pipeline.Run(ctx, attemptID, url, nil)
	if err != nil {
		s.log.Error("scan failed", zap.String("attempt", attemptID), zap.Error(err))
		if merr := s.store.MarkError(persistCtx, attemptID, err.Error()); merr != nil {
			s.log.Warn("marking attempt failed", zap.String("attempt", attemptID), zap.Error(merr))
		}
		s.metrics.ScansFinished.WithLabelValues(string(types.StatusError)).Inc()
		return
	}

	if err := s.store.SaveReport(persistCtx, attemptID, report.Status, report); err != nil {
		// The computed report stays valid; surface the persistence failure.
		s.log.Error("saving report", zap.String("attempt", attemptID), zap.Error(err))
	}
	s.metrics.ScansFinished.WithLabelValues(string(report.Status)).Inc()
	s.metrics.ScanDuration.Observe(time.Since(started).Seconds())
}

type attemptResponse struct {
	AttemptID string          `json:"attempt_id"`
	Slug      string          `json:"slug"`
	Status    types.Status    `json:"status"`
	Stage     string          `json:"stage,omitempty"`
	Message   string          `json:"message,omitempty"`
	Findings  int             `json:"findings"`
	Report    json.RawMessage `json:"report,omitempty"`
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	attempt, err := s.store.GetAttempt(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "unknown scan attempt")
			return
		}
		s.log.Error("loading attempt", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load scan attempt")
		return
	}

	resp := attemptResponse{
		AttemptID: attempt.ID,
		Slug:      attempt.Slug,
		Status:    attempt.Status,
		Stage:     attempt.Stage,
		Message:   attempt.Message,
		Findings:  attempt.Findings,
	}
	if len(attempt.ReportJSON) > 0 && string(attempt.ReportJSON) != "null" {
		resp.Report = attempt.ReportJSON
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}
