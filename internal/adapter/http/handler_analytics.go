package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/domain"
	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/export"
	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/logger"
	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/ports"
)

// AnalyticsHandler serves the precomputed analytics documents.
type AnalyticsHandler struct {
	snapshots ports.SnapshotStore
	repo      ports.TicketRepository
	log       logger.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(snapshots ports.SnapshotStore, repo ports.TicketRepository, log logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		snapshots: snapshots,
		repo:      repo,
		log:       log,
	}
}

// RegisterRoutes registers analytics routes
func (h *AnalyticsHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/analytics/heatmap", h.Heatmap).Methods("GET")
	router.HandleFunc("/api/v1/analytics/categories", h.Categories).Methods("GET")
	router.HandleFunc("/api/v1/analytics/sentiment", h.Sentiment).Methods("GET")
}

// Heatmap serves the call-volume heatmap cells.
func (h *AnalyticsHandler) Heatmap(w http.ResponseWriter, r *http.Request) {
	cells, err := h.snapshots.Heatmap(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"cells": cells})
}

// Categories serves the per-category stats. When no snapshot document
// exists, the breakdown is computed live from the ticket data instead.
func (h *AnalyticsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	stats, err := h.snapshots.CategoryStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	if len(stats) == 0 {
		tickets, err := h.repo.FetchAll(r.Context(), domain.DefaultQuery(), export.MaxExportRows)
		if err != nil {
			h.log.Error(r.Context(), "Failed to compute category breakdown", err, nil)
			writeError(w, err)
			return
		}
		stats = domain.CategoryBreakdown(tickets)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": stats})
}

// Sentiment serves the sentiment comparison segments.
func (h *AnalyticsHandler) Sentiment(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.snapshots.SentimentSummary(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"segments": summaries})
}
