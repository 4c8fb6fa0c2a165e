package http

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/domain"
	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/engine"
	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/export"
	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/logger"
	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/ports"
	"github.com/mhansen003/servicing-ticket-analysis-sub001/pkg/apperror"
)

// TicketHandler serves the listing, aggregation and export endpoints.
type TicketHandler struct {
	repo            ports.TicketRepository
	cache           ports.Cache
	cacheTTL        time.Duration
	defaultPageSize int
	maxPageSize     int
	log             logger.Logger
	now             func() time.Time
}

// NewTicketHandler creates a new ticket handler
func NewTicketHandler(repo ports.TicketRepository, cache ports.Cache, cacheTTL time.Duration, defaultPageSize, maxPageSize int, log logger.Logger) *TicketHandler {
	if defaultPageSize <= 0 {
		defaultPageSize = engine.DefaultPageSize
	}
	if maxPageSize <= 0 {
		maxPageSize = 500
	}
	return &TicketHandler{
		repo:            repo,
		cache:           cache,
		cacheTTL:        cacheTTL,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		log:             log,
		now:             time.Now,
	}
}

// RegisterRoutes registers ticket routes
func (h *TicketHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/tickets", h.ListTickets).Methods("GET")
	router.HandleFunc("/api/v1/tickets/groups", h.GroupTickets).Methods("POST")
	router.HandleFunc("/api/v1/tickets/export", h.ExportTickets).Methods("GET")
	router.HandleFunc("/api/v1/tickets/groups/export", h.ExportGroups).Methods("GET")
}

// ListTickets handles the ticket page query: one page of rows plus the
// authoritative pagination totals and the filter option values.
func (h *TicketHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	query := queryFromParams(r)

	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if parsed, err := strconv.Atoi(pageStr); err == nil && parsed > 0 {
			page = parsed
		}
	}

	limit := h.defaultPageSize
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > h.maxPageSize {
		limit = h.maxPageSize
	}

	result, err := h.repo.FetchPage(r.Context(), query, page, limit)
	if err != nil {
		h.log.Error(r.Context(), "Failed to fetch ticket page", err, map[string]interface{}{
			"page":  page,
			"limit": limit,
		})
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// groupRequest mirrors the group aggregation query: the ordered grouping
// levels plus the same comma-joined filter fields as the listing.
type groupRequest struct {
	GroupByLevels []string `json:"groupByLevels"`
	Search        string   `json:"search"`
	Status        string   `json:"status"`
	Project       string   `json:"project"`
	Priority      string   `json:"priority"`
	Assignee      string   `json:"assignee"`
	Category      string   `json:"category"`
}

// GroupTickets handles the group aggregation query and returns the full
// recursive tree.
func (h *TicketHandler) GroupTickets(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.NewBadRequest("Invalid request body"))
		return
	}

	if err := domain.ValidateGroupLevels(req.GroupByLevels); err != nil {
		writeError(w, err)
		return
	}

	query := domain.TicketQuery{
		Search:     req.Search,
		Statuses:   parseList(req.Status),
		Projects:   parseList(req.Project),
		Priorities: parseList(req.Priority),
		Assignees:  parseList(req.Assignee),
		Category:   req.Category,
	}

	cacheKey := h.groupCacheKey(req)
	if cached, ok := h.cachedGroups(r, cacheKey); ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{"groups": cached})
		return
	}

	groups, err := h.repo.GroupTree(r.Context(), query, req.GroupByLevels)
	if err != nil {
		h.log.Error(r.Context(), "Failed to build group tree", err, map[string]interface{}{
			"levels": req.GroupByLevels,
		})
		writeError(w, err)
		return
	}

	h.storeGroups(r, cacheKey, groups)
	writeJSON(w, http.StatusOK, map[string]interface{}{"groups": groups})
}

// ExportTickets streams the flat-list CSV: up to the export bound of rows
// matching the current filter, independent of any page window.
func (h *TicketHandler) ExportTickets(w http.ResponseWriter, r *http.Request) {
	query := queryFromParams(r)

	tickets, err := h.repo.FetchAll(r.Context(), query, export.MaxExportRows)
	if err != nil {
		h.log.Error(r.Context(), "Failed to export tickets", err, nil)
		writeError(w, err)
		return
	}

	rows := make([][]string, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, export.TicketRow(t))
	}

	writeCSV(w, export.ListFilename(h.now()), export.Build(export.TicketHeader(), rows))
}

// ExportGroups streams the grouped CSV: the tree flattened pre-order, one
// row per node with one column per grouping level.
func (h *TicketHandler) ExportGroups(w http.ResponseWriter, r *http.Request) {
	levels := parseList(r.URL.Query().Get("levels"))
	if err := domain.ValidateGroupLevels(levels); err != nil {
		writeError(w, err)
		return
	}

	query := queryFromParams(r)

	groups, err := h.repo.GroupTree(r.Context(), query, levels)
	if err != nil {
		h.log.Error(r.Context(), "Failed to export group tree", err, map[string]interface{}{
			"levels": levels,
		})
		writeError(w, err)
		return
	}

	flat := engine.Flatten(levels, groups)
	rows := make([][]string, 0, len(flat))
	for _, row := range flat {
		rows = append(rows, engine.GroupCSVRow(row))
	}

	writeCSV(w, export.GroupFilename(levels, h.now()), export.Build(export.GroupHeader(levels), rows))
}

func (h *TicketHandler) groupCacheKey(req groupRequest) string {
	payload, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(payload)
	return "groups:" + hex.EncodeToString(sum[:])
}

func (h *TicketHandler) cachedGroups(r *http.Request, key string) ([]*domain.GroupNode, bool) {
	if h.cache == nil || key == "" {
		return nil, false
	}
	data, ok, err := h.cache.Get(r.Context(), key)
	if err != nil || !ok {
		return nil, false
	}
	var groups []*domain.GroupNode
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, false
	}
	return groups, true
}

func (h *TicketHandler) storeGroups(r *http.Request, key string, groups []*domain.GroupNode) {
	if h.cache == nil || key == "" {
		return
	}
	data, err := json.Marshal(groups)
	if err != nil {
		return
	}
	if err := h.cache.Set(r.Context(), key, data, h.cacheTTL); err != nil {
		h.log.Warn(r.Context(), "Failed to cache group tree", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// queryFromParams parses the shared filter fields from URL parameters.
// Malformed values degrade to "no filter".
func queryFromParams(r *http.Request) domain.TicketQuery {
	params := r.URL.Query()

	query := domain.DefaultQuery()
	query.Search = params.Get("search")
	query.Statuses = parseList(params.Get("status"))
	query.Projects = parseList(params.Get("project"))
	query.Priorities = parseList(params.Get("priority"))
	query.Assignees = parseList(params.Get("assignee"))
	query.Category = params.Get("category")

	if field := domain.SortField(params.Get("sortField")); domain.ValidSortField(field) {
		query.SortField = field
	}
	if order := domain.SortOrder(params.Get("sortOrder")); order == domain.SortAsc || order == domain.SortDesc {
		query.SortOrder = order
	}
	return query
}

// parseList splits a comma-joined value list; empty means "no filter".
func parseList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func writeCSV(w http.ResponseWriter, filename string, blob []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(blob)
}
