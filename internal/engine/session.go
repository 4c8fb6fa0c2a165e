package engine

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/domain"
	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/export"
	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/ports"
)

// View is which representation of the ticket data a session is showing.
type View string

const (
	ViewList   View = "list"
	ViewGroups View = "groups"
)

// Session wires the three cooperating parts of the listing engine together:
// the filter state feeds both the page fetcher and the group aggregator, and
// the aggregator's leaf click feeds a new filter back. Nothing else crosses
// component boundaries.
type Session struct {
	Filters *FilterState
	List    *PageFetcher
	Groups  *GroupAggregator

	mu   sync.Mutex
	repo ports.TicketRepository
	view View
	now  func() time.Time
}

// SessionConfig tunes a session. Zero values fall back to defaults.
type SessionConfig struct {
	PageSize       int
	SearchDebounce time.Duration
}

// NewSession creates a session over the repository. Every effective-query
// change resets the listing to page 1 and rebuilds the group tree; fetch
// errors along that path degrade to an empty or stale-but-valid state and
// are surfaced through the component flags, never fatal.
func NewSession(ctx context.Context, repo ports.TicketRepository, cfg SessionConfig) *Session {
	s := &Session{
		repo: repo,
		view: ViewList,
		now:  time.Now,
	}
	s.List = NewPageFetcher(repo, cfg.PageSize)
	s.Groups = NewGroupAggregator(repo)
	s.Filters = NewFilterState(cfg.SearchDebounce, func(query domain.TicketQuery) {
		_ = s.List.Reset(ctx, query)
		_ = s.Groups.Refresh(ctx, query)
	})
	return s
}

// View returns the active representation.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetView switches between the flat list and the grouped tree.
func (s *Session) SetView(v View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
}

// SelectLeaf applies a leaf node's accumulated field values as the new
// filter and switches to the flat list at page 1. This is the aggregator's
// single interaction point with the filter state and fetch controller.
func (s *Session) SelectLeaf(node *domain.GroupNode) {
	filtered := LeafFilter(s.Filters.Effective(), node)
	s.Filters.Update(func(q *domain.TicketQuery) {
		*q = filtered
	})
	s.SetView(ViewList)
}

// ExportList re-fetches up to the export bound under the current effective
// query and renders the CSV blob plus its filename.
func (s *Session) ExportList(ctx context.Context) ([]byte, string, error) {
	tickets, err := s.repo.FetchAll(ctx, s.Filters.Effective(), export.MaxExportRows)
	if err != nil {
		return nil, "", err
	}
	rows := make([][]string, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, export.TicketRow(t))
	}
	return export.Build(export.TicketHeader(), rows), export.ListFilename(s.now()), nil
}

// ExportGroups flattens the stored tree pre-order and renders the CSV blob
// plus its filename.
func (s *Session) ExportGroups() ([]byte, string, error) {
	levels := s.Groups.Levels()
	rows := Flatten(levels, s.Groups.Groups())
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, GroupCSVRow(row))
	}
	return export.Build(export.GroupHeader(levels), records), export.GroupFilename(levels, s.now()), nil
}

// GroupCSVRow renders one flattened export row as CSV cells.
func GroupCSVRow(row ExportRow) []string {
	cells := append([]string(nil), row.LevelValues...)
	return append(cells,
		strconv.Itoa(row.Count),
		strconv.Itoa(row.Completed),
		export.Number(row.CompletionRate),
		export.Number(row.AvgResolutionHours),
	)
}
