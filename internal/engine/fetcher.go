package engine

import (
	"context"
	"sync"

	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/domain"
	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/ports"
)

// DefaultPageSize is the fixed page size the listing loads per scroll step.
const DefaultPageSize = 50

// loadThreshold is how far through the scrollable height the user must be
// before the next page is requested.
const loadThreshold = 0.8

// PageFetcher drives incremental retrieval of flat ticket rows: page 1
// replaces the result set on every effective-query change, later pages append
// in order. A request generation counter makes sure a response issued under a
// superseded query is discarded instead of overwriting fresher results.
type PageFetcher struct {
	mu    sync.Mutex
	repo  ports.TicketRepository
	limit int

	query      domain.TicketQuery
	tickets    []domain.Ticket
	page       int
	pagination domain.Pagination
	options    domain.FilterOptions
	hasMore    bool
	loading    bool
	failed     bool
	gen        uint64
}

// NewPageFetcher creates a fetcher over the given repository. A non-positive
// limit falls back to the default page size.
func NewPageFetcher(repo ports.TicketRepository, limit int) *PageFetcher {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return &PageFetcher{repo: repo, limit: limit}
}

// Reset discards the accumulated rows and loads page 1 for a new effective
// query. An in-flight fetch for the previous query is superseded: its
// response will be dropped when it lands.
func (f *PageFetcher) Reset(ctx context.Context, query domain.TicketQuery) error {
	f.mu.Lock()
	f.gen++
	gen := f.gen
	f.query = query.Clone()
	f.tickets = nil
	f.page = 0
	f.pagination = domain.Pagination{}
	f.hasMore = true
	f.failed = false
	f.loading = true
	f.mu.Unlock()

	result, err := f.repo.FetchPage(ctx, query, 1, f.limit)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		// A newer query started while this fetch was in flight.
		return nil
	}
	f.loading = false
	if err != nil {
		f.tickets = nil
		f.failed = true
		f.hasMore = false
		return err
	}
	f.tickets = result.Tickets
	f.page = 1
	f.pagination = result.Pagination
	f.options = result.FilterOptions
	f.hasMore = f.page < result.Pagination.TotalPages
	return nil
}

// LoadMore fetches the next page and appends it, preserving the order of the
// rows already loaded. It is a no-op while a fetch is in flight or when no
// further pages exist, so one scroll gesture advances at most one page per
// completed fetch. A failed append leaves the loaded rows intact and does not
// advance the cursor; re-triggering the same scroll condition retries it.
func (f *PageFetcher) LoadMore(ctx context.Context) error {
	f.mu.Lock()
	if f.loading || !f.hasMore || f.page == 0 {
		f.mu.Unlock()
		return nil
	}
	f.loading = true
	gen := f.gen
	next := f.page + 1
	query := f.query.Clone()
	f.mu.Unlock()

	result, err := f.repo.FetchPage(ctx, query, next, f.limit)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		// Superseded by a query change; drop the stale page.
		return nil
	}
	f.loading = false
	if err != nil {
		return err
	}
	if next != f.page+1 {
		// Out-of-order page; the displayed order must stay 1..N with no
		// gaps or duplicates.
		return nil
	}
	f.tickets = append(f.tickets, result.Tickets...)
	f.page = next
	f.pagination = result.Pagination
	f.options = result.FilterOptions
	f.hasMore = f.page < result.Pagination.TotalPages
	return nil
}

// Tickets returns a copy of the accumulated rows.
func (f *PageFetcher) Tickets() []domain.Ticket {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Ticket(nil), f.tickets...)
}

// Query returns the query the loaded rows belong to.
func (f *PageFetcher) Query() domain.TicketQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.query.Clone()
}

// Page returns the last page applied, 0 before the first successful load.
func (f *PageFetcher) Page() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.page
}

// Pagination returns the authoritative totals from the last response.
func (f *PageFetcher) Pagination() domain.Pagination {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pagination
}

// Options returns the filter option values from the last response.
func (f *PageFetcher) Options() domain.FilterOptions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.options
}

// HasMore reports whether pages beyond the current one exist.
func (f *PageFetcher) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasMore
}

// Loading reports whether a fetch is in flight.
func (f *PageFetcher) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// Failed reports whether the initial fetch for the current query failed.
func (f *PageFetcher) Failed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failed
}

// PastLoadThreshold reports whether a scroll position has crossed the point
// where the next page should load: past 80% of the scrollable height.
func PastLoadThreshold(scrollTop, viewportHeight, contentHeight float64) bool {
	if contentHeight <= 0 {
		return false
	}
	return scrollTop+viewportHeight >= contentHeight*loadThreshold
}
