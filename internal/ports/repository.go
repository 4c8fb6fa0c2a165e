package ports

import (
	"context"
	"time"

	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/domain"
)

// TicketPage is one page of tickets plus the authoritative pagination totals
// and the filter option values observed server-side.
type TicketPage struct {
	Tickets       []domain.Ticket      `json:"tickets"`
	Pagination    domain.Pagination    `json:"pagination"`
	FilterOptions domain.FilterOptions `json:"filterOptions"`
}

// TicketRepository is the data source behind the listing and aggregation
// engine. Implementations must return pages whose relative order is stable
// across consecutive page numbers so appended pages concatenate cleanly.
type TicketRepository interface {
	// FetchPage returns one page of tickets matching the query. Pages are
	// 1-based.
	FetchPage(ctx context.Context, query domain.TicketQuery, page, limit int) (*TicketPage, error)

	// FetchAll returns up to max tickets matching the query, independent of
	// any page window. Used by the flat CSV export.
	FetchAll(ctx context.Context, query domain.TicketQuery, max int) ([]domain.Ticket, error)

	// GroupTree returns the full n-level group-by tree over the query's
	// filter predicate. Sort fields on the query are ignored.
	GroupTree(ctx context.Context, query domain.TicketQuery, levels []string) ([]*domain.GroupNode, error)
}

// SnapshotStore reads the precomputed analytics documents.
type SnapshotStore interface {
	Heatmap(ctx context.Context) ([]domain.HeatmapCell, error)
	CategoryStats(ctx context.Context) ([]domain.CategoryStat, error)
	SentimentSummary(ctx context.Context) ([]domain.SentimentSummary, error)
}

// Cache is a byte-blob cache with TTL used for group trees. A miss is
// reported through the bool, not an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
