package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/domain"
	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/ports"
)

// fakeRepo serves deterministic pages out of a fixed ticket slice and lets
// tests fail specific pages or hook into a fetch mid-flight.
type fakeRepo struct {
	tickets    []domain.Ticket
	failPages  map[int]bool
	fetchCalls int
	groupCalls int
	groups     []*domain.GroupNode
	groupErr   error
	onFetch    func(page int)
}

func newFakeRepo(total int) *fakeRepo {
	tickets := make([]domain.Ticket, total)
	for i := range tickets {
		tickets[i] = domain.Ticket{
			ID:     fmt.Sprintf("id-%d", i+1),
			Key:    fmt.Sprintf("SERV-%d", i+1),
			Status: "Open",
		}
	}
	return &fakeRepo{tickets: tickets, failPages: map[int]bool{}}
}

func (r *fakeRepo) FetchPage(ctx context.Context, query domain.TicketQuery, page, limit int) (*ports.TicketPage, error) {
	r.fetchCalls++
	if r.onFetch != nil {
		r.onFetch(page)
	}
	if r.failPages[page] {
		return nil, errors.New("boom")
	}

	matching := r.matching(query)
	start := (page - 1) * limit
	end := start + limit
	if start > len(matching) {
		start = len(matching)
	}
	if end > len(matching) {
		end = len(matching)
	}
	totalPages := len(matching) / limit
	if len(matching)%limit != 0 {
		totalPages++
	}
	return &ports.TicketPage{
		Tickets:    append([]domain.Ticket(nil), matching[start:end]...),
		Pagination: domain.Pagination{Total: len(matching), TotalPages: totalPages},
		FilterOptions: domain.FilterOptions{
			Statuses: []string{"Open", "Closed"},
		},
	}, nil
}

func (r *fakeRepo) matching(query domain.TicketQuery) []domain.Ticket {
	if len(query.Statuses) == 0 {
		return r.tickets
	}
	allowed := map[string]bool{}
	for _, s := range query.Statuses {
		allowed[s] = true
	}
	var out []domain.Ticket
	for _, t := range r.tickets {
		if allowed[t.Status] {
			out = append(out, t)
		}
	}
	return out
}

func (r *fakeRepo) FetchAll(ctx context.Context, query domain.TicketQuery, max int) ([]domain.Ticket, error) {
	matching := r.matching(query)
	if len(matching) > max {
		matching = matching[:max]
	}
	return append([]domain.Ticket(nil), matching...), nil
}

func (r *fakeRepo) GroupTree(ctx context.Context, query domain.TicketQuery, levels []string) ([]*domain.GroupNode, error) {
	r.groupCalls++
	if r.groupErr != nil {
		return nil, r.groupErr
	}
	return r.groups, nil
}

func TestPageFetcherResetReplacesResultSet(t *testing.T) {
	repo := newFakeRepo(120)
	fetcher := NewPageFetcher(repo, 50)

	require.NoError(t, fetcher.Reset(context.Background(), domain.DefaultQuery()))
	assert.Len(t, fetcher.Tickets(), 50)
	assert.Equal(t, 1, fetcher.Page())
	assert.Equal(t, 120, fetcher.Pagination().Total)
	assert.True(t, fetcher.HasMore())

	// a second reset replaces, never appends
	require.NoError(t, fetcher.Reset(context.Background(), domain.DefaultQuery()))
	assert.Len(t, fetcher.Tickets(), 50)
	assert.Equal(t, 1, fetcher.Page())
}

func TestPageFetcherLoadMoreAppendsInOrder(t *testing.T) {
	repo := newFakeRepo(120)
	fetcher := NewPageFetcher(repo, 50)

	require.NoError(t, fetcher.Reset(context.Background(), domain.DefaultQuery()))
	require.NoError(t, fetcher.LoadMore(context.Background()))
	require.NoError(t, fetcher.LoadMore(context.Background()))

	tickets := fetcher.Tickets()
	require.Len(t, tickets, 120)

	seen := map[string]bool{}
	for i, ticket := range tickets {
		assert.Equal(t, fmt.Sprintf("id-%d", i+1), ticket.ID, "source order must be preserved")
		assert.False(t, seen[ticket.ID], "no duplicate ids")
		seen[ticket.ID] = true
	}

	assert.Equal(t, 3, fetcher.Page())
	assert.False(t, fetcher.HasMore(), "hasMore turns false once page == totalPages")

	// further LoadMore calls are no-ops
	calls := repo.fetchCalls
	require.NoError(t, fetcher.LoadMore(context.Background()))
	assert.Equal(t, calls, repo.fetchCalls)
}

func TestPageFetcherFilterScenario(t *testing.T) {
	repo := newFakeRepo(100)
	for i := range repo.tickets {
		if i%2 == 1 {
			repo.tickets[i].Status = "Closed"
		}
	}

	query := domain.DefaultQuery()
	query.Statuses = []string{"Open"}

	fetcher := NewPageFetcher(repo, 50)
	require.NoError(t, fetcher.Reset(context.Background(), query))

	tickets := fetcher.Tickets()
	require.Len(t, tickets, 50)
	for _, ticket := range tickets {
		assert.Equal(t, "Open", ticket.Status)
	}
	assert.False(t, fetcher.HasMore(), "50 matches at limit 50 is a single page")
}

func TestPageFetcherInitialFailure(t *testing.T) {
	repo := newFakeRepo(10)
	repo.failPages[1] = true

	fetcher := NewPageFetcher(repo, 50)
	err := fetcher.Reset(context.Background(), domain.DefaultQuery())

	require.Error(t, err)
	assert.Empty(t, fetcher.Tickets())
	assert.True(t, fetcher.Failed())
	assert.False(t, fetcher.HasMore())
}

func TestPageFetcherAppendFailureKeepsResults(t *testing.T) {
	repo := newFakeRepo(120)
	fetcher := NewPageFetcher(repo, 50)
	require.NoError(t, fetcher.Reset(context.Background(), domain.DefaultQuery()))

	repo.failPages[2] = true
	err := fetcher.LoadMore(context.Background())

	require.Error(t, err)
	assert.Len(t, fetcher.Tickets(), 50, "loaded rows stay intact")
	assert.Equal(t, 1, fetcher.Page(), "cursor does not advance")
	assert.False(t, fetcher.Failed())

	// the same scroll condition retries the append
	delete(repo.failPages, 2)
	require.NoError(t, fetcher.LoadMore(context.Background()))
	assert.Len(t, fetcher.Tickets(), 100)
	assert.Equal(t, 2, fetcher.Page())
}

func TestPageFetcherDiscardsStaleAppend(t *testing.T) {
	repo := newFakeRepo(120)
	fetcher := NewPageFetcher(repo, 50)
	require.NoError(t, fetcher.Reset(context.Background(), domain.DefaultQuery()))

	// While the page-2 append is in flight, a new query resets the fetcher.
	// The append response that lands afterwards must be dropped.
	newQuery := domain.DefaultQuery()
	newQuery.Search = "escrow"
	repo.onFetch = func(page int) {
		if page == 2 {
			repo.onFetch = nil
			require.NoError(t, fetcher.Reset(context.Background(), newQuery))
		}
	}

	require.NoError(t, fetcher.LoadMore(context.Background()))

	assert.Len(t, fetcher.Tickets(), 50, "stale page-2 rows must not append onto the new query's results")
	assert.Equal(t, 1, fetcher.Page())
	assert.Equal(t, "escrow", fetcher.Query().Search)
}

func TestPastLoadThreshold(t *testing.T) {
	assert.False(t, PastLoadThreshold(0, 400, 2000))
	assert.False(t, PastLoadThreshold(1100, 400, 2000))
	assert.True(t, PastLoadThreshold(1200, 400, 2000))
	assert.True(t, PastLoadThreshold(1600, 400, 2000))
	assert.False(t, PastLoadThreshold(10, 10, 0), "empty content never triggers a load")
}
