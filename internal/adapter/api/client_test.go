package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/domain"
	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/ports"
)

func TestClientFetchPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/tickets", r.URL.Path)
		assert.Equal(t, "Open,Closed", r.URL.Query().Get("status"))
		assert.Equal(t, "network", r.URL.Query().Get("search"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode(ports.TicketPage{
			Tickets:    []domain.Ticket{{ID: "t1", Key: "SERV-1"}},
			Pagination: domain.Pagination{Total: 51, TotalPages: 2},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	query := domain.DefaultQuery()
	query.Search = "network"
	query.Statuses = []string{"Open", "Closed"}

	page, err := client.FetchPage(context.Background(), query, 2, 50)
	require.NoError(t, err)
	require.Len(t, page.Tickets, 1)
	assert.Equal(t, "SERV-1", page.Tickets[0].Key)
	assert.Equal(t, 2, page.Pagination.TotalPages)
}

func TestClientFetchAllPagesThrough(t *testing.T) {
	const total = 1200

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		start := (page - 1) * limit
		var tickets []domain.Ticket
		for i := start; i < start+limit && i < total; i++ {
			tickets = append(tickets, domain.Ticket{ID: strconv.Itoa(i)})
		}
		json.NewEncoder(w).Encode(ports.TicketPage{
			Tickets:    tickets,
			Pagination: domain.Pagination{Total: total, TotalPages: 3},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	tickets, err := client.FetchAll(context.Background(), domain.DefaultQuery(), 1000)
	require.NoError(t, err)
	require.Len(t, tickets, 1000)
	assert.Equal(t, "0", tickets[0].ID)
	assert.Equal(t, "999", tickets[999].ID)
}

func TestClientGroupTree(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/tickets/groups", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []interface{}{"project", "status"}, req["groupByLevels"])
		assert.Equal(t, "Open", req["status"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"groups": []*domain.GroupNode{{Key: "SERV", Count: 4}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	query := domain.DefaultQuery()
	query.Statuses = []string{"Open"}

	groups, err := client.GroupTree(context.Background(), query, []string{"project", "status"})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "SERV", groups[0].Key)
	assert.Equal(t, 4, groups[0].Count)
}

func TestClientSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":"INTERNAL_ERROR"}}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)

	_, err := client.FetchPage(context.Background(), domain.DefaultQuery(), 1, 50)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}
