package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/domain"
	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/ports"
)

// Client implements ports.TicketRepository against a remote analytics API,
// so the listing engine can run over the network exactly as the dashboard
// does. Non-2xx responses and parse failures surface as errors; the engine
// degrades per its usual rules.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given base URL, e.g.
// "http://localhost:8080".
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchPage requests one page of tickets.
func (c *Client) FetchPage(ctx context.Context, query domain.TicketQuery, page, limit int) (*ports.TicketPage, error) {
	params := queryParams(query)
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))

	var result ports.TicketPage
	if err := c.get(ctx, "/api/v1/tickets?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FetchAll pages through the listing until max rows are collected or the
// source runs out, preserving source order.
func (c *Client) FetchAll(ctx context.Context, query domain.TicketQuery, max int) ([]domain.Ticket, error) {
	const pageSize = 500

	var tickets []domain.Ticket
	for page := 1; len(tickets) < max; page++ {
		result, err := c.FetchPage(ctx, query, page, pageSize)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, result.Tickets...)
		if page >= result.Pagination.TotalPages {
			break
		}
	}
	if len(tickets) > max {
		tickets = tickets[:max]
	}
	return tickets, nil
}

// GroupTree requests the full group-by tree.
func (c *Client) GroupTree(ctx context.Context, query domain.TicketQuery, levels []string) ([]*domain.GroupNode, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"groupByLevels": levels,
		"search":        query.Search,
		"status":        strings.Join(query.Statuses, ","),
		"project":       strings.Join(query.Projects, ","),
		"priority":      strings.Join(query.Priorities, ","),
		"assignee":      strings.Join(query.Assignees, ","),
		"category":      query.Category,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode group request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/tickets/groups", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var result struct {
		Groups []*domain.GroupNode `json:"groups"`
	}
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return result.Groups, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", req.URL.Path, err)
	}
	return nil
}

// queryParams renders the shared filter fields as comma-joined URL values.
func queryParams(query domain.TicketQuery) url.Values {
	params := url.Values{}
	if query.Search != "" {
		params.Set("search", query.Search)
	}
	if len(query.Statuses) > 0 {
		params.Set("status", strings.Join(query.Statuses, ","))
	}
	if len(query.Projects) > 0 {
		params.Set("project", strings.Join(query.Projects, ","))
	}
	if len(query.Priorities) > 0 {
		params.Set("priority", strings.Join(query.Priorities, ","))
	}
	if len(query.Assignees) > 0 {
		params.Set("assignee", strings.Join(query.Assignees, ","))
	}
	if query.Category != "" {
		params.Set("category", query.Category)
	}
	if query.SortField != "" {
		params.Set("sortField", string(query.SortField))
	}
	if query.SortOrder != "" {
		params.Set("sortOrder", string(query.SortOrder))
	}
	return params
}
