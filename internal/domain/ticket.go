package domain

import (
	"time"
)

// Ticket represents one support ticket row as served by the analytics API.
// Rows are immutable snapshots: a filter change replaces the whole result
// set, pagination appends to it.
type Ticket struct {
	ID             string    `json:"id"`
	Key            string    `json:"key"`
	Title          string    `json:"title"`
	Status         string    `json:"status"`
	Priority       string    `json:"priority"`
	Project        string    `json:"project"`
	Assignee       string    `json:"assignee"`
	Category       string    `json:"category"`
	CreatedAt      time.Time `json:"created_at"`
	ResponseTime   *float64  `json:"response_time,omitempty"`   // minutes, nil means not yet measured
	ResolutionTime *float64  `json:"resolution_time,omitempty"` // minutes, nil means not yet measured
	Completed      bool      `json:"completed"`
}

// FieldValue returns the ticket's value for a grouping field name.
func (t Ticket) FieldValue(field string) string {
	switch field {
	case GroupFieldProject:
		return t.Project
	case GroupFieldStatus:
		return t.Status
	case GroupFieldPriority:
		return t.Priority
	case GroupFieldAssignee:
		return t.Assignee
	case GroupFieldCategory:
		return t.Category
	}
	return ""
}

// Pagination carries the authoritative totals returned by the data source.
// They are never computed locally.
type Pagination struct {
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// FilterOptions lists the distinct filter values observed server-side, used
// to populate the filter pickers.
type FilterOptions struct {
	Statuses   []string `json:"statuses"`
	Projects   []string `json:"projects"`
	Priorities []string `json:"priorities"`
	Assignees  []string `json:"assignees"`
}
