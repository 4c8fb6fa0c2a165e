package domain

// SortField enumerates the ticket columns a listing can be ordered by.
type SortField string

const (
	SortByCreated        SortField = "created"
	SortByKey            SortField = "key"
	SortByTitle          SortField = "title"
	SortByStatus         SortField = "status"
	SortByPriority       SortField = "priority"
	SortByProject        SortField = "project"
	SortByAssignee       SortField = "assignee"
	SortByResponseTime   SortField = "responseTime"
	SortByResolutionTime SortField = "resolutionTime"
)

// SortOrder represents the direction of a sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ValidSortField reports whether f names a sortable ticket column.
func ValidSortField(f SortField) bool {
	switch f {
	case SortByCreated, SortByKey, SortByTitle, SortByStatus, SortByPriority,
		SortByProject, SortByAssignee, SortByResponseTime, SortByResolutionTime:
		return true
	}
	return false
}

// TicketQuery is the filter/sort state a listing or aggregation runs under.
// It is a value object: mutator helpers return copies and the engine swaps
// whole queries, never patches shared state.
type TicketQuery struct {
	Search     string    `json:"search"`
	Statuses   []string  `json:"status"`
	Projects   []string  `json:"project"`
	Priorities []string  `json:"priority"`
	Assignees  []string  `json:"assignee"`
	Category   string    `json:"category"`
	SortField  SortField `json:"sortField"`
	SortOrder  SortOrder `json:"sortOrder"`
}

// DefaultQuery returns the query a fresh dashboard session starts with.
func DefaultQuery() TicketQuery {
	return TicketQuery{
		SortField: SortByCreated,
		SortOrder: SortDesc,
	}
}

// Clone returns a deep copy of the query.
func (q TicketQuery) Clone() TicketQuery {
	out := q
	out.Statuses = append([]string(nil), q.Statuses...)
	out.Projects = append([]string(nil), q.Projects...)
	out.Priorities = append([]string(nil), q.Priorities...)
	out.Assignees = append([]string(nil), q.Assignees...)
	return out
}

// MultiSelect returns a pointer to the multi-select set for a field name,
// or nil when the field has no multi-select set.
func (q *TicketQuery) MultiSelect(field string) *[]string {
	switch field {
	case GroupFieldStatus:
		return &q.Statuses
	case GroupFieldProject:
		return &q.Projects
	case GroupFieldPriority:
		return &q.Priorities
	case GroupFieldAssignee:
		return &q.Assignees
	}
	return nil
}

// Equal reports whether two queries are equivalent. Multi-select sets are
// compared as sets: insertion order is not significant.
func (q TicketQuery) Equal(other TicketQuery) bool {
	return q.Search == other.Search && q.EqualExceptSearch(other)
}

// EqualExceptSearch reports whether two queries differ at most in their
// free-text search. The filter state manager uses this to decide between an
// immediate refetch and the search debounce path.
func (q TicketQuery) EqualExceptSearch(other TicketQuery) bool {
	return q.Category == other.Category &&
		q.SortField == other.SortField &&
		q.SortOrder == other.SortOrder &&
		equalValueSets(q.Statuses, other.Statuses) &&
		equalValueSets(q.Projects, other.Projects) &&
		equalValueSets(q.Priorities, other.Priorities) &&
		equalValueSets(q.Assignees, other.Assignees)
}

// ToggleValue returns the set with value removed when present, else with
// value appended. The toggle is idempotent in the round-trip sense; insertion
// order is not guaranteed.
func ToggleValue(set []string, value string) []string {
	for i, v := range set {
		if v == value {
			out := make([]string, 0, len(set)-1)
			out = append(out, set[:i]...)
			out = append(out, set[i+1:]...)
			return out
		}
	}
	out := make([]string, 0, len(set)+1)
	out = append(out, set...)
	out = append(out, value)
	return out
}

func equalValueSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, v := range a {
		seen[v]++
	}
	for _, v := range b {
		seen[v]--
		if seen[v] < 0 {
			return false
		}
	}
	return true
}
