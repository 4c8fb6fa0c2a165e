package engine

import (
	"sync"
	"time"

	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/domain"
)

// DefaultSearchDebounce is the quiet period free-text search must hold before
// it becomes part of the effective query.
const DefaultSearchDebounce = 300 * time.Millisecond

// MultiField names the four multi-select filter sets.
type MultiField string

const (
	FieldStatus   MultiField = domain.GroupFieldStatus
	FieldProject  MultiField = domain.GroupFieldProject
	FieldPriority MultiField = domain.GroupFieldPriority
	FieldAssignee MultiField = domain.GroupFieldAssignee
)

// FilterState owns the raw query (immediate, for controlled inputs) and the
// effective query (what the fetchers actually run). Every mutation except
// free-text search commits to the effective query synchronously and notifies
// the change listener exactly once. Search text settles through a trailing
// debounce restarted on every keystroke.
type FilterState struct {
	mu        sync.Mutex
	raw       domain.TicketQuery
	effective domain.TicketQuery
	delay     time.Duration
	debounce  *time.Timer
	onChange  func(domain.TicketQuery)
}

// NewFilterState creates a filter state with the given search debounce delay
// and change listener. A non-positive delay falls back to the default.
func NewFilterState(delay time.Duration, onChange func(domain.TicketQuery)) *FilterState {
	if delay <= 0 {
		delay = DefaultSearchDebounce
	}
	return &FilterState{
		raw:       domain.DefaultQuery(),
		effective: domain.DefaultQuery(),
		delay:     delay,
		onChange:  onChange,
	}
}

// Raw returns the immediate query, including search text that has not yet
// settled.
func (s *FilterState) Raw() domain.TicketQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raw.Clone()
}

// Effective returns the query the last or next fetch runs under.
func (s *FilterState) Effective() domain.TicketQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.effective.Clone()
}

// SetSearch updates the raw search text and restarts the debounce timer. The
// effective query follows only after the quiet period elapses with no further
// keystroke.
func (s *FilterState) SetSearch(text string) {
	s.mu.Lock()
	s.raw.Search = text
	if s.debounce != nil {
		s.debounce.Stop()
	}
	s.debounce = time.AfterFunc(s.delay, s.settleSearch)
	s.mu.Unlock()
}

func (s *FilterState) settleSearch() {
	s.mu.Lock()
	if s.raw.Search == s.effective.Search {
		s.mu.Unlock()
		return
	}
	s.effective.Search = s.raw.Search
	query := s.effective.Clone()
	notify := s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify(query)
	}
}

// Update applies an arbitrary mutation to the non-search filter fields as a
// single observed change: select-all over N values still produces one
// downstream fetch, not N. Search text changes must go through SetSearch; a
// pending debounced search is not committed early by an update.
func (s *FilterState) Update(mutate func(*domain.TicketQuery)) {
	s.mu.Lock()
	mutate(&s.raw)
	settled := s.effective.Search
	s.effective = s.raw.Clone()
	s.effective.Search = settled
	query := s.effective.Clone()
	notify := s.onChange
	s.mu.Unlock()

	if notify != nil {
		notify(query)
	}
}

// Toggle flips one value in a multi-select set.
func (s *FilterState) Toggle(field MultiField, value string) {
	s.Update(func(q *domain.TicketQuery) {
		if set := q.MultiSelect(string(field)); set != nil {
			*set = domain.ToggleValue(*set, value)
		}
	})
}

// SelectAll replaces a multi-select set with all given values in one change.
func (s *FilterState) SelectAll(field MultiField, values []string) {
	s.Update(func(q *domain.TicketQuery) {
		if set := q.MultiSelect(string(field)); set != nil {
			*set = append([]string(nil), values...)
		}
	})
}

// ClearAll empties a multi-select set in one change.
func (s *FilterState) ClearAll(field MultiField) {
	s.Update(func(q *domain.TicketQuery) {
		if set := q.MultiSelect(string(field)); set != nil {
			*set = nil
		}
	})
}

// SetCategory replaces the single-value category filter.
func (s *FilterState) SetCategory(category string) {
	s.Update(func(q *domain.TicketQuery) {
		q.Category = category
	})
}

// SetSort replaces the sort field and order.
func (s *FilterState) SetSort(field domain.SortField, order domain.SortOrder) {
	s.Update(func(q *domain.TicketQuery) {
		q.SortField = field
		q.SortOrder = order
	})
}

// Close stops a pending debounce timer. Pending search text is dropped, not
// flushed.
func (s *FilterState) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.debounce != nil {
		s.debounce.Stop()
		s.debounce = nil
	}
}
