package engine

import (
	"context"
	"sync"

	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/domain"
	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/ports"
)

// GroupAggregator holds the current hierarchical group-by tree and its
// expansion state. The whole tree is fetched and stored at once: aggregate
// trees are assumed bounded in fan-out, so there is no pagination. Changing
// the grouping levels discards the tree and resets expansion; a data refresh
// keeps expansion keys, which carry over only where the new tree happens to
// produce the same composite keys.
type GroupAggregator struct {
	mu       sync.Mutex
	repo     ports.TicketRepository
	levels   []string
	groups   []*domain.GroupNode
	expanded map[string]struct{}
	loading  bool
	failed   bool
	gen      uint64
}

// NewGroupAggregator creates an aggregator grouping by project only.
func NewGroupAggregator(repo ports.TicketRepository) *GroupAggregator {
	return &GroupAggregator{
		repo:     repo,
		levels:   []string{domain.GroupFieldProject},
		expanded: make(map[string]struct{}),
	}
}

// SetLevels replaces the ordered grouping levels. All expansion state is
// reset and the stored tree is dropped until the next Refresh.
func (a *GroupAggregator) SetLevels(levels []string) error {
	if err := domain.ValidateGroupLevels(levels); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.gen++
	a.levels = append([]string(nil), levels...)
	a.groups = nil
	a.expanded = make(map[string]struct{})
	return nil
}

// Levels returns the current ordered grouping fields.
func (a *GroupAggregator) Levels() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.levels...)
}

// Refresh rebuilds the tree for the given filter query. The query's sort is
// meaningless for aggregates and ignored by the repository. A refresh that is
// superseded by a newer one is discarded when its response lands.
func (a *GroupAggregator) Refresh(ctx context.Context, query domain.TicketQuery) error {
	a.mu.Lock()
	a.gen++
	gen := a.gen
	levels := append([]string(nil), a.levels...)
	a.loading = true
	a.mu.Unlock()

	groups, err := a.repo.GroupTree(ctx, query, levels)

	a.mu.Lock()
	defer a.mu.Unlock()
	if gen != a.gen {
		return nil
	}
	a.loading = false
	if err != nil {
		a.groups = nil
		a.failed = true
		return err
	}
	a.groups = groups
	a.failed = false
	return nil
}

// Groups returns the root nodes of the stored tree.
func (a *GroupAggregator) Groups() []*domain.GroupNode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*domain.GroupNode(nil), a.groups...)
}

// Toggle flips the expansion state of one node key.
func (a *GroupAggregator) Toggle(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.expanded[key]; ok {
		delete(a.expanded, key)
	} else {
		a.expanded[key] = struct{}{}
	}
}

// IsExpanded reports whether a node key is expanded. Root nodes start
// collapsed.
func (a *GroupAggregator) IsExpanded(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.expanded[key]
	return ok
}

// Loading reports whether a tree fetch is in flight.
func (a *GroupAggregator) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}

// Failed reports whether the last refresh failed.
func (a *GroupAggregator) Failed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.failed
}

// VisibleRow is one rendered row of the tree: a node plus its depth.
type VisibleRow struct {
	Node  *domain.GroupNode
	Depth int
}

// VisibleRows returns the nodes currently rendered: every root, and the
// children of each expanded node, depth-first.
func (a *GroupAggregator) VisibleRows() []VisibleRow {
	a.mu.Lock()
	defer a.mu.Unlock()
	var rows []VisibleRow
	var walk func(nodes []*domain.GroupNode, depth int)
	walk = func(nodes []*domain.GroupNode, depth int) {
		for _, node := range nodes {
			rows = append(rows, VisibleRow{Node: node, Depth: depth})
			if _, ok := a.expanded[node.Key]; ok {
				walk(node.Children, depth+1)
			}
		}
	}
	walk(a.groups, 0)
	return rows
}

// LeafFilter returns the query with the node's accumulated field values
// applied as multi-select/category filters. Clicking a leaf is the single
// point where the aggregator feeds back into the filter state.
func LeafFilter(query domain.TicketQuery, node *domain.GroupNode) domain.TicketQuery {
	out := query.Clone()
	for field, value := range node.Values {
		if field == domain.GroupFieldCategory {
			out.Category = value
			continue
		}
		if set := out.MultiSelect(field); set != nil {
			*set = []string{value}
		}
	}
	return out
}

// ExportRow is one line of the grouped CSV export.
type ExportRow struct {
	// LevelValues has one column per grouping level, populated only at the
	// node's own level. This reproduces the indent-style export layout.
	LevelValues        []string
	Count              int
	Completed          int
	CompletionRate     float64
	AvgResolutionHours float64
}

// Flatten emits one export row per node at every level, parent immediately
// followed by its children (pre-order).
func Flatten(levels []string, groups []*domain.GroupNode) []ExportRow {
	var rows []ExportRow
	var walk func(nodes []*domain.GroupNode, depth int)
	walk = func(nodes []*domain.GroupNode, depth int) {
		for _, node := range nodes {
			row := ExportRow{
				LevelValues:        make([]string, len(levels)),
				Count:              node.Count,
				Completed:          node.Completed,
				CompletionRate:     node.CompletionRate,
				AvgResolutionHours: node.AvgResolutionHours,
			}
			if depth < len(levels) {
				row.LevelValues[depth] = node.Values[levels[depth]]
			}
			rows = append(rows, row)
			walk(node.Children, depth+1)
		}
	}
	walk(groups, 0)
	return rows
}
