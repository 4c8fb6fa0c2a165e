package domain

import (
	"math"
	"strings"
)

// Grouping field names accepted by the group aggregation query.
const (
	GroupFieldProject  = "project"
	GroupFieldStatus   = "status"
	GroupFieldPriority = "priority"
	GroupFieldAssignee = "assignee"
	GroupFieldCategory = "category"
)

// MaxGroupLevels is the deepest group-by nesting the aggregation supports.
const MaxGroupLevels = 3

// Custom errors
var (
	ErrNoGroupLevels       = NewDomainError("at least one grouping level is required")
	ErrTooManyGroupLevels  = NewDomainError("at most three grouping levels are supported")
	ErrUnknownGroupField   = NewDomainError("unknown grouping field")
	ErrDuplicateGroupField = NewDomainError("duplicate grouping field")
)

// ValidGroupField reports whether name is a known grouping field.
func ValidGroupField(name string) bool {
	switch name {
	case GroupFieldProject, GroupFieldStatus, GroupFieldPriority,
		GroupFieldAssignee, GroupFieldCategory:
		return true
	}
	return false
}

// ValidateGroupLevels checks an ordered list of grouping fields.
func ValidateGroupLevels(levels []string) error {
	if len(levels) == 0 {
		return ErrNoGroupLevels
	}
	if len(levels) > MaxGroupLevels {
		return ErrTooManyGroupLevels
	}
	seen := make(map[string]bool, len(levels))
	for _, level := range levels {
		if !ValidGroupField(level) {
			return ErrUnknownGroupField
		}
		if seen[level] {
			return ErrDuplicateGroupField
		}
		seen[level] = true
	}
	return nil
}

// GroupNode is one row of a hierarchical aggregate. A node either carries its
// full child list or none; the tree is rebuilt wholesale when grouping levels
// or filters change. For every non-leaf node Count equals the sum of its
// children's counts.
type GroupNode struct {
	Key                  string            `json:"key"`
	Values               map[string]string `json:"values"`
	Count                int               `json:"count"`
	Completed            int               `json:"completed"`
	ResolvedCount        int               `json:"resolved_count"`
	SumResolutionMinutes float64           `json:"sum_resolution_minutes"`
	AvgResolutionHours   float64           `json:"avg_resolution_hours"`
	CompletionRate       float64           `json:"completion_rate"`
	Children             []*GroupNode      `json:"children,omitempty"`
}

// GroupKey builds the composite key for a node: the level values down to its
// depth, joined in order.
func GroupKey(values []string) string {
	return strings.Join(values, "|")
}

// Finalize computes the derived metrics on the node and all descendants.
func (n *GroupNode) Finalize() {
	n.CompletionRate = CompletionRate(n.Completed, n.Count)
	n.AvgResolutionHours = AvgResolutionHours(n.SumResolutionMinutes, n.ResolvedCount)
	for _, child := range n.Children {
		child.Finalize()
	}
}

// CompletionRate returns completed/count as a one-decimal percentage in
// [0,100]. A zero count yields 0, never a division error or NaN.
func CompletionRate(completed, count int) float64 {
	if count <= 0 {
		return 0
	}
	return round1(float64(completed) / float64(count) * 100)
}

// AvgResolutionHours converts an accumulated resolution total in minutes to
// a one-decimal average in hours. Zero resolved tickets yields 0.
func AvgResolutionHours(sumMinutes float64, resolved int) float64 {
	if resolved <= 0 {
		return 0
	}
	return round1(sumMinutes / float64(resolved) / 60)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
