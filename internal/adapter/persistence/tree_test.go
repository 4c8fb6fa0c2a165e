package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/domain"
)

func TestBuildTreeRollsUpLeaves(t *testing.T) {
	levels := []string{"project", "status"}
	leaves := []groupLeaf{
		{values: []string{"BILL", "Closed"}, count: 2, completed: 2, resolved: 2, sumResolutionMinutes: 240},
		{values: []string{"BILL", "Open"}, count: 3, completed: 0},
		{values: []string{"SERV", "Open"}, count: 4, completed: 1, resolved: 1, sumResolutionMinutes: 60},
	}

	roots := buildTree(levels, leaves)

	require.Len(t, roots, 2)

	bill := roots[0]
	assert.Equal(t, "BILL", bill.Key)
	assert.Equal(t, map[string]string{"project": "BILL"}, bill.Values)
	assert.Equal(t, 5, bill.Count)
	assert.Equal(t, 2, bill.Completed)
	require.Len(t, bill.Children, 2)

	// parent count equals the sum of child counts
	sum := 0
	for _, child := range bill.Children {
		sum += child.Count
	}
	assert.Equal(t, bill.Count, sum)

	closed := bill.Children[0]
	assert.Equal(t, "BILL|Closed", closed.Key)
	assert.Equal(t, map[string]string{"project": "BILL", "status": "Closed"}, closed.Values)
	assert.Equal(t, 100.0, closed.CompletionRate)
	assert.Equal(t, 2.0, closed.AvgResolutionHours)
	assert.Empty(t, closed.Children)

	serv := roots[1]
	assert.Equal(t, "SERV", serv.Key)
	assert.Equal(t, 25.0, serv.CompletionRate)
	assert.Equal(t, 1.0, serv.AvgResolutionHours)
}

func TestBuildTreeSingleLevel(t *testing.T) {
	roots := buildTree([]string{"assignee"}, []groupLeaf{
		{values: []string{"asmith"}, count: 7, completed: 3},
	})

	require.Len(t, roots, 1)
	assert.Equal(t, "asmith", roots[0].Key)
	assert.Empty(t, roots[0].Children)
	assert.Equal(t, 42.9, roots[0].CompletionRate)
}

func TestBuildTreeEmpty(t *testing.T) {
	roots := buildTree([]string{"project"}, nil)
	assert.Empty(t, roots)
}

func TestBuildTreePreservesLeafOrder(t *testing.T) {
	leaves := []groupLeaf{
		{values: []string{"A", "x"}, count: 1},
		{values: []string{"A", "y"}, count: 1},
		{values: []string{"B", "x"}, count: 1},
	}

	roots := buildTree([]string{"project", "status"}, leaves)

	require.Len(t, roots, 2)
	assert.Equal(t, "A", roots[0].Key)
	assert.Equal(t, "B", roots[1].Key)
	assert.Equal(t, "A|x", roots[0].Children[0].Key)
	assert.Equal(t, "A|y", roots[0].Children[1].Key)
}

func TestBuildWhereClause(t *testing.T) {
	query := domain.TicketQuery{
		Search:   "escrow",
		Statuses: []string{"Open", "In Progress"},
		Category: "Payment",
	}

	where, args := buildWhereClause(query)
	assert.Contains(t, where, "(title ILIKE $1 OR key ILIKE $1)")
	assert.Contains(t, where, "status = ANY($2)")
	assert.Contains(t, where, "category = $3")
	assert.Len(t, args, 3)

	where, args = buildWhereClause(domain.TicketQuery{})
	assert.Equal(t, "", where)
	assert.Empty(t, args)
}
