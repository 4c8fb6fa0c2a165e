package domain

import (
	"math"
	"testing"
)

func TestCompletionRate(t *testing.T) {
	tests := []struct {
		completed int
		count     int
		expected  float64
	}{
		{0, 0, 0},
		{5, 0, 0},
		{0, 10, 0},
		{10, 10, 100},
		{1, 3, 33.3},
		{2, 3, 66.7},
	}

	for _, tt := range tests {
		got := CompletionRate(tt.completed, tt.count)
		if got != tt.expected {
			t.Errorf("CompletionRate(%d, %d) = %v, expected %v", tt.completed, tt.count, got, tt.expected)
		}
		if math.IsNaN(got) || got < 0 || got > 100 {
			t.Errorf("CompletionRate(%d, %d) = %v outside [0,100]", tt.completed, tt.count, got)
		}
	}
}

func TestAvgResolutionHours(t *testing.T) {
	if got := AvgResolutionHours(0, 0); got != 0 {
		t.Errorf("Expected 0 for no resolved tickets, got %v", got)
	}
	if got := AvgResolutionHours(120, 0); got != 0 {
		t.Errorf("Expected 0 for zero resolved count, got %v", got)
	}
	// two tickets, 90 minutes total -> 45 minutes = 0.8 hours (rounded)
	if got := AvgResolutionHours(90, 2); got != 0.8 {
		t.Errorf("Expected 0.8, got %v", got)
	}
	if got := AvgResolutionHours(7200, 2); got != 60.0 {
		t.Errorf("Expected 60.0, got %v", got)
	}
}

func TestValidateGroupLevels(t *testing.T) {
	if err := ValidateGroupLevels([]string{"project", "status", "priority"}); err != nil {
		t.Errorf("Unexpected error for valid levels: %v", err)
	}
	if err := ValidateGroupLevels(nil); err != ErrNoGroupLevels {
		t.Errorf("Expected ErrNoGroupLevels, got %v", err)
	}
	if err := ValidateGroupLevels([]string{"project", "status", "priority", "assignee"}); err != ErrTooManyGroupLevels {
		t.Errorf("Expected ErrTooManyGroupLevels, got %v", err)
	}
	if err := ValidateGroupLevels([]string{"project", "bogus"}); err != ErrUnknownGroupField {
		t.Errorf("Expected ErrUnknownGroupField, got %v", err)
	}
	if err := ValidateGroupLevels([]string{"project", "project"}); err != ErrDuplicateGroupField {
		t.Errorf("Expected ErrDuplicateGroupField, got %v", err)
	}
}

func TestGroupKey(t *testing.T) {
	if key := GroupKey([]string{"SERV", "Open"}); key != "SERV|Open" {
		t.Errorf("Expected SERV|Open, got %s", key)
	}
	if key := GroupKey([]string{"SERV"}); key != "SERV" {
		t.Errorf("Expected SERV, got %s", key)
	}
}

func TestFinalizeComputesDerivedMetrics(t *testing.T) {
	node := &GroupNode{
		Count:                4,
		Completed:            2,
		ResolvedCount:        2,
		SumResolutionMinutes: 240,
		Children: []*GroupNode{
			{Count: 4, Completed: 2, ResolvedCount: 2, SumResolutionMinutes: 240},
		},
	}

	node.Finalize()

	if node.CompletionRate != 50 {
		t.Errorf("Expected completion rate 50, got %v", node.CompletionRate)
	}
	if node.AvgResolutionHours != 2 {
		t.Errorf("Expected avg resolution 2h, got %v", node.AvgResolutionHours)
	}
	if node.Children[0].CompletionRate != 50 {
		t.Errorf("Expected child finalized too, got %v", node.Children[0].CompletionRate)
	}
}
