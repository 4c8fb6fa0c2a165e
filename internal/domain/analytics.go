package domain

import "sort"

// Precomputed analytics documents consumed read-only by the dashboard.

// HeatmapCell is one cell of the call-volume heatmap (day-of-week x hour).
type HeatmapCell struct {
	Day   string `json:"day"`
	Hour  int    `json:"hour"`
	Count int    `json:"count"`
}

// CategoryStat summarizes tickets within one category.
type CategoryStat struct {
	Category           string  `json:"category"`
	Count              int     `json:"count"`
	Completed          int     `json:"completed"`
	CompletionRate     float64 `json:"completion_rate"`
	AvgResolutionHours float64 `json:"avg_resolution_hours"`
}

// SentimentSummary compares sentiment across one segment label.
type SentimentSummary struct {
	Label    string  `json:"label"`
	Count    int     `json:"count"`
	AvgScore float64 `json:"avg_score"`
}

// GroupByCategory builds the category-to-tickets mapping for a flat ticket
// slice. Tickets with an empty category land under "Uncategorized".
func GroupByCategory(tickets []Ticket) map[string][]Ticket {
	byCategory := make(map[string][]Ticket)
	for _, t := range tickets {
		category := t.Category
		if category == "" {
			category = "Uncategorized"
		}
		byCategory[category] = append(byCategory[category], t)
	}
	return byCategory
}

// CategoryBreakdown aggregates tickets into per-category stats, sorted by
// category name for deterministic output.
func CategoryBreakdown(tickets []Ticket) []CategoryStat {
	byCategory := GroupByCategory(tickets)

	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Strings(names)

	stats := make([]CategoryStat, 0, len(names))
	for _, name := range names {
		members := byCategory[name]
		stat := CategoryStat{Category: name, Count: len(members)}
		var sumMinutes float64
		var resolved int
		for _, t := range members {
			if t.Completed {
				stat.Completed++
			}
			if t.ResolutionTime != nil {
				sumMinutes += *t.ResolutionTime
				resolved++
			}
		}
		stat.CompletionRate = CompletionRate(stat.Completed, stat.Count)
		stat.AvgResolutionHours = AvgResolutionHours(sumMinutes, resolved)
		stats = append(stats, stat)
	}
	return stats
}
