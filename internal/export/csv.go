package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/domain"
)

// MaxExportRows bounds how many tickets a flat export re-fetches, independent
// of the page window currently loaded in the listing.
const MaxExportRows = 10000

const dateLayout = "2006-01-02"

// Escape quotes a CSV field when it contains a comma, quote or line break:
// the field is wrapped in double quotes and internal quotes are doubled.
func Escape(field string) string {
	if !strings.ContainsAny(field, ",\"\n\r") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// Build joins a header row and record rows into a comma-separated blob.
func Build(header []string, rows [][]string) []byte {
	var b strings.Builder
	writeRow(&b, header)
	for _, row := range rows {
		writeRow(&b, row)
	}
	return []byte(b.String())
}

func writeRow(b *strings.Builder, row []string) {
	for i, field := range row {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(Escape(field))
	}
	b.WriteByte('\n')
}

// ListFilename names the flat-list export deterministically from the date.
func ListFilename(now time.Time) string {
	return "tickets_" + now.Format(dateLayout) + ".csv"
}

// GroupFilename names the grouped export from the date and grouping levels.
func GroupFilename(levels []string, now time.Time) string {
	return "ticket_groups_" + strings.Join(levels, "-") + "_" + now.Format(dateLayout) + ".csv"
}

// TicketHeader is the column header of the flat-list export.
func TicketHeader() []string {
	return []string{
		"key", "title", "status", "priority", "project", "assignee",
		"category", "created", "response_minutes", "resolution_minutes",
		"completed",
	}
}

// TicketRow renders one ticket as CSV cells in TicketHeader order.
func TicketRow(t domain.Ticket) []string {
	return []string{
		t.Key,
		t.Title,
		t.Status,
		t.Priority,
		t.Project,
		t.Assignee,
		t.Category,
		t.CreatedAt.Format(time.RFC3339),
		minutes(t.ResponseTime),
		minutes(t.ResolutionTime),
		strconv.FormatBool(t.Completed),
	}
}

// GroupHeader is the column header of the grouped export: one column per
// grouping level, then the aggregates.
func GroupHeader(levels []string) []string {
	header := append([]string(nil), levels...)
	return append(header, "count", "completed", "completion_rate", "avg_resolution_hours")
}

// Number formats an aggregate value with one decimal place.
func Number(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func minutes(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 0, 64)
}
