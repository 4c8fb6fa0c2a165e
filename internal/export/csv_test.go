package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/domain"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"plain", "Open", "Open"},
		{"comma", "Acme, Inc", `"Acme, Inc"`},
		{"quotes", `say "hi"`, `"say ""hi"""`},
		{"comma and quotes", `Acme, "Corp"`, `"Acme, ""Corp"""`},
		{"newline", "line1\nline2", "\"line1\nline2\""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Escape(tt.in))
		})
	}
}

func TestBuild(t *testing.T) {
	blob := Build(
		[]string{"key", "title"},
		[][]string{
			{"SERV-1", "Plain title"},
			{"SERV-2", `Acme, "Corp"`},
		},
	)

	expected := "key,title\n" +
		"SERV-1,Plain title\n" +
		"SERV-2,\"Acme, \"\"Corp\"\"\"\n"
	assert.Equal(t, expected, string(blob))
}

func TestFilenames(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, "tickets_2024-03-15.csv", ListFilename(now))
	assert.Equal(t, "ticket_groups_project-status_2024-03-15.csv", GroupFilename([]string{"project", "status"}, now))
}

func TestTicketRow(t *testing.T) {
	resolution := 90.0
	ticket := domain.Ticket{
		Key:            "SERV-1",
		Title:          "Escrow shortage",
		Status:         "Open",
		Priority:       "High",
		Project:        "SERV",
		Assignee:       "asmith",
		Category:       "Escrow",
		CreatedAt:      time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		ResolutionTime: &resolution,
	}

	row := TicketRow(ticket)

	assert.Len(t, row, len(TicketHeader()))
	assert.Equal(t, "SERV-1", row[0])
	assert.Equal(t, "", row[8], "unmeasured response time renders blank")
	assert.Equal(t, "90", row[9])
	assert.Equal(t, "false", row[10])
}

func TestGroupHeader(t *testing.T) {
	header := GroupHeader([]string{"project", "status"})
	assert.Equal(t, []string{"project", "status", "count", "completed", "completion_rate", "avg_resolution_hours"}, header)
}

func TestNumber(t *testing.T) {
	assert.Equal(t, "66.7", Number(66.7))
	assert.Equal(t, "0.0", Number(0))
}
