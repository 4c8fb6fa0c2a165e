package main

import (
	"database/sql"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS tickets (
	id TEXT PRIMARY KEY,
	key TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	status TEXT NOT NULL,
	priority TEXT NOT NULL,
	project TEXT NOT NULL,
	assignee TEXT NOT NULL,
	category TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	response_time_minutes DOUBLE PRECISION,
	resolution_time_minutes DOUBLE PRECISION,
	completed BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_tickets_created_at ON tickets (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_tickets_project ON tickets (project);
CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets (status);
`

var (
	statuses   = []string{"Open", "In Progress", "Resolved", "Closed"}
	priorities = []string{"Low", "Medium", "High", "Critical"}
	projects   = []string{"SERV", "BILL", "PORT", "ESCR"}
	assignees  = []string{"asmith", "bjones", "cchen", "dlee", "unassigned"}
	categories = []string{"Payment", "Escrow", "Statement", "Payoff", "General"}
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	count := 500
	if v := os.Getenv("SEED_TICKET_COUNT"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			log.Fatalf("invalid SEED_TICKET_COUNT: %q", v)
		}
		count = parsed
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to connect db: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping db: %v", err)
	}

	if _, err := db.Exec(schema); err != nil {
		log.Fatalf("failed to create schema: %v", err)
	}

	// Deterministic data so repeated seeds line up with saved dashboards.
	rng := rand.New(rand.NewSource(42))

	query := `
	INSERT INTO tickets (id, key, title, status, priority, project, assignee, category, created_at, response_time_minutes, resolution_time_minutes, completed)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (key) DO NOTHING
	`

	now := time.Now()
	inserted := 0
	for i := 0; i < count; i++ {
		project := projects[rng.Intn(len(projects))]
		status := statuses[rng.Intn(len(statuses))]
		completed := status == "Resolved" || status == "Closed"

		var responseTime, resolutionTime interface{}
		if rng.Float64() < 0.9 {
			responseTime = float64(rng.Intn(240) + 5)
		}
		if completed {
			resolutionTime = float64(rng.Intn(7*24*60) + 30)
		}

		key := fmt.Sprintf("%s-%d", project, 1000+i)
		_, err := db.Exec(query,
			uuid.NewString(),
			key,
			fmt.Sprintf("Servicing request %d for %s", i+1, project),
			status,
			priorities[rng.Intn(len(priorities))],
			project,
			assignees[rng.Intn(len(assignees))],
			categories[rng.Intn(len(categories))],
			now.Add(-time.Duration(rng.Intn(90*24))*time.Hour),
			responseTime,
			resolutionTime,
			completed,
		)
		if err != nil {
			log.Fatalf("failed to seed ticket %s: %v", key, err)
		}
		inserted++
	}

	fmt.Printf("Seeded %d tickets\n", inserted)
}
