package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/domain"
	"github.com/mhansen003/servicing-ticket-analysis-sub001/internal/ports"
)

// PostgresTicketRepository implements TicketRepository using PostgreSQL
type PostgresTicketRepository struct {
	db *sql.DB
}

// NewPostgresTicketRepository creates a new PostgreSQL ticket repository
func NewPostgresTicketRepository(db *sql.DB) ports.TicketRepository {
	return &PostgresTicketRepository{db: db}
}

// sortColumns whitelists the ORDER BY targets per sort field.
var sortColumns = map[domain.SortField]string{
	domain.SortByCreated:        "created_at",
	domain.SortByKey:            "key",
	domain.SortByTitle:          "title",
	domain.SortByStatus:         "status",
	domain.SortByPriority:       "priority",
	domain.SortByProject:        "project",
	domain.SortByAssignee:       "assignee",
	domain.SortByResponseTime:   "response_time_minutes",
	domain.SortByResolutionTime: "resolution_time_minutes",
}

// groupColumns whitelists the GROUP BY targets per grouping field.
var groupColumns = map[string]string{
	domain.GroupFieldProject:  "project",
	domain.GroupFieldStatus:   "status",
	domain.GroupFieldPriority: "priority",
	domain.GroupFieldAssignee: "assignee",
	domain.GroupFieldCategory: "category",
}

const ticketColumns = `id, key, title, status, priority, project, assignee, category, created_at, response_time_minutes, resolution_time_minutes, completed`

// FetchPage retrieves one page of tickets plus the authoritative totals and
// the distinct filter option values.
func (r *PostgresTicketRepository) FetchPage(ctx context.Context, query domain.TicketQuery, page, limit int) (*ports.TicketPage, error) {
	if page < 1 {
		return nil, domain.ErrInvalidPage
	}
	if limit < 1 {
		return nil, domain.ErrInvalidPageSize
	}

	where, args := buildWhereClause(query)

	orderColumn, ok := sortColumns[query.SortField]
	if !ok {
		orderColumn = "created_at"
	}
	direction := "DESC"
	if query.SortOrder == domain.SortAsc {
		direction = "ASC"
	}

	sqlQuery := fmt.Sprintf(`
		SELECT %s
		FROM tickets
		%s
		ORDER BY %s %s, id ASC
		LIMIT $%d OFFSET $%d
	`, ticketColumns, where, orderColumn, direction, len(args)+1, len(args)+2)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}
	defer rows.Close()

	tickets := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}

	total, err := r.count(ctx, query)
	if err != nil {
		return nil, err
	}
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	options, err := r.filterOptions(ctx)
	if err != nil {
		return nil, err
	}

	return &ports.TicketPage{
		Tickets:       tickets,
		Pagination:    domain.Pagination{Total: total, TotalPages: totalPages},
		FilterOptions: options,
	}, nil
}

// FetchAll retrieves up to max tickets matching the query, in the query's
// sort order. Used by the CSV export.
func (r *PostgresTicketRepository) FetchAll(ctx context.Context, query domain.TicketQuery, max int) ([]domain.Ticket, error) {
	if max < 1 {
		return nil, domain.ErrInvalidPageSize
	}

	where, args := buildWhereClause(query)

	orderColumn, ok := sortColumns[query.SortField]
	if !ok {
		orderColumn = "created_at"
	}
	direction := "DESC"
	if query.SortOrder == domain.SortAsc {
		direction = "ASC"
	}

	sqlQuery := fmt.Sprintf(`
		SELECT %s
		FROM tickets
		%s
		ORDER BY %s %s, id ASC
		LIMIT $%d
	`, ticketColumns, where, orderColumn, direction, len(args)+1)
	args = append(args, max)

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tickets: %w", err)
	}
	defer rows.Close()

	tickets := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tickets: %w", err)
	}

	return tickets, nil
}

// GroupTree aggregates tickets at the deepest grouping level in SQL, then
// rolls the leaf rows up into the recursive tree. Parent aggregates are sums
// over their children, so a node's count always equals the sum of its
// children's counts.
func (r *PostgresTicketRepository) GroupTree(ctx context.Context, query domain.TicketQuery, levels []string) ([]*domain.GroupNode, error) {
	if err := domain.ValidateGroupLevels(levels); err != nil {
		return nil, err
	}

	columns := make([]string, len(levels))
	for i, level := range levels {
		columns[i] = groupColumns[level]
	}
	columnList := strings.Join(columns, ", ")

	where, args := buildWhereClause(query)

	sqlQuery := fmt.Sprintf(`
		SELECT %s,
			COUNT(*),
			COUNT(*) FILTER (WHERE completed),
			COUNT(resolution_time_minutes),
			COALESCE(SUM(resolution_time_minutes), 0)
		FROM tickets
		%s
		GROUP BY %s
		ORDER BY %s
	`, columnList, where, columnList, columnList)

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query group tree: %w", err)
	}
	defer rows.Close()

	var leaves []groupLeaf
	for rows.Next() {
		leaf := groupLeaf{values: make([]string, len(levels))}
		dest := make([]interface{}, 0, len(levels)+4)
		for i := range leaf.values {
			dest = append(dest, &leaf.values[i])
		}
		dest = append(dest, &leaf.count, &leaf.completed, &leaf.resolved, &leaf.sumResolutionMinutes)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		leaves = append(leaves, leaf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group rows: %w", err)
	}

	return buildTree(levels, leaves), nil
}

// groupLeaf is one row of the grouped SQL result: the values of every
// grouping level plus the aggregates at the deepest level.
type groupLeaf struct {
	values               []string
	count                int
	completed            int
	resolved             int
	sumResolutionMinutes float64
}

// buildTree rolls leaf aggregates up into the recursive node tree. Leaves
// arrive sorted by their level values, so children stay in source order.
func buildTree(levels []string, leaves []groupLeaf) []*domain.GroupNode {
	roots := []*domain.GroupNode{}
	index := make(map[string]*domain.GroupNode)

	for _, leaf := range leaves {
		var parent *domain.GroupNode
		for depth := range levels {
			key := domain.GroupKey(leaf.values[:depth+1])
			node, ok := index[key]
			if !ok {
				node = &domain.GroupNode{
					Key:    key,
					Values: make(map[string]string, depth+1),
				}
				for i := 0; i <= depth; i++ {
					node.Values[levels[i]] = leaf.values[i]
				}
				index[key] = node
				if parent == nil {
					roots = append(roots, node)
				} else {
					parent.Children = append(parent.Children, node)
				}
			}
			node.Count += leaf.count
			node.Completed += leaf.completed
			node.ResolvedCount += leaf.resolved
			node.SumResolutionMinutes += leaf.sumResolutionMinutes
			parent = node
		}
	}

	for _, root := range roots {
		root.Finalize()
	}
	return roots
}

func (r *PostgresTicketRepository) count(ctx context.Context, query domain.TicketQuery) (int, error) {
	where, args := buildWhereClause(query)

	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tickets "+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}
	return count, nil
}

func (r *PostgresTicketRepository) filterOptions(ctx context.Context) (domain.FilterOptions, error) {
	var options domain.FilterOptions
	var err error

	if options.Statuses, err = r.distinctValues(ctx, "status"); err != nil {
		return options, err
	}
	if options.Projects, err = r.distinctValues(ctx, "project"); err != nil {
		return options, err
	}
	if options.Priorities, err = r.distinctValues(ctx, "priority"); err != nil {
		return options, err
	}
	if options.Assignees, err = r.distinctValues(ctx, "assignee"); err != nil {
		return options, err
	}
	return options, nil
}

func (r *PostgresTicketRepository) distinctValues(ctx context.Context, column string) ([]string, error) {
	query := fmt.Sprintf(`SELECT DISTINCT %s FROM tickets WHERE %s <> '' ORDER BY %s`, column, column, column)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct %s: %w", column, err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("failed to scan %s value: %w", column, err)
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s values: %w", column, err)
	}
	return values, nil
}

// buildWhereClause builds the filter predicate shared by the listing, count,
// export and aggregation queries.
func buildWhereClause(query domain.TicketQuery) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if query.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR key ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+query.Search+"%")
		argIndex++
	}

	if len(query.Statuses) > 0 {
		conditions = append(conditions, fmt.Sprintf("status = ANY($%d)", argIndex))
		args = append(args, pq.Array(query.Statuses))
		argIndex++
	}

	if len(query.Projects) > 0 {
		conditions = append(conditions, fmt.Sprintf("project = ANY($%d)", argIndex))
		args = append(args, pq.Array(query.Projects))
		argIndex++
	}

	if len(query.Priorities) > 0 {
		conditions = append(conditions, fmt.Sprintf("priority = ANY($%d)", argIndex))
		args = append(args, pq.Array(query.Priorities))
		argIndex++
	}

	if len(query.Assignees) > 0 {
		conditions = append(conditions, fmt.Sprintf("assignee = ANY($%d)", argIndex))
		args = append(args, pq.Array(query.Assignees))
		argIndex++
	}

	if query.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, query.Category)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func scanTicket(rows *sql.Rows) (domain.Ticket, error) {
	var ticket domain.Ticket
	var responseTime, resolutionTime sql.NullFloat64

	err := rows.Scan(
		&ticket.ID,
		&ticket.Key,
		&ticket.Title,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Project,
		&ticket.Assignee,
		&ticket.Category,
		&ticket.CreatedAt,
		&responseTime,
		&resolutionTime,
		&ticket.Completed,
	)
	if err != nil {
		return ticket, fmt.Errorf("failed to scan ticket: %w", err)
	}

	if responseTime.Valid {
		ticket.ResponseTime = &responseTime.Float64
	}
	if resolutionTime.Valid {
		ticket.ResolutionTime = &resolutionTime.Float64
	}
	return ticket, nil
}
