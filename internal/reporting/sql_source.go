package reporting

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("salesagent.internal.reporting")

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SQLSource aggregates in Postgres.
type SQLSource struct {
	db querier
}

func NewSQLSource(db querier) *SQLSource {
	if db == nil {
		panic("reporting: db cannot be nil")
	}
	return &SQLSource{db: db}
}

const statsSelect = `
	SELECT COUNT(*)::int,
	       COALESCE(AVG(c.duration_seconds), 0)::float8,
	       COALESCE(SUM(c.message_count), 0)::int,
	       (COUNT(*) FILTER (WHERE LOWER(COALESCE(c.sentiment, '')) LIKE '%positive%'))::int
	FROM conversations c
	LEFT JOIN agents a ON a.id = c.agent_id`

func (s *SQLSource) Statistics(ctx context.Context, scope Scope) (Statistics, error) {
	ctx, span := tracer.Start(ctx, "reporting.statistics")
	defer span.End()

	query, arg := statsSelect+` WHERE c.agent_id = $1`, scope.AgentID
	if scope.AgentID == "" {
		query, arg = statsSelect+` WHERE COALESCE(a.user_id, c.user_id) = $1`, scope.OwnerID
	}

	var out Statistics
	err := s.db.QueryRow(ctx, query, arg).Scan(&out.TotalCalls, &out.AverageDuration, &out.TotalMessages, &out.LeadsCount)
	if err != nil {
		span.RecordError(err)
		return Statistics{}, fmt.Errorf("reporting: statistics: %w", err)
	}
	return out, nil
}

func (s *SQLSource) SystemStats(ctx context.Context) (SystemStats, error) {
	ctx, span := tracer.Start(ctx, "reporting.system_stats")
	defer span.End()

	var out SystemStats
	err := s.db.QueryRow(ctx, `
		SELECT (SELECT COUNT(*) FROM users)::int,
		       (SELECT COUNT(*) FROM agents)::int,
		       (SELECT COUNT(*) FROM conversations)::int,
		       (SELECT COUNT(*) FROM conversations
		         WHERE LOWER(COALESCE(sentiment, '')) LIKE '%positive%')::int
	`).Scan(&out.TotalUsers, &out.TotalAgents, &out.TotalCalls, &out.TotalLeads)
	if err != nil {
		span.RecordError(err)
		return SystemStats{}, fmt.Errorf("reporting: system stats: %w", err)
	}
	return out, nil
}

func (s *SQLSource) Users(ctx context.Context) ([]UserSummary, error) {
	ctx, span := tracer.Start(ctx, "reporting.users")
	defer span.End()

	rows, err := s.db.Query(ctx, `
		SELECT u.id::text, u.email, u.full_name, u.role, u.is_verified, u.created_at, u.last_login_at,
		       COUNT(a.id)::int
		FROM users u
		LEFT JOIN agents a ON a.user_id = u.id
		GROUP BY u.id
		ORDER BY u.created_at DESC
	`)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("reporting: list users: %w", err)
	}
	defer rows.Close()

	var out []UserSummary
	for rows.Next() {
		var u UserSummary
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &u.Role, &u.IsVerified, &u.CreatedAt, &u.LastLoginAt, &u.AgentCount); err != nil {
			return nil, fmt.Errorf("reporting: scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reporting: iterate users: %w", err)
	}
	return out, nil
}
