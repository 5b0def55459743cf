package agents

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository persists agents. Get and Latest return ErrAgentNotFound when
// nothing matches.
type Repository interface {
	Insert(ctx context.Context, a *Agent) error
	Get(ctx context.Context, id string) (*Agent, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Agent, error)
	Latest(ctx context.Context, ownerID string) (*Agent, error)
	Update(ctx context.Context, a *Agent) error
	Delete(ctx context.Context, id string) error
}

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores agents in the agents table.
type PostgresRepository struct {
	db db
}

func NewPostgresRepository(pool db) *PostgresRepository {
	if pool == nil {
		panic("agents: pgx pool cannot be nil")
	}
	return &PostgresRepository{db: pool}
}

const agentColumns = `id::text, user_id::text, agent_name, business_name, industry, services, tone,
	call_goal, system_prompt, greeting, created_at, updated_at`

func (r *PostgresRepository) Insert(ctx context.Context, a *Agent) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO agents (id, user_id, agent_name, business_name, industry, services, tone,
			call_goal, system_prompt, greeting, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
	`, a.ID, a.OwnerID, a.AgentName, a.BusinessName, a.Industry, a.Services, a.Tone,
		a.CallGoal, a.SystemPrompt, a.Greeting, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("agents: insert failed: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Agent, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrAgentNotFound
	}
	return r.one(ctx, `SELECT `+agentColumns+` FROM agents WHERE id = $1`, id)
}

func (r *PostgresRepository) Latest(ctx context.Context, ownerID string) (*Agent, error) {
	return r.one(ctx, `SELECT `+agentColumns+` FROM agents WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`, ownerID)
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]Agent, error) {
	rows, err := r.db.Query(ctx, `SELECT `+agentColumns+` FROM agents WHERE user_id = $1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("agents: list failed: %w", err)
	}
	defer rows.Close()

	out := []Agent{}
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("agents: scan failed: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("agents: list rows: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, a *Agent) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE agents SET agent_name = $2, business_name = $3, industry = $4, services = $5,
			tone = $6, call_goal = $7, system_prompt = $8, greeting = $9, updated_at = $10
		WHERE id = $1
	`, a.ID, a.AgentName, a.BusinessName, a.Industry, a.Services, a.Tone,
		a.CallGoal, a.SystemPrompt, a.Greeting, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("agents: update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAgentNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM agents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("agents: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAgentNotFound
	}
	return nil
}

func (r *PostgresRepository) one(ctx context.Context, query string, args ...any) (*Agent, error) {
	a, err := scanAgent(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAgentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("agents: select failed: %w", err)
	}
	return a, nil
}

func scanAgent(row pgx.Row) (*Agent, error) {
	var a Agent
	if err := row.Scan(&a.ID, &a.OwnerID, &a.AgentName, &a.BusinessName, &a.Industry, &a.Services,
		&a.Tone, &a.CallGoal, &a.SystemPrompt, &a.Greeting, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// MemoryRepository keeps agents in process memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	agents map[string]Agent
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{agents: make(map[string]Agent)}
}

func (r *MemoryRepository) Insert(ctx context.Context, a *Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[a.ID] = *a
	return nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[id]
	if !ok {
		return nil, ErrAgentNotFound
	}
	return &a, nil
}

func (r *MemoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Agent{}
	for _, a := range r.agents {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i], out[j]) })
	return out, nil
}

func (r *MemoryRepository) Latest(ctx context.Context, ownerID string) (*Agent, error) {
	list, _ := r.ListByOwner(ctx, ownerID)
	if len(list) == 0 {
		return nil, ErrAgentNotFound
	}
	return &list[0], nil
}

func (r *MemoryRepository) Update(ctx context.Context, a *Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.agents[a.ID]; !ok {
		return ErrAgentNotFound
	}
	r.agents[a.ID] = *a
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.agents[id]; !ok {
		return ErrAgentNotFound
	}
	delete(r.agents, id)
	return nil
}

// All returns every agent; reporting counts over it.
func (r *MemoryRepository) All(ctx context.Context) []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Agent, 0, len(r.agents))
	for _, a := range r.agents {
		out = append(out, a)
	}
	return out
}

// newer orders by creation time, then id, newest first.
func newer(a, b Agent) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
