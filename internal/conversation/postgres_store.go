package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PgxPool is the subset of pgxpool.Pool the store needs.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists conversations in Postgres.
type PostgresStore struct {
	pool   PgxPool
	tracer trace.Tracer
	now    func() time.Time
}

func NewPostgresStore(pool PgxPool) *PostgresStore {
	if pool == nil {
		panic("conversation: pgx pool cannot be nil")
	}
	return &PostgresStore{
		pool:   pool,
		tracer: otel.Tracer("salesagent.internal.conversation.store"),
		now:    time.Now,
	}
}

const conversationColumns = `
	c.id::text, c.agent_id::text, c.user_id::text,
	COALESCE(a.user_id, c.user_id)::text,
	COALESCE(a.agent_name, ''),
	COALESCE(a.business_name, m.data->>'business_name', ''),
	c.started_at, c.ended_at, c.duration_seconds, c.summary, c.sentiment, c.message_count
FROM conversations c
LEFT JOIN agents a ON a.id = c.agent_id
LEFT JOIN conversation_metadata m ON m.conversation_id = c.id`

func (s *PostgresStore) startSpan(ctx context.Context, name, id string) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, name)
	if id != "" {
		span.SetAttributes(attribute.String("conversation.id", id))
	}
	return ctx, span
}

func (s *PostgresStore) Create(ctx context.Context, nc NewConversation) (*Conversation, error) {
	if nc.ID == "" {
		nc.ID = uuid.New().String()
	}
	ctx, span := s.startSpan(ctx, "conversation.create", nc.ID)
	defer span.End()

	if nc.StartedAt.IsZero() {
		nc.StartedAt = s.now().UTC()
	}
	meta, err := json.Marshal(nc.Metadata)
	if err != nil {
		return nil, fmt.Errorf("conversation: marshal metadata: %w", err)
	}
	count := 0
	if nc.Greeting != "" {
		count = 1
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: begin create: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO conversations (id, agent_id, user_id, started_at, message_count)
		VALUES ($1, $2, $3, $4, $5)
	`, nc.ID, nc.AgentID, nc.UserID, nc.StartedAt, count); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: insert failed: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO conversation_metadata (conversation_id, data) VALUES ($1, $2)
	`, nc.ID, meta); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: insert metadata failed: %w", err)
	}
	if nc.Greeting != "" {
		if _, err := tx.Exec(ctx, `
			INSERT INTO conversation_messages (conversation_id, role, content)
			VALUES ($1, $2, $3)
		`, nc.ID, string(RoleAgent), nc.Greeting); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("conversation: insert greeting failed: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: commit create: %w", err)
	}

	conv := &Conversation{
		ID:           nc.ID,
		AgentID:      nc.AgentID,
		UserID:       nc.UserID,
		StartedAt:    nc.StartedAt,
		MessageCount: count,
		BusinessName: nc.Metadata[MetaBusinessName],
	}
	if nc.UserID != nil {
		conv.OwnerID = *nc.UserID
	}
	return conv, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Conversation, error) {
	ctx, span := s.startSpan(ctx, "conversation.get", id)
	defer span.End()

	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrConversationNotFound
	}
	row := s.pool.QueryRow(ctx, `SELECT `+conversationColumns+` WHERE c.id = $1`, id)
	conv, err := scanConversation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: select failed: %w", err)
	}
	return conv, nil
}

func (s *PostgresStore) Metadata(ctx context.Context, id string) (Metadata, error) {
	ctx, span := s.startSpan(ctx, "conversation.metadata", id)
	defer span.End()

	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM conversation_metadata WHERE conversation_id = $1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMetadataMissing
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: select metadata failed: %w", err)
	}
	meta := Metadata{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, fmt.Errorf("conversation: decode metadata: %w", err)
		}
	}
	return meta, nil
}

func (s *PostgresStore) RecentMessages(ctx context.Context, id string, limit int) ([]Message, error) {
	ctx, span := s.startSpan(ctx, "conversation.recent_messages", id)
	defer span.End()
	span.SetAttributes(attribute.Int("conversation.limit", limit))

	rows, err := s.pool.Query(ctx, `
		SELECT id, role, content, created_at FROM (
			SELECT id, role, content, created_at
			FROM conversation_messages
			WHERE conversation_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC, id ASC
	`, id, limit)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: select messages failed: %w", err)
	}
	return collectMessages(rows, id)
}

func (s *PostgresStore) Messages(ctx context.Context, id string) ([]Message, error) {
	ctx, span := s.startSpan(ctx, "conversation.messages", id)
	defer span.End()

	rows, err := s.pool.Query(ctx, `
		SELECT id, role, content, created_at
		FROM conversation_messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC, id ASC
	`, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: select messages failed: %w", err)
	}
	return collectMessages(rows, id)
}

// AppendTurn row-locks the conversation so concurrent turns on the same
// conversation commit one after the other.
func (s *PostgresStore) AppendTurn(ctx context.Context, id, userText, agentText string) ([]Message, error) {
	ctx, span := s.startSpan(ctx, "conversation.append_turn", id)
	defer span.End()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: begin append: %w", err)
	}
	defer tx.Rollback(ctx)

	var count int
	err = tx.QueryRow(ctx, `SELECT message_count FROM conversations WHERE id = $1 FOR UPDATE`, id).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: lock conversation: %w", err)
	}

	pair := []Message{
		{ConversationID: id, Role: RoleUser, Content: userText},
		{ConversationID: id, Role: RoleAgent, Content: agentText},
	}
	for i := range pair {
		err := tx.QueryRow(ctx, `
			INSERT INTO conversation_messages (conversation_id, role, content)
			VALUES ($1, $2, $3)
			RETURNING id, created_at
		`, id, string(pair[i].Role), pair[i].Content).Scan(&pair[i].ID, &pair[i].CreatedAt)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("conversation: insert %s message: %w", pair[i].Role, err)
		}
	}

	if _, err := tx.Exec(ctx, `UPDATE conversations SET message_count = message_count + 2 WHERE id = $1`, id); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: bump message count: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: commit append: %w", err)
	}
	return pair, nil
}

func (s *PostgresStore) Finish(ctx context.Context, id string, endedAt time.Time, durationSeconds int) (int, error) {
	ctx, span := s.startSpan(ctx, "conversation.finish", id)
	defer span.End()

	var stored int
	err := s.pool.QueryRow(ctx, `
		UPDATE conversations SET ended_at = $2, duration_seconds = $3
		WHERE id = $1 AND ended_at IS NULL
		RETURNING duration_seconds
	`, id, endedAt.UTC(), durationSeconds).Scan(&stored)
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		span.RecordError(err)
		return 0, fmt.Errorf("conversation: finish failed: %w", err)
	}

	var existing *int
	err = s.pool.QueryRow(ctx, `SELECT duration_seconds FROM conversations WHERE id = $1`, id).Scan(&existing)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrConversationNotFound
	}
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("conversation: read duration: %w", err)
	}
	if existing == nil {
		return 0, nil
	}
	return *existing, nil
}

func (s *PostgresStore) SaveSummary(ctx context.Context, id, summary, sentiment string) error {
	ctx, span := s.startSpan(ctx, "conversation.save_summary", id)
	defer span.End()

	tag, err := s.pool.Exec(ctx, `UPDATE conversations SET summary = $2, sentiment = $3 WHERE id = $1`, id, summary, sentiment)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: save summary failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]Conversation, error) {
	ctx, span := s.startSpan(ctx, "conversation.list", "")
	defer span.End()

	var (
		where []string
		args  []any
	)
	if !filter.All {
		if filter.OwnerID == "" {
			return nil, nil
		}
		args = append(args, filter.OwnerID)
		where = append(where, fmt.Sprintf("COALESCE(a.user_id, c.user_id) = $%d", len(args)))
	}
	if filter.AgentID != "" {
		args = append(args, filter.AgentID)
		where = append(where, fmt.Sprintf("c.agent_id = $%d", len(args)))
	}

	query := `SELECT ` + conversationColumns
	if len(where) > 0 {
		query += "\nWHERE " + strings.Join(where, " AND ")
	}
	query += "\nORDER BY c.started_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: list failed: %w", err)
	}
	defer rows.Close()

	var out []Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("conversation: scan failed: %w", err)
		}
		out = append(out, *conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("conversation: list rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	ctx, span := s.startSpan(ctx, "conversation.delete", id)
	defer span.End()

	tag, err := s.pool.Exec(ctx, `DELETE FROM conversations WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func scanConversation(row pgx.Row) (*Conversation, error) {
	var (
		conv  Conversation
		owner *string
	)
	if err := row.Scan(
		&conv.ID, &conv.AgentID, &conv.UserID, &owner,
		&conv.AgentName, &conv.BusinessName,
		&conv.StartedAt, &conv.EndedAt, &conv.DurationSeconds,
		&conv.Summary, &conv.Sentiment, &conv.MessageCount,
	); err != nil {
		return nil, err
	}
	if owner != nil {
		conv.OwnerID = *owner
	}
	return &conv, nil
}

func collectMessages(rows pgx.Rows, conversationID string) ([]Message, error) {
	defer rows.Close()
	var out []Message
	for rows.Next() {
		var (
			msg  Message
			role string
		)
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("conversation: scan message: %w", err)
		}
		msg.Role = Role(role)
		msg.ConversationID = conversationID
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("conversation: message rows: %w", err)
	}
	return out, nil
}
