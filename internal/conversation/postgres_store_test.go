package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/wolfman30/sales-call-agent/internal/apperr"
)

const testConvID = "4f6b7d2e-9a51-4c1b-8f0e-2d6a1b3c5e70"

func newMockStore(t *testing.T) (pgxmock.PgxPoolIface, *PostgresStore) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock, NewPostgresStore(mock)
}

func TestPostgresStore_CreateWritesConversationMetadataAndGreeting(t *testing.T) {
	mock, store := newMockStore(t)
	started := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	userID := "user-1"

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO conversations`).
		WithArgs(testConvID, (*string)(nil), &userID, started, 1).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO conversation_metadata`).
		WithArgs(testConvID, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO conversation_messages`).
		WithArgs(testConvID, "agent", DefaultGreeting).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	conv, err := store.Create(context.Background(), NewConversation{
		ID:        testConvID,
		UserID:    &userID,
		StartedAt: started,
		Metadata:  Metadata{MetaStartTime: started.Format(time.RFC3339Nano), MetaBusinessName: "Digital Lab"},
		Greeting:  DefaultGreeting,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if conv.MessageCount != 1 || conv.OwnerID != userID || conv.BusinessName != "Digital Lab" {
		t.Fatalf("unexpected conversation %#v", conv)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresStore_CreateRollsBackWhenMetadataFails(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO conversations`).
		WithArgs(testConvID, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), 1).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO conversation_metadata`).
		WithArgs(testConvID, pgxmock.AnyArg()).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := store.Create(context.Background(), NewConversation{ID: testConvID, Metadata: Metadata{}, Greeting: DefaultGreeting})
	if err == nil || !strings.Contains(err.Error(), "insert metadata failed") {
		t.Fatalf("expected metadata failure, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresStore_AppendTurnCommitsPair(t *testing.T) {
	mock, store := newMockStore(t)
	at := time.Date(2026, 2, 1, 9, 0, 1, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT message_count FROM conversations WHERE id = \$1 FOR UPDATE`).
		WithArgs(testConvID).
		WillReturnRows(pgxmock.NewRows([]string{"message_count"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO conversation_messages`).
		WithArgs(testConvID, "user", "hi").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(2), at))
	mock.ExpectQuery(`INSERT INTO conversation_messages`).
		WithArgs(testConvID, "agent", "hello!").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(3), at))
	mock.ExpectExec(`UPDATE conversations SET message_count = message_count \+ 2`).
		WithArgs(testConvID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	pair, err := store.AppendTurn(context.Background(), testConvID, "hi", "hello!")
	if err != nil {
		t.Fatalf("AppendTurn: %v", err)
	}
	if len(pair) != 2 || pair[0].ID != 2 || pair[1].ID != 3 || pair[1].Role != RoleAgent {
		t.Fatalf("unexpected pair %#v", pair)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresStore_AppendTurnRollsBackWhenReplyInsertFails(t *testing.T) {
	mock, store := newMockStore(t)
	at := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(testConvID).
		WillReturnRows(pgxmock.NewRows([]string{"message_count"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO conversation_messages`).
		WithArgs(testConvID, "user", "hi").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(2), at))
	mock.ExpectQuery(`INSERT INTO conversation_messages`).
		WithArgs(testConvID, "agent", "hello!").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	if _, err := store.AppendTurn(context.Background(), testConvID, "hi", "hello!"); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("user turn must be rolled back with the reply: %v", err)
	}
}

func TestPostgresStore_AppendTurnUnknownConversation(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).
		WithArgs(testConvID).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	_, err := store.AppendTurn(context.Background(), testConvID, "hi", "hello")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPostgresStore_MessagesPreserveOrder(t *testing.T) {
	mock, store := newMockStore(t)
	at := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"id", "role", "content", "created_at"}).
		AddRow(int64(1), "agent", "m1", at).
		AddRow(int64(2), "user", "m2", at).
		AddRow(int64(3), "agent", "m3", at).
		AddRow(int64(4), "user", "m4", at.Add(time.Second))
	mock.ExpectQuery(`ORDER BY created_at ASC, id ASC`).
		WithArgs(testConvID).
		WillReturnRows(rows)

	msgs, err := store.Messages(context.Background(), testConvID)
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	for i, want := range []string{"m1", "m2", "m3", "m4"} {
		if msgs[i].Content != want {
			t.Fatalf("message %d = %q, want %q", i, msgs[i].Content, want)
		}
		if msgs[i].ConversationID != testConvID {
			t.Fatalf("conversation id not set")
		}
	}
}

func TestPostgresStore_RecentMessagesLimit(t *testing.T) {
	mock, store := newMockStore(t)
	at := time.Now().UTC()

	mock.ExpectQuery(`LIMIT \$2`).
		WithArgs(testConvID, 10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "role", "content", "created_at"}).
			AddRow(int64(7), "user", "latest", at))

	msgs, err := store.RecentMessages(context.Background(), testConvID, 10)
	if err != nil {
		t.Fatalf("RecentMessages: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Role != RoleUser {
		t.Fatalf("unexpected messages %#v", msgs)
	}
}

func TestPostgresStore_GetScansConversation(t *testing.T) {
	mock, store := newMockStore(t)
	started := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	agentID := "agent-1"
	owner := "owner-1"
	duration := 30
	summary := "good call"

	mock.ExpectQuery(`FROM conversations c`).
		WithArgs(testConvID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "agent_id", "user_id", "owner", "agent_name", "business_name",
			"started_at", "ended_at", "duration_seconds", "summary", "sentiment", "message_count",
		}).AddRow(testConvID, &agentID, nil, &owner, "Sam", "Acme", started, &started, &duration, &summary, nil, 5))

	conv, err := store.Get(context.Background(), testConvID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if conv.OwnerID != owner || conv.AgentID == nil || *conv.AgentID != agentID {
		t.Fatalf("ownership not scanned: %#v", conv)
	}
	if conv.UserID != nil || conv.Sentiment != nil {
		t.Fatalf("expected NULL columns to stay nil")
	}
	if conv.DurationSeconds == nil || *conv.DurationSeconds != 30 || conv.MessageCount != 5 {
		t.Fatalf("unexpected conversation %#v", conv)
	}
}

func TestPostgresStore_GetInvalidIDIsNotFound(t *testing.T) {
	_, store := newMockStore(t)
	if _, err := store.Get(context.Background(), "not-a-uuid"); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPostgresStore_MetadataMissing(t *testing.T) {
	mock, store := newMockStore(t)
	mock.ExpectQuery(`SELECT data FROM conversation_metadata`).
		WithArgs(testConvID).
		WillReturnError(pgx.ErrNoRows)

	if _, err := store.Metadata(context.Background(), testConvID); !errors.Is(err, ErrMetadataMissing) {
		t.Fatalf("expected metadata missing, got %v", err)
	}
}

func TestPostgresStore_MetadataDecodes(t *testing.T) {
	mock, store := newMockStore(t)
	mock.ExpectQuery(`SELECT data FROM conversation_metadata`).
		WithArgs(testConvID).
		WillReturnRows(pgxmock.NewRows([]string{"data"}).
			AddRow([]byte(`{"system_instruction":"You are Sam.","start_time":"2026-02-01T09:00:00Z"}`)))

	meta, err := store.Metadata(context.Background(), testConvID)
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if meta.SystemInstruction() != "You are Sam." {
		t.Fatalf("unexpected instruction %q", meta.SystemInstruction())
	}
	if _, ok := meta.StartTime(); !ok {
		t.Fatalf("start time not parsed")
	}
}

func TestPostgresStore_FinishIsIdempotent(t *testing.T) {
	mock, store := newMockStore(t)
	ended := time.Now().UTC()
	stored := 61

	mock.ExpectQuery(`UPDATE conversations SET ended_at`).
		WithArgs(testConvID, ended, 90).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`SELECT duration_seconds FROM conversations`).
		WithArgs(testConvID).
		WillReturnRows(pgxmock.NewRows([]string{"duration_seconds"}).AddRow(&stored))

	got, err := store.Finish(context.Background(), testConvID, ended, 90)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if got != 61 {
		t.Fatalf("expected stored duration 61, got %d", got)
	}
}

func TestPostgresStore_ListScopesToOwner(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectQuery(`COALESCE\(a.user_id, c.user_id\) = \$1 AND c.agent_id = \$2\s+ORDER BY c.started_at DESC LIMIT \$3`).
		WithArgs("owner-1", "agent-1", 25).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "agent_id", "user_id", "owner", "agent_name", "business_name",
			"started_at", "ended_at", "duration_seconds", "summary", "sentiment", "message_count",
		}))

	out, err := store.List(context.Background(), Filter{OwnerID: "owner-1", AgentID: "agent-1", Limit: 25})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty list")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}

	none, err := store.List(context.Background(), Filter{})
	if err != nil || none != nil {
		t.Fatalf("anonymous filter must match nothing: %v %v", none, err)
	}
}

func TestPostgresStore_DeleteAndSummaryNotFound(t *testing.T) {
	mock, store := newMockStore(t)

	mock.ExpectExec(`UPDATE conversations SET summary`).
		WithArgs(testConvID, "s", "neutral").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectExec(`DELETE FROM conversations`).
		WithArgs(testConvID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := store.SaveSummary(context.Background(), testConvID, "s", "neutral"); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("SaveSummary: expected not found, got %v", err)
	}
	if err := store.Delete(context.Background(), testConvID); !errors.Is(err, ErrConversationNotFound) {
		t.Fatalf("Delete: expected not found, got %v", err)
	}
}
