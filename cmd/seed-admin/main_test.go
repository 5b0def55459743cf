package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"

	"github.com/wolfman30/sales-call-agent/internal/auth"
	appconfig "github.com/wolfman30/sales-call-agent/internal/config"
	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	if !confirm(strings.NewReader("DELETE ALL\n"), &out) {
		t.Fatal("expected exact phrase to confirm")
	}
	if confirm(strings.NewReader("yes\n"), &out) {
		t.Fatal("expected other input to cancel")
	}
	if confirm(strings.NewReader(""), &out) {
		t.Fatal("expected empty input to cancel")
	}
	if !strings.Contains(out.String(), "Type 'DELETE ALL'") {
		t.Fatalf("prompt missing: %q", out.String())
	}
}

func TestResetData(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`TRUNCATE conversation_metadata, conversation_messages, conversations, agents, users`).
		WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))
	if err := resetData(context.Background(), mock); err != nil {
		t.Fatalf("resetData: %v", err)
	}

	mock.ExpectExec(`TRUNCATE`).WillReturnError(errors.New("permission denied"))
	if err := resetData(context.Background(), mock); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestEnsureAdminOutput(t *testing.T) {
	users := auth.NewMemoryUserRepository()
	svc, err := newAuthService(&appconfig.Config{SessionTTL: time.Hour, BcryptCost: 4}, users, logging.Discard())
	if err != nil {
		t.Fatalf("newAuthService: %v", err)
	}
	opts := &options{email: "admin@example.com", password: "admin-password-1", fullName: "Admin"}

	var out bytes.Buffer
	if err := ensureAdmin(context.Background(), svc, opts, &out); err != nil {
		t.Fatalf("ensureAdmin: %v", err)
	}
	if !strings.HasPrefix(out.String(), "Created admin account admin@example.com") {
		t.Fatalf("unexpected output %q", out.String())
	}

	out.Reset()
	if err := ensureAdmin(context.Background(), svc, opts, &out); err != nil {
		t.Fatalf("ensureAdmin again: %v", err)
	}
	if !strings.HasPrefix(out.String(), "Promoted existing account") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestRunRequiresCredentials(t *testing.T) {
	err := run(context.Background(), &options{email: "a@b.c"}, strings.NewReader(""), &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "required") {
		t.Fatalf("expected credentials error, got %v", err)
	}
}
