package agents

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wolfman30/sales-call-agent/internal/apperr"
	"github.com/wolfman30/sales-call-agent/internal/tenancy"
	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

func validInput() Input {
	return Input{
		BusinessName: "Acme Roofing",
		Industry:     "Home Services",
		Services:     "Roof repair, gutter cleaning",
		Tone:         "Warm",
	}
}

func newTestService(t *testing.T, opts ...Option) (*Service, *MemoryRepository, *time.Time) {
	t.Helper()
	repo := NewMemoryRepository()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	opts = append([]Option{
		WithLogger(logging.Discard()),
		WithClock(func() time.Time { return now }),
	}, opts...)
	return NewService(repo, opts...), repo, &now
}

func TestCreate_RendersPersona(t *testing.T) {
	svc, _, _ := newTestService(t)

	a, err := svc.Create(context.Background(), "owner", validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.AgentName != "Alex" || a.CallGoal != "Book a consultation" {
		t.Fatalf("defaults not applied: %#v", a)
	}
	if a.Greeting != "Hello! This is Alex calling from Acme Roofing. How are you doing today?" {
		t.Fatalf("unexpected greeting %q", a.Greeting)
	}
	if !strings.HasPrefix(a.SystemPrompt, "You are Alex, a friendly AI representative for Acme Roofing, a company in the Home Services industry.") {
		t.Fatalf("unexpected prompt %q", a.SystemPrompt)
	}
	for _, want := range []string{"Your Goal: Book a consultation", "Roof repair, gutter cleaning", "Tone: Warm", "1. Always stay in character as Alex."} {
		if !strings.Contains(a.SystemPrompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}

	again, _, _ := RenderPersona(validInput().Normalize())
	if again != a.SystemPrompt {
		t.Fatalf("rendering must be deterministic")
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	cases := map[string]Input{
		"missing business":    {Industry: "x", Services: "y"},
		"missing industry":    {BusinessName: "x", Services: "y"},
		"missing services":    {BusinessName: "x", Industry: "y", Services: "   "},
		"business too long":   {BusinessName: strings.Repeat("b", 121), Industry: "x", Services: "y"},
		"services too long":   {BusinessName: "b", Industry: "x", Services: strings.Repeat("s", 2001)},
		"agent name too long": {BusinessName: "b", Industry: "x", Services: "y", AgentName: strings.Repeat("é", 61)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), "owner", in); !errors.Is(err, apperr.ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
		})
	}

	ok := validInput()
	ok.AgentName = strings.Repeat("é", 60)
	if _, err := svc.Create(context.Background(), "owner", ok); err != nil {
		t.Fatalf("60 runes should be accepted: %v", err)
	}
}

func TestDelete_NonOwnerForbiddenAndAgentRemains(t *testing.T) {
	svc, repo, _ := newTestService(t)
	a, _ := svc.Create(context.Background(), "owner", validInput())

	err := svc.Delete(context.Background(), tenancy.Principal{UserID: "mallory"}, a.ID)
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := repo.Get(context.Background(), a.ID); err != nil {
		t.Fatalf("agent should remain after forbidden delete: %v", err)
	}
}

func TestDelete_OwnerRunsHooks(t *testing.T) {
	var detached []string
	svc, repo, _ := newTestService(t, WithDeleteHook(func(ctx context.Context, id string) error {
		detached = append(detached, id)
		return nil
	}))
	a, _ := svc.Create(context.Background(), "owner", validInput())

	if err := svc.Delete(context.Background(), tenancy.Principal{UserID: "owner"}, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(context.Background(), a.ID); !errors.Is(err, ErrAgentNotFound) {
		t.Fatalf("expected agent gone, got %v", err)
	}
	if len(detached) != 1 || detached[0] != a.ID {
		t.Fatalf("delete hook not run: %v", detached)
	}
	if err := svc.Delete(context.Background(), tenancy.Principal{UserID: "owner"}, a.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestGetUpdateOwnership(t *testing.T) {
	svc, _, now := newTestService(t)
	a, _ := svc.Create(context.Background(), "owner", validInput())

	if _, err := svc.Get(context.Background(), tenancy.Principal{UserID: "other"}, a.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.Get(context.Background(), tenancy.Principal{UserID: "root", Role: tenancy.RoleAdmin}, a.ID); err != nil {
		t.Fatalf("admin get: %v", err)
	}

	*now = now.Add(time.Hour)
	in := validInput()
	in.AgentName = "Sam"
	updated, err := svc.Update(context.Background(), tenancy.Principal{UserID: "owner"}, a.ID, in)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !strings.HasPrefix(updated.Greeting, "Hello! This is Sam calling") {
		t.Fatalf("greeting not re-rendered: %q", updated.Greeting)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatalf("updated_at not bumped")
	}
}

func TestListAndLatest(t *testing.T) {
	svc, _, now := newTestService(t)
	first, _ := svc.Create(context.Background(), "owner", validInput())
	*now = now.Add(time.Minute)
	second, _ := svc.Create(context.Background(), "owner", validInput())
	_, _ = svc.Create(context.Background(), "someone-else", validInput())

	list, err := svc.List(context.Background(), "owner")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("expected newest first, got %#v", list)
	}

	latest, err := svc.Latest(context.Background(), "owner")
	if err != nil || latest.ID != second.ID {
		t.Fatalf("Latest = %v, %v", latest, err)
	}
	none, err := svc.Latest(context.Background(), "nobody")
	if err != nil || none != nil {
		t.Fatalf("expected nil latest for user without agents, got %v %v", none, err)
	}

	dir := NewDirectory(svc)
	persona, err := dir.Persona(context.Background(), first.ID)
	if err != nil || persona.SystemInstruction != first.SystemPrompt || persona.OwnerID != "owner" {
		t.Fatalf("persona = %#v, %v", persona, err)
	}
}
