package agents

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/sales-call-agent/internal/apperr"
	"github.com/wolfman30/sales-call-agent/internal/tenancy"
	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

// DeleteHook runs after an agent is removed, e.g. to detach conversations
// held outside Postgres.
type DeleteHook func(ctx context.Context, agentID string) error

// Service manages agents with ownership checks.
type Service struct {
	repo     Repository
	logger   *logging.Logger
	now      func() time.Time
	onDelete []DeleteHook
}

type Option func(*Service)

func WithLogger(l *logging.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithDeleteHook(h DeleteHook) Option {
	return func(s *Service) {
		if h != nil {
			s.onDelete = append(s.onDelete, h)
		}
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	if repo == nil {
		panic("agents: repository cannot be nil")
	}
	s := &Service{repo: repo, logger: logging.Default(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates the input, renders the persona and stores a new agent.
func (s *Service) Create(ctx context.Context, ownerID string, in Input) (*Agent, error) {
	if ownerID == "" {
		return nil, apperr.New(apperr.KindUnauthorized, "authentication required")
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	prompt, greeting, err := RenderPersona(in)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	now := s.now().UTC()
	a := &Agent{
		ID:           uuid.NewString(),
		OwnerID:      ownerID,
		AgentName:    in.AgentName,
		BusinessName: in.BusinessName,
		Industry:     in.Industry,
		Services:     in.Services,
		Tone:         in.Tone,
		CallGoal:     in.CallGoal,
		SystemPrompt: prompt,
		Greeting:     greeting,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, a); err != nil {
		return nil, apperr.Internal(err)
	}
	s.logger.Info("agent created", "agent_id", a.ID, "user_id", ownerID, "business_name", a.BusinessName)
	return a, nil
}

// List returns the owner's agents, newest first.
func (s *Service) List(ctx context.Context, ownerID string) ([]Agent, error) {
	out, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

// Get returns an agent the requester owns.
func (s *Service) Get(ctx context.Context, requester tenancy.Principal, id string) (*Agent, error) {
	a, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requester.CanAccess(a.OwnerID) {
		return nil, ErrForbidden
	}
	return a, nil
}

// Update replaces the editable fields and re-renders the persona.
func (s *Service) Update(ctx context.Context, requester tenancy.Principal, id string, in Input) (*Agent, error) {
	a, err := s.Get(ctx, requester, id)
	if err != nil {
		return nil, err
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	prompt, greeting, err := RenderPersona(in)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	a.AgentName = in.AgentName
	a.BusinessName = in.BusinessName
	a.Industry = in.Industry
	a.Services = in.Services
	a.Tone = in.Tone
	a.CallGoal = in.CallGoal
	a.SystemPrompt = prompt
	a.Greeting = greeting
	a.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, classify(err)
	}
	s.logger.Info("agent updated", "agent_id", a.ID, "user_id", requester.UserID)
	return a, nil
}

// Delete removes an agent the requester owns. Conversations keep their
// history with the agent reference cleared.
func (s *Service) Delete(ctx context.Context, requester tenancy.Principal, id string) error {
	if _, err := s.Get(ctx, requester, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return classify(err)
	}
	for _, hook := range s.onDelete {
		if err := hook(ctx, id); err != nil {
			s.logger.Warn("agent delete hook failed", "agent_id", id, "error", err)
		}
	}
	s.logger.Info("agent deleted", "agent_id", id, "user_id", requester.UserID)
	return nil
}

// Lookup fetches an agent without ownership checks.
func (s *Service) Lookup(ctx context.Context, id string) (*Agent, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, classify(err)
	}
	return a, nil
}

// Latest returns the owner's newest agent, or nil when they have none.
func (s *Service) Latest(ctx context.Context, ownerID string) (*Agent, error) {
	a, err := s.repo.Latest(ctx, ownerID)
	if errors.Is(err, ErrAgentNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return a, nil
}

func classify(err error) error {
	var typed *apperr.Error
	if errors.As(err, &typed) {
		return err
	}
	return apperr.Internal(err)
}
