package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/sales-call-agent/internal/apperr"
	"github.com/wolfman30/sales-call-agent/internal/tenancy"
	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

// Persona is the saved agent a call runs against.
type Persona struct {
	AgentID           string
	OwnerID           string
	AgentName         string
	BusinessName      string
	SystemInstruction string
	Greeting          string
}

// AgentDirectory resolves saved agents without ownership checks.
type AgentDirectory interface {
	Persona(ctx context.Context, agentID string) (*Persona, error)
	// LatestPersona returns the owner's newest agent, or nil when they have none.
	LatestPersona(ctx context.Context, ownerID string) (*Persona, error)
}

// Archiver receives a full conversation before it is deleted.
type Archiver interface {
	Enabled() bool
	ArchiveConversation(ctx context.Context, detail *Detail) error
}

// StartResult is returned when a call begins.
type StartResult struct {
	ConversationID string `json:"conversation_id"`
	Greeting       string `json:"greeting"`
}

// EndResult is returned when a call ends.
type EndResult struct {
	ConversationID  string `json:"conversation_id"`
	DurationSeconds int    `json:"duration"`
}

// Service drives the call lifecycle around the engine.
type Service struct {
	store    Store
	engine   *Engine
	agents   AgentDirectory
	archiver Archiver
	logger   *logging.Logger
	now      func() time.Time
	newID    func() string
}

type ServiceOption func(*Service)

func WithArchiver(a Archiver) ServiceOption {
	return func(s *Service) { s.archiver = a }
}

func WithServiceLogger(l *logging.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService builds the lifecycle service. agents may be nil when saved
// agents are not available.
func NewService(store Store, engine *Engine, agents AgentDirectory, opts ...ServiceOption) *Service {
	if store == nil || engine == nil {
		panic("conversation: store and engine are required")
	}
	s := &Service{
		store:  store,
		engine: engine,
		agents: agents,
		logger: logging.Default(),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartCall creates a conversation and returns the opening line. principal is
// nil for anonymous callers.
func (s *Service) StartCall(ctx context.Context, principal *tenancy.Principal, agentID string) (*StartResult, error) {
	agentID = strings.TrimSpace(agentID)
	persona, err := s.resolvePersona(ctx, principal, agentID)
	if err != nil {
		return nil, err
	}

	started := s.now().UTC()
	nc := NewConversation{
		ID:        s.newID(),
		StartedAt: started,
		Metadata: Metadata{
			MetaStartTime:         started.Format(time.RFC3339Nano),
			MetaSystemInstruction: DefaultSystemInstruction,
			MetaGreeting:          DefaultGreeting,
			MetaBusinessName:      DefaultBusinessName,
		},
		Greeting: DefaultGreeting,
	}
	if principal != nil {
		uid := principal.UserID
		nc.UserID = &uid
	}
	if persona != nil {
		aid := persona.AgentID
		nc.AgentID = &aid
		nc.Metadata[MetaAgentID] = aid
		if persona.SystemInstruction != "" {
			nc.Metadata[MetaSystemInstruction] = persona.SystemInstruction
		}
		if persona.Greeting != "" {
			nc.Metadata[MetaGreeting] = persona.Greeting
			nc.Greeting = persona.Greeting
		}
		if persona.BusinessName != "" {
			nc.Metadata[MetaBusinessName] = persona.BusinessName
		}
	}

	conv, err := s.store.Create(ctx, nc)
	if err != nil {
		s.logger.Error("failed to create conversation", "error", err)
		return nil, classifyStoreErr(err)
	}
	s.logger.Info("call started",
		"conversation_id", conv.ID,
		"agent_id", nc.Metadata[MetaAgentID],
		"authenticated", principal != nil,
	)
	return &StartResult{ConversationID: conv.ID, Greeting: nc.Greeting}, nil
}

func (s *Service) resolvePersona(ctx context.Context, principal *tenancy.Principal, agentID string) (*Persona, error) {
	if agentID != "" {
		if principal == nil {
			return nil, ErrLoginRequired
		}
		if s.agents == nil {
			return nil, apperr.New(apperr.KindNotFound, "agent not found")
		}
		persona, err := s.agents.Persona(ctx, agentID)
		if err != nil {
			return nil, err
		}
		if !principal.CanAccess(persona.OwnerID) {
			return nil, apperr.New(apperr.KindForbidden, "you do not have access to this agent")
		}
		return persona, nil
	}
	if principal == nil || s.agents == nil {
		return nil, nil
	}
	persona, err := s.agents.LatestPersona(ctx, principal.UserID)
	if err != nil {
		s.logger.Warn("latest agent lookup failed, using default persona", "user_id", principal.UserID, "error", err)
		return nil, nil
	}
	return persona, nil
}

// SendMessage answers one caller turn.
func (s *Service) SendMessage(ctx context.Context, conversationID, text string) (*Reply, error) {
	return s.engine.ProduceReply(ctx, conversationID, text)
}

// EndCall stamps the end of the call. Ending twice returns the stored duration.
func (s *Service) EndCall(ctx context.Context, conversationID string) (*EndResult, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, ErrMissingConversation
	}
	conv, err := s.store.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.EndedAt != nil && conv.DurationSeconds != nil {
		return &EndResult{ConversationID: conv.ID, DurationSeconds: *conv.DurationSeconds}, nil
	}

	meta, err := s.store.Metadata(ctx, conversationID)
	if err != nil {
		return nil, classifyStoreErr(err)
	}
	start, ok := meta.StartTime()
	if !ok {
		start = conv.StartedAt
	}
	ended := s.now().UTC()
	duration := int(ended.Sub(start) / time.Second)
	if duration < 0 {
		duration = 0
	}

	stored, err := s.store.Finish(ctx, conversationID, ended, duration)
	if err != nil {
		return nil, classifyStoreErr(err)
	}
	s.logger.Info("call ended", "conversation_id", conversationID, "duration_seconds", stored)
	return &EndResult{ConversationID: conversationID, DurationSeconds: stored}, nil
}

func (s *Service) Summarize(ctx context.Context, conversationID string) (*Summary, error) {
	return s.engine.Summarize(ctx, conversationID)
}

// List returns the conversations visible to the principal.
func (s *Service) List(ctx context.Context, principal tenancy.Principal, agentID string, limit int) ([]Conversation, error) {
	filter := Filter{OwnerID: principal.UserID, AgentID: strings.TrimSpace(agentID), All: principal.IsAdmin(), Limit: limit}
	out, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, classifyStoreErr(err)
	}
	if out == nil {
		out = []Conversation{}
	}
	return out, nil
}

// Get returns the conversation with its ordered messages.
func (s *Service) Get(ctx context.Context, principal tenancy.Principal, id string) (*Detail, error) {
	conv, err := s.authorize(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	msgs, err := s.store.Messages(ctx, id)
	if err != nil {
		return nil, classifyStoreErr(err)
	}
	if msgs == nil {
		msgs = []Message{}
	}
	return &Detail{Conversation: *conv, Messages: msgs}, nil
}

// Delete removes a conversation, archiving it first when archiving is on.
func (s *Service) Delete(ctx context.Context, principal tenancy.Principal, id string) error {
	detail, err := s.Get(ctx, principal, id)
	if err != nil {
		return err
	}
	if s.archiver != nil && s.archiver.Enabled() {
		if err := s.archiver.ArchiveConversation(ctx, detail); err != nil {
			s.logger.Error("archive before delete failed", "conversation_id", id, "error", err)
			return apperr.Internal(err)
		}
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return classifyStoreErr(err)
	}
	s.logger.Info("conversation deleted", "conversation_id", id, "user_id", principal.UserID)
	return nil
}

// Export renders the conversation as a plain-text transcript.
func (s *Service) Export(ctx context.Context, principal tenancy.Principal, id string) (string, error) {
	detail, err := s.Get(ctx, principal, id)
	if err != nil {
		return "", err
	}
	return RenderExport(detail), nil
}

func (s *Service) authorize(ctx context.Context, principal tenancy.Principal, id string) (*Conversation, error) {
	conv, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, classifyStoreErr(err)
	}
	if !principal.CanAccess(conv.OwnerID) {
		return nil, ErrForbidden
	}
	return conv, nil
}
