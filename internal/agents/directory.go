package agents

import (
	"context"

	"github.com/wolfman30/sales-call-agent/internal/conversation"
)

var _ conversation.AgentDirectory = (*Directory)(nil)

// Directory exposes saved agents to the call lifecycle.
type Directory struct {
	service *Service
}

func NewDirectory(service *Service) *Directory {
	return &Directory{service: service}
}

func (d *Directory) Persona(ctx context.Context, agentID string) (*conversation.Persona, error) {
	a, err := d.service.Lookup(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return toPersona(a), nil
}

func (d *Directory) LatestPersona(ctx context.Context, ownerID string) (*conversation.Persona, error) {
	a, err := d.service.Latest(ctx, ownerID)
	if err != nil || a == nil {
		return nil, err
	}
	return toPersona(a), nil
}

func toPersona(a *Agent) *conversation.Persona {
	return &conversation.Persona{
		AgentID:           a.ID,
		OwnerID:           a.OwnerID,
		AgentName:         a.AgentName,
		BusinessName:      a.BusinessName,
		SystemInstruction: a.SystemPrompt,
		Greeting:          a.Greeting,
	}
}
