package reporting

import (
	"context"
	"sort"

	"github.com/wolfman30/sales-call-agent/internal/agents"
	"github.com/wolfman30/sales-call-agent/internal/auth"
	"github.com/wolfman30/sales-call-agent/internal/conversation"
)

type conversationLister interface {
	List(ctx context.Context, filter conversation.Filter) ([]conversation.Conversation, error)
}

type userLister interface {
	All(ctx context.Context) []auth.User
}

type agentLister interface {
	All(ctx context.Context) []agents.Agent
}

// MemorySource aggregates the in-memory repositories in Go.
type MemorySource struct {
	conversations conversationLister
	users         userLister
	agents        agentLister
}

func NewMemorySource(conversations conversationLister, users userLister, agentList agentLister) *MemorySource {
	return &MemorySource{conversations: conversations, users: users, agents: agentList}
}

func (s *MemorySource) Statistics(ctx context.Context, scope Scope) (Statistics, error) {
	all, err := s.conversations.List(ctx, conversation.Filter{All: true})
	if err != nil {
		return Statistics{}, err
	}

	var owned map[string]bool
	if scope.AgentID == "" {
		owned = map[string]bool{}
		for _, a := range s.agents.All(ctx) {
			if a.OwnerID == scope.OwnerID {
				owned[a.ID] = true
			}
		}
	}

	var (
		out       Statistics
		durations int
		timed     int
	)
	for _, c := range all {
		if !inScope(c, scope, owned) {
			continue
		}
		out.TotalCalls++
		out.TotalMessages += c.MessageCount
		if c.DurationSeconds != nil {
			durations += *c.DurationSeconds
			timed++
		}
		if c.Sentiment != nil && IsLead(*c.Sentiment) {
			out.LeadsCount++
		}
	}
	if timed > 0 {
		out.AverageDuration = float64(durations) / float64(timed)
	}
	return out, nil
}

func inScope(c conversation.Conversation, scope Scope, owned map[string]bool) bool {
	if scope.AgentID != "" {
		return c.AgentID != nil && *c.AgentID == scope.AgentID
	}
	if c.AgentID != nil && owned[*c.AgentID] {
		return true
	}
	return c.UserID != nil && *c.UserID == scope.OwnerID && scope.OwnerID != ""
}

func (s *MemorySource) SystemStats(ctx context.Context) (SystemStats, error) {
	all, err := s.conversations.List(ctx, conversation.Filter{All: true})
	if err != nil {
		return SystemStats{}, err
	}
	out := SystemStats{
		TotalUsers:  len(s.users.All(ctx)),
		TotalAgents: len(s.agents.All(ctx)),
		TotalCalls:  len(all),
	}
	for _, c := range all {
		if c.Sentiment != nil && IsLead(*c.Sentiment) {
			out.TotalLeads++
		}
	}
	return out, nil
}

func (s *MemorySource) Users(ctx context.Context) ([]UserSummary, error) {
	counts := map[string]int{}
	for _, a := range s.agents.All(ctx) {
		counts[a.OwnerID]++
	}
	users := s.users.All(ctx)
	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, UserSummary{
			ID:          u.ID,
			Email:       u.Email,
			FullName:    u.FullName,
			Role:        u.Role,
			IsVerified:  u.IsVerified,
			CreatedAt:   u.CreatedAt,
			LastLoginAt: u.LastLoginAt,
			AgentCount:  counts[u.ID],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
