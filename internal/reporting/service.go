// Package reporting aggregates call statistics for users and admins.
package reporting

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/wolfman30/sales-call-agent/internal/agents"
	"github.com/wolfman30/sales-call-agent/internal/apperr"
	"github.com/wolfman30/sales-call-agent/internal/tenancy"
	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

// Statistics summarizes a set of conversations.
type Statistics struct {
	TotalCalls      int     `json:"total_calls"`
	AverageDuration float64 `json:"average_duration"`
	TotalMessages   int     `json:"total_messages"`
	LeadsCount      int     `json:"leads_count"`
}

// SystemStats are the admin-wide totals.
type SystemStats struct {
	TotalUsers  int `json:"total_users"`
	TotalAgents int `json:"total_agents"`
	TotalCalls  int `json:"total_calls"`
	TotalLeads  int `json:"total_leads"`
}

// UserSummary is one row of the admin user list.
type UserSummary struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Role        string     `json:"role"`
	IsVerified  bool       `json:"is_verified"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	AgentCount  int        `json:"agent_count"`
}

// Scope selects the conversations to aggregate. AgentID wins when set;
// otherwise OwnerID matches conversations on the user's agents plus the ones
// they started.
type Scope struct {
	AgentID string
	OwnerID string
}

// Source computes aggregates over stored data.
type Source interface {
	Statistics(ctx context.Context, scope Scope) (Statistics, error)
	SystemStats(ctx context.Context) (SystemStats, error)
	Users(ctx context.Context) ([]UserSummary, error)
}

// AgentLookup resolves an agent without ownership checks.
type AgentLookup interface {
	Lookup(ctx context.Context, id string) (*agents.Agent, error)
}

// Service applies ownership rules on top of a Source.
type Service struct {
	source Source
	agents AgentLookup
	logger *logging.Logger
}

func NewService(source Source, agentLookup AgentLookup, logger *logging.Logger) *Service {
	if source == nil {
		panic("reporting: source cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{source: source, agents: agentLookup, logger: logger}
}

// Statistics returns the requester's numbers, optionally narrowed to one
// agent they own.
func (s *Service) Statistics(ctx context.Context, requester tenancy.Principal, agentID string) (*Statistics, error) {
	scope := Scope{OwnerID: requester.UserID}
	if agentID = strings.TrimSpace(agentID); agentID != "" {
		if s.agents == nil {
			return nil, agents.ErrAgentNotFound
		}
		a, err := s.agents.Lookup(ctx, agentID)
		if err != nil {
			return nil, err
		}
		if !requester.CanAccess(a.OwnerID) {
			return nil, agents.ErrForbidden
		}
		scope = Scope{AgentID: agentID}
	}

	stats, err := s.source.Statistics(ctx, scope)
	if err != nil {
		s.logger.Error("statistics query failed", "user_id", requester.UserID, "agent_id", agentID, "error", err)
		return nil, apperr.Internal(err)
	}
	stats.AverageDuration = round2(stats.AverageDuration)
	return &stats, nil
}

// SystemStats returns platform totals. Admins only.
func (s *Service) SystemStats(ctx context.Context, requester tenancy.Principal) (*SystemStats, error) {
	if !requester.IsAdmin() {
		return nil, ErrAdminOnly
	}
	stats, err := s.source.SystemStats(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &stats, nil
}

// Users lists every account with its agent count. Admins only.
func (s *Service) Users(ctx context.Context, requester tenancy.Principal) ([]UserSummary, error) {
	if !requester.IsAdmin() {
		return nil, ErrAdminOnly
	}
	users, err := s.source.Users(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if users == nil {
		users = []UserSummary{}
	}
	return users, nil
}

// ErrAdminOnly guards the admin reports.
var ErrAdminOnly = apperr.New(apperr.KindForbidden, "Admin access required")

// IsLead reports whether a sentiment label marks the call as a lead.
func IsLead(sentiment string) bool {
	return strings.Contains(strings.ToLower(sentiment), "positive")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
