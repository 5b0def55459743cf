package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/sales-call-agent/internal/agents"
	"github.com/wolfman30/sales-call-agent/internal/apperr"
	"github.com/wolfman30/sales-call-agent/internal/auth"
	"github.com/wolfman30/sales-call-agent/internal/conversation"
	"github.com/wolfman30/sales-call-agent/internal/tenancy"
	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

type fixture struct {
	convs   *conversation.MemoryStore
	users   *auth.MemoryUserRepository
	agents  *agents.MemoryRepository
	service *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		convs:  conversation.NewMemoryStore(),
		users:  auth.NewMemoryUserRepository(),
		agents: agents.NewMemoryRepository(),
	}
	f.service = NewService(NewMemorySource(f.convs, f.users, f.agents), repoLookup{f.agents}, logging.Discard())
	return f
}

type repoLookup struct{ repo *agents.MemoryRepository }

func (l repoLookup) Lookup(ctx context.Context, id string) (*agents.Agent, error) {
	return l.repo.Get(ctx, id)
}

func strPtr(s string) *string { return &s }

func (f *fixture) call(t *testing.T, agentID, userID string, turns, duration int, sentiment string) {
	t.Helper()
	ctx := context.Background()
	nc := conversation.NewConversation{Greeting: "Hello!"}
	if agentID != "" {
		nc.AgentID = strPtr(agentID)
	}
	if userID != "" {
		nc.UserID = strPtr(userID)
	}
	c, err := f.convs.Create(ctx, nc)
	require.NoError(t, err)
	for i := 0; i < turns; i++ {
		_, err := f.convs.AppendTurn(ctx, c.ID, "hi", "hello")
		require.NoError(t, err)
	}
	if duration >= 0 {
		_, err = f.convs.Finish(ctx, c.ID, time.Now(), duration)
		require.NoError(t, err)
	}
	if sentiment != "" {
		require.NoError(t, f.convs.SaveSummary(ctx, c.ID, "summary", sentiment))
	}
}

func TestStatistics_OwnerScopeCountsAgentsAndOwnCalls(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.agents.Insert(ctx, &agents.Agent{ID: "a1", OwnerID: "u1"}))
	require.NoError(t, f.agents.Insert(ctx, &agents.Agent{ID: "a2", OwnerID: "u2"}))

	f.call(t, "a1", "", 1, 10, "Positive")
	f.call(t, "a1", "", 0, 15, "neutral")
	f.call(t, "", "u1", 2, 20, "very positive")
	f.call(t, "a2", "", 3, 99, "positive")

	stats, err := f.service.Statistics(ctx, tenancy.Principal{UserID: "u1"}, "")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalCalls)
	assert.Equal(t, 15.0, stats.AverageDuration)
	assert.Equal(t, 3+1+5, stats.TotalMessages)
	assert.Equal(t, 2, stats.LeadsCount)
}

func TestStatistics_AgentFilterAndRounding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.agents.Insert(ctx, &agents.Agent{ID: "a1", OwnerID: "u1"}))

	f.call(t, "a1", "", 0, 10, "")
	f.call(t, "a1", "", 0, 10, "")
	f.call(t, "a1", "", 0, 11, "")
	f.call(t, "a1", "", 0, -1, "")

	stats, err := f.service.Statistics(ctx, tenancy.Principal{UserID: "u1"}, "a1")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalCalls)
	assert.Equal(t, 10.33, stats.AverageDuration)
	assert.Equal(t, 0, stats.LeadsCount)
}

func TestStatistics_ForeignAgentForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.agents.Insert(ctx, &agents.Agent{ID: "a1", OwnerID: "u1"}))

	_, err := f.service.Statistics(ctx, tenancy.Principal{UserID: "u2", Role: tenancy.RoleUser}, "a1")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = f.service.Statistics(ctx, tenancy.Principal{UserID: "admin", Role: tenancy.RoleAdmin}, "a1")
	assert.NoError(t, err)

	_, err = f.service.Statistics(ctx, tenancy.Principal{UserID: "u1"}, "missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestStatistics_EmptyIsZero(t *testing.T) {
	f := newFixture(t)
	stats, err := f.service.Statistics(context.Background(), tenancy.Principal{UserID: "nobody"}, "")
	require.NoError(t, err)
	assert.Equal(t, Statistics{}, *stats)
}

func TestAdminReports(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.users.Create(ctx, &auth.User{ID: "u1", Email: "one@example.com", Role: tenancy.RoleUser, CreatedAt: older}))
	require.NoError(t, f.users.Create(ctx, &auth.User{ID: "u2", Email: "two@example.com", Role: tenancy.RoleAdmin, CreatedAt: older.Add(time.Hour)}))
	require.NoError(t, f.agents.Insert(ctx, &agents.Agent{ID: "a1", OwnerID: "u1"}))
	require.NoError(t, f.agents.Insert(ctx, &agents.Agent{ID: "a2", OwnerID: "u1"}))
	f.call(t, "a1", "", 0, 5, "positive")
	f.call(t, "", "", 0, 5, "negative")

	admin := tenancy.Principal{UserID: "u2", Role: tenancy.RoleAdmin}
	sys, err := f.service.SystemStats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, SystemStats{TotalUsers: 2, TotalAgents: 2, TotalCalls: 2, TotalLeads: 1}, *sys)

	users, err := f.service.Users(ctx, admin)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "u2", users[0].ID)
	assert.Equal(t, 2, users[1].AgentCount)

	_, err = f.service.SystemStats(ctx, tenancy.Principal{UserID: "u1"})
	assert.True(t, errors.Is(err, ErrAdminOnly))
	_, err = f.service.Users(ctx, tenancy.Principal{UserID: "u1"})
	assert.True(t, errors.Is(err, ErrAdminOnly))
}

func TestIsLead(t *testing.T) {
	assert.True(t, IsLead("Positive"))
	assert.True(t, IsLead("mostly POSITIVE interest"))
	assert.False(t, IsLead("neutral"))
	assert.False(t, IsLead(""))
}
