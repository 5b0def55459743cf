package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/sales-call-agent/internal/agents"
	appconfig "github.com/wolfman30/sales-call-agent/internal/config"
	"github.com/wolfman30/sales-call-agent/internal/llm"
	"github.com/wolfman30/sales-call-agent/internal/notify"
	"github.com/wolfman30/sales-call-agent/internal/tenancy"
	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

func baseConfig() *appconfig.Config {
	return &appconfig.Config{
		Env:                 "development",
		SessionTTL:          time.Hour,
		VerificationCodeTTL: 15 * time.Minute,
		PasswordResetTTL:    time.Hour,
		BcryptCost:          4,
		LLMProvider:         "groq",
		LLMModel:            "llama-3.3-70b-versatile",
		LLMTimeout:          time.Second,
		LLMMaxRetries:       1,
		LLMRetryBaseDelay:   time.Millisecond,
		HistoryLimit:        10,
		TurnLockTTL:         time.Minute,
		EmailProvider:       "auto",
		EmailFromName:       "Digital Lab",
	}
}

func TestBuildRedisClientDisabled(t *testing.T) {
	if c := BuildRedisClient(context.Background(), &appconfig.Config{}, logging.Discard(), true); c != nil {
		t.Fatalf("expected nil client without REDIS_ADDR")
	}
}

func TestBuildRedisClientPings(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	cfg := &appconfig.Config{RedisAddr: mr.Addr()}
	c := BuildRedisClient(context.Background(), cfg, logging.Discard(), true)
	if c == nil {
		t.Fatal("expected client for reachable redis")
	}
	defer c.Close()

	mr.Close()
	if c := BuildRedisClient(context.Background(), cfg, logging.Discard(), true); c != nil {
		t.Fatal("expected nil client when ping fails")
	}
}

func TestBuildPostgresPoolOptionalOutsideProduction(t *testing.T) {
	pool, err := BuildPostgresPool(context.Background(), baseConfig(), logging.Discard())
	if err != nil || pool != nil {
		t.Fatalf("expected nil pool and no error, got %v %v", pool, err)
	}

	cfg := baseConfig()
	cfg.Env = "production"
	if _, err := BuildPostgresPool(context.Background(), cfg, logging.Discard()); err == nil {
		t.Fatal("expected production to require DATABASE_URL")
	}
}

func TestBuildLLMClientSelection(t *testing.T) {
	ctx := context.Background()

	cfg := baseConfig()
	client, err := BuildLLMClient(ctx, cfg, nil, logging.Discard())
	if err != nil || client != nil {
		t.Fatalf("missing key: expected script-only (nil, nil), got %T %v", client, err)
	}

	cfg.LLMAPIKey = "gsk-test"
	client, err = BuildLLMClient(ctx, cfg, nil, logging.Discard())
	if err != nil {
		t.Fatalf("groq: %v", err)
	}
	if _, ok := client.(*llm.OpenAIClient); !ok {
		t.Fatalf("groq: expected *llm.OpenAIClient, got %T", client)
	}

	cfg.LLMSecondaryProvider = "bedrock"
	cfg.BedrockModelID = "anthropic.claude-3-haiku"
	client, err = BuildLLMClient(ctx, cfg, &aws.Config{Region: "us-east-1"}, logging.Discard())
	if err != nil {
		t.Fatalf("failover: %v", err)
	}
	if _, ok := client.(*llm.FailoverClient); !ok {
		t.Fatalf("expected *llm.FailoverClient, got %T", client)
	}

	cfg.LLMSecondaryProvider = "bedrock"
	client, err = BuildLLMClient(ctx, cfg, nil, logging.Discard())
	if err != nil {
		t.Fatalf("secondary without aws: %v", err)
	}
	if _, ok := client.(*llm.OpenAIClient); !ok {
		t.Fatalf("expected primary only when secondary cannot be built, got %T", client)
	}
}

func TestBuildLLMClientProductionRequiresProvider(t *testing.T) {
	cfg := baseConfig()
	cfg.Env = "production"
	cfg.LLMProvider = "bedrock"
	if _, err := BuildLLMClient(context.Background(), cfg, nil, logging.Discard()); err == nil {
		t.Fatal("expected error for unbuildable provider in production")
	}

	cfg.LLMProvider = "mystery"
	if _, err := buildProvider(context.Background(), cfg.LLMProvider, cfg, nil); err == nil {
		t.Fatal("expected unknown provider error")
	}
}

func TestBuildEmailSenderSelection(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*appconfig.Config)
		check  func(notify.EmailSender) bool
	}{
		{"auto falls back to stub", func(c *appconfig.Config) {}, func(s notify.EmailSender) bool { _, ok := s.(*notify.StubEmailSender); return ok }},
		{"auto prefers sendgrid", func(c *appconfig.Config) { c.SendGridAPIKey = "SG.x"; c.SMTPAddr = "smtp:587" }, func(s notify.EmailSender) bool { _, ok := s.(*notify.SendGridSender); return ok }},
		{"auto uses smtp", func(c *appconfig.Config) { c.SMTPAddr = "smtp:587" }, func(s notify.EmailSender) bool { _, ok := s.(*notify.SMTPSender); return ok }},
		{"explicit smtp", func(c *appconfig.Config) { c.EmailProvider = "smtp"; c.SMTPAddr = "smtp:587" }, func(s notify.EmailSender) bool { _, ok := s.(*notify.SMTPSender); return ok }},
		{"sendgrid without key", func(c *appconfig.Config) { c.EmailProvider = "sendgrid" }, func(s notify.EmailSender) bool { _, ok := s.(*notify.StubEmailSender); return ok }},
		{"ses without aws", func(c *appconfig.Config) { c.EmailProvider = "ses"; c.EmailFromAddress = "a@b.c" }, func(s notify.EmailSender) bool { _, ok := s.(*notify.StubEmailSender); return ok }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := baseConfig()
			tc.mutate(cfg)
			if s := BuildEmailSender(cfg, nil, logging.Discard()); !tc.check(s) {
				t.Fatalf("unexpected sender %T", s)
			}
		})
	}

	cfg := baseConfig()
	cfg.EmailProvider = "ses"
	cfg.EmailFromAddress = "hello@example.com"
	if _, ok := BuildEmailSender(cfg, &aws.Config{Region: "us-east-1"}, logging.Discard()).(*notify.SESSender); !ok {
		t.Fatal("expected SES sender with aws config")
	}
}

func TestBuildServicesInMemory(t *testing.T) {
	cfg := baseConfig()
	cfg.RequireEmailVerification = false
	svc, err := BuildServices(cfg, Runtime{Registry: prometheus.NewRegistry()}, logging.Discard())
	if err != nil {
		t.Fatalf("BuildServices: %v", err)
	}
	ctx := context.Background()

	res, err := svc.Auth.Signup(ctx, "owner@example.com", "correct-horse-battery", "Owner")
	if err != nil || res.Session == nil {
		t.Fatalf("signup: %v", err)
	}
	principal, err := svc.Auth.Authenticate(ctx, res.Session.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	agent, err := svc.Agents.Create(ctx, principal.UserID, agents.Input{BusinessName: "Acme", Industry: "Roofing", Services: "Repairs"})
	if err != nil {
		t.Fatalf("create agent: %v", err)
	}
	start, err := svc.Conversations.StartCall(ctx, &principal, agent.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	reply, err := svc.Conversations.SendMessage(ctx, start.ConversationID, "hello")
	if err != nil || reply.Text == "" {
		t.Fatalf("script-only reply: %v %+v", err, reply)
	}

	if err := svc.Agents.Delete(ctx, principal, agent.ID); err != nil {
		t.Fatalf("delete agent: %v", err)
	}
	detail, err := svc.Conversations.Get(ctx, principal, start.ConversationID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if detail.AgentID != nil {
		t.Fatalf("expected agent detached from conversation, got %v", *detail.AgentID)
	}

	stats, err := svc.Reporting.Statistics(ctx, principal, "")
	if err != nil || stats.TotalCalls != 1 {
		t.Fatalf("statistics: %v %+v", err, stats)
	}
	if _, err := svc.Reporting.SystemStats(ctx, tenancy.Principal{UserID: principal.UserID}); err == nil {
		t.Fatal("expected non-admin system stats to fail")
	}
}

func TestBuildServicesWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.RedisAddr = mr.Addr()
	cfg.RequireEmailVerification = true
	rdb := BuildRedisClient(context.Background(), cfg, logging.Discard(), true)
	if rdb == nil {
		t.Fatal("redis client")
	}
	defer rdb.Close()

	svc, err := BuildServices(cfg, Runtime{Redis: rdb, Registry: prometheus.NewRegistry()}, logging.Discard())
	if err != nil {
		t.Fatalf("BuildServices: %v", err)
	}
	res, err := svc.Auth.Signup(context.Background(), "verify@example.com", "correct-horse-battery", "")
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if res.Session != nil {
		t.Fatal("expected no session before verification")
	}
	if len(mr.Keys()) == 0 {
		t.Fatal("expected verification code stored in redis")
	}
}

func TestBuildServicesProductionNeedsSecret(t *testing.T) {
	cfg := baseConfig()
	cfg.Env = "production"
	if _, err := BuildServices(cfg, Runtime{Registry: prometheus.NewRegistry()}, logging.Discard()); err == nil {
		t.Fatal("expected missing SESSION_SECRET to fail in production")
	}
}

func TestRouterConfigHealthChecks(t *testing.T) {
	cfg := baseConfig()
	svc, err := BuildServices(cfg, Runtime{Registry: prometheus.NewRegistry()}, logging.Discard())
	if err != nil {
		t.Fatalf("BuildServices: %v", err)
	}
	rc := RouterConfig(cfg, svc, Runtime{}, logging.Discard())
	if len(rc.HealthChecks) != 0 || rc.Authenticator == nil || rc.ConversationHandler == nil {
		t.Fatalf("unexpected router config %+v", rc)
	}
}
