package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/sales-call-agent/internal/agents"
	"github.com/wolfman30/sales-call-agent/internal/api/router"
	"github.com/wolfman30/sales-call-agent/internal/archive"
	"github.com/wolfman30/sales-call-agent/internal/auth"
	appconfig "github.com/wolfman30/sales-call-agent/internal/config"
	"github.com/wolfman30/sales-call-agent/internal/conversation"
	"github.com/wolfman30/sales-call-agent/internal/fallback"
	"github.com/wolfman30/sales-call-agent/internal/llm"
	"github.com/wolfman30/sales-call-agent/internal/notify"
	"github.com/wolfman30/sales-call-agent/internal/observability/metrics"
	"github.com/wolfman30/sales-call-agent/internal/reporting"
	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

// Runtime holds the shared infrastructure clients. Any of them may be nil,
// in which case the matching in-process implementation is used.
type Runtime struct {
	Pool     *pgxpool.Pool
	Redis    *redis.Client
	AWS      *aws.Config
	LLM      llm.Client
	Email    notify.EmailSender
	Registry prometheus.Registerer
}

// Services is the assembled application.
type Services struct {
	Users         auth.UserRepository
	Auth          *auth.Service
	Agents        *agents.Service
	Conversations *conversation.Service
	Reporting     *reporting.Service
}

// BuildServices wires stores, the engine and the domain services.
func BuildServices(cfg *appconfig.Config, rt Runtime, logger *logging.Logger) (*Services, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	secret := strings.TrimSpace(cfg.SessionSecret)
	if secret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("bootstrap: SESSION_SECRET is required in production")
		}
		secret = uuid.NewString() + uuid.NewString()
		logger.Warn("SESSION_SECRET not set; generated an ephemeral secret, sessions end on restart")
	}
	tokens, err := auth.NewTokenIssuer(secret, cfg.SessionTTL)
	if err != nil {
		return nil, err
	}

	var (
		users       auth.UserRepository
		agentRepo   agents.Repository
		convStore   conversation.Store
		source      reporting.Source
		agentOpts   = []agents.Option{agents.WithLogger(logger)}
		engineOpts  []conversation.EngineOption
		serviceOpts = []conversation.ServiceOption{conversation.WithServiceLogger(logger)}
	)
	if rt.Pool != nil {
		users = auth.NewPostgresUserRepository(rt.Pool)
		agentRepo = agents.NewPostgresRepository(rt.Pool)
		convStore = conversation.NewPostgresStore(rt.Pool)
		source = reporting.NewSQLSource(rt.Pool)
	} else {
		memUsers := auth.NewMemoryUserRepository()
		memAgents := agents.NewMemoryRepository()
		memConvs := conversation.NewMemoryStore()
		users, agentRepo, convStore = memUsers, memAgents, memConvs
		source = reporting.NewMemorySource(memConvs, memUsers, memAgents)
		agentOpts = append(agentOpts, agents.WithDeleteHook(memConvs.DetachAgent))
	}

	var codes auth.CodeStore
	if rt.Redis != nil {
		codes = auth.NewRedisCodeStore(rt.Redis)
		engineOpts = append(engineOpts, conversation.WithLocker(conversation.NewRedisLocker(rt.Redis, cfg.TurnLockTTL)))
	} else {
		if cfg.IsProduction() {
			logger.Warn("redis not configured; verification codes and turn locks are process-local")
		}
		codes = auth.NewMemoryCodeStore()
		engineOpts = append(engineOpts, conversation.WithLocker(conversation.NewLocalLocker()))
	}

	policy := conversation.DefaultRetryPolicy()
	policy.MaxRetries = cfg.LLMMaxRetries
	policy.BaseDelay = cfg.LLMRetryBaseDelay
	if cfg.LLMTimeout > 0 {
		policy.AttemptTimeout = cfg.LLMTimeout
	}
	engineOpts = append(engineOpts,
		conversation.WithRetryPolicy(policy),
		conversation.WithHistoryLimit(cfg.HistoryLimit),
		conversation.WithMetrics(metrics.NewConversationMetrics(rt.Registry)),
		conversation.WithLogger(logger),
		conversation.WithScriptOnly(rt.LLM == nil),
	)

	if bucket := strings.TrimSpace(cfg.ArchiveBucket); bucket != "" && rt.AWS != nil {
		s3Client := s3.NewFromConfig(*rt.AWS, func(o *s3.Options) {
			o.UsePathStyle = cfg.AWSEndpointOverride != ""
		})
		serviceOpts = append(serviceOpts, conversation.WithArchiver(archive.NewStore(s3Client, bucket, logger)))
		logger.Info("conversation archive enabled", "bucket", bucket)
	}

	email := rt.Email
	if email == nil {
		email = notify.NewStubEmailSender(logger)
	}
	authSvc := auth.NewService(users, codes, auth.NewBcryptHasher(cfg.BcryptCost), tokens,
		auth.Config{
			RequireVerification: cfg.RequireEmailVerification,
			CodeTTL:             cfg.VerificationCodeTTL,
			ResetTTL:            cfg.PasswordResetTTL,
			PublicBaseURL:       cfg.PublicBaseURL,
		},
		auth.WithEmailSender(email),
		auth.WithAccountMetrics(metrics.NewAccountMetrics(rt.Registry)),
		auth.WithServiceLogger(logger),
	)

	agentSvc := agents.NewService(agentRepo, agentOpts...)
	engine := conversation.NewEngine(convStore, rt.LLM, fallback.New(), engineOpts...)
	convSvc := conversation.NewService(convStore, engine, agents.NewDirectory(agentSvc), serviceOpts...)

	return &Services{
		Users:         users,
		Auth:          authSvc,
		Agents:        agentSvc,
		Conversations: convSvc,
		Reporting:     reporting.NewService(source, agentSvc, logger),
	}, nil
}

// RouterConfig maps the services onto the HTTP surface.
func RouterConfig(cfg *appconfig.Config, svc *Services, rt Runtime, logger *logging.Logger) *router.Config {
	checks := map[string]router.HealthCheck{}
	if rt.Pool != nil {
		checks["postgres"] = rt.Pool.Ping
	}
	if rt.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return rt.Redis.Ping(ctx).Err() }
	}
	return &router.Config{
		Logger:              logger,
		Authenticator:       svc.Auth,
		AuthHandler:         auth.NewHandler(svc.Auth, logger),
		AgentsHandler:       agents.NewHandler(svc.Agents, logger),
		ConversationHandler: conversation.NewHandler(svc.Conversations, logger),
		ReportingHandler:    reporting.NewHandler(svc.Reporting, logger),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		AuthRateLimitRPS:    cfg.AuthRateLimitRPS,
		AuthRateLimitBurst:  cfg.AuthRateLimitBurst,
		HealthChecks:        checks,
	}
}
