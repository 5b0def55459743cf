package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/wolfman30/sales-call-agent/internal/config"
	"github.com/wolfman30/sales-call-agent/internal/database"
	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

const (
	redisDialTimeout = 3 * time.Second
	redisIOTimeout   = 2 * time.Second
)

// BuildRedisClient returns a client for turn locks and verification codes, or
// nil when REDIS_ADDR is unset. With verify set the server is pinged once and
// an unreachable Redis yields nil so the in-process fallbacks take over.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	opts := &redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DialTimeout:  redisDialTimeout,
		ReadTimeout:  redisIOTimeout,
		WriteTimeout: redisIOTimeout,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	if !verify {
		return client
	}

	pingCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis not available; locks and codes stay in process", "addr", cfg.RedisAddr, "error", err)
		_ = client.Close()
		return nil
	}
	logger.Info("redis ready", "addr", cfg.RedisAddr, "tls", cfg.RedisTLS)
	return client
}

// BuildPostgresPool opens the shared pool, or returns nil when DATABASE_URL
// is unset. Production refuses to start without a database.
func BuildPostgresPool(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*pgxpool.Pool, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("bootstrap: DATABASE_URL is required in production")
		}
		logger.Warn("DATABASE_URL not set; using in-memory stores")
		return nil, nil
	}
	pool, err := database.Open(ctx, database.PoolConfig{
		URL:               cfg.DatabaseURL,
		MaxConns:          int32(cfg.DatabaseMaxConns),
		MinConns:          int32(cfg.DatabaseMinConns),
		HealthCheckPeriod: cfg.DatabaseHealthCheckPeriod,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("postgres pool ready", "max_conns", cfg.DatabaseMaxConns)
	return pool, nil
}
