package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wolfman30/sales-call-agent/internal/app/bootstrap"
	"github.com/wolfman30/sales-call-agent/internal/auth"
	appconfig "github.com/wolfman30/sales-call-agent/internal/config"
	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

const resetConfirmation = "DELETE ALL"

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type options struct {
	email    string
	password string
	fullName string
	reset    bool
	yes      bool
}

func main() {
	_ = godotenv.Load()
	if err := newRootCommand(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create or promote an admin account",
		Long: `Creates a verified admin account, or promotes an existing account and
replaces its password. With --reset every user, agent and conversation is
deleted first; the reset asks for confirmation unless --yes is given.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.password == "" {
				opts.password = os.Getenv("ADMIN_PASSWORD")
			}
			return run(cmd.Context(), opts, in, out)
		},
	}
	cmd.Flags().StringVar(&opts.email, "email", os.Getenv("ADMIN_EMAIL"), "admin email (ADMIN_EMAIL)")
	cmd.Flags().StringVar(&opts.password, "password", "", "admin password (ADMIN_PASSWORD)")
	cmd.Flags().StringVar(&opts.fullName, "name", "Administrator", "display name for a new account")
	cmd.Flags().BoolVar(&opts.reset, "reset", false, "delete all users, agents and conversations first")
	cmd.Flags().BoolVar(&opts.yes, "yes", false, "skip the reset confirmation prompt")
	return cmd
}

func run(ctx context.Context, opts *options, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(opts.email) == "" || opts.password == "" {
		return fmt.Errorf("--email and --password (or ADMIN_EMAIL/ADMIN_PASSWORD) are required")
	}

	cfg := appconfig.Load()
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	logger := logging.New(cfg.LogLevel, logging.WithFormat("text"))

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	pool, err := bootstrap.BuildPostgresPool(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if opts.reset {
		if !opts.yes && !confirm(in, out) {
			fmt.Fprintln(out, "Reset cancelled")
			return nil
		}
		if err := resetData(ctx, pool); err != nil {
			return err
		}
		fmt.Fprintln(out, "All users, agents and conversations deleted")
	}

	svc, err := newAuthService(cfg, auth.NewPostgresUserRepository(pool), logger)
	if err != nil {
		return err
	}
	return ensureAdmin(ctx, svc, opts, out)
}

func newAuthService(cfg *appconfig.Config, users auth.UserRepository, logger *logging.Logger) (*auth.Service, error) {
	// Tokens are never issued here; the issuer only satisfies the constructor.
	secret := cfg.SessionSecret
	if secret == "" {
		secret = "seed-admin"
	}
	tokens, err := auth.NewTokenIssuer(secret, cfg.SessionTTL)
	if err != nil {
		return nil, err
	}
	return auth.NewService(users, auth.NewMemoryCodeStore(), auth.NewBcryptHasher(cfg.BcryptCost), tokens,
		auth.Config{}, auth.WithServiceLogger(logger)), nil
}

func ensureAdmin(ctx context.Context, svc *auth.Service, opts *options, out io.Writer) error {
	profile, created, err := svc.EnsureAdmin(ctx, opts.email, opts.password, opts.fullName)
	if err != nil {
		return err
	}
	action := "Promoted existing account"
	if created {
		action = "Created admin account"
	}
	fmt.Fprintf(out, "%s %s (%s)\n", action, profile.Email, profile.ID)
	return nil
}

func confirm(in io.Reader, out io.Writer) bool {
	fmt.Fprintln(out, "WARNING: this deletes every user, agent and conversation.")
	fmt.Fprintf(out, "Type '%s' to confirm: ", resetConfirmation)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.TrimSpace(line) == resetConfirmation
}

// resetData empties every application table in one statement so foreign keys
// never see a half-deleted state.
func resetData(ctx context.Context, db execer) error {
	_, err := db.Exec(ctx, `TRUNCATE conversation_metadata, conversation_messages, conversations, agents, users RESTART IDENTITY CASCADE`)
	if err != nil {
		return fmt.Errorf("seed-admin: reset: %w", err)
	}
	return nil
}
