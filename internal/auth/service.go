package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/wolfman30/sales-call-agent/internal/apperr"
	"github.com/wolfman30/sales-call-agent/internal/notify"
	"github.com/wolfman30/sales-call-agent/internal/observability/metrics"
	"github.com/wolfman30/sales-call-agent/internal/tenancy"
	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

const (
	minPasswordLength  = 8
	maxPasswordLength  = 72 // bcrypt ignores anything longer
	maxFullNameLength  = 120
	maxCodeAttempts    = 5
	emailSendTimeout   = 10 * time.Second
	verifyKeyPrefix    = "verify:code:"
	attemptsKeyPrefix  = "verify:attempts:"
	resetKeyPrefix     = "reset:token:"
	defaultCodeTTL     = 15 * time.Minute
	defaultResetTTL    = time.Hour
	emailKindVerify    = "verification"
	emailKindReset     = "password_reset"
	emailStatusSent    = "sent"
	emailStatusFailed  = "failed"
	loginOutcomeOK     = "ok"
	loginOutcomeDenied = "denied"
)

// Config tunes the account flows.
type Config struct {
	RequireVerification bool
	CodeTTL             time.Duration
	ResetTTL            time.Duration
	PublicBaseURL       string
}

// Service implements signup, verification, login and password resets.
type Service struct {
	users   UserRepository
	codes   CodeStore
	hasher  Hasher
	tokens  *TokenIssuer
	email   notify.EmailSender
	metrics *metrics.AccountMetrics
	cfg     Config
	logger  *logging.Logger
	now     func() time.Time
	newCode func() (string, error)
}

type ServiceOption func(*Service)

func WithEmailSender(sender notify.EmailSender) ServiceOption {
	return func(s *Service) { s.email = sender }
}

func WithAccountMetrics(m *metrics.AccountMetrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
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

// WithCodeGenerator replaces the random six-digit generator (tests).
func WithCodeGenerator(fn func() (string, error)) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.newCode = fn
		}
	}
}

func NewService(users UserRepository, codes CodeStore, hasher Hasher, tokens *TokenIssuer, cfg Config, opts ...ServiceOption) *Service {
	if users == nil || codes == nil || hasher == nil || tokens == nil {
		panic("auth: users, codes, hasher and tokens are required")
	}
	if cfg.CodeTTL <= 0 {
		cfg.CodeTTL = defaultCodeTTL
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = defaultResetTTL
	}
	s := &Service{
		users:   users,
		codes:   codes,
		hasher:  hasher,
		tokens:  tokens,
		cfg:     cfg,
		logger:  logging.Default(),
		now:     time.Now,
		newCode: newVerificationCode,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup creates an account. When verification is required the account is
// left unverified and a code is mailed; a mail failure is reported through
// EmailSent rather than failing the signup.
func (s *Service) Signup(ctx context.Context, email, password, fullName string) (*SignupResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	fullName = strings.TrimSpace(fullName)
	if utf8.RuneCountInString(fullName) > maxFullNameLength {
		return nil, apperr.New(apperr.KindInvalidInput, fmt.Sprintf("full_name must be at most %d characters", maxFullNameLength))
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	u := &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         tenancy.RoleUser,
		IsVerified:   !s.cfg.RequireVerification,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, classify(err)
	}
	s.logger.Info("user signed up", "user_id", u.ID, "verification_required", s.cfg.RequireVerification)

	res := &SignupResult{User: u.Profile()}
	if !s.cfg.RequireVerification {
		session, err := s.issue(u)
		if err != nil {
			return nil, err
		}
		res.Session = session
		s.metrics.ObserveSignup(false)
		return res, nil
	}

	res.EmailSent = s.sendVerification(ctx, u)
	s.metrics.ObserveSignup(res.EmailSent)
	return res, nil
}

// VerifyEmail consumes the newest code issued for the user and logs them in.
func (s *Service) VerifyEmail(ctx context.Context, userID, code string) (*Session, error) {
	code = strings.TrimSpace(code)
	if strings.TrimSpace(userID) == "" || code == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "user_id and code are required")
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, classify(err)
	}
	if u.IsVerified {
		return nil, ErrAlreadyVerified
	}

	codeKey := verifyKeyPrefix + u.Email
	stored, err := s.codes.Get(ctx, codeKey)
	if errors.Is(err, ErrCodeMissing) {
		return nil, ErrCodeExpired
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if stored != code {
		attempts, err := s.codes.Incr(ctx, attemptsKeyPrefix+u.Email, s.cfg.CodeTTL)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if attempts >= maxCodeAttempts {
			if err := s.codes.Delete(ctx, codeKey, attemptsKeyPrefix+u.Email); err != nil {
				s.logger.Warn("failed to discard verification code", "user_id", u.ID, "error", err)
			}
			s.logger.Warn("verification code discarded after repeated failures", "user_id", u.ID)
		}
		return nil, ErrInvalidCode
	}

	if _, err := s.codes.Take(ctx, codeKey); err != nil && !errors.Is(err, ErrCodeMissing) {
		return nil, apperr.Internal(err)
	}
	if err := s.codes.Delete(ctx, attemptsKeyPrefix+u.Email); err != nil {
		s.logger.Warn("failed to clear verification attempts", "user_id", u.ID, "error", err)
	}
	if err := s.users.MarkVerified(ctx, u.ID); err != nil {
		return nil, classify(err)
	}
	u.IsVerified = true
	s.logger.Info("email verified", "user_id", u.ID)
	return s.login(ctx, u)
}

// ResendVerification issues a fresh code that replaces any earlier one.
// Unknown addresses succeed silently.
func (s *Service) ResendVerification(ctx context.Context, email string) (bool, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return false, err
	}
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}
	if err != nil {
		return false, classify(err)
	}
	if u.IsVerified {
		return false, ErrAlreadyVerified
	}
	return s.sendVerification(ctx, u), nil
}

// Login checks credentials and returns a session.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "email and password are required")
	}
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		s.metrics.ObserveLogin(loginOutcomeDenied)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, classify(err)
	}
	ok, err := s.hasher.Compare(u.PasswordHash, password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !ok {
		s.metrics.ObserveLogin(loginOutcomeDenied)
		return nil, ErrInvalidCredentials
	}
	if s.cfg.RequireVerification && !u.IsVerified {
		s.metrics.ObserveLogin(loginOutcomeDenied)
		return nil, ErrUnverified
	}
	s.metrics.ObserveLogin(loginOutcomeOK)
	return s.login(ctx, u)
}

// ForgotPassword mails a reset link. It never reveals whether the email
// belongs to an account.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return classify(err)
	}
	token, err := newResetToken()
	if err != nil {
		return apperr.Internal(err)
	}
	if err := s.codes.Set(ctx, resetKeyPrefix+token, u.ID, s.cfg.ResetTTL); err != nil {
		return apperr.Internal(err)
	}
	link := strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/reset-password?token=" + token
	s.dispatch(ctx, emailKindReset, notify.EmailMessage{
		To:      u.Email,
		ToName:  u.FullName,
		Subject: "Reset your password",
		Body: fmt.Sprintf("Hi %s,\n\nUse the link below to choose a new password. It expires in %s.\n\n%s\n\nIf you did not ask for this, ignore this email.",
			displayName(u), s.cfg.ResetTTL, link),
	})
	return nil
}

// ResetPassword consumes a reset token and stores the new password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrInvalidResetToken
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	userID, err := s.codes.Take(ctx, resetKeyPrefix+token)
	if errors.Is(err, ErrCodeMissing) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return apperr.Internal(err)
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return classify(err)
	}
	s.logger.Info("password reset", "user_id", userID)
	return nil
}

// Me returns the caller's profile.
func (s *Service) Me(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, classify(err)
	}
	p := u.Profile()
	return &p, nil
}

// EnsureAdmin creates a verified admin account, or promotes an existing one
// and replaces its password. created reports which happened.
func (s *Service) EnsureAdmin(ctx context.Context, email, password, fullName string) (profile *Profile, created bool, err error) {
	email, err = normalizeEmail(email)
	if err != nil {
		return nil, false, err
	}
	if err := validatePassword(password); err != nil {
		return nil, false, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, false, apperr.Internal(err)
	}

	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		u = &User{
			ID:           uuid.NewString(),
			Email:        email,
			PasswordHash: hash,
			FullName:     strings.TrimSpace(fullName),
			Role:         tenancy.RoleAdmin,
			IsVerified:   true,
			CreatedAt:    s.now().UTC(),
		}
		if err := s.users.Create(ctx, u); err != nil {
			return nil, false, classify(err)
		}
		created = true
	case err != nil:
		return nil, false, apperr.Internal(err)
	default:
		if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
			return nil, false, classify(err)
		}
		if err := s.users.SetRole(ctx, u.ID, tenancy.RoleAdmin); err != nil {
			return nil, false, classify(err)
		}
		if !u.IsVerified {
			if err := s.users.MarkVerified(ctx, u.ID); err != nil {
				return nil, false, classify(err)
			}
			u.IsVerified = true
		}
		u.Role = tenancy.RoleAdmin
	}
	s.logger.Info("admin account ensured", "user_id", u.ID, "created", created)
	p := u.Profile()
	return &p, created, nil
}

// Authenticate verifies a bearer token and loads the principal, including
// the current role, from the repository.
func (s *Service) Authenticate(ctx context.Context, token string) (tenancy.Principal, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return tenancy.Principal{}, err
	}
	u, err := s.users.GetByID(ctx, claims.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return tenancy.Principal{}, ErrInvalidToken
	}
	if err != nil {
		return tenancy.Principal{}, apperr.Internal(err)
	}
	return u.Principal(), nil
}

func (s *Service) login(ctx context.Context, u *User) (*Session, error) {
	now := s.now().UTC()
	if err := s.users.TouchLogin(ctx, u.ID, now); err != nil {
		s.logger.Warn("failed to record login time", "user_id", u.ID, "error", err)
	} else {
		u.LastLoginAt = &now
	}
	return s.issue(u)
}

func (s *Service) issue(u *User) (*Session, error) {
	token, expires, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &Session{Token: token, ExpiresAt: expires, User: u.Profile()}, nil
}

// sendVerification stores a new code, replacing any previous one, and mails
// it. It reports whether the email went out.
func (s *Service) sendVerification(ctx context.Context, u *User) bool {
	code, err := s.newCode()
	if err != nil {
		s.logger.Error("failed to generate verification code", "user_id", u.ID, "error", err)
		return false
	}
	if err := s.codes.Set(ctx, verifyKeyPrefix+u.Email, code, s.cfg.CodeTTL); err != nil {
		s.logger.Error("failed to store verification code", "user_id", u.ID, "error", err)
		return false
	}
	if err := s.codes.Delete(ctx, attemptsKeyPrefix+u.Email); err != nil {
		s.logger.Warn("failed to reset verification attempts", "user_id", u.ID, "error", err)
	}
	return s.dispatch(ctx, emailKindVerify, notify.EmailMessage{
		To:      u.Email,
		ToName:  u.FullName,
		Subject: "Your verification code",
		Body: fmt.Sprintf("Hi %s,\n\nYour verification code is %s. It expires in %s.\n\nOnly the most recent code we sent will work.",
			displayName(u), code, s.cfg.CodeTTL),
	})
}

// dispatch sends an email under its own timeout. Failures are logged and
// counted, never returned.
func (s *Service) dispatch(ctx context.Context, kind string, msg notify.EmailMessage) bool {
	if s.email == nil {
		s.logger.Warn("no email sender configured", "kind", kind, "to", msg.To)
		s.metrics.ObserveEmail(kind, emailStatusFailed)
		return false
	}
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), emailSendTimeout)
	defer cancel()
	if err := s.email.Send(sendCtx, msg); err != nil {
		s.logger.Error("account email failed", "kind", kind, "to", msg.To, "error", err)
		s.metrics.ObserveEmail(kind, emailStatusFailed)
		return false
	}
	s.metrics.ObserveEmail(kind, emailStatusSent)
	return true
}

func normalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", apperr.New(apperr.KindInvalidInput, "email is required")
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", apperr.New(apperr.KindInvalidInput, "invalid email address")
	}
	return strings.ToLower(addr.Address), nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperr.New(apperr.KindInvalidInput, fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if len(password) > maxPasswordLength {
		return apperr.New(apperr.KindInvalidInput, fmt.Sprintf("password must be at most %d bytes", maxPasswordLength))
	}
	return nil
}

func displayName(u *User) string {
	if u.FullName != "" {
		return u.FullName
	}
	return "there"
}

func classify(err error) error {
	var typed *apperr.Error
	if errors.As(err, &typed) {
		return err
	}
	return apperr.Internal(err)
}
