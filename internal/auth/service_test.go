package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wolfman30/sales-call-agent/internal/apperr"
	"github.com/wolfman30/sales-call-agent/internal/notify"
	"github.com/wolfman30/sales-call-agent/internal/tenancy"
	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

type failingSender struct{ calls int }

func (f *failingSender) Send(ctx context.Context, msg notify.EmailMessage) error {
	f.calls++
	return errors.New("smtp down")
}

type authFixture struct {
	svc    *Service
	users  *MemoryUserRepository
	codes  *MemoryCodeStore
	mail   *notify.StubEmailSender
	tokens *TokenIssuer
	codeNo int
}

func newAuthFixture(t *testing.T, requireVerification bool, opts ...ServiceOption) *authFixture {
	t.Helper()
	tokens, err := NewTokenIssuer("test-secret", 24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer: %v", err)
	}
	f := &authFixture{
		users:  NewMemoryUserRepository(),
		codes:  NewMemoryCodeStore(),
		mail:   notify.NewStubEmailSender(logging.Discard()),
		tokens: tokens,
	}
	base := []ServiceOption{
		WithEmailSender(f.mail),
		WithServiceLogger(logging.Discard()),
		WithCodeGenerator(func() (string, error) {
			f.codeNo++
			return []string{"111111", "222222", "333333"}[(f.codeNo-1)%3], nil
		}),
	}
	f.svc = NewService(f.users, f.codes, NewBcryptHasher(4), tokens,
		Config{RequireVerification: requireVerification, PublicBaseURL: "https://app.example.com"},
		append(base, opts...)...)
	return f
}

func TestSignup_PendingVerification(t *testing.T) {
	f := newAuthFixture(t, true)
	ctx := context.Background()

	res, err := f.svc.Signup(ctx, "Owner@Example.com", "supersecret", "Pat Owner")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if res.Session != nil {
		t.Fatalf("verification required, no session expected")
	}
	if !res.EmailSent {
		t.Fatalf("expected email to be sent")
	}
	if res.User.Email != "owner@example.com" || res.User.IsVerified || res.User.Role != tenancy.RoleUser {
		t.Fatalf("unexpected profile %#v", res.User)
	}
	sent := f.mail.Sent()
	if len(sent) != 1 || !strings.Contains(sent[0].Body, "111111") {
		t.Fatalf("expected code email, got %#v", sent)
	}

	if _, err := f.svc.Login(ctx, "owner@example.com", "supersecret"); !errors.Is(err, ErrUnverified) {
		t.Fatalf("expected unverified login to fail, got %v", err)
	}
}

func TestSignup_Validation(t *testing.T) {
	f := newAuthFixture(t, true)
	ctx := context.Background()

	cases := []struct{ email, password string }{
		{"", "supersecret"},
		{"not-an-email", "supersecret"},
		{"a@example.com", "short"},
	}
	for _, tc := range cases {
		if _, err := f.svc.Signup(ctx, tc.email, tc.password, ""); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Errorf("Signup(%q, %q): expected invalid input, got %v", tc.email, tc.password, err)
		}
	}

	if _, err := f.svc.Signup(ctx, "dup@example.com", "supersecret", ""); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	if _, err := f.svc.Signup(ctx, "DUP@example.com", "supersecret", ""); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict on duplicate email, got %v", err)
	}
}

func TestSignup_EmailFailureStillSucceeds(t *testing.T) {
	sender := &failingSender{}
	f := newAuthFixture(t, true, WithEmailSender(sender))

	res, err := f.svc.Signup(context.Background(), "owner@example.com", "supersecret", "")
	if err != nil {
		t.Fatalf("signup must survive email failure: %v", err)
	}
	if res.EmailSent {
		t.Fatalf("expected degraded email_sent=false")
	}
	if sender.calls != 1 {
		t.Fatalf("expected one send attempt, got %d", sender.calls)
	}
}

func TestSignup_AutoLoginWithoutVerification(t *testing.T) {
	f := newAuthFixture(t, false)

	res, err := f.svc.Signup(context.Background(), "owner@example.com", "supersecret", "")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if res.Session == nil || res.Session.Token == "" {
		t.Fatalf("expected session on auto-login")
	}
	claims, err := f.tokens.Verify(res.Session.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != res.User.ID || claims.Email != "owner@example.com" {
		t.Fatalf("unexpected claims %#v", claims)
	}
	if len(f.mail.Sent()) != 0 {
		t.Fatalf("no email expected when verification is off")
	}
}

func TestVerifyEmail_OnlyNewestCodeIsValid(t *testing.T) {
	f := newAuthFixture(t, true)
	ctx := context.Background()

	res, err := f.svc.Signup(ctx, "owner@example.com", "supersecret", "")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if _, err := f.svc.ResendVerification(ctx, "owner@example.com"); err != nil {
		t.Fatalf("Resend: %v", err)
	}

	if _, err := f.svc.VerifyEmail(ctx, res.User.ID, "111111"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("superseded code must be rejected, got %v", err)
	}
	session, err := f.svc.VerifyEmail(ctx, res.User.ID, "222222")
	if err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	if session.Token == "" || !session.User.IsVerified || session.User.LastLoginAt == nil {
		t.Fatalf("unexpected session %#v", session)
	}
	if _, err := f.svc.VerifyEmail(ctx, res.User.ID, "222222"); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("expected already verified, got %v", err)
	}
}

func TestVerifyEmail_ExpiredCode(t *testing.T) {
	f := newAuthFixture(t, true)
	ctx := context.Background()

	res, err := f.svc.Signup(ctx, "owner@example.com", "supersecret", "")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	f.codes.now = func() time.Time { return time.Now().Add(time.Hour) }

	_, err = f.svc.VerifyEmail(ctx, res.User.ID, "111111")
	if !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("expected expired code, got %v", err)
	}
}

func TestVerifyEmail_DiscardsCodeAfterRepeatedFailures(t *testing.T) {
	f := newAuthFixture(t, true)
	ctx := context.Background()

	res, err := f.svc.Signup(ctx, "owner@example.com", "supersecret", "")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	for i := 0; i < maxCodeAttempts; i++ {
		if _, err := f.svc.VerifyEmail(ctx, res.User.ID, "999999"); !errors.Is(err, ErrInvalidCode) {
			t.Fatalf("attempt %d: expected invalid code, got %v", i, err)
		}
	}
	if _, err := f.svc.VerifyEmail(ctx, res.User.ID, "111111"); !errors.Is(err, ErrCodeExpired) {
		t.Fatalf("code should be gone after %d failures, got %v", maxCodeAttempts, err)
	}
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t, false)
	ctx := context.Background()

	if _, err := f.svc.Signup(ctx, "owner@example.com", "supersecret", ""); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	if _, err := f.svc.Login(ctx, "owner@example.com", "wrongpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := f.svc.Login(ctx, "nobody@example.com", "supersecret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email must look like a bad password, got %v", err)
	}
	session, err := f.svc.Login(ctx, " OWNER@example.com ", "supersecret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	p, err := f.svc.Authenticate(ctx, session.Token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if p.UserID != session.User.ID || p.IsAdmin() {
		t.Fatalf("unexpected principal %#v", p)
	}
}

func TestAuthenticate_RoleComesFromRepository(t *testing.T) {
	f := newAuthFixture(t, false)
	ctx := context.Background()

	res, err := f.svc.Signup(ctx, "admin@example.com", "supersecret", "")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if err := f.users.SetRole(ctx, res.User.ID, tenancy.RoleAdmin); err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	p, err := f.svc.Authenticate(ctx, res.Session.Token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if !p.IsAdmin() {
		t.Fatalf("expected admin principal")
	}

	if _, err := f.svc.Authenticate(ctx, "garbage"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for garbage token, got %v", err)
	}
}

func TestPasswordReset(t *testing.T) {
	f := newAuthFixture(t, false)
	ctx := context.Background()

	if _, err := f.svc.Signup(ctx, "owner@example.com", "supersecret", ""); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if err := f.svc.ForgotPassword(ctx, "nobody@example.com"); err != nil {
		t.Fatalf("unknown email must not error: %v", err)
	}
	if len(f.mail.Sent()) != 0 {
		t.Fatalf("no email for unknown account")
	}

	if err := f.svc.ForgotPassword(ctx, "owner@example.com"); err != nil {
		t.Fatalf("ForgotPassword: %v", err)
	}
	sent := f.mail.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected reset email, got %d", len(sent))
	}
	idx := strings.Index(sent[0].Body, "token=")
	if idx < 0 {
		t.Fatalf("reset link missing: %q", sent[0].Body)
	}
	token := strings.Fields(sent[0].Body[idx+len("token="):])[0]

	if err := f.svc.ResetPassword(ctx, token, "newpassword1"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if err := f.svc.ResetPassword(ctx, token, "newpassword2"); !errors.Is(err, ErrInvalidResetToken) {
		t.Fatalf("token must be single use, got %v", err)
	}
	if _, err := f.svc.Login(ctx, "owner@example.com", "newpassword1"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestEnsureAdmin_CreatesThenPromotes(t *testing.T) {
	f := newAuthFixture(t, true)
	ctx := context.Background()

	p, created, err := f.svc.EnsureAdmin(ctx, "Root@Example.com", "admin-password-1", "Root")
	if err != nil || !created {
		t.Fatalf("EnsureAdmin create: created=%v err=%v", created, err)
	}
	if p.Email != "root@example.com" || p.Role != tenancy.RoleAdmin || !p.IsVerified {
		t.Fatalf("unexpected profile %+v", p)
	}
	if _, err := f.svc.Login(ctx, "root@example.com", "admin-password-1"); err != nil {
		t.Fatalf("login as new admin: %v", err)
	}

	if _, err := f.svc.Signup(ctx, "member@example.com", "member-password", "Member"); err != nil {
		t.Fatalf("signup: %v", err)
	}
	p, created, err = f.svc.EnsureAdmin(ctx, "member@example.com", "rotated-password", "")
	if err != nil || created {
		t.Fatalf("EnsureAdmin promote: created=%v err=%v", created, err)
	}
	if p.Role != tenancy.RoleAdmin || !p.IsVerified {
		t.Fatalf("expected verified admin, got %+v", p)
	}
	if _, err := f.svc.Login(ctx, "member@example.com", "member-password"); err == nil {
		t.Fatal("old password should no longer work")
	}
	if _, err := f.svc.Login(ctx, "member@example.com", "rotated-password"); err != nil {
		t.Fatalf("login with rotated password: %v", err)
	}

	if _, _, err := f.svc.EnsureAdmin(ctx, "not-an-email", "admin-password-1", ""); apperr.KindOf(err) != apperr.KindInvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
