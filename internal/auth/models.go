// Package auth handles accounts, email verification, password resets and
// session tokens.
package auth

import (
	"time"

	"github.com/wolfman30/sales-call-agent/internal/tenancy"
)

// User is a stored account.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	Role         string
	IsVerified   bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

func (u *User) IsAdmin() bool { return u.Role == tenancy.RoleAdmin }

// Principal converts the account to the request principal.
func (u *User) Principal() tenancy.Principal {
	return tenancy.Principal{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// Profile is the public view of a user.
type Profile struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	Role        string     `json:"role"`
	IsVerified  bool       `json:"is_verified"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        u.Role,
		IsVerified:  u.IsVerified,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

// Session is a signed token plus the profile it belongs to.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      Profile   `json:"user"`
}

// SignupResult reports a new account. Session is set only when the account
// did not need verification.
type SignupResult struct {
	User      Profile  `json:"user"`
	EmailSent bool     `json:"email_sent"`
	Session   *Session `json:"session,omitempty"`
}
