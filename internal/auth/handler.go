package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/sales-call-agent/internal/apperr"
	"github.com/wolfman30/sales-call-agent/internal/http/respond"
	"github.com/wolfman30/sales-call-agent/internal/tenancy"
	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

// Handler serves the /auth routes.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// PublicRoutes mounts the unauthenticated endpoints.
func (h *Handler) PublicRoutes(r chi.Router) {
	r.Post("/signup", h.Signup)
	r.Post("/verify-email", h.VerifyEmail)
	r.Post("/resend-verification", h.ResendVerification)
	r.Post("/login", h.Login)
	r.Post("/forgot-password", h.ForgotPassword)
	r.Post("/reset-password", h.ResetPassword)
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type verifyRequest struct {
	UserID string `json:"user_id"`
	Code   string `json:"code"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	res, err := h.service.Signup(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	body := map[string]any{
		"user":                  res.User,
		"user_id":               res.User.ID,
		"email_sent":            res.EmailSent,
		"verification_required": res.Session == nil,
	}
	switch {
	case res.Session != nil:
		body["token"] = res.Session.Token
		body["expires_at"] = res.Session.ExpiresAt
		body["message"] = "Account created"
	case res.EmailSent:
		body["message"] = "Account created. Check your email for a verification code."
	default:
		body["message"] = "Account created, but we could not send the verification email. Request a new code."
	}
	respond.OK(w, http.StatusCreated, body)
}

func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	session, err := h.service.VerifyEmail(r.Context(), req.UserID, req.Code)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	writeSession(w, session)
}

func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	sent, err := h.service.ResendVerification(r.Context(), req.Email)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.OK(w, http.StatusOK, map[string]any{
		"email_sent": sent,
		"message":    "If the account exists and is unverified, a new code has been sent.",
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	writeSession(w, session)
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.OK(w, http.StatusOK, map[string]any{
		"message": "If an account exists for that email, a reset link has been sent.",
	})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	if err := h.service.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.OK(w, http.StatusOK, map[string]any{"message": "Password updated"})
}

// Me handles GET /auth/me and expects an authenticated principal.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := tenancy.PrincipalFromContext(r.Context())
	if !ok {
		respond.Error(w, r, h.logger, ErrMissingToken)
		return
	}
	profile, err := h.service.Me(r.Context(), p.UserID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			err = ErrInvalidToken
		}
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.OK(w, http.StatusOK, map[string]any{"user": profile})
}

func writeSession(w http.ResponseWriter, s *Session) {
	respond.OK(w, http.StatusOK, map[string]any{
		"token":      s.Token,
		"expires_at": s.ExpiresAt,
		"user":       s.User,
	})
}
