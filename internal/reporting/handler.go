package reporting

import (
	"net/http"

	"github.com/wolfman30/sales-call-agent/internal/apperr"
	"github.com/wolfman30/sales-call-agent/internal/http/respond"
	"github.com/wolfman30/sales-call-agent/internal/tenancy"
	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

// Handler serves /statistics and the admin reports.
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

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (tenancy.Principal, bool) {
	p, ok := tenancy.PrincipalFromContext(r.Context())
	if !ok {
		respond.Error(w, r, h.logger, apperr.New(apperr.KindUnauthorized, "authentication required"))
	}
	return p, ok
}

// Statistics handles GET /statistics?agent_id=.
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	stats, err := h.service.Statistics(r.Context(), p, r.URL.Query().Get("agent_id"))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.OK(w, http.StatusOK, map[string]any{"statistics": stats})
}

// AdminStats handles GET /admin/stats.
func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	stats, err := h.service.SystemStats(r.Context(), p)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.OK(w, http.StatusOK, map[string]any{"stats": stats})
}

// AdminUsers handles GET /admin/users.
func (h *Handler) AdminUsers(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	users, err := h.service.Users(r.Context(), p)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.OK(w, http.StatusOK, map[string]any{"users": users})
}
