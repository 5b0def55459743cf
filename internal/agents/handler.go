package agents

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/sales-call-agent/internal/apperr"
	"github.com/wolfman30/sales-call-agent/internal/http/respond"
	"github.com/wolfman30/sales-call-agent/internal/tenancy"
	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

// Handler serves the /agents routes. Every route expects an authenticated
// principal in the request context.
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

// Routes mounts the agent endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (tenancy.Principal, bool) {
	p, ok := tenancy.PrincipalFromContext(r.Context())
	if !ok {
		respond.Error(w, r, h.logger, apperr.New(apperr.KindUnauthorized, "authentication required"))
	}
	return p, ok
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	var in Input
	if err := respond.Decode(r, &in); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	a, err := h.service.Create(r.Context(), p.UserID, in)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.OK(w, http.StatusCreated, map[string]any{"agent_id": a.ID, "agent": a})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	list, err := h.service.List(r.Context(), p.UserID)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.OK(w, http.StatusOK, map[string]any{"agents": list})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	a, err := h.service.Get(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.OK(w, http.StatusOK, map[string]any{"agent": a})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	var in Input
	if err := respond.Decode(r, &in); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	a, err := h.service.Update(r.Context(), p, chi.URLParam(r, "id"), in)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.OK(w, http.StatusOK, map[string]any{"agent": a})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.principal(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.OK(w, http.StatusOK, map[string]any{"message": "agent deleted"})
}
