package conversation

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/sales-call-agent/internal/http/respond"
	"github.com/wolfman30/sales-call-agent/internal/tenancy"
	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

// Handler wires HTTP requests to the call lifecycle service.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a conversation handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

type startRequest struct {
	AgentID string `json:"agent_id"`
}

type conversationRequest struct {
	ConversationID string `json:"conversation_id"`
}

type messageRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

// Start handles POST /calls/start. The body is optional.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := respond.Decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
			respond.Error(w, r, h.logger, err)
			return
		}
	}

	var principal *tenancy.Principal
	if p, ok := tenancy.PrincipalFromContext(r.Context()); ok {
		principal = &p
	}

	res, err := h.service.StartCall(r.Context(), principal, req.AgentID)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.OK(w, http.StatusOK, map[string]any{
		"conversation_id": res.ConversationID,
		"greeting_text":   res.Greeting,
	})
}

// Message handles POST /calls/message.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	reply, err := h.service.SendMessage(r.Context(), req.ConversationID, req.Message)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.OK(w, http.StatusOK, map[string]any{
		"reply_text":      reply.Text,
		"should_end_call": reply.ShouldEndCall,
		"timestamp":       reply.Timestamp.Format(time.TimeOnly),
		"created_at":      reply.Timestamp.Format(time.RFC3339),
	})
}

// End handles POST /calls/end.
func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	var req conversationRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	res, err := h.service.EndCall(r.Context(), req.ConversationID)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.OK(w, http.StatusOK, map[string]any{"duration": res.DurationSeconds})
}

// Summarize handles POST /calls/summarize.
func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req conversationRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	sum, err := h.service.Summarize(r.Context(), req.ConversationID)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.OK(w, http.StatusOK, map[string]any{"summary": sum.Text, "sentiment": sum.Sentiment})
}

// List handles GET /conversations.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := tenancy.PrincipalFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	convs, err := h.service.List(r.Context(), principal, r.URL.Query().Get("agent_id"), limit)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.OK(w, http.StatusOK, map[string]any{"conversations": convs})
}

// Get handles GET /conversations/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	principal, _ := tenancy.PrincipalFromContext(r.Context())
	detail, err := h.service.Get(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.OK(w, http.StatusOK, map[string]any{"conversation": detail})
}

// Delete handles DELETE /conversations/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, _ := tenancy.PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	respond.OK(w, http.StatusOK, nil)
}

// Export handles GET /conversations/{id}/export.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	principal, _ := tenancy.PrincipalFromContext(r.Context())
	id := chi.URLParam(r, "id")
	body, err := h.service.Export(r.Context(), principal, id)
	if err != nil {
		respond.Error(w, r, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", ExportFilename(id)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		h.logger.Error("failed to write export", "conversation_id", id, "error", err)
	}
}
