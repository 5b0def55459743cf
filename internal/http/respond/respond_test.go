package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wolfman30/sales-call-agent/internal/apperr"
	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

func TestErrorEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/agents/1", nil)
	rr := httptest.NewRecorder()
	Error(rr, req, logging.Discard(), apperr.New(apperr.KindForbidden, "not your agent"))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["success"] != false || body["error"] != "not your agent" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestErrorHidesInternalCause(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rr := httptest.NewRecorder()
	Error(rr, req, logging.Discard(), errors.New("dial tcp 10.0.0.1:5432: refused"))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "10.0.0.1") {
		t.Fatalf("internal detail leaked: %s", rr.Body.String())
	}
}

func TestOKAddsSuccess(t *testing.T) {
	rr := httptest.NewRecorder()
	OK(rr, http.StatusCreated, map[string]any{"id": "a1"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"success":true`) || !strings.Contains(rr.Body.String(), `"id":"a1"`) {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
}

func TestDecodeInvalid(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("{"))
	var dst map[string]any
	if err := Decode(req, &dst); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
