// Package respond writes the JSON envelopes shared by every handler.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/wolfman30/sales-call-agent/internal/apperr"
	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

// JSON writes payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// OK writes a success envelope merging fields into {"success": true}.
func OK(w http.ResponseWriter, status int, fields map[string]any) {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["success"] = true
	JSON(w, status, body)
}

// Error maps err onto a status and writes {"success": false, "error": msg}.
// Internal failures are logged with their cause.
func Error(w http.ResponseWriter, r *http.Request, logger *logging.Logger, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	JSON(w, status, map[string]any{"success": false, "error": apperr.PublicMessage(err)})
}

// Decode reads a JSON body into dst, reporting malformed input as invalid.
func Decode(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperr.New(apperr.KindInvalidInput, "request body required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Wrap(apperr.KindInvalidInput, "invalid JSON body", err)
	}
	return nil
}
