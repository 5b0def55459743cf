package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

func TestRequestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New("debug", logging.WithOutput(&buf))
	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false}`))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/conversations/missing", nil))

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry["level"] != "WARN" || entry["status"] != float64(404) || entry["path"] != "/conversations/missing" {
		t.Fatalf("unexpected entry %v", entry)
	}
	if entry["bytes"] != float64(len(`{"success":false}`)) {
		t.Fatalf("bytes = %v", entry["bytes"])
	}
}

func TestRequestLoggerQuietsProbes(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New("info", logging.WithOutput(&buf))
	h := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	if buf.Len() != 0 {
		t.Fatalf("expected health probe below info, got %q", buf.String())
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/calls/start", nil))
	if !strings.Contains(buf.String(), `"status":200`) {
		t.Fatalf("expected implicit 200, got %q", buf.String())
	}
}
