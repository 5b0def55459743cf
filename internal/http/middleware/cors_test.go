package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsRequest(t *testing.T, origins []string, method, origin string, preflight bool) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	called := false
	h := CORS(origins)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(method, "/conversations/abc/export", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if preflight {
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, called
}

func TestCORSAllowsListedOrigin(t *testing.T) {
	rec, called := corsRequest(t, []string{"https://app.example.com"}, http.MethodGet, "https://app.example.com", false)
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected handler to run, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("allow origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Expose-Headers"); got != corsExposeHeaders {
		t.Fatalf("expose headers = %q", got)
	}
}

func TestCORSIgnoresUnknownOriginOnSimpleRequest(t *testing.T) {
	rec, called := corsRequest(t, []string{"https://app.example.com"}, http.MethodGet, "https://evil.example", false)
	if !called {
		t.Fatal("simple requests still reach the handler")
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatal("unexpected allow origin for unknown origin")
	}
}

func TestCORSPreflight(t *testing.T) {
	rec, called := corsRequest(t, []string{"https://app.example.com"}, http.MethodOptions, "https://app.example.com", true)
	if called || rec.Code != http.StatusNoContent {
		t.Fatalf("allowed preflight: called=%v status=%d", called, rec.Code)
	}

	rec, called = corsRequest(t, []string{"https://app.example.com"}, http.MethodOptions, "https://evil.example", true)
	if called || rec.Code != http.StatusForbidden {
		t.Fatalf("denied preflight: called=%v status=%d", called, rec.Code)
	}
}

func TestOriginMatcher(t *testing.T) {
	m := newOriginMatcher([]string{" https://*.example.com ", "http://localhost:3000/", ""})
	cases := map[string]bool{
		"https://app.example.com":   true,
		"https://a.b.example.com":   true,
		"https://example.com":       false,
		"http://app.example.com":    false,
		"https://app.example.com.x": false,
		"http://localhost:3000":     true,
		"":                          false,
	}
	for origin, want := range cases {
		if got := m.allows(origin); got != want {
			t.Errorf("allows(%q) = %v, want %v", origin, got, want)
		}
	}

	if !newOriginMatcher([]string{"*"}).allows("https://anything.test") {
		t.Fatal("wildcard should allow any origin")
	}
}
