// Package main drives the running API through complete sales calls.
//
// Scenarios:
//   - anonymous call with the default persona
//   - account signup, agent setup and a full call with summary and export
//   - tenant isolation between two accounts
//   - authentication required on protected routes
//
// The server must run with REQUIRE_EMAIL_VERIFICATION=false so signup returns
// a session.
//
// Usage:
//
//	API_BASE_URL=http://localhost:8080 go run scripts/e2e/run_e2e.go              # runs all
//	API_BASE_URL=http://localhost:8080 go run scripts/e2e/run_e2e.go full-call    # runs one
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

const testPassword = "e2e-password-123"

var (
	apiBase string
	client  = &http.Client{Timeout: 60 * time.Second}
)

type scenario struct {
	Name string
	Fn   func(t *T)
}

// T is a lightweight test context for a single scenario.
type T struct {
	passed int
	failed int
	name   string
}

func (t *T) check(name string, ok bool) {
	if ok {
		fmt.Printf("    PASS: %s\n", name)
		t.passed++
	} else {
		fmt.Printf("    FAIL: %s\n", name)
		t.failed++
	}
}

func (t *T) fatalf(format string, args ...any) {
	fmt.Printf("    FATAL: "+format+"\n", args...)
	t.failed++
}

type result struct {
	status int
	body   map[string]any
	raw    []byte
	header http.Header
}

func (r result) str(key string) string {
	v, _ := r.body[key].(string)
	return v
}

func call(method, path, token string, payload any) (result, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return result{}, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, apiBase+path, body)
	if err != nil {
		return result{}, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return result{}, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return result{}, err
	}
	out := result{status: resp.StatusCode, raw: raw, header: resp.Header}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(raw, &out.body)
	}
	return out, nil
}

func signup(t *T, label string) string {
	email := fmt.Sprintf("e2e-%s-%s@example.com", label, uuid.NewString()[:8])
	res, err := call(http.MethodPost, "/auth/signup", "", map[string]string{
		"email": email, "password": testPassword, "full_name": "E2E " + label,
	})
	if err != nil {
		t.fatalf("signup: %v", err)
		return ""
	}
	token := res.str("token")
	if res.status != http.StatusCreated || token == "" {
		t.fatalf("signup returned %d without a session (is email verification enabled?): %s", res.status, res.raw)
		return ""
	}
	return token
}

func createAgent(t *T, token, business string) string {
	res, err := call(http.MethodPost, "/agents", token, map[string]string{
		"agent_name":    "Sam",
		"business_name": business,
		"industry":      "Home services",
		"services":      "Roof repair, gutter cleaning",
		"tone":          "friendly",
		"call_goal":     "book an inspection",
	})
	if err != nil {
		t.fatalf("create agent: %v", err)
		return ""
	}
	t.check("agent created (201)", res.status == http.StatusCreated)
	return res.str("agent_id")
}

func startCall(t *T, token, agentID string) (string, string) {
	var payload any
	if agentID != "" {
		payload = map[string]string{"agent_id": agentID}
	}
	res, err := call(http.MethodPost, "/calls/start", token, payload)
	if err != nil {
		t.fatalf("start call: %v", err)
		return "", ""
	}
	t.check("call started (200)", res.status == http.StatusOK)
	return res.str("conversation_id"), res.str("greeting_text")
}

func send(t *T, convID, text string) result {
	res, err := call(http.MethodPost, "/calls/message", "", map[string]string{
		"conversation_id": convID, "message": text,
	})
	if err != nil {
		t.fatalf("message %q: %v", text, err)
	}
	return res
}

func anonymousCall(t *T) {
	convID, greeting := startCall(t, "", "")
	if convID == "" {
		t.fatalf("no conversation id")
		return
	}
	t.check("default greeting returned", strings.Contains(greeting, "Alex"))

	res := send(t, convID, "Hi there")
	t.check("reply is non-empty", res.str("reply_text") != "")
	t.check("call continues after greeting", res.body["should_end_call"] == false)

	res = send(t, convID, "Okay, bye")
	t.check("goodbye ends the call", res.body["should_end_call"] == true)

	end, err := call(http.MethodPost, "/calls/end", "", map[string]string{"conversation_id": convID})
	if err != nil {
		t.fatalf("end: %v", err)
		return
	}
	d, _ := end.body["duration"].(float64)
	t.check("duration is non-negative", end.status == http.StatusOK && d >= 0)
}

func fullCall(t *T) {
	token := signup(t, "owner")
	if token == "" {
		return
	}
	agentID := createAgent(t, token, "Summit Roofing")
	if agentID == "" {
		t.fatalf("no agent id")
		return
	}

	convID, greeting := startCall(t, token, agentID)
	if convID == "" {
		return
	}
	t.check("greeting mentions the business", strings.Contains(greeting, "Summit Roofing"))

	for _, msg := range []string{
		"Hi, our gutters overflow every time it rains.",
		"How much does a cleaning cost?",
		"Sounds good, can someone come out Thursday?",
	} {
		res := send(t, convID, msg)
		t.check(fmt.Sprintf("reply to %q", msg), res.status == http.StatusOK && res.str("reply_text") != "")
	}

	end, err := call(http.MethodPost, "/calls/end", "", map[string]string{"conversation_id": convID})
	t.check("call ended", err == nil && end.status == http.StatusOK)

	sum, err := call(http.MethodPost, "/calls/summarize", "", map[string]string{"conversation_id": convID})
	t.check("summary produced", err == nil && sum.status == http.StatusOK && sum.str("summary") != "")
	fmt.Printf("    sentiment: %s\n", sum.str("sentiment"))

	detail, err := call(http.MethodGet, "/conversations/"+convID, token, nil)
	t.check("owner reads conversation", err == nil && detail.status == http.StatusOK)

	export, err := call(http.MethodGet, "/conversations/"+convID+"/export", token, nil)
	t.check("export downloads transcript", err == nil && export.status == http.StatusOK &&
		strings.Contains(export.header.Get("Content-Disposition"), "attachment") &&
		strings.Contains(string(export.raw), "gutters"))

	stats, err := call(http.MethodGet, "/statistics?agent_id="+agentID, token, nil)
	if err != nil {
		t.fatalf("statistics: %v", err)
		return
	}
	s, _ := stats.body["statistics"].(map[string]any)
	total, _ := s["total_calls"].(float64)
	t.check("statistics count the call", total == 1)
}

func tenantIsolation(t *T) {
	owner := signup(t, "alpha")
	other := signup(t, "beta")
	if owner == "" || other == "" {
		return
	}
	agentID := createAgent(t, owner, "Alpha Plumbing")
	convID, _ := startCall(t, owner, agentID)

	for _, probe := range []struct {
		name, method, path string
	}{
		{"other user cannot read agent", http.MethodGet, "/agents/" + agentID},
		{"other user cannot delete agent", http.MethodDelete, "/agents/" + agentID},
		{"other user cannot read conversation", http.MethodGet, "/conversations/" + convID},
		{"other user cannot read agent statistics", http.MethodGet, "/statistics?agent_id=" + agentID},
	} {
		res, err := call(probe.method, probe.path, other, nil)
		t.check(probe.name, err == nil && res.status == http.StatusForbidden)
	}

	res, err := call(http.MethodGet, "/agents/"+agentID, owner, nil)
	t.check("agent still exists for owner", err == nil && res.status == http.StatusOK)
}

func authRequired(t *T) {
	for _, path := range []string{"/auth/me", "/agents", "/conversations", "/statistics", "/admin/stats"} {
		res, err := call(http.MethodGet, path, "", nil)
		t.check(path+" requires a token", err == nil && res.status == http.StatusUnauthorized)
	}
	res, err := call(http.MethodGet, "/agents", "not-a-token", nil)
	t.check("garbage token rejected", err == nil && res.status == http.StatusUnauthorized)
}

func main() {
	apiBase = strings.TrimRight(os.Getenv("API_BASE_URL"), "/")
	if apiBase == "" {
		apiBase = "http://localhost:8080"
	}

	scenarios := []scenario{
		{"anonymous-call", anonymousCall},
		{"full-call", fullCall},
		{"tenant-isolation", tenantIsolation},
		{"auth-required", authRequired},
	}

	filter := ""
	if len(os.Args) > 1 {
		filter = os.Args[1]
	}

	if res, err := call(http.MethodGet, "/health", "", nil); err != nil || res.status != http.StatusOK {
		fmt.Printf("API at %s is not healthy: %v\n", apiBase, err)
		os.Exit(1)
	}

	totalPassed, totalFailed, ran := 0, 0, 0
	for _, sc := range scenarios {
		if filter != "" && sc.Name != filter {
			continue
		}
		ran++
		fmt.Printf("\n=== %s ===\n", sc.Name)
		t := &T{name: sc.Name}
		sc.Fn(t)
		totalPassed += t.passed
		totalFailed += t.failed
	}
	if ran == 0 {
		fmt.Printf("unknown scenario %q\n", filter)
		os.Exit(2)
	}

	fmt.Printf("\n%d passed, %d failed\n", totalPassed, totalFailed)
	if totalFailed > 0 {
		os.Exit(1)
	}
}
