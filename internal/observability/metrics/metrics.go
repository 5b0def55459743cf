package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "salesagent"

// ConversationMetrics exposes counters/histograms for the call engine.
type ConversationMetrics struct {
	llmLatency      *prometheus.HistogramVec
	llmRetries      *prometheus.CounterVec
	llmTokens       *prometheus.CounterVec
	fallbackReplies *prometheus.CounterVec
	turns           *prometheus.CounterVec
	summaries       *prometheus.CounterVec
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "request_duration_seconds",
			Help:      "Latency of language model calls per attempt",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"purpose", "outcome"}),
		llmRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "retries_total",
			Help:      "Retries after transient language model failures",
		}, []string{"purpose"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Tokens consumed by language model calls",
		}, []string{"purpose", "direction"}),
		fallbackReplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "conversation",
			Name:      "fallback_replies_total",
			Help:      "Replies served from the canned script",
		}, []string{"reason"}),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "conversation",
			Name:      "turns_total",
			Help:      "Persisted conversation turns",
		}, []string{"source", "end_call"}),
		summaries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "conversation",
			Name:      "summaries_total",
			Help:      "Summary generations by outcome",
		}, []string{"status", "sentiment"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.llmLatency, m.llmRetries, m.llmTokens, m.fallbackReplies, m.turns, m.summaries)
	return m
}

func (m *ConversationMetrics) ObserveLLMCall(purpose, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(purpose, outcome).Observe(seconds)
}

func (m *ConversationMetrics) ObserveRetry(purpose string) {
	if m == nil {
		return
	}
	m.llmRetries.WithLabelValues(purpose).Inc()
}

func (m *ConversationMetrics) ObserveTokens(purpose string, input, output int32) {
	if m == nil {
		return
	}
	if input > 0 {
		m.llmTokens.WithLabelValues(purpose, "input").Add(float64(input))
	}
	if output > 0 {
		m.llmTokens.WithLabelValues(purpose, "output").Add(float64(output))
	}
}

func (m *ConversationMetrics) ObserveFallback(reason string) {
	if m == nil {
		return
	}
	m.fallbackReplies.WithLabelValues(reason).Inc()
}

func (m *ConversationMetrics) ObserveTurn(source string, endCall bool) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(source, boolLabel(endCall)).Inc()
}

func (m *ConversationMetrics) ObserveSummary(status, sentiment string) {
	if m == nil {
		return
	}
	m.summaries.WithLabelValues(status, sentiment).Inc()
}

// AccountMetrics counts identity flows.
type AccountMetrics struct {
	signups *prometheus.CounterVec
	logins  *prometheus.CounterVec
	emails  *prometheus.CounterVec
}

func NewAccountMetrics(reg prometheus.Registerer) *AccountMetrics {
	m := &AccountMetrics{
		signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "signups_total",
			Help:      "Account signups by email delivery outcome",
		}, []string{"email_sent"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by outcome",
		}, []string{"outcome"}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "emails_total",
			Help:      "Account emails by kind and status",
		}, []string{"kind", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.signups, m.logins, m.emails)
	return m
}

func (m *AccountMetrics) ObserveSignup(emailSent bool) {
	if m == nil {
		return
	}
	m.signups.WithLabelValues(boolLabel(emailSent)).Inc()
}

func (m *AccountMetrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *AccountMetrics) ObserveEmail(kind, status string) {
	if m == nil {
		return
	}
	m.emails.WithLabelValues(kind, status).Inc()
}

func boolLabel(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
