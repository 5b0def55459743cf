package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/sales-call-agent/internal/apperr"
	"github.com/wolfman30/sales-call-agent/internal/fallback"
	"github.com/wolfman30/sales-call-agent/internal/llm"
	"github.com/wolfman30/sales-call-agent/internal/observability/metrics"
	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

var engineTracer = otel.Tracer("salesagent.internal.conversation.engine")

const (
	replyMaxTokens   = 150
	replyTemperature = 0.9
	defaultHistory   = 10
)

// Reply sources.
const (
	SourceLLM      = "llm"
	SourceFallback = "fallback"
)

// Reply is the agent's answer to one caller turn.
type Reply struct {
	Text          string
	ShouldEndCall bool
	Timestamp     time.Time
	Source        string
}

// Engine turns caller utterances into agent replies. It keeps no conversation
// state between calls; everything is reloaded from the Store.
type Engine struct {
	store        Store
	client       llm.Client
	script       *fallback.Script
	policy       RetryPolicy
	locker       Locker
	metrics      *metrics.ConversationMetrics
	logger       *logging.Logger
	historyLimit int
	scriptOnly   bool
	now          func() time.Time
}

type EngineOption func(*Engine)

func WithRetryPolicy(p RetryPolicy) EngineOption {
	return func(e *Engine) { e.policy = p.normalized() }
}

func WithLocker(l Locker) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.locker = l
		}
	}
}

func WithMetrics(m *metrics.ConversationMetrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

func WithLogger(l *logging.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithHistoryLimit(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.historyLimit = n
		}
	}
}

// WithScriptOnly answers every turn from the canned script (demo mode).
func WithScriptOnly(enabled bool) EngineOption {
	return func(e *Engine) { e.scriptOnly = enabled }
}

func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine wires the engine. A nil client sends every turn to the script.
func NewEngine(store Store, client llm.Client, script *fallback.Script, opts ...EngineOption) *Engine {
	if store == nil {
		panic("conversation: store cannot be nil")
	}
	if script == nil {
		script = fallback.New()
	}
	e := &Engine{
		store:        store,
		client:       client,
		script:       script,
		policy:       DefaultRetryPolicy(),
		locker:       NewLocalLocker(),
		logger:       logging.Default(),
		historyLimit: defaultHistory,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProduceReply answers one caller utterance and records the turn.
func (e *Engine) ProduceReply(ctx context.Context, conversationID, userText string) (*Reply, error) {
	text := strings.TrimSpace(userText)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if strings.TrimSpace(conversationID) == "" {
		return nil, ErrMissingConversation
	}

	ctx, span := engineTracer.Start(ctx, "conversation.produce_reply")
	defer span.End()
	span.SetAttributes(attribute.String("conversation.id", conversationID))

	unlock, err := e.locker.Lock(ctx, conversationID)
	if err != nil {
		span.RecordError(err)
		return nil, apperr.Internal(fmt.Errorf("conversation: lock turn: %w", err))
	}
	defer unlock()

	conv, err := e.store.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.EndedAt != nil {
		return nil, ErrCallEnded
	}
	meta, err := e.store.Metadata(ctx, conversationID)
	if err != nil {
		return nil, classifyStoreErr(err)
	}
	history, err := e.store.RecentMessages(ctx, conversationID, e.historyLimit)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	instruction := meta.SystemInstruction()
	if strings.TrimSpace(instruction) == "" {
		instruction = DefaultSystemInstruction
	}
	req := llm.Request{
		System:      []string{instruction},
		Messages:    append(toLLMMessages(history), llm.Message{Role: llm.RoleUser, Content: text}),
		MaxTokens:   replyMaxTokens,
		Temperature: replyTemperature,
	}

	replyText, source, err := e.reply(ctx, conversationID, text, req)
	if err != nil {
		return nil, err
	}

	shouldEnd := IsGoodbye(text)
	clean, marked := StripEndMarker(replyText)
	if marked {
		shouldEnd = true
	}
	if clean == "" {
		clean = e.script.Reply(text)
		source = SourceFallback
	}

	pair, err := e.store.AppendTurn(ctx, conversationID, text, clean)
	if err != nil {
		span.RecordError(err)
		e.logger.Error("failed to persist turn", "conversation_id", conversationID, "error", err)
		return nil, classifyStoreErr(err)
	}

	e.metrics.ObserveTurn(source, shouldEnd)
	e.logger.Info("turn persisted",
		"conversation_id", conversationID,
		"source", source,
		"should_end_call", shouldEnd,
		"history_messages", len(history),
	)

	ts := e.now().UTC()
	if len(pair) == 2 && !pair[1].CreatedAt.IsZero() {
		ts = pair[1].CreatedAt
	}
	return &Reply{Text: clean, ShouldEndCall: shouldEnd, Timestamp: ts, Source: source}, nil
}

// reply asks the model under the retry policy and falls back to the script.
func (e *Engine) reply(ctx context.Context, conversationID, userText string, req llm.Request) (string, string, error) {
	if e.scriptOnly || e.client == nil {
		reason := "unconfigured"
		if e.scriptOnly {
			reason = "script_only"
		}
		e.metrics.ObserveFallback(reason)
		return e.script.Reply(userText), SourceFallback, nil
	}

	resp, err := e.completeWithRetry(ctx, "reply", req)
	if err == nil {
		return resp.Text, SourceLLM, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", "", apperr.Internal(ctxErr)
	}

	reason := "permanent"
	if llm.IsTransient(err) {
		reason = "exhausted"
	}
	if e.policy.OnExhausted == ExhaustionFail {
		return "", "", apperr.Wrap(apperr.KindUpstreamUnavailable, "language model unavailable", err)
	}

	e.metrics.ObserveFallback(reason)
	e.logger.Warn("llm unavailable, answering from script",
		"conversation_id", conversationID,
		"reason", reason,
		"error", err,
	)
	return e.script.Reply(userText), SourceFallback, nil
}

// completeWithRetry retries transient failures per the policy. Empty model
// text counts as a permanent failure.
func (e *Engine) completeWithRetry(ctx context.Context, purpose string, req llm.Request) (llm.Response, error) {
	ctx, span := engineTracer.Start(ctx, "conversation.llm")
	defer span.End()
	span.SetAttributes(attribute.String("llm.purpose", purpose))

	policy := e.policy
	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			e.metrics.ObserveRetry(purpose)
			delay := policy.Delay(attempt)
			e.logger.Warn("llm transient failure, retrying",
				"purpose", purpose, "attempt", attempt, "delay", delay.String(), "error", lastErr)
			if err := policy.Sleep(ctx, delay); err != nil {
				return llm.Response{}, err
			}
		}

		resp, err := e.attempt(ctx, purpose, req)
		if err == nil {
			span.SetAttributes(attribute.Int("llm.attempts", attempt+1))
			return resp, nil
		}
		lastErr = err
		span.RecordError(err)
		if ctx.Err() != nil || !llm.IsTransient(err) {
			break
		}
	}
	return llm.Response{}, lastErr
}

func (e *Engine) attempt(ctx context.Context, purpose string, req llm.Request) (llm.Response, error) {
	callCtx := ctx
	if e.policy.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.policy.AttemptTimeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := e.client.Complete(callCtx, req)
	latency := time.Since(start)

	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case strings.TrimSpace(resp.Text) == "":
		outcome = "empty"
		err = llm.ErrEmptyResponse
	}
	e.metrics.ObserveLLMCall(purpose, outcome, latency.Seconds())
	if err != nil {
		return llm.Response{}, err
	}
	e.metrics.ObserveTokens(purpose, resp.Usage.InputTokens, resp.Usage.OutputTokens)
	e.logger.Debug("llm completion finished",
		"purpose", purpose,
		"latency_ms", latency.Milliseconds(),
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"stop_reason", resp.StopReason,
	)
	return resp, nil
}

func toLLMMessages(history []Message) []llm.Message {
	out := make([]llm.Message, 0, len(history)+1)
	for _, msg := range history {
		role := llm.RoleUser
		if msg.Role == RoleAgent {
			role = llm.RoleAssistant
		}
		out = append(out, llm.Message{Role: role, Content: msg.Content})
	}
	return out
}

// classifyStoreErr keeps typed errors and hides everything else as internal.
func classifyStoreErr(err error) error {
	var typed *apperr.Error
	if errors.As(err, &typed) {
		return err
	}
	return apperr.Internal(err)
}
