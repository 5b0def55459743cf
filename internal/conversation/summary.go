package conversation

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/wolfman30/sales-call-agent/internal/llm"
)

const (
	summaryMaxTokens   = 300
	summaryTemperature = 0.3

	summarySystemPrompt = "You are a professional conversation analyst."

	// SummaryFailedText is returned when the model cannot produce a summary.
	SummaryFailedText = "Error generating summary. Please try again."

	summaryInstructions = `
Please provide a concise summary of this sales conversation including:
1. Key topics discussed
2. Customer interests and needs
3. Action items or next steps
4. Overall sentiment (positive/neutral/negative)

Format the summary as:
**Key Topics:** ...
**Customer Interests:** ...
**Action Items:** ...
**Sentiment:** ...`
)

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Summary is the analysis of one conversation.
type Summary struct {
	Text      string `json:"summary"`
	Sentiment string `json:"sentiment"`
	Saved     bool   `json:"-"`
}

// Summarize asks the model to analyse the whole transcript and stores the
// result. Model failures never surface as errors: the failure text and a
// neutral sentiment replace whatever summary was stored before.
func (e *Engine) Summarize(ctx context.Context, conversationID string) (*Summary, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, ErrMissingConversation
	}
	ctx, span := engineTracer.Start(ctx, "conversation.summarize")
	defer span.End()
	span.SetAttributes(attribute.String("conversation.id", conversationID))

	if _, err := e.store.Get(ctx, conversationID); err != nil {
		return nil, err
	}
	msgs, err := e.store.Messages(ctx, conversationID)
	if err != nil {
		return nil, classifyStoreErr(err)
	}
	if len(msgs) == 0 {
		return nil, ErrNoMessages
	}

	if e.client == nil {
		return e.saveFailedSummary(ctx, conversationID), nil
	}

	req := llm.Request{
		System:      []string{summarySystemPrompt},
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: SummaryPrompt(msgs)}},
		MaxTokens:   summaryMaxTokens,
		Temperature: summaryTemperature,
	}
	resp, err := e.completeWithRetry(ctx, "summary", req)
	if err != nil {
		span.RecordError(err)
		e.logger.Warn("summary generation failed", "conversation_id", conversationID, "error", err)
		return e.saveFailedSummary(ctx, conversationID), nil
	}

	text := strings.TrimSpace(resp.Text)
	sentiment := DetectSentiment(text)
	if err := e.store.SaveSummary(ctx, conversationID, text, sentiment); err != nil {
		e.logger.Error("failed to persist summary", "conversation_id", conversationID, "error", err)
		return nil, classifyStoreErr(err)
	}
	e.metrics.ObserveSummary("ok", sentiment)
	return &Summary{Text: text, Sentiment: sentiment, Saved: true}, nil
}

func (e *Engine) saveFailedSummary(ctx context.Context, conversationID string) *Summary {
	e.metrics.ObserveSummary("failed", SentimentNeutral)
	saved := true
	if err := e.store.SaveSummary(ctx, conversationID, SummaryFailedText, SentimentNeutral); err != nil {
		e.logger.Error("failed to persist failure summary", "conversation_id", conversationID, "error", err)
		saved = false
	}
	return &Summary{Text: SummaryFailedText, Sentiment: SentimentNeutral, Saved: saved}
}

// SummaryPrompt renders the transcript and the analysis instructions.
func SummaryPrompt(msgs []Message) string {
	var b strings.Builder
	b.WriteString("Conversation:\n\n")
	for _, msg := range msgs {
		b.WriteString(speakerLabel(msg.Role))
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	b.WriteString(summaryInstructions)
	return b.String()
}

// DetectSentiment applies the substring rule; positive wins over negative.
func DetectSentiment(summary string) string {
	lower := strings.ToLower(summary)
	switch {
	case strings.Contains(lower, SentimentPositive):
		return SentimentPositive
	case strings.Contains(lower, SentimentNegative):
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

func speakerLabel(role Role) string {
	if role == RoleAgent {
		return "Agent"
	}
	return "Customer"
}
