package conversation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wolfman30/sales-call-agent/internal/apperr"
	"github.com/wolfman30/sales-call-agent/internal/llm"
)

func TestSummarize_StubbedPositive(t *testing.T) {
	client := &recordingLLM{respond: func(int, llm.Request) (llm.Response, error) {
		return llm.Response{Text: "**Key Topics:** SEO\n**Sentiment:** Positive"}, nil
	}}
	engine, store, id := newTestEngine(t, client, &fakeSleeper{})

	for i := 0; i < 2; i++ {
		sum, err := engine.Summarize(context.Background(), id)
		if err != nil {
			t.Fatalf("Summarize: %v", err)
		}
		if sum.Sentiment != SentimentPositive {
			t.Fatalf("run %d: sentiment = %s, want positive", i, sum.Sentiment)
		}
	}

	req := client.requests[0]
	if req.MaxTokens != 300 || req.Temperature != 0.3 {
		t.Fatalf("unexpected summary params: %d %v", req.MaxTokens, req.Temperature)
	}
	if req.System[0] != "You are a professional conversation analyst." {
		t.Fatalf("unexpected analyst prompt %q", req.System[0])
	}
	if !strings.Contains(req.Messages[0].Content, "Agent: Hello from Sam.") {
		t.Fatalf("transcript missing greeting: %q", req.Messages[0].Content)
	}

	conv, _ := store.Get(context.Background(), id)
	if conv.Sentiment == nil || *conv.Sentiment != SentimentPositive {
		t.Fatalf("sentiment not persisted: %#v", conv.Sentiment)
	}
}

func TestSummarize_FailureOverwritesStoredSummary(t *testing.T) {
	calls := 0
	client := llm.ClientFunc(func(context.Context, llm.Request) (llm.Response, error) {
		calls++
		if calls == 1 {
			return llm.Response{Text: "Customer sounded negative about pricing."}, nil
		}
		return llm.Response{}, &llm.Error{Provider: "groq", StatusCode: 401, Err: errors.New("bad key")}
	})
	engine, store, id := newTestEngine(t, client, &fakeSleeper{})

	first, err := engine.Summarize(context.Background(), id)
	if err != nil {
		t.Fatalf("first summarize: %v", err)
	}
	if first.Sentiment != SentimentNegative {
		t.Fatalf("expected negative, got %s", first.Sentiment)
	}

	second, err := engine.Summarize(context.Background(), id)
	if err != nil {
		t.Fatalf("failed summarize must not error: %v", err)
	}
	if second.Text != SummaryFailedText || second.Sentiment != SentimentNeutral {
		t.Fatalf("unexpected failure summary %#v", second)
	}

	conv, _ := store.Get(context.Background(), id)
	if conv.Summary == nil || *conv.Summary != SummaryFailedText {
		t.Fatalf("expected failure text to replace stored summary, got %#v", conv.Summary)
	}
	if conv.Sentiment == nil || *conv.Sentiment != SentimentNeutral {
		t.Fatalf("expected neutral stored sentiment, got %#v", conv.Sentiment)
	}
}

func TestSummarize_ScriptOnlyStoresFailureSummary(t *testing.T) {
	engine, store, id := newTestEngine(t, nil, &fakeSleeper{})

	sum, err := engine.Summarize(context.Background(), id)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if sum.Text != SummaryFailedText || !sum.Saved {
		t.Fatalf("unexpected summary %#v", sum)
	}
	conv, _ := store.Get(context.Background(), id)
	if conv.Summary == nil || *conv.Summary != SummaryFailedText {
		t.Fatalf("expected stored failure summary, got %#v", conv.Summary)
	}
}

func TestSummarize_UnknownOrEmpty(t *testing.T) {
	engine, store, _ := newTestEngine(t, nil, &fakeSleeper{})

	if _, err := engine.Summarize(context.Background(), "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	if _, err := store.Create(context.Background(), NewConversation{ID: "silent", Metadata: Metadata{}}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := engine.Summarize(context.Background(), "silent"); !errors.Is(err, ErrNoMessages) {
		t.Fatalf("expected no messages, got %v", err)
	}
}

func TestDetectSentiment(t *testing.T) {
	cases := map[string]string{
		"Overall POSITIVE experience":            SentimentPositive,
		"negative at first, positive by the end": SentimentPositive,
		"Sentiment: negative":                    SentimentNegative,
		"mixed feelings":                         SentimentNeutral,
	}
	for in, want := range cases {
		if got := DetectSentiment(in); got != want {
			t.Errorf("DetectSentiment(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestSummaryPromptLabels(t *testing.T) {
	prompt := SummaryPrompt([]Message{
		{Role: RoleAgent, Content: "Hi!"},
		{Role: RoleUser, Content: "Need a website"},
	})
	if !strings.HasPrefix(prompt, "Conversation:\n\nAgent: Hi!\nCustomer: Need a website\n") {
		t.Fatalf("unexpected prompt %q", prompt)
	}
	if !strings.Contains(prompt, "**Key Topics:**") {
		t.Fatalf("format instructions missing")
	}
}
