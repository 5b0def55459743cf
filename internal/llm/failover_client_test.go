package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/wolfman30/sales-call-agent/pkg/logging"
)

func TestFailoverUsesSecondary(t *testing.T) {
	primaryCalls, secondaryCalls := 0, 0
	primary := ClientFunc(func(ctx context.Context, req Request) (Response, error) {
		primaryCalls++
		return Response{}, errors.New("primary down")
	})
	secondary := ClientFunc(func(ctx context.Context, req Request) (Response, error) {
		secondaryCalls++
		if req.Model != "" {
			t.Errorf("secondary should use its own model, got %q", req.Model)
		}
		return Response{Text: "from secondary"}, nil
	})

	resp, err := NewFailoverClient(primary, secondary, logging.Discard()).Complete(context.Background(), Request{Model: "primary-model"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "from secondary" || primaryCalls != 1 || secondaryCalls != 1 {
		t.Fatalf("unexpected result %q primary=%d secondary=%d", resp.Text, primaryCalls, secondaryCalls)
	}
}

func TestFailoverWithoutSecondaryReturnsPrimaryError(t *testing.T) {
	want := errors.New("primary down")
	primary := ClientFunc(func(ctx context.Context, req Request) (Response, error) { return Response{}, want })
	_, err := NewFailoverClient(primary, nil, logging.Discard()).Complete(context.Background(), Request{})
	if !errors.Is(err, want) {
		t.Fatalf("expected primary error, got %v", err)
	}
}

func TestFailoverSkipsSecondaryOnPrimarySuccess(t *testing.T) {
	primary := ClientFunc(func(ctx context.Context, req Request) (Response, error) { return Response{Text: "ok"}, nil })
	secondary := ClientFunc(func(ctx context.Context, req Request) (Response, error) {
		t.Fatal("secondary should not be called")
		return Response{}, nil
	})
	resp, err := NewFailoverClient(primary, secondary, nil).Complete(context.Background(), Request{})
	if err != nil || resp.Text != "ok" {
		t.Fatalf("unexpected %v %v", resp, err)
	}
}
