package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func insightReply(text string) MockResponse {
	content, _ := json.Marshal(map[string]string{"insight": text})
	return MockResponse{Content: content}
}

func insightRequest(conceptID string) Request {
	return Request{Prompt: conceptID, Schema: insightTestSchema(), ConceptID: conceptID, MaxTokens: 256}
}

func TestRetry_Outcomes(t *testing.T) {
	down := MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}}

	tests := []struct {
		name      string
		script    []MockResponse
		wantErr   bool
		wantCalls int
	}{
		{"first answer", []MockResponse{insightReply("RL learns from reward.")}, false, 1},
		{"outage then answer", []MockResponse{down, insightReply("RL learns from reward.")}, false, 2},
		{"outage every time", []MockResponse{down, down, down, insightReply("never asked")}, true, 3},
		{"rate limited then answer", []MockResponse{
			{Err: &ErrRateLimit{RetryAfter: time.Millisecond, Err: errors.New("429")}},
			insightReply("RL learns from reward."),
		}, false, 2},
		{"truncated insight", []MockResponse{
			{Err: &ErrMaxTokensExceeded{Content: json.RawMessage(`{"insight":"RL le`)}},
			insightReply("never asked"),
		}, true, 1},
		{"bad key", []MockResponse{
			{Err: &ErrUnauthorized{Err: errors.New("401")}},
			insightReply("never asked"),
		}, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.script...)
			resp, err := WithRetry(mock, retryConfig()).Generate(context.Background(), insightRequest("rl"))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Generate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && resp == nil {
				t.Fatal("expected a response")
			}
			if mock.CallCount() != tt.wantCalls {
				t.Fatalf("expected %d calls, got %d", tt.wantCalls, mock.CallCount())
			}
		})
	}
}

func TestRetry_MalformedInsightAskedOnceMore(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"summary":"wrong shape"}`)},
		insightReply("Diffusion models learn to undo noise."),
	)
	p := WithRetry(WithValidation(mock), retryConfig())

	resp, err := p.Generate(context.Background(), insightRequest("diffusion"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out struct{ Insight string }
	if err := resp.Decode(&out); err != nil || out.Insight != "Diffusion models learn to undo noise." {
		t.Fatalf("unexpected insight %q, %v", out.Insight, err)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetry_MalformedTwiceGivesUp(t *testing.T) {
	wrong := MockResponse{Content: json.RawMessage(`not json`)}
	mock := NewMockProvider(wrong, wrong, insightReply("never asked"))
	p := WithRetry(WithValidation(mock), retryConfig())

	_, err := p.Generate(context.Background(), insightRequest("diffusion"))
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetry_CancelledContextStopsWaiting(t *testing.T) {
	down := MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}}
	mock := NewMockProvider(down, down, insightReply("never asked"))
	cfg := retryConfig()
	cfg.InitialWait = time.Hour
	cfg.MaxWait = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := WithRetry(mock, cfg).Generate(ctx, insightRequest("gan"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_ZeroAttemptsStillAsks(t *testing.T) {
	mock := NewMockProvider(insightReply("Agents act."))
	p := WithRetry(mock, RetryConfig{})

	if _, err := p.Generate(context.Background(), insightRequest("agents")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.CallCount() != 1 || p.ModelID() != "mock" {
		t.Fatalf("unexpected calls %d / model %q", mock.CallCount(), p.ModelID())
	}
}
