package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestMockProvider_ReplaysScript(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"b":2}`)},
	)

	resp1, err := mock.Generate(context.Background(), Request{Prompt: "first", ConceptID: "ml"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp1.Content) != `{"a":1}` {
		t.Fatalf("expected {\"a\":1}, got %s", resp1.Content)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), Request{Prompt: "second", ConceptID: "dl"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp2.Content) != `{"b":2}` {
		t.Fatalf("expected {\"b\":2}, got %s", resp2.Content)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error from empty queue")
	}
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{}`)},
	)

	req := Request{
		System:    "sys",
		Prompt:    "hello",
		ConceptID: "nn",
	}
	_, _ = mock.Generate(context.Background(), req)

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" {
		t.Fatalf("expected system 'sys', got %q", mock.Calls[0].System)
	}
	if mock.Calls[0].ConceptID != "nn" {
		t.Fatalf("expected concept 'nn', got %q", mock.Calls[0].ConceptID)
	}
}

func TestMockProvider_ReturnsConfiguredError(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: 0}},
	)

	_, err := mock.Generate(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got: %T", err)
	}
}

func TestMockProvider_ModelID(t *testing.T) {
	mock := NewMockProvider()
	if mock.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", mock.ModelID())
	}
}

func insightTestSchema() *Schema {
	return &Schema{
		Name:        "concept-insight",
		Description: "A short insight about a concept",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"insight": map[string]any{"type": "string"},
			},
			"required":             []any{"insight"},
			"additionalProperties": false,
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "anthropic without key",
			cfg:     Config{Provider: ProviderAnthropic},
			wantErr: true,
		},
		{
			name:    "anthropic with key",
			cfg:     Config{Provider: ProviderAnthropic, APIKey: "sk-test"},
			wantErr: false,
		},
		{
			name:    "gemini without key",
			cfg:     Config{Provider: ProviderGemini},
			wantErr: true,
		},
		{
			name:    "openrouter with key",
			cfg:     Config{Provider: ProviderOpenRouter, APIKey: "sk-or"},
			wantErr: false,
		},
		{
			name:    "mock needs no key",
			cfg:     Config{Provider: ProviderMock},
			wantErr: false,
		},
		{
			name:    "no provider",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name:    "unknown provider",
			cfg:     Config{Provider: "unknown"},
			wantErr: true,
		},
		{
			name:    "negative rate",
			cfg:     Config{Provider: ProviderMock, Rate: RateConfig{PerMinute: -1}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateNotConfigured(t *testing.T) {
	err := Config{Provider: ProviderOpenAI}.Validate()
	var nc *ErrNotConfigured
	if !errors.As(err, &nc) {
		t.Fatalf("expected ErrNotConfigured, got %T", err)
	}
	if nc.Provider != ProviderOpenAI {
		t.Fatalf("expected provider openai, got %q", nc.Provider)
	}
}

func TestDiscoverConfig(t *testing.T) {
	env := map[string]string{
		"ANTHROPIC_API_KEY":  "sk-ant",
		"OPENROUTER_API_KEY": "sk-or",
	}
	cfg, ok := DiscoverConfig(func(k string) string { return env[k] })
	if !ok {
		t.Fatal("expected a provider to be discovered")
	}
	if cfg.Provider != ProviderAnthropic || cfg.APIKey != "sk-ant" {
		t.Fatalf("expected anthropic with its key, got %q/%q", cfg.Provider, cfg.APIKey)
	}
	if cfg.ModelName() != "claude-haiku" {
		t.Fatalf("expected default model, got %q", cfg.ModelName())
	}

	env["GEMINI_API_KEY"] = "g"
	cfg, _ = DiscoverConfig(func(k string) string { return env[k] })
	if cfg.Provider != ProviderGemini {
		t.Fatalf("expected gemini to win, got %q", cfg.Provider)
	}

	if _, ok := DiscoverConfig(func(string) string { return "" }); ok {
		t.Fatal("expected nothing discovered")
	}
}

func TestResponse_Decode(t *testing.T) {
	var out struct{ Insight string }
	ok := &Response{Content: json.RawMessage(`{"insight":"hi"}`)}
	if err := ok.Decode(&out); err != nil || out.Insight != "hi" {
		t.Fatalf("unexpected decode result %q, %v", out.Insight, err)
	}

	bad := &Response{Content: json.RawMessage(`not json`)}
	var inv *ErrInvalidResponse
	if err := bad.Decode(&out); !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestOfflineProvider_AnswersEveryInsight(t *testing.T) {
	p := NewOfflineProvider()
	for i := 0; i < 2; i++ {
		resp, err := p.Generate(context.Background(), Request{ConceptID: "rl", Schema: insightTestSchema()})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := insightTestSchema().validate(resp.Content); err != nil {
			t.Fatalf("offline answer does not fit the insight schema: %v", err)
		}
		var out struct{ Insight string }
		if err := resp.Decode(&out); err != nil || !strings.Contains(out.Insight, "rl") {
			t.Fatalf("unexpected insight %q, %v", out.Insight, err)
		}
	}
	if p.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", p.CallCount())
	}
}

func TestNewProvider_Mock(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ProviderMock
	p, err := NewProvider(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", p.ModelID())
	}
	if _, ok := p.(*RateLimitedProvider); !ok {
		t.Fatalf("expected rate limited provider on the outside, got %T", p)
	}
}

func TestNewProvider_MissingKey(t *testing.T) {
	_, err := NewProvider(context.Background(), DefaultConfig(), nil, nil)
	var nc *ErrNotConfigured
	if !errors.As(err, &nc) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
