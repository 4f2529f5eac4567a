// Package insight produces short AI-written insights about concepts.
package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/orbit/internal/concept"
	"github.com/abhisek/orbit/internal/llm"
)

// Messages shown in place of an insight.
const (
	MsgNotConfigured = "Please add your API key (GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY or OPENROUTER_API_KEY) to generate insights."
	MsgUnavailable   = "Unable to generate insight at this moment."
)

// Config controls insight generation.
type Config struct {
	MaxTokens   int
	Temperature float64
	// Timeout bounds one Generate call. Zero means no extra bound.
	Timeout time.Duration
}

// DefaultConfig returns the default insight settings.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   256,
		Temperature: 0.8,
		Timeout:     30 * time.Second,
	}
}

// Generator asks an LLM for insights and caches them per concept id for
// the life of the process.
type Generator struct {
	provider llm.Provider
	config   Config

	mu    sync.Mutex
	cache map[string]string
}

// New creates a Generator. provider may be nil when no LLM is configured;
// Generate then returns *llm.ErrNotConfigured.
func New(provider llm.Provider, cfg Config) *Generator {
	return &Generator{provider: provider, config: cfg, cache: make(map[string]string)}
}

type insightOutput struct {
	Insight string `json:"insight"`
}

// Generate returns an insight about n.
func (g *Generator) Generate(ctx context.Context, n *concept.Node) (string, error) {
	if n == nil {
		return "", fmt.Errorf("no concept")
	}
	if g.provider == nil {
		return "", &llm.ErrNotConfigured{}
	}
	if text, ok := g.cached(n.ID); ok {
		return text, nil
	}

	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Prompt:      buildUserMessage(n),
		Schema:      InsightSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
		ConceptID:   n.ID,
	})
	if err != nil {
		return "", fmt.Errorf("generate insight for %s: %w", n.ID, err)
	}

	var out insightOutput
	if err := resp.Decode(&out); err != nil {
		return "", err
	}
	text := strings.TrimSpace(out.Insight)
	if text == "" {
		return "", &llm.ErrInvalidResponse{Content: resp.Content, Err: errors.New("empty insight")}
	}

	g.mu.Lock()
	g.cache[n.ID] = text
	g.mu.Unlock()
	return text, nil
}

// Forget drops every cached insight, e.g. after the concept file changes.
func (g *Generator) Forget() {
	g.mu.Lock()
	g.cache = make(map[string]string)
	g.mu.Unlock()
}

func (g *Generator) cached(id string) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	text, ok := g.cache[id]
	return text, ok
}

// Message turns a Generate error into the text shown to the learner.
func Message(err error) string {
	var nc *llm.ErrNotConfigured
	if errors.As(err, &nc) {
		return MsgNotConfigured
	}
	return MsgUnavailable
}
