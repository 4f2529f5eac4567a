package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MockResponse is one scripted reply of a MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider replays scripted replies in order and keeps every request
// it was sent. Once the script runs out it answers with Fallback, or fails
// with ErrProviderUnavailable when there is none.
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse
	Calls  []Request

	// Fallback answers requests after the script is exhausted.
	Fallback func(Request) MockResponse
}

// NewMockProvider creates a MockProvider that replays script.
func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

// NewOfflineProvider answers every insight request with a fixed note, so
// the whole flow can be tried without an API key (provider "mock").
func NewOfflineProvider() *MockProvider {
	return &MockProvider{Fallback: offlineInsight}
}

func offlineInsight(req Request) MockResponse {
	text := "Offline mode: set an API key to get a real insight"
	if req.ConceptID != "" {
		text += fmt.Sprintf(" about %s", req.ConceptID)
	}
	content, _ := json.Marshal(map[string]string{"insight": text + "."})
	return MockResponse{Content: content}
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	var (
		next MockResponse
		ok   bool
	)
	if len(m.script) > 0 {
		next, m.script, ok = m.script[0], m.script[1:], true
	}
	fallback := m.Fallback
	m.mu.Unlock()

	if !ok {
		if fallback == nil {
			return nil, &ErrProviderUnavailable{}
		}
		next = fallback(req)
	}
	if next.Err != nil {
		return nil, next.Err
	}
	return &Response{Content: next.Content, Usage: next.Usage, Model: "mock", StopReason: "end"}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

// CallCount returns how many requests reached the provider.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
