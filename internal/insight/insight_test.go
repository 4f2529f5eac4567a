package insight

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/orbit/internal/concept"
	"github.com/abhisek/orbit/internal/llm"
)

var gan = &concept.Node{
	ID:          "gan",
	Name:        "GANs",
	Description: "Two networks compete: a generator and a discriminator.",
}

func TestGenerate_ReturnsInsight(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{"insight":"  Two minds in a duel forge reality.  "}`),
	})
	g := New(mock, DefaultConfig())

	text, err := g.Generate(context.Background(), gan)
	require.NoError(t, err)
	assert.Equal(t, "Two minds in a duel forge reality.", text)

	require.Equal(t, 1, mock.CallCount())
	req := mock.Calls[0]
	assert.Equal(t, InsightSchema, req.Schema)
	assert.Equal(t, "gan", req.ConceptID)
	assert.Contains(t, req.Prompt, `"GANs"`)
	assert.Contains(t, req.Prompt, "Context: Two networks compete")
	assert.Contains(t, req.Prompt, "under 50 words")
}

func TestGenerate_Caches(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(`{"insight":"first"}`)},
		llm.MockResponse{Content: json.RawMessage(`{"insight":"second"}`)},
	)
	g := New(mock, DefaultConfig())

	for range 2 {
		text, err := g.Generate(context.Background(), gan)
		require.NoError(t, err)
		assert.Equal(t, "first", text)
	}
	assert.Equal(t, 1, mock.CallCount())

	g.Forget()
	text, err := g.Generate(context.Background(), gan)
	require.NoError(t, err)
	assert.Equal(t, "second", text)
}

func TestGenerate_NoProvider(t *testing.T) {
	_, err := New(nil, DefaultConfig()).Generate(context.Background(), gan)
	var nc *llm.ErrNotConfigured
	require.ErrorAs(t, err, &nc)
	assert.Equal(t, MsgNotConfigured, Message(err))
}

func TestGenerate_ProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("503")}})
	_, err := New(mock, DefaultConfig()).Generate(context.Background(), gan)
	require.Error(t, err)
	assert.Equal(t, MsgUnavailable, Message(err))
}

func TestGenerate_EmptyInsightIsInvalid(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"insight":"   "}`)})
	_, err := New(mock, DefaultConfig()).Generate(context.Background(), gan)
	var inv *llm.ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)
}

func TestBuildUserMessage_NoDescription(t *testing.T) {
	msg := buildUserMessage(&concept.Node{ID: "ai", Name: "AI"})
	assert.NotContains(t, msg, "Context:")
	assert.True(t, strings.HasPrefix(msg, `Provide a concise, fascinating insight about "AI"`))
}
