package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code-mentor/api/internal/llm"
)

func newTestEngine(t *testing.T, h http.HandlerFunc) *Engine {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	e := New("sk-test", "")
	e.BaseURL = srv.URL
	return e.WithHTTPClient(srv.Client())
}

func TestGenerateSendsPromptAndImages(t *testing.T) {
	var got map[string]any
	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"HINTS:\n1. a"}}]}`))
	})

	out, err := e.Generate(context.Background(), "the prompt", []string{"data:image/jpeg;base64,/9j/4AAQ", "junk!!"})
	require.NoError(t, err)
	assert.Equal(t, "HINTS:\n1. a", out)

	assert.Equal(t, DefaultModel, got["model"])
	msgs := got["messages"].([]any)
	require.Len(t, msgs, 1)
	content := msgs[0].(map[string]any)["content"].([]any)
	require.Len(t, content, 2)
	assert.Equal(t, "the prompt", content[0].(map[string]any)["text"])
	img := content[1].(map[string]any)["image_url"].(map[string]any)
	assert.Equal(t, "data:image/jpeg;base64,/9j/4AAQ", img["url"])
}

func TestGenerateProviderError(t *testing.T) {
	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
	})

	_, err := e.Generate(context.Background(), "p", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai 429")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGenerateEmptyChoices(t *testing.T) {
	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})
	_, err := e.Generate(context.Background(), "p", nil)
	assert.ErrorContains(t, err, "empty response")
}

func TestGenerateWithoutKeySkipsNetwork(t *testing.T) {
	called := false
	e := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) { called = true })
	e.APIKey = ""

	_, err := e.Generate(context.Background(), "p", nil)
	assert.True(t, errors.Is(err, llm.ErrNotConfigured))
	assert.False(t, called)
}
