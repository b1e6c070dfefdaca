package lmstudio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpora/internal/core/domain"
	"github.com/custodia-labs/corpora/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewLLMService(LLMConfig{BaseURL: server.URL, Model: "local-model"})
}

func TestChat_ReturnsContent(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"), "local server needs no key")
		w.Write([]byte(`{"choices":[{"message":{"content":"a reply"}}]}`))
	})

	reply, err := svc.Chat(context.Background(),
		[]driven.ChatMessage{{Role: "user", Content: "hello"}}, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "a reply", reply)
}

func TestChat_ErrorTextInBodyIsPassedThrough(t *testing.T) {
	// LM Studio can answer 200 OK with an error string as the
	// completion. The adapter must not mask it; validation is the
	// caller's job.
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"[LM Studio] model not loaded"}}]}`))
	})

	reply, err := svc.Chat(context.Background(),
		[]driven.ChatMessage{{Role: "user", Content: "hello"}}, driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "[LM Studio] model not loaded", reply)
}

func TestChat_UnreachableServer(t *testing.T) {
	svc := NewLLMService(LLMConfig{BaseURL: "http://127.0.0.1:1"})

	_, err := svc.Chat(context.Background(),
		[]driven.ChatMessage{{Role: "user", Content: "hello"}}, driven.ChatOptions{})
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestModelName_Fallback(t *testing.T) {
	assert.Equal(t, "lmstudio", NewLLMService(LLMConfig{}).ModelName())
	assert.Equal(t, "qwen-7b", NewLLMService(LLMConfig{Model: "qwen-7b"}).ModelName())
}
