package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatHandler decodes a chatRequest and writes back a completion built by fn.
func chatHandler(t *testing.T, fn func(req chatRequest) chatResponse) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req chatRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		require.NoError(t, err, "server should be able to decode the chat request")

		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(fn(req))
		require.NoError(t, err)
	}
}

func completion(model, content string) chatResponse {
	var cr chatResponse
	cr.Model = model
	cr.Choices = []struct {
		Message chatMessage `json:"message"`
	}{
		{Message: chatMessage{Role: "assistant", Content: content}},
	}
	cr.Usage.TotalTokens = 42
	return cr
}

func TestGenerate_HappyPath(t *testing.T) {
	ts := httptest.NewServer(chatHandler(t, func(req chatRequest) chatResponse {
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "you are a strategist", req.Messages[0].Content)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "hello", req.Messages[1].Content)
		return completion("test-model", "  world  ")
	}))
	defer ts.Close()

	client := NewHTTPClient(Backend{Endpoint: ts.URL, APIKey: "key", Model: "test-model"})
	res, err := client.Generate(context.Background(), Request{
		Prompt:       "hello",
		SystemPrompt: "you are a strategist",
	})

	require.NoError(t, err)
	assert.Equal(t, "world", res.Content, "content should be trimmed")
	assert.Equal(t, "test-model", res.Model)
	assert.Equal(t, 42, res.TokensUsed)
}

func TestGenerate_AuthHeader(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(completion("m", "ok"))
	}))
	defer ts.Close()

	client := NewHTTPClient(Backend{Endpoint: ts.URL, APIKey: "secret-key", Model: "m"})
	_, err := client.Generate(context.Background(), Request{Prompt: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-key", gotAuth)
}

func TestGenerate_PrimaryFailure_UsesFallback(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer primary.Close()

	fallback := httptest.NewServer(chatHandler(t, func(chatRequest) chatResponse {
		return completion("fallback-model", "from fallback")
	}))
	defer fallback.Close()

	client := NewHTTPClient(
		Backend{Endpoint: primary.URL, APIKey: "k1", Model: "m1"},
		WithFallback(Backend{Endpoint: fallback.URL, APIKey: "k2", Model: "m2"}),
	)

	res, err := client.Generate(context.Background(), Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "from fallback", res.Content)
	assert.Equal(t, "fallback-model", res.Model)
}

func TestGenerate_NoBackend(t *testing.T) {
	client := NewHTTPClient(Backend{})

	_, err := client.Generate(context.Background(), Request{Prompt: "hi"})
	require.ErrorIs(t, err, ErrNoBackend)
}

func TestGenerate_NoChoices_Error(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(chatResponse{Model: "m"})
	}))
	defer ts.Close()

	client := NewHTTPClient(Backend{Endpoint: ts.URL, APIKey: "k", Model: "m"})
	_, err := client.Generate(context.Background(), Request{Prompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
