package llm

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openAIReply(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1767225600,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func openAIError(kind string) map[string]any {
	return map[string]any{"error": map[string]any{"type": kind, "message": kind}}
}

func newOpenAIAt(t *testing.T, status int, body any) *OpenAIProvider {
	t.Helper()
	srv := replyServer(t, status, body)
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "test-key", Model: "gpt-4o-mini", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	return p
}

func TestOpenAIProvider_Generate(t *testing.T) {
	p := newOpenAIAt(t, http.StatusOK, openAIReply(validQuestion, "stop"))

	resp, err := p.Generate(context.Background(), authoringRequest())
	require.NoError(t, err)
	assert.JSONEq(t, validQuestion, string(resp.Content))
	assert.Equal(t, Usage{InputTokens: 40, OutputTokens: 25}, resp.Usage)
	assert.Equal(t, StopEnd, resp.Stop)
}

func TestOpenAIProvider_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   any
		want   error
	}{
		{"not json", http.StatusOK, openAIReply("Sure! Here is a question.", "stop"), ErrInvalidOutput},
		{"truncated", http.StatusOK, openAIReply(`{"prompt":`, "length"), ErrTruncated},
		{"rate limited", http.StatusTooManyRequests, openAIError("tokens"), ErrRateLimited},
		{"bad request", http.StatusBadRequest, openAIError("invalid_request_error"), ErrRejected},
		{"gateway down", http.StatusBadGateway, openAIError("server_error"), ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newOpenAIAt(t, tt.status, tt.body)
			_, err := p.Generate(context.Background(), authoringRequest())
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewOpenAIProvider(t *testing.T) {
	_, err := NewOpenAIProvider(OpenAIConfig{})
	assert.Error(t, err)

	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-4o", BaseURL: "https://gateway.example/v1"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", p.ModelID())
}
