package llm

import (
	"context"
	"net/http"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anthropicReply(text, stop string) map[string]any {
	return map[string]any{
		"id":          "msg_1",
		"type":        "message",
		"role":        "assistant",
		"content":     []map[string]any{{"type": "text", "text": text}},
		"model":       "claude-haiku-4-5-20251001",
		"stop_reason": stop,
		"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
	}
}

func anthropicError(kind string) map[string]any {
	return map[string]any{"type": "error", "error": map[string]any{"type": kind, "message": kind}}
}

func newAnthropicAt(t *testing.T, status int, body any) *AnthropicProvider {
	t.Helper()
	srv := replyServer(t, status, body)
	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "test-key", Model: "claude-haiku"},
		option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	require.NoError(t, err)
	return p
}

func TestAnthropicProvider_Generate(t *testing.T) {
	p := newAnthropicAt(t, http.StatusOK, anthropicReply(validQuestion, "end_turn"))

	resp, err := p.Generate(context.Background(), authoringRequest())
	require.NoError(t, err)
	assert.JSONEq(t, validQuestion, string(resp.Content))
	assert.Equal(t, Usage{InputTokens: 50, OutputTokens: 30}, resp.Usage)
	assert.Equal(t, 80, resp.Usage.Total())
	assert.Equal(t, StopEnd, resp.Stop)
	assert.Equal(t, "claude-haiku-4-5-20251001", resp.Model)
}

func TestAnthropicProvider_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   any
		want   error
	}{
		{"off schema", http.StatusOK, anthropicReply(`{"prompt":"no answer"}`, "end_turn"), ErrInvalidOutput},
		{"truncated", http.StatusOK, anthropicReply(`{"prompt":"What is`, "max_tokens"), ErrTruncated},
		{"rate limited", http.StatusTooManyRequests, anthropicError("rate_limit_error"), ErrRateLimited},
		{"bad key", http.StatusUnauthorized, anthropicError("authentication_error"), ErrRejected},
		{"server error", http.StatusInternalServerError, anthropicError("api_error"), ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newAnthropicAt(t, tt.status, tt.body)
			_, err := p.Generate(context.Background(), authoringRequest())
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewAnthropicProvider(t *testing.T) {
	_, err := NewAnthropicProvider(AnthropicConfig{})
	assert.Error(t, err)

	tests := []struct{ model, want string }{
		{"claude-sonnet", "claude-sonnet-4-20250514"},
		{"claude-haiku", "claude-haiku-4-5-20251001"},
		{"claude-opus-4-1", "claude-opus-4-1"},
	}
	for _, tt := range tests {
		p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "k", Model: tt.model})
		require.NoError(t, err)
		assert.Equal(t, tt.want, p.ModelID())
	}
}
