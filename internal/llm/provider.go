// Package llm talks to hosted language models for content authoring.
// Every call is single-turn: a system prompt plus one instruction, and
// the reply is JSON matching the request's Schema.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates structured output from one prompt.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the model requests are sent to.
	ModelID() string
}

// Request is one authoring call.
type Request struct {
	// Purpose labels the call in the event log, e.g. "content-authoring".
	Purpose string

	// AtomID is the curriculum atom the output is for. Empty for calls
	// not tied to one atom.
	AtomID string

	System string
	Prompt string

	// Schema, when set, is sent through the provider's structured output
	// mode and the reply is checked against it before it is returned.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// StopReason says why the model stopped writing.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

// Response is a model reply that passed schema checks.
type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string
	Stop    StopReason
}

// Usage counts the tokens one call consumed.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total is input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// finish turns raw provider output into a Response. Output cut off at
// the token limit is rejected even when it happens to parse.
func finish(provider string, req Request, content json.RawMessage, stop StopReason, model string, usage Usage) (*Response, error) {
	if stop == StopMaxTokens {
		return nil, &Error{Provider: provider, Kind: ErrTruncated, Raw: content}
	}
	if err := req.Schema.Check(content); err != nil {
		return nil, &Error{Provider: provider, Kind: ErrInvalidOutput, Raw: content, Err: err}
	}
	return &Response{Content: content, Usage: usage, Model: model, Stop: stop}, nil
}
