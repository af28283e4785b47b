package llm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// questionSchema is a small stand-in for the authoring item schema.
var questionSchema = &Schema{
	Name:        "question",
	Description: "One practice question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prompt": map[string]any{"type": "string"},
			"answer": map[string]any{"type": "string"},
		},
		"required":             []any{"prompt", "answer"},
		"additionalProperties": false,
	},
}

const validQuestion = `{"prompt":"What is 7 x 8?","answer":"56"}`

func authoringRequest() Request {
	return Request{
		Purpose:   "content-authoring",
		AtomID:    "tables_6_9",
		System:    "You write practice questions.",
		Prompt:    "Write one question on tables of 6 to 9.",
		Schema:    questionSchema,
		MaxTokens: 256,
	}
}

// replyServer answers every request with status and body.
func replyServer(t *testing.T, status int, body any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}
