package authoring

import (
	"github.com/saideep-g/blue-ninja/internal/content"
	"github.com/saideep-g/blue-ninja/internal/llm"
)

func templateEnum() []any {
	var out []any
	for _, t := range content.AllowedTemplates() {
		out = append(out, string(t))
	}
	return out
}

func stringArray(desc string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": desc,
	}
}

// ItemsSchema is the JSON schema for one batch of authored items. Every
// field is required so providers with strict structured output accept it;
// fields a template does not use are sent empty.
var ItemsSchema = &llm.Schema{
	Name:        "practice-items",
	Description: "A set of practice questions for one curriculum atom",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"template": map[string]any{
							"type":        "string",
							"enum":        templateEnum(),
							"description": "Question template",
						},
						"prompt": map[string]any{
							"type":        "string",
							"description": "The question shown to the learner, plain ASCII",
						},
						"hint": map[string]any{
							"type":        "string",
							"description": "A short scaffolding hint, may be empty",
						},
						"options": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"text":          map[string]any{"type": "string"},
									"correct":       map[string]any{"type": "boolean"},
									"misconception": map[string]any{"type": "string"},
									"anchored":      map[string]any{"type": "boolean"},
								},
								"required":             []any{"text", "correct", "misconception", "anchored"},
								"additionalProperties": false,
							},
							"description": "Choices for multiple_choice, true_false and error_analysis; empty otherwise",
						},
						"answer": map[string]any{
							"type":        "string",
							"description": "The numeric answer for numeric_input; empty otherwise",
						},
						"answer_kind": map[string]any{
							"type":        "string",
							"enum":        []any{"integer", "decimal", "fraction", ""},
							"description": "Numeric type of the answer for numeric_input",
						},
						"wrong_answers": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"answer":        map[string]any{"type": "string"},
									"misconception": map[string]any{"type": "string"},
								},
								"required":             []any{"answer", "misconception"},
								"additionalProperties": false,
							},
							"description": "Typical wrong numeric answers and the misconception each shows",
						},
						"accepted": stringArray("Accepted answers for fill_blank"),
						"steps":    stringArray("Steps in correct order for ordering"),
						"pairs": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"left":  map[string]any{"type": "string"},
									"right": map[string]any{"type": "string"},
								},
								"required":             []any{"left", "right"},
								"additionalProperties": false,
							},
							"description": "Left/right pairs for matching",
						},
					},
					"required": []any{
						"template", "prompt", "hint", "options", "answer",
						"answer_kind", "wrong_answers", "accepted", "steps", "pairs",
					},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"items"},
		"additionalProperties": false,
	},
}
