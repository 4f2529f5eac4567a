package insight

import "github.com/abhisek/orbit/internal/llm"

// InsightSchema defines the JSON schema for insight responses.
var InsightSchema = &llm.Schema{
	Name:        "concept-insight",
	Description: "A short, engaging insight about one AI concept",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"insight": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "The insight, plain text, under 50 words",
			},
		},
		"required":             []any{"insight"},
		"additionalProperties": false,
	},
}
