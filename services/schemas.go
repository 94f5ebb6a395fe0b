package services

// JSON Schemas for structured model output. Kept strict: every response
// that fails one of these is discarded rather than shown to the user.

var exerciseResponseSchema = &ResponseSchema{
	Name: "exercise-batch",
	Definition: map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"exercises"},
		"properties": map[string]any{
			"exercises": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"id", "topicId", "type", "question", "options", "correctAnswer", "explanation"},
					"properties": map[string]any{
						"id":      map[string]any{"type": "string", "pattern": "^ex_[0-9]{2,}$"},
						"topicId": map[string]any{"type": "string", "pattern": "^[A-Z][A-Z0-9_]*$"},
						"type":    map[string]any{"type": "string", "enum": []any{"single_choice", "fill_in_blank"}},
						"question": map[string]any{"type": "string"},
						"options": map[string]any{
							"type":     "array",
							"maxItems": 4,
							"items":    map[string]any{"type": "string"},
						},
						"correctAnswer": map[string]any{"type": "string"},
						"explanation":   map[string]any{"type": "string"},
					},
				},
			},
		},
	},
}

var theoryResponseSchema = &ResponseSchema{
	Name: "grammar-theory",
	Definition: map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"topic_id", "rule_name", "level", "theory"},
		"properties": map[string]any{
			"topic_id":  map[string]any{"type": "string", "pattern": "^[A-Z][A-Z0-9_]*$"},
			"rule_name": map[string]any{"type": "string"},
			"level":     map[string]any{"type": "string", "enum": []any{"A1", "A2", "B1", "B2", "C1", "C2"}},
			"theory":    map[string]any{"type": "string"},
		},
	},
}

var profileResponseSchema = &ResponseSchema{
	Name: "user-profile",
	Definition: map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"level", "goals", "interests", "summary"},
		"properties": map[string]any{
			"level":     map[string]any{"type": "string", "enum": []any{"A1", "A2", "B1", "B2", "C1", "C2"}},
			"goals":     map[string]any{"type": "array", "minItems": 1, "items": map[string]any{"type": "string"}},
			"interests": map[string]any{"type": "array", "minItems": 1, "items": map[string]any{"type": "string"}},
			"summary":   map[string]any{"type": "string"},
		},
	},
}

var writingFeedbackSchema = &ResponseSchema{
	Name: "writing-feedback",
	Definition: map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"corrected", "grammar_notes", "vocabulary_notes", "overall"},
		"properties": map[string]any{
			"corrected":        map[string]any{"type": "string"},
			"grammar_notes":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"vocabulary_notes": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"overall":          map[string]any{"type": "string"},
		},
	},
}
