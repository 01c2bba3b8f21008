package quizgen

import "github.com/abhisek/termdojo/internal/llm"

// QuestionSchema is the output contract for generated questions.
var QuestionSchema = &llm.Schema{
	Name:        "quiz-question",
	Description: "A single vocabulary quiz question with an explanation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "The question text, including answer choices when options is omitted",
			},
			"options": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "string",
				},
				"description": "Optional answer choices",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "Explanation of the correct answer",
			},
		},
		"required": []any{"question", "explanation"},
	},
}
