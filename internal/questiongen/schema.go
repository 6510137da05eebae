package questiongen

import "github.com/abhisek/statlab/internal/llm"

// QuestionSchema validates the JSON payload extracted from an authoring
// completion. Fields the generator derives itself are optional.
var QuestionSchema = &llm.Schema{
	Name:        "statistics-question",
	Description: "A single statistics practice question with answer and explanation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question_text": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "The question shown to the student",
			},
			"question_type": map[string]any{
				"type":        "string",
				"description": "One of the supported question types",
			},
			"options": map[string]any{
				"type":        []any{"array", "null"},
				"items":       map[string]any{"type": "string"},
				"description": "Exactly 4 options for multiple_choice, otherwise empty or null",
			},
			"correct_answer": map[string]any{
				"type":        []any{"string", "number", "boolean"},
				"description": "A single letter A-D for multiple_choice, true/false for true_false, a plain number for calculation, a reference answer otherwise",
			},
			"explanation": map[string]any{
				"type":        "string",
				"minLength":   1,
				"description": "Worked solution or key points",
			},
			"difficulty_level": map[string]any{
				"type": []any{"integer", "string"},
			},
			"concept_name": map[string]any{
				"type": "string",
			},
		},
		"required": []any{"question_text", "correct_answer", "explanation"},
	},
}
