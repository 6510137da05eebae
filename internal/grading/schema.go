package grading

import "github.com/abhisek/statlab/internal/llm"

// GradeSchema validates the JSON extracted from a grading completion.
var GradeSchema = &llm.Schema{
	Name:        "answer-grade",
	Description: "Score and feedback for a student's free-text answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"score": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": 100,
			},
			"feedback": map[string]any{
				"type": "string",
			},
			"matched_points": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"missing_points": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []any{"score", "feedback"},
	},
}

type llmGrade struct {
	Score         float64  `json:"score"`
	Feedback      string   `json:"feedback"`
	MatchedPoints []string `json:"matched_points"`
	MissingPoints []string `json:"missing_points"`
}
