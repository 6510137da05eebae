package questiongen

import (
	"unicode/utf8"

	"github.com/abhisek/statlab/internal/question"
)

const (
	maxQuestionRunes    = 2000
	maxExplanationRunes = 3000
)

// StructuralValidator checks required fields, lengths and enum values.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *question.Question, _ GenerateInput) *ValidationError {
	fail := func(msg string) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: msg, Retryable: true}
	}
	switch {
	case q.Text == "":
		return fail("question_text is empty")
	case utf8.RuneCountInString(q.Text) > maxQuestionRunes:
		return fail("question_text is too long")
	case q.Explanation == "":
		return fail("explanation is empty")
	case utf8.RuneCountInString(q.Explanation) > maxExplanationRunes:
		return fail("explanation is too long")
	case q.Answer == "":
		return fail("correct_answer is empty")
	case !q.Concept.IsCanonical():
		return fail("concept is not a known concept")
	case q.Difficulty < question.DifficultyBasic || q.Difficulty > question.DifficultyAdvanced:
		return fail("difficulty must be between 1 and 3")
	case !q.Type.Valid():
		return &ValidationError{Validator: v.Name(), Message: "unsupported question_type " + string(q.Type)}
	}
	return nil
}
