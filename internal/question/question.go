package question

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abhisek/statlab/internal/concept"
)

// Type is how a question is answered and graded.
type Type string

const (
	TypeMultipleChoice Type = "multiple_choice"
	TypeTrueFalse      Type = "true_false"
	TypeCalculation    Type = "calculation"
	TypeInterpretation Type = "interpretation"
	TypeCaseStudy      Type = "case_study"
	TypeOpenEnded      Type = "open_ended"
	TypeShortAnswer    Type = "short_answer"
	TypeFillBlank      Type = "fill_blank"
)

// Types returns every supported question type.
func Types() []Type {
	return []Type{
		TypeMultipleChoice, TypeTrueFalse, TypeCalculation, TypeInterpretation,
		TypeCaseStudy, TypeOpenEnded, TypeShortAnswer, TypeFillBlank,
	}
}

// Valid reports whether t is a supported type.
func (t Type) Valid() bool {
	for _, k := range Types() {
		if k == t {
			return true
		}
	}
	return false
}

// Source records where a question came from. It selects the open-ended
// pass threshold.
type Source string

const (
	SourceQuestionBank Source = "question_bank"
	SourceTeacher      Source = "teacher"
	SourceGenerated    Source = "ai_generated"
)

// Difficulty levels.
const (
	DifficultyBasic    = 1
	DifficultyMedium   = 2
	DifficultyAdvanced = 3
)

var ErrInvalidDifficulty = errors.New("invalid difficulty")

// ParseDifficulty accepts "1".."3" or basic/medium/advanced.
func ParseDifficulty(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "basic":
		return DifficultyBasic, nil
	case "medium":
		return DifficultyMedium, nil
	case "advanced":
		return DifficultyAdvanced, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < DifficultyBasic || n > DifficultyAdvanced {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDifficulty, s)
	}
	return n, nil
}

// DifficultyName returns the label for a difficulty level.
func DifficultyName(d int) string {
	switch d {
	case DifficultyBasic:
		return "basic"
	case DifficultyMedium:
		return "medium"
	case DifficultyAdvanced:
		return "advanced"
	default:
		return strconv.Itoa(d)
	}
}

// Question is a practice question in the corpus.
type Question struct {
	ID         string
	Concept    concept.Concept
	Difficulty int
	Type       Type
	Text       string

	// Options is populated only for multiple_choice.
	Options []string

	// Answer is the canonical answer for closed-form types and the
	// reference answer for open-ended ones.
	Answer      string
	Explanation string
	Source      Source
	Active      bool
	CreatedAt   time.Time
}

// Meta is the slice of a question the aggregator joins answers against.
type Meta struct {
	Concept    concept.Concept
	Difficulty int
}

// Meta returns the question's aggregation metadata.
func (q *Question) Meta() Meta {
	return Meta{Concept: q.Concept, Difficulty: q.Difficulty}
}
