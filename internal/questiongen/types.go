package questiongen

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/abhisek/statlab/internal/concept"
	"github.com/abhisek/statlab/internal/question"
)

// ErrUnsupportedType is returned for a question type the generator cannot
// author.
var ErrUnsupportedType = errors.New("unsupported question type")

// GenerateInput names the practice target to author a question for.
type GenerateInput struct {
	Concept    concept.Concept
	Difficulty int
	Type       question.Type

	// Avoid lists question texts already in the corpus for this target.
	Avoid []string
}

// draft is the raw LLM payload before validation.
type draft struct {
	QuestionText    string     `json:"question_text"`
	QuestionType    string     `json:"question_type"`
	Options         []string   `json:"options"`
	CorrectAnswer   flexString `json:"correct_answer"`
	Explanation     string     `json:"explanation"`
	DifficultyLevel flexString `json:"difficulty_level"`
	ConceptName     string     `json:"concept_name"`
}

// flexString accepts a JSON string, number or boolean. Models often emit
// numeric answers unquoted.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case float64:
		*f = flexString(strconv.FormatFloat(x, 'f', -1, 64))
	case bool:
		*f = flexString(strconv.FormatBool(x))
	default:
		return errors.New("expected string, number or boolean")
	}
	return nil
}

func (f flexString) String() string { return strings.TrimSpace(string(f)) }
