package questiongen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/statlab/internal/question"
)

// choiceCount is the number of options a multiple-choice question carries.
const choiceCount = 4

// AnswerFormatValidator checks that the answer fits the question type and
// normalizes it: multiple-choice answers become a single option letter and
// true/false answers become "true" or "false".
type AnswerFormatValidator struct{}

func (v *AnswerFormatValidator) Name() string { return "answer-format" }

func (v *AnswerFormatValidator) Validate(q *question.Question, _ GenerateInput) *ValidationError {
	fail := func(format string, args ...any) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf(format, args...), Retryable: true}
	}

	if q.Type != question.TypeMultipleChoice && len(q.Options) > 0 {
		return fail("%s question must not have options", q.Type)
	}

	switch q.Type {
	case question.TypeMultipleChoice:
		if len(q.Options) != choiceCount {
			return fail("multiple choice must have exactly %d options, got %d", choiceCount, len(q.Options))
		}
		seen := make(map[string]bool, choiceCount)
		for i, o := range q.Options {
			o = strings.TrimSpace(o)
			if o == "" {
				return fail("option %s is empty", question.OptionLetter(i))
			}
			key := strings.ToLower(o)
			if seen[key] {
				return fail("duplicate option %q", o)
			}
			seen[key] = true
		}
		letter, ok := choiceLetter(q.Answer, q.Options)
		if !ok {
			return fail("answer %q is not an option letter A-D", q.Answer)
		}
		q.Answer = letter

	case question.TypeTrueFalse:
		b, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(q.Answer)))
		if err != nil {
			return fail("true_false answer %q is not true or false", q.Answer)
		}
		q.Answer = strconv.FormatBool(b)

	case question.TypeCalculation:
		if _, err := strconv.ParseFloat(strings.TrimSpace(q.Answer), 64); err != nil {
			return fail("calculation answer %q is not a plain number", q.Answer)
		}
	}
	return nil
}

// choiceLetter resolves an authored answer to its option letter. It accepts
// the full text of one option, "B" or "b) ...".
func choiceLetter(answer string, options []string) (string, bool) {
	for i, o := range options {
		if strings.EqualFold(strings.TrimSpace(o), strings.TrimSpace(answer)) {
			return question.OptionLetter(i), true
		}
	}
	s := question.SanitizeChoiceAnswer(answer)
	if len(s) == 1 && s[0] >= 'A' && int(s[0]-'A') < len(options) {
		return s, true
	}
	return "", false
}
