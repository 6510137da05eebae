package grading

import (
	"math"
	"strconv"
	"strings"

	"github.com/abhisek/statlab/internal/question"
)

// MatchExact compares trimmed answers case-insensitively. For multiple
// choice the reference is reduced to its letter and a response counts as
// a letter only when bare or marked, as in "b" or "b) Median".
func MatchExact(t question.Type, user, reference string) bool {
	user, reference = strings.TrimSpace(user), strings.TrimSpace(reference)
	if t == question.TypeMultipleChoice {
		user = question.ResponseChoiceLetter(user)
		reference = question.SanitizeChoiceAnswer(reference)
	}
	return strings.EqualFold(user, reference)
}

// MatchNumeric compares two numbers within NumericTolerance. ok is false
// when either side is not a plain number; callers then fall back to
// MatchExact.
func MatchNumeric(user, reference string) (correct, ok bool) {
	u, uerr := parseNumber(user)
	r, rerr := parseNumber(reference)
	if uerr != nil || rerr != nil {
		return false, false
	}
	return math.Abs(u-r) < NumericTolerance, true
}

// parseNumber accepts only a complete decimal number. Trailing text such
// as "2.45 seconds" is rejected rather than truncated.
func parseNumber(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, strconv.ErrSyntax
	}
	return f, nil
}

// isClosedForm reports whether q is graded without the LLM. fill_blank is
// closed-form only when its reference answer is a number.
func isClosedForm(q *question.Question) bool {
	switch q.Type {
	case question.TypeMultipleChoice, question.TypeTrueFalse, question.TypeCalculation:
		return true
	case question.TypeFillBlank:
		_, err := parseNumber(q.Answer)
		return err == nil
	default:
		return false
	}
}

// gradeClosed scores q locally.
func gradeClosed(q *question.Question, answer string) Result {
	switch q.Type {
	case question.TypeCalculation, question.TypeFillBlank:
		if correct, ok := MatchNumeric(answer, q.Answer); ok {
			return exactResult(correct, ModeNumeric)
		}
	}
	return exactResult(MatchExact(q.Type, answer, q.Answer), ModeExact)
}
