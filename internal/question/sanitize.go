package question

import (
	"regexp"
	"strings"
)

var (
	leadingChoiceLetter = regexp.MustCompile(`^([A-Da-d])(?:[\s).:．、]|$)`)
	markedChoiceLetter  = regexp.MustCompile(`^([A-Da-d])(?:[).．、]|$)`)
)

// SanitizeChoiceAnswer reduces an authored multiple-choice answer such as
// "D) Standard Deviation" to its option letter "D". Answers that do not
// start with an option letter are returned trimmed.
func SanitizeChoiceAnswer(answer string) string {
	answer = strings.TrimSpace(answer)
	if m := leadingChoiceLetter.FindStringSubmatch(answer); m != nil {
		return strings.ToUpper(m[1])
	}
	return answer
}

// ResponseChoiceLetter reduces a learner's multiple-choice response to its
// option letter. Only a bare letter or a letter with a closing mark ("b)",
// "b.") counts; free text like "a lot of spread" is returned trimmed.
func ResponseChoiceLetter(response string) string {
	response = strings.TrimSpace(response)
	if m := markedChoiceLetter.FindStringSubmatch(response); m != nil {
		return strings.ToUpper(m[1])
	}
	return response
}

// OptionLetter returns the letter for the option at index i (0 = "A").
func OptionLetter(i int) string {
	return string(rune('A' + i))
}
