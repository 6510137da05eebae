package grading

import "github.com/abhisek/statlab/internal/question"

var positiveFeedback = []string{
	"Excellent! Your answer is completely correct!",
	"Very good! You have a great understanding!",
	"Correct! Keep it up!",
	"Outstanding! You understand this very well!",
}

var encouragingFeedback = map[int]string{
	question.DifficultyBasic:    "That's okay, this is part of learning. Review the explanation and try again!",
	question.DifficultyMedium:   "Keep practicing. After understanding the explanation, you'll master it better!",
	question.DifficultyAdvanced: "This question is indeed challenging. Think it through a few more times, and you'll get it!",
}

// fallbackFeedback is returned when the LLM could not grade an answer.
const fallbackFeedback = "Automatic grading is unavailable right now. Your answer has been recorded; compare it with the explanation."

const emptyAnswerFeedback = "No answer was given."

// closedFormFeedback picks a message for a locally graded answer.
func closedFormFeedback(correct bool, difficulty int, pick func(n int) int) string {
	if correct {
		return positiveFeedback[pick(len(positiveFeedback))]
	}
	if msg, ok := encouragingFeedback[difficulty]; ok {
		return msg
	}
	return encouragingFeedback[question.DifficultyBasic]
}
