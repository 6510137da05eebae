package grading

import (
	"fmt"
	"strings"

	"github.com/abhisek/statlab/internal/question"
)

const systemPrompt = `You are a statistics teacher grading a psychology student's written answer.

Compare the student's answer with the reference answer and judge how well it covers the key points.
- Score from 0 to 100. Reward correct reasoning even when wording differs from the reference.
- Give short, encouraging feedback addressed to the student, naming what to review.
- List the key points the student covered in matched_points and the ones missing in missing_points.
Respond with a single JSON object: {"score": <0-100>, "feedback": "...", "matched_points": [...], "missing_points": [...]}`

func buildUserMessage(q *question.Question, answer string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Concept: %s\n", q.Concept)
	fmt.Fprintf(&b, "Question type: %s\n", q.Type)
	fmt.Fprintf(&b, "Question:\n%s\n\n", q.Text)
	fmt.Fprintf(&b, "Reference answer:\n%s\n\n", q.Answer)
	if q.Explanation != "" {
		fmt.Fprintf(&b, "Explanation:\n%s\n\n", q.Explanation)
	}
	fmt.Fprintf(&b, "Student answer:\n%s", answer)
	return b.String()
}
