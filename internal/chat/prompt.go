package chat

import (
	"fmt"
	"strings"

	"github.com/abhisek/statlab/internal/concept"
)

const systemPrompt = `You are a statistics teaching assistant for psychology students taking an introductory statistical methods course.

Principles:
1. Answer in the language the student writes in; for Chinese use Traditional Chinese.
2. Give clear, accurate explanations that a beginner can follow.
3. Use Socratic questions to guide the student toward the answer.
4. Illustrate concepts with examples from psychology research.
5. Suggest practice when it would help.
6. Encourage statistical ethics and critical thinking.
7. Adjust the depth of the explanation to the student's level.`

func buildSystemPrompt(concepts []concept.Concept) string {
	detected := "none"
	if len(concepts) > 0 {
		names := make([]string, len(concepts))
		for i, c := range concepts {
			names[i] = c.String()
		}
		detected = strings.Join(names, ", ")
	}
	return fmt.Sprintf("%s\n\nConcepts detected in the latest message: %s\n\nHelp with the student's question and ask a guiding question where appropriate.", systemPrompt, detected)
}
