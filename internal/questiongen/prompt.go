package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/statlab/internal/question"
)

const systemPrompt = `You are a statistics teacher writing practice questions for university psychology students.

Rules:
- Write one question for the given concept, difficulty and question type.
- Ground the question in a realistic psychology research scenario where that helps.
- The question must be self-contained and have one defensible correct answer.
- For multiple_choice, give exactly 4 options with no letter prefixes. correct_answer must be the single letter (A, B, C or D) of the correct option. Distractors should reflect common misconceptions.
- For true_false, correct_answer is true or false and options is empty.
- For calculation, provide all the numbers needed and give correct_answer as a plain number rounded to 2 decimals, without units.
- For interpretation, case_study, open_ended, short_answer and fill_blank, correct_answer is a model answer listing the key points a grader should look for.
- The explanation walks through the reasoning step by step.
- Do not repeat any question from the "existing questions" list.
- Respond with a single JSON object and nothing else.`

var difficultyGuide = map[int]string{
	question.DifficultyBasic:    "basic: checks definitions and direct application of one idea",
	question.DifficultyMedium:   "medium: requires combining ideas or a short multi-step computation",
	question.DifficultyAdvanced: "advanced: requires judgement, assumptions checking or interpreting a full analysis",
}

func buildUserMessage(input GenerateInput, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Concept: %s\n", input.Concept)
	fmt.Fprintf(&b, "Difficulty: %d (%s)\n", input.Difficulty, difficultyGuide[input.Difficulty])
	fmt.Fprintf(&b, "Question type: %s\n", input.Type)

	b.WriteString("\nExisting questions:\n")
	b.WriteString(buildAvoid(input.Avoid, cfg.MaxAvoid))

	b.WriteString("\n\nReturn JSON with these fields: question_text, question_type, options, correct_answer, explanation, difficulty_level, concept_name.")
	return b.String()
}

// buildAvoid lists at most max existing questions, most recent last.
func buildAvoid(texts []string, max int) string {
	if len(texts) == 0 {
		return "None"
	}
	if max > 0 && len(texts) > max {
		texts = texts[len(texts)-max:]
	}
	var b strings.Builder
	for i, t := range texts {
		fmt.Fprintf(&b, "%d. %s\n", i+1, t)
	}
	return strings.TrimRight(b.String(), "\n")
}
