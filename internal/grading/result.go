// Package grading scores a student's answer against a question.
//
// Closed-form types are graded locally. Open-ended types are delegated to
// the LLM; any failure on that path degrades to a fallback result so an
// answer can always be recorded.
package grading

// Mode records how a Result was produced.
type Mode string

const (
	ModeExact    Mode = "exact"
	ModeNumeric  Mode = "numeric"
	ModeLLM      Mode = "llm"
	ModeFallback Mode = "fallback"
)

// Pass thresholds for LLM-graded answers. Questions from the practice
// corpus and teacher-authored questions have always used different cut
// scores; both are kept until product settles on one.
const (
	PracticePassScore = 70
	TeacherPassScore  = 60
)

// NumericTolerance is the absolute tolerance for calculation answers.
const NumericTolerance = 0.01

// Result is a graded answer.
type Result struct {
	IsCorrect     bool     `json:"isCorrect"`
	Score         int      `json:"score"`
	Feedback      string   `json:"feedback"`
	MatchedPoints []string `json:"matchedPoints"`
	MissingPoints []string `json:"missingPoints"`
	Mode          Mode     `json:"gradingMode"`
}

func exactResult(correct bool, mode Mode) Result {
	r := Result{IsCorrect: correct, Mode: mode, MatchedPoints: []string{}, MissingPoints: []string{}}
	if correct {
		r.Score = 100
	}
	return r
}
