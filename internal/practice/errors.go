package practice

import "errors"

var (
	// ErrQuestionNotFound is returned when a question id does not resolve.
	ErrQuestionNotFound = errors.New("question not found")

	// ErrEmptyAnswer is returned for a blank submission.
	ErrEmptyAnswer = errors.New("answer is empty")

	// ErrInvalidType is returned for an unsupported question type filter.
	ErrInvalidType = errors.New("invalid question type")

	// ErrNoQuestion is returned when the corpus has nothing for a target
	// and generation on a miss is off.
	ErrNoQuestion = errors.New("no question available")

	// ErrGenerationUnavailable is returned when no generator is configured.
	ErrGenerationUnavailable = errors.New("question generation is not configured")

	// ErrGenerationFailed wraps an LLM failure while authoring a question.
	ErrGenerationFailed = errors.New("question generation failed")

	// ErrRecordFailed wraps a failure to persist a graded answer. The
	// grade must not be reported as successful.
	ErrRecordFailed = errors.New("failed to record answer")
)
