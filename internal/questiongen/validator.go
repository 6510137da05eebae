package questiongen

import (
	"fmt"

	"github.com/abhisek/statlab/internal/question"
)

// Validator checks a generated question. Implementations are stateless and
// safe for concurrent use.
type Validator interface {
	// Name identifies the validator in errors and logs, e.g. "structural".
	Name() string

	// Validate may normalize q in place (for example the answer letter of
	// a multiple-choice question) and returns nil when it passes.
	Validate(q *question.Question, input GenerateInput) *ValidationError
}

// ValidationError describes why a question failed validation.
type ValidationError struct {
	Validator string
	Message   string
	Retryable bool
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}
