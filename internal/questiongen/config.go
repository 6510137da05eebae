package questiongen

// Config controls the Generator.
type Config struct {
	// Validators run in order; the first failure stops the chain.
	Validators []Validator

	MaxTokens   int
	Temperature float64

	// MaxAttempts bounds generation attempts when a retryable validation
	// failure occurs.
	MaxAttempts int

	// MaxAvoid caps the number of existing questions listed in the prompt.
	MaxAvoid int
}

// DefaultConfig returns the standard validator chain and limits.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
			&AnswerFormatValidator{},
		},
		MaxTokens:   1024,
		Temperature: 0.7,
		MaxAttempts: 2,
		MaxAvoid:    8,
	}
}
