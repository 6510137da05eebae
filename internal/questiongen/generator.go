package questiongen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/statlab/internal/concept"
	"github.com/abhisek/statlab/internal/llm"
	"github.com/abhisek/statlab/internal/question"
)

// Generator authors practice questions with the LLM.
type Generator struct {
	provider llm.Provider
	config   Config
	log      *zap.Logger
}

// New creates a Generator. log may be nil.
func New(provider llm.Provider, cfg Config, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Generator{provider: provider, config: cfg, log: log}
}

// Generate authors one question for input. The result is not persisted;
// it carries source ai_generated and is active.
//
// A retryable validation failure, including an unparseable completion,
// triggers another attempt up to Config.MaxAttempts. Provider errors are
// returned as-is, wrapped.
func (g *Generator) Generate(ctx context.Context, input GenerateInput) (*question.Question, error) {
	if err := checkInput(&input); err != nil {
		return nil, err
	}
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestionGen)

	var lastErr error
	for attempt := 1; attempt <= g.config.MaxAttempts; attempt++ {
		q, err := g.generateOnce(ctx, input)
		if err == nil {
			return q, nil
		}
		var verr *ValidationError
		if !errors.As(err, &verr) || !verr.Retryable {
			return nil, err
		}
		lastErr = err
		g.log.Warn("generated question rejected",
			zap.String("concept", input.Concept.String()),
			zap.Int("difficulty", input.Difficulty),
			zap.String("type", string(input.Type)),
			zap.Int("attempt", attempt),
			zap.String("validator", verr.Validator),
			zap.String("reason", verr.Message))
	}
	return nil, fmt.Errorf("generate question: %w", lastErr)
}

func (g *Generator) generateOnce(ctx context.Context, input GenerateInput) (*question.Question, error) {
	req := llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildUserMessage(input, g.config)}},
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	res := llm.Decode[draft](resp.Text(), QuestionSchema)
	if !res.OK() {
		return nil, &ValidationError{Validator: "parse", Message: res.Reason, Retryable: true}
	}

	q := toQuestion(res.Value, input)

	for _, v := range g.config.Validators {
		if verr := v.Validate(q, input); verr != nil {
			return nil, verr
		}
	}
	return q, nil
}

// toQuestion maps a draft onto the requested target. The requested type
// and difficulty always win; the concept falls back to the requested one
// when the returned label does not resolve.
func toQuestion(d draft, input GenerateInput) *question.Question {
	c, ok := concept.Lookup(d.ConceptName)
	if !ok {
		c = input.Concept
	}

	var options []string
	for _, o := range d.Options {
		options = append(options, strings.TrimSpace(o))
	}

	answer := d.CorrectAnswer.String()
	if input.Type == question.TypeMultipleChoice {
		if letter, ok := choiceLetter(answer, options); ok {
			answer = letter
		}
	}

	return &question.Question{
		Concept:     c,
		Difficulty:  input.Difficulty,
		Type:        input.Type,
		Text:        strings.TrimSpace(d.QuestionText),
		Options:     options,
		Answer:      answer,
		Explanation: strings.TrimSpace(d.Explanation),
		Source:      question.SourceGenerated,
		Active:      true,
	}
}

func checkInput(input *GenerateInput) error {
	if !input.Concept.IsCanonical() {
		return fmt.Errorf("generate question: %w: %q", concept.ErrUnknownConcept, string(input.Concept))
	}
	if input.Difficulty < question.DifficultyBasic || input.Difficulty > question.DifficultyAdvanced {
		return fmt.Errorf("generate question: %w: %d", question.ErrInvalidDifficulty, input.Difficulty)
	}
	if input.Type == "" {
		input.Type = question.TypeMultipleChoice
	}
	if !input.Type.Valid() {
		return fmt.Errorf("generate question: %w: %q", ErrUnsupportedType, string(input.Type))
	}
	return nil
}
