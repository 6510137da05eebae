package practice

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/statlab/internal/concept"
	"github.com/abhisek/statlab/internal/question"
	"github.com/abhisek/statlab/internal/questiongen"
	"github.com/abhisek/statlab/internal/recommend"
	"github.com/abhisek/statlab/internal/store"
)

// Next is a served question with the recommendation that chose it.
type Next struct {
	Recommendation recommend.Recommendation `json:"recommendation"`
	Question       PublicQuestion           `json:"question"`
	Generated      bool                     `json:"generated"`
}

// Next recommends a target for userID and serves a matching question. An
// empty qt matches any type. When the corpus has no match and generation
// on a miss is on, a new question is authored and stored.
func (s *Service) Next(ctx context.Context, userID string, qt question.Type) (*Next, error) {
	if qt != "" && !qt.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, string(qt))
	}

	rec, err := s.recommender.Recommend(ctx, userID)
	if err != nil {
		return nil, err
	}
	c := rec.Concept
	if !rec.HasConcept() {
		c = recommend.PickConcept(s.rand)
	}

	matches, err := s.questions.FindByConceptAndDifficulty(ctx, c, rec.Difficulty, qt)
	if err != nil {
		return nil, fmt.Errorf("find questions: %w", err)
	}

	if len(matches) > 0 {
		q := matches[s.pick(len(matches))]
		return &Next{Recommendation: rec, Question: Public(&q)}, nil
	}

	if !s.GeneratesOnMiss() {
		return nil, fmt.Errorf("%w for %s at difficulty %d", ErrNoQuestion, c, rec.Difficulty)
	}
	s.log.Info("no stored question for target, generating",
		zap.String("user_id", userID),
		zap.String("concept", c.String()),
		zap.Int("difficulty", rec.Difficulty),
		zap.String("type", string(qt)))

	q, err := s.Generate(ctx, questiongen.GenerateInput{Concept: c, Difficulty: rec.Difficulty, Type: qt})
	if err != nil {
		return nil, err
	}
	return &Next{Recommendation: rec, Question: Public(q), Generated: true}, nil
}

// Generate authors a question and adds it to the corpus. Existing question
// texts for the same target are passed along so the LLM avoids them.
func (s *Service) Generate(ctx context.Context, input questiongen.GenerateInput) (*question.Question, error) {
	if s.generator == nil {
		return nil, ErrGenerationUnavailable
	}

	if input.Concept.IsCanonical() && len(input.Avoid) == 0 {
		existing, err := s.questions.Find(ctx, store.QuestionFilter{
			Concept:    input.Concept,
			Difficulty: input.Difficulty,
			Type:       input.Type,
			Limit:      20,
		})
		if err != nil {
			s.log.Warn("could not load existing questions for generation", zap.Error(err))
		}
		for _, e := range existing {
			input.Avoid = append(input.Avoid, e.Text)
		}
	}

	q, err := s.generator.Generate(ctx, input)
	if err != nil {
		if errors.Is(err, concept.ErrUnknownConcept) ||
			errors.Is(err, question.ErrInvalidDifficulty) ||
			errors.Is(err, questiongen.ErrUnsupportedType) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("store generated question: %w", err)
	}
	return q, nil
}

// Question returns the public view of a stored question.
func (s *Service) Question(ctx context.Context, id string) (PublicQuestion, error) {
	q, err := s.loadQuestion(ctx, id)
	if err != nil {
		return PublicQuestion{}, err
	}
	return Public(q), nil
}

// Questions lists active questions matching f.
func (s *Service) Questions(ctx context.Context, f store.QuestionFilter) ([]PublicQuestion, error) {
	f.ActiveOnly = true
	qs, err := s.questions.Find(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	out := make([]PublicQuestion, len(qs))
	for i := range qs {
		out[i] = Public(&qs[i])
	}
	return out, nil
}

func (s *Service) loadQuestion(ctx context.Context, id string) (*question.Question, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrQuestionNotFound)
	}
	q, err := s.questions.Get(ctx, id)
	if store.IsNotFound(err) {
		return nil, fmt.Errorf("%w: %s", ErrQuestionNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

// pick returns an index in [0,n).
func (s *Service) pick(n int) int {
	i := int(s.rand.Float64() * float64(n))
	return min(i, n-1)
}
