package grading

import (
	"context"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/statlab/internal/llm"
	"github.com/abhisek/statlab/internal/question"
)

// Config controls LLM grading.
type Config struct {
	MaxTokens   int
	Temperature float64

	// Timeout bounds one grading call. Expiry yields the fallback result.
	Timeout time.Duration
}

// DefaultConfig returns the production grading limits.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   800,
		Temperature: 0,
		Timeout:     30 * time.Second,
	}
}

// Grader scores answers. It is safe for concurrent use.
type Grader struct {
	provider llm.Provider
	config   Config
	log      *zap.Logger

	// pick returns a value in [0,n); it chooses among positive messages.
	pick func(n int) int
}

// Option configures a Grader.
type Option func(*Grader)

// WithPicker replaces the random choice of positive feedback.
func WithPicker(pick func(n int) int) Option {
	return func(g *Grader) { g.pick = pick }
}

// New creates a Grader. A nil provider grades open-ended answers with the
// fallback result.
func New(provider llm.Provider, cfg Config, log *zap.Logger, opts ...Option) *Grader {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Grader{provider: provider, config: cfg, log: log, pick: rand.IntN}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Grade scores answer against q. It never fails: LLM errors and
// unparseable completions produce a ModeFallback result with score 0.
func (g *Grader) Grade(ctx context.Context, q *question.Question, answer string) Result {
	if isClosedForm(q) {
		r := gradeClosed(q, answer)
		r.Feedback = closedFormFeedback(r.IsCorrect, q.Difficulty, g.pick)
		return r
	}
	if strings.TrimSpace(answer) == "" {
		r := exactResult(false, ModeExact)
		r.Feedback = emptyAnswerFeedback
		return r
	}
	return g.gradeOpen(ctx, q, answer)
}

// PassScore returns the LLM score needed to pass q.
func PassScore(q *question.Question) int {
	if q.Source == question.SourceTeacher {
		return TeacherPassScore
	}
	return PracticePassScore
}

func (g *Grader) gradeOpen(ctx context.Context, q *question.Question, answer string) Result {
	if g.provider == nil {
		return g.fallback(q, "no LLM provider configured")
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeGrading)
	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	resp, err := g.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildUserMessage(q, answer)}},
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	})
	if err != nil {
		return g.fallback(q, err.Error())
	}

	res := llm.Decode[llmGrade](resp.Text(), GradeSchema)
	if !res.OK() {
		return g.fallback(q, res.Reason)
	}

	score := int(math.Round(res.Value.Score))
	score = min(max(score, 0), 100)
	feedback := strings.TrimSpace(res.Value.Feedback)
	if feedback == "" {
		feedback = closedFormFeedback(score >= PassScore(q), q.Difficulty, g.pick)
	}

	return Result{
		IsCorrect:     score >= PassScore(q),
		Score:         score,
		Feedback:      feedback,
		MatchedPoints: nonNil(res.Value.MatchedPoints),
		MissingPoints: nonNil(res.Value.MissingPoints),
		Mode:          ModeLLM,
	}
}

func (g *Grader) fallback(q *question.Question, reason string) Result {
	g.log.Warn("grading fell back",
		zap.String("question_id", q.ID),
		zap.String("type", string(q.Type)),
		zap.String("reason", reason))
	return Result{
		Score:         0,
		Feedback:      fallbackFeedback,
		MatchedPoints: []string{},
		MissingPoints: []string{},
		Mode:          ModeFallback,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
