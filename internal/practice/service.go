// Package practice ties recommendation, the question corpus, grading and
// mastery tracking into the practice flow: next question, submit, progress.
package practice

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/statlab/internal/grading"
	"github.com/abhisek/statlab/internal/mastery"
	"github.com/abhisek/statlab/internal/performance"
	"github.com/abhisek/statlab/internal/question"
	"github.com/abhisek/statlab/internal/questiongen"
	"github.com/abhisek/statlab/internal/recommend"
	"github.com/abhisek/statlab/internal/store"
)

// Recommender produces practice targets and aggregated history.
type Recommender interface {
	Recommend(ctx context.Context, userID string) (recommend.Recommendation, error)
	History(ctx context.Context, userID string) (*performance.History, error)
}

// Grader scores an answer. It never fails.
type Grader interface {
	Grade(ctx context.Context, q *question.Question, answer string) grading.Result
}

// Generator authors a question when the corpus has none.
type Generator interface {
	Generate(ctx context.Context, input questiongen.GenerateInput) (*question.Question, error)
}

// Observer receives one call per graded, recorded answer.
type Observer interface {
	ObserveGrade(mode string, correct bool)
	ObserveAnswer(concept string)
}

// Deps are the collaborators of a Service.
type Deps struct {
	Questions   store.QuestionRepo
	Answers     store.AnswerRepo
	Recommender Recommender
	Grader      Grader
	Tracker     *mastery.Tracker

	// Generator is optional; nil disables generation entirely.
	Generator Generator

	// GenerateOnMiss lets Next author a question when the corpus has none
	// for the target. Explicit Generate calls do not depend on it.
	GenerateOnMiss bool

	// Random picks among matching questions and resolves a recommendation
	// without a concept.
	Random recommend.RandomSource

	Observer Observer
	Log      *zap.Logger
}

// Service runs the practice flow.
type Service struct {
	questions   store.QuestionRepo
	answers     store.AnswerRepo
	recommender Recommender
	grader      Grader
	tracker     *mastery.Tracker
	generator   Generator
	onMiss      bool
	rand        recommend.RandomSource
	observer    Observer
	log         *zap.Logger
	now         func() time.Time
}

// NewService creates a Service from d.
func NewService(d Deps) *Service {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Random == nil {
		d.Random = recommend.NewRandomSource(uint64(time.Now().UnixNano()))
	}
	return &Service{
		questions:   d.Questions,
		answers:     d.Answers,
		recommender: d.Recommender,
		grader:      d.Grader,
		tracker:     d.Tracker,
		generator:   d.Generator,
		onMiss:      d.GenerateOnMiss,
		rand:        d.Random,
		observer:    d.Observer,
		log:         d.Log,
		now:         time.Now,
	}
}

// CanGenerate reports whether a generator is configured.
func (s *Service) CanGenerate() bool { return s.generator != nil }

// GeneratesOnMiss reports whether Next authors questions on a corpus miss.
func (s *Service) GeneratesOnMiss() bool { return s.generator != nil && s.onMiss }

// PublicQuestion is a question as served to a student: the answer and
// explanation are withheld until submission.
type PublicQuestion struct {
	ID             string        `json:"id"`
	Concept        string        `json:"concept"`
	Difficulty     int           `json:"difficulty"`
	DifficultyName string        `json:"difficultyName"`
	Type           question.Type `json:"questionType"`
	Text           string        `json:"questionText"`
	Options        []string      `json:"options"`
}

// Public strips q down to what a student may see.
func Public(q *question.Question) PublicQuestion {
	opts := q.Options
	if opts == nil {
		opts = []string{}
	}
	return PublicQuestion{
		ID:             q.ID,
		Concept:        q.Concept.String(),
		Difficulty:     q.Difficulty,
		DifficultyName: question.DifficultyName(q.Difficulty),
		Type:           q.Type,
		Text:           q.Text,
		Options:        opts,
	}
}
