// Package bank loads question-bank files into the corpus.
//
// A bank file is YAML:
//
//	questions:
//	  - concept: 標準差
//	    difficulty: basic
//	    type: multiple_choice
//	    text: Which value measures spread?
//	    options: [Mean, Median, Standard deviation, Mode]
//	    answer: C
//	    explanation: The standard deviation measures spread around the mean.
//
// Concepts accept any alias and difficulties accept 1-3 or a level name.
package bank

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/statlab/internal/concept"
	"github.com/abhisek/statlab/internal/question"
	"github.com/abhisek/statlab/internal/questiongen"
	"github.com/abhisek/statlab/internal/store"
)

// ErrInvalidItem marks a bank entry that cannot become a question.
var ErrInvalidItem = errors.New("invalid bank item")

var validate = validator.New(validator.WithRequiredStructEnabled())

// File is a parsed bank file.
type File struct {
	Questions []Item `yaml:"questions"`
}

// Item is one question as written in a bank file.
type Item struct {
	Concept     string   `yaml:"concept" validate:"required"`
	Difficulty  string   `yaml:"difficulty" validate:"required"`
	Type        string   `yaml:"type" validate:"required"`
	Text        string   `yaml:"text" validate:"required"`
	Options     []string `yaml:"options,omitempty" validate:"omitempty,dive,required"`
	Answer      string   `yaml:"answer" validate:"required"`
	Explanation string   `yaml:"explanation" validate:"required"`
	Source      string   `yaml:"source,omitempty" validate:"omitempty,oneof=question_bank teacher"`
	Inactive    bool     `yaml:"inactive,omitempty"`
}

// Parse decodes a bank file. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("bank file is empty")
		}
		return nil, fmt.Errorf("parse bank file: %w", err)
	}
	if len(f.Questions) == 0 {
		return nil, errors.New("bank file has no questions")
	}
	return &f, nil
}

// Question converts it into a corpus question, running the same checks
// generated questions pass. Multiple-choice answers given as option text
// are normalized to their letter.
func (it Item) Question() (*question.Question, error) {
	if err := validate.Struct(it); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidItem, describe(err))
	}

	c, err := concept.Parse(it.Concept)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidItem, err)
	}
	d, err := question.ParseDifficulty(it.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidItem, err)
	}
	qt := question.Type(strings.TrimSpace(it.Type))
	if !qt.Valid() {
		return nil, fmt.Errorf("%w: unsupported type %q", ErrInvalidItem, it.Type)
	}

	q := &question.Question{
		Concept:     c,
		Difficulty:  d,
		Type:        qt,
		Text:        strings.TrimSpace(it.Text),
		Options:     trimAll(it.Options),
		Answer:      strings.TrimSpace(it.Answer),
		Explanation: strings.TrimSpace(it.Explanation),
		Source:      question.SourceQuestionBank,
		Active:      !it.Inactive,
	}
	if it.Source != "" {
		q.Source = question.Source(it.Source)
	}

	input := questiongen.GenerateInput{Concept: c, Difficulty: d, Type: qt}
	for _, v := range questiongen.DefaultConfig().Validators {
		if verr := v.Validate(q, input); verr != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidItem, verr.Message)
		}
	}
	return q, nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, len(verrs))
	for i, fe := range verrs {
		parts[i] = fmt.Sprintf("%s fails %s", strings.ToLower(fe.Field()), fe.Tag())
	}
	return strings.Join(parts, "; ")
}

func trimAll(ss []string) []string {
	if len(ss) == 0 {
		return nil
	}
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

// Failure is a bank entry that was not imported.
type Failure struct {
	Index int
	Text  string
	Err   error
}

// Report summarizes an import.
type Report struct {
	Imported int
	Skipped  int // text already present for the concept
	Failures []Failure
}

// Importer writes bank items to the corpus.
type Importer struct {
	repo   store.QuestionRepo
	log    *zap.Logger
	dryRun bool
}

// NewImporter creates an Importer. With dryRun set items are checked but
// nothing is written.
func NewImporter(repo store.QuestionRepo, log *zap.Logger, dryRun bool) *Importer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Importer{repo: repo, log: log, dryRun: dryRun}
}

// Import converts and stores every item. A bad item is recorded in the
// report and the rest continue; only corpus read failures abort.
func (im *Importer) Import(ctx context.Context, items []Item) (Report, error) {
	var rep Report
	existing := map[concept.Concept]map[string]bool{}

	for i, it := range items {
		q, err := it.Question()
		if err != nil {
			rep.Failures = append(rep.Failures, Failure{Index: i, Text: it.Text, Err: err})
			continue
		}

		seen, ok := existing[q.Concept]
		if !ok {
			seen, err = im.texts(ctx, q.Concept)
			if err != nil {
				return rep, err
			}
			existing[q.Concept] = seen
		}
		key := strings.ToLower(q.Text)
		if seen[key] {
			rep.Skipped++
			continue
		}

		if !im.dryRun {
			if err := im.repo.Create(ctx, q); err != nil {
				im.log.Warn("import question failed", zap.Int("index", i), zap.Error(err))
				rep.Failures = append(rep.Failures, Failure{Index: i, Text: it.Text, Err: err})
				continue
			}
		}
		seen[key] = true
		rep.Imported++
	}
	return rep, nil
}

func (im *Importer) texts(ctx context.Context, c concept.Concept) (map[string]bool, error) {
	qs, err := im.repo.Find(ctx, store.QuestionFilter{Concept: c})
	if err != nil {
		return nil, fmt.Errorf("load existing %s questions: %w", c, err)
	}
	out := make(map[string]bool, len(qs))
	for _, q := range qs {
		out[strings.ToLower(q.Text)] = true
	}
	return out, nil
}
