package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/statlab/internal/concept"
	"github.com/abhisek/statlab/internal/question"
)

// metaChunk bounds the number of bind variables per IN query.
const metaChunk = 200

type questionRepo struct {
	s *Store
}

var questionColumns = []string{
	"id", "concept", "difficulty", "question_type", "question_text",
	"options", "correct_answer", "explanation", "source", "active", "created_at",
}

func (r *questionRepo) Create(ctx context.Context, q *question.Question) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = r.s.now().UTC()
	}
	if q.Source == "" {
		q.Source = question.SourceQuestionBank
	}
	options := q.Options
	if options == nil {
		options = []string{}
	}
	opts, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}

	ins := r.s.sql.Insert(tableQuestions).
		Columns(questionColumns...).
		Values(q.ID, string(q.Concept), q.Difficulty, string(q.Type), q.Text,
			string(opts), q.Answer, q.Explanation, string(q.Source), q.Active, toMillis(q.CreatedAt))
	if _, err := r.s.exec(ctx, ins); err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

func (r *questionRepo) Get(ctx context.Context, id string) (*question.Question, error) {
	sel := r.s.sql.Select(questionColumns...).
		From(r.s.sql.Table(tableQuestions)).
		Where(entsql.EQ("id", id)).
		Limit(1)

	var found *question.Question
	err := r.s.queryRows(ctx, sel, func(rows *sql.Rows) error {
		q, err := scanQuestion(rows)
		if err != nil {
			return err
		}
		found = &q
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	if found == nil {
		return nil, fmt.Errorf("question %s: %w", id, ErrNotFound)
	}
	return found, nil
}

func (r *questionRepo) Find(ctx context.Context, f QuestionFilter) ([]question.Question, error) {
	var preds []*entsql.Predicate
	if f.Concept != concept.Unknown {
		preds = append(preds, entsql.EQ("concept", string(f.Concept)))
	}
	if f.Difficulty > 0 {
		preds = append(preds, entsql.EQ("difficulty", f.Difficulty))
	}
	if f.Type != "" {
		preds = append(preds, entsql.EQ("question_type", string(f.Type)))
	}
	if f.ActiveOnly {
		preds = append(preds, entsql.EQ("active", true))
	}

	sel := r.s.sql.Select(questionColumns...).
		From(r.s.sql.Table(tableQuestions)).
		OrderBy(entsql.Asc("created_at"), entsql.Asc("id"))
	if len(preds) > 0 {
		sel = sel.Where(entsql.And(preds...))
	}
	if f.Limit > 0 {
		sel = sel.Limit(f.Limit)
	}

	var out []question.Question
	err := r.s.queryRows(ctx, sel, func(rows *sql.Rows) error {
		q, err := scanQuestion(rows)
		if err != nil {
			return err
		}
		out = append(out, q)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find questions: %w", err)
	}
	return out, nil
}

func (r *questionRepo) FindByConceptAndDifficulty(ctx context.Context, c concept.Concept, difficulty int, qt question.Type) ([]question.Question, error) {
	return r.Find(ctx, QuestionFilter{Concept: c, Difficulty: difficulty, Type: qt, ActiveOnly: true})
}

func (r *questionRepo) Meta(ctx context.Context, ids []string) (map[string]question.Meta, error) {
	out := make(map[string]question.Meta, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < len(ids); start += metaChunk {
		chunk := ids[start:min(start+metaChunk, len(ids))]
		g.Go(func() error {
			args := make([]any, len(chunk))
			for i, id := range chunk {
				args[i] = id
			}
			sel := r.s.sql.Select("id", "concept", "difficulty").
				From(r.s.sql.Table(tableQuestions)).
				Where(entsql.In("id", args...))
			return r.s.queryRows(ctx, sel, func(rows *sql.Rows) error {
				var (
					id, c string
					d     int
				)
				if err := rows.Scan(&id, &c, &d); err != nil {
					return err
				}
				mu.Lock()
				out[id] = question.Meta{Concept: concept.Normalize(c), Difficulty: d}
				mu.Unlock()
				return nil
			})
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("question meta: %w", err)
	}
	return out, nil
}

func (r *questionRepo) SetActive(ctx context.Context, id string, active bool) error {
	upd := r.s.sql.Update(tableQuestions).
		Set("active", active).
		Where(entsql.EQ("id", id))
	res, err := r.s.exec(ctx, upd)
	if err != nil {
		return fmt.Errorf("update question: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("question %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanQuestion(rows *sql.Rows) (question.Question, error) {
	var (
		q                   question.Question
		c, qt, opts, source string
		createdMs           int64
	)
	err := rows.Scan(&q.ID, &c, &q.Difficulty, &qt, &q.Text,
		&opts, &q.Answer, &q.Explanation, &source, &q.Active, &createdMs)
	if err != nil {
		return question.Question{}, fmt.Errorf("scan question: %w", err)
	}
	q.Concept = concept.Normalize(c)
	q.Type = question.Type(qt)
	q.Source = question.Source(source)
	q.CreatedAt = fromMillis(createdMs)
	if opts != "" {
		if err := json.Unmarshal([]byte(opts), &q.Options); err != nil {
			return question.Question{}, fmt.Errorf("decode options for %s: %w", q.ID, err)
		}
	}
	if len(q.Options) == 0 {
		q.Options = nil
	}
	return q, nil
}

// IsNotFound reports whether err is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
