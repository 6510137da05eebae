package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/statlab/internal/performance"
	"github.com/abhisek/statlab/internal/question"
)

type answerRepo struct {
	s *Store
}

var answerColumns = []string{
	"id", "submission_id", "user_id", "question_id", "session_id",
	"user_answer", "is_correct", "score", "feedback", "grading_mode",
	"time_taken_ms", "created_at",
}

func (r *answerRepo) AppendAnswer(ctx context.Context, a *StoredAnswer) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.SubmissionID == "" {
		a.SubmissionID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = r.s.now().UTC()
	}

	var score any
	if a.Score != nil {
		score = *a.Score
	}

	ins := r.s.sql.Insert(tableAnswers).
		Columns(answerColumns...).
		Values(a.ID, a.SubmissionID, a.UserID, a.QuestionID, a.SessionID,
			a.UserAnswer, a.IsCorrect, score, a.Feedback, a.GradingMode,
			a.TimeTaken.Milliseconds(), toMillis(a.CreatedAt)).
		OnConflict(entsql.ConflictColumns("user_id", "submission_id"), entsql.DoNothing())

	res, err := r.s.exec(ctx, ins)
	if err != nil {
		return fmt.Errorf("insert answer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert answer: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("submission %s for %s: %w", a.SubmissionID, a.UserID, ErrDuplicateSubmission)
	}
	return nil
}

func (r *answerRepo) FindBySubmission(ctx context.Context, userID, submissionID string) (*StoredAnswer, error) {
	sel := r.s.sql.Select(answerColumns...).
		From(r.s.sql.Table(tableAnswers)).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("submission_id", submissionID),
		)).
		Limit(1)

	var found *StoredAnswer
	err := r.s.queryRows(ctx, sel, func(rows *sql.Rows) error {
		a, err := scanAnswer(rows)
		if err != nil {
			return err
		}
		found = &a
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find submission: %w", err)
	}
	return found, nil
}

func (r *answerRepo) Recent(ctx context.Context, userID string, limit int) ([]StoredAnswer, error) {
	sel := r.s.sql.Select(answerColumns...).
		From(r.s.sql.Table(tableAnswers)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("rowid"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}

	var out []StoredAnswer
	err := r.s.queryRows(ctx, sel, func(rows *sql.Rows) error {
		a, err := scanAnswer(rows)
		if err != nil {
			return err
		}
		out = append(out, a)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("recent answers: %w", err)
	}
	return out, nil
}

func scanAnswer(rows *sql.Rows) (StoredAnswer, error) {
	var (
		a         StoredAnswer
		score     sql.NullInt64
		takenMs   int64
		createdMs int64
	)
	err := rows.Scan(&a.ID, &a.SubmissionID, &a.UserID, &a.QuestionID, &a.SessionID,
		&a.UserAnswer, &a.IsCorrect, &score, &a.Feedback, &a.GradingMode,
		&takenMs, &createdMs)
	if err != nil {
		return StoredAnswer{}, fmt.Errorf("scan answer: %w", err)
	}
	if score.Valid {
		v := int(score.Int64)
		a.Score = &v
	}
	a.TimeTaken = time.Duration(takenMs) * time.Millisecond
	a.CreatedAt = fromMillis(createdMs)
	return a, nil
}

// FetchRecentAnswers returns a user's latest answers, newest first. Concept
// and difficulty are left for the caller to join from question metadata.
func (s *Store) FetchRecentAnswers(ctx context.Context, userID string, limit int) ([]performance.AnswerRecord, error) {
	stored, err := s.AnswerRepo().Recent(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]performance.AnswerRecord, len(stored))
	for i, a := range stored {
		out[i] = a.AnswerRecord
	}
	return out, nil
}

// FetchQuestionMeta resolves question ids to their concept and difficulty.
func (s *Store) FetchQuestionMeta(ctx context.Context, ids []string) (map[string]question.Meta, error) {
	return s.QuestionRepo().Meta(ctx, ids)
}

// IsDuplicate reports whether err is a duplicate submission.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateSubmission)
}
