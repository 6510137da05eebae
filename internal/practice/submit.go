package practice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/statlab/internal/grading"
	"github.com/abhisek/statlab/internal/mastery"
	"github.com/abhisek/statlab/internal/performance"
	"github.com/abhisek/statlab/internal/recommend"
	"github.com/abhisek/statlab/internal/store"
)

// Submission is one answer to grade and record.
type Submission struct {
	// SubmissionID makes the call idempotent per user. Empty means a
	// fresh id.
	SubmissionID string
	UserID       string
	QuestionID   string
	SessionID    string
	Answer       string
	TimeTaken    time.Duration
}

// SubmitResult is the recorded grade returned to the student.
type SubmitResult struct {
	SubmissionID  string                   `json:"submissionId"`
	AnswerID      string                   `json:"answerId"`
	QuestionID    string                   `json:"questionId"`
	IsCorrect     bool                     `json:"isCorrect"`
	Score         int                      `json:"score"`
	Feedback      string                   `json:"feedback"`
	MatchedPoints []string                 `json:"matchedPoints"`
	MissingPoints []string                 `json:"missingPoints"`
	GradingMode   grading.Mode             `json:"gradingMode"`
	CorrectAnswer string                   `json:"correctAnswer"`
	Explanation   string                   `json:"explanation"`
	Mastery       *mastery.ConceptProgress `json:"mastery,omitempty"`

	// Duplicate is set when the submission id was already recorded and
	// the stored result is returned unchanged.
	Duplicate bool `json:"duplicate"`
}

// Submit grades sub, records it and updates mastery.
//
// A repeated SubmissionID returns the stored result without a second
// write. Grading never fails. Failing to record the answer is fatal and
// returns ErrRecordFailed; a failed mastery update is only logged.
func (s *Service) Submit(ctx context.Context, sub Submission) (*SubmitResult, error) {
	sub.UserID = strings.TrimSpace(sub.UserID)
	sub.SubmissionID = strings.TrimSpace(sub.SubmissionID)
	if sub.UserID == "" {
		return nil, recommend.ErrMissingUserID
	}
	if strings.TrimSpace(sub.Answer) == "" {
		return nil, ErrEmptyAnswer
	}
	if sub.TimeTaken < 0 {
		sub.TimeTaken = 0
	}

	if sub.SubmissionID != "" {
		prev, err := s.answers.FindBySubmission(ctx, sub.UserID, sub.SubmissionID)
		if err != nil {
			return nil, fmt.Errorf("check submission: %w", err)
		}
		if prev != nil {
			return s.replay(ctx, prev), nil
		}
	} else {
		sub.SubmissionID = uuid.NewString()
	}

	q, err := s.loadQuestion(ctx, sub.QuestionID)
	if err != nil {
		return nil, err
	}

	res := s.grader.Grade(ctx, q, sub.Answer)

	score := res.Score
	rec := &store.StoredAnswer{
		AnswerRecord: performance.AnswerRecord{
			SubmissionID: sub.SubmissionID,
			UserID:       sub.UserID,
			QuestionID:   q.ID,
			SessionID:    sub.SessionID,
			Concept:      q.Concept,
			Difficulty:   q.Difficulty,
			UserAnswer:   sub.Answer,
			IsCorrect:    res.IsCorrect,
			Score:        &score,
			TimeTaken:    sub.TimeTaken,
			CreatedAt:    s.now().UTC(),
		},
		Feedback:    res.Feedback,
		GradingMode: string(res.Mode),
	}

	// The write must not be torn by a client disconnect after grading.
	wctx := context.WithoutCancel(ctx)
	if err := s.answers.AppendAnswer(wctx, rec); err != nil {
		if store.IsDuplicate(err) {
			prev, ferr := s.answers.FindBySubmission(wctx, sub.UserID, sub.SubmissionID)
			if ferr == nil && prev != nil {
				return s.replay(ctx, prev), nil
			}
		}
		s.log.Error("failed to record answer",
			zap.String("user_id", sub.UserID),
			zap.String("question_id", q.ID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrRecordFailed, err)
	}

	if s.observer != nil {
		s.observer.ObserveGrade(string(res.Mode), res.IsCorrect)
		s.observer.ObserveAnswer(q.Concept.String())
	}

	out := &SubmitResult{
		SubmissionID:  rec.SubmissionID,
		AnswerID:      rec.ID,
		QuestionID:    q.ID,
		IsCorrect:     res.IsCorrect,
		Score:         res.Score,
		Feedback:      res.Feedback,
		MatchedPoints: res.MatchedPoints,
		MissingPoints: res.MissingPoints,
		GradingMode:   res.Mode,
		CorrectAnswer: q.Answer,
		Explanation:   q.Explanation,
	}

	if !q.Concept.IsCanonical() {
		s.log.Warn("question has no canonical concept; mastery not updated",
			zap.String("question_id", q.ID), zap.String("concept", string(q.Concept)))
		return out, nil
	}
	p, err := s.tracker.Record(wctx, sub.UserID, q.Concept, mastery.AnswerSignal(res.IsCorrect, rec.CreatedAt))
	if err != nil {
		s.log.Warn("mastery update failed",
			zap.String("user_id", sub.UserID),
			zap.String("concept", q.Concept.String()),
			zap.Error(err))
		return out, nil
	}
	out.Mastery = &p
	return out, nil
}

// replay rebuilds the result of an already recorded submission.
func (s *Service) replay(ctx context.Context, prev *store.StoredAnswer) *SubmitResult {
	out := &SubmitResult{
		SubmissionID:  prev.SubmissionID,
		AnswerID:      prev.ID,
		QuestionID:    prev.QuestionID,
		IsCorrect:     prev.IsCorrect,
		Score:         prev.EffectiveScore(),
		Feedback:      prev.Feedback,
		MatchedPoints: []string{},
		MissingPoints: []string{},
		GradingMode:   grading.Mode(prev.GradingMode),
		Duplicate:     true,
	}
	if q, err := s.questions.Get(ctx, prev.QuestionID); err == nil {
		out.CorrectAnswer = q.Answer
		out.Explanation = q.Explanation
	}
	return out
}
