package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/statlab/internal/concept"
	"github.com/abhisek/statlab/internal/performance"
	"github.com/abhisek/statlab/internal/question"
)

// ErrMissingUserID is returned when a recommendation is requested without
// a user.
var ErrMissingUserID = errors.New("user id is required")

// HistoryStore is the persistence the service reads from.
type HistoryStore interface {
	FetchRecentAnswers(ctx context.Context, userID string, limit int) ([]performance.AnswerRecord, error)
	FetchQuestionMeta(ctx context.Context, questionIDs []string) (map[string]question.Meta, error)
}

// Observer receives one call per recommendation produced.
type Observer interface {
	ObserveRecommendation(category string)
}

// Service produces recommendations from stored history.
type Service struct {
	store    HistoryStore
	policy   *Policy
	log      *zap.Logger
	observer Observer
}

// NewService creates a Service. log and observer may be nil.
func NewService(store HistoryStore, policy *Policy, log *zap.Logger, observer Observer) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, policy: policy, log: log, observer: observer}
}

// Recommend returns the next practice target for userID. Store failures
// degrade to the new-user branch; only a missing user id is an error.
func (s *Service) Recommend(ctx context.Context, userID string) (Recommendation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Recommendation{}, ErrMissingUserID
	}

	h, err := s.History(ctx, userID)
	if err != nil {
		s.log.Warn("answer history unavailable, recommending as new user",
			zap.String("user_id", userID), zap.Error(err))
		h = nil
	}

	rec := s.policy.Select(h)
	if err != nil {
		rec.Rationale += " (answer history unavailable)"
	}
	if s.observer != nil {
		s.observer.ObserveRecommendation(string(rec.Category))
	}
	s.log.Debug("recommendation",
		zap.String("user_id", userID),
		zap.String("category", string(rec.Category)),
		zap.String("concept", rec.Concept.String()),
		zap.Int("difficulty", rec.Difficulty))
	return rec, nil
}

// History loads and aggregates a user's recent answers. Answers whose
// question no longer exists are dropped and logged.
func (s *Service) History(ctx context.Context, userID string) (*performance.History, error) {
	records, err := s.store.FetchRecentAnswers(ctx, userID, performance.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch recent answers: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if !seen[r.QuestionID] {
			seen[r.QuestionID] = true
			ids = append(ids, r.QuestionID)
		}
	}
	meta, err := s.store.FetchQuestionMeta(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch question meta: %w", err)
	}

	resolved, missing := performance.Resolve(records, meta)
	if len(missing) > 0 {
		s.log.Warn("answers reference missing questions; excluded from aggregation",
			zap.String("user_id", userID), zap.Strings("question_ids", missing))
	}
	for _, r := range resolved {
		if r.Concept == concept.Unknown {
			s.log.Warn("answer resolved to unknown concept",
				zap.String("user_id", userID), zap.String("question_id", r.QuestionID))
		}
	}
	return performance.Aggregate(resolved), nil
}
