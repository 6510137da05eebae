package mastery

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/statlab/internal/concept"
)

// Repo persists ConceptProgress rows keyed by (user, concept).
type Repo interface {
	// GetProgress returns nil, nil when no row exists.
	GetProgress(ctx context.Context, userID string, c concept.Concept) (*ConceptProgress, error)
	PutProgress(ctx context.Context, p ConceptProgress) error
	ListProgress(ctx context.Context, userID string) ([]ConceptProgress, error)
}

// Tracker applies mastery signals through a Repo. Concurrent updates for
// the same user and concept resolve last-writer-wins.
type Tracker struct {
	repo Repo
	log  *zap.Logger
}

// NewTracker creates a Tracker. log may be nil.
func NewTracker(repo Repo, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{repo: repo, log: log}
}

// Record merges sig into the stored progress for userID on c and returns
// the updated record. Non-canonical concepts are rejected.
func (t *Tracker) Record(ctx context.Context, userID string, c concept.Concept, sig Signal) (ConceptProgress, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ConceptProgress{}, fmt.Errorf("record mastery: empty user id")
	}
	if !c.IsCanonical() {
		return ConceptProgress{}, fmt.Errorf("record mastery: %w: %q", concept.ErrUnknownConcept, string(c))
	}

	old, err := t.repo.GetProgress(ctx, userID, c)
	if err != nil {
		return ConceptProgress{}, fmt.Errorf("load progress: %w", err)
	}

	next := MergeProgress(old, sig)
	next.UserID = userID
	next.Concept = c

	if err := t.repo.PutProgress(ctx, next); err != nil {
		return ConceptProgress{}, fmt.Errorf("save progress: %w", err)
	}
	t.log.Debug("mastery updated",
		zap.String("user_id", userID),
		zap.String("concept", c.String()),
		zap.Float64("mastery", next.Mastery))
	return next, nil
}

// Progress returns every stored row for userID.
func (t *Tracker) Progress(ctx context.Context, userID string) ([]ConceptProgress, error) {
	return t.repo.ListProgress(ctx, userID)
}
