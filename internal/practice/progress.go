package practice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/statlab/internal/concept"
	"github.com/abhisek/statlab/internal/mastery"
	"github.com/abhisek/statlab/internal/performance"
	"github.com/abhisek/statlab/internal/recommend"
)

// ConceptSummary is one concept's line in a progress report.
type ConceptSummary struct {
	Concept               concept.Concept  `json:"concept"`
	Total                 int              `json:"total"`
	Correct               int              `json:"correct"`
	Accuracy              float64          `json:"accuracy"`
	RecentAccuracy        float64          `json:"recentAccuracy"`
	AvgDifficulty         float64          `json:"avgDifficulty"`
	Band                  performance.Band `json:"band"`
	RecommendedDifficulty int              `json:"recommendedDifficulty"`
}

// MasteryRow is a stored mastery record with its level.
type MasteryRow struct {
	mastery.ConceptProgress
	Level mastery.Level `json:"level"`
}

// Progress summarizes a user's practice.
type Progress struct {
	UserID        string           `json:"userId"`
	TotalAnswered int              `json:"totalAnswered"`
	Correct       int              `json:"correctAnswers"`
	Accuracy      float64          `json:"accuracy"`
	AvgTimeMs     int64            `json:"avgTimeMs"`
	Concepts      []ConceptSummary `json:"concepts"`
	Mastery       []MasteryRow     `json:"mastery"`
}

// Progress loads answer history and stored mastery concurrently and
// summarizes them.
func (s *Service) Progress(ctx context.Context, userID string) (*Progress, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, recommend.ErrMissingUserID
	}

	var (
		h    *performance.History
		rows []mastery.ConceptProgress
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		h, err = s.recommender.History(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = s.tracker.Progress(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	return summarize(userID, h, rows), nil
}

func summarize(userID string, h *performance.History, rows []mastery.ConceptProgress) *Progress {
	p := &Progress{UserID: userID, Concepts: []ConceptSummary{}, Mastery: []MasteryRow{}}

	var taken time.Duration
	if h != nil {
		for _, r := range h.Records {
			p.TotalAnswered++
			if r.IsCorrect {
				p.Correct++
			}
			taken += r.TimeTaken
		}
	}
	if p.TotalAnswered > 0 {
		p.Accuracy = float64(p.Correct) / float64(p.TotalAnswered)
		p.AvgTimeMs = taken.Milliseconds() / int64(p.TotalAnswered)
	}

	for _, c := range concept.All() {
		st := h.Stat(c)
		if st == nil {
			continue
		}
		p.Concepts = append(p.Concepts, ConceptSummary{
			Concept:               c,
			Total:                 st.Total,
			Correct:               st.Correct,
			Accuracy:              st.Accuracy(),
			RecentAccuracy:        st.RecentAccuracy(),
			AvgDifficulty:         st.AvgDifficulty(),
			Band:                  performance.Classify(st),
			RecommendedDifficulty: performance.RecommendDifficulty(st),
		})
	}

	for _, r := range rows {
		p.Mastery = append(p.Mastery, MasteryRow{ConceptProgress: r, Level: mastery.LevelOf(r)})
	}
	return p
}
