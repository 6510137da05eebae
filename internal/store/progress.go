package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/statlab/internal/concept"
	"github.com/abhisek/statlab/internal/mastery"
)

type progressRepo struct {
	s *Store
}

var progressColumns = []string{
	"user_id", "concept", "mastery", "practice_count", "correct_count",
	"chat_mentions", "last_practiced",
}

func (r *progressRepo) GetProgress(ctx context.Context, userID string, c concept.Concept) (*mastery.ConceptProgress, error) {
	sel := r.s.sql.Select(progressColumns...).
		From(r.s.sql.Table(tableProgress)).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("concept", string(c)),
		)).
		Limit(1)

	var found *mastery.ConceptProgress
	err := r.s.queryRows(ctx, sel, func(rows *sql.Rows) error {
		p, err := scanProgress(rows)
		if err != nil {
			return err
		}
		found = &p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return found, nil
}

// PutProgress upserts on (user_id, concept).
func (r *progressRepo) PutProgress(ctx context.Context, p mastery.ConceptProgress) error {
	ins := r.s.sql.Insert(tableProgress).
		Columns(progressColumns...).
		Values(p.UserID, string(p.Concept), p.Mastery, p.PracticeCount, p.CorrectCount,
			p.ChatMentions, toMillis(p.LastPracticed)).
		OnConflict(
			entsql.ConflictColumns("user_id", "concept"),
			entsql.ResolveWithNewValues(),
		)
	if _, err := r.s.exec(ctx, ins); err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

func (r *progressRepo) ListProgress(ctx context.Context, userID string) ([]mastery.ConceptProgress, error) {
	sel := r.s.sql.Select(progressColumns...).
		From(r.s.sql.Table(tableProgress)).
		Where(entsql.EQ("user_id", userID))

	var out []mastery.ConceptProgress
	err := r.s.queryRows(ctx, sel, func(rows *sql.Rows) error {
		p, err := scanProgress(rows)
		if err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	sortByCurriculum(out)
	return out, nil
}

func scanProgress(rows *sql.Rows) (mastery.ConceptProgress, error) {
	var (
		p      mastery.ConceptProgress
		c      string
		lastMs int64
	)
	err := rows.Scan(&p.UserID, &c, &p.Mastery, &p.PracticeCount, &p.CorrectCount,
		&p.ChatMentions, &lastMs)
	if err != nil {
		return mastery.ConceptProgress{}, fmt.Errorf("scan progress: %w", err)
	}
	p.Concept = concept.Normalize(c)
	p.LastPracticed = fromMillis(lastMs)
	return p, nil
}

func sortByCurriculum(ps []mastery.ConceptProgress) {
	slices.SortFunc(ps, func(a, b mastery.ConceptProgress) int {
		return concept.Index(a.Concept) - concept.Index(b.Concept)
	})
}
