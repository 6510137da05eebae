package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/statlab/internal/concept"
)

type chatRepo struct {
	s *Store
}

func (r *chatRepo) CreateSession(ctx context.Context, sess *ChatSession) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = r.s.now().UTC()
	}
	ins := r.s.sql.Insert(tableChatSessions).
		Columns("id", "user_id", "title", "created_at").
		Values(sess.ID, sess.UserID, sess.Title, toMillis(sess.CreatedAt))
	if _, err := r.s.exec(ctx, ins); err != nil {
		return fmt.Errorf("insert chat session: %w", err)
	}
	return nil
}

func (r *chatRepo) GetSession(ctx context.Context, id string) (*ChatSession, error) {
	sel := r.s.sql.Select("id", "user_id", "title", "created_at").
		From(r.s.sql.Table(tableChatSessions)).
		Where(entsql.EQ("id", id)).
		Limit(1)

	var found *ChatSession
	err := r.s.queryRows(ctx, sel, func(rows *sql.Rows) error {
		var (
			sess      ChatSession
			createdMs int64
		)
		if err := rows.Scan(&sess.ID, &sess.UserID, &sess.Title, &createdMs); err != nil {
			return err
		}
		sess.CreatedAt = fromMillis(createdMs)
		found = &sess
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get chat session: %w", err)
	}
	if found == nil {
		return nil, fmt.Errorf("chat session %s: %w", id, ErrNotFound)
	}
	return found, nil
}

func (r *chatRepo) AppendMessage(ctx context.Context, msg *ChatMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = r.s.now().UTC()
	}
	concepts := msg.Concepts
	if concepts == nil {
		concepts = []concept.Concept{}
	}
	raw, err := json.Marshal(concepts)
	if err != nil {
		return fmt.Errorf("marshal concepts: %w", err)
	}

	ins := r.s.sql.Insert(tableChatMessages).
		Columns("session_id", "role", "content", "concepts", "created_at").
		Values(msg.SessionID, msg.Role, msg.Content, string(raw), toMillis(msg.CreatedAt))
	res, err := r.s.exec(ctx, ins)
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		msg.ID = int(id)
	}
	return nil
}

func (r *chatRepo) RecentMessages(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error) {
	sel := r.s.sql.Select("id", "session_id", "role", "content", "concepts", "created_at").
		From(r.s.sql.Table(tableChatMessages)).
		Where(entsql.EQ("session_id", sessionID)).
		OrderBy(entsql.Desc("id"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}

	var out []ChatMessage
	err := r.s.queryRows(ctx, sel, func(rows *sql.Rows) error {
		var (
			m         ChatMessage
			raw       string
			createdMs int64
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &raw, &createdMs); err != nil {
			return err
		}
		if raw != "" {
			if err := json.Unmarshal([]byte(raw), &m.Concepts); err != nil {
				return fmt.Errorf("decode concepts for message %d: %w", m.ID, err)
			}
		}
		m.CreatedAt = fromMillis(createdMs)
		out = append(out, m)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("recent chat messages: %w", err)
	}
	slices.Reverse(out)
	return out, nil
}

// RecordIssue upserts on (user_id, issue), incrementing occurrences.
func (r *chatRepo) RecordIssue(ctx context.Context, userID, issue string, c concept.Concept, at time.Time) error {
	if at.IsZero() {
		at = r.s.now().UTC()
	}
	ins := r.s.sql.Insert(tableCommonIssues).
		Columns("user_id", "issue", "concept", "occurrences", "last_seen").
		Values(userID, issue, string(c), 1, toMillis(at)).
		OnConflict(
			entsql.ConflictColumns("user_id", "issue"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.Add("occurrences", 1)
				u.SetExcluded("last_seen")
				u.SetExcluded("concept")
			}),
		)
	if _, err := r.s.exec(ctx, ins); err != nil {
		return fmt.Errorf("upsert common issue: %w", err)
	}
	return nil
}

func (r *chatRepo) ListIssues(ctx context.Context, userID string) ([]CommonIssue, error) {
	sel := r.s.sql.Select("user_id", "issue", "concept", "occurrences", "last_seen").
		From(r.s.sql.Table(tableCommonIssues)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("occurrences"), entsql.Asc("issue"))

	var out []CommonIssue
	err := r.s.queryRows(ctx, sel, func(rows *sql.Rows) error {
		var (
			ci     CommonIssue
			c      string
			seenMs int64
		)
		if err := rows.Scan(&ci.UserID, &ci.Issue, &c, &ci.Occurrences, &seenMs); err != nil {
			return err
		}
		ci.Concept = concept.Normalize(c)
		ci.LastSeen = fromMillis(seenMs)
		out = append(out, ci)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list common issues: %w", err)
	}
	return out, nil
}
