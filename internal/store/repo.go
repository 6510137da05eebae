package store

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/statlab/internal/concept"
	"github.com/abhisek/statlab/internal/mastery"
	"github.com/abhisek/statlab/internal/performance"
	"github.com/abhisek/statlab/internal/question"
)

// ErrDuplicateSubmission is returned when an answer's submission id has
// already been recorded.
var ErrDuplicateSubmission = errors.New("duplicate submission")

// QueryOpts configures list queries.
type QueryOpts struct {
	Limit   int    // max results (0 = unlimited)
	Purpose string // LLM events only; empty matches all
}

// StoredAnswer is an answer record plus the grading detail shown back to
// the learner.
type StoredAnswer struct {
	performance.AnswerRecord
	Feedback    string
	GradingMode string
}

// AnswerRepo persists graded answers. Rows are append-only.
type AnswerRepo interface {
	// AppendAnswer stores a, assigning an ID and timestamp when unset.
	// A SubmissionID the same user already sent yields
	// ErrDuplicateSubmission.
	AppendAnswer(ctx context.Context, a *StoredAnswer) error

	// FindBySubmission returns nil, nil when userID has not sent
	// submissionID.
	FindBySubmission(ctx context.Context, userID, submissionID string) (*StoredAnswer, error)

	// Recent returns up to limit answers for userID, newest first.
	Recent(ctx context.Context, userID string, limit int) ([]StoredAnswer, error)
}

// QuestionFilter narrows a corpus query. Zero values match everything.
type QuestionFilter struct {
	Concept    concept.Concept
	Difficulty int
	Type       question.Type
	ActiveOnly bool
	Limit      int
}

// QuestionRepo manages the question corpus.
type QuestionRepo interface {
	// Create stores q, assigning an ID and timestamp when unset.
	Create(ctx context.Context, q *question.Question) error

	// Get returns ErrNotFound for an unknown id.
	Get(ctx context.Context, id string) (*question.Question, error)

	Find(ctx context.Context, f QuestionFilter) ([]question.Question, error)

	// FindByConceptAndDifficulty lists active questions for a practice
	// target. An empty qt matches any type.
	FindByConceptAndDifficulty(ctx context.Context, c concept.Concept, difficulty int, qt question.Type) ([]question.Question, error)

	// Meta returns concept and difficulty for each id that exists.
	Meta(ctx context.Context, ids []string) (map[string]question.Meta, error)

	// SetActive toggles whether a question is served.
	SetActive(ctx context.Context, id string, active bool) error
}

// ProgressRepo stores per-user concept mastery.
type ProgressRepo interface {
	mastery.Repo
}

// ChatSession is a stored tutoring conversation.
type ChatSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChatMessage is one stored turn.
type ChatMessage struct {
	ID        int               `json:"id"`
	SessionID string            `json:"sessionId"`
	Role      string            `json:"role"`
	Content   string            `json:"content"`
	Concepts  []concept.Concept `json:"concepts"`
	CreatedAt time.Time         `json:"createdAt"`
}

// CommonIssue counts one misconception pattern for a user.
type CommonIssue struct {
	UserID      string          `json:"userId"`
	Issue       string          `json:"issue"`
	Concept     concept.Concept `json:"concept"`
	Occurrences int             `json:"occurrences"`
	LastSeen    time.Time       `json:"lastSeen"`
}

// ChatRepo stores chat sessions, their messages and detected issues.
type ChatRepo interface {
	CreateSession(ctx context.Context, sess *ChatSession) error

	// GetSession returns ErrNotFound for an unknown id.
	GetSession(ctx context.Context, id string) (*ChatSession, error)

	AppendMessage(ctx context.Context, msg *ChatMessage) error

	// RecentMessages returns the last limit messages of a session in
	// chronological order.
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error)

	// RecordIssue bumps the occurrence count of issue for userID.
	RecordIssue(ctx context.Context, userID, issue string, c concept.Concept, at time.Time) error

	ListIssues(ctx context.Context, userID string) ([]CommonIssue, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM events under one key (purpose or model).
type LLMUsage struct {
	Key          string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo records and reports LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEventRecord, error)

	// GetLLMEvent returns nil, nil for an unknown id.
	GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error)

	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
