// Package chat proxies tutoring conversations to the LLM and turns what
// students ask about into mastery signals and misconception counts.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/statlab/internal/concept"
	"github.com/abhisek/statlab/internal/llm"
	"github.com/abhisek/statlab/internal/mastery"
	"github.com/abhisek/statlab/internal/recommend"
	"github.com/abhisek/statlab/internal/store"
)

// Message roles as stored.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	ErrMissingUserID   = recommend.ErrMissingUserID
	ErrEmptyMessage    = errors.New("message is empty")
	ErrSessionNotFound = errors.New("chat session not found")

	// ErrLLMFailed wraps a failed or empty completion. The student's
	// message is already stored when it is returned.
	ErrLLMFailed = errors.New("assistant unavailable")
)

// Config controls the assistant.
type Config struct {
	// HistoryLimit is how many stored messages are replayed to the LLM,
	// the new one included.
	HistoryLimit int
	MaxTokens    int
	Temperature  float64
}

// DefaultConfig returns the standard chat limits.
func DefaultConfig() Config {
	return Config{HistoryLimit: 20, MaxTokens: 1000, Temperature: 0.7}
}

// Service runs chat sessions.
type Service struct {
	repo     store.ChatRepo
	tracker  *mastery.Tracker
	provider llm.Provider
	config   Config
	log      *zap.Logger
	now      func() time.Time
}

// NewService creates a Service. log may be nil.
func NewService(repo store.ChatRepo, tracker *mastery.Tracker, provider llm.Provider, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultConfig().HistoryLimit
	}
	return &Service{repo: repo, tracker: tracker, provider: provider, config: cfg, log: log, now: time.Now}
}

// StartSession opens a conversation for userID.
func (s *Service) StartSession(ctx context.Context, userID, title string) (*store.ChatSession, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrMissingUserID
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "New conversation"
	}
	sess := &store.ChatSession{UserID: userID, Title: title}
	if err := s.repo.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// Messages returns up to limit of the latest messages, oldest first.
func (s *Service) Messages(ctx context.Context, sessionID string, limit int) ([]store.ChatMessage, error) {
	if _, err := s.session(ctx, sessionID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	msgs, err := s.repo.RecentMessages(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	return msgs, nil
}

// Reply is the assistant's answer to one student message.
type Reply struct {
	SessionID string            `json:"sessionId"`
	Message   store.ChatMessage `json:"message"`
	Concepts  []concept.Concept `json:"concepts"`
	Issues    []string          `json:"issues"`
}

// Send stores message, asks the LLM with the recent history and stores the
// reply. Detected concepts earn a chat mastery signal and detected
// misconceptions are counted; failures of either are only logged.
func (s *Service) Send(ctx context.Context, sessionID, userID, message string) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	sess, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = sess.UserID
	}

	concepts := concept.Detect(message)
	userMsg := &store.ChatMessage{SessionID: sess.ID, Role: RoleUser, Content: message, Concepts: concepts}
	if err := s.repo.AppendMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("store message: %w", err)
	}

	history, err := s.repo.RecentMessages(ctx, sess.ID, s.config.HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	text, err := s.complete(ctx, concepts, history)
	if err != nil {
		s.log.Warn("chat completion failed",
			zap.String("session_id", sess.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrLLMFailed, err)
	}

	wctx := context.WithoutCancel(ctx)
	reply := &store.ChatMessage{SessionID: sess.ID, Role: RoleAssistant, Content: text, Concepts: concepts}
	if err := s.repo.AppendMessage(wctx, reply); err != nil {
		return nil, fmt.Errorf("store reply: %w", err)
	}

	issues := s.track(wctx, userID, message, concepts)
	if concepts == nil {
		concepts = []concept.Concept{}
	}
	return &Reply{SessionID: sess.ID, Message: *reply, Concepts: concepts, Issues: issues}, nil
}

func (s *Service) complete(ctx context.Context, concepts []concept.Concept, history []store.ChatMessage) (string, error) {
	if s.provider == nil {
		return "", errors.New("no LLM provider configured")
	}
	msgs := make([]llm.Message, 0, len(history))
	for _, m := range history {
		role := llm.RoleUser
		if m.Role == RoleAssistant {
			role = llm.RoleAssistant
		}
		msgs = append(msgs, llm.Message{Role: role, Content: m.Content})
	}

	resp, err := s.provider.Generate(llm.WithPurpose(ctx, llm.PurposeChat), llm.Request{
		System:      buildSystemPrompt(concepts),
		Messages:    msgs,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	})
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &llm.ErrInvalidResponse{Err: errors.New("empty completion")}
	}
	return text, nil
}

// track records mastery signals and misconception counts for userID and
// returns the ids of the detected issues.
func (s *Service) track(ctx context.Context, userID, message string, concepts []concept.Concept) []string {
	found := DetectIssues(message)
	ids := make([]string, 0, len(found))
	for _, is := range found {
		ids = append(ids, is.ID)
	}
	if userID == "" {
		return ids
	}

	at := s.now().UTC()
	if s.tracker != nil {
		for _, c := range concepts {
			if _, err := s.tracker.Record(ctx, userID, c, mastery.ChatSignal(at)); err != nil {
				s.log.Warn("chat mastery update failed",
					zap.String("user_id", userID), zap.String("concept", c.String()), zap.Error(err))
			}
		}
	}
	for _, is := range found {
		if err := s.repo.RecordIssue(ctx, userID, is.ID, is.Concept, at); err != nil {
			s.log.Warn("record common issue failed",
				zap.String("user_id", userID), zap.String("issue", is.ID), zap.Error(err))
		}
	}
	return ids
}

// Issues lists the misconceptions counted for userID, most frequent first.
func (s *Service) Issues(ctx context.Context, userID string) ([]store.CommonIssue, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrMissingUserID
	}
	return s.repo.ListIssues(ctx, userID)
}

func (s *Service) session(ctx context.Context, id string) (*store.ChatSession, error) {
	sess, err := s.repo.GetSession(ctx, strings.TrimSpace(id))
	if store.IsNotFound(err) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}
