package performance

import (
	"time"

	"github.com/abhisek/statlab/internal/concept"
	"github.com/abhisek/statlab/internal/question"
)

const (
	// HistoryLimit is how many of a user's most recent answers are read.
	HistoryLimit = 200

	// RecentRetained is how many records per concept are kept for the
	// recency window.
	RecentRetained = 10

	// RecentWindow is how many of the retained records feed RecentAccuracy.
	RecentWindow = 5
)

// AnswerRecord is one graded answer. Records are immutable once stored.
type AnswerRecord struct {
	ID           string
	SubmissionID string
	UserID       string
	QuestionID   string
	SessionID    string
	Concept      concept.Concept
	Difficulty   int
	UserAnswer   string
	IsCorrect    bool

	// Score is nil for legacy closed-form records; see EffectiveScore.
	Score     *int
	TimeTaken time.Duration
	CreatedAt time.Time
}

// EffectiveScore returns Score, or 100/0 from IsCorrect when Score is nil.
func (r AnswerRecord) EffectiveScore() int {
	if r.Score != nil {
		return *r.Score
	}
	if r.IsCorrect {
		return 100
	}
	return 0
}

// ConceptStat aggregates one concept over a user's recent answers.
type ConceptStat struct {
	Concept       concept.Concept
	Total         int
	Correct       int
	DifficultySum int

	// Recent holds up to RecentRetained records, newest first.
	Recent []AnswerRecord
}

// Accuracy is Correct/Total, 0 when there are no attempts.
func (s *ConceptStat) Accuracy() float64 {
	if s == nil || s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

// RecentAccuracy is the accuracy over the newest RecentWindow retained
// records, 0 when none are retained.
func (s *ConceptStat) RecentAccuracy() float64 {
	if s == nil {
		return 0
	}
	n := min(RecentWindow, len(s.Recent))
	if n == 0 {
		return 0
	}
	correct := 0
	for _, r := range s.Recent[:n] {
		if r.IsCorrect {
			correct++
		}
	}
	return float64(correct) / float64(n)
}

// AvgDifficulty is the mean difficulty attempted, 0 when there are no
// attempts.
func (s *ConceptStat) AvgDifficulty() float64 {
	if s == nil || s.Total == 0 {
		return 0
	}
	return float64(s.DifficultySum) / float64(s.Total)
}

// History is a user's aggregated answer history. A nil *History means
// the user has no history at all.
type History struct {
	Stats map[concept.Concept]*ConceptStat

	// Records are the aggregated records, newest first.
	Records []AnswerRecord
}

// HasHistory reports whether h holds at least one record.
func (h *History) HasHistory() bool {
	return h != nil && len(h.Records) > 0
}

// Total is the number of aggregated records.
func (h *History) Total() int {
	if h == nil {
		return 0
	}
	return len(h.Records)
}

// Stat returns the stat for c, or nil.
func (h *History) Stat(c concept.Concept) *ConceptStat {
	if h == nil {
		return nil
	}
	return h.Stats[c]
}

// Aggregate folds newest-first records into per-concept stats. Only the
// first HistoryLimit records are read. It returns nil when records is
// empty.
func Aggregate(records []AnswerRecord) *History {
	if len(records) == 0 {
		return nil
	}
	if len(records) > HistoryLimit {
		records = records[:HistoryLimit]
	}

	h := &History{
		Stats:   make(map[concept.Concept]*ConceptStat),
		Records: records,
	}
	for _, r := range records {
		st, ok := h.Stats[r.Concept]
		if !ok {
			st = &ConceptStat{Concept: r.Concept}
			h.Stats[r.Concept] = st
		}
		st.Total++
		st.DifficultySum += r.Difficulty
		if r.IsCorrect {
			st.Correct++
		}
		if len(st.Recent) < RecentRetained {
			st.Recent = append(st.Recent, r)
		}
	}
	return h
}

// Resolve joins records against question metadata, taking concept and
// difficulty from the question. Records whose question is missing are
// dropped and their question ids returned.
func Resolve(records []AnswerRecord, meta map[string]question.Meta) (resolved []AnswerRecord, missing []string) {
	resolved = make([]AnswerRecord, 0, len(records))
	for _, r := range records {
		m, ok := meta[r.QuestionID]
		if !ok {
			missing = append(missing, r.QuestionID)
			continue
		}
		r.Concept = m.Concept
		r.Difficulty = m.Difficulty
		resolved = append(resolved, r)
	}
	return resolved, missing
}
