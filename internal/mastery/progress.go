package mastery

import (
	"math"
	"time"

	"github.com/abhisek/statlab/internal/concept"
)

// Mastery bounds and the seed values for a user's first answer on a concept.
const (
	AnswerCeiling  = 0.95
	AccuracyBoost  = 1.1
	FirstCorrect   = 0.2
	FirstIncorrect = 0.05

	// ChatDelta is the mastery nudge for a concept discussed in chat.
	ChatDelta = 0.1
)

// ConceptProgress is a user's stored standing on one concept.
type ConceptProgress struct {
	UserID        string          `json:"userId"`
	Concept       concept.Concept `json:"concept"`
	Mastery       float64         `json:"mastery"`
	PracticeCount int             `json:"practiceCount"`
	CorrectCount  int             `json:"correctCount"`
	ChatMentions  int             `json:"chatMentions"`
	LastPracticed time.Time       `json:"lastPracticed"`
}

// SignalKind distinguishes the two sources of mastery updates.
type SignalKind int

const (
	SignalAnswer SignalKind = iota + 1
	SignalChat
)

// Signal is one observation about a user's understanding of a concept.
type Signal struct {
	Kind SignalKind

	// Correct is meaningful for SignalAnswer.
	Correct bool

	// Delta is meaningful for SignalChat; zero means ChatDelta.
	Delta float64

	At time.Time
}

// AnswerSignal builds the signal for a graded answer.
func AnswerSignal(correct bool, at time.Time) Signal {
	return Signal{Kind: SignalAnswer, Correct: correct, At: at}
}

// ChatSignal builds the signal for a concept mentioned in chat.
func ChatSignal(at time.Time) Signal {
	return Signal{Kind: SignalChat, Delta: ChatDelta, At: at}
}

// MergeProgress applies sig to old and returns the new record. old may be
// nil for a user who has no record on the concept yet; the caller fills in
// UserID and Concept in that case.
func MergeProgress(old *ConceptProgress, sig Signal) ConceptProgress {
	var p ConceptProgress
	fresh := old == nil
	if !fresh {
		p = *old
	}

	switch sig.Kind {
	case SignalAnswer:
		p.PracticeCount++
		if sig.Correct {
			p.CorrectCount++
		}
		if fresh || p.PracticeCount == 1 {
			p.Mastery = FirstIncorrect
			if sig.Correct {
				p.Mastery = FirstCorrect
			}
		} else {
			acc := float64(p.CorrectCount) / float64(p.PracticeCount)
			p.Mastery = math.Min(AnswerCeiling, acc*AccuracyBoost)
		}
		if !sig.At.IsZero() {
			p.LastPracticed = sig.At
		}
	case SignalChat:
		delta := sig.Delta
		if delta == 0 {
			delta = ChatDelta
		}
		p.ChatMentions++
		p.Mastery = math.Min(1, p.Mastery+delta)
	}

	p.Mastery = clamp01(p.Mastery)
	return p
}

// Accuracy is CorrectCount/PracticeCount, or 0 before any practice.
func (p ConceptProgress) Accuracy() float64 {
	if p.PracticeCount == 0 {
		return 0
	}
	return float64(p.CorrectCount) / float64(p.PracticeCount)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
