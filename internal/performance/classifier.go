package performance

import (
	"math"
	"sort"

	"github.com/abhisek/statlab/internal/concept"
)

// Classification thresholds.
const (
	MinSamples    = 3
	WeakBelow     = 0.5
	StrongAtLeast = 0.7
)

// Band is a concept's classification bucket.
type Band string

const (
	BandWeak    Band = "weak"
	BandStrong  Band = "strong"
	BandNeutral Band = "neutral"
)

// Ranked is a classified concept with the numbers that ranked it.
type Ranked struct {
	Concept  concept.Concept `json:"concept"`
	Accuracy float64         `json:"accuracy"`
	Total    int             `json:"total"`
	Priority float64         `json:"priority,omitempty"`
}

// Classification holds the weak list (highest priority first) and the
// strong list (highest accuracy first).
type Classification struct {
	Weak   []Ranked
	Strong []Ranked
}

// Classify labels a stat. Stats below MinSamples are neutral.
func Classify(s *ConceptStat) Band {
	if s == nil || s.Total < MinSamples {
		return BandNeutral
	}
	acc := s.Accuracy()
	switch {
	case acc < WeakBelow:
		return BandWeak
	case acc >= StrongAtLeast:
		return BandStrong
	default:
		return BandNeutral
	}
}

// WeakPriority ranks weak concepts: low accuracy and larger samples rank
// higher.
func WeakPriority(s *ConceptStat) float64 {
	return (1 - s.Accuracy()) * math.Log(float64(s.Total)+1)
}

// ClassifyAll splits stats into ranked weak and strong lists. The Unknown
// bucket is never ranked.
func ClassifyAll(stats map[concept.Concept]*ConceptStat) Classification {
	var c Classification
	for k, s := range stats {
		if k == concept.Unknown {
			continue
		}
		switch Classify(s) {
		case BandWeak:
			c.Weak = append(c.Weak, Ranked{Concept: k, Accuracy: s.Accuracy(), Total: s.Total, Priority: WeakPriority(s)})
		case BandStrong:
			c.Strong = append(c.Strong, Ranked{Concept: k, Accuracy: s.Accuracy(), Total: s.Total})
		}
	}

	// Ties fall back to curriculum order so results are deterministic.
	sort.Slice(c.Weak, func(i, j int) bool {
		if c.Weak[i].Priority != c.Weak[j].Priority {
			return c.Weak[i].Priority > c.Weak[j].Priority
		}
		return concept.Index(c.Weak[i].Concept) < concept.Index(c.Weak[j].Concept)
	})
	sort.Slice(c.Strong, func(i, j int) bool {
		if c.Strong[i].Accuracy != c.Strong[j].Accuracy {
			return c.Strong[i].Accuracy > c.Strong[j].Accuracy
		}
		if c.Strong[i].Total != c.Strong[j].Total {
			return c.Strong[i].Total > c.Strong[j].Total
		}
		return concept.Index(c.Strong[i].Concept) < concept.Index(c.Strong[j].Concept)
	})
	return c
}
