package recommend

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/abhisek/statlab/internal/concept"
	"github.com/abhisek/statlab/internal/performance"
	"github.com/abhisek/statlab/internal/question"
)

// Category explains which branch of the policy produced a recommendation.
type Category string

const (
	CategoryNewUser          Category = "new_user"
	CategoryWeakConceptFocus Category = "weak_concept_focus"
	CategoryNeedMorePractice Category = "need_more_practice"
	CategoryDoingWell        Category = "doing_well"
)

const (
	// WeakFocusProbability is the chance of drilling the top weak concept
	// rather than exploring a random one.
	WeakFocusProbability = 0.8

	// SettledAnswerCount is how many answers a user needs before the
	// policy reports doing_well.
	SettledAnswerCount = 10

	// TopListSize bounds the weak and strong lists on a recommendation.
	TopListSize = 3
)

// Recommendation is the target for the next practice question.
type Recommendation struct {
	// Concept is Unknown when any concept will do.
	Concept    concept.Concept `json:"concept"`
	Difficulty int             `json:"difficulty"`
	Category   Category        `json:"category"`
	Rationale  string          `json:"rationale"`

	WeakConcepts   []performance.Ranked `json:"weakConcepts"`
	StrongConcepts []performance.Ranked `json:"strongConcepts"`

	// Explored is set when the weak-focus branch picked a random concept.
	Explored      bool `json:"explored"`
	TotalAnswered int  `json:"totalAnswered"`
}

// HasConcept reports whether the recommendation names a concept.
func (r Recommendation) HasConcept() bool {
	return r.Concept != concept.Unknown
}

// RandomSource supplies uniform floats in [0,1).
// *rand.Rand from math/rand/v2 satisfies it.
type RandomSource interface {
	Float64() float64
}

// lockedSource makes a *rand.Rand safe for concurrent requests.
type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedSource) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// NewRandomSource returns a concurrency-safe PCG source for the seed.
func NewRandomSource(seed uint64) RandomSource {
	return &lockedSource{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// PickConcept draws a canonical concept uniformly.
func PickConcept(rnd RandomSource) concept.Concept {
	all := concept.All()
	i := int(rnd.Float64() * float64(len(all)))
	if i >= len(all) {
		i = len(all) - 1
	}
	return all[i]
}

// Policy turns an aggregated history into a Recommendation.
type Policy struct {
	rand RandomSource
}

// NewPolicy creates a Policy drawing exploration from rnd.
func NewPolicy(rnd RandomSource) *Policy {
	return &Policy{rand: rnd}
}

// Select applies, in order: new user, weak concept focus, need more
// practice, doing well.
func (p *Policy) Select(h *performance.History) Recommendation {
	if !h.HasHistory() {
		return Recommendation{
			Concept:    concept.Entry,
			Difficulty: question.DifficultyBasic,
			Category:   CategoryNewUser,
			Rationale:  fmt.Sprintf("No answers yet; starting with %s at basic difficulty.", concept.Entry),
		}
	}

	cls := performance.ClassifyAll(h.Stats)
	rec := Recommendation{
		WeakConcepts:   top(cls.Weak),
		StrongConcepts: top(cls.Strong),
		TotalAnswered:  h.Total(),
	}

	if len(cls.Weak) > 0 {
		weakest := cls.Weak[0]
		rec.Category = CategoryWeakConceptFocus
		if p.rand.Float64() < WeakFocusProbability {
			rec.Concept = weakest.Concept
			rec.Rationale = fmt.Sprintf("Focus on %s: accuracy %s over %d attempts.",
				weakest.Concept, percent(weakest.Accuracy), weakest.Total)
		} else {
			rec.Concept = PickConcept(p.rand)
			rec.Explored = true
			rec.Rationale = fmt.Sprintf("Exploring %s to broaden practice; weakest concept is %s at %s accuracy.",
				rec.Concept, weakest.Concept, percent(weakest.Accuracy))
		}
		rec.Difficulty = performance.RecommendDifficulty(h.Stat(rec.Concept))
		return rec
	}

	global := performance.GlobalAccuracy(h.Records)
	rec.Difficulty = performance.GlobalDifficulty(h.Records)
	if h.Total() < SettledAnswerCount {
		rec.Category = CategoryNeedMorePractice
		rec.Rationale = fmt.Sprintf("%d answers so far with %s recent accuracy; keep practicing any concept.",
			h.Total(), percent(global))
		return rec
	}

	rec.Category = CategoryDoingWell
	rec.Rationale = fmt.Sprintf("No weak concepts; recent accuracy is %s.", percent(global))
	return rec
}

func top(list []performance.Ranked) []performance.Ranked {
	if len(list) > TopListSize {
		return list[:TopListSize]
	}
	return list
}

func percent(f float64) string {
	return fmt.Sprintf("%.0f%%", f*100)
}
