package recommend

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/statlab/internal/concept"
	"github.com/abhisek/statlab/internal/performance"
)

// fixedSource replays values in order, repeating the last one.
type fixedSource struct {
	vals []float64
	i    int
}

func (f *fixedSource) Float64() float64 {
	v := f.vals[min(f.i, len(f.vals)-1)]
	f.i++
	return v
}

func records(c concept.Concept, difficulty int, pattern ...bool) []performance.AnswerRecord {
	out := make([]performance.AnswerRecord, len(pattern))
	for i, ok := range pattern {
		out[i] = performance.AnswerRecord{Concept: c, Difficulty: difficulty, IsCorrect: ok}
	}
	return out
}

func weakSDHistory() *performance.History {
	rs := records(concept.StandardDeviation, 3, true, false, false, false, false, false, true, true, false, false)
	rs = append(rs, records(concept.CorrelationAnalysis, 2, true, true, true, true)...)
	return performance.Aggregate(rs)
}

func TestSelect_NewUser(t *testing.T) {
	p := NewPolicy(&fixedSource{vals: []float64{0.5}})
	rec := p.Select(nil)

	assert.Equal(t, CategoryNewUser, rec.Category)
	assert.Equal(t, concept.Entry, rec.Concept)
	assert.Equal(t, 1, rec.Difficulty)
	assert.Contains(t, rec.Rationale, string(concept.Entry))
	assert.Equal(t, 0, rec.TotalAnswered)
}

func TestSelect_WeakFocus(t *testing.T) {
	p := NewPolicy(&fixedSource{vals: []float64{0.1}})
	rec := p.Select(weakSDHistory())

	assert.Equal(t, CategoryWeakConceptFocus, rec.Category)
	assert.Equal(t, concept.StandardDeviation, rec.Concept)
	assert.False(t, rec.Explored)
	assert.Equal(t, 2, rec.Difficulty)
	assert.Contains(t, rec.Rationale, "Standard Deviation")
	assert.Contains(t, rec.Rationale, "30%")
	require.Len(t, rec.WeakConcepts, 1)
	require.Len(t, rec.StrongConcepts, 1)
	assert.Equal(t, concept.CorrelationAnalysis, rec.StrongConcepts[0].Concept)
	assert.Equal(t, 14, rec.TotalAnswered)
}

func TestSelect_WeakFocusExplores(t *testing.T) {
	// 0.9 takes the exploration branch; 0.99 picks the last concept.
	p := NewPolicy(&fixedSource{vals: []float64{0.9, 0.99}})
	rec := p.Select(weakSDHistory())

	assert.Equal(t, CategoryWeakConceptFocus, rec.Category)
	assert.True(t, rec.Explored)
	assert.Equal(t, concept.ChiSquareTest, rec.Concept)
	// No chi-square history, so the recommender starts at basic.
	assert.Equal(t, 1, rec.Difficulty)
	assert.Contains(t, rec.Rationale, "Chi-Square Test")
	assert.Contains(t, rec.Rationale, "Standard Deviation")
}

func TestSelect_NeedMorePractice(t *testing.T) {
	h := performance.Aggregate(records(concept.SimpleRegression, 2, true, true, false, true, true))
	rec := NewPolicy(&fixedSource{vals: []float64{0}}).Select(h)

	assert.Equal(t, CategoryNeedMorePractice, rec.Category)
	assert.False(t, rec.HasConcept())
	assert.Equal(t, 3, rec.Difficulty)
	assert.Contains(t, rec.Rationale, "80%")
}

func TestSelect_DoingWell(t *testing.T) {
	rs := records(concept.SimpleRegression, 2, true, false, true, false, true, true)
	rs = append(rs, records(concept.ChiSquareTest, 2, true, true, false, true, true, false)...)
	rec := NewPolicy(&fixedSource{vals: []float64{0}}).Select(performance.Aggregate(rs))

	assert.Equal(t, CategoryDoingWell, rec.Category)
	assert.False(t, rec.HasConcept())
	// Newest ten: 4 of 6 regression plus 3 of 4 chi-square.
	assert.Equal(t, 2, rec.Difficulty)
	assert.Contains(t, rec.Rationale, "70%")
}

func TestSelect_ZeroCorrectIsNotNewUser(t *testing.T) {
	h := performance.Aggregate(records(concept.OneSampleTTest, 1, false))
	rec := NewPolicy(&fixedSource{vals: []float64{0}}).Select(h)
	assert.Equal(t, CategoryNeedMorePractice, rec.Category)
}

func TestSelect_TopListsBounded(t *testing.T) {
	var rs []performance.AnswerRecord
	for _, c := range concept.All() {
		rs = append(rs, records(c, 1, false, false, false)...)
	}
	rec := NewPolicy(&fixedSource{vals: []float64{0}}).Select(performance.Aggregate(rs))
	assert.Len(t, rec.WeakConcepts, TopListSize)
}

func TestSelect_ExplorationSplit(t *testing.T) {
	const trials = 10000
	h := weakSDHistory()
	p := NewPolicy(NewRandomSource(42))

	focused, weakChosen := 0, 0
	for range trials {
		rec := p.Select(h)
		if !rec.Explored {
			focused++
		}
		if rec.Concept == concept.StandardDeviation {
			weakChosen++
		}
	}

	// Binomial(10000, 0.8): sd = 40, allow four standard deviations.
	sd := math.Sqrt(trials * WeakFocusProbability * (1 - WeakFocusProbability))
	assert.InDelta(t, trials*WeakFocusProbability, float64(focused), 4*sd)

	// Exploration can also land on the weak concept: 0.8 + 0.2/8.
	pWeak := WeakFocusProbability + (1-WeakFocusProbability)/float64(len(concept.All()))
	sdWeak := math.Sqrt(trials * pWeak * (1 - pWeak))
	assert.InDelta(t, trials*pWeak, float64(weakChosen), 4*sdWeak)
}

func TestSelect_DeterministicForSeed(t *testing.T) {
	h := weakSDHistory()
	run := func() []string {
		p := NewPolicy(NewRandomSource(7))
		var out []string
		for range 50 {
			out = append(out, string(p.Select(h).Concept))
		}
		return out
	}
	assert.Equal(t, strings.Join(run(), ","), strings.Join(run(), ","))
}

func TestPickConcept_Bounds(t *testing.T) {
	assert.Equal(t, concept.DescriptiveStatistics, PickConcept(&fixedSource{vals: []float64{0}}))
	assert.Equal(t, concept.ChiSquareTest, PickConcept(&fixedSource{vals: []float64{0.999999}}))
	// A misbehaving source returning 1.0 still stays in range.
	assert.Equal(t, concept.ChiSquareTest, PickConcept(&fixedSource{vals: []float64{1}}))
}
