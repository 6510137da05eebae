package concept

import (
	"errors"
	"fmt"
	"strings"
)

// Concept is a canonical statistics topic tracked per user.
type Concept string

const (
	DescriptiveStatistics   Concept = "Descriptive Statistics"
	StandardDeviation       Concept = "Standard Deviation"
	OneSampleTTest          Concept = "One-Sample t-Test"
	IndependentSamplesTTest Concept = "Independent-Samples t-Test"
	PairedSamplesTTest      Concept = "Paired-Samples t-Test"
	CorrelationAnalysis     Concept = "Correlation Analysis"
	SimpleRegression        Concept = "Simple Regression"
	ChiSquareTest           Concept = "Chi-Square Test"

	// Unknown is the bucket for labels that resolve to no canonical concept.
	Unknown Concept = ""
)

// Entry is the concept served to users with no answer history.
const Entry = DescriptiveStatistics

// ErrUnknownConcept is returned by Parse when a label has no mapping.
var ErrUnknownConcept = errors.New("unknown concept")

// All returns the canonical concepts in curriculum order.
func All() []Concept {
	return []Concept{
		DescriptiveStatistics,
		StandardDeviation,
		OneSampleTTest,
		IndependentSamplesTTest,
		PairedSamplesTTest,
		CorrelationAnalysis,
		SimpleRegression,
		ChiSquareTest,
	}
}

// Index returns the curriculum position of c, or -1 for Unknown.
func Index(c Concept) int {
	for i, k := range All() {
		if k == c {
			return i
		}
	}
	return -1
}

// IsCanonical reports whether c is one of the canonical concepts.
func (c Concept) IsCanonical() bool {
	return Index(c) >= 0
}

func (c Concept) String() string {
	if c == Unknown {
		return "unknown"
	}
	return string(c)
}

// Normalize maps a free-text label to its canonical concept, or Unknown.
// Normalize is total and idempotent.
func Normalize(raw string) Concept {
	c, _ := Lookup(raw)
	return c
}

// Lookup is Normalize with a flag reporting whether a mapping was found.
// Callers log the miss; an Unknown result is a valid bucket.
//
// Lookup order: exact alias, folded alias, exact canonical name.
func Lookup(raw string) (Concept, bool) {
	if c, ok := table.exact[raw]; ok {
		return c, true
	}
	if c, ok := table.folded[fold(raw)]; ok {
		return c, true
	}
	if c := Concept(raw); c.IsCanonical() {
		return c, true
	}
	return Unknown, false
}

// Parse resolves a label supplied as an input filter. Unlike Normalize it
// rejects labels without a mapping.
func Parse(raw string) (Concept, error) {
	c, ok := Lookup(raw)
	if !ok {
		return Unknown, fmt.Errorf("%w: %q", ErrUnknownConcept, raw)
	}
	return c, nil
}

// fold lowercases, trims, treats '-' and '_' as spaces and collapses runs
// of whitespace.
func fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}
