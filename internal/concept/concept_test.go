package concept

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want Concept
	}{
		{"Descriptive Statistics", DescriptiveStatistics},
		{"描述統計", DescriptiveStatistics},
		{"描述统计", DescriptiveStatistics},
		{"標準差", StandardDeviation},
		{"  STANDARD deviation ", StandardDeviation},
		{"one sample t test", OneSampleTTest},
		{"One-Sample T-Test", OneSampleTTest},
		{"one_sample   t test", OneSampleTTest},
		{"單樣本t檢定", OneSampleTTest},
		{"independent samples t-test", IndependentSamplesTTest},
		{"配對樣本t檢定", PairedSamplesTTest},
		{"Correlation", CorrelationAnalysis},
		{"regression", SimpleRegression},
		{"簡單迴歸", SimpleRegression},
		{"chi-square", ChiSquareTest},
		{"CHI SQUARE TEST", ChiSquareTest},
		{"Bayesian inference", Unknown},
		{"", Unknown},
		{"   ", Unknown},
	}
	for _, tt := range tests {
		if got := Normalize(tt.raw); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"", "x", "標準差", "Chi-Square Test", "paired t test", "ANOVA", "sd"}
	for _, c := range All() {
		inputs = append(inputs, string(c))
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(string(once))
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestLookup_ReportsMiss(t *testing.T) {
	c, ok := Lookup("ANOVA")
	assert.False(t, ok)
	assert.Equal(t, Unknown, c)

	c, ok = Lookup("卡方檢定")
	assert.True(t, ok)
	assert.Equal(t, ChiSquareTest, c)
}

func TestParse(t *testing.T) {
	c, err := Parse("simple regression")
	assert.NoError(t, err)
	assert.Equal(t, SimpleRegression, c)

	_, err = Parse("factor analysis")
	assert.True(t, errors.Is(err, ErrUnknownConcept))
}

func TestAll_EightCanonicalConcepts(t *testing.T) {
	all := All()
	assert.Len(t, all, 8)
	seen := map[Concept]bool{}
	for i, c := range all {
		assert.False(t, seen[c], "duplicate %s", c)
		seen[c] = true
		assert.Equal(t, i, Index(c))
		assert.True(t, c.IsCanonical())
		assert.NotEmpty(t, aliases[c], "no aliases for %s", c)
	}
	assert.Equal(t, -1, Index(Unknown))
	assert.Equal(t, "unknown", Unknown.String())
}

func TestAliases_Unambiguous(t *testing.T) {
	owner := map[string]Concept{}
	for c, labels := range aliases {
		for _, l := range labels {
			k := fold(l)
			if prev, ok := owner[k]; ok && prev != c {
				t.Errorf("alias %q maps to both %s and %s", l, prev, c)
			}
			owner[k] = c
		}
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		msg  string
		want []Concept
	}{
		{"什麼是標準差？", []Concept{StandardDeviation}},
		{"How do I compute the SD of this sample?", []Concept{StandardDeviation}},
		{"Is correlation the same as regression slope?", []Concept{CorrelationAnalysis, SimpleRegression}},
		{"卡方檢定的自由度怎麼算", []Concept{ChiSquareTest}},
		{"What does this word meaning imply?", nil},
		{"hello", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Detect(tt.msg), tt.msg)
	}
}
