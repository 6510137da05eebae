package bank

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/statlab/internal/concept"
	"github.com/abhisek/statlab/internal/question"
	"github.com/abhisek/statlab/internal/store"
)

const sampleBank = `
questions:
  - concept: 標準差
    difficulty: basic
    type: multiple_choice
    text: Which value measures spread?
    options: [Mean, Median, Standard deviation, Mode]
    answer: Standard deviation
    explanation: The standard deviation measures spread around the mean.
  - concept: one sample t test
    difficulty: "2"
    type: true_false
    text: A t-test compares a sample mean with a known value.
    answer: "TRUE"
    explanation: That is the one-sample t-test.
    source: teacher
  - concept: astrology
    difficulty: basic
    type: calculation
    text: What is the sign?
    answer: "3"
    explanation: none
  - concept: correlation
    difficulty: advanced
    type: calculation
    text: r for a perfect negative relation?
    answer: minus one
    explanation: It is -1.
`

func openStore(t *testing.T) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open(fmt.Sprintf("file:bank_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestParse(t *testing.T) {
	f, err := Parse(strings.NewReader(sampleBank))
	require.NoError(t, err)
	require.Len(t, f.Questions, 4)
	assert.Equal(t, "標準差", f.Questions[0].Concept)
	assert.Len(t, f.Questions[0].Options, 4)

	_, err = Parse(strings.NewReader(""))
	assert.Error(t, err)

	_, err = Parse(strings.NewReader("questions: []\n"))
	assert.Error(t, err)

	_, err = Parse(strings.NewReader("questions:\n  - concept: x\n    level: 2\n"))
	assert.Error(t, err, "unknown keys are rejected")
}

func TestItemQuestion(t *testing.T) {
	f, err := Parse(strings.NewReader(sampleBank))
	require.NoError(t, err)

	mc, err := f.Questions[0].Question()
	require.NoError(t, err)
	assert.Equal(t, concept.StandardDeviation, mc.Concept)
	assert.Equal(t, question.DifficultyBasic, mc.Difficulty)
	assert.Equal(t, "C", mc.Answer)
	assert.Equal(t, question.SourceQuestionBank, mc.Source)
	assert.True(t, mc.Active)

	tf, err := f.Questions[1].Question()
	require.NoError(t, err)
	assert.Equal(t, concept.OneSampleTTest, tf.Concept)
	assert.Equal(t, question.DifficultyMedium, tf.Difficulty)
	assert.Equal(t, "true", tf.Answer)
	assert.Equal(t, question.SourceTeacher, tf.Source)

	_, err = f.Questions[2].Question()
	assert.ErrorIs(t, err, ErrInvalidItem)
	assert.ErrorIs(t, err, concept.ErrUnknownConcept)

	_, err = f.Questions[3].Question()
	assert.ErrorIs(t, err, ErrInvalidItem)
}

func TestItemQuestion_FieldErrors(t *testing.T) {
	base := Item{
		Concept:     "regression",
		Difficulty:  "medium",
		Type:        "short_answer",
		Text:        "What does the slope tell you?",
		Answer:      "The change in y per unit of x.",
		Explanation: "Slope is rise over run.",
	}
	_, err := base.Question()
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Item)
	}{
		{"missing text", func(it *Item) { it.Text = "" }},
		{"missing answer", func(it *Item) { it.Answer = "" }},
		{"bad source", func(it *Item) { it.Source = "ai_generated" }},
		{"bad difficulty", func(it *Item) { it.Difficulty = "expert" }},
		{"bad type", func(it *Item) { it.Type = "essay" }},
		{"options on open type", func(it *Item) { it.Options = []string{"a", "b", "c", "d"} }},
		{"blank option", func(it *Item) { it.Type = "multiple_choice"; it.Options = []string{"a", "", "c", "d"}; it.Answer = "A" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := base
			tt.mutate(&it)
			_, err := it.Question()
			assert.ErrorIs(t, err, ErrInvalidItem)
		})
	}
}

func TestImport(t *testing.T) {
	st := openStore(t)
	f, err := Parse(strings.NewReader(sampleBank))
	require.NoError(t, err)

	ctx := context.Background()
	im := NewImporter(st.QuestionRepo(), nil, false)
	rep, err := im.Import(ctx, f.Questions)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Imported)
	assert.Equal(t, 0, rep.Skipped)
	require.Len(t, rep.Failures, 2)
	assert.Equal(t, 2, rep.Failures[0].Index)
	assert.Equal(t, 3, rep.Failures[1].Index)

	stored, err := st.QuestionRepo().Find(ctx, store.QuestionFilter{Concept: concept.StandardDeviation})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "C", stored[0].Answer)

	again, err := im.Import(ctx, f.Questions)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Imported)
	assert.Equal(t, 2, again.Skipped)
}

func TestImport_DryRun(t *testing.T) {
	st := openStore(t)
	f, err := Parse(strings.NewReader(sampleBank))
	require.NoError(t, err)

	ctx := context.Background()
	rep, err := NewImporter(st.QuestionRepo(), nil, true).Import(ctx, f.Questions)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Imported)

	stored, err := st.QuestionRepo().Find(ctx, store.QuestionFilter{})
	require.NoError(t, err)
	assert.Empty(t, stored)
}
