package performance

import (
	"math"

	"github.com/abhisek/statlab/internal/question"
)

// GlobalWindow is how many of the newest records the global fallback reads.
const GlobalWindow = 10

// Recent-accuracy bands for difficulty moves.
const (
	StepUpAt = 0.8
	HoldAt   = 0.5
)

// RecommendDifficulty picks the next difficulty for a concept. A nil stat
// or one with fewer than MinSamples attempts starts at basic.
func RecommendDifficulty(s *ConceptStat) int {
	if s == nil || s.Total < MinSamples {
		return question.DifficultyBasic
	}
	return DifficultyFor(s.RecentAccuracy(), s.AvgDifficulty())
}

// DifficultyFor moves up from avgDifficulty on strong recent accuracy,
// holds on middling accuracy and steps down otherwise. The result is
// always within [1,3].
func DifficultyFor(recentAccuracy, avgDifficulty float64) int {
	avg := avgDifficulty
	if math.IsNaN(avg) {
		avg = question.DifficultyBasic
	}
	// Bound before converting so huge inputs cannot overflow int.
	avg = math.Max(-1, math.Min(avg, 10))

	switch {
	case recentAccuracy >= StepUpAt:
		return clampDifficulty(min(question.DifficultyAdvanced, int(math.Ceil(avg))+1))
	case recentAccuracy >= HoldAt:
		return clampDifficulty(int(math.Round(avg)))
	default:
		return clampDifficulty(max(question.DifficultyBasic, int(math.Floor(avg))-1))
	}
}

// GlobalAccuracy is the accuracy over the newest GlobalWindow records
// across all concepts.
func GlobalAccuracy(records []AnswerRecord) float64 {
	n := min(GlobalWindow, len(records))
	if n == 0 {
		return 0
	}
	correct := 0
	for _, r := range records[:n] {
		if r.IsCorrect {
			correct++
		}
	}
	return float64(correct) / float64(n)
}

// GlobalDifficulty is the fallback used when no concept is selected.
func GlobalDifficulty(records []AnswerRecord) int {
	perf := GlobalAccuracy(records)
	switch {
	case perf >= StepUpAt:
		return question.DifficultyAdvanced
	case perf >= HoldAt:
		return question.DifficultyMedium
	default:
		return question.DifficultyBasic
	}
}

func clampDifficulty(d int) int {
	return max(question.DifficultyBasic, min(d, question.DifficultyAdvanced))
}
