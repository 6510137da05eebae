package mastery

// Level is a coarse reading of a mastery value for display.
type Level string

const (
	LevelNew      Level = "new"
	LevelLearning Level = "learning"
	LevelMastered Level = "mastered"
)

// MasteredAt is the mastery value at which a concept reads as mastered.
const MasteredAt = 0.8

// LevelOf maps a progress record to its display level.
func LevelOf(p ConceptProgress) Level {
	switch {
	case p.PracticeCount == 0 && p.ChatMentions == 0:
		return LevelNew
	case p.Mastery >= MasteredAt:
		return LevelMastered
	default:
		return LevelLearning
	}
}
