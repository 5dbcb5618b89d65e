package journal

import "strings"

// Mood is the closed set of labels an entry can carry.
type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodExcited Mood = "excited"
	MoodNeutral Mood = "neutral"
	MoodAnxious Mood = "anxious"
	MoodSad     Mood = "sad"
)

// FallbackMood is substituted when classification fails or returns a value
// outside the known set.
const FallbackMood = MoodNeutral

// Moods lists every valid label, in display order.
func Moods() []Mood {
	return []Mood{MoodHappy, MoodExcited, MoodNeutral, MoodAnxious, MoodSad}
}

// ParseMood case-folds and trims raw classifier output and reports whether it
// names a known mood.
func ParseMood(raw string) (Mood, bool) {
	switch Mood(strings.ToLower(strings.TrimSpace(raw))) {
	case MoodHappy:
		return MoodHappy, true
	case MoodExcited:
		return MoodExcited, true
	case MoodNeutral:
		return MoodNeutral, true
	case MoodAnxious:
		return MoodAnxious, true
	case MoodSad:
		return MoodSad, true
	}
	return "", false
}

// NormalizeMood coerces arbitrary classifier output into the closed set,
// falling back rather than storing an out-of-set value verbatim.
func NormalizeMood(raw string) Mood {
	if mood, ok := ParseMood(raw); ok {
		return mood
	}
	return FallbackMood
}

// Score maps a mood onto a 1-5 scale for trend charting. Higher is brighter.
func (m Mood) Score() int {
	switch m {
	case MoodHappy:
		return 5
	case MoodExcited:
		return 4
	case MoodNeutral:
		return 3
	case MoodAnxious:
		return 2
	case MoodSad:
		return 1
	}
	return 3
}
