package core

import (
	"fmt"

	"voicejournal/internal/journal"
	"voicejournal/internal/store"
)

// TrendPoint is one entry on the mood trend line, oldest first.
type TrendPoint struct {
	Date  string       `json:"date"` // short weekday label
	Mood  journal.Mood `json:"mood"`
	Score int          `json:"score"`
}

// Insights aggregates a user's entries for the charts and summary view.
type Insights struct {
	TotalEntries int                  `json:"total_entries"`
	MoodCounts   map[journal.Mood]int `json:"mood_counts"`
	Trend        []TrendPoint         `json:"trend"`
	WeeklyCounts map[string]int       `json:"weekly_counts"`
	DominantMood journal.Mood         `json:"dominant_mood,omitempty"`
	Summary      string               `json:"summary"`
}

const trendWindow = 7

// InsightsService derives chart data from the persisted entries.
type InsightsService struct {
	entries EntryStore
}

func NewInsightsService(entries EntryStore) *InsightsService {
	return &InsightsService{entries: entries}
}

// Overview computes the user's mood distribution, recent trend, weekday
// activity and a dominant-mood summary.
func (s *InsightsService) Overview(userID int64) (*Insights, error) {
	entries, err := s.entries.ListEntries(userID, store.ListFilter{Order: store.OrderOldestFirst})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", journal.ErrPersistenceFailed, err)
	}
	counts, err := s.entries.MoodCounts(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", journal.ErrPersistenceFailed, err)
	}

	insights := &Insights{
		TotalEntries: len(entries),
		MoodCounts:   counts,
		WeeklyCounts: weeklyCounts(entries),
		Summary:      "No entries to summarize.",
	}

	recent := entries
	if len(recent) > trendWindow {
		recent = recent[len(recent)-trendWindow:]
	}
	for _, entry := range recent {
		insights.Trend = append(insights.Trend, TrendPoint{
			Date:  entry.CreatedAt.Format("Mon"),
			Mood:  entry.Mood,
			Score: entry.Mood.Score(),
		})
	}

	if dominant, ok := dominantMood(counts); ok {
		insights.DominantMood = dominant
		insights.Summary = fmt.Sprintf(
			"Based on your recent entries, you've been feeling %s lately. Keep up the good work with your journaling practice!",
			dominant,
		)
	}

	return insights, nil
}

func weeklyCounts(entries []journal.Entry) map[string]int {
	counts := make(map[string]int)
	start := len(entries) - trendWindow
	if start < 0 {
		start = 0
	}
	for _, entry := range entries[start:] {
		counts[entry.CreatedAt.Format("Mon")]++
	}
	return counts
}

// dominantMood picks the most frequent label, breaking ties in display order
// so the result is stable.
func dominantMood(counts map[journal.Mood]int) (journal.Mood, bool) {
	var (
		best  journal.Mood
		max   int
		found bool
	)
	for _, mood := range journal.Moods() {
		if counts[mood] > max {
			best = mood
			max = counts[mood]
			found = true
		}
	}
	return best, found
}
