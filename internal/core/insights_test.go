package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicejournal/internal/journal"
)

func seedEntries(store *fakeEntryStore, userID int64, moods ...journal.Mood) {
	base := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC) // a Monday
	for i, mood := range moods {
		store.entries = append(store.entries, journal.Entry{
			ID:         journalEntryID(store),
			UserID:     userID,
			Transcript: "transcript",
			AIResponse: "response",
			Mood:       mood,
			CreatedAt:  base.AddDate(0, 0, i),
		})
	}
}

func journalEntryID(store *fakeEntryStore) string {
	store.nextID++
	return "seeded-" + string(rune('a'+store.nextID))
}

func TestInsightsOverview(t *testing.T) {
	entries := &fakeEntryStore{}
	seedEntries(entries, testUser,
		journal.MoodHappy, journal.MoodHappy, journal.MoodSad, journal.MoodNeutral)
	seedEntries(entries, 99, journal.MoodAnxious) // another user's entry is invisible

	svc := NewInsightsService(entries)
	insights, err := svc.Overview(testUser)
	require.NoError(t, err)

	assert.Equal(t, 4, insights.TotalEntries)
	assert.Equal(t, 2, insights.MoodCounts[journal.MoodHappy])
	assert.Equal(t, 1, insights.MoodCounts[journal.MoodSad])
	assert.Zero(t, insights.MoodCounts[journal.MoodAnxious])

	assert.Equal(t, journal.MoodHappy, insights.DominantMood)
	assert.Contains(t, insights.Summary, "happy")

	// trend is oldest first with the mood score scale
	require.Len(t, insights.Trend, 4)
	assert.Equal(t, "Mon", insights.Trend[0].Date)
	assert.Equal(t, 5, insights.Trend[0].Score)
	assert.Equal(t, journal.MoodNeutral, insights.Trend[3].Mood)
	assert.Equal(t, 3, insights.Trend[3].Score)
}

func TestInsightsTrendWindowIsCapped(t *testing.T) {
	entries := &fakeEntryStore{}
	moods := make([]journal.Mood, 10)
	for i := range moods {
		moods[i] = journal.MoodNeutral
	}
	seedEntries(entries, testUser, moods...)

	svc := NewInsightsService(entries)
	insights, err := svc.Overview(testUser)
	require.NoError(t, err)

	assert.Equal(t, 10, insights.TotalEntries)
	assert.Len(t, insights.Trend, trendWindow)
}

func TestInsightsEmptyJournal(t *testing.T) {
	svc := NewInsightsService(&fakeEntryStore{})
	insights, err := svc.Overview(testUser)
	require.NoError(t, err)

	assert.Zero(t, insights.TotalEntries)
	assert.Empty(t, insights.Trend)
	assert.Empty(t, insights.DominantMood)
	assert.Equal(t, "No entries to summarize.", insights.Summary)
}
