package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicejournal/internal/journal"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestUser(t *testing.T, store *SQLiteStore, email string) *User {
	t.Helper()
	user, err := store.CreateUser(email, "hash")
	require.NoError(t, err)
	return user
}

func createTestEntry(t *testing.T, store *SQLiteStore, userID int64, transcript string, mood journal.Mood) *journal.Entry {
	t.Helper()
	entry := &journal.Entry{
		UserID:     userID,
		Transcript: transcript,
		AIResponse: "reflection on " + transcript,
		Mood:       mood,
	}
	require.NoError(t, store.CreateEntry(entry))
	// Keep creation timestamps strictly increasing for order assertions.
	time.Sleep(2 * time.Millisecond)
	return entry
}

func TestCreateAndGetUser(t *testing.T) {
	store := newTestStore(t)

	user := createTestUser(t, store, "alice@example.com")
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice@example.com", user.ExternalUserID)

	found, err := store.GetUserByExternalID("alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	missing, err := store.GetUserByExternalID("nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDuplicateUserIsRejected(t *testing.T) {
	store := newTestStore(t)

	createTestUser(t, store, "alice@example.com")
	_, err := store.CreateUser("alice@example.com", "other-hash")
	assert.Error(t, err)
}

func TestCreateEntryAssignsIdentity(t *testing.T) {
	store := newTestStore(t)
	user := createTestUser(t, store, "alice@example.com")

	entry := createTestEntry(t, store, user.ID, "Today was calm.", journal.MoodNeutral)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())

	found, err := store.GetEntryByID(entry.ID, user.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Today was calm.", found.Transcript)
	assert.Equal(t, journal.MoodNeutral, found.Mood)
	assert.Empty(t, found.Metadata.ImageURL)
}

func TestCreateEntryValidation(t *testing.T) {
	store := newTestStore(t)
	user := createTestUser(t, store, "alice@example.com")

	err := store.CreateEntry(&journal.Entry{UserID: user.ID, Transcript: "", Mood: journal.MoodHappy})
	assert.Error(t, err)

	err = store.CreateEntry(&journal.Entry{UserID: user.ID, Transcript: "text", Mood: "ecstatic"})
	assert.Error(t, err)
}

func TestEntryOwnershipIsolation(t *testing.T) {
	store := newTestStore(t)
	alice := createTestUser(t, store, "alice@example.com")
	bob := createTestUser(t, store, "bob@example.com")

	entry := createTestEntry(t, store, alice.ID, "Alice's private day.", journal.MoodHappy)

	found, err := store.GetEntryByID(entry.ID, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	entries, err := store.ListEntries(bob.ID, ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, entries)

	err = store.UpdateEntryMetadata(entry.ID, bob.ID, journal.Metadata{ImageURL: "data:image/png;base64,x"})
	assert.Error(t, err)
}

func TestListEntriesOrderAndFilters(t *testing.T) {
	store := newTestStore(t)
	user := createTestUser(t, store, "alice@example.com")

	first := createTestEntry(t, store, user.ID, "Went hiking in the rain.", journal.MoodExcited)
	createTestEntry(t, store, user.ID, "Quiet day at home.", journal.MoodNeutral)
	third := createTestEntry(t, store, user.ID, "Worried about the deadline.", journal.MoodAnxious)

	newest, err := store.ListEntries(user.ID, ListFilter{Order: OrderNewestFirst})
	require.NoError(t, err)
	require.Len(t, newest, 3)
	assert.Equal(t, third.ID, newest[0].ID)
	assert.Equal(t, first.ID, newest[2].ID)

	oldest, err := store.ListEntries(user.ID, ListFilter{Order: OrderOldestFirst})
	require.NoError(t, err)
	require.Len(t, oldest, 3)
	assert.Equal(t, first.ID, oldest[0].ID)

	anxious, err := store.ListEntries(user.ID, ListFilter{Mood: string(journal.MoodAnxious)})
	require.NoError(t, err)
	require.Len(t, anxious, 1)
	assert.Equal(t, third.ID, anxious[0].ID)

	matched, err := store.ListEntries(user.ID, ListFilter{Search: "hiking"})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, first.ID, matched[0].ID)

	combined, err := store.ListEntries(user.ID, ListFilter{Mood: string(journal.MoodNeutral), Search: "hiking"})
	require.NoError(t, err)
	assert.Empty(t, combined)
}

func TestUpdateEntryMetadataMerges(t *testing.T) {
	store := newTestStore(t)
	user := createTestUser(t, store, "alice@example.com")
	entry := createTestEntry(t, store, user.ID, "A day worth painting.", journal.MoodHappy)

	err := store.UpdateEntryMetadata(entry.ID, user.ID, journal.Metadata{ImageURL: "data:image/png;base64,abc"})
	require.NoError(t, err)

	found, err := store.GetEntryByID(entry.ID, user.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "data:image/png;base64,abc", found.Metadata.ImageURL)
	assert.Equal(t, "A day worth painting.", found.Transcript)

	// An empty update leaves the stored image in place.
	err = store.UpdateEntryMetadata(entry.ID, user.ID, journal.Metadata{})
	require.NoError(t, err)

	found, err = store.GetEntryByID(entry.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,abc", found.Metadata.ImageURL)
}

func TestUpdateEntryMetadataMissingEntry(t *testing.T) {
	store := newTestStore(t)
	user := createTestUser(t, store, "alice@example.com")

	err := store.UpdateEntryMetadata("no-such-id", user.ID, journal.Metadata{ImageURL: "x"})
	assert.Error(t, err)
}

func TestMoodCounts(t *testing.T) {
	store := newTestStore(t)
	user := createTestUser(t, store, "alice@example.com")
	other := createTestUser(t, store, "bob@example.com")

	createTestEntry(t, store, user.ID, "one", journal.MoodHappy)
	createTestEntry(t, store, user.ID, "two", journal.MoodHappy)
	createTestEntry(t, store, user.ID, "three", journal.MoodSad)
	createTestEntry(t, store, other.ID, "four", journal.MoodAnxious)

	counts, err := store.MoodCounts(user.ID)
	require.NoError(t, err)
	assert.Equal(t, map[journal.Mood]int{journal.MoodHappy: 2, journal.MoodSad: 1}, counts)
}
