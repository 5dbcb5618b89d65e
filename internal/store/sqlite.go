package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"voicejournal/internal/journal"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        external_user_id TEXT UNIQUE NOT NULL,
        password_hash TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS journal_entries (
        id TEXT PRIMARY KEY, -- UUID
        user_id INTEGER NOT NULL,
        transcript TEXT NOT NULL CHECK (transcript <> ''),
        ai_response TEXT NOT NULL,
        mood TEXT NOT NULL CHECK (mood IN ('happy', 'excited', 'neutral', 'anxious', 'sad')),
        metadata TEXT NOT NULL DEFAULT '{}', -- JSON
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (user_id) REFERENCES users (id)
    );

    CREATE INDEX IF NOT EXISTS idx_journal_entries_user_created
        ON journal_entries (user_id, created_at);
    `
	_, err := s.db.Exec(schema)
	return err
}

// User methods
func (s *SQLiteStore) GetUserByExternalID(externalUserID string) (*User, error) {
	var user User
	err := s.db.QueryRow("SELECT id, external_user_id, password_hash, created_at FROM users WHERE external_user_id = ?", externalUserID).Scan(&user.ID, &user.ExternalUserID, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

func (s *SQLiteStore) CreateUser(externalUserID, passwordHash string) (*User, error) {
	res, err := s.db.Exec("INSERT INTO users (external_user_id, password_hash) VALUES (?, ?)", externalUserID, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.getUserByID(id)
}

func (s *SQLiteStore) getUserByID(id int64) (*User, error) {
	var user User
	err := s.db.QueryRow("SELECT id, external_user_id, password_hash, created_at FROM users WHERE id = ?", id).Scan(&user.ID, &user.ExternalUserID, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &user, nil
}

// Entry methods

// CreateEntry persists a new journal entry, assigning its ID and creation
// timestamp. Transcript and mood validity are also enforced by the schema.
func (s *SQLiteStore) CreateEntry(entry *journal.Entry) error {
	if entry.Transcript == "" {
		return fmt.Errorf("entry transcript must not be empty")
	}
	if _, ok := journal.ParseMood(string(entry.Mood)); !ok {
		return fmt.Errorf("entry mood %q is not a known label", entry.Mood)
	}

	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now()

	metadataJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal entry metadata: %w", err)
	}

	stmt, err := s.db.Prepare("INSERT INTO journal_entries (id, user_id, transcript, ai_response, mood, metadata, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare entry insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(entry.ID, entry.UserID, entry.Transcript, entry.AIResponse, string(entry.Mood), string(metadataJSON), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute entry insert: %w", err)
	}
	return nil
}

// GetEntryByID returns the entry only when it is owned by the given user.
func (s *SQLiteStore) GetEntryByID(entryID string, userID int64) (*journal.Entry, error) {
	row := s.db.QueryRow("SELECT id, user_id, transcript, ai_response, mood, metadata, created_at FROM journal_entries WHERE id = ? AND user_id = ?", entryID, userID)
	entry, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get entry: %w", err)
	}
	return entry, nil
}

// ListEntries returns the user's entries, ordered by creation time in the
// requested direction and optionally filtered by mood and search term.
func (s *SQLiteStore) ListEntries(userID int64, filter ListFilter) ([]journal.Entry, error) {
	query := "SELECT id, user_id, transcript, ai_response, mood, metadata, created_at FROM journal_entries WHERE user_id = ?"
	args := []any{userID}

	if filter.Mood != "" {
		query += " AND mood = ?"
		args = append(args, filter.Mood)
	}
	if filter.Search != "" {
		query += " AND (transcript LIKE ? OR ai_response LIKE ?)"
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	if filter.Order == OrderOldestFirst {
		query += " ORDER BY created_at ASC"
	} else {
		query += " ORDER BY created_at DESC"
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []journal.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// UpdateEntryMetadata merges the given metadata into the entry's existing
// metadata. Only metadata changes; transcript, response and mood never do.
func (s *SQLiteStore) UpdateEntryMetadata(entryID string, userID int64, metadata journal.Metadata) error {
	entry, err := s.GetEntryByID(entryID, userID)
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("entry not found or not owned by user")
	}

	merged := entry.Metadata.Merge(metadata)
	metadataJSON, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("failed to marshal entry metadata: %w", err)
	}

	stmt, err := s.db.Prepare("UPDATE journal_entries SET metadata = ? WHERE id = ? AND user_id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare metadata update: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(string(metadataJSON), entryID, userID)
	if err != nil {
		return fmt.Errorf("failed to execute metadata update: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("entry not found or not owned by user, metadata not updated")
	}
	return nil
}

// MoodCounts aggregates the user's entries per mood label.
func (s *SQLiteStore) MoodCounts(userID int64) (map[journal.Mood]int, error) {
	rows, err := s.db.Query("SELECT mood, COUNT(*) FROM journal_entries WHERE user_id = ? GROUP BY mood", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mood counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[journal.Mood]int)
	for rows.Next() {
		var mood string
		var count int
		if err := rows.Scan(&mood, &count); err != nil {
			return nil, fmt.Errorf("failed to scan mood count row: %w", err)
		}
		counts[journal.Mood(mood)] = count
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*journal.Entry, error) {
	var entry journal.Entry
	var mood, metadataJSON string
	if err := row.Scan(&entry.ID, &entry.UserID, &entry.Transcript, &entry.AIResponse, &mood, &metadataJSON, &entry.CreatedAt); err != nil {
		return nil, err
	}
	entry.Mood = journal.Mood(mood)
	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &entry.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entry metadata: %w", err)
		}
	}
	return &entry, nil
}
