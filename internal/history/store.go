package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// Store provides read-write access to the transcription history.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the default database path.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".voice-tui", "history.sqlite")
}

const schema = `
	CREATE TABLE IF NOT EXISTS transcriptions (
		id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		language TEXT NOT NULL DEFAULT '',
		durationSeconds REAL NOT NULL,
		confidence REAL NOT NULL,
		modelName TEXT NOT NULL,
		createdAt REAL NOT NULL
	);
`

// Open opens (and if needed creates) the history database with WAL.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save inserts a finished transcription and returns its id.
func (s *Store) Save(e Entry) (string, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO transcriptions (id, text, language, durationSeconds, confidence, modelName, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Text, e.Language, e.Duration.Seconds(), e.Confidence, e.ModelName, unixFloat(e.CreatedAt))
	if err != nil {
		return "", fmt.Errorf("insert transcription: %w", err)
	}
	return e.ID, nil
}

// Recent returns the latest n transcriptions, newest first.
func (s *Store) Recent(n int) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, text, language, durationSeconds, confidence, modelName, createdAt
		FROM transcriptions
		ORDER BY createdAt DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("query transcriptions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var durationSeconds, createdAt float64
		if err := rows.Scan(&e.ID, &e.Text, &e.Language, &durationSeconds,
			&e.Confidence, &e.ModelName, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transcription: %w", err)
		}
		e.Duration = time.Duration(durationSeconds * float64(time.Second))
		e.CreatedAt = timeFromUnix(createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func unixFloat(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func timeFromUnix(f float64) time.Time {
	return time.Unix(0, int64(f*float64(time.Second)))
}
