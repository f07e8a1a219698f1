// Package history persists completed transcriptions to SQLite so past
// results survive restarts.
package history

import "time"

// Entry is one saved transcription.
type Entry struct {
	ID         string
	Text       string
	Language   string
	Duration   time.Duration
	Confidence float64
	ModelName  string
	CreatedAt  time.Time
}
