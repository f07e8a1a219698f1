// Package output renders finished transcriptions for export.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spenceriam/voice-tui/internal/transcribe"
)

// Metadata is the header block of an exported transcript.
type Metadata struct {
	Date      time.Time
	ModelName string
}

// RenderMarkdown formats a transcription as a Markdown document with a
// metadata header followed by the text.
func RenderMarkdown(res transcribe.Result, meta Metadata) string {
	var b strings.Builder
	b.WriteString("# Transcription\n\n")

	date := meta.Date
	if date.IsZero() {
		date = time.Now()
	}
	fmt.Fprintf(&b, "- Date: %s\n", date.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "- Duration: %s\n", res.Duration.Truncate(100*time.Millisecond))
	if res.Language != "" {
		fmt.Fprintf(&b, "- Language: %s\n", res.Language)
	}
	fmt.Fprintf(&b, "- Confidence: %.0f%%\n", res.Confidence*100)
	if meta.ModelName != "" {
		fmt.Fprintf(&b, "- Model: `%s`\n", meta.ModelName)
	}
	b.WriteString("\n---\n\n")

	b.WriteString(strings.TrimSpace(res.Text))
	b.WriteString("\n")
	return b.String()
}

// Export writes the rendered Markdown to dir with a timestamped name
// and returns the full path.
func Export(dir string, res transcribe.Result, meta Metadata) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	date := meta.Date
	if date.IsZero() {
		date = time.Now()
	}
	path := filepath.Join(dir, fmt.Sprintf("transcript-%s.md", date.Format("2006-01-02_15-04-05")))
	if err := os.WriteFile(path, []byte(RenderMarkdown(res, meta)), 0o644); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return path, nil
}
