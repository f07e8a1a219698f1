package transcribe

import (
	"strings"
	"unicode"
)

// Confidence estimates how trustworthy a transcription is. Whisper.cpp
// does not expose per-call confidence, so this is a rough heuristic:
// heavy word repetition and unusual characters both suggest the model
// hallucinated. Values are clamped to [0.5, 0.98]; texts shorter than
// 10 characters always score 0.6.
func Confidence(text string) float64 {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 10 {
		return 0.6
	}

	score := 0.85

	words := strings.Fields(strings.ToLower(trimmed))
	if len(words) > 0 {
		unique := make(map[string]struct{}, len(words))
		for _, w := range words {
			unique[w] = struct{}{}
		}
		score *= float64(len(unique)) / float64(len(words))
	}

	var clean, total int
	for _, r := range trimmed {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) ||
			strings.ContainsRune(".,!?;:'\"-()", r) {
			clean++
		}
	}
	if total > 0 {
		score *= float64(clean) / float64(total)
	}

	if score < 0.5 {
		return 0.5
	}
	if score > 0.98 {
		return 0.98
	}
	return score
}
