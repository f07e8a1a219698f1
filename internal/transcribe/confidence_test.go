package transcribe

import (
	"strings"
	"testing"
)

func TestConfidenceShortText(t *testing.T) {
	for _, text := range []string{"hi", "yes", "ok then.", "123456789"} {
		if got := Confidence(text); got != 0.6 {
			t.Errorf("Confidence(%q) = %v, want 0.6", text, got)
		}
	}
	// Whitespace does not count toward the length threshold.
	if got := Confidence("   hello    "); got != 0.6 {
		t.Errorf("Confidence(padded short) = %v, want 0.6", got)
	}
}

func TestConfidenceCleanText(t *testing.T) {
	got := Confidence("The quick brown fox jumps over the lazy dog.")
	// One repeated word ("the") pulls it slightly below 0.85.
	if got <= 0.5 || got > 0.85 {
		t.Errorf("Confidence = %v, want in (0.5, 0.85]", got)
	}
}

func TestConfidenceAllUniqueWords(t *testing.T) {
	got := Confidence("Quick brown foxes jump over lazy dogs today.")
	if got != 0.85 {
		t.Errorf("Confidence = %v, want 0.85 for unique clean text", got)
	}
}

func TestConfidenceRepetitionPenalty(t *testing.T) {
	repeated := strings.Repeat("hello hello hello ", 10)
	varied := "A completely different sentence with many distinct words in it."
	if Confidence(repeated) >= Confidence(varied) {
		t.Errorf("repetition not penalized: %v >= %v", Confidence(repeated), Confidence(varied))
	}
	// Maximal repetition hits the floor.
	if got := Confidence(repeated); got != 0.5 {
		t.Errorf("Confidence(repeated) = %v, want clamped to 0.5", got)
	}
}

func TestConfidenceWeirdCharsPenalty(t *testing.T) {
	clean := "This is a normal transcription result sentence."
	weird := "This ▓▓ is ▓▓ a ▓▓ garbled ▓▓ transcription ▓▓ dump ▓▓."
	if Confidence(weird) >= Confidence(clean) {
		t.Errorf("weird characters not penalized: %v >= %v", Confidence(weird), Confidence(clean))
	}
}

func TestConfidenceBounds(t *testing.T) {
	inputs := []string{
		"a",
		"hello world this is fine",
		strings.Repeat("na ", 200),
		strings.Repeat("▓", 50),
		"Mixed ▓ content with 123 numbers and, punctuation!",
		strings.Repeat("unique", 1) + " words all over the place here now",
	}
	for _, text := range inputs {
		got := Confidence(text)
		if got < 0.5 || got > 0.98 {
			t.Errorf("Confidence(%.20q...) = %v, out of [0.5, 0.98]", text, got)
		}
	}
}
