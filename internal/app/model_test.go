package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spenceriam/voice-tui/internal/capture"
	"github.com/spenceriam/voice-tui/internal/models"
	"github.com/spenceriam/voice-tui/internal/record"
	"github.com/spenceriam/voice-tui/internal/session"
	"github.com/spenceriam/voice-tui/internal/transcribe"

	tea "github.com/charmbracelet/bubbletea"
)

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T) Model {
	t.Helper()

	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "ggml-tiny.bin"), []byte("weights"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := models.NewStore(models.DefaultRegistry(root), nil, nil)
	engine := transcribe.NewEngine(store, &transcribe.Synthetic{Text: "hello"}, t.TempDir(), nil)

	src := capture.NewSynthetic()
	src.Interval = 5 * time.Millisecond
	src.Silent = true

	sess := record.NewSession(src, nil)
	ctrl := session.New(sess, engine, record.DefaultOptions(), transcribe.Config{ModelName: "tiny"}, nil)

	return New(ctrl, nil, t.TempDir(), "tiny", nil)
}

func stateEvent(snap session.Snapshot) ControllerEventMsg {
	return ControllerEventMsg{Event: session.Event{Kind: session.KindState, Snapshot: snap}}
}

func TestNewModel(t *testing.T) {
	m := newTestModel(t)
	if m.snap.Phase != session.PhaseIdle {
		t.Errorf("phase = %s, want idle", m.snap.Phase)
	}
	if m.saved {
		t.Error("new model should not have a saved result")
	}
}

func TestLevelEvent(t *testing.T) {
	m := newTestModel(t)

	ev := ControllerEventMsg{Event: session.Event{
		Kind:  session.KindLevel,
		Level: 0.42,
		Bands: []float64{0.1, 0.5, 0.9},
	}}
	updated, _ := m.Update(ev)
	model := updated.(Model)

	if model.level != 0.42 {
		t.Errorf("level = %v, want 0.42", model.level)
	}
	if len(model.bands) != 3 {
		t.Errorf("bands = %v", model.bands)
	}
}

func TestResultEventSavesOnce(t *testing.T) {
	m := newTestModel(t)

	res := &transcribe.Result{Text: "hello world", Confidence: 0.9}
	ev := stateEvent(session.Snapshot{Phase: session.PhaseResult, Result: res})

	updated, cmd := m.Update(ev)
	model := updated.(Model)
	if !model.saved {
		t.Error("result should be marked saved")
	}
	if cmd == nil {
		t.Fatal("expected a save command")
	}

	// The same result arriving again must not clear the flag, so the
	// save path only runs once per session.
	updated, _ = model.Update(ev)
	if !updated.(Model).saved {
		t.Error("saved flag should persist")
	}
}

func TestIdleEventResetsWaveState(t *testing.T) {
	m := newTestModel(t)
	m.level = 0.7
	m.bands = []float64{0.5}
	m.saved = true

	updated, _ := m.Update(stateEvent(session.Snapshot{Phase: session.PhaseIdle}))
	model := updated.(Model)

	if model.level != 0 || model.bands != nil {
		t.Error("idle should clear level state")
	}
	if model.saved {
		t.Error("idle should clear the saved flag")
	}
}

func TestExportNotice(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(ExportedMsg{Path: "/tmp/out.md"})
	model := updated.(Model)
	if !strings.Contains(model.notice, "/tmp/out.md") {
		t.Errorf("notice = %q", model.notice)
	}

	updated, _ = model.Update(ClearNoticeMsg{})
	if updated.(Model).notice != "" {
		t.Error("notice should clear")
	}
}

func TestExportErrorNotice(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(ExportErrorMsg{Err: errors.New("disk full")})
	if !strings.Contains(updated.(Model).notice, "disk full") {
		t.Errorf("notice = %q", updated.(Model).notice)
	}
}

func TestViewPhases(t *testing.T) {
	m := newTestModel(t)
	m.width = 80
	m.height = 24

	if v := m.View(); !strings.Contains(v, "IDLE") {
		t.Error("idle view should show IDLE")
	}

	m.snap.Phase = session.PhaseRecording
	m.snap.Elapsed = 65 * time.Second
	if v := m.View(); !strings.Contains(v, "REC") || !strings.Contains(v, "01:05") {
		t.Error("recording view should show REC and elapsed")
	}

	m.snap.Phase = session.PhaseResult
	m.snap.Result = &transcribe.Result{Text: "the quick brown fox", Confidence: 0.87, Duration: 3 * time.Second}
	if v := m.View(); !strings.Contains(v, "quick brown fox") || !strings.Contains(v, "87%") {
		t.Error("result view should show text and confidence")
	}

	m.snap.Phase = session.PhaseError
	m.snap.ErrMessage = "microphone unavailable"
	m.snap.Recoverable = true
	if v := m.View(); !strings.Contains(v, "microphone unavailable") {
		t.Error("error view should show the message")
	}
}

func TestViewBeforeWindowSize(t *testing.T) {
	m := newTestModel(t)
	if v := m.View(); !strings.Contains(v, "Initializing") {
		t.Errorf("view = %q", v)
	}
}

func TestSaveKeyOnlyInResult(t *testing.T) {
	m := newTestModel(t)

	_, cmd := m.handleKey(keyMsg("s"))
	if cmd != nil {
		t.Error("save should be a no-op while idle")
	}

	m.snap.Phase = session.PhaseResult
	m.snap.Result = &transcribe.Result{Text: "hi"}
	_, cmd = m.handleKey(keyMsg("s"))
	if cmd == nil {
		t.Error("save should produce a command with a result present")
	}
}

func TestFormatElapsed(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{59 * time.Second, "00:59"},
		{60 * time.Second, "01:00"},
		{125 * time.Second, "02:05"},
	}
	for _, c := range cases {
		if got := formatElapsed(c.d); got != c.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("alpha beta gamma delta", 11)
	if len(lines) != 2 {
		t.Fatalf("lines = %v", lines)
	}
	if lines[0] != "alpha beta" || lines[1] != "gamma delta" {
		t.Errorf("lines = %v", lines)
	}

	if got := wrapText("", 10); len(got) != 1 || got[0] != "" {
		t.Errorf("empty input: %v", got)
	}
}

func TestRenderWaveformClamps(t *testing.T) {
	out := renderWaveform([]float64{-0.5, 0.5, 2.0}, 40)
	if out == "" {
		t.Fatal("empty waveform")
	}
	if !strings.Contains(out, "█") {
		t.Error("full band should render the tallest glyph")
	}
}
