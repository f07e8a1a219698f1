// Package app holds the bubbletea model for the voice-tui terminal UI.
// All pipeline state lives in the session controller; the model only
// mirrors the latest snapshot and renders it.
package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"go.uber.org/zap"

	"github.com/spenceriam/voice-tui/internal/history"
	"github.com/spenceriam/voice-tui/internal/output"
	"github.com/spenceriam/voice-tui/internal/session"
	"github.com/spenceriam/voice-tui/internal/transcribe"
	"github.com/spenceriam/voice-tui/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

const numWaveBars = 12

// Model is the root bubbletea model.
type Model struct {
	ctrl      *session.Controller
	store     *history.Store // nil when history is unavailable
	log       *zap.SugaredLogger
	exportDir string
	modelName string

	// Mirrored controller state
	snap  session.Snapshot
	level float64
	bands []float64
	saved bool // current result persisted to history

	// UI state
	spin   spinner.Model
	prog   progress.Model
	width  int
	height int
	notice string
}

// New creates the root model.
func New(ctrl *session.Controller, store *history.Store, exportDir, modelName string, log *zap.SugaredLogger) Model {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ui.SpinnerStyle

	return Model{
		ctrl:      ctrl,
		store:     store,
		log:       log,
		exportDir: exportDir,
		modelName: modelName,
		snap:      ctrl.Snapshot(),
		spin:      sp,
		prog:      progress.New(progress.WithDefaultGradient()),
	}
}

// Init starts the controller event read loop and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(listenCmd(m.ctrl), m.spin.Tick)
}

// listenCmd reads the next controller event. Re-issued after every
// event, like a network read loop.
func listenCmd(ctrl *session.Controller) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ctrl.Events()
		if !ok {
			return ControllerClosedMsg{}
		}
		return ControllerEventMsg{Event: ev}
	}
}

// toggleCmd flips the recording state on the controller.
func toggleCmd(ctrl *session.Controller) tea.Cmd {
	return func() tea.Msg {
		ctrl.Toggle()
		return nil
	}
}

// newRecordingCmd discards a terminal result/error and starts over.
func newRecordingCmd(ctrl *session.Controller) tea.Cmd {
	return func() tea.Msg {
		ctrl.Reset()
		ctrl.Toggle()
		return nil
	}
}

// resetCmd returns the controller to idle.
func resetCmd(ctrl *session.Controller) tea.Cmd {
	return func() tea.Msg {
		ctrl.Reset()
		return nil
	}
}

// tickCmd drives the elapsed timer while recording.
func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// exportCmd writes the result to a Markdown file.
func exportCmd(exportDir, modelName string, res transcribe.Result) tea.Cmd {
	return func() tea.Msg {
		path, err := output.Export(exportDir, res, output.Metadata{
			Date:      time.Now(),
			ModelName: modelName,
		})
		if err != nil {
			return ExportErrorMsg{Err: err}
		}
		return ExportedMsg{Path: path}
	}
}

// saveHistoryCmd persists the result. History failures only get logged;
// they never disturb the session flow.
func saveHistoryCmd(store *history.Store, modelName string, res transcribe.Result, log *zap.SugaredLogger) tea.Cmd {
	return func() tea.Msg {
		if store == nil {
			return nil
		}
		_, err := store.Save(history.Entry{
			Text:       res.Text,
			Language:   res.Language,
			Duration:   res.Duration,
			Confidence: res.Confidence,
			ModelName:  modelName,
		})
		if err != nil {
			log.Warnw("history save failed", "err", err)
		}
		return nil
	}
}

// clearNoticeCmd fires after a delay to clear the notice line.
func clearNoticeCmd() tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return ClearNoticeMsg{}
	})
}

// Update processes messages and returns the updated model and any
// commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.prog.Width = min(60, max(20, msg.Width-20))
		return m, nil

	case ControllerEventMsg:
		cmd := m.applyEvent(msg.Event)
		return m, tea.Batch(cmd, listenCmd(m.ctrl))

	case ControllerClosedMsg:
		return m, tea.Quit

	case TickMsg:
		if m.snap.Phase != session.PhaseRecording {
			return m, nil
		}
		m.snap = m.ctrl.Snapshot()
		return m, tickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case ExportedMsg:
		m.notice = "Saved " + msg.Path
		return m, clearNoticeCmd()

	case ExportErrorMsg:
		m.notice = "Save failed: " + msg.Err.Error()
		return m, clearNoticeCmd()

	case ClearNoticeMsg:
		m.notice = ""
		return m, nil
	}

	return m, nil
}

// applyEvent folds one controller event into the model.
func (m *Model) applyEvent(ev session.Event) tea.Cmd {
	switch ev.Kind {
	case session.KindLevel:
		m.level = ev.Level
		m.bands = ev.Bands
		return nil

	case session.KindState:
		prev := m.snap.Phase
		m.snap = ev.Snapshot

		switch m.snap.Phase {
		case session.PhaseRecording:
			if prev != session.PhaseRecording {
				return tickCmd()
			}
		case session.PhaseResult:
			if !m.saved && m.snap.Result != nil {
				m.saved = true
				return saveHistoryCmd(m.store, m.modelName, *m.snap.Result, m.log)
			}
		case session.PhaseIdle:
			m.saved = false
			m.level = 0
			m.bands = nil
		}
	}
	return nil
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyQuit, KeyQuitUpper, KeyCtrlC:
		return m, tea.Quit

	case KeySpace:
		switch m.snap.Phase {
		case session.PhaseIdle, session.PhaseRecording:
			return m, toggleCmd(m.ctrl)
		case session.PhaseResult, session.PhaseError:
			m.saved = false
			return m, newRecordingCmd(m.ctrl)
		}
		return m, nil

	case KeyNew, KeyNewUpper:
		if m.snap.Phase == session.PhaseResult || m.snap.Phase == session.PhaseError {
			return m, resetCmd(m.ctrl)
		}
		return m, nil

	case KeyRetry:
		if m.snap.Phase == session.PhaseError && m.snap.Recoverable {
			m.saved = false
			return m, newRecordingCmd(m.ctrl)
		}
		return m, nil

	case KeySave, KeySaveUpper:
		if m.snap.Phase == session.PhaseResult && m.snap.Result != nil {
			return m, exportCmd(m.exportDir, m.modelName, *m.snap.Result)
		}
		return m, nil
	}

	return m, nil
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderStatusBar())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))
	sections = append(sections, m.renderMain())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))

	if m.notice != "" {
		sections = append(sections, ui.DimStyle.Render(m.notice))
	}
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := ui.TitleStyle.Render("VOICE-TUI")
	model := ui.DimStyle.Render(" — " + m.modelName)
	return title + model
}

func (m Model) renderStatusBar() string {
	switch m.snap.Phase {
	case session.PhaseRecording:
		dot := ui.RecordingDotStyle.Render("● REC")
		elapsed := ui.TimestampStyle.Render(" " + formatElapsed(m.snap.Elapsed))
		return dot + elapsed + "  " + renderLevelMeter(m.level)

	case session.PhaseTranscribing:
		label := "Transcribing"
		if m.snap.Status == transcribe.StatusLoading {
			label = "Downloading model"
		}
		bar := ""
		if m.snap.Percent >= 0 {
			bar = "  " + m.prog.ViewAs(m.snap.Percent/100)
		}
		return m.spin.View() + " " + ui.StatusStyle.Render(label) + bar

	case session.PhaseResult:
		return ui.IdleDotStyle.Render("○ DONE")

	case session.PhaseError:
		return ui.ErrorStyle.Render("✗ ERROR")

	default:
		return ui.IdleDotStyle.Render("○ IDLE")
	}
}

// renderLevelMeter draws the compact 8-cell meter in the status bar.
func renderLevelMeter(level float64) string {
	const barLen = 8
	filled := int(level * barLen)
	if filled > barLen {
		filled = barLen
	}

	var bar string
	for i := 0; i < barLen; i++ {
		if i < filled {
			if float64(i)/barLen > 0.6 {
				bar += ui.WaveHighStyle.Render("█")
			} else {
				bar += ui.WaveLowStyle.Render("█")
			}
		} else {
			bar += ui.WaveIdleStyle.Render("░")
		}
	}
	return bar
}

func (m Model) renderMain() string {
	h := m.mainHeight()

	var lines []string
	switch m.snap.Phase {
	case session.PhaseIdle:
		lines = append(lines, "")
		lines = append(lines, ui.DimStyle.Render("  Press Space to start recording"))

	case session.PhaseRecording:
		lines = append(lines, "")
		lines = append(lines, "  "+renderWaveform(m.bands, m.width-4))
		lines = append(lines, "")
		lines = append(lines, ui.DimStyle.Render("  Press Space to stop"))

	case session.PhaseTranscribing:
		lines = append(lines, "")
		if m.snap.Message != "" {
			lines = append(lines, ui.DimStyle.Render("  "+m.snap.Message))
		} else {
			lines = append(lines, ui.DimStyle.Render("  Working..."))
		}

	case session.PhaseResult:
		if m.snap.Result == nil {
			break
		}
		lines = append(lines, ui.PanelTitleStyle.Render("  TRANSCRIPTION"))
		lines = append(lines, "")
		for _, l := range wrapText(m.snap.Result.Text, max(20, m.width-6)) {
			lines = append(lines, ui.ResultTextStyle.Render("  "+l))
		}
		lines = append(lines, "")
		lines = append(lines, ui.ConfidenceStyle.Render(
			fmt.Sprintf("  %.0f%% confidence", m.snap.Result.Confidence*100))+
			ui.DimStyle.Render(fmt.Sprintf("  ·  %s of audio", m.snap.Result.Duration.Truncate(100*time.Millisecond))))

	case session.PhaseError:
		lines = append(lines, "")
		for _, l := range wrapText(m.snap.ErrMessage, max(20, m.width-6)) {
			lines = append(lines, ui.ErrorTextStyle.Render("  "+l))
		}
		if m.snap.Recoverable {
			lines = append(lines, "")
			lines = append(lines, ui.DimStyle.Render("  Press Space to try again"))
		}
	}

	for len(lines) < h {
		lines = append(lines, "")
	}
	if len(lines) > h {
		lines = lines[:h]
	}
	return strings.Join(lines, "\n")
}

// renderWaveform draws one bar per frequency band using block glyphs.
func renderWaveform(bands []float64, width int) string {
	if len(bands) == 0 {
		bands = make([]float64, numWaveBars)
	}

	glyphs := []rune("▁▂▃▄▅▆▇█")
	cellsPerBand := max(1, width/(len(bands)*2))

	var b strings.Builder
	for _, v := range bands {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		idx := int(v * float64(len(glyphs)-1))
		cell := strings.Repeat(string(glyphs[idx]), cellsPerBand)
		if v > 0.6 {
			b.WriteString(ui.WaveHighStyle.Render(cell))
		} else if v > 0 {
			b.WriteString(ui.WaveLowStyle.Render(cell))
		} else {
			b.WriteString(ui.WaveIdleStyle.Render(cell))
		}
		b.WriteString(" ")
	}
	return b.String()
}

func (m Model) renderFooter() string {
	var parts []string

	switch m.snap.Phase {
	case session.PhaseIdle:
		parts = append(parts, ui.FooterKeyStyle.Render("Space")+ui.FooterDescStyle.Render(" Record"))
	case session.PhaseRecording:
		parts = append(parts, ui.FooterKeyStyle.Render("Space")+ui.FooterDescStyle.Render(" Stop"))
	case session.PhaseResult:
		parts = append(parts, ui.FooterKeyStyle.Render("Space")+ui.FooterDescStyle.Render(" Record again"))
		parts = append(parts, ui.FooterKeyStyle.Render("s")+ui.FooterDescStyle.Render(" Save"))
		parts = append(parts, ui.FooterKeyStyle.Render("n")+ui.FooterDescStyle.Render(" Discard"))
	case session.PhaseError:
		parts = append(parts, ui.FooterKeyStyle.Render("Space")+ui.FooterDescStyle.Render(" Retry"))
		parts = append(parts, ui.FooterKeyStyle.Render("n")+ui.FooterDescStyle.Render(" Dismiss"))
	}

	parts = append(parts, ui.FooterKeyStyle.Render("q")+ui.FooterDescStyle.Render(" Quit"))
	return strings.Join(parts, "  ")
}

func (m Model) mainHeight() int {
	if m.height == 0 {
		return 12
	}
	// Reserve: header(1) + status(1) + dividers(2) + notice(1) + footer(1)
	return max(4, m.height-6)
}

func formatElapsed(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			if current == "" {
				current = word
			} else if len(current)+1+len(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		} else {
			lines = append(lines, "")
		}
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
