package app

import "github.com/spenceriam/voice-tui/internal/session"

// ControllerEventMsg wraps one entry from the controller's event
// stream.
type ControllerEventMsg struct {
	Event session.Event
}

// ControllerClosedMsg is sent when the event stream ends.
type ControllerClosedMsg struct{}

// TickMsg refreshes the elapsed timer while recording.
type TickMsg struct{}

// ExportedMsg reports a successful Markdown export.
type ExportedMsg struct {
	Path string
}

// ExportErrorMsg reports a failed Markdown export.
type ExportErrorMsg struct {
	Err error
}

// ClearNoticeMsg clears the transient notice line after a delay.
type ClearNoticeMsg struct{}
