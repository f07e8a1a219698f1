// Package session orchestrates the recording-to-transcription pipeline
// behind a single state machine. The controller owns the only mutable
// session state; the UI observes it through an event stream and never
// talks to the recorder or the engine directly.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"github.com/spenceriam/voice-tui/internal/record"
	"github.com/spenceriam/voice-tui/internal/transcribe"
	"go.uber.org/zap"
)

// Phase is the user-visible pipeline state.
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseRecording    Phase = "recording"
	PhaseTranscribing Phase = "transcribing"
	PhaseResult       Phase = "result"
	PhaseError        Phase = "error"
)

// FSM event names.
const (
	evStart      = "start"
	evTranscribe = "transcribe"
	evSucceed    = "succeed"
	evFail       = "fail"
	evReset      = "reset"
)

// Snapshot is an immutable view of the controller state.
type Snapshot struct {
	Phase       Phase
	SessionID   string
	Elapsed     time.Duration
	Status      transcribe.Status
	Percent     float64 // -1 while indeterminate
	Message     string
	Result      *transcribe.Result
	ErrMessage  string
	Recoverable bool
}

// Kind distinguishes event stream entries.
type Kind int

const (
	// KindState carries a new state snapshot. Delivery is ordered.
	KindState Kind = iota
	// KindLevel carries an amplitude sample; stale ones may be dropped.
	KindLevel
)

// Event is one entry in the controller's event stream.
type Event struct {
	Kind     Kind
	Snapshot Snapshot
	Level    float64
	Bands    []float64
}

// Controller drives RecordingSession and TranscriptionEngine and maps
// every collaborator failure into a recoverable Error state. One
// controller supports one logical session at a time; triggers that
// arrive in an incompatible state are ignored.
type Controller struct {
	session *record.Session
	engine  *transcribe.Engine
	log     *zap.SugaredLogger

	events chan Event

	mu          sync.Mutex
	machine     *fsm.FSM
	opts        record.Options
	cfg         transcribe.Config
	sessionID   string
	status      transcribe.Status
	percent     float64
	message     string
	result      *transcribe.Result
	errMessage  string
	recoverable bool
}

// New wires a controller over the given recorder and engine.
func New(sess *record.Session, engine *transcribe.Engine, opts record.Options, cfg transcribe.Config, log *zap.SugaredLogger) *Controller {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	c := &Controller{
		session: sess,
		engine:  engine,
		log:     log,
		events:  make(chan Event, 256),
		opts:    opts,
		cfg:     cfg,
		percent: -1,
	}

	c.machine = fsm.NewFSM(
		string(PhaseIdle),
		fsm.Events{
			{Name: evStart, Src: []string{string(PhaseIdle)}, Dst: string(PhaseRecording)},
			{Name: evTranscribe, Src: []string{string(PhaseRecording)}, Dst: string(PhaseTranscribing)},
			{Name: evSucceed, Src: []string{string(PhaseTranscribing)}, Dst: string(PhaseResult)},
			{Name: evFail, Src: []string{string(PhaseIdle), string(PhaseRecording), string(PhaseTranscribing)}, Dst: string(PhaseError)},
			{Name: evReset, Src: []string{string(PhaseResult), string(PhaseError)}, Dst: string(PhaseIdle)},
		},
		fsm.Callbacks{},
	)

	sess.SetSampleFunc(c.onSample)
	sess.SetAutoStopFunc(c.onAutoStop)
	return c
}

// Events returns the stream the UI consumes.
func (c *Controller) Events() <-chan Event {
	return c.events
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		Phase:       Phase(c.machine.Current()),
		SessionID:   c.sessionID,
		Status:      c.status,
		Percent:     c.percent,
		Message:     c.message,
		Result:      c.result,
		ErrMessage:  c.errMessage,
		Recoverable: c.recoverable,
	}
	if snap.Phase == PhaseRecording {
		snap.Elapsed = c.session.Elapsed()
	}
	return snap
}

// publish never blocks the caller: when the buffer is full the oldest
// entry is dropped, so the latest state always gets through in order.
func (c *Controller) publish(ev Event) {
	for {
		select {
		case c.events <- ev:
			return
		default:
			select {
			case <-c.events:
			default:
			}
		}
	}
}

func (c *Controller) publishStateLocked() {
	c.publish(Event{Kind: KindState, Snapshot: c.snapshotLocked()})
}

// fire advances the FSM, ignoring transitions the current state does
// not allow.
func (c *Controller) fire(event string) bool {
	err := c.machine.Event(context.Background(), event)
	if err != nil {
		c.log.Debugw("ignored trigger", "event", event, "state", c.machine.Current(), "err", err)
		return false
	}
	return true
}

// Toggle starts a recording when idle and stops one when recording. In
// any other phase it is a no-op.
func (c *Controller) Toggle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch Phase(c.machine.Current()) {
	case PhaseIdle:
		c.startLocked()
	case PhaseRecording:
		c.stopLocked()
	}
}

// Reset discards a terminal Result or Error and returns to Idle. No-op
// in any other phase.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.fire(evReset) {
		return
	}
	c.sessionID = ""
	c.status = ""
	c.percent = -1
	c.message = ""
	c.result = nil
	c.errMessage = ""
	c.recoverable = false
	c.publishStateLocked()
}

func (c *Controller) startLocked() {
	if err := c.session.Start(c.opts); err != nil {
		c.log.Warnw("recording start failed", "err", err)
		c.failLocked(err.Error(), true)
		return
	}
	c.sessionID = uuid.NewString()
	c.result = nil
	c.errMessage = ""
	c.recoverable = false
	c.fire(evStart)
	c.publishStateLocked()
}

func (c *Controller) stopLocked() {
	res, err := c.session.Stop()
	if err != nil {
		// Auto-stop already took the recording; the transition to
		// Transcribing happened through onAutoStop.
		if errors.Is(err, record.ErrInvalidState) {
			return
		}
		c.failLocked(err.Error(), true)
		return
	}
	c.beginTranscribeLocked(res)
}

// onAutoStop runs on the capture goroutine when the duration cap fires.
func (c *Controller) onAutoStop(res record.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if Phase(c.machine.Current()) != PhaseRecording {
		return
	}
	c.beginTranscribeLocked(res)
}

func (c *Controller) beginTranscribeLocked(res record.Result) {
	if !c.fire(evTranscribe) {
		return
	}
	c.status = transcribe.StatusProcessing
	c.percent = -1
	c.message = ""
	c.publishStateLocked()

	go c.runTranscription(res)
}

func (c *Controller) runTranscription(res record.Result) {
	result, err := c.engine.Transcribe(context.Background(), res, c.cfg, c.onProgress)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.log.Warnw("transcription failed", "err", err)
		c.failLocked(err.Error(), true)
		return
	}

	if !c.fire(evSucceed) {
		return
	}
	c.result = &result
	c.percent = 100
	c.publishStateLocked()
}

// onProgress runs on the transcription goroutine. Percent is kept
// monotonic within each status phase.
func (c *Controller) onProgress(p transcribe.Progress) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if Phase(c.machine.Current()) != PhaseTranscribing {
		return
	}
	if p.Status != c.status {
		c.status = p.Status
		c.percent = -1
	}
	if p.Percent >= c.percent {
		c.percent = p.Percent
	}
	if p.Message != "" {
		c.message = p.Message
	}
	c.publishStateLocked()
}

// onSample runs on the capture goroutine for every chunk.
func (c *Controller) onSample(s record.Sample) {
	select {
	case c.events <- Event{Kind: KindLevel, Level: s.Level, Bands: s.Bands}:
	default:
		// Level samples are transient; dropping under backpressure is
		// fine.
	}
}

func (c *Controller) failLocked(msg string, recoverable bool) {
	if !c.fire(evFail) {
		return
	}
	c.errMessage = msg
	c.recoverable = recoverable
	c.publishStateLocked()
}
