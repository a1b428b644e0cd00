// Package control owns the capture/replay lifecycle. The controller is
// the single writer of the session mode; engines report back only
// through completion callbacks, and every command source (hotkeys,
// HTTP, CLI) funnels through the same four entry points so all of them
// observe identical admission rules.
package control

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sergiup592/event-automation/internal/capture"
	"github.com/sergiup592/event-automation/internal/input"
	"github.com/sergiup592/event-automation/internal/logger"
	"github.com/sergiup592/event-automation/internal/macro"
	"github.com/sergiup592/event-automation/internal/replay"
)

// Mode is the session mode.
type Mode string

const (
	Idle      Mode = "idle"
	Recording Mode = "recording"
	Playing   Mode = "playing"
)

// Admission errors. All are non-fatal: the command is a no-op, a
// warning notification is emitted, and the mode is unchanged.
var (
	ErrNotIdle      = errors.New("another session is already in progress")
	ErrNotRecording = errors.New("no recording is in progress")
	ErrNotPlaying   = errors.New("no playback is in progress")
	ErrEmptyLog     = errors.New("no recorded actions to play")
)

// Session describes one finished capture or replay session, reported to
// the optional history sink.
type Session struct {
	Mode       Mode
	StartedAt  time.Time
	EndedAt    time.Time
	Actions    int
	Iterations int
	Outcome    string // "finished", "stopped", "error"
	Error      string
}

// HistorySink receives finished-session records.
type HistorySink interface {
	RecordSession(s Session) error
}

// Options configures a Controller.
type Options struct {
	Source   input.Source   // required for recording
	Injector input.Injector // required for playback
	Notifier Notifier       // outward notifications; nil means NopNotifier
	History  HistorySink    // optional
	Clock    func() time.Time
}

// Controller coordinates the capture and replay engines. Recording and
// Playing are mutually exclusive: both start commands require Idle.
type Controller struct {
	source   input.Source
	injector input.Injector
	notifier Notifier
	history  HistorySink
	clock    func() time.Time

	mu        sync.Mutex
	mode      Mode
	log       *macro.Log // last committed recording, nil until one exists
	recorder  *capture.Recorder
	player    *replay.Player
	startedAt time.Time
	repeat    int
	progress  int
}

// New creates an idle controller.
func New(opts Options) *Controller {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = NopNotifier{}
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Controller{
		source:   opts.Source,
		injector: opts.Injector,
		notifier: notifier,
		history:  opts.History,
		clock:    clock,
		mode:     Idle,
	}
}

// Mode returns the current session mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// LogLen returns the size of the last committed action log.
func (c *Controller) LogLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.log == nil {
		return 0
	}
	return c.log.Len()
}

// StartRecording transitions Idle -> Recording and starts a capture
// engine against a fresh action log.
func (c *Controller) StartRecording() error {
	c.mu.Lock()
	if c.mode != Idle {
		mode := c.mode
		c.mu.Unlock()
		c.warn(fmt.Sprintf("Cannot start recording while %s", mode))
		return ErrNotIdle
	}

	rec := capture.New(c.source, capture.Options{
		Clock:      c.clock,
		OnFinished: c.recordingDone,
	})
	if err := rec.Start(); err != nil {
		c.mu.Unlock()
		c.notifier.Status(fmt.Sprintf("Recording Error: %v", err))
		return fmt.Errorf("start capture: %w", err)
	}
	c.mode = Recording
	c.recorder = rec
	c.startedAt = c.clock()
	c.mu.Unlock()

	logger.Info().Msg("Recording started")
	c.notifier.Status("Recording Started")
	return nil
}

// StopRecording transitions Recording -> Idle, awaiting capture
// termination and committing the produced log as the session's log.
func (c *Controller) StopRecording() error {
	c.mu.Lock()
	if c.mode != Recording {
		c.mu.Unlock()
		c.warn("No recording is in progress")
		return ErrNotRecording
	}
	rec := c.recorder
	c.mu.Unlock()

	// The completion callback runs on the recorder's goroutine and
	// performs the actual transition; Stop returns after it has fired.
	rec.Stop()
	return nil
}

// StartPlayback transitions Idle -> Playing and starts a replay engine
// over the committed log.
func (c *Controller) StartPlayback(repeat int) error {
	if repeat < 1 {
		return fmt.Errorf("repeat count must be at least 1, got %d", repeat)
	}

	c.mu.Lock()
	if c.mode != Idle {
		mode := c.mode
		c.mu.Unlock()
		c.warn(fmt.Sprintf("Cannot start playback while %s", mode))
		return ErrNotIdle
	}
	if c.log == nil || c.log.Len() == 0 {
		c.mu.Unlock()
		c.warn("No recorded actions to play")
		return ErrEmptyLog
	}

	player := replay.New(c.injector, replay.Options{
		OnProgress: c.playbackProgress,
		OnFinished: c.playbackDone,
	})
	// The player gets read-only shared access to the log for the
	// duration of this session.
	if err := player.Start(c.log, repeat); err != nil {
		c.mu.Unlock()
		c.notifier.Status(fmt.Sprintf("Playback Error: %v", err))
		return fmt.Errorf("start replay: %w", err)
	}
	c.mode = Playing
	c.player = player
	c.startedAt = c.clock()
	c.repeat = repeat
	c.progress = 0
	c.mu.Unlock()

	logger.Info().Int("repeat", repeat).Msg("Playback started")
	c.notifier.Status("Playing Macro")
	return nil
}

// StopPlayback transitions Playing -> Idle, cancelling the replay
// engine and awaiting its termination.
func (c *Controller) StopPlayback() error {
	c.mu.Lock()
	if c.mode != Playing {
		c.mu.Unlock()
		c.warn("No playback is in progress")
		return ErrNotPlaying
	}
	player := c.player
	c.mu.Unlock()

	player.Stop()
	return nil
}

// recordingDone is the capture engine's terminal notification. It also
// runs on natural termination (source failure), so the mode transition
// lives here rather than in StopRecording.
func (c *Controller) recordingDone(rec *capture.Recorder) {
	c.mu.Lock()
	if c.recorder != rec {
		// Superseded engine instance; never flip the mode for it.
		c.mu.Unlock()
		return
	}
	log := rec.Log()
	c.log = log
	c.recorder = nil
	c.mode = Idle
	startedAt := c.startedAt
	c.mu.Unlock()

	outcome := "finished"
	var errText string
	if err := rec.Err(); err != nil {
		outcome = "error"
		errText = err.Error()
		c.notifier.Status(fmt.Sprintf("Recording Error: %v", err))
	} else {
		c.notifier.Status("Recording Finished")
	}
	c.notifier.Finished()

	c.record(Session{
		Mode:      Recording,
		StartedAt: startedAt,
		EndedAt:   c.clock(),
		Actions:   log.Len(),
		Outcome:   outcome,
		Error:     errText,
	})
}

func (c *Controller) playbackProgress(iteration int) {
	c.mu.Lock()
	c.progress = iteration
	c.mu.Unlock()
	c.notifier.Progress(iteration)
}

// playbackDone is the replay engine's terminal notification, fired
// after the cleanup guarantee has run.
func (c *Controller) playbackDone(player *replay.Player) {
	c.mu.Lock()
	if c.player != player {
		c.mu.Unlock()
		return
	}
	c.player = nil
	c.mode = Idle
	startedAt := c.startedAt
	iterations := c.progress
	actions := 0
	if c.log != nil {
		actions = c.log.Len()
	}
	c.mu.Unlock()

	outcome := "finished"
	var errText string
	switch {
	case player.Err() != nil:
		outcome = "error"
		errText = player.Err().Error()
		c.notifier.Status(fmt.Sprintf("Playback Error: %v", player.Err()))
	case player.Cancelled():
		outcome = "stopped"
		c.notifier.Status("Playback Stopped")
	default:
		c.notifier.Status("Playback Finished")
	}
	c.notifier.Finished()

	c.record(Session{
		Mode:       Playing,
		StartedAt:  startedAt,
		EndedAt:    c.clock(),
		Actions:    actions,
		Iterations: iterations,
		Outcome:    outcome,
		Error:      errText,
	})
}

func (c *Controller) warn(text string) {
	logger.Warn().Msg(text)
	c.notifier.Status(fmt.Sprintf("Warning: %s", text))
}

func (c *Controller) record(s Session) {
	if c.history == nil {
		return
	}
	if err := c.history.RecordSession(s); err != nil {
		logger.Warn().Err(err).Msg("Failed to record session history")
	}
}
