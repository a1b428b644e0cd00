// Package capture converts live OS input into an action log.
package capture

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sergiup592/event-automation/internal/input"
	"github.com/sergiup592/event-automation/internal/logger"
	"github.com/sergiup592/event-automation/internal/macro"
)

// ErrSourceClosed reports that the input source terminated while a
// recording session was still active.
var ErrSourceClosed = errors.New("input source terminated unexpectedly")

// Options configures a Recorder.
type Options struct {
	// Clock stamps the start of the session; defaults to time.Now.
	// Event deltas use the delivery timestamps carried by the events
	// themselves.
	Clock func() time.Time

	// OnFinished fires exactly once when the session has fully
	// terminated, on the recorder's goroutine, after the OS
	// subscription has been released.
	OnFinished func(r *Recorder)
}

// Recorder subscribes to a global input source and appends every
// observed primitive to its action log with delta timing. It runs on
// its own goroutine; Start does not block.
type Recorder struct {
	source input.Source
	clock  func() time.Time
	onDone func(*Recorder)

	log    *macro.Log
	active atomic.Bool
	last   time.Time

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
	err       error
}

// New creates a recorder reading from source.
func New(source input.Source, opts Options) *Recorder {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Recorder{
		source: source,
		clock:  clock,
		onDone: opts.OnFinished,
		log:    macro.NewLog(),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start begins listening for global input. It returns once the OS
// subscription is established; events observed before that are not
// recorded.
func (r *Recorder) Start() error {
	var err error
	started := false
	r.startOnce.Do(func() {
		started = true
		if err = r.source.Start(); err != nil {
			close(r.done)
			return
		}
		r.last = r.clock()
		r.active.Store(true)
		go r.run()
	})
	if !started {
		return errors.New("recorder already started")
	}
	return err
}

// Stop requests termination and awaits it. Safe to call more than once,
// concurrently with natural termination, and before Start; a recorder
// stopped before starting is spent and rejects a later Start.
func (r *Recorder) Stop() {
	r.startOnce.Do(func() {
		// Never started: there is no session goroutine to await.
		close(r.done)
	})
	r.stopOnce.Do(func() {
		r.active.Store(false)
		close(r.stop)
	})
	<-r.done
}

// Log returns the session's action log. Only meaningful after the
// session has terminated; ownership passes to the caller.
func (r *Recorder) Log() *macro.Log {
	return r.log
}

// Err reports why the session ended early, or nil for a clean stop.
func (r *Recorder) Err() error {
	return r.err
}

func (r *Recorder) run() {
	defer close(r.done)
	// Release the OS subscription on every exit path, then emit the
	// terminal notification; close(done) above runs last so Stop only
	// returns once both have happened.
	defer func() {
		if r.onDone != nil {
			r.onDone(r)
		}
	}()
	defer r.source.Stop()

	events := r.source.Events()
	for {
		select {
		case <-r.stop:
			logger.Info().Int("actions", r.log.Len()).Msg("Recording finished")
			return
		case ev, ok := <-events:
			if !ok {
				if r.active.Load() {
					r.err = ErrSourceClosed
					logger.Error().Err(r.err).Msg("Recording error")
				}
				return
			}
			if !r.active.Load() {
				// Stop already requested; drop in-flight events.
				continue
			}
			r.record(ev)
		}
	}
}

func (r *Recorder) record(ev input.Event) {
	delta := ev.Time.Sub(r.last)
	if delta < 0 {
		delta = 0
	}
	r.last = ev.Time

	action := macro.Action{
		Kind:   ev.Kind,
		Key:    ev.Key,
		Button: ev.Button,
		X:      ev.X,
		Y:      ev.Y,
		DX:     ev.DX,
		DY:     ev.DY,
		Delta:  delta,
	}
	r.log.Append(action)
	logger.Debug().Stringer("action", action).Msg("Captured")
}
