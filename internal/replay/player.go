// Package replay converts an action log back into live OS input.
package replay

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sergiup592/event-automation/internal/input"
	"github.com/sergiup592/event-automation/internal/logger"
	"github.com/sergiup592/event-automation/internal/macro"
)

// Options configures a Player.
type Options struct {
	// OnProgress fires after each fully completed pass over the log,
	// carrying the 1-based iteration index. Cancelled iterations do
	// not report progress.
	OnProgress func(iteration int)

	// OnFinished fires exactly once when playback has terminated, on
	// the player's goroutine, after all held keys and buttons have
	// been released.
	OnFinished func(p *Player)
}

// Player replays an action log by re-synthesizing each event through an
// injector, reproducing the recorded inter-event spacing. It runs on
// its own goroutine; Start does not block.
//
// The held-key and held-button sets track everything currently pressed
// by this player instance. Whatever path playback exits through, both
// sets are drained before the session is reported finished; no input
// primitive is left logically held.
type Player struct {
	injector   input.Injector
	onProgress func(int)
	onDone     func(*Player)

	log    *macro.Log
	repeat int

	heldKeys    map[macro.Key]struct{}
	heldButtons map[macro.Button]struct{}

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    chan struct{}
	done      chan struct{}

	cancelled bool
	err       error
}

// New creates a player writing to injector.
func New(injector input.Injector, opts Options) *Player {
	return &Player{
		injector:    injector,
		onProgress:  opts.OnProgress,
		onDone:      opts.OnFinished,
		heldKeys:    make(map[macro.Key]struct{}),
		heldButtons: make(map[macro.Button]struct{}),
		cancel:      make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Start begins replaying log repeat times. The log is read-only shared
// state for the duration of the session and is never mutated.
func (p *Player) Start(log *macro.Log, repeat int) error {
	if log == nil || log.Len() == 0 {
		return errors.New("no recorded actions to play")
	}
	if repeat < 1 {
		return fmt.Errorf("repeat count must be at least 1, got %d", repeat)
	}
	started := false
	p.startOnce.Do(func() {
		started = true
		p.log = log
		p.repeat = repeat
		go p.run()
	})
	if !started {
		return errors.New("player already started")
	}
	return nil
}

// Stop sets the cooperative cancellation flag and awaits termination.
// The flag is observed before each action; no action is interrupted
// mid-synthesis. Safe before Start; a player stopped before starting is
// spent and rejects a later Start.
func (p *Player) Stop() {
	p.startOnce.Do(func() {
		// Never started: there is no session goroutine to await.
		close(p.done)
	})
	p.stopOnce.Do(func() {
		close(p.cancel)
	})
	<-p.done
}

// Cancelled reports whether the session ended due to cancellation.
func (p *Player) Cancelled() bool {
	return p.cancelled
}

// Err reports why the session ended early, or nil.
func (p *Player) Err() error {
	return p.err
}

func (p *Player) run() {
	defer close(p.done)
	defer func() {
		if p.onDone != nil {
			p.onDone(p)
		}
	}()
	defer p.releaseAll()

	logger.Info().Int("actions", p.log.Len()).Int("repeat", p.repeat).Msg("Playback started")

	for i := 1; i <= p.repeat; i++ {
		if p.isCancelled() {
			return
		}
		for _, action := range p.log.Actions() {
			if p.isCancelled() {
				logger.Info().Int("iteration", i).Msg("Playback stopped during iteration")
				return
			}
			if action.Delta > 0 && !p.sleep(action.Delta) {
				p.cancelled = true
				logger.Info().Int("iteration", i).Msg("Playback stopped during iteration")
				return
			}
			if err := p.execute(action); err != nil {
				p.err = err
				logger.Error().Err(err).Msg("Playback error")
				return
			}
		}
		if p.onProgress != nil {
			p.onProgress(i)
		}
		logger.Info().Int("iteration", i).Int("repeat", p.repeat).Msg("Completed iteration")
	}
}

// sleep waits for the recorded delta, returning false if cancelled
// during the wait.
func (p *Player) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-p.cancel:
		return false
	}
}

func (p *Player) isCancelled() bool {
	select {
	case <-p.cancel:
		p.cancelled = true
		return true
	default:
		return false
	}
}

// execute synthesizes one action. Unmapped key or button symbols are
// skipped with a warning and never enter the held sets; any other
// injector failure ends the session.
func (p *Player) execute(a macro.Action) error {
	var err error
	switch a.Kind {
	case macro.KeyDown:
		if err = p.injector.KeyDown(a.Key); err == nil {
			p.heldKeys[a.Key] = struct{}{}
		}
	case macro.KeyUp:
		if err = p.injector.KeyUp(a.Key); err == nil {
			delete(p.heldKeys, a.Key)
		}
	case macro.MouseMove:
		err = p.injector.MouseMove(a.X, a.Y)
	case macro.ButtonDown:
		if err = p.injector.ButtonDown(a.Button); err == nil {
			p.heldButtons[a.Button] = struct{}{}
		}
	case macro.ButtonUp:
		if err = p.injector.ButtonUp(a.Button); err == nil {
			delete(p.heldButtons, a.Button)
		}
	case macro.Scroll:
		err = p.injector.Scroll(a.DX, a.DY)
	default:
		logger.Warn().Str("kind", string(a.Kind)).Msg("Unknown action kind, skipping")
		return nil
	}

	if errors.Is(err, input.ErrUnmappedKey) || errors.Is(err, input.ErrUnmappedButton) {
		logger.Warn().Err(err).Msg("Skipping unmapped action")
		return nil
	}
	return err
}

// releaseAll drains the held sets. Release failures are logged and
// skipped so one stuck primitive cannot keep others held.
func (p *Player) releaseAll() {
	if len(p.heldKeys) == 0 && len(p.heldButtons) == 0 {
		return
	}
	logger.Info().
		Int("keys", len(p.heldKeys)).
		Int("buttons", len(p.heldButtons)).
		Msg("Releasing held input")
	for key := range p.heldKeys {
		if err := p.injector.KeyUp(key); err != nil {
			logger.Warn().Err(err).Str("key", string(key)).Msg("Failed to release key")
		}
		delete(p.heldKeys, key)
	}
	for button := range p.heldButtons {
		if err := p.injector.ButtonUp(button); err != nil {
			logger.Warn().Err(err).Str("button", string(button)).Msg("Failed to release button")
		}
		delete(p.heldButtons, button)
	}
}
