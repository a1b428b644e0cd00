// Package input abstracts the OS-level capture and injection of keyboard
// and mouse events. The Windows implementation uses low-level hooks and
// SendInput; other platforms compile against stubs that report
// ErrUnsupported so the engines and state machine stay portable.
package input

import (
	"errors"
	"time"

	"github.com/sergiup592/event-automation/internal/macro"
)

// ErrUnsupported is returned by the platform constructors on builds
// without a native capture/injection backend.
var ErrUnsupported = errors.New("global input capture is not supported on this platform")

// ErrUnmappedKey reports a symbolic key that cannot be resolved to an
// injectable virtual key. Replay skips the single action instead of
// failing the session.
var ErrUnmappedKey = errors.New("unmapped key symbol")

// ErrUnmappedButton reports a button symbol outside the closed
// enumeration.
var ErrUnmappedButton = errors.New("unmapped mouse button")

// Event is one raw input primitive as delivered by the OS, stamped with
// the delivery time. The capture engine turns these into macro actions.
type Event struct {
	Kind   macro.Kind
	Key    macro.Key
	Button macro.Button
	X      int
	Y      int
	DX     int
	DY     int
	Time   time.Time
}

// Source delivers global input events over a bounded channel, preserving
// OS callback delivery order. Start and Stop are idempotent within one
// session; after Stop the events channel is closed. A stopped source can
// be started again for a new session, with a fresh events channel.
type Source interface {
	Start() error
	Stop()
	Events() <-chan Event
}

// Injector synthesizes input events against the OS input subsystem.
type Injector interface {
	KeyDown(key macro.Key) error
	KeyUp(key macro.Key) error
	MouseMove(x, y int) error
	ButtonDown(button macro.Button) error
	ButtonUp(button macro.Button) error
	Scroll(dx, dy int) error
}

// HotkeyHandlers binds the four global hotkey combinations to control
// commands. Handlers run on the hotkey dispatch goroutine.
type HotkeyHandlers struct {
	StartRecording func()
	StopRecording  func()
	StartPlayback  func()
	StopPlayback   func()
}

// Hotkeys is a running global hotkey registration.
type Hotkeys interface {
	Start() error
	Stop()
}
