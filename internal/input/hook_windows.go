//go:build windows

package input

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/sergiup592/event-automation/internal/logger"
	"github.com/sergiup592/event-automation/internal/macro"
)

const (
	whKeyboardLL = 13
	whMouseLL    = 14

	wmKeyDown     = 0x0100
	wmKeyUp       = 0x0101
	wmSysKeyDown  = 0x0104
	wmSysKeyUp    = 0x0105
	wmMouseMove   = 0x0200
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmMButtonDown = 0x0207
	wmMButtonUp   = 0x0208
	wmMouseWheel  = 0x020A
	wmMouseHWheel = 0x020E
	wmQuit        = 0x0012

	wheelDelta = 120

	// Capacity of the bounded queue between the hook dispatch thread
	// and the capture engine's goroutine.
	eventBuffer = 256
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSetWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetMessage          = user32.NewProc("GetMessageW")
	procPostThreadMessage   = user32.NewProc("PostThreadMessageW")
)

// The runtime never frees syscall callback trampolines and caps their
// number process-wide, so the two hook callbacks are created exactly
// once and dispatch to whichever source currently has hooks installed.
// At most one hook session exists at a time.
var (
	activeSource     atomic.Pointer[hookSource]
	keyboardCallback = syscall.NewCallback(keyboardHookProc)
	mouseCallback    = syscall.NewCallback(mouseHookProc)
)

type point struct {
	X, Y int32
}

type msg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
}

type msLLHookStruct struct {
	Pt          point
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type kbdLLHookStruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

// hookSource captures global keyboard and mouse input through low-level
// Windows hooks. Hook callbacks run on the message-loop thread and push
// events into a bounded channel; delivery order is preserved.
type hookSource struct {
	gate sessionGate

	mu       sync.Mutex
	events   chan Event
	threadID uint32
	ready    chan error
	done     chan struct{}
}

// NewSystemSource returns a Source backed by WH_KEYBOARD_LL and
// WH_MOUSE_LL hooks.
func NewSystemSource() (Source, error) {
	return &hookSource{
		events: make(chan Event, eventBuffer),
		ready:  make(chan error, 1),
		done:   make(chan struct{}),
	}, nil
}

func (s *hookSource) Events() <-chan Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events
}

// Start installs the hooks. The source is reusable across sessions:
// after a stop, or after an installation failure, the next Start
// launches a fresh session on fresh channels.
func (s *hookSource) Start() error {
	launch, reset := s.gate.begin()
	if !launch {
		return nil
	}
	s.mu.Lock()
	if reset {
		s.events = make(chan Event, eventBuffer)
		s.ready = make(chan error, 1)
		s.done = make(chan struct{})
	}
	events, ready, done := s.events, s.ready, s.done
	s.mu.Unlock()

	go s.messageLoop(events, ready, done)

	if err := <-ready; err != nil {
		s.gate.fail()
		return err
	}
	return nil
}

func (s *hookSource) Stop() {
	if !s.gate.end() {
		return
	}
	s.mu.Lock()
	threadID := s.threadID
	done := s.done
	s.mu.Unlock()

	// Break the blocking GetMessage call on the hook thread; the loop
	// closes the events channel on its way out.
	procPostThreadMessage.Call(uintptr(threadID), wmQuit, 0, 0)
	<-done
}

// messageLoop installs both hooks and pumps messages until WM_QUIT or a
// pump failure. Low-level hooks deliver their callbacks on the thread
// that installed them, so the lifetime of the hooks is pinned to this
// goroutine. Once installation succeeds the loop owns the events
// channel and closes it after unhooking, on every exit path; a pump
// failure therefore surfaces to the consumer as a closed channel, and
// the consumer's Stop call reconciles the session state.
func (s *hookSource) messageLoop(events chan Event, ready chan error, done chan struct{}) {
	defer close(done)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	s.mu.Lock()
	s.threadID = windows.GetCurrentThreadId()
	s.mu.Unlock()

	kbHook, _, err := procSetWindowsHookEx.Call(whKeyboardLL, keyboardCallback, 0, 0)
	if kbHook == 0 {
		ready <- fmt.Errorf("install keyboard hook: %w", err)
		return
	}
	mouseHook, _, err := procSetWindowsHookEx.Call(whMouseLL, mouseCallback, 0, 0)
	if mouseHook == 0 {
		procUnhookWindowsHookEx.Call(kbHook)
		ready <- fmt.Errorf("install mouse hook: %w", err)
		return
	}
	activeSource.Store(s)
	defer func() {
		activeSource.Store(nil)
		procUnhookWindowsHookEx.Call(mouseHook)
		procUnhookWindowsHookEx.Call(kbHook)
		// Callbacks cannot fire once the hooks are removed.
		close(events)
	}()

	ready <- nil

	var m msg
	for {
		ret, _, _ := procGetMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(ret) < 0 {
			logger.Error().Msg("Input message pump failed, ending capture session")
			return
		}
		if ret == 0 || m.Message == wmQuit {
			return
		}
	}
}

func keyboardHookProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if s := activeSource.Load(); s != nil && nCode >= 0 {
		info := (*kbdLLHookStruct)(unsafe.Pointer(lParam))
		var kind macro.Kind
		switch wParam {
		case wmKeyDown, wmSysKeyDown:
			kind = macro.KeyDown
		case wmKeyUp, wmSysKeyUp:
			kind = macro.KeyUp
		}
		if kind != "" {
			key, ok := KeyForVK(uint16(info.VkCode))
			if !ok {
				key = macro.Key(fmt.Sprintf("vk_%#x", info.VkCode))
			}
			s.push(Event{Kind: kind, Key: key, Time: time.Now()})
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return ret
}

func mouseHookProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if s := activeSource.Load(); s != nil && nCode >= 0 {
		info := (*msLLHookStruct)(unsafe.Pointer(lParam))
		x, y := int(info.Pt.X), int(info.Pt.Y)
		now := time.Now()

		switch wParam {
		case wmMouseMove:
			s.push(Event{Kind: macro.MouseMove, X: x, Y: y, Time: now})
		case wmLButtonDown:
			s.push(Event{Kind: macro.ButtonDown, Button: macro.ButtonLeft, X: x, Y: y, Time: now})
		case wmLButtonUp:
			s.push(Event{Kind: macro.ButtonUp, Button: macro.ButtonLeft, X: x, Y: y, Time: now})
		case wmRButtonDown:
			s.push(Event{Kind: macro.ButtonDown, Button: macro.ButtonRight, X: x, Y: y, Time: now})
		case wmRButtonUp:
			s.push(Event{Kind: macro.ButtonUp, Button: macro.ButtonRight, X: x, Y: y, Time: now})
		case wmMButtonDown:
			s.push(Event{Kind: macro.ButtonDown, Button: macro.ButtonMiddle, X: x, Y: y, Time: now})
		case wmMButtonUp:
			s.push(Event{Kind: macro.ButtonUp, Button: macro.ButtonMiddle, X: x, Y: y, Time: now})
		case wmMouseWheel:
			ticks := int(int16(info.MouseData>>16)) / wheelDelta
			s.push(Event{Kind: macro.Scroll, DY: ticks, Time: now})
		case wmMouseHWheel:
			ticks := int(int16(info.MouseData>>16)) / wheelDelta
			s.push(Event{Kind: macro.Scroll, DX: ticks, Time: now})
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return ret
}

func (s *hookSource) push(ev Event) {
	s.mu.Lock()
	events := s.events
	s.mu.Unlock()
	select {
	case events <- ev:
	default:
		// Queue full: dropping is safer than blocking the low-level
		// hook thread, which would stall system-wide input.
		logger.Debug().Str("kind", string(ev.Kind)).Msg("Input queue full, dropping event")
	}
}
