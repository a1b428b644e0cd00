//go:build windows

package input

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/sergiup592/event-automation/internal/logger"
)

const (
	modControl = 0x0002
	wmHotkey   = 0x0312

	hotkeyStartRecording = 1
	hotkeyStopRecording  = 2
	hotkeyStartPlayback  = 3
	hotkeyStopPlayback   = 4
)

var (
	procRegisterHotKey   = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey = user32.NewProc("UnregisterHotKey")
)

// systemHotkeys registers the four fixed control combinations
// (Ctrl+Z/X/C/V) as global hotkeys and dispatches them on a dedicated
// message-loop goroutine.
type systemHotkeys struct {
	handlers HotkeyHandlers

	gate sessionGate

	mu       sync.Mutex
	threadID uint32
	ready    chan error
	done     chan struct{}
}

// NewSystemHotkeys returns a Hotkeys registration bound to the given
// handlers.
func NewSystemHotkeys(handlers HotkeyHandlers) (Hotkeys, error) {
	return &systemHotkeys{
		handlers: handlers,
		ready:    make(chan error, 1),
		done:     make(chan struct{}),
	}, nil
}

func (h *systemHotkeys) Start() error {
	launch, reset := h.gate.begin()
	if !launch {
		return nil
	}
	h.mu.Lock()
	if reset {
		h.ready = make(chan error, 1)
		h.done = make(chan struct{})
	}
	ready, done := h.ready, h.done
	h.mu.Unlock()

	go h.messageLoop(ready, done)

	if err := <-ready; err != nil {
		h.gate.fail()
		return err
	}
	return nil
}

func (h *systemHotkeys) Stop() {
	if !h.gate.end() {
		return
	}
	h.mu.Lock()
	threadID := h.threadID
	done := h.done
	h.mu.Unlock()

	procPostThreadMessage.Call(uintptr(threadID), wmQuit, 0, 0)
	<-done
}

// messageLoop registers the hotkeys and pumps messages until WM_QUIT.
// RegisterHotKey delivers WM_HOTKEY to the registering thread, so the
// registrations live and die with this goroutine.
func (h *systemHotkeys) messageLoop(ready chan error, done chan struct{}) {
	defer close(done)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	h.mu.Lock()
	h.threadID = windows.GetCurrentThreadId()
	h.mu.Unlock()

	combos := []struct {
		id uintptr
		vk uintptr
	}{
		{hotkeyStartRecording, 'Z'},
		{hotkeyStopRecording, 'X'},
		{hotkeyStartPlayback, 'C'},
		{hotkeyStopPlayback, 'V'},
	}

	var registered []uintptr
	for _, c := range combos {
		ret, _, err := procRegisterHotKey.Call(0, c.id, modControl, c.vk)
		if ret == 0 {
			for _, id := range registered {
				procUnregisterHotKey.Call(0, id)
			}
			ready <- fmt.Errorf("register hotkey %d: %w", c.id, err)
			return
		}
		registered = append(registered, c.id)
	}
	defer func() {
		for _, id := range registered {
			procUnregisterHotKey.Call(0, id)
		}
	}()

	ready <- nil

	var m msg
	for {
		ret, _, _ := procGetMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(ret) <= 0 || m.Message == wmQuit {
			return
		}
		if m.Message != wmHotkey {
			continue
		}
		h.dispatch(int(m.WParam))
	}
}

func (h *systemHotkeys) dispatch(id int) {
	logger.Debug().Int("hotkey", id).Msg("Hotkey triggered")
	switch id {
	case hotkeyStartRecording:
		if h.handlers.StartRecording != nil {
			h.handlers.StartRecording()
		}
	case hotkeyStopRecording:
		if h.handlers.StopRecording != nil {
			h.handlers.StopRecording()
		}
	case hotkeyStartPlayback:
		if h.handlers.StartPlayback != nil {
			h.handlers.StartPlayback()
		}
	case hotkeyStopPlayback:
		if h.handlers.StopPlayback != nil {
			h.handlers.StopPlayback()
		}
	}
}
