//go:build windows

package input

import (
	"fmt"
	"unsafe"

	"github.com/sergiup592/event-automation/internal/macro"
)

const (
	inputMouse    = 0
	inputKeyboard = 1

	mouseEventfLeftDown   = 0x0002
	mouseEventfLeftUp     = 0x0004
	mouseEventfRightDown  = 0x0008
	mouseEventfRightUp    = 0x0010
	mouseEventfMiddleDown = 0x0020
	mouseEventfMiddleUp   = 0x0040
	mouseEventfWheel      = 0x0800
	mouseEventfHWheel     = 0x1000

	keyEventfKeyUp = 0x0002
)

var (
	procSendInput    = user32.NewProc("SendInput")
	procSetCursorPos = user32.NewProc("SetCursorPos")
)

// Field layouts match the Win64 INPUT union: 4-byte type, 4 bytes of
// padding, then the largest member (MOUSEINPUT, 32 bytes).
type mouseInput struct {
	Dx        int32
	Dy        int32
	MouseData uint32
	Flags     uint32
	Time      uint32
	_         uint32
	ExtraInfo uintptr
}

type keybdInput struct {
	Vk        uint16
	Scan      uint16
	Flags     uint32
	Time      uint32
	ExtraInfo uintptr
	_         [8]byte
}

type mouseInputPacket struct {
	Type uint32
	_    uint32
	Mi   mouseInput
}

type keybdInputPacket struct {
	Type uint32
	_    uint32
	Ki   keybdInput
}

// sendInputInjector synthesizes input through SendInput/SetCursorPos.
type sendInputInjector struct{}

// NewSystemInjector returns an Injector backed by the Win32 synthetic
// input API.
func NewSystemInjector() (Injector, error) {
	return sendInputInjector{}, nil
}

func (sendInputInjector) KeyDown(key macro.Key) error {
	vk, ok := LookupKey(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnmappedKey, key)
	}
	return sendKey(vk, 0)
}

func (sendInputInjector) KeyUp(key macro.Key) error {
	vk, ok := LookupKey(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnmappedKey, key)
	}
	return sendKey(vk, keyEventfKeyUp)
}

func (sendInputInjector) MouseMove(x, y int) error {
	ret, _, err := procSetCursorPos.Call(uintptr(x), uintptr(y))
	if ret == 0 {
		return fmt.Errorf("SetCursorPos(%d,%d): %w", x, y, err)
	}
	return nil
}

func (sendInputInjector) ButtonDown(button macro.Button) error {
	flag, _, ok := buttonFlags(button)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnmappedButton, button)
	}
	return sendMouse(mouseInput{Flags: flag})
}

func (sendInputInjector) ButtonUp(button macro.Button) error {
	_, flag, ok := buttonFlags(button)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnmappedButton, button)
	}
	return sendMouse(mouseInput{Flags: flag})
}

func (sendInputInjector) Scroll(dx, dy int) error {
	if dy != 0 {
		if err := sendMouse(mouseInput{Flags: mouseEventfWheel, MouseData: uint32(int32(dy * wheelDelta))}); err != nil {
			return err
		}
	}
	if dx != 0 {
		if err := sendMouse(mouseInput{Flags: mouseEventfHWheel, MouseData: uint32(int32(dx * wheelDelta))}); err != nil {
			return err
		}
	}
	return nil
}

func buttonFlags(button macro.Button) (down, up uint32, ok bool) {
	switch button {
	case macro.ButtonLeft:
		return mouseEventfLeftDown, mouseEventfLeftUp, true
	case macro.ButtonRight:
		return mouseEventfRightDown, mouseEventfRightUp, true
	case macro.ButtonMiddle:
		return mouseEventfMiddleDown, mouseEventfMiddleUp, true
	}
	return 0, 0, false
}

func sendKey(vk uint16, flags uint32) error {
	pkt := keybdInputPacket{
		Type: inputKeyboard,
		Ki:   keybdInput{Vk: vk, Flags: flags},
	}
	ret, _, err := procSendInput.Call(1, uintptr(unsafe.Pointer(&pkt)), unsafe.Sizeof(pkt))
	if ret == 0 {
		return fmt.Errorf("SendInput(key %#x): %w", vk, err)
	}
	return nil
}

func sendMouse(mi mouseInput) error {
	pkt := mouseInputPacket{Type: inputMouse, Mi: mi}
	ret, _, err := procSendInput.Call(1, uintptr(unsafe.Pointer(&pkt)), unsafe.Sizeof(pkt))
	if ret == 0 {
		return fmt.Errorf("SendInput(mouse flags %#x): %w", mi.Flags, err)
	}
	return nil
}
