package macro

import (
	"fmt"
	"time"
)

// Kind discriminates the Action variants.
type Kind string

const (
	KeyDown    Kind = "key_down"
	KeyUp      Kind = "key_up"
	MouseMove  Kind = "mouse_move"
	ButtonDown Kind = "button_down"
	ButtonUp   Kind = "button_up"
	Scroll     Kind = "scroll"
)

// Key is a symbolic key: either a single printable character ("a", "/")
// or a named constant from the closed enumeration in internal/input
// ("ctrl_l", "f8", "enter", ...).
type Key string

// Printable reports whether the key is a single printable character
// rather than a named constant.
func (k Key) Printable() bool {
	return len(k) == 1
}

// Button identifies a mouse button.
type Button string

const (
	ButtonLeft   Button = "left"
	ButtonRight  Button = "right"
	ButtonMiddle Button = "middle"
)

// Action is one captured input primitive. Which payload fields are
// meaningful depends on Kind:
//
//	KeyDown/KeyUp       Key
//	MouseMove           X, Y
//	ButtonDown/ButtonUp Button, X, Y
//	Scroll              DX, DY
//
// Delta is the elapsed wall-clock time since the previous action in the
// same log; the first action's delta is measured from the moment capture
// began. It is never negative.
type Action struct {
	Kind   Kind
	Key    Key
	Button Button
	X      int
	Y      int
	DX     int
	DY     int
	Delta  time.Duration
}

func (a Action) String() string {
	switch a.Kind {
	case KeyDown, KeyUp:
		return fmt.Sprintf("%s(%s, %v)", a.Kind, a.Key, a.Delta)
	case MouseMove:
		return fmt.Sprintf("%s(%d,%d, %v)", a.Kind, a.X, a.Y, a.Delta)
	case ButtonDown, ButtonUp:
		return fmt.Sprintf("%s(%s, %d,%d, %v)", a.Kind, a.Button, a.X, a.Y, a.Delta)
	case Scroll:
		return fmt.Sprintf("%s(%d,%d, %v)", a.Kind, a.DX, a.DY, a.Delta)
	default:
		return string(a.Kind)
	}
}
