package macro

import (
	"strings"
	"testing"
	"time"
)

func TestKey_Printable(t *testing.T) {
	tests := []struct {
		key  Key
		want bool
	}{
		{"a", true},
		{"/", true},
		{"ctrl_l", false},
		{"f8", false},
		{"enter", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := tt.key.Printable(); got != tt.want {
			t.Errorf("Key(%q).Printable() = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestAction_String(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		want   string
	}{
		{
			name:   "key down",
			action: Action{Kind: KeyDown, Key: "a", Delta: 10 * time.Millisecond},
			want:   "key_down(a, 10ms)",
		},
		{
			name:   "mouse move",
			action: Action{Kind: MouseMove, X: 100, Y: 200},
			want:   "mouse_move(100,200, 0s)",
		},
		{
			name:   "button up",
			action: Action{Kind: ButtonUp, Button: ButtonLeft, X: 5, Y: 6},
			want:   "button_up(left, 5,6, 0s)",
		},
		{
			name:   "scroll",
			action: Action{Kind: Scroll, DY: -1},
			want:   "scroll(0,-1, 0s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.action.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLog_AppendAndLen(t *testing.T) {
	log := NewLog()
	if log.Len() != 0 {
		t.Fatalf("new log has %d actions, want 0", log.Len())
	}

	log.Append(Action{Kind: KeyDown, Key: "a"})
	log.Append(Action{Kind: KeyUp, Key: "a"})

	if log.Len() != 2 {
		t.Errorf("got len=%d, want 2", log.Len())
	}
	if log.Actions()[0].Kind != KeyDown {
		t.Errorf("first action kind = %s, want key_down", log.Actions()[0].Kind)
	}
}

func TestLog_Duration(t *testing.T) {
	log := NewLog()
	log.Append(Action{Kind: KeyDown, Key: "a", Delta: 100 * time.Millisecond})
	log.Append(Action{Kind: KeyUp, Key: "a", Delta: 50 * time.Millisecond})
	log.Append(Action{Kind: MouseMove, X: 1, Y: 1, Delta: 250 * time.Millisecond})

	if got := log.Duration(); got != 400*time.Millisecond {
		t.Errorf("got duration=%v, want 400ms", got)
	}
}

func TestLog_DurationEmpty(t *testing.T) {
	if got := NewLog().Duration(); got != 0 {
		t.Errorf("empty log duration = %v, want 0", got)
	}
}

func TestAction_StringUnknownKind(t *testing.T) {
	a := Action{Kind: "bogus"}
	if !strings.Contains(a.String(), "bogus") {
		t.Errorf("unknown kind string = %q, want it to carry the kind", a.String())
	}
}
