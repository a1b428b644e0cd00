package replay

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sergiup592/event-automation/internal/input"
	"github.com/sergiup592/event-automation/internal/logger"
	"github.com/sergiup592/event-automation/internal/macro"
)

func init() {
	logger.InitQuiet()
}

// fakeInjector records every synthesized call in order.
type fakeInjector struct {
	mu    sync.Mutex
	calls []string

	// failOn, when set, makes the named call return failErr.
	failOn  string
	failErr error
}

func (f *fakeInjector) note(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.failOn == call {
		return f.failErr
	}
	return nil
}

func (f *fakeInjector) KeyDown(key macro.Key) error {
	return f.note("key_down:" + string(key))
}

func (f *fakeInjector) KeyUp(key macro.Key) error {
	return f.note("key_up:" + string(key))
}

func (f *fakeInjector) MouseMove(x, y int) error {
	return f.note(fmt.Sprintf("move:%d,%d", x, y))
}

func (f *fakeInjector) ButtonDown(button macro.Button) error {
	return f.note("button_down:" + string(button))
}

func (f *fakeInjector) ButtonUp(button macro.Button) error {
	return f.note("button_up:" + string(button))
}

func (f *fakeInjector) Scroll(dx, dy int) error {
	return f.note(fmt.Sprintf("scroll:%d,%d", dx, dy))
}

func (f *fakeInjector) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func buildLog(actions ...macro.Action) *macro.Log {
	log := macro.NewLog()
	for _, a := range actions {
		log.Append(a)
	}
	return log
}

func runToCompletion(t *testing.T, p *Player, log *macro.Log, repeat int) {
	t.Helper()
	if err := p.Start(log, repeat); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	select {
	case <-p.done:
	case <-time.After(5 * time.Second):
		t.Fatal("playback did not terminate")
	}
}

func TestPlayer_ReplaysInOrder(t *testing.T) {
	inj := &fakeInjector{}
	p := New(inj, Options{})

	log := buildLog(
		macro.Action{Kind: macro.KeyDown, Key: "h"},
		macro.Action{Kind: macro.KeyUp, Key: "h"},
		macro.Action{Kind: macro.MouseMove, X: 10, Y: 20},
		macro.Action{Kind: macro.ButtonDown, Button: macro.ButtonLeft},
		macro.Action{Kind: macro.ButtonUp, Button: macro.ButtonLeft},
		macro.Action{Kind: macro.Scroll, DY: -2},
	)
	runToCompletion(t, p, log, 1)

	want := []string{
		"key_down:h", "key_up:h", "move:10,20",
		"button_down:left", "button_up:left", "scroll:0,-2",
	}
	got := inj.snapshot()
	if len(got) != len(want) {
		t.Fatalf("got %d calls, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, got[i], want[i])
		}
	}
	if p.Cancelled() {
		t.Error("uncancelled playback reported Cancelled")
	}
	if p.Err() != nil {
		t.Errorf("unexpected error: %v", p.Err())
	}
}

func TestPlayer_RepeatReportsProgress(t *testing.T) {
	inj := &fakeInjector{}
	var mu sync.Mutex
	var progress []int
	p := New(inj, Options{
		OnProgress: func(i int) {
			mu.Lock()
			progress = append(progress, i)
			mu.Unlock()
		},
	})

	log := buildLog(
		macro.Action{Kind: macro.KeyDown, Key: "a"},
		macro.Action{Kind: macro.KeyUp, Key: "a"},
	)
	runToCompletion(t, p, log, 3)

	if got := len(inj.snapshot()); got != 6 {
		t.Errorf("got %d injector calls, want 6", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(progress) != 3 {
		t.Fatalf("got %d progress reports, want 3: %v", len(progress), progress)
	}
	for i, want := range []int{1, 2, 3} {
		if progress[i] != want {
			t.Errorf("progress %d = %d, want %d", i, progress[i], want)
		}
	}
}

func TestPlayer_StopDuringDelta(t *testing.T) {
	inj := &fakeInjector{}
	var mu sync.Mutex
	var progress []int
	p := New(inj, Options{
		OnProgress: func(i int) {
			mu.Lock()
			progress = append(progress, i)
			mu.Unlock()
		},
	})

	log := buildLog(
		macro.Action{Kind: macro.KeyDown, Key: "a"},
		macro.Action{Kind: macro.KeyUp, Key: "a", Delta: time.Hour},
	)
	if err := p.Start(log, 5); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// The first key_down fires immediately; the hour-long delta before
	// key_up parks playback until Stop interrupts it.
	deadline := time.After(2 * time.Second)
	for len(inj.snapshot()) == 0 {
		select {
		case <-deadline:
			t.Fatal("playback never executed the first action")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	p.Stop()

	if !p.Cancelled() {
		t.Error("stopped playback did not report Cancelled")
	}
	calls := inj.snapshot()
	// key_down, then the cleanup key_up from the held set.
	if calls[0] != "key_down:a" {
		t.Errorf("first call = %q, want key_down:a", calls[0])
	}
	if calls[len(calls)-1] != "key_up:a" {
		t.Errorf("last call = %q, want the held key released", calls[len(calls)-1])
	}
	mu.Lock()
	defer mu.Unlock()
	if len(progress) != 0 {
		t.Errorf("cancelled iteration reported progress: %v", progress)
	}
}

func TestPlayer_ReleasesHeldButtonsOnError(t *testing.T) {
	inj := &fakeInjector{
		failOn:  "move:1,1",
		failErr: errors.New("injection rejected"),
	}
	p := New(inj, Options{})

	log := buildLog(
		macro.Action{Kind: macro.ButtonDown, Button: macro.ButtonRight},
		macro.Action{Kind: macro.MouseMove, X: 1, Y: 1},
		macro.Action{Kind: macro.ButtonUp, Button: macro.ButtonRight},
	)
	runToCompletion(t, p, log, 1)

	if p.Err() == nil {
		t.Fatal("expected playback error")
	}
	calls := inj.snapshot()
	if calls[len(calls)-1] != "button_up:right" {
		t.Errorf("last call = %q, want the held button released", calls[len(calls)-1])
	}
}

func TestPlayer_SkipsUnmappedKeys(t *testing.T) {
	inj := &fakeInjector{
		failOn:  "key_down:Foobar",
		failErr: fmt.Errorf("%w: %q", input.ErrUnmappedKey, "Foobar"),
	}
	p := New(inj, Options{})

	log := buildLog(
		macro.Action{Kind: macro.KeyDown, Key: "Foobar"},
		macro.Action{Kind: macro.KeyDown, Key: "a"},
		macro.Action{Kind: macro.KeyUp, Key: "a"},
	)
	runToCompletion(t, p, log, 1)

	if p.Err() != nil {
		t.Fatalf("unmapped key ended the session: %v", p.Err())
	}
	calls := inj.snapshot()
	if calls[len(calls)-1] != "key_up:a" {
		t.Errorf("last call = %q, want key_up:a", calls[len(calls)-1])
	}
	// The unmapped key must not have entered the held set, so no
	// cleanup release for it.
	for _, c := range calls {
		if c == "key_up:Foobar" {
			t.Error("unmapped key was released from the held set")
		}
	}
}

func TestPlayer_RejectsEmptyLog(t *testing.T) {
	p := New(&fakeInjector{}, Options{})
	if err := p.Start(macro.NewLog(), 1); err == nil {
		t.Error("empty log accepted")
	}
	if err := New(&fakeInjector{}, Options{}).Start(nil, 1); err == nil {
		t.Error("nil log accepted")
	}
}

func TestPlayer_RejectsNonPositiveRepeat(t *testing.T) {
	log := buildLog(macro.Action{Kind: macro.KeyDown, Key: "a"})
	for _, repeat := range []int{0, -1} {
		p := New(&fakeInjector{}, Options{})
		if err := p.Start(log, repeat); err == nil {
			t.Errorf("repeat=%d accepted", repeat)
		}
	}
}

func TestPlayer_OnFinishedFiresAfterCleanup(t *testing.T) {
	inj := &fakeInjector{}
	var callsAtFinish int
	finished := make(chan struct{})
	p := New(inj, Options{
		OnFinished: func(*Player) {
			callsAtFinish = len(inj.snapshot())
			close(finished)
		},
	})

	log := buildLog(macro.Action{Kind: macro.KeyDown, Key: "x"})
	if err := p.Start(log, 1); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("OnFinished did not fire")
	}

	// key_down plus the cleanup key_up must both precede the terminal
	// notification.
	if callsAtFinish != 2 {
		t.Errorf("got %d calls at finish, want 2 (down + cleanup up)", callsAtFinish)
	}
	p.Stop()
}

func TestPlayer_StopBeforeStart(t *testing.T) {
	p := New(&fakeInjector{}, Options{})

	returned := make(chan struct{})
	go func() {
		p.Stop()
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked with no session started")
	}

	log := buildLog(macro.Action{Kind: macro.KeyDown, Key: "a"})
	if err := p.Start(log, 1); err == nil {
		t.Error("Start after Stop should be rejected")
	}
}
