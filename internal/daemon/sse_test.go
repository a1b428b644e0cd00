package daemon

import (
	"testing"
	"time"
)

func TestSSEBroadcaster_SubscribeAndBroadcast(t *testing.T) {
	b := NewSSEBroadcaster()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	if b.ClientCount() != 1 {
		t.Fatalf("got %d clients, want 1", b.ClientCount())
	}

	b.Status("Recording Started")
	b.Progress(2)
	b.Finished()

	want := []struct {
		eventType string
		data      any
	}{
		{SSEStatus, "Recording Started"},
		{SSEProgress, 2},
		{SSEFinished, nil},
	}
	for i, w := range want {
		select {
		case ev := <-ch:
			if ev.Type != w.eventType {
				t.Errorf("event %d type = %q, want %q", i, ev.Type, w.eventType)
			}
			if w.data != nil && ev.Data != w.data {
				t.Errorf("event %d data = %v, want %v", i, ev.Data, w.data)
			}
		case <-time.After(time.Second):
			t.Fatalf("event %d never arrived", i)
		}
	}
}

func TestSSEBroadcaster_UnsubscribeClosesChannel(t *testing.T) {
	b := NewSSEBroadcaster()
	ch := b.Subscribe()
	b.Unsubscribe(ch)

	if b.ClientCount() != 0 {
		t.Errorf("got %d clients, want 0", b.ClientCount())
	}
	if _, ok := <-ch; ok {
		t.Error("channel still open after unsubscribe")
	}
	// A second unsubscribe of the same channel is a no-op.
	b.Unsubscribe(ch)
}

func TestSSEBroadcaster_StopDisconnectsClients(t *testing.T) {
	b := NewSSEBroadcaster()
	b.Start()
	ch := b.Subscribe()

	b.Stop()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel after Stop")
		}
	case <-time.After(time.Second):
		t.Fatal("client channel not closed after Stop")
	}
}
