package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sergiup592/event-automation/internal/control"
	"github.com/sergiup592/event-automation/internal/logger"
)

func init() {
	logger.InitQuiet()
}

func newTestStore(t *testing.T, maxSessions int) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"), maxSessions)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func session(mode control.Mode, outcome string, startedAt time.Time, actions int) control.Session {
	return control.Session{
		Mode:      mode,
		StartedAt: startedAt,
		EndedAt:   startedAt.Add(time.Second),
		Actions:   actions,
		Outcome:   outcome,
	}
}

func TestSQLiteStore_RecordAndList(t *testing.T) {
	store := newTestStore(t, 100)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if err := store.RecordSession(session(control.Recording, "finished", base, 12)); err != nil {
		t.Fatalf("RecordSession failed: %v", err)
	}
	if err := store.RecordSession(session(control.Playing, "stopped", base.Add(time.Minute), 12)); err != nil {
		t.Fatalf("RecordSession failed: %v", err)
	}

	records, err := store.ListSessions(10)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	// Newest first.
	if records[0].Mode != string(control.Playing) {
		t.Errorf("first record mode = %q, want playing", records[0].Mode)
	}
	if records[1].Mode != string(control.Recording) {
		t.Errorf("second record mode = %q, want recording", records[1].Mode)
	}
	if records[1].Actions != 12 || records[1].Outcome != "finished" {
		t.Errorf("record = %+v, want 12 actions, finished", records[1])
	}
	if records[0].ID == records[1].ID {
		t.Error("records share an ID")
	}
}

func TestSQLiteStore_ListLimit(t *testing.T) {
	store := newTestStore(t, 100)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		if err := store.RecordSession(session(control.Recording, "finished", base.Add(time.Duration(i)*time.Minute), i)); err != nil {
			t.Fatalf("RecordSession failed: %v", err)
		}
	}

	records, err := store.ListSessions(3)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("got %d records, want 3", len(records))
	}
}

func TestSQLiteStore_PrunesOldestPastBound(t *testing.T) {
	store := newTestStore(t, 3)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		if err := store.RecordSession(session(control.Recording, "finished", base.Add(time.Duration(i)*time.Minute), i)); err != nil {
			t.Fatalf("RecordSession failed: %v", err)
		}
	}

	records, err := store.ListSessions(10)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records after prune, want 3", len(records))
	}
	// The three newest survive.
	if got := records[len(records)-1].Actions; got != 2 {
		t.Errorf("oldest surviving record actions = %d, want 2", got)
	}
}

func TestSQLiteStore_Stats(t *testing.T) {
	store := newTestStore(t, 100)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	sessions := []control.Session{
		session(control.Recording, "finished", base, 10),
		session(control.Playing, "finished", base.Add(time.Minute), 10),
		session(control.Playing, "stopped", base.Add(2*time.Minute), 10),
		{
			Mode: control.Recording, StartedAt: base.Add(3 * time.Minute),
			EndedAt: base.Add(3 * time.Minute), Outcome: "error", Error: "source terminated",
		},
	}
	for _, s := range sessions {
		if err := store.RecordSession(s); err != nil {
			t.Fatalf("RecordSession failed: %v", err)
		}
	}

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalSessions != 4 {
		t.Errorf("got total=%d, want 4", stats.TotalSessions)
	}
	if stats.Recordings != 2 || stats.Playbacks != 2 {
		t.Errorf("got recordings=%d playbacks=%d, want 2/2", stats.Recordings, stats.Playbacks)
	}
	if stats.Errors != 1 {
		t.Errorf("got errors=%d, want 1", stats.Errors)
	}
	if stats.TotalActions != 30 {
		t.Errorf("got actions=%d, want 30", stats.TotalActions)
	}
	if stats.OutcomeCounts["finished"] != 2 || stats.OutcomeCounts["stopped"] != 1 {
		t.Errorf("got outcome counts %v", stats.OutcomeCounts)
	}
	wantLast := base.Add(3 * time.Minute)
	if !stats.LastSessionAt.Equal(wantLast) {
		t.Errorf("got last=%v, want %v", stats.LastSessionAt, wantLast)
	}
}

func TestSQLiteStore_EmptyStats(t *testing.T) {
	store := newTestStore(t, 100)

	stats, err := store.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalSessions != 0 {
		t.Errorf("got total=%d, want 0", stats.TotalSessions)
	}
	records, err := store.ListSessions(10)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records, want 0", len(records))
	}
}
