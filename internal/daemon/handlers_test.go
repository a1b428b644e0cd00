package daemon

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sergiup592/event-automation/internal/control"
	"github.com/sergiup592/event-automation/internal/input"
	"github.com/sergiup592/event-automation/internal/logger"
	"github.com/sergiup592/event-automation/internal/macro"
)

func init() {
	logger.InitQuiet()
}

type fakeSource struct {
	events chan input.Event
}

func (s *fakeSource) Start() error               { return nil }
func (s *fakeSource) Stop()                      {}
func (s *fakeSource) Events() <-chan input.Event { return s.events }

type fakeInjector struct{}

func (fakeInjector) KeyDown(macro.Key) error       { return nil }
func (fakeInjector) KeyUp(macro.Key) error         { return nil }
func (fakeInjector) MouseMove(int, int) error      { return nil }
func (fakeInjector) ButtonDown(macro.Button) error { return nil }
func (fakeInjector) ButtonUp(macro.Button) error   { return nil }
func (fakeInjector) Scroll(int, int) error         { return nil }

func newTestHandlers() *Handlers {
	ctrl := control.New(control.Options{
		Source:   &fakeSource{events: make(chan input.Event, 8)},
		Injector: fakeInjector{},
	})
	return NewHandlers(ctrl, nil, "test")
}

func TestHandlers_Health(t *testing.T) {
	h := newTestHandlers()
	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "ok" || resp.Version != "test" {
		t.Errorf("got %+v, want status ok, version test", resp)
	}
}

func TestHandlers_StatusIdle(t *testing.T) {
	h := newTestHandlers()
	w := httptest.NewRecorder()
	h.Status(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}
	var resp StatusResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Mode != "idle" || resp.LogLen != 0 {
		t.Errorf("got %+v, want idle with empty log", resp)
	}
}

func TestHandlers_RecordStartConflict(t *testing.T) {
	h := newTestHandlers()

	w := httptest.NewRecorder()
	h.StartRecording(w, httptest.NewRequest(http.MethodPost, "/api/record/start", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first start: got status %d, want 200", w.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["result"] != "ok" || resp["mode"] != "recording" {
		t.Errorf("got %v, want ok/recording", resp)
	}

	// A second start while recording is rejected, not queued.
	w = httptest.NewRecorder()
	h.StartRecording(w, httptest.NewRequest(http.MethodPost, "/api/record/start", nil))
	if w.Code != http.StatusConflict {
		t.Errorf("second start: got status %d, want 409", w.Code)
	}

	w = httptest.NewRecorder()
	h.StopRecording(w, httptest.NewRequest(http.MethodPost, "/api/record/stop", nil))
	if w.Code != http.StatusOK {
		t.Errorf("stop: got status %d, want 200", w.Code)
	}
}

func TestHandlers_StopWithoutSession(t *testing.T) {
	h := newTestHandlers()

	w := httptest.NewRecorder()
	h.StopRecording(w, httptest.NewRequest(http.MethodPost, "/api/record/stop", nil))
	if w.Code != http.StatusConflict {
		t.Errorf("record stop: got status %d, want 409", w.Code)
	}

	w = httptest.NewRecorder()
	h.StopPlayback(w, httptest.NewRequest(http.MethodPost, "/api/replay/stop", nil))
	if w.Code != http.StatusConflict {
		t.Errorf("replay stop: got status %d, want 409", w.Code)
	}
}

func TestHandlers_ReplayStartValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", "{not json", http.StatusBadRequest},
		{"zero repeat", `{"repeat": 0}`, http.StatusBadRequest},
		{"negative repeat", `{"repeat": -2}`, http.StatusBadRequest},
		// Nothing recorded yet, so a valid request conflicts.
		{"empty log", `{"repeat": 3}`, http.StatusConflict},
		{"empty body defaults repeat", "", http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandlers()
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/replay/start", strings.NewReader(tt.body))
			h.StartPlayback(w, req)
			if w.Code != tt.want {
				t.Errorf("got status %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestHandlers_SessionsWithoutStore(t *testing.T) {
	h := newTestHandlers()
	w := httptest.NewRecorder()
	h.Sessions(w, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}
	var resp []SessionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 0 {
		t.Errorf("got %d sessions, want 0", len(resp))
	}
}

func TestHandlers_StatsWithoutStore(t *testing.T) {
	h := newTestHandlers()
	w := httptest.NewRecorder()
	h.Stats(w, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200", w.Code)
	}
	var resp StatsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TotalSessions != 0 {
		t.Errorf("got total=%d, want 0", resp.TotalSessions)
	}
}
