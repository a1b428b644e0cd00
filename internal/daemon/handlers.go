package daemon

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/sergiup592/event-automation/internal/control"
	"github.com/sergiup592/event-automation/internal/history"
)

// Handlers contains the HTTP handlers for the daemon API. Command
// endpoints forward to the controller's four entry points, so HTTP
// clients observe the same admission rules as hotkeys.
type Handlers struct {
	ctrl      *control.Controller
	store     history.Store
	startedAt time.Time
	version   string
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *control.Controller, store history.Store, version string) *Handlers {
	return &Handlers{
		ctrl:      ctrl,
		store:     store,
		startedAt: time.Now(),
		version:   version,
	}
}

// Health handles the health check endpoint
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "ok",
		Version:   h.version,
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		StartedAt: h.startedAt,
	}
	writeJSON(w, http.StatusOK, resp)
}

// Status reports the controller's mode and committed log size
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Mode:      string(h.ctrl.Mode()),
		LogLen:    h.ctrl.LogLen(),
		Version:   h.version,
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		StartedAt: h.startedAt,
	}
	writeJSON(w, http.StatusOK, resp)
}

// StartRecording handles POST /api/record/start
func (h *Handlers) StartRecording(w http.ResponseWriter, r *http.Request) {
	h.command(w, h.ctrl.StartRecording())
}

// StopRecording handles POST /api/record/stop
func (h *Handlers) StopRecording(w http.ResponseWriter, r *http.Request) {
	h.command(w, h.ctrl.StopRecording())
}

// StartPlayback handles POST /api/replay/start
func (h *Handlers) StartPlayback(w http.ResponseWriter, r *http.Request) {
	req := ReplayRequest{Repeat: 1}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}
	if req.Repeat < 1 {
		writeError(w, http.StatusBadRequest, "repeat must be a positive integer")
		return
	}
	h.command(w, h.ctrl.StartPlayback(req.Repeat))
}

// StopPlayback handles POST /api/replay/stop
func (h *Handlers) StopPlayback(w http.ResponseWriter, r *http.Request) {
	h.command(w, h.ctrl.StopPlayback())
}

// command maps controller admission errors onto HTTP statuses.
// Rejected commands are no-ops on the engine side.
func (h *Handlers) command(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]string{
			"result": "ok",
			"mode":   string(h.ctrl.Mode()),
		})
	case errors.Is(err, control.ErrNotIdle),
		errors.Is(err, control.ErrNotRecording),
		errors.Is(err, control.ErrNotPlaying),
		errors.Is(err, control.ErrEmptyLog):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// Sessions handles the session-history list endpoint
func (h *Handlers) Sessions(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusOK, []SessionResponse{})
		return
	}

	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	records, err := h.store.ListSessions(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := make([]SessionResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, SessionResponse{
			ID:         rec.ID,
			Mode:       rec.Mode,
			StartedAt:  rec.StartedAt,
			EndedAt:    rec.EndedAt,
			Actions:    rec.Actions,
			Iterations: rec.Iterations,
			Outcome:    rec.Outcome,
			Error:      rec.Error,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// Stats handles the aggregate statistics endpoint
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusOK, StatsResponse{OutcomeCounts: map[string]int{}})
		return
	}

	stats, err := h.store.Stats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, StatsResponse{
		TotalSessions: stats.TotalSessions,
		Recordings:    stats.Recordings,
		Playbacks:     stats.Playbacks,
		Errors:        stats.Errors,
		TotalActions:  stats.TotalActions,
		LastSessionAt: stats.LastSessionAt,
		OutcomeCounts: stats.OutcomeCounts,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
