package daemon

import "time"

// StatusResponse reports the controller's current state
type StatusResponse struct {
	Mode      string    `json:"mode"`
	LogLen    int       `json:"log_len"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	StartedAt time.Time `json:"started_at"`
}

// ReplayRequest is the body of POST /api/replay/start
type ReplayRequest struct {
	Repeat int `json:"repeat"`
}

// SessionResponse represents a history row in API responses
type SessionResponse struct {
	ID         string    `json:"id"`
	Mode       string    `json:"mode"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at"`
	Actions    int       `json:"actions"`
	Iterations int       `json:"iterations,omitempty"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
}

// StatsResponse represents aggregate history statistics
type StatsResponse struct {
	TotalSessions int            `json:"total_sessions"`
	Recordings    int            `json:"recordings"`
	Playbacks     int            `json:"playbacks"`
	Errors        int            `json:"errors"`
	TotalActions  int            `json:"total_actions"`
	LastSessionAt time.Time      `json:"last_session_at,omitempty"`
	OutcomeCounts map[string]int `json:"outcome_counts"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	StartedAt time.Time `json:"started_at"`
}

// SSEEvent represents a server-sent event
type SSEEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// SSE event types carrying the controller's outward notifications
const (
	SSEStatus    = "status"
	SSEProgress  = "progress"
	SSEFinished  = "finished"
	SSEHeartbeat = "heartbeat"
)
