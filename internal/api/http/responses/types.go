// Package responses defines the JSON types served by the console API and
// polled by the dashboard.
package responses

import (
	"time"

	domain "github.com/osadchiy/routerdesk/internal/domain/console"
)

// StatusResponse is the main polling payload.
type StatusResponse struct {
	// Status is "busy" while an action runs, "idle" otherwise.
	Status string `json:"status"`
	// Version is the daemon build version.
	Version string `json:"version"`
	// Uptime is seconds since the daemon started.
	Uptime float64 `json:"uptime"`
	// Actions lists locally resolvable action names.
	Actions []string `json:"actions"`
	// CurrentRun is the in-flight run, null when idle.
	CurrentRun *domain.Run `json:"current_run,omitempty"`
	// LastRun is the most recently finished run.
	LastRun *domain.Run `json:"last_run,omitempty"`
	// History holds recent finished runs, newest first.
	History []*domain.Run `json:"history,omitempty"`
	// LogTail holds the trailing action log lines.
	LogTail []string `json:"log_tail"`
	// Error is the last run's failure description; empty means no error.
	Error string `json:"error,omitempty"`
	// Motd is the banner pushed through the remote profile.
	Motd string `json:"motd,omitempty"`
	// Timestamp is when this snapshot was taken.
	Timestamp time.Time `json:"timestamp"`
}

// TriggerRequest asks the daemon to run an action.
type TriggerRequest struct {
	// Action is the action name to dispatch.
	Action string `json:"action"`
	// Args are forwarded to the action.
	Args []string `json:"args,omitempty"`
}

// TriggerResponse acknowledges an accepted action.
type TriggerResponse struct {
	// Status is "accepted".
	Status string `json:"status"`
	// RunID identifies the started run for follow-up polling.
	RunID string `json:"run_id"`
}

// TerminalResponse is the web terminal port lookup payload.
type TerminalResponse struct {
	// Port is the TCP port ttyd serves on.
	Port int `json:"port"`
	// Running reports whether a terminal process exists right now.
	Running bool `json:"running"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse carries a failure to API clients.
type ErrorResponse struct {
	// Error is the human-readable failure description.
	Error string `json:"error"`
}
