package httpapi

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/osadchiy/routerdesk/internal/api/http/responses"
	domain "github.com/osadchiy/routerdesk/internal/domain/console"
	"github.com/osadchiy/routerdesk/internal/logger"
	"github.com/osadchiy/routerdesk/internal/service/catalog"
	"github.com/osadchiy/routerdesk/internal/service/runner"
	"github.com/osadchiy/routerdesk/internal/version"
)

// logTailLines is how much of the action log the status endpoint returns.
const logTailLines = 40

// userHeader optionally names the operator triggering an action.
const userHeader = "X-Routerdesk-User"

// handleStatus serves the polling payload.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	current, history := s.runner.Status()

	tail, err := s.runner.LogTail(logTailLines)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)

		return
	}

	status := "idle"
	if current != nil {
		status = "busy"
	}

	resp := &responses.StatusResponse{
		Status:     status,
		Version:    version.Short(),
		Uptime:     time.Since(s.startTime).Seconds(),
		Actions:    s.actionNames(),
		CurrentRun: current,
		History:    history,
		LogTail:    tail,
		Timestamp:  time.Now().UTC(),
	}

	if len(history) > 0 {
		resp.LastRun = history[0]
		resp.Error = history[0].Error
	}

	if profile := s.profile(); profile != nil {
		resp.Motd = profile.Motd
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleTrigger starts an action unless one is already running.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	var req responses.TriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	req.Action = strings.TrimSpace(req.Action)
	if req.Action == "" {
		writeErrorString(w, http.StatusBadRequest, "action is required")

		return
	}

	if s.runner.Busy() {
		writeError(w, http.StatusConflict, runner.ErrBusy)

		return
	}

	actor := actorFromRequest(r)

	type outcome struct {
		runID string
		err   error
	}

	done := make(chan outcome, 1)

	// The run outlives the request on purpose; the dashboard follows it
	// through the status endpoint.
	go func() {
		run, err := s.runner.Execute(s.baseCtx, req.Action, req.Args, actor)

		var id string
		if run != nil {
			id = run.ID
		}

		done <- outcome{runID: id, err: err}

		if err != nil {
			logger.ErrorKV(s.baseCtx, "Triggered run failed",
				"action", req.Action, "error", err)
		}
	}()

	select {
	case result := <-done:
		switch {
		case errors.Is(result.err, runner.ErrBusy):
			writeError(w, http.StatusConflict, result.err)
		case result.err != nil && result.runID == "":
			// Never started: unresolvable action or a broken plan.
			writeError(w, http.StatusBadRequest, result.err)
		default:
			// Finished already (fast action), possibly with a failure the
			// caller will see in the status poll.
			writeJSON(w, http.StatusAccepted, &responses.TriggerResponse{
				Status: "accepted",
				RunID:  result.runID,
			})
		}
	case <-time.After(time.Second):
		// Still running; the caller can find the run in the status poll.
		writeJSON(w, http.StatusAccepted, &responses.TriggerResponse{
			Status: "accepted",
		})
	}
}

// handleTerminal answers the web terminal port lookup.
func (s *Server) handleTerminal(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, &responses.TerminalResponse{
		Port:    s.terminal.Port(),
		Running: s.terminal.Running(),
	})
}

// handleDevices serves the processed device catalog.
func (s *Server) handleDevices(w http.ResponseWriter, _ *http.Request) {
	devices, err := catalog.Load(s.catalogPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)

		return
	}

	if devices == nil {
		devices = []catalog.Device{}
	}

	writeJSON(w, http.StatusOK, devices)
}

// handleHealth serves the liveness payload.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, &responses.HealthResponse{
		Status:    "ok",
		Version:   version.Short(),
		Uptime:    time.Since(s.startTime).Seconds(),
		Timestamp: time.Now().UTC(),
	})
}

// actorFromRequest builds the audit actor for an HTTP-triggered run.
func actorFromRequest(r *http.Request) *domain.Actor {
	username := r.Header.Get(userHeader)
	if username == "" {
		username = "dashboard"
	}

	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		host = h
	}

	return &domain.Actor{
		Hostname: host,
		Username: username,
	}
}

// writeJSON encodes v with an indent so curl output stays readable.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(v); err != nil {
		// Headers are gone; nothing left to do but note it.
		logger.Logger().Errorf("Failed to encode response: %v", err)
	}
}

// writeError encodes an error payload.
func writeError(w http.ResponseWriter, status int, err error) {
	var resp responses.ErrorResponse
	if err != nil {
		resp.Error = err.Error()
	}

	writeJSON(w, status, &resp)
}

// writeErrorString encodes a literal error payload.
func writeErrorString(w http.ResponseWriter, status int, msg string) {
	writeError(w, status, errors.New(msg))
}
