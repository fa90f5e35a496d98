package console

import "time"

// Actor identifies who triggered an administrative run.
type Actor struct {
	// Hostname is the machine name the run was triggered from.
	Hostname string `json:"hostname"`
	// Username is the system user who triggered the run.
	Username string `json:"username"`
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// RunStatus describes the lifecycle state of an administrative run.
type RunStatus string

const (
	// StatusRunning means the action is currently executing under the lock.
	StatusRunning RunStatus = "running"
	// StatusSucceeded means the action finished with a zero exit status.
	StatusSucceeded RunStatus = "succeeded"
	// StatusFailed means the action finished with a non-zero exit status or error.
	StatusFailed RunStatus = "failed"
)

// Run is one serialized execution of an administrative action.
type Run struct {
	// ID is the unique run identifier.
	ID string `json:"id"`
	// Action is the dispatched action name.
	Action string `json:"action"`
	// Args are the arguments forwarded to the action.
	Args []string `json:"args,omitempty"`
	// Delegated marks runs forwarded to the remote fallback script.
	Delegated bool `json:"delegated,omitempty"`
	// Actor is who triggered the run.
	Actor *Actor `json:"actor,omitempty"`
	// StartedAt is when the lock was acquired.
	StartedAt time.Time `json:"started_at"`
	// FinishedAt is when the action finished; zero while running.
	FinishedAt time.Time `json:"finished_at,omitzero"`
	// Status is the current lifecycle state.
	Status RunStatus `json:"status"`
	// ExitCode is the action's process exit status.
	ExitCode int `json:"exit_code"`
	// Error is the failure description, empty on success.
	Error string `json:"error,omitempty"`
}

// Clone returns a copy of the run to avoid leaking internal references.
func (r *Run) Clone() *Run {
	if r == nil {
		return nil
	}

	cloned := *r
	cloned.Actor = r.Actor.Clone()
	cloned.Args = append([]string(nil), r.Args...)

	return &cloned
}

// Finished reports whether the run has completed.
func (r *Run) Finished() bool {
	return r.Status != StatusRunning
}

// Duration returns how long the run took, or the elapsed time for a
// still-running action.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}

	return r.FinishedAt.Sub(r.StartedAt)
}
