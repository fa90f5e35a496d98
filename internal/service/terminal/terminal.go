package terminal

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"sync"

	"github.com/mitchellh/go-ps"

	"github.com/osadchiy/routerdesk/internal/config"
	"github.com/osadchiy/routerdesk/internal/logger"
)

// Supervisor manages the lifetime of the web terminal process.
type Supervisor struct {
	// cfg holds the terminal command, shell and port.
	cfg config.Terminal

	// mu protects the spawned process handle.
	mu sync.Mutex
	// cmd is the ttyd process we spawned; nil when adopted or stopped.
	cmd *exec.Cmd
	// exited is closed by the reaper when the spawned process ends.
	exited chan struct{}
}

// NewSupervisor creates a supervisor for the configured terminal.
func NewSupervisor(cfg config.Terminal) *Supervisor {
	return &Supervisor{
		cfg: cfg,
	}
}

// Port returns the TCP port the terminal serves on.
func (s *Supervisor) Port() int {
	return s.cfg.Port
}

// Ensure makes sure a terminal process exists: an already-running instance
// of the configured command is adopted, otherwise a new one is spawned.
// It reports whether an existing process was adopted.
func (s *Supervisor) Ensure(ctx context.Context) (bool, error) {
	if found, err := s.findExisting(); err != nil {
		return false, err
	} else if found {
		logger.InfoKV(ctx, "Adopted running web terminal",
			"command", s.cfg.Command, "port", s.cfg.Port)

		return true, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd != nil {
		return false, nil
	}

	//nolint:gosec // The terminal command comes from the operator's own settings file.
	cmd := exec.Command(s.cfg.Command, "-p", strconv.Itoa(s.cfg.Port), s.cfg.Shell)
	if err := cmd.Start(); err != nil {
		return false, fmt.Errorf("start %s: %w", s.cfg.Command, err)
	}

	s.cmd = cmd
	s.exited = make(chan struct{})

	exited := s.exited

	// Reap the child so a crashed ttyd does not linger as a zombie.
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	logger.InfoKV(ctx, "Started web terminal",
		"command", s.cfg.Command, "port", s.cfg.Port, "pid", cmd.Process.Pid)

	return false, nil
}

// Running reports whether a terminal process currently exists, either the
// spawned child or an externally started instance.
func (s *Supervisor) Running() bool {
	s.mu.Lock()

	if s.cmd != nil {
		select {
		case <-s.exited:
			s.cmd = nil
		default:
			s.mu.Unlock()

			return true
		}
	}

	s.mu.Unlock()

	found, err := s.findExisting()

	return err == nil && found
}

// Stop terminates the spawned terminal process. Adopted processes are left
// alone; the daemon does not own them.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd == nil || s.cmd.Process == nil {
		return
	}

	_ = s.cmd.Process.Kill()
	s.cmd = nil
}

// findExisting scans the process table for the configured terminal command.
func (s *Supervisor) findExisting() (bool, error) {
	processes, err := ps.Processes()
	if err != nil {
		return false, fmt.Errorf("list processes: %w", err)
	}

	for _, process := range processes {
		if process.Executable() == s.cfg.Command {
			return true, nil
		}
	}

	return false, nil
}
