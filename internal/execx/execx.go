package execx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Command is an external tool invocation plan.
type Command struct {
	// Name is the executable name or path.
	Name string
	// Args are the arguments passed to the executable.
	Args []string
	// Dir is the working directory; empty means the process default.
	Dir string
	// Env entries are appended to the parent environment.
	Env []string
}

// String renders the command the way it would be typed into a shell.
// Used for log headers and dry-run output.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)

	for _, arg := range c.Args {
		if strings.ContainsAny(arg, " \t\"'") {
			arg = fmt.Sprintf("%q", arg)
		}

		parts = append(parts, arg)
	}

	return strings.Join(parts, " ")
}

// Run executes the command, streaming combined stdout+stderr to out.
// It returns the process exit code; a non-zero exit also yields an error.
// A command that could not be started returns exit code -1.
func Run(ctx context.Context, command Command, out io.Writer) (int, error) {
	cmd := exec.CommandContext(ctx, command.Name, command.Args...)
	cmd.Dir = command.Dir
	cmd.Stdout = out
	cmd.Stderr = out

	if len(command.Env) > 0 {
		cmd.Env = append(os.Environ(), command.Env...)
	}

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()

		return code, fmt.Errorf("%s exited with status %d", command.Name, code)
	}

	return -1, fmt.Errorf("run %s: %w", command.Name, err)
}
