package actions

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/osadchiy/routerdesk/internal/config"
	"github.com/osadchiy/routerdesk/internal/execx"
	"github.com/osadchiy/routerdesk/internal/logger"
)

var (
	// ErrUnknownAction is returned when a name matches nothing and no
	// fallback script URL is configured.
	ErrUnknownAction = errors.New("unknown action")
	// errEmptyActionName rejects blank dispatch requests early.
	errEmptyActionName = errors.New("action name must not be empty")
)

// Plan is the resolved command sequence for one action.
type Plan struct {
	// Action is the dispatched name.
	Action string
	// Commands are executed in order; the first failure stops the plan.
	Commands []execx.Command
	// Delegated marks plans forwarded to the remote fallback script.
	Delegated bool
	// Cleanup releases plan resources (delegated script temp dir).
	// Nil when there is nothing to clean.
	Cleanup func()
}

// Registry resolves action names using builtins, profile-pushed actions and
// remote delegation.
type Registry struct {
	// mu protects the profile-derived fields below.
	mu sync.RWMutex
	// extra maps profile action names to command argument vectors.
	extra map[string][]string
	// fallbackURL is where unrecognized actions are delegated to.
	fallbackURL string
}

// NewRegistry creates a registry with builtins only.
func NewRegistry() *Registry {
	return &Registry{
		extra: make(map[string][]string),
	}
}

// ApplyProfile replaces the profile-derived actions and fallback location.
func (r *Registry) ApplyProfile(profile *config.Profile) {
	if profile == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.fallbackURL = profile.FallbackScriptURL
	r.extra = make(map[string][]string, len(profile.Actions))

	for name, argv := range profile.Actions {
		if name == "" || len(argv) == 0 {
			continue
		}

		r.extra[name] = append([]string(nil), argv...)
	}
}

// Names returns all locally resolvable action names, sorted.
// Delegated names are unknowable by definition and not included.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(builtins)+len(r.extra))
	for name := range builtins {
		names = append(names, name)
	}

	for name := range r.extra {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Resolve turns an action name and its arguments into an executable plan.
func (r *Registry) Resolve(ctx context.Context, name string, args []string) (*Plan, error) {
	if name == "" {
		return nil, errEmptyActionName
	}

	commands, found, err := planBuiltin(name, args)
	if err != nil {
		return nil, err
	}

	if found {
		return &Plan{Action: name, Commands: commands}, nil
	}

	r.mu.RLock()
	argv, hasExtra := r.extra[name]
	fallbackURL := r.fallbackURL
	r.mu.RUnlock()

	if hasExtra {
		return &Plan{
			Action: name,
			Commands: []execx.Command{
				{Name: argv[0], Args: append(append([]string(nil), argv[1:]...), args...)},
			},
		}, nil
	}

	if fallbackURL == "" {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownAction)
	}

	logger.InfoKV(ctx, "Delegating action to fallback script", "action", name, "url", fallbackURL)

	scriptPath, cleanup, err := fetchFallbackScript(ctx, fallbackURL)
	if err != nil {
		return nil, fmt.Errorf("fetch fallback script: %w", err)
	}

	return &Plan{
		Action: name,
		Commands: []execx.Command{
			// The fallback contract: script receives the unrecognized
			// action name verbatim, then the original arguments.
			{Name: scriptPath, Args: append([]string{name}, args...)},
		},
		Delegated: true,
		Cleanup:   cleanup,
	}, nil
}
