package isolator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/hackeros/isolator/platform"
)

// Supervisor builds sandboxes and launches applications inside them. It is
// the parent half of the two-process model: it spawns the build child,
// ships the build configuration over a pipe, and waits for either a failure
// report or the application's exit status. It performs no isolation work of
// its own.
type Supervisor struct {
	cfg Config
}

// spawnFn is a function variable for the platform spawn implementation,
// overridden in tests.
var spawnFn = (*Supervisor).spawnAndWait

// NewSupervisor creates a Supervisor with the given configuration. The
// configuration is validated before use; nil means DefaultConfig().
func NewSupervisor(cfg *Config) (*Supervisor, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Supervisor{cfg: deepCopyConfig(cfg)}, nil
}

// BuildAndLaunch constructs the sandbox described by req and launches the
// application inside it, blocking until the application exits.
//
// If a confirmation hook is configured (or supplied via WithConfirm) and it
// declines, BuildAndLaunch returns Outcome{Launched: false} with a nil
// error: no child process is spawned and no isolation state is created.
// Otherwise the returned Outcome carries the application's exit code or
// terminating signal, and a non-nil error carries one of the fatal error
// kinds (ErrFork, ErrNamespace, ErrMount, ErrRootSwitch, ErrPrivilege,
// ErrFilter, ErrExec).
func (s *Supervisor) BuildAndLaunch(ctx context.Context, req SandboxRequest, opts ...Option) (*Outcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	confirm := s.cfg.Confirm
	if o.confirmSet {
		confirm = o.confirm
	}

	if confirm != nil {
		ok, err := confirm(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("isolator: confirmation: %w", err)
		}
		if !ok {
			s.logger().Info("sandbox construction declined", "app", req.AppName)
			return &Outcome{Launched: false}, nil
		}
	}

	return spawnFn(s, ctx, req, o.extraEnv)
}

// buildConfig assembles the child's build configuration. Host identity and
// resource locations are resolved here, in the parent, so the child
// performs no host lookups.
func (s *Supervisor) buildConfig(req SandboxRequest, extraEnv []string) *platform.BuildConfig {
	return &platform.BuildConfig{
		AppName:    req.AppName,
		SandboxDir: req.SandboxDir,
		Shares:     append([]string(nil), req.Shares...),
		UID:        os.Getuid(),
		GID:        os.Getgid(),
		HomeDir:    s.cfg.HomeDir,
		RuntimeDir: s.cfg.RuntimeDir,
		ToolPaths:  append([]string(nil), s.cfg.ToolPaths...),
		ExtraEnv:   append([]string(nil), extraEnv...),
	}
}

// decodeFailure parses the status-pipe payload into a BuildError. Empty
// payload means the pipe closed on exec: the application launched.
func decodeFailure(data []byte) *BuildError {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	var report platform.FailureReport
	if err := json.Unmarshal(data, &report); err != nil {
		// A corrupt report still proves the exec never happened.
		return &BuildError{Phase: platform.PhaseUnshared, Message: string(data)}
	}
	return &BuildError{Phase: report.Phase, Message: report.Message}
}

func (s *Supervisor) logger() *slog.Logger {
	if s.cfg.Logger != nil {
		return s.cfg.Logger
	}
	return slog.Default()
}
