//go:build linux

package linux

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"

	"github.com/hackeros/isolator/internal/envutil"
	"github.com/hackeros/isolator/platform"
)

// Function variables for the build steps, overridden in tests.
var (
	mapIdentityFn   = mapIdentity
	prepareMountsFn = prepareMountNamespace
	applySharesFn   = applyShares
	switchRootFn    = switchRoot
	dropCapsFn      = dropBoundingSet
	noNewPrivsFn    = setNoNewPrivs
	loadFilterFn    = loadSeccompFilter
	lookPathFn      = exec.LookPath
	execFn          = unix.Exec
)

// buildPhase is the child's position in the sandbox construction sequence.
// The sequence is a strict total order: each phase's postcondition is the
// next phase's precondition, and the builder refuses any transition that is
// not exactly one step forward.
type buildPhase int

const (
	// phaseUnshared holds at child entry: the clone that spawned this
	// process already placed it in the full namespace set.
	phaseUnshared buildPhase = iota
	phaseIdentityMapped
	phaseMountsConfigured
	phaseRootSwitched
	phaseCapabilitiesDropped
	phaseNoNewPrivsSet
	phaseFilterLoaded
	phaseExeced
)

// String returns the wire name of the phase, as reported to the supervisor.
func (p buildPhase) String() string {
	switch p {
	case phaseUnshared:
		return platform.PhaseUnshared
	case phaseIdentityMapped:
		return platform.PhaseIdentityMap
	case phaseMountsConfigured:
		return platform.PhaseMounts
	case phaseRootSwitched:
		return platform.PhaseRootSwitch
	case phaseCapabilitiesDropped:
		return platform.PhaseCapsDropped
	case phaseNoNewPrivsSet:
		return platform.PhaseNoNewPrivs
	case phaseFilterLoaded:
		return platform.PhaseFilterLoaded
	case phaseExeced:
		return platform.PhaseExec
	default:
		return "unknown"
	}
}

// phaseError wraps a build step failure with the phase that was being
// entered. The supervisor maps the phase name back to an error kind.
type phaseError struct {
	phase buildPhase
	err   error
}

func (e *phaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.phase, e.err)
}

func (e *phaseError) Unwrap() error {
	return e.err
}

// builder drives the sandbox construction state machine inside the child
// process. There is no retry or rollback: any step failure leaves the
// builder in its last good phase and the process exits, taking the
// partially constructed isolation state with it.
type builder struct {
	cfg    *platform.BuildConfig
	logger *slog.Logger
	phase  buildPhase

	// shareEnv holds the environment entries contributed by applied
	// shares, threaded explicitly into the final exec.
	shareEnv []string
}

func newBuilder(cfg *platform.BuildConfig, logger *slog.Logger) *builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &builder{cfg: cfg, logger: logger, phase: phaseUnshared}
}

// advance runs op as the transition into next. A transition that is not
// exactly one phase forward is rejected before op runs, so a misordered
// construction sequence fails at the state machine rather than at the
// kernel.
func (b *builder) advance(next buildPhase, op func() error) error {
	if next != b.phase+1 {
		return fmt.Errorf("illegal build transition %s -> %s", b.phase, next)
	}
	if err := op(); err != nil {
		return &phaseError{phase: next, err: err}
	}
	b.phase = next
	return nil
}

// run executes the full construction sequence. On success it never returns:
// the final transition replaces the process image with the target
// application.
func (b *builder) run() error {
	steps := []struct {
		next buildPhase
		op   func() error
	}{
		{phaseIdentityMapped, func() error { return mapIdentityFn(b.cfg.UID, b.cfg.GID) }},
		{phaseMountsConfigured, b.configureMounts},
		{phaseRootSwitched, func() error { return switchRootFn(b.cfg.SandboxDir) }},
		{phaseCapabilitiesDropped, func() error { return dropCapsFn() }},
		{phaseNoNewPrivsSet, func() error { return noNewPrivsFn() }},
		{phaseFilterLoaded, func() error { return loadFilterFn() }},
		{phaseExeced, b.execApplication},
	}
	for _, s := range steps {
		if err := b.advance(s.next, s.op); err != nil {
			return err
		}
	}
	return nil
}

// configureMounts prepares the new mount namespace and binds the requested
// shares into the sandbox root.
func (b *builder) configureMounts() error {
	if err := prepareMountsFn(b.cfg.SandboxDir); err != nil {
		return err
	}
	env, err := applySharesFn(b.cfg.SandboxDir, b.cfg, b.logger)
	if err != nil {
		return err
	}
	b.shareEnv = env
	return nil
}

// execApplication resolves the application binary by name and replaces the
// process image. The environment is the inherited one plus the entries the
// shares contributed and any caller-supplied extras; no arguments are
// passed.
func (b *builder) execApplication() error {
	path, err := lookPathFn(b.cfg.AppName)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", b.cfg.AppName, err)
	}
	extra := append(append([]string(nil), b.shareEnv...), b.cfg.ExtraEnv...)
	env := envutil.MergeEnv(os.Environ(), extra)
	if err := execFn(path, []string{b.cfg.AppName}, env); err != nil {
		return fmt.Errorf("exec %s: %w", path, err)
	}
	return nil
}
