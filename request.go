package isolator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hackeros/isolator/platform"
)

// ShareKind identifies a host resource that can be bound into the sandbox.
// It is an alias for platform.ShareKind.
type ShareKind = platform.ShareKind

// Recognized share kinds, re-exported for callers of the top-level package.
const (
	ShareHome    = platform.ShareHome
	ShareWayland = platform.ShareWayland
	ShareX11     = platform.ShareX11
	ShareSound   = platform.ShareSound
	ShareTools   = platform.ShareTools
)

// ParseShare maps a textual share token to its ShareKind. The second return
// value reports whether the token is recognized.
func ParseShare(s string) (ShareKind, bool) {
	return platform.ParseShare(s)
}

// SandboxRequest describes one sandbox construction: which application to
// launch, which host resources to grant, and where the pre-staged sandbox
// root lives. The request is caller-owned and passed by value; share order
// is irrelevant, and unknown share tokens are deliberately not rejected
// here — they are logged and skipped when the mount plan is built.
type SandboxRequest struct {
	// AppName is the application binary, resolved by name at exec time.
	AppName string

	// Shares lists the requested share tokens (e.g. "home", "x11").
	Shares []string

	// SandboxDir is the absolute path of the sandbox root directory. It
	// must exist and be writable before construction begins.
	SandboxDir string
}

// Validate checks the request. The returned error wraps ErrRequestInvalid.
func (r SandboxRequest) Validate() error {
	var errs []string

	if strings.TrimSpace(r.AppName) == "" {
		errs = append(errs, "AppName: must not be empty")
	}
	if r.SandboxDir == "" {
		errs = append(errs, "SandboxDir: must not be empty")
	} else if !filepath.IsAbs(r.SandboxDir) {
		errs = append(errs, fmt.Sprintf("SandboxDir: %q must be an absolute path", r.SandboxDir))
	} else if err := checkWritableDir(r.SandboxDir); err != nil {
		errs = append(errs, fmt.Sprintf("SandboxDir: %v", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrRequestInvalid, strings.Join(errs, "; "))
	}
	return nil
}

// checkWritableDir verifies dir exists, is a directory, and is writable by
// the invoking user. Writability is probed with a scratch file rather than
// permission-bit arithmetic, which would miss ACLs and read-only mounts.
func checkWritableDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory", dir)
	}
	probe, err := os.CreateTemp(dir, ".isolator-probe-*")
	if err != nil {
		return fmt.Errorf("%q is not writable: %v", dir, err)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	return nil
}

// Outcome is the supervisor-observed result of a sandbox construction.
type Outcome struct {
	// Launched reports whether the child was spawned at all. It is false
	// when the pre-flight confirmation was declined, which is a normal
	// early return with no side effects.
	Launched bool

	// ExitCode is the application's exit code, valid when Signal is zero.
	ExitCode int

	// Signal is the number of the signal that terminated the application,
	// or zero if it exited normally.
	Signal int
}
