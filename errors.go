package isolator

import (
	"errors"
	"fmt"

	"github.com/hackeros/isolator/platform"
)

// Sentinel errors returned by the isolator package. Each fatal build
// failure kind has its own sentinel so callers can branch with errors.Is.
var (
	// ErrNamespace indicates namespace creation or identity mapping failed.
	ErrNamespace = errors.New("isolator: namespace setup failed")

	// ErrMount indicates a procfs mount or a recognized-share bind failed.
	ErrMount = errors.New("isolator: mount setup failed")

	// ErrRootSwitch indicates the pivot or old-root detach failed.
	ErrRootSwitch = errors.New("isolator: root switch failed")

	// ErrPrivilege indicates a capability drop or the no-new-privs flag failed.
	ErrPrivilege = errors.New("isolator: privilege reduction failed")

	// ErrFilter indicates the syscall filter could not be built or loaded.
	ErrFilter = errors.New("isolator: syscall filter failed")

	// ErrExec indicates the target binary was not found or not executable.
	ErrExec = errors.New("isolator: application exec failed")

	// ErrFork indicates the sandbox child process could not be created.
	ErrFork = errors.New("isolator: child spawn failed")

	// ErrUnsupportedPlatform indicates the current OS cannot build sandboxes.
	ErrUnsupportedPlatform = errors.New("isolator: unsupported platform")

	// ErrConfigInvalid indicates the provided configuration failed validation.
	ErrConfigInvalid = errors.New("isolator: invalid configuration")

	// ErrRequestInvalid indicates the sandbox request failed validation.
	ErrRequestInvalid = errors.New("isolator: invalid request")
)

// BuildError is returned when the sandbox child reports a construction
// failure. It wraps the sentinel matching the failed phase, so
// errors.Is(err, isolator.ErrMount) and friends still work.
type BuildError struct {
	// Phase names the build phase that failed.
	Phase string

	// Message is the child-side error text.
	Message string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%s (phase %s): %s", e.Unwrap().Error(), e.Phase, e.Message)
}

// Unwrap maps the failed phase to its error kind.
func (e *BuildError) Unwrap() error {
	switch e.Phase {
	case platform.PhaseIdentityMap:
		return ErrNamespace
	case platform.PhaseMounts:
		return ErrMount
	case platform.PhaseRootSwitch:
		return ErrRootSwitch
	case platform.PhaseCapsDropped, platform.PhaseNoNewPrivs:
		return ErrPrivilege
	case platform.PhaseFilterLoaded:
		return ErrFilter
	case platform.PhaseExec:
		return ErrExec
	default:
		// PhaseUnshared covers child-side handshake failures before any
		// isolation work: the child never became a functioning builder.
		return ErrFork
	}
}
