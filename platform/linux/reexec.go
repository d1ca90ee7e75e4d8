//go:build linux

package linux

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/hackeros/isolator/platform"
)

// Environment variables that signal the process is the re-exec sandbox
// child. Their values are the file descriptor numbers of the config pipe
// (read side, carrying the serialized BuildConfig) and the status pipe
// (write side, carrying a FailureReport if construction fails).
const (
	ConfigFdEnv = "_ISOLATOR_CONFIG"
	StatusFdEnv = "_ISOLATOR_STATUS"
)

// osExitFn is a function variable for os.Exit, overridden in tests.
var osExitFn = os.Exit

// MaybeSandboxInit checks if the current process was spawned as the sandbox
// build child. If so, it runs the construction sequence and never returns
// (the process either execs the application or exits non-zero). If not, it
// returns false and the caller continues as the supervisor.
func MaybeSandboxInit() bool {
	cfgFd := os.Getenv(ConfigFdEnv)
	if cfgFd == "" {
		return false
	}

	code := sandboxInit(cfgFd, os.Getenv(StatusFdEnv))
	osExitFn(code)
	return true // unreachable, but satisfies the compiler
}

// sandboxInit is the child-side entry point: it reads the build
// configuration, runs the state machine, and reports any failure back to
// the supervisor over the status pipe.
func sandboxInit(cfgFdStr, statusFdStr string) int {
	// Lock the OS thread: prctl and seccomp are per-thread operations.
	// This is the re-exec child, so we lock and never unlock — the process
	// will exec or exit.
	runtime.LockOSThread()

	statusFile := openStatusPipe(statusFdStr)

	cfgFd, err := strconv.Atoi(cfgFdStr)
	if err != nil {
		return failBuild(statusFile, platform.PhaseUnshared, fmt.Errorf("invalid config fd %q: %v", cfgFdStr, err))
	}
	configFile := os.NewFile(uintptr(cfgFd), "config-pipe")
	if configFile == nil {
		return failBuild(statusFile, platform.PhaseUnshared, fmt.Errorf("cannot open config fd %d", cfgFd))
	}

	var cfg platform.BuildConfig
	if err := json.NewDecoder(configFile).Decode(&cfg); err != nil {
		return failBuild(statusFile, platform.PhaseUnshared, fmt.Errorf("decode build config: %v", err))
	}
	_ = configFile.Close()

	// Clear the markers so the exec'd application does not re-enter init.
	_ = os.Unsetenv(ConfigFdEnv)
	_ = os.Unsetenv(StatusFdEnv)

	b := newBuilder(&cfg, slog.Default())
	err = b.run()
	// run only returns on failure; success replaced the process image.
	if err == nil {
		err = errors.New("exec returned without replacing process image")
	}
	var pe *phaseError
	if errors.As(err, &pe) {
		return failBuild(statusFile, pe.phase.String(), pe.err)
	}
	return failBuild(statusFile, b.phase.String(), err)
}

// openStatusPipe wraps the status fd and marks it close-on-exec, so a
// successful exec closes it and the supervisor observes a clean EOF.
func openStatusPipe(fdStr string) *os.File {
	fd, err := strconv.Atoi(fdStr)
	if err != nil {
		return nil
	}
	f := os.NewFile(uintptr(fd), "status-pipe")
	if f == nil {
		return nil
	}
	if _, err := unix.FcntlInt(f.Fd(), unix.F_SETFD, unix.FD_CLOEXEC); err != nil {
		fmt.Fprintf(os.Stderr, "isolator: cloexec status pipe: %v\n", err)
	}
	return f
}

// failBuild reports a construction failure to the supervisor and to stderr,
// and returns the child's exit code.
func failBuild(status *os.File, phase string, err error) int {
	fmt.Fprintf(os.Stderr, "isolator: %s: %v\n", phase, err)
	if status != nil {
		_ = json.NewEncoder(status).Encode(platform.FailureReport{
			Phase:   phase,
			Message: err.Error(),
		})
		_ = status.Close()
	}
	return 1
}
