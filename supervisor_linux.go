package isolator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/hackeros/isolator/platform/linux"
)

// procSelfExe is the kernel's handle to the running binary, re-executed as
// the sandbox build child.
const procSelfExe = "/proc/self/exe"

// spawnAndWait spawns the sandbox build child and blocks until it
// terminates. The clone that creates the child carries the full namespace
// flag set, so namespace creation is atomic: either the child starts fully
// isolated or it does not start at all.
//
// Two pipes connect the processes: the config pipe (child fd 3) carries the
// serialized build configuration in, and the status pipe (child fd 4,
// close-on-exec in the child) carries a failure report back. A clean EOF on
// the status pipe proves the exec happened, after which the child's exit
// status is the application's.
func (s *Supervisor) spawnAndWait(_ context.Context, req SandboxRequest, extraEnv []string) (*Outcome, error) {
	for _, w := range linux.CheckSupport() {
		s.logger().Warn("kernel support check", "warning", w)
	}

	cfgRead, cfgWrite, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("%w: config pipe: %v", ErrFork, err)
	}
	statusRead, statusWrite, err := os.Pipe()
	if err != nil {
		cfgRead.Close()
		cfgWrite.Close()
		return nil, fmt.Errorf("%w: status pipe: %v", ErrFork, err)
	}

	cmd := exec.Command(procSelfExe)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	// ExtraFiles[0] becomes fd 3 in the child, ExtraFiles[1] fd 4.
	cmd.ExtraFiles = []*os.File{cfgRead, statusWrite}
	cmd.Env = append(os.Environ(),
		linux.ConfigFdEnv+"=3",
		linux.StatusFdEnv+"=4",
	)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Cloneflags: linux.CloneFlags(),
	}

	if err := cmd.Start(); err != nil {
		cfgRead.Close()
		cfgWrite.Close()
		statusRead.Close()
		statusWrite.Close()
		return nil, fmt.Errorf("%w: %v", ErrFork, err)
	}
	s.logger().Debug("sandbox child spawned", "pid", cmd.Process.Pid, "app", req.AppName)

	// The parent's copies of the child-held ends must close so that EOF
	// propagates.
	cfgRead.Close()
	statusWrite.Close()

	if err := json.NewEncoder(cfgWrite).Encode(s.buildConfig(req, extraEnv)); err != nil {
		cfgWrite.Close()
		statusRead.Close()
		_ = cmd.Wait()
		return nil, fmt.Errorf("%w: send build config: %v", ErrFork, err)
	}
	cfgWrite.Close()

	// Blocks until the child execs (CLOEXEC closes the pipe) or dies.
	payload, readErr := io.ReadAll(statusRead)
	statusRead.Close()

	waitErr := cmd.Wait()

	if readErr != nil {
		return nil, fmt.Errorf("%w: read status pipe: %v", ErrFork, readErr)
	}
	if buildErr := decodeFailure(payload); buildErr != nil {
		return nil, buildErr
	}

	return outcomeFromWait(waitErr)
}

// outcomeFromWait translates the child's wait status into an Outcome. A
// non-zero application exit is an outcome, not a Go error.
func outcomeFromWait(waitErr error) (*Outcome, error) {
	if waitErr == nil {
		return &Outcome{Launched: true}, nil
	}
	var exitErr *exec.ExitError
	if !errors.As(waitErr, &exitErr) {
		return nil, fmt.Errorf("%w: wait: %v", ErrFork, waitErr)
	}
	ws, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok {
		return &Outcome{Launched: true, ExitCode: exitErr.ExitCode()}, nil
	}
	if ws.Signaled() {
		return &Outcome{Launched: true, Signal: int(ws.Signal())}, nil
	}
	return &Outcome{Launched: true, ExitCode: ws.ExitStatus()}, nil
}
