//go:build linux

package linux

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// CloneFlags returns the namespace flag set for the sandbox child spawn:
// user, PID, network, mount, UTS, and IPC. The flags are applied in a single
// clone call, so the namespace set is created atomically — either the child
// starts fully isolated or it does not start at all.
func CloneFlags() uintptr {
	// CLONE_NEWIPC (0x08000000) isolates System V IPC.
	// CLONE_NEWUTS (0x04000000) isolates hostname.
	const (
		cloneNewIPC = 0x08000000
		cloneNewUTS = 0x04000000
	)
	flags := syscall.CLONE_NEWUSER | syscall.CLONE_NEWNS | syscall.CLONE_NEWPID |
		syscall.CLONE_NEWNET | cloneNewIPC | cloneNewUTS
	return uintptr(flags)
}

// procSelfDir is the directory holding the user-namespace mapping files.
// Overridden in tests to write into a scratch directory.
var procSelfDir = "/proc/self"

// mapIdentity establishes the single-entry identity mapping for the new user
// namespace: container id 0 maps to the invoking user's host uid/gid with
// count 1. setgroups is denied before gid_map is written, as the kernel
// requires for an unprivileged writer. Failure to write any of the three
// files is fatal — without the mapping, every subsequent mount would be
// refused inside the namespace.
func mapIdentity(uid, gid int) error {
	entries := []struct {
		file    string
		content string
	}{
		{"uid_map", fmt.Sprintf("0 %d 1", uid)},
		{"setgroups", "deny"},
		{"gid_map", fmt.Sprintf("0 %d 1", gid)},
	}
	for _, e := range entries {
		path := filepath.Join(procSelfDir, e.file)
		if err := os.WriteFile(path, []byte(e.content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}
