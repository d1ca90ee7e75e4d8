//go:build linux

package linux

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// oldRootName is the in-sandbox holder directory the previous root is
// relocated into during the pivot, and detached from afterwards.
const oldRootName = "old_root"

// Function variables for the root-switch syscalls, overridden in tests.
var (
	chdirFn     = unix.Chdir
	pivotRootFn = unix.PivotRoot
	unmountFn   = unix.Unmount
	removeFn    = os.Remove
)

// switchRoot exchanges the process root filesystem for the sandbox root.
// The sequence is: enter the new root, pivot (relocating the old root under
// oldRootName), detach the old root lazily, remove the holder, and finally
// bind-remount /usr read-only so system binaries cannot be modified from
// inside the sandbox.
//
// The lazy unmount succeeds even while the old root is busy; the kernel
// completes the teardown once the last reference drops. After it returns,
// no path inside the sandbox resolves to the pre-switch root.
func switchRoot(root string) error {
	if err := chdirFn(root); err != nil {
		return fmt.Errorf("chdir %s: %w", root, err)
	}
	if err := os.MkdirAll(filepath.Join(root, oldRootName), 0o700); err != nil {
		return fmt.Errorf("create %s holder: %w", oldRootName, err)
	}
	if err := pivotRootFn(".", oldRootName); err != nil {
		return fmt.Errorf("pivot_root: %w", err)
	}
	if err := chdirFn("/"); err != nil {
		return fmt.Errorf("chdir new root: %w", err)
	}
	if err := unmountFn("/"+oldRootName, unix.MNT_DETACH); err != nil {
		return fmt.Errorf("detach old root: %w", err)
	}
	if err := removeFn("/" + oldRootName); err != nil {
		return fmt.Errorf("remove %s holder: %w", oldRootName, err)
	}
	if err := mountFn("/usr", "/usr", "", unix.MS_BIND|unix.MS_REMOUNT|unix.MS_RDONLY, ""); err != nil {
		return fmt.Errorf("remount /usr read-only: %w", err)
	}
	return nil
}
