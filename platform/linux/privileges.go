//go:build linux

package linux

import (
	"fmt"
	"syscall"
)

// prctl constants not available in all Go syscall packages.
const (
	prCapBSetDrop   = 24 // PR_CAPBSET_DROP
	prSetNoNewPrivs = 38 // PR_SET_NO_NEW_PRIVS
)

// prctlFunc is a function variable for the prctl syscall, overridden in tests.
var prctlFunc = func(option, arg2, arg3, arg4, arg5, arg6 uintptr) (uintptr, uintptr, syscall.Errno) {
	return syscall.Syscall6(syscall.SYS_PRCTL, option, arg2, arg3, arg4, arg5, arg6)
}

// dropBoundingSet removes every capability the running kernel defines from
// the process bounding set. The upper bound is the kernel-reported maximum
// (see capLastCap), not a hardcoded constant, so kernels with more or fewer
// capabilities are neither under- nor over-dropped. Any single drop failure
// is fatal: a retained capability is a security hole, not a degraded
// feature.
func dropBoundingSet() error {
	last := capLastCap()
	for cap := 0; cap <= last; cap++ {
		if _, _, errno := prctlFunc(prCapBSetDrop, uintptr(cap), 0, 0, 0, 0); errno != 0 {
			return fmt.Errorf("prctl(PR_CAPBSET_DROP, %d): %w", cap, errno)
		}
	}
	return nil
}

// setNoNewPrivs sets the no-new-privileges flag. It must run before the
// seccomp filter is loaded: without it a set-id exec could regain the
// privileges the filter is meant to confine.
func setNoNewPrivs() error {
	if _, _, errno := prctlFunc(prSetNoNewPrivs, 1, 0, 0, 0, 0); errno != 0 {
		return fmt.Errorf("prctl(PR_SET_NO_NEW_PRIVS): %w", errno)
	}
	return nil
}
