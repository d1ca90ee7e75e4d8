//go:build linux

package linux

import (
	"fmt"
	"runtime"
	"syscall"
	"unsafe"
)

// BPF instruction constants for the seccomp filter.
const (
	bpfLD  = 0x00
	bpfJMP = 0x05
	bpfRET = 0x06
	bpfW   = 0x00
	bpfABS = 0x20
	bpfJEQ = 0x10
	bpfK   = 0x00

	// seccomp constants.
	seccompSetModeFilter = 2 // SECCOMP_MODE_FILTER (not SECCOMP_MODE_STRICT which is 1)
	seccompRetAllow      = 0x7fff0000
	seccompRetErrno      = 0x00050000 // SECCOMP_RET_ERRNO
	seccompRetKill       = 0x00000000 // SECCOMP_RET_KILL

	// Audit architecture constants.
	auditArchX86_64  = 0xc000003e
	auditArchAarch64 = 0xc00000b7

	// Offset of the arch field in the seccomp_data struct.
	seccompDataArchOffset = 4
)

// sockFprog is the BPF program structure for seccomp.
type sockFprog struct {
	len    uint16
	_      [6]byte // padding
	filter unsafe.Pointer
}

// sockFilter is a single BPF instruction.
type sockFilter struct {
	code uint16
	jt   uint8
	jf   uint8
	k    uint32
}

// Architecture constants for GOARCH strings.
const (
	archAMD64 = "amd64"
	archARM64 = "arm64"
)

// seccompSyscalls holds architecture-specific syscall numbers for the
// denied operations.
type seccompSyscalls struct {
	auditArch    uint32
	sysPtrace    uint32
	sysMount     uint32
	sysKexecLoad uint32
}

// seccompSyscallsFor returns the syscall numbers for the given GOARCH
// string. Returns an error for unsupported architectures.
func seccompSyscallsFor(goarch string) (seccompSyscalls, error) {
	switch goarch {
	case archAMD64:
		return seccompSyscalls{
			auditArch:    auditArchX86_64,
			sysPtrace:    101,
			sysMount:     165,
			sysKexecLoad: 246,
		}, nil
	case archARM64:
		return seccompSyscalls{
			auditArch:    auditArchAarch64,
			sysPtrace:    117,
			sysMount:     40,
			sysKexecLoad: 104,
		}, nil
	default:
		return seccompSyscalls{}, fmt.Errorf("unsupported architecture for seccomp: %s", goarch)
	}
}

// seccompSyscallsFn is a function variable for syscall lookup, allowing
// tests to override it.
var seccompSyscallsFn = func() (seccompSyscalls, error) {
	return seccompSyscallsFor(runtime.GOARCH)
}

// seccompPrctlFn is a function variable for the prctl syscall used to load
// the filter. Tests override this to avoid irreversible process changes.
var seccompPrctlFn = syscall.Syscall

// buildSeccompFilter constructs the default-allow BPF program. Each denied
// syscall returns EPERM to the caller rather than killing the process; only
// an architecture mismatch kills, since the syscall numbers would be
// meaningless there.
func buildSeccompFilter(sc seccompSyscalls) []sockFilter {
	denied := []uint32{
		sc.sysPtrace,
		sc.sysMount,
		sc.sysKexecLoad,
	}

	n := len(denied)
	// Program layout:
	//   [0]        load arch
	//   [1]        check arch → KILL on mismatch
	//   [2]        load syscall nr
	//   [3..3+n-1] denied syscall checks → EPERM
	//   [3+n]      ALLOW (fall-through default)
	//   [3+n+1]    EPERM
	//   [3+n+2]    KILL
	epermIdx := 3 + n + 1
	killIdx := 3 + n + 2

	filter := make([]sockFilter, 0, n+6)

	// [0] Load architecture.
	filter = append(filter, sockFilter{code: bpfLD | bpfW | bpfABS, k: seccompDataArchOffset})
	// [1] Check arch → KILL on mismatch. Jump offset = killIdx - currentIdx - 1.
	filter = append(filter, sockFilter{code: bpfJMP | bpfJEQ | bpfK, jt: 0, jf: uint8(killIdx - 1 - 1), k: sc.auditArch}) //nolint:gosec
	// [2] Load syscall number.
	filter = append(filter, sockFilter{code: bpfLD | bpfW | bpfABS, k: 0})
	// [3..3+n-1] Denied syscall checks → EPERM.
	for i, nr := range denied {
		idx := 3 + i
		jt := uint8(epermIdx - idx - 1) //nolint:gosec
		filter = append(filter, sockFilter{code: bpfJMP | bpfJEQ | bpfK, jt: jt, jf: 0, k: nr})
	}
	// [3+n] ALLOW — no denied syscall matched.
	filter = append(filter, sockFilter{code: bpfRET | bpfK, k: seccompRetAllow})
	// [3+n+1] EPERM.
	filter = append(filter, sockFilter{code: bpfRET | bpfK, k: seccompRetErrno | uint32(syscall.EPERM)})
	// [3+n+2] KILL — architecture mismatch.
	filter = append(filter, sockFilter{code: bpfRET | bpfK, k: seccompRetKill})

	return filter
}

// loadSeccompFilter builds the deny-list filter and loads it atomically into
// the kernel. Once loaded, the filter cannot be removed or loosened for the
// remaining process lifetime, including across exec. The caller must have
// set no-new-privs first; the kernel rejects the load otherwise.
func loadSeccompFilter() error {
	sc, err := seccompSyscallsFn()
	if err != nil {
		return fmt.Errorf("seccomp: %w", err)
	}

	filter := buildSeccompFilter(sc)

	prog := sockFprog{
		len:    uint16(len(filter)), //nolint:gosec // filter length is bounded by seccomp BPF limits
		filter: unsafe.Pointer(&filter[0]),
	}

	_, _, errno := seccompPrctlFn(
		syscall.SYS_PRCTL,
		syscall.PR_SET_SECCOMP,
		uintptr(seccompSetModeFilter),
		uintptr(unsafe.Pointer(&prog)),
	)
	if errno != 0 {
		return errno
	}

	return nil
}
