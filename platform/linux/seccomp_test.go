//go:build linux

package linux

import (
	"syscall"
	"testing"
)

func TestSeccompSyscallsFor(t *testing.T) {
	tests := []struct {
		goarch string
		want   seccompSyscalls
	}{
		{"amd64", seccompSyscalls{auditArch: auditArchX86_64, sysPtrace: 101, sysMount: 165, sysKexecLoad: 246}},
		{"arm64", seccompSyscalls{auditArch: auditArchAarch64, sysPtrace: 117, sysMount: 40, sysKexecLoad: 104}},
	}

	for _, tt := range tests {
		t.Run(tt.goarch, func(t *testing.T) {
			got, err := seccompSyscallsFor(tt.goarch)
			if err != nil {
				t.Fatalf("seccompSyscallsFor(%q) error: %v", tt.goarch, err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSeccompSyscallsForUnsupportedArch(t *testing.T) {
	if _, err := seccompSyscallsFor("riscv64"); err == nil {
		t.Fatal("expected error for unsupported architecture")
	}
}

// evalFilter interprets the BPF program against a (arch, nr) pair and
// returns the seccomp action it reaches. Only the instruction subset the
// builder emits is supported.
func evalFilter(t *testing.T, filter []sockFilter, arch, nr uint32) uint32 {
	t.Helper()
	var acc uint32
	for pc := 0; pc < len(filter); pc++ {
		ins := filter[pc]
		switch ins.code {
		case bpfLD | bpfW | bpfABS:
			switch ins.k {
			case 0:
				acc = nr
			case seccompDataArchOffset:
				acc = arch
			default:
				t.Fatalf("load from unexpected offset %d", ins.k)
			}
		case bpfJMP | bpfJEQ | bpfK:
			if acc == ins.k {
				pc += int(ins.jt)
			} else {
				pc += int(ins.jf)
			}
		case bpfRET | bpfK:
			return ins.k
		default:
			t.Fatalf("unexpected BPF opcode %#x at %d", ins.code, pc)
		}
	}
	t.Fatal("filter fell off the end")
	return 0
}

func TestSeccompFilterDecisions(t *testing.T) {
	sc, err := seccompSyscallsFor("amd64")
	if err != nil {
		t.Fatal(err)
	}
	filter := buildSeccompFilter(sc)

	eperm := uint32(seccompRetErrno | uint32(syscall.EPERM))

	tests := []struct {
		name string
		arch uint32
		nr   uint32
		want uint32
	}{
		{"ptrace denied", sc.auditArch, sc.sysPtrace, eperm},
		{"mount denied", sc.auditArch, sc.sysMount, eperm},
		{"kexec_load denied", sc.auditArch, sc.sysKexecLoad, eperm},
		{"read allowed", sc.auditArch, 0, seccompRetAllow},
		{"execve allowed", sc.auditArch, 59, seccompRetAllow},
		{"openat allowed", sc.auditArch, 257, seccompRetAllow},
		{"arch mismatch killed", auditArchAarch64, 0, seccompRetKill},
		{"arch mismatch denied syscall killed", auditArchAarch64, sc.sysPtrace, seccompRetKill},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evalFilter(t, filter, tt.arch, tt.nr); got != tt.want {
				t.Errorf("got action %#x, want %#x", got, tt.want)
			}
		})
	}
}

func TestSeccompFilterLayout(t *testing.T) {
	sc, err := seccompSyscallsFor("amd64")
	if err != nil {
		t.Fatal(err)
	}
	filter := buildSeccompFilter(sc)

	// 3 denied syscalls plus the 6 fixed instructions.
	if len(filter) != 9 {
		t.Fatalf("got %d instructions, want 9", len(filter))
	}
	// The arch check must come before any syscall-number comparison.
	if filter[0].code != bpfLD|bpfW|bpfABS || filter[0].k != seccompDataArchOffset {
		t.Errorf("instruction 0 should load the arch field, got %+v", filter[0])
	}
	if filter[1].code != bpfJMP|bpfJEQ|bpfK || filter[1].k != sc.auditArch {
		t.Errorf("instruction 1 should compare the arch, got %+v", filter[1])
	}
	// The last instruction is the arch-mismatch kill.
	if last := filter[len(filter)-1]; last.code != bpfRET|bpfK || last.k != seccompRetKill {
		t.Errorf("final instruction should be RET KILL, got %+v", last)
	}
}

func TestLoadSeccompFilter(t *testing.T) {
	origSys := seccompSyscallsFn
	seccompSyscallsFn = func() (seccompSyscalls, error) { return seccompSyscallsFor("amd64") }
	t.Cleanup(func() { seccompSyscallsFn = origSys })

	var gotTrap, gotOp, gotMode uintptr
	origPrctl := seccompPrctlFn
	seccompPrctlFn = func(trap, a1, a2, a3 uintptr) (uintptr, uintptr, syscall.Errno) {
		gotTrap, gotOp, gotMode = trap, a1, a2
		if a3 == 0 {
			t.Error("filter program pointer must not be nil")
		}
		return 0, 0, 0
	}
	t.Cleanup(func() { seccompPrctlFn = origPrctl })

	if err := loadSeccompFilter(); err != nil {
		t.Fatalf("loadSeccompFilter() error: %v", err)
	}
	if gotTrap != syscall.SYS_PRCTL {
		t.Errorf("trap: got %d, want SYS_PRCTL", gotTrap)
	}
	if gotOp != syscall.PR_SET_SECCOMP {
		t.Errorf("option: got %d, want PR_SET_SECCOMP", gotOp)
	}
	if gotMode != seccompSetModeFilter {
		t.Errorf("mode: got %d, want SECCOMP_MODE_FILTER", gotMode)
	}
}

func TestLoadSeccompFilterPrctlFailure(t *testing.T) {
	origSys := seccompSyscallsFn
	seccompSyscallsFn = func() (seccompSyscalls, error) { return seccompSyscallsFor("amd64") }
	t.Cleanup(func() { seccompSyscallsFn = origSys })

	origPrctl := seccompPrctlFn
	seccompPrctlFn = func(trap, a1, a2, a3 uintptr) (uintptr, uintptr, syscall.Errno) {
		return 0, 0, syscall.EINVAL
	}
	t.Cleanup(func() { seccompPrctlFn = origPrctl })

	if err := loadSeccompFilter(); err == nil {
		t.Fatal("expected error when the kernel rejects the filter")
	}
}

func TestLoadSeccompFilterUnsupportedArch(t *testing.T) {
	orig := seccompSyscallsFn
	seccompSyscallsFn = func() (seccompSyscalls, error) { return seccompSyscallsFor("riscv64") }
	t.Cleanup(func() { seccompSyscallsFn = orig })

	if err := loadSeccompFilter(); err == nil {
		t.Fatal("expected error for unsupported architecture")
	}
}
