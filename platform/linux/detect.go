//go:build linux

package linux

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// fallbackCapLastCap is used when /proc/sys/kernel/cap_last_cap cannot be
// read (e.g., /proc not mounted). It matches CAP_CHECKPOINT_RESTORE on
// current kernels; dropping a few numbers past the real maximum is harmless,
// stopping short of it is not.
const fallbackCapLastCap = 40

// readCapLastCap is a function variable for reading the kernel's highest
// capability number, overridden in tests.
var readCapLastCap = func() ([]byte, error) {
	return os.ReadFile("/proc/sys/kernel/cap_last_cap")
}

// capLastCap returns the highest capability number the running kernel
// defines, falling back to a conservative constant when the kernel does not
// expose it.
func capLastCap() int {
	data, err := readCapLastCap()
	if err != nil {
		return fallbackCapLastCap
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || n < 0 {
		return fallbackCapLastCap
	}
	return n
}

// KernelVersion represents a parsed Linux kernel version.
type KernelVersion struct {
	Major, Minor, Patch int
}

// readProcVersion is a function variable for reading /proc/version.
// It is overridden in tests to simulate errors.
var readProcVersion = func() ([]byte, error) {
	return os.ReadFile("/proc/version")
}

// DetectKernelVersion reads and parses the running kernel version from /proc/version.
func DetectKernelVersion() (KernelVersion, error) {
	data, err := readProcVersion()
	if err != nil {
		return KernelVersion{}, fmt.Errorf("read /proc/version: %w", err)
	}
	// /proc/version format: "Linux version X.Y.Z-... (...)"
	fields := strings.Fields(string(data))
	if len(fields) < 3 {
		return KernelVersion{}, errors.New("unexpected /proc/version format")
	}
	return ParseKernelVersion(fields[2])
}

// ParseKernelVersion parses a kernel version string like "5.15.0-generic" into
// a KernelVersion. Only the major.minor.patch components are extracted; any
// trailing suffix (e.g., "-generic") is ignored.
func ParseKernelVersion(s string) (KernelVersion, error) {
	// Strip everything after the first hyphen or space.
	if idx := strings.IndexAny(s, "- "); idx != -1 {
		s = s[:idx]
	}
	parts := strings.SplitN(s, ".", 3)
	if len(parts) < 2 {
		return KernelVersion{}, fmt.Errorf("invalid kernel version: %q", s)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return KernelVersion{}, fmt.Errorf("invalid major version in %q: %w", s, err)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return KernelVersion{}, fmt.Errorf("invalid minor version in %q: %w", s, err)
	}

	var patch int
	if len(parts) == 3 && parts[2] != "" {
		patch, err = strconv.Atoi(parts[2])
		if err != nil {
			return KernelVersion{}, fmt.Errorf("invalid patch version in %q: %w", s, err)
		}
	}

	return KernelVersion{Major: major, Minor: minor, Patch: patch}, nil
}

// AtLeast reports whether v is at least major.minor.
func (v KernelVersion) AtLeast(major, minor int) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}

// String returns the version in "major.minor.patch" format.
func (v KernelVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// CheckSupport inspects the running kernel for sandbox prerequisites and
// returns human-readable warnings for anything degraded. Unprivileged user
// namespaces landed in 3.8; older kernels cannot build the sandbox at all.
func CheckSupport() []string {
	var warnings []string
	kv, err := DetectKernelVersion()
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("cannot detect kernel version: %v", err))
		return warnings
	}
	if !kv.AtLeast(3, 8) {
		warnings = append(warnings, fmt.Sprintf("kernel %s < 3.8: user namespaces unavailable", kv))
	}
	return warnings
}
