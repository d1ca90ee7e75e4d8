// Package linux implements the kernel-facing half of the isolator: the
// namespace clone flags and identity mapping, the mount plan for procfs and
// host shares, the pivot-based root switch, capability bounding-set
// reduction, the no-new-privileges flag, and the seccomp deny-list filter.
//
// All of it runs inside the re-exec child process on a locked OS thread and
// is driven by an explicit state machine; see MaybeSandboxInit.
package linux
