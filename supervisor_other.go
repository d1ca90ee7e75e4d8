//go:build !linux

package isolator

import "context"

// spawnAndWait is the non-Linux stub: namespaces, pivot_root, and seccomp
// are Linux-only, so sandbox construction is unsupported elsewhere.
func (s *Supervisor) spawnAndWait(_ context.Context, _ SandboxRequest, _ []string) (*Outcome, error) {
	return nil, ErrUnsupportedPlatform
}
