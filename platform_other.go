//go:build !linux

package isolator

// maybeSandboxInit is a no-op off Linux; there is no build child to become.
func maybeSandboxInit() bool {
	return false
}
