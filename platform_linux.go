package isolator

import "github.com/hackeros/isolator/platform/linux"

// maybeSandboxInit delegates to the Linux build-child entry point.
func maybeSandboxInit() bool {
	return linux.MaybeSandboxInit()
}
