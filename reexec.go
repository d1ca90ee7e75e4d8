package isolator

// MaybeSandboxInit checks if the current process was re-executed as the
// sandbox build child. On Linux, this checks for the internal config-pipe
// environment marker; on other platforms it is a no-op that returns false.
//
// Call this at the very beginning of main() before any other
// initialization:
//
//	func main() {
//	    if isolator.MaybeSandboxInit() {
//	        return
//	    }
//	    // ... rest of main
//	}
func MaybeSandboxInit() bool {
	return maybeSandboxInit()
}
