// Package isolator constructs confined execution environments for single
// applications on Linux: a child process in its own namespaces, with a
// restricted filesystem root, selected host resources bound in, an empty
// capability bounding set, and a seccomp syscall filter, ending in the
// replacement of the child's process image by the target application.
//
// Key properties:
//   - One atomic clone creates the full namespace set (user, PID, net,
//     mount, UTS, IPC); partial unsharing cannot occur
//   - Host resources are granted per share token (home, wayland, x11,
//     sound, tools); unknown tokens are skipped, never fatal
//   - Construction is a strict, non-retryable phase sequence enforced by a
//     state machine; any failure terminates the child
//   - No CGo; seccomp filters are built as raw BPF
//
// Basic usage:
//
//	func main() {
//	    if isolator.MaybeSandboxInit() {
//	        return
//	    }
//	    sup, err := isolator.NewSupervisor(isolator.DefaultConfig())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    outcome, err := sup.BuildAndLaunch(ctx, isolator.SandboxRequest{
//	        AppName:    "app1",
//	        Shares:     []string{"home", "x11"},
//	        SandboxDir: "/home/user/.hackeros/isolator/app1",
//	    })
//	}
package isolator
