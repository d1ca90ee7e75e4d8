package platform

// ShareKind identifies a host resource that can be bound into the sandbox.
// The set is closed; unknown textual tokens are rejected where the mount
// plan is built, not at request construction.
type ShareKind string

const (
	// ShareHome binds the invoking user's Documents directory (never the
	// full home directory) to /home/user/Documents inside the sandbox.
	ShareHome ShareKind = "home"

	// ShareWayland binds the host compositor socket to /run/wayland-0 and
	// exports WAYLAND_DISPLAY to the launched application.
	ShareWayland ShareKind = "wayland"

	// ShareX11 binds /tmp/.X11-unix to the same path inside the sandbox
	// and exports DISPLAY to the launched application.
	ShareX11 ShareKind = "x11"

	// ShareSound binds the host audio server socket to /run/pipewire-0.
	ShareSound ShareKind = "sound"

	// ShareTools binds a fixed set of host tool binaries (git by default)
	// to their own paths inside the sandbox.
	ShareTools ShareKind = "tools"
)

// ParseShare maps a textual share token to its ShareKind. The second return
// value reports whether the token is recognized.
func ParseShare(s string) (ShareKind, bool) {
	switch ShareKind(s) {
	case ShareHome, ShareWayland, ShareX11, ShareSound, ShareTools:
		return ShareKind(s), true
	default:
		return "", false
	}
}

// KnownShares returns all recognized share kinds in stable order.
func KnownShares() []ShareKind {
	return []ShareKind{ShareHome, ShareWayland, ShareX11, ShareSound, ShareTools}
}

// BuildConfig is the configuration the supervisor serializes into the config
// pipe for the re-exec child. Host-side identity and resource locations are
// resolved in the parent so the child performs no host lookups of its own.
type BuildConfig struct {
	// AppName is the binary the child execs once the sandbox is built.
	AppName string `json:"app_name"`

	// SandboxDir is the absolute path of the pre-staged sandbox root.
	SandboxDir string `json:"sandbox_dir"`

	// Shares lists the raw share tokens from the request. Unknown tokens
	// are logged and skipped by the mount planner.
	Shares []string `json:"shares,omitempty"`

	// UID and GID are the invoking user's host ids, mapped to 0 inside
	// the new user namespace.
	UID int `json:"uid"`
	GID int `json:"gid"`

	// HomeDir is the invoking user's home directory on the host.
	HomeDir string `json:"home_dir"`

	// RuntimeDir is the invoking user's runtime directory on the host
	// (XDG_RUNTIME_DIR, or /run/user/<uid> when unset). Compositor and
	// audio sockets are resolved against it.
	RuntimeDir string `json:"runtime_dir"`

	// ToolPaths lists host binaries bound into the sandbox for the tools
	// share.
	ToolPaths []string `json:"tool_paths,omitempty"`

	// ExtraEnv holds additional KEY=VALUE entries for the final exec.
	ExtraEnv []string `json:"extra_env,omitempty"`
}

// Build phase names, as reported over the status pipe. Each name identifies
// the phase the child was entering when the failure occurred.
const (
	PhaseUnshared      = "unshared"
	PhaseIdentityMap   = "identity-mapped"
	PhaseMounts        = "mounts-configured"
	PhaseRootSwitch    = "root-switched"
	PhaseCapsDropped   = "capabilities-dropped"
	PhaseNoNewPrivs    = "no-new-privs-set"
	PhaseFilterLoaded  = "filter-loaded"
	PhaseExec          = "exec"
)

// FailureReport is written to the status pipe by the child when a build
// phase fails. On a successful exec the pipe closes empty instead; the
// parent treats EOF-without-data as proof that the application launched.
type FailureReport struct {
	// Phase names the build phase that failed.
	Phase string `json:"phase"`

	// Message is the underlying error text.
	Message string `json:"message"`
}
