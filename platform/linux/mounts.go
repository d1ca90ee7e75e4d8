//go:build linux

package linux

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
	"golang.org/x/sys/unix"

	"github.com/hackeros/isolator/platform"
)

// mountFn is a function variable for the mount syscall, overridden in tests.
var mountFn = unix.Mount

// mountSpec describes one mount operation: a source path on the host, a
// target path relative to the new root, mount flags, and an optional
// filesystem type. Specs are ephemeral — built and consumed in one pass.
type mountSpec struct {
	source string
	target string // relative to the sandbox root
	flags  uintptr
	fstype string

	// env lists KEY=VALUE entries the share contributes to the final exec.
	env []string
}

// prepareMountNamespace readies the new mount namespace for the pivot:
// the mount tree is recursively marked private so nothing propagates back to
// the host, the sandbox root is bind-mounted onto itself (pivot_root
// requires the new root to be a mount point), and a fresh procfs is mounted
// at <root>/proc.
//
// /sys, /dev, and a private /tmp are a known gap carried from the reference
// behavior: callers must not assume they exist inside the sandbox.
func prepareMountNamespace(root string) error {
	if err := mountFn("", "/", "", unix.MS_REC|unix.MS_PRIVATE, ""); err != nil {
		return fmt.Errorf("make mount tree private: %w", err)
	}
	if err := mountFn(root, root, "", unix.MS_BIND, ""); err != nil {
		return fmt.Errorf("bind sandbox root %s: %w", root, err)
	}
	procDir := filepath.Join(root, "proc")
	if err := os.MkdirAll(procDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", procDir, err)
	}
	if err := mountFn("proc", procDir, "proc", 0, ""); err != nil {
		return fmt.Errorf("mount procfs at %s: %w", procDir, err)
	}
	return nil
}

// shareSpecs translates the requested share tokens into mount specs against
// the host resource locations in cfg. Unrecognized tokens are logged and
// skipped: an unknown share is a capability the caller simply does not
// receive, not a build error. The returned specs are in request order.
func shareSpecs(cfg *platform.BuildConfig, logger *slog.Logger) []mountSpec {
	if logger == nil {
		logger = slog.Default()
	}
	var specs []mountSpec
	for _, token := range cfg.Shares {
		kind, ok := platform.ParseShare(token)
		if !ok {
			logger.Warn("unknown share token, skipping", "share", token)
			continue
		}
		switch kind {
		case platform.ShareHome:
			specs = append(specs, mountSpec{
				source: filepath.Join(cfg.HomeDir, "Documents"),
				target: "home/user/Documents",
				flags:  unix.MS_BIND,
			})
		case platform.ShareWayland:
			specs = append(specs, mountSpec{
				source: filepath.Join(cfg.RuntimeDir, "wayland-0"),
				target: "run/wayland-0",
				flags:  unix.MS_BIND,
				env:    []string{"WAYLAND_DISPLAY=wayland-0"},
			})
		case platform.ShareX11:
			specs = append(specs, mountSpec{
				source: "/tmp/.X11-unix",
				target: "tmp/.X11-unix",
				flags:  unix.MS_BIND,
				env:    []string{"DISPLAY=:0"},
			})
		case platform.ShareSound:
			specs = append(specs, mountSpec{
				source: filepath.Join(cfg.RuntimeDir, "pipewire-0"),
				target: "run/pipewire-0",
				flags:  unix.MS_BIND,
			})
		case platform.ShareTools:
			for _, tool := range cfg.ToolPaths {
				specs = append(specs, mountSpec{
					source: tool,
					target: tool[1:], // tool paths are absolute
					flags:  unix.MS_BIND,
				})
			}
		}
	}
	return specs
}

// applyShares performs the bind mounts for every recognized share in cfg and
// returns the environment entries the shares contribute. A bind failure for
// a recognized share is fatal: the requested isolation contract cannot be
// honored silently.
func applyShares(root string, cfg *platform.BuildConfig, logger *slog.Logger) ([]string, error) {
	var env []string
	for _, spec := range shareSpecs(cfg, logger) {
		target, err := securejoin.SecureJoin(root, spec.target)
		if err != nil {
			return nil, fmt.Errorf("resolve share target %s: %w", spec.target, err)
		}
		if err := ensureMountTarget(spec.source, target); err != nil {
			return nil, err
		}
		if err := mountFn(spec.source, target, spec.fstype, spec.flags, ""); err != nil {
			return nil, fmt.Errorf("bind %s to %s: %w", spec.source, target, err)
		}
		env = append(env, spec.env...)
	}
	return env, nil
}

// ensureMountTarget creates the bind target so the mount syscall has
// somewhere to land: a directory for directory sources, an empty file for
// file and socket sources.
func ensureMountTarget(source, target string) error {
	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("stat share source %s: %w", source, err)
	}
	if info.IsDir() {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("create share target %s: %w", target, err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create share target dir for %s: %w", target, err)
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create share target %s: %w", target, err)
	}
	return f.Close()
}
