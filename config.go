package isolator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// ConfirmCallback is the pre-flight confirmation hook. It runs before any
// isolation state is created, so declining is always cost-free: the
// supervisor returns success with zero side effects and no child process.
type ConfirmCallback func(ctx context.Context, req SandboxRequest) (bool, error)

// Config holds the supervisor configuration: where profiles live, where
// host resources for shares are found, and the ambient hooks.
type Config struct {
	// IsolatorDir is the root of the per-application profile store,
	// typically ~/.hackeros/isolator.
	IsolatorDir string

	// HomeDir is the invoking user's home directory. The home share binds
	// its Documents subdirectory, never the directory itself.
	HomeDir string

	// RuntimeDir is the invoking user's runtime directory, where the
	// compositor and audio sockets are found. Defaults to XDG_RUNTIME_DIR,
	// falling back to /run/user/<uid>.
	RuntimeDir string

	// ToolPaths lists host binaries bound into the sandbox by the tools
	// share.
	ToolPaths []string

	// Logger is the structured logger for operational messages. If nil,
	// slog.Default() is used.
	Logger *slog.Logger

	// Confirm is the default pre-flight confirmation hook. If nil and no
	// per-call hook is supplied, construction proceeds unprompted.
	Confirm ConfirmCallback
}

// DefaultConfig returns a Config resolved from the invoking user's
// environment. If the home directory cannot be determined, os.TempDir() is
// used as a fallback root.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir() // fallback
	}

	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		runtimeDir = fmt.Sprintf("/run/user/%d", os.Getuid())
	}

	return &Config{
		IsolatorDir: filepath.Join(home, ".hackeros", "isolator"),
		HomeDir:     home,
		RuntimeDir:  runtimeDir,
		ToolPaths:   []string{"/usr/bin/git"},
	}
}

// fileConfig is the on-disk TOML schema. Only set fields override the
// in-memory configuration.
type fileConfig struct {
	IsolatorDir string   `toml:"isolator_dir"`
	RuntimeDir  string   `toml:"runtime_dir"`
	ToolPaths   []string `toml:"tool_paths"`
}

// ConfigFileName is the well-known configuration file name inside
// IsolatorDir.
const ConfigFileName = "config.toml"

// LoadFile overlays c with settings from the TOML file at path. A missing
// file is not an error; a malformed one is.
func (c *Config) LoadFile(path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: %s: %v", ErrConfigInvalid, path, err)
	}
	if fc.IsolatorDir != "" {
		c.IsolatorDir = fc.IsolatorDir
	}
	if fc.RuntimeDir != "" {
		c.RuntimeDir = fc.RuntimeDir
	}
	if len(fc.ToolPaths) > 0 {
		c.ToolPaths = append([]string(nil), fc.ToolPaths...)
	}
	return nil
}

// Validate checks the configuration for errors and returns a descriptive
// error if any field is invalid. The returned error wraps ErrConfigInvalid.
func (c *Config) Validate() error {
	var errs []string

	for name, dir := range map[string]string{
		"IsolatorDir": c.IsolatorDir,
		"HomeDir":     c.HomeDir,
		"RuntimeDir":  c.RuntimeDir,
	} {
		if dir == "" {
			errs = append(errs, name+": must not be empty")
		} else if !filepath.IsAbs(dir) {
			errs = append(errs, fmt.Sprintf("%s: %q must be an absolute path", name, dir))
		}
	}

	for i, tool := range c.ToolPaths {
		if !filepath.IsAbs(tool) {
			errs = append(errs, fmt.Sprintf("ToolPaths[%d]: %q must be an absolute path", i, tool))
		}
	}

	if len(errs) > 0 {
		// Sort for deterministic messages; map iteration order varies.
		return fmt.Errorf("%w: %s", ErrConfigInvalid, strings.Join(sortedStrings(errs), "; "))
	}
	return nil
}

// deepCopyConfig returns a copy of cfg with slice fields deep-copied to
// prevent aliasing. Logger and Confirm are shared by reference
// intentionally.
func deepCopyConfig(cfg *Config) Config {
	cfgCopy := *cfg
	cfgCopy.ToolPaths = append([]string(nil), cfg.ToolPaths...)
	return cfgCopy
}

// sortedStrings returns a sorted copy of s.
func sortedStrings(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}
