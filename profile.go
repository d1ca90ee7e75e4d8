package isolator

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// profileNameRegex validates profile/application names used as directory
// names under the isolator dir. Names must start with a letter or digit and
// may contain letters, digits, dots, underscores, or hyphens, up to 64
// characters.
var profileNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,63}$`)

// ValidateProfileName checks that name is usable as a profile directory
// name. Path separators and traversal sequences are rejected outright.
func ValidateProfileName(name string) error {
	if name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}
	if !profileNameRegex.MatchString(name) {
		return fmt.Errorf("invalid profile name %q: must start with a letter or digit and contain only letters, digits, dots, underscores, or hyphens (max 64 characters)", name)
	}
	return nil
}

// ProfileStore manages per-application sandbox profiles under the isolator
// directory: the pre-staged rootfs scaffolds that sandbox construction
// pivots into, and symlink-based links between profiles.
type ProfileStore struct {
	// Dir is the isolator directory, typically ~/.hackeros/isolator.
	Dir string

	// Logger is the structured logger for store operations. If nil,
	// slog.Default() is used.
	Logger *slog.Logger
}

// NewProfileStore returns a ProfileStore rooted at dir.
func NewProfileStore(dir string) *ProfileStore {
	return &ProfileStore{Dir: dir}
}

// Ensure creates the isolator directory if it does not exist.
func (p *ProfileStore) Ensure() error {
	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		return fmt.Errorf("create isolator dir %s: %w", p.Dir, err)
	}
	return nil
}

// RootfsDir resolves the rootfs directory for the named profile. The name
// is validated and securely joined under the store directory so a crafted
// name cannot escape it.
func (p *ProfileStore) RootfsDir(name string) (string, error) {
	if err := ValidateProfileName(name); err != nil {
		return "", err
	}
	dir, err := securejoin.SecureJoin(p.Dir, name)
	if err != nil {
		return "", fmt.Errorf("resolve profile %s: %w", name, err)
	}
	return dir, nil
}

// CreateRootfs scaffolds a minimal rootfs directory for the named profile
// and returns its path. The scaffold is only a directory skeleton
// (usr/bin); staging a real root filesystem image is outside this tool's
// remit and assumed to happen out of band.
func (p *ProfileStore) CreateRootfs(name string) (string, error) {
	dir, err := p.RootfsDir(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Join(dir, "usr", "bin"), 0o755); err != nil {
		return "", fmt.Errorf("scaffold rootfs %s: %w", dir, err)
	}
	p.logger().Debug("rootfs scaffold ready", "profile", name, "dir", dir)
	return dir, nil
}

// Link links the source profile into the target profile by symlinking the
// source rootfs at <target>/linked. The target profile directory is created
// if needed; the source must already exist.
func (p *ProfileStore) Link(source, target string) error {
	srcDir, err := p.RootfsDir(source)
	if err != nil {
		return err
	}
	if _, err := os.Stat(srcDir); err != nil {
		return fmt.Errorf("source profile %s: %w", source, err)
	}
	tgtDir, err := p.RootfsDir(target)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(tgtDir, 0o755); err != nil {
		return fmt.Errorf("create target profile %s: %w", target, err)
	}
	linkPath := filepath.Join(tgtDir, "linked")
	if err := os.Symlink(srcDir, linkPath); err != nil {
		return fmt.Errorf("link %s into %s: %w", source, target, err)
	}
	p.logger().Info("profiles linked", "source", source, "target", target)
	return nil
}

func (p *ProfileStore) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
