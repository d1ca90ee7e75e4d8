//go:build linux

package linux

import (
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
)

func TestCloneFlagsIncludeAllNamespaces(t *testing.T) {
	flags := CloneFlags()

	wanted := []struct {
		name string
		flag uintptr
	}{
		{"CLONE_NEWUSER", syscall.CLONE_NEWUSER},
		{"CLONE_NEWNS", syscall.CLONE_NEWNS},
		{"CLONE_NEWPID", syscall.CLONE_NEWPID},
		{"CLONE_NEWNET", syscall.CLONE_NEWNET},
		{"CLONE_NEWIPC", 0x08000000},
		{"CLONE_NEWUTS", 0x04000000},
	}

	for _, w := range wanted {
		if flags&w.flag == 0 {
			t.Errorf("CloneFlags() missing %s", w.name)
		}
	}
}

func TestMapIdentityWritesMappingFiles(t *testing.T) {
	dir := t.TempDir()
	orig := procSelfDir
	procSelfDir = dir
	t.Cleanup(func() { procSelfDir = orig })

	if err := mapIdentity(1000, 1001); err != nil {
		t.Fatalf("mapIdentity() error: %v", err)
	}

	tests := []struct {
		file string
		want string
	}{
		{"uid_map", "0 1000 1"},
		{"setgroups", "deny"},
		{"gid_map", "0 1001 1"},
	}

	for _, tt := range tests {
		data, err := os.ReadFile(filepath.Join(dir, tt.file))
		if err != nil {
			t.Fatalf("read %s: %v", tt.file, err)
		}
		if got := string(data); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.file, got, tt.want)
		}
	}
}

func TestMapIdentityWriteFailure(t *testing.T) {
	orig := procSelfDir
	procSelfDir = filepath.Join(t.TempDir(), "does-not-exist")
	t.Cleanup(func() { procSelfDir = orig })

	err := mapIdentity(1000, 1000)
	if err == nil {
		t.Fatal("expected error when mapping files cannot be written")
	}
	// The uid_map write fails first, so the error should name it.
	if !strings.Contains(err.Error(), "uid_map") {
		t.Errorf("error should name uid_map, got: %v", err)
	}
}
