package inventory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func writeExecutable(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}
}

func TestScanKeepsOnlyZeroExit(t *testing.T) {
	dir := t.TempDir()
	writeExecutable(t, filepath.Join(dir, "good"), "#!/bin/sh\nexit 0\n")
	writeExecutable(t, filepath.Join(dir, "bad"), "#!/bin/sh\nexit 1\n")
	writeExecutable(t, filepath.Join(dir, ".hidden"), "#!/bin/sh\nexit 0\n")

	found, err := Scan(context.Background(), dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(found) != 1 || filepath.Base(found[0]) != "good" {
		t.Fatalf("found = %v, want [.../good]", found)
	}
}

func TestScanMissingDirectoryIsNotAnError(t *testing.T) {
	found, err := Scan(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"), zerolog.Nop())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("found = %v, want empty", found)
	}
}

func TestInstallCreatesSymlink(t *testing.T) {
	libDir := t.TempDir()
	pluginDir := t.TempDir()
	item := filepath.Join(libDir, "check_thing")
	writeExecutable(t, item, "#!/bin/sh\nexit 0\n")

	if err := Install([]string{item}, pluginDir, zerolog.Nop()); err != nil {
		t.Fatalf("Install: %v", err)
	}

	dest := filepath.Join(pluginDir, "check_thing")
	link, err := os.Readlink(dest)
	if err != nil {
		t.Fatalf("Readlink: %v", err)
	}
	if link != item {
		t.Errorf("link = %q, want %q", link, item)
	}
}

func TestInstallLeavesConflictingSymlinkAlone(t *testing.T) {
	libDir := t.TempDir()
	pluginDir := t.TempDir()
	item := filepath.Join(libDir, "check_thing")
	writeExecutable(t, item, "#!/bin/sh\nexit 0\n")

	dest := filepath.Join(pluginDir, "check_thing")
	other := filepath.Join(libDir, "other_target")
	writeExecutable(t, other, "#!/bin/sh\nexit 0\n")
	if err := os.Symlink(other, dest); err != nil {
		t.Fatal(err)
	}

	if err := Install([]string{item}, pluginDir, zerolog.Nop()); err != nil {
		t.Fatalf("Install: %v", err)
	}

	link, err := os.Readlink(dest)
	if err != nil {
		t.Fatalf("Readlink: %v", err)
	}
	if link != other {
		t.Errorf("link = %q, want untouched %q", link, other)
	}
}

func TestInstallLeavesRegularFileAlone(t *testing.T) {
	libDir := t.TempDir()
	pluginDir := t.TempDir()
	item := filepath.Join(libDir, "check_thing")
	writeExecutable(t, item, "#!/bin/sh\nexit 0\n")

	dest := filepath.Join(pluginDir, "check_thing")
	if err := os.WriteFile(dest, []byte("not a symlink"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Install([]string{item}, pluginDir, zerolog.Nop()); err != nil {
		t.Fatalf("Install: %v", err)
	}

	body, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(body) != "not a symlink" {
		t.Errorf("dest contents changed: %q", body)
	}
}
