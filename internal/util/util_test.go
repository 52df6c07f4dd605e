package util_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"

	"github.com/blackwell-systems/bookpipe/internal/util"
)

func TestEnsureDir(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "a", "b", "c")
	if err := util.EnsureDir(nested); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	fi, err := os.Stat(nested)
	if err != nil {
		t.Fatalf("Stat after EnsureDir: %v", err)
	}
	if !fi.IsDir() {
		t.Error("EnsureDir path is not a directory")
	}
	if perm := fi.Mode().Perm(); perm&0007 != 0 {
		t.Errorf("EnsureDir perm = %v, want no world access", perm)
	}

	// Existing directories are fine.
	if err := util.EnsureDir(nested); err != nil {
		t.Errorf("EnsureDir on existing dir: %v", err)
	}
}

func TestEnsureDir_FileInTheWay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatal(err)
	}
	if err := util.EnsureDir(filepath.Join(path, "sub")); err == nil {
		t.Error("expected error when a file blocks the path")
	}
}

func TestInitColor(t *testing.T) {
	saved := color.NoColor
	defer func() { color.NoColor = saved }()

	util.InitColor(true)
	if !color.NoColor {
		t.Error("--no-color should disable color")
	}

	// go test output is never a terminal.
	t.Setenv("NO_COLOR", "")
	util.InitColor(false)
	if !color.NoColor {
		t.Error("color should stay off without a terminal")
	}
}
