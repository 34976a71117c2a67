package socketdir

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewName_LengthAndAlphabet(t *testing.T) {
	name, err := NewName()
	if err != nil {
		t.Fatal(err)
	}
	if len(name) != nameLength {
		t.Fatalf("len(name) = %d, want %d", len(name), nameLength)
	}
	for _, r := range name {
		if !isInAlphabet(byte(r)) {
			t.Errorf("name %q contains disallowed character %q", name, r)
		}
	}
}

func isInAlphabet(b byte) bool {
	for i := 0; i < len(nameAlphabet); i++ {
		if nameAlphabet[i] == b {
			return true
		}
	}
	return false
}

func TestNewName_Unique(t *testing.T) {
	a, err := NewName()
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewName()
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Errorf("two calls to NewName produced the same name: %q", a)
	}
}

func TestDir_FallsBackToTmp(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	dir := Dir()
	want := filepath.Join(os.TempDir(), dirName)
	if dir != want {
		t.Errorf("Dir() = %q, want %q", dir, want)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Dir() did not create %q: %v", dir, err)
	}
}

func TestDir_PrefersXDGRuntimeDir(t *testing.T) {
	rt := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", rt)
	dir := Dir()
	want := filepath.Join(rt, dirName)
	if dir != want {
		t.Errorf("Dir() = %q, want %q", dir, want)
	}
}

func TestNewPath(t *testing.T) {
	rt := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", rt)
	path, err := NewPath()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(path) != filepath.Join(rt, dirName) {
		t.Errorf("NewPath() dir = %q, want %q", filepath.Dir(path), filepath.Join(rt, dirName))
	}
	if len(filepath.Base(path)) != nameLength {
		t.Errorf("NewPath() base length = %d, want %d", len(filepath.Base(path)), nameLength)
	}
}
