// Package socketdir resolves the directory ugdb uses for its per-session
// IPC Unix domain socket and generates the socket's random file name.
package socketdir

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
)

const (
	dirName      = "ugdb"
	nameLength   = 64
	nameAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Dir returns the directory new IPC sockets are created under:
// $XDG_RUNTIME_DIR/ugdb, falling back to /tmp/ugdb when XDG_RUNTIME_DIR is
// unset or the directory can't be created there.
func Dir() string {
	if rt := os.Getenv("XDG_RUNTIME_DIR"); rt != "" {
		dir := filepath.Join(rt, dirName)
		if err := os.MkdirAll(dir, 0o700); err == nil {
			return dir
		}
	}
	dir := filepath.Join(os.TempDir(), dirName)
	os.MkdirAll(dir, 0o700)
	return dir
}

// NewName generates a random 64-character socket file name, per spec.md §6.
func NewName() (string, error) {
	buf := make([]byte, nameLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate socket name: %w", err)
	}
	for i, b := range buf {
		buf[i] = nameAlphabet[int(b)%len(nameAlphabet)]
	}
	return string(buf), nil
}

// NewPath returns a fresh absolute socket path under Dir() with a random name.
func NewPath() (string, error) {
	name, err := NewName()
	if err != nil {
		return "", err
	}
	return filepath.Join(Dir(), name), nil
}
