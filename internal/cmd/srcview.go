package cmd

import (
	"os"
	"strings"
	"sync"
)

// srcViewState tracks the file/line the SrcView container currently
// centers on, re-reading the file from disk only when it changes.
type srcViewState struct {
	mu      sync.Mutex
	path    string
	lines   []string
	current int
}

// SetPosition records a new current file/line, as reported by a stopped
// frame (internal/cmd's postFileShow).
func (s *srcViewState) SetPosition(path string, line int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if path != s.path {
		s.path = path
		s.lines = readSourceLines(path)
	}
	s.current = line
}

// Path returns the file path the current position refers to, or "" if no
// position has been set yet.
func (s *srcViewState) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Window returns up to height lines of source centered on the current
// line, along with the 1-based line number of the first returned line and
// the current line itself. Returns nil if no position has been set yet or
// the file couldn't be read.
func (s *srcViewState) Window(height int) (lines []string, firstLine, currentLine int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.lines) == 0 || height <= 0 {
		return nil, 0, 0
	}

	start := s.current - height/2
	if start < 1 {
		start = 1
	}
	end := start + height
	if end > len(s.lines)+1 {
		end = len(s.lines) + 1
		start = end - height
		if start < 1 {
			start = 1
		}
	}

	out := make([]string, 0, end-start)
	for i := start; i < end && i <= len(s.lines); i++ {
		out = append(out, s.lines[i-1])
	}
	return out, start, s.current
}

func readSourceLines(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}
