// Package watchset backs the watched-expression table container: a small
// list of user expressions, each materialized as a persistent debugger
// variable object (spec.md §3's "watched-expression table"), refreshed on
// demand via var-update. It reuses the completion engine's Executor seam
// (internal/completion.Executor) rather than depending on miservice.Session
// directly, and the var-create/var-update/var-delete commands C4 already
// allow-lists.
package watchset

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"ugdb/internal/completion"
	"ugdb/internal/miparser"
)

// Entry is one row of the watched-expression table.
type Entry struct {
	Expr    string
	varName string
	Value   string
	Type    string
	InScope bool
}

// Set owns the live variable objects backing each watched expression.
// Unlike the completion engine's transient var-objects (created and
// deleted within a single candidate lookup), these persist for the
// lifetime of the entry so var-update can report incremental changes.
type Set struct {
	exec completion.Executor

	mu      sync.Mutex
	entries []Entry
}

// NewSet returns an empty watch set driven by exec.
func NewSet(exec completion.Executor) *Set {
	return &Set{exec: exec}
}

// varName returns a debugger variable-object name guaranteed not to
// collide with another entry's or with the completion engine's transient
// names, grounded on the teacher's uuid.New().String() ID-generation
// pattern (internal/session/session.go, internal/message/delivery.go).
func varName() string {
	return "w_" + uuid.New().String()
}

// Add creates a persistent variable object for expr and appends it to the
// set, returning the populated Entry.
func (s *Set) Add(expr string) (Entry, error) {
	name := varName()
	rec, err := s.exec.Execute("var-create", nil, []string{name, "*", expr})
	if err != nil {
		return Entry{}, err
	}
	val := miparser.Value{Kind: miparser.ValMap, Map: rec.Results}
	if rec.Class == miparser.ClassError {
		msg, _ := val.Find("msg")
		return Entry{}, fmt.Errorf("watchset: var-create %q: %s", expr, msg.Str)
	}

	e := Entry{Expr: expr, varName: name, InScope: true}
	if v, ok := val.Find("value"); ok {
		e.Value = v.Str
	}
	if t, ok := val.Find("type"); ok {
		e.Type = t.Str
	}

	s.mu.Lock()
	s.entries = append(s.entries, e)
	s.mu.Unlock()
	return e, nil
}

// Remove deletes the variable object backing expr, if present.
func (s *Set) Remove(expr string) error {
	s.mu.Lock()
	idx := -1
	var name string
	for i, e := range s.entries {
		if e.Expr == expr {
			idx = i
			name = e.varName
			break
		}
	}
	if idx >= 0 {
		s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	}
	s.mu.Unlock()

	if idx < 0 {
		return fmt.Errorf("watchset: %q not watched", expr)
	}
	_, err := s.exec.Execute("var-delete", nil, []string{name})
	return err
}

// Refresh issues var-update for every entry and applies any reported
// changes, returning the current snapshot.
func (s *Set) Refresh() ([]Entry, error) {
	s.mu.Lock()
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.varName
	}
	s.mu.Unlock()

	changed := map[string]miparser.Value{}
	for _, name := range names {
		rec, err := s.exec.Execute("var-update", []string{"--all-values"}, []string{name})
		if err != nil {
			return nil, err
		}
		val := miparser.Value{Kind: miparser.ValMap, Map: rec.Results}
		changes, ok := val.Find("changelist")
		if !ok {
			continue
		}
		for _, c := range changes.Arr {
			if n, ok := c.Find("name"); ok {
				changed[n.Str] = c
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.entries {
		c, ok := changed[s.entries[i].varName]
		if !ok {
			continue
		}
		if v, ok := c.Find("value"); ok {
			s.entries[i].Value = v.Str
		}
		if scope, ok := c.Find("in_scope"); ok {
			s.entries[i].InScope = scope.Str == "true"
		}
	}
	return append([]Entry(nil), s.entries...), nil
}

// Entries returns the current snapshot without refreshing.
func (s *Set) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Entry(nil), s.entries...)
}
