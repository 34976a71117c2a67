package completion

import (
	"fmt"
	"strings"

	"ugdb/internal/miparser"
)

// Executor is the subset of the session manager (miservice.Session) the
// completion engine needs to materialize candidates.
type Executor interface {
	Execute(operation string, opts []string, params []string) (miparser.Record, error)
}

// Split is the result of analyzing text up to the cursor (spec.md §4.4):
// Prefix is what the user has typed of the current identifier; Parent, if
// HasParent, is the expression whose members are being completed (already
// rewritten to "*(...)" for the "->" case).
type Split struct {
	Prefix    string
	Parent    string
	HasParent bool
}

// SplitExpression implements the reversed-token-stream analysis described
// in spec.md §4.4.
func SplitExpression(text string, cursor int) (Split, error) {
	toks, err := Tokenize(text, cursor)
	if err != nil {
		return Split{}, err
	}

	prefix := ""
	splitIdx := len(toks)
	if n := len(toks); n > 0 && toks[n-1].Kind == TokAtom && toks[n-1].End == cursor {
		prefix = toks[n-1].Text
		splitIdx = n - 1
	}

	sepIdx := splitIdx - 1
	if sepIdx < 0 || (toks[sepIdx].Kind != TokDot && toks[sepIdx].Kind != TokArrow) {
		return Split{Prefix: prefix}, nil
	}
	arrow := toks[sepIdx].Kind == TokArrow

	parentStartByte := 0
	parenBal, bracketBal, atomsSeen := 0, 0, 0
	j := sepIdx - 1
	for j >= 0 {
		t := toks[j]
		switch t.Kind {
		case TokRParen:
			parenBal++
		case TokLParen:
			if parenBal == 0 {
				parentStartByte = t.End
				j = -1
				continue
			}
			parenBal--
		case TokRBracket:
			bracketBal++
		case TokLBracket:
			if bracketBal == 0 {
				parentStartByte = t.End
				j = -1
				continue
			}
			bracketBal--
		case TokSeparator:
			if parenBal == 0 && bracketBal == 0 {
				parentStartByte = t.End
				j = -1
				continue
			}
		case TokAtom:
			if parenBal == 0 && bracketBal == 0 {
				atomsSeen++
				if atomsSeen >= 2 {
					parentStartByte = t.End
					j = -1
					continue
				}
			}
		}
		j--
	}

	parentText := strings.TrimSpace(text[parentStartByte:toks[sepIdx].Start])
	if arrow {
		parentText = "*(" + parentText + ")"
	}
	return Split{Prefix: prefix, Parent: parentText, HasParent: true}, nil
}

// flatteningSentinels are synthetic child names var-list-children emits for
// anonymous unions/structs and access-specifier markers; their own children
// belong to the user's conceptual type and are collected instead (§4.4).
var flatteningSentinels = map[string]bool{
	"<anonymous union>":  true,
	"<anonymous struct>": true,
	"public":             true,
	"private":            true,
	"protected":           true,
}

// Candidates materializes the completion candidate names for a Split,
// applying the prefix filter and returning each match's suffix (the
// replacement fragment), per spec.md §4.4.
func Candidates(exec Executor, split Split) ([]string, error) {
	var names []string
	var err error
	if split.HasParent {
		names, err = memberCandidates(exec, split.Parent)
	} else {
		names, err = variableCandidates(exec)
	}
	if err != nil {
		return nil, err
	}

	var out []string
	for _, name := range names {
		if strings.HasPrefix(name, split.Prefix) {
			out = append(out, name[len(split.Prefix):])
		}
	}
	return out, nil
}

func variableCandidates(exec Executor) ([]string, error) {
	rec, err := exec.Execute("stack-list-variables", []string{"--simple-values"}, nil)
	if err != nil {
		return nil, err
	}
	vars, ok := miparser.Value{Kind: miparser.ValMap, Map: rec.Results}.Find("variables")
	if !ok {
		return nil, nil
	}
	var names []string
	for _, v := range vars.Arr {
		if name, ok := v.Find("name"); ok {
			names = append(names, name.Str)
		}
	}
	return names, nil
}

func memberCandidates(exec Executor, parent string) ([]string, error) {
	const varName = "-"
	rec, err := exec.Execute("var-create", nil, []string{varName, "*", parent})
	defer exec.Execute("var-delete", []string{"-c"}, []string{varName})

	if err != nil {
		return nil, err
	}
	if rec.Class == miparser.ClassError {
		msg, _ := miparser.Value{Kind: miparser.ValMap, Map: rec.Results}.Find("msg")
		return nil, fmt.Errorf("completion: var-create %q: %s", parent, msg.Str)
	}

	return walkChildren(exec, varName), nil
}

// walkChildren recursively enumerates names under name, flattening
// synthetic anonymous-union/struct and access-specifier children so the
// returned names belong to the user's conceptual type.
func walkChildren(exec Executor, name string) []string {
	rec, err := exec.Execute("var-list-children", []string{"--all-values"}, []string{name})
	if err != nil {
		return nil
	}
	children, ok := miparser.Value{Kind: miparser.ValMap, Map: rec.Results}.Find("children")
	if !ok {
		return nil
	}
	var out []string
	for _, child := range children.Arr {
		expr, _ := child.Find("exp")
		childName, _ := child.Find("name")
		if flatteningSentinels[expr.Str] {
			out = append(out, walkChildren(exec, childName.Str)...)
			continue
		}
		out = append(out, expr.Str)
	}
	return out
}

// Nav tracks next/previous navigation through a candidate list, modulo
// (count+1) where the extra slot is the empty candidate restoring the
// original text (spec.md §4.4).
type Nav struct {
	Candidates []string
	index      int // 0 means "no candidate selected" (the empty slot)
}

// NewNav starts at the empty slot.
func NewNav(candidates []string) *Nav { return &Nav{Candidates: candidates} }

// Next advances to the next candidate, wrapping to the empty slot after the
// last one. It returns "" when on the empty slot.
func (n *Nav) Next() string {
	n.index = (n.index + 1) % (len(n.Candidates) + 1)
	return n.current()
}

// Previous is the symmetric inverse of Next.
func (n *Nav) Previous() string {
	n.index = (n.index - 1 + len(n.Candidates) + 1) % (len(n.Candidates) + 1)
	return n.current()
}

func (n *Nav) current() string {
	if n.index == 0 {
		return ""
	}
	return n.Candidates[n.index-1]
}
