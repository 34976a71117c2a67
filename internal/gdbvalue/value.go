// Package gdbvalue parses the ad-hoc, C-flavored value language the
// debugger emits inside MI result strings (data-evaluate-expression,
// var-list-children, and similar): nested maps and arrays, hex/decimal
// integers, pointer-with-annotation scalars, untagged children, and the
// `...` truncation marker.
//
// The grammar is recursive-descent with one token of lookahead and does
// not backtrack; see lexer.go and parser.go.
package gdbvalue

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the four shapes a Value can take.
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindArray
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "String"
	case KindInteger:
		return "Integer"
	case KindArray:
		return "Array"
	case KindMap:
		return "Map"
	default:
		return "Unknown"
	}
}

// AnonKey is the reserved map key untagged children are collected under.
const AnonKey = "*anon*"

// Entry is one key/value pair of a Map, in insertion order.
type Entry struct {
	Key string
	Val Value
}

// Value is a GDB value tree: String, Integer, Array, or Map.
type Value struct {
	Kind    Kind
	Text    string  // String: decoded text. Integer: original numeral text.
	Num     int64   // Integer: parsed numeric value.
	Items   []Value // Array
	Entries []Entry // Map, insertion order preserved
}

// String constructs a String value.
func String(text string) Value { return Value{Kind: KindString, Text: text} }

// Integer constructs an Integer value from its original text and parsed value.
func Integer(text string, num int64) Value { return Value{Kind: KindInteger, Text: text, Num: num} }

// Array constructs an Array value.
func Array(items ...Value) Value { return Value{Kind: KindArray, Items: items} }

// Map constructs a Map value from ordered entries.
func Map(entries ...Entry) Value { return Value{Kind: KindMap, Entries: entries} }

// Equal reports whether two values are structurally identical.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.Text == o.Text
	case KindInteger:
		return v.Text == o.Text && v.Num == o.Num
	case KindArray:
		if len(v.Items) != len(o.Items) {
			return false
		}
		for i := range v.Items {
			if !v.Items[i].Equal(o.Items[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.Entries) != len(o.Entries) {
			return false
		}
		for i := range v.Entries {
			if v.Entries[i].Key != o.Entries[i].Key || !v.Entries[i].Val.Equal(o.Entries[i].Val) {
				return false
			}
		}
		return true
	}
	return false
}

// Format serializes the value back to GDB-value-language text. Re-parsing
// the result always yields an Equal tree (§8: round-trip invariant).
func (v Value) Format() string {
	var b strings.Builder
	v.format(&b)
	return b.String()
}

func (v Value) format(b *strings.Builder) {
	switch v.Kind {
	case KindString:
		b.WriteString(quoteString(v.Text))
	case KindInteger:
		b.WriteString(v.Text)
	case KindArray:
		b.WriteByte('[')
		for i, it := range v.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			it.format(b)
		}
		b.WriteByte(']')
	case KindMap:
		b.WriteByte('{')
		for i, e := range v.Entries {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(e.Key)
			b.WriteString(" = ")
			e.Val.format(b)
		}
		b.WriteByte('}')
	}
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// ParseError reports a failure to parse GDB value text, carrying the byte
// offset of the failure so callers can report it without re-scanning.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("gdbvalue: %s at offset %d", e.Msg, e.Offset)
}

// Parse parses a single evaluated-expression text into a Value.
func Parse(input string) (Value, error) {
	raw := []byte(input)
	toks, lexErr := lex(raw)
	if lexErr != nil {
		return Value{}, lexErr
	}

	p := &parser{toks: toks, raw: raw}
	val, ok := p.parseValue()

	// Top-level fallback (§4.1 tie-break): if parsing one value did not
	// consume every token, the whole input is an unknown multi-fragment
	// scalar (function-pointer annotations, STL summaries, {...} followed
	// by trailing text, etc.) and must parse as a single normalized String.
	if !ok || p.pos < len(p.toks) {
		return String(normalizeWhitespace(strings.TrimSpace(input))), nil
	}
	return val, nil
}

// normalizeWhitespace collapses any run of whitespace to a single space.
func normalizeWhitespace(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			lastSpace = true
			continue
		}
		lastSpace = false
		b.WriteRune(r)
	}
	return strings.TrimRight(b.String(), " ")
}

// parseScalarNumber attempts to parse text as a signed or hex integer using
// standard C literal rules. Floats are never matched (§4.1: "Numbers are
// never parsed with a decimal point").
func parseScalarNumber(text string) (int64, bool) {
	if text == "" {
		return 0, false
	}
	if strings.ContainsAny(text, ".") {
		return 0, false
	}
	n, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		// Large unsigned hex values (e.g. pointers) overflow int64; fall back
		// to uint64 and reinterpret the bits.
		u, uerr := strconv.ParseUint(text, 0, 64)
		if uerr != nil {
			return 0, false
		}
		return int64(u), true
	}
	return n, true
}
