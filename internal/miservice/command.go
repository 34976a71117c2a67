package miservice

import (
	"strconv"
	"strings"
)

// RecognizedCommands is the closed set of MI operations the rest of the
// core is allowed to issue (spec.md §4.3).
var RecognizedCommands = map[string]bool{
	"interpreter-exec":          true,
	"data-disassemble":          true,
	"data-evaluate-expression":  true,
	"break-insert":              true,
	"break-delete":              true,
	"break-watch":               true,
	"environment-pwd":           true,
	"exec-interrupt":            true,
	"exec-arguments":            true,
	"gdb-exit":                  true,
	"stack-select-frame":        true,
	"stack-info-frame":          true,
	"stack-info-depth":          true,
	"stack-list-variables":      true,
	"thread-info":               true,
	"file-exec-and-symbols":     true,
	"file-symbol-file":          true,
	"list-thread-groups":        true,
	"var-create":                true,
	"var-delete":                true,
	"var-list-children":         true,
	"var-update":                true,
}

// encodeCommand renders "token-command opt1 opt2 -- param1 param2\n" with
// every option/param quoted per quoteArg, and the separator "--" included
// only when both options and params are present (spec.md §4.3).
func encodeCommand(token uint64, operation string, opts, params []string) string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(token, 10))
	b.WriteByte('-')
	b.WriteString(operation)
	for _, o := range opts {
		b.WriteByte(' ')
		b.WriteString(quoteArg(o))
	}
	if len(opts) > 0 && len(params) > 0 {
		b.WriteString(" --")
	}
	for _, p := range params {
		b.WriteByte(' ')
		b.WriteString(quoteArg(p))
	}
	b.WriteByte('\n')
	return b.String()
}

// quoteArg escapes backslash, double quote, CR, and LF (spec.md §4.3) and
// wraps the result in double quotes.
func quoteArg(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\r':
			b.WriteString(`\r`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(s[i])
		}
	}
	b.WriteByte('"')
	return b.String()
}

// BreakpointNumber is a parsed "N" or "N.M" breakpoint identifier.
type BreakpointNumber struct {
	Major int
	Minor int // 0 when absent (the text carried no ".M" suffix)
	HasMinor bool
}

// ParseBreakpointNumber parses text of the form "N" or "N.M".
func ParseBreakpointNumber(text string) (BreakpointNumber, bool) {
	major, minor, found := strings.Cut(text, ".")
	majorN, err := strconv.Atoi(major)
	if err != nil {
		return BreakpointNumber{}, false
	}
	if !found {
		return BreakpointNumber{Major: majorN}, true
	}
	minorN, err := strconv.Atoi(minor)
	if err != nil {
		return BreakpointNumber{}, false
	}
	return BreakpointNumber{Major: majorN, Minor: minorN, HasMinor: true}, true
}

// DedupeMajors returns the distinct major numbers from a set of breakpoint
// numbers, in first-seen order, for passing to break-delete (which accepts
// only major numbers and rejects duplicate/sub-breakpoint deletions).
func DedupeMajors(nums []BreakpointNumber) []int {
	seen := make(map[int]bool, len(nums))
	var out []int
	for _, n := range nums {
		if seen[n.Major] {
			continue
		}
		seen[n.Major] = true
		out = append(out, n.Major)
	}
	return out
}
