// Package layout implements the TUI's split-tree grammar and linear space
// allocator (spec.md §4.6, component C6a): a small recursive grammar over
// layout strings, parsed recursive-descent with one-token lookahead in the
// same style as this module's other hand-written parsers, plus the
// three-pass allocator that turns a parsed tree and an available extent
// into concrete child sizes.
package layout

import "fmt"

// Leaf identifies one of the four fixed containers a layout leaf names.
type Leaf byte

const (
	LeafConsole        Leaf = 'c'
	LeafTerminal       Leaf = 't'
	LeafSrcView        Leaf = 's'
	LeafExpressionTable Leaf = 'e'
)

// Sep is the split direction of a parenthesized node's children.
type Sep byte

const (
	SepHorizontal Sep = '|'
	SepVertical   Sep = '-'
)

// Node is one node of a parsed layout tree: either a Leaf (Children is nil)
// or a split with a uniform Sep across all Children.
type Node struct {
	Weight   int
	IsLeaf   bool
	Leaf     Leaf
	Sep      Sep
	Children []Node
}

// ParseError reports a layout-string syntax error with the byte offset.
type ParseError struct {
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("layout: %s at offset %d", e.Msg, e.Offset)
}

// Parse parses a layout string per spec.md §4.6's grammar:
//
//	node = weight? (leaf | '(' node (sep node)+ ')')
//
// and validates that the tree contains at least one Console leaf. A
// top-level split may also omit its outer parentheses, as in
// "(1s-1c)|(1e-1t)"; it then parses as a weight-1 split node.
func Parse(s string) (Node, error) {
	p := &parser{s: s}
	n, err := p.parseNode()
	if err != nil {
		return Node{}, err
	}
	top := Node{Weight: 1, Children: []Node{n}}
	for c, ok := p.peek(); ok && (c == '|' || c == '-'); c, ok = p.peek() {
		if len(top.Children) > 1 && Sep(c) != top.Sep {
			return Node{}, &ParseError{Offset: p.pos, Msg: "mixing '|' and '-' within one split"}
		}
		top.Sep = Sep(c)
		p.pos++
		next, err := p.parseNode()
		if err != nil {
			return Node{}, err
		}
		top.Children = append(top.Children, next)
	}
	if len(top.Children) > 1 {
		n = top
	}
	if p.pos != len(s) {
		return Node{}, &ParseError{Offset: p.pos, Msg: "unexpected trailing text"}
	}
	if !hasConsole(n) {
		return Node{}, &ParseError{Offset: 0, Msg: "layout must contain at least one Console leaf"}
	}
	return n, nil
}

func hasConsole(n Node) bool {
	if n.IsLeaf {
		return n.Leaf == LeafConsole
	}
	for _, c := range n.Children {
		if hasConsole(c) {
			return true
		}
	}
	return false
}

type parser struct {
	s   string
	pos int
}

func (p *parser) peek() (byte, bool) {
	if p.pos >= len(p.s) {
		return 0, false
	}
	return p.s[p.pos], true
}

func (p *parser) parseNode() (Node, error) {
	weight := p.parseWeight()

	c, ok := p.peek()
	if !ok {
		return Node{}, &ParseError{Offset: p.pos, Msg: "expected leaf or '(' at end of input"}
	}
	if isLeafByte(c) {
		p.pos++
		return Node{Weight: weight, IsLeaf: true, Leaf: Leaf(c)}, nil
	}
	if c != '(' {
		return Node{}, &ParseError{Offset: p.pos, Msg: fmt.Sprintf("unexpected character %q", c)}
	}
	p.pos++ // consume '('

	first, err := p.parseNode()
	if err != nil {
		return Node{}, err
	}
	children := []Node{first}

	var sep Sep
	haveSep := false
	for {
		c, ok := p.peek()
		if !ok {
			return Node{}, &ParseError{Offset: p.pos, Msg: "unterminated '(' - missing ')'"}
		}
		if c == ')' {
			p.pos++
			break
		}
		if c != '|' && c != '-' {
			return Node{}, &ParseError{Offset: p.pos, Msg: fmt.Sprintf("expected separator or ')', got %q", c)}
		}
		if haveSep && Sep(c) != sep {
			return Node{}, &ParseError{Offset: p.pos, Msg: "mixing '|' and '-' within one parenthesized node"}
		}
		sep = Sep(c)
		haveSep = true
		p.pos++
		next, err := p.parseNode()
		if err != nil {
			return Node{}, err
		}
		children = append(children, next)
	}
	if len(children) < 2 {
		return Node{}, &ParseError{Offset: p.pos, Msg: "parenthesized node needs at least two children"}
	}
	return Node{Weight: weight, Sep: sep, Children: children}, nil
}

func (p *parser) parseWeight() int {
	start := p.pos
	for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
		p.pos++
	}
	if p.pos == start {
		return 1
	}
	n := 0
	for _, c := range p.s[start:p.pos] {
		n = n*10 + int(c-'0')
	}
	if n < 1 {
		return 1
	}
	return n
}

func isLeafByte(c byte) bool {
	switch Leaf(c) {
	case LeafConsole, LeafTerminal, LeafSrcView, LeafExpressionTable:
		return true
	}
	return false
}

// Serialize renders a Node back to layout-string text; Parse(Serialize(n))
// always yields a tree equal to n (round-trip invariant, spec.md §8).
func Serialize(n Node) string {
	var b []byte
	b = serializeNode(b, n, true)
	return string(b)
}

func serializeNode(b []byte, n Node, topLevel bool) []byte {
	if n.Weight != 1 {
		b = appendInt(b, n.Weight)
	}
	if n.IsLeaf {
		return append(b, byte(n.Leaf))
	}
	b = append(b, '(')
	for i, c := range n.Children {
		if i > 0 {
			b = append(b, byte(n.Sep))
		}
		b = serializeNode(b, c, false)
	}
	b = append(b, ')')
	return b
}

func appendInt(b []byte, n int) []byte {
	if n == 0 {
		return append(b, '0')
	}
	start := len(b)
	for n > 0 {
		b = append(b, byte('0'+n%10))
		n /= 10
	}
	// reverse the digits just appended
	for i, j := start, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}
