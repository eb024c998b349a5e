// Package fields parses the field selection mini-language used by the "embed" and
// "extended" request parameters.
//
// Tokens are separated by ';'. A token directly followed by '[' opens a group whose
// children are parsed recursively up to the matching ']':
//
//	a;b[c;d[e];f];g  ->  a, b{c, d{e}, f}, g
//
// Parsing never fails. Content left open at the end of the input belongs to the scope
// that is still open, and a ']' without a matching '[' is ignored.
package fields

import (
	"strings"
)

const (
	separator  = ';'
	groupOpen  = '['
	groupClose = ']'
)

// Node is either a Leaf or a *Group
type Node interface {
	Name() string
	isNode()
}

// Leaf is a plain field token
type Leaf string

func (l Leaf) Name() string { return string(l) }
func (Leaf) isNode()        {}

// Group is a relation embedding request with an optional nested selection
type Group struct {
	Field    string
	Children []Node
}

func (g *Group) Name() string { return g.Field }
func (*Group) isNode()        {}

// Parse turns a field expression into a tree of nodes.
func Parse(input string) []Node {
	root := &Group{}
	stack := []*Group{root}
	// brackets opened without a field name; their closing bracket is swallowed
	anonymous := 0
	var current strings.Builder

	token := func() string {
		t := strings.TrimSpace(current.String())
		current.Reset()
		return t
	}
	flush := func() {
		if t := token(); t != "" {
			top := stack[len(stack)-1]
			top.Children = append(top.Children, Leaf(t))
		}
	}

	for _, ch := range input {
		switch ch {
		case separator:
			flush()
		case groupOpen:
			name := token()
			if name == "" {
				anonymous++
				continue
			}
			group := &Group{Field: name}
			top := stack[len(stack)-1]
			top.Children = append(top.Children, group)
			stack = append(stack, group)
		case groupClose:
			flush()
			if anonymous > 0 {
				anonymous--
			} else if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		default:
			current.WriteRune(ch)
		}
	}
	flush()

	return root.Children
}

// Render writes nodes back in the field expression grammar. Parse(Render(n)) yields n
// for any tree produced by Parse.
func Render(nodes []Node) string {
	var sb strings.Builder
	render(&sb, nodes)
	return sb.String()
}

func render(sb *strings.Builder, nodes []Node) {
	for i, node := range nodes {
		if i > 0 {
			sb.WriteByte(separator)
		}
		switch n := node.(type) {
		case Leaf:
			sb.WriteString(string(n))
		case *Group:
			sb.WriteString(n.Field)
			sb.WriteByte(groupOpen)
			render(sb, n.Children)
			sb.WriteByte(groupClose)
		}
	}
}

// SplitList parses the flat, comma separated projection list. Blank entries are dropped.
func SplitList(input string) []Node {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	nodes := make([]Node, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		nodes = append(nodes, Leaf(part))
	}
	return nodes
}

// Leaves wraps plain field names as nodes
func Leaves(names ...string) []Node {
	nodes := make([]Node, len(names))
	for i, name := range names {
		nodes[i] = Leaf(name)
	}
	return nodes
}
