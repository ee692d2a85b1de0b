package tree

import "fmt"

// Node is one element of a display tree.
type Node struct {
	Kind Kind

	// Key is set for object members.
	Key    string
	HasKey bool

	// Index is the position inside a parent array, or -1.
	Index int

	// Text is the rendered literal for leaves: null, true, 42, "str", [] or {}.
	Text string

	// Depth is the indentation level. It has no meaning beyond rendering.
	Depth int

	// Comma marks every element except the last of its container.
	Comma bool

	Children []*Node
}

// IsLeaf reports whether the node renders on a single line.
func (n *Node) IsLeaf() bool {
	return n.Kind != KindArray && n.Kind != KindObject
}

// Open returns the opening bracket of a container.
func (n *Node) Open() string {
	if n.Kind == KindArray {
		return "["
	}
	return "{"
}

// Close returns the closing bracket of a container.
func (n *Node) Close() string {
	if n.Kind == KindArray {
		return "]"
	}
	return "}"
}

// Count returns the number of nodes in the subtree, including n.
func (n *Node) Count() int {
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

// Format turns a decoded value into a display tree. It never fails.
func Format(v Value) *Node {
	root := format(v, 0)
	root.Index = -1
	return root
}

func format(v Value, depth int) *Node {
	n := &Node{Depth: depth, Index: -1}

	switch t := v.(type) {
	case nil, Null:
		n.Kind = KindNull
		n.Text = "null"
	case Bool:
		n.Kind = KindBool
		if t {
			n.Text = "true"
		} else {
			n.Text = "false"
		}
	case Number:
		n.Kind = KindNumber
		n.Text = string(t)
	case String:
		n.Kind = KindString
		n.Text = quote(string(t))
	case Array:
		if len(t) == 0 {
			n.Kind = KindEmptyArray
			n.Text = "[]"
			return n
		}
		n.Kind = KindArray
		n.Children = make([]*Node, len(t))
		for i, el := range t {
			child := format(el, depth+1)
			child.Index = i
			child.Comma = i < len(t)-1
			n.Children[i] = child
		}
	case Object:
		if len(t) == 0 {
			n.Kind = KindEmptyObject
			n.Text = "{}"
			return n
		}
		n.Kind = KindObject
		n.Children = make([]*Node, len(t))
		for i, m := range t {
			child := format(m.Value, depth+1)
			child.Key = m.Key
			child.HasKey = true
			child.Comma = i < len(t)-1
			n.Children[i] = child
		}
	default:
		n.Kind = KindString
		n.Text = fmt.Sprint(v)
	}
	return n
}
