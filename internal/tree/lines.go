package tree

import (
	"fmt"
	"strconv"
)

// This file contains pure functions for walking a display tree.
// They take values and return values, never mutating their inputs,
// so the viewer only has to keep the cursor and the collapsed set.

// RootID identifies the root node in a collapsed set.
const RootID = "$"

// LineRole says which part of a node a line shows.
type LineRole int

const (
	// RoleLeaf is a scalar or empty container on one line.
	RoleLeaf LineRole = iota
	// RoleOpen is the first line of an expanded container.
	RoleOpen
	// RoleClose is the closing bracket of an expanded container.
	RoleClose
	// RoleCollapsed is a folded container shown on one line.
	RoleCollapsed
)

// Line is one visible row of a flattened tree.
type Line struct {
	ID     string
	Role   LineRole
	Kind   Kind
	Depth  int
	Key    string
	HasKey bool
	Index  int
	Text   string
	Comma  bool
	// Size is the number of direct children of a container.
	Size int
}

// Collapsible reports whether the line belongs to a container that can fold.
func (l Line) Collapsible() bool {
	return l.Role == RoleOpen || l.Role == RoleCollapsed
}

// Flatten lists the visible lines of the tree. Containers whose ID is in
// collapsed render as a single RoleCollapsed line.
func Flatten(root *Node, collapsed map[string]bool) []Line {
	if root == nil {
		return nil
	}
	var lines []Line
	return flatten(lines, root, RootID, collapsed)
}

func flatten(lines []Line, n *Node, id string, collapsed map[string]bool) []Line {
	base := Line{
		ID:     id,
		Kind:   n.Kind,
		Depth:  n.Depth,
		Key:    n.Key,
		HasKey: n.HasKey,
		Index:  n.Index,
		Comma:  n.Comma,
		Size:   len(n.Children),
	}

	if n.IsLeaf() {
		base.Role = RoleLeaf
		base.Text = n.Text
		return append(lines, base)
	}

	if collapsed[id] {
		base.Role = RoleCollapsed
		base.Text = collapsedText(n)
		return append(lines, base)
	}

	open := base
	open.Role = RoleOpen
	open.Text = n.Open()
	open.Comma = false
	lines = append(lines, open)

	for i, child := range n.Children {
		lines = flatten(lines, child, ChildID(id, i), collapsed)
	}

	closing := base
	closing.Role = RoleClose
	closing.Text = n.Close()
	closing.HasKey = false
	closing.Key = ""
	return append(lines, closing)
}

// ChildID derives the ID of the i-th child of parent.
func ChildID(parent string, i int) string {
	return parent + "/" + strconv.Itoa(i)
}

func collapsedText(n *Node) string {
	unit := "items"
	if n.Kind == KindObject {
		unit = "keys"
	}
	if len(n.Children) == 1 {
		unit = unit[:len(unit)-1]
	}
	return fmt.Sprintf("%s…%s %d %s", n.Open(), n.Close(), len(n.Children), unit)
}

// ContainerIDs returns the IDs of every non-empty container in the tree.
func ContainerIDs(root *Node) []string {
	if root == nil {
		return nil
	}
	var ids []string
	var walk func(n *Node, id string)
	walk = func(n *Node, id string) {
		if n.IsLeaf() {
			return
		}
		ids = append(ids, id)
		for i, c := range n.Children {
			walk(c, ChildID(id, i))
		}
	}
	walk(root, RootID)
	return ids
}

// CollapseAll returns a collapsed set folding every container below the
// root.
func CollapseAll(root *Node) map[string]bool {
	result := make(map[string]bool)
	for _, id := range ContainerIDs(root) {
		if id != RootID {
			result[id] = true
		}
	}
	return result
}

// CollapseDepth folds every container at depth or deeper.
func CollapseDepth(root *Node, depth int) map[string]bool {
	result := make(map[string]bool)
	if root == nil {
		return result
	}
	var walk func(n *Node, id string)
	walk = func(n *Node, id string) {
		if n.IsLeaf() {
			return
		}
		if n.Depth >= depth {
			result[id] = true
			return
		}
		for i, c := range n.Children {
			walk(c, ChildID(id, i))
		}
	}
	walk(root, RootID)
	return result
}

// ToggleCollapse returns a new collapsed set with id flipped.
func ToggleCollapse(collapsed map[string]bool, id string) map[string]bool {
	result := make(map[string]bool, len(collapsed)+1)
	for k, v := range collapsed {
		if v {
			result[k] = true
		}
	}
	if result[id] {
		delete(result, id)
	} else {
		result[id] = true
	}
	return result
}

// MoveCursor computes new cursor position within bounds.
func MoveCursor(cursor, delta, itemCount int) int {
	if itemCount == 0 {
		return 0
	}
	newCursor := cursor + delta
	if newCursor < 0 {
		return 0
	}
	if newCursor >= itemCount {
		return itemCount - 1
	}
	return newCursor
}

// AdjustOffset ensures cursor is visible within viewport.
func AdjustOffset(cursor, offset, visibleHeight int) int {
	if visibleHeight < 1 {
		visibleHeight = 1
	}
	if cursor < offset {
		return cursor
	}
	if cursor >= offset+visibleHeight {
		return cursor - visibleHeight + 1
	}
	return offset
}

// IndexOf finds the line with the given ID, or -1.
func IndexOf(lines []Line, id string) int {
	for i, l := range lines {
		if l.ID == id && l.Role != RoleClose {
			return i
		}
	}
	return -1
}
