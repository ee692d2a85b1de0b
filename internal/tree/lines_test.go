package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree(t *testing.T) *Node {
	t.Helper()
	v, err := Decode([]byte(`{"user": {"id": 7, "roles": ["a", "b"]}, "ok": true}`))
	require.NoError(t, err)
	return Format(v)
}

func lineTexts(lines []Line) []string {
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text
	}
	return texts
}

func TestFlatten_Expanded(t *testing.T) {
	lines := Flatten(sampleTree(t), nil)

	assert.Equal(t, []string{
		"{",
		"{", "7", "[", `"a"`, `"b"`, "]", "}",
		"true",
		"}",
	}, lineTexts(lines))

	assert.Equal(t, RoleOpen, lines[0].Role)
	assert.Equal(t, RootID, lines[0].ID)
	assert.Equal(t, RoleClose, lines[len(lines)-1].Role)

	user := lines[1]
	assert.Equal(t, "user", user.Key)
	assert.Equal(t, "$/0", user.ID)
	assert.False(t, user.Comma, "opening line never carries the comma")

	userClose := lines[7]
	assert.Equal(t, RoleClose, userClose.Role)
	assert.True(t, userClose.Comma)
	assert.False(t, userClose.HasKey)
}

func TestFlatten_Collapsed(t *testing.T) {
	root := sampleTree(t)

	lines := Flatten(root, map[string]bool{"$/0": true})
	require.Len(t, lines, 4)
	assert.Equal(t, RoleCollapsed, lines[1].Role)
	assert.Equal(t, "{…} 2 keys", lines[1].Text)
	assert.True(t, lines[1].Comma)

	lines = Flatten(root, map[string]bool{RootID: true})
	require.Len(t, lines, 1)
	assert.Equal(t, "{…} 2 keys", lines[0].Text)
}

func TestFlatten_Nil(t *testing.T) {
	assert.Nil(t, Flatten(nil, nil))
}

func TestCollapsedText_Singular(t *testing.T) {
	n := Format(Array{Number("1")})
	lines := Flatten(n, map[string]bool{RootID: true})
	require.Len(t, lines, 1)
	assert.Equal(t, "[…] 1 item", lines[0].Text)
}

func TestContainerIDs(t *testing.T) {
	ids := ContainerIDs(sampleTree(t))
	assert.Equal(t, []string{"$", "$/0", "$/0/1"}, ids)
}

func TestCollapseAll(t *testing.T) {
	root := sampleTree(t)
	collapsed := CollapseAll(root)

	assert.False(t, collapsed[RootID])
	assert.True(t, collapsed["$/0"])
	assert.True(t, collapsed["$/0/1"])

	lines := Flatten(root, collapsed)
	assert.Len(t, lines, 4)
}

func TestCollapseDepth(t *testing.T) {
	root := sampleTree(t)
	collapsed := CollapseDepth(root, 2)
	assert.Equal(t, map[string]bool{"$/0/1": true}, collapsed)
}

func TestToggleCollapse(t *testing.T) {
	original := map[string]bool{"$/0": true}

	toggled := ToggleCollapse(original, "$/1")
	assert.True(t, toggled["$/1"])
	assert.True(t, toggled["$/0"])
	assert.False(t, original["$/1"], "input is not mutated")

	toggled = ToggleCollapse(toggled, "$/0")
	assert.False(t, toggled["$/0"])
}

func TestMoveCursor(t *testing.T) {
	assert.Equal(t, 0, MoveCursor(0, -1, 5))
	assert.Equal(t, 1, MoveCursor(0, 1, 5))
	assert.Equal(t, 4, MoveCursor(3, 10, 5))
	assert.Equal(t, 0, MoveCursor(3, 1, 0))
}

func TestAdjustOffset(t *testing.T) {
	assert.Equal(t, 2, AdjustOffset(2, 5, 10))
	assert.Equal(t, 5, AdjustOffset(8, 5, 10))
	assert.Equal(t, 6, AdjustOffset(15, 5, 10))
	assert.Equal(t, 3, AdjustOffset(3, 0, 0))
}

func TestIndexOf(t *testing.T) {
	lines := Flatten(sampleTree(t), nil)
	assert.Equal(t, 0, IndexOf(lines, RootID))
	assert.Equal(t, 1, IndexOf(lines, "$/0"))
	assert.Equal(t, -1, IndexOf(lines, "$/9"))
}
