package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_Scalars(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		wantKind Kind
		wantText string
	}{
		{"null", Null{}, KindNull, "null"},
		{"nil value", nil, KindNull, "null"},
		{"true", Bool(true), KindBool, "true"},
		{"false", Bool(false), KindBool, "false"},
		{"number", Number("3.14"), KindNumber, "3.14"},
		{"string is quoted", String("hi"), KindString, `"hi"`},
		{"string escapes quotes", String(`say "x"`), KindString, `"say \"x\""`},
		{"string keeps html", String("<b>"), KindString, `"<b>"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Format(tt.value)
			assert.Equal(t, tt.wantKind, n.Kind)
			assert.Equal(t, tt.wantText, n.Text)
			assert.True(t, n.IsLeaf())
			assert.Empty(t, n.Children)
			assert.Equal(t, 0, n.Depth)
			assert.Equal(t, -1, n.Index)
		})
	}
}

func TestFormat_EmptyContainersAreLeaves(t *testing.T) {
	t.Run("empty object", func(t *testing.T) {
		n := Format(Object{})
		assert.Equal(t, KindEmptyObject, n.Kind)
		assert.Equal(t, "{}", n.Text)
		assert.True(t, n.IsLeaf())
		assert.Nil(t, n.Children)
	})

	t.Run("empty array", func(t *testing.T) {
		n := Format(Array{})
		assert.Equal(t, KindEmptyArray, n.Kind)
		assert.Equal(t, "[]", n.Text)
		assert.True(t, n.IsLeaf())
		assert.Nil(t, n.Children)
	})

	t.Run("nil array", func(t *testing.T) {
		n := Format(Array(nil))
		assert.Equal(t, KindEmptyArray, n.Kind)
	})
}

func TestFormat_Array(t *testing.T) {
	n := Format(Array{Number("1"), String("two"), Null{}})

	require.Equal(t, KindArray, n.Kind)
	require.Len(t, n.Children, 3)

	for i, child := range n.Children {
		assert.Equal(t, i, child.Index)
		assert.Equal(t, 1, child.Depth)
		assert.False(t, child.HasKey)
	}
	assert.True(t, n.Children[0].Comma)
	assert.True(t, n.Children[1].Comma)
	assert.False(t, n.Children[2].Comma, "last element has no trailing comma")
	assert.False(t, n.Comma)
}

func TestFormat_Object(t *testing.T) {
	n := Format(Object{
		{Key: "name", Value: String("Ada")},
		{Key: "tags", Value: Array{String("x")}},
		{Key: "name", Value: String("dup")},
	})

	require.Equal(t, KindObject, n.Kind)
	require.Len(t, n.Children, 3)

	assert.Equal(t, "name", n.Children[0].Key)
	assert.Equal(t, "tags", n.Children[1].Key)
	assert.Equal(t, "name", n.Children[2].Key, "duplicate keys are kept in order")

	for _, child := range n.Children {
		assert.True(t, child.HasKey)
		assert.Equal(t, -1, child.Index)
		assert.Equal(t, 1, child.Depth)
	}

	tags := n.Children[1]
	require.Len(t, tags.Children, 1)
	assert.Equal(t, 2, tags.Children[0].Depth)
	assert.Equal(t, 0, tags.Children[0].Index)
	assert.False(t, tags.Children[0].Comma)

	assert.True(t, n.Children[0].Comma)
	assert.True(t, n.Children[1].Comma)
	assert.False(t, n.Children[2].Comma)
}

func TestFormat_Idempotent(t *testing.T) {
	v, err := Decode([]byte(`{"a": [1, {"b": null, "c": []}], "d": {}, "e": "x"}`))
	require.NoError(t, err)

	first := Format(v)
	second := Format(v)

	assert.Equal(t, first, second)
	assert.NotSame(t, first, second)
}

func TestFormat_DepthMatchesSource(t *testing.T) {
	v, err := Decode([]byte(`[[[[1]]]]`))
	require.NoError(t, err)

	n := Format(v)
	depth := 0
	for !n.IsLeaf() {
		require.Len(t, n.Children, 1)
		n = n.Children[0]
		depth++
	}
	assert.Equal(t, 4, depth)
	assert.Equal(t, 4, n.Depth)
	assert.Equal(t, "1", n.Text)
}

func TestNode_Count(t *testing.T) {
	n := Format(Object{
		{Key: "a", Value: Array{Number("1"), Number("2")}},
		{Key: "b", Value: Null{}},
	})
	assert.Equal(t, 5, n.Count())
}
