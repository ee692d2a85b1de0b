package query

import (
	"testing"

	"github.com/artpar/curl2json/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecode(t *testing.T, s string) tree.Value {
	t.Helper()
	v, err := tree.Decode([]byte(s))
	require.NoError(t, err)
	return v
}

func TestApply(t *testing.T) {
	body := mustDecode(t, `{
		"items": [
			{"name": "a", "status": "active", "size": 3},
			{"name": "b", "status": "inactive", "size": 1.5},
			{"name": "c", "status": "active", "size": 10}
		],
		"meta": {"total": 3}
	}`)

	tests := []struct {
		name       string
		expression string
		want       tree.Value
	}{
		{
			name:       "field",
			expression: "meta.total",
			want:       tree.Number("3"),
		},
		{
			name:       "projection",
			expression: "items[].name",
			want:       tree.Array{tree.String("a"), tree.String("b"), tree.String("c")},
		},
		{
			name:       "filter",
			expression: "items[?status=='active'].name",
			want:       tree.Array{tree.String("a"), tree.String("c")},
		},
		{
			name:       "fractional numbers",
			expression: "items[1].size",
			want:       tree.Number("1.5"),
		},
		{
			name:       "function",
			expression: "length(items)",
			want:       tree.Number("3"),
		},
		{
			name:       "missing field",
			expression: "nope",
			want:       tree.Null{},
		},
		{
			name:       "multiselect hash sorts keys",
			expression: "items[0].{z: name, a: size}",
			want: tree.Object{
				{Key: "a", Value: tree.Number("3")},
				{Key: "z", Value: tree.String("a")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(body, tt.expression)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply_InvalidExpression(t *testing.T) {
	_, err := Apply(tree.Object{}, "items[?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JMESPath expression")
}

func TestApply_RuntimeError(t *testing.T) {
	_, err := Apply(tree.Object{{Key: "a", Value: tree.String("x")}}, "abs(a)")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JMESPath search failed")
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate("a.b[0]"))
	assert.Error(t, Validate("a.["))
}
