package http

import (
	"testing"

	"github.com/artpar/curl2json/internal/core"
	"github.com/artpar/curl2json/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsJSONContentType(t *testing.T) {
	assert.True(t, IsJSONContentType("application/json"))
	assert.True(t, IsJSONContentType("application/json; charset=utf-8"))
	assert.True(t, IsJSONContentType("APPLICATION/JSON"))
	assert.False(t, IsJSONContentType("application/problem+json"))
	assert.False(t, IsJSONContentType("text/plain"))
	assert.False(t, IsJSONContentType(""))
}

func TestDecodeBody(t *testing.T) {
	t.Run("declared JSON", func(t *testing.T) {
		v, err := DecodeBody("application/json", []byte(`{"b":1,"a":2}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"b", "a"}, v.(tree.Object).Keys())
	})

	t.Run("declared JSON that is empty", func(t *testing.T) {
		_, err := DecodeBody("application/json", nil)

		var decodeErr *core.DecodeError
		require.ErrorAs(t, err, &decodeErr)
		assert.ErrorIs(t, err, tree.ErrEmptyInput)
	})

	t.Run("undeclared JSON scalar", func(t *testing.T) {
		v, err := DecodeBody("", []byte(`"hello"`))
		require.NoError(t, err)
		assert.Equal(t, tree.String("hello"), v)
	})

	t.Run("undeclared text", func(t *testing.T) {
		v, err := DecodeBody("text/plain", []byte("plain text"))
		require.NoError(t, err)
		assert.Equal(t, tree.Object{
			{Key: "_raw", Value: tree.String("plain text")},
			{Key: "_note", Value: tree.String("Response was not valid JSON, displaying as text")},
		}, v)
	})

	t.Run("trailing data is not JSON", func(t *testing.T) {
		v, err := DecodeBody("text/plain", []byte(`{} {}`))
		require.NoError(t, err)
		text, ok := RawText(v)
		assert.True(t, ok)
		assert.Equal(t, "{} {}", text)
	})
}

func TestRawText(t *testing.T) {
	_, ok := RawText(tree.Object{{Key: "_raw", Value: tree.String("x")}})
	assert.False(t, ok)

	_, ok = RawText(tree.Object{
		{Key: "_raw", Value: tree.String("x")},
		{Key: "_note", Value: tree.String("something else")},
	})
	assert.False(t, ok)

	_, ok = RawText(tree.String("x"))
	assert.False(t, ok)

	text, ok := RawText(RawWrapper("body"))
	assert.True(t, ok)
	assert.Equal(t, "body", text)
}
