package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRequest(t *testing.T) {
	t.Run("defaults to GET without body", func(t *testing.T) {
		req := NewRequest()
		assert.NotEmpty(t, req.ID())
		assert.Equal(t, MethodGet, req.Method())
		assert.Empty(t, req.URL())
		assert.Empty(t, req.Headers())
		assert.False(t, req.HasBody())
	})

	t.Run("generates unique IDs", func(t *testing.T) {
		assert.NotEqual(t, NewRequest().ID(), NewRequest().ID())
	})
}

func TestRequest_SetMethod(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"post", "POST"},
		{"Patch", "PATCH"},
		{"", "GET"},
		{"  delete ", "DELETE"},
		{"purge", "PURGE"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			req := NewRequest()
			req.SetMethod(tt.input)
			assert.Equal(t, tt.want, req.Method())
		})
	}
}

func TestRequest_Headers(t *testing.T) {
	t.Run("last write wins", func(t *testing.T) {
		req := NewRequest()
		req.SetHeader("A", "1")
		req.SetHeader("A", "2")

		v, ok := req.Header("A")
		assert.True(t, ok)
		assert.Equal(t, "2", v)
	})

	t.Run("case is preserved", func(t *testing.T) {
		req := NewRequest()
		req.SetHeader("x-Custom", "v")
		req.SetHeader("X-CUSTOM", "w")

		assert.Len(t, req.Headers(), 2)
		_, ok := req.Header("x-custom")
		assert.False(t, ok, "exact lookup is case sensitive")
	})

	t.Run("lookup ignores case", func(t *testing.T) {
		req := NewRequest()
		req.SetHeader("content-type", "text/plain")

		v, ok := req.LookupHeader("Content-Type")
		assert.True(t, ok)
		assert.Equal(t, "text/plain", v)

		_, ok = req.LookupHeader("Accept")
		assert.False(t, ok)
	})

	t.Run("empty names are dropped", func(t *testing.T) {
		req := NewRequest()
		req.SetHeader("", "v")
		assert.Empty(t, req.Headers())
	})

	t.Run("returned map is a copy", func(t *testing.T) {
		req := NewRequest()
		req.SetHeader("A", "1")

		h := req.Headers()
		h["B"] = "2"
		assert.Len(t, req.Headers(), 1)
	})

	t.Run("names are sorted", func(t *testing.T) {
		req := NewRequest()
		req.SetHeader("b", "1")
		req.SetHeader("A", "1")
		req.SetHeader("a", "1")
		assert.Equal(t, []string{"A", "a", "b"}, req.HeaderNames())
	})
}

func TestRequest_SetBody(t *testing.T) {
	t.Run("stores non-empty body", func(t *testing.T) {
		req := NewRequest()
		req.SetBody(`{"a":1}`)

		body, ok := req.Body()
		assert.True(t, ok)
		assert.Equal(t, `{"a":1}`, body)
	})

	t.Run("empty body is not set", func(t *testing.T) {
		req := NewRequest()
		req.SetBody("")
		assert.False(t, req.HasBody())
	})

	t.Run("empty body keeps previous body", func(t *testing.T) {
		req := NewRequest()
		req.SetBody("first")
		req.SetBody("")

		body, _ := req.Body()
		assert.Equal(t, "first", body)
	})
}

func TestRequest_Validate(t *testing.T) {
	req := NewRequest()
	assert.ErrorIs(t, req.Validate(), ErrMissingURL)

	req.SetURL("https://example.com")
	assert.NoError(t, req.Validate())
}

func TestRequest_Clone(t *testing.T) {
	req := NewRequest()
	req.SetMethod("PUT")
	req.SetURL("https://example.com")
	req.SetHeader("A", "1")
	req.SetBody("x")

	clone := req.Clone()
	assert.NotEqual(t, req.ID(), clone.ID())
	assert.Equal(t, req.Method(), clone.Method())
	assert.Equal(t, req.URL(), clone.URL())
	assert.Equal(t, req.Headers(), clone.Headers())
	assert.True(t, clone.HasBody())

	clone.SetHeader("B", "2")
	assert.Len(t, req.Headers(), 1)
}

func TestMethodHelpers(t *testing.T) {
	assert.True(t, IsKnownMethod("GET"))
	assert.True(t, IsKnownMethod("OPTIONS"))
	assert.False(t, IsKnownMethod("get"))
	assert.False(t, IsKnownMethod("PURGE"))

	assert.True(t, MethodAllowsBody("POST"))
	assert.True(t, MethodAllowsBody("PUT"))
	assert.True(t, MethodAllowsBody("PATCH"))
	assert.False(t, MethodAllowsBody("GET"))
	assert.False(t, MethodAllowsBody("DELETE"))
}
