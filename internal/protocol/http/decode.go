package http

import (
	"strings"

	"github.com/artpar/curl2json/internal/core"
	"github.com/artpar/curl2json/internal/tree"
)

// Keys of the object that stands in for a body that is not JSON.
const (
	RawKey  = "_raw"
	NoteKey = "_note"
)

// RawNote explains why a body is shown as text.
const RawNote = "Response was not valid JSON, displaying as text"

// IsJSONContentType reports whether a Content-Type declares JSON.
func IsJSONContentType(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/json")
}

// DecodeBody turns a response payload into a tree value.
//
// A payload declared as application/json must parse, otherwise a
// *core.DecodeError is returned. Anything else is parsed opportunistically
// and falls back to RawWrapper.
func DecodeBody(contentType string, body []byte) (tree.Value, error) {
	if IsJSONContentType(contentType) {
		v, err := tree.Decode(body)
		if err != nil {
			return nil, &core.DecodeError{ContentType: contentType, Err: err}
		}
		return v, nil
	}

	if v, err := tree.Decode(body); err == nil {
		return v, nil
	}
	return RawWrapper(string(body)), nil
}

// RawWrapper builds the {_raw, _note} object used for non-JSON bodies.
func RawWrapper(text string) tree.Object {
	return tree.Object{
		{Key: RawKey, Value: tree.String(text)},
		{Key: NoteKey, Value: tree.String(RawNote)},
	}
}

// RawText returns the text held by a RawWrapper object.
func RawText(v tree.Value) (string, bool) {
	obj, ok := v.(tree.Object)
	if !ok || len(obj) != 2 {
		return "", false
	}
	raw, ok := obj.Get(RawKey)
	if !ok {
		return "", false
	}
	note, ok := obj.Get(NoteKey)
	if !ok || note != tree.String(RawNote) {
		return "", false
	}
	s, ok := raw.(tree.String)
	return string(s), ok
}
