// Package tree models decoded response bodies and turns them into indented,
// typed display trees.
package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Kind tags values and display nodes.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	// Only display nodes carry the empty container kinds.
	KindEmptyArray
	KindEmptyObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindEmptyArray:
		return "empty array"
	case KindEmptyObject:
		return "empty object"
	default:
		return "unknown"
	}
}

// Value is a decoded data value. The set of implementations is closed:
// Null, Bool, Number, String, Array and Object.
type Value interface {
	Kind() Kind
	value()
}

type Null struct{}

type Bool bool

// Number keeps the literal text so large or precise numbers survive.
type Number string

type String string

type Array []Value

// Member is one key/value pair of an Object.
type Member struct {
	Key   string
	Value Value
}

// Object keeps members in source order. Duplicate keys are preserved.
type Object []Member

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBool }
func (Number) Kind() Kind { return KindNumber }
func (String) Kind() Kind { return KindString }
func (Array) Kind() Kind  { return KindArray }
func (Object) Kind() Kind { return KindObject }

func (Null) value()   {}
func (Bool) value()   {}
func (Number) value() {}
func (String) value() {}
func (Array) value()  {}
func (Object) value() {}

// Get returns the last member named key, matching what a JSON object lookup
// would see.
func (o Object) Get(key string) (Value, bool) {
	for i := len(o) - 1; i >= 0; i-- {
		if o[i].Key == key {
			return o[i].Value, true
		}
	}
	return nil, false
}

// Keys returns member keys in order, including duplicates.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}
	return keys
}

// Float parses the number literal.
func (n Number) Float() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// FromAny converts a Go value, as produced by encoding/json or a scripting
// runtime, into a Value. Anything without a data representation becomes a
// String holding its fmt rendering.
func FromAny(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null{}
	case Value:
		return t
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case json.Number:
		return Number(t)
	case float64:
		return numberFromFloat(t)
	case float32:
		return numberFromFloat(float64(t))
	case int:
		return Number(strconv.Itoa(t))
	case int64:
		return Number(strconv.FormatInt(t, 10))
	case int32:
		return Number(strconv.FormatInt(int64(t), 10))
	case uint64:
		return Number(strconv.FormatUint(t, 10))
	case []any:
		arr := make(Array, len(t))
		for i, el := range t {
			arr[i] = FromAny(el)
		}
		return arr
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := make(Object, 0, len(keys))
		for _, k := range keys {
			obj = append(obj, Member{Key: k, Value: FromAny(t[k])})
		}
		return obj
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() != reflect.Uint8 {
			arr := make(Array, rv.Len())
			for i := range arr {
				arr[i] = FromAny(rv.Index(i).Interface())
			}
			return arr
		}
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			m := make(map[string]any, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				m[iter.Key().String()] = iter.Value().Interface()
			}
			return FromAny(m)
		}
	}
	return String(fmt.Sprint(v))
}

func numberFromFloat(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return String(strconv.FormatFloat(f, 'g', -1, 64))
	}
	return Number(strconv.FormatFloat(f, 'f', -1, 64))
}

// ToAny converts a Value into plain Go data (map[string]any, []any, float64,
// string, bool, nil). Duplicate object keys collapse to the last member.
func ToAny(v Value) any {
	switch t := v.(type) {
	case Bool:
		return bool(t)
	case Number:
		if f, err := t.Float(); err == nil {
			return f
		}
		return string(t)
	case String:
		return string(t)
	case Array:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = ToAny(el)
		}
		return out
	case Object:
		out := make(map[string]any, len(t))
		for _, m := range t {
			out[m.Key] = ToAny(m.Value)
		}
		return out
	default:
		return nil
	}
}

// Marshal re-stringifies a value as JSON, keeping member order and
// duplicates. A non-empty indent produces multi-line output.
func Marshal(v Value, indent string) []byte {
	var buf bytes.Buffer
	writeJSON(&buf, v, indent, 0)
	return buf.Bytes()
}

func writeJSON(buf *bytes.Buffer, v Value, indent string, depth int) {
	newline := func(d int) {
		if indent == "" {
			return
		}
		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat(indent, d))
	}

	switch t := v.(type) {
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(t)))
	case Number:
		buf.WriteString(string(t))
	case String:
		buf.WriteString(quote(string(t)))
	case Array:
		if len(t) == 0 {
			buf.WriteString("[]")
			return
		}
		buf.WriteByte('[')
		for i, el := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			newline(depth + 1)
			writeJSON(buf, el, indent, depth+1)
		}
		newline(depth)
		buf.WriteByte(']')
	case Object:
		if len(t) == 0 {
			buf.WriteString("{}")
			return
		}
		buf.WriteByte('{')
		for i, m := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			newline(depth + 1)
			buf.WriteString(quote(m.Key))
			buf.WriteByte(':')
			if indent != "" {
				buf.WriteByte(' ')
			}
			writeJSON(buf, m.Value, indent, depth+1)
		}
		newline(depth)
		buf.WriteByte('}')
	default:
		buf.WriteString("null")
	}
}

// quote renders s as a JSON string literal without HTML escaping.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return strconv.Quote(s)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
