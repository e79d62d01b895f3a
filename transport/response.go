package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Shape tells whether the upstream JSON was an array or an object.
type Shape uint8

const (
	ShapeObject Shape = iota
	ShapeList
)

func (s Shape) String() string {
	if s == ShapeList {
		return "list"
	}
	return "object"
}

// Result is a normalized 2xx response. The shape is decided once, from the
// first JSON token of the body; exactly one of the object or list views is
// populated. Empty, null and malformed bodies become an empty object.
type Result struct {
	httpStatus int
	shape      Shape
	object     map[string]any
	list       []any
	raw        json.RawMessage
}

// NewResult normalizes a successful body.
func NewResult(httpStatus int, body []byte) *Result {
	r := &Result{httpStatus: httpStatus, shape: ShapeObject, object: map[string]any{}}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return r
	}
	switch trimmed[0] {
	case '[':
		var list []any
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return r
		}
		r.shape = ShapeList
		r.list = list
		r.object = nil
		r.raw = append(json.RawMessage(nil), trimmed...)
	case '{':
		var obj map[string]any
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return r
		}
		r.object = obj
		r.raw = append(json.RawMessage(nil), trimmed...)
	}
	return r
}

func (r *Result) Shape() Shape { return r.shape }

func (r *Result) IsList() bool { return r.shape == ShapeList }

// HTTPStatus is the transport level status code.
func (r *Result) HTTPStatus() int { return r.httpStatus }

// Object returns the named fields of an object-shaped result, or nil for a list.
func (r *Result) Object() map[string]any { return r.object }

// List returns the elements of a list-shaped result, or nil for an object.
func (r *Result) List() []any { return r.list }

// Len is the number of elements or fields.
func (r *Result) Len() int {
	if r.IsList() {
		return len(r.list)
	}
	return len(r.object)
}

// Get looks up a top level field of an object-shaped result.
func (r *Result) Get(key string) (any, bool) {
	if r.object == nil {
		return nil, false
	}
	v, ok := r.object[key]
	return v, ok
}

// Status returns the "status" field the Barikoi API embeds in most payloads,
// or 0 when absent.
func (r *Result) Status() int {
	v, ok := r.Get("status")
	if !ok {
		return 0
	}
	switch typed := v.(type) {
	case float64:
		return int(typed)
	case string:
		var n int
		if _, err := fmt.Sscanf(typed, "%d", &n); err == nil {
			return n
		}
	}
	return 0
}

// Message returns the "message" field when it is a string.
func (r *Result) Message() string {
	v, _ := r.Get("message")
	s, _ := v.(string)
	return s
}

// Records returns the object elements of the result. For a list-shaped
// result these are the list items; for an object-shaped one, the items of
// the first array-valued field among key, if given.
func (r *Result) Records(key ...string) []map[string]any {
	values := r.list
	if !r.IsList() {
		values = nil
		for _, k := range key {
			if arr, ok := r.object[k].([]any); ok {
				values = arr
				break
			}
		}
	}
	if len(values) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(values))
	for _, v := range values {
		if obj, ok := v.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

// Raw returns the original JSON, or an empty object/array literal when the
// body was empty or malformed.
func (r *Result) Raw() json.RawMessage {
	if len(r.raw) > 0 {
		return r.raw
	}
	if r.IsList() {
		return json.RawMessage("[]")
	}
	return json.RawMessage("{}")
}

// Decode unmarshals the raw body into v.
func (r *Result) Decode(v any) error {
	if err := json.Unmarshal(r.Raw(), v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// MarshalJSON renders the normalized payload.
func (r *Result) MarshalJSON() ([]byte, error) {
	return r.Raw(), nil
}
