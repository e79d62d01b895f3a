package transport

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// Options is an open set of request options supplied by callers. Values must
// be primitives: strings, booleans or numbers.
type Options map[string]any

// Params are encoded request parameters, ready for a query string or form.
type Params map[string]string

// BoolEncoding selects how booleans are rendered for a given endpoint.
type BoolEncoding int

const (
	// BoolTrueFalse renders "true"/"false", used by most endpoints.
	BoolTrueFalse BoolEncoding = iota
	// BoolYesNo renders "yes"/"no", used by the Rupantor geocoder.
	BoolYesNo
)

func (e BoolEncoding) format(v bool) string {
	if e == BoolYesNo {
		if v {
			return "yes"
		}
		return "no"
	}
	return strconv.FormatBool(v)
}

// Encode converts options into params with the given boolean encoding.
func (o Options) Encode(enc BoolEncoding) (Params, error) {
	out := make(Params, len(o))
	for key, value := range o {
		s, err := encodeValue(value, enc)
		if err != nil {
			return nil, NewValidationError("option %q: %v", key, err)
		}
		out[key] = s
	}
	return out, nil
}

// Keys returns the option names in sorted order.
func (o Options) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key is set.
func (o Options) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// String returns the option as a string when its kind is string, so named
// string types like route.Profile are read too.
func (o Options) String(key string) (string, bool) {
	v, ok := o[key]
	if !ok || v == nil {
		return "", false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.String {
		return "", false
	}
	return rv.String(), true
}

// Clone returns a shallow copy, never nil.
func (o Options) Clone() Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// encodeValue renders a primitive option. Named types such as route.Profile
// are accepted through their underlying kind.
func encodeValue(value any, enc BoolEncoding) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", fmt.Errorf("value is nil")
	case string:
		return v, nil
	case bool:
		return enc.format(v), nil
	case fmt.Stringer:
		return v.String(), nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return enc.format(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", value)
	}
}

// Merge copies src into p, overwriting existing keys, and returns p.
func (p Params) Merge(src Params) Params {
	for k, v := range src {
		p[k] = v
	}
	return p
}

func (p Params) clone() Params {
	out := make(Params, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	return out
}
