package codec

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"math"
	"reflect"
)

// Encode serializes v to its textual wire form.
//
// []byte and [Bytes] values are tagged at any depth of slices, arrays and
// string-keyed maps, typed or generic. Structs are marshaled through
// encoding/json, so their binary fields must be declared as [Bytes] to be
// tagged.
func Encode(v any) (string, error) {
	out, err := json.Marshal(tagBinary(v))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Decode parses s into a generic tree of map[string]any, []any, string,
// float64, bool, nil and []byte (for tagged buffers).
func Decode(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return revive(v)
}

// DecodeInto parses s into dst, which must be a non-nil pointer.
func DecodeInto(s string, dst any) error {
	if err := json.Unmarshal([]byte(s), dst); err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			return de
		}
		return &DecodeError{Err: err}
	}
	return nil
}

var marshalerType = reflect.TypeFor[json.Marshaler]()

// tagBinary rebuilds v with every []byte replaced by Bytes. Typed slices,
// arrays, string-keyed maps and pointers to them are walked; values that
// marshal themselves and structs are left to encoding/json.
func tagBinary(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case []byte:
		return Bytes(t)
	case json.Marshaler:
		return v
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = tagBinary(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = tagBinary(item)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return nil
		}
		elem := rv.Type().Elem()
		if elem.Kind() == reflect.Uint8 && !elem.Implements(marshalerType) {
			return Bytes(rv.Bytes())
		}
		return tagList(rv)
	case reflect.Array:
		// Byte arrays marshal as numbers, not base64.
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		return tagList(rv)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		if rv.IsNil() {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = tagBinary(iter.Value().Interface())
		}
		return out
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		if rv.Elem().Kind() == reflect.Struct {
			return v
		}
		return tagBinary(rv.Elem().Interface())
	default:
		return v
	}
}

func tagList(rv reflect.Value) []any {
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = tagBinary(rv.Index(i).Interface())
	}
	return out
}

func revive(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		raw, ok, err := reviveBuffer(t)
		if err != nil {
			return nil, err
		}
		if ok {
			return raw, nil
		}
		for k, item := range t {
			r, err := revive(item)
			if err != nil {
				return nil, err
			}
			t[k] = r
		}
		return t, nil
	case []any:
		for i, item := range t {
			r, err := revive(item)
			if err != nil {
				return nil, err
			}
			t[i] = r
		}
		return t, nil
	default:
		return v, nil
	}
}

// reviveBuffer reports whether obj is a tagged buffer and, if so, its bytes.
func reviveBuffer(obj map[string]any) ([]byte, bool, error) {
	typ, _ := obj["type"].(string)
	flag, _ := obj["buffer"].(bool)
	if typ != bufferTag && !flag {
		return nil, false, nil
	}

	payload, ok := obj["data"]
	if !ok || payload == nil {
		payload = obj["value"]
	}

	switch p := payload.(type) {
	case string:
		raw, err := base64.StdEncoding.DecodeString(p)
		if err != nil {
			return nil, false, decodeErr("buffer payload: %w", err)
		}
		return raw, true, nil
	case []any:
		raw := make([]byte, len(p))
		for i, item := range p {
			n, ok := item.(float64)
			if !ok || n < 0 || n > math.MaxUint8 || n != math.Trunc(n) {
				return nil, false, decodeErr("buffer payload: element %d is not a byte", i)
			}
			raw[i] = byte(n)
		}
		return raw, true, nil
	case nil:
		return []byte{}, true, nil
	default:
		return nil, false, decodeErr("buffer payload: unsupported type %T", payload)
	}
}
