package bean

import (
	"encoding/base64"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// isPrimitive reports whether values of t are handed to codecs unchanged.
func isPrimitive(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// number is implemented by json.Number.
type number interface {
	Int64() (int64, error)
	Float64() (float64, error)
}

// normalize turns codec-specific number representations inside a value held by an
// interface into int or float64.
func normalize(value any) any {
	switch v := value.(type) {
	case number:
		if i, err := v.Int64(); err == nil && i >= math.MinInt && i <= math.MaxInt {
			return int(i)
		}

		if f, err := v.Float64(); err == nil {
			return f
		}

		return fmt.Sprint(v)
	case Bytes:
		return []byte(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = normalize(e)
		}

		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = normalize(e)
		}

		return out
	default:
		return value
	}
}

// coerce converts a decoded primitive into t.
func coerce(value any, t reflect.Type) (reflect.Value, error) {
	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(t) {
		out := reflect.New(t).Elem()
		out.Set(rv)

		return out, nil
	}

	mismatch := &TypeMismatchError{Declared: t, Actual: rv.Type(), Value: value}
	out := reflect.New(t).Elem()

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, ok := toInt64(value)
		if !ok || out.OverflowInt(i) {
			return reflect.Value{}, mismatch
		}

		out.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, ok := toUint64(value)
		if !ok || out.OverflowUint(u) {
			return reflect.Value{}, mismatch
		}

		out.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, ok := toFloat64(value)
		if !ok {
			return reflect.Value{}, mismatch
		}

		out.SetFloat(f)
	case reflect.Bool, reflect.String:
		if _, isNumber := value.(number); isNumber || rv.Kind() != t.Kind() {
			return reflect.Value{}, mismatch
		}

		out.Set(rv.Convert(t))
	default:
		return reflect.Value{}, mismatch
	}

	return out, nil
}

func toInt64(value any) (int64, bool) {
	if n, ok := value.(number); ok {
		i, err := n.Int64()
		return i, err == nil
	}

	rv := reflect.ValueOf(value)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		return int64(u), u <= math.MaxInt64
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return int64(f), f == math.Trunc(f) && f >= math.MinInt64 && f <= math.MaxInt64
	default:
		return 0, false
	}
}

func toUint64(value any) (uint64, bool) {
	if n, ok := value.(number); ok {
		u, err := strconv.ParseUint(fmt.Sprint(n), 10, 64)
		return u, err == nil
	}

	rv := reflect.ValueOf(value)

	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return uint64(rv.Int()), rv.Int() >= 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return uint64(f), f == math.Trunc(f) && f >= 0 && f <= math.MaxUint64
	default:
		return 0, false
	}
}

func toFloat64(value any) (float64, bool) {
	if n, ok := value.(number); ok {
		f, err := n.Float64()
		return f, err == nil
	}

	rv := reflect.ValueOf(value)

	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	default:
		return 0, false
	}
}

// formatKey renders a primitive map key.
func formatKey(key reflect.Value) string {
	return fmt.Sprint(key.Interface())
}

// parseKey is the inverse of formatKey.
func parseKey(key string, t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()

	var err error

	switch t.Kind() {
	case reflect.String:
		out.SetString(key)
	case reflect.Bool:
		var b bool
		b, err = strconv.ParseBool(key)
		out.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var i int64
		i, err = strconv.ParseInt(key, 10, t.Bits())
		out.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var u uint64
		u, err = strconv.ParseUint(key, 10, t.Bits())
		out.SetUint(u)
	case reflect.Float32, reflect.Float64:
		var f float64
		f, err = strconv.ParseFloat(key, t.Bits())
		out.SetFloat(f)
	default:
		return reflect.Value{}, &UnsupportedTypeError{Type: t, Reason: "map keys must be of a primitive kind"}
	}

	if err != nil {
		return reflect.Value{}, fmt.Errorf("parse map key %q as %s: %w", key, t, err)
	}

	return out, nil
}

// decodeBytes accepts the base64 text codecs use for byte slices.
func decodeBytes(value any) ([]byte, bool) {
	switch v := value.(type) {
	case Bytes:
		return []byte(v), true
	case []byte:
		return v, true
	case string:
		b, err := base64.StdEncoding.DecodeString(v)
		return b, err == nil
	default:
		return nil, false
	}
}
