package bean

import (
	"fmt"
	"reflect"
	"time"
)

// Extension customises the conversion of the types it processes.
type Extension interface {
	// IsProcessable reports whether the extension handles values declared as t.
	IsProcessable(t reflect.Type) bool
	// Skip reports whether values of t are handed to the codec unchanged. Revert is still
	// called for them.
	Skip(t reflect.Type) bool
	Convert(original any, t reflect.Type, c *Converter) (any, error)
	Revert(persistent any, t reflect.Type, c *Converter) (any, error)
}

// BaseExtension can be embedded by extensions that never skip.
type BaseExtension struct{}

// Skip implements Extension.
func (BaseExtension) Skip(reflect.Type) bool {
	return false
}

// SliceExtension converts slices element by element. Slices of primitives are skipped.
type SliceExtension struct{}

func (*SliceExtension) IsProcessable(t reflect.Type) bool {
	return t.Kind() == reflect.Slice
}

func (*SliceExtension) Skip(t reflect.Type) bool {
	return isPrimitive(t.Elem())
}

func (*SliceExtension) Convert(original any, t reflect.Type, c *Converter) (any, error) {
	return convertElements(reflect.ValueOf(original), t.Elem(), c)
}

func (*SliceExtension) Revert(persistent any, t reflect.Type, c *Converter) (any, error) {
	if t.Elem().Kind() == reflect.Uint8 {
		if b, ok := decodeBytes(persistent); ok {
			return reflect.ValueOf(b).Convert(t).Interface(), nil
		}
	}

	rv := reflect.ValueOf(persistent)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, &TypeMismatchError{Declared: t, Actual: rv.Type(), Value: persistent}
	}

	out := reflect.MakeSlice(t, rv.Len(), rv.Len())
	if err := revertElements(rv, out, c); err != nil {
		return nil, err
	}

	return out.Interface(), nil
}

// ArrayExtension converts arrays of non-primitive elements into []any.
type ArrayExtension struct{}

func (*ArrayExtension) IsProcessable(t reflect.Type) bool {
	return t.Kind() == reflect.Array
}

func (*ArrayExtension) Skip(t reflect.Type) bool {
	return isPrimitive(t.Elem())
}

func (*ArrayExtension) Convert(original any, t reflect.Type, c *Converter) (any, error) {
	return convertElements(reflect.ValueOf(original), t.Elem(), c)
}

func (*ArrayExtension) Revert(persistent any, t reflect.Type, c *Converter) (any, error) {
	rv := reflect.ValueOf(persistent)
	if (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) || rv.Len() != t.Len() {
		return nil, &TypeMismatchError{Declared: t, Actual: rv.Type(), Value: persistent}
	}

	out := reflect.New(t).Elem()
	if err := revertElements(rv, out, c); err != nil {
		return nil, err
	}

	return out.Interface(), nil
}

func convertElements(rv reflect.Value, elem reflect.Type, c *Converter) (any, error) {
	out := make([]any, rv.Len())

	for i := range out {
		converted, err := c.Convert(rv.Index(i).Interface(), elem)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}

		out[i] = converted
	}

	return out, nil
}

func revertElements(from, to reflect.Value, c *Converter) error {
	elem := to.Type().Elem()

	for i := 0; i < from.Len(); i++ {
		v, err := c.RevertValue(from.Index(i).Interface(), elem)
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}

		to.Index(i).Set(v)
	}

	return nil
}

// MapWithStringKeyExtension converts maps keyed by strings. Maps with primitive values are
// skipped.
type MapWithStringKeyExtension struct{}

func (*MapWithStringKeyExtension) IsProcessable(t reflect.Type) bool {
	return t.Kind() == reflect.Map && t.Key().Kind() == reflect.String
}

func (*MapWithStringKeyExtension) Skip(t reflect.Type) bool {
	return isPrimitive(t.Elem())
}

func (*MapWithStringKeyExtension) Convert(original any, t reflect.Type, c *Converter) (any, error) {
	rv := reflect.ValueOf(original)
	out := make(map[string]any, rv.Len())

	iter := rv.MapRange()
	for iter.Next() {
		converted, err := c.Convert(iter.Value().Interface(), t.Elem())
		if err != nil {
			return nil, fmt.Errorf("map entry %q: %w", iter.Key().String(), err)
		}

		out[iter.Key().String()] = converted
	}

	return out, nil
}

func (*MapWithStringKeyExtension) Revert(persistent any, t reflect.Type, c *Converter) (any, error) {
	return revertMap(persistent, t, c)
}

// MapPrimitiveKeyExtension converts maps keyed by numbers or booleans into maps keyed by
// the keys' text.
type MapPrimitiveKeyExtension struct {
	BaseExtension
}

func (*MapPrimitiveKeyExtension) IsProcessable(t reflect.Type) bool {
	return t.Kind() == reflect.Map && t.Key().Kind() != reflect.String && isPrimitive(t.Key())
}

func (*MapPrimitiveKeyExtension) Convert(original any, t reflect.Type, c *Converter) (any, error) {
	rv := reflect.ValueOf(original)
	out := make(map[string]any, rv.Len())

	iter := rv.MapRange()
	for iter.Next() {
		key := formatKey(iter.Key())

		converted, err := c.Convert(iter.Value().Interface(), t.Elem())
		if err != nil {
			return nil, fmt.Errorf("map entry %s: %w", key, err)
		}

		out[key] = converted
	}

	return out, nil
}

func (*MapPrimitiveKeyExtension) Revert(persistent any, t reflect.Type, c *Converter) (any, error) {
	return revertMap(persistent, t, c)
}

func revertMap(persistent any, t reflect.Type, c *Converter) (any, error) {
	rv := reflect.ValueOf(persistent)
	if rv.Kind() != reflect.Map {
		return nil, &TypeMismatchError{Declared: t, Actual: rv.Type(), Value: persistent}
	}

	out := reflect.MakeMapWithSize(t, rv.Len())

	iter := rv.MapRange()
	for iter.Next() {
		var (
			key reflect.Value
			err error
		)

		if iter.Key().Kind() == reflect.String {
			key, err = parseKey(iter.Key().String(), t.Key())
		} else {
			key, err = coerce(iter.Key().Interface(), t.Key())
		}

		if err != nil {
			return nil, err
		}

		value, err := c.RevertValue(iter.Value().Interface(), t.Elem())
		if err != nil {
			return nil, fmt.Errorf("map entry %v: %w", iter.Key(), err)
		}

		out.SetMapIndex(key, value)
	}

	return out.Interface(), nil
}

// PointerExtension stores a pointer as the value it points to. A nil pointer and a pointer
// to a nil value cannot be told apart after reversion.
type PointerExtension struct {
	BaseExtension
}

func (*PointerExtension) IsProcessable(t reflect.Type) bool {
	return t.Kind() == reflect.Ptr
}

func (*PointerExtension) Convert(original any, t reflect.Type, c *Converter) (any, error) {
	return c.Convert(reflect.ValueOf(original).Elem().Interface(), t.Elem())
}

func (*PointerExtension) Revert(persistent any, t reflect.Type, c *Converter) (any, error) {
	v, err := c.RevertValue(persistent, t.Elem())
	if err != nil {
		return nil, err
	}

	ptr := reflect.New(t.Elem())
	ptr.Elem().Set(v)

	return ptr.Interface(), nil
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
)

// TimeExtension leaves time.Time and time.Duration to the codec and accepts their textual
// and numeric forms on reversion.
type TimeExtension struct{}

func (*TimeExtension) IsProcessable(t reflect.Type) bool {
	return t == timeType || t == durationType
}

func (*TimeExtension) Skip(reflect.Type) bool {
	return true
}

func (*TimeExtension) Convert(original any, _ reflect.Type, _ *Converter) (any, error) {
	return original, nil
}

func (*TimeExtension) Revert(persistent any, t reflect.Type, _ *Converter) (any, error) {
	switch v := persistent.(type) {
	case time.Time, time.Duration:
		return v, nil
	case string:
		if t == timeType {
			parsed, err := time.Parse(time.RFC3339Nano, v)
			if err != nil {
				return nil, fmt.Errorf("parse time %q: %w", v, err)
			}

			return parsed, nil
		}

		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse duration %q: %w", v, err)
		}

		return parsed, nil
	}

	if t == durationType {
		if n, ok := toInt64(persistent); ok {
			return time.Duration(n), nil
		}
	}

	return nil, &TypeMismatchError{Declared: t, Actual: reflect.TypeOf(persistent), Value: persistent}
}
