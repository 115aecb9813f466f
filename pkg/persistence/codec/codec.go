// Package codec maps a persistence.Model to a document of plain maps, slices and scalars
// that any text format can marshal, and back.
//
// Document layout:
//
//	{"id": "...", "sampleMethodToSampleMap": {"<sample id>": {"callMap": [
//	    {"parameter": {"args": [...]}, "returnValue": ...}]}}}
//
// Beans are objects {"@bean": {...}}, with "@type" added for polymorphic beans. Values with
// a serializer are written as ["@<name>", encoded]. Byte slices are base64 strings, tagged
// as ["@bytes", "..."] when they were held by an interface (bean.Bytes). Lists
// starting with an "@" string and maps with "@" keys are escaped as ["@list", [...]] and
// {"@map": {...}}.
package codec

import (
	"encoding/base64"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"deepsampler.dev/pkg/deepsampler/pkg/bean"
	"deepsampler.dev/pkg/deepsampler/pkg/persistence"
)

const (
	keyID       = "id"
	keySamples  = "sampleMethodToSampleMap"
	keyCalls    = "callMap"
	keyParam    = "parameter"
	keyArgs     = "args"
	keyReturn   = "returnValue"
	tagBean     = "@bean"
	tagType     = "@type"
	tagMap      = "@map"
	tagList     = "@list"
	tagPrefix   = "@"
	timeName    = "time.Time"
	durationKey = "time.Duration"
	bytesName   = "bytes"
)

// Serializer writes values of Type as ["@<Name>", Encode(value)].
type Serializer struct {
	Name   string
	Type   reflect.Type
	Encode func(value any) (any, error)
	Decode func(raw any) (any, error)
}

// Codec converts models to documents. The zero value is not usable; call New.
type Codec struct {
	mu     sync.RWMutex
	byType map[reflect.Type]Serializer
	byName map[string]Serializer
}

// New returns a Codec with serializers for time.Time, time.Duration and bean.Bytes.
func New() *Codec {
	c := &Codec{
		byType: make(map[reflect.Type]Serializer),
		byName: make(map[string]Serializer),
	}

	c.Register(Serializer{
		Name: timeName,
		Type: reflect.TypeOf(time.Time{}),
		Encode: func(value any) (any, error) {
			return value.(time.Time).Format(time.RFC3339Nano), nil
		},
		Decode: func(raw any) (any, error) {
			switch v := raw.(type) {
			case time.Time:
				return v, nil
			case string:
				return time.Parse(time.RFC3339Nano, v)
			default:
				return nil, fmt.Errorf("%s must be a string, got %T", timeName, raw)
			}
		},
	})

	c.Register(Serializer{
		Name: durationKey,
		Type: reflect.TypeOf(time.Duration(0)),
		Encode: func(value any) (any, error) {
			return int64(value.(time.Duration)), nil
		},
		Decode: func(raw any) (any, error) {
			n, ok := asInt64(raw)
			if !ok {
				return nil, fmt.Errorf("%s must be an integer, got %T", durationKey, raw)
			}

			return time.Duration(n), nil
		},
	})

	c.Register(Serializer{
		Name: bytesName,
		Type: reflect.TypeOf(bean.Bytes(nil)),
		Encode: func(value any) (any, error) {
			return base64.StdEncoding.EncodeToString(value.(bean.Bytes)), nil
		},
		Decode: func(raw any) (any, error) {
			text, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("%s must be a base64 string, got %T", bytesName, raw)
			}

			b, err := base64.StdEncoding.DecodeString(text)
			if err != nil {
				return nil, err
			}

			return bean.Bytes(b), nil
		},
	})

	return c
}

// Register adds or replaces the serializer for s.Type.
func (c *Codec) Register(s Serializer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.byType[s.Type]; ok {
		delete(c.byName, old.Name)
	}

	c.byType[s.Type] = s
	c.byName[s.Name] = s
}

func (c *Codec) serializerFor(t reflect.Type) (Serializer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.byType[t]

	return s, ok
}

func (c *Codec) serializerNamed(name string) (Serializer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.byName[name]

	return s, ok
}

// Encode returns the document of m.
func (c *Codec) Encode(m *persistence.Model) (map[string]any, error) {
	samples := make(map[string]any, len(m.Samples))

	for _, id := range m.IDs() {
		calls := make([]any, 0, len(m.Samples[id].Calls))

		for i, call := range m.Samples[id].Calls {
			args, err := c.encodeList(call.Parameter.Args)
			if err != nil {
				return nil, fmt.Errorf("sample %s call %d: %w", id, i, err)
			}

			ret, err := c.encodeValue(call.ReturnValue)
			if err != nil {
				return nil, fmt.Errorf("sample %s call %d return value: %w", id, i, err)
			}

			calls = append(calls, map[string]any{
				keyParam:  map[string]any{keyArgs: args},
				keyReturn: ret,
			})
		}

		samples[id] = map[string]any{keyCalls: calls}
	}

	return map[string]any{keyID: m.ID, keySamples: samples}, nil
}

func (c *Codec) encodeList(values []any) ([]any, error) {
	out := make([]any, len(values))

	for i, v := range values {
		encoded, err := c.encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}

		out[i] = encoded
	}

	return out, nil
}

func (c *Codec) encodeValue(value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch v := value.(type) {
	case *bean.PolymorphicBean:
		fields, err := c.encodeFields(v.Values)
		if err != nil {
			return nil, err
		}

		return map[string]any{tagBean: fields, tagType: v.TypeName}, nil
	case *bean.DefaultBean:
		fields, err := c.encodeFields(v.Values)
		if err != nil {
			return nil, err
		}

		return map[string]any{tagBean: fields}, nil
	case []byte:
		return base64.StdEncoding.EncodeToString(v), nil
	case number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}

		return v.Float64()
	}

	rv := reflect.ValueOf(value)

	if s, ok := c.serializerFor(rv.Type()); ok {
		encoded, err := s.Encode(value)
		if err != nil {
			return nil, fmt.Errorf("serialize %s: %w", s.Name, err)
		}

		return []any{tagPrefix + s.Name, encoded}, nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return base64.StdEncoding.EncodeToString(rv.Bytes()), nil
		}

		return c.encodeSequence(rv)
	case reflect.Map:
		return c.encodeMap(rv)
	default:
		return nil, fmt.Errorf("no serializer for %s; register a codec.Serializer or a bean.Extension", rv.Type())
	}
}

func (c *Codec) encodeSequence(rv reflect.Value) (any, error) {
	values := make([]any, rv.Len())
	for i := range values {
		values[i] = rv.Index(i).Interface()
	}

	list, err := c.encodeList(values)
	if err != nil {
		return nil, err
	}

	if len(list) > 0 {
		if s, ok := list[0].(string); ok && strings.HasPrefix(s, tagPrefix) {
			return []any{tagList, list}, nil
		}
	}

	return list, nil
}

func (c *Codec) encodeMap(rv reflect.Value) (any, error) {
	if rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("maps must have string keys after bean conversion, got %s", rv.Type())
	}

	out := make(map[string]any, rv.Len())
	escape := false

	iter := rv.MapRange()
	for iter.Next() {
		key := iter.Key().String()

		encoded, err := c.encodeValue(iter.Value().Interface())
		if err != nil {
			return nil, fmt.Errorf("map entry %q: %w", key, err)
		}

		out[key] = encoded
		escape = escape || strings.HasPrefix(key, tagPrefix)
	}

	if escape {
		return map[string]any{tagMap: out}, nil
	}

	return out, nil
}

func (c *Codec) encodeFields(values map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(values))

	for key, value := range values {
		encoded, err := c.encodeValue(value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}

		out[key] = encoded
	}

	return out, nil
}
