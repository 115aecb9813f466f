package codec

import (
	"fmt"
	"math"
	"strings"

	"deepsampler.dev/pkg/deepsampler/pkg/bean"
	"deepsampler.dev/pkg/deepsampler/pkg/persistence"
)

// number is implemented by json.Number.
type number interface {
	Int64() (int64, error)
	Float64() (float64, error)
}

// Decode builds a model from a document produced by Encode and unmarshalled by a text
// format. Numbers may be json.Number, int or float64.
func (c *Codec) Decode(doc any) (*persistence.Model, error) {
	root, ok := asMap(doc)
	if !ok {
		return nil, fmt.Errorf("sample document must be an object, got %T", doc)
	}

	id, _ := root[keyID].(string)
	m := persistence.NewModel(id)

	samples, _ := asMap(root[keySamples])

	for sampleID, raw := range samples {
		sample, ok := asMap(raw)
		if !ok {
			return nil, fmt.Errorf("sample %s must be an object, got %T", sampleID, raw)
		}

		calls, _ := sample[keyCalls].([]any)
		actual := &persistence.ActualSample{Calls: make([]persistence.Call, 0, len(calls))}

		for i, rawCall := range calls {
			call, err := c.decodeCall(rawCall)
			if err != nil {
				return nil, fmt.Errorf("sample %s call %d: %w", sampleID, i, err)
			}

			actual.Calls = append(actual.Calls, call)
		}

		m.Samples[sampleID] = actual
	}

	return m, nil
}

func (c *Codec) decodeCall(raw any) (persistence.Call, error) {
	call, ok := asMap(raw)
	if !ok {
		return persistence.Call{}, fmt.Errorf("call must be an object, got %T", raw)
	}

	param, _ := asMap(call[keyParam])
	rawArgs, _ := param[keyArgs].([]any)

	args, err := c.decodeList(rawArgs)
	if err != nil {
		return persistence.Call{}, fmt.Errorf("args: %w", err)
	}

	ret, err := c.decodeValue(call[keyReturn])
	if err != nil {
		return persistence.Call{}, fmt.Errorf("return value: %w", err)
	}

	return persistence.Call{Parameter: persistence.Parameter{Args: args}, ReturnValue: ret}, nil
}

func (c *Codec) decodeList(raw []any) ([]any, error) {
	out := make([]any, len(raw))

	for i, v := range raw {
		decoded, err := c.decodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}

		out[i] = decoded
	}

	return out, nil
}

func (c *Codec) decodeValue(raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}

	if list, ok := raw.([]any); ok {
		return c.decodeTaggedList(list)
	}

	m, ok := asMap(raw)
	if !ok {
		return raw, nil
	}

	if fields, isBean := m[tagBean]; isBean {
		values, ok := asMap(fields)
		if !ok && fields != nil {
			return nil, fmt.Errorf("%s must hold an object, got %T", tagBean, fields)
		}

		decoded, err := c.decodeMap(values)
		if err != nil {
			return nil, err
		}

		b := bean.DefaultBean{Values: decoded}

		if typeName, ok := m[tagType].(string); ok {
			return &bean.PolymorphicBean{DefaultBean: b, TypeName: typeName}, nil
		}

		return &b, nil
	}

	if inner, escaped := m[tagMap]; escaped && len(m) == 1 {
		values, ok := asMap(inner)
		if !ok {
			return nil, fmt.Errorf("%s must hold an object, got %T", tagMap, inner)
		}

		return c.decodeMap(values)
	}

	return c.decodeMap(m)
}

func (c *Codec) decodeTaggedList(list []any) (any, error) {
	tag, tagged := "", false
	if len(list) > 0 {
		if s, ok := list[0].(string); ok && strings.HasPrefix(s, tagPrefix) {
			tag, tagged = s, true
		}
	}

	if !tagged {
		return c.decodeList(list)
	}

	if len(list) != 2 {
		return nil, fmt.Errorf("tagged value %s must have exactly one element", tag)
	}

	if tag == tagList {
		inner, ok := list[1].([]any)
		if !ok {
			return nil, fmt.Errorf("%s must hold a list, got %T", tagList, list[1])
		}

		return c.decodeList(inner)
	}

	s, ok := c.serializerNamed(strings.TrimPrefix(tag, tagPrefix))
	if !ok {
		return nil, fmt.Errorf("no serializer registered for %s", tag)
	}

	decoded, err := s.Decode(list[1])
	if err != nil {
		return nil, fmt.Errorf("deserialize %s: %w", s.Name, err)
	}

	return decoded, nil
}

func (c *Codec) decodeMap(m map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(m))

	for key, raw := range m {
		decoded, err := c.decodeValue(raw)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", key, err)
		}

		out[key] = decoded
	}

	return out, nil
}

func asMap(raw any) (map[string]any, bool) {
	switch m := raw.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}

		return out, true
	default:
		return nil, false
	}
}

func asInt64(raw any) (int64, bool) {
	switch n := raw.(type) {
	case number:
		i, err := n.Int64()
		return i, err == nil
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), n <= math.MaxInt64
	case float64:
		return int64(n), n == math.Trunc(n)
	default:
		return 0, false
	}
}
