package bean

import (
	"fmt"
	"reflect"
	"sync"
)

type fieldDescriptor struct {
	key   string
	index []int
	typ   reflect.Type
}

type structDescriptor struct {
	fields []fieldDescriptor
	// immutable is set when a field cannot be assigned from outside the declaring package.
	immutable bool
}

func (d *structDescriptor) types() []reflect.Type {
	types := make([]reflect.Type, 0, len(d.fields))
	for _, f := range d.fields {
		types = append(types, f.typ)
	}

	return types
}

var descriptors sync.Map // reflect.Type -> *structDescriptor

func describe(t reflect.Type) (*structDescriptor, error) {
	if cached, ok := descriptors.Load(t); ok {
		return cached.(*structDescriptor), nil
	}

	d := &structDescriptor{}
	seen := make(map[string]bool)

	if err := collectFields(t, 0, nil, d, seen); err != nil {
		return nil, err
	}

	actual, _ := descriptors.LoadOrStore(t, d)

	return actual.(*structDescriptor), nil
}

// collectFields walks t in declaration order. Embedded structs (not pointers) contribute
// their fields one level deeper.
func collectFields(t reflect.Type, depth int, prefix []int, d *structDescriptor, seen map[string]bool) error {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Name == "_" {
			continue
		}

		index := append(append([]int{}, prefix...), i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if err := collectFields(field.Type, depth+1, index, d, seen); err != nil {
				return err
			}

			continue
		}

		key := Key(depth, field.Name)
		if seen[key] {
			return &UnsupportedTypeError{Type: t, Reason: fmt.Sprintf("the field key %s is ambiguous", key)}
		}

		seen[key] = true

		if !field.IsExported() {
			d.immutable = true
		}

		d.fields = append(d.fields, fieldDescriptor{key: key, index: index, typ: field.Type})
	}

	return nil
}
