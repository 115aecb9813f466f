package bean

import (
	"fmt"
	"reflect"
	"strings"

	"deepsampler.dev/pkg/deepsampler/pkg/model"
)

// TypeMismatchError reports a persistent value that cannot become the requested type.
type TypeMismatchError struct {
	Declared reflect.Type
	Actual   reflect.Type
	Value    any
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("the persistent value %s of type %s cannot be reverted to %s",
		model.FormatValue(e.Value), e.Actual, e.Declared)
}

// UnknownTypeError reports a polymorphic bean naming a type that was never registered.
type UnknownTypeError struct {
	Name string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("the polymorphic type %q is unknown, register it with Converter.RegisterType", e.Name)
}

// ConstructorNotFoundError reports an immutable struct without a matching constructor.
type ConstructorNotFoundError struct {
	Type   reflect.Type
	Fields []reflect.Type
}

func (e *ConstructorNotFoundError) Error() string {
	params := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		params = append(params, f.String())
	}

	return fmt.Sprintf("the type %s has unexported fields, so it can only be created by a constructor func(%s) %s; "+
		"register one with Converter.RegisterConstructor or add an Extension that is able to create %s",
		e.Type, strings.Join(params, ", "), e.Type, e.Type)
}

// UnsupportedTypeError reports a value whose shape has no neutral representation.
type UnsupportedTypeError struct {
	Type   reflect.Type
	Reason string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("the type %s cannot be converted: %s", e.Type, e.Reason)
}
