package bean

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"unsafe"
)

// Converter converts values between their live and their neutral form.
//
// A Converter is safe for concurrent use.
type Converter struct {
	mu           sync.RWMutex
	extensions   []Extension
	types        map[string]reflect.Type
	constructors map[reflect.Type]reflect.Value
}

// NewConverter returns a Converter with the built-in extensions installed.
func NewConverter() *Converter {
	c := &Converter{
		types:        make(map[string]reflect.Type),
		constructors: make(map[reflect.Type]reflect.Value),
	}

	c.AddExtension(&SliceExtension{})
	c.AddExtension(&ArrayExtension{})
	c.AddExtension(&MapWithStringKeyExtension{})
	c.AddExtension(&MapPrimitiveKeyExtension{})
	c.AddExtension(&PointerExtension{})
	c.AddExtension(&TimeExtension{})

	return c
}

// AddExtension registers ext. Extensions added later take precedence.
func (c *Converter) AddExtension(ext Extension) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.extensions = append(c.extensions, ext)
}

// RegisterType makes the type of value known for polymorphic reversion and returns its name.
func (c *Converter) RegisterType(value any) string {
	return c.registerType(reflect.TypeOf(value))
}

func (c *Converter) registerType(t reflect.Type) string {
	name := TypeName(t)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.types[name] = t

	return name
}

func (c *Converter) lookupType(name string) (reflect.Type, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.types[name]

	return t, ok
}

// RegisterConstructor registers fn as the constructor of the struct it returns. fn must
// return exactly one value, a struct or a pointer to a struct, and its parameters must
// equal the struct's field types in declaration order.
func (c *Converter) RegisterConstructor(fn any) error {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return fmt.Errorf("constructor must be a function, got %T", fn)
	}

	ft := v.Type()
	if ft.NumOut() != 1 {
		return fmt.Errorf("constructor %s must return exactly one value", ft)
	}

	target := ft.Out(0)
	if target.Kind() == reflect.Ptr {
		target = target.Elem()
	}

	if target.Kind() != reflect.Struct {
		return fmt.Errorf("constructor %s must return a struct or a pointer to a struct", ft)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.constructors[target] = v

	return nil
}

func (c *Converter) lookupConstructor(t reflect.Type) (reflect.Value, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.constructors[t]

	return v, ok
}

// findExtension returns the most recently added extension processing t.
func (c *Converter) findExtension(t reflect.Type) Extension {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := len(c.extensions) - 1; i >= 0; i-- {
		if c.extensions[i].IsProcessable(t) {
			return c.extensions[i]
		}
	}

	return nil
}

// TypeName returns the name a type is registered under, e.g. "*example.com/shop.Order".
func TypeName(t reflect.Type) string {
	if t.Kind() == reflect.Ptr {
		return "*" + TypeName(t.Elem())
	}

	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}

	return t.String()
}

// Convert turns original into its neutral form. declared is the statically known type;
// nil means the dynamic type of original.
//
// Primitive values and collections of primitives are returned unchanged. A value whose
// declared type is an interface is converted as its dynamic type, and a resulting bean
// becomes a *PolymorphicBean.
func (c *Converter) Convert(original any, declared reflect.Type) (any, error) {
	if original == nil {
		return nil, nil
	}

	rv := reflect.ValueOf(original)
	live := rv.Type()

	if declared == nil || declared.Kind() != reflect.Interface {
		return c.convertValue(rv, live)
	}

	converted, err := c.convertValue(rv, live)
	if err != nil {
		return nil, err
	}

	if b, ok := converted.(*DefaultBean); ok {
		return &PolymorphicBean{DefaultBean: *b, TypeName: c.registerType(live)}, nil
	}

	if converted != nil && live.Kind() == reflect.Slice && live.Elem().Kind() == reflect.Uint8 {
		return Bytes(rv.Bytes()), nil
	}

	return converted, nil
}

func (c *Converter) convertValue(rv reflect.Value, t reflect.Type) (any, error) {
	switch t.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
	}

	if isPrimitive(t) {
		return rv.Interface(), nil
	}

	if ext := c.findExtension(t); ext != nil {
		if ext.Skip(t) {
			return rv.Interface(), nil
		}

		return ext.Convert(rv.Interface(), t, c)
	}

	if t.Kind() == reflect.Struct {
		return c.convertStruct(rv)
	}

	return nil, &UnsupportedTypeError{Type: t, Reason: fmt.Sprintf("values of kind %s have no neutral form", t.Kind())}
}

func (c *Converter) convertStruct(rv reflect.Value) (*DefaultBean, error) {
	t := rv.Type()

	d, err := describe(t)
	if err != nil {
		return nil, err
	}

	addressable := reflect.New(t).Elem()
	addressable.Set(rv)

	b := NewDefaultBean()

	for _, f := range d.fields {
		fv := addressable.FieldByIndex(f.index)
		if !fv.CanInterface() {
			fv = reflect.NewAt(fv.Type(), unsafe.Pointer(fv.UnsafeAddr())).Elem()
		}

		converted, err := c.Convert(fv.Interface(), f.typ)
		if err != nil {
			return nil, fmt.Errorf("field %s of %s: %w", f.key, t, err)
		}

		b.Put(f.key, converted)
	}

	return b, nil
}

// Revert turns persistent back into a value of type declared. For an interface type the
// result has the concrete type recorded in a *PolymorphicBean.
func (c *Converter) Revert(persistent any, declared reflect.Type) (any, error) {
	v, err := c.RevertValue(persistent, declared)
	if err != nil {
		return nil, err
	}

	if declared.Kind() == reflect.Interface && v.IsNil() {
		return nil, nil
	}

	return v.Interface(), nil
}

// RevertValue is Revert returning a reflect.Value of type declared. nil becomes the zero
// value.
func (c *Converter) RevertValue(persistent any, declared reflect.Type) (reflect.Value, error) {
	if persistent == nil {
		return reflect.Zero(declared), nil
	}

	if pb, ok := persistent.(*PolymorphicBean); ok {
		return c.revertPolymorphic(pb, declared)
	}

	if declared.Kind() == reflect.Interface {
		return assign(normalize(persistent), declared)
	}

	if ext := c.findExtension(declared); ext != nil {
		reverted, err := ext.Revert(persistent, declared, c)
		if err != nil {
			return reflect.Value{}, err
		}

		return assign(reverted, declared)
	}

	if b, ok := persistent.(*DefaultBean); ok {
		if declared.Kind() != reflect.Struct {
			return reflect.Value{}, &TypeMismatchError{Declared: declared, Actual: reflect.TypeOf(persistent), Value: persistent}
		}

		return c.revertStruct(b, declared)
	}

	return coerce(persistent, declared)
}

func (c *Converter) revertPolymorphic(pb *PolymorphicBean, declared reflect.Type) (reflect.Value, error) {
	concrete, ok := c.lookupType(pb.TypeName)
	if !ok {
		return reflect.Value{}, &UnknownTypeError{Name: pb.TypeName}
	}

	if !concrete.AssignableTo(declared) {
		return reflect.Value{}, &TypeMismatchError{Declared: declared, Actual: concrete, Value: pb}
	}

	b := pb.DefaultBean

	v, err := c.RevertValue(&b, concrete)
	if err != nil {
		return reflect.Value{}, err
	}

	out := reflect.New(declared).Elem()
	out.Set(v)

	return out, nil
}

func (c *Converter) revertStruct(b *DefaultBean, t reflect.Type) (reflect.Value, error) {
	d, err := describe(t)
	if err != nil {
		return reflect.Value{}, err
	}

	if d.immutable {
		return c.construct(b, t, d)
	}

	out := reflect.New(t).Elem()

	for _, f := range d.fields {
		raw := b.Get(f.key)
		if raw == nil {
			continue
		}

		v, err := c.RevertValue(raw, f.typ)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("field %s of %s: %w", f.key, t, err)
		}

		out.FieldByIndex(f.index).Set(v)
	}

	return out, nil
}

func (c *Converter) construct(b *DefaultBean, t reflect.Type, d *structDescriptor) (reflect.Value, error) {
	params := d.types()

	ctor, ok := c.lookupConstructor(t)
	if !ok || !acceptsExactly(ctor.Type(), params) {
		return reflect.Value{}, &ConstructorNotFoundError{Type: t, Fields: params}
	}

	args := make([]reflect.Value, 0, len(d.fields))

	for _, f := range d.fields {
		v, err := c.RevertValue(b.Get(f.key), f.typ)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("field %s of %s: %w", f.key, t, err)
		}

		args = append(args, v)
	}

	slog.Debug("creating immutable bean with constructor", "type", t, "constructor", ctor.Type())

	out := ctor.Call(args)[0]
	if out.Kind() == reflect.Ptr {
		if out.IsNil() {
			return reflect.Value{}, fmt.Errorf("constructor %s returned nil", ctor.Type())
		}

		out = out.Elem()
	}

	return out, nil
}

func acceptsExactly(ft reflect.Type, params []reflect.Type) bool {
	if ft.IsVariadic() || ft.NumIn() != len(params) {
		return false
	}

	for i, p := range params {
		if ft.In(i) != p {
			return false
		}
	}

	return true
}

// assign places value into a new reflect.Value of type t.
func assign(value any, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(t), nil
	}

	rv := reflect.ValueOf(value)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, &TypeMismatchError{Declared: t, Actual: rv.Type(), Value: value}
	}

	out := reflect.New(t).Elem()
	out.Set(rv)

	return out, nil
}
