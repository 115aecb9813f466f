// Package bean translates live Go values into a persistence-neutral representation and
// back, so that sample codecs never need type information about domain types.
//
// Structs become a *DefaultBean whose keys have the form "<depth>$<Field>", where depth is
// the embedding level the field is promoted from. Values held by an interface are stored as
// a *PolymorphicBean that also records the concrete type name.
package bean

import (
	"fmt"
	"sort"
)

// Bytes is the neutral form of a byte slice held by an interface. Codecs tag it so that it
// reverts to []byte instead of the text they store bytes as.
type Bytes []byte

// DefaultBean is the neutral form of a struct.
type DefaultBean struct {
	Values map[string]any
}

// NewDefaultBean returns an empty bean.
func NewDefaultBean() *DefaultBean {
	return &DefaultBean{Values: make(map[string]any)}
}

// Key returns the bean key of a field declared at the given embedding depth.
func Key(depth int, name string) string {
	return fmt.Sprintf("%d$%s", depth, name)
}

// Get returns the value stored under key.
func (b *DefaultBean) Get(key string) any {
	return b.Values[key]
}

// Put stores value under key.
func (b *DefaultBean) Put(key string, value any) {
	if b.Values == nil {
		b.Values = make(map[string]any)
	}

	b.Values[key] = value
}

// Keys returns the keys in sorted order.
func (b *DefaultBean) Keys() []string {
	keys := make([]string, 0, len(b.Values))
	for key := range b.Values {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// PolymorphicBean is a bean whose concrete type differs from the declared one.
type PolymorphicBean struct {
	DefaultBean
	TypeName string
}
