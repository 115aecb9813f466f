// Package repository stores declared samples and observed executions.
package repository

import (
	"reflect"
	"sync"
)

// Scope decides where a repository instance lives and who can see it.
type Scope[T any] interface {
	// GetOrCreate returns the scoped instance, creating it on first access.
	GetOrCreate(create func() T) T
	// Close drops the scoped instance so nothing leaks past the scope's lifetime.
	Close()
}

type localScope[T any] struct {
	mu      sync.Mutex
	value   T
	present bool
}

// NewLocalScope keeps one instance per scope value. A Session owns its local scopes, so
// tests running in parallel never see each other's samples.
func NewLocalScope[T any]() Scope[T] {
	return &localScope[T]{}
}

func (s *localScope[T]) GetOrCreate(create func() T) T {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.present {
		s.value = create()
		s.present = true
	}

	return s.value
}

func (s *localScope[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T

	s.value = zero
	s.present = false
}

// singletons holds the process-wide instances of every singleton scope, keyed by type.
var singletons = struct {
	sync.Mutex
	values map[reflect.Type]any
}{values: map[reflect.Type]any{}}

type singletonScope[T any] struct{}

// NewSingletonScope shares one instance per type across the whole process.
func NewSingletonScope[T any]() Scope[T] {
	return singletonScope[T]{}
}

func (singletonScope[T]) key() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func (s singletonScope[T]) GetOrCreate(create func() T) T {
	singletons.Lock()
	defer singletons.Unlock()

	if v, ok := singletons.values[s.key()]; ok {
		return v.(T)
	}

	v := create()
	singletons.values[s.key()] = v

	return v
}

func (s singletonScope[T]) Close() {
	singletons.Lock()
	defer singletons.Unlock()

	delete(singletons.values, s.key())
}
