package store

import "reflect"

// Anchor supplies the initial value of a slot. It is never mutated.
type Anchor[T any] struct {
	factory func() T
}

func newAnchor[T any](factory func() T) *Anchor[T] {
	if factory == nil {
		factory = defaultValue[T]
	}
	return &Anchor[T]{factory: factory}
}

// InitialValue returns a fresh default value for T.
func (a *Anchor[T]) InitialValue() T {
	return a.factory()
}

func (a *Anchor[T]) Type() string {
	return typeName[T]()
}

// defaultValue is the zero value of T, except that pointer-to-struct types
// get a newly allocated zero struct instead of nil.
func defaultValue[T any]() T {
	var zero T
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct {
		return reflect.New(t.Elem()).Convert(t).Interface().(T)
	}
	return zero
}
