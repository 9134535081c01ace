package store

import (
	"fmt"
	"go/token"
	"reflect"

	"github.com/on-the-ground/fleeting_state/internal/fieldcache"
)

// Lens names one field of T and knows how to read it and how to produce a
// copy of T with that field replaced.
type Lens[T, F any] struct {
	name string
	get  func(T) F
	set  func(T, F) T
}

// NewLens builds a lens from an explicit accessor pair. set must return an
// updated copy and leave its argument untouched.
func NewLens[T, F any](name string, get func(T) F, set func(T, F) T) (Lens[T, F], error) {
	l := Lens[T, F]{name: name, get: get, set: set}
	if err := l.validate(); err != nil {
		return Lens[T, F]{}, err
	}
	return l, nil
}

func (l Lens[T, F]) Name() string { return l.name }

func (l Lens[T, F]) Get(v T) F { return l.get(v) }

func (l Lens[T, F]) Set(v T, f F) T { return l.set(v, f) }

func (l Lens[T, F]) validate() error {
	switch {
	case l.name == "":
		return fmt.Errorf("%w: lens on %s has no field name", ErrInvalidSelector, typeName[T]())
	case l.get == nil:
		return fmt.Errorf("%w: lens %s.%s has no getter", ErrInvalidSelector, typeName[T](), l.name)
	case l.set == nil:
		return fmt.Errorf("%w: lens %s.%s is read-only", ErrInvalidSelector, typeName[T](), l.name)
	}
	return nil
}

var fieldIndexes = fieldcache.New[int](512)

// Field resolves name to a direct, exported field of T whose type is exactly F.
// T may be a struct or a pointer to a struct; for pointers the setter
// returns a new pointer to an updated shallow copy.
func Field[T, F any](name string) (Lens[T, F], error) {
	t := reflect.TypeFor[T]()
	owner := t
	isPtr := t.Kind() == reflect.Pointer
	if isPtr {
		owner = t.Elem()
	}
	want := reflect.TypeFor[F]()

	idx, err := fieldIndexes.LoadOrCompute(
		fieldcache.Key{Owner: owner, Name: name, Field: want},
		func() (int, error) {
			return resolveField(owner, name, want)
		},
	)
	if err != nil {
		return Lens[T, F]{}, err
	}

	get := func(v T) (f F) {
		rv := reflect.ValueOf(&v).Elem()
		if isPtr {
			if rv.IsNil() {
				return f
			}
			rv = rv.Elem()
		}
		reflect.ValueOf(&f).Elem().Set(rv.Field(idx))
		return f
	}

	set := func(v T, f F) T {
		newField := reflect.ValueOf(&f).Elem()
		if !isPtr {
			// v is already a copy of the caller's value
			reflect.ValueOf(&v).Elem().Field(idx).Set(newField)
			return v
		}
		src := reflect.ValueOf(&v).Elem()
		dst := reflect.New(owner)
		if !src.IsNil() {
			dst.Elem().Set(src.Elem())
		}
		dst.Elem().Field(idx).Set(newField)
		return dst.Convert(t).Interface().(T)
	}

	return Lens[T, F]{name: name, get: get, set: set}, nil
}

// MustField is like Field but panics on an invalid selector.
func MustField[T, F any](name string) Lens[T, F] {
	l, err := Field[T, F](name)
	if err != nil {
		panic(err)
	}
	return l
}

func resolveField(owner reflect.Type, name string, want reflect.Type) (int, error) {
	if owner.Kind() != reflect.Struct {
		return 0, fmt.Errorf("%w: %s is not a struct", ErrInvalidSelector, owner)
	}
	if !token.IsIdentifier(name) {
		return 0, fmt.Errorf("%w: %q is not a direct field of %s", ErrInvalidSelector, name, owner)
	}
	sf, ok := owner.FieldByName(name)
	switch {
	case !ok:
		return 0, fmt.Errorf("%w: %s has no field %q", ErrInvalidSelector, owner, name)
	case len(sf.Index) != 1:
		return 0, fmt.Errorf("%w: %s.%s is promoted from an embedded struct", ErrInvalidSelector, owner, name)
	case !sf.IsExported():
		return 0, fmt.Errorf("%w: %s.%s is not settable", ErrInvalidSelector, owner, name)
	case sf.Type != want:
		return 0, fmt.Errorf("%w: %s.%s has type %s, not %s", ErrInvalidSelector, owner, name, sf.Type, want)
	}
	return sf.Index[0], nil
}
