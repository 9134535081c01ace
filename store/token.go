package store

import "reflect"

// typeToken is a zero-size key that is distinct for every T.
type typeToken[T any] struct{}

func tokenOf[T any]() any {
	return typeToken[T]{}
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
