package store

import "fmt"

// Reducer computes the next value of a slot. It must be pure: an error
// aborts the dispatch and nothing is committed.
type Reducer[T any] func(old T, action Action[T]) (T, error)

// Identity commits the action's new state as is.
func Identity[T any]() Reducer[T] {
	return func(_ T, action Action[T]) (T, error) {
		switch a := action.(type) {
		case Replace[T]:
			return a.State, nil
		case FieldUpdate[T]:
			return a.State, nil
		default:
			// unreachable while AnyAction stays sealed
			panic(fmt.Errorf("invalid action type: %T", action))
		}
	}
}
