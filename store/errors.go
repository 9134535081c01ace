package store

import "errors"

var (
	// ErrCapacityExceeded is returned when creating a slot would exceed Config.MaxSlots.
	ErrCapacityExceeded = errors.New("state capacity exceeded")

	// ErrInvalidSelector is returned when a lens does not denote exactly one direct, settable field.
	ErrInvalidSelector = errors.New("invalid field selector")

	// ErrReducerNotFound is returned when no reducer handles the dispatched state type.
	ErrReducerNotFound = errors.New("reducer not found")

	// ErrSlotNotFound is returned when an action targets a type without a live slot.
	ErrSlotNotFound = errors.New("state slot not found")

	// ErrInvalidAction is returned when Dispatch is given a nil action.
	ErrInvalidAction = errors.New("invalid action")

	// ErrStoreNotFound is returned by FromContext when ctx carries no Store.
	ErrStoreNotFound = errors.New("no store registered in context")

	// ErrInvalidConfig is returned for a Config or constructor argument that fails validation.
	ErrInvalidConfig = errors.New("invalid store config")
)
