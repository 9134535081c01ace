package store

import "fmt"

// ActionKind tags the variant of an action.
type ActionKind string

const (
	KindReplace     ActionKind = "replace"
	KindFieldUpdate ActionKind = "field_update"
)

// AnyAction is the common base of every action. The set of actions is
// closed: only Replace and FieldUpdate implement it.
type AnyAction interface {
	StateType() string
	Kind() ActionKind
	// StateValue is the new state as an untyped value, for logging.
	StateValue() any
	// PartitionKey routes effects of the same state type to the same worker.
	PartitionKey() string
	sealedAction()
}

// Action is an action carrying a new value of T.
type Action[T any] interface {
	AnyAction
	NewState() T
	// rebase returns the action as it applies to old, the value current at
	// commit time.
	rebase(old T) Action[T]
}

var _ Action[struct{}] = Replace[struct{}]{}

// Replace swaps the whole value of a slot.
type Replace[T any] struct {
	State T
}

func (a Replace[T]) NewState() T        { return a.State }
func (a Replace[T]) StateValue() any    { return a.State }
func (Replace[T]) StateType() string    { return typeName[T]() }
func (Replace[T]) Kind() ActionKind     { return KindReplace }
func (Replace[T]) PartitionKey() string { return typeName[T]() }
func (Replace[T]) sealedAction()        {}

func (a Replace[T]) rebase(T) Action[T] { return a }

var _ Action[struct{}] = FieldUpdate[struct{}]{}

// FieldUpdate is a copy of Old with the single field Field changed.
//
// When built by UpdateField, the change is re-applied to the slot's value at
// commit time, so Old and State then describe the committed transition and
// concurrent updates of other fields are kept.
type FieldUpdate[T any] struct {
	Old   T
	State T
	Field string

	apply func(T) T
}

func (a FieldUpdate[T]) NewState() T        { return a.State }
func (a FieldUpdate[T]) StateValue() any    { return a.State }
func (FieldUpdate[T]) StateType() string    { return typeName[T]() }
func (FieldUpdate[T]) Kind() ActionKind     { return KindFieldUpdate }
func (FieldUpdate[T]) PartitionKey() string { return typeName[T]() }
func (FieldUpdate[T]) sealedAction()        {}

func (a FieldUpdate[T]) rebase(old T) Action[T] {
	if a.apply == nil {
		return a
	}
	a.Old = old
	a.State = a.apply(old)
	return a
}

// UpdateValue builds an action replacing the whole value of T.
func UpdateValue[T any](newState T) Replace[T] {
	return Replace[T]{State: newState}
}

// UpdateField builds an action that changes the field named by lens,
// starting from the slot's current value. The slot itself is not touched
// until the action is dispatched; the setter then runs again on the value
// current at commit time.
func UpdateField[T, F any](slot *Slot[T], lens Lens[T, F], value F) (FieldUpdate[T], error) {
	if slot == nil {
		return FieldUpdate[T]{}, fmt.Errorf("%w: nil slot for %s", ErrSlotNotFound, typeName[T]())
	}
	if err := lens.validate(); err != nil {
		return FieldUpdate[T]{}, err
	}
	apply := func(v T) T { return lens.Set(v, value) }
	old := slot.Value()
	return FieldUpdate[T]{
		Old:   old,
		State: apply(old),
		Field: lens.Name(),
		apply: apply,
	}, nil
}
