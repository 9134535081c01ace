// Package store provides a small, type-keyed reactive state container.
//
// Callers ask a Registry for the state slot of a Go type, describe changes
// as actions, and hand those actions to a Dispatcher. The dispatcher runs
// the reducer for the action's state type, commits the result into the slot
// and only then notifies the effects registered for that action.
//
// # Slots
//
// A Registry holds at most one live Slot per type and at most Config.MaxSlots
// slots overall. A slot is created on the first GetState call for its type,
// seeded from an Anchor, and lives until RemoveState. Asking again after a
// removal yields a brand-new slot seeded from a fresh Anchor.
//
// # Actions
//
// Actions form a closed set: Replace swaps the whole value, FieldUpdate
// changes exactly one field chosen through a Lens. Field updates are applied
// to a copy of the current value, so readers holding the previous snapshot
// never observe the change.
//
// # Effects
//
// Effects observe committed state. Their errors and panics are logged and
// counted but never undo a commit or fail the dispatch. In async mode they
// run on a partitioned worker pool keyed by state type, so effects for one
// type observe dispatches in order.
//
// Example:
//
//	s, err := store.New(store.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	slot, _ := store.GetState[Profile](s.Registry)
//	err = store.DispatchField(ctx, s.Dispatcher, slot, store.MustField[Profile, string]("Name"), "Bob")
package store
