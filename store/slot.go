package store

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Status is the lifecycle stage of a slot.
type Status int32

const (
	Uninitialized Status = iota
	Active
	Removed
)

func (s Status) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Active:
		return "active"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Slot holds the current value of one type.
//
// Value is lock-free: every commit stores a new snapshot. Commits are
// serialised by the slot's own mutex.
type Slot[T any] struct {
	id     string
	anchor *Anchor[T]

	mu          sync.Mutex
	value       atomic.Pointer[T]
	status      atomic.Int32
	revision    atomic.Uint64
	committedAt atomic.Pointer[TimeSpan]
}

func newSlot[T any](anchor *Anchor[T]) *Slot[T] {
	s := &Slot[T]{
		id:     uuid.New().String(),
		anchor: anchor,
	}
	initial := anchor.InitialValue()
	s.value.Store(&initial)
	s.status.Store(int32(Active))
	return s
}

func (s *Slot[T]) ID() string { return s.id }

func (s *Slot[T]) Anchor() *Anchor[T] { return s.anchor }

// Value returns the latest committed snapshot.
func (s *Slot[T]) Value() T {
	return *s.value.Load()
}

func (s *Slot[T]) Status() Status {
	return Status(s.status.Load())
}

// Revision counts commits since the slot was created.
func (s *Slot[T]) Revision() uint64 {
	return s.revision.Load()
}

// CommittedAt reports when the last commit happened. ok is false before the
// first commit.
func (s *Slot[T]) CommittedAt() (span TimeSpan, ok bool) {
	if p := s.committedAt.Load(); p != nil {
		return *p, true
	}
	return span, false
}

// commit runs reduce against the current value and stores its result.
// Nothing is stored when reduce fails or the slot is no longer active.
func (s *Slot[T]) commit(reduce func(old T) (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	if s.Status() != Active {
		return zero, ErrSlotNotFound
	}
	next, err := reduce(s.Value())
	if err != nil {
		return zero, err
	}
	s.value.Store(&next)
	s.revision.Add(1)
	span := now()
	s.committedAt.Store(&span)
	return next, nil
}

func (s *Slot[T]) retire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Store(int32(Removed))
}
