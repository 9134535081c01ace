package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/on-the-ground/fleeting_state/shared/helper"
	"go.uber.org/zap"
)

// entry is the type-erased view of a slot/anchor pair.
type entry interface {
	typeName() string
	retire()
}

type pair[T any] struct {
	slot   *Slot[T]
	anchor *Anchor[T]
}

func (p *pair[T]) typeName() string { return p.anchor.Type() }
func (p *pair[T]) retire()          { p.slot.retire() }

// Registry holds at most one slot per type and at most Max slots overall.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[any]entry
	seeds   map[any]any
	max     int

	logger  *zap.Logger
	metrics *Metrics
}

// NewRegistry returns an empty registry bounded to maxSlots slots.
func NewRegistry(maxSlots int, opts ...Option) (*Registry, error) {
	if maxSlots <= 0 {
		return nil, fmt.Errorf("%w: max slots must be positive, got %d", ErrInvalidConfig, maxSlots)
	}
	o := buildOptions(opts)
	return &Registry{
		entries: make(map[any]entry, maxSlots),
		seeds:   make(map[any]any),
		max:     maxSlots,
		logger:  o.logger,
		metrics: o.metrics,
	}, nil
}

// lookup must be called with r.mu held.
func lookup[T any](r *Registry) (*pair[T], bool) {
	return helper.GetTypedValueOf2[*pair[T]](func() (any, bool) {
		e, ok := r.entries[tokenOf[T]()]
		return e, ok
	})
}

// GetState returns the slot for T, creating it from a new Anchor when absent.
// Creation fails with ErrCapacityExceeded once the registry is full.
func GetState[T any](r *Registry) (*Slot[T], error) {
	r.mu.RLock()
	p, ok := lookup[T](r)
	r.mu.RUnlock()
	if ok {
		return p.slot, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := lookup[T](r); ok {
		return p.slot, nil
	}
	if len(r.entries) >= r.max {
		r.metrics.slotRejected()
		r.logger.Warn("state capacity exceeded",
			zap.String("type", typeName[T]()),
			zap.Int("max", r.max),
		)
		return nil, fmt.Errorf("%w: cannot add %s, %d of %d slots in use",
			ErrCapacityExceeded, typeName[T](), len(r.entries), r.max)
	}

	factory, _ := helper.GetTypedValueOf2[func() T](func() (any, bool) {
		f, ok := r.seeds[tokenOf[T]()]
		return f, ok
	})
	anchor := newAnchor(factory)
	p = &pair[T]{slot: newSlot(anchor), anchor: anchor}
	r.entries[tokenOf[T]()] = p
	r.metrics.slotAdded()
	r.logger.Debug("state slot created",
		zap.String("type", anchor.Type()),
		zap.String("slotId", p.slot.ID()),
		zap.Int("slots", len(r.entries)),
	)
	return p.slot, nil
}

// RemoveState drops the slot and anchor for T. It reports false, changing
// nothing, when T has no slot.
func RemoveState[T any](r *Registry) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := lookup[T](r)
	if !ok {
		return false
	}
	delete(r.entries, tokenOf[T]())
	p.retire()
	r.metrics.slotRemoved()
	r.logger.Debug("state slot removed",
		zap.String("type", p.typeName()),
		zap.String("slotId", p.slot.ID()),
		zap.Int("slots", len(r.entries)),
	)
	return true
}

// Seed sets the initial-value factory used by Anchors created for T from now on.
// Live slots keep their values.
func Seed[T any](r *Registry, factory func() T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if factory == nil {
		delete(r.seeds, tokenOf[T]())
		return
	}
	r.seeds[tokenOf[T]()] = factory
}

// StatusOf reports Active when T has a live slot and Uninitialized otherwise.
func StatusOf[T any](r *Registry) Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := lookup[T](r); ok {
		return Active
	}
	return Uninitialized
}

// activeSlot returns the live slot for T without creating one.
func activeSlot[T any](r *Registry) (*Slot[T], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := lookup[T](r)
	if !ok {
		return nil, false
	}
	return p.slot, true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *Registry) Max() int {
	return r.max
}

// Types lists the type names of the live slots, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		names = append(names, e.typeName())
	}
	sort.Strings(names)
	return names
}
