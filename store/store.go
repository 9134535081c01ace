package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/on-the-ground/fleeting_state/shared/helper"
	"go.uber.org/zap"
)

// Store bundles the Registry and Dispatcher built from one Config. Create
// one per process (or per scope) and pass it to whoever needs state.
type Store struct {
	ID         string
	Config     Config
	Registry   *Registry
	Dispatcher *Dispatcher

	logger *zap.Logger
}

func New(cfg Config, opts ...Option) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	registry, err := NewRegistry(cfg.MaxSlots, opts...)
	if err != nil {
		return nil, err
	}
	dispatcher, err := NewDispatcher(registry, cfg.Effects, cfg.IdentityReducer, opts...)
	if err != nil {
		return nil, err
	}
	s := &Store{
		ID:         uuid.New().String(),
		Config:     cfg,
		Registry:   registry,
		Dispatcher: dispatcher,
		logger:     o.logger,
	}
	s.logger.Debug("store created",
		zap.String("storeId", s.ID),
		zap.Int("maxSlots", cfg.MaxSlots),
		zap.String("effects", string(cfg.Effects.Mode)),
	)
	return s, nil
}

// Close waits for queued effects and stops the effect workers.
func (s *Store) Close() {
	s.Dispatcher.Close()
	s.logger.Debug("store closed", zap.String("storeId", s.ID))
}

type storeKey struct{}

// WithStore creates a Store scoped to ctx. The returned teardown closes it
// and gives back the parent context.
//
// Usage:
//
//	ctx, end, err := store.WithStore(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer end()
func WithStore(ctx context.Context, cfg Config, opts ...Option) (context.Context, func() context.Context, error) {
	s, err := New(cfg, append(opts[:len(opts):len(opts)], withContext(ctx))...)
	if err != nil {
		return ctx, func() context.Context { return ctx }, err
	}
	return context.WithValue(ctx, storeKey{}, s), func() context.Context {
		s.Close()
		return ctx
	}, nil
}

// FromContext returns the innermost Store registered with WithStore.
func FromContext(ctx context.Context) (*Store, error) {
	return helper.GetTypedValueOf[*Store](func() (any, error) {
		if s := ctx.Value(storeKey{}); s != nil {
			return s, nil
		}
		return nil, ErrStoreNotFound
	})
}

// MustFromContext panics when ctx carries no Store.
func MustFromContext(ctx context.Context) *Store {
	return helper.MustGetTypedValue[*Store](func() (any, error) {
		return FromContext(ctx)
	})
}
