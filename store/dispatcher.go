package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/on-the-ground/fleeting_state/internal/handlers"
	"github.com/on-the-ground/fleeting_state/internal/model"
	"github.com/on-the-ground/fleeting_state/shared/helper"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Dispatcher applies actions to a Registry and notifies effects.
type Dispatcher struct {
	registry        *Registry
	identityReducer bool
	logger          *zap.Logger
	metrics         *Metrics

	mu       sync.RWMutex
	reducers map[any]any
	effects  []effect

	worker  *handlers.FireAndForgetHandler[effectJob]
	pending sync.WaitGroup
}

// NewDispatcher builds a dispatcher over registry. With EffectsAsync a worker
// pool is started; release it with Close.
func NewDispatcher(registry *Registry, cfg EffectsConfig, identityReducer bool, opts ...Option) (*Dispatcher, error) {
	if registry == nil {
		return nil, fmt.Errorf("%w: nil registry", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	d := &Dispatcher{
		registry:        registry,
		identityReducer: identityReducer,
		logger:          o.logger,
		metrics:         o.metrics,
		reducers:        make(map[any]any),
	}
	if cfg.Mode == EffectsAsync {
		d.worker = handlers.NewFireAndForgetHandler(
			o.ctx,
			model.NewEffectScopeConfig(cfg.BufferSize, cfg.NumWorkers),
			o.logger,
			d.runJob,
			nil,
		)
	}
	return d, nil
}

// RegisterReducer sets the reducer for T, replacing any previous one.
func RegisterReducer[T any](d *Dispatcher, reducer Reducer[T]) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if reducer == nil {
		delete(d.reducers, tokenOf[T]())
		return
	}
	d.reducers[tokenOf[T]()] = reducer
}

func reducerFor[T any](d *Dispatcher) (Reducer[T], error) {
	d.mu.RLock()
	reducer, ok := helper.GetTypedValueOf2[Reducer[T]](func() (any, bool) {
		r, ok := d.reducers[tokenOf[T]()]
		return r, ok
	})
	d.mu.RUnlock()
	if ok {
		return reducer, nil
	}
	if d.identityReducer {
		return Identity[T](), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrReducerNotFound, typeName[T]())
}

func (d *Dispatcher) addEffect(e effect) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.effects = append(d.effects, e)
}

func (d *Dispatcher) matching(action AnyAction) []effect {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var matched []effect
	for _, e := range d.effects {
		if e.match(action) {
			matched = append(matched, e)
		}
	}
	return matched
}

// Dispatch reduces action against the slot of T and commits the result.
// Effects start only after the commit; their outcome never changes the
// returned error. In async mode Dispatch does not wait for them.
//
// An effect that dispatches should pass on the ctx it was given. In async
// mode the effects of such nested dispatches then run on the same worker,
// after the current job, in the order they were dispatched.
func Dispatch[T any](ctx context.Context, d *Dispatcher, action Action[T]) error {
	if action == nil {
		return fmt.Errorf("%w: nil action for %s", ErrInvalidAction, typeName[T]())
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	reducer, err := reducerFor[T](d)
	if err != nil {
		d.failed(action, err)
		return err
	}

	slot, ok := activeSlot[T](d.registry)
	if !ok {
		err = fmt.Errorf("%w: %s", ErrSlotNotFound, action.StateType())
		d.failed(action, err)
		return err
	}

	if _, err = slot.commit(func(old T) (T, error) {
		action = action.rebase(old)
		return reducer(old, action)
	}); err != nil {
		err = fmt.Errorf("dispatch %s %s: %w", action.Kind(), action.StateType(), err)
		d.failed(action, err)
		return err
	}

	d.metrics.dispatched(action.StateType(), action.Kind(), "committed")
	d.logger.Debug("action committed",
		zap.String("type", action.StateType()),
		zap.String("kind", string(action.Kind())),
		zap.Uint64("revision", slot.Revision()),
	)

	d.fanOut(ctx, action)
	return nil
}

// DispatchValue replaces the value of T's slot with v.
func DispatchValue[T any](ctx context.Context, d *Dispatcher, v T) error {
	return Dispatch[T](ctx, d, UpdateValue(v))
}

// DispatchField builds a field update from the slot's current value and dispatches it.
func DispatchField[T, F any](ctx context.Context, d *Dispatcher, slot *Slot[T], lens Lens[T, F], v F) error {
	action, err := UpdateField(slot, lens, v)
	if err != nil {
		return err
	}
	return Dispatch[T](ctx, d, action)
}

func (d *Dispatcher) failed(action AnyAction, err error) {
	d.metrics.dispatched(action.StateType(), action.Kind(), "failed")
	d.logger.Warn("dispatch failed",
		zap.String("type", action.StateType()),
		zap.String("kind", string(action.Kind())),
		zap.Error(err),
	)
}

func (d *Dispatcher) fanOut(ctx context.Context, action AnyAction) {
	matched := d.matching(action)
	if len(matched) == 0 {
		return
	}
	job := effectJob{action: action, effects: matched}

	if d.worker == nil {
		d.runEffects(ctx, job)
		return
	}

	if q, ok := nestedJobsFrom(ctx); ok && q.push(job) {
		return
	}

	d.pending.Add(1)
	if !d.worker.FireAndForgetEffect(ctx, job) {
		d.pending.Done()
		d.logger.Warn("effects dropped",
			zap.String("type", action.StateType()),
			zap.Int("effects", len(matched)),
		)
		for _, e := range matched {
			d.metrics.effectRan(e.name, "dropped")
		}
	}
}

// runJob is the worker entry point. Effects that dispatch from here hand
// their fan-outs back to this worker through ctx.
func (d *Dispatcher) runJob(ctx context.Context, job effectJob) {
	defer d.pending.Done()
	ctx, nested := withNestedJobs(ctx)
	d.runEffects(ctx, job)
	for next, ok := nested.pop(); ok; next, ok = nested.pop() {
		d.runEffects(ctx, next)
	}
}

func (d *Dispatcher) runEffects(ctx context.Context, job effectJob) {
	var errs error
	for _, e := range job.effects {
		errs = multierr.Append(errs, d.runEffect(ctx, e, job.action))
	}
	if errs != nil {
		d.logger.Error("effects failed",
			zap.String("type", job.action.StateType()),
			zap.Int("failures", len(multierr.Errors(errs))),
			zap.Error(errs),
		)
	}
}

// Wait blocks until every queued effect has run. Call it at a quiescent
// point; dispatches racing with Wait from other goroutines may be missed.
func (d *Dispatcher) Wait() {
	d.pending.Wait()
}

// Close waits for queued effects and stops the worker pool.
func (d *Dispatcher) Close() {
	d.Wait()
	if d.worker != nil {
		d.worker.Close()
	}
}
