package handlers

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/on-the-ground/fleeting_state/internal/model"
	"go.uber.org/zap"
)

// NewFireAndForgetHandler starts a partitioned worker pool. Payloads with the
// same PartitionKey are handled by the same worker, in send order.
func NewFireAndForgetHandler[T model.Partitionable](
	ctx context.Context,
	config model.EffectScopeConfig,
	logger *zap.Logger,
	handleFn func(context.Context, T),
	teardown func(),
) *FireAndForgetHandler[T] {
	config = model.NewEffectScopeConfig(config.BufferSize, config.NumWorkers)
	if logger == nil {
		logger = zap.NewNop()
	}
	if teardown == nil {
		teardown = func() {}
	}
	dispatcher := NewPartitionedQueue(ctx, config.NumWorkers, config.BufferSize, logger, handleFn)
	return &FireAndForgetHandler[T]{
		effectScope: newEffectScope(dispatcher, logger, teardown),
	}
}

// FireAndForgetHandler is safe for concurrent senders. Close must not be
// called from inside handleFn.
type FireAndForgetHandler[T model.Partitionable] struct {
	*effectScope[T]
}

// FireAndForgetEffect enqueues payload and reports whether it was accepted.
// It returns false once the handler is closed or when ctx ends before the
// payload could be queued.
func (ffh *FireAndForgetHandler[T]) FireAndForgetEffect(ctx context.Context, payload T) bool {
	ffh.mu.RLock()
	defer ffh.mu.RUnlock()
	if ffh.closed {
		ffh.logger.Warn("effect sent to closed handler",
			zap.String("effectId", ffh.EffectId),
			zap.String("partition", payload.PartitionKey()),
		)
		return false
	}

	select {
	case <-ctx.Done():
		return false
	case ffh.dispatcher.GetChannelOf(payload) <- payload:
		return true
	}
}

type effectScope[T any] struct {
	EffectId   string
	dispatcher WorkerDispatcher[T]
	logger     *zap.Logger
	teardown   func()

	mu     sync.RWMutex
	closed bool
}

// Close drains queued payloads, stops the workers and runs teardown once.
func (es *effectScope[T]) Close() {
	es.mu.Lock()
	defer es.mu.Unlock()
	if es.closed {
		return
	}
	es.closed = true
	es.dispatcher.stop()
	es.teardown()
	es.logger.Debug("effect scope closed", zap.String("effectId", es.EffectId))
}

func newEffectScope[T any](
	dispatcher WorkerDispatcher[T],
	logger *zap.Logger,
	teardown func(),
) *effectScope[T] {
	return &effectScope[T]{
		EffectId:   uuid.New().String(),
		dispatcher: dispatcher,
		logger:     logger,
		teardown:   teardown,
	}
}
