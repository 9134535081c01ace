package handlers

import (
	"context"
	"sync"

	"github.com/on-the-ground/fleeting_state/internal/model"
	"go.uber.org/zap"
)

// --- common interface ---

type WorkerDispatcher[T any] interface {
	GetChannelOf(msg T) chan T
	// stop closes every channel and blocks until the workers have drained them.
	stop()
}

// --- partitioned queue ---

type partitionedQueue[T model.Partitionable] struct {
	effectChs []chan T
	workers   *sync.WaitGroup
}

func (pq partitionedQueue[T]) GetChannelOf(msg T) chan T {
	idx := getIndexByHash(msg, len(pq.effectChs))
	return pq.effectChs[idx]
}

func (pq partitionedQueue[T]) stop() {
	for _, ch := range pq.effectChs {
		close(ch)
	}
	pq.workers.Wait()
}

func NewPartitionedQueue[T model.Partitionable](
	ctx context.Context,
	numWorkers, bufferSize int,
	logger *zap.Logger,
	handleFn func(context.Context, T),
) WorkerDispatcher[T] {
	channels := make([]chan T, numWorkers)
	workers := &sync.WaitGroup{}
	ready := sync.WaitGroup{}
	for i := 0; i < numWorkers; i++ {
		ready.Add(1)
		workers.Add(1)
		ch := make(chan T, bufferSize)
		go func(ch chan T) {
			defer workers.Done()
			ready.Done()
			for msg := range ch {
				safeHandle(ctx, logger, handleFn, msg)
			}
		}(ch)
		channels[i] = ch
	}
	ready.Wait()
	return partitionedQueue[T]{effectChs: channels, workers: workers}
}

// safeHandle keeps a worker alive when handleFn panics.
func safeHandle[T any](ctx context.Context, logger *zap.Logger, handleFn func(context.Context, T), msg T) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in effect worker", zap.Any("panic", r), zap.Any("payload", msg))
		}
	}()
	handleFn(ctx, msg)
}
