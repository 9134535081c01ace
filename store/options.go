package store

import (
	"context"

	"go.uber.org/zap"
)

type options struct {
	logger  *zap.Logger
	metrics *Metrics
	ctx     context.Context
}

// Option customises a Registry, Dispatcher or Store.
type Option func(*options)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records slot and dispatch metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func withContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger: zap.NewNop(),
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
