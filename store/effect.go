package store

import (
	"context"
	"fmt"
	"sync"
)

// EffectFunc observes a committed action. A is matched by type assertion, so
// it may be a concrete variant such as FieldUpdate[Profile], Action[Profile]
// for every action on Profile, or AnyAction for everything.
type EffectFunc[A AnyAction] func(ctx context.Context, action A, d *Dispatcher) error

type effect struct {
	name  string
	match func(AnyAction) bool
	run   func(context.Context, AnyAction, *Dispatcher) error
}

// On registers fn to run after every committed action assignable to A.
func On[A AnyAction](d *Dispatcher, name string, fn EffectFunc[A]) {
	if fn == nil {
		return
	}
	d.addEffect(effect{
		name: name,
		match: func(a AnyAction) bool {
			_, ok := a.(A)
			return ok
		},
		run: func(ctx context.Context, a AnyAction, d *Dispatcher) error {
			return fn(ctx, a.(A), d)
		},
	})
}

// effectJob is one post-commit fan-out.
type effectJob struct {
	action  AnyAction
	effects []effect
}

func (j effectJob) PartitionKey() string {
	return j.action.PartitionKey()
}

type nestedJobsKey struct{}

// nestedJobs collects fan-outs of actions dispatched by effects running on a
// pool worker. The worker runs them itself, in FIFO order, after the job at
// hand, so it never waits on a partition channel it is the reader of.
type nestedJobs struct {
	mu      sync.Mutex
	jobs    []effectJob
	drained bool
}

func withNestedJobs(ctx context.Context) (context.Context, *nestedJobs) {
	q := &nestedJobs{}
	return context.WithValue(ctx, nestedJobsKey{}, q), q
}

func nestedJobsFrom(ctx context.Context) (*nestedJobs, bool) {
	q, ok := ctx.Value(nestedJobsKey{}).(*nestedJobs)
	return q, ok
}

// push reports false once the worker has finished draining q, e.g. when an
// effect kept its ctx and dispatches from another goroutine later.
func (q *nestedJobs) push(job effectJob) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.drained {
		return false
	}
	q.jobs = append(q.jobs, job)
	return true
}

func (q *nestedJobs) pop() (effectJob, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		q.drained = true
		return effectJob{}, false
	}
	job := q.jobs[0]
	q.jobs[0] = effectJob{}
	q.jobs = q.jobs[1:]
	return job, true
}

// runEffect isolates the dispatcher from a failing or panicking effect.
func (d *Dispatcher) runEffect(ctx context.Context, e effect, action AnyAction) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("effect %s panicked: %v", e.name, r)
		}
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		d.metrics.effectRan(e.name, outcome)
	}()
	if err = e.run(ctx, action, d); err != nil {
		err = fmt.Errorf("effect %s: %w", e.name, err)
	}
	return
}
