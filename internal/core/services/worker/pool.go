// Package worker throttles how many jobs execute on this node at once.
package worker

import (
	"context"
	"sync/atomic"
	"time"

	"gitlab.com/fcv-judge.net/internal/config"
	"gitlab.com/fcv-judge.net/internal/core/ports/primary"
	"gitlab.com/fcv-judge.net/internal/domain"
	"gitlab.com/fcv-judge.net/internal/static/errs"
)

// Pool is a fixed-capacity execution gate. A job holds one slot from staging until
// its files are released.
type Pool struct {
	slots        chan struct{}
	queueTimeout time.Duration
	load         atomic.Int64
	logger       primary.Logger
}

// NewPool creates a pool from cfg. A size of zero disables the cap.
func NewPool(cfg *config.PoolConfig, logger primary.Logger) *Pool {
	p := &Pool{
		queueTimeout: cfg.QueueTimeout,
		logger:       logger,
	}
	if cfg.Size > 0 {
		p.slots = make(chan struct{}, cfg.Size)
	}
	return p
}

// Acquire blocks until a slot is free, the queue timeout passes or ctx is done.
// The returned release func must be called exactly once.
func (p *Pool) Acquire(ctx context.Context) (release func(), err error) {
	if p.slots != nil {
		wait := ctx
		if p.queueTimeout > 0 {
			var cancel context.CancelFunc
			wait, cancel = context.WithTimeout(ctx, p.queueTimeout)
			defer cancel()
		}

		select {
		case p.slots <- struct{}{}:
		case <-wait.Done():
			p.logger.Warn("Execution slot not acquired", "capacity", cap(p.slots), "load", p.Load())
			return nil, domain.NewExecutionError(domain.FailureInternalError, errs.ErrCapacityExhausted.Error())
		}
	}

	p.load.Add(1)
	var released atomic.Bool
	return func() {
		if !released.CompareAndSwap(false, true) {
			return
		}
		p.load.Add(-1)
		if p.slots != nil {
			<-p.slots
		}
	}, nil
}

// Capacity is the number of concurrent jobs allowed, zero when uncapped.
func (p *Pool) Capacity() int {
	return cap(p.slots)
}

// Load is the number of jobs currently holding a slot.
func (p *Pool) Load() int {
	return int(p.load.Load())
}
