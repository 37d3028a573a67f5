package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/raulk/clock"

	"github.com/hupe1980/agentmarket/core"
	"github.com/hupe1980/agentmarket/logging"
	"github.com/hupe1980/agentmarket/metrics"
)

// Mailbox is the queue a Runner consumes from.
type Mailbox interface {
	Take(filter core.Filter) (core.Message, bool)
	DropWhere(pred func(core.Message) bool) int
	Signal() <-chan struct{}
}

// Options holds configuration overrides passed to New().
type Options struct {
	// DropUnmatched discards messages no reactive behavior accepts.
	DropUnmatched bool
	// Metrics collects drop and panic counters. Nil disables metrics.
	Metrics *metrics.Metrics
}

// Runner is the cooperative scheduler of a single actor. It executes the
// actor's behaviors one at a time on the goroutine calling Run:
//   - reactive behaviors are served round-robin, one message each per pass,
//     until a full pass finds nothing to do
//   - periodic behaviors fire when their ticker does; ticks that arrive
//     while the actor is busy coalesce
//
// Between passes the runner blocks on the mailbox signal, a due tick or
// cancellation. It never spins on an empty mailbox.
type Runner struct {
	actx     *core.ActorContext
	mailbox  Mailbox
	reactive []core.ReactiveBehavior
	periodic []core.PeriodicBehavior
	fired    chan int
	opts     Options
}

// New builds a Runner for the given behaviors. Behaviors that are neither
// reactive nor periodic are rejected.
func New(actx *core.ActorContext, mailbox Mailbox, behaviors []core.Behavior, optFns ...func(o *Options)) (*Runner, error) {
	opts := Options{DropUnmatched: true}
	for _, fn := range optFns {
		fn(&opts)
	}

	r := &Runner{
		actx:    actx,
		mailbox: mailbox,
		fired:   make(chan int),
		opts:    opts,
	}

	for _, b := range behaviors {
		switch bt := b.(type) {
		case core.ReactiveBehavior:
			r.reactive = append(r.reactive, bt)
		case core.PeriodicBehavior:
			if bt.Interval() <= 0 {
				return nil, fmt.Errorf("periodic behavior %q: interval must be positive", bt.Name())
			}
			r.periodic = append(r.periodic, bt)
		default:
			return nil, fmt.Errorf("unsupported behavior %T", b)
		}
	}

	return r, nil
}

// Run schedules behaviors until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	var wg sync.WaitGroup

	for i, p := range r.periodic {
		t := r.actx.Clock.Ticker(p.Interval())

		wg.Add(1)

		go r.forward(ctx, &wg, i, t)
	}

	defer wg.Wait()

	for {
		r.drain(ctx)

		select {
		case <-ctx.Done():
			return
		case <-r.mailbox.Signal():
		case i := <-r.fired:
			r.tick(i)
		}
	}
}

// forward relays ticks of one periodic behavior to the scheduler loop.
func (r *Runner) forward(ctx context.Context, wg *sync.WaitGroup, i int, t *clock.Ticker) {
	defer wg.Done()
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			select {
			case r.fired <- i:
			case <-ctx.Done():
				return
			}
		}
	}
}

// drain serves reactive behaviors until none of them has a matching message.
func (r *Runner) drain(ctx context.Context) {
	for ctx.Err() == nil {
		progressed := false

		for _, b := range r.reactive {
			msg, ok := r.mailbox.Take(b.Filter())
			if !ok {
				continue
			}

			progressed = true
			r.handle(b, msg)

			select {
			case i := <-r.fired:
				r.tick(i)
			default:
			}

			if ctx.Err() != nil {
				return
			}
		}

		if !progressed {
			break
		}
	}

	if r.opts.DropUnmatched {
		if n := r.mailbox.DropWhere(r.unmatched); n > 0 {
			r.opts.Metrics.MessagesDropped(metrics.DropUnmatched, n)
			r.actx.LogDebug("dropped unmatched messages", "count", n)
		}
	}
}

func (r *Runner) unmatched(msg core.Message) bool {
	for _, b := range r.reactive {
		if f := b.Filter(); f == nil || f(msg) {
			return false
		}
	}
	return true
}

func (r *Runner) handle(b core.ReactiveBehavior, msg core.Message) {
	defer r.recoverPanic(b.Name())
	b.Handle(r.actx, msg)
}

func (r *Runner) tick(i int) {
	p := r.periodic[i]
	defer r.recoverPanic(p.Name())
	p.Tick(r.actx)
}

func (r *Runner) recoverPanic(behavior string) {
	if rec := recover(); rec != nil {
		r.opts.Metrics.BehaviorPanicked(r.actx.Kind)
		logging.ErrorWithStack(r.actx.Logger(), fmt.Errorf("panic: %v", rec), "behavior panicked", "behavior", behavior)
	}
}
