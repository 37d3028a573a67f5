package agent

import (
	"time"

	"github.com/hupe1980/agentmarket/core"
)

// HandlerFunc handles one mailbox message.
type HandlerFunc func(ctx *core.ActorContext, msg core.Message)

// TickFunc runs on every periodic tick.
type TickFunc func(ctx *core.ActorContext)

// Reactive is a ReactiveBehavior built from a filter and a handler.
type Reactive struct {
	name   string
	filter core.Filter
	handle HandlerFunc
}

// NewReactive creates a reactive behavior. A nil filter accepts every message.
func NewReactive(name string, filter core.Filter, handle HandlerFunc) *Reactive {
	return &Reactive{name: name, filter: filter, handle: handle}
}

// Name returns the behavior name.
func (r *Reactive) Name() string { return r.name }

// Filter returns the message filter.
func (r *Reactive) Filter() core.Filter { return r.filter }

// Handle runs the handler.
func (r *Reactive) Handle(ctx *core.ActorContext, msg core.Message) { r.handle(ctx, msg) }

// Periodic is a PeriodicBehavior built from an interval and a tick function.
//
// Key features:
//   - Fixed interval, first tick one interval after spawn
//   - Optional tick budget after which the behavior goes quiet
//   - Optional predicate gating each tick
type Periodic struct {
	name     string
	interval time.Duration
	tick     TickFunc
	maxTicks int
	when     func(ctx *core.ActorContext) bool
	ticks    int
}

// PeriodicOption configures a Periodic behavior.
type PeriodicOption func(*Periodic)

// WithMaxTicks limits the number of executed ticks. Zero means unlimited.
func WithMaxTicks(n int) PeriodicOption {
	return func(p *Periodic) { p.maxTicks = n }
}

// WithCondition skips ticks for which cond returns false. Skipped ticks do
// not count against the tick budget.
func WithCondition(cond func(ctx *core.ActorContext) bool) PeriodicOption {
	return func(p *Periodic) { p.when = cond }
}

// NewPeriodic creates a periodic behavior firing every interval.
func NewPeriodic(name string, interval time.Duration, tick TickFunc, opts ...PeriodicOption) *Periodic {
	p := &Periodic{name: name, interval: interval, tick: tick}

	for _, o := range opts {
		o(p)
	}

	return p
}

// Name returns the behavior name.
func (p *Periodic) Name() string { return p.name }

// Interval returns the tick interval.
func (p *Periodic) Interval() time.Duration { return p.interval }

// Ticks returns how many ticks have executed.
func (p *Periodic) Ticks() int { return p.ticks }

// Tick runs the tick function unless the budget is spent or the condition
// rejects the tick.
func (p *Periodic) Tick(ctx *core.ActorContext) {
	if p.maxTicks > 0 && p.ticks >= p.maxTicks {
		return
	}

	if p.when != nil && !p.when(ctx) {
		return
	}

	p.ticks++
	p.tick(ctx)
}

var (
	_ core.ReactiveBehavior = (*Reactive)(nil)
	_ core.PeriodicBehavior = (*Periodic)(nil)
)
