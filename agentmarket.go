// Package agentmarket provides a high-level façade over the actor engine and
// the marketplace actors. Most applications interact with this package by:
//  1. Creating a Market via New() from a config.Config
//  2. Spawning actors by Kind, or the reference population via Bootstrap
//  3. Stopping everything with Shutdown and reading the final Report
//
// The façade delegates scheduling and routing to engine.Engine and
// presentation to an observer.Dispatcher, keeping setup concise. All defaults
// are safe for local development and testing.
package agentmarket

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/raulk/clock"
	"golang.org/x/time/rate"

	"github.com/hupe1980/agentmarket/config"
	"github.com/hupe1980/agentmarket/core"
	"github.com/hupe1980/agentmarket/engine"
	"github.com/hupe1980/agentmarket/logging"
	"github.com/hupe1980/agentmarket/metrics"
	"github.com/hupe1980/agentmarket/observer"
)

// Options configures the Market instance.
type Options struct {
	// Clock drives every actor tick. Defaults to the wall clock.
	Clock clock.Clock

	// Observer receives presentation events. It is wrapped in a Dispatcher
	// sized from the runtime config. Defaults to a no-op observer.
	Observer core.Observer

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger

	// Metrics collects runtime counters. Nil disables metrics.
	Metrics *metrics.Metrics

	// Rand returns a number in [0,1) and feeds every randomized actor as
	// well as the bootstrap budgets. Defaults to math/rand/v2.
	Rand func() float64
}

// Market is the high-level façade aggregating the engine, the presentation
// dispatcher and the actors spawned through it.
type Market struct {
	cfg        config.Config
	opts       Options
	engine     *engine.Engine
	dispatcher *observer.Dispatcher

	mu     sync.Mutex
	actors map[core.Address]core.Actor
	order  []core.Address
}

// New creates a Market for cfg. Any unset option is initialized with a
// default.
func New(cfg config.Config, optFns ...func(o *Options)) *Market {
	opts := Options{
		Clock:    clock.New(),
		Observer: core.NoOpObserver{},
		Logger:   logging.NoOpLogger{},
		Rand:     rand.Float64,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	d := observer.NewDispatcher(opts.Observer, func(o *observer.Options) {
		o.QueueSize = cfg.Runtime.ObserverQueue
		o.LogRate = rate.Limit(cfg.Runtime.LogRate)
		o.LogBurst = cfg.Runtime.LogBurst
		o.Logger = opts.Logger
		o.Metrics = opts.Metrics
	})

	e := engine.New(func(o *engine.Options) {
		o.Config = engine.Config{DropUnmatched: cfg.Runtime.DropUnmatched}
		o.Clock = opts.Clock
		o.Observer = d
		o.Logger = opts.Logger
		o.Metrics = opts.Metrics
	})

	return &Market{
		cfg:        cfg,
		opts:       opts,
		engine:     e,
		dispatcher: d,
		actors:     make(map[core.Address]core.Actor),
	}
}

// Engine returns the underlying runtime.
func (m *Market) Engine() *engine.Engine { return m.engine }

// Config returns the configuration the market was built with.
func (m *Market) Config() config.Config { return m.cfg }

// Actor returns the actor spawned at addr.
func (m *Market) Actor(addr core.Address) (core.Actor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.actors[addr]

	return a, ok
}

// Shutdown stops every actor, then drains the presentation queue. Errors of
// both steps are aggregated.
func (m *Market) Shutdown(ctx context.Context) error {
	var result *multierror.Error

	if err := m.engine.Shutdown(ctx); err != nil {
		result = multierror.Append(result, err)
	}

	if err := m.dispatcher.Close(ctx); err != nil {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}

func (m *Market) track(addr core.Address, a core.Actor) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.actors[addr] = a
	m.order = append(m.order, addr)
}

// each calls fn for every spawned actor in spawn order.
func (m *Market) each(fn func(core.Actor)) {
	m.mu.Lock()
	actors := make([]core.Actor, 0, len(m.order))
	for _, addr := range m.order {
		actors = append(actors, m.actors[addr])
	}
	m.mu.Unlock()

	for _, a := range actors {
		fn(a)
	}
}
