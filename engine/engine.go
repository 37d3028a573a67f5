package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/raulk/clock"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/agentmarket/core"
	"github.com/hupe1980/agentmarket/logging"
	"github.com/hupe1980/agentmarket/metrics"
	"github.com/hupe1980/agentmarket/registry"
	"github.com/hupe1980/agentmarket/runner"
)

var (
	// ErrActorExists is returned when spawning an actor whose name is taken.
	ErrActorExists = errors.New("actor already exists")
	// ErrActorNotFound is returned when stopping an unknown actor.
	ErrActorNotFound = errors.New("actor not found")
	// ErrInvalidActor is returned for a nil actor or an empty name.
	ErrInvalidActor = errors.New("invalid actor")
	// ErrShutdown is returned when spawning after Shutdown.
	ErrShutdown = errors.New("engine is shut down")
)

// Config defines tuning parameters for the Engine's operational behavior.
//
// Example:
//
//	cfg := Config{
//	    DropUnmatched: true,
//	}
type Config struct {
	// DropUnmatched discards mailbox messages that no reactive behavior of
	// the receiving actor can ever accept. Behavior filters are fixed at
	// spawn time, so such messages would otherwise accumulate forever.
	DropUnmatched bool
}

// DefaultConfig provides the default configuration values.
//
// Configuration values:
//   - DropUnmatched: true (keeps mailboxes bounded by live traffic)
var DefaultConfig = Config{
	DropUnmatched: true,
}

// Options configures an Engine instance using the functional options pattern.
//
// Every dependency has a default so that New() alone yields a working
// runtime suitable for tests and demos.
//
// Example:
//
//	eng := New(func(o *Options) {
//	    o.Logger = logger
//	    o.Clock = clock.NewMock()
//	})
type Options struct {
	// Config contains operational parameters for the engine behavior.
	// Defaults to DefaultConfig if not specified.
	Config Config

	// Directory is the service registry shared by all actors.
	// Defaults to an in-memory directory.
	Directory core.Directory

	// Clock drives periodic behaviors and message timestamps.
	// Defaults to the wall clock.
	Clock clock.Clock

	// Observer receives presentation notifications from actors.
	// Defaults to a no-op observer.
	Observer core.Observer

	// Logger provides structured logging. Each actor receives a copy scoped
	// to its kind and address. Defaults to NoOp.
	Logger logging.Logger

	// Metrics collects runtime counters. Nil disables metrics.
	Metrics *metrics.Metrics
}

// cell is the runtime bookkeeping for one live actor.
type cell struct {
	actor   core.Actor
	addr    core.Address
	mailbox *Mailbox
	actx    *core.ActorContext
	cancel  context.CancelFunc
	done    chan struct{}
	err     error // teardown error, valid after done is closed
}

// Engine owns the lifecycle of every actor in the process and routes
// messages between them.
//
// Core Responsibilities:
//   - Actor Registry: unique addresses, spawn order, lookup for routing
//   - Scheduling: one runner goroutine per actor, tracked in an errgroup
//   - Delivery: non-blocking Send into per-actor mailboxes
//   - Teardown: directory cleanup and mailbox disposal on Stop/Shutdown
//
// Concurrency Model:
//   - The actor table is protected by an RWMutex; Send only takes read locks
//   - Send enqueues in the caller's goroutine, preserving per-sender FIFO
//   - Behaviors of one actor run sequentially on its runner goroutine
//   - A failing or panicking actor never affects any other actor
//
// Example Usage:
//
//	eng := engine.New(func(o *engine.Options) { o.Logger = logger })
//	addr, err := eng.Spawn(bank.New(bank.Config{}))
//	if err != nil {
//	    return err
//	}
//	defer eng.Shutdown(context.Background())
type Engine struct {
	directory core.Directory
	clock     clock.Clock
	observer  core.Observer
	logger    logging.Logger
	metrics   *metrics.Metrics
	config    Config

	root   context.Context
	cancel context.CancelFunc
	group  errgroup.Group

	mu     sync.RWMutex
	cells  map[core.Address]*cell
	order  []core.Address
	closed bool
}

var _ core.Runtime = (*Engine)(nil)

// New creates a new Engine with defaults for every unset option.
func New(optFns ...func(o *Options)) *Engine {
	opts := Options{
		Config:    DefaultConfig,
		Directory: registry.NewInMemoryDirectory(),
		Clock:     clock.New(),
		Observer:  core.NoOpObserver{},
		Logger:    logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	root, cancel := context.WithCancel(context.Background())

	return &Engine{
		directory: opts.Directory,
		clock:     opts.Clock,
		observer:  opts.Observer,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		config:    opts.Config,
		root:      root,
		cancel:    cancel,
		cells:     make(map[core.Address]*cell),
	}
}

// Directory returns the service registry used by the engine.
func (e *Engine) Directory() core.Directory { return e.directory }

// Clock returns the engine clock.
func (e *Engine) Clock() clock.Clock { return e.clock }

// Spawn registers a, runs its Setup and starts scheduling its behaviors.
//
// The actor's Name becomes its Address. The mailbox exists before Setup runs,
// so replies to messages sent from Setup are never lost. If Setup fails or a
// behavior is of an unsupported type, the spawn is rolled back: the address
// is released and any service descriptors registered so far are removed.
func (e *Engine) Spawn(a core.Actor) (core.Address, error) {
	if a == nil || a.Name() == "" {
		return "", ErrInvalidActor
	}

	addr := core.Address(a.Name())
	logger := logging.Scoped(e.logger, a.Kind(), addr.String())

	ctx, cancel := context.WithCancel(e.root)
	c := &cell{
		actor:   a,
		addr:    addr,
		mailbox: NewMailbox(),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	c.actx = core.NewActorContext(ctx, addr, a.Kind(), e, e.directory, e.clock, e.observer, logger)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		cancel()
		return "", ErrShutdown
	}
	if _, exists := e.cells[addr]; exists {
		e.mu.Unlock()
		cancel()
		return "", fmt.Errorf("%w: %s", ErrActorExists, addr)
	}
	e.cells[addr] = c
	e.order = append(e.order, addr)
	e.mu.Unlock()

	r, err := e.setup(c)
	if err != nil {
		e.release(addr)
		e.directory.Deregister(addr)
		c.mailbox.Close()
		cancel()
		close(c.done)

		return "", fmt.Errorf("spawn %s: %w", addr, err)
	}

	// Shutdown may have started while Setup ran. The closed check and
	// group.Go share the lock so Shutdown never waits on a group that is
	// still growing.
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		e.abort(c)

		return "", ErrShutdown
	}
	e.group.Go(func() error {
		e.run(c, r)
		return nil
	})
	e.mu.Unlock()

	e.metrics.SetActors(e.Len())
	logger.Debug("actor spawned", "kind", a.Kind())

	return addr, nil
}

// abort undoes a completed Setup for an actor that never started running.
func (e *Engine) abort(c *cell) {
	defer close(c.done)

	c.cancel()
	e.release(c.addr)
	e.directory.Deregister(c.addr)

	if err := c.actor.Teardown(c.actx); err != nil {
		c.actx.LogWarn("teardown failed", "error", err)
	}

	c.mailbox.Close()
}

func (e *Engine) setup(c *cell) (r *runner.Runner, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("setup panicked: %v", rec)
		}
	}()

	if err := c.actor.Setup(c.actx); err != nil {
		return nil, err
	}

	return runner.New(c.actx, c.mailbox, c.actor.Behaviors(), func(o *runner.Options) {
		o.DropUnmatched = e.config.DropUnmatched
		o.Metrics = e.metrics
	})
}

// run drives the actor until its context is cancelled, then tears it down.
func (e *Engine) run(c *cell, r *runner.Runner) {
	defer close(c.done)

	r.Run(c.actx.Context)

	e.release(c.addr)
	removed := e.directory.Deregister(c.addr)

	if err := c.actor.Teardown(c.actx); err != nil {
		c.err = fmt.Errorf("teardown %s: %w", c.addr, err)
		c.actx.LogWarn("teardown failed", "error", err)
	}

	dropped := c.mailbox.Close()
	e.metrics.MessagesDropped(metrics.DropMailboxClosed, dropped)
	e.metrics.SetActors(e.Len())

	c.actx.LogDebug("actor stopped", "services_removed", removed, "messages_dropped", dropped)
}

func (e *Engine) release(addr core.Address) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.cells, addr)

	for i, a := range e.order {
		if a == addr {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
}

// Send delivers msg to every receiver's mailbox without blocking. Receivers
// that are unknown or already torn down are skipped silently.
func (e *Engine) Send(msg core.Message) {
	e.metrics.MessageSent()

	delivered, dropped := 0, 0

	for _, rcv := range msg.Receivers {
		e.mu.RLock()
		c, ok := e.cells[rcv]
		e.mu.RUnlock()

		if !ok {
			dropped++
			e.metrics.MessagesDropped(metrics.DropUnknownReceiver, 1)
			continue
		}

		if !c.mailbox.Put(msg.Clone()) {
			dropped++
			e.metrics.MessagesDropped(metrics.DropMailboxClosed, 1)
			continue
		}

		delivered++
	}

	e.metrics.MessagesDelivered(delivered)

	if dropped > 0 {
		logging.LogDelivery(e.logger, msg.Kind, msg.Intent.String(), msg.Sender.String(), delivered, dropped)
	}
}

// Stop tears down a single actor and waits until its teardown completed.
func (e *Engine) Stop(addr core.Address) error {
	e.mu.RLock()
	c, ok := e.cells[addr]
	e.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrActorNotFound, addr)
	}

	c.cancel()
	<-c.done

	return c.err
}

// Actors returns the live actor addresses in spawn order.
func (e *Engine) Actors() []core.Address {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]core.Address, len(e.order))
	copy(out, e.order)

	return out
}

// Len returns the number of live actors.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.cells)
}

// MailboxLen returns the queued message count of addr, or -1 if unknown.
func (e *Engine) MailboxLen(addr core.Address) int {
	e.mu.RLock()
	c, ok := e.cells[addr]
	e.mu.RUnlock()

	if !ok {
		return -1
	}

	return c.mailbox.Len()
}

// Shutdown stops every actor and waits for all runners to exit or ctx to
// expire. Teardown errors are aggregated. Further spawns fail with
// ErrShutdown. Shutdown is idempotent.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	e.closed = true
	cells := make([]*cell, 0, len(e.cells))
	for _, addr := range e.order {
		cells = append(cells, e.cells[addr])
	}
	e.mu.Unlock()

	e.cancel()

	waitCh := make(chan struct{})
	go func() {
		_ = e.group.Wait()
		close(waitCh)
	}()

	var result *multierror.Error

	select {
	case <-waitCh:
	case <-ctx.Done():
		result = multierror.Append(result, fmt.Errorf("shutdown interrupted: %w", ctx.Err()))
	}

	for _, c := range cells {
		select {
		case <-c.done:
			if c.err != nil {
				result = multierror.Append(result, c.err)
			}
		default:
		}
	}

	return result.ErrorOrNil()
}
