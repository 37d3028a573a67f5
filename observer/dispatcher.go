package observer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/hupe1980/agentmarket/core"
	"github.com/hupe1980/agentmarket/logging"
	"github.com/hupe1980/agentmarket/metrics"
)

// Options configures a Dispatcher.
//
// Example:
//
//	d := observer.NewDispatcher(sinks, func(o *observer.Options) {
//	    o.QueueSize = 4096
//	    o.LogRate = 20
//	})
type Options struct {
	// QueueSize bounds the number of pending events. Events arriving while
	// the queue is full are dropped. Defaults to 1024.
	QueueSize int

	// LogRate limits Log events per second. Other event types are not rate
	// limited. Defaults to 50.
	LogRate rate.Limit

	// LogBurst is the Log token bucket size. Defaults to 100.
	LogBurst int

	// Logger reports sink panics. Defaults to NoOp.
	Logger logging.Logger

	// Metrics counts dropped events. Nil disables metrics.
	Metrics *metrics.Metrics
}

// Dispatcher makes presentation notifications fire-and-forget. Actors call
// it synchronously; it only enqueues. A single goroutine replays the events
// on the sink in arrival order.
//
// Delivery guarantees:
//   - Never blocks the caller
//   - Events are dropped, and counted, when the queue is full or closed
//   - A panicking sink loses only the event that triggered the panic
type Dispatcher struct {
	sink    core.Observer
	queue   chan Event
	limiter *rate.Limiter
	logger  logging.Logger
	metrics *metrics.Metrics

	dropped atomic.Int64

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

var _ core.Observer = (*Dispatcher)(nil)

// NewDispatcher starts a dispatcher delivering to sink.
func NewDispatcher(sink core.Observer, optFns ...func(o *Options)) *Dispatcher {
	opts := Options{
		QueueSize: 1024,
		LogRate:   50,
		LogBurst:  100,
		Logger:    logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if sink == nil {
		sink = core.NoOpObserver{}
	}

	if opts.QueueSize <= 0 {
		opts.QueueSize = 1
	}

	d := &Dispatcher{
		sink:    sink,
		queue:   make(chan Event, opts.QueueSize),
		limiter: rate.NewLimiter(opts.LogRate, opts.LogBurst),
		logger:  opts.Logger,
		metrics: opts.Metrics,
		done:    make(chan struct{}),
	}

	go d.loop()

	return d
}

func (d *Dispatcher) loop() {
	defer close(d.done)

	for e := range d.queue {
		d.deliver(e)
	}
}

func (d *Dispatcher) deliver(e Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("observer sink panicked", "event", string(e.Type), "panic", fmt.Sprint(r))
		}
	}()

	e.Apply(d.sink)
}

func (d *Dispatcher) enqueue(e Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.drop()
		return
	}

	select {
	case d.queue <- e:
	default:
		d.drop()
	}
}

func (d *Dispatcher) drop() {
	d.dropped.Add(1)
	d.metrics.ObserverDropped()
}

// Dropped returns the number of events shed so far.
func (d *Dispatcher) Dropped() int64 { return d.dropped.Load() }

// Close stops accepting events and waits until the queued ones have been
// delivered or ctx expires. Close is idempotent.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("observer drain: %w", ctx.Err())
	}
}

// NewAuction implements core.Observer.
func (d *Dispatcher) NewAuction(id, name string, start, reserve float64) {
	d.enqueue(Event{Type: EventNewAuction, ID: id, Name: name, Start: start, Reserve: reserve})
}

// BidUpdate implements core.Observer.
func (d *Dispatcher) BidUpdate(id string, price float64, bidder core.Address) {
	d.enqueue(Event{Type: EventBidUpdate, ID: id, Price: price, Actor: bidder})
}

// AuctionEnd implements core.Observer.
func (d *Dispatcher) AuctionEnd(id string, winner core.Address, price float64) {
	d.enqueue(Event{Type: EventAuctionEnd, ID: id, Actor: winner, Price: price})
}

// AgentUpdate implements core.Observer.
func (d *Dispatcher) AgentUpdate(name, kind string, budget float64, bids int) {
	d.enqueue(Event{Type: EventAgentUpdate, Name: name, Kind: kind, Budget: budget, Bids: bids})
}

// Log implements core.Observer. Lines beyond the configured rate are shed.
func (d *Dispatcher) Log(message string, level core.Severity) {
	if !d.limiter.Allow() {
		d.drop()
		return
	}

	d.enqueue(Event{Type: EventLog, Message: message, Severity: level})
}

// Statistics implements core.Observer.
func (d *Dispatcher) Statistics(activeAuctions, activeAgents int, totalVolume float64) {
	d.enqueue(Event{
		Type:           EventStatistics,
		ActiveAuctions: activeAuctions,
		ActiveAgents:   activeAgents,
		TotalVolume:    totalVolume,
	})
}
