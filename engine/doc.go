// Package engine implements the actor runtime for agentmarket.
//
// The Engine owns every actor in the process. It assigns addresses, creates
// mailboxes, runs each actor's Setup, schedules its behaviors on a dedicated
// runner goroutine and tears it down again. Actors never reference each
// other; they exchange immutable messages that the engine routes.
//
// # Core Responsibilities
//
// Actor Management:
//   - Unique, stable addresses derived from actor names
//   - Spawn with rollback on setup failure
//   - Stop and Shutdown with directory cleanup
//
// Message Delivery:
//   - Unbounded FIFO mailboxes, one per actor
//   - Non-blocking Send; enqueue happens in the sender's goroutine, which
//     preserves ordering between one sender and one receiver
//   - Messages to unknown or stopped actors are dropped silently
//
// Scheduling:
//   - One runner per actor (see package runner)
//   - Behaviors of an actor run sequentially; actors run concurrently
//   - Panics are recovered per behavior invocation
//
// # Usage Patterns
//
//	eng := engine.New(func(o *engine.Options) {
//	    o.Logger = logger
//	    o.Observer = dispatcher
//	})
//
//	if _, err := eng.Spawn(auctioneer); err != nil {
//	    return err
//	}
//
//	defer eng.Shutdown(ctx)
//
// # Concurrency Model
//
//   - The actor table is guarded by an RWMutex; Send takes read locks only
//   - Runner goroutines are tracked in an errgroup and awaited on Shutdown
//   - Teardown errors are aggregated with go-multierror
package engine
