package core

import "context"

// Runtime owns actor lifecycle and message delivery.
//
// A concrete implementation is responsible for:
//   - Spawning actors (Setup, scheduling, address assignment)
//   - Delivering messages asynchronously into per-actor mailboxes
//   - Tearing actors down and removing their directory entries
//
// Implementations MUST:
//   - Never block a sender inside Send
//   - Preserve ordering between messages from one sender to one receiver
//   - Silently drop messages addressed to unknown or stopped actors
//   - Confine failures of one actor to that actor
type Runtime interface {
	Transport

	// Spawn sets the actor up and starts scheduling its behaviors. The actor
	// Name becomes its Address and must be unique among live actors.
	Spawn(a Actor) (Address, error)

	// Stop tears down a single actor. Stopping an unknown actor is an error.
	Stop(addr Address) error

	// Actors returns the addresses of live actors in spawn order.
	Actors() []Address

	// Shutdown stops every actor and waits for their schedulers to exit.
	Shutdown(ctx context.Context) error
}
