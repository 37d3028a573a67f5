package core

// Address is the stable, process-local identifier of an actor. It is assigned
// at spawn time and is the sole way to reach an actor.
type Address string

// String returns the address as a plain string.
func (a Address) String() string { return string(a) }

// Actor defines the contract every marketplace participant implements.
//
// Actors never share memory. They publish capabilities to the Directory,
// exchange Messages through their ActorContext and keep their state private.
// The runtime drives an actor as follows:
//   - Setup is called once, before any behavior runs. It registers services
//     and may send opening messages. A Setup error aborts the spawn.
//   - Behaviors are scheduled cooperatively; behaviors of one actor never run
//     concurrently with each other.
//   - Teardown is called once after the last behavior returned. Service
//     descriptors are removed by the runtime regardless of its outcome.
type Actor interface {
	Name() string
	Kind() string
	Setup(ctx *ActorContext) error
	Behaviors() []Behavior
	Teardown(ctx *ActorContext) error
}
