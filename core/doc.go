// Package core provides the foundational types and contracts shared by every
// agentmarket package. It defines:
//
//   - Addresses and service descriptors (actor identity and discovery)
//   - Messages (immutable envelopes with an Intent, a Kind and a Payload)
//   - Behaviors (reactive and periodic units of actor logic)
//   - ActorContext (the scoped handle a behavior uses to talk to the world)
//   - Observer (the read-only presentation boundary)
//
// Implementations (registry, runtime, concrete actors) live in sibling
// packages and depend on core, never the other way around.
package core
