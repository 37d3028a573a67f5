// Package agent contains the building blocks for concrete marketplace actors:
//
//  1. BaseActor: identity, advertised services and lifecycle bookkeeping
//  2. Reactive: a message-triggered behavior with an intent/kind filter
//  3. Periodic: a timer-triggered behavior with optional tick budget
//
// Concrete actors (auctioneer, bank, bidders, ...) embed BaseActor, attach
// behaviors in their constructor and keep all state private. The engine
// drives them through the core.Actor interface.
package agent
