// Package runner implements the per-actor cooperative scheduler. A Runner
// owns no state of its own beyond its behavior lists; the engine creates one
// per spawned actor and runs it on a dedicated goroutine until the actor is
// torn down.
package runner
