// Package registry provides the process-wide service directory. Actors
// publish ServiceDescriptors at setup and discover peers by service type;
// the runtime removes an actor's descriptors when it is torn down.
package registry
