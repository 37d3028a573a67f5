// Package metrics exposes prometheus collectors for the actor runtime and the
// auction protocols. Runtime counters are fed by the engine and runner;
// protocol counters are fed through Sink, an Observer attached to the
// presentation dispatcher.
package metrics
