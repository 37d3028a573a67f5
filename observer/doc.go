// Package observer implements the presentation side of the market: an
// asynchronous Dispatcher that decouples actors from slow consumers, and the
// sinks it feeds (structured logs, a colored console and fan-out to several
// sinks at once).
package observer
