// Package journal contains concrete Journal implementations. The Journal
// interface and Entry type reside in the core package; actors depend on
// core.Journal and receive an implementation at wiring time.
package journal
