// Package protocol is the shared vocabulary of the marketplace: service
// types, message kinds, payload keys, refusal reasons and typed builders and
// parsers for the payloads exchanged between actors.
package protocol
