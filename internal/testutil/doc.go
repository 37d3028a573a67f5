// Package testutil contains helpers used across tests to reduce boilerplate
// when constructing messages, driving actor behaviors without the runtime
// and asserting on what they sent or reported. They are not intended for
// production usage.
package testutil
