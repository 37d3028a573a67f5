package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/raulk/clock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentmarket/core"
	"github.com/hupe1980/agentmarket/registry"
)

// Harness drives a single actor synchronously: messages are handed straight
// to its behaviors and everything it sends lands in the Outbox.
// Example:
//
//	h := NewHarness(t)
//	actx := h.Start(bank.New(bank.Config{}))
//	h.Deliver(msg)
//	replies := h.Outbox.OfKind("FUNDS_BLOCKED")
type Harness struct {
	T         testing.TB
	Directory *registry.InMemoryDirectory
	Clock     *clock.Mock
	Outbox    *Outbox
	Observer  *RecordingObserver

	actor core.Actor
	actx  *core.ActorContext
}

// NewHarness creates a harness with an empty directory and a mock clock set
// to a fixed instant.
func NewHarness(t testing.TB) *Harness {
	clk := clock.NewMock()
	clk.Set(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	return &Harness{
		T:         t,
		Directory: registry.NewInMemoryDirectory(),
		Clock:     clk,
		Outbox:    &Outbox{},
		Observer:  &RecordingObserver{},
	}
}

// Context builds an ActorContext for self wired to the harness.
func (h *Harness) Context(self core.Address, kind string) *core.ActorContext {
	return core.NewActorContext(context.Background(), self, kind, h.Outbox, h.Directory, h.Clock, h.Observer, nil)
}

// Register publishes a service on behalf of owner, as another actor would.
func (h *Harness) Register(serviceType string, owner core.Address) {
	require.NoError(h.T, h.Directory.Register(core.ServiceDescriptor{Type: serviceType, Name: string(owner), Owner: owner}))
}

// Start runs a's Setup and makes it the harness subject.
func (h *Harness) Start(a core.Actor) *core.ActorContext {
	h.actor = a
	h.actx = h.Context(core.Address(a.Name()), a.Kind())

	require.NoError(h.T, a.Setup(h.actx))

	return h.actx
}

// Deliver hands msg to the first reactive behavior whose filter accepts it,
// as the scheduler would. It reports whether any behavior took the message.
func (h *Harness) Deliver(msg core.Message) bool {
	for _, b := range h.actor.Behaviors() {
		rb, ok := b.(core.ReactiveBehavior)
		if !ok {
			continue
		}

		if f := rb.Filter(); f == nil || f(msg) {
			rb.Handle(h.actx, msg)
			return true
		}
	}

	return false
}

// Tick fires the periodic behavior called name once.
func (h *Harness) Tick(name string) {
	for _, b := range h.actor.Behaviors() {
		if pb, ok := b.(core.PeriodicBehavior); ok && pb.Name() == name {
			pb.Tick(h.actx)
			return
		}
	}

	h.T.Fatalf("no periodic behavior %q", name)
}

// Advance moves the mock clock forward.
func (h *Harness) Advance(d time.Duration) { h.Clock.Add(d) }
