package core

import (
	"context"
	"time"

	"github.com/raulk/clock"

	"github.com/hupe1980/agentmarket/logging"
)

// ActorContext carries the execution scope handed to an actor's Setup,
// Teardown and behaviors. It aggregates:
//   - The ambient cancellation Context (cancelled on teardown)
//   - The actor's own Address and Kind
//   - The Transport used to send messages
//   - The Directory used for discovery and registration
//   - The Clock all protocol timing is measured against
//   - The presentation Observer
//
// A context belongs to exactly one actor and is only used from that actor's
// scheduler goroutine.
type ActorContext struct {
	Context   context.Context
	Self      Address
	Kind      string
	Transport Transport
	Directory Directory
	Clock     clock.Clock
	Observer  Observer

	*loggerAdapter
}

// NewActorContext constructs an ActorContext, substituting no-op defaults for
// a nil clock, observer or logger.
func NewActorContext(
	ctx context.Context,
	self Address,
	kind string,
	transport Transport,
	directory Directory,
	clk clock.Clock,
	observer Observer,
	logger logging.Logger,
) *ActorContext {
	if clk == nil {
		clk = clock.New()
	}

	if observer == nil {
		observer = NoOpObserver{}
	}

	return &ActorContext{
		Context:       ctx,
		Self:          self,
		Kind:          kind,
		Transport:     transport,
		Directory:     directory,
		Clock:         clk,
		Observer:      observer,
		loggerAdapter: newLoggerAdapter(logger),
	}
}

// Done returns a channel closed when the actor is being torn down.
func (c *ActorContext) Done() <-chan struct{} { return c.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (c *ActorContext) Err() error { return c.Context.Err() }

// Now returns the current time of the actor clock.
func (c *ActorContext) Now() time.Time { return c.Clock.Now() }

// Register publishes a service descriptor owned by this actor.
func (c *ActorContext) Register(serviceType, name string) error {
	return c.Directory.Register(ServiceDescriptor{Type: serviceType, Name: name, Owner: c.Self})
}

// Lookup returns a snapshot of the providers of serviceType.
func (c *ActorContext) Lookup(serviceType string) []ServiceDescriptor {
	return c.Directory.Lookup(serviceType)
}

// First returns the earliest registered provider of serviceType. The boolean
// is false when no provider exists, which callers treat as a skip.
func (c *ActorContext) First(serviceType string) (Address, bool) {
	for _, d := range c.Directory.Lookup(serviceType) {
		if d.Owner != c.Self {
			return d.Owner, true
		}
	}
	return "", false
}

// Recipients returns the de-duplicated owners of the given service types,
// excluding this actor and any address in exclude.
func (c *ActorContext) Recipients(exclude []Address, serviceTypes ...string) []Address {
	seen := map[Address]struct{}{c.Self: {}}
	for _, a := range exclude {
		seen[a] = struct{}{}
	}

	var out []Address

	for _, st := range serviceTypes {
		for _, d := range c.Directory.Lookup(st) {
			if _, ok := seen[d.Owner]; ok {
				continue
			}

			seen[d.Owner] = struct{}{}
			out = append(out, d.Owner)
		}
	}

	return out
}

// Send stamps and dispatches a new message. It returns the message as sent.
// A message without receivers is not dispatched.
func (c *ActorContext) Send(intent Intent, kind string, payload Payload, receivers ...Address) Message {
	msg := NewMessage(c.Self, intent, kind, payload, receivers...)
	msg.Timestamp = c.Now()
	c.dispatch(msg)

	return msg
}

// Reply answers to with a message in the same conversation.
func (c *ActorContext) Reply(to Message, intent Intent, kind string, payload Payload) Message {
	msg := to.Reply(c.Self, intent, kind, payload)
	msg.Timestamp = c.Now()
	c.dispatch(msg)

	return msg
}

// Broadcast sends one message to a registry snapshot of serviceType
// providers. Late joiners are not notified. It returns the receiver count.
func (c *ActorContext) Broadcast(serviceType string, intent Intent, kind string, payload Payload, exclude ...Address) int {
	receivers := c.Recipients(exclude, serviceType)
	c.Send(intent, kind, payload, receivers...)

	return len(receivers)
}

func (c *ActorContext) dispatch(msg Message) {
	if len(msg.Receivers) == 0 || c.Transport == nil {
		return
	}

	c.Transport.Send(msg)
}
