package testutil

import (
	"sync"

	"github.com/hupe1980/agentmarket/core"
)

// Outbox is a core.Transport that records every sent message instead of
// delivering it.
type Outbox struct {
	mu   sync.Mutex
	sent []core.Message
}

var _ core.Transport = (*Outbox)(nil)

// Send records msg.
func (o *Outbox) Send(msg core.Message) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.sent = append(o.sent, msg.Clone())
}

// Sent returns every recorded message in send order.
func (o *Outbox) Sent() []core.Message {
	o.mu.Lock()
	defer o.mu.Unlock()

	return append([]core.Message(nil), o.sent...)
}

// Len returns the number of recorded messages.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	return len(o.sent)
}

// OfKind returns the recorded messages of kind.
func (o *Outbox) OfKind(kind string) []core.Message {
	return o.Where(func(m core.Message) bool { return m.Kind == kind })
}

// To returns the recorded messages addressed to a.
func (o *Outbox) To(a core.Address) []core.Message {
	return o.Where(func(m core.Message) bool {
		for _, r := range m.Receivers {
			if r == a {
				return true
			}
		}
		return false
	})
}

// Where returns the recorded messages accepted by f.
func (o *Outbox) Where(f core.Filter) []core.Message {
	o.mu.Lock()
	defer o.mu.Unlock()

	var out []core.Message

	for _, m := range o.sent {
		if f(m) {
			out = append(out, m)
		}
	}

	return out
}

// Last returns the most recent message. ok is false when nothing was sent.
func (o *Outbox) Last() (msg core.Message, ok bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.sent) == 0 {
		return core.Message{}, false
	}

	return o.sent[len(o.sent)-1], true
}

// Reset forgets every recorded message.
func (o *Outbox) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.sent = nil
}
