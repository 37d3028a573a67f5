package testutil

import (
	"github.com/hupe1980/agentmarket/core"
)

// MessageBuilder provides a fluent helper for constructing messages in tests.
// Example:
//
//	msg := NewMessageBuilder().From("b1").To("auctioneer").Propose("BID").Set("item", "ITEM-1").Build()
//
// Chain only the parts you need; sensible defaults are applied.
type MessageBuilder struct {
	sender    core.Address
	receivers []core.Address
	intent    core.Intent
	kind      string
	payload   core.Payload
	replyTo   *core.Message
}

// NewMessageBuilder creates a builder for an INFORM from "tester".
func NewMessageBuilder() *MessageBuilder {
	return &MessageBuilder{sender: "tester", intent: core.Inform, payload: core.Payload{}}
}

// From sets the sender (chainable).
func (b *MessageBuilder) From(a core.Address) *MessageBuilder { b.sender = a; return b }

// To appends receivers (chainable).
func (b *MessageBuilder) To(a ...core.Address) *MessageBuilder {
	b.receivers = append(b.receivers, a...)
	return b
}

// Intent sets intent and kind (chainable).
func (b *MessageBuilder) Intent(i core.Intent, kind string) *MessageBuilder {
	b.intent = i
	b.kind = kind
	return b
}

// Inform sets an INFORM of kind (chainable).
func (b *MessageBuilder) Inform(kind string) *MessageBuilder { return b.Intent(core.Inform, kind) }

// Request sets a REQUEST of kind (chainable).
func (b *MessageBuilder) Request(kind string) *MessageBuilder { return b.Intent(core.Request, kind) }

// Propose sets a PROPOSE of kind (chainable).
func (b *MessageBuilder) Propose(kind string) *MessageBuilder { return b.Intent(core.Propose, kind) }

// Set adds a payload entry (chainable).
func (b *MessageBuilder) Set(key string, val any) *MessageBuilder {
	b.payload[key] = val
	return b
}

// Payload merges p into the payload (chainable).
func (b *MessageBuilder) Payload(p core.Payload) *MessageBuilder {
	for k, v := range p {
		b.payload[k] = v
	}
	return b
}

// ReplyTo makes the message a reply to m (chainable). The receiver defaults
// to m's sender.
func (b *MessageBuilder) ReplyTo(m core.Message) *MessageBuilder { b.replyTo = &m; return b }

// Build returns the message.
func (b *MessageBuilder) Build() core.Message {
	var msg core.Message

	if b.replyTo != nil {
		msg = b.replyTo.Reply(b.sender, b.intent, b.kind, b.payload)
		if len(b.receivers) > 0 {
			msg.Receivers = append([]core.Address(nil), b.receivers...)
		}
	} else {
		msg = core.NewMessage(b.sender, b.intent, b.kind, b.payload, b.receivers...)
	}

	return msg
}
