package core

import (
	"fmt"
	"slices"
	"time"
)

// Message is the only unit of communication between actors. After it has
// been sent it must be treated as immutable; the runtime hands every receiver
// its own copy. It captures:
//   - Correlation (ID, ConversationID, InReplyTo)
//   - Routing (Sender, Receivers)
//   - Semantics (Intent performative plus a protocol Kind such as "BID")
//   - Structured content (Payload)
//
// Ordering is guaranteed only between messages from the same sender to the
// same receiver.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	InReplyTo      string    `json:"in_reply_to,omitempty"`
	Sender         Address   `json:"sender"`
	Receivers      []Address `json:"receivers"`
	Intent         Intent    `json:"intent"`
	Kind           string    `json:"kind"`
	Payload        Payload   `json:"payload,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewMessage creates a message opening a new conversation.
func NewMessage(sender Address, intent Intent, kind string, payload Payload, receivers ...Address) Message {
	id := NewID()

	return Message{
		ID:             id,
		ConversationID: id,
		Sender:         sender,
		Receivers:      slices.Clone(receivers),
		Intent:         intent,
		Kind:           kind,
		Payload:        payload.Clone(),
		Timestamp:      time.Now().UTC(),
	}
}

// Reply creates a response to m addressed back to its sender. The reply
// stays in m's conversation.
func (m Message) Reply(from Address, intent Intent, kind string, payload Payload) Message {
	r := NewMessage(from, intent, kind, payload, m.Sender)
	r.ConversationID = m.ConversationID
	r.InReplyTo = m.ID

	return r
}

// Clone returns a copy that shares no mutable state with m.
func (m Message) Clone() Message {
	c := m
	c.Receivers = slices.Clone(m.Receivers)
	c.Payload = m.Payload.Clone()

	return c
}

// Is reports whether m has the given intent and kind.
func (m Message) Is(intent Intent, kind string) bool {
	return m.Intent == intent && m.Kind == kind
}

// String renders a compact, log-friendly representation.
func (m Message) String() string {
	return fmt.Sprintf("%s %s from=%s to=%v %v", m.Intent, m.Kind, m.Sender, m.Receivers, map[string]any(m.Payload))
}
