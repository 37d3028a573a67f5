package engine

import (
	"slices"
	"sync"

	"github.com/hupe1980/agentmarket/core"
)

// Mailbox is an unbounded FIFO message queue owned by one actor. Put never
// blocks; consumers wait on Signal and then Take the oldest message matching
// their filter.
type Mailbox struct {
	mu     sync.Mutex
	items  []core.Message
	signal chan struct{}
	closed bool
}

// NewMailbox creates an empty, open mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{signal: make(chan struct{}, 1)}
}

// Put appends msg. It returns false if the mailbox is closed.
func (m *Mailbox) Put(msg core.Message) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.items = append(m.items, msg)
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}

	return true
}

// Take removes and returns the oldest message accepted by filter. A nil
// filter accepts everything.
func (m *Mailbox) Take(filter core.Filter) (core.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, msg := range m.items {
		if filter == nil || filter(msg) {
			m.items = slices.Delete(m.items, i, i+1)
			if len(m.items) == 0 {
				m.items = nil
			}
			return msg, true
		}
	}

	return core.Message{}, false
}

// DropWhere removes every message for which pred returns true and returns
// how many were removed.
func (m *Mailbox) DropWhere(pred func(core.Message) bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	before := len(m.items)
	m.items = slices.DeleteFunc(m.items, pred)

	return before - len(m.items)
}

// Signal is notified (coalesced) whenever a message is Put.
func (m *Mailbox) Signal() <-chan struct{} {
	return m.signal
}

// Len returns the number of queued messages.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.items)
}

// Close rejects further messages and discards the queued ones, returning how
// many were discarded.
func (m *Mailbox) Close() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.items)
	m.items = nil
	m.closed = true

	return n
}
