package testutil

import (
	"sync"

	"github.com/hupe1980/agentmarket/core"
	"github.com/hupe1980/agentmarket/observer"
)

// RecordingObserver stores every presentation notification as an
// observer.Event.
type RecordingObserver struct {
	mu     sync.Mutex
	events []observer.Event
}

var _ core.Observer = (*RecordingObserver)(nil)

func (r *RecordingObserver) add(e observer.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, e)
}

// Events returns the recorded events in call order.
func (r *RecordingObserver) Events() []observer.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]observer.Event(nil), r.events...)
}

// OfType returns the recorded events of type t.
func (r *RecordingObserver) OfType(t observer.EventType) []observer.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []observer.Event

	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}

	return out
}

func (r *RecordingObserver) NewAuction(id, name string, start, reserve float64) {
	r.add(observer.Event{Type: observer.EventNewAuction, ID: id, Name: name, Start: start, Reserve: reserve})
}

func (r *RecordingObserver) BidUpdate(id string, price float64, bidder core.Address) {
	r.add(observer.Event{Type: observer.EventBidUpdate, ID: id, Price: price, Actor: bidder})
}

func (r *RecordingObserver) AuctionEnd(id string, winner core.Address, price float64) {
	r.add(observer.Event{Type: observer.EventAuctionEnd, ID: id, Actor: winner, Price: price})
}

func (r *RecordingObserver) AgentUpdate(name, kind string, budget float64, bids int) {
	r.add(observer.Event{Type: observer.EventAgentUpdate, Name: name, Kind: kind, Budget: budget, Bids: bids})
}

func (r *RecordingObserver) Log(message string, level core.Severity) {
	r.add(observer.Event{Type: observer.EventLog, Message: message, Severity: level})
}

func (r *RecordingObserver) Statistics(activeAuctions, activeAgents int, totalVolume float64) {
	r.add(observer.Event{
		Type:           observer.EventStatistics,
		ActiveAuctions: activeAuctions,
		ActiveAgents:   activeAgents,
		TotalVolume:    totalVolume,
	})
}
