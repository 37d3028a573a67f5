package observer

import "github.com/hupe1980/agentmarket/core"

// Fanout forwards every notification to each sink in order.
type Fanout []core.Observer

var _ core.Observer = Fanout(nil)

// NewAuction implements core.Observer.
func (f Fanout) NewAuction(id, name string, start, reserve float64) {
	for _, o := range f {
		o.NewAuction(id, name, start, reserve)
	}
}

// BidUpdate implements core.Observer.
func (f Fanout) BidUpdate(id string, price float64, bidder core.Address) {
	for _, o := range f {
		o.BidUpdate(id, price, bidder)
	}
}

// AuctionEnd implements core.Observer.
func (f Fanout) AuctionEnd(id string, winner core.Address, price float64) {
	for _, o := range f {
		o.AuctionEnd(id, winner, price)
	}
}

// AgentUpdate implements core.Observer.
func (f Fanout) AgentUpdate(name, kind string, budget float64, bids int) {
	for _, o := range f {
		o.AgentUpdate(name, kind, budget, bids)
	}
}

// Log implements core.Observer.
func (f Fanout) Log(message string, level core.Severity) {
	for _, o := range f {
		o.Log(message, level)
	}
}

// Statistics implements core.Observer.
func (f Fanout) Statistics(activeAuctions, activeAgents int, totalVolume float64) {
	for _, o := range f {
		o.Statistics(activeAuctions, activeAgents, totalVolume)
	}
}
