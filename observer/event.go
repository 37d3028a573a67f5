package observer

import "github.com/hupe1980/agentmarket/core"

// EventType identifies which Observer method an Event replays.
type EventType string

const (
	// EventNewAuction is emitted when an auction opens.
	EventNewAuction EventType = "new_auction"

	// EventBidUpdate is emitted when a bid is accepted.
	EventBidUpdate EventType = "bid_update"

	// EventAuctionEnd is emitted when an auction closes, won or failed.
	EventAuctionEnd EventType = "auction_end"

	// EventAgentUpdate is emitted when a bidder reports its state.
	EventAgentUpdate EventType = "agent_update"

	// EventLog carries a presentation log line.
	EventLog EventType = "log"

	// EventStatistics carries the market gauges.
	EventStatistics EventType = "statistics"
)

// Event is a queued Observer call. Only the fields of its Type are set.
type Event struct {
	Type EventType

	ID      string
	Name    string
	Kind    string
	Actor   core.Address
	Start   float64
	Reserve float64
	Price   float64
	Budget  float64
	Bids    int

	Message  string
	Severity core.Severity

	ActiveAuctions int
	ActiveAgents   int
	TotalVolume    float64
}

// Apply replays e on o.
func (e Event) Apply(o core.Observer) {
	switch e.Type {
	case EventNewAuction:
		o.NewAuction(e.ID, e.Name, e.Start, e.Reserve)
	case EventBidUpdate:
		o.BidUpdate(e.ID, e.Price, e.Actor)
	case EventAuctionEnd:
		o.AuctionEnd(e.ID, e.Actor, e.Price)
	case EventAgentUpdate:
		o.AgentUpdate(e.Name, e.Kind, e.Budget, e.Bids)
	case EventLog:
		o.Log(e.Message, e.Severity)
	case EventStatistics:
		o.Statistics(e.ActiveAuctions, e.ActiveAgents, e.TotalVolume)
	}
}
