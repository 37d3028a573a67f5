package core

// Severity classifies presentation log lines.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Observer is the read-only presentation boundary. Actors call it at the
// point a protocol transition completes. Implementations must return
// promptly; anything slow belongs behind an asynchronous dispatcher.
type Observer interface {
	NewAuction(id, name string, start, reserve float64)
	BidUpdate(id string, price float64, bidder Address)
	AuctionEnd(id string, winner Address, price float64)
	AgentUpdate(name, kind string, budget float64, bids int)
	Log(message string, level Severity)
	Statistics(activeAuctions, activeAgents int, totalVolume float64)
}

// NoOpObserver discards every notification.
type NoOpObserver struct{}

func (NoOpObserver) NewAuction(string, string, float64, float64) {}
func (NoOpObserver) BidUpdate(string, float64, Address)          {}
func (NoOpObserver) AuctionEnd(string, Address, float64)         {}
func (NoOpObserver) AgentUpdate(string, string, float64, int)    {}
func (NoOpObserver) Log(string, Severity)                        {}
func (NoOpObserver) Statistics(int, int, float64)                {}

var _ Observer = NoOpObserver{}
