package metrics

import "github.com/hupe1980/agentmarket/core"

// Sink translates presentation notifications into protocol metrics.
type Sink struct {
	core.NoOpObserver
	m *Metrics
}

// Sink returns an Observer feeding m.
func (m *Metrics) Sink() *Sink {
	return &Sink{m: m}
}

var _ core.Observer = (*Sink)(nil)

// NewAuction counts an opened auction.
func (s *Sink) NewAuction(string, string, float64, float64) {
	if s.m == nil {
		return
	}
	s.m.auctionsOpened.Inc()
}

// BidUpdate counts an accepted bid.
func (s *Sink) BidUpdate(string, float64, core.Address) {
	if s.m == nil {
		return
	}
	s.m.bidsAccepted.Inc()
}

// AuctionEnd counts a closed auction; an empty winner means it failed.
func (s *Sink) AuctionEnd(_ string, winner core.Address, _ float64) {
	if s.m == nil {
		return
	}
	outcome := "won"
	if winner == "" {
		outcome = "failed"
	}
	s.m.auctionsClosed.WithLabelValues(outcome).Inc()
}

// Statistics mirrors the market gauges.
func (s *Sink) Statistics(activeAuctions, activeAgents int, totalVolume float64) {
	if s.m == nil {
		return
	}
	s.m.activeAuctions.Set(float64(activeAuctions))
	s.m.activeAgents.Set(float64(activeAgents))
	s.m.tradedVolume.Set(totalVolume)
}
