package observer

import (
	"github.com/hupe1980/agentmarket/core"
	"github.com/hupe1980/agentmarket/logging"
)

// LoggerSink writes every notification as a structured log line.
type LoggerSink struct {
	logger logging.Logger
}

// NewLoggerSink returns a sink logging through l.
func NewLoggerSink(l logging.Logger) *LoggerSink {
	if l == nil {
		l = logging.NoOpLogger{}
	}

	return &LoggerSink{logger: l}
}

var _ core.Observer = (*LoggerSink)(nil)

func (s *LoggerSink) NewAuction(id, name string, start, reserve float64) {
	s.logger.Info("auction opened", "item", id, "name", name, "start_price", start, "reserve", reserve)
}

func (s *LoggerSink) BidUpdate(id string, price float64, bidder core.Address) {
	s.logger.Info("bid accepted", "item", id, "price", price, "bidder", bidder.String())
}

func (s *LoggerSink) AuctionEnd(id string, winner core.Address, price float64) {
	if winner == "" {
		s.logger.Info("auction failed", "item", id, "price", price)
		return
	}

	s.logger.Info("auction won", "item", id, "winner", winner.String(), "price", price)
}

func (s *LoggerSink) AgentUpdate(name, kind string, budget float64, bids int) {
	s.logger.Debug("agent update", "name", name, "kind", kind, "budget", budget, "bids", bids)
}

func (s *LoggerSink) Log(message string, level core.Severity) {
	switch level {
	case core.SeverityError:
		s.logger.Error(message)
	case core.SeverityWarning:
		s.logger.Warn(message)
	default:
		s.logger.Info(message, "severity", string(level))
	}
}

func (s *LoggerSink) Statistics(activeAuctions, activeAgents int, totalVolume float64) {
	s.logger.Debug("market statistics",
		"active_auctions", activeAuctions,
		"active_agents", activeAgents,
		"total_volume", totalVolume,
	)
}
