package observer

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"

	"github.com/hupe1980/agentmarket/core"
)

// ConsoleSink renders market events as colored, human-readable lines.
// Statistics are kept as the latest snapshot instead of being printed.
type ConsoleSink struct {
	mu  sync.Mutex
	out io.Writer

	auction *color.Color
	bid     *color.Color
	success *color.Color
	warning *color.Color
	failure *color.Color
	plain   *color.Color

	stats Snapshot
}

// Snapshot is the last Statistics call seen by a ConsoleSink.
type Snapshot struct {
	ActiveAuctions int
	ActiveAgents   int
	TotalVolume    float64
}

// NewConsoleSink writes to out, or stdout when out is nil. Colors are
// disabled when noColor is set.
func NewConsoleSink(out io.Writer, noColor bool) *ConsoleSink {
	if out == nil {
		out = os.Stdout
	}

	s := &ConsoleSink{
		out:     out,
		auction: color.New(color.FgCyan, color.Bold),
		bid:     color.New(color.FgBlue),
		success: color.New(color.FgGreen),
		warning: color.New(color.FgYellow),
		failure: color.New(color.FgRed),
		plain:   color.New(color.Reset),
	}

	if noColor {
		for _, c := range []*color.Color{s.auction, s.bid, s.success, s.warning, s.failure, s.plain} {
			c.DisableColor()
		}
	}

	return s
}

var _ core.Observer = (*ConsoleSink)(nil)

func (s *ConsoleSink) println(c *color.Color, format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = c.Fprintln(s.out, fmt.Sprintf(format, args...))
}

func (s *ConsoleSink) NewAuction(id, name string, start, reserve float64) {
	s.println(s.auction, "[NEW]     %s %q start=%.2f reserve=%.2f", id, name, start, reserve)
}

func (s *ConsoleSink) BidUpdate(id string, price float64, bidder core.Address) {
	s.println(s.bid, "[BID]     %s %.2f by %s", id, price, bidder)
}

func (s *ConsoleSink) AuctionEnd(id string, winner core.Address, price float64) {
	if winner == "" {
		s.println(s.warning, "[FAILED]  %s reserve not met at %.2f", id, price)
		return
	}

	s.println(s.success, "[SOLD]    %s to %s for %.2f", id, winner, price)
}

func (s *ConsoleSink) AgentUpdate(name, kind string, budget float64, bids int) {
	s.println(s.plain, "[AGENT]   %s (%s) budget=%.2f bids=%d", name, kind, budget, bids)
}

func (s *ConsoleSink) Log(message string, level core.Severity) {
	c := s.plain

	switch level {
	case core.SeveritySuccess:
		c = s.success
	case core.SeverityWarning:
		c = s.warning
	case core.SeverityError:
		c = s.failure
	}

	s.println(c, "[%-7s] %s", level, message)
}

func (s *ConsoleSink) Statistics(activeAuctions, activeAgents int, totalVolume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats = Snapshot{ActiveAuctions: activeAuctions, ActiveAgents: activeAgents, TotalVolume: totalVolume}
}

// Last returns the latest statistics snapshot.
func (s *ConsoleSink) Last() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stats
}
