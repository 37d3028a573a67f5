package agentmarket

import (
	"context"
	"fmt"
	"slices"

	"github.com/hupe1980/agentmarket/auction"
	"github.com/hupe1980/agentmarket/auth"
	"github.com/hupe1980/agentmarket/bank"
	"github.com/hupe1980/agentmarket/bidder"
	"github.com/hupe1980/agentmarket/coalition"
	"github.com/hupe1980/agentmarket/config"
	"github.com/hupe1980/agentmarket/logistics"
	"github.com/hupe1980/agentmarket/monitor"
	"github.com/hupe1980/agentmarket/notify"
	"github.com/hupe1980/agentmarket/regulator"
)

// AuctioneerConfig converts the auction section of c.
func AuctioneerConfig(c config.Config, rnd func() float64) auction.Config {
	a := c.Auction

	return auction.Config{
		CreateEvery:    c.Units(a.CreateEvery),
		CloseEvery:     c.Units(a.CloseEvery),
		Length:         c.Units(a.Length),
		MaxOpen:        a.MaxOpen,
		MinStart:       a.MinStart,
		MaxStart:       a.MaxStart,
		ReserveFactor:  a.ReserveFactor,
		Solvency:       auction.Solvency(a.Solvency),
		PendingTimeout: c.Units(a.PendingTimeout),
		Catalogue:      slices.Clone(a.Catalogue),
		Rand:           rnd,
	}
}

// BidderConfig converts the bidder section of c for one bidder of the given
// strategy kind.
func BidderConfig(c config.Config, strategy, name string, budget float64) (bidder.Config, error) {
	var (
		s  bidder.Strategy
		sc config.StrategyConfig
	)

	switch strategy {
	case bidder.KindAggressive:
		s, sc = bidder.NewAggressive(), c.Bidders.Aggressive
	case bidder.KindConservative:
		s, sc = bidder.NewConservative(c.Units(c.Bidders.SnipeWindow)), c.Bidders.Conservative
	case bidder.KindAdaptive:
		s, sc = bidder.NewAdaptive(), c.Bidders.Adaptive
	default:
		return bidder.Config{}, fmt.Errorf("%w: bidder strategy %q", ErrUnknownKind, strategy)
	}

	return bidder.Config{
		Name:       name,
		Strategy:   s,
		Budget:     budget,
		TickEvery:  c.Units(sc.TickEvery),
		LearnEvery: c.Units(c.Bidders.LearnEvery),
	}, nil
}

// BankConfig converts the bank section of c.
func BankConfig(c config.Config, rnd func() float64) bank.Config {
	return bank.Config{
		DiscoverEvery: c.Units(c.Bank.DiscoverEvery),
		MinBalance:    c.Bank.MinBalance,
		MaxBalance:    c.Bank.MaxBalance,
		Rand:          rnd,
	}
}

// AuthenticatorConfig converts the auth section of c.
func AuthenticatorConfig(c config.Config) auth.Config {
	return auth.Config{
		ReportEvery: c.Units(c.Auth.ReportEvery),
		MaxAttempts: c.Auth.MaxAttempts,
	}
}

// RegulatorConfig converts the regulator section of c.
func RegulatorConfig(c config.Config, rnd func() float64) regulator.Config {
	r := c.Regulator

	return regulator.Config{
		ReportEvery:  c.Units(r.ReportEvery),
		Threshold:    r.SanctionThreshold,
		MinFine:      r.MinFine,
		MaxFine:      r.MaxFine,
		JournalLimit: r.JournalLimit,
		Rand:         rnd,
	}
}

// CoalitionConfig converts the coalition section of c.
func CoalitionConfig(c config.Config) coalition.Config {
	return coalition.Config{BidFactor: c.Coalition.BidFactor}
}

// MonitorConfig converts the monitor section of c.
func MonitorConfig(c config.Config) monitor.Config {
	mc := c.Monitor

	return monitor.Config{
		ReportEvery:  c.Units(mc.ReportEvery),
		AnomalyEvery: c.Units(mc.AnomalyEvery),
		MaxBids:      mc.MaxBids,
		MaxSpent:     mc.MaxSpent,
		JournalLimit: mc.JournalLimit,
	}
}

// AnalystConfig converts the analyst section of c.
func AnalystConfig(c config.Config) monitor.AnalystConfig {
	return monitor.AnalystConfig{
		AnalyzeEvery: c.Units(c.Analyst.AnalyzeEvery),
		HistorySize:  c.Analyst.HistorySize,
	}
}

// LogisticsConfig converts the logistics section of c.
func LogisticsConfig(c config.Config, rnd func() float64) logistics.Config {
	l := c.Logistics

	return logistics.Config{
		UpdateEvery:        c.Units(l.UpdateEvery),
		TransitProbability: l.TransitProbability,
		MinCost:            l.MinCost,
		MaxCost:            l.MaxCost,
		MinETA:             c.Units(l.MinETA),
		MaxETA:             c.Units(l.MaxETA),
		Rand:               rnd,
	}
}

// Step is one actor of the launch sequence.
type Step struct {
	Kind   Kind
	Config any
}

// Plan returns the reference launch sequence for the market's config:
// principal actors first, then support actors, then the bidders of every
// strategy with budgets drawn from their configured ranges.
func (m *Market) Plan() ([]Step, error) {
	c, rnd := m.cfg, m.opts.Rand

	steps := []Step{
		{KindAuctioneer, AuctioneerConfig(c, rnd)},
		{KindMonitor, MonitorConfig(c)},
		{KindBank, BankConfig(c, rnd)},
		{KindAuthenticator, AuthenticatorConfig(c)},
		{KindAnalyst, AnalystConfig(c)},
		{KindLogistics, LogisticsConfig(c, rnd)},
	}

	if c.Notify.Enabled {
		steps = append(steps, Step{KindNotifier, notify.Config{}})
	}

	steps = append(steps,
		Step{KindRegulator, RegulatorConfig(c, rnd)},
		Step{KindCoalition, CoalitionConfig(c)},
	)

	populations := []struct {
		strategy string
		sc       config.StrategyConfig
	}{
		{bidder.KindAggressive, c.Bidders.Aggressive},
		{bidder.KindConservative, c.Bidders.Conservative},
		{bidder.KindAdaptive, c.Bidders.Adaptive},
	}

	for _, p := range populations {
		for i := 1; i <= p.sc.Count; i++ {
			budget := p.sc.Budget + rnd()*p.sc.BudgetSpread

			bc, err := BidderConfig(c, p.strategy, fmt.Sprintf("%s%d", p.strategy, i), budget)
			if err != nil {
				return nil, err
			}

			steps = append(steps, Step{KindBidder, bc})
		}
	}

	return steps, nil
}

// Bootstrap spawns the reference population, waiting the configured stagger
// between consecutive actors. It stops at the first spawn error or when ctx
// is done; actors spawned so far keep running until Shutdown.
func (m *Market) Bootstrap(ctx context.Context) error {
	steps, err := m.Plan()
	if err != nil {
		return err
	}

	for i, s := range steps {
		if i > 0 {
			if err := m.stagger(ctx); err != nil {
				return err
			}
		}

		if _, err := m.Spawn(s.Kind, s.Config); err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}
	}

	m.opts.Logger.Info("market bootstrapped", "actors", len(steps))

	return nil
}

func (m *Market) stagger(ctx context.Context) error {
	d := m.cfg.Bootstrap.Stagger.Duration
	if d <= 0 {
		return ctx.Err()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-m.opts.Clock.After(d):
		return nil
	}
}
