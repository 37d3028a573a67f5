package monitor

import (
	"fmt"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/hupe1980/agentmarket/agent"
	"github.com/hupe1980/agentmarket/core"
	"github.com/hupe1980/agentmarket/journal"
	"github.com/hupe1980/agentmarket/protocol"
)

// Monitor behavior names.
const (
	BehaviorObserve   = "monitor-communications"
	BehaviorReport    = "generate-reports"
	BehaviorAnomalies = "detect-anomalies"
	BehaviorFeedback  = "regulator-feedback"
)

// StreamActivity is the journal stream holding the activity log.
const StreamActivity = "activity"

// Config configures a Monitor.
type Config struct {
	// Name is the actor address. Defaults to "monitor".
	Name string

	// ReportEvery is the report period. Defaults to 10s.
	ReportEvery time.Duration

	// AnomalyEvery is the anomaly detection period. Defaults to 5s.
	AnomalyEvery time.Duration

	// MaxBids and MaxSpent are the thresholds above which a bidder is
	// flagged. Default to 50 bids and 50000.
	MaxBids  int
	MaxSpent float64

	// Journal stores the activity log. Defaults to an in-memory store
	// capped at JournalLimit entries.
	Journal      core.Journal
	JournalLimit int
}

func (c *Config) defaults() {
	if c.Name == "" {
		c.Name = "monitor"
	}
	if c.ReportEvery <= 0 {
		c.ReportEvery = 10 * time.Second
	}
	if c.AnomalyEvery <= 0 {
		c.AnomalyEvery = 5 * time.Second
	}
	if c.MaxBids <= 0 {
		c.MaxBids = 50
	}
	if c.MaxSpent <= 0 {
		c.MaxSpent = 50000
	}
	if c.Journal == nil {
		c.Journal = journal.NewInMemoryStore(c.JournalLimit)
	}
}

// Monitor watches the market feed, keeps an activity journal and flags
// bidders whose activity looks abnormal.
type Monitor struct {
	agent.BaseActor

	cfg      Config
	bids     map[core.Address]int
	spent    map[core.Address]float64
	auctions int
	closed   int
	flagged  mapset.Set[core.Address]
}

// New creates a market monitor.
func New(cfg Config) *Monitor {
	cfg.defaults()

	m := &Monitor{
		BaseActor: agent.NewBaseActor(cfg.Name, "monitor"),
		cfg:       cfg,
		bids:      make(map[core.Address]int),
		spent:     make(map[core.Address]float64),
		flagged:   mapset.NewThreadUnsafeSet[core.Address](),
	}

	m.Offer(protocol.ServiceMonitor, protocol.NameMonitor)
	m.Offer(protocol.ServiceMarketFeed, protocol.NameMonitorFeed)
	m.AddBehavior(
		agent.NewReactive(BehaviorObserve, core.MatchAll(
			core.MatchIntent(core.Inform),
			core.MatchKind(protocol.KindNewAuction, protocol.KindBidUpdate, protocol.KindAuctionClosed),
		), m.observe),
		agent.NewReactive(BehaviorFeedback, core.MatchKind(
			protocol.KindViolationRecorded,
			protocol.KindSanctionImposed,
		), m.feedback),
		agent.NewPeriodic(BehaviorReport, cfg.ReportEvery, m.report),
		agent.NewPeriodic(BehaviorAnomalies, cfg.AnomalyEvery, m.detect),
	)

	return m
}

// Bids returns the number of accepted bids seen for bidder.
func (m *Monitor) Bids(bidder core.Address) int { return m.bids[bidder] }

// Spent returns the total won by bidder.
func (m *Monitor) Spent(bidder core.Address) float64 { return m.spent[bidder] }

// Flagged returns the flagged bidders in sorted order.
func (m *Monitor) Flagged() []core.Address {
	out := m.flagged.ToSlice()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// Journal returns the activity log.
func (m *Monitor) Journal() core.Journal { return m.cfg.Journal }

func (m *Monitor) observe(ctx *core.ActorContext, msg core.Message) {
	if _, err := m.cfg.Journal.Append(StreamActivity, core.Entry{
		Kind:      msg.Kind,
		Content:   fmt.Sprintf("%s -> %s: %v", msg.Sender, msg.Intent, map[string]any(msg.Payload)),
		Timestamp: ctx.Now(),
	}); err != nil {
		ctx.LogError("journal append failed", "error", err)
	}

	switch msg.Kind {
	case protocol.KindNewAuction:
		m.auctions++
	case protocol.KindBidUpdate:
		u, err := protocol.ParseBidUpdate(msg.Payload)
		if err != nil {
			ctx.LogMalformed(msg, err)
			return
		}

		if u.Bidder != "" {
			m.bids[u.Bidder]++
		}
	case protocol.KindAuctionClosed:
		c, err := protocol.ParseAuctionClosed(msg.Payload)
		if err != nil {
			ctx.LogMalformed(msg, err)
			return
		}

		m.closed++

		if c.Won() {
			m.spent[c.Winner] += c.Price
		}
	}
}

func (m *Monitor) feedback(ctx *core.ActorContext, msg core.Message) {
	ctx.LogDebug("regulator feedback", "kind", msg.Kind, "points", msg.Payload[protocol.KeyPoints])
}

func (m *Monitor) report(ctx *core.ActorContext) {
	var total float64
	for _, s := range m.spent {
		total += s
	}

	ctx.LogInfo("market report",
		"auctions", m.auctions,
		"closed", m.closed,
		"bidders", len(m.bids),
		"total_spent", total,
		"journal", m.cfg.Journal.Len(StreamActivity),
	)

	for _, e := range m.cfg.Journal.Recent(StreamActivity, 5) {
		ctx.LogDebug("recent activity", "seq", e.Seq, "kind", e.Kind, "content", e.Content)
	}
}

func (m *Monitor) detect(ctx *core.ActorContext) {
	suspects := mapset.NewThreadUnsafeSet[core.Address]()

	for bidder, n := range m.bids {
		if n > m.cfg.MaxBids {
			suspects.Add(bidder)
		}
	}

	for bidder, s := range m.spent {
		if s > m.cfg.MaxSpent {
			suspects.Add(bidder)
		}
	}

	fresh := suspects.Difference(m.flagged).ToSlice()
	sort.Slice(fresh, func(i, j int) bool { return fresh[i] < fresh[j] })

	regulator, hasRegulator := ctx.First(protocol.ServiceRegulator)

	for _, bidder := range fresh {
		m.flagged.Add(bidder)

		ctx.LogWarn("anomaly detected", "bidder", bidder.String(), "bids", m.bids[bidder], "spent", m.spent[bidder])
		ctx.Observer.Log(fmt.Sprintf("suspicious activity from %s", bidder), core.SeverityWarning)

		if hasRegulator {
			ctx.Send(core.Request, protocol.KindReportViolation, protocol.ViolationReport{
				Violator:    bidder,
				Type:        protocol.ViolationPriceManipulation,
				Description: fmt.Sprintf("%d bids, %.2f spent", m.bids[bidder], m.spent[bidder]),
			}.Payload(), regulator)
		}
	}
}
