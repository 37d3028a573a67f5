package monitor

import (
	"fmt"
	"sort"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/hupe1980/agentmarket/agent"
	"github.com/hupe1980/agentmarket/core"
	"github.com/hupe1980/agentmarket/protocol"
)

// Analyst behavior names.
const (
	BehaviorCollect   = "collect-market-data"
	BehaviorAnalyze   = "analyze-market"
	BehaviorRecommend = "provide-recommendations"
)

// AnalystConfig configures an Analyst.
type AnalystConfig struct {
	// Name is the actor address. Defaults to "analyst".
	Name string

	// AnalyzeEvery is the analysis period. Defaults to 7s.
	AnalyzeEvery time.Duration

	// HistorySize caps the number of items with a price history.
	// Defaults to 256; the least recently updated item is evicted.
	HistorySize int
}

func (c *AnalystConfig) defaults() {
	if c.Name == "" {
		c.Name = "analyst"
	}
	if c.AnalyzeEvery <= 0 {
		c.AnalyzeEvery = 7 * time.Second
	}
	if c.HistorySize <= 0 {
		c.HistorySize = 256
	}
}

// MarketStats is the market-wide result of the last analysis tick.
type MarketStats struct {
	Items      int
	Average    float64
	Volatility float64
}

// Analyst collects item prices from the market feed and answers
// recommendation requests.
type Analyst struct {
	agent.BaseActor

	cfg     AnalystConfig
	history *lru.Cache
	stats   MarketStats
}

// NewAnalyst creates a market analyst.
func NewAnalyst(cfg AnalystConfig) (*Analyst, error) {
	cfg.defaults()

	history, err := lru.New(cfg.HistorySize)
	if err != nil {
		return nil, fmt.Errorf("price history: %w", err)
	}

	a := &Analyst{
		BaseActor: agent.NewBaseActor(cfg.Name, "analyst"),
		cfg:       cfg,
		history:   history,
	}

	a.Offer(protocol.ServiceAnalyst, protocol.NameAnalyst)
	a.Offer(protocol.ServiceMarketFeed, protocol.NameAnalystFeed)
	a.AddBehavior(
		agent.NewReactive(BehaviorCollect, core.MatchAll(
			core.MatchIntent(core.Inform),
			core.MatchKind(protocol.KindNewAuction, protocol.KindBidUpdate, protocol.KindAuctionClosed),
		), a.collect),
		agent.NewReactive(BehaviorRecommend, core.MatchAll(
			core.MatchIntent(core.Request),
			core.MatchKind(protocol.KindGetRecommendation),
		), a.recommend),
		agent.NewPeriodic(BehaviorAnalyze, cfg.AnalyzeEvery, a.analyze),
	)

	return a, nil
}

// Prices returns the known price history of item.
func (a *Analyst) Prices(item string) []float64 {
	v, ok := a.history.Peek(item)
	if !ok {
		return nil
	}

	return append([]float64(nil), v.([]float64)...)
}

// Stats returns the result of the last analysis tick.
func (a *Analyst) Stats() MarketStats { return a.stats }

func (a *Analyst) record(item string, price float64) {
	var prices []float64
	if v, ok := a.history.Get(item); ok {
		prices = v.([]float64)
	}

	a.history.Add(item, append(prices, price))
}

func (a *Analyst) collect(ctx *core.ActorContext, msg core.Message) {
	switch msg.Kind {
	case protocol.KindNewAuction:
		n, err := protocol.ParseAuctionNotice(msg.Payload)
		if err != nil {
			ctx.LogMalformed(msg, err)
			return
		}

		a.record(n.Item, n.StartPrice)
	case protocol.KindBidUpdate:
		u, err := protocol.ParseBidUpdate(msg.Payload)
		if err != nil {
			ctx.LogMalformed(msg, err)
			return
		}

		a.record(u.Item, u.Price)
	}
}

func (a *Analyst) analyze(ctx *core.ActorContext) {
	var (
		stats      MarketStats
		volatility float64
	)

	keys := a.history.Keys()
	items := make([]string, 0, len(keys))

	for _, k := range keys {
		items = append(items, k.(string))
	}

	sort.Strings(items)

	for _, item := range items {
		prices := a.Prices(item)
		if len(prices) < 2 {
			continue
		}

		an := Analyze(prices)

		stats.Items++
		stats.Average += an.Average
		volatility += an.Volatility

		ctx.LogDebug("item analysis", "item", item, "average", an.Average, "volatility", an.Volatility, "trend", an.Trend)
	}

	if stats.Items == 0 {
		return
	}

	stats.Average /= float64(stats.Items)
	stats.Volatility = volatility / float64(stats.Items)
	a.stats = stats

	ctx.LogInfo("market analysis", "items", stats.Items, "average_price", stats.Average, "volatility", stats.Volatility)
}

func (a *Analyst) recommend(ctx *core.ActorContext, msg core.Message) {
	item, err := msg.Payload.String(protocol.KeyItem)
	if err != nil {
		ctx.LogMalformed(msg, err)
		return
	}

	prices := a.Prices(item)
	if len(prices) == 0 {
		ctx.Reply(msg, core.Refuse, protocol.ReasonNoData,
			protocol.Refusal(protocol.ReasonNoData, core.Payload{protocol.KeyItem: item}))

		return
	}

	price := prices[len(prices)-1]
	if msg.Payload.Has(protocol.KeyPrice) {
		if price, err = msg.Payload.PositiveFloat(protocol.KeyPrice); err != nil {
			ctx.LogMalformed(msg, err)
			return
		}
	}

	an := Analyze(prices)
	action, reason := Recommend(price, an.Average)

	ctx.Reply(msg, core.Inform, protocol.KindRecommendation, core.Payload{
		protocol.KeyItem:   item,
		protocol.KeyPrice:  price,
		protocol.KeyAction: action,
		protocol.KeyReason: reason,
	})
}
