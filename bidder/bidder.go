package bidder

import (
	"fmt"
	"time"

	"github.com/hupe1980/agentmarket/agent"
	"github.com/hupe1980/agentmarket/core"
	"github.com/hupe1980/agentmarket/protocol"
)

// Behavior names.
const (
	BehaviorTrack   = "track-auctions"
	BehaviorReplies = "bid-replies"
	BehaviorWins    = "wins"
	BehaviorAuth    = "auth-replies"
	BehaviorNotices = "notifications"
	BehaviorBid     = "place-bids"
	BehaviorLearn   = "learn-patterns"
)

var (
	defaultBudget = map[string]float64{
		KindAggressive:   5000,
		KindConservative: 3000,
		KindAdaptive:     10000,
	}
	defaultTick = map[string]time.Duration{
		KindAggressive:   1 * time.Second,
		KindConservative: 3 * time.Second,
		KindAdaptive:     2 * time.Second,
	}
)

// Config configures a Bidder.
type Config struct {
	// Name is the actor address.
	Name string

	// Strategy decides the bids. Required.
	Strategy Strategy

	// Budget caps what the strategy may offer. Defaults per strategy kind:
	// aggressive 5000, conservative 3000, adaptive 10000.
	Budget float64

	// TickEvery is the decision period. Defaults per strategy kind:
	// aggressive 1s, conservative 3s, adaptive 2s.
	TickEvery time.Duration

	// LearnEvery is the learning period of a Learner strategy.
	// Defaults to 5s.
	LearnEvery time.Duration
}

func (c *Config) defaults() {
	if c.Strategy == nil {
		c.Strategy = NewAggressive()
	}
	if c.Name == "" {
		c.Name = c.Strategy.ServiceName()
	}
	if c.Budget <= 0 {
		c.Budget = defaultBudget[c.Strategy.Kind()]
	}
	if c.TickEvery <= 0 {
		c.TickEvery = defaultTick[c.Strategy.Kind()]
		if c.TickEvery <= 0 {
			c.TickEvery = time.Second
		}
	}
	if c.LearnEvery <= 0 {
		c.LearnEvery = 5 * time.Second
	}
}

// Stats is a bidder's activity summary.
type Stats struct {
	Name     string
	Kind     string
	Budget   float64
	Bids     int
	Accepted int
	Rejected int
	Won      int
	Spent    float64
	Verified bool
}

// Bidder tracks auctions from broadcasts and places the bids its strategy
// decides on. Bids are fire-and-forget: replies are counted, never retried.
type Bidder struct {
	agent.BaseActor

	cfg   Config
	book  *Book
	stats Stats
}

// New creates a bidder.
func New(cfg Config) *Bidder {
	cfg.defaults()

	b := &Bidder{
		BaseActor: agent.NewBaseActor(cfg.Name, cfg.Strategy.Kind()+"-bidder"),
		cfg:       cfg,
		book:      NewBook(),
		stats: Stats{
			Name:   cfg.Name,
			Kind:   cfg.Strategy.Kind(),
			Budget: cfg.Budget,
		},
	}

	b.Offer(protocol.ServiceBidder, cfg.Strategy.ServiceName())
	b.AddBehavior(
		agent.NewReactive(BehaviorTrack, core.MatchAll(
			core.MatchIntent(core.Inform),
			core.MatchKind(protocol.KindNewAuction, protocol.KindBidUpdate, protocol.KindAuctionClosed),
		), b.track),
		agent.NewReactive(BehaviorReplies, core.MatchAny(
			core.MatchAll(core.MatchIntent(core.Accept), core.MatchKind(protocol.KindBidAccepted)),
			core.MatchAll(core.MatchIntent(core.Reject), core.MatchKind(protocol.KindBidRejected)),
		), b.reply),
		agent.NewReactive(BehaviorWins, core.MatchAll(
			core.MatchIntent(core.Inform),
			core.MatchKind(protocol.KindYouWon),
		), b.won),
		agent.NewReactive(BehaviorAuth, core.MatchKind(
			protocol.KindRegistered,
			protocol.KindVerified,
			protocol.ReasonBlacklisted,
			protocol.ReasonNotRegistered,
			protocol.ReasonRoleMismatch,
		), b.auth),
		agent.NewReactive(BehaviorNotices, core.MatchKind(
			protocol.KindSubscribed,
			protocol.KindNotification,
		), b.notice),
		agent.NewPeriodic(BehaviorBid, cfg.TickEvery, b.bid),
	)

	if l, ok := cfg.Strategy.(Learner); ok {
		b.AddBehavior(agent.NewPeriodic(BehaviorLearn, cfg.LearnEvery, func(*core.ActorContext) {
			l.Learn(b.book.Tracks())
		}))
	}

	return b
}

// Book exposes the tracked auctions. Use it from a behavior or once the
// actor has stopped.
func (b *Bidder) Book() *Book { return b.book }

// Stats returns the activity counters. Use it from a behavior or once the
// actor has stopped.
func (b *Bidder) Stats() Stats { return b.stats }

// Setup registers the bidder, introduces it to the authenticator and
// subscribes to auction end notifications.
func (b *Bidder) Setup(ctx *core.ActorContext) error {
	if err := b.BaseActor.Setup(ctx); err != nil {
		return err
	}

	if auth, ok := ctx.First(protocol.ServiceSecurity); ok {
		ctx.Send(core.Request, protocol.KindRegister, core.Payload{protocol.KeyRole: protocol.RoleBidder}, auth)
	}

	if notifier, ok := ctx.First(protocol.ServiceNotification); ok {
		ctx.Send(core.Subscribe, protocol.KindSubscribe, core.Payload{protocol.KeyEvent: protocol.EventAuctionEnd}, notifier)
	}

	ctx.LogInfo("bidder started", "strategy", b.stats.Kind, "budget", b.stats.Budget)
	b.report(ctx)

	return nil
}

func (b *Bidder) report(ctx *core.ActorContext) {
	ctx.Observer.AgentUpdate(b.stats.Name, b.stats.Kind, b.stats.Budget, b.stats.Bids)
}

func (b *Bidder) track(ctx *core.ActorContext, msg core.Message) {
	now := ctx.Now()

	switch msg.Kind {
	case protocol.KindNewAuction:
		n, err := protocol.ParseAuctionNotice(msg.Payload)
		if err != nil {
			ctx.LogMalformed(msg, err)
			return
		}

		if b.book.Open(n.Item, n.Name, n.StartPrice, n.EndTime, now) {
			ctx.LogDebug("tracking auction", "item", n.Item, "start_price", n.StartPrice)
		}
	case protocol.KindBidUpdate:
		u, err := protocol.ParseBidUpdate(msg.Payload)
		if err != nil {
			ctx.LogMalformed(msg, err)
			return
		}

		if u.Bidder == ctx.Self {
			b.book.Lead(u.Item, u.Price, now)
			return
		}

		b.book.Update(u.Item, u.Price, now)
	case protocol.KindAuctionClosed:
		c, err := protocol.ParseAuctionClosed(msg.Payload)
		if err != nil {
			ctx.LogMalformed(msg, err)
			return
		}

		b.book.Close(c.Item)
	}
}

func (b *Bidder) reply(ctx *core.ActorContext, msg core.Message) {
	d, err := protocol.ParseBidDecision(msg.Payload)
	if err != nil {
		ctx.LogMalformed(msg, err)
		return
	}

	if msg.Intent == core.Accept {
		b.stats.Accepted++
		b.book.Lead(d.Item, d.Price, ctx.Now())
		ctx.LogDebug("bid accepted", "item", d.Item, "amount", d.Amount)

		return
	}

	b.stats.Rejected++

	if d.Reason == protocol.ReasonUnknownAuction {
		b.book.Close(d.Item)
	}

	ctx.LogDebug("bid rejected", "item", d.Item, "amount", d.Amount, "reason", d.Reason)
}

func (b *Bidder) won(ctx *core.ActorContext, msg core.Message) {
	c, err := protocol.ParseAuctionClosed(msg.Payload)
	if err != nil {
		ctx.LogMalformed(msg, err)
		return
	}

	b.book.Close(c.Item)

	b.stats.Won++
	b.stats.Spent += c.Price
	b.stats.Budget = max(b.stats.Budget-c.Price, 0)

	ctx.LogInfo("auction won", "item", c.Item, "price", c.Price, "budget", b.stats.Budget)
	ctx.Observer.Log(fmt.Sprintf("%s won %s for %.2f", ctx.Self, c.Item, c.Price), core.SeveritySuccess)
	b.report(ctx)
}

func (b *Bidder) auth(ctx *core.ActorContext, msg core.Message) {
	switch msg.Kind {
	case protocol.KindRegistered:
		ctx.Send(core.Request, protocol.KindVerify, core.Payload{protocol.KeyRole: protocol.RoleBidder}, msg.Sender)
	case protocol.KindVerified:
		b.stats.Verified = true
		ctx.LogInfo("verified by authenticator")
	default:
		ctx.LogWarn("authentication refused", "reason", msg.Payload.StringOr(protocol.KeyReason, msg.Kind))
	}
}

func (b *Bidder) notice(ctx *core.ActorContext, msg core.Message) {
	if msg.Kind == protocol.KindNotification {
		ctx.LogDebug("notification", "event", msg.Payload.StringOr(protocol.KeyEvent, ""), "text", msg.Payload.StringOr(protocol.KeyText, ""))
	}
}

func (b *Bidder) bid(ctx *core.ActorContext) {
	now := ctx.Now()

	orders := b.cfg.Strategy.Decide(now, b.stats.Budget, b.book.Biddable(now))
	if len(orders) == 0 {
		return
	}

	auctioneer, ok := ctx.First(protocol.ServiceAuction)
	if !ok {
		return
	}

	for _, o := range orders {
		ctx.Send(core.Propose, protocol.KindBid, protocol.Bid{Item: o.Item, Amount: o.Amount}.Payload(), auctioneer)
		b.stats.Bids++

		ctx.LogDebug("bid placed", "item", o.Item, "amount", o.Amount)
	}
}
