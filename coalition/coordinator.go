package coalition

import (
	"fmt"
	"slices"

	"github.com/hupe1980/agentmarket/agent"
	"github.com/hupe1980/agentmarket/core"
	"github.com/hupe1980/agentmarket/protocol"
)

// Behavior names.
const (
	BehaviorManage  = "manage-coalitions"
	BehaviorBids    = "coordinate-group-bids"
	BehaviorReplies = "group-bid-replies"
	BehaviorFeed    = "auction-feed"
)

// Config configures a Coordinator.
type Config struct {
	// Name is the actor address. Defaults to "coalition".
	Name string

	// BidFactor scales the pooled budget into the group bid.
	// Defaults to 0.8.
	BidFactor float64
}

func (c *Config) defaults() {
	if c.Name == "" {
		c.Name = "coalition"
	}
	if c.BidFactor <= 0 || c.BidFactor > 1 {
		c.BidFactor = 0.8
	}
}

// groupBid links a proposal sent to the auctioneer with the member request
// that triggered it.
type groupBid struct {
	coalition string
	request   core.Message
}

// Coordinator manages coalitions and bids on their behalf. It registers as
// a bidder too, so the bank opens an account for it and the auctioneer
// keeps it informed.
type Coordinator struct {
	agent.BaseActor

	cfg        Config
	seq        int
	coalitions map[string]*Coalition
	order      []string
	inflight   map[string]groupBid
}

// New creates a coalition coordinator.
func New(cfg Config) *Coordinator {
	cfg.defaults()

	c := &Coordinator{
		BaseActor:  agent.NewBaseActor(cfg.Name, "coalition"),
		cfg:        cfg,
		coalitions: make(map[string]*Coalition),
		inflight:   make(map[string]groupBid),
	}

	c.Offer(protocol.ServiceCoalition, protocol.NameCoalition)
	c.Offer(protocol.ServiceBidder, protocol.NameCoalitionBidder)
	c.AddBehavior(
		agent.NewReactive(BehaviorManage, core.MatchAll(
			core.MatchIntent(core.Request),
			core.MatchKind(protocol.KindCreateCoalition, protocol.KindJoinCoalition, protocol.KindSetTarget),
		), c.manage),
		agent.NewReactive(BehaviorBids, core.MatchAll(
			core.MatchIntent(core.Request),
			core.MatchKind(protocol.KindPlaceGroupBid),
		), c.placeGroupBid),
		agent.NewReactive(BehaviorReplies, core.MatchKind(protocol.KindBidAccepted, protocol.KindBidRejected), c.reply),
		agent.NewReactive(BehaviorFeed, core.MatchAll(
			core.MatchIntent(core.Inform),
			core.MatchKind(protocol.KindNewAuction, protocol.KindBidUpdate, protocol.KindAuctionClosed, protocol.KindYouWon),
		), c.feed),
	)

	return c
}

// Coalition returns the coalition with the given id.
func (c *Coordinator) Coalition(id string) (*Coalition, bool) {
	co, ok := c.coalitions[id]
	return co, ok
}

// Coalitions returns every coalition in creation order.
func (c *Coordinator) Coalitions() []*Coalition {
	out := make([]*Coalition, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.coalitions[id])
	}

	return out
}

// Create opens a new, empty coalition.
func (c *Coordinator) Create() *Coalition {
	c.seq++

	co := &Coalition{ID: fmt.Sprintf("COALITION-%d", c.seq)}
	c.coalitions[co.ID] = co
	c.order = append(c.order, co.ID)

	return co
}

func (c *Coordinator) manage(ctx *core.ActorContext, msg core.Message) {
	if msg.Kind == protocol.KindCreateCoalition {
		co := c.Create()

		ctx.LogInfo("coalition created", "coalition", co.ID, "by", msg.Sender.String())
		ctx.Reply(msg, core.Inform, protocol.KindCoalitionCreated, core.Payload{protocol.KeyCoalition: co.ID})

		return
	}

	id, err := msg.Payload.String(protocol.KeyCoalition)
	if err != nil {
		ctx.LogMalformed(msg, err)
		return
	}

	co, ok := c.coalitions[id]
	if !ok {
		ctx.Reply(msg, core.Refuse, protocol.ReasonCoalitionNotFound,
			protocol.Refusal(protocol.ReasonCoalitionNotFound, core.Payload{protocol.KeyCoalition: id}))

		return
	}

	switch msg.Kind {
	case protocol.KindJoinCoalition:
		c.join(ctx, msg, co)
	case protocol.KindSetTarget:
		c.setTarget(ctx, msg, co)
	}
}

func (c *Coordinator) join(ctx *core.ActorContext, msg core.Message, co *Coalition) {
	contribution, err := msg.Payload.PositiveFloat(protocol.KeyContribution)
	if err != nil {
		ctx.LogMalformed(msg, err)
		return
	}

	if err := co.Join(msg.Sender, contribution); err != nil {
		ctx.LogMalformed(msg, err)
		return
	}

	ctx.LogInfo("member joined", "coalition", co.ID, "member", msg.Sender.String(), "contribution", contribution, "pooled", co.Pooled)
	ctx.Reply(msg, core.Agree, protocol.KindJoinedCoalition, core.Payload{
		protocol.KeyCoalition: co.ID,
		protocol.KeyPooled:    co.Pooled,
	})
}

func (c *Coordinator) setTarget(ctx *core.ActorContext, msg core.Message, co *Coalition) {
	item, err := msg.Payload.String(protocol.KeyItem)
	if err != nil {
		ctx.LogMalformed(msg, err)
		return
	}

	co.Target = item

	ctx.LogInfo("coalition target set", "coalition", co.ID, "item", item)
	ctx.Reply(msg, core.Agree, protocol.KindTargetSet, core.Payload{
		protocol.KeyCoalition: co.ID,
		protocol.KeyItem:      item,
	})
}

func (c *Coordinator) placeGroupBid(ctx *core.ActorContext, msg core.Message) {
	id, err := msg.Payload.String(protocol.KeyCoalition)
	if err != nil {
		ctx.LogMalformed(msg, err)
		return
	}

	co, ok := c.coalitions[id]
	if !ok {
		ctx.Reply(msg, core.Refuse, protocol.ReasonCoalitionNotFound,
			protocol.Refusal(protocol.ReasonCoalitionNotFound, core.Payload{protocol.KeyCoalition: id}))

		return
	}

	amount, err := co.GroupBid(c.cfg.BidFactor)
	if err != nil {
		ctx.Reply(msg, core.Refuse, protocol.ReasonNoTarget,
			protocol.Refusal(protocol.ReasonNoTarget, core.Payload{protocol.KeyCoalition: id}))

		return
	}

	auctioneer, ok := ctx.First(protocol.ServiceAuction)
	if !ok {
		ctx.Reply(msg, core.Refuse, protocol.ReasonNoAuctioneer,
			protocol.Refusal(protocol.ReasonNoAuctioneer, core.Payload{protocol.KeyCoalition: id}))

		return
	}

	bid := ctx.Send(core.Propose, protocol.KindBid, protocol.Bid{Item: co.Target, Amount: amount}.Payload(), auctioneer)
	c.inflight[bid.ID] = groupBid{coalition: co.ID, request: msg}

	ctx.LogInfo("group bid placed", "coalition", co.ID, "item", co.Target, "amount", amount)
	ctx.Reply(msg, core.Agree, protocol.KindGroupBidPlaced, core.Payload{
		protocol.KeyCoalition: co.ID,
		protocol.KeyItem:      co.Target,
		protocol.KeyAmount:    amount,
	})
}

// reply relays the auctioneer's decision to the member who asked for the
// group bid.
func (c *Coordinator) reply(ctx *core.ActorContext, msg core.Message) {
	gb, ok := c.inflight[msg.InReplyTo]
	if !ok {
		return
	}

	delete(c.inflight, msg.InReplyTo)

	p := msg.Payload.Clone()
	p[protocol.KeyCoalition] = gb.coalition

	ctx.Reply(gb.request, core.Inform, msg.Kind, p)
	ctx.LogDebug("group bid answered", "coalition", gb.coalition, "outcome", msg.Kind, "reason", msg.Payload.StringOr(protocol.KeyReason, ""))
}

func (c *Coordinator) feed(ctx *core.ActorContext, msg core.Message) {
	switch msg.Kind {
	case protocol.KindAuctionClosed:
		closed, err := protocol.ParseAuctionClosed(msg.Payload)
		if err != nil {
			ctx.LogMalformed(msg, err)
			return
		}

		for _, co := range c.coalitions {
			if co.Target == closed.Item {
				co.Target = ""
			}
		}
	case protocol.KindYouWon:
		won, err := protocol.ParseAuctionClosed(msg.Payload)
		if err != nil {
			ctx.LogMalformed(msg, err)
			return
		}

		winners := slices.DeleteFunc(c.Coalitions(), func(co *Coalition) bool { return co.Target != won.Item })
		if len(winners) == 0 {
			return
		}

		for _, co := range winners {
			ctx.LogInfo("coalition won", "coalition", co.ID, "item", won.Item, "price", won.Price)
		}

		ctx.Observer.Log(fmt.Sprintf("coalition won %s for %.2f", won.Item, won.Price), core.SeveritySuccess)
	}
}
