package auction

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/hupe1980/agentmarket/agent"
	"github.com/hupe1980/agentmarket/core"
	"github.com/hupe1980/agentmarket/protocol"
)

// Behavior names.
const (
	BehaviorCreate     = "create-auctions"
	BehaviorBids       = "receive-bids"
	BehaviorFunds      = "funds-replies"
	BehaviorSettlement = "settlement"
	BehaviorClose      = "close-auctions"
)

// Solvency selects how the auctioneer verifies that a bidder can pay.
type Solvency string

const (
	// SolvencyBank holds the bid amount at the bank before accepting.
	SolvencyBank Solvency = "bank"
	// SolvencyPermissive accepts every bid that beats the price.
	SolvencyPermissive Solvency = "permissive"
)

// DefaultCatalogue is used when Config.Catalogue is empty.
var DefaultCatalogue = []string{"Vintage Watch", "Laptop", "Antique Vase", "Oil Painting", "Camera"}

// Config configures an Auctioneer.
type Config struct {
	// Name is the actor address. Defaults to "auctioneer".
	Name string

	// CreateEvery is the auction creation period. Defaults to 5s.
	CreateEvery time.Duration

	// CloseEvery is the period of the end-of-auction check. Defaults to 2s.
	CloseEvery time.Duration

	// Length is the duration of every auction. Defaults to 300s.
	Length time.Duration

	// MaxOpen caps concurrently open auctions. Defaults to 5.
	MaxOpen int

	// MinStart and MaxStart bound the random starting price.
	// Default to [100,1000).
	MinStart float64
	MaxStart float64

	// ReserveFactor derives the reserve from the starting price.
	// Defaults to 1.5.
	ReserveFactor float64

	// Solvency is the bid funding policy. Defaults to SolvencyBank.
	Solvency Solvency

	// PendingTimeout expires bids whose bank answer never came.
	// Defaults to 10s.
	PendingTimeout time.Duration

	// Catalogue holds the item names, used round-robin.
	Catalogue []string

	// Rand returns a number in [0,1). Defaults to math/rand/v2.
	Rand func() float64
}

func (c *Config) defaults() {
	if c.Name == "" {
		c.Name = "auctioneer"
	}
	if c.CreateEvery <= 0 {
		c.CreateEvery = 5 * time.Second
	}
	if c.CloseEvery <= 0 {
		c.CloseEvery = 2 * time.Second
	}
	if c.Length <= 0 {
		c.Length = 300 * time.Second
	}
	if c.MaxOpen <= 0 {
		c.MaxOpen = 5
	}
	if c.MaxStart <= c.MinStart || c.MinStart <= 0 {
		c.MinStart, c.MaxStart = 100, 1000
	}
	if c.ReserveFactor < 1 {
		c.ReserveFactor = 1.5
	}
	if c.Solvency == "" {
		c.Solvency = SolvencyBank
	}
	if c.PendingTimeout <= 0 {
		c.PendingTimeout = 10 * time.Second
	}
	if len(c.Catalogue) == 0 {
		c.Catalogue = DefaultCatalogue
	}
	if c.Rand == nil {
		c.Rand = rand.Float64
	}
}

// pendingBid is a proposal waiting for the bank to hold its amount.
type pendingBid struct {
	proposal core.Message
	bid      protocol.Bid
	bank     core.Address
	sentAt   time.Time
}

// hold is the escrow backing the current winner of an item.
type hold struct {
	bidder core.Address
	amount float64
	bank   core.Address
}

// Summary counts auction outcomes.
type Summary struct {
	Created     int
	Won         int
	Failed      int
	Accepted    int
	Rejected    int
	Settled     int
	Unpaid      int
	TotalVolume float64
}

// Auctioneer runs English auctions: it opens items on a timer, evaluates
// bids, closes expired items and follows the settlement through the bank.
//
// Key features:
//   - Strictly increasing prices; an equal later bid is rejected
//   - Escrow through the bank under SolvencyBank, with holds released when
//     a bidder is outbid or an auction fails
//   - Broadcasts to registry snapshots of bidders and market feeds
//
// Every piece of auction state is owned by the actor and touched only from
// its behaviors.
type Auctioneer struct {
	agent.BaseActor

	cfg Config

	seq     int
	items   map[string]*Item
	open    []string
	pending map[string]*pendingBid
	holds   map[string]hold
	summary Summary
}

// New creates an auctioneer.
func New(cfg Config) *Auctioneer {
	cfg.defaults()

	a := &Auctioneer{
		BaseActor: agent.NewBaseActor(cfg.Name, "auctioneer"),
		cfg:       cfg,
		items:     make(map[string]*Item),
		pending:   make(map[string]*pendingBid),
		holds:     make(map[string]hold),
	}

	a.Offer(protocol.ServiceAuction, protocol.NameAuctioneer)
	a.AddBehavior(
		agent.NewPeriodic(BehaviorCreate, cfg.CreateEvery, a.create),
		agent.NewReactive(BehaviorBids, core.MatchAll(
			core.MatchIntent(core.Propose),
			core.MatchKind(protocol.KindBid),
		), a.evaluate),
		agent.NewReactive(BehaviorFunds, core.MatchAll(
			core.MatchIntent(core.Confirm, core.Refuse, core.Disconfirm),
			core.MatchKind(
				protocol.KindFundsBlocked,
				protocol.KindFundsReleased,
				protocol.ReasonInsufficientFunds,
				protocol.ReasonAccountNotFound,
			),
		), a.funds),
		agent.NewReactive(BehaviorSettlement, core.MatchAny(
			core.MatchAll(core.MatchIntent(core.Inform), core.MatchKind(protocol.KindPaymentProcessed)),
			core.MatchAll(core.MatchIntent(core.Disconfirm), core.MatchKind(protocol.KindPaymentFailed)),
		), a.settlement),
		agent.NewPeriodic(BehaviorClose, cfg.CloseEvery, a.closeExpired),
	)

	return a
}

// Setup registers the auction service.
func (a *Auctioneer) Setup(ctx *core.ActorContext) error {
	if err := a.BaseActor.Setup(ctx); err != nil {
		return err
	}

	ctx.Observer.Log("auctioneer started", core.SeveritySuccess)

	return nil
}

// Item returns the open item with the given id.
func (a *Auctioneer) Item(id string) (*Item, bool) {
	it, ok := a.items[id]
	return it, ok
}

// OpenItems returns the ids of the open auctions in creation order.
func (a *Auctioneer) OpenItems() []string { return slices.Clone(a.open) }

// Summary returns the outcome counters. Call it from a behavior or once the
// actor has stopped.
func (a *Auctioneer) Summary() Summary { return a.summary }

// Open creates a new auction starting at start and announces it. It is the
// body of the creation tick and is exposed for scenario setups.
func (a *Auctioneer) Open(ctx *core.ActorContext, name string, start float64) *Item {
	a.seq++

	item := NewItem(fmt.Sprintf("ITEM-%d", a.seq), name, start, a.cfg.ReserveFactor, ctx.Now(), a.cfg.Length)

	a.items[item.ID] = item
	a.open = append(a.open, item.ID)
	a.summary.Created++

	notice := protocol.AuctionNotice{
		Item:       item.ID,
		Name:       item.Name,
		StartPrice: item.StartingPrice,
		Reserve:    item.ReservePrice,
		EndTime:    item.EndTime,
	}

	receivers := ctx.Recipients(nil, protocol.ServiceBidder, protocol.ServiceMarketFeed)
	ctx.Send(core.Inform, protocol.KindNewAuction, notice.Payload(), receivers...)

	ctx.LogInfo("auction opened", "item", item.ID, "name", item.Name, "start_price", start, "reserve", item.ReservePrice)
	ctx.Observer.NewAuction(item.ID, item.Name, item.StartingPrice, item.ReservePrice)
	ctx.Observer.Log(fmt.Sprintf("new auction %s (%s)", item.ID, item.Name), core.SeverityInfo)

	return item
}

func (a *Auctioneer) create(ctx *core.ActorContext) {
	if len(a.open) < a.cfg.MaxOpen {
		name := a.cfg.Catalogue[a.seq%len(a.cfg.Catalogue)]
		start := a.cfg.MinStart + a.cfg.Rand()*(a.cfg.MaxStart-a.cfg.MinStart)
		a.Open(ctx, name, start)
	}

	a.statistics(ctx)
}

func (a *Auctioneer) evaluate(ctx *core.ActorContext, msg core.Message) {
	bid, err := protocol.ParseBid(msg.Payload)
	if err != nil {
		ctx.LogMalformed(msg, err)
		return
	}

	item, ok := a.items[bid.Item]
	if !ok || item.Expired(ctx.Now()) {
		a.reject(ctx, msg, bid, 0, protocol.ReasonUnknownAuction)
		return
	}

	if err := item.Check(bid.Amount); err != nil {
		a.reject(ctx, msg, bid, item.CurrentPrice, protocol.ReasonBidTooLow)
		return
	}

	if a.cfg.Solvency == SolvencyPermissive {
		a.accept(ctx, msg, item, bid, hold{})
		return
	}

	bank, ok := ctx.First(protocol.ServiceBank)
	if !ok {
		a.reject(ctx, msg, bid, item.CurrentPrice, protocol.ReasonInsufficientFunds)
		return
	}

	req := ctx.Send(core.Request, protocol.KindBlockFunds, protocol.FundsRequest{
		Actor:  msg.Sender,
		Amount: bid.Amount,
		Item:   bid.Item,
	}.Payload(), bank)

	a.pending[req.ID] = &pendingBid{proposal: msg, bid: bid, bank: bank, sentAt: ctx.Now()}
}

func (a *Auctioneer) funds(ctx *core.ActorContext, msg core.Message) {
	if msg.Kind == protocol.KindFundsReleased {
		return
	}

	p, ok := a.pending[msg.InReplyTo]
	if !ok {
		// late answer for an expired bid: give the hold back
		if msg.Is(core.Confirm, protocol.KindFundsBlocked) {
			if req, err := protocol.ParseFundsRequest(msg.Sender, msg.Payload); err == nil {
				a.release(ctx, hold{bidder: req.Actor, amount: req.Amount, bank: msg.Sender})
			}
		}

		return
	}

	delete(a.pending, msg.InReplyTo)

	if !msg.Is(core.Confirm, protocol.KindFundsBlocked) {
		reason := msg.Payload.StringOr(protocol.KeyReason, msg.Kind)
		a.reject(ctx, p.proposal, p.bid, a.priceOf(p.bid.Item), reason)

		return
	}

	held := hold{bidder: p.proposal.Sender, amount: p.bid.Amount, bank: p.bank}

	// the item may have been outbid or closed while the bank answered
	item, ok := a.items[p.bid.Item]
	if !ok {
		a.release(ctx, held)
		a.reject(ctx, p.proposal, p.bid, 0, protocol.ReasonUnknownAuction)

		return
	}

	if err := item.Check(p.bid.Amount); err != nil {
		a.release(ctx, held)
		a.reject(ctx, p.proposal, p.bid, item.CurrentPrice, protocol.ReasonBidTooLow)

		return
	}

	a.accept(ctx, p.proposal, item, p.bid, held)
}

func (a *Auctioneer) accept(ctx *core.ActorContext, proposal core.Message, item *Item, bid protocol.Bid, held hold) {
	bidder := proposal.Sender

	if _, err := item.Accept(bidder, bid.Amount, ctx.Now()); err != nil {
		a.release(ctx, held)
		a.reject(ctx, proposal, bid, item.CurrentPrice, protocol.ReasonBidTooLow)

		return
	}

	if prev, ok := a.holds[item.ID]; ok {
		a.release(ctx, prev)
		delete(a.holds, item.ID)
	}

	if held.amount > 0 {
		a.holds[item.ID] = held
	}

	a.summary.Accepted++

	ctx.Reply(proposal, core.Accept, protocol.KindBidAccepted, protocol.BidDecision{
		Item:   item.ID,
		Amount: bid.Amount,
		Price:  item.CurrentPrice,
	}.Payload())

	update := protocol.BidUpdate{Item: item.ID, Price: item.CurrentPrice, Bidder: bidder}
	receivers := ctx.Recipients([]core.Address{bidder}, protocol.ServiceBidder, protocol.ServiceMarketFeed)
	ctx.Send(core.Inform, protocol.KindBidUpdate, update.Payload(), receivers...)

	ctx.LogInfo("bid accepted", "item", item.ID, "bidder", bidder.String(), "amount", bid.Amount)
	ctx.Observer.BidUpdate(item.ID, item.CurrentPrice, bidder)
}

func (a *Auctioneer) reject(ctx *core.ActorContext, proposal core.Message, bid protocol.Bid, price float64, reason string) {
	a.summary.Rejected++

	ctx.Reply(proposal, core.Reject, protocol.KindBidRejected, protocol.BidDecision{
		Item:   bid.Item,
		Amount: bid.Amount,
		Price:  price,
		Reason: reason,
	}.Payload())

	ctx.LogDebug("bid rejected", "item", bid.Item, "bidder", proposal.Sender.String(), "amount", bid.Amount, "reason", reason)
}

func (a *Auctioneer) release(ctx *core.ActorContext, h hold) {
	if h.amount <= 0 || h.bank == "" {
		return
	}

	ctx.Send(core.Request, protocol.KindReleaseFunds, protocol.FundsRequest{
		Actor:  h.bidder,
		Amount: h.amount,
	}.Payload(), h.bank)
}

func (a *Auctioneer) priceOf(id string) float64 {
	if it, ok := a.items[id]; ok {
		return it.CurrentPrice
	}
	return 0
}

func (a *Auctioneer) closeExpired(ctx *core.ActorContext) {
	now := ctx.Now()

	for id, p := range a.pending {
		if now.Sub(p.sentAt) >= a.cfg.PendingTimeout {
			delete(a.pending, id)
			a.reject(ctx, p.proposal, p.bid, a.priceOf(p.bid.Item), protocol.ReasonInsufficientFunds)
		}
	}

	for _, id := range slices.Clone(a.open) {
		if item := a.items[id]; item.Expired(now) {
			a.close(ctx, item)
		}
	}

	a.statistics(ctx)
}

func (a *Auctioneer) close(ctx *core.ActorContext, item *Item) {
	state := item.Close()

	delete(a.items, item.ID)
	a.open = slices.DeleteFunc(a.open, func(id string) bool { return id == item.ID })

	held, hasHold := a.holds[item.ID]
	delete(a.holds, item.ID)

	closing := protocol.AuctionClosed{Item: item.ID, Price: item.CurrentPrice, Outcome: protocol.OutcomeFailed}

	if state == StateWon {
		closing.Outcome = protocol.OutcomeWon
		closing.Winner = item.Winner
		a.summary.Won++

		ctx.Send(core.Inform, protocol.KindYouWon, closing.Payload(), item.Winner)

		if bank, ok := ctx.First(protocol.ServiceBank); ok {
			req := protocol.FundsRequest{Actor: item.Winner, Amount: item.CurrentPrice, Item: item.ID}
			if hasHold && held.bidder == item.Winner {
				req.Release = held.amount
			}

			ctx.Send(core.Request, protocol.KindProcessPayment, req.Payload(), bank)
		} else {
			ctx.LogWarn("no bank for settlement", "item", item.ID)
		}

		ctx.LogInfo("auction won", "item", item.ID, "winner", item.Winner.String(), "price", item.CurrentPrice)
		ctx.Observer.Log(fmt.Sprintf("auction %s won by %s (%.2f)", item.ID, item.Winner, item.CurrentPrice), core.SeveritySuccess)
	} else {
		if hasHold {
			a.release(ctx, held)
		}

		a.summary.Failed++

		ctx.LogInfo("auction failed", "item", item.ID, "price", item.CurrentPrice, "reserve", item.ReservePrice)
		ctx.Observer.Log(fmt.Sprintf("auction %s failed, reserve not met", item.ID), core.SeverityError)
	}

	receivers := ctx.Recipients(nil, protocol.ServiceBidder, protocol.ServiceMarketFeed)
	ctx.Send(core.Inform, protocol.KindAuctionClosed, closing.Payload(), receivers...)

	if notifier, ok := ctx.First(protocol.ServiceNotification); ok {
		ctx.Send(core.Inform, protocol.KindBroadcast, core.Payload{
			protocol.KeyEvent: protocol.EventAuctionEnd,
			protocol.KeyItem:  item.ID,
			protocol.KeyText:  endText(closing),
		}, notifier)
	}

	ctx.Observer.AuctionEnd(item.ID, closing.Winner, item.CurrentPrice)
}

func endText(c protocol.AuctionClosed) string {
	if c.Won() {
		return fmt.Sprintf("%s sold to %s for %.2f", c.Item, c.Winner, c.Price)
	}
	return fmt.Sprintf("%s closed without sale", c.Item)
}

func (a *Auctioneer) settlement(ctx *core.ActorContext, msg core.Message) {
	req, err := protocol.ParseFundsRequest(msg.Sender, msg.Payload)
	if err != nil {
		ctx.LogMalformed(msg, err)
		return
	}

	if msg.Kind == protocol.KindPaymentProcessed {
		a.summary.Settled++
		a.summary.TotalVolume += req.Amount

		if logistics, ok := ctx.First(protocol.ServiceLogistics); ok {
			ctx.Send(core.Request, protocol.KindArrangeDelivery, core.Payload{
				protocol.KeyItem:  req.Item,
				protocol.KeyBuyer: req.Actor,
			}, logistics)
		}

		ctx.Observer.Log(fmt.Sprintf("payment of %.2f for %s settled", req.Amount, req.Item), core.SeveritySuccess)
		a.statistics(ctx)

		return
	}

	a.summary.Unpaid++

	ctx.LogWarn("winner could not pay", "item", req.Item, "winner", req.Actor.String(), "reason", msg.Payload.StringOr(protocol.KeyReason, ""))
	ctx.Observer.Log(fmt.Sprintf("payment for %s failed", req.Item), core.SeverityError)

	if regulator, ok := ctx.First(protocol.ServiceRegulator); ok {
		ctx.Send(core.Request, protocol.KindReportViolation, protocol.ViolationReport{
			Violator:    req.Actor,
			Type:        protocol.ViolationFalseBid,
			Description: fmt.Sprintf("won %s at %.2f but payment failed", req.Item, req.Amount),
		}.Payload(), regulator)
	}
}

func (a *Auctioneer) statistics(ctx *core.ActorContext) {
	ctx.Observer.Statistics(len(a.open), len(ctx.Lookup(protocol.ServiceBidder)), a.summary.TotalVolume)
}
