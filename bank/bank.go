package bank

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/hupe1980/agentmarket/agent"
	"github.com/hupe1980/agentmarket/core"
	"github.com/hupe1980/agentmarket/protocol"
)

// Behavior names.
const (
	BehaviorRequests = "banking-requests"
	BehaviorDiscover = "discover-accounts"
)

// Config configures a Bank actor.
type Config struct {
	// Name is the actor address. Defaults to "bank".
	Name string

	// DiscoverEvery is the period of the account discovery tick.
	// Defaults to 3s.
	DiscoverEvery time.Duration

	// MinBalance and MaxBalance bound the random opening balance.
	// Default to [5000,15000).
	MinBalance float64
	MaxBalance float64

	// Rand returns a number in [0,1). Defaults to math/rand/v2.
	Rand func() float64
}

func (c *Config) defaults() {
	if c.Name == "" {
		c.Name = "bank"
	}
	if c.DiscoverEvery <= 0 {
		c.DiscoverEvery = 3 * time.Second
	}
	if c.MaxBalance <= c.MinBalance {
		c.MinBalance, c.MaxBalance = 5000, 15000
	}
	if c.Rand == nil {
		c.Rand = rand.Float64
	}
}

// Bank keeps an account for every bidder and answers funds requests.
//
// Protocol (all requests carry the REQUEST intent; actor defaults to the sender):
//   - CHECK_SOLVENCY{actor,amount}: CONFIRM SOLVENT, DISCONFIRM INSUFFICIENT_FUNDS
//   - BLOCK_FUNDS{actor,amount}: CONFIRM FUNDS_BLOCKED, REFUSE <reason>
//   - RELEASE_FUNDS{actor,amount}: CONFIRM FUNDS_RELEASED
//   - PROCESS_PAYMENT{actor,amount,release}: INFORM PAYMENT_PROCESSED, DISCONFIRM PAYMENT_FAILED
//   - CREDIT{actor,amount}: CONFIRM CREDITED
//   - GET_BALANCE{actor}: INFORM BALANCE{balance,available}
//
// Unknown accounts are answered with REFUSE ACCOUNT_NOT_FOUND, except for
// PROCESS_PAYMENT which always answers PAYMENT_FAILED.
type Bank struct {
	agent.BaseActor

	cfg    Config
	ledger *Ledger
}

// New creates a bank actor.
func New(cfg Config) *Bank {
	cfg.defaults()

	b := &Bank{
		BaseActor: agent.NewBaseActor(cfg.Name, "bank"),
		cfg:       cfg,
	}

	b.Offer(protocol.ServiceBank, protocol.NameBank)
	b.AddBehavior(
		agent.NewReactive(BehaviorRequests, core.MatchAll(
			core.MatchIntent(core.Request),
			core.MatchKind(
				protocol.KindCheckSolvency,
				protocol.KindBlockFunds,
				protocol.KindReleaseFunds,
				protocol.KindProcessPayment,
				protocol.KindCredit,
				protocol.KindGetBalance,
			),
		), b.handle),
		agent.NewPeriodic(BehaviorDiscover, cfg.DiscoverEvery, b.discover),
	)

	return b
}

// Ledger exposes the accounts for inspection.
func (b *Bank) Ledger() *Ledger { return b.ledger }

// Setup creates the ledger on the actor clock and registers the bank.
func (b *Bank) Setup(ctx *core.ActorContext) error {
	b.ledger = NewLedger(ctx.Now)

	if err := b.BaseActor.Setup(ctx); err != nil {
		return err
	}

	ctx.LogInfo("banking services active")

	return nil
}

func (b *Bank) discover(ctx *core.ActorContext) {
	for _, d := range ctx.Lookup(protocol.ServiceBidder) {
		if b.ledger.Has(d.Owner) {
			continue
		}

		initial := b.cfg.MinBalance + b.cfg.Rand()*(b.cfg.MaxBalance-b.cfg.MinBalance)
		if err := b.ledger.Open(d.Owner, initial); err != nil {
			ctx.LogWarn("open account failed", "owner", d.Owner.String(), "error", err)
			continue
		}

		ctx.LogInfo("account opened", "owner", d.Owner.String(), "balance", initial)
	}
}

func (b *Bank) handle(ctx *core.ActorContext, msg core.Message) {
	if msg.Kind == protocol.KindGetBalance {
		b.balance(ctx, msg)
		return
	}

	req, err := protocol.ParseFundsRequest(msg.Sender, msg.Payload)
	if err != nil {
		ctx.LogMalformed(msg, err)
		return
	}

	switch msg.Kind {
	case protocol.KindCheckSolvency:
		b.checkSolvency(ctx, msg, req)
	case protocol.KindBlockFunds:
		b.block(ctx, msg, req)
	case protocol.KindReleaseFunds:
		b.release(ctx, msg, req)
	case protocol.KindProcessPayment:
		b.payment(ctx, msg, req)
	case protocol.KindCredit:
		b.credit(ctx, msg, req)
	}
}

func (b *Bank) checkSolvency(ctx *core.ActorContext, msg core.Message, req protocol.FundsRequest) {
	solvent, err := b.ledger.CheckSolvency(req.Actor, req.Amount)

	switch {
	case err != nil:
		b.refuse(ctx, msg, req, err)
	case solvent:
		ctx.Reply(msg, core.Confirm, protocol.KindSolvent, req.Payload())
	default:
		ctx.Reply(msg, core.Disconfirm, protocol.ReasonInsufficientFunds,
			protocol.Refusal(protocol.ReasonInsufficientFunds, req.Payload()))
	}
}

func (b *Bank) block(ctx *core.ActorContext, msg core.Message, req protocol.FundsRequest) {
	if err := b.ledger.Block(req.Actor, req.Amount); err != nil {
		b.refuse(ctx, msg, req, err)
		return
	}

	ctx.LogDebug("funds blocked", "owner", req.Actor.String(), "amount", req.Amount, "item", req.Item)
	ctx.Reply(msg, core.Confirm, protocol.KindFundsBlocked, req.Payload())
}

func (b *Bank) release(ctx *core.ActorContext, msg core.Message, req protocol.FundsRequest) {
	released, err := b.ledger.Release(req.Actor, req.Amount)
	if err != nil {
		b.refuse(ctx, msg, req, err)
		return
	}

	req.Amount = released
	ctx.Reply(msg, core.Confirm, protocol.KindFundsReleased, req.Payload())
}

func (b *Bank) payment(ctx *core.ActorContext, msg core.Message, req protocol.FundsRequest) {
	if err := b.ledger.Settle(req.Actor, req.Amount, req.Release); err != nil {
		ctx.LogWarn("payment failed", "buyer", req.Actor.String(), "amount", req.Amount, "error", err)
		ctx.Reply(msg, core.Disconfirm, protocol.KindPaymentFailed,
			protocol.Refusal(reasonFor(err), req.Payload()))

		return
	}

	ctx.LogInfo("payment processed", "buyer", req.Actor.String(), "amount", req.Amount, "item", req.Item)
	ctx.Reply(msg, core.Inform, protocol.KindPaymentProcessed, req.Payload())
}

func (b *Bank) credit(ctx *core.ActorContext, msg core.Message, req protocol.FundsRequest) {
	if err := b.ledger.Credit(req.Actor, req.Amount); err != nil {
		b.refuse(ctx, msg, req, err)
		return
	}

	p := req.Payload()
	p[protocol.KeyBalance], _, _ = b.ledger.Balance(req.Actor)

	ctx.Reply(msg, core.Confirm, protocol.KindCredited, p)
}

func (b *Bank) balance(ctx *core.ActorContext, msg core.Message) {
	owner := msg.Payload.AddressOr(protocol.KeyActor, msg.Sender)

	balance, available, err := b.ledger.Balance(owner)
	if err != nil {
		ctx.Reply(msg, core.Refuse, protocol.ReasonAccountNotFound,
			protocol.Refusal(protocol.ReasonAccountNotFound, core.Payload{protocol.KeyActor: owner}))

		return
	}

	ctx.Reply(msg, core.Inform, protocol.KindBalance, core.Payload{
		protocol.KeyActor:     owner,
		protocol.KeyBalance:   balance,
		protocol.KeyAvailable: available,
	})
}

func (b *Bank) refuse(ctx *core.ActorContext, msg core.Message, req protocol.FundsRequest, err error) {
	reason := reasonFor(err)
	ctx.Reply(msg, core.Refuse, reason, protocol.Refusal(reason, req.Payload()))
}

func reasonFor(err error) string {
	if errors.Is(err, ErrAccountNotFound) {
		return protocol.ReasonAccountNotFound
	}

	return protocol.ReasonInsufficientFunds
}
