package protocol

import (
	"fmt"
	"time"

	"github.com/hupe1980/agentmarket/core"
)

// AuctionNotice announces a newly opened auction (NEW_AUCTION).
type AuctionNotice struct {
	Item       string
	Name       string
	StartPrice float64
	Reserve    float64
	EndTime    time.Time
}

// Payload encodes the notice. The current price of a fresh auction is its
// starting price.
func (n AuctionNotice) Payload() core.Payload {
	return core.Payload{
		KeyItem:       n.Item,
		KeyName:       n.Name,
		KeyStartPrice: n.StartPrice,
		KeyPrice:      n.StartPrice,
		KeyReserve:    n.Reserve,
		KeyEndTime:    n.EndTime,
	}
}

// ParseAuctionNotice decodes a NEW_AUCTION payload. Name and reserve are
// optional.
func ParseAuctionNotice(p core.Payload) (AuctionNotice, error) {
	item, err := p.String(KeyItem)
	if err != nil {
		return AuctionNotice{}, err
	}

	start, err := p.PositiveFloat(KeyStartPrice)
	if err != nil {
		return AuctionNotice{}, err
	}

	n := AuctionNotice{
		Item:       item,
		Name:       p.StringOr(KeyName, item),
		StartPrice: start,
	}

	if reserve, err := p.Float(KeyReserve); err == nil {
		n.Reserve = reserve
	}

	if end, err := Time(p, KeyEndTime); err == nil {
		n.EndTime = end
	}

	return n, nil
}

// BidUpdate reports a newly accepted highest bid (BID_UPDATE).
type BidUpdate struct {
	Item   string
	Price  float64
	Bidder core.Address
}

// Payload encodes the update.
func (u BidUpdate) Payload() core.Payload {
	return core.Payload{
		KeyItem:   u.Item,
		KeyPrice:  u.Price,
		KeyBidder: u.Bidder,
	}
}

// ParseBidUpdate decodes a BID_UPDATE payload.
func ParseBidUpdate(p core.Payload) (BidUpdate, error) {
	item, err := p.String(KeyItem)
	if err != nil {
		return BidUpdate{}, err
	}

	price, err := p.PositiveFloat(KeyPrice)
	if err != nil {
		return BidUpdate{}, err
	}

	return BidUpdate{Item: item, Price: price, Bidder: p.AddressOr(KeyBidder, "")}, nil
}

// Bid is a proposal to buy an item at Amount (BID).
type Bid struct {
	Item   string
	Amount float64
}

// Payload encodes the bid.
func (b Bid) Payload() core.Payload {
	return core.Payload{KeyItem: b.Item, KeyAmount: b.Amount}
}

// ParseBid decodes a BID payload. The amount must be positive.
func ParseBid(p core.Payload) (Bid, error) {
	item, err := p.String(KeyItem)
	if err != nil {
		return Bid{}, err
	}

	amount, err := p.PositiveFloat(KeyAmount)
	if err != nil {
		return Bid{}, err
	}

	return Bid{Item: item, Amount: amount}, nil
}

// BidDecision is the auctioneer's answer to a bid (BID_ACCEPTED or
// BID_REJECTED). Reason is empty for accepted bids.
type BidDecision struct {
	Item   string
	Amount float64
	Price  float64
	Reason string
}

// Payload encodes the decision.
func (d BidDecision) Payload() core.Payload {
	p := core.Payload{
		KeyItem:   d.Item,
		KeyAmount: d.Amount,
		KeyPrice:  d.Price,
	}

	if d.Reason != "" {
		p[KeyReason] = d.Reason
	}

	return p
}

// ParseBidDecision decodes a bid decision. Only the item is required.
func ParseBidDecision(p core.Payload) (BidDecision, error) {
	item, err := p.String(KeyItem)
	if err != nil {
		return BidDecision{}, err
	}

	d := BidDecision{Item: item, Reason: p.StringOr(KeyReason, "")}
	d.Amount, _ = p.Float(KeyAmount)
	d.Price, _ = p.Float(KeyPrice)

	return d, nil
}

// AuctionClosed reports the end of an auction (AUCTION_CLOSED). Winner is
// empty and Outcome is OutcomeFailed when the reserve was not met.
type AuctionClosed struct {
	Item    string
	Outcome string
	Winner  core.Address
	Price   float64
}

// Won reports whether the auction ended with a sale.
func (c AuctionClosed) Won() bool { return c.Outcome == OutcomeWon }

// Payload encodes the closing notice.
func (c AuctionClosed) Payload() core.Payload {
	p := core.Payload{
		KeyItem:    c.Item,
		KeyOutcome: c.Outcome,
		KeyPrice:   c.Price,
	}

	if c.Winner != "" {
		p[KeyWinner] = c.Winner
	}

	return p
}

// ParseAuctionClosed decodes an AUCTION_CLOSED payload.
func ParseAuctionClosed(p core.Payload) (AuctionClosed, error) {
	item, err := p.String(KeyItem)
	if err != nil {
		return AuctionClosed{}, err
	}

	outcome, err := p.String(KeyOutcome)
	if err != nil {
		return AuctionClosed{}, err
	}

	if outcome != OutcomeWon && outcome != OutcomeFailed {
		return AuctionClosed{}, fmt.Errorf("%w: unknown outcome %q", core.ErrMalformedPayload, outcome)
	}

	c := AuctionClosed{Item: item, Outcome: outcome, Winner: p.AddressOr(KeyWinner, "")}
	c.Price, _ = p.Float(KeyPrice)

	if c.Won() && c.Winner == "" {
		return AuctionClosed{}, fmt.Errorf("%w: won auction %s without winner", core.ErrMalformedPayload, item)
	}

	return c, nil
}

// FundsRequest is the content of every bank request that moves money:
// CHECK_SOLVENCY, BLOCK_FUNDS, RELEASE_FUNDS, PROCESS_PAYMENT and CREDIT.
// Release is the held amount to convert during PROCESS_PAYMENT.
type FundsRequest struct {
	Actor   core.Address
	Amount  float64
	Release float64
	Item    string
}

// Payload encodes the request. Zero-valued optional fields are omitted.
func (r FundsRequest) Payload() core.Payload {
	p := core.Payload{KeyAmount: r.Amount}

	if r.Actor != "" {
		p[KeyActor] = r.Actor
	}

	if r.Release > 0 {
		p[KeyRelease] = r.Release
	}

	if r.Item != "" {
		p[KeyItem] = r.Item
	}

	return p
}

// ParseFundsRequest decodes a funds request sent by sender. The actor
// defaults to the sender. The amount must be positive.
func ParseFundsRequest(sender core.Address, p core.Payload) (FundsRequest, error) {
	amount, err := p.PositiveFloat(KeyAmount)
	if err != nil {
		return FundsRequest{}, err
	}

	r := FundsRequest{
		Actor:  p.AddressOr(KeyActor, sender),
		Amount: amount,
		Item:   p.StringOr(KeyItem, ""),
	}

	if p.Has(KeyRelease) {
		release, err := p.Float(KeyRelease)
		if err != nil {
			return FundsRequest{}, err
		}

		if release < 0 {
			return FundsRequest{}, fmt.Errorf("%w: negative release %v", core.ErrMalformedPayload, release)
		}

		r.Release = release
	}

	return r, nil
}

// ViolationReport is the content of REPORT_VIOLATION.
type ViolationReport struct {
	Violator    core.Address
	Type        string
	Description string
}

// Payload encodes the report.
func (v ViolationReport) Payload() core.Payload {
	return core.Payload{
		KeyViolator:    v.Violator,
		KeyType:        v.Type,
		KeyDescription: v.Description,
	}
}

// ParseViolationReport decodes a REPORT_VIOLATION payload. The description
// is optional.
func ParseViolationReport(p core.Payload) (ViolationReport, error) {
	violator, err := p.Address(KeyViolator)
	if err != nil {
		return ViolationReport{}, err
	}

	typ, err := p.String(KeyType)
	if err != nil {
		return ViolationReport{}, err
	}

	return ViolationReport{
		Violator:    violator,
		Type:        typ,
		Description: p.StringOr(KeyDescription, ""),
	}, nil
}

// Refusal builds the payload of a negative reply.
func Refusal(reason string, extra core.Payload) core.Payload {
	p := extra.Clone()
	p[KeyReason] = reason

	return p
}

// Time returns the timestamp stored under key. Both time.Time values and
// RFC 3339 strings are accepted.
func Time(p core.Payload, key string) (time.Time, error) {
	v, ok := p[key]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: key %q missing", core.ErrMalformedPayload, key)
	}

	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: key %q: %v", core.ErrMalformedPayload, key, err)
		}

		return parsed, nil
	default:
		return time.Time{}, fmt.Errorf("%w: key %q want time, got %T", core.ErrMalformedPayload, key, v)
	}
}
