package auction

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/hupe1980/agentmarket/core"
)

var (
	// ErrBidTooLow is returned for a bid that does not beat the current price.
	ErrBidTooLow = errors.New("bid too low")
	// ErrAuctionClosed is returned for a bid on a closed item.
	ErrAuctionClosed = errors.New("auction closed")
)

// State is the lifecycle state of an auction.
type State string

const (
	StateOpen   State = "OPEN"
	StateWon    State = "WON"
	StateFailed State = "FAILED"
)

// Bid is an accepted bid. Bids are append-only.
type Bid struct {
	Bidder    core.Address
	ItemID    string
	Amount    float64
	Timestamp time.Time
}

// Item is one English auction. It is owned by a single auctioneer and never
// shared.
//
// Invariants:
//   - CurrentPrice never decreases; every accepted bid strictly raises it
//   - Winner is the bidder of the last accepted bid
//   - A closed item accepts no further bids
type Item struct {
	ID            string
	Name          string
	StartingPrice float64
	CurrentPrice  float64
	ReservePrice  float64
	Winner        core.Address
	StartTime     time.Time
	EndTime       time.Time
	Bids          []Bid
	State         State
}

// NewItem opens an auction starting at start. The reserve is
// start × reserveFactor and the auction ends length after now.
func NewItem(id, name string, start, reserveFactor float64, now time.Time, length time.Duration) *Item {
	return &Item{
		ID:            id,
		Name:          name,
		StartingPrice: start,
		CurrentPrice:  start,
		ReservePrice:  start * reserveFactor,
		StartTime:     now,
		EndTime:       now.Add(length),
		State:         StateOpen,
	}
}

// Open reports whether the item still accepts bids.
func (it *Item) Open() bool { return it.State == StateOpen }

// Expired reports whether the auction's end time has been reached.
func (it *Item) Expired(now time.Time) bool { return !now.Before(it.EndTime) }

// Check reports whether amount would be accepted right now.
func (it *Item) Check(amount float64) error {
	if !it.Open() {
		return fmt.Errorf("%w: %s", ErrAuctionClosed, it.ID)
	}

	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%w: %v is not a finite amount", ErrBidTooLow, amount)
	}

	if amount <= it.CurrentPrice {
		return fmt.Errorf("%w: %.2f does not beat %.2f", ErrBidTooLow, amount, it.CurrentPrice)
	}

	return nil
}

// Accept records a bid, raising the price and replacing the winner.
func (it *Item) Accept(bidder core.Address, amount float64, at time.Time) (Bid, error) {
	if err := it.Check(amount); err != nil {
		return Bid{}, err
	}

	bid := Bid{Bidder: bidder, ItemID: it.ID, Amount: amount, Timestamp: at}

	it.CurrentPrice = amount
	it.Winner = bidder
	it.Bids = append(it.Bids, bid)

	return bid, nil
}

// Close ends the auction. It is won when somebody bid and the final price
// reaches the reserve. Closing twice keeps the first outcome.
func (it *Item) Close() State {
	if !it.Open() {
		return it.State
	}

	if it.Winner != "" && it.CurrentPrice >= it.ReservePrice {
		it.State = StateWon
	} else {
		it.State = StateFailed
	}

	return it.State
}

// History returns a copy of the accepted bids.
func (it *Item) History() []Bid { return slices.Clone(it.Bids) }
