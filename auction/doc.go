// Package auction implements English auctions: the Item state machine and
// the Auctioneer actor that opens items, evaluates bids with optional bank
// escrow, closes expired auctions and follows up on settlement.
package auction
