// Package bidder implements the bidding actors. Decision policies are pure
// Strategy values (Aggressive, Conservative, Adaptive) fed by a Book of
// tracked auctions; the Bidder actor keeps the book current from auction
// broadcasts and proposes the bids its strategy returns.
package bidder
