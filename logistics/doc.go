// Package logistics ships won items. The auctioneer requests a delivery
// once a payment settles; the logistics actor answers with a tracking
// number, cost and ETA and informs the buyer on arrival.
package logistics
