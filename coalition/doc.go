// Package coalition implements group bidding. A Coordinator keeps pooled
// coalitions and bids pooled × factor on their target through the regular
// auction channel.
package coalition
