// Package monitor holds the market's passive observers. Both subscribe as
// market-feed services and see every auction broadcast.
//
// The Monitor journals activity and flags bidders whose bid count or
// spending crosses a threshold, reporting them to the regulator once.
//
// The Analyst keeps a bounded per-item price history and answers
// GET_RECOMMENDATION requests from it.
package monitor
