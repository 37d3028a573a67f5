// Package bank implements the market's bank: a Ledger of per-owner accounts
// with escrow holds, and the Bank actor that serves funds requests over the
// message protocol and opens accounts for newly discovered bidders.
package bank
