package protocol

// Payload keys.
const (
	KeyItem         = "item"
	KeyName         = "name"
	KeyAmount       = "amount"
	KeyPrice        = "price"
	KeyStartPrice   = "start_price"
	KeyReserve      = "reserve"
	KeyEndTime      = "end_time"
	KeyBidder       = "bidder"
	KeyWinner       = "winner"
	KeyOutcome      = "outcome"
	KeyReason       = "reason"
	KeyActor        = "actor"
	KeyRelease      = "release"
	KeyBalance      = "balance"
	KeyAvailable    = "available"
	KeyRole         = "role"
	KeyAttempts     = "attempts"
	KeySubject      = "subject"
	KeyViolator     = "violator"
	KeyType         = "type"
	KeyDescription  = "description"
	KeyPoints       = "points"
	KeyFine         = "fine"
	KeyParty1       = "party1"
	KeyParty2       = "party2"
	KeyVerdict      = "verdict"
	KeyCoalition    = "coalition"
	KeyContribution = "contribution"
	KeyPooled       = "pooled"
	KeyEvent        = "event"
	KeyText         = "text"
	KeyAction       = "action"
	KeyTracking     = "tracking"
	KeyCost         = "cost"
	KeyETA          = "eta"
	KeyBuyer        = "buyer"
)

// Auction outcomes carried under KeyOutcome.
const (
	OutcomeWon    = "WON"
	OutcomeFailed = "FAILED"
)

// Roles known to the authenticator.
const (
	RoleBidder     = "BIDDER"
	RoleAuctioneer = "AUCTIONEER"
	RoleSupport    = "SUPPORT"
)
