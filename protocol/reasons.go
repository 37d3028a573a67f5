package protocol

// Refusal reasons. Negative replies carry the reason both as their Kind and
// under KeyReason, so receivers can filter on the kind and log the payload.
const (
	ReasonBidTooLow         = "BID_TOO_LOW"
	ReasonInsufficientFunds = "INSUFFICIENT_FUNDS"
	ReasonUnknownAuction    = "UNKNOWN_AUCTION"
	ReasonAccountNotFound   = "ACCOUNT_NOT_FOUND"
	ReasonBlacklisted       = "BLACKLISTED"
	ReasonNotRegistered     = "NOT_REGISTERED"
	ReasonRoleMismatch      = "ROLE_MISMATCH"
	ReasonUnauthorized      = "UNAUTHORIZED"
	ReasonCoalitionNotFound = "COALITION_NOT_FOUND"
	ReasonNoTarget          = "NO_TARGET"
	ReasonNoAuctioneer      = "NO_AUCTIONEER"
	ReasonNoData            = "NO_DATA"
)

// Violation types reported to the regulator.
const (
	ViolationPriceManipulation = "PRICE_MANIPULATION"
	ViolationLatePayment       = "LATE_PAYMENT"
	ViolationFalseBid          = "FALSE_BID"
	ViolationCollusion         = "COLLUSION"
)
