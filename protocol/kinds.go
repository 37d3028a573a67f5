package protocol

// Auction kinds.
const (
	KindNewAuction    = "NEW_AUCTION"
	KindBid           = "BID"
	KindBidAccepted   = "BID_ACCEPTED"
	KindBidRejected   = "BID_REJECTED"
	KindBidUpdate     = "BID_UPDATE"
	KindYouWon        = "YOU_WON"
	KindAuctionClosed = "AUCTION_CLOSED"
)

// Bank kinds.
const (
	KindCheckSolvency    = "CHECK_SOLVENCY"
	KindSolvent          = "SOLVENT"
	KindBlockFunds       = "BLOCK_FUNDS"
	KindFundsBlocked     = "FUNDS_BLOCKED"
	KindReleaseFunds     = "RELEASE_FUNDS"
	KindFundsReleased    = "FUNDS_RELEASED"
	KindProcessPayment   = "PROCESS_PAYMENT"
	KindPaymentProcessed = "PAYMENT_PROCESSED"
	KindPaymentFailed    = "PAYMENT_FAILED"
	KindCredit           = "CREDIT"
	KindCredited         = "CREDITED"
	KindGetBalance       = "GET_BALANCE"
	KindBalance          = "BALANCE"
)

// Authentication kinds.
const (
	KindRegister        = "REGISTER"
	KindRegistered      = "REGISTERED"
	KindVerify          = "VERIFY"
	KindVerified        = "VERIFIED"
	KindCheckPermission = "CHECK_PERMISSION"
	KindAuthorized      = "AUTHORIZED"
)

// Regulation kinds.
const (
	KindReportViolation   = "REPORT_VIOLATION"
	KindViolationRecorded = "VIOLATION_RECORDED"
	KindSanctionImposed   = "SANCTION_IMPOSED"
	KindResolveDispute    = "RESOLVE_DISPUTE"
	KindDisputeResolved   = "DISPUTE_RESOLVED"
)

// Coalition kinds.
const (
	KindCreateCoalition  = "CREATE_COALITION"
	KindCoalitionCreated = "COALITION_CREATED"
	KindJoinCoalition    = "JOIN_COALITION"
	KindJoinedCoalition  = "JOINED_COALITION"
	KindSetTarget        = "SET_TARGET"
	KindTargetSet        = "TARGET_SET"
	KindPlaceGroupBid    = "PLACE_GROUP_BID"
	KindGroupBidPlaced   = "GROUP_BID_PLACED"
)

// Analysis, notification and logistics kinds.
const (
	KindGetRecommendation = "GET_RECOMMENDATION"
	KindRecommendation    = "RECOMMENDATION"
	KindSubscribe         = "SUBSCRIBE"
	KindSubscribed        = "SUBSCRIBED"
	KindUnsubscribe       = "UNSUBSCRIBE"
	KindUnsubscribed      = "UNSUBSCRIBED"
	KindBroadcast         = "BROADCAST"
	KindNotification      = "NOTIFICATION"
	KindArrangeDelivery   = "ARRANGE_DELIVERY"
	KindDeliveryArranged  = "DELIVERY_ARRANGED"
	KindItemDelivered     = "ITEM_DELIVERED"
)

// Notification event names.
const (
	EventAuctionEnd = "AUCTION_END"
	EventNewAuction = "NEW_AUCTION"
)
