package protocol

// Service types published in the directory.
const (
	ServiceAuction      = "auction-service"
	ServiceBidder       = "bidder-service"
	ServiceBank         = "bank-service"
	ServiceSecurity     = "security-service"
	ServiceRegulator    = "regulator-service"
	ServiceCoalition    = "coalition-service"
	ServiceMonitor      = "monitor-service"
	ServiceAnalyst      = "analyst-service"
	ServiceNotification = "notification-service"
	ServiceLogistics    = "logistics-service"
	// ServiceMarketFeed receives copies of auction broadcasts without bidding.
	ServiceMarketFeed = "market-feed"
)

// Service names used by the reference actors.
const (
	NameAuctioneer         = "english-auction"
	NameAggressiveBidder   = "aggressive-bidder"
	NameConservativeBidder = "conservative-bidder"
	NameIntelligentBidder  = "intelligent-bidder"
	NameBank               = "banking"
	NameAuthenticator      = "authentication"
	NameRegulator          = "market-regulation"
	NameCoalition          = "coalition-management"
	NameMonitor            = "market-monitoring"
	NameAnalyst            = "market-analysis"
	NameNotification       = "notifications"
	NameLogistics          = "delivery"
	NameCoalitionBidder    = "coalition-bidder"
	NameMonitorFeed        = "monitor-feed"
	NameAnalystFeed        = "analyst-feed"
)
