package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentmarket/core"
	"github.com/hupe1980/agentmarket/internal/testutil"
	"github.com/hupe1980/agentmarket/observer"
	"github.com/hupe1980/agentmarket/protocol"
)

func bidUpdate(item string, price float64, bidder core.Address) core.Message {
	return testutil.NewMessageBuilder().From("auctioneer").Inform(protocol.KindBidUpdate).
		Payload(protocol.BidUpdate{Item: item, Price: price, Bidder: bidder}.Payload()).Build()
}

func wonClose(item string, price float64, winner core.Address) core.Message {
	return testutil.NewMessageBuilder().From("auctioneer").Inform(protocol.KindAuctionClosed).
		Payload(protocol.AuctionClosed{Item: item, Outcome: protocol.OutcomeWon, Winner: winner, Price: price}.Payload()).Build()
}

func TestMonitor_CountsFeedActivity(t *testing.T) {
	h := testutil.NewHarness(t)
	m := New(Config{})
	h.Start(m)

	assert.Len(t, h.Directory.Lookup(protocol.ServiceMarketFeed), 1)

	require.True(t, h.Deliver(bidUpdate("ITEM-1", 250, "b1")))
	require.True(t, h.Deliver(bidUpdate("ITEM-1", 300, "b2")))
	require.True(t, h.Deliver(bidUpdate("ITEM-1", 350, "b1")))
	require.True(t, h.Deliver(wonClose("ITEM-1", 350, "b1")))

	assert.Equal(t, 2, m.Bids("b1"))
	assert.Equal(t, 1, m.Bids("b2"))
	assert.Equal(t, 350.0, m.Spent("b1"))
	assert.Equal(t, 4, m.Journal().Len(StreamActivity))

	h.Tick(BehaviorReport)
	h.Tick(BehaviorAnomalies)
	assert.Empty(t, m.Flagged())
}

func TestMonitor_FlagsAnomaliesOnce(t *testing.T) {
	h := testutil.NewHarness(t)
	h.Register(protocol.ServiceRegulator, "regulator")

	m := New(Config{MaxBids: 2, MaxSpent: 1000})
	h.Start(m)

	for i := 0; i < 3; i++ {
		require.True(t, h.Deliver(bidUpdate("ITEM-1", float64(100+i), "bot")))
	}
	require.True(t, h.Deliver(wonClose("ITEM-2", 5000, "whale")))

	h.Tick(BehaviorAnomalies)
	h.Tick(BehaviorAnomalies)

	assert.Equal(t, []core.Address{"bot", "whale"}, m.Flagged())

	reports := h.Outbox.OfKind(protocol.KindReportViolation)
	require.Len(t, reports, 2, "each bidder is reported once")

	v, err := protocol.ParseViolationReport(reports[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, core.Address("bot"), v.Violator)
	assert.Equal(t, protocol.ViolationPriceManipulation, v.Type)
	assert.Equal(t, []core.Address{"regulator"}, reports[0].Receivers)

	assert.Len(t, h.Observer.OfType(observer.EventLog), 2)
}

func TestAnalyst_Recommendations(t *testing.T) {
	h := testutil.NewHarness(t)
	a, err := NewAnalyst(AnalystConfig{})
	require.NoError(t, err)
	h.Start(a)

	ask := func(p core.Payload) core.Message {
		msg := testutil.NewMessageBuilder().From("b1").Request(protocol.KindGetRecommendation).Payload(p).Build()
		require.True(t, h.Deliver(msg))

		last, ok := h.Outbox.Last()
		require.True(t, ok)
		require.Equal(t, msg.ID, last.InReplyTo)

		return last
	}

	reply := ask(core.Payload{protocol.KeyItem: "ITEM-1"})
	assert.True(t, reply.Is(core.Refuse, protocol.ReasonNoData))

	notice := testutil.NewMessageBuilder().From("auctioneer").Inform(protocol.KindNewAuction).
		Payload(protocol.AuctionNotice{Item: "ITEM-1", Name: "Laptop", StartPrice: 100, Reserve: 150}.Payload()).Build()
	require.True(t, h.Deliver(notice))
	require.True(t, h.Deliver(bidUpdate("ITEM-1", 200, "b2")))

	assert.Equal(t, []float64{100, 200}, a.Prices("ITEM-1"))

	reply = ask(core.Payload{protocol.KeyItem: "ITEM-1", protocol.KeyPrice: 120.0})
	assert.True(t, reply.Is(core.Inform, protocol.KindRecommendation))
	assert.Equal(t, ActionBuy, reply.Payload[protocol.KeyAction])

	reply = ask(core.Payload{protocol.KeyItem: "ITEM-1"})
	assert.Equal(t, ActionWait, reply.Payload[protocol.KeyAction], "200 against an average of 150")

	h.Tick(BehaviorAnalyze)
	s := a.Stats()
	assert.Equal(t, 1, s.Items)
	assert.InDelta(t, 150, s.Average, 1e-9)
}

func TestAnalyst_EvictsLeastRecentlyUpdated(t *testing.T) {
	h := testutil.NewHarness(t)
	a, err := NewAnalyst(AnalystConfig{HistorySize: 2})
	require.NoError(t, err)
	h.Start(a)

	require.True(t, h.Deliver(bidUpdate("ITEM-1", 100, "b1")))
	require.True(t, h.Deliver(bidUpdate("ITEM-2", 100, "b1")))
	require.True(t, h.Deliver(bidUpdate("ITEM-1", 110, "b1")))
	require.True(t, h.Deliver(bidUpdate("ITEM-3", 100, "b1")))

	assert.Equal(t, []float64{100, 110}, a.Prices("ITEM-1"))
	assert.Nil(t, a.Prices("ITEM-2"))
	assert.Equal(t, []float64{100}, a.Prices("ITEM-3"))
}
