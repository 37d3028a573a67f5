package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.MessageSent()
	m.MessagesDelivered(3)
	m.MessagesDropped(DropUnmatched, 1)
	m.BehaviorPanicked("bank")
	m.SetActors(4)
	m.ObserverDropped()

	s := m.Sink()
	s.NewAuction("ITEM-1", "Lamp", 100, 150)
	s.AuctionEnd("ITEM-1", "", 0)
}

func TestMetrics_RuntimeCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.MessageSent()
	m.MessagesDelivered(2)
	m.MessagesDropped(DropUnknownReceiver, 1)
	m.MessagesDropped(DropUnknownReceiver, 0)
	m.BehaviorPanicked("auctioneer")
	m.SetActors(7)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.messagesSent))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.messagesDelivered))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.messagesDropped.WithLabelValues(DropUnknownReceiver)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.behaviorPanics.WithLabelValues("auctioneer")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.actorsActive))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestSink_ProtocolCounters(t *testing.T) {
	m := New(nil)
	s := m.Sink()

	s.NewAuction("ITEM-1", "Lamp", 200, 300)
	s.BidUpdate("ITEM-1", 250, "b1")
	s.BidUpdate("ITEM-1", 400, "b2")
	s.AuctionEnd("ITEM-1", "b2", 400)
	s.AuctionEnd("ITEM-2", "", 0)
	s.Statistics(3, 6, 400)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.auctionsOpened))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.bidsAccepted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.auctionsClosed.WithLabelValues("won")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.auctionsClosed.WithLabelValues("failed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.activeAuctions))
	assert.Equal(t, 400.0, testutil.ToFloat64(m.tradedVolume))
}
