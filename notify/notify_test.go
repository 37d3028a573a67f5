package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentmarket/core"
	"github.com/hupe1980/agentmarket/internal/testutil"
	"github.com/hupe1980/agentmarket/protocol"
)

func subscribe(t *testing.T, h *testutil.Harness, from core.Address, event string) core.Message {
	t.Helper()

	msg := testutil.NewMessageBuilder().From(from).Intent(core.Subscribe, protocol.KindSubscribe).
		Set(protocol.KeyEvent, event).Build()
	require.True(t, h.Deliver(msg))

	last, ok := h.Outbox.Last()
	require.True(t, ok)

	return last
}

func TestNotifier_FansOutBroadcasts(t *testing.T) {
	h := testutil.NewHarness(t)
	n := New(Config{})
	h.Start(n)

	reply := subscribe(t, h, "b2", protocol.EventAuctionEnd)
	assert.True(t, reply.Is(core.Agree, protocol.KindSubscribed))
	subscribe(t, h, "b1", protocol.EventAuctionEnd)
	subscribe(t, h, "b1", protocol.EventAuctionEnd)
	subscribe(t, h, "auctioneer", protocol.EventAuctionEnd)

	assert.Equal(t, []core.Address{"auctioneer", "b1", "b2"}, n.Subscribers(protocol.EventAuctionEnd))

	h.Outbox.Reset()

	broadcast := testutil.NewMessageBuilder().From("auctioneer").Inform(protocol.KindBroadcast).
		Set(protocol.KeyEvent, protocol.EventAuctionEnd).Set(protocol.KeyText, "ITEM-1 sold").Build()
	require.True(t, h.Deliver(broadcast))

	notes := h.Outbox.OfKind(protocol.KindNotification)
	require.Len(t, notes, 1)
	assert.Equal(t, []core.Address{"b1", "b2"}, notes[0].Receivers, "the sender is not notified")
	assert.Equal(t, "ITEM-1 sold", notes[0].Payload[protocol.KeyText])
}

func TestNotifier_Unsubscribe(t *testing.T) {
	h := testutil.NewHarness(t)
	n := New(Config{})
	h.Start(n)

	subscribe(t, h, "b1", protocol.EventAuctionEnd)

	msg := testutil.NewMessageBuilder().From("b1").Request(protocol.KindUnsubscribe).Set(protocol.KeyEvent, protocol.EventAuctionEnd).Build()
	require.True(t, h.Deliver(msg))

	last, _ := h.Outbox.Last()
	assert.True(t, last.Is(core.Agree, protocol.KindUnsubscribed))
	assert.Empty(t, n.Subscribers(protocol.EventAuctionEnd))

	h.Outbox.Reset()

	broadcast := testutil.NewMessageBuilder().From("auctioneer").Inform(protocol.KindBroadcast).
		Set(protocol.KeyEvent, protocol.EventAuctionEnd).Build()
	require.True(t, h.Deliver(broadcast))
	assert.Zero(t, h.Outbox.Len())
}
