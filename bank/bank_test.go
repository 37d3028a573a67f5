package bank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentmarket/core"
	"github.com/hupe1980/agentmarket/internal/testutil"
	"github.com/hupe1980/agentmarket/protocol"
)

func startBank(t *testing.T) (*Bank, *testutil.Harness) {
	t.Helper()

	h := testutil.NewHarness(t)
	h.Register(protocol.ServiceBidder, "b1")
	h.Register(protocol.ServiceBidder, "b2")

	b := New(Config{Rand: func() float64 { return 0.5 }})
	h.Start(b)
	h.Tick(BehaviorDiscover)

	return b, h
}

func request(kind string, from core.Address, p core.Payload) core.Message {
	return testutil.NewMessageBuilder().From(from).To("bank").Request(kind).Payload(p).Build()
}

func lastReply(t *testing.T, h *testutil.Harness) core.Message {
	t.Helper()

	msg, ok := h.Outbox.Last()
	require.True(t, ok, "expected a reply")

	return msg
}

func TestBank_RegistersAndDiscoversBidders(t *testing.T) {
	b, h := startBank(t)

	assert.Equal(t, core.Address("bank"), h.Directory.Lookup(protocol.ServiceBank)[0].Owner)
	assert.Equal(t, 2, b.Ledger().Len())

	balance, available, err := b.Ledger().Balance("b1")
	require.NoError(t, err)
	assert.Equal(t, 10000.0, balance)
	assert.Equal(t, 10000.0, available)

	h.Tick(BehaviorDiscover)
	assert.Equal(t, 2, b.Ledger().Len(), "known owners are not reopened")
}

func TestBank_BlockFunds(t *testing.T) {
	_, h := startBank(t)

	msg := request(protocol.KindBlockFunds, "auctioneer", protocol.FundsRequest{Actor: "b1", Amount: 4000, Item: "ITEM-1"}.Payload())
	require.True(t, h.Deliver(msg))

	reply := lastReply(t, h)
	assert.True(t, reply.Is(core.Confirm, protocol.KindFundsBlocked))
	assert.Equal(t, msg.ID, reply.InReplyTo)
	assert.Equal(t, []core.Address{"auctioneer"}, reply.Receivers)
	assert.Equal(t, "ITEM-1", reply.Payload[protocol.KeyItem])

	h.Deliver(request(protocol.KindBlockFunds, "auctioneer", protocol.FundsRequest{Actor: "b1", Amount: 7000}.Payload()))
	reply = lastReply(t, h)
	assert.True(t, reply.Is(core.Refuse, protocol.ReasonInsufficientFunds))
	assert.Equal(t, protocol.ReasonInsufficientFunds, reply.Payload[protocol.KeyReason])

	h.Deliver(request(protocol.KindBlockFunds, "auctioneer", protocol.FundsRequest{Actor: "ghost", Amount: 10}.Payload()))
	assert.True(t, lastReply(t, h).Is(core.Refuse, protocol.ReasonAccountNotFound))
}

func TestBank_CheckSolvency(t *testing.T) {
	_, h := startBank(t)

	h.Deliver(request(protocol.KindCheckSolvency, "b1", core.Payload{protocol.KeyAmount: 500.0}))
	assert.True(t, lastReply(t, h).Is(core.Confirm, protocol.KindSolvent))

	h.Deliver(request(protocol.KindCheckSolvency, "b1", core.Payload{protocol.KeyAmount: 50000.0}))
	assert.True(t, lastReply(t, h).Is(core.Disconfirm, protocol.ReasonInsufficientFunds))

	h.Deliver(request(protocol.KindCheckSolvency, "ghost", core.Payload{protocol.KeyAmount: 5.0}))
	assert.True(t, lastReply(t, h).Is(core.Refuse, protocol.ReasonAccountNotFound))
}

func TestBank_ProcessPaymentConvertsHold(t *testing.T) {
	b, h := startBank(t)

	require.NoError(t, b.Ledger().Block("b1", 3000))

	h.Deliver(request(protocol.KindProcessPayment, "auctioneer",
		protocol.FundsRequest{Actor: "b1", Amount: 3000, Release: 3000, Item: "ITEM-1"}.Payload()))

	reply := lastReply(t, h)
	assert.True(t, reply.Is(core.Inform, protocol.KindPaymentProcessed))

	balance, available, _ := b.Ledger().Balance("b1")
	assert.Equal(t, 7000.0, balance)
	assert.Equal(t, 7000.0, available)

	h.Deliver(request(protocol.KindProcessPayment, "auctioneer",
		protocol.FundsRequest{Actor: "b1", Amount: 9000, Item: "ITEM-2"}.Payload()))

	reply = lastReply(t, h)
	assert.True(t, reply.Is(core.Disconfirm, protocol.KindPaymentFailed))
	assert.Equal(t, protocol.ReasonInsufficientFunds, reply.Payload[protocol.KeyReason])
	assert.Equal(t, "ITEM-2", reply.Payload[protocol.KeyItem])

	h.Deliver(request(protocol.KindProcessPayment, "auctioneer", protocol.FundsRequest{Actor: "ghost", Amount: 1}.Payload()))
	assert.Equal(t, protocol.ReasonAccountNotFound, lastReply(t, h).Payload[protocol.KeyReason])
}

func TestBank_ReleaseCreditAndBalance(t *testing.T) {
	b, h := startBank(t)
	require.NoError(t, b.Ledger().Block("b2", 1000))

	h.Deliver(request(protocol.KindReleaseFunds, "auctioneer", protocol.FundsRequest{Actor: "b2", Amount: 2500}.Payload()))
	reply := lastReply(t, h)
	assert.True(t, reply.Is(core.Confirm, protocol.KindFundsReleased))
	assert.Equal(t, 1000.0, reply.Payload[protocol.KeyAmount])

	h.Deliver(request(protocol.KindCredit, "regulator", protocol.FundsRequest{Actor: "b2", Amount: 500}.Payload()))
	reply = lastReply(t, h)
	assert.True(t, reply.Is(core.Confirm, protocol.KindCredited))
	assert.Equal(t, 10500.0, reply.Payload[protocol.KeyBalance])

	h.Deliver(request(protocol.KindGetBalance, "b2", nil))
	reply = lastReply(t, h)
	assert.True(t, reply.Is(core.Inform, protocol.KindBalance))
	assert.Equal(t, 10500.0, reply.Payload[protocol.KeyAvailable])

	h.Deliver(request(protocol.KindGetBalance, "ghost", nil))
	assert.True(t, lastReply(t, h).Is(core.Refuse, protocol.ReasonAccountNotFound))
}

func TestBank_DropsMalformedRequests(t *testing.T) {
	_, h := startBank(t)

	require.True(t, h.Deliver(request(protocol.KindBlockFunds, "auctioneer", core.Payload{protocol.KeyAmount: "many"})))
	require.True(t, h.Deliver(request(protocol.KindBlockFunds, "auctioneer", core.Payload{protocol.KeyAmount: -3.0})))
	assert.Zero(t, h.Outbox.Len())

	assert.False(t, h.Deliver(testutil.NewMessageBuilder().From("b1").Inform(protocol.KindBlockFunds).Build()),
		"only requests are served")
}
