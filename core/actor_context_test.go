package core

import (
	"context"
	"testing"
	"time"

	"github.com/raulk/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActorContextForTest(self Address) (*ActorContext, *fakeTransport, *fakeDirectory, *clock.Mock) {
	tr := &fakeTransport{}
	dir := &fakeDirectory{}
	clk := clock.NewMock()
	ctx := NewActorContext(context.Background(), self, "test", tr, dir, clk, nil, testLogger{})
	return ctx, tr, dir, clk
}

func TestActorContext_SendStampsClock(t *testing.T) {
	ctx, tr, _, clk := newActorContextForTest("me")
	clk.Add(42 * time.Second)

	m := ctx.Send(Inform, "HELLO", Payload{"x": 1}, "you")

	require.Len(t, tr.sent, 1)
	assert.Equal(t, m.ID, tr.sent[0].ID)
	assert.Equal(t, Address("me"), tr.sent[0].Sender)
	assert.Equal(t, clk.Now(), tr.sent[0].Timestamp)
}

func TestActorContext_SendWithoutReceiversIsSkipped(t *testing.T) {
	ctx, tr, _, _ := newActorContextForTest("me")
	ctx.Send(Inform, "HELLO", nil)
	assert.Empty(t, tr.sent)
}

func TestActorContext_ReplyAndFirst(t *testing.T) {
	ctx, tr, dir, _ := newActorContextForTest("bank")
	require.NoError(t, ctx.Register("bank-service", "banking"))
	_ = dir.Register(ServiceDescriptor{Type: "auction-service", Name: "a1", Owner: "auctioneer-1"})
	_ = dir.Register(ServiceDescriptor{Type: "auction-service", Name: "a2", Owner: "auctioneer-2"})

	first, ok := ctx.First("auction-service")
	assert.True(t, ok)
	assert.Equal(t, Address("auctioneer-1"), first)

	_, ok = ctx.First("bank-service")
	assert.False(t, ok, "an actor is never its own provider")

	req := NewMessage("alice", Request, "GET_BALANCE", nil, "bank")
	ctx.Reply(req, Inform, "BALANCE", Payload{"balance": 1.0})
	require.Len(t, tr.sent, 1)
	assert.Equal(t, req.ID, tr.sent[0].InReplyTo)
	assert.Equal(t, []Address{"alice"}, tr.sent[0].Receivers)
}

func TestActorContext_BroadcastSnapshotExcludes(t *testing.T) {
	ctx, tr, dir, _ := newActorContextForTest("auctioneer")
	for _, owner := range []Address{"b1", "b2", "b3"} {
		_ = dir.Register(ServiceDescriptor{Type: "bidder-service", Name: "bidder", Owner: owner})
	}
	_ = dir.Register(ServiceDescriptor{Type: "market-feed", Name: "feed", Owner: "b1"})
	_ = dir.Register(ServiceDescriptor{Type: "market-feed", Name: "feed", Owner: "monitor"})

	n := ctx.Broadcast("bidder-service", Inform, "BID_UPDATE", nil, "b2")
	assert.Equal(t, 2, n)
	require.Len(t, tr.sent, 1)
	assert.ElementsMatch(t, []Address{"b1", "b3"}, tr.sent[0].Receivers)

	all := ctx.Recipients(nil, "bidder-service", "market-feed")
	assert.Equal(t, []Address{"b1", "b2", "b3", "monitor"}, all)
}
