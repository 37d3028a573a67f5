package agent

import (
	"context"
	"testing"
	"time"

	"github.com/raulk/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentmarket/core"
	"github.com/hupe1980/agentmarket/registry"
)

func newTestContext(self core.Address) (*core.ActorContext, *registry.InMemoryDirectory) {
	dir := registry.NewInMemoryDirectory()
	ctx := core.NewActorContext(context.Background(), self, "test", nil, dir, clock.NewMock(), nil, nil)
	return ctx, dir
}

func TestBaseActor_SetupRegistersServices(t *testing.T) {
	b := NewBaseActor("bank", "bank")
	b.Offer("bank-service", "banking")
	b.Offer("audit-service", "audit")

	ctx, dir := newTestContext("bank")
	require.NoError(t, b.Setup(ctx))
	assert.True(t, b.Running())

	assert.Len(t, dir.Services("bank"), 2)
	assert.Equal(t, core.Address("bank"), dir.Lookup("bank-service")[0].Owner)

	err := b.Setup(ctx)
	assert.Error(t, err, "second setup must fail")

	require.NoError(t, b.Teardown(ctx))
	assert.False(t, b.Running())
	assert.Error(t, b.Teardown(ctx))
}

func TestBaseActor_SetupFailsOnInvalidService(t *testing.T) {
	b := NewBaseActor("x", "x")
	b.Offer("", "broken")

	ctx, _ := newTestContext("x")
	err := b.Setup(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, registry.ErrInvalidDescriptor)
	assert.False(t, b.Running())
}

func TestBaseActor_BehaviorsAreCopied(t *testing.T) {
	b := NewBaseActor("a", "a")
	b.AddBehavior(NewReactive("r", nil, func(*core.ActorContext, core.Message) {}))

	bs := b.Behaviors()
	bs[0] = nil
	assert.NotNil(t, b.Behaviors()[0])
	assert.Equal(t, "a", b.Name())
	assert.Equal(t, "a", b.Kind())
}

func TestReactive_Delegates(t *testing.T) {
	var got core.Message
	r := NewReactive("bids", core.MatchIntent(core.Propose), func(_ *core.ActorContext, msg core.Message) { got = msg })

	ctx, _ := newTestContext("auctioneer")
	msg := core.NewMessage("b1", core.Propose, "BID", nil, "auctioneer")

	assert.Equal(t, "bids", r.Name())
	assert.True(t, r.Filter()(msg))
	r.Handle(ctx, msg)
	assert.Equal(t, msg.ID, got.ID)
}

func TestPeriodic_MaxTicksAndCondition(t *testing.T) {
	calls := 0
	enabled := false
	p := NewPeriodic("tick", time.Second, func(*core.ActorContext) { calls++ },
		WithMaxTicks(2),
		WithCondition(func(*core.ActorContext) bool { return enabled }),
	)

	ctx, _ := newTestContext("a")
	assert.Equal(t, time.Second, p.Interval())

	p.Tick(ctx)
	assert.Equal(t, 0, calls, "condition gates the tick")

	enabled = true
	p.Tick(ctx)
	p.Tick(ctx)
	p.Tick(ctx)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, p.Ticks())
}
