package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentmarket/core"
)

func TestParseBid(t *testing.T) {
	bid, err := ParseBid(Bid{Item: "ITEM-1", Amount: 250}.Payload())
	require.NoError(t, err)
	assert.Equal(t, Bid{Item: "ITEM-1", Amount: 250}, bid)

	tests := []struct {
		name    string
		payload core.Payload
	}{
		{"missing item", core.Payload{KeyAmount: 10.0}},
		{"missing amount", core.Payload{KeyItem: "ITEM-1"}},
		{"zero amount", core.Payload{KeyItem: "ITEM-1", KeyAmount: 0.0}},
		{"negative amount", core.Payload{KeyItem: "ITEM-1", KeyAmount: -5.0}},
		{"text amount", core.Payload{KeyItem: "ITEM-1", KeyAmount: "lots"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBid(tt.payload)
			assert.ErrorIs(t, err, core.ErrMalformedPayload)
		})
	}
}

func TestParseBid_NumericString(t *testing.T) {
	bid, err := ParseBid(core.Payload{KeyItem: "ITEM-2", KeyAmount: "250.00"})
	require.NoError(t, err)
	assert.Equal(t, 250.0, bid.Amount)
}

func TestParseAuctionNotice(t *testing.T) {
	end := time.Date(2024, 1, 1, 12, 5, 0, 0, time.UTC)
	notice := AuctionNotice{Item: "ITEM-1", Name: "Laptop", StartPrice: 200, Reserve: 300, EndTime: end}

	p := notice.Payload()
	assert.Equal(t, 200.0, p[KeyPrice])

	got, err := ParseAuctionNotice(p)
	require.NoError(t, err)
	assert.Equal(t, notice, got)

	got, err = ParseAuctionNotice(core.Payload{KeyItem: "ITEM-9", KeyStartPrice: 100.0, KeyEndTime: end.Format(time.RFC3339Nano)})
	require.NoError(t, err)
	assert.Equal(t, "ITEM-9", got.Name)
	assert.True(t, end.Equal(got.EndTime))
}

func TestParseAuctionClosed(t *testing.T) {
	won, err := ParseAuctionClosed(AuctionClosed{Item: "ITEM-1", Outcome: OutcomeWon, Winner: "b1", Price: 320}.Payload())
	require.NoError(t, err)
	assert.True(t, won.Won())
	assert.Equal(t, core.Address("b1"), won.Winner)

	failed, err := ParseAuctionClosed(AuctionClosed{Item: "ITEM-2", Outcome: OutcomeFailed, Price: 200}.Payload())
	require.NoError(t, err)
	assert.False(t, failed.Won())
	assert.Empty(t, failed.Winner)

	_, err = ParseAuctionClosed(core.Payload{KeyItem: "ITEM-3", KeyOutcome: OutcomeWon})
	assert.ErrorIs(t, err, core.ErrMalformedPayload)

	_, err = ParseAuctionClosed(core.Payload{KeyItem: "ITEM-3", KeyOutcome: "MAYBE"})
	assert.ErrorIs(t, err, core.ErrMalformedPayload)
}

func TestParseFundsRequest_DefaultsActorToSender(t *testing.T) {
	r, err := ParseFundsRequest("bidder-1", core.Payload{KeyAmount: 100.0})
	require.NoError(t, err)
	assert.Equal(t, core.Address("bidder-1"), r.Actor)
	assert.Zero(t, r.Release)

	r, err = ParseFundsRequest("auctioneer", FundsRequest{Actor: "bidder-2", Amount: 300, Release: 300, Item: "ITEM-1"}.Payload())
	require.NoError(t, err)
	assert.Equal(t, FundsRequest{Actor: "bidder-2", Amount: 300, Release: 300, Item: "ITEM-1"}, r)

	_, err = ParseFundsRequest("x", core.Payload{KeyAmount: 10.0, KeyRelease: -1.0})
	assert.ErrorIs(t, err, core.ErrMalformedPayload)
}

func TestBidDecision_ReasonOnlyWhenRejected(t *testing.T) {
	accepted := BidDecision{Item: "ITEM-1", Amount: 250, Price: 250}.Payload()
	assert.False(t, accepted.Has(KeyReason))

	rejected, err := ParseBidDecision(BidDecision{Item: "ITEM-1", Amount: 150, Price: 250, Reason: ReasonBidTooLow}.Payload())
	require.NoError(t, err)
	assert.Equal(t, ReasonBidTooLow, rejected.Reason)
	assert.Equal(t, 250.0, rejected.Price)
}

func TestRefusal(t *testing.T) {
	extra := core.Payload{KeyAttempts: 2}
	p := Refusal(ReasonNotRegistered, extra)

	assert.Equal(t, ReasonNotRegistered, p[KeyReason])
	assert.Equal(t, 2, p[KeyAttempts])
	assert.False(t, extra.Has(KeyReason))

	assert.Equal(t, ReasonNoData, Refusal(ReasonNoData, nil)[KeyReason])
}

func TestParseViolationReport(t *testing.T) {
	v, err := ParseViolationReport(ViolationReport{Violator: "b1", Type: ViolationFalseBid}.Payload())
	require.NoError(t, err)
	assert.Equal(t, core.Address("b1"), v.Violator)
	assert.Equal(t, ViolationFalseBid, v.Type)

	_, err = ParseViolationReport(core.Payload{KeyType: ViolationCollusion})
	assert.ErrorIs(t, err, core.ErrMalformedPayload)
}
