package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMessage_OpensConversation(t *testing.T) {
	m := NewMessage("alice", Propose, "BID", Payload{"item": "ITEM-1"}, "auctioneer")

	assert.NotEmpty(t, m.ID)
	assert.Equal(t, m.ID, m.ConversationID)
	assert.Empty(t, m.InReplyTo)
	assert.Equal(t, []Address{"auctioneer"}, m.Receivers)
	assert.False(t, m.Timestamp.IsZero())
	assert.True(t, m.Is(Propose, "BID"))
}

func TestMessage_ReplyKeepsConversation(t *testing.T) {
	m := NewMessage("alice", Request, "GET_BALANCE", nil, "bank")
	r := m.Reply("bank", Inform, "BALANCE", Payload{"balance": 10.0})

	assert.Equal(t, Address("bank"), r.Sender)
	assert.Equal(t, []Address{"alice"}, r.Receivers)
	assert.Equal(t, m.ConversationID, r.ConversationID)
	assert.Equal(t, m.ID, r.InReplyTo)
	assert.NotEqual(t, m.ID, r.ID)
}

func TestMessage_IsolatedFromCallerMutation(t *testing.T) {
	p := Payload{"amount": 100.0}
	receivers := []Address{"a", "b"}
	m := NewMessage("s", Inform, "X", p, receivers...)

	p["amount"] = 1.0
	receivers[0] = "z"

	assert.Equal(t, 100.0, m.Payload["amount"])
	assert.Equal(t, Address("a"), m.Receivers[0])

	c := m.Clone()
	c.Payload["amount"] = 5.0
	c.Receivers[1] = "y"
	assert.Equal(t, 100.0, m.Payload["amount"])
	assert.Equal(t, Address("b"), m.Receivers[1])
}

func TestIntent_String(t *testing.T) {
	assert.Equal(t, "PROPOSE", Propose.String())
	assert.Equal(t, "SUBSCRIBE", Subscribe.String())
	assert.Equal(t, "UNKNOWN", Intent(99).String())
	assert.True(t, Refuse.IsNegative())
	assert.False(t, Agree.IsNegative())
}

func TestFilters(t *testing.T) {
	bid := NewMessage("a", Propose, "BID", nil, "b")
	update := NewMessage("a", Inform, "BID_UPDATE", nil, "b")

	assert.True(t, MatchIntent(Propose, Request)(bid))
	assert.False(t, MatchIntent(Inform)(bid))
	assert.True(t, MatchKind("BID_UPDATE")(update))
	assert.True(t, MatchAll(MatchIntent(Inform), MatchKind("BID_UPDATE"))(update))
	assert.False(t, MatchAll(MatchIntent(Inform), MatchKind("BID"))(update))
	assert.True(t, MatchAny(MatchKind("BID"), MatchKind("BID_UPDATE"))(update))
}
