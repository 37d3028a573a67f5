package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentmarket/core"
	"github.com/hupe1980/agentmarket/internal/testutil"
	"github.com/hupe1980/agentmarket/protocol"
)

func request(h *testutil.Harness, from core.Address, kind string, p core.Payload) core.Message {
	msg := testutil.NewMessageBuilder().From(from).To("authenticator").Request(kind).Payload(p).Build()
	require.True(h.T, h.Deliver(msg))

	last, ok := h.Outbox.Last()
	require.True(h.T, ok)
	require.Equal(h.T, msg.ID, last.InReplyTo)

	return last
}

func TestAuthenticator_RegistrationScenario(t *testing.T) {
	h := testutil.NewHarness(t)
	h.Start(New(Config{}))

	descs := h.Directory.Lookup(protocol.ServiceSecurity)
	require.Len(t, descs, 1)
	assert.Equal(t, protocol.NameAuthenticator, descs[0].Name)

	reply := request(h, "x", protocol.KindRegister, core.Payload{protocol.KeyRole: protocol.RoleBidder})
	assert.True(t, reply.Is(core.Confirm, protocol.KindRegistered))

	reply = request(h, "x", protocol.KindVerify, core.Payload{protocol.KeyRole: protocol.RoleBidder})
	assert.True(t, reply.Is(core.Confirm, protocol.KindVerified))

	reply = request(h, "x", protocol.KindCheckPermission, nil)
	assert.True(t, reply.Is(core.Confirm, protocol.KindAuthorized))

	for i := 1; i <= 3; i++ {
		reply = request(h, "y", protocol.KindVerify, nil)
		assert.True(t, reply.Is(core.Disconfirm, protocol.ReasonNotRegistered))
		assert.Equal(t, i, reply.Payload[protocol.KeyAttempts])
	}

	reply = request(h, "y", protocol.KindRegister, nil)
	assert.True(t, reply.Is(core.Refuse, protocol.ReasonBlacklisted))
	assert.Equal(t, protocol.ReasonBlacklisted, reply.Payload[protocol.KeyReason])

	reply = request(h, "y", protocol.KindVerify, nil)
	assert.True(t, reply.Is(core.Disconfirm, protocol.ReasonBlacklisted))
}

func TestAuthenticator_PermissionForSubject(t *testing.T) {
	h := testutil.NewHarness(t)
	a := New(Config{})
	h.Start(a)

	request(h, "x", protocol.KindRegister, nil)

	reply := request(h, "auctioneer", protocol.KindCheckPermission, core.Payload{protocol.KeySubject: core.Address("x")})
	assert.True(t, reply.Is(core.Refuse, protocol.ReasonUnauthorized), "registered but unverified")
	assert.Equal(t, core.Address("x"), reply.Payload[protocol.KeySubject])

	request(h, "x", protocol.KindVerify, nil)

	reply = request(h, "auctioneer", protocol.KindCheckPermission, core.Payload{protocol.KeySubject: core.Address("x")})
	assert.True(t, reply.Is(core.Confirm, protocol.KindAuthorized))

	creds, ok := a.Authority().Credentials("x")
	require.True(t, ok)
	assert.Equal(t, protocol.RoleBidder, creds.Role, "role defaults to bidder")
}

func TestAuthenticator_RoleMismatch(t *testing.T) {
	h := testutil.NewHarness(t)
	h.Start(New(Config{}))

	request(h, "x", protocol.KindRegister, core.Payload{protocol.KeyRole: protocol.RoleSupport})

	reply := request(h, "x", protocol.KindVerify, core.Payload{protocol.KeyRole: protocol.RoleBidder})
	assert.True(t, reply.Is(core.Disconfirm, protocol.ReasonRoleMismatch))
}

func TestAuthenticator_ReportTick(t *testing.T) {
	h := testutil.NewHarness(t)
	h.Start(New(Config{}))

	before := h.Outbox.Len()
	h.Tick(BehaviorReport)
	assert.Equal(t, before, h.Outbox.Len(), "the report only logs")
}
