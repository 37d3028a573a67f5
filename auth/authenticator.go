package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/agentmarket/agent"
	"github.com/hupe1980/agentmarket/core"
	"github.com/hupe1980/agentmarket/protocol"
)

// Behavior names.
const (
	BehaviorRequests = "authentication"
	BehaviorReport   = "security-report"
)

// Config configures an Authenticator.
type Config struct {
	// Name is the actor address. Defaults to "authenticator".
	Name string

	// ReportEvery is the security report period. Defaults to 8s.
	ReportEvery time.Duration

	// MaxAttempts is the number of failed verifications that blacklists an
	// actor. Defaults to 3.
	MaxAttempts int
}

func (c *Config) defaults() {
	if c.Name == "" {
		c.Name = "authenticator"
	}
	if c.ReportEvery <= 0 {
		c.ReportEvery = 8 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
}

// Authenticator serves REGISTER, VERIFY and CHECK_PERMISSION requests
// against its Authority.
type Authenticator struct {
	agent.BaseActor

	cfg       Config
	authority *Authority
}

// New creates an authenticator.
func New(cfg Config) *Authenticator {
	cfg.defaults()

	a := &Authenticator{
		BaseActor: agent.NewBaseActor(cfg.Name, "authenticator"),
		cfg:       cfg,
		authority: NewAuthority(cfg.MaxAttempts),
	}

	a.Offer(protocol.ServiceSecurity, protocol.NameAuthenticator)
	a.AddBehavior(
		agent.NewReactive(BehaviorRequests, core.MatchAll(
			core.MatchIntent(core.Request),
			core.MatchKind(protocol.KindRegister, protocol.KindVerify, protocol.KindCheckPermission),
		), a.handle),
		agent.NewPeriodic(BehaviorReport, cfg.ReportEvery, a.report),
	)

	return a
}

// Authority exposes the state machine. Use it from a behavior or once the
// actor has stopped.
func (a *Authenticator) Authority() *Authority { return a.authority }

func (a *Authenticator) handle(ctx *core.ActorContext, msg core.Message) {
	switch msg.Kind {
	case protocol.KindRegister:
		a.register(ctx, msg)
	case protocol.KindVerify:
		a.verify(ctx, msg)
	case protocol.KindCheckPermission:
		a.permission(ctx, msg)
	}
}

func (a *Authenticator) register(ctx *core.ActorContext, msg core.Message) {
	role := msg.Payload.StringOr(protocol.KeyRole, protocol.RoleBidder)

	if _, err := a.authority.Register(msg.Sender, role, ctx.Now()); err != nil {
		ctx.LogWarn("blacklisted actor tried to register", "actor", msg.Sender.String())
		ctx.Reply(msg, core.Refuse, protocol.ReasonBlacklisted, protocol.Refusal(protocol.ReasonBlacklisted, nil))

		return
	}

	ctx.LogInfo("actor registered", "actor", msg.Sender.String(), "role", role)
	ctx.Reply(msg, core.Confirm, protocol.KindRegistered, core.Payload{protocol.KeyRole: role})
}

func (a *Authenticator) verify(ctx *core.ActorContext, msg core.Message) {
	attempts, err := a.authority.Verify(msg.Sender, msg.Payload.StringOr(protocol.KeyRole, ""))
	if err == nil {
		ctx.LogInfo("actor verified", "actor", msg.Sender.String())
		ctx.Reply(msg, core.Confirm, protocol.KindVerified, nil)

		return
	}

	reason := protocol.ReasonNotRegistered

	switch {
	case errors.Is(err, ErrBlacklisted):
		reason = protocol.ReasonBlacklisted
	case errors.Is(err, ErrRoleMismatch):
		reason = protocol.ReasonRoleMismatch
	}

	ctx.Reply(msg, core.Disconfirm, reason, protocol.Refusal(reason, core.Payload{protocol.KeyAttempts: attempts}))

	if reason != protocol.ReasonBlacklisted && a.authority.State(msg.Sender) == StateBlacklisted {
		ctx.LogWarn("actor blacklisted after repeated failures", "actor", msg.Sender.String(), "attempts", attempts)
		ctx.Observer.Log(fmt.Sprintf("%s blacklisted", msg.Sender), core.SeverityWarning)
	}
}

func (a *Authenticator) permission(ctx *core.ActorContext, msg core.Message) {
	subject := msg.Payload.AddressOr(protocol.KeySubject, msg.Sender)

	if a.authority.Permitted(subject) {
		ctx.Reply(msg, core.Confirm, protocol.KindAuthorized, core.Payload{protocol.KeySubject: subject})
		return
	}

	ctx.LogWarn("unauthorized action", "subject", subject.String(), "action", msg.Payload.StringOr(protocol.KeyAction, "UNKNOWN"))
	ctx.Reply(msg, core.Refuse, protocol.ReasonUnauthorized,
		protocol.Refusal(protocol.ReasonUnauthorized, core.Payload{protocol.KeySubject: subject}))
}

func (a *Authenticator) report(ctx *core.ActorContext) {
	n := a.authority.Counts()

	ctx.LogInfo("security report", "registered", n.Registered, "verified", n.Verified, "blacklisted", n.Blacklisted)
}
