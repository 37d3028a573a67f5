package notify

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/hupe1980/agentmarket/agent"
	"github.com/hupe1980/agentmarket/core"
	"github.com/hupe1980/agentmarket/protocol"
)

// Behavior names.
const (
	BehaviorSubscriptions = "manage-subscriptions"
	BehaviorBroadcast     = "send-notifications"
)

// Config configures a Notifier.
type Config struct {
	// Name is the actor address. Defaults to "notifier".
	Name string
}

// Notifier fans BROADCAST events out to the actors subscribed to them.
type Notifier struct {
	agent.BaseActor

	subs map[string]mapset.Set[core.Address]
}

// New creates a notification service.
func New(cfg Config) *Notifier {
	if cfg.Name == "" {
		cfg.Name = "notifier"
	}

	n := &Notifier{
		BaseActor: agent.NewBaseActor(cfg.Name, "notifier"),
		subs:      make(map[string]mapset.Set[core.Address]),
	}

	n.Offer(protocol.ServiceNotification, protocol.NameNotification)
	n.AddBehavior(
		agent.NewReactive(BehaviorSubscriptions, core.MatchAny(
			core.MatchAll(core.MatchIntent(core.Subscribe), core.MatchKind(protocol.KindSubscribe)),
			core.MatchAll(core.MatchIntent(core.Request), core.MatchKind(protocol.KindUnsubscribe)),
		), n.subscription),
		agent.NewReactive(BehaviorBroadcast, core.MatchAll(
			core.MatchIntent(core.Inform),
			core.MatchKind(protocol.KindBroadcast),
		), n.broadcast),
	)

	return n
}

// Subscribers returns the subscribers of event in sorted order.
func (n *Notifier) Subscribers(event string) []core.Address {
	set, ok := n.subs[event]
	if !ok {
		return nil
	}

	out := set.ToSlice()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

func (n *Notifier) subscription(ctx *core.ActorContext, msg core.Message) {
	event, err := msg.Payload.String(protocol.KeyEvent)
	if err != nil {
		ctx.LogMalformed(msg, err)
		return
	}

	if msg.Kind == protocol.KindUnsubscribe {
		if set, ok := n.subs[event]; ok {
			set.Remove(msg.Sender)
		}

		ctx.Reply(msg, core.Agree, protocol.KindUnsubscribed, core.Payload{protocol.KeyEvent: event})

		return
	}

	set, ok := n.subs[event]
	if !ok {
		set = mapset.NewThreadUnsafeSet[core.Address]()
		n.subs[event] = set
	}

	if set.Add(msg.Sender) {
		ctx.LogDebug("subscribed", "event", event, "subscriber", msg.Sender.String())
	}

	ctx.Reply(msg, core.Agree, protocol.KindSubscribed, core.Payload{protocol.KeyEvent: event})
}

func (n *Notifier) broadcast(ctx *core.ActorContext, msg core.Message) {
	event, err := msg.Payload.String(protocol.KeyEvent)
	if err != nil {
		ctx.LogMalformed(msg, err)
		return
	}

	subs := n.Subscribers(event)

	receivers := make([]core.Address, 0, len(subs))
	for _, s := range subs {
		if s != msg.Sender {
			receivers = append(receivers, s)
		}
	}

	if len(receivers) == 0 {
		return
	}

	ctx.Send(core.Inform, protocol.KindNotification, core.Payload{
		protocol.KeyEvent: event,
		protocol.KeyText:  msg.Payload.StringOr(protocol.KeyText, ""),
	}, receivers...)

	ctx.LogDebug("notification sent", "event", event, "subscribers", len(receivers))
}
