package logistics

import (
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/agentmarket/agent"
	"github.com/hupe1980/agentmarket/core"
	"github.com/hupe1980/agentmarket/protocol"
)

// Behavior names.
const (
	BehaviorDelivery = "handle-delivery"
	BehaviorTrack    = "update-deliveries"
)

// Status is the state of a delivery.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusInTransit Status = "IN_TRANSIT"
	StatusDelivered Status = "DELIVERED"
)

// Delivery is one shipment from the marketplace to a buyer.
type Delivery struct {
	Tracking string
	Item     string
	Buyer    core.Address
	Cost     float64
	ETA      time.Time
	Status   Status
}

// Config configures a Logistics actor.
type Config struct {
	// Name is the actor address. Defaults to "logistics".
	Name string

	// UpdateEvery is the period of the delivery tracking tick.
	// Defaults to 6s.
	UpdateEvery time.Duration

	// TransitProbability is the chance per tick that a pending delivery
	// ships. Defaults to 0.3.
	TransitProbability float64

	// MinCost and MaxCost bound the shipping cost. Default to [10,50).
	MinCost float64
	MaxCost float64

	// MinETA and MaxETA bound the time until arrival. Default to [20s,70s).
	MinETA time.Duration
	MaxETA time.Duration

	// Rand returns a number in [0,1). Defaults to math/rand/v2.
	Rand func() float64

	// NewTracking generates tracking numbers.
	NewTracking func() string
}

func (c *Config) defaults() {
	if c.Name == "" {
		c.Name = "logistics"
	}
	if c.UpdateEvery <= 0 {
		c.UpdateEvery = 6 * time.Second
	}
	if c.TransitProbability <= 0 || c.TransitProbability > 1 {
		c.TransitProbability = 0.3
	}
	if c.MaxCost <= c.MinCost {
		c.MinCost, c.MaxCost = 10, 50
	}
	if c.MaxETA <= c.MinETA {
		c.MinETA, c.MaxETA = 20*time.Second, 70*time.Second
	}
	if c.Rand == nil {
		c.Rand = rand.Float64
	}
	if c.NewTracking == nil {
		c.NewTracking = trackingNumber
	}
}

func trackingNumber() string {
	return "TRK-" + strings.ToUpper(uuid.NewString()[:8])
}

// Logistics ships won items to their buyers.
type Logistics struct {
	agent.BaseActor

	cfg        Config
	deliveries map[string]*Delivery
}

// New creates a logistics actor.
func New(cfg Config) *Logistics {
	cfg.defaults()

	l := &Logistics{
		BaseActor:  agent.NewBaseActor(cfg.Name, "logistics"),
		cfg:        cfg,
		deliveries: make(map[string]*Delivery),
	}

	l.Offer(protocol.ServiceLogistics, protocol.NameLogistics)
	l.AddBehavior(
		agent.NewReactive(BehaviorDelivery, core.MatchAll(
			core.MatchIntent(core.Request),
			core.MatchKind(protocol.KindArrangeDelivery),
		), l.arrange),
		agent.NewPeriodic(BehaviorTrack, cfg.UpdateEvery, l.track),
	)

	return l
}

// Deliveries returns copies of all deliveries ordered by tracking number.
func (l *Logistics) Deliveries() []Delivery {
	out := make([]Delivery, 0, len(l.deliveries))
	for _, d := range l.deliveries {
		out = append(out, *d)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Tracking < out[j].Tracking })

	return out
}

func (l *Logistics) arrange(ctx *core.ActorContext, msg core.Message) {
	item, err := msg.Payload.String(protocol.KeyItem)
	if err != nil {
		ctx.LogMalformed(msg, err)
		return
	}

	buyer, err := msg.Payload.Address(protocol.KeyBuyer)
	if err != nil {
		ctx.LogMalformed(msg, err)
		return
	}

	eta := l.cfg.MinETA + time.Duration(l.cfg.Rand()*float64(l.cfg.MaxETA-l.cfg.MinETA))

	d := &Delivery{
		Tracking: l.cfg.NewTracking(),
		Item:     item,
		Buyer:    buyer,
		Cost:     l.cfg.MinCost + l.cfg.Rand()*(l.cfg.MaxCost-l.cfg.MinCost),
		ETA:      ctx.Now().Add(eta),
		Status:   StatusPending,
	}
	l.deliveries[d.Tracking] = d

	ctx.LogInfo("delivery arranged", "item", item, "buyer", buyer.String(), "tracking", d.Tracking)
	ctx.Reply(msg, core.Inform, protocol.KindDeliveryArranged, core.Payload{
		protocol.KeyItem:     item,
		protocol.KeyBuyer:    buyer,
		protocol.KeyTracking: d.Tracking,
		protocol.KeyCost:     d.Cost,
		protocol.KeyETA:      d.ETA,
	})
}

// track advances every delivery by at most one state per tick.
func (l *Logistics) track(ctx *core.ActorContext) {
	now := ctx.Now()

	for _, d := range l.Deliveries() {
		cur := l.deliveries[d.Tracking]

		switch cur.Status {
		case StatusPending:
			if l.cfg.Rand() < l.cfg.TransitProbability {
				cur.Status = StatusInTransit
				ctx.LogDebug("delivery in transit", "tracking", cur.Tracking)
			}
		case StatusInTransit:
			if now.Before(cur.ETA) {
				continue
			}

			cur.Status = StatusDelivered
			ctx.Send(core.Inform, protocol.KindItemDelivered, core.Payload{
				protocol.KeyItem:     cur.Item,
				protocol.KeyTracking: cur.Tracking,
			}, cur.Buyer)
			ctx.LogInfo("item delivered", "item", cur.Item, "buyer", cur.Buyer.String())
		}
	}
}
