package regulator

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/hupe1980/agentmarket/agent"
	"github.com/hupe1980/agentmarket/core"
	"github.com/hupe1980/agentmarket/journal"
	"github.com/hupe1980/agentmarket/protocol"
)

// Behavior names.
const (
	BehaviorCompliance = "monitor-compliance"
	BehaviorDisputes   = "handle-disputes"
	BehaviorEnforce    = "enforce-rules"
)

// StreamViolations is the journal stream holding the violation log.
const StreamViolations = "violations"

// VerdictShared is the dispute verdict when neither party has more points.
const VerdictShared = "SHARED_RESPONSIBILITY"

var severities = map[string]int{
	protocol.ViolationPriceManipulation: 5,
	protocol.ViolationLatePayment:       2,
	protocol.ViolationFalseBid:          3,
	protocol.ViolationCollusion:         10,
}

// Severity returns the penalty points of a violation type. Unknown types
// weigh 1.
func Severity(violationType string) int {
	if p, ok := severities[violationType]; ok {
		return p
	}
	return 1
}

// Verdict arbitrates a dispute: the party with strictly more points is at
// fault, otherwise responsibility is shared.
func Verdict(party1 core.Address, points1 int, party2 core.Address, points2 int) string {
	switch {
	case points1 > points2:
		return "FAULT_" + party1.String()
	case points2 > points1:
		return "FAULT_" + party2.String()
	default:
		return VerdictShared
	}
}

// Config configures a Regulator.
type Config struct {
	// Name is the actor address. Defaults to "regulator".
	Name string

	// ReportEvery is the enforcement report period. Defaults to 10s.
	ReportEvery time.Duration

	// Threshold is the point total above which every further violation
	// draws a fine. Defaults to 10.
	Threshold int

	// MinFine and MaxFine bound the random fine. Default to [100,500).
	MinFine float64
	MaxFine float64

	// Journal stores the violation log. Defaults to an in-memory store
	// capped at JournalLimit entries.
	Journal      core.Journal
	JournalLimit int

	// Rand returns a number in [0,1). Defaults to math/rand/v2.
	Rand func() float64
}

func (c *Config) defaults() {
	if c.Name == "" {
		c.Name = "regulator"
	}
	if c.ReportEvery <= 0 {
		c.ReportEvery = 10 * time.Second
	}
	if c.Threshold <= 0 {
		c.Threshold = 10
	}
	if c.MaxFine <= c.MinFine {
		c.MinFine, c.MaxFine = 100, 500
	}
	if c.Journal == nil {
		c.Journal = journal.NewInMemoryStore(c.JournalLimit)
	}
	if c.Rand == nil {
		c.Rand = rand.Float64
	}
}

// Regulator records violations, accrues penalty points, imposes fines and
// arbitrates disputes. Fines are recorded here only and never touch the
// bank.
type Regulator struct {
	agent.BaseActor

	cfg    Config
	points map[core.Address]int
	fines  map[core.Address]float64
}

// New creates a regulator.
func New(cfg Config) *Regulator {
	cfg.defaults()

	r := &Regulator{
		BaseActor: agent.NewBaseActor(cfg.Name, "regulator"),
		cfg:       cfg,
		points:    make(map[core.Address]int),
		fines:     make(map[core.Address]float64),
	}

	r.Offer(protocol.ServiceRegulator, protocol.NameRegulator)
	r.AddBehavior(
		agent.NewReactive(BehaviorCompliance, core.MatchAll(
			core.MatchIntent(core.Request, core.Inform),
			core.MatchKind(protocol.KindReportViolation),
		), r.report),
		agent.NewReactive(BehaviorDisputes, core.MatchAll(
			core.MatchIntent(core.Request),
			core.MatchKind(protocol.KindResolveDispute),
		), r.dispute),
		agent.NewPeriodic(BehaviorEnforce, cfg.ReportEvery, r.enforce),
	)

	return r
}

// Points returns the penalty points of actor.
func (r *Regulator) Points(actor core.Address) int { return r.points[actor] }

// Fines returns the total fines imposed on actor.
func (r *Regulator) Fines(actor core.Address) float64 { return r.fines[actor] }

// Journal returns the violation log.
func (r *Regulator) Journal() core.Journal { return r.cfg.Journal }

func (r *Regulator) report(ctx *core.ActorContext, msg core.Message) {
	v, err := protocol.ParseViolationReport(msg.Payload)
	if err != nil {
		ctx.LogMalformed(msg, err)
		return
	}

	severity := Severity(v.Type)
	r.points[v.Violator] += severity
	total := r.points[v.Violator]

	if _, err := r.cfg.Journal.Append(StreamViolations, core.Entry{
		Kind:    v.Type,
		Content: v.Description,
		Metadata: map[string]any{
			protocol.KeyViolator: v.Violator.String(),
			"reporter":           msg.Sender.String(),
			protocol.KeyPoints:   severity,
		},
		Timestamp: ctx.Now(),
	}); err != nil {
		ctx.LogError("journal append failed", "error", err)
	}

	ctx.LogInfo("violation recorded", "violator", v.Violator.String(), "type", v.Type, "points", total)
	ctx.Reply(msg, core.Inform, protocol.KindViolationRecorded, core.Payload{
		protocol.KeyViolator: v.Violator,
		protocol.KeyType:     v.Type,
		protocol.KeyPoints:   total,
	})

	if total > r.cfg.Threshold {
		r.sanction(ctx, v.Violator)
	}
}

func (r *Regulator) sanction(ctx *core.ActorContext, actor core.Address) {
	fine := r.cfg.MinFine + r.cfg.Rand()*(r.cfg.MaxFine-r.cfg.MinFine)
	r.fines[actor] += fine

	ctx.LogWarn("sanction imposed", "actor", actor.String(), "fine", fine, "points", r.points[actor])
	ctx.Observer.Log(fmt.Sprintf("%s fined %.2f", actor, fine), core.SeverityWarning)
	ctx.Send(core.Inform, protocol.KindSanctionImposed, core.Payload{
		protocol.KeyFine:   fine,
		protocol.KeyPoints: r.points[actor],
	}, actor)
}

func (r *Regulator) dispute(ctx *core.ActorContext, msg core.Message) {
	p1, err := msg.Payload.Address(protocol.KeyParty1)
	if err != nil {
		ctx.LogMalformed(msg, err)
		return
	}

	p2, err := msg.Payload.Address(protocol.KeyParty2)
	if err != nil {
		ctx.LogMalformed(msg, err)
		return
	}

	verdict := Verdict(p1, r.points[p1], p2, r.points[p2])

	ctx.LogInfo("dispute resolved", "party1", p1.String(), "party2", p2.String(), "verdict", verdict)
	ctx.Reply(msg, core.Inform, protocol.KindDisputeResolved, core.Payload{
		protocol.KeyParty1:  p1,
		protocol.KeyParty2:  p2,
		protocol.KeyVerdict: verdict,
	})
}

func (r *Regulator) enforce(ctx *core.ActorContext) {
	if len(r.points) == 0 {
		return
	}

	var total float64
	for _, f := range r.fines {
		total += f
	}

	for actor, p := range r.points {
		if p > r.cfg.Threshold/2 {
			ctx.LogWarn("actor under watch", "actor", actor.String(), "points", p)
		}
	}

	ctx.LogInfo("compliance report",
		"violations", r.cfg.Journal.Len(StreamViolations),
		"offenders", len(r.points),
		"fines", total,
	)
}
