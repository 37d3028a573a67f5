package core

import "time"

// Behavior is a unit of logic attached to an actor. Concrete behaviors are
// either ReactiveBehavior or PeriodicBehavior.
type Behavior interface {
	Name() string
}

// ReactiveBehavior handles mailbox messages accepted by its Filter. When no
// message matches, the behavior is suspended until new mail arrives.
type ReactiveBehavior interface {
	Behavior
	Filter() Filter
	Handle(ctx *ActorContext, msg Message)
}

// PeriodicBehavior fires once per Interval regardless of mailbox state.
type PeriodicBehavior interface {
	Behavior
	Interval() time.Duration
	Tick(ctx *ActorContext)
}
