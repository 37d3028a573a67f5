package agent

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/hupe1980/agentmarket/core"
)

// Service is a capability an actor publishes to the directory at setup.
type Service struct {
	Type string
	Name string
}

// BaseActor bundles identity, advertised services, behavior registration and
// lifecycle bookkeeping. Embed it in concrete actors and register behaviors
// in the constructor; override Setup/Teardown when extra work is needed and
// call the embedded implementation first.
type BaseActor struct {
	name      string
	kind      string
	services  []Service
	behaviors []core.Behavior

	mu      sync.Mutex
	running bool
}

// NewBaseActor constructs a BaseActor with the given address name and kind.
func NewBaseActor(name, kind string) BaseActor {
	return BaseActor{name: name, kind: kind}
}

// Name returns the actor name, which becomes its address.
func (b *BaseActor) Name() string { return b.name }

// Kind returns the actor kind used for logging and metrics.
func (b *BaseActor) Kind() string { return b.kind }

// Offer declares a service to register at setup.
func (b *BaseActor) Offer(serviceType, serviceName string) {
	b.services = append(b.services, Service{Type: serviceType, Name: serviceName})
}

// Services returns the declared services.
func (b *BaseActor) Services() []Service { return slices.Clone(b.services) }

// AddBehavior attaches behaviors. It must be called before the actor is spawned.
func (b *BaseActor) AddBehavior(bs ...core.Behavior) {
	b.behaviors = append(b.behaviors, bs...)
}

// Behaviors returns the attached behaviors.
func (b *BaseActor) Behaviors() []core.Behavior { return slices.Clone(b.behaviors) }

// Running reports whether Setup completed and Teardown has not run yet.
func (b *BaseActor) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.running
}

// Setup registers every declared service. It fails if the actor is already
// running or a registration is rejected.
func (b *BaseActor) Setup(ctx *core.ActorContext) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return errors.New("actor is already running")
	}

	for _, s := range b.services {
		if err := ctx.Register(s.Type, s.Name); err != nil {
			return fmt.Errorf("register %s: %w", s.Type, err)
		}
	}

	b.running = true

	return nil
}

// Teardown marks the actor as stopped. It returns an error if the actor was
// not running.
func (b *BaseActor) Teardown(_ *core.ActorContext) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return errors.New("actor is not running")
	}

	b.running = false

	return nil
}
