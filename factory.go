package agentmarket

import (
	"errors"
	"fmt"

	"github.com/hupe1980/agentmarket/auction"
	"github.com/hupe1980/agentmarket/auth"
	"github.com/hupe1980/agentmarket/bank"
	"github.com/hupe1980/agentmarket/bidder"
	"github.com/hupe1980/agentmarket/coalition"
	"github.com/hupe1980/agentmarket/core"
	"github.com/hupe1980/agentmarket/logistics"
	"github.com/hupe1980/agentmarket/monitor"
	"github.com/hupe1980/agentmarket/notify"
	"github.com/hupe1980/agentmarket/regulator"
)

var (
	// ErrUnknownKind is returned by Spawn for a kind outside the closed set.
	ErrUnknownKind = errors.New("unknown actor kind")
	// ErrConfigMismatch is returned by Spawn when cfg is not the config type
	// of the requested kind.
	ErrConfigMismatch = errors.New("config type does not match kind")
)

// Kind names one of the marketplace actor types.
type Kind string

const (
	KindAuctioneer    Kind = "auctioneer"
	KindBidder        Kind = "bidder"
	KindBank          Kind = "bank"
	KindAuthenticator Kind = "authenticator"
	KindRegulator     Kind = "regulator"
	KindCoalition     Kind = "coalition"
	KindMonitor       Kind = "monitor"
	KindAnalyst       Kind = "analyst"
	KindNotifier      Kind = "notifier"
	KindLogistics     Kind = "logistics"
)

// Kinds lists every kind accepted by Spawn.
var Kinds = []Kind{
	KindAuctioneer, KindBidder, KindBank, KindAuthenticator, KindRegulator,
	KindCoalition, KindMonitor, KindAnalyst, KindNotifier, KindLogistics,
}

// Spawn creates an actor of the given kind and starts it on the engine.
//
// cfg must be the config type of the kind's package (auction.Config for
// KindAuctioneer, monitor.AnalystConfig for KindAnalyst, and so on), a
// pointer to it, or nil for the package defaults.
func (m *Market) Spawn(kind Kind, cfg any) (core.Address, error) {
	a, err := build(kind, cfg)
	if err != nil {
		return "", err
	}

	addr, err := m.engine.Spawn(a)
	if err != nil {
		return "", fmt.Errorf("spawn %s: %w", kind, err)
	}

	m.track(addr, a)

	return addr, nil
}

func build(kind Kind, cfg any) (core.Actor, error) {
	switch kind {
	case KindAuctioneer:
		c, err := configAs[auction.Config](kind, cfg)
		if err != nil {
			return nil, err
		}
		return auction.New(c), nil
	case KindBidder:
		c, err := configAs[bidder.Config](kind, cfg)
		if err != nil {
			return nil, err
		}
		return bidder.New(c), nil
	case KindBank:
		c, err := configAs[bank.Config](kind, cfg)
		if err != nil {
			return nil, err
		}
		return bank.New(c), nil
	case KindAuthenticator:
		c, err := configAs[auth.Config](kind, cfg)
		if err != nil {
			return nil, err
		}
		return auth.New(c), nil
	case KindRegulator:
		c, err := configAs[regulator.Config](kind, cfg)
		if err != nil {
			return nil, err
		}
		return regulator.New(c), nil
	case KindCoalition:
		c, err := configAs[coalition.Config](kind, cfg)
		if err != nil {
			return nil, err
		}
		return coalition.New(c), nil
	case KindMonitor:
		c, err := configAs[monitor.Config](kind, cfg)
		if err != nil {
			return nil, err
		}
		return monitor.New(c), nil
	case KindAnalyst:
		c, err := configAs[monitor.AnalystConfig](kind, cfg)
		if err != nil {
			return nil, err
		}
		a, err := monitor.NewAnalyst(c)
		if err != nil {
			return nil, fmt.Errorf("spawn %s: %w", kind, err)
		}
		return a, nil
	case KindNotifier:
		c, err := configAs[notify.Config](kind, cfg)
		if err != nil {
			return nil, err
		}
		return notify.New(c), nil
	case KindLogistics:
		c, err := configAs[logistics.Config](kind, cfg)
		if err != nil {
			return nil, err
		}
		return logistics.New(c), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func configAs[T any](kind Kind, cfg any) (T, error) {
	var zero T

	switch c := cfg.(type) {
	case nil:
		return zero, nil
	case T:
		return c, nil
	case *T:
		if c == nil {
			return zero, nil
		}
		return *c, nil
	default:
		return zero, fmt.Errorf("%w: %s expects %T, got %T", ErrConfigMismatch, kind, zero, cfg)
	}
}
