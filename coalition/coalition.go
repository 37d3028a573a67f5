package coalition

import (
	"errors"
	"fmt"

	"github.com/hupe1980/agentmarket/core"
)

var (
	// ErrNoTarget is returned when a group bid is requested before a target
	// item was set.
	ErrNoTarget = errors.New("coalition has no target")
	// ErrInvalidContribution is returned for a non-positive contribution.
	ErrInvalidContribution = errors.New("invalid contribution")
)

// Member is one participant of a coalition.
type Member struct {
	Address      core.Address
	Contribution float64
}

// Coalition is a group pooling budget to bid as one party. Coalitions are
// never dissolved.
type Coalition struct {
	ID      string
	Members []Member
	Pooled  float64
	Target  string
}

// Join adds a member. The pooled budget grows by contribution. A member may
// join more than once; each contribution counts.
func (c *Coalition) Join(member core.Address, contribution float64) error {
	if contribution <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidContribution, contribution)
	}

	c.Members = append(c.Members, Member{Address: member, Contribution: contribution})
	c.Pooled += contribution

	return nil
}

// GroupBid returns the amount to offer for the target: the pooled budget
// scaled by factor.
func (c *Coalition) GroupBid(factor float64) (float64, error) {
	if c.Target == "" {
		return 0, fmt.Errorf("%w: %s", ErrNoTarget, c.ID)
	}

	return c.Pooled * factor, nil
}
