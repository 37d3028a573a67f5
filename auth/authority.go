package auth

import (
	"errors"
	"fmt"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/hupe1980/agentmarket/core"
)

var (
	// ErrBlacklisted is returned for any request of a blacklisted actor.
	ErrBlacklisted = errors.New("blacklisted")
	// ErrNotRegistered is returned when verifying an unknown actor.
	ErrNotRegistered = errors.New("not registered")
	// ErrRoleMismatch is returned when the verified role differs from the
	// registered one.
	ErrRoleMismatch = errors.New("role mismatch")
)

// State is the authentication state of an actor.
type State string

const (
	StateUnknown     State = "UNKNOWN"
	StateRegistered  State = "REGISTERED"
	StateVerified    State = "VERIFIED"
	StateBlacklisted State = "BLACKLISTED"
)

// Credentials are the registration record of one actor.
type Credentials struct {
	Owner        core.Address
	Role         string
	Verified     bool
	RegisteredAt time.Time
}

// Counts summarizes an Authority.
type Counts struct {
	Registered  int
	Verified    int
	Blacklisted int
}

// Authority is the authentication state machine:
//
//	UNKNOWN → REGISTERED → VERIFIED
//	UNKNOWN/REGISTERED → BLACKLISTED after maxAttempts failed verifications
//
// Blacklisting is permanent. An Authority is owned by one actor and is not
// safe for concurrent use.
type Authority struct {
	maxAttempts int
	creds       map[core.Address]*Credentials
	failures    map[core.Address]int
	blacklist   mapset.Set[core.Address]
}

// NewAuthority creates an Authority that blacklists on the maxAttempts-th
// failed verification. Values below 1 default to 3.
func NewAuthority(maxAttempts int) *Authority {
	if maxAttempts < 1 {
		maxAttempts = 3
	}

	return &Authority{
		maxAttempts: maxAttempts,
		creds:       make(map[core.Address]*Credentials),
		failures:    make(map[core.Address]int),
		blacklist:   mapset.NewThreadUnsafeSet[core.Address](),
	}
}

// Register records owner with role. Registering again replaces the record
// and drops any earlier verification.
func (a *Authority) Register(owner core.Address, role string, now time.Time) (Credentials, error) {
	if a.blacklist.Contains(owner) {
		return Credentials{}, fmt.Errorf("%w: %s", ErrBlacklisted, owner)
	}

	c := &Credentials{Owner: owner, Role: role, RegisteredAt: now}
	a.creds[owner] = c

	return *c, nil
}

// Verify marks owner verified. An empty role matches any registered role.
// On failure it returns the number of failed attempts so far; the
// maxAttempts-th failure blacklists owner.
func (a *Authority) Verify(owner core.Address, role string) (int, error) {
	if a.blacklist.Contains(owner) {
		return a.failures[owner], fmt.Errorf("%w: %s", ErrBlacklisted, owner)
	}

	c, ok := a.creds[owner]

	var err error

	switch {
	case !ok:
		err = fmt.Errorf("%w: %s", ErrNotRegistered, owner)
	case role != "" && role != c.Role:
		err = fmt.Errorf("%w: %s is %s, not %s", ErrRoleMismatch, owner, c.Role, role)
	default:
		c.Verified = true
		delete(a.failures, owner)

		return 0, nil
	}

	a.failures[owner]++

	attempts := a.failures[owner]
	if attempts >= a.maxAttempts {
		a.blacklist.Add(owner)
		delete(a.creds, owner)
	}

	return attempts, err
}

// Permitted reports whether owner is registered, verified and not
// blacklisted.
func (a *Authority) Permitted(owner core.Address) bool {
	if a.blacklist.Contains(owner) {
		return false
	}

	c, ok := a.creds[owner]

	return ok && c.Verified
}

// State returns the state of owner.
func (a *Authority) State(owner core.Address) State {
	if a.blacklist.Contains(owner) {
		return StateBlacklisted
	}

	c, ok := a.creds[owner]

	switch {
	case !ok:
		return StateUnknown
	case c.Verified:
		return StateVerified
	default:
		return StateRegistered
	}
}

// Credentials returns the record of owner.
func (a *Authority) Credentials(owner core.Address) (Credentials, bool) {
	c, ok := a.creds[owner]
	if !ok {
		return Credentials{}, false
	}

	return *c, true
}

// Blacklisted returns the blacklisted actors in sorted order.
func (a *Authority) Blacklisted() []core.Address {
	out := a.blacklist.ToSlice()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// Counts returns the registered, verified and blacklisted totals.
func (a *Authority) Counts() Counts {
	n := Counts{Registered: len(a.creds), Blacklisted: a.blacklist.Cardinality()}

	for _, c := range a.creds {
		if c.Verified {
			n.Verified++
		}
	}

	return n
}
