package registry

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/hupe1980/agentmarket/core"
)

// ErrInvalidDescriptor is returned when a descriptor lacks a type or owner.
var ErrInvalidDescriptor = errors.New("invalid service descriptor")

// InMemoryDirectory is a volatile core.Directory storing descriptors in
// registration order. It is safe for concurrent access; every operation holds
// the lock for its full duration, so Deregister removes all of an owner's
// descriptors atomically with respect to Lookup. Returned slices are copies.
type InMemoryDirectory struct {
	mu     sync.RWMutex
	byType map[string][]core.ServiceDescriptor
}

// NewInMemoryDirectory constructs an empty directory.
func NewInMemoryDirectory() *InMemoryDirectory {
	return &InMemoryDirectory{byType: make(map[string][]core.ServiceDescriptor)}
}

var _ core.Directory = (*InMemoryDirectory)(nil)

// Register adds desc. Registering an identical descriptor twice is a no-op.
func (d *InMemoryDirectory) Register(desc core.ServiceDescriptor) error {
	if desc.Type == "" || desc.Owner == "" {
		return fmt.Errorf("%w: type=%q owner=%q", ErrInvalidDescriptor, desc.Type, desc.Owner)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if slices.Contains(d.byType[desc.Type], desc) {
		return nil
	}

	d.byType[desc.Type] = append(d.byType[desc.Type], desc)

	return nil
}

// Deregister removes every descriptor owned by owner and returns how many
// were removed.
func (d *InMemoryDirectory) Deregister(owner core.Address) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	removed := 0

	for typ, descs := range d.byType {
		kept := slices.DeleteFunc(slices.Clone(descs), func(sd core.ServiceDescriptor) bool {
			return sd.Owner == owner
		})
		removed += len(descs) - len(kept)

		if len(kept) == 0 {
			delete(d.byType, typ)
		} else {
			d.byType[typ] = kept
		}
	}

	return removed
}

// Lookup returns the providers of serviceType in registration order. A miss
// returns an empty slice.
func (d *InMemoryDirectory) Lookup(serviceType string) []core.ServiceDescriptor {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return slices.Clone(d.byType[serviceType])
}

// Services returns every descriptor owned by owner.
func (d *InMemoryDirectory) Services(owner core.Address) []core.ServiceDescriptor {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []core.ServiceDescriptor

	for _, descs := range d.byType {
		for _, sd := range descs {
			if sd.Owner == owner {
				out = append(out, sd)
			}
		}
	}

	slices.SortFunc(out, func(a, b core.ServiceDescriptor) int {
		if a.Type < b.Type {
			return -1
		}
		if a.Type > b.Type {
			return 1
		}
		return 0
	})

	return out
}

// Count returns the number of providers of serviceType.
func (d *InMemoryDirectory) Count(serviceType string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.byType[serviceType])
}
