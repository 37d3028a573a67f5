package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentmarket/core"
)

func TestInMemoryDirectory_RegisterLookupOrder(t *testing.T) {
	d := NewInMemoryDirectory()
	require.NoError(t, d.Register(core.ServiceDescriptor{Type: "bidder-service", Name: "aggressive-bidder", Owner: "b1"}))
	require.NoError(t, d.Register(core.ServiceDescriptor{Type: "bidder-service", Name: "conservative-bidder", Owner: "b2"}))
	require.NoError(t, d.Register(core.ServiceDescriptor{Type: "auction-service", Name: "auction", Owner: "a1"}))

	got := d.Lookup("bidder-service")
	require.Len(t, got, 2)
	assert.Equal(t, core.Address("b1"), got[0].Owner)
	assert.Equal(t, core.Address("b2"), got[1].Owner)
	assert.Equal(t, 1, d.Count("auction-service"))
}

func TestInMemoryDirectory_LookupMissIsEmpty(t *testing.T) {
	d := NewInMemoryDirectory()
	got := d.Lookup("auction-service")
	assert.Empty(t, got)
}

func TestInMemoryDirectory_RegisterIdempotentAndValidated(t *testing.T) {
	d := NewInMemoryDirectory()
	desc := core.ServiceDescriptor{Type: "bank-service", Name: "banking", Owner: "bank"}
	require.NoError(t, d.Register(desc))
	require.NoError(t, d.Register(desc))
	assert.Len(t, d.Lookup("bank-service"), 1)

	err := d.Register(core.ServiceDescriptor{Type: "", Owner: "x"})
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
	err = d.Register(core.ServiceDescriptor{Type: "t"})
	assert.ErrorIs(t, err, ErrInvalidDescriptor)
}

func TestInMemoryDirectory_DeregisterRemovesAllOwnerDescriptors(t *testing.T) {
	d := NewInMemoryDirectory()
	_ = d.Register(core.ServiceDescriptor{Type: "coalition-service", Name: "coalition", Owner: "c"})
	_ = d.Register(core.ServiceDescriptor{Type: "bidder-service", Name: "coalition", Owner: "c"})
	_ = d.Register(core.ServiceDescriptor{Type: "bidder-service", Name: "aggressive-bidder", Owner: "b"})

	assert.Len(t, d.Services("c"), 2)
	assert.Equal(t, 2, d.Deregister("c"))
	assert.Empty(t, d.Services("c"))
	assert.Empty(t, d.Lookup("coalition-service"))
	assert.Len(t, d.Lookup("bidder-service"), 1)
	assert.Equal(t, 0, d.Deregister("c"))
}

func TestInMemoryDirectory_LookupReturnsCopy(t *testing.T) {
	d := NewInMemoryDirectory()
	_ = d.Register(core.ServiceDescriptor{Type: "t", Name: "n", Owner: "o"})
	got := d.Lookup("t")
	got[0].Owner = "mutated"
	assert.Equal(t, core.Address("o"), d.Lookup("t")[0].Owner)
}

func TestInMemoryDirectory_Concurrent(t *testing.T) {
	d := NewInMemoryDirectory()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		owner := core.Address(fmt.Sprintf("b%d", i))
		go func() {
			defer wg.Done()
			_ = d.Register(core.ServiceDescriptor{Type: "bidder-service", Name: "bidder", Owner: owner})
		}()
		go func() {
			defer wg.Done()
			_ = d.Lookup("bidder-service")
		}()
	}
	wg.Wait()
	assert.Len(t, d.Lookup("bidder-service"), 20)
}
