package journal

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/agentmarket/core"
)

func TestInMemoryStore_AppendAssignsSequence(t *testing.T) {
	s := NewInMemoryStore(0)

	e1, err := s.Append("bids", core.Entry{Kind: "BID", Content: "a"})
	require.NoError(t, err)
	e2, err := s.Append("bids", core.Entry{Kind: "BID", Content: "b"})
	require.NoError(t, err)
	other, err := s.Append("wins", core.Entry{Kind: "WIN", Content: "c"})
	require.NoError(t, err)

	assert.Equal(t, 1, e1.Seq)
	assert.Equal(t, 2, e2.Seq)
	assert.Equal(t, 1, other.Seq)
	assert.Equal(t, []string{"bids", "wins"}, s.Streams())
}

func TestInMemoryStore_RecentAndLimit(t *testing.T) {
	s := NewInMemoryStore(3)
	for i := 0; i < 5; i++ {
		_, _ = s.Append("log", core.Entry{Content: fmt.Sprintf("entry-%d", i)})
	}

	assert.Equal(t, 3, s.Len("log"))

	recent := s.Recent("log", 2)
	require.Len(t, recent, 2)
	assert.Equal(t, "entry-3", recent[0].Content)
	assert.Equal(t, "entry-4", recent[1].Content)
	assert.Equal(t, 5, recent[1].Seq)

	assert.Len(t, s.Recent("log", 0), 3)
	assert.Empty(t, s.Recent("missing", 5))
}

func TestInMemoryStore_SearchNewestFirst(t *testing.T) {
	s := NewInMemoryStore(0)
	_, _ = s.Append("v", core.Entry{Kind: "FALSE_BID", Content: "first"})
	_, _ = s.Append("v", core.Entry{Kind: "COLLUSION", Content: "second"})
	_, _ = s.Append("v", core.Entry{Kind: "FALSE_BID", Content: "third"})

	res := s.Search("v", "false_bid", 10)
	require.Len(t, res, 2)
	assert.Equal(t, "third", res[0].Content)

	assert.Len(t, s.Search("v", "", 2), 2)
	assert.Empty(t, s.Search("v", "nothing", 10))
}

func TestInMemoryStore_CopyIsolation(t *testing.T) {
	s := NewInMemoryStore(0)
	md := map[string]any{"k": "v"}
	_, _ = s.Append("x", core.Entry{Content: "c", Metadata: md})
	md["k"] = "changed"

	got := s.Recent("x", 1)
	require.Len(t, got, 1)
	assert.Equal(t, "v", got[0].Metadata["k"])

	got[0].Metadata["k"] = "mutated"
	assert.Equal(t, "v", s.Recent("x", 1)[0].Metadata["k"])
}

func TestInMemoryStore_ConcurrentAppend(t *testing.T) {
	s := NewInMemoryStore(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Append("c", core.Entry{Content: "x"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, s.Len("c"))
	recent := s.Recent("c", 1)
	assert.Equal(t, 50, recent[0].Seq)
}
