package bidder

import (
	"slices"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
)

// Track is a bidder's view of one auction, built only from broadcasts and
// replies it received.
type Track struct {
	Item       string
	Name       string
	Price      float64
	EndTime    time.Time
	LastUpdate time.Time
	History    []float64
	Leading    bool
}

// Live reports whether the auction can still take bids at now, as far as
// the bidder knows.
func (t *Track) Live(now time.Time) bool {
	return t.EndTime.IsZero() || now.Before(t.EndTime)
}

// Book holds the tracked auctions of one bidder. Closed and unknown
// auctions are remembered so that late broadcasts do not revive them.
type Book struct {
	tracks  map[string]*Track
	order   []string
	ignored mapset.Set[string]
}

// NewBook creates an empty book.
func NewBook() *Book {
	return &Book{
		tracks:  make(map[string]*Track),
		ignored: mapset.NewThreadUnsafeSet[string](),
	}
}

// Open starts tracking an announced auction. It returns false for an
// ignored or already tracked item.
func (b *Book) Open(item, name string, price float64, end, at time.Time) bool {
	if b.ignored.Contains(item) {
		return false
	}

	if _, ok := b.tracks[item]; ok {
		return false
	}

	b.tracks[item] = &Track{
		Item:       item,
		Name:       name,
		Price:      price,
		EndTime:    end,
		LastUpdate: at,
		History:    []float64{price},
	}
	b.order = append(b.order, item)

	return true
}

// Update records a price seen in a broadcast. An unknown item is tracked
// from this point on. Updates that do not raise the price are ignored.
func (b *Book) Update(item string, price float64, at time.Time) bool {
	if b.ignored.Contains(item) {
		return false
	}

	t, ok := b.tracks[item]
	if !ok {
		b.tracks[item] = &Track{Item: item, Price: price, LastUpdate: at, History: []float64{price}}
		b.order = append(b.order, item)

		return true
	}

	if price <= t.Price {
		return false
	}

	t.Price = price
	t.LastUpdate = at
	t.Leading = false
	t.History = append(t.History, price)

	return true
}

// Lead marks item as led by this bidder at price.
func (b *Book) Lead(item string, price float64, at time.Time) {
	t, ok := b.tracks[item]
	if !ok || price < t.Price {
		return
	}

	if price > t.Price {
		t.Price = price
		t.History = append(t.History, price)
	}

	t.LastUpdate = at
	t.Leading = true
}

// Close stops tracking item for good.
func (b *Book) Close(item string) {
	b.ignored.Add(item)

	if _, ok := b.tracks[item]; !ok {
		return
	}

	delete(b.tracks, item)
	b.order = slices.DeleteFunc(b.order, func(id string) bool { return id == item })
}

// Get returns the track of item.
func (b *Book) Get(item string) (*Track, bool) {
	t, ok := b.tracks[item]
	return t, ok
}

// Ignored reports whether item was closed.
func (b *Book) Ignored(item string) bool { return b.ignored.Contains(item) }

// Len returns the number of tracked auctions.
func (b *Book) Len() int { return len(b.tracks) }

// Tracks returns the tracked auctions in discovery order.
func (b *Book) Tracks() []*Track {
	out := make([]*Track, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.tracks[id])
	}

	return out
}

// Biddable returns the live auctions this bidder is not leading.
func (b *Book) Biddable(now time.Time) []*Track {
	var out []*Track

	for _, t := range b.Tracks() {
		if !t.Leading && t.Live(now) {
			out = append(out, t)
		}
	}

	return out
}
