package bidder

import "time"

// Strategy kinds.
const (
	KindAggressive   = "aggressive"
	KindConservative = "conservative"
	KindAdaptive     = "adaptive"
)

// Order is a bid a strategy wants placed.
type Order struct {
	Item   string
	Amount float64
}

// Strategy is a pure bidding policy. It sees only the tracked auctions the
// bidder hands it and never talks to other actors.
type Strategy interface {
	// Kind names the strategy for logs and the presentation layer.
	Kind() string
	// ServiceName is the name registered under bidder-service.
	ServiceName() string
	// Decide returns the bids to place now.
	Decide(now time.Time, budget float64, tracks []*Track) []Order
}

// Learner is implemented by strategies that refit a model on their own
// period, separate from the decision tick.
type Learner interface {
	Learn(tracks []*Track)
}

// Aggressive outbids every tracked auction by a fixed factor while the bid
// stays under a share of the budget.
type Aggressive struct {
	Factor float64
	Cap    float64
}

// NewAggressive returns the reference policy: price × 1.2 up to 80% of the
// budget.
func NewAggressive() *Aggressive { return &Aggressive{Factor: 1.2, Cap: 0.8} }

func (s *Aggressive) Kind() string        { return KindAggressive }
func (s *Aggressive) ServiceName() string { return "aggressive-bidder" }

func (s *Aggressive) Decide(_ time.Time, budget float64, tracks []*Track) []Order {
	var orders []Order

	for _, t := range tracks {
		if bid := t.Price * s.Factor; bid <= budget*s.Cap {
			orders = append(orders, Order{Item: t.Item, Amount: bid})
		}
	}

	return orders
}

// Conservative snipes: it only bids on auctions that have been quiet for
// at least Window.
type Conservative struct {
	Window time.Duration
	Factor float64
	Cap    float64
}

// NewConservative returns the reference policy with the given quiet window:
// price × 1.05 up to 40% of the budget.
func NewConservative(window time.Duration) *Conservative {
	return &Conservative{Window: window, Factor: 1.05, Cap: 0.4}
}

func (s *Conservative) Kind() string        { return KindConservative }
func (s *Conservative) ServiceName() string { return "conservative-bidder" }

func (s *Conservative) Decide(now time.Time, budget float64, tracks []*Track) []Order {
	var orders []Order

	for _, t := range tracks {
		if now.Sub(t.LastUpdate) < s.Window {
			continue
		}

		if bid := t.Price * s.Factor; bid <= budget*s.Cap {
			orders = append(orders, Order{Item: t.Item, Amount: bid})
		}
	}

	return orders
}

// Adaptive learns a ceiling price per auction from its price history and
// bids only while there is headroom under that ceiling.
type Adaptive struct {
	Factor     float64
	Cap        float64
	Margin     float64
	Horizon    float64
	MinHistory int

	ceilings map[string]float64
}

// NewAdaptive returns the reference policy: bid price × 1.08 when the
// projected ceiling is under 60% of the budget and the bid stays under 90%
// of the ceiling. The ceiling projects the average growth three steps ahead
// once three prices are known.
func NewAdaptive() *Adaptive {
	return &Adaptive{
		Factor:     1.08,
		Cap:        0.6,
		Margin:     0.9,
		Horizon:    3,
		MinHistory: 3,
		ceilings:   make(map[string]float64),
	}
}

func (s *Adaptive) Kind() string        { return KindAdaptive }
func (s *Adaptive) ServiceName() string { return "intelligent-bidder" }

// Learn recomputes the ceiling of every track with enough history and
// forgets auctions that are no longer tracked.
func (s *Adaptive) Learn(tracks []*Track) {
	next := make(map[string]float64, len(tracks))

	for _, t := range tracks {
		if len(t.History) < s.MinHistory {
			if c, ok := s.ceilings[t.Item]; ok {
				next[t.Item] = c
			}

			continue
		}

		next[t.Item] = t.History[len(t.History)-1] * (1 + s.Horizon*AverageGrowth(t.History))
	}

	s.ceilings = next
}

// Ceiling returns the learned ceiling of item.
func (s *Adaptive) Ceiling(item string) (float64, bool) {
	c, ok := s.ceilings[item]
	return c, ok
}

func (s *Adaptive) Decide(_ time.Time, budget float64, tracks []*Track) []Order {
	var orders []Order

	for _, t := range tracks {
		ceiling, ok := s.ceilings[t.Item]
		if !ok || ceiling >= budget*s.Cap {
			continue
		}

		if bid := t.Price * s.Factor; bid < ceiling*s.Margin {
			orders = append(orders, Order{Item: t.Item, Amount: bid})
		}
	}

	return orders
}

// AverageGrowth returns the mean relative step between consecutive prices.
// It is 0 for fewer than two prices.
func AverageGrowth(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}

	var total float64

	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}

		total += (prices[i] - prices[i-1]) / prices[i-1]
	}

	return total / float64(len(prices)-1)
}

var (
	_ Strategy = (*Aggressive)(nil)
	_ Strategy = (*Conservative)(nil)
	_ Strategy = (*Adaptive)(nil)
	_ Learner  = (*Adaptive)(nil)
)
