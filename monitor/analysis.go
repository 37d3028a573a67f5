package monitor

import "math"

// Price trends.
const (
	TrendRising  = "RISING"
	TrendFalling = "FALLING"
	TrendStable  = "STABLE"
	TrendNeutral = "NEUTRAL"
)

// Recommendation actions.
const (
	ActionBuy     = "BUY"
	ActionWait    = "WAIT"
	ActionNeutral = "NEUTRAL"
)

// Analysis summarizes the price history of one item.
type Analysis struct {
	Points     int
	Average    float64
	Volatility float64
	Trend      string
}

// Analyze computes the average, the volatility (standard deviation over
// mean) and the trend of prices. The trend compares the mean of the last
// third with the mean of the first third: beyond ±10% it is rising or
// falling, otherwise stable. Fewer than three prices give a neutral trend.
func Analyze(prices []float64) Analysis {
	a := Analysis{Points: len(prices), Trend: TrendNeutral}
	if len(prices) == 0 {
		return a
	}

	a.Average = mean(prices)

	if a.Average != 0 {
		var variance float64
		for _, p := range prices {
			variance += (p - a.Average) * (p - a.Average)
		}

		a.Volatility = math.Sqrt(variance/float64(len(prices))) / a.Average
	}

	if n := len(prices); n >= 3 {
		first := mean(prices[:n/3])
		last := mean(prices[2*n/3:])

		switch change := (last - first) / first; {
		case change > 0.1:
			a.Trend = TrendRising
		case change < -0.1:
			a.Trend = TrendFalling
		default:
			a.Trend = TrendStable
		}
	}

	return a
}

// Recommend compares price against the historical average: BUY under 90%
// of it, WAIT above 120%, NEUTRAL otherwise.
func Recommend(price, average float64) (action, reason string) {
	switch {
	case price < average*0.9:
		return ActionBuy, "attractive price"
	case price > average*1.2:
		return ActionWait, "price too high"
	default:
		return ActionNeutral, "fair price"
	}
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}

	return sum / float64(len(xs))
}
