package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name   string
		prices []float64
		avg    float64
		trend  string
	}{
		{name: "empty", prices: nil, avg: 0, trend: TrendNeutral},
		{name: "two points", prices: []float64{100, 200}, avg: 150, trend: TrendNeutral},
		{name: "rising", prices: []float64{100, 110, 130}, avg: 340.0 / 3, trend: TrendRising},
		{name: "falling", prices: []float64{200, 150, 100}, avg: 150, trend: TrendFalling},
		{name: "stable", prices: []float64{100, 120, 105}, avg: 325.0 / 3, trend: TrendStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Analyze(tt.prices)
			assert.Equal(t, len(tt.prices), a.Points)
			assert.InDelta(t, tt.avg, a.Average, 1e-9)
			assert.Equal(t, tt.trend, a.Trend)
		})
	}
}

func TestAnalyze_Volatility(t *testing.T) {
	assert.Zero(t, Analyze([]float64{100, 100, 100}).Volatility)
	// stddev 50 over mean 150
	assert.InDelta(t, 1.0/3, Analyze([]float64{100, 200}).Volatility, 1e-9)
}

func TestRecommend(t *testing.T) {
	action, _ := Recommend(80, 100)
	assert.Equal(t, ActionBuy, action)

	action, _ = Recommend(121, 100)
	assert.Equal(t, ActionWait, action)

	action, reason := Recommend(100, 100)
	assert.Equal(t, ActionNeutral, action)
	assert.NotEmpty(t, reason)
}
