package domain

// MarketSnapshot is the global market overview shown next to the search.
type MarketSnapshot struct {
	MarketCap    float64   `json:"marketCap"`
	Volume24h    float64   `json:"volume24h"`
	BTCDominance float64   `json:"btcDominance"`
	TrendData    TrendData `json:"trendData"`
}

type TrendData struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Valid reports whether labels and values line up one to one.
func (t TrendData) Valid() bool {
	return len(t.Labels) == len(t.Values)
}

// PlaceholderSnapshot is shown when the stats endpoint cannot be reached.
func PlaceholderSnapshot() MarketSnapshot {
	return MarketSnapshot{
		MarketCap:    2.5e12,
		Volume24h:    9.8e10,
		BTCDominance: 52.3,
		TrendData: TrendData{
			Labels: []string{"00:00", "04:00", "08:00", "12:00", "16:00", "20:00", "24:00"},
			Values: []float64{2.41e12, 2.43e12, 2.42e12, 2.46e12, 2.48e12, 2.47e12, 2.5e12},
		},
	}
}
