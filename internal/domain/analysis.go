package domain

// Analysis is the sentiment analysis returned for a single crypto query.
// It lives only in view state and is replaced wholesale by the next query.
type Analysis struct {
	Crypto         string         `json:"crypto"`
	Sentiment      Sentiment      `json:"sentiment"`
	Confidence     float64        `json:"confidence"`
	Recommendation Recommendation `json:"recommendation"`
	Reasons        []string       `json:"reasons"`
	Stats          NewsStats      `json:"stats"`
	Sources        []Source       `json:"sources"`
}

type NewsStats struct {
	TotalNews    int `json:"totalNews"`
	PositiveNews int `json:"positiveNews"`
	NegativeNews int `json:"negativeNews"`
}

// NeutralNews is whatever is neither positive nor negative, never below zero.
func (s NewsStats) NeutralNews() int {
	n := s.TotalNews - s.PositiveNews - s.NegativeNews
	if n < 0 {
		return 0
	}
	return n
}

type Source struct {
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Sentiment Sentiment `json:"sentiment"`
}

// ClampConfidence bounds c to [0,1].
func ClampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
