package domain

import "strings"

// Sentiment is the categorical label produced by the analysis backend.
// Values outside the three known labels are kept verbatim.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Normalize lower-cases and trims the label.
func (s Sentiment) Normalize() Sentiment {
	return Sentiment(strings.ToLower(strings.TrimSpace(string(s))))
}

func (s Sentiment) IsKnown() bool {
	switch s.Normalize() {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

// Recommendation is the trading suggestion produced by the analysis backend.
type Recommendation string

const (
	RecommendationBuy  Recommendation = "buy"
	RecommendationSell Recommendation = "sell"
	RecommendationHold Recommendation = "hold"
)

func (r Recommendation) Normalize() Recommendation {
	return Recommendation(strings.ToLower(strings.TrimSpace(string(r))))
}
