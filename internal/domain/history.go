package domain

import "time"

// HistoryEntry records one past query. The JSON layout is the persisted wire format.
type HistoryEntry struct {
	Crypto    string    `json:"crypto"`
	Timestamp string    `json:"timestamp"`
	Sentiment Sentiment `json:"sentiment"`
}

// NewHistoryEntry stamps an entry with at, formatted as RFC 3339.
func NewHistoryEntry(crypto string, sentiment Sentiment, at time.Time) HistoryEntry {
	return HistoryEntry{
		Crypto:    crypto,
		Timestamp: at.UTC().Format(time.RFC3339),
		Sentiment: sentiment,
	}
}

// Time parses Timestamp; the zero time is returned for unparseable values.
func (e HistoryEntry) Time() time.Time {
	t, err := time.Parse(time.RFC3339, e.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}
