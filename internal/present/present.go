// Package present holds the formatting and color rules shared by the web
// templates, the terminal views and the Telegram replies.
package present

import (
	"fmt"
	"time"

	"sentiment-dashboard/internal/domain"
)

type Tone string

const (
	Green  Tone = "green"
	Red    Tone = "red"
	Gray   Tone = "gray"
	Yellow Tone = "yellow"
	Orange Tone = "orange"
)

var toneHex = map[Tone]string{
	Green:  "#48BB78",
	Red:    "#F56565",
	Gray:   "#A0AEC0",
	Yellow: "#ECC94B",
	Orange: "#ED8936",
}

// Hex is the color used when drawing the tone.
func (t Tone) Hex() string {
	if h, ok := toneHex[t]; ok {
		return h
	}
	return toneHex[Gray]
}

func SentimentTone(s domain.Sentiment) Tone {
	switch s.Normalize() {
	case domain.SentimentPositive:
		return Green
	case domain.SentimentNegative:
		return Red
	default:
		return Gray
	}
}

func RecommendationTone(r domain.Recommendation) Tone {
	switch r.Normalize() {
	case domain.RecommendationBuy:
		return Green
	case domain.RecommendationSell:
		return Red
	default:
		return Yellow
	}
}

func ConfidenceTone(c float64) Tone {
	if c > 0.7 {
		return Green
	}
	return Orange
}

// SentimentLabel renders unknown labels as "other".
func SentimentLabel(s domain.Sentiment) string {
	if !s.IsKnown() {
		return "other"
	}
	return string(s.Normalize())
}

// Billions formats a dollar amount as $X.XXB.
func Billions(v float64) string {
	return fmt.Sprintf("$%.2fB", v/1e9)
}

// Trillions formats a chart axis value as $X.XXT.
func Trillions(v float64) string {
	return fmt.Sprintf("$%.2fT", v/1e12)
}

func Dominance(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// Confidence renders a [0,1] value as a percentage with one decimal.
func Confidence(c float64) string {
	return fmt.Sprintf("%.1f%%", c*100)
}

// Timestamp renders an RFC 3339 history stamp in loc. Unparseable stamps
// are shown as stored.
func Timestamp(raw string, loc *time.Location) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("2006-01-02 15:04:05")
}
