package present

import (
	"testing"
	"time"

	"sentiment-dashboard/internal/domain"
)

func TestTones(t *testing.T) {
	sentiments := map[domain.Sentiment]Tone{
		"positive": Green, "NEGATIVE": Red, "neutral": Gray, "bullish": Gray,
	}
	for in, want := range sentiments {
		if got := SentimentTone(in); got != want {
			t.Fatalf("SentimentTone(%q) = %s, want %s", in, got, want)
		}
	}

	recs := map[domain.Recommendation]Tone{
		"buy": Green, "Sell": Red, "hold": Yellow, "accumulate": Yellow,
	}
	for in, want := range recs {
		if got := RecommendationTone(in); got != want {
			t.Fatalf("RecommendationTone(%q) = %s, want %s", in, got, want)
		}
	}

	if ConfidenceTone(0.82) != Green || ConfidenceTone(0.7) != Orange {
		t.Fatal("confidence tone threshold is strictly above 0.7")
	}
}

func TestFormatting(t *testing.T) {
	cases := []struct{ got, want string }{
		{Billions(2.5e12), "$2500.00B"},
		{Billions(9.8e10), "$98.00B"},
		{Dominance(52.3), "52.30%"},
		{Confidence(0.82), "82.0%"},
		{Trillions(2.41e12), "$2.41T"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Fatalf("got %s, want %s", c.got, c.want)
		}
	}
}

func TestSentimentLabel(t *testing.T) {
	if SentimentLabel("Positive") != "positive" || SentimentLabel("mixed") != "other" {
		t.Fatal("unexpected sentiment labels")
	}
}

func TestTimestamp(t *testing.T) {
	got := Timestamp("2025-06-01T09:00:00Z", time.UTC)
	if got != "2025-06-01 09:00:00" {
		t.Fatalf("unexpected timestamp: %s", got)
	}
	if Timestamp("garbage", time.UTC) != "garbage" {
		t.Fatal("unparseable stamps should pass through")
	}
}

func TestTrendPoints(t *testing.T) {
	snap := domain.PlaceholderSnapshot()
	points := TrendPoints(snap.TrendData, 600, 200)
	if len(points) != 7 {
		t.Fatalf("expected 7 points, got %d", len(points))
	}
	if points[0].X != 0 || points[6].X != 600 {
		t.Fatalf("unexpected x range: %v..%v", points[0].X, points[6].X)
	}
	// lowest value sits on the bottom edge, highest on the top
	if points[0].Y != 200 || points[6].Y != 0 {
		t.Fatalf("unexpected y scaling: first=%v last=%v", points[0].Y, points[6].Y)
	}
	if points[6].Value != "$2.50T" || points[6].Label != "24:00" {
		t.Fatalf("unexpected point: %+v", points[6])
	}
	if TrendPoints(domain.TrendData{Labels: []string{"a"}}, 10, 10) != nil {
		t.Fatal("misaligned trend should yield no points")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{1, 2, 3}); got != "▁▅█" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	if got := Sparkline([]float64{5, 5}); got != "▅▅" {
		t.Fatalf("flat series should be mid height, got %q", got)
	}
	if Sparkline(nil) != "" {
		t.Fatal("empty input should render empty")
	}
}
