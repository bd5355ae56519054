package present

import (
	"fmt"
	"math"
	"strings"

	"sentiment-dashboard/internal/domain"
)

// ChartPoint is one vertex of the trend line in a width x height box.
type ChartPoint struct {
	X, Y  float64
	Label string
	Value string
}

// TrendPoints scales the trend into a box, y growing downwards. A flat
// series is drawn through the middle.
func TrendPoints(t domain.TrendData, width, height float64) []ChartPoint {
	if !t.Valid() || len(t.Values) == 0 {
		return nil
	}
	lo, hi := bounds(t.Values)
	span := hi - lo

	points := make([]ChartPoint, len(t.Values))
	for i, v := range t.Values {
		x := 0.0
		if len(t.Values) > 1 {
			x = width * float64(i) / float64(len(t.Values)-1)
		}
		y := height / 2
		if span > 0 {
			y = height - (v-lo)/span*height
		}
		points[i] = ChartPoint{X: x, Y: y, Label: t.Labels[i], Value: Trillions(v)}
	}
	return points
}

// SVGPolyline renders points as the value of an SVG points attribute.
func SVGPolyline(points []ChartPoint) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = fmt.Sprintf("%.1f,%.1f", p.X, p.Y)
	}
	return strings.Join(parts, " ")
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws values as a row of block characters.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := bounds(values)
	var b strings.Builder
	for _, v := range values {
		idx := len(sparkRunes) / 2
		if hi > lo {
			idx = int(math.Round((v - lo) / (hi - lo) * float64(len(sparkRunes)-1)))
		}
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

func bounds(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
