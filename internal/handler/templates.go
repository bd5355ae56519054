package handler

import (
	"embed"
	"html/template"
	"strings"

	"sentiment-dashboard/internal/domain"
	"sentiment-dashboard/internal/present"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"sentimentTone":  func(s domain.Sentiment) string { return present.SentimentTone(s).Hex() },
	"sentimentLabel": present.SentimentLabel,
	"recTone":        func(r domain.Recommendation) string { return present.RecommendationTone(r).Hex() },
	"confTone":       func(c float64) string { return present.ConfidenceTone(c).Hex() },
	"confidence":     present.Confidence,
	"billions":       present.Billions,
	"dominance":      present.Dominance,
	"trillions":      present.Trillions,
	"stamp":          func(raw string) string { return present.Timestamp(raw, nil) },
	"percent":        func(c float64) string { return strings.TrimSuffix(present.Confidence(c), "%") },
	"upper":          strings.ToUpper,
}

func parseTemplates() *template.Template {
	return template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html"))
}
