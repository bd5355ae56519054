package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"sentiment-dashboard/internal/domain"
)

// StatsClient fetches the global market snapshot. It shares nothing with
// SentimentClient so a slow analysis never blocks the stats panel.
type StatsClient struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewStatsClient(baseURL string, timeout time.Duration, tracer trace.Tracer) *StatsClient {
	return &StatsClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
	}
}

func (c *StatsClient) GlobalStats(ctx context.Context) (*domain.MarketSnapshot, error) {
	ctx, span := c.tracer.Start(ctx, "stats-client.global-stats")
	defer span.End()

	body, err := getJSON(ctx, c.client, nil, "stats", c.baseURL+"/api/crypto/global-stats")
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fetch global stats: %w", err)
	}

	var snap domain.MarketSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("parse global stats: %w: %v", ErrMalformedResponse, err)
	}
	if !snap.TrendData.Valid() {
		return nil, fmt.Errorf("parse global stats: %w: trend labels and values differ in length", ErrMalformedResponse)
	}
	return &snap, nil
}
