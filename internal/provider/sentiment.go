package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"sentiment-dashboard/internal/domain"
)

const maxErrorBody = 2048

// SentimentClient calls the news sentiment analysis API.
type SentimentClient struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

func NewSentimentClient(baseURL string, timeout time.Duration, limiter *RateLimiter, tracer trace.Tracer) *SentimentClient {
	return &SentimentClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
		limiter: limiter,
	}
}

// Analyze fetches the analysis for id, which is sent as a single escaped
// path segment.
func (c *SentimentClient) Analyze(ctx context.Context, id string) (*domain.Analysis, error) {
	ctx, span := c.tracer.Start(ctx, "sentiment-client.analyze")
	defer span.End()
	span.SetAttributes(attribute.String("crypto.id", id))

	endpoint := c.baseURL + "/api/crypto/analyze/" + url.PathEscape(id)
	body, err := getJSON(ctx, c.client, c.limiter, "analysis", endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("analyze %s: %w", id, err)
	}

	var payload struct {
		Analysis *domain.Analysis `json:"analysis"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("analyze %s: %w: %v", id, ErrMalformedResponse, err)
	}
	if payload.Analysis == nil {
		return nil, fmt.Errorf("analyze %s: %w: missing analysis object", id, ErrMalformedResponse)
	}

	a := payload.Analysis
	a.Confidence = domain.ClampConfidence(a.Confidence)
	if a.Crypto == "" {
		a.Crypto = id
	}
	return a, nil
}

func getJSON(ctx context.Context, client *http.Client, limiter *RateLimiter, service, endpoint string) ([]byte, error) {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{Service: service, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return io.ReadAll(resp.Body)
}
