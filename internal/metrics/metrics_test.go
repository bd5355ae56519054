package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"sentiment-dashboard/internal/domain"
	"sentiment-dashboard/internal/provider"
)

type analyzerStub struct{ err error }

func (a analyzerStub) Analyze(ctx context.Context, id string) (*domain.Analysis, error) {
	if a.err != nil {
		return nil, a.err
	}
	return &domain.Analysis{Crypto: id}, nil
}

type statsStub struct{ err error }

func (s statsStub) GlobalStats(ctx context.Context) (*domain.MarketSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	snap := domain.PlaceholderSnapshot()
	return &snap, nil
}

func TestAnalyzerCountsResults(t *testing.T) {
	m := New()
	ctx := context.Background()

	_, _ = m.Analyzer(analyzerStub{}).Analyze(ctx, "bitcoin")
	_, _ = m.Analyzer(analyzerStub{err: &provider.APIError{Service: "analysis", StatusCode: http.StatusNotFound}}).Analyze(ctx, "nope")
	_, _ = m.Analyzer(analyzerStub{err: errors.New("timeout")}).Analyze(ctx, "bitcoin")

	for _, result := range []string{ResultOK, ResultNotFound, ResultError} {
		if got := testutil.ToFloat64(m.requests.WithLabelValues("analysis", result)); got != 1 {
			t.Errorf("analysis/%s = %v, want 1", result, got)
		}
	}
}

func TestAnalyzerPassesThrough(t *testing.T) {
	res, err := New().Analyzer(analyzerStub{}).Analyze(context.Background(), "eth")
	if err != nil || res.Crypto != "eth" {
		t.Fatalf("unexpected passthrough: %+v %v", res, err)
	}
}

func TestStatsAndHandler(t *testing.T) {
	m := New()
	_, _ = m.Stats(statsStub{err: fmt.Errorf("stats: %w", provider.ErrMalformedResponse)}).GlobalStats(context.Background())

	if got := testutil.ToFloat64(m.requests.WithLabelValues("stats", ResultError)); got != 1 {
		t.Fatalf("stats/error = %v, want 1", got)
	}

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `dashboard_upstream_requests_total{result="error",service="stats"} 1`) {
		t.Fatalf("counter missing from exposition:\n%s", w.Body.String())
	}
}
