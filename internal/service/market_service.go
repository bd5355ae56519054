package service

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"sentiment-dashboard/internal/domain"
	"sentiment-dashboard/pkg/logger"
)

var marketLog = logger.WithComponent("market-service")

type StatsFetcher interface {
	GlobalStats(ctx context.Context) (*domain.MarketSnapshot, error)
}

// MarketService loads the global market panel. It never fails: any error
// yields the placeholder snapshot with fallback set.
type MarketService struct {
	tracer trace.Tracer
	stats  StatsFetcher
}

func NewMarketService(tracer trace.Tracer, stats StatsFetcher) *MarketService {
	return &MarketService{tracer: tracer, stats: stats}
}

func (s *MarketService) Snapshot(ctx context.Context) (domain.MarketSnapshot, bool) {
	ctx, span := s.tracer.Start(ctx, "market-service.snapshot")
	defer span.End()

	snap, err := s.stats.GlobalStats(ctx)
	if err != nil || snap == nil || !snap.TrendData.Valid() {
		if err != nil {
			span.RecordError(err)
			marketLog.WithError(err).Info("global stats unavailable, using placeholder")
		}
		return domain.PlaceholderSnapshot(), true
	}
	return *snap, false
}
