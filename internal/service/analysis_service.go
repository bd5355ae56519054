package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"sentiment-dashboard/internal/domain"
	"sentiment-dashboard/internal/provider"
	"sentiment-dashboard/pkg/logger"
)

var (
	ErrEmptyQuery    = errors.New("empty query")
	ErrStaleResponse = errors.New("response superseded by a newer request")
)

var log = logger.WithComponent("analysis-service")

type Analyzer interface {
	Analyze(ctx context.Context, id string) (*domain.Analysis, error)
}

type HistoryRecorder interface {
	Record(ctx context.Context, entry domain.HistoryEntry) error
}

// Outcome is what one Analyze call produced. Seq identifies the request.
type Outcome struct {
	Result *domain.Analysis `json:"result,omitempty"`
	Notice Notification     `json:"notice"`
	Seq    uint64           `json:"seq"`
}

// AnalysisService owns the search view state of a single client. Requests
// are numbered; only the newest one may change state.
type AnalysisService struct {
	tracer   trace.Tracer
	analyzer Analyzer
	history  HistoryRecorder
	now      func() time.Time

	seq atomic.Uint64

	mu      sync.Mutex
	input   string
	result  *domain.Analysis
	notice  *Notification
	loading bool
}

func NewAnalysisService(tracer trace.Tracer, analyzer Analyzer, history HistoryRecorder) *AnalysisService {
	return &AnalysisService{
		tracer:   tracer,
		analyzer: analyzer,
		history:  history,
		now:      time.Now,
	}
}

func (s *AnalysisService) Analyze(ctx context.Context, query string) (Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.analyze")
	defer span.End()

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		notice := Notification{
			Level:   LevelWarning,
			Title:   "Missing input",
			Message: "Please enter a cryptocurrency",
		}
		s.mu.Lock()
		s.notice = &notice
		s.mu.Unlock()
		return Outcome{Notice: notice}, ErrEmptyQuery
	}

	seq := s.seq.Add(1)
	span.SetAttributes(attribute.String("crypto.query", trimmed), attribute.Int64("request.seq", int64(seq)))

	s.mu.Lock()
	s.input = query
	s.result = nil
	s.loading = true
	s.mu.Unlock()

	analysis, err := s.analyzer.Analyze(ctx, strings.ToLower(trimmed))

	s.mu.Lock()
	if s.seq.Load() != seq {
		s.mu.Unlock()
		log.WithField("seq", seq).Debug("dropping stale analysis response")
		return Outcome{Seq: seq}, ErrStaleResponse
	}
	s.loading = false

	if err != nil {
		notice := failureNotice(trimmed, err)
		s.result = nil
		s.notice = &notice
		s.mu.Unlock()
		span.RecordError(err)
		log.WithError(err).WithField("crypto", trimmed).Warn("analysis failed")
		return Outcome{Notice: notice, Seq: seq}, err
	}

	notice := Notification{
		Level:   LevelSuccess,
		Title:   "Analysis complete",
		Message: fmt.Sprintf("%s: sentiment %s, recommendation %s", trimmed, analysis.Sentiment, analysis.Recommendation),
	}
	s.result = analysis
	s.notice = &notice
	s.mu.Unlock()

	if s.history != nil {
		entry := domain.NewHistoryEntry(trimmed, analysis.Sentiment, s.now())
		if err := s.history.Record(ctx, entry); err != nil {
			log.WithError(err).Warn("record search history")
		}
	}

	return Outcome{Result: analysis, Notice: notice, Seq: seq}, nil
}

// Select re-runs a past query, as when a history entry is clicked.
func (s *AnalysisService) Select(ctx context.Context, crypto string) (Outcome, error) {
	s.SetInput(crypto)
	return s.Analyze(ctx, crypto)
}

func failureNotice(crypto string, err error) Notification {
	if errors.Is(err, provider.ErrNotFound) {
		return Notification{
			Level:   LevelError,
			Title:   "Unknown cryptocurrency",
			Message: fmt.Sprintf("No analysis is available for %q", crypto),
		}
	}
	return Notification{
		Level:   LevelError,
		Title:   "Analysis failed",
		Message: "Error while analysing. Please try again.",
	}
}

func (s *AnalysisService) SetInput(v string) {
	s.mu.Lock()
	s.input = v
	s.mu.Unlock()
}

func (s *AnalysisService) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

func (s *AnalysisService) Result() *domain.Analysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func (s *AnalysisService) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Notice returns the last notification, if any.
func (s *AnalysisService) Notice() *Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.notice == nil {
		return nil
	}
	n := *s.notice
	return &n
}
