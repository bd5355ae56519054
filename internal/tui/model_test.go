package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel/trace"

	"sentiment-dashboard/internal/auth"
	"sentiment-dashboard/internal/domain"
	"sentiment-dashboard/internal/history"
	"sentiment-dashboard/internal/service"
	"sentiment-dashboard/internal/storage"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("tui-test")

type analyzerStub struct{ calls []string }

func (a *analyzerStub) Analyze(ctx context.Context, id string) (*domain.Analysis, error) {
	a.calls = append(a.calls, id)
	return &domain.Analysis{
		Crypto:         id,
		Sentiment:      domain.SentimentPositive,
		Confidence:     0.82,
		Recommendation: domain.RecommendationBuy,
		Stats:          domain.NewsStats{TotalNews: 50, PositiveNews: 30, NegativeNews: 5},
	}, nil
}

type statsStub struct{}

func (statsStub) GlobalStats(ctx context.Context) (*domain.MarketSnapshot, error) {
	return nil, errors.New("offline")
}

type harness struct {
	model    *Model
	scope    storage.Store
	analyzer *analyzerStub
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	scope, err := storage.NewMemoryStore().Namespace("local")
	if err != nil {
		t.Fatalf("namespace: %v", err)
	}
	analyzer := &analyzerStub{}
	hist := history.New(scope)
	m := NewModel(Deps{
		Session:  auth.NewSession(scope, auth.UnverifiedDecoder{}),
		Analysis: service.NewAnalysisService(testTracer, analyzer, hist),
		History:  hist,
		Market:   service.NewMarketService(testTracer, statsStub{}),
		LoginURL: func(context.Context) (string, error) {
			return auth.LoginURL("http://localhost:3006", "http://localhost:3005", ""), nil
		},
		Location: time.UTC,
	})
	return &harness{model: m, scope: scope, analyzer: analyzer}
}

func (h *harness) storeToken(t *testing.T) {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id": "9", "displayName": "Linus",
	}).SignedString([]byte("x"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	_ = h.scope.Set(context.Background(), storage.TokenKey, token)
}

// run feeds msg to the model and then the messages produced by its
// command, recursively, skipping timer-driven commands.
func (h *harness) run(msg tea.Msg) {
	_, cmd := h.model.Update(msg)
	h.drain(cmd)
}

func (h *harness) drain(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			h.drain(c)
		}
	case nil:
	default:
		h.run(msg)
	}
}

func TestLoadingThenLoginView(t *testing.T) {
	h := newHarness(t)
	if !strings.Contains(h.model.View(), "Loading") {
		t.Fatal("expected loading placeholder before the session resolves")
	}

	h.drain(h.model.refreshSession())

	view := h.model.View()
	if !strings.Contains(view, "auth/github?callback_url=") {
		t.Fatalf("expected login link, got:\n%s", view)
	}
}

func TestFocusRechecksSession(t *testing.T) {
	h := newHarness(t)
	h.drain(h.model.refreshSession())
	if h.model.authenticated {
		t.Fatal("should start logged out")
	}

	h.storeToken(t)
	h.run(tea.FocusMsg{})

	if !h.model.authenticated {
		t.Fatal("focus should pick up the stored token")
	}
	view := h.model.View()
	if !strings.Contains(view, "Linus") || !strings.Contains(view, "$2500.00B") {
		t.Fatalf("expected dashboard with placeholder stats, got:\n%s", view)
	}
	if !strings.Contains(view, "sample data") {
		t.Fatal("placeholder stats should be flagged")
	}
}

func TestSessionChangedMsg(t *testing.T) {
	h := newHarness(t)
	h.drain(h.model.refreshSession())
	h.storeToken(t)

	h.run(SessionChangedMsg{})
	if !h.model.authenticated {
		t.Fatal("expected session to be picked up")
	}
}

func TestAnalyzeFromInput(t *testing.T) {
	h := newHarness(t)
	h.storeToken(t)
	h.drain(h.model.refreshSession())

	h.model.input.SetValue("Bitcoin")
	h.run(tea.KeyMsg{Type: tea.KeyEnter})

	if len(h.analyzer.calls) != 1 || h.analyzer.calls[0] != "bitcoin" {
		t.Fatalf("unexpected calls: %v", h.analyzer.calls)
	}
	if h.model.analyzing || h.model.result == nil {
		t.Fatal("expected result to be shown")
	}
	if len(h.model.entries) != 1 || h.model.entries[0].Crypto != "Bitcoin" {
		t.Fatalf("unexpected history: %+v", h.model.entries)
	}
	view := h.model.View()
	for _, want := range []string{"BITCOIN", "82.0%", "15 neutral", "Analysis complete"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q", want)
		}
	}
}

func TestEmptyInputWarns(t *testing.T) {
	h := newHarness(t)
	h.storeToken(t)
	h.drain(h.model.refreshSession())

	h.model.input.SetValue("   ")
	h.run(tea.KeyMsg{Type: tea.KeyEnter})

	if len(h.analyzer.calls) != 0 {
		t.Fatal("blank input must not reach the analysis API")
	}
	if h.model.notice == nil || h.model.notice.Level != service.LevelWarning {
		t.Fatalf("expected warning, got %+v", h.model.notice)
	}
}

func TestEmptyInputKeepsPreviousResult(t *testing.T) {
	h := newHarness(t)
	h.storeToken(t)
	h.drain(h.model.refreshSession())

	h.model.input.SetValue("Bitcoin")
	h.run(tea.KeyMsg{Type: tea.KeyEnter})
	if h.model.result == nil {
		t.Fatal("expected a result after analysing bitcoin")
	}

	h.model.input.SetValue("   ")
	h.run(tea.KeyMsg{Type: tea.KeyEnter})

	if len(h.analyzer.calls) != 1 {
		t.Fatalf("expected one upstream call, got %v", h.analyzer.calls)
	}
	if h.model.result == nil {
		t.Fatal("blank input cleared the previous result")
	}
	if h.model.analyzing {
		t.Fatal("blank input must not start an analysis")
	}
	if h.model.notice == nil || h.model.notice.Level != service.LevelWarning {
		t.Fatalf("expected warning, got %+v", h.model.notice)
	}
	if !strings.Contains(h.model.View(), "BITCOIN") {
		t.Fatal("previous analysis should still be rendered")
	}
}

func TestHistorySelection(t *testing.T) {
	h := newHarness(t)
	h.storeToken(t)
	h.drain(h.model.refreshSession())

	for _, q := range []string{"Bitcoin", "Ethereum"} {
		h.model.input.SetValue(q)
		h.run(tea.KeyMsg{Type: tea.KeyEnter})
	}

	h.run(tea.KeyMsg{Type: tea.KeyTab})
	h.run(tea.KeyMsg{Type: tea.KeyDown})
	if h.model.historyIdx != 1 {
		t.Fatalf("expected cursor on second entry, got %d", h.model.historyIdx)
	}
	h.run(tea.KeyMsg{Type: tea.KeyEnter})

	if last := h.analyzer.calls[len(h.analyzer.calls)-1]; last != "bitcoin" {
		t.Fatalf("expected bitcoin to be re-analysed, got %s", last)
	}
	if h.model.input.Value() != "Bitcoin" || h.model.focus != focusInput {
		t.Fatal("selection should fill the input and return focus to it")
	}
}

func TestStaleAnalysisIgnored(t *testing.T) {
	h := newHarness(t)
	h.model.analyzing = true
	h.model.Update(analysisMsg{err: service.ErrStaleResponse})

	if !h.model.analyzing || h.model.notice != nil {
		t.Fatal("stale responses must not change the view")
	}
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.storeToken(t)
	h.drain(h.model.refreshSession())

	h.run(tea.KeyMsg{Type: tea.KeyCtrlL})

	if h.model.authenticated {
		t.Fatal("expected logged out")
	}
	if _, ok, _ := h.scope.Get(context.Background(), storage.TokenKey); ok {
		t.Fatal("token should be deleted")
	}
	if !strings.Contains(h.model.View(), "Open this link") {
		t.Fatal("expected login view after logout")
	}
}
