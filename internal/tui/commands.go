package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"sentiment-dashboard/internal/service"
)

func (m *Model) refreshSession() tea.Cmd {
	session, ctx := m.deps.Session, m.deps.Context
	return func() tea.Msg {
		session.Refresh(ctx)
		return sessionMsg{authenticated: session.Authenticated()}
	}
}

func (m *Model) logout() tea.Cmd {
	session, ctx := m.deps.Session, m.deps.Context
	return func() tea.Msg {
		_ = session.Logout(ctx)
		return sessionMsg{authenticated: false}
	}
}

func (m *Model) fetchLoginURL() tea.Cmd {
	if m.deps.LoginURL == nil {
		return nil
	}
	build, ctx := m.deps.LoginURL, m.deps.Context
	return func() tea.Msg {
		url, err := build(ctx)
		return loginURLMsg{url: url, err: err}
	}
}

func (m *Model) loadHistory() tea.Cmd {
	store, ctx := m.deps.History, m.deps.Context
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		return historyMsg{entries: store.Load(ctx)}
	}
}

func (m *Model) loadMarket() tea.Cmd {
	market, ctx := m.deps.Market, m.deps.Context
	return func() tea.Msg {
		snap, fallback := market.Snapshot(ctx)
		return marketMsg{snap: snap, fallback: fallback}
	}
}

// analyze runs a query off the update loop. Whitespace-only input is
// answered synchronously by the service without a request.
func (m *Model) analyze(query string, fromHistory bool) tea.Cmd {
	svc, ctx := m.deps.Analysis, m.deps.Context
	m.notice = nil
	if strings.TrimSpace(query) != "" {
		m.result = nil
		m.analyzing = true
	}
	return func() tea.Msg {
		var (
			out service.Outcome
			err error
		)
		if fromHistory {
			out, err = svc.Select(ctx, query)
		} else {
			out, err = svc.Analyze(ctx, query)
		}
		return analysisMsg{out: out, err: err}
	}
}

func (m *Model) scheduleTick() tea.Cmd {
	return tea.Tick(m.deps.RefreshEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
