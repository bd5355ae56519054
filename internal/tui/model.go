// Package tui is the terminal rendition of the dashboard, shared by the
// local binary and the SSH server.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"sentiment-dashboard/internal/auth"
	"sentiment-dashboard/internal/domain"
	"sentiment-dashboard/internal/history"
	"sentiment-dashboard/internal/service"
)

// Deps wires one dashboard instance to its client-scoped state. History
// must be the recorder the Analysis service writes to.
type Deps struct {
	Context  context.Context
	Session  *auth.Session
	Analysis *service.AnalysisService
	History  *history.Store
	Market   *service.MarketService

	// LoginURL produces the link shown on the login view.
	LoginURL func(ctx context.Context) (string, error)

	// RefreshEvery re-checks the session periodically when the terminal
	// cannot report focus. Zero disables it.
	RefreshEvery time.Duration

	Location *time.Location
}

type focusArea int

const (
	focusInput focusArea = iota
	focusHistory
)

type Model struct {
	deps Deps

	input   textinput.Model
	spinner spinner.Model
	focus   focusArea

	authenticated bool
	resolved      bool

	entries    []domain.HistoryEntry
	historyIdx int

	market       domain.MarketSnapshot
	fallback     bool
	marketLoaded bool

	result    *domain.Analysis
	notice    *service.Notification
	analyzing bool

	loginURL string
	loginErr error

	width  int
	height int
}

func NewModel(deps Deps) *Model {
	if deps.Context == nil {
		deps.Context = context.Background()
	}
	if deps.Location == nil {
		deps.Location = time.Local
	}

	in := textinput.New()
	in.Placeholder = "Enter a cryptocurrency (e.g. bitcoin)"
	in.CharLimit = 64
	in.Width = 40
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{deps: deps, input: in, spinner: sp}
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.refreshSession(), m.spinner.Tick, textinput.Blink}
	if m.deps.RefreshEvery > 0 {
		cmds = append(cmds, m.scheduleTick())
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.FocusMsg, SessionChangedMsg:
		return m, m.refreshSession()

	case tickMsg:
		return m, tea.Batch(m.refreshSession(), m.scheduleTick())

	case sessionMsg:
		return m, m.onSession(msg)

	case loginURLMsg:
		m.loginURL, m.loginErr = msg.url, msg.err
		return m, nil

	case historyMsg:
		m.entries = msg.entries
		m.clampHistoryIdx()
		return m, nil

	case marketMsg:
		m.market, m.fallback, m.marketLoaded = msg.snap, msg.fallback, true
		return m, nil

	case analysisMsg:
		m.onAnalysis(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.onKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) onSession(msg sessionMsg) tea.Cmd {
	wasAuthenticated := m.authenticated
	m.authenticated = msg.authenticated
	m.resolved = true

	if !msg.authenticated {
		if m.loginURL == "" {
			return m.fetchLoginURL()
		}
		return nil
	}
	if wasAuthenticated {
		return nil
	}
	// A fresh sign-in is a new view load.
	m.loginURL = ""
	return tea.Batch(m.loadHistory(), m.loadMarket())
}

func (m *Model) onAnalysis(msg analysisMsg) {
	if errors.Is(msg.err, service.ErrStaleResponse) {
		return
	}
	notice := msg.out.Notice
	m.notice = &notice
	if errors.Is(msg.err, service.ErrEmptyQuery) {
		return
	}
	m.analyzing = false
	m.result = msg.out.Result
	if msg.err == nil && m.deps.History != nil {
		m.entries = m.deps.History.Entries()
		m.clampHistoryIdx()
	}
}

func (m *Model) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	}

	if !m.authenticated {
		switch msg.String() {
		case "q", "esc":
			return m, tea.Quit
		case "r":
			return m, m.refreshSession()
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+l":
		return m, m.logout()
	case "ctrl+r":
		return m, m.loadMarket()
	case "tab", "shift+tab":
		m.toggleFocus()
		return m, nil
	}

	if m.focus == focusHistory {
		switch msg.String() {
		case "up", "k":
			if m.historyIdx > 0 {
				m.historyIdx--
			}
		case "down", "j":
			if m.historyIdx < len(m.entries)-1 {
				m.historyIdx++
			}
		case "enter":
			if len(m.entries) == 0 {
				return m, nil
			}
			crypto := m.entries[m.historyIdx].Crypto
			m.input.SetValue(crypto)
			m.toggleFocus()
			return m, m.analyze(crypto, true)
		case "q", "esc":
			return m, tea.Quit
		}
		return m, nil
	}

	if msg.Type == tea.KeyEnter {
		return m, m.analyze(m.input.Value(), false)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) toggleFocus() {
	if m.focus == focusInput {
		m.focus = focusHistory
		m.input.Blur()
		return
	}
	m.focus = focusInput
	m.input.Focus()
}

func (m *Model) clampHistoryIdx() {
	if m.historyIdx >= len(m.entries) {
		m.historyIdx = len(m.entries) - 1
	}
	if m.historyIdx < 0 {
		m.historyIdx = 0
	}
}
