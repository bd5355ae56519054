package tui

import (
	"time"

	"sentiment-dashboard/internal/domain"
	"sentiment-dashboard/internal/service"
)

// SessionChangedMsg asks the dashboard to re-read the stored session, for
// example after the local callback listener saved a token.
type SessionChangedMsg struct{}

type sessionMsg struct {
	authenticated bool
}

type historyMsg struct {
	entries []domain.HistoryEntry
}

type marketMsg struct {
	snap     domain.MarketSnapshot
	fallback bool
}

type analysisMsg struct {
	out service.Outcome
	err error
}

type loginURLMsg struct {
	url string
	err error
}

type tickMsg time.Time
