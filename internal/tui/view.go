package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sentiment-dashboard/internal/domain"
	"sentiment-dashboard/internal/present"
)

func (m *Model) View() string {
	switch {
	case !m.resolved:
		return fmt.Sprintf("\n  %s Loading…\n", m.spinner.View())
	case !m.authenticated:
		return m.loginView()
	default:
		return m.dashboardView()
	}
}

func (m *Model) loginView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Crypto Sentiment") + "\n\n")
	b.WriteString("Sign in with GitHub to analyse market sentiment.\n\n")

	switch {
	case m.loginErr != nil:
		b.WriteString(toneStyle(present.Red).Render("Could not prepare a login link: "+m.loginErr.Error()) + "\n")
	case m.loginURL == "":
		b.WriteString(m.spinner.View() + " Preparing login link…\n")
	default:
		b.WriteString("Open this link in your browser:\n\n  ")
		b.WriteString(linkStyle.Render(m.loginURL) + "\n\n")
		b.WriteString(m.spinner.View() + mutedStyle.Render(" Waiting for you to finish signing in…") + "\n")
	}

	b.WriteString("\n" + mutedStyle.Render("r: check again • q: quit"))
	return panelStyle.Render(b.String())
}

func (m *Model) dashboardView() string {
	sections := []string{m.headerView()}
	if m.notice != nil {
		sections = append(sections, noticeStyle(string(m.notice.Level)).Render(m.notice.Title)+" "+m.notice.Message)
	}
	sections = append(sections,
		m.statsView(),
		m.searchView(),
	)
	if r := m.resultView(); r != "" {
		sections = append(sections, r)
	}
	sections = append(sections,
		m.historyView(),
		mutedStyle.Render("enter: analyse • tab: history • ctrl+r: reload stats • ctrl+l: log out • ctrl+c: quit"),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) headerView() string {
	name := m.deps.Session.Identity().Name()
	return titleStyle.Render("Crypto Analysis") + "  " + mutedStyle.Render("signed in as ") + valueStyle.Render(name)
}

func (m *Model) statsView() string {
	if !m.marketLoaded {
		return panelStyle.Render(m.spinner.View() + " Loading market data…")
	}
	card := func(label, value string) string {
		return panelStyle.Render(labelStyle.Render(label) + "\n" + valueStyle.Render(value))
	}
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Market cap", present.Billions(m.market.MarketCap)),
		card("24h volume", present.Billions(m.market.Volume24h)),
		card("BTC dominance", present.Dominance(m.market.BTCDominance)),
	)

	trend := m.market.TrendData
	line := present.Sparkline(trend.Values)
	if len(trend.Values) > 0 {
		first, last := trend.Values[0], trend.Values[len(trend.Values)-1]
		line = fmt.Sprintf("%s %s %s", present.Trillions(first), line, present.Trillions(last))
		line += "\n" + mutedStyle.Render(trend.Labels[0]+" → "+trend.Labels[len(trend.Labels)-1])
	}
	title := "Market cap trend"
	if m.fallback {
		title += " (sample data)"
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards, panelStyle.Render(labelStyle.Render(title)+"\n"+line))
}

func (m *Model) searchView() string {
	style := panelStyle
	if m.focus == focusInput {
		style = focusedPanelStyle
	}
	content := m.input.View()
	if m.analyzing {
		content += " " + m.spinner.View() + mutedStyle.Render(" analysing…")
	}
	return style.Render(content)
}

func (m *Model) resultView() string {
	a := m.result
	if a == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(strings.ToUpper(a.Crypto)) + "\n")
	fmt.Fprintf(&b, "Sentiment %s   Recommendation %s\n",
		toneStyle(present.SentimentTone(a.Sentiment)).Render(present.SentimentLabel(a.Sentiment)),
		toneStyle(present.RecommendationTone(a.Recommendation)).Render(strings.ToUpper(string(a.Recommendation))),
	)
	fmt.Fprintf(&b, "Confidence %s %s\n",
		confidenceBar(a.Confidence, 20),
		present.Confidence(a.Confidence),
	)
	fmt.Fprintf(&b, "News  %s  %s  %s\n",
		toneStyle(present.Green).Render(fmt.Sprintf("%d positive", a.Stats.PositiveNews)),
		toneStyle(present.Yellow).Render(fmt.Sprintf("%d neutral", a.Stats.NeutralNews())),
		toneStyle(present.Red).Render(fmt.Sprintf("%d negative", a.Stats.NegativeNews)),
	)

	if len(a.Reasons) > 0 {
		b.WriteString("\n" + labelStyle.Render("Reasons") + "\n")
		for _, r := range a.Reasons {
			b.WriteString("• " + r + "\n")
		}
	}
	if len(a.Sources) > 0 {
		b.WriteString("\n" + labelStyle.Render("Sources") + "\n")
		for _, s := range a.Sources {
			b.WriteString(sourceLine(s) + "\n")
		}
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func sourceLine(s domain.Source) string {
	tag := toneStyle(present.SentimentTone(s.Sentiment)).Render("[" + present.SentimentLabel(s.Sentiment) + "]")
	return fmt.Sprintf("%s %s %s", tag, s.Title, mutedStyle.Render(s.URL))
}

func confidenceBar(c float64, width int) string {
	filled := int(c*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	bar := toneStyle(present.ConfidenceTone(c)).Render(strings.Repeat("█", filled))
	return bar + mutedStyle.Render(strings.Repeat("░", width-filled))
}

func (m *Model) historyView() string {
	style := panelStyle
	if m.focus == focusHistory {
		style = focusedPanelStyle
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render("Search history") + "\n")
	if len(m.entries) == 0 {
		b.WriteString(mutedStyle.Render("No searches yet."))
		return style.Render(b.String())
	}
	for i, e := range m.entries {
		cursor := "  "
		name := e.Crypto
		if m.focus == focusHistory && i == m.historyIdx {
			cursor = "> "
			name = selectedStyle.Render(name)
		}
		fmt.Fprintf(&b, "%s%s %s %s\n", cursor, name,
			toneStyle(present.SentimentTone(e.Sentiment)).Render(present.SentimentLabel(e.Sentiment)),
			mutedStyle.Render(present.Timestamp(e.Timestamp, m.deps.Location)),
		)
	}
	return style.Render(strings.TrimRight(b.String(), "\n"))
}
