package statsui

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/humangate/internal/model"
	"github.com/verte-zerg/humangate/internal/stats"
)

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	return m.renderTabs() + "\n" + m.renderFilterSummary()
}

func (m *Model) renderFilterSummary() string {
	challenge := string(m.cfg.Challenge)
	if challenge == "" {
		challenge = "all"
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format(dateLayout)
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := fmt.Sprintf("Settings: challenge=%s  since=%s  last=%s  window=%d", challenge, since, last, m.cfg.CurveWindow)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Settings: /  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderBody(height int) string {
	if m.filterMode {
		lines := []string{"Settings (enter to apply, esc to cancel)"}
		for _, input := range m.filterInputs {
			lines = append(lines, input.View())
		}
		if m.filterError != "" {
			lines = append(lines, errorStyle.Render(m.filterError))
		}
		return strings.Join(lines, "\n")
	}
	if m.activeTab == tabChallenges {
		if len(m.report.Window) == 0 {
			return "No runs found."
		}
		return tableMutedStyle.Render(m.table.View())
	}
	return m.viewports[m.activeTab].View()
}

func renderOverview(report stats.Report, width int) string {
	if len(report.Runs) == 0 {
		return "No runs found."
	}
	passed := 0
	for _, r := range report.Runs {
		if r.Passed {
			passed++
		}
	}
	rate := float64(passed) / float64(len(report.Runs)) * 100
	cards := []string{
		metricCard("Runs", strconv.Itoa(len(report.Runs))),
		metricCard("Passed", strconv.Itoa(passed)),
		metricCard("Pass rate", fmt.Sprintf("%.1f%%", rate)),
		metricCard("Challenges", strconv.Itoa(len(report.Window))),
	}
	var summary string
	if width < 80 {
		summary = strings.Join(cards, "\n")
	} else {
		summary = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}

	var buf bytes.Buffer
	if err := stats.RenderScoreChart(&buf, "Score Curves", report.Curves, stats.ChartWidthFor(width), chartHeight, true); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	return strings.TrimRight(summary+"\n\n"+buf.String(), "\n")
}

func metricCard(label, value string) string {
	return cardStyle.Render(cardTitleStyle.Render(label) + "\n" + cardValueStyle.Render(value))
}

// renderHistory lists runs newest first.
func renderHistory(runs []model.Run) string {
	if len(runs) == 0 {
		return "No runs found."
	}
	lines := make([]string, 0, len(runs))
	for i := len(runs) - 1; i >= 0; i-- {
		r := runs[i]
		verdict := errorStyle.Render("FAIL")
		if r.Passed {
			verdict = passStyle.Render("PASS")
		}
		score := "     -"
		if r.Score != nil {
			score = fmt.Sprintf("%6.1f", *r.Score)
		}
		lines = append(lines, fmt.Sprintf("%s  %s  %s  %s  attempts=%d",
			r.EndedAt.Local().Format(time.DateTime),
			runewidth.FillRight(string(r.Challenge), 8),
			verdict,
			score,
			r.Attempts,
		))
	}
	return strings.Join(lines, "\n")
}

func tableColumns() []table.Column {
	widths := []int{10, 6, 10, 10, 6, 9}
	cols := make([]table.Column, len(stats.ChallengeHeaders))
	for i, title := range stats.ChallengeHeaders {
		cols[i] = table.Column{Title: title, Width: widths[i]}
	}
	return cols
}

func tableRows(aggs []model.ChallengeAggregate) []table.Row {
	rows := make([]table.Row, 0, len(aggs))
	for _, r := range stats.ChallengeRows(aggs) {
		rows = append(rows, table.Row(r))
	}
	return rows
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		PaddingLeft(0)
	styles.Cell = styles.Cell.PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w < width {
			lines[i] = line + strings.Repeat(" ", width-w)
		}
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "...")
}
