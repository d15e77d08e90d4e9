package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xolan/timetracker/internal/entry"
	"github.com/xolan/timetracker/internal/service"
	"github.com/xolan/timetracker/internal/stats"
	"github.com/xolan/timetracker/internal/tui/ui"
)

// StatsModel is the model for the stats view
type StatsModel struct {
	services *service.Services
	styles   ui.Styles
	keys     ui.KeyMap

	width   int
	height  int
	result  *service.StatsResult
	loading bool
	err     error
	weekly  bool // false shows the month
}

// NewStatsModel creates a new stats view model
func NewStatsModel(services *service.Services, styles ui.Styles, keys ui.KeyMap) StatsModel {
	return StatsModel{
		services: services,
		styles:   styles,
		keys:     keys,
		weekly:   true,
		loading:  true,
	}
}

// statsLoadedMsg is sent when stats are loaded
type statsLoadedMsg struct {
	result *service.StatsResult
	err    error
}

// Init implements tea.Model
func (m StatsModel) Init() tea.Cmd {
	return m.loadStats()
}

// Update implements tea.Model
func (m StatsModel) Update(msg tea.Msg) (StatsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.ThisWeek):
			m.weekly = true
			return m, m.loadStats()
		case key.Matches(msg, m.keys.ThisMonth):
			m.weekly = false
			return m, m.loadStats()
		case key.Matches(msg, m.keys.Refresh):
			return m, m.loadStats()
		}

	case statsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.result = msg.result

	case ui.DataChangedMsg:
		return m, m.loadStats()

	case ui.ThemeChangedMsg:
		m.styles = msg.Styles
	}

	return m, nil
}

// View implements tea.Model
func (m StatsModel) View() string {
	var b strings.Builder

	title := "Weekly Statistics"
	if !m.weekly {
		title = "Monthly Statistics"
	}
	b.WriteString(m.styles.ViewTitle.Render(title))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString("Loading...")
		return b.String()
	}
	if m.err != nil {
		b.WriteString(m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err)))
		return b.String()
	}
	if m.result == nil {
		b.WriteString("No data")
		return b.String()
	}

	s := m.result.Statistics
	b.WriteString(m.renderStatLine("Period:", m.result.Range.String()))
	b.WriteString(m.renderStatLine("Total time:", entry.FormatDuration(s.Total)))
	b.WriteString(m.renderStatLine("Billed:", entry.FormatDuration(s.BilledTotal)))
	b.WriteString(m.renderStatLine("Total entries:", fmt.Sprintf("%d %s", s.EntryCount, pluralize("entry", s.EntryCount))))
	b.WriteString(m.renderStatLine("Days with work:", fmt.Sprintf("%d %s", s.DaysWithEntries, pluralize("day", s.DaysWithEntries))))
	b.WriteString(m.renderStatLine("Average per day:", entry.FormatDuration(s.AveragePerDay)))

	if m.result.Comparison != "" {
		b.WriteString("\n")
		b.WriteString(m.renderStatLine("Comparison:", m.result.Comparison))
	}

	b.WriteString(m.renderBreakdown("By Project", m.result.ProjectStats, m.styles.EntryProject))
	b.WriteString(m.renderBreakdown("By Tag", m.result.TagStats, m.styles.EntryTag))
	b.WriteString(m.renderBreakdown("By Client", m.result.ClientStats, m.styles.EntryClient))

	return b.String()
}

func (m StatsModel) renderBreakdown(title string, rows []stats.Breakdown, nameStyle lipgloss.Style) string {
	if len(rows) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.styles.ViewTitle.Render(title))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("  %s %10s  (%d %s)\n",
			nameStyle.Render(fmt.Sprintf("%-20s", truncate(r.Name, 20))),
			entry.FormatDuration(r.Total),
			r.EntryCount,
			pluralize("entry", r.EntryCount)))
	}
	return b.String()
}

// SetSize sets the view dimensions
func (m *StatsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m StatsModel) loadStats() tea.Cmd {
	weekly := m.weekly
	return func() tea.Msg {
		var (
			result *service.StatsResult
			err    error
		)
		if weekly {
			result, err = m.services.Stats.Weekly()
		} else {
			result, err = m.services.Stats.Monthly()
		}
		return statsLoadedMsg{result: result, err: err}
	}
}

func (m StatsModel) renderStatLine(label, value string) string {
	return m.styles.StatLabel.Render(label) + " " + m.styles.StatValue.Render(value) + "\n"
}
