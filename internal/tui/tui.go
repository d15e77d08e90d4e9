// Package tui provides the terminal user interface for tt.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xolan/timetracker/internal/logsync"
	"github.com/xolan/timetracker/internal/service"
	"github.com/xolan/timetracker/internal/tui/ui"
	"github.com/xolan/timetracker/internal/tui/views"
)

// Tab represents a view tab
type Tab int

const (
	TabEntries Tab = iota
	TabTimer
	TabStats
	TabConfig
)

var tabNames = []string{"Entries", "Timer", "Stats", "Config"}

// Scheduler is the part of the sync scheduler the TUI drives.
type Scheduler interface {
	Trigger()
	Done() <-chan struct{}
}

// syncEventMsg carries a session event into the update loop.
type syncEventMsg logsync.Event

// schedulerDoneMsg means the scheduler loop exited and the TUI should too.
type schedulerDoneMsg struct{}

// Model is the root TUI model
type Model struct {
	services *service.Services
	sched    Scheduler
	events   <-chan logsync.Event

	activeTab Tab
	width     int
	height    int
	showHelp  bool

	sync      service.SyncStatus
	status    string
	statusErr bool

	entriesView views.EntriesModel
	timerView   views.TimerModel
	statsView   views.StatsModel
	configView  views.ConfigModel

	themeProvider *ui.ThemeProvider
	styles        ui.Styles
	keys          ui.KeyMap
}

// New creates the root model and subscribes it to session events. sched
// may be nil, in which case manual sync requests are ignored.
func New(services *service.Services, sched Scheduler) Model {
	themeProvider := ui.NewThemeProvider(services.Config.Get().Theme)
	styles := themeProvider.Styles()
	keys := ui.DefaultKeyMap()

	return Model{
		services:      services,
		sched:         sched,
		events:        services.Session.Subscribe(16),
		activeTab:     TabEntries,
		sync:          services.Sync.Status(),
		themeProvider: themeProvider,
		styles:        styles,
		keys:          keys,
		entriesView:   views.NewEntriesModel(services, styles, keys),
		timerView:     views.NewTimerModel(services, styles, keys),
		statsView:     views.NewStatsModel(services, styles, keys),
		configView:    views.NewConfigModel(services, themeProvider, styles, keys),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.entriesView.Init(),
		m.timerView.Init(),
		m.statsView.Init(),
		m.configView.Init(),
		tick(),
		waitForEvent(m.events),
	}
	if m.sched != nil {
		cmds = append(cmds, waitForScheduler(m.sched.Done()))
	}
	return tea.Batch(cmds...)
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return ui.TickMsg(t)
	})
}

// waitForEvent blocks for the next session event. It returns nil once the
// session closes its subscribers.
func waitForEvent(events <-chan logsync.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return syncEventMsg(ev)
	}
}

func waitForScheduler(done <-chan struct{}) tea.Cmd {
	if done == nil {
		return nil
	}
	return func() tea.Msg {
		<-done
		return schedulerDoneMsg{}
	}
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Forms block tab switching; any focused input also swallows the
		// single-character global keys.
		modalInput := m.isModalInputMode()
		capturingKeys := m.isCapturingKeys()

		switch {
		case msg.String() == "ctrl+c":
			return m, tea.Quit
		case key.Matches(msg, m.keys.Quit) && !capturingKeys:
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help) && !capturingKeys:
			m.showHelp = !m.showHelp
			return m, nil
		case key.Matches(msg, m.keys.Sync) && !capturingKeys:
			if m.sched != nil {
				m.sched.Trigger()
				m.setStatus("Sync requested", false)
			}
			return m, nil
		case key.Matches(msg, m.keys.NextTab) && !modalInput:
			return m.switchTab(Tab((int(m.activeTab) + 1) % len(tabNames)))
		case key.Matches(msg, m.keys.PrevTab) && !modalInput:
			return m.switchTab(Tab((int(m.activeTab) - 1 + len(tabNames)) % len(tabNames)))
		case key.Matches(msg, m.keys.Tab1) && !capturingKeys:
			return m.switchTab(TabEntries)
		case key.Matches(msg, m.keys.Tab2) && !capturingKeys:
			return m.switchTab(TabTimer)
		case key.Matches(msg, m.keys.Tab3) && !capturingKeys:
			return m.switchTab(TabStats)
		case key.Matches(msg, m.keys.Tab4) && !capturingKeys:
			return m.switchTab(TabConfig)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		contentHeight := m.height - 6 // tabs, status line and status bar
		m.entriesView.SetSize(m.width, contentHeight)
		m.timerView.SetSize(m.width, contentHeight)
		m.statsView.SetSize(m.width, contentHeight)
		m.configView.SetSize(m.width, contentHeight)
		return m, nil

	case ui.ThemeChangeRequestMsg:
		m.themeProvider.SetTheme(msg.ThemeName)
		m.styles = m.themeProvider.Styles()
		name := m.themeProvider.CurrentName()
		m, cmd := m.broadcast(ui.ThemeChangedMsg{ThemeName: name, Styles: m.styles})
		return m, tea.Batch(cmd, m.saveThemeConfig(name))

	case ui.TickMsg:
		m.sync = m.services.Sync.Status()
		m, cmd := m.broadcast(msg)
		return m, tea.Batch(cmd, tick())

	case ui.StatusMsg:
		if msg.Err != nil {
			m.setStatus("Error: "+msg.Err.Error(), true)
		} else {
			m.setStatus(msg.Text, false)
		}
		if !msg.Changed {
			return m, nil
		}
		m.sync = m.services.Sync.Status()
		return m.broadcast(ui.DataChangedMsg{})

	case syncEventMsg:
		return m.handleSyncEvent(logsync.Event(msg))

	case schedulerDoneMsg:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	switch m.activeTab {
	case TabEntries:
		m.entriesView, cmd = m.entriesView.Update(msg)
	case TabTimer:
		m.timerView, cmd = m.timerView.Update(msg)
	case TabStats:
		m.statsView, cmd = m.statsView.Update(msg)
	case TabConfig:
		m.configView, cmd = m.configView.Update(msg)
	}
	return m, cmd
}

// handleSyncEvent refreshes the sync badge and reloads the views when the
// event means entries may have changed.
func (m Model) handleSyncEvent(ev logsync.Event) (tea.Model, tea.Cmd) {
	m.sync = m.services.Sync.Status()
	next := waitForEvent(m.events)

	reload := false
	switch ev.Kind {
	case logsync.EventSynced, logsync.EventReportRefresh:
		reload = true
	case logsync.EventRecovered:
		m.setStatus("Log file is back: "+ev.Path, false)
		reload = true
	case logsync.EventSwitched:
		m.setStatus("Now using "+ev.Path, false)
		reload = true
	case logsync.EventLost:
		m.setStatus("Log file lost, saving to the temporary log", true)
	case logsync.EventBackup:
		m.setStatus("Backup written: "+ev.Path, false)
	case logsync.EventError:
		if ev.Err != nil {
			m.setStatus("Sync failed: "+ev.Err.Error(), true)
		}
	}
	if !reload {
		return m, next
	}
	m, cmd := m.broadcast(ui.DataChangedMsg{})
	return m, tea.Batch(cmd, next)
}

// broadcast delivers msg to every view.
func (m Model) broadcast(msg tea.Msg) (Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 4)
	m.entriesView, cmds[0] = m.entriesView.Update(msg)
	m.timerView, cmds[1] = m.timerView.Update(msg)
	m.statsView, cmds[2] = m.statsView.Update(msg)
	m.configView, cmds[3] = m.configView.Update(msg)
	return m, tea.Batch(cmds...)
}

func (m Model) switchTab(t Tab) (tea.Model, tea.Cmd) {
	m.activeTab = t
	return m, m.initCurrentView()
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// View implements tea.Model
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelpOverlay()
	}

	var b strings.Builder
	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	switch m.activeTab {
	case TabEntries:
		b.WriteString(m.entriesView.View())
	case TabTimer:
		b.WriteString(m.timerView.View())
	case TabStats:
		b.WriteString(m.statsView.View())
	case TabConfig:
		b.WriteString(m.configView.View())
	}

	b.WriteString("\n\n")
	if m.status != "" {
		if m.statusErr {
			b.WriteString(m.styles.Error.Render(m.status))
		} else {
			b.WriteString(m.styles.Success.Render(m.status))
		}
	}
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	return m.styles.App.Render(b.String())
}

// renderTabs renders the tab bar
func (m Model) renderTabs() string {
	var tabs []string
	for i, name := range tabNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if Tab(i) == m.activeTab {
			tabs = append(tabs, m.styles.TabActive.Render(label))
		} else {
			tabs = append(tabs, m.styles.TabInactive.Render(label))
		}
	}
	return m.styles.TabBar.Render(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

// renderStatusBar renders key hints on the left and the sync badge on the
// right.
func (m Model) renderStatusBar() string {
	var parts []string

	if m.isModalInputMode() {
		parts = append(parts,
			m.renderKeyHelp("Tab", "switch field"),
			m.renderKeyHelp("Enter", "save"),
			m.renderKeyHelp("Esc", "cancel"))
	} else {
		switch m.activeTab {
		case TabEntries:
			parts = append(parts,
				m.renderKeyHelp("n", "new"),
				m.renderKeyHelp("e", "edit"),
				m.renderKeyHelp("d", "delete"),
				m.renderKeyHelp("b", "bill"),
				m.renderKeyHelp("u/^r", "undo/redo"),
				m.renderKeyHelp("/", "search"),
				m.renderKeyHelp("t/y/w/m", "period"))
		case TabTimer:
			parts = append(parts,
				m.renderKeyHelp("s", "start"),
				m.renderKeyHelp("x", "stop"),
				m.renderKeyHelp("c", "discard"))
		case TabStats:
			parts = append(parts,
				m.renderKeyHelp("w", "week"),
				m.renderKeyHelp("m", "month"))
		case TabConfig:
			parts = append(parts, m.renderKeyHelp("t", "themes"))
		}
		parts = append(parts,
			m.renderKeyHelp("S", "sync"),
			m.renderKeyHelp("?", "help"),
			m.renderKeyHelp("q", "quit"))
	}

	left := strings.Join(parts, "  ")
	badge := m.renderSyncBadge()
	padding := m.width - lipgloss.Width(left) - lipgloss.Width(badge) - 6
	if padding < 1 {
		padding = 1
	}
	return m.styles.StatusBar.Render(left + strings.Repeat(" ", padding) + badge)
}

// renderSyncBadge shows whether local changes reached the log file.
func (m Model) renderSyncBadge() string {
	s := m.sync
	switch {
	case s.Lost && s.UsingTemp:
		return m.styles.SyncLost.Render("LOST · temp log")
	case s.Lost:
		return m.styles.SyncLost.Render("LOST")
	case s.UsingTemp:
		return m.styles.SyncPending.Render("temp log")
	case s.Pending:
		return m.styles.SyncPending.Render("unsaved")
	case s.LastError != nil:
		return m.styles.SyncLost.Render("sync error")
	case s.LastSync.IsZero():
		return m.styles.SyncPending.Render("not synced")
	}
	return m.styles.SyncOK.Render("synced " + s.LastSync.Format("15:04:05"))
}

// renderKeyHelp renders a single key help item
func (m Model) renderKeyHelp(key, desc string) string {
	return fmt.Sprintf("%s %s",
		m.styles.StatusKey.Render(key),
		m.styles.StatusHelp.Render(desc))
}

// isModalInputMode reports whether a form is open. Tab switching is
// blocked so the form cannot be left half filled.
func (m Model) isModalInputMode() bool {
	switch m.activeTab {
	case TabEntries:
		return m.entriesView.IsInputMode()
	case TabTimer:
		return m.timerView.IsInputMode()
	}
	return false
}

// isCapturingKeys reports whether typed characters belong to an input.
func (m Model) isCapturingKeys() bool {
	switch m.activeTab {
	case TabEntries:
		return m.entriesView.IsCapturingKeys()
	case TabTimer:
		return m.timerView.IsInputMode()
	case TabConfig:
		return m.configView.IsSelecting()
	}
	return false
}

// initCurrentView reloads the view being switched to.
func (m Model) initCurrentView() tea.Cmd {
	switch m.activeTab {
	case TabEntries:
		return m.entriesView.Init()
	case TabTimer:
		return m.timerView.Init()
	case TabStats:
		return m.statsView.Init()
	case TabConfig:
		return m.configView.Init()
	}
	return nil
}

// saveThemeConfig writes the chosen theme to config.toml.
func (m Model) saveThemeConfig(themeName string) tea.Cmd {
	return func() tea.Msg {
		cfg := m.services.Config.Get()
		cfg.Theme = themeName
		if err := m.services.Config.Update(cfg); err != nil {
			return ui.StatusMsg{Err: fmt.Errorf("saving theme: %w", err)}
		}
		return ui.StatusMsg{Text: "Theme set to " + themeName}
	}
}

// renderHelpOverlay renders the keyboard reference for the active view.
func (m Model) renderHelpOverlay() string {
	var help strings.Builder

	help.WriteString(m.styles.ViewTitle.Render("Keyboard Shortcuts"))
	help.WriteString("\n\n")

	help.WriteString(m.styles.StatLabel.Render("Global:"))
	help.WriteString("\n")
	help.WriteString("  Tab/1-4    Switch views\n")
	help.WriteString("  S          Sync with the log file now\n")
	help.WriteString("  ?          Toggle help\n")
	help.WriteString("  q          Quit\n")
	help.WriteString("\n")

	switch m.activeTab {
	case TabEntries:
		help.WriteString(m.styles.StatLabel.Render("Entries:"))
		help.WriteString("\n")
		help.WriteString("  t/y        Today/Yesterday\n")
		help.WriteString("  w/W        This/Last week\n")
		help.WriteString("  m/M        This/Last month\n")
		help.WriteString("  j/k        Navigate up/down\n")
		help.WriteString("  n          New entry\n")
		help.WriteString("  e          Edit entry\n")
		help.WriteString("  d          Delete entry\n")
		help.WriteString("  b          Toggle billed\n")
		help.WriteString("  u          Undo\n")
		help.WriteString("  ctrl+r     Redo\n")
		help.WriteString("  /          Search entries\n")
		help.WriteString("  r          Refresh\n")
	case TabTimer:
		help.WriteString(m.styles.StatLabel.Render("Timer:"))
		help.WriteString("\n")
		help.WriteString("  s          Start a timer (stops a running one)\n")
		help.WriteString("  x          Stop timer\n")
		help.WriteString("  c          Discard the running timer\n")
		help.WriteString("  r          Refresh\n")
	case TabStats:
		help.WriteString(m.styles.StatLabel.Render("Stats:"))
		help.WriteString("\n")
		help.WriteString("  w          Weekly view\n")
		help.WriteString("  m          Monthly view\n")
		help.WriteString("  r          Refresh\n")
	case TabConfig:
		help.WriteString(m.styles.StatLabel.Render("Config:"))
		help.WriteString("\n")
		help.WriteString("  t/Enter    Open theme selector\n")
		help.WriteString("  j/k        Navigate themes\n")
		help.WriteString("  Enter      Select theme\n")
		help.WriteString("  Esc        Cancel\n")
	}

	help.WriteString("\n")
	help.WriteString(m.styles.Hint.Render("Press ? to close"))

	return m.styles.App.Render(m.styles.Dialog.Render(help.String()))
}

// Run shows the TUI until the user quits, ctx is cancelled or the
// scheduler stops.
func Run(ctx context.Context, services *service.Services, sched Scheduler) error {
	p := tea.NewProgram(New(services, sched), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
