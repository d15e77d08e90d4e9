package views

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xolan/timetracker/internal/entry"
	"github.com/xolan/timetracker/internal/service"
	"github.com/xolan/timetracker/internal/tui/ui"
)

// TimerModel is the model for the timer view
type TimerModel struct {
	services *service.Services
	styles   ui.Styles
	keys     ui.KeyMap

	width   int
	height  int
	status  *service.TimerStatus
	loading bool
	err     error
	now     time.Time

	inputMode bool
	startForm form
	formErr   string
}

// NewTimerModel creates a new timer view model
func NewTimerModel(services *service.Services, styles ui.Styles, keys ui.KeyMap) TimerModel {
	return TimerModel{
		services: services,
		styles:   styles,
		keys:     keys,
		loading:  true,
		startForm: newForm("Start Timer",
			formField{label: "Project:", placeholder: "acme", limit: 60, width: 30},
			formField{label: "Meta:", placeholder: "what you are doing #tag @client", limit: 200, width: 50},
		),
	}
}

// timerStatusMsg is sent when timer status is loaded
type timerStatusMsg struct {
	status *service.TimerStatus
	err    error
}

// timerStartFailedMsg keeps the start form open.
type timerStartFailedMsg struct {
	err error
}

// Init implements tea.Model
func (m TimerModel) Init() tea.Cmd {
	return m.loadStatus()
}

// Update implements tea.Model
func (m TimerModel) Update(msg tea.Msg) (TimerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.inputMode {
			return m.handleInputMode(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Start):
			m.inputMode = true
			m.formErr = ""
			cmd := m.startForm.open()
			return m, cmd
		case key.Matches(msg, m.keys.Stop):
			if m.running() {
				return m, m.stopTimer()
			}
		case key.Matches(msg, m.keys.Cancel):
			if m.running() {
				return m, m.cancelTimer()
			}
		case key.Matches(msg, m.keys.Refresh):
			return m, m.loadStatus()
		}
		return m, nil

	case timerStatusMsg:
		m.loading = false
		m.err = msg.err
		m.status = msg.status
		m.now = m.services.Session.Now()
		return m, nil

	case timerStartFailedMsg:
		m.formErr = msg.err.Error()
		return m, nil

	case formSavedMsg:
		m.closeForm()
		return m, func() tea.Msg { return msg.status }

	case ui.TickMsg:
		m.now = m.services.Session.Now()
		return m, nil

	case ui.DataChangedMsg:
		return m, m.loadStatus()

	case ui.ThemeChangedMsg:
		m.styles = msg.Styles
		return m, nil
	}

	if m.inputMode {
		cmd := m.startForm.update(msg)
		return m, cmd
	}
	return m, nil
}

// handleInputMode handles key events when in input mode
func (m TimerModel) handleInputMode(msg tea.KeyMsg) (TimerModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		return m, m.startTimer(m.startForm.value(fieldProject), m.startForm.value(fieldMeta))
	case key.Matches(msg, m.keys.Back):
		m.closeForm()
		return m, nil
	}
	cmd := m.startForm.update(msg)
	return m, cmd
}

func (m *TimerModel) closeForm() {
	m.inputMode = false
	m.formErr = ""
	m.startForm.close()
}

// View implements tea.Model
func (m TimerModel) View() string {
	if m.inputMode {
		var b strings.Builder
		b.WriteString(m.startForm.view(m.styles, m.formErr))
		if m.running() {
			b.WriteString("\n\n")
			b.WriteString(m.styles.Warning.Render("The running timer on " + m.status.Entry.ProjectName() + " will be stopped"))
		}
		return b.String()
	}

	var b strings.Builder
	b.WriteString(m.styles.ViewTitle.Render("Timer"))
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString("Loading...")
		return b.String()
	}

	if m.err != nil {
		b.WriteString(m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err)))
		return b.String()
	}

	if !m.running() {
		b.WriteString(m.styles.TimerStopped.Render("No timer running"))
		b.WriteString("\n\n")
		b.WriteString(m.styles.Hint.Render("Press 's' to start a new timer"))
		return b.String()
	}

	e := m.status.Entry
	b.WriteString(m.styles.TimerRunning.Render("● Timer Running"))
	b.WriteString("\n\n")
	b.WriteString(m.styles.StatLabel.Render("Project:"))
	b.WriteString(m.styles.StatValue.Render(e.ProjectName()))
	b.WriteString("\n")
	if e.Meta != "" {
		b.WriteString(m.styles.StatLabel.Render("Meta:"))
		b.WriteString(renderMeta(e.Meta, m.styles))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.StatLabel.Render("Started:"))
	b.WriteString(m.styles.StatValue.Render(formatTimerStartTime(e.Start, m.now)))
	b.WriteString("\n")
	b.WriteString(m.styles.StatLabel.Render("Elapsed:"))
	b.WriteString(m.styles.TimerElapsed.Render(entry.FormatDuration(e.Duration(m.now))))
	b.WriteString("\n")

	if n := len(m.status.Inconsistent); n > 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.Warning.Render(fmt.Sprintf("%d other %s have no end time", n, pluralize("entry", n))))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Hint.Render("Press 'x' to stop, 'c' to discard, 's' to switch"))

	return b.String()
}

// SetSize sets the view dimensions
func (m *TimerModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// IsInputMode returns true when the view is capturing keyboard input
func (m TimerModel) IsInputMode() bool {
	return m.inputMode
}

func (m TimerModel) running() bool {
	return m.status != nil && m.status.Running
}

func (m TimerModel) loadStatus() tea.Cmd {
	return func() tea.Msg {
		status, err := m.services.Timer.Status()
		return timerStatusMsg{status: status, err: err}
	}
}

// startTimer starts a timer, stopping a running one first.
func (m TimerModel) startTimer(project, meta string) tea.Cmd {
	return func() tea.Msg {
		started, previous, err := m.services.Timer.Start(project, meta, true)
		if err != nil {
			return timerStartFailedMsg{err: err}
		}
		text := "Started timer"
		if started != nil && started.Project != "" {
			text += " on " + started.Project
		}
		if previous != nil {
			text += fmt.Sprintf(" (stopped previous timer: %s)", previous.Project)
		}
		return formSavedMsg{status: ui.StatusMsg{Text: text, Changed: true}}
	}
}

func (m TimerModel) stopTimer() tea.Cmd {
	return func() tea.Msg {
		e, err := m.services.Timer.Stop()
		if err != nil {
			return ui.StatusMsg{Err: err}
		}
		return ui.StatusMsg{Text: "Stopped: " + summarize(e, e.Duration(m.services.Session.Now())), Changed: true}
	}
}

func (m TimerModel) cancelTimer() tea.Cmd {
	return func() tea.Msg {
		e, err := m.services.Timer.Cancel()
		if errors.Is(err, service.ErrNoTimerRunning) {
			return ui.StatusMsg{Text: "No timer running", Changed: true}
		}
		if err != nil {
			return ui.StatusMsg{Err: err}
		}
		return ui.StatusMsg{Text: "Discarded timer on " + e.ProjectName() + " (u on the entries view to undo)", Changed: true}
	}
}

func formatTimerStartTime(t, now time.Time) string {
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return "today at " + t.Format("15:04")
	}
	return t.Format("Mon Jan 2 at 15:04")
}
