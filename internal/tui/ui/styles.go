package ui

import (
	"github.com/charmbracelet/lipgloss"
	tint "github.com/lrstanley/bubbletint"
)

// Styles contains all the styles used in the TUI
type Styles struct {
	App lipgloss.Style

	// Tab bar
	TabBar      lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style

	ViewTitle lipgloss.Style

	// Status bar
	StatusBar   lipgloss.Style
	StatusKey   lipgloss.Style
	StatusValue lipgloss.Style
	StatusHelp  lipgloss.Style

	// Sync state badges in the status bar
	SyncOK      lipgloss.Style
	SyncPending lipgloss.Style
	SyncLost    lipgloss.Style

	// Entry list
	EntrySelected lipgloss.Style
	EntryNormal   lipgloss.Style
	EntryIndex    lipgloss.Style
	EntryTime     lipgloss.Style
	EntryDuration lipgloss.Style
	EntryProject  lipgloss.Style
	EntryTag      lipgloss.Style
	EntryClient   lipgloss.Style
	EntryBilled   lipgloss.Style
	EntryRunning  lipgloss.Style

	// Timer
	TimerRunning lipgloss.Style
	TimerStopped lipgloss.Style
	TimerElapsed lipgloss.Style

	// Stats
	StatLabel lipgloss.Style
	Hint      lipgloss.Style // unpadded StatLabel for sentences
	StatValue lipgloss.Style

	Dialog lipgloss.Style

	Error   lipgloss.Style
	Warning lipgloss.Style
	Success lipgloss.Style
}

// palette names the semantic colors a theme supplies.
type palette struct {
	primary, secondary, accent, muted lipgloss.TerminalColor
	success, warning, danger          lipgloss.TerminalColor
	fg, bg, selection                 lipgloss.TerminalColor
}

// DefaultStyles returns styles on the 256-color palette, for terminals where
// no theme is loaded.
func DefaultStyles() Styles {
	return newStyles(palette{
		primary:   lipgloss.Color("99"),
		secondary: lipgloss.Color("39"),
		accent:    lipgloss.Color("212"),
		muted:     lipgloss.Color("240"),
		success:   lipgloss.Color("82"),
		warning:   lipgloss.Color("214"),
		danger:    lipgloss.Color("196"),
		fg:        lipgloss.Color("252"),
		bg:        lipgloss.Color("236"),
		selection: lipgloss.Color("237"),
	})
}

// NewStylesFromRegistry maps the current bubbletint theme onto the UI:
// purple for titles and projects, cyan for times and tags, bright purple for
// durations, bright black for labels and green/yellow/red for state.
func NewStylesFromRegistry(r *tint.Registry) Styles {
	return newStyles(palette{
		primary:   r.Purple(),
		secondary: r.Cyan(),
		accent:    r.BrightPurple(),
		muted:     r.BrightBlack(),
		success:   r.Green(),
		warning:   r.Yellow(),
		danger:    r.Red(),
		fg:        r.Fg(),
		bg:        r.Bg(),
		selection: r.BrightBlack(),
	})
}

func newStyles(p palette) Styles {
	badge := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	return Styles{
		App: lipgloss.NewStyle().Padding(1, 2),

		TabBar: lipgloss.NewStyle().
			MarginBottom(1).
			BorderBottom(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(p.muted),
		TabActive:   lipgloss.NewStyle().Foreground(p.primary).Bold(true).Padding(0, 2),
		TabInactive: lipgloss.NewStyle().Foreground(p.muted).Padding(0, 2),

		ViewTitle: lipgloss.NewStyle().Foreground(p.primary).Bold(true).MarginBottom(1),

		StatusBar:   lipgloss.NewStyle().Foreground(p.fg).Background(p.bg).Padding(0, 1),
		StatusKey:   lipgloss.NewStyle().Foreground(p.secondary).Bold(true),
		StatusValue: lipgloss.NewStyle().Foreground(p.fg),
		StatusHelp:  lipgloss.NewStyle().Foreground(p.muted),

		SyncOK:      badge.Foreground(p.success),
		SyncPending: badge.Foreground(p.warning),
		SyncLost:    badge.Foreground(p.danger),

		EntrySelected: lipgloss.NewStyle().Background(p.selection).Bold(true),
		EntryNormal:   lipgloss.NewStyle(),
		EntryIndex:    lipgloss.NewStyle().Foreground(p.muted),
		EntryTime:     lipgloss.NewStyle().Foreground(p.secondary),
		EntryDuration: lipgloss.NewStyle().Foreground(p.accent).Width(8).Align(lipgloss.Right),
		EntryProject:  lipgloss.NewStyle().Foreground(p.primary).Bold(true),
		EntryTag:      lipgloss.NewStyle().Foreground(p.secondary),
		EntryClient:   lipgloss.NewStyle().Foreground(p.accent),
		EntryBilled:   lipgloss.NewStyle().Foreground(p.success),
		EntryRunning:  lipgloss.NewStyle().Foreground(p.success).Bold(true),

		TimerRunning: lipgloss.NewStyle().Foreground(p.success).Bold(true),
		TimerStopped: lipgloss.NewStyle().Foreground(p.muted),
		TimerElapsed: lipgloss.NewStyle().Foreground(p.accent).Bold(true),

		StatLabel: lipgloss.NewStyle().Foreground(p.muted).Width(20),
		Hint:      lipgloss.NewStyle().Foreground(p.muted),
		StatValue: lipgloss.NewStyle().Foreground(p.fg).Bold(true),

		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.primary).
			Padding(1, 2).
			Width(56),

		Error:   lipgloss.NewStyle().Foreground(p.danger),
		Warning: lipgloss.NewStyle().Foreground(p.warning),
		Success: lipgloss.NewStyle().Foreground(p.success),
	}
}
