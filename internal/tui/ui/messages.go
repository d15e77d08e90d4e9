package ui

import "time"

// ThemeChangeRequestMsg is sent when a theme change is requested.
type ThemeChangeRequestMsg struct {
	ThemeName string
}

// ThemeChangedMsg is broadcast to all views when the theme changes.
type ThemeChangedMsg struct {
	ThemeName string
	Styles    Styles
}

// DataChangedMsg is broadcast to all views when entries changed, either
// through a view or because a sync folded in edits made elsewhere.
type DataChangedMsg struct{}

// StatusMsg reports the outcome of an action in the status bar.
type StatusMsg struct {
	Text string
	Err  error
	// Changed asks every view to reload.
	Changed bool
}

// TickMsg is broadcast to all views once a second.
type TickMsg time.Time
