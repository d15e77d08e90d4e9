package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestDefaultStyles(t *testing.T) {
	styles := DefaultStyles()

	for name, style := range map[string]lipgloss.Style{
		"App":           styles.App,
		"TabActive":     styles.TabActive,
		"TabInactive":   styles.TabInactive,
		"ViewTitle":     styles.ViewTitle,
		"StatusBar":     styles.StatusBar,
		"SyncOK":        styles.SyncOK,
		"SyncPending":   styles.SyncPending,
		"SyncLost":      styles.SyncLost,
		"EntrySelected": styles.EntrySelected,
		"EntryTag":      styles.EntryTag,
		"EntryClient":   styles.EntryClient,
		"EntryBilled":   styles.EntryBilled,
		"EntryRunning":  styles.EntryRunning,
		"TimerElapsed":  styles.TimerElapsed,
		"StatLabel":     styles.StatLabel,
		"Hint":          styles.Hint,
		"Dialog":        styles.Dialog,
		"Error":         styles.Error,
	} {
		assert.Contains(t, style.Render("test"), "test", name)
	}
}

func TestStatLabelIsAligned(t *testing.T) {
	styles := DefaultStyles()

	assert.Equal(t, 20, lipgloss.Width(styles.StatLabel.Render("Total:")))
	assert.Equal(t, 20, lipgloss.Width(styles.StatLabel.Render("Average per day:")))
}

func TestNewStylesFromRegistry(t *testing.T) {
	tp := NewThemeProvider("nord")
	styles := tp.Styles()

	assert.Contains(t, styles.ViewTitle.Render("Timer"), "Timer")
	assert.Contains(t, styles.SyncLost.Render("LOST"), "LOST")
}
