package ui

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestDefaultKeyMap(t *testing.T) {
	keys := DefaultKeyMap()

	bindings := map[string]key.Binding{
		"Up": keys.Up, "Down": keys.Down,
		"NextTab": keys.NextTab, "PrevTab": keys.PrevTab,
		"Tab1": keys.Tab1, "Tab2": keys.Tab2, "Tab3": keys.Tab3, "Tab4": keys.Tab4,
		"Select": keys.Select, "Back": keys.Back, "Quit": keys.Quit,
		"Help": keys.Help, "Refresh": keys.Refresh, "Sync": keys.Sync,
		"New": keys.New, "Edit": keys.Edit, "Delete": keys.Delete,
		"Undo": keys.Undo, "Redo": keys.Redo, "Bill": keys.Bill, "Search": keys.Search,
		"Start": keys.Start, "Stop": keys.Stop, "Cancel": keys.Cancel,
	}
	for name, b := range bindings {
		assert.NotEmpty(t, b.Keys(), "%s has no keys", name)
		assert.NotEmpty(t, b.Help().Desc, "%s has no help text", name)
	}
}

func TestKeyMap_RedoAcceptsBothKeys(t *testing.T) {
	keys := DefaultKeyMap()

	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlR}, keys.Redo))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("U")}, keys.Redo))
	assert.False(t, key.Matches(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("u")}, keys.Redo))
}

func TestKeyMap_Periods(t *testing.T) {
	keys := DefaultKeyMap()

	got := map[string]string{}
	for _, p := range keys.Periods() {
		got[p.Binding.Keys()[0]] = p.Period
	}
	assert.Equal(t, map[string]string{
		"t": "today",
		"y": "yesterday",
		"w": "week",
		"W": "last-week",
		"m": "month",
		"M": "last-month",
	}, got)
}
