package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xolan/timetracker/internal/entry"
	"github.com/xolan/timetracker/internal/service"
	"github.com/xolan/timetracker/internal/timeutil"
	"github.com/xolan/timetracker/internal/tui/ui"
)

// entryMode represents the current mode of the entries view
type entryMode int

const (
	entryModeNormal entryMode = iota
	entryModeAdd
	entryModeEdit
	entryModeDelete
	entryModeSearch
)

const dateTimeLayout = "2006-01-02 15:04"

// Form field positions. Both forms start with project and meta; the add
// form then asks for a duration, the edit form for start and end.
const (
	fieldProject  = 0
	fieldMeta     = 1
	fieldDuration = 2
	fieldStart    = 2
	fieldEnd      = 3
)

// EntriesModel lists the entries of a period and edits them.
type EntriesModel struct {
	services *service.Services
	styles   ui.Styles
	keys     ui.KeyMap

	width   int
	height  int
	cursor  int
	period  string
	result  *service.ListResult
	loading bool
	err     error

	mode     entryMode
	addForm  form
	editForm form
	formErr  string
	editing  entry.Entry
	editIdx  int

	searchInput   textinput.Model
	searchResults []service.IndexedEntry
	searchCursor  int
	searched      bool
}

// NewEntriesModel creates a new entries view model
func NewEntriesModel(services *service.Services, styles ui.Styles, keys ui.KeyMap) EntriesModel {
	searchInput := textinput.New()
	searchInput.Placeholder = "Search project and meta text..."
	searchInput.CharLimit = 100
	searchInput.Width = 40

	return EntriesModel{
		services: services,
		styles:   styles,
		keys:     keys,
		period:   "today",
		loading:  true,
		addForm: newForm("New Entry",
			formField{label: "Project:", placeholder: "acme", limit: 60, width: 30},
			formField{label: "Meta:", placeholder: "what you did #tag @client", limit: 200, width: 50},
			formField{label: "Duration:", placeholder: "1h30m, 45m, 2h", limit: 20, width: 20},
		),
		editForm: newForm("Edit Entry",
			formField{label: "Project:", limit: 60, width: 30},
			formField{label: "Meta:", limit: 200, width: 50},
			formField{label: "Start:", placeholder: dateTimeLayout, limit: 20, width: 20},
			formField{label: "End:", placeholder: dateTimeLayout + " (empty while running)", limit: 20, width: 20},
		),
		searchInput: searchInput,
	}
}

// entriesLoadedMsg is sent when entries are loaded
type entriesLoadedMsg struct {
	result *service.ListResult
	err    error
}

// searchResultsMsg is sent when search results are loaded
type searchResultsMsg struct {
	results []service.IndexedEntry
	err     error
}

// formFailedMsg keeps a form open with the reason the save was refused.
type formFailedMsg struct {
	err error
}

// formSavedMsg closes the form after a successful save.
type formSavedMsg struct {
	status ui.StatusMsg
}

// Init implements tea.Model
func (m EntriesModel) Init() tea.Cmd {
	return m.loadEntries()
}

// Update implements tea.Model
func (m EntriesModel) Update(msg tea.Msg) (EntriesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case entryModeAdd, entryModeEdit:
			return m.handleFormMode(msg)
		case entryModeDelete:
			return m.handleDeleteMode(msg)
		case entryModeSearch:
			return m.handleSearchMode(msg)
		}
		return m.handleNormalMode(msg)

	case entriesLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.result = msg.result
			if m.cursor >= len(m.result.Entries) {
				m.cursor = max(0, len(m.result.Entries)-1)
			}
		}
		return m, nil

	case searchResultsMsg:
		m.searched = true
		m.err = msg.err
		if msg.err == nil {
			m.searchResults = msg.results
			if m.searchCursor >= len(m.searchResults) {
				m.searchCursor = max(0, len(m.searchResults)-1)
			}
		}
		return m, nil

	case formFailedMsg:
		m.formErr = msg.err.Error()
		return m, nil

	case formSavedMsg:
		m.closeForm()
		return m, func() tea.Msg { return msg.status }

	case ui.DataChangedMsg:
		cmds := []tea.Cmd{m.loadEntries()}
		if m.mode == entryModeSearch && m.searched {
			cmds = append(cmds, m.searchEntries(m.searchInput.Value()))
		}
		return m, tea.Batch(cmds...)

	case ui.ThemeChangedMsg:
		m.styles = msg.Styles
		return m, nil
	}

	return m.updateInputs(msg)
}

// updateInputs forwards non-key messages such as cursor blinks.
func (m EntriesModel) updateInputs(msg tea.Msg) (EntriesModel, tea.Cmd) {
	var cmd tea.Cmd
	switch m.mode {
	case entryModeAdd:
		cmd = m.addForm.update(msg)
	case entryModeEdit:
		cmd = m.editForm.update(msg)
	case entryModeSearch:
		if m.searchInput.Focused() {
			m.searchInput, cmd = m.searchInput.Update(msg)
		}
	}
	return m, cmd
}

func (m EntriesModel) handleNormalMode(msg tea.KeyMsg) (EntriesModel, tea.Cmd) {
	for _, p := range m.keys.Periods() {
		if key.Matches(msg, p.Binding) {
			m.period = p.Period
			m.cursor = 0
			return m, m.loadEntries()
		}
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.entries())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadEntries()
	case key.Matches(msg, m.keys.New):
		m.mode = entryModeAdd
		m.formErr = ""
		m.services.Entry.SetModalOpen(true)
		cmd := m.addForm.open()
		return m, cmd
	case key.Matches(msg, m.keys.Edit):
		ie, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = entryModeEdit
		m.formErr = ""
		m.editing = ie.Entry
		m.editIdx = ie.Index
		m.services.Entry.SetModalOpen(true)
		end := ""
		if ie.Entry.End != nil {
			end = ie.Entry.End.Format(dateTimeLayout)
		}
		cmd := m.editForm.open(ie.Entry.Project, ie.Entry.Meta, ie.Entry.Start.Format(dateTimeLayout), end)
		return m, cmd
	case key.Matches(msg, m.keys.Delete):
		if _, ok := m.selected(); ok {
			m.mode = entryModeDelete
		}
	case key.Matches(msg, m.keys.Bill):
		if ie, ok := m.selected(); ok {
			return m, m.toggleBilled(ie)
		}
	case key.Matches(msg, m.keys.Undo):
		return m, m.undo()
	case key.Matches(msg, m.keys.Redo):
		return m, m.redo()
	case key.Matches(msg, m.keys.Search):
		m.mode = entryModeSearch
		m.searchInput.SetValue("")
		m.searchInput.Focus()
		m.searched = false
		m.searchResults = nil
		m.searchCursor = 0
		return m, textinput.Blink
	}
	return m, nil
}

// handleFormMode handles key events while the add or edit form is open
func (m EntriesModel) handleFormMode(msg tea.KeyMsg) (EntriesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		if m.mode == entryModeAdd {
			return m, m.addEntry(m.addForm.value(fieldProject), m.addForm.value(fieldMeta), m.addForm.value(fieldDuration))
		}
		changes, err := m.editChanges()
		if err != nil {
			m.formErr = err.Error()
			return m, nil
		}
		if changes.Empty() {
			m.closeForm()
			return m, nil
		}
		return m, m.editEntry(m.editIdx, changes)
	case key.Matches(msg, m.keys.Back):
		m.closeForm()
		return m, nil
	}

	return m.updateInputs(msg)
}

func (m *EntriesModel) closeForm() {
	m.addForm.close()
	m.editForm.close()
	m.mode = entryModeNormal
	m.formErr = ""
	m.services.Entry.SetModalOpen(false)
}

// editChanges compares the edit form with the entry being edited and keeps
// only the fields that differ.
func (m EntriesModel) editChanges() (service.Edit, error) {
	var changes service.Edit
	now := m.services.Session.Now()

	if p := m.editForm.value(fieldProject); p != m.editing.Project {
		changes.Project = &p
	}
	if meta := m.editForm.value(fieldMeta); meta != m.editing.Meta {
		changes.Meta = &meta
	}
	if s := m.editForm.value(fieldStart); s != m.editing.Start.Format(dateTimeLayout) {
		start, err := timeutil.ParseDateTime(s, now)
		if err != nil {
			return service.Edit{}, err
		}
		changes.Start = &start
	}
	oldEnd := ""
	if m.editing.End != nil {
		oldEnd = m.editing.End.Format(dateTimeLayout)
	}
	if e := m.editForm.value(fieldEnd); e != oldEnd {
		if e == "" {
			return service.Edit{}, fmt.Errorf("end time cannot be cleared, start a timer instead")
		}
		end, err := timeutil.ParseDateTime(e, now)
		if err != nil {
			return service.Edit{}, err
		}
		changes.End = &end
	}
	return changes, nil
}

// handleDeleteMode handles key events when in delete confirmation mode
func (m EntriesModel) handleDeleteMode(msg tea.KeyMsg) (EntriesModel, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.mode = entryModeNormal
		if ie, ok := m.selected(); ok {
			return m, m.deleteEntry(ie.Index)
		}
	case "n", "N", "esc":
		m.mode = entryModeNormal
	}
	return m, nil
}

// handleSearchMode handles key events when in search mode
func (m EntriesModel) handleSearchMode(msg tea.KeyMsg) (EntriesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		if m.searchInput.Focused() {
			query := strings.TrimSpace(m.searchInput.Value())
			if query != "" {
				m.searchInput.Blur()
				return m, m.searchEntries(query)
			}
		}
		return m, nil
	case key.Matches(msg, m.keys.Back):
		m.mode = entryModeNormal
		m.searchInput.Blur()
		m.searched = false
		m.searchResults = nil
		m.err = nil
		return m, nil
	}

	if m.searchInput.Focused() {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.searchCursor > 0 {
			m.searchCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.searchCursor < len(m.searchResults)-1 {
			m.searchCursor++
		}
	case key.Matches(msg, m.keys.Search):
		m.searchInput.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

// View implements tea.Model
func (m EntriesModel) View() string {
	switch m.mode {
	case entryModeAdd:
		return m.addForm.view(m.styles, m.formErr)
	case entryModeEdit:
		return m.editForm.view(m.styles, m.formErr)
	case entryModeDelete:
		return m.renderDeleteConfirm()
	case entryModeSearch:
		return m.renderSearchView()
	}

	var b strings.Builder
	b.WriteString(m.styles.ViewTitle.Render("Entries for " + m.periodTitle()))
	b.WriteString("\n")

	if m.loading {
		b.WriteString("Loading...")
		return b.String()
	}
	if m.err != nil {
		b.WriteString(m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err)))
		return b.String()
	}

	entries := m.entries()
	if len(entries) == 0 {
		b.WriteString(m.styles.Hint.Render("No entries found"))
		b.WriteString("\n\n")
		b.WriteString(m.styles.Hint.Render("Press 'n' to add a new entry"))
		return b.String()
	}

	b.WriteString(RenderEntryList(entries, m.styles, EntryRenderOptions{
		ShowDate: m.isMultiDayRange(),
		Width:    m.width,
		Height:   m.height - 6,
		Cursor:   m.cursor,
		Now:      m.services.Session.Now(),
	}))

	b.WriteString(strings.Repeat("─", min(50, max(m.width, 1))))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Total: %s (%d %s)",
		entry.FormatDuration(m.result.Total),
		len(entries),
		pluralize("entry", len(entries))))

	return b.String()
}

// renderDeleteConfirm renders the delete confirmation dialog
func (m EntriesModel) renderDeleteConfirm() string {
	var b strings.Builder
	b.WriteString(m.styles.ViewTitle.Render("Delete Entry"))
	b.WriteString("\n\n")

	if ie, ok := m.selected(); ok {
		e := ie.Entry
		b.WriteString(m.styles.Warning.Render("Delete this entry? Press u afterwards to undo."))
		b.WriteString("\n\n")
		b.WriteString(m.styles.StatLabel.Render("Project:"))
		b.WriteString(m.styles.StatValue.Render(e.ProjectName()))
		b.WriteString("\n")
		b.WriteString(m.styles.StatLabel.Render("Meta:"))
		b.WriteString(m.styles.StatValue.Render(e.Meta))
		b.WriteString("\n")
		b.WriteString(m.styles.StatLabel.Render("Duration:"))
		b.WriteString(m.styles.StatValue.Render(entry.FormatDuration(e.Duration(m.services.Session.Now()))))
		b.WriteString("\n\n")
	}

	b.WriteString(m.styles.Hint.Render("Press Y to confirm, N or Esc to cancel"))
	return b.String()
}

// renderSearchView renders the search interface
func (m EntriesModel) renderSearchView() string {
	var b strings.Builder

	b.WriteString(m.styles.ViewTitle.Render("Search Entries"))
	b.WriteString("\n\n")
	b.WriteString(m.searchInput.View())
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	}

	if !m.searched {
		b.WriteString(m.styles.Hint.Render("Enter a search term and press Enter"))
		b.WriteString("\n\n")
		b.WriteString(m.styles.Hint.Render("Press Esc to return to entries"))
		return b.String()
	}

	if len(m.searchResults) == 0 {
		b.WriteString(m.styles.Hint.Render("No results found"))
		b.WriteString("\n\n")
		b.WriteString(m.styles.Hint.Render("Press / to search again, Esc to return"))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("Found %d %s:\n\n", len(m.searchResults), pluralize("result", len(m.searchResults))))
	b.WriteString(RenderEntryList(m.searchResults, m.styles, EntryRenderOptions{
		ShowDate: true,
		Width:    m.width,
		Height:   m.height - 10,
		Cursor:   m.searchCursor,
		Now:      m.services.Session.Now(),
	}))
	b.WriteString("\n")
	b.WriteString(m.styles.Hint.Render("j/k navigate  / search again  Esc return"))

	return b.String()
}

// SetSize sets the view dimensions
func (m *EntriesModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Period returns the period being listed.
func (m EntriesModel) Period() string {
	return m.period
}

// IsInputMode returns true when the view is capturing keyboard input
func (m EntriesModel) IsInputMode() bool {
	return m.mode == entryModeAdd || m.mode == entryModeEdit
}

// IsCapturingKeys reports whether typed characters belong to an input.
func (m EntriesModel) IsCapturingKeys() bool {
	return m.IsInputMode() || (m.mode == entryModeSearch && m.searchInput.Focused())
}

func (m EntriesModel) entries() []service.IndexedEntry {
	if m.result == nil {
		return nil
	}
	return m.result.Entries
}

func (m EntriesModel) selected() (service.IndexedEntry, bool) {
	entries := m.entries()
	if m.cursor < 0 || m.cursor >= len(entries) {
		return service.IndexedEntry{}, false
	}
	return entries[m.cursor], true
}

func (m EntriesModel) periodTitle() string {
	return strings.ReplaceAll(m.period, "-", " ")
}

func (m EntriesModel) isMultiDayRange() bool {
	return m.period != "today" && m.period != "yesterday"
}

func (m EntriesModel) loadEntries() tea.Cmd {
	period := m.period
	return func() tea.Msg {
		result, err := m.services.Entry.ListPeriod(period, nil)
		return entriesLoadedMsg{result: result, err: err}
	}
}

func (m EntriesModel) addEntry(project, meta, duration string) tea.Cmd {
	return func() tea.Msg {
		if duration == "" {
			return formFailedMsg{err: fmt.Errorf("duration is required")}
		}
		e, err := m.services.Entry.Create(project, strings.TrimSpace(meta+" for "+duration))
		if err != nil {
			return formFailedMsg{err: err}
		}
		return formSavedMsg{status: ui.StatusMsg{Text: "Logged: " + summarize(e, e.Duration(m.services.Session.Now())), Changed: true}}
	}
}

func (m EntriesModel) editEntry(index int, changes service.Edit) tea.Cmd {
	return func() tea.Msg {
		_, updated, err := m.services.Entry.Edit(index, changes)
		if err != nil {
			return formFailedMsg{err: err}
		}
		return formSavedMsg{status: ui.StatusMsg{
			Text:    fmt.Sprintf("Updated entry %d: %s", index, summarize(updated, updated.Duration(m.services.Session.Now()))),
			Changed: true,
		}}
	}
}

func (m EntriesModel) deleteEntry(index int) tea.Cmd {
	return func() tea.Msg {
		e, err := m.services.Entry.Delete(index)
		if err != nil {
			return ui.StatusMsg{Err: err}
		}
		return ui.StatusMsg{Text: "Deleted: " + summarize(e, e.Duration(m.services.Session.Now())) + " (u to undo)", Changed: true}
	}
}

func (m EntriesModel) toggleBilled(ie service.IndexedEntry) tea.Cmd {
	billed := !ie.Entry.Billed
	return func() tea.Msg {
		if _, _, err := m.services.Entry.Edit(ie.Index, service.Edit{Billed: &billed}); err != nil {
			return ui.StatusMsg{Err: err}
		}
		state := "unbilled"
		if billed {
			state = "billed"
		}
		return ui.StatusMsg{Text: fmt.Sprintf("Marked entry %d as %s", ie.Index, state), Changed: true}
	}
}

func (m EntriesModel) undo() tea.Cmd {
	return func() tea.Msg {
		delta, err := m.services.Entry.Undo()
		if err != nil {
			return ui.StatusMsg{Err: err}
		}
		return ui.StatusMsg{Text: "Undone: " + delta.Summary(), Changed: true}
	}
}

func (m EntriesModel) redo() tea.Cmd {
	return func() tea.Msg {
		delta, err := m.services.Entry.Redo()
		if err != nil {
			return ui.StatusMsg{Err: err}
		}
		return ui.StatusMsg{Text: "Redone: " + delta.Summary(), Changed: true}
	}
}

func (m EntriesModel) searchEntries(query string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.services.Search.Search(query, nil, nil)
		if err != nil {
			return searchResultsMsg{err: err}
		}
		return searchResultsMsg{results: result.Entries}
	}
}

// summarize renders "acme: fix login #bug (1h 30m)".
func summarize(e entry.Entry, d time.Duration) string {
	s := e.ProjectName()
	if e.Meta != "" {
		s += ": " + e.Meta
	}
	return s + " (" + entry.FormatDuration(d) + ")"
}
