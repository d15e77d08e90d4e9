package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xolan/timetracker/internal/tui/ui"
)

// formField describes one input of a form.
type formField struct {
	label       string
	placeholder string
	limit       int
	width       int
}

// form is a stack of labelled text inputs with one focused at a time.
type form struct {
	title   string
	labels  []string
	inputs  []textinput.Model
	focused int
}

func newForm(title string, fields ...formField) form {
	f := form{title: title}
	for _, fd := range fields {
		ti := textinput.New()
		ti.Placeholder = fd.placeholder
		ti.CharLimit = fd.limit
		ti.Width = fd.width
		f.labels = append(f.labels, fd.label)
		f.inputs = append(f.inputs, ti)
	}
	return f
}

// open fills the inputs with values and focuses the first one.
func (f *form) open(values ...string) tea.Cmd {
	for i := range f.inputs {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		f.inputs[i].SetValue(v)
		f.inputs[i].CursorEnd()
		f.inputs[i].Blur()
	}
	f.focused = 0
	f.inputs[0].Focus()
	return textinput.Blink
}

func (f *form) close() {
	for i := range f.inputs {
		f.inputs[i].Blur()
	}
}

// cycle moves focus by delta, wrapping around.
func (f *form) cycle(delta int) tea.Cmd {
	f.inputs[f.focused].Blur()
	f.focused = (f.focused + delta + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focused].Focus()
	return textinput.Blink
}

// update routes tab and shift+tab to focus changes and everything else to
// the focused input.
func (f *form) update(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "tab", "down":
			return f.cycle(1)
		case "shift+tab", "up":
			return f.cycle(-1)
		}
	}
	var cmd tea.Cmd
	f.inputs[f.focused], cmd = f.inputs[f.focused].Update(msg)
	return cmd
}

func (f form) value(i int) string {
	return strings.TrimSpace(f.inputs[i].Value())
}

func (f form) view(styles ui.Styles, errMsg string) string {
	var b strings.Builder
	b.WriteString(styles.ViewTitle.Render(f.title))
	b.WriteString("\n\n")
	for i, in := range f.inputs {
		label := "  " + f.labels[i]
		if i == f.focused {
			label = "▸ " + f.labels[i]
		}
		b.WriteString(styles.StatLabel.Render(label))
		b.WriteString("\n")
		b.WriteString(in.View())
		b.WriteString("\n\n")
	}
	if errMsg != "" {
		b.WriteString(styles.Error.Render("Error: " + errMsg))
		b.WriteString("\n\n")
	}
	b.WriteString(styles.Hint.Render("Tab to switch fields, Enter to save, Esc to cancel"))
	return b.String()
}
