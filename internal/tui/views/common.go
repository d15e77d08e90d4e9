package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/xolan/timetracker/internal/entry"
	"github.com/xolan/timetracker/internal/service"
	"github.com/xolan/timetracker/internal/tui/ui"
)

// EntryRenderOptions configures how entries are rendered
type EntryRenderOptions struct {
	ShowDate bool // prefix the start time with the date
	Width    int
	Height   int // rows available; 0 renders every entry
	Cursor   int // -1 for none
	Now      time.Time
}

// RenderEntryList renders entries one per line with aligned columns,
// scrolled so the cursor stays visible.
func RenderEntryList(entries []service.IndexedEntry, styles ui.Styles, opts EntryRenderOptions) string {
	if len(entries) == 0 {
		return ""
	}

	indexWidth, projectWidth := 0, 0
	for _, ie := range entries {
		indexWidth = max(indexWidth, len(fmt.Sprintf("[%d]", ie.Index)))
		projectWidth = max(projectWidth, len(ie.Entry.ProjectName()))
	}
	projectWidth = min(projectWidth, 16)

	from, to := visibleWindow(len(entries), opts.Cursor, opts.Height)
	var b strings.Builder
	if from > 0 {
		b.WriteString(styles.Hint.Render(fmt.Sprintf("  ↑ %d more", from)))
		b.WriteString("\n")
	}
	for i := from; i < to; i++ {
		ie := entries[i]
		e := ie.Entry

		index := styles.EntryIndex.Render(fmt.Sprintf("%-*s", indexWidth, fmt.Sprintf("[%d]", ie.Index)))
		span := styles.EntryTime.Render(formatSpan(e, opts.ShowDate))
		project := styles.EntryProject.Render(fmt.Sprintf("%-*s", projectWidth, truncate(e.ProjectName(), projectWidth)))

		fixed := lipgloss.Width(index) + lipgloss.Width(span) + projectWidth + 14
		meta := renderMeta(truncate(e.Meta, max(opts.Width-fixed, 20)), styles)

		var dur string
		switch {
		case e.Running():
			dur = styles.EntryRunning.Render("● " + entry.FormatDuration(e.Duration(opts.Now)))
		default:
			dur = styles.EntryDuration.Render(entry.FormatDuration(e.Duration(opts.Now)))
		}
		billed := " "
		if e.Billed {
			billed = styles.EntryBilled.Render("$")
		}

		line := fmt.Sprintf("%s %s %s %s %s %s", index, span, project, dur, billed, meta)
		if i == opts.Cursor {
			b.WriteString(styles.EntrySelected.Render(line))
		} else {
			b.WriteString(styles.EntryNormal.Render(line))
		}
		b.WriteString("\n")
	}
	if to < len(entries) {
		b.WriteString(styles.Hint.Render(fmt.Sprintf("  ↓ %d more", len(entries)-to)))
		b.WriteString("\n")
	}
	return b.String()
}

// visibleWindow returns the slice of n rows to show in height rows with the
// cursor inside it.
func visibleWindow(n, cursor, height int) (int, int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	from := 0
	if cursor >= height {
		from = cursor - height + 1
	}
	return from, min(n, from+height)
}

// formatSpan renders "08:00-09:30", or "08:00-" for a running entry.
func formatSpan(e entry.Entry, withDate bool) string {
	layout := "15:04"
	if withDate {
		layout = "Mon Jan 02 15:04"
	}
	end := "     "
	if e.End != nil {
		end = e.End.Format("15:04")
	}
	return e.Start.Format(layout) + "-" + end
}

// renderMeta colors #tags and @clients inside meta text.
func renderMeta(meta string, styles ui.Styles) string {
	words := strings.Fields(meta)
	for i, w := range words {
		switch {
		case len(w) > 1 && w[0] == '#':
			words[i] = styles.EntryTag.Render(w)
		case len(w) > 1 && w[0] == '@':
			words[i] = styles.EntryClient.Render(w)
		}
	}
	return strings.Join(words, " ")
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

func pluralize(word string, count int) string {
	if count == 1 {
		return word
	}
	if strings.HasSuffix(word, "y") {
		return word[:len(word)-1] + "ies"
	}
	return word + "s"
}
