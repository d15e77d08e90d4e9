package storage

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xolan/timetracker/internal/entry"
)

// TimeLayout is the single timestamp format written to the log
const TimeLayout = "2006-01-02T15:04:05"

// DeletedMarker fills the start slot of tombstone rows
const DeletedMarker = "deleted"

// Header is the fixed column set written at the top of every log
var Header = []string{
	"Project",
	"Start Time",
	"End Time",
	"Description",
	"ID",
	"Duration (Readable)",
	"Duration (Seconds)",
	"Billed",
}

// Layouts accepted when reading timestamps, besides TimeLayout. Files are
// human-editable, so the common hand-typed variants are tolerated.
var readLayouts = []string{
	TimeLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// Codec converts entries to and from CSV text. All timestamps are written
// and read in Location.
type Codec struct {
	Location *time.Location
}

// NewCodec returns a codec for the given location (Local if nil).
func NewCodec(loc *time.Location) Codec {
	if loc == nil {
		loc = time.Local
	}
	return Codec{Location: loc}
}

func (c Codec) loc() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// FormatTime renders t in TimeLayout.
func (c Codec) FormatTime(t time.Time) string {
	return t.In(c.loc()).Format(TimeLayout)
}

// ParseTime parses any accepted timestamp layout.
func (c Codec) ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(c.loc()), nil
	}
	for _, layout := range readLayouts {
		if t, err := time.ParseInLocation(layout, s, c.loc()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q (expected %s)", s, TimeLayout)
}

// Encode renders entries and tombstones as a complete log file.
// extraColumns are appended after the fixed header in the given order.
func (c Codec) Encode(entries []entry.Entry, tombstones []entry.Tombstone, extraColumns []string) string {
	var b strings.Builder

	writeRow(&b, append(append([]string{}, Header...), extraColumns...))

	for _, e := range entries {
		row := make([]string, 0, len(Header)+len(extraColumns))
		end, readable, seconds := "", "", ""
		if e.End != nil {
			end = c.FormatTime(*e.End)
			d := e.End.Sub(e.Start)
			readable = entry.FormatDuration(d)
			seconds = strconv.FormatInt(int64(d/time.Second), 10)
		}
		row = append(row,
			e.Project,
			c.FormatTime(e.Start),
			end,
			e.Meta,
			strconv.FormatInt(e.ID, 10),
			readable,
			seconds,
			strconv.FormatBool(e.Billed),
		)
		for _, col := range extraColumns {
			row = append(row, e.Extra[col])
		}
		writeRow(&b, row)
	}

	for _, ts := range tombstones {
		row := []string{"", DeletedMarker, c.FormatTime(ts.DeletedAt), "", strconv.FormatInt(ts.ID, 10), "", "", ""}
		for range extraColumns {
			row = append(row, "")
		}
		writeRow(&b, row)
	}

	return b.String()
}

func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quoteField(f))
	}
	b.WriteByte('\n')
}

// quoteField quotes f, doubling internal quotes, iff it contains a comma,
// quote, or line break.
func quoteField(f string) string {
	if !strings.ContainsAny(f, ",\"\r\n") {
		return f
	}
	return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
}

// Row is one decoded CSV record
type Row struct {
	Line   int // 1-indexed line where the record starts
	Fields []string
	Raw    string
}

// Decode splits text into rows and fields. A comma or line break inside an
// open quote is not a split point. An unterminated quote at end of text is
// read again as literal data, with quoting disabled from that field on, and
// reported as a warning instead of failing the decode.
func Decode(text string) ([]Row, []ParseWarning) {
	text = strings.TrimPrefix(text, "\ufeff")

	var (
		rows     []Row
		warnings []ParseWarning
		fields   []string
		field    strings.Builder

		line         = 1
		rowLine      = 1
		rowStart     = 0
		atFieldStart = true
		inQuote      = false
		quoteStart   = 0
		quoteLine    = 0
	)

	endField := func() {
		fields = append(fields, field.String())
		field.Reset()
		atFieldStart = true
	}
	endRow := func(end int) {
		endField()
		raw := text[rowStart:end]
		if !(len(fields) == 1 && fields[0] == "" && strings.TrimSpace(raw) == "") {
			rows = append(rows, Row{Line: rowLine, Fields: fields, Raw: raw})
		}
		fields = nil
	}

	n := len(text)
	for i := 0; i < n; {
		ch := text[i]

		if inQuote {
			if ch == '"' {
				if i+1 < n && text[i+1] == '"' {
					field.WriteByte('"')
					i += 2
					continue
				}
				inQuote = false
				i++
				continue
			}
			if ch == '\n' {
				line++
			}
			field.WriteByte(ch)
			i++
			continue
		}

		switch ch {
		case '"':
			if atFieldStart {
				inQuote = true
				quoteStart = i
				quoteLine = line
				atFieldStart = false
			} else {
				field.WriteByte(ch)
			}
			i++
		case ',':
			endField()
			i++
		case '\r', '\n':
			endRow(i)
			if ch == '\r' && i+1 < n && text[i+1] == '\n' {
				i++
			}
			i++
			line++
			rowLine = line
			rowStart = i
		default:
			field.WriteByte(ch)
			atFieldStart = false
			i++
		}
	}

	if inQuote {
		warnings = append(warnings, ParseWarning{
			Line:    quoteLine,
			Content: firstLine(text[quoteStart:]),
			Err:     fmt.Errorf("%w: unterminated quote, read as literal text", ErrMalformedRow),
		})
		// Re-read from the opening quote with quoting disabled. Fields already
		// completed on this row are kept.
		rest := decodeLiteral(text[quoteStart:], quoteLine)
		if len(rest) > 0 {
			first := rest[0]
			first.Fields = append(fields, first.Fields...)
			first.Line = rowLine
			first.Raw = text[rowStart:quoteStart] + first.Raw
			rows = append(rows, first)
			rows = append(rows, rest[1:]...)
		}
		return rows, warnings
	}

	if len(fields) > 0 || field.Len() > 0 || !atFieldStart {
		endRow(n)
	}
	return rows, warnings
}

// decodeLiteral splits text with no quote handling at all.
func decodeLiteral(text string, startLine int) []Row {
	var rows []Row
	line := startLine
	for _, raw := range splitLines(text) {
		if strings.TrimSpace(raw) != "" {
			rows = append(rows, Row{Line: line, Fields: strings.Split(raw, ","), Raw: raw})
		}
		line++
	}
	return rows
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

func firstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i]
	}
	return s
}
