package storage

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xolan/timetracker/internal/entry"
)

// IDSource reports IDs already in use outside the file being parsed
// (the entry store, its change log, and tombstones).
type IDSource interface {
	Taken(id int64) bool
}

// NoIDs is an IDSource with nothing taken.
type NoIDs struct{}

// Taken always returns false.
func (NoIDs) Taken(int64) bool { return false }

// ParseResult contains the entries and tombstones found in a decoded log,
// plus warnings about rows that were skipped or repaired.
type ParseResult struct {
	Entries      []entry.Entry
	Tombstones   []entry.Tombstone
	ExtraColumns []string
	Warnings     []ParseWarning
	// Dirty is set when parsing changed the data (reassigned IDs, repaired
	// rows) and the file should be rewritten.
	Dirty bool
}

type columns struct {
	project, start, end, id, billed, desc int
	extra                                 []extraColumn
}

type extraColumn struct {
	index int
	name  string
}

// mapColumns matches header names case-insensitively by substring. Duration
// columns are derived data and ignored. The first column matching a key wins;
// anything else is kept as an extra passthrough column.
func mapColumns(header []string) columns {
	c := columns{project: -1, start: -1, end: -1, id: -1, billed: -1, desc: -1}
	for i, name := range header {
		lower := strings.ToLower(strings.TrimSpace(name))
		switch {
		case strings.Contains(lower, "duration"):
		case strings.Contains(lower, "project") && c.project < 0:
			c.project = i
		case strings.Contains(lower, "start") && c.start < 0:
			c.start = i
		case strings.Contains(lower, "end") && c.end < 0:
			c.end = i
		case strings.Contains(lower, "description") && c.desc < 0:
			c.desc = i
		case strings.Contains(lower, "billed") && c.billed < 0:
			c.billed = i
		case strings.Contains(lower, "id") && c.id < 0:
			c.id = i
		default:
			c.extra = append(c.extra, extraColumn{index: i, name: name})
		}
	}
	return c
}

func defaultColumns() columns {
	return columns{project: 0, start: 1, end: 2, desc: 3, id: 4, billed: 7}
}

func field(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i]
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseBilled(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1", "x":
		return true
	}
	return false
}

// Parse turns decoded rows into entries and tombstones. The first row is the
// header. Rows without a usable start become tombstones when they carry a
// valid ID and are dropped otherwise. Missing and duplicate IDs are replaced
// with fresh ones that are unique against ids and the file itself.
func (c Codec) Parse(rows []Row, ids IDSource, now time.Time) ParseResult {
	result := ParseResult{}
	if len(rows) == 0 {
		return result
	}
	if ids == nil {
		ids = NoIDs{}
	}

	cols := mapColumns(rows[0].Fields)
	data := rows[1:]
	if cols.start < 0 && cols.id < 0 {
		result.Warnings = append(result.Warnings, ParseWarning{
			Line:    rows[0].Line,
			Content: rows[0].Raw,
			Err:     fmt.Errorf("%w: no recognizable header, using default column order", ErrMalformedRow),
		})
		cols = defaultColumns()
		data = rows
		result.Dirty = true
	}
	for _, x := range cols.extra {
		result.ExtraColumns = append(result.ExtraColumns, x.name)
	}

	// IDs written in the file are reserved up front so a minted ID never
	// collides with a row that comes later.
	fileIDs := make(map[int64]bool, len(data))
	for _, r := range data {
		if id, ok := parseID(field(r.Fields, cols.id)); ok {
			fileIDs[id] = true
		}
	}
	minted := make(map[int64]bool)
	mint := func() int64 {
		id := now.UnixMilli()
		for ids.Taken(id) || fileIDs[id] || minted[id] {
			id++
		}
		minted[id] = true
		return id
	}
	warn := func(r Row, kind error, format string, args ...any) {
		result.Warnings = append(result.Warnings, ParseWarning{
			Line:    r.Line,
			Content: r.Raw,
			Err:     fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...)),
		})
	}

	seen := make(map[int64]int) // id -> index in result.Entries
	var tombstones []entry.Tombstone

	for _, r := range data {
		idStr := field(r.Fields, cols.id)
		id, validID := parseID(idStr)

		start, err := c.ParseTime(field(r.Fields, cols.start))
		if err != nil {
			if !validID {
				warn(r, ErrMalformedRow, "no usable start time and no valid id, row dropped")
				continue
			}
			deletedAt, derr := c.ParseTime(field(r.Fields, cols.end))
			if derr != nil {
				deletedAt = now
			}
			tombstones = append(tombstones, entry.Tombstone{ID: id, DeletedAt: deletedAt})
			continue
		}

		e := entry.Entry{
			Project: field(r.Fields, cols.project),
			Start:   start,
			Billed:  parseBilled(field(r.Fields, cols.billed)),
			Meta:    field(r.Fields, cols.desc),
		}

		if endStr := strings.TrimSpace(field(r.Fields, cols.end)); endStr != "" {
			end, err := c.ParseTime(endStr)
			switch {
			case err != nil:
				warn(r, ErrMalformedRow, "unreadable end time %q, entry treated as running", endStr)
			case end.Before(start):
				warn(r, ErrMalformedRow, "end time before start time, end set to start")
				e.End = entry.Ptr(start)
				result.Dirty = true
			default:
				e.End = entry.Ptr(end)
			}
		}

		if len(cols.extra) > 0 {
			e.Extra = make(map[string]string, len(cols.extra))
			for _, x := range cols.extra {
				e.Extra[x.name] = field(r.Fields, x.index)
			}
		}

		switch {
		case !validID:
			if strings.TrimSpace(idStr) != "" {
				warn(r, ErrMalformedRow, "invalid id %q replaced", idStr)
			}
			e.ID = mint()
			result.Dirty = true
		default:
			if prev, dup := seen[id]; dup {
				if result.Entries[prev].Start.Equal(start) {
					warn(r, ErrDuplicateID, "id %d repeated with the same start, duplicate row dropped", id)
					result.Dirty = true
					continue
				}
				e.ID = mint()
				warn(r, ErrDuplicateID, "id %d already used, reassigned to %d", id, e.ID)
				result.Dirty = true
			} else {
				e.ID = id
			}
		}

		seen[e.ID] = len(result.Entries)
		result.Entries = append(result.Entries, e.Normalize())
	}

	tombSeen := make(map[int64]bool, len(tombstones))
	for _, ts := range tombstones {
		if _, live := seen[ts.ID]; live || tombSeen[ts.ID] {
			result.Dirty = true
			continue
		}
		tombSeen[ts.ID] = true
		result.Tombstones = append(result.Tombstones, ts)
	}

	return result
}

// Read decodes and parses a complete log text.
func (c Codec) Read(text string, ids IDSource, now time.Time) ParseResult {
	rows, warnings := Decode(text)
	result := c.Parse(rows, ids, now)
	result.Warnings = append(warnings, result.Warnings...)
	return result
}
