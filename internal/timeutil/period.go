package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Range is an inclusive time span.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Previous returns the range of equal length immediately before r.
func (r Range) Previous() Range {
	span := r.End.Sub(r.Start)
	end := r.Start.Add(-time.Nanosecond)
	return Range{Start: end.Add(-span), End: end}
}

func (r Range) String() string {
	from, to := r.Start.Format("2006-01-02"), r.End.Format("2006-01-02")
	if from == to {
		return from
	}
	return from + " to " + to
}

var lastDaysPattern = regexp.MustCompile(`^last\s+(\d+)\s*(?:d|days?)?$`)

// Periods lists the named periods Period understands.
var Periods = []string{"today", "yesterday", "week", "last-week", "month", "last-month", "last N days"}

// Period resolves a named period relative to now.
func Period(name string, now time.Time, weekStart time.Weekday) (Range, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "", "today":
		return Range{StartOfDay(now), EndOfDay(now)}, nil
	case "yesterday":
		y := now.AddDate(0, 0, -1)
		return Range{StartOfDay(y), EndOfDay(y)}, nil
	case "week", "this-week":
		start := StartOfWeek(now, weekStart)
		return Range{start, start.AddDate(0, 0, 7).Add(-time.Nanosecond)}, nil
	case "last-week", "prev-week":
		start := StartOfWeek(now, weekStart).AddDate(0, 0, -7)
		return Range{start, start.AddDate(0, 0, 7).Add(-time.Nanosecond)}, nil
	case "month", "this-month":
		start := StartOfMonth(now)
		return Range{start, start.AddDate(0, 1, 0).Add(-time.Nanosecond)}, nil
	case "last-month", "prev-month":
		start := StartOfMonth(now).AddDate(0, -1, 0)
		return Range{start, start.AddDate(0, 1, 0).Add(-time.Nanosecond)}, nil
	}
	if m := lastDaysPattern.FindStringSubmatch(name); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			return Range{}, fmt.Errorf("invalid number of days in %q: must be positive", name)
		}
		return LastDays(n, now), nil
	}
	return Range{}, fmt.Errorf("unknown period %q (use %s)", name, strings.Join(Periods, ", "))
}

// LastDays returns n whole days ending today.
func LastDays(n int, now time.Time) Range {
	return Range{StartOfDay(now.AddDate(0, 0, -(n - 1))), EndOfDay(now)}
}

// ParseDate parses YYYY-MM-DD or DD/MM/YYYY as midnight in loc.
func ParseDate(input string, loc *time.Location) (time.Time, error) {
	if input == "" {
		return time.Time{}, fmt.Errorf("date cannot be empty (use YYYY-MM-DD or DD/MM/YYYY)")
	}
	for _, layout := range []string{"2006-01-02", "02/01/2006"} {
		if t, err := time.ParseInLocation(layout, input, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD or DD/MM/YYYY, e.g. 2024-01-15)", input)
}

// ParseRangeFlags combines --from, --to and --last into a range. --last
// cannot be mixed with the others. An open --from starts at the zero time.
func ParseRangeFlags(from, to string, last int, now time.Time) (Range, error) {
	if last > 0 && (from != "" || to != "") {
		return Range{}, fmt.Errorf("cannot use --last with --from or --to")
	}
	if last > 0 {
		return LastDays(last, now), nil
	}

	r := Range{End: EndOfDay(now)}
	if from != "" {
		start, err := ParseDate(from, now.Location())
		if err != nil {
			return Range{}, fmt.Errorf("invalid --from date: %w", err)
		}
		r.Start = start
	}
	if to != "" {
		end, err := ParseDate(to, now.Location())
		if err != nil {
			return Range{}, fmt.Errorf("invalid --to date: %w", err)
		}
		r.End = EndOfDay(end)
	}
	if r.Start.After(r.End) {
		return Range{}, fmt.Errorf("--from date (%s) is after --to date (%s)",
			r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))
	}
	return r, nil
}

// ParseDateTime parses a point in time for --start and --end flags. A bare
// "15:04" is taken on now's day; full dates accept "2006-01-02 15:04" and
// "2006-01-02T15:04[:05]".
func ParseDateTime(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	loc := now.Location()
	if t, err := time.ParseInLocation("15:04", input, loc); err == nil {
		return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, input, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (use 15:04 or 2006-01-02 15:04)", input)
}
