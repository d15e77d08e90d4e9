// Package stats aggregates entry durations for reports.
package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/xolan/timetracker/internal/entry"
	"github.com/xolan/timetracker/internal/timeutil"
)

const (
	noTags    = "(no tags)"
	noClients = "(no client)"
)

// Statistics contains aggregated statistics for a set of entries
type Statistics struct {
	Total           time.Duration
	AveragePerDay   time.Duration
	EntryCount      int
	DaysWithEntries int
	BilledTotal     time.Duration
}

// Breakdown is the total for one project, tag or client.
type Breakdown struct {
	Name       string
	Total      time.Duration
	EntryCount int
}

// Comparison is the change from a previous period.
type Comparison struct {
	Delta   time.Duration
	Percent float64
}

// inRange reports whether an entry starts inside r.
func inRange(e entry.Entry, r timeutil.Range) bool {
	return r.Contains(e.Start)
}

// CalculateStatistics computes statistics for entries starting within r.
// Running entries count up to now.
func CalculateStatistics(entries []entry.Entry, r timeutil.Range, now time.Time) Statistics {
	stats := Statistics{}

	if len(entries) == 0 {
		return stats
	}

	daysWithEntries := make(map[string]bool)
	for _, e := range entries {
		if !inRange(e, r) {
			continue
		}
		d := e.Duration(now)
		stats.Total += d
		stats.EntryCount++
		if e.Billed {
			stats.BilledTotal += d
		}
		daysWithEntries[e.Start.Format("2006-01-02")] = true
	}

	stats.DaysWithEntries = len(daysWithEntries)

	totalDays := int(r.End.Sub(r.Start).Hours()/24) + 1
	if totalDays > 0 {
		stats.AveragePerDay = stats.Total / time.Duration(totalDays)
	}

	return stats
}

// CalculateProjectBreakdown groups entries by project, largest total first.
func CalculateProjectBreakdown(entries []entry.Entry, r timeutil.Range, now time.Time) []Breakdown {
	return breakdown(entries, r, now, func(e entry.Entry) []string {
		return []string{e.ProjectName()}
	})
}

// CalculateTagBreakdown groups entries by #tag, largest total first.
// Entries with multiple tags contribute to each tag.
func CalculateTagBreakdown(entries []entry.Entry, r timeutil.Range, now time.Time) []Breakdown {
	return breakdown(entries, r, now, func(e entry.Entry) []string {
		if tags := e.Tags(); len(tags) > 0 {
			return tags
		}
		return []string{noTags}
	})
}

// CalculateClientBreakdown groups entries by @client, largest total first.
func CalculateClientBreakdown(entries []entry.Entry, r timeutil.Range, now time.Time) []Breakdown {
	return breakdown(entries, r, now, func(e entry.Entry) []string {
		if clients := e.Clients(); len(clients) > 0 {
			return clients
		}
		return []string{noClients}
	})
}

func breakdown(entries []entry.Entry, r timeutil.Range, now time.Time, keys func(entry.Entry) []string) []Breakdown {
	groups := make(map[string]*Breakdown)
	for _, e := range entries {
		if !inRange(e, r) {
			continue
		}
		d := e.Duration(now)
		for _, k := range keys(e) {
			g, ok := groups[k]
			if !ok {
				g = &Breakdown{Name: k}
				groups[k] = g
			}
			g.Total += d
			g.EntryCount++
		}
	}

	out := make([]Breakdown, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// CompareStatistics returns the change from previous to current.
func CompareStatistics(current, previous Statistics) Comparison {
	c := Comparison{Delta: current.Total - previous.Total}
	if previous.Total > 0 {
		c.Percent = float64(c.Delta) / float64(previous.Total) * 100
	}
	return c
}

// FormatComparison renders a comparison as "up 2h from last week".
func FormatComparison(c Comparison, periodName string) string {
	switch {
	case c.Delta > 0:
		return fmt.Sprintf("up %s from last %s", entry.FormatDuration(c.Delta), periodName)
	case c.Delta < 0:
		return fmt.Sprintf("down %s from last %s", entry.FormatDuration(-c.Delta), periodName)
	}
	return fmt.Sprintf("same as last %s", periodName)
}
