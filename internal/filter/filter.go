package filter

import (
	"strings"

	"github.com/xolan/timetracker/internal/entry"
)

// Filter represents search and filtering criteria for time tracking entries.
// All filter fields are optional - empty values match all entries.
type Filter struct {
	Keyword string   // Case-insensitive substring search in the meta text
	Project string   // Exact project match (case-insensitive)
	Tags    []string // All specified #tags must be present (AND logic, case-insensitive)
	Clients []string // All specified @clients must be present (AND logic, case-insensitive)
	Billed  *bool    // Billed state, nil matches both
}

// NewFilter creates a new Filter with the given criteria.
// All parameters are optional - pass empty values to match all entries.
func NewFilter(keyword, project string, tags, clients []string) *Filter {
	return &Filter{
		Keyword: keyword,
		Project: project,
		Tags:    tags,
		Clients: clients,
	}
}

// WithBilled restricts the filter to billed or unbilled entries.
func (f *Filter) WithBilled(billed bool) *Filter {
	f.Billed = &billed
	return f
}

// IsEmpty returns true if all filter fields are empty (matches all entries)
func (f *Filter) IsEmpty() bool {
	return f == nil || (f.Keyword == "" && f.Project == "" && len(f.Tags) == 0 &&
		len(f.Clients) == 0 && f.Billed == nil)
}

// FilterEntries returns a new slice containing only entries that match the filter criteria.
// If the filter is empty, returns all entries.
func FilterEntries(entries []entry.Entry, f *Filter) []entry.Entry {
	if f.IsEmpty() {
		return entries
	}

	filtered := make([]entry.Entry, 0)
	for _, e := range entries {
		if f.Matches(e) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// MatchesKeyword returns true if the keyword is found in the entry's meta text (case-insensitive).
// An empty keyword matches all entries.
func (f *Filter) MatchesKeyword(e entry.Entry) bool {
	if f.Keyword == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Meta), strings.ToLower(f.Keyword))
}

// MatchesProject returns true if the entry's project exactly matches the filter project (case-insensitive).
// An empty project filter matches all entries; entry.NoProject matches entries without one.
func (f *Filter) MatchesProject(e entry.Entry) bool {
	if f.Project == "" {
		return true
	}
	return strings.EqualFold(e.ProjectName(), f.Project)
}

// MatchesTags returns true if the entry has ALL specified tags (case-insensitive).
// An empty tags filter matches all entries.
func (f *Filter) MatchesTags(e entry.Entry) bool {
	return containsAll(e.Tags(), f.Tags)
}

// MatchesClients returns true if the entry names ALL specified clients (case-insensitive).
func (f *Filter) MatchesClients(e entry.Entry) bool {
	return containsAll(e.Clients(), f.Clients)
}

// MatchesBilled returns true if the billed state matches, or no state is set.
func (f *Filter) MatchesBilled(e entry.Entry) bool {
	return f.Billed == nil || *f.Billed == e.Billed
}

// Matches reports whether e satisfies every criterion.
func (f *Filter) Matches(e entry.Entry) bool {
	if f.IsEmpty() {
		return true
	}
	return f.MatchesKeyword(e) && f.MatchesProject(e) && f.MatchesTags(e) &&
		f.MatchesClients(e) && f.MatchesBilled(e)
}

func containsAll(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if strings.EqualFold(h, w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
