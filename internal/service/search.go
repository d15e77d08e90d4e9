package service

import (
	"errors"
	"strings"

	"github.com/xolan/timetracker/internal/filter"
	"github.com/xolan/timetracker/internal/logsync"
	"github.com/xolan/timetracker/internal/store"
	"github.com/xolan/timetracker/internal/timeutil"
)

// ErrEmptyQuery is returned when a search has nothing to look for
var ErrEmptyQuery = errors.New("search query cannot be empty")

// SearchService provides search operations for entries
type SearchService struct {
	session *logsync.Session
}

// NewSearchService creates a new SearchService
func NewSearchService(session *logsync.Session) *SearchService {
	return &SearchService{session: session}
}

// Search finds entries whose meta text or project contains keyword
// (case-insensitive). A nil range searches every entry; f narrows further.
func (s *SearchService) Search(keyword string, r *timeutil.Range, f *filter.Filter) (*SearchResult, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" && f.IsEmpty() {
		return nil, ErrEmptyQuery
	}
	needle := strings.ToLower(keyword)

	result := &SearchResult{Query: keyword}
	s.session.View(func(st *store.Store) {
		for i, e := range st.Entries() {
			if r != nil && !r.Contains(e.Start) {
				continue
			}
			if !f.Matches(e) {
				continue
			}
			if needle != "" &&
				!strings.Contains(strings.ToLower(e.Meta), needle) &&
				!strings.Contains(strings.ToLower(e.Project), needle) {
				continue
			}
			result.Entries = append(result.Entries, IndexedEntry{Entry: e, Index: i + 1})
		}
	})
	result.Total = len(result.Entries)
	return result, nil
}
