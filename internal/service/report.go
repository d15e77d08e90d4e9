package service

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/xolan/timetracker/internal/config"
	"github.com/xolan/timetracker/internal/entry"
	"github.com/xolan/timetracker/internal/filter"
	"github.com/xolan/timetracker/internal/logsync"
	"github.com/xolan/timetracker/internal/settings"
	"github.com/xolan/timetracker/internal/stats"
	"github.com/xolan/timetracker/internal/store"
	"github.com/xolan/timetracker/internal/timeutil"
)

// Report errors
var (
	ErrUnknownGrouping = errors.New("unknown grouping")
	ErrReportNotFound  = errors.New("saved report not found")
	ErrEmptyReportName = errors.New("report name cannot be empty")
)

// GroupBy selects how a report is grouped
type GroupBy string

const (
	GroupByProject GroupBy = "project"
	GroupByTag     GroupBy = "tag"
	GroupByClient  GroupBy = "client"
)

// ParseGroupBy validates a grouping name. Empty means project.
func ParseGroupBy(s string) (GroupBy, error) {
	switch g := GroupBy(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return GroupByProject, nil
	case GroupByProject, GroupByTag, GroupByClient:
		return g, nil
	}
	return "", fmt.Errorf("%w %q (use project, tag or client)", ErrUnknownGrouping, s)
}

// ReportDefinition is a saved report, stored under the reports setting.
type ReportDefinition struct {
	Period  string   `toml:"period"`
	GroupBy GroupBy  `toml:"group_by"`
	Project string   `toml:"project,omitempty"`
	Tags    []string `toml:"tags,omitempty"`
	Clients []string `toml:"clients,omitempty"`
	// Billed is "yes", "no" or empty for both.
	Billed string `toml:"billed,omitempty"`
}

// Filter builds the entry filter the definition describes.
func (d ReportDefinition) Filter() *filter.Filter {
	f := filter.NewFilter("", d.Project, d.Tags, d.Clients)
	switch strings.ToLower(d.Billed) {
	case "yes", "true":
		f.WithBilled(true)
	case "no", "false":
		f.WithBilled(false)
	}
	return f
}

// ReportService provides operations for generating reports
type ReportService struct {
	session  *logsync.Session
	settings *settings.Settings
	config   config.Config
}

// NewReportService creates a new ReportService
func NewReportService(session *logsync.Session, st *settings.Settings, cfg config.Config) *ReportService {
	return &ReportService{
		session:  session,
		settings: st,
		config:   cfg,
	}
}

// Generate totals the entries starting within r that match f, grouped by g.
func (s *ReportService) Generate(g GroupBy, r timeutil.Range, f *filter.Filter) (*ReportData, error) {
	var entries []entry.Entry
	s.session.View(func(st *store.Store) {
		entries = filter.FilterEntries(st.Entries(), f)
	})
	now := s.session.Now()

	var groups []stats.Breakdown
	switch g {
	case GroupByProject, "":
		groups = stats.CalculateProjectBreakdown(entries, r, now)
	case GroupByTag:
		groups = stats.CalculateTagBreakdown(entries, r, now)
	case GroupByClient:
		groups = stats.CalculateClientBreakdown(entries, r, now)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownGrouping, g)
	}

	totals := stats.CalculateStatistics(entries, r, now)
	data := &ReportData{
		Total:      totals.Total,
		EntryCount: totals.EntryCount,
		Period:     r.String(),
		Range:      r,
	}
	for _, b := range groups {
		data.Groups = append(data.Groups, GroupData{Name: b.Name, Total: b.Total, EntryCount: b.EntryCount})
	}
	return data, nil
}

// ForPeriod generates a report over a named period.
func (s *ReportService) ForPeriod(g GroupBy, period string, f *filter.Filter) (*ReportData, error) {
	r, err := timeutil.Period(period, s.session.Now(), s.config.WeekStart())
	if err != nil {
		return nil, err
	}
	data, err := s.Generate(g, r, f)
	if err != nil {
		return nil, err
	}
	if period != "" {
		data.Period = period
	}
	return data, nil
}

// Definitions returns the saved reports.
func (s *ReportService) Definitions() (map[string]ReportDefinition, error) {
	defs := make(map[string]ReportDefinition)
	raw := s.settings.GetString(settings.KeyReports, "")
	if strings.TrimSpace(raw) == "" {
		return defs, nil
	}
	if _, err := toml.Decode(raw, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse saved reports: %w", err)
	}
	return defs, nil
}

// Names returns the saved report names in order.
func (s *ReportService) Names() ([]string, error) {
	defs, err := s.Definitions()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(defs))
	for n := range defs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// Save stores def under name, replacing any earlier definition.
func (s *ReportService) Save(name string, def ReportDefinition) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyReportName
	}
	g, err := ParseGroupBy(string(def.GroupBy))
	if err != nil {
		return err
	}
	def.GroupBy = g
	if _, err := timeutil.Period(def.Period, s.session.Now(), s.config.WeekStart()); err != nil {
		return err
	}
	defs, err := s.Definitions()
	if err != nil {
		return err
	}
	defs[name] = def
	return s.store(defs)
}

// Delete removes a saved report.
func (s *ReportService) Delete(name string) error {
	defs, err := s.Definitions()
	if err != nil {
		return err
	}
	if _, ok := defs[name]; !ok {
		return fmt.Errorf("%w: %s", ErrReportNotFound, name)
	}
	delete(defs, name)
	return s.store(defs)
}

// Run generates a saved report.
func (s *ReportService) Run(name string) (*ReportData, error) {
	defs, err := s.Definitions()
	if err != nil {
		return nil, err
	}
	def, ok := defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrReportNotFound, name)
	}
	return s.ForPeriod(def.GroupBy, def.Period, def.Filter())
}

func (s *ReportService) store(defs map[string]ReportDefinition) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(defs); err != nil {
		return fmt.Errorf("failed to encode saved reports: %w", err)
	}
	return s.settings.SetString(settings.KeyReports, buf.String())
}
