package service

import (
	"github.com/xolan/timetracker/internal/config"
	"github.com/xolan/timetracker/internal/entry"
	"github.com/xolan/timetracker/internal/logsync"
	"github.com/xolan/timetracker/internal/stats"
	"github.com/xolan/timetracker/internal/store"
	"github.com/xolan/timetracker/internal/timeutil"
)

// StatsService provides statistics operations
type StatsService struct {
	session *logsync.Session
	config  config.Config
}

// NewStatsService creates a new StatsService
func NewStatsService(session *logsync.Session, cfg config.Config) *StatsService {
	return &StatsService{
		session: session,
		config:  cfg,
	}
}

// Weekly returns this week's statistics compared with last week.
func (s *StatsService) Weekly() (*StatsResult, error) {
	return s.compare("week", "last-week", "this week", "week")
}

// Monthly returns this month's statistics compared with last month.
func (s *StatsService) Monthly() (*StatsResult, error) {
	return s.compare("month", "last-month", "this month", "month")
}

// ForRange returns statistics for r compared with the span just before it.
func (s *StatsService) ForRange(r timeutil.Range) (*StatsResult, error) {
	return s.calculate(r, r.Previous(), r.String(), "period"), nil
}

func (s *StatsService) compare(current, previous, period, periodName string) (*StatsResult, error) {
	now := s.session.Now()
	cur, err := timeutil.Period(current, now, s.config.WeekStart())
	if err != nil {
		return nil, err
	}
	prev, err := timeutil.Period(previous, now, s.config.WeekStart())
	if err != nil {
		return nil, err
	}
	return s.calculate(cur, prev, period, periodName), nil
}

// calculate computes statistics for the current and previous ranges
func (s *StatsService) calculate(cur, prev timeutil.Range, period, periodName string) *StatsResult {
	var entries []entry.Entry
	s.session.View(func(st *store.Store) {
		entries = st.Entries()
	})
	now := s.session.Now()

	current := stats.CalculateStatistics(entries, cur, now)
	previous := stats.CalculateStatistics(entries, prev, now)

	return &StatsResult{
		Statistics:    current,
		ProjectStats:  stats.CalculateProjectBreakdown(entries, cur, now),
		TagStats:      stats.CalculateTagBreakdown(entries, cur, now),
		ClientStats:   stats.CalculateClientBreakdown(entries, cur, now),
		Comparison:    stats.FormatComparison(stats.CompareStatistics(current, previous), periodName),
		Period:        period,
		Range:         cur,
		PreviousRange: prev,
	}
}
