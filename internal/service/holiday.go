package service

import (
	"context"
	"fmt"
	"time"

	"attendance-bot/internal/metrics"
	"attendance-bot/pkg/holidays"

	"github.com/rickar/cal/v2"
	"github.com/sirupsen/logrus"
)

// StoredDates is the part of the override store the nearest-stored strategy needs.
type StoredDates interface {
	NextDateWithData(ctx context.Context, from holidays.Date) (*holidays.Date, error)
}

// Target is the holiday date an editor binds to.
type Target struct {
	Holiday  holidays.Holiday
	Strategy holidays.Strategy
	// FellBack is set when nearest-stored found no data and rollover was used instead.
	FellBack bool
}

func (t Target) Date() holidays.Date {
	return t.Holiday.Date
}

// DayInfo describes a single calendar date.
type DayInfo struct {
	Date    holidays.Date
	Holiday *holidays.Holiday
	Workday bool
}

type HolidayService struct {
	selector *holidays.Selector
	store    StoredDates
	business *cal.BusinessCalendar
	logger   *logrus.Logger
}

func NewHolidayService(selector *holidays.Selector, store StoredDates, logger *logrus.Logger) *HolidayService {
	return &HolidayService{
		selector: selector,
		store:    store,
		business: holidays.NewBusinessCalendar(),
		logger:   logger,
	}
}

// Now is the service clock, used to stamp writes.
func (s *HolidayService) Now() time.Time {
	return s.selector.Clock.Now()
}

// Today is the current date in the configured location.
func (s *HolidayService) Today() holidays.Date {
	return s.selector.Today()
}

// Active returns the calendar holiday under the rollover rule.
func (s *HolidayService) Active() holidays.Holiday {
	return s.selector.Active()
}

// Resolve picks the holiday an editor works on using the named strategy.
func (s *HolidayService) Resolve(ctx context.Context, strategy holidays.Strategy) (Target, error) {
	var target Target

	switch strategy {
	case holidays.StrategyRollover:
		target = Target{Holiday: s.selector.Active(), Strategy: strategy}

	case holidays.StrategyNearestStored:
		today := s.selector.Today()
		next, err := s.store.NextDateWithData(ctx, today)
		if err != nil {
			return Target{}, fmt.Errorf("find next date with overrides: %w", err)
		}

		if next == nil {
			s.logger.WithField("today", today.String()).Warn("No stored overrides ahead, falling back to rollover holiday")
			target = Target{Holiday: s.selector.Active(), Strategy: strategy, FellBack: true}
			break
		}

		target = s.TargetOn(*next, strategy)

	default:
		return Target{}, fmt.Errorf("unknown holiday selection strategy %q", strategy)
	}

	metrics.ActiveHolidayTimestamp.WithLabelValues(string(strategy)).Set(float64(target.Date().Time(time.UTC).Unix()))

	s.logger.WithFields(logrus.Fields{
		"strategy":  strategy,
		"holiday":   target.Holiday.Name,
		"date":      target.Date().String(),
		"fell_back": target.FellBack,
	}).Debug("Resolved editing holiday")

	return target, nil
}

// StoredDateName names a nearest-stored target that is not a roster holiday.
const StoredDateName = "Data com registros"

// TargetOn builds the target for a known date, naming it after the roster
// holiday that falls on it when there is one.
func (s *HolidayService) TargetOn(d holidays.Date, strategy holidays.Strategy) Target {
	h, ok := holidays.HolidayOn(d)
	if !ok {
		h = holidays.Holiday{Name: StoredDateName, Date: d}
	}
	return Target{Holiday: h, Strategy: strategy}
}

// List returns the holidays of year in date order.
func (s *HolidayService) List(year int) []holidays.Holiday {
	return holidays.BuildList(year)
}

// Upcoming returns the active holiday and the ones after it.
func (s *HolidayService) Upcoming(n int) []holidays.Holiday {
	return s.selector.Upcoming(n)
}

// CheckDay reports whether d is a roster holiday and whether it is a workday.
func (s *HolidayService) CheckDay(d holidays.Date) DayInfo {
	info := DayInfo{Date: d, Workday: holidays.IsWorkday(s.business, d)}
	if h, ok := holidays.HolidayOn(d); ok {
		info.Holiday = &h
	}
	return info
}
