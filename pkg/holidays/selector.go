package holidays

import (
	"fmt"
	"time"
)

// DefaultGraceDays is how long a holiday stays active after it has passed.
const DefaultGraceDays = 2

// Clock is the time source of the selector.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant. Set moves it.
type FixedClock struct {
	T time.Time
}

func (c *FixedClock) Now() time.Time { return c.T }

func (c *FixedClock) Set(t time.Time) { c.T = t }

// Strategy names the rule used to pick the holiday being edited.
type Strategy string

const (
	// StrategyRollover picks the first calendar holiday whose grace window has not closed.
	StrategyRollover Strategy = "rollover"
	// StrategyNearestStored picks the first date, today or later, that already has override rows.
	StrategyNearestStored Strategy = "nearest-stored"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyRollover, StrategyNearestStored:
		return Strategy(s), nil
	default:
		return "", fmt.Errorf("unknown holiday selection strategy %q", s)
	}
}

// Selector resolves the active holiday from a clock.
type Selector struct {
	Clock     Clock
	Location  *time.Location
	GraceDays int
}

// NewSelector returns a selector with the default grace window.
func NewSelector(clock Clock, loc *time.Location) *Selector {
	if clock == nil {
		clock = SystemClock{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Selector{Clock: clock, Location: loc, GraceDays: DefaultGraceDays}
}

// Today is the current calendar date in the selector's location.
func (s *Selector) Today() Date {
	return DateOf(s.Clock.Now().In(s.Location))
}

// Active returns the holiday active right now.
func (s *Selector) Active() Holiday {
	return s.ActiveOn(s.Today())
}

// ActiveAt returns the holiday active at the instant now.
func (s *Selector) ActiveAt(now time.Time) Holiday {
	return s.ActiveOn(DateOf(now.In(s.Location)))
}

// ActiveOn returns the first holiday of today's year and the next one whose
// date plus the grace window is not before today.
func (s *Selector) ActiveOn(today Date) Holiday {
	list := append(BuildList(today.Year), BuildList(today.Year+1)...)
	sortByDate(list)

	for _, h := range list {
		if !h.Date.AddDays(s.GraceDays).Before(today) {
			return h
		}
	}
	return list[0]
}

// Upcoming returns the active holiday followed by the next n-1 ones.
func (s *Selector) Upcoming(n int) []Holiday {
	today := s.Today()
	active := s.ActiveOn(today)

	list := append(BuildList(today.Year), BuildList(today.Year+1)...)
	sortByDate(list)

	var out []Holiday
	for _, h := range list {
		if len(out) == n {
			break
		}
		if h.Date.Before(active.Date) {
			continue
		}
		out = append(out, h)
	}
	return out
}
