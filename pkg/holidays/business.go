package holidays

import (
	"time"

	"github.com/rickar/cal/v2"
)

// NewBusinessCalendar returns a business calendar whose holidays are the roster,
// evaluated with this package's own date arithmetic. Weekends are non-workdays.
func NewBusinessCalendar() *cal.BusinessCalendar {
	bc := cal.NewBusinessCalendar()
	for _, def := range Roster {
		def := def
		bc.AddHoliday(&cal.Holiday{
			Name: def.Name,
			Type: cal.ObservancePublic,
			Func: func(_ *cal.Holiday, year int) time.Time {
				return def.On(year).Time(time.UTC)
			},
		})
	}
	return bc
}

// IsWorkday reports whether d is neither a weekend nor a roster holiday.
func IsWorkday(bc *cal.BusinessCalendar, d Date) bool {
	return bc.IsWorkday(d.Time(time.UTC))
}
