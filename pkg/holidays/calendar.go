package holidays

import (
	"sort"
	"time"
)

// Holiday is a named day of a concrete year. It is derived, never stored.
type Holiday struct {
	Name string `json:"name"`
	Date Date   `json:"date"`
}

// Definition describes one roster entry. Fixed entries use Month/Day,
// movable ones are EasterOffset days away from Easter Sunday.
type Definition struct {
	Name         string
	Month        time.Month
	Day          int
	Movable      bool
	EasterOffset int
}

// On returns the date the definition falls on in year.
func (def Definition) On(year int) Date {
	if def.Movable {
		return Easter(year).AddDays(def.EasterOffset)
	}
	return Date{Year: year, Month: def.Month, Day: def.Day}
}

// Names of the roster entries.
const (
	NewYear         = "New Year"
	CityAnniversary = "City Anniversary"
	Carnival        = "Carnival"
	GoodFriday      = "Good Friday"
	LaborDay        = "Labor Day"
	CorpusChristi   = "Corpus Christi"
	IndependenceDay = "Independence Day"
	PatronSaintDay  = "Our Lady of Aparecida"
	RepublicDay     = "Republic Day"
	BlackAwareness  = "Black Awareness Day"
	Christmas       = "Christmas"
)

// Roster is the fixed set of holidays the call center plans attendance for.
var Roster = []Definition{
	{Name: NewYear, Month: time.January, Day: 1},
	{Name: CityAnniversary, Month: time.January, Day: 25},
	{Name: Carnival, Movable: true, EasterOffset: -47},
	{Name: GoodFriday, Movable: true, EasterOffset: -2},
	{Name: LaborDay, Month: time.May, Day: 1},
	{Name: CorpusChristi, Movable: true, EasterOffset: 60},
	{Name: IndependenceDay, Month: time.September, Day: 7},
	{Name: PatronSaintDay, Month: time.October, Day: 12},
	{Name: RepublicDay, Month: time.November, Day: 15},
	{Name: BlackAwareness, Month: time.November, Day: 20},
	{Name: Christmas, Month: time.December, Day: 25},
}

// Easter returns Easter Sunday of the Gregorian year using the
// Meeus/Jones/Butcher algorithm.
func Easter(year int) Date {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451

	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1

	return Date{Year: year, Month: time.Month(month), Day: day}
}

// BuildList returns the roster evaluated for year, ordered by date.
func BuildList(year int) []Holiday {
	list := make([]Holiday, 0, len(Roster))
	for _, def := range Roster {
		list = append(list, Holiday{Name: def.Name, Date: def.On(year)})
	}
	sortByDate(list)
	return list
}

// HolidayOn returns the roster holiday falling on d, if any.
func HolidayOn(d Date) (Holiday, bool) {
	for _, h := range BuildList(d.Year) {
		if h.Date == d {
			return h, true
		}
	}
	return Holiday{}, false
}

func sortByDate(list []Holiday) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Date.Before(list[j].Date)
	})
}
