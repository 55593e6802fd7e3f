package domain

import "time"

type HolidaySource interface {
	IsHoliday(date time.Time) bool
}

// HolidaySet is an immutable set of calendar dates.
type HolidaySet struct {
	dates map[string]struct{}
}

func NewHolidaySet(dates ...time.Time) HolidaySet {
	set := HolidaySet{dates: make(map[string]struct{}, len(dates))}
	for _, d := range dates {
		set.dates[FormatDate(DateOf(d))] = struct{}{}
	}
	return set
}

func (s HolidaySet) IsHoliday(date time.Time) bool {
	_, ok := s.dates[FormatDate(DateOf(date))]
	return ok
}

func (s HolidaySet) Len() int {
	return len(s.dates)
}

// Calendar decides whether a date can be booked at all, independent of
// existing reservations.
type Calendar struct {
	holidays HolidaySource
}

func NewCalendar(holidays HolidaySource) Calendar {
	if holidays == nil {
		holidays = HolidaySet{}
	}
	return Calendar{holidays: holidays}
}

func (c Calendar) IsWeekend(date time.Time) bool {
	wd := DateOf(date).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (c Calendar) IsHoliday(date time.Time) bool {
	return c.holidays.IsHoliday(DateOf(date))
}

func (c Calendar) IsBookable(date time.Time) bool {
	return !c.IsWeekend(date) && !c.IsHoliday(date)
}
