package domain

import (
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateOf drops the time of day, keeping the calendar date t carries in its
// own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AppointmentTime is the normalized start of a booking on the given date.
func AppointmentTime(date time.Time) time.Time {
	return DateOf(date).Add(AppointmentHour * time.Hour)
}

// NextDay returns the calendar date following date.
func NextDay(date time.Time) time.Time {
	return DateOf(date).AddDate(0, 0, 1)
}
