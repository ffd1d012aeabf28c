// Package dates provides calendar-aware date arithmetic shared by the
// registration validators and the document placeholder resolver.
package dates

import "time"

// ISODate is the wire layout for dates throughout the service.
const ISODate = "2006-01-02"

// ParseISO parses an ISO calendar date (YYYY-MM-DD) in UTC.
func ParseISO(value string) (time.Time, error) {
	return time.Parse(ISODate, value)
}

// Age returns full years elapsed between birth and now, decrementing when the
// birthday has not yet been reached this year. This is calendar subtraction,
// not floor(days/365).
func Age(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	return years
}

// MonthsSince returns full months elapsed between birth and now.
func MonthsSince(birth, now time.Time) int {
	months := (now.Year()-birth.Year())*12 + int(now.Month()) - int(birth.Month())
	if now.Day() < birth.Day() {
		months--
	}
	return months
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
