package service

import "time"

// YearsBetween computes whole completed years between birth and now using
// calendar-field arithmetic. Day-count division would drift across leap
// years: a patient born Feb 29 2000 is 17 on Feb 28 2018 and 18 on
// Mar 1 2018.
func YearsBetween(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() ||
		(now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
