package app

import (
	"time"

	"github.com/klabast/wb-services/ophaaldagen/internal/reconcile"
)

// GetDutchHolidays returns the national public holidays of the Netherlands
// for the given year, keyed by YYYY-MM-DD
func GetDutchHolidays(year int) map[string]string {
	holidays := make(map[string]string)

	// Fixed holidays
	holidays[formatDate(year, 1, 1)] = "Nieuwjaarsdag"
	holidays[formatDate(year, 12, 25)] = "1e Kerstdag"
	holidays[formatDate(year, 12, 26)] = "2e Kerstdag"

	// Koningsdag moves to the 26th when the 27th is a Sunday
	kingsDay := time.Date(year, time.April, 27, 12, 0, 0, 0, time.UTC)
	if kingsDay.Weekday() == time.Sunday {
		kingsDay = kingsDay.AddDate(0, 0, -1)
	}
	holidays[formatDateFromTime(kingsDay)] = "Koningsdag"

	// Bevrijdingsdag is a day off once every five years
	if year%5 == 0 {
		holidays[formatDate(year, 5, 5)] = "Bevrijdingsdag"
	}

	// Easter-based holidays (movable)
	easter := calculateEaster(year)
	holidays[formatDateFromTime(easter.AddDate(0, 0, -2))] = "Goede Vrijdag"
	holidays[formatDateFromTime(easter)] = "1e Paasdag"
	holidays[formatDateFromTime(easter.AddDate(0, 0, 1))] = "2e Paasdag"
	holidays[formatDateFromTime(easter.AddDate(0, 0, 39))] = "Hemelvaartsdag"
	holidays[formatDateFromTime(easter.AddDate(0, 0, 49))] = "1e Pinksterdag"
	holidays[formatDateFromTime(easter.AddDate(0, 0, 50))] = "2e Pinksterdag"

	return holidays
}

// calculateEaster calculates Easter Sunday using the Meeus/Jones/Butcher algorithm
func calculateEaster(year int) time.Time {
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

	// noon keeps the date stable in every zone
	return time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)
}

func formatDate(year, month, day int) string {
	return time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC).Format(reconcile.DateLayout)
}

func formatDateFromTime(t time.Time) string {
	return t.Format(reconcile.DateLayout)
}
