package app

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/klabast/wb-services/ophaaldagen/internal/reconcile"
)

var dutchTitle = cases.Title(language.Dutch)

// DisplayName capitalizes a catalog stream name for people to read
func DisplayName(name string) string {
	return dutchTitle.String(name)
}

// weekdayOf returns the English weekday name of a YYYY-MM-DD date, or "" if
// the date does not parse
func weekdayOf(date string) string {
	day, err := reconcile.Weekday(date)
	if err != nil {
		return ""
	}
	return day.String()
}

// weekdayNames lists the days of a filter in week order
func weekdayNames(set reconcile.WeekdaySet) []string {
	days := set.Days()
	if len(days) == 0 {
		return nil
	}
	names := make([]string, 0, len(days))
	for _, day := range days {
		names = append(names, day.String())
	}
	return names
}

// holidayIndex computes the holidays of each year once
type holidayIndex map[int]map[string]string

func newHolidayIndex() holidayIndex {
	return make(holidayIndex)
}

func (h holidayIndex) lookup(date string) string {
	t, err := time.Parse(reconcile.DateLayout, date)
	if err != nil {
		return ""
	}
	year, ok := h[t.Year()]
	if !ok {
		year = GetDutchHolidays(t.Year())
		h[t.Year()] = year
	}
	return year[date]
}
