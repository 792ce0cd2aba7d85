package reconcile

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// ErrUnknownWeekday is returned for a weekday name that is not recognized
var ErrUnknownWeekday = errors.New("unknown weekday")

// weekdayNames accepts English and Dutch names, keyed by folded spelling
var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sun": time.Sunday, "zondag": time.Sunday,
	"monday": time.Monday, "mon": time.Monday, "maandag": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "dinsdag": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday, "woensdag": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "donderdag": time.Thursday,
	"friday": time.Friday, "fri": time.Friday, "vrijdag": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday, "zaterdag": time.Saturday,
}

// WeekdaySet is a set of requested weekdays. An empty set requests no filtering.
type WeekdaySet map[time.Weekday]struct{}

// ParseWeekdays parses weekday names case-insensitively
func ParseWeekdays(names []string) (WeekdaySet, error) {
	set := make(WeekdaySet, len(names))
	for _, name := range names {
		day, ok := weekdayNames[Fold(name)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownWeekday, name)
		}
		set[day] = struct{}{}
	}
	return set, nil
}

// Contains reports whether day is in the set
func (s WeekdaySet) Contains(day time.Weekday) bool {
	_, ok := s[day]
	return ok
}

// Days returns the set's weekdays from Sunday to Saturday
func (s WeekdaySet) Days() []time.Weekday {
	days := make([]time.Weekday, 0, len(s))
	for day := range s {
		days = append(days, day)
	}
	slices.Sort(days)
	return days
}

// FilterWeekdays keeps the events falling on one of the requested days.
// An empty set returns events unfiltered.
func FilterWeekdays(events []ReconciledEvent, days WeekdaySet) []ReconciledEvent {
	if len(days) == 0 {
		return events
	}

	filtered := make([]ReconciledEvent, 0, len(events))
	for _, event := range events {
		if days.Contains(event.Weekday) {
			filtered = append(filtered, event)
		}
	}
	return filtered
}
