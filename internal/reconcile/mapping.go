package reconcile

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the calendar service's date format
const DateLayout = "2006-01-02"

// ErrInvalidEventDate is returned when a collection date is not YYYY-MM-DD
var ErrInvalidEventDate = errors.New("invalid collection date")

// BuildMapping keys every matched stream's catalog id by its own local id.
// When a local id occurs more than once the first entry wins; the ignored
// entries are returned so the caller can report them.
func BuildMapping(matched []MatchedStream) (IDMapping, []MatchedStream) {
	mapping := make(IDMapping, len(matched))
	var duplicates []MatchedStream

	for _, m := range matched {
		if _, exists := mapping[m.ID]; exists {
			duplicates = append(duplicates, m)
			continue
		}
		mapping[m.ID] = m.CatalogID
	}
	return mapping, duplicates
}

// Apply rewrites each event's category id through the mapping and derives
// its weekday. Events whose local id is not in the mapping keep that id and
// are marked as not mapped. The input slice is left untouched.
func Apply(mapping IDMapping, events []CollectionEvent) ([]ReconciledEvent, error) {
	out := make([]ReconciledEvent, 0, len(events))

	for _, event := range events {
		weekday, err := Weekday(event.Date)
		if err != nil {
			return nil, err
		}

		reconciled := ReconciledEvent{
			CategoryID:      event.LocalCategoryID,
			LocalCategoryID: event.LocalCategoryID,
			Date:            event.Date,
			Weekday:         weekday,
		}
		if catalogID, ok := mapping[event.LocalCategoryID]; ok {
			reconciled.CategoryID = catalogID
			reconciled.Mapped = true
		}
		out = append(out, reconciled)
	}
	return out, nil
}

// Weekday returns the day of the week of an ISO calendar date
func Weekday(date string) (time.Weekday, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %v", ErrInvalidEventDate, date, err)
	}
	return t.Weekday(), nil
}
