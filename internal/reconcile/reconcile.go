package reconcile

import (
	"fmt"

	"go.uber.org/zap"
)

// Input bundles everything fetched for one lookup
type Input struct {
	// Catalog is the full, unfiltered stream catalog used for name matching
	Catalog []CatalogStream
	// Subset holds the catalog streams offered at the caller's postcode
	Subset []CatalogStream
	// Locals are the calendar service's categories for the address
	Locals []LocalStream
	// Events are the calendar service's collection dates for the address
	Events []CollectionEvent
	// Weekdays restricts the report to these days, empty for all days
	Weekdays WeekdaySet
}

// Result is the outcome of Reconcile
type Result struct {
	Report  AvailabilityReport
	Matched []MatchedStream
	Mapping IDMapping
	// Events are the reconciled events after weekday filtering
	Events []ReconciledEvent

	Unmatched  []LocalStream
	Ambiguous  []MatchedStream
	Duplicates []MatchedStream

	// UnmappedEvents counts events whose local id had no mapping entry
	UnmappedEvents int
	// Dropped counts filtered events left out of the report
	Dropped int
}

// Reconciler runs the match, map, filter and group steps with one policy
type Reconciler struct {
	policy Policy
	log    *zap.Logger
}

// New creates a Reconciler. A nil logger discards diagnostics.
func New(policy Policy, log *zap.Logger) *Reconciler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{policy: policy, log: log.Named("reconcile")}
}

// Reconcile produces the availability report for in. Unmatched categories
// and unmapped events are not errors: they are logged, counted and left out
// of the report. Only malformed event dates fail the run.
func (r *Reconciler) Reconcile(in Input) (*Result, error) {
	matched := MatchStreams(in.Catalog, in.Locals, r.policy)
	mapping, duplicates := BuildMapping(matched)

	result := &Result{
		Matched:    matched,
		Mapping:    mapping,
		Duplicates: duplicates,
	}

	for _, m := range matched {
		switch {
		case !m.IsMatched():
			result.Unmatched = append(result.Unmatched, m.LocalStream)
			r.log.Warn("unmatched category, its dates are left out of the report",
				zap.Int("local_id", m.ID), zap.String("title", m.Title))
		case m.IsAmbiguous():
			result.Ambiguous = append(result.Ambiguous, m)
			r.log.Warn("category title matches several catalog streams",
				zap.Int("local_id", m.ID), zap.String("title", m.Title),
				zap.Ints("candidates", m.Candidates), zap.Int("chosen", m.CatalogID),
				zap.String("tie_break", string(r.policy.TieBreak)))
		default:
			r.log.Debug("matched category",
				zap.Int("local_id", m.ID), zap.String("title", m.Title), zap.Int("catalog_id", m.CatalogID))
		}
	}
	for _, d := range duplicates {
		r.log.Warn("duplicate local category id ignored", zap.Int("local_id", d.ID), zap.String("title", d.Title))
	}

	events, err := Apply(mapping, in.Events)
	if err != nil {
		return nil, fmt.Errorf("failed to apply category mapping: %w", err)
	}
	for _, event := range events {
		if !event.Mapped {
			result.UnmappedEvents++
		}
	}
	if result.UnmappedEvents > 0 {
		r.log.Warn("collection events reference unknown categories",
			zap.Int("count", result.UnmappedEvents))
	}

	result.Events = FilterWeekdays(events, in.Weekdays)
	result.Report, result.Dropped = Group(result.Events, in.Subset)

	r.log.Info("reconciled collection calendar",
		zap.Int("categories", len(in.Locals)),
		zap.Int("unmatched", len(result.Unmatched)),
		zap.Int("events", len(in.Events)),
		zap.Int("reported_streams", result.Report.Len()),
		zap.Int("dropped_events", result.Dropped))

	return result, nil
}
