package reconcile

// Availability lists the collection dates of one catalog stream
type Availability struct {
	CatalogID int      `json:"catalog_id" yaml:"catalog_id"`
	Dates     []string `json:"dates" yaml:"dates"`
}

// AvailabilityReport maps catalog ids to their collection dates. Streams
// appear in the order their first date was seen, dates in calendar order.
type AvailabilityReport struct {
	entries []Availability
	index   map[int]int
}

// Group collects the dates of every event whose category id belongs to the
// postcode's catalog subset. Unmatched ids and ids outside the subset are
// dropped; the number of dropped events is returned alongside the report.
func Group(events []ReconciledEvent, subset []CatalogStream) (AvailabilityReport, int) {
	allowed := make(map[int]struct{}, len(subset))
	for _, stream := range subset {
		if stream.ID != Unmatched {
			allowed[stream.ID] = struct{}{}
		}
	}

	var report AvailabilityReport
	dropped := 0
	for _, event := range events {
		if _, ok := allowed[event.CategoryID]; !ok {
			dropped++
			continue
		}
		report.add(event.CategoryID, event.Date)
	}
	return report, dropped
}

func (r *AvailabilityReport) add(catalogID int, date string) {
	if r.index == nil {
		r.index = make(map[int]int)
	}
	i, ok := r.index[catalogID]
	if !ok {
		i = len(r.entries)
		r.index[catalogID] = i
		r.entries = append(r.entries, Availability{CatalogID: catalogID})
	}
	r.entries[i].Dates = append(r.entries[i].Dates, date)
}

// Len returns the number of catalog streams in the report
func (r AvailabilityReport) Len() int {
	return len(r.entries)
}

// IsEmpty reports whether no dates were collected
func (r AvailabilityReport) IsEmpty() bool {
	return len(r.entries) == 0
}

// IDs returns the catalog ids in report order
func (r AvailabilityReport) IDs() []int {
	ids := make([]int, len(r.entries))
	for i, entry := range r.entries {
		ids[i] = entry.CatalogID
	}
	return ids
}

// Dates returns the dates collected for catalogID, nil when absent
func (r AvailabilityReport) Dates(catalogID int) []string {
	i, ok := r.index[catalogID]
	if !ok {
		return nil
	}
	return append([]string(nil), r.entries[i].Dates...)
}

// Entries returns a copy of the report in order
func (r AvailabilityReport) Entries() []Availability {
	out := make([]Availability, len(r.entries))
	for i, entry := range r.entries {
		out[i] = Availability{
			CatalogID: entry.CatalogID,
			Dates:     append([]string(nil), entry.Dates...),
		}
	}
	return out
}
