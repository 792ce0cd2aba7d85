// Package reconcile maps the calendar service's locally numbered waste
// categories onto catalog stream ids by name, rewrites collection events
// through that mapping and groups the result per catalog stream.
//
// Fetched records are never modified: every step returns new values.
package reconcile

import "time"

// Unmatched is the catalog id of a local stream whose title matched no
// catalog name. It is never a valid catalog id.
const Unmatched = 0

// CatalogStream is one entry of the waste-stream catalog
type CatalogStream struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// LocalStream is a waste category as named by the calendar service
type LocalStream struct {
	ID    int    `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// CollectionEvent is a single pickup as returned by the calendar service,
// tagged with the calendar service's own category id
type CollectionEvent struct {
	LocalCategoryID int    `json:"local_category_id" yaml:"local_category_id"`
	Date            string `json:"date" yaml:"date"`
}

// MatchedStream is a local stream together with the outcome of name matching
type MatchedStream struct {
	LocalStream

	// CatalogID is the chosen catalog id, or Unmatched
	CatalogID int `json:"catalog_id" yaml:"catalog_id"`

	// Candidates lists every catalog id whose name matched, in catalog order
	Candidates []int `json:"candidates,omitempty" yaml:"candidates,omitempty"`
}

// IsMatched reports whether a catalog stream was found
func (m MatchedStream) IsMatched() bool {
	return m.CatalogID != Unmatched
}

// IsAmbiguous reports whether more than one catalog name matched
func (m MatchedStream) IsAmbiguous() bool {
	return len(m.Candidates) > 1
}

// IDMapping maps local category ids to catalog ids
type IDMapping map[int]int

// ReconciledEvent is a collection event after its category id went through
// the mapping.
type ReconciledEvent struct {
	// CategoryID is the catalog id when Mapped is true. Otherwise it still
	// holds the calendar service's local id.
	CategoryID      int          `json:"category_id" yaml:"category_id"`
	LocalCategoryID int          `json:"local_category_id" yaml:"local_category_id"`
	Date            string       `json:"date" yaml:"date"`
	Weekday         time.Weekday `json:"weekday" yaml:"weekday"`
	Mapped          bool         `json:"mapped" yaml:"mapped"`
}
