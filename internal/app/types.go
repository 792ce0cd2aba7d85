package app

import (
	"github.com/klabast/wb-services/ophaaldagen/internal/address"
	"github.com/klabast/wb-services/ophaaldagen/internal/reconcile"
)

// CollectionDate is a single pickup date in a report
type CollectionDate struct {
	Date    string `json:"date" yaml:"date"`
	Weekday string `json:"weekday" yaml:"weekday"`
	Holiday string `json:"holiday,omitempty" yaml:"holiday,omitempty"`
}

// StreamDates holds the pickup dates of one catalog stream
type StreamDates struct {
	CatalogID int              `json:"catalog_id" yaml:"catalog_id"`
	Name      string           `json:"name" yaml:"name"`
	Dates     []CollectionDate `json:"dates" yaml:"dates"`
}

// Report represents the collection calendar of one household
type Report struct {
	Address  address.Address `json:"address" yaml:"address"`
	Year     int             `json:"year" yaml:"year"`
	Weekdays []string        `json:"weekdays,omitempty" yaml:"weekdays,omitempty"`
	Streams  []StreamDates   `json:"streams" yaml:"streams"`

	// Unmatched lists the calendar categories no catalog stream was found for
	Unmatched []reconcile.LocalStream `json:"unmatched,omitempty" yaml:"unmatched,omitempty"`
}

// IsEmpty reports whether the report holds no dates
func (r *Report) IsEmpty() bool {
	return len(r.Streams) == 0
}
