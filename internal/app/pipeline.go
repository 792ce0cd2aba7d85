// Package app runs a collection calendar lookup end to end and renders the
// resulting report.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/klabast/wb-services/ophaaldagen/internal/address"
	"github.com/klabast/wb-services/ophaaldagen/internal/reconcile"
	"github.com/klabast/wb-services/ophaaldagen/internal/seenons"
)

// Catalog is the waste-stream catalog
type Catalog interface {
	AllStreams(ctx context.Context) ([]reconcile.CatalogStream, error)
	StreamsForPostcode(ctx context.Context, postcode string) ([]reconcile.CatalogStream, error)
}

// Calendar is the municipal collection calendar
type Calendar interface {
	address.Lookup
	LocalCategories(ctx context.Context, bagID string) ([]reconcile.LocalStream, error)
	Events(ctx context.Context, bagID string, year int) ([]reconcile.CollectionEvent, error)
}

// Request describes one lookup
type Request struct {
	Postcode    string
	HouseNumber string
	Year        int
	Weekdays    reconcile.WeekdaySet
}

// Pipeline resolves an address, fetches both services and reconciles them
type Pipeline struct {
	resolver   *address.Resolver
	catalog    Catalog
	calendar   Calendar
	reconciler *reconcile.Reconciler
	log        *zap.Logger
}

// NewPipeline wires the clients together. chooser is asked for a house
// letter when an address has several.
func NewPipeline(catalog Catalog, calendar Calendar, chooser address.LetterChooser, policy reconcile.Policy, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		resolver:   address.NewResolver(calendar, chooser, log),
		catalog:    catalog,
		calendar:   calendar,
		reconciler: reconcile.New(policy, log),
		log:        log,
	}
}

// Run performs the lookup and builds the report. An empty report is not an
// error.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Report, error) {
	addr, err := p.resolver.Resolve(ctx, req.Postcode, req.HouseNumber)
	if err != nil {
		return nil, err
	}

	catalog, err := p.catalog.AllStreams(ctx)
	if err != nil {
		return nil, err
	}
	subset, err := p.catalog.StreamsForPostcode(ctx, addr.Postcode)
	if err != nil {
		return nil, err
	}
	locals, err := p.calendar.LocalCategories(ctx, addr.BagID)
	if err != nil {
		return nil, err
	}
	events, err := p.calendar.Events(ctx, addr.BagID, req.Year)
	if err != nil {
		return nil, err
	}

	result, err := p.reconciler.Reconcile(reconcile.Input{
		Catalog:  catalog,
		Subset:   subset,
		Locals:   locals,
		Events:   events,
		Weekdays: req.Weekdays,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile calendar for %s: %w", addr, err)
	}

	report := buildReport(addr, req, result, streamNames(catalog, subset))
	p.log.Info("report ready",
		zap.Stringer("address", addr),
		zap.Int("year", req.Year),
		zap.Int("streams", len(report.Streams)),
		zap.Int("unmatched", len(report.Unmatched)))
	return report, nil
}

// Streams lists the catalog streams offered at a postcode, or the whole
// catalog when all is set
func (p *Pipeline) Streams(ctx context.Context, postcode string, all bool) ([]reconcile.CatalogStream, error) {
	if all {
		return p.catalog.AllStreams(ctx)
	}
	postcode, err := address.NormalizePostcode(postcode)
	if err != nil {
		return nil, err
	}
	return p.catalog.StreamsForPostcode(ctx, postcode)
}

func buildReport(addr address.Address, req Request, result *reconcile.Result, names map[int]string) *Report {
	report := &Report{
		Address:   addr,
		Year:      req.Year,
		Weekdays:  weekdayNames(req.Weekdays),
		Streams:   make([]StreamDates, 0, result.Report.Len()),
		Unmatched: result.Unmatched,
	}

	holidays := newHolidayIndex()
	for _, entry := range result.Report.Entries() {
		stream := StreamDates{
			CatalogID: entry.CatalogID,
			Name:      names[entry.CatalogID],
			Dates:     make([]CollectionDate, 0, len(entry.Dates)),
		}
		for _, date := range entry.Dates {
			stream.Dates = append(stream.Dates, CollectionDate{
				Date:    date,
				Weekday: weekdayOf(date),
				Holiday: holidays.lookup(date),
			})
		}
		report.Streams = append(report.Streams, stream)
	}
	return report
}

// streamNames prefers the postcode's own naming over the full catalog
func streamNames(catalog, subset []reconcile.CatalogStream) map[int]string {
	names := seenons.Names(catalog)
	for id, name := range seenons.Names(subset) {
		names[id] = name
	}
	return names
}
