// Package huisvuil reads addresses, waste categories and collection dates
// from the Huisvuilkalender API of the municipality of The Hague.
package huisvuil

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/klabast/wb-services/ophaaldagen/internal/reconcile"
)

// ServiceName identifies the calendar service in errors and logs
const ServiceName = "huisvuilkalender"

// Getter is the transport the client needs
type Getter interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
}

// AddressCandidate is one address at a postcode and house number, one per
// house letter
type AddressCandidate struct {
	HouseLetter string `json:"huisletter"`
	BagID       string `json:"bagid"`
}

type wasteStream struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type calendarEntry struct {
	WasteStreamID int    `json:"afvalstroom_id"`
	CollectionDay string `json:"ophaaldatum"`
}

// Client talks to the Huisvuilkalender API
type Client struct {
	remote Getter
	log    *zap.Logger
}

// NewClient wraps a transport rooted at the Huisvuilkalender base URL
func NewClient(remote Getter, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{remote: remote, log: log.Named(ServiceName)}
}

// Addresses lists the address candidates for a postcode and house number.
// An unknown address yields an empty list, not an error.
func (c *Client) Addresses(ctx context.Context, postcode, houseNumber string) ([]AddressCandidate, error) {
	var candidates []AddressCandidate
	path := fmt.Sprintf("adressen/%s:%s", postcode, houseNumber)
	if err := c.remote.GetJSON(ctx, path, nil, &candidates); err != nil {
		return nil, fmt.Errorf("failed to look up address %s %s: %w", postcode, houseNumber, err)
	}
	c.log.Debug("address candidates", zap.String("postcode", postcode),
		zap.String("house_number", houseNumber), zap.Int("count", len(candidates)))
	return candidates, nil
}

// LocalCategories lists the waste categories known for an address
func (c *Client) LocalCategories(ctx context.Context, bagID string) ([]reconcile.LocalStream, error) {
	var streams []wasteStream
	if err := c.remote.GetJSON(ctx, "rest/adressen/"+bagID+"/afvalstromen", nil, &streams); err != nil {
		return nil, fmt.Errorf("failed to fetch waste categories for %s: %w", bagID, err)
	}

	locals := make([]reconcile.LocalStream, 0, len(streams))
	for _, s := range streams {
		locals = append(locals, reconcile.LocalStream{ID: s.ID, Title: s.Title})
	}
	return locals, nil
}

// Events lists the collection dates for an address in a year
func (c *Client) Events(ctx context.Context, bagID string, year int) ([]reconcile.CollectionEvent, error) {
	var entries []calendarEntry
	path := "rest/adressen/" + bagID + "/kalender/" + strconv.Itoa(year)
	if err := c.remote.GetJSON(ctx, path, nil, &entries); err != nil {
		return nil, fmt.Errorf("failed to fetch %d calendar for %s: %w", year, bagID, err)
	}

	events := make([]reconcile.CollectionEvent, 0, len(entries))
	for _, e := range entries {
		events = append(events, reconcile.CollectionEvent{LocalCategoryID: e.WasteStreamID, Date: e.CollectionDay})
	}
	return events, nil
}
