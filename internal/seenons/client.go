// Package seenons reads the waste-stream catalog of the Seenons API
package seenons

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"go.uber.org/zap"

	"github.com/klabast/wb-services/ophaaldagen/internal/reconcile"
	"github.com/klabast/wb-services/ophaaldagen/internal/remote"
)

// ServiceName identifies the catalog service in errors and logs
const ServiceName = "seenons"

const (
	streamsPath     = "streams"
	postalCodeQuery = "postal_code"
)

// Getter is the transport the client needs
type Getter interface {
	GetJSON(ctx context.Context, path string, query url.Values, out any) error
}

// streamList is the body of GET /streams
type streamList struct {
	TotalItems int          `json:"totalItems"`
	Items      []streamItem `json:"items"`
}

type streamItem struct {
	StreamProductID int    `json:"stream_product_id"`
	Type            string `json:"type"`
}

// Client fetches catalog streams. The unfiltered catalog is fetched at most
// once per Client.
type Client struct {
	remote Getter
	log    *zap.Logger

	mu  sync.Mutex
	all []reconcile.CatalogStream
}

// NewClient wraps a transport rooted at the Seenons base URL
func NewClient(remote Getter, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{remote: remote, log: log.Named(ServiceName)}
}

// AllStreams returns the full catalog
func (c *Client) AllStreams(ctx context.Context) ([]reconcile.CatalogStream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.all == nil {
		streams, err := c.fetch(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch waste stream catalog: %w", err)
		}
		c.all = streams
	}
	return append([]reconcile.CatalogStream(nil), c.all...), nil
}

// StreamsForPostcode returns the catalog streams offered at a postal code
func (c *Client) StreamsForPostcode(ctx context.Context, postcode string) ([]reconcile.CatalogStream, error) {
	streams, err := c.fetch(ctx, url.Values{postalCodeQuery: {postcode}})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch waste streams for %s: %w", postcode, err)
	}
	return streams, nil
}

func (c *Client) fetch(ctx context.Context, query url.Values) ([]reconcile.CatalogStream, error) {
	var list streamList
	if err := c.remote.GetJSON(ctx, streamsPath, query, &list); err != nil {
		return nil, err
	}

	if list.TotalItems != len(list.Items) {
		c.log.Debug("catalog item count differs from totalItems",
			zap.Int("total_items", list.TotalItems), zap.Int("items", len(list.Items)),
			zap.String("query", query.Encode()))
	}

	streams := make([]reconcile.CatalogStream, 0, len(list.Items))
	for _, item := range list.Items {
		streams = append(streams, reconcile.CatalogStream{ID: item.StreamProductID, Name: item.Type})
	}
	return streams, nil
}

// Names indexes stream names by id, for presentation
func Names(streams []reconcile.CatalogStream) map[int]string {
	names := make(map[int]string, len(streams))
	for _, s := range streams {
		names[s.ID] = s.Name
	}
	return names
}

var _ Getter = (*remote.Client)(nil)
