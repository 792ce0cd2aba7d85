package seenons

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klabast/wb-services/ophaaldagen/internal/config"
	"github.com/klabast/wb-services/ophaaldagen/internal/reconcile"
	"github.com/klabast/wb-services/ophaaldagen/internal/remote"
)

const allStreamsJSON = `{"totalItems": 4, "items": [
	{"stream_product_id": 6, "type": "sinaasappelschillen"},
	{"stream_product_id": 11, "type": "papier"},
	{"stream_product_id": 17, "type": "gft"},
	{"stream_product_id": 21, "type": "plastic-emmers"}
]}`

const postcodeStreamsJSON = `{"totalItems": 3, "items": [
	{"stream_product_id": 6, "type": "sinaasappelschillen"},
	{"stream_product_id": 17, "type": "gft"},
	{"stream_product_id": 21, "type": "plastic-emmers"}
]}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	transport, err := remote.NewClient(ServiceName, server.URL+"/api/me", config.HTTPConfig{Timeout: 5 * time.Second})
	require.NoError(t, err)
	return NewClient(transport, nil)
}

func TestStreamsForPostcode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/me/streams", r.URL.Path)
		assert.Equal(t, "2566WD", r.URL.Query().Get("postal_code"))
		w.Write([]byte(postcodeStreamsJSON))
	})

	streams, err := client.StreamsForPostcode(context.Background(), "2566WD")
	require.NoError(t, err)

	require.Len(t, streams, 3)
	assert.Equal(t, reconcile.CatalogStream{ID: 6, Name: "sinaasappelschillen"}, streams[0])
	assert.Equal(t, "plastic-emmers", streams[2].Name)
}

func TestAllStreams_FetchedOnce(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Empty(t, r.URL.RawQuery)
		w.Write([]byte(allStreamsJSON))
	})

	first, err := client.AllStreams(context.Background())
	require.NoError(t, err)
	first[0].Name = "changed"

	second, err := client.AllStreams(context.Background())
	require.NoError(t, err)

	assert.Len(t, second, 4)
	assert.Equal(t, "sinaasappelschillen", second[0].Name)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAllStreams_Failure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	})

	_, err := client.AllStreams(context.Background())
	require.Error(t, err)

	var remoteErr *remote.Error
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, http.StatusServiceUnavailable, remoteErr.StatusCode)
}

func TestStreamsForPostcode_Malformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": "none"}`))
	})

	_, err := client.StreamsForPostcode(context.Background(), "2566WD")
	assert.ErrorIs(t, err, remote.ErrMalformedResponse)
}

func TestNames(t *testing.T) {
	names := Names([]reconcile.CatalogStream{{ID: 6, Name: "sinaasappelschillen"}, {ID: 17, Name: "gft"}})
	assert.Equal(t, map[int]string{6: "sinaasappelschillen", 17: "gft"}, names)
}
