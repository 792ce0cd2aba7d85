package remote

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klabast/wb-services/ophaaldagen/internal/config"
)

func testHTTPConfig() config.HTTPConfig {
	return config.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "ophaaldagen-test"}
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient("seenons", "", testHTTPConfig())
	assert.Error(t, err)
}

func TestGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/me/streams", r.URL.Path)
		assert.Equal(t, "2566WD", r.URL.Query().Get("postal_code"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "ophaaldagen-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "run-1", r.Header.Get("X-Request-ID"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"totalItems": 1}`))
	}))
	defer server.Close()

	client, err := NewClient("seenons", server.URL+"/api/me/", testHTTPConfig(), WithRequestID("run-1"))
	require.NoError(t, err)

	var out struct {
		TotalItems int `json:"totalItems"`
	}
	err = client.GetJSON(context.Background(), "streams", url.Values{"postal_code": {"2566WD"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, 1, out.TotalItems)
}

func TestGetJSON_ColonInPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/adressen/2512HE:68", r.URL.Path)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client, err := NewClient("huisvuilkalender", server.URL, testHTTPConfig())
	require.NoError(t, err)

	var out []map[string]string
	require.NoError(t, client.GetJSON(context.Background(), "/adressen/2512HE:68", nil, &out))
	assert.Empty(t, out)
}

func TestGetJSON_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantErr    error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom", wantStatus: 500},
		{name: "not found", status: http.StatusNotFound, body: "", wantStatus: 404},
		{name: "malformed json", status: http.StatusOK, body: "<html>", wantStatus: 200, wantErr: ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := NewClient("seenons", server.URL, testHTTPConfig())
			require.NoError(t, err)

			var out map[string]any
			err = client.GetJSON(context.Background(), "streams", nil, &out)
			require.Error(t, err)

			var remoteErr *Error
			require.True(t, errors.As(err, &remoteErr))
			assert.Equal(t, "seenons", remoteErr.Service)
			assert.Equal(t, tt.wantStatus, remoteErr.StatusCode)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Equal(t, tt.status == http.StatusNotFound, IsNotFound(err))
		})
	}
}

func TestGetJSON_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client, err := NewClient("seenons", baseURL, testHTTPConfig())
	require.NoError(t, err)

	var out any
	err = client.GetJSON(context.Background(), "streams", nil, &out)

	var remoteErr *Error
	require.True(t, errors.As(err, &remoteErr))
	assert.Zero(t, remoteErr.StatusCode)
}

func TestGetJSON_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := NewClient("seenons", server.URL, testHTTPConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out any
	err = client.GetJSON(ctx, "streams", nil, &out)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetJSON_RateLimited(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	cfg := testHTTPConfig()
	cfg.RateLimit = 20
	client, err := NewClient("seenons", server.URL, cfg)
	require.NoError(t, err)

	start := time.Now()
	for i := 0; i < 3; i++ {
		var out any
		require.NoError(t, client.GetJSON(context.Background(), "streams", nil, &out))
	}

	assert.Equal(t, 3, calls)
	// burst of one: the second and third call each wait ~50ms
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}
