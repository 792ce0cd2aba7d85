// Package testutil provides an in-process fake of the Seenons catalog and the
// Huisvuilkalender APIs, loaded with fixture data, for package tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
)

// Path prefixes of the two fake services on the shared server
const (
	SeenonsPrefix  = "/api/me"
	HuisvuilPrefix = "/huisvuil"
)

// Fixture values
const (
	Postcode        = "2512HE"
	HouseNumber     = "68"
	HouseLetter     = "A"
	BagID           = "0518200001769844"
	SinglePostcode  = "2518JC"
	SingleNumber    = "15"
	SingleBagID     = "0518200000812345"
	CatalogPostcode = "2566WD"
	FixtureYear     = 2024
)

// Address is the wire form of an address candidate
type Address struct {
	HouseLetter string `json:"huisletter"`
	BagID       string `json:"bagid"`
}

// Category is the wire form of a calendar waste category
type Category struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// Pickup is the wire form of a calendar entry
type Pickup struct {
	CategoryID int    `json:"afvalstroom_id"`
	Date       string `json:"ophaaldatum"`
}

// Stream is the wire form of a catalog item
type Stream struct {
	ID   int    `json:"stream_product_id"`
	Type string `json:"type"`
}

type streamList struct {
	TotalItems int      `json:"totalItems"`
	Items      []Stream `json:"items"`
}

// FakeAPI serves both services from one httptest server. Fields may be
// changed by a test before the first request.
type FakeAPI struct {
	Server *httptest.Server

	// Addresses is keyed by "POSTCODE:NUMBER"
	Addresses map[string][]Address
	// Categories is keyed by bag id; CategoriesDefault answers other ids
	Categories        map[string][]Category
	CategoriesDefault []Category
	// Calendar is keyed by year and shared by every bag id
	Calendar map[int][]Pickup

	AllStreams      []Stream
	PostcodeStreams map[string][]Stream

	// FailPaths answers matching request paths with a 500
	FailPaths map[string]bool

	mu         sync.Mutex
	requests   []string
	requestIDs []string
}

// NewFakeAPI starts a fake loaded with the default fixture and stops it when
// the test ends.
func NewFakeAPI(t testing.TB) *FakeAPI {
	t.Helper()

	f := &FakeAPI{
		Addresses: map[string][]Address{
			"2512HE:68": {
				{HouseLetter: "", BagID: "0518200001769843"},
				{HouseLetter: "A", BagID: BagID},
				{HouseLetter: "B", BagID: "0518200001769845"},
			},
			"2512HE:66": {
				{HouseLetter: "", BagID: "0518200001769700"},
				{HouseLetter: "A", BagID: "0518200001769701"},
			},
			"2518JC:15": {
				{HouseLetter: "", BagID: SingleBagID},
			},
		},
		Categories: map[string][]Category{},
		CategoriesDefault: []Category{
			{ID: 1, Title: "GFT"},
			{ID: 2, Title: "Papier"},
			{ID: 3, Title: "Restafval"},
			{ID: 4, Title: "Plastic-emmers en flessen"},
		},
		Calendar: map[int][]Pickup{
			FixtureYear: {
				{CategoryID: 1, Date: "2024-01-02"},
				{CategoryID: 2, Date: "2024-01-03"},
				{CategoryID: 3, Date: "2024-01-04"},
				{CategoryID: 4, Date: "2024-01-05"},
				{CategoryID: 9, Date: "2024-01-10"},
				{CategoryID: 1, Date: "2024-01-16"},
				{CategoryID: 2, Date: "2024-04-27"},
				{CategoryID: 1, Date: "2024-12-25"},
			},
		},
		AllStreams: []Stream{
			{ID: 6, Type: "sinaasappelschillen"},
			{ID: 11, Type: "papier"},
			{ID: 17, Type: "gft"},
			{ID: 21, Type: "plastic-emmers"},
		},
		PostcodeStreams: map[string][]Stream{
			"2566WD": {
				{ID: 6, Type: "sinaasappelschillen"},
				{ID: 17, Type: "gft"},
				{ID: 21, Type: "plastic-emmers"},
			},
			"2512HE": {
				{ID: 11, Type: "papier"},
				{ID: 17, Type: "gft"},
			},
			"2518JC": {
				{ID: 17, Type: "gft"},
				{ID: 21, Type: "plastic-emmers"},
			},
		},
		FailPaths: map[string]bool{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+SeenonsPrefix+"/streams", f.handleStreams)
	mux.HandleFunc("GET "+HuisvuilPrefix+"/adressen/{address}", f.handleAddresses)
	mux.HandleFunc("GET "+HuisvuilPrefix+"/rest/adressen/{bagid}/afvalstromen", f.handleCategories)
	mux.HandleFunc("GET "+HuisvuilPrefix+"/rest/adressen/{bagid}/kalender/{year}", f.handleCalendar)

	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.URL.RequestURI())
		f.requestIDs = append(f.requestIDs, r.Header.Get("X-Request-ID"))
		fail := f.FailPaths[r.URL.Path]
		f.mu.Unlock()

		if fail {
			http.Error(w, "fixture failure", http.StatusInternalServerError)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.Server.Close)

	return f
}

// SeenonsURL is the catalog base URL
func (f *FakeAPI) SeenonsURL() string {
	return f.Server.URL + SeenonsPrefix
}

// HuisvuilURL is the calendar base URL
func (f *FakeAPI) HuisvuilURL() string {
	return f.Server.URL + HuisvuilPrefix
}

// Requests returns the request URIs received so far
func (f *FakeAPI) Requests() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

// RequestIDs returns the X-Request-ID header of each request so far
func (f *FakeAPI) RequestIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requestIDs...)
}

func (f *FakeAPI) handleStreams(w http.ResponseWriter, r *http.Request) {
	items := f.AllStreams
	if code := r.URL.Query().Get("postal_code"); code != "" {
		items = f.PostcodeStreams[code]
	}
	if items == nil {
		items = []Stream{}
	}
	writeJSON(w, streamList{TotalItems: len(items), Items: items})
}

func (f *FakeAPI) handleAddresses(w http.ResponseWriter, r *http.Request) {
	candidates, ok := f.Addresses[r.PathValue("address")]
	if !ok {
		candidates = []Address{}
	}
	writeJSON(w, candidates)
}

func (f *FakeAPI) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, ok := f.Categories[r.PathValue("bagid")]
	if !ok {
		categories = f.CategoriesDefault
	}
	writeJSON(w, categories)
}

func (f *FakeAPI) handleCalendar(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil {
		http.Error(w, "bad year", http.StatusBadRequest)
		return
	}
	pickups, ok := f.Calendar[year]
	if !ok {
		pickups = []Pickup{}
	}
	writeJSON(w, pickups)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
