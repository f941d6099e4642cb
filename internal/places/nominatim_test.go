package places

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{
		httpClient: srv.Client(),
		baseURL:    srv.URL,
		interval:   time.Millisecond,
		logger:     zap.NewNop(),
	}
}

func TestSearchNearbyHealthPlaces(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"), "nominatim requires a User-Agent")
		assert.Equal(t, "json", r.URL.Query().Get("format"))

		q := r.URL.Query().Get("q")
		var rows []nominatimResult
		switch q {
		case "hospital in Mumbai":
			rows = []nominatimResult{
				{PlaceName: "City Hospital", DisplayName: "City Hospital, Mumbai", Lat: "19.1", Lon: "72.8"},
				// Duplicate coordinates and address, must be dropped later.
				{PlaceName: "City Hospital", DisplayName: "City Hospital, Mumbai", Lat: "19.1", Lon: "72.8"},
			}
		case "clinic in Mumbai":
			rows = []nominatimResult{
				{DisplayName: "Sunrise Clinic, Andheri, Mumbai", Lat: "19.2", Lon: "72.9"},
			}
		}
		json.NewEncoder(w).Encode(rows)
	})

	results := client.SearchNearbyHealthPlaces(context.Background(), "Mumbai", 8)

	require.Len(t, results, 2)
	assert.Equal(t, Place{
		Name:    "City Hospital",
		Type:    "hospital",
		Address: "City Hospital, Mumbai",
		Lat:     "19.1",
		Lon:     "72.8",
	}, results[0])
	// Name falls back to the first address segment when unset.
	assert.Equal(t, "Sunrise Clinic", results[1].Name)
	assert.Equal(t, "clinic", results[1].Type)
}

func TestSearchNearbyHealthPlacesEmptyLocation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty location")
	})

	assert.Empty(t, client.SearchNearbyHealthPlaces(context.Background(), "   ", 8))
}

func TestSearchNearbyHealthPlacesServerFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	assert.Empty(t, client.SearchNearbyHealthPlaces(context.Background(), "Mumbai", 8))
}

func TestSearchNearbyHealthPlacesCap(t *testing.T) {
	n := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rows := make([]nominatimResult, 12)
		for i := range rows {
			n++
			rows[i] = nominatimResult{
				PlaceName:   "Place",
				DisplayName: "Place, Somewhere",
				Lat:         "10",
				Lon:         strconv.Itoa(n),
			}
		}
		json.NewEncoder(w).Encode(rows)
	})

	results := client.SearchNearbyHealthPlaces(context.Background(), "Delhi", 12)
	assert.Len(t, results, maxResults)
}

func TestSearchNearbyHealthPlacesContextCancel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]nominatimResult{})
	})
	client.interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Empty(t, client.SearchNearbyHealthPlaces(ctx, "Mumbai", 8))
}

func TestOSMDirectionsLink(t *testing.T) {
	assert.Equal(t,
		"https://www.openstreetmap.org/directions?from=&to=19.1%2C72.8",
		OSMDirectionsLink("19.1", "72.8"))
	assert.Equal(t, "", OSMDirectionsLink("", "72.8"))
	assert.Equal(t, "", OSMDirectionsLink("19.1", ""))
}
