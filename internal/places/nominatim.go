// Package places finds nearby hospitals and clinics through the
// OpenStreetMap Nominatim search API. No API key is required; every
// failure degrades to an empty result list.
package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://nominatim.openstreetmap.org"
	// Nominatim usage policy requires a User-Agent identifying the app.
	userAgent = "HealBee/1.0 (health app; nominatim usage)"
	// Usage policy also asks for at most one request per second.
	politenessInterval = time.Second

	maxResults = 30
)

// Place is one health facility hit.
type Place struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Address string `json:"address"`
	Lat     string `json:"lat"`
	Lon     string `json:"lon"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	interval   time.Duration
	logger     *zap.Logger
}

func NewClient(logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		interval:   politenessInterval,
		logger:     logger,
	}
}

type nominatimResult struct {
	PlaceName   string `json:"name"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// SearchNearbyHealthPlaces searches hospitals, clinics and primary
// health centres near the given location text (city, locality or area).
// Results are deduplicated by coordinates plus address prefix and
// capped at 30. Returns an empty slice on any failure.
func (c *Client) SearchNearbyHealthPlaces(ctx context.Context, locationText string, limitPerType int) []Place {
	loc := strings.TrimSpace(locationText)
	if loc == "" {
		return nil
	}

	queries := []struct {
		placeType string
		q         string
	}{
		{"hospital", "hospital in " + loc},
		{"clinic", "clinic in " + loc},
		{"primary health centre", "primary health centre in " + loc},
		{"PHC", "PHC in " + loc},
	}

	type dedupeKey struct {
		lat, lon, addr string
	}
	seen := make(map[dedupeKey]struct{})
	var out []Place

	for _, query := range queries {
		select {
		case <-time.After(c.interval):
		case <-ctx.Done():
			return out
		}
		rows, err := c.search(ctx, query.q, limitPerType)
		if err != nil {
			c.logger.Warn("nominatim search failed",
				zap.Error(err),
				zap.String("query", query.q))
			continue
		}
		for _, r := range rows {
			key := dedupeKey{r.Lat, r.Lon, truncate(r.DisplayName, 80)}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}

			name := r.PlaceName
			if name == "" {
				name = strings.TrimSpace(strings.SplitN(r.DisplayName, ",", 2)[0])
			}
			if name == "" {
				name = "-"
			}
			out = append(out, Place{
				Name:    name,
				Type:    query.placeType,
				Address: r.DisplayName,
				Lat:     r.Lat,
				Lon:     r.Lon,
			})
		}
	}

	if len(out) > maxResults {
		out = out[:maxResults]
	}
	return out
}

// search runs a single Nominatim query.
func (c *Client) search(ctx context.Context, q string, limit int) ([]nominatimResult, error) {
	params := url.Values{}
	params.Set("q", q)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	var rows []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// OSMDirectionsLink builds an OpenStreetMap directions link for a hit.
func OSMDirectionsLink(lat, lon string) string {
	if lat == "" || lon == "" {
		return ""
	}
	return fmt.Sprintf("https://www.openstreetmap.org/directions?from=&to=%s%%2C%s", lat, lon)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
