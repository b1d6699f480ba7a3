// Package mapview builds the OpenStreetMap embed shown on the match page.
package mapview

import (
	"fmt"
	"net/url"
	"strconv"
)

const defaultSpan = 0.01

// Embedder turns coordinates into an embeddable map URL centered on a
// marker.
type Embedder struct {
	base *url.URL
	span float64
}

// New parses embedURL. A non-positive span falls back to 0.01 degrees.
func New(embedURL string, span float64) (*Embedder, error) {
	base, err := url.Parse(embedURL)
	if err != nil {
		return nil, fmt.Errorf("parse map embed url: %w", err)
	}
	if base.Scheme != "https" && base.Scheme != "http" {
		return nil, fmt.Errorf("map embed url must be http(s): %q", embedURL)
	}
	if span <= 0 {
		span = defaultSpan
	}
	return &Embedder{base: base, span: span}, nil
}

// EmbedURL returns the iframe source for a marker at latitude/longitude.
func (e *Embedder) EmbedURL(latitude, longitude float64) string {
	half := e.span / 2
	minLat, maxLat := clamp(latitude-half, -90, 90), clamp(latitude+half, -90, 90)
	minLon, maxLon := clamp(longitude-half, -180, 180), clamp(longitude+half, -180, 180)

	u := *e.base
	query := u.Query()
	query.Set("bbox", joinCoords(minLon, minLat, maxLon, maxLat))
	query.Set("layer", "mapnik")
	query.Set("marker", joinCoords(latitude, longitude))
	u.RawQuery = query.Encode()
	return u.String()
}

// LinkURL opens the same spot on openstreetmap.org.
func LinkURL(latitude, longitude float64) string {
	lat, lon := formatCoord(latitude), formatCoord(longitude)
	return fmt.Sprintf("https://www.openstreetmap.org/?mlat=%s&mlon=%s#map=16/%s/%s", lat, lon, lat, lon)
}

func joinCoords(values ...float64) string {
	out := ""
	for i, value := range values {
		if i > 0 {
			out += ","
		}
		out += formatCoord(value)
	}
	return out
}

func formatCoord(value float64) string {
	return strconv.FormatFloat(value, 'f', 6, 64)
}

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
