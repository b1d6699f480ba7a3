// Package matches loads, filters, creates and joins matches through the
// backend facade.
package matches

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/falijedan/falijedan/internal/backend"
	"github.com/falijedan/falijedan/internal/models"
)

// ErrLoad wraps any failure to load the match list, configuration problems
// included.
var ErrLoad = errors.New("load matches")

type Listing struct {
	Matches []models.Match
	// Locations holds each distinct match location once, in first-seen order,
	// trimmed the way ParseFilter trims the selected location.
	Locations []string
}

// LoadMatches returns every match ascending by start time.
func LoadMatches(ctx context.Context, data backend.Data) (Listing, error) {
	q := backend.From(backend.Matches).OrderBy(backend.ColumnMatchTime, backend.Ascending)
	rows, err := backend.SelectAll[models.Match](ctx, data, q)
	if err != nil {
		return Listing{}, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return Listing{Matches: rows, Locations: distinctLocations(rows)}, nil
}

func distinctLocations(rows []models.Match) []string {
	seen := make(map[string]struct{}, len(rows))
	locations := make([]string, 0, len(rows))
	for _, match := range rows {
		location := strings.TrimSpace(match.Location)
		if _, ok := seen[location]; ok {
			continue
		}
		seen[location] = struct{}{}
		locations = append(locations, location)
	}
	return locations
}

// FilterOptions is the state of the listing filter bar. The zero Location
// matches every location.
type FilterOptions struct {
	Sport    models.Sport
	Location string
}

func DefaultFilter() FilterOptions {
	return FilterOptions{Sport: models.SportAll}
}

// Active reports whether the filter excludes anything.
func (f FilterOptions) Active() bool {
	return (f.Sport != models.SportAll && f.Sport != "") || f.Location != ""
}

// Keep reports whether match passes the filter.
func (f FilterOptions) Keep(match models.Match) bool {
	sportOK := f.Sport == models.SportAll || f.Sport == "" || match.Sport == f.Sport
	locationOK := f.Location == "" || strings.TrimSpace(match.Location) == f.Location
	return sportOK && locationOK
}

// Encode renders the filter as a query string, omitting defaults.
func (f FilterOptions) Encode() string {
	values := url.Values{}
	if f.Sport != models.SportAll && f.Sport != "" {
		values.Set("sport", string(f.Sport))
	}
	if f.Location != "" {
		values.Set("location", f.Location)
	}
	return values.Encode()
}

// ApplyFilter returns the matches that pass f, in their original order.
func ApplyFilter(matches []models.Match, f FilterOptions) []models.Match {
	kept := make([]models.Match, 0, len(matches))
	for _, match := range matches {
		if f.Keep(match) {
			kept = append(kept, match)
		}
	}
	return kept
}

// ParseFilter reads the filter bar fields. Unknown sports fall back to all.
func ParseFilter(values url.Values) FilterOptions {
	filter := DefaultFilter()
	if sport, ok := models.ParseSport(values.Get("sport")); ok {
		filter.Sport = sport
	}
	filter.Location = strings.TrimSpace(values.Get("location"))
	return filter
}
