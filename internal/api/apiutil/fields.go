package apiutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrFieldMissing = errors.New("field is required")

// ParseDateTimeLocal parses the value of a datetime-local input in loc and
// returns it in UTC.
func ParseDateTimeLocal(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrFieldMissing
	}
	if loc == nil {
		loc = time.UTC
	}

	layouts := []string{
		"2006-01-02T15:04",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04",
	}
	for _, layout := range layouts {
		parsed, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return parsed.UTC(), nil
		}
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid date and time %q", raw)
}
