package matches

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/falijedan/falijedan/internal/api/apiutil"
	"github.com/falijedan/falijedan/internal/backend"
	"github.com/falijedan/falijedan/internal/i18n"
	"github.com/falijedan/falijedan/internal/identity"
	"github.com/falijedan/falijedan/internal/models"
)

// Zagreb city center.
const (
	DefaultLatitude  = 45.815399
	DefaultLongitude = 15.966568
)

var ErrCreate = errors.New("create match")

// MatchForm is the add-match form as submitted. Raw holds the typed text so
// an invalid form can be shown again unchanged.
type MatchForm struct {
	Sport       models.Sport
	TeamA       string
	TeamB       string
	Location    string
	Venue       string
	Latitude    float64
	Longitude   float64
	MatchTime   time.Time
	Description string

	Raw url.Values
}

func NewMatchForm() MatchForm {
	return MatchForm{
		Sport:     models.SportFootball,
		Latitude:  DefaultLatitude,
		Longitude: DefaultLongitude,
	}
}

// Value returns the text to show in the named input.
func (f MatchForm) Value(field string, locale i18n.Locale) string {
	if f.Raw != nil {
		if values, ok := f.Raw[field]; ok && len(values) > 0 {
			return values[0]
		}
	}
	switch field {
	case "sport":
		return string(f.Sport)
	case "team_a":
		return f.TeamA
	case "team_b":
		return f.TeamB
	case "location":
		return f.Location
	case "venue":
		return f.Venue
	case "latitude":
		return strconv.FormatFloat(f.Latitude, 'f', -1, 64)
	case "longitude":
		return strconv.FormatFloat(f.Longitude, 'f', -1, 64)
	case "match_time":
		return locale.InputDateTime(f.MatchTime)
	case "description":
		return f.Description
	default:
		return ""
	}
}

// FieldErrors maps a form field to the message key describing its problem.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field, key := range e {
		fields = append(fields, apiutil.FieldError{Field: field, Reason: key}.Error())
	}
	return "invalid match form: " + strings.Join(fields, ", ")
}

// ParseMatchForm checks what the form's own inputs require: every field but
// the description, a known sport, numeric coordinates and a datetime-local
// start time interpreted in loc.
func ParseMatchForm(values url.Values, loc *time.Location) (MatchForm, error) {
	form := NewMatchForm()
	form.Raw = values
	errs := FieldErrors{}

	if sport, ok := models.ParseSport(values.Get("sport")); ok {
		form.Sport = sport
	} else {
		errs["sport"] = i18n.FieldInvalidSport
	}

	required := map[string]*string{
		"team_a":   &form.TeamA,
		"team_b":   &form.TeamB,
		"location": &form.Location,
		"venue":    &form.Venue,
	}
	for field, dst := range required {
		*dst = strings.TrimSpace(values.Get(field))
		if *dst == "" {
			errs[field] = i18n.FieldRequired
		}
	}

	coordinates := map[string]*float64{
		"latitude":  &form.Latitude,
		"longitude": &form.Longitude,
	}
	for field, dst := range coordinates {
		raw := strings.TrimSpace(values.Get(field))
		if raw == "" {
			errs[field] = i18n.FieldRequired
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs[field] = i18n.FieldInvalidNumber
			continue
		}
		*dst = value
	}

	matchTime, err := apiutil.ParseDateTimeLocal(values.Get("match_time"), loc)
	switch {
	case errors.Is(err, apiutil.ErrFieldMissing):
		errs["match_time"] = i18n.FieldRequired
	case err != nil:
		errs["match_time"] = i18n.FieldInvalidTime
	default:
		form.MatchTime = matchTime
	}

	form.Description = strings.TrimSpace(values.Get("description"))

	if len(errs) > 0 {
		return form, errs
	}
	return form, nil
}

// CreateMatch stores the form as a match owned by viewer and returns its id.
func CreateMatch(ctx context.Context, data backend.Data, form MatchForm, viewer *backend.Identity) (string, error) {
	if viewer == nil || viewer.ID == "" {
		return "", identity.ErrUnauthenticated
	}

	match := &models.Match{
		Sport:     form.Sport,
		Location:  form.Location,
		Venue:     form.Venue,
		Latitude:  form.Latitude,
		Longitude: form.Longitude,
		MatchTime: form.MatchTime.UTC(),
		TeamA:     form.TeamA,
		TeamB:     form.TeamB,
		UserID:    viewer.ID,
	}
	if form.Description != "" {
		description := form.Description
		match.Description = &description
	}

	if err := data.Insert(ctx, backend.Matches, match); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCreate, err)
	}
	return match.ID, nil
}
