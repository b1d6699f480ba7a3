// Package profile reads and updates the signed-in user's profile and the
// matches they created or joined.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/falijedan/falijedan/internal/backend"
	"github.com/falijedan/falijedan/internal/identity"
	"github.com/falijedan/falijedan/internal/models"
)

// LoadProfile returns the viewer's profile, or nil when no row exists yet.
func LoadProfile(ctx context.Context, data backend.Data, viewer *backend.Identity) (*models.Profile, error) {
	if viewer == nil || viewer.ID == "" {
		return nil, identity.ErrUnauthenticated
	}
	q := backend.From(backend.Profiles).Eq(backend.ColumnID, viewer.ID)
	profile, err := backend.SelectOne[models.Profile](ctx, data, q)
	if errors.Is(err, backend.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", viewer.ID, err)
	}
	return &profile, nil
}

// SaveProfile upserts the viewer's display name and returns the stored row.
func SaveProfile(ctx context.Context, data backend.Data, viewer *backend.Identity, fullName string, now time.Time) (*models.Profile, error) {
	if viewer == nil || viewer.ID == "" {
		return nil, identity.ErrUnauthenticated
	}
	name := strings.TrimSpace(fullName)
	updatedAt := now.UTC()
	profile := &models.Profile{
		ID:        viewer.ID,
		FullName:  &name,
		UpdatedAt: &updatedAt,
	}
	if err := data.Upsert(ctx, backend.Profiles, profile); err != nil {
		return nil, fmt.Errorf("save profile %s: %w", viewer.ID, err)
	}
	return profile, nil
}

// LoadCreatedMatches lists the matches owned by viewer, earliest first.
func LoadCreatedMatches(ctx context.Context, data backend.Data, viewer *backend.Identity) ([]models.Match, error) {
	if viewer == nil || viewer.ID == "" {
		return nil, identity.ErrUnauthenticated
	}
	q := backend.From(backend.Matches).
		Eq(backend.ColumnUserID, viewer.ID).
		OrderBy(backend.ColumnMatchTime, backend.Ascending)
	rows, err := backend.SelectAll[models.Match](ctx, data, q)
	if err != nil {
		return nil, fmt.Errorf("load created matches: %w", err)
	}
	return rows, nil
}

// LoadJoinedMatches lists the matches viewer joined, earliest first. No
// match query is made when viewer joined nothing.
func LoadJoinedMatches(ctx context.Context, data backend.Data, viewer *backend.Identity) ([]models.Match, error) {
	if viewer == nil || viewer.ID == "" {
		return nil, identity.ErrUnauthenticated
	}
	participations, err := backend.SelectAll[models.Participation](ctx, data,
		backend.From(backend.Participants).Eq(backend.ColumnUserID, viewer.ID))
	if err != nil {
		return nil, fmt.Errorf("load participations: %w", err)
	}
	if len(participations) == 0 {
		return []models.Match{}, nil
	}

	matchIDs := make([]string, 0, len(participations))
	for _, participation := range participations {
		matchIDs = append(matchIDs, participation.MatchID)
	}
	q := backend.From(backend.Matches).
		In(backend.ColumnID, matchIDs).
		OrderBy(backend.ColumnMatchTime, backend.Ascending)
	rows, err := backend.SelectAll[models.Match](ctx, data, q)
	if err != nil {
		return nil, fmt.Errorf("load joined matches: %w", err)
	}
	return rows, nil
}
