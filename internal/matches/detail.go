package matches

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/falijedan/falijedan/internal/backend"
	"github.com/falijedan/falijedan/internal/i18n"
	"github.com/falijedan/falijedan/internal/identity"
	"github.com/falijedan/falijedan/internal/models"
)

var (
	ErrNotFound = errors.New("match not found")
	ErrJoin     = errors.New("join match")
)

// LoadMatchDetail fetches one match by id.
func LoadMatchDetail(ctx context.Context, data backend.Data, id string) (models.Match, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Match{}, ErrNotFound
	}

	q := backend.From(backend.Matches).Eq(backend.ColumnID, id)
	match, err := backend.SelectOne[models.Match](ctx, data, q)
	if errors.Is(err, backend.ErrNotFound) {
		return models.Match{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return models.Match{}, fmt.Errorf("load match %s: %w", id, err)
	}
	return match, nil
}

// EnrichedParticipant is a participation together with what can be shown
// about the participant.
type EnrichedParticipant struct {
	models.Participation
	DisplayName string
	// Email is only known for the viewer's own participation.
	Email string
}

// LoadParticipants lists the participants of a match. Profiles are fetched
// in one batched query, even when there are no participants.
func LoadParticipants(ctx context.Context, data backend.Data, matchID string, viewer *backend.Identity) ([]EnrichedParticipant, error) {
	q := backend.From(backend.Participants).
		Eq(backend.ColumnMatchID, matchID).
		OrderBy(backend.ColumnCreatedAt, backend.Ascending)
	participations, err := backend.SelectAll[models.Participation](ctx, data, q)
	if err != nil {
		return nil, fmt.Errorf("load participants of %s: %w", matchID, err)
	}

	userIDs := make([]string, 0, len(participations))
	seen := make(map[string]struct{}, len(participations))
	for _, participation := range participations {
		if _, ok := seen[participation.UserID]; ok {
			continue
		}
		seen[participation.UserID] = struct{}{}
		userIDs = append(userIDs, participation.UserID)
	}

	profiles, err := backend.SelectAll[models.Profile](ctx, data, backend.From(backend.Profiles).In(backend.ColumnID, userIDs))
	if err != nil {
		return nil, fmt.Errorf("load participant profiles of %s: %w", matchID, err)
	}
	names := make(map[string]string, len(profiles))
	for i := range profiles {
		names[profiles[i].ID] = profiles[i].FullNameText()
	}

	enriched := make([]EnrichedParticipant, 0, len(participations))
	for _, participation := range participations {
		participant := EnrichedParticipant{
			Participation: participation,
			DisplayName:   names[participation.UserID],
		}
		if identity.Is(viewer, participation.UserID) {
			participant.Email = viewer.Email
		}
		enriched = append(enriched, participant)
	}
	return enriched, nil
}

// ParticipantLabel is the name shown for p: the self label for the viewer,
// then the display name, then the email, then a generic placeholder.
func ParticipantLabel(p EnrichedParticipant, viewer *backend.Identity, locale i18n.Locale) string {
	switch {
	case identity.Is(viewer, p.UserID):
		return locale.T(i18n.DetailSelf)
	case p.DisplayName != "":
		return p.DisplayName
	case p.Email != "":
		return p.Email
	default:
		return locale.T(i18n.DetailPlayer)
	}
}

// IsParticipant reports whether viewer has joined the match.
func IsParticipant(ctx context.Context, data backend.Data, matchID string, viewer *backend.Identity) (bool, error) {
	if viewer == nil || viewer.ID == "" {
		return false, nil
	}
	q := backend.From(backend.Participants).
		Eq(backend.ColumnMatchID, matchID).
		Eq(backend.ColumnUserID, viewer.ID)
	rows, err := backend.SelectAll[models.Participation](ctx, data, q)
	if err != nil {
		return false, fmt.Errorf("check participation in %s: %w", matchID, err)
	}
	return len(rows) > 0, nil
}

// Join records viewer as a participant of the match. Duplicate joins are
// left to the backend to reject.
func Join(ctx context.Context, data backend.Data, matchID string, viewer *backend.Identity) (*models.Participation, error) {
	if viewer == nil || viewer.ID == "" {
		return nil, identity.ErrUnauthenticated
	}
	participation := &models.Participation{MatchID: matchID, UserID: viewer.ID}
	if err := data.Insert(ctx, backend.Participants, participation); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrJoin, matchID, err)
	}
	return participation, nil
}
