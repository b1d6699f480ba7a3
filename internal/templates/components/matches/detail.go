package matches

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/falijedan/falijedan/internal/backend"
	"github.com/falijedan/falijedan/internal/i18n"
	"github.com/falijedan/falijedan/internal/identity"
	"github.com/falijedan/falijedan/internal/mapview"
	domain "github.com/falijedan/falijedan/internal/matches"
	"github.com/falijedan/falijedan/internal/models"
)

type DetailView struct {
	Match        models.Match
	Participants []domain.EnrichedParticipant
	Joined       bool
	MapURL       string
	// Error is shown above the match, for example after a failed join.
	Error string
}

const backLinkHTML = `<a href="/" class="mb-4 flex items-center text-blue-600"><span class="mr-1">←</span>%s</a>`

// DetailError replaces the detail page when the match cannot be shown.
func DetailError(message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		locale := i18n.FromContext(ctx)
		_, err := io.WriteString(w, fmt.Sprintf(
			`<div class="max-w-3xl mx-auto px-4 py-6"><div class="bg-red-100 border border-red-400 text-red-700 px-4 py-3 rounded">%s</div><div class="mt-4">`+backLinkHTML+`</div></div>`,
			html.EscapeString(message),
			html.EscapeString(locale.T(i18n.DetailBack)),
		))
		return err
	})
}

func DetailPage(view DetailView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		locale := i18n.FromContext(ctx)
		viewer := identity.FromContext(ctx)
		match := view.Match

		if _, err := io.WriteString(w, `<div class="mx-auto px-10 py-6">`+fmt.Sprintf(backLinkHTML, html.EscapeString(locale.T(i18n.DetailBack)))); err != nil {
			return err
		}
		if view.Error != "" {
			if _, err := io.WriteString(w, fmt.Sprintf(`<div class="bg-red-100 border border-red-400 text-red-700 px-4 py-3 rounded mb-4">%s</div>`, html.EscapeString(view.Error))); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `<div class="bg-gray-900 rounded-lg shadow-md overflow-hidden text-white"><div class="p-6">`); err != nil {
			return err
		}
		if _, err := io.WriteString(w, fmt.Sprintf(`<div class="flex items-center mb-4">%s<h1 class="text-2xl font-bold ml-2">%s</h1></div>`, SportIconHTML(match.Sport, "text-3xl"), html.EscapeString(match.Title()))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, buildFactsHTML(locale, match, view.MapURL)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, buildParticipantsHTML(locale, view.Participants, viewer)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, buildJoinHTML(locale, match.ID, view.Joined)); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div></div></div>`)
		return err
	})
}

func buildFactsHTML(locale i18n.Locale, match models.Match, mapURL string) string {
	var builder strings.Builder
	builder.WriteString(`<div class="grid grid-cols-1 md:grid-cols-2 gap-6"><div>`)
	builder.WriteString(fmt.Sprintf(`<div class="flex items-center mb-3"><span class="text-gray-600 mr-2">📅</span><span>%s</span></div>`, html.EscapeString(locale.LongDate(match.MatchTime))))
	builder.WriteString(fmt.Sprintf(`<div class="flex items-center mb-3"><span class="text-gray-600 mr-2">🕒</span><span>%s</span></div>`, html.EscapeString(locale.Clock(match.MatchTime))))
	builder.WriteString(fmt.Sprintf(`<div class="flex items-center mb-3"><span class="text-gray-600 mr-2">📍</span><span>%s</span></div>`, html.EscapeString(match.Place())))
	if description := match.DescriptionText(); description != "" {
		builder.WriteString(fmt.Sprintf(`<div class="mt-4"><h3 class="font-medium mb-1">%s</h3><p class="text-gray-400">%s</p></div>`, html.EscapeString(locale.T(i18n.DetailDescription)), html.EscapeString(description)))
	}
	builder.WriteString(`</div><div>`)
	if mapURL != "" {
		builder.WriteString(fmt.Sprintf(
			`<div class="h-64 w-full rounded-lg overflow-hidden"><iframe class="w-full h-full border-0" title="%s" loading="lazy" src="%s"></iframe></div><a class="text-xs text-blue-400" target="_blank" rel="noopener" href="%s">openstreetmap.org</a>`,
			html.EscapeString(locale.T(i18n.DetailMap)),
			html.EscapeString(mapURL),
			html.EscapeString(mapview.LinkURL(match.Latitude, match.Longitude)),
		))
	}
	builder.WriteString(`</div></div>`)
	return builder.String()
}

func buildParticipantsHTML(locale i18n.Locale, participants []domain.EnrichedParticipant, viewer *backend.Identity) string {
	var builder strings.Builder
	builder.WriteString(`<div class="mt-6 border-t pt-4">`)
	builder.WriteString(fmt.Sprintf(`<h2 class="text-lg font-semibold mb-3 flex items-center"><span class="mr-2 text-blue-600">👥</span>%s</h2>`, html.EscapeString(locale.T(i18n.DetailParticipants, len(participants)))))
	if len(participants) == 0 {
		builder.WriteString(fmt.Sprintf(`<p class="text-gray-400 italic">%s</p></div>`, html.EscapeString(locale.T(i18n.DetailNoParticipants))))
		return builder.String()
	}

	builder.WriteString(`<div class="grid grid-cols-1 sm:grid-cols-2 gap-3">`)
	for _, participant := range participants {
		builder.WriteString(`<div class="flex items-center p-3 bg-gray-800 rounded-md"><div class="bg-blue-100 rounded-full p-2 mr-3 text-blue-600">👤</div><div class="overflow-hidden">`)
		builder.WriteString(fmt.Sprintf(`<p class="font-medium truncate">%s</p>`, html.EscapeString(domain.ParticipantLabel(participant, viewer, locale))))
		builder.WriteString(fmt.Sprintf(`<p class="text-xs text-gray-500">%s</p>`, html.EscapeString(locale.T(i18n.DetailJoinedOn, locale.ShortDate(participant.CreatedAt)))))
		builder.WriteString(`</div></div>`)
	}
	builder.WriteString(`</div></div>`)
	return builder.String()
}

func buildJoinHTML(locale i18n.Locale, matchID string, joined bool) string {
	if joined {
		return fmt.Sprintf(`<div class="mt-6"><div class="bg-green-100 text-green-800 px-4 py-3 rounded-md flex items-center"><span class="mr-2">👥</span>%s</div></div>`, html.EscapeString(locale.T(i18n.DetailJoined)))
	}
	return fmt.Sprintf(
		`<div class="mt-6"><form method="post" action="/match/%s/join"><button type="submit" class="w-full bg-blue-600 text-white py-3 rounded-md font-medium hover:bg-blue-700 transition-colors duration-200 flex items-center justify-center"><span class="mr-2">👥</span>%s</button></form></div>`,
		url.PathEscape(matchID),
		html.EscapeString(locale.T(i18n.DetailJoin)),
	)
}
