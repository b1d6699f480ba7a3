package matches

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/falijedan/falijedan/internal/i18n"
	domain "github.com/falijedan/falijedan/internal/matches"
	"github.com/falijedan/falijedan/internal/models"
)

type ListingView struct {
	Matches   []models.Match
	Locations []string
	Filter    domain.FilterOptions
	// LoadError replaces the list when set.
	LoadError string
}

func ListingPage(view ListingView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		locale := i18n.FromContext(ctx)
		if _, err := io.WriteString(w, `<div class="max-w-3xl mx-auto px-4 py-6">`); err != nil {
			return err
		}
		if _, err := io.WriteString(w, fmt.Sprintf(`<h1 class="text-2xl font-bold mb-6">%s</h1>`, html.EscapeString(locale.T(i18n.ListHeading)))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, buildFilterBarHTML(locale, view)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<div id="match-list">`+BuildMatchListHTML(locale, view)+`</div>`); err != nil {
			return err
		}
		_, err := io.WriteString(w, fmt.Sprintf(
			`<a href="/add-match" class="fixed bottom-6 right-6 bg-blue-600 text-white w-14 h-14 rounded-full shadow-lg flex items-center justify-center text-3xl hover:bg-blue-700 transition-colors" aria-label="%s" title="%s">+</a></div>`,
			html.EscapeString(locale.T(i18n.NavAddMatch)),
			html.EscapeString(locale.T(i18n.NavAddMatch)),
		))
		return err
	})
}

// MatchList is the fragment swapped in when the filter changes.
func MatchList(view ListingView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, BuildMatchListHTML(i18n.FromContext(ctx), view))
		return err
	})
}

func BuildMatchListHTML(locale i18n.Locale, view ListingView) string {
	if view.LoadError != "" {
		return fmt.Sprintf(`<div class="bg-red-100 border border-red-400 text-red-700 px-4 py-3 rounded mb-4">%s</div>`, html.EscapeString(view.LoadError))
	}
	if len(view.Matches) == 0 {
		return fmt.Sprintf(`<div class="text-center py-10 text-gray-500">%s</div>`, html.EscapeString(locale.T(i18n.ListEmpty)))
	}
	return BuildCardListHTML(locale, view.Matches)
}

func buildFilterBarHTML(locale i18n.Locale, view ListingView) string {
	var builder strings.Builder
	open := ""
	if view.Filter.Active() {
		open = " open"
	}
	builder.WriteString(fmt.Sprintf(`<details class="mb-4"%s>`, open))
	builder.WriteString(fmt.Sprintf(`<summary class="flex items-center text-blue-500 font-medium cursor-pointer">%s</summary>`, html.EscapeString(locale.T(i18n.FilterToggle))))
	builder.WriteString(`<form method="get" action="/" class="mt-3 p-4 bg-gray-50 rounded-lg" hx-get="/" hx-trigger="change" hx-target="#match-list" hx-push-url="true">`)
	builder.WriteString(`<div class="grid grid-cols-1 md:grid-cols-2 gap-4">`)

	builder.WriteString(fmt.Sprintf(`<div><label for="filter-sport" class="block text-sm font-medium text-gray-700 mb-1">%s</label>`, html.EscapeString(locale.T(i18n.FilterSport))))
	builder.WriteString(`<select id="filter-sport" name="sport" class="w-full p-2 border border-gray-300 rounded-md focus:ring-blue-500 focus:border-blue-500">`)
	builder.WriteString(optionHTML(string(models.SportAll), locale.T(i18n.FilterAllSports), view.Filter.Sport == models.SportAll || view.Filter.Sport == ""))
	for _, sport := range models.Sports {
		builder.WriteString(optionHTML(string(sport), locale.T(i18n.SportKey(string(sport))), view.Filter.Sport == sport))
	}
	builder.WriteString(`</select></div>`)

	builder.WriteString(fmt.Sprintf(`<div><label for="filter-location" class="block text-sm font-medium text-gray-700 mb-1">%s</label>`, html.EscapeString(locale.T(i18n.FilterLocation))))
	builder.WriteString(`<select id="filter-location" name="location" class="w-full p-2 border border-gray-300 rounded-md focus:ring-blue-500 focus:border-blue-500">`)
	builder.WriteString(optionHTML("", locale.T(i18n.FilterAllLocations), view.Filter.Location == ""))
	for _, location := range view.Locations {
		builder.WriteString(optionHTML(location, location, view.Filter.Location == location))
	}
	builder.WriteString(`</select></div></div>`)

	builder.WriteString(`<div class="mt-3 flex items-center justify-between">`)
	// The button keeps filtering usable when htmx is not loaded.
	builder.WriteString(fmt.Sprintf(`<button type="submit" class="text-sm text-blue-600">%s</button>`, html.EscapeString(locale.T(i18n.FilterApply))))
	if view.Filter.Active() {
		builder.WriteString(fmt.Sprintf(`<a href="/" class="text-sm text-red-500 flex items-center">✕ %s</a>`, html.EscapeString(locale.T(i18n.FilterClear))))
	}
	builder.WriteString(`</div></form></details>`)
	return builder.String()
}

func optionHTML(value, label string, selected bool) string {
	attr := ""
	if selected {
		attr = " selected"
	}
	return fmt.Sprintf(`<option value="%s"%s>%s</option>`, html.EscapeString(value), attr, html.EscapeString(label))
}
