// Package matches renders the match list, match detail and add-match views.
package matches

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/falijedan/falijedan/internal/i18n"
	"github.com/falijedan/falijedan/internal/models"
)

// BuildCardHTML renders one match as a link to its detail page.
func BuildCardHTML(locale i18n.Locale, match models.Match) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf(`<a href="/match/%s" class="block">`, url.PathEscape(match.ID)))
	builder.WriteString(`<div class="bg-gray-900 rounded-lg p-4 mb-3 hover:shadow-md hover:shadow-slate-800 hover:-translate-x-1 transition-shadow duration-200">`)
	builder.WriteString(`<div class="flex items-center justify-between"><div class="flex items-center">`)
	builder.WriteString(fmt.Sprintf(`<div class="mr-3 text-2xl">%s</div>`, SportIconHTML(match.Sport, "")))
	builder.WriteString(fmt.Sprintf(`<div><h3 class="font-semibold text-lg text-white">%s</h3>`, html.EscapeString(match.Title())))
	builder.WriteString(fmt.Sprintf(`<div class="flex items-center text-gray-400 text-sm mt-1"><span class="mr-1">📍</span><span>%s</span></div></div></div>`, html.EscapeString(match.Place())))
	builder.WriteString(fmt.Sprintf(`<div class="text-right"><div class="text-sm text-gray-400">%s</div>`, html.EscapeString(locale.CardDate(match.MatchTime))))
	builder.WriteString(fmt.Sprintf(`<div class="flex items-center justify-end text-sm text-white font-medium mt-1"><span class="mr-1 text-blue-600">🕒</span><span>%s</span></div></div>`, html.EscapeString(locale.Clock(match.MatchTime))))
	builder.WriteString(`</div></div></a>`)
	return builder.String()
}

// SportIconHTML renders the colored glyph for sport. size is an optional
// extra text size class.
func SportIconHTML(sport models.Sport, size string) string {
	class := sport.IconClass()
	if size != "" {
		class += " " + size
	}
	return fmt.Sprintf(`<span class="%s" title="%s">%s</span>`, class, html.EscapeString(string(sport)), sport.Icon())
}

func BuildCardListHTML(locale i18n.Locale, rows []models.Match) string {
	var builder strings.Builder
	builder.WriteString(`<div>`)
	for _, match := range rows {
		builder.WriteString(BuildCardHTML(locale, match))
	}
	builder.WriteString(`</div>`)
	return builder.String()
}
