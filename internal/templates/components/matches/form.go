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

type FormView struct {
	Form   domain.MatchForm
	Errors domain.FieldErrors
	// Error is the submit failure banner.
	Error string
}

type formField struct {
	name        string
	label       string
	inputType   string
	placeholder string
	step        string
}

func AddMatchPage(view FormView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, buildAddMatchHTML(i18n.FromContext(ctx), view))
		return err
	})
}

func buildAddMatchHTML(locale i18n.Locale, view FormView) string {
	var builder strings.Builder
	builder.WriteString(`<div class="max-w-2xl mx-auto px-4 py-6">`)
	builder.WriteString(fmt.Sprintf(`<a href="/" class="mb-4 flex items-center text-blue-600"><span class="mr-1">←</span>%s</a>`, html.EscapeString(locale.T(i18n.FormBack))))
	builder.WriteString(fmt.Sprintf(`<h1 class="text-2xl font-bold mb-6">%s</h1>`, html.EscapeString(locale.T(i18n.FormHeading))))

	if view.Error != "" {
		builder.WriteString(fmt.Sprintf(`<div class="bg-red-100 border border-red-400 text-red-700 px-4 py-3 rounded mb-4">%s</div>`, html.EscapeString(view.Error)))
	} else if len(view.Errors) > 0 {
		builder.WriteString(fmt.Sprintf(`<div class="bg-red-100 border border-red-400 text-red-700 px-4 py-3 rounded mb-4">%s</div>`, html.EscapeString(locale.T(i18n.FormInvalid))))
	}

	builder.WriteString(`<form method="post" action="/add-match" class="bg-white rounded-lg shadow-md p-6 space-y-4">`)

	builder.WriteString(`<div class="grid grid-cols-1 md:grid-cols-2 gap-4">`)
	builder.WriteString(buildSportSelectHTML(locale, view))
	builder.WriteString(buildInputHTML(locale, view, formField{name: "match_time", label: i18n.FormTime, inputType: "datetime-local"}))
	builder.WriteString(buildInputHTML(locale, view, formField{name: "team_a", label: i18n.FormTeamA, inputType: "text", placeholder: i18n.FormTeamAPlaceholder}))
	builder.WriteString(buildInputHTML(locale, view, formField{name: "team_b", label: i18n.FormTeamB, inputType: "text", placeholder: i18n.FormTeamBPlaceholder}))
	builder.WriteString(buildInputHTML(locale, view, formField{name: "location", label: i18n.FormLocation, inputType: "text", placeholder: i18n.FormLocationPlaceholder}))
	builder.WriteString(buildInputHTML(locale, view, formField{name: "venue", label: i18n.FormVenue, inputType: "text", placeholder: i18n.FormVenuePlaceholder}))
	builder.WriteString(buildInputHTML(locale, view, formField{name: "latitude", label: i18n.FormLatitude, inputType: "number", step: "any"}))
	builder.WriteString(buildInputHTML(locale, view, formField{name: "longitude", label: i18n.FormLongitude, inputType: "number", step: "any"}))
	builder.WriteString(`</div>`)

	builder.WriteString(fmt.Sprintf(
		`<div><label for="description" class="block text-sm font-medium text-gray-700 mb-1">%s</label><textarea id="description" name="description" rows="3" placeholder="%s" class="w-full p-2 border border-gray-300 rounded-md focus:ring-blue-500 focus:border-blue-500">%s</textarea></div>`,
		html.EscapeString(locale.T(i18n.FormDescription)),
		html.EscapeString(locale.T(i18n.FormDescriptionPlaceholder)),
		html.EscapeString(view.Form.Value("description", locale)),
	))
	builder.WriteString(fmt.Sprintf(`<button type="submit" class="w-full bg-blue-600 text-white py-3 rounded-md font-medium hover:bg-blue-700 transition-colors duration-200">%s</button>`, html.EscapeString(locale.T(i18n.FormSubmit))))
	builder.WriteString(`</form></div>`)
	return builder.String()
}

func buildSportSelectHTML(locale i18n.Locale, view FormView) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf(`<div><label for="sport" class="block text-sm font-medium text-gray-700 mb-1">%s</label>`, html.EscapeString(locale.T(i18n.FormSport))))
	builder.WriteString(`<select id="sport" name="sport" required class="w-full p-2 border border-gray-300 rounded-md focus:ring-blue-500 focus:border-blue-500">`)
	current := view.Form.Value("sport", locale)
	for _, sport := range models.Sports {
		builder.WriteString(optionHTML(string(sport), locale.T(i18n.SportKey(string(sport))), current == string(sport)))
	}
	builder.WriteString(`</select>`)
	builder.WriteString(fieldErrorHTML(locale, view.Errors, "sport"))
	builder.WriteString(`</div>`)
	return builder.String()
}

func buildInputHTML(locale i18n.Locale, view FormView, field formField) string {
	border := "border-gray-300"
	if _, bad := view.Errors[field.name]; bad {
		border = "border-red-500"
	}
	extra := ""
	if field.placeholder != "" {
		extra += fmt.Sprintf(` placeholder="%s"`, html.EscapeString(locale.T(field.placeholder)))
	}
	if field.step != "" {
		extra += fmt.Sprintf(` step="%s"`, field.step)
	}
	return fmt.Sprintf(
		`<div><label for="%s" class="block text-sm font-medium text-gray-700 mb-1">%s</label><input id="%s" name="%s" type="%s" required value="%s"%s class="w-full p-2 border %s rounded-md focus:ring-blue-500 focus:border-blue-500"/>%s</div>`,
		field.name,
		html.EscapeString(locale.T(field.label)),
		field.name,
		field.name,
		field.inputType,
		html.EscapeString(view.Form.Value(field.name, locale)),
		extra,
		border,
		fieldErrorHTML(locale, view.Errors, field.name),
	)
}

func fieldErrorHTML(locale i18n.Locale, errs domain.FieldErrors, field string) string {
	key, ok := errs[field]
	if !ok {
		return ""
	}
	return fmt.Sprintf(`<p class="mt-1 text-xs text-red-600">%s</p>`, html.EscapeString(locale.T(key)))
}
