// Package profile renders the signed-in user's profile page.
package profile

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/falijedan/falijedan/internal/backend"
	"github.com/falijedan/falijedan/internal/i18n"
	"github.com/falijedan/falijedan/internal/models"
	matchestempl "github.com/falijedan/falijedan/internal/templates/components/matches"
)

const (
	TabCreated = "created"
	TabJoined  = "joined"
)

type View struct {
	Viewer  backend.Identity
	Profile *models.Profile
	Editing bool
	Tab     string
	Created []models.Match
	Joined  []models.Match
	// Error replaces the match tabs when they could not be loaded.
	Error string
}

func Page(view View) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		locale := i18n.FromContext(ctx)
		if _, err := io.WriteString(w, `<div class="max-w-3xl mx-auto px-4 py-6">`); err != nil {
			return err
		}
		if _, err := io.WriteString(w, buildHeaderHTML(locale, view)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, buildTabsHTML(locale, view)); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func buildHeaderHTML(locale i18n.Locale, view View) string {
	var builder strings.Builder
	builder.WriteString(`<div class="bg-white rounded-lg shadow-md p-6 mb-6"><div class="flex items-center justify-between"><div class="flex items-center">`)
	builder.WriteString(`<div class="bg-blue-100 p-3 rounded-full text-blue-600">👤</div><div class="ml-4">`)

	if view.Editing {
		builder.WriteString(fmt.Sprintf(
			`<form method="post" action="/profile" class="flex items-center"><input type="text" name="full_name" value="%s" placeholder="%s" class="border border-gray-300 rounded-md px-3 py-1 mr-2 focus:outline-none focus:ring-2 focus:ring-blue-500"/><input type="hidden" name="tab" value="%s"/><button type="submit" class="bg-blue-600 text-white px-3 py-1 rounded-md text-sm hover:bg-blue-700">%s</button></form>`,
			html.EscapeString(view.Profile.FullNameText()),
			html.EscapeString(locale.T(i18n.ProfileNamePlaceholder)),
			html.EscapeString(view.Tab),
			html.EscapeString(locale.T(i18n.ProfileSave)),
		))
	} else {
		heading := view.Profile.FullNameText()
		if heading == "" {
			heading = view.Viewer.Email
		}
		builder.WriteString(fmt.Sprintf(
			`<div class="flex items-center"><h1 class="text-xl font-bold">%s</h1><a href="/profile?edit=1&amp;tab=%s" class="ml-2 text-blue-600 hover:text-blue-800" title="%s">✎</a></div>`,
			html.EscapeString(heading),
			html.EscapeString(view.Tab),
			html.EscapeString(locale.T(i18n.ProfileEdit)),
		))
	}
	builder.WriteString(fmt.Sprintf(`<p class="text-gray-600 text-sm">%s</p></div></div>`, html.EscapeString(view.Viewer.Email)))
	builder.WriteString(fmt.Sprintf(`<form method="post" action="/logout"><button type="submit" class="flex items-center text-red-600 hover:text-red-800">%s</button></form>`, html.EscapeString(locale.T(i18n.ProfileLogout))))
	builder.WriteString(`</div></div>`)
	return builder.String()
}

func buildTabsHTML(locale i18n.Locale, view View) string {
	var builder strings.Builder
	builder.WriteString(`<div class="bg-white rounded-lg shadow-md overflow-hidden"><div class="border-b border-gray-200"><nav class="flex -mb-px">`)
	builder.WriteString(tabLinkHTML(TabCreated, "📅 "+locale.T(i18n.ProfileTabCreated), view.Tab == TabCreated))
	builder.WriteString(tabLinkHTML(TabJoined, "👤 "+locale.T(i18n.ProfileTabJoined), view.Tab == TabJoined))
	builder.WriteString(`</nav></div><div class="p-4">`)

	switch {
	case view.Error != "":
		builder.WriteString(fmt.Sprintf(`<div class="bg-red-100 border border-red-400 text-red-700 px-4 py-3 rounded">%s</div>`, html.EscapeString(view.Error)))
	case view.Tab == TabJoined && len(view.Joined) > 0:
		builder.WriteString(matchestempl.BuildCardListHTML(locale, view.Joined))
	case view.Tab == TabJoined:
		builder.WriteString(emptyStateHTML(locale.T(i18n.ProfileNoJoined), "/", locale.T(i18n.ProfileBrowse)))
	case len(view.Created) > 0:
		builder.WriteString(matchestempl.BuildCardListHTML(locale, view.Created))
	default:
		builder.WriteString(emptyStateHTML(locale.T(i18n.ProfileNoCreated), "/add-match", locale.T(i18n.ProfileCreateFirst)))
	}
	builder.WriteString(`</div></div>`)
	return builder.String()
}

func tabLinkHTML(tab, label string, active bool) string {
	class := "border-transparent text-gray-500 hover:text-gray-700 hover:border-gray-300"
	if active {
		class = "border-blue-500 text-blue-600"
	}
	return fmt.Sprintf(`<a href="/profile?tab=%s" class="w-1/2 py-4 px-1 text-center border-b-2 font-medium text-sm %s">%s</a>`, tab, class, html.EscapeString(label))
}

func emptyStateHTML(message, href, linkLabel string) string {
	return fmt.Sprintf(
		`<div class="text-center py-10 text-gray-500"><p>%s</p><a href="%s" class="mt-2 inline-block text-blue-600 hover:text-blue-800">%s</a></div>`,
		html.EscapeString(message),
		href,
		html.EscapeString(linkLabel),
	)
}
