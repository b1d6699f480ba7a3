// Package layouts holds the page shell shared by every full-page response.
package layouts

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"

	"github.com/falijedan/falijedan/internal/i18n"
	"github.com/falijedan/falijedan/internal/identity"
)

// Base wraps content in the html document, the navbar and the main column.
// The language and the signed-in identity are read from ctx.
func Base(title string, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		locale := i18n.FromContext(ctx)
		pageTitle := locale.T(i18n.AppName)
		if title != "" {
			pageTitle = title + " | " + pageTitle
		}

		if _, err := io.WriteString(w, fmt.Sprintf(`<!DOCTYPE html><html lang="%s"><head><meta charset="utf-8"/><meta name="viewport" content="width=device-width, initial-scale=1"/><title>%s</title>`, html.EscapeString(locale.Lang()), html.EscapeString(pageTitle))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<link rel="stylesheet" href="/static/css/main.css"/><script src="/static/js/htmx.min.js" defer></script>`); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<style>`+paletteCSS()+`</style></head><body class="min-h-screen bg-gray-100 text-gray-900">`); err != nil {
			return err
		}
		if err := Navbar().Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<main id="main">`); err != nil {
			return err
		}
		if err := content.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

// Navbar shows Profil and Odjava to a signed-in visitor and Prijava
// otherwise.
func Navbar() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		locale := i18n.FromContext(ctx)
		viewer := identity.FromContext(ctx)

		if _, err := io.WriteString(w, `<nav class="bg-white shadow-md"><div class="max-w-7xl mx-auto px-4 sm:px-6 lg:px-8"><div class="flex justify-between h-16">`); err != nil {
			return err
		}
		if _, err := io.WriteString(w, fmt.Sprintf(`<div class="flex items-center"><a href="/" class="flex-shrink-0 flex items-center"><span class="text-3xl mr-2">⚽</span><span class="font-bold text-xl text-blue-600">%s</span></a></div>`, html.EscapeString(locale.T(i18n.AppName)))); err != nil {
			return err
		}

		var links string
		if viewer != nil {
			links = fmt.Sprintf(
				`<div class="flex items-center space-x-4"><a href="/profile" class="flex items-center text-gray-700 hover:text-blue-600 transition-colors">%s</a><form method="post" action="/logout" class="inline"><button type="submit" class="flex items-center text-gray-700 hover:text-blue-600 transition-colors">%s</button></form></div>`,
				html.EscapeString(locale.T(i18n.NavProfile)),
				html.EscapeString(locale.T(i18n.NavLogout)),
			)
		} else {
			links = fmt.Sprintf(`<a href="/login" class="text-gray-700 hover:text-blue-600 transition-colors">%s</a>`, html.EscapeString(locale.T(i18n.NavLogin)))
		}
		_, err := io.WriteString(w, `<div class="flex items-center">`+links+`</div></div></div></nav>`)
		return err
	})
}
