// Package auth renders the sign-in and sign-up page.
package auth

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/falijedan/falijedan/internal/i18n"
)

type LoginView struct {
	Email      string
	RedirectTo string
	// Error belongs to the sign-in form, SignupError to the sign-up form.
	Error       string
	SignupError string
	Notice      string
}

func LoginPage(view LoginView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, buildLoginHTML(i18n.FromContext(ctx), view))
		return err
	})
}

func buildLoginHTML(locale i18n.Locale, view LoginView) string {
	var builder strings.Builder
	builder.WriteString(`<div class="max-w-md mx-auto px-4 py-10 space-y-6">`)
	if view.Notice != "" {
		builder.WriteString(fmt.Sprintf(`<div class="bg-green-100 text-green-800 px-4 py-3 rounded-md">%s</div>`, html.EscapeString(view.Notice)))
	}
	builder.WriteString(buildFormHTML(locale, view, "/login", i18n.LoginHeading, i18n.LoginSubmit, view.Error, "current-password"))
	builder.WriteString(fmt.Sprintf(`<p class="text-center text-sm text-gray-500">%s</p>`, html.EscapeString(locale.T(i18n.LoginNoAccount))))
	builder.WriteString(buildFormHTML(locale, view, "/signup", i18n.LoginSignupHeading, i18n.LoginSignupSubmit, view.SignupError, "new-password"))
	builder.WriteString(`</div>`)
	return builder.String()
}

func buildFormHTML(locale i18n.Locale, view LoginView, action, heading, submit, formError, autocomplete string) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf(`<form method="post" action="%s" class="bg-white rounded-lg shadow-md p-6 space-y-4">`, action))
	builder.WriteString(fmt.Sprintf(`<h1 class="text-2xl font-bold">%s</h1>`, html.EscapeString(locale.T(heading))))
	if formError != "" {
		builder.WriteString(fmt.Sprintf(`<div class="bg-red-100 border border-red-400 text-red-700 px-4 py-3 rounded">%s</div>`, html.EscapeString(formError)))
	}
	builder.WriteString(fmt.Sprintf(`<input type="hidden" name="redirect_to" value="%s"/>`, html.EscapeString(view.RedirectTo)))
	builder.WriteString(fmt.Sprintf(
		`<div><label class="block text-sm font-medium text-gray-700 mb-1">%s</label><input type="email" name="email" required autocomplete="email" value="%s" class="w-full p-2 border border-gray-300 rounded-md focus:ring-blue-500 focus:border-blue-500"/></div>`,
		html.EscapeString(locale.T(i18n.LoginEmail)),
		html.EscapeString(view.Email),
	))
	builder.WriteString(fmt.Sprintf(
		`<div><label class="block text-sm font-medium text-gray-700 mb-1">%s</label><input type="password" name="password" required autocomplete="%s" class="w-full p-2 border border-gray-300 rounded-md focus:ring-blue-500 focus:border-blue-500"/></div>`,
		html.EscapeString(locale.T(i18n.LoginPassword)),
		autocomplete,
	))
	builder.WriteString(fmt.Sprintf(`<button type="submit" class="w-full bg-blue-600 text-white py-2 rounded-md font-medium hover:bg-blue-700">%s</button></form>`, html.EscapeString(locale.T(submit))))
	return builder.String()
}
