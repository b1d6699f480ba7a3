// Package i18n holds the user-facing strings of the site and the date
// formats they are shown with. Croatian is the default language.
package i18n

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

var supported = []language.Tag{language.Croatian, language.English}

var messages = buildCatalog()

func buildCatalog() *catalog.Builder {
	builder := catalog.NewBuilder(catalog.Fallback(language.Croatian))
	for key, text := range croatian {
		if err := builder.SetString(language.Croatian, key, text); err != nil {
			panic(fmt.Sprintf("i18n: hr %s: %v", key, err))
		}
	}
	for key, text := range english {
		if err := builder.SetString(language.English, key, text); err != nil {
			panic(fmt.Sprintf("i18n: en %s: %v", key, err))
		}
	}
	return builder
}

// Locale renders messages and dates for one language in one time zone.
type Locale struct {
	tag      language.Tag
	printer  *message.Printer
	location *time.Location
}

func newLocale(tag language.Tag, loc *time.Location) Locale {
	if loc == nil {
		loc = time.UTC
	}
	return Locale{
		tag:      tag,
		printer:  message.NewPrinter(tag, message.Catalog(messages)),
		location: loc,
	}
}

// T returns the translation of key formatted with args. Unknown keys are
// returned unchanged.
func (l Locale) T(key string, args ...any) string {
	if l.printer == nil {
		l = fallback
	}
	return l.printer.Sprintf(key, args...)
}

// Lang is the two letter code used for the html lang attribute.
func (l Locale) Lang() string {
	base, _ := l.tag.Base()
	return base.String()
}

func (l Locale) Location() *time.Location {
	if l.location == nil {
		return time.UTC
	}
	return l.location
}

// Bundle picks a Locale per request.
type Bundle struct {
	matcher  language.Matcher
	fallback Locale
	locales  []Locale
}

// NewBundle builds a bundle whose default language is code ("hr" or "en").
func NewBundle(code string, loc *time.Location) (*Bundle, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", code, err)
	}

	b := &Bundle{matcher: language.NewMatcher(supported)}
	found := false
	for _, candidate := range supported {
		locale := newLocale(candidate, loc)
		b.locales = append(b.locales, locale)
		if candidate == tag {
			b.fallback = locale
			found = true
		}
	}
	if !found {
		return nil, fmt.Errorf("unsupported locale %q", code)
	}
	return b, nil
}

func (b *Bundle) Default() Locale {
	return b.fallback
}

// Negotiate matches an Accept-Language header against the supported
// languages. Weak matches fall back to the default language.
func (b *Bundle) Negotiate(acceptLanguage string) Locale {
	if acceptLanguage == "" {
		return b.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return b.fallback
	}
	_, index, confidence := b.matcher.Match(tags...)
	if confidence < language.High {
		return b.fallback
	}
	return b.locales[index]
}

var fallback = newLocale(language.Croatian, time.UTC)

type contextKey struct{}

func WithLocale(ctx context.Context, locale Locale) context.Context {
	return context.WithValue(ctx, contextKey{}, locale)
}

// FromContext returns the request locale, or Croatian in UTC when none was
// set.
func FromContext(ctx context.Context) Locale {
	if ctx != nil {
		if locale, ok := ctx.Value(contextKey{}).(Locale); ok {
			return locale
		}
	}
	return fallback
}
