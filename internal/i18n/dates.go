package i18n

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// Genitive month names, as used after a day number.
var croatianMonths = [...]string{
	"siječnja", "veljače", "ožujka", "travnja", "svibnja", "lipnja",
	"srpnja", "kolovoza", "rujna", "listopada", "studenoga", "prosinca",
}

var croatianWeekdays = [...]string{
	"nedjelja", "ponedjeljak", "utorak", "srijeda", "četvrtak", "petak", "subota",
}

// LongDate renders the detail page date, for example
// "srijeda, 4. lipnja 2025." in Croatian.
func (l Locale) LongDate(t time.Time) string {
	t = t.In(l.Location())
	if l.tag == language.English {
		return t.Format("Monday, 2. January 2006.")
	}
	return fmt.Sprintf("%s, %d. %s %d.", croatianWeekdays[t.Weekday()], t.Day(), croatianMonths[t.Month()-1], t.Year())
}

// CardDate renders the short date shown on match cards ("Jun 4, 2025").
func (l Locale) CardDate(t time.Time) string {
	return t.In(l.Location()).Format("Jan 2, 2006")
}

// ShortDate renders dates such as participant join dates ("4.06.2025.").
func (l Locale) ShortDate(t time.Time) string {
	return t.In(l.Location()).Format("2.01.2006.")
}

// Clock renders a 24-hour time ("18:30").
func (l Locale) Clock(t time.Time) string {
	return t.In(l.Location()).Format("15:04")
}

// InputDateTime renders t for a datetime-local input.
func (l Locale) InputDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(l.Location()).Format("2006-01-02T15:04")
}
