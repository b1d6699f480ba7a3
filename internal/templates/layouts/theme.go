package layouts

import "fmt"

type palette struct {
	Primary   string
	Card      string
	CardHover string
	Accent    string
	Danger    string
}

var sitePalette = palette{
	Primary:   "#2563eb",
	Card:      "#111827",
	CardHover: "#1e293b",
	Accent:    "#16a34a",
	Danger:    "#dc2626",
}

func paletteCSS() string {
	return fmt.Sprintf(
		":root{--color-primary:%s;--color-card:%s;--color-card-hover:%s;--color-accent:%s;--color-danger:%s;}",
		sitePalette.Primary,
		sitePalette.Card,
		sitePalette.CardHover,
		sitePalette.Accent,
		sitePalette.Danger,
	)
}
