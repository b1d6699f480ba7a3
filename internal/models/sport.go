// internal/models/sport.go
package models

import "strings"

type Sport string

const (
	SportFootball   Sport = "football"
	SportBasketball Sport = "basketball"
	SportHandball   Sport = "handball"
	SportTennis     Sport = "tennis"
	SportVolleyball Sport = "volleyball"

	// SportAll is only meaningful as a filter value.
	SportAll Sport = "all"
)

// Sports lists the selectable sports in the order the forms show them.
var Sports = []Sport{
	SportFootball,
	SportBasketball,
	SportHandball,
	SportTennis,
	SportVolleyball,
}

func (s Sport) Valid() bool {
	for _, sport := range Sports {
		if s == sport {
			return true
		}
	}
	return false
}

func ParseSport(raw string) (Sport, bool) {
	sport := Sport(strings.ToLower(strings.TrimSpace(raw)))
	return sport, sport.Valid()
}

// Icon returns the glyph shown next to a match of this sport.
func (s Sport) Icon() string {
	switch s {
	case SportFootball:
		return "⚽"
	case SportBasketball:
		return "🏀"
	case SportHandball:
		return "🤾"
	case SportTennis:
		return "🎾"
	case SportVolleyball:
		return "🏐"
	default:
		return "⚽"
	}
}

// IconClass is the tailwind color class paired with Icon.
func (s Sport) IconClass() string {
	switch s {
	case SportFootball:
		return "text-green-600"
	case SportBasketball:
		return "text-orange-600"
	case SportHandball:
		return "text-blue-600"
	case SportTennis:
		return "text-yellow-600"
	case SportVolleyball:
		return "text-purple-600"
	default:
		return "text-gray-600"
	}
}
