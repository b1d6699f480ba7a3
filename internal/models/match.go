// internal/models/match.go
package models

import "time"

// Match is a row of the matches collection.
type Match struct {
	ID          string    `json:"id,omitempty" gorm:"column:id;primaryKey"`
	CreatedAt   time.Time `json:"created_at,omitzero" gorm:"column:created_at;autoCreateTime"`
	Sport       Sport     `json:"sport" gorm:"column:sport;not null;check:chk_matches_sport,sport IN ('football','basketball','handball','tennis','volleyball')"`
	Location    string    `json:"location" gorm:"column:location"`
	Venue       string    `json:"venue" gorm:"column:venue"`
	Latitude    float64   `json:"latitude" gorm:"column:latitude"`
	Longitude   float64   `json:"longitude" gorm:"column:longitude"`
	MatchTime   time.Time `json:"match_time" gorm:"column:match_time;not null;index:idx_matches_match_time"`
	TeamA       string    `json:"team_a" gorm:"column:team_a"`
	TeamB       string    `json:"team_b" gorm:"column:team_b"`
	Description *string   `json:"description" gorm:"column:description"`
	UserID      string    `json:"user_id" gorm:"column:user_id;not null;index:idx_matches_user_id"`
}

// Title renders "Team A vs Team B".
func (m Match) Title() string {
	return m.TeamA + " vs " + m.TeamB
}

// Place renders "venue, location".
func (m Match) Place() string {
	return m.Venue + ", " + m.Location
}

func (m Match) DescriptionText() string {
	if m.Description == nil {
		return ""
	}
	return *m.Description
}

// AssignID sets a locally generated identifier when the backend did not
// provide one.
func (m *Match) AssignID(id string) {
	if m.ID == "" {
		m.ID = id
	}
}

// OwnerID is the identity allowed to write this row.
func (m Match) OwnerID() string {
	return m.UserID
}
