// internal/models/participation.go
package models

import "time"

// Participation links an identity to a match (match_participants row).
type Participation struct {
	ID        string    `json:"id,omitempty" gorm:"column:id;primaryKey"`
	MatchID   string    `json:"match_id" gorm:"column:match_id;not null;uniqueIndex:idx_match_participants_match_user,priority:1"`
	UserID    string    `json:"user_id" gorm:"column:user_id;not null;uniqueIndex:idx_match_participants_match_user,priority:2;index:idx_match_participants_user_id"`
	CreatedAt time.Time `json:"created_at,omitzero" gorm:"column:created_at;autoCreateTime"`
}

func (p *Participation) AssignID(id string) {
	if p.ID == "" {
		p.ID = id
	}
}

func (Participation) TableName() string {
	return "match_participants"
}

func (p Participation) OwnerID() string {
	return p.UserID
}
