// internal/models/profile.go
package models

import "time"

// Profile holds display data for an identity. ID equals the identity id.
type Profile struct {
	ID        string     `json:"id" gorm:"column:id;primaryKey"`
	UpdatedAt *time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime:false"`
	Username  *string    `json:"username,omitempty" gorm:"column:username;uniqueIndex"`
	FullName  *string    `json:"full_name" gorm:"column:full_name"`
	AvatarURL *string    `json:"avatar_url,omitempty" gorm:"column:avatar_url"`
}

func (p *Profile) FullNameText() string {
	if p == nil || p.FullName == nil {
		return ""
	}
	return *p.FullName
}

func (p Profile) OwnerID() string {
	return p.ID
}
