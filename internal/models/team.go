package models

import "time"

// TeamMember is a public staff listing maintained by admins.
type TeamMember struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Role      string    `gorm:"not null" json:"role"`
	Bio       string    `gorm:"type:text" json:"bio"`
	Avatar    string    `json:"avatar,omitempty"`
	SortOrder int       `gorm:"not null;default:0;index" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
