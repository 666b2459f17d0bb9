package models

import (
	"time"

	"gorm.io/gorm"
)

// DirectoryListing is a business listing submitted by its owner and
// shown publicly once approved by an admin.
type DirectoryListing struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"not null" json:"name"`
	Slug         string         `gorm:"unique;not null" json:"slug"`
	Description  string         `gorm:"type:text" json:"description"`
	Category     string         `gorm:"size:64;index" json:"category"`
	Website      string         `json:"website,omitempty"`
	Phone        string         `gorm:"size:32" json:"phone,omitempty"`
	Address      string         `json:"address,omitempty"`
	ImageHash    string         `gorm:"size:64" json:"image_hash,omitempty"`
	UserID       uint           `gorm:"not null;index" json:"user_id"`
	User         User           `gorm:"foreignKey:UserID" json:"-"`
	Approved     bool           `gorm:"not null;default:false;index" json:"approved"`
	CommentCount int            `gorm:"not null;default:0" json:"comment_count"`
	Views        int64          `gorm:"not null;default:0" json:"views"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
