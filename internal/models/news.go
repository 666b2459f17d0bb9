package models

import (
	"time"

	"gorm.io/gorm"
)

// NewsArticle is an editorial article. Body holds the author's markdown,
// BodyHTML the rendered and sanitized output served to clients.
type NewsArticle struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Title        string         `gorm:"not null" json:"title"`
	Body         string         `gorm:"type:text;not null" json:"body"`
	BodyHTML     string         `gorm:"type:text" json:"body_html"`
	ImageHash    string         `gorm:"size:64" json:"image_hash,omitempty"`
	UserID       uint           `gorm:"not null;index" json:"user_id"`
	User         User           `gorm:"foreignKey:UserID" json:"-"`
	Published    bool           `gorm:"not null;default:false;index" json:"published"`
	CommentCount int            `gorm:"not null;default:0" json:"comment_count"`
	Views        int64          `gorm:"not null;default:0" json:"views"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
