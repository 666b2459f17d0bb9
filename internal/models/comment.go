package models

import (
	"time"

	"gorm.io/gorm"
)

// CommentStatus is the moderation state of a comment.
type CommentStatus string

const (
	CommentStatusActive  CommentStatus = "active"
	CommentStatusHidden  CommentStatus = "hidden"
	CommentStatusDeleted CommentStatus = "deleted"
)

// Content length limits. Replies are capped tighter than top-level
// comments.
const (
	MaxCommentLen = 5000
	MaxReplyLen   = 100
)

// Comment is attached to a content item through a polymorphic
// (ContentType, ContentID) pair. A non-nil ParentID makes it a reply;
// nesting is one level deep.
type Comment struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	Content     string        `gorm:"type:text;not null" json:"content"`
	UserID      uint          `gorm:"not null;index" json:"user_id"`
	User        User          `gorm:"foreignKey:UserID" json:"-"`
	Author      PublicUser    `gorm:"-" json:"author"`
	ContentType ContentType   `gorm:"size:16;not null;index:idx_comment_target" json:"content_type"`
	ContentID   uint          `gorm:"not null;index:idx_comment_target" json:"content_id"`
	ParentID    *uint         `gorm:"index" json:"parent_id,omitempty"`
	Status      CommentStatus `gorm:"size:16;not null;default:active" json:"status"`
	ReplyCount  int           `gorm:"not null;default:0" json:"reply_count"`
	Flags       []CommentFlag `gorm:"foreignKey:CommentID" json:"flags,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// ResolveAuthor copies the preloaded User into the exported Author field.
func (c *Comment) ResolveAuthor() {
	c.Author = c.User.Public()
}

// CommentFlag is a moderation flag raised by a user. One flag per user
// per comment, enforced by the unique index.
type CommentFlag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_flag_once" json:"comment_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_flag_once" json:"user_id"`
	Reason    string    `gorm:"size:500" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentPage is a paginated listing of top-level comments.
type CommentPage struct {
	Comments  []*Comment `json:"comments"`
	Total     int64      `json:"total"`
	Page      int        `json:"page"`
	PageCount int        `json:"page_count"`
}
