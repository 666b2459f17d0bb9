package models

import "time"

// ContentType tags the polymorphic target of a reaction or comment.
type ContentType string

const (
	ContentTypeEvent     ContentType = "event"
	ContentTypeNews      ContentType = "news"
	ContentTypeDirectory ContentType = "directory"
	ContentTypeComment   ContentType = "comment"
)

// Valid reports whether t is a known reaction target.
func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeEvent, ContentTypeNews, ContentTypeDirectory, ContentTypeComment:
		return true
	}
	return false
}

// Commentable reports whether t can carry comments. Comments themselves
// are reaction targets but not comment targets (replies use ParentID).
func (t ContentType) Commentable() bool {
	switch t {
	case ContentTypeEvent, ContentTypeNews, ContentTypeDirectory:
		return true
	}
	return false
}

// ReactionKind is the mark a user puts on a content item.
type ReactionKind string

const (
	ReactionLike    ReactionKind = "like"
	ReactionDislike ReactionKind = "dislike"
)

// Valid reports whether k is a supported reaction kind.
func (k ReactionKind) Valid() bool {
	return k == ReactionLike || k == ReactionDislike
}

// Reaction is one user's mark on one content item. The unique index over
// (user_id, content_type, content_id) enforces the invariant that a user
// holds at most one of like/dislike on a target at any time.
type Reaction struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	UserID      uint         `gorm:"not null;uniqueIndex:idx_reaction_target" json:"user_id"`
	ContentType ContentType  `gorm:"size:16;not null;uniqueIndex:idx_reaction_target" json:"content_type"`
	ContentID   uint         `gorm:"not null;uniqueIndex:idx_reaction_target" json:"content_id"`
	Kind        ReactionKind `gorm:"size:8;not null" json:"kind"`
	CreatedAt   time.Time    `json:"created_at"`
}

// ReactionSummary is the response of a toggle or counts query.
type ReactionSummary struct {
	Likes        int64  `json:"likes"`
	Dislikes     int64  `json:"dislikes"`
	UserReaction string `json:"user_reaction"` // "like", "dislike" or ""
}
