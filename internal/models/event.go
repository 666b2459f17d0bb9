package models

import (
	"time"

	"gorm.io/gorm"
)

// RSVPStatus is an attendee's reply to an event.
type RSVPStatus string

const (
	RSVPGoing    RSVPStatus = "going"
	RSVPMaybe    RSVPStatus = "maybe"
	RSVPNotGoing RSVPStatus = "not_going"
)

// Valid reports whether s is a known RSVP status.
func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPGoing, RSVPMaybe, RSVPNotGoing:
		return true
	}
	return false
}

// PaymentStatus tracks ticket payment for an attendee record.
type PaymentStatus string

const (
	PaymentFree    PaymentStatus = "free"
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
	PaymentFailed  PaymentStatus = "failed"
)

// Event is a community event with RSVP and optional ticketing.
// IsActive is derived from Date (end of the event's calendar day vs now)
// on create and whenever Date changes; a batch sweep reconciles it for
// all rows.
type Event struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	Title            string          `gorm:"not null" json:"title"`
	Description      string          `gorm:"type:text" json:"description"`
	DescriptionHTML  string          `gorm:"type:text" json:"description_html"`
	Date             time.Time       `gorm:"not null;index" json:"date"`
	Location         string          `json:"location"`
	ImageHash        string          `gorm:"size:64" json:"image_hash,omitempty"`
	UserID           uint            `gorm:"not null;index" json:"user_id"`
	User             User            `gorm:"foreignKey:UserID" json:"-"`
	IsActive         bool            `gorm:"not null;default:true;index" json:"is_active"`
	TicketPriceCents int64           `gorm:"not null;default:0" json:"ticket_price_cents"`
	CommentCount     int             `gorm:"not null;default:0" json:"comment_count"`
	Views            int64           `gorm:"not null;default:0" json:"views"`
	Attendees        []EventAttendee `gorm:"foreignKey:EventID" json:"attendees,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`
}

// EndOfDay returns 23:59:59.999 on the event's calendar date.
func (e *Event) EndOfDay() time.Time {
	y, m, d := e.Date.Date()
	return time.Date(y, m, d, 23, 59, 59, 999_000_000, e.Date.Location())
}

// RSVPOpen reports whether the event still accepts RSVPs at time now.
func (e *Event) RSVPOpen(now time.Time) bool {
	return e.IsActive && !e.EndOfDay().Before(now)
}

// EventAttendee is one user's RSVP on an event. A user has at most one
// record per event; re-RSVP replaces the prior one.
type EventAttendee struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	EventID       uint          `gorm:"not null;uniqueIndex:idx_event_user" json:"event_id"`
	UserID        uint          `gorm:"not null;uniqueIndex:idx_event_user" json:"user_id"`
	User          User          `gorm:"foreignKey:UserID" json:"-"`
	Status        RSVPStatus    `gorm:"size:16;not null" json:"status"`
	PaymentStatus PaymentStatus `gorm:"size:16;not null;default:free" json:"payment_status"`
	PaymentRef    string        `gorm:"size:128" json:"payment_ref,omitempty"`
	TicketType    string        `gorm:"size:64" json:"ticket_type,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
