package models

import (
	"time"

	"gorm.io/gorm"
)

// EnrollmentStatus is the state of a course enrollment request.
type EnrollmentStatus string

const (
	EnrollmentPending   EnrollmentStatus = "pending"
	EnrollmentConfirmed EnrollmentStatus = "confirmed"
	EnrollmentCancelled EnrollmentStatus = "cancelled"
)

// Valid reports whether s is a known enrollment status.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentPending, EnrollmentConfirmed, EnrollmentCancelled:
		return true
	}
	return false
}

// CourseEnrollment is a signup form submission for a course.
type CourseEnrollment struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	Course     string           `gorm:"not null" json:"course"`
	UserID     uint             `gorm:"not null;index" json:"user_id"`
	User       User             `gorm:"foreignKey:UserID" json:"-"`
	Email      string           `gorm:"not null" json:"email"`
	Message    string           `gorm:"type:text" json:"message,omitempty"`
	Status     EnrollmentStatus `gorm:"size:16;not null;default:pending" json:"status"`
	PaymentRef string           `gorm:"size:128" json:"payment_ref,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	DeletedAt  gorm.DeletedAt   `gorm:"index" json:"-"`
}
