package domain

import (
	"time"

	"github.com/google/uuid"
)

// EnrollmentStatus represents the payment state of a course enrollment.
type EnrollmentStatus string

const (
	EnrollmentPending EnrollmentStatus = "pending"
	EnrollmentPaid    EnrollmentStatus = "paid"
)

// Enrollment is a student's course enrollment awaiting payment. It is
// the second payment subject next to subscriptions.
type Enrollment struct {
	ID         uuid.UUID
	StudentID  uuid.UUID
	CourseName string
	SchoolName string
	PriceCents int64
	Status     EnrollmentStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewEnrollment creates a pending enrollment.
func NewEnrollment(studentID uuid.UUID, courseName, schoolName string, priceCents int64, now time.Time) *Enrollment {
	return &Enrollment{
		ID:         uuid.New(),
		StudentID:  studentID,
		CourseName: courseName,
		SchoolName: schoolName,
		PriceCents: priceCents,
		Status:     EnrollmentPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// MarkPaid transitions the enrollment to paid. Idempotent.
func (e *Enrollment) MarkPaid(now time.Time) {
	if e.Status == EnrollmentPaid {
		return
	}
	e.Status = EnrollmentPaid
	e.UpdatedAt = now
}
