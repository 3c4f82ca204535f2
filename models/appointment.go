package models

import (
	"time"
)

// TimeLayout is the wire format for appointment start/end times.
const TimeLayout = "2006/01/02 15:04"

// AppointmentExtra is persisted as JSON alongside the appointment row.
type AppointmentExtra struct {
	// MustRefund is set when a settlement arrives for an appointment
	// that is already paid, so the owner can refund the second payment.
	MustRefund bool `json:"must_refund,omitempty"`
}

// Appointment is a client booking against a schedule. Its primary key is the
// payment hash of the invoice that pays for it, so there can never be more
// than one appointment per invoice.
type Appointment struct {
	ID          string           `json:"id" gorm:"primaryKey"`
	Name        string           `json:"name" gorm:"not null"`
	Email       string           `json:"email"`
	NostrPubkey string           `json:"nostr_pubkey"`
	Info        string           `json:"info"`
	StartTime   string           `json:"start_time" gorm:"index:idx_appointments_slot,priority:2"`
	EndTime     string           `json:"end_time"`
	Schedule    string           `json:"schedule" gorm:"not null;index:idx_appointments_purge,priority:1;index:idx_appointments_slot,priority:1"`
	Paid        bool             `json:"paid" gorm:"default:false;index:idx_appointments_purge,priority:2;index:idx_appointments_slot,priority:3"`
	Extra       AppointmentExtra `json:"extra" gorm:"serializer:json"`
	CreatedAt   time.Time        `json:"created_at" gorm:"index:idx_appointments_purge,priority:3"`
}

// StartsAt parses the appointment start time.
func (a *Appointment) StartsAt() (time.Time, error) {
	return time.Parse(TimeLayout, a.StartTime)
}

// CreateAppointment is the public booking payload.
type CreateAppointment struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"omitempty,email"`
	NostrPubkey string `json:"nostr_pubkey"`
	Info        string `json:"info"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
	Schedule    string `json:"schedule" validate:"required"`
}

// UpdateAppointment carries owner edits; nil fields are left untouched.
type UpdateAppointment struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	NostrPubkey *string `json:"nostr_pubkey"`
	Info        *string `json:"info"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
}
