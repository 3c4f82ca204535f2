package models

import "time"

// UnavailableTime is an owner-declared blackout interval tied to a schedule.
// It is advisory for display and, when strict slot checking is enabled,
// enforced at booking time.
type UnavailableTime struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Schedule  string    `json:"schedule" gorm:"index;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUnavailableTime is the payload for declaring a blackout interval.
// EndTime defaults to StartTime, matching a single blocked slot.
type CreateUnavailableTime struct {
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time"`
	Schedule  string `json:"schedule" validate:"required"`
	Name      string `json:"name"`
}

// Blocks reports whether the given slot start falls inside the interval.
func (u *UnavailableTime) Blocks(start string) bool {
	return start >= u.StartTime && start <= u.EndTime
}
