package models

import (
	"fmt"
	"time"
)

// ScheduleExtra is a structured, extensible metadata blob persisted as JSON
// so fields can be added without a schema migration.
type ScheduleExtra struct {
	Timezone string `json:"timezone,omitempty"`
}

// Schedule is an owner-defined bookable recurring window with a price.
// Amount is stored in the smallest unit of Currency (sats, or cents for fiat).
type Schedule struct {
	ID        string        `json:"id" gorm:"primaryKey"`
	Wallet    string        `json:"wallet" gorm:"index;not null"`
	Name      string        `json:"name" gorm:"not null"`
	StartDay  int           `json:"start_day"` // 0 = Sunday .. 6 = Saturday
	EndDay    int           `json:"end_day"`
	StartTime string        `json:"start_time"` // "HH:MM" in 24h
	EndTime   string        `json:"end_time"`
	Amount    int64         `json:"amount"`
	Currency  string        `json:"currency" gorm:"default:sat"`
	Timeslot  int           `json:"timeslot" gorm:"default:30"` // minutes
	PublicKey string        `json:"public_key"`                 // owner nostr pubkey, optional
	Extra     ScheduleExtra `json:"extra" gorm:"serializer:json"`
	CreatedAt time.Time     `json:"created_at"`
}

// AvailableDays lists the weekdays covered by [StartDay, EndDay].
func (s *Schedule) AvailableDays() []int {
	days := []int{}
	for d := s.StartDay; d <= s.EndDay; d++ {
		days = append(days, d)
	}
	return days
}

// SlotDuration returns the timeslot as a duration.
func (s *Schedule) SlotDuration() time.Duration {
	return time.Duration(s.Timeslot) * time.Minute
}

// CoversSlot reports whether a booking start falls on one of the schedule's
// weekdays and inside its [StartTime, EndTime) window.
func (s *Schedule) CoversSlot(start time.Time) bool {
	day := int(start.Weekday())
	if day < s.StartDay || day > s.EndDay {
		return false
	}
	hm := start.Format("15:04")
	return hm >= s.StartTime && hm < s.EndTime
}

// CreateSchedule is the payload for creating or updating a schedule.
type CreateSchedule struct {
	Wallet    string `json:"wallet" validate:"required"`
	Name      string `json:"name" validate:"required"`
	StartDay  int    `json:"start_day" validate:"min=0,max=6"`
	EndDay    int    `json:"end_day" validate:"min=0,max=6"`
	StartTime string `json:"start_time" validate:"required,len=5"`
	EndTime   string `json:"end_time" validate:"required,len=5"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
	Timeslot  int    `json:"timeslot" validate:"omitempty,gte=5"`
	Currency  string `json:"currency"`
	PublicKey string `json:"public_key"`
	Timezone  string `json:"timezone"`
}

// Validate checks the cross-field invariants the validator tags can't express.
func (c *CreateSchedule) Validate() error {
	if c.StartDay > c.EndDay {
		return fmt.Errorf("start_day must not be after end_day")
	}
	if _, err := time.Parse("15:04", c.StartTime); err != nil {
		return fmt.Errorf("invalid start_time: %s", c.StartTime)
	}
	if _, err := time.Parse("15:04", c.EndTime); err != nil {
		return fmt.Errorf("invalid end_time: %s", c.EndTime)
	}
	if c.StartTime >= c.EndTime {
		return fmt.Errorf("start_time must be before end_time")
	}
	return nil
}
