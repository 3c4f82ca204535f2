package payments

import "errors"

var (
	// ErrScheduleNotFound is returned when the referenced schedule does not exist.
	ErrScheduleNotFound = errors.New("schedule does not exist")
	// ErrAppointmentNotFound is returned when the referenced appointment does not exist.
	ErrAppointmentNotFound = errors.New("appointment does not exist")
	// ErrPaymentNotFound is returned when the host has no record of the payment.
	ErrPaymentNotFound = errors.New("payment does not exist")
	// ErrSlotTaken is returned when a paid appointment already occupies the slot.
	ErrSlotTaken = errors.New("time slot is already booked")
	// ErrSlotUnavailable is returned when the slot overlaps an unavailable block.
	ErrSlotUnavailable = errors.New("time slot is marked unavailable")
	// ErrOutsideSchedule is returned when the slot falls outside the schedule window.
	ErrOutsideSchedule = errors.New("time slot is outside the schedule")
	// ErrInvalidTime is returned when a booking time does not parse.
	ErrInvalidTime = errors.New("invalid time format, expected YYYY/MM/DD HH:MM")
)
