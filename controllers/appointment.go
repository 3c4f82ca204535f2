package controllers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/lncalendar/lncalendar/db"
	"github.com/lncalendar/lncalendar/middleware"
	"github.com/lncalendar/lncalendar/models"
	"github.com/lncalendar/lncalendar/payments"
	"github.com/lncalendar/lncalendar/utils"
)

// CreateAppointment books a slot: it creates the invoice on the host and the
// unpaid appointment row keyed by the payment hash. Public endpoint.
func CreateAppointment(c *fiber.Ctx) error {
	var data models.CreateAppointment
	if err := c.BodyParser(&data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	if err := validate.Struct(&data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid appointment",
			Error:   err.Error(),
		})
	}

	invoice, err := Payments.CreateAppointment(c.Context(), data)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrScheduleNotFound):
			return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
				Message: "Schedule does not exist.",
			})
		case errors.Is(err, payments.ErrSlotTaken), errors.Is(err, payments.ErrSlotUnavailable):
			return c.Status(fiber.StatusConflict).JSON(utils.ErrorResponse{
				Message: err.Error(),
			})
		case errors.Is(err, payments.ErrOutsideSchedule), errors.Is(err, payments.ErrInvalidTime):
			return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
				Message: err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
				Message: "Failed to create appointment",
				Error:   err.Error(),
			})
		}
	}
	return c.JSON(invoice)
}

// CheckInvoice is the poll fallback: it asks the host for the payment status
// and applies the paid transition when settled. Public endpoint.
func CheckInvoice(c *fiber.Ctx) error {
	paid, err := Payments.CheckInvoice(c.Context(), c.Params("schedule_id"), c.Params("payment_hash"))
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrScheduleNotFound),
			errors.Is(err, payments.ErrAppointmentNotFound),
			errors.Is(err, payments.ErrPaymentNotFound):
			return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
				Message: err.Error(),
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
				Message: "Failed to check payment",
				Error:   err.Error(),
			})
		}
	}
	return c.JSON(fiber.Map{"paid": paid})
}

// GetScheduleAppointments lists the appointments of one schedule. Public, the
// booking page needs it to grey out taken slots.
func GetScheduleAppointments(c *fiber.Ctx) error {
	var appointments []models.Appointment
	if err := db.DB.Where("schedule = ?", c.Params("schedule_id")).Find(&appointments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch appointments",
			Error:   err.Error(),
		})
	}
	return c.JSON(appointments)
}

// GetAllAppointments lists appointments across all of the caller's wallets.
func GetAllAppointments(c *fiber.Ctx) error {
	walletIDs, err := middleware.UserWalletIDs(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to resolve wallets",
			Error:   err.Error(),
		})
	}

	var scheduleIDs []string
	if err := db.DB.Model(&models.Schedule{}).Where("wallet IN ?", walletIDs).Pluck("id", &scheduleIDs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch schedules",
			Error:   err.Error(),
		})
	}
	if len(scheduleIDs) == 0 {
		return c.JSON([]models.Appointment{})
	}

	var appointments []models.Appointment
	if err := db.DB.Where("schedule IN ?", scheduleIDs).Find(&appointments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch appointments",
			Error:   err.Error(),
		})
	}
	return c.JSON(appointments)
}

// UpdateAppointment lets the owner edit a booking; the client is told over
// nostr when they left a pubkey.
func UpdateAppointment(c *fiber.Ctx) error {
	appointment, schedule, errResp := ownedAppointment(c)
	if errResp != nil {
		return errResp(c)
	}

	var data models.UpdateAppointment
	if err := c.BodyParser(&data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	applyIfSet(&appointment.Name, data.Name)
	applyIfSet(&appointment.Email, data.Email)
	applyIfSet(&appointment.NostrPubkey, data.NostrPubkey)
	applyIfSet(&appointment.Info, data.Info)
	applyIfSet(&appointment.StartTime, data.StartTime)
	applyIfSet(&appointment.EndTime, data.EndTime)

	if err := db.DB.Save(appointment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to update appointment",
			Error:   err.Error(),
		})
	}

	if Notifier != nil && appointment.NostrPubkey != "" {
		Notifier.Notify(appointment.NostrPubkey, fmt.Sprintf(
			"[DO NOT REPLY TO THIS MESSAGE]\n\nThe appointment for %s has been updated.\nNew date: %s",
			schedule.Name, appointment.StartTime,
		))
	}
	return c.JSON(appointment)
}

// DeleteAppointment removes a booking; the client is told over nostr when
// they left a pubkey.
func DeleteAppointment(c *fiber.Ctx) error {
	appointment, schedule, errResp := ownedAppointment(c)
	if errResp != nil {
		return errResp(c)
	}

	if err := db.DB.Delete(appointment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to delete appointment",
			Error:   err.Error(),
		})
	}

	if Notifier != nil && appointment.NostrPubkey != "" {
		Notifier.Notify(appointment.NostrPubkey, fmt.Sprintf(
			"[DO NOT REPLY TO THIS MESSAGE]\n\nThe appointment for %s has been deleted.",
			schedule.Name,
		))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PurgeAppointments triggers the stale-appointment sweep for one schedule.
func PurgeAppointments(c *fiber.Ctx) error {
	scheduleID := c.Params("schedule_id")
	var schedule models.Schedule
	if err := db.DB.First(&schedule, "id = ?", scheduleID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Schedule does not exist.",
		})
	}

	if err := Payments.Purge(c.Context(), scheduleID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to purge appointments",
			Error:   err.Error(),
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func ownedAppointment(c *fiber.Ctx) (*models.Appointment, *models.Schedule, func(*fiber.Ctx) error) {
	var appointment models.Appointment
	if err := db.DB.First(&appointment, "id = ?", c.Params("id")).Error; err != nil {
		return nil, nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
				Message: "Appointment does not exist.",
			})
		}
	}

	var schedule models.Schedule
	if err := db.DB.First(&schedule, "id = ?", appointment.Schedule).Error; err != nil {
		return nil, nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
				Message: "Schedule does not exist.",
			})
		}
	}

	owns, err := walletOwns(c, schedule.Wallet)
	if err != nil {
		return nil, nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
				Message: "Failed to resolve wallets",
				Error:   err.Error(),
			})
		}
	}
	if !owns {
		return nil, nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{
				Message: "Not your schedule.",
			})
		}
	}
	return &appointment, &schedule, nil
}

func applyIfSet(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
