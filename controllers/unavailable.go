package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lncalendar/lncalendar/db"
	"github.com/lncalendar/lncalendar/models"
	"github.com/lncalendar/lncalendar/utils"
)

// CreateUnavailableTime declares a blackout interval on a schedule.
func CreateUnavailableTime(c *fiber.Ctx) error {
	var data models.CreateUnavailableTime
	if err := c.BodyParser(&data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	if err := validate.Struct(&data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid unavailable time",
			Error:   err.Error(),
		})
	}

	var schedule models.Schedule
	if err := db.DB.First(&schedule, "id = ?", data.Schedule).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Schedule does not exist.",
		})
	}

	owns, err := walletOwns(c, schedule.Wallet)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to resolve wallets",
			Error:   err.Error(),
		})
	}
	if !owns {
		return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{
			Message: "Not your schedule.",
		})
	}

	endTime := data.EndTime
	if endTime == "" {
		endTime = data.StartTime
	}
	unavailable := models.UnavailableTime{
		ID:        utils.ShortID(),
		Name:      data.Name,
		StartTime: data.StartTime,
		EndTime:   endTime,
		Schedule:  data.Schedule,
	}
	if err := db.DB.Create(&unavailable).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to create unavailable time",
			Error:   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(unavailable)
}

// GetUnavailableTimes lists the blackout intervals of a schedule. Public, the
// booking page uses it to hide blocked slots.
func GetUnavailableTimes(c *fiber.Ctx) error {
	scheduleID := c.Params("schedule_id")
	var schedule models.Schedule
	if err := db.DB.First(&schedule, "id = ?", scheduleID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Schedule does not exist.",
		})
	}

	var unavailable []models.UnavailableTime
	if err := db.DB.Where("schedule = ?", scheduleID).Find(&unavailable).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch unavailable times",
			Error:   err.Error(),
		})
	}
	return c.JSON(unavailable)
}

// DeleteUnavailableTime removes a blackout interval.
func DeleteUnavailableTime(c *fiber.Ctx) error {
	var schedule models.Schedule
	if err := db.DB.First(&schedule, "id = ?", c.Params("schedule_id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Schedule does not exist.",
		})
	}

	owns, err := walletOwns(c, schedule.Wallet)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to resolve wallets",
			Error:   err.Error(),
		})
	}
	if !owns {
		return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{
			Message: "Not your schedule.",
		})
	}

	if err := db.DB.Where("id = ? AND schedule = ?", c.Params("unavailable_id"), schedule.ID).
		Delete(&models.UnavailableTime{}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to delete unavailable time",
			Error:   err.Error(),
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
