package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/lncalendar/lncalendar/db"
	"github.com/lncalendar/lncalendar/models"
	"github.com/lncalendar/lncalendar/nostr"
	"github.com/lncalendar/lncalendar/utils"
)

// GetSettings returns the calendar's nostr settings, creating the empty
// singleton row on first access.
func GetSettings(c *fiber.Ctx) error {
	var settings models.CalendarSettings
	err := db.DB.FirstOrCreate(&settings, models.CalendarSettings{ID: 1}).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to load settings",
			Error:   err.Error(),
		})
	}
	return c.JSON(settings)
}

// UpdateSettings replaces the calendar's nostr identity and relay list.
func UpdateSettings(c *fiber.Ctx) error {
	var data models.CalendarSettings
	if err := c.BodyParser(&data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	if data.NostrPrivateKey != "" {
		if _, err := nostr.ParsePrivateKey(data.NostrPrivateKey); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
				Message: "Invalid Nostr private key.",
			})
		}
	}

	data.ID = 1
	if err := db.DB.Save(&data).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to update settings",
			Error:   err.Error(),
		})
	}
	return c.JSON(data)
}

// DeleteSettings wipes the nostr identity, disabling DM notifications.
func DeleteSettings(c *fiber.Ctx) error {
	err := db.DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.CalendarSettings{}).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to delete settings",
			Error:   err.Error(),
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
