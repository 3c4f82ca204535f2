package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/lncalendar/lncalendar/db"
	"github.com/lncalendar/lncalendar/middleware"
	"github.com/lncalendar/lncalendar/models"
	"github.com/lncalendar/lncalendar/rates"
	"github.com/lncalendar/lncalendar/utils"
)

type scheduleResponse struct {
	models.Schedule
	AvailableDays []int `json:"available_days"`
}

func toScheduleResponse(s models.Schedule) scheduleResponse {
	return scheduleResponse{Schedule: s, AvailableDays: s.AvailableDays()}
}

// GetSchedules godoc
// @Summary List schedules for the caller's wallets
// @Tags schedules
// @Produce json
// @Success 200 {array} scheduleResponse
// @Router /api/v1/schedule [get]
func GetSchedules(c *fiber.Ctx) error {
	walletIDs, err := middleware.UserWalletIDs(c)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to resolve wallets",
			Error:   err.Error(),
		})
	}

	var schedules []models.Schedule
	if err := db.DB.Where("wallet IN ?", walletIDs).Find(&schedules).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch schedules",
			Error:   err.Error(),
		})
	}

	resp := make([]scheduleResponse, 0, len(schedules))
	for _, s := range schedules {
		resp = append(resp, toScheduleResponse(s))
	}
	return c.JSON(resp)
}

// GetSchedule godoc
// @Summary Get a schedule by ID (public, used by the booking page)
// @Tags schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} scheduleResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/schedule/{id} [get]
func GetSchedule(c *fiber.Ctx) error {
	var schedule models.Schedule
	if err := db.DB.First(&schedule, "id = ?", c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Schedule does not exist.",
		})
	}
	return c.JSON(toScheduleResponse(schedule))
}

// CreateSchedule godoc
// @Summary Create a schedule
// @Tags schedules
// @Accept json
// @Produce json
// @Param schedule body models.CreateSchedule true "Schedule"
// @Success 201 {object} scheduleResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Router /api/v1/schedule [post]
func CreateSchedule(c *fiber.Ctx) error {
	var data models.CreateSchedule
	if err := c.BodyParser(&data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	if err := validateSchedule(&data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid schedule",
			Error:   err.Error(),
		})
	}

	owns, err := walletOwns(c, data.Wallet)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to resolve wallets",
			Error:   err.Error(),
		})
	}
	if !owns {
		return c.Status(fiber.StatusForbidden).JSON(utils.ErrorResponse{
			Message: "Not your wallet.",
		})
	}

	schedule := models.Schedule{
		ID:        utils.ShortID(),
		Wallet:    data.Wallet,
		Name:      data.Name,
		StartDay:  data.StartDay,
		EndDay:    data.EndDay,
		StartTime: data.StartTime,
		EndTime:   data.EndTime,
		Amount:    data.Amount,
		Currency:  defaultCurrency(data.Currency),
		Timeslot:  defaultTimeslot(data.Timeslot),
		PublicKey: data.PublicKey,
		Extra:     models.ScheduleExtra{Timezone: data.Timezone},
	}
	if err := db.DB.Create(&schedule).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to create schedule",
			Error:   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(toScheduleResponse(schedule))
}

// UpdateSchedule godoc
// @Summary Update a schedule
// @Tags schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param schedule body models.CreateSchedule true "Schedule"
// @Success 200 {object} scheduleResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/schedule/{id} [put]
func UpdateSchedule(c *fiber.Ctx) error {
	var schedule models.Schedule
	if err := db.DB.First(&schedule, "id = ?", c.Params("id")).Error; err != nil {
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

	var data models.CreateSchedule
	if err := c.BodyParser(&data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	if err := validateSchedule(&data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid schedule",
			Error:   err.Error(),
		})
	}

	schedule.Name = data.Name
	schedule.StartDay = data.StartDay
	schedule.EndDay = data.EndDay
	schedule.StartTime = data.StartTime
	schedule.EndTime = data.EndTime
	schedule.Amount = data.Amount
	schedule.Currency = defaultCurrency(data.Currency)
	schedule.Timeslot = defaultTimeslot(data.Timeslot)
	schedule.PublicKey = data.PublicKey
	if data.Timezone != "" {
		schedule.Extra.Timezone = data.Timezone
	}

	if err := db.DB.Save(&schedule).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to update schedule",
			Error:   err.Error(),
		})
	}
	return c.JSON(toScheduleResponse(schedule))
}

// DeleteSchedule godoc
// @Summary Delete a schedule and everything attached to it
// @Tags schedules
// @Param id path string true "Schedule ID"
// @Success 204
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/schedule/{id} [delete]
func DeleteSchedule(c *fiber.Ctx) error {
	var schedule models.Schedule
	if err := db.DB.First(&schedule, "id = ?", c.Params("id")).Error; err != nil {
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

	// Cascade: appointments and unavailable blocks die with their schedule.
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("schedule = ?", schedule.ID).Delete(&models.Appointment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("schedule = ?", schedule.ID).Delete(&models.UnavailableTime{}).Error; err != nil {
			return err
		}
		return tx.Delete(&schedule).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to delete schedule",
			Error:   err.Error(),
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetCurrencies returns the fiat currencies a schedule may be priced in.
func GetCurrencies(c *fiber.Ctx) error {
	return c.JSON(rates.AllowedCurrencies)
}

func validateSchedule(data *models.CreateSchedule) error {
	if err := validate.Struct(data); err != nil {
		return err
	}
	if err := data.Validate(); err != nil {
		return err
	}
	if data.Currency != "" && !rates.IsAllowedCurrency(data.Currency) {
		return fiber.NewError(fiber.StatusBadRequest, "unsupported currency: "+data.Currency)
	}
	return nil
}

func defaultCurrency(currency string) string {
	if currency == "" {
		return "sat"
	}
	return currency
}

func defaultTimeslot(timeslot int) int {
	if timeslot == 0 {
		return 30
	}
	return timeslot
}
