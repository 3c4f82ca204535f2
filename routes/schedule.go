package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lncalendar/lncalendar/controllers"
	"github.com/lncalendar/lncalendar/middleware"
)

// SetupScheduleRoutes configures all schedule related routes
func SetupScheduleRoutes(app *fiber.App) {
	schedule := app.Group("/api/v1/schedule")
	schedule.Get("/", middleware.RequireInvoiceKey(), controllers.GetSchedules)
	schedule.Post("/", middleware.RequireAdminKey(), controllers.CreateSchedule)
	schedule.Get("/:id", controllers.GetSchedule)
	schedule.Put("/:id", middleware.RequireAdminKey(), controllers.UpdateSchedule)
	schedule.Delete("/:id", middleware.RequireAdminKey(), controllers.DeleteSchedule)

	app.Get("/api/v1/currencies", controllers.GetCurrencies)
}
