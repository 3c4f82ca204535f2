package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lncalendar/lncalendar/controllers"
	"github.com/lncalendar/lncalendar/middleware"
)

// SetupUnavailableRoutes configures the blackout interval routes
func SetupUnavailableRoutes(app *fiber.App) {
	unavailable := app.Group("/api/v1/unavailable")
	unavailable.Post("/", middleware.RequireAdminKey(), controllers.CreateUnavailableTime)
	unavailable.Get("/:schedule_id", controllers.GetUnavailableTimes)
	unavailable.Delete("/:schedule_id/:unavailable_id", middleware.RequireAdminKey(), controllers.DeleteUnavailableTime)
}
