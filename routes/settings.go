package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lncalendar/lncalendar/controllers"
	"github.com/lncalendar/lncalendar/middleware"
)

// SetupSettingsRoutes configures the admin-only nostr settings routes
func SetupSettingsRoutes(app *fiber.App, adminKey string) {
	settings := app.Group("/api/v1/settings", middleware.RequireMasterKey(adminKey))
	settings.Get("/", controllers.GetSettings)
	settings.Put("/", controllers.UpdateSettings)
	settings.Delete("/", controllers.DeleteSettings)
}
