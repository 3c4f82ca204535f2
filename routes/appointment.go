package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/lncalendar/lncalendar/controllers"
	"github.com/lncalendar/lncalendar/middleware"
)

// SetupAppointmentRoutes configures all appointment related routes.
// The purge route is registered before the parameterized ones so
// "purge" is never read as a schedule id.
func SetupAppointmentRoutes(app *fiber.App) {
	appointment := app.Group("/api/v1/appointment")
	appointment.Get("/purge/:schedule_id", controllers.PurgeAppointments)
	appointment.Get("/", middleware.RequireInvoiceKey(), controllers.GetAllAppointments)
	appointment.Post("/", controllers.CreateAppointment)
	appointment.Put("/:id", middleware.RequireAdminKey(), controllers.UpdateAppointment)
	appointment.Delete("/:id", middleware.RequireAdminKey(), controllers.DeleteAppointment)
	appointment.Get("/:schedule_id", controllers.GetScheduleAppointments)
	appointment.Get("/:schedule_id/:payment_hash", controllers.CheckInvoice)
}
