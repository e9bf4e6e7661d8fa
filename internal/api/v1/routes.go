package v1

import (
	"connecthub/internal/api/v1/handlers"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App, h *handlers.Handler) {
	// Health check
	app.Get("/hello", h.Hello)

	// Users
	app.Post("/users", h.CreateUser)
	app.Get("/users", h.GetAllUsers)

	// Jobs, static segments before the parameterized filters
	app.Post("/jobs", h.CreateJob)
	app.Get("/jobs", h.GetAllJobs)
	app.Get("/jobs/by-dates", h.GetJobsByDates)
	app.Get("/jobs/by-user/:user_id", h.GetJobsByUser)
	app.Get("/jobs/by-category/:category", h.GetJobsByCategory)

	// Analytics
	analytics := app.Group("/analytics")
	analytics.Get("/jobs-per-category", h.JobsPerCategory)
	analytics.Get("/jobs-by-user", h.JobsByUser)
	analytics.Get("/jobs-by-day", h.JobsByDay)
	analytics.Get("/jobs-per-day", h.JobsPerDay)
	analytics.Get("/jobs-percentage-by-category", h.JobsPercentageByCategory)
	analytics.Get("/jobs-per-user", h.JobsPerUser)
	analytics.Get("/overview", h.Overview)
	analytics.Get("/jobs/by_category", h.JobsByCategoryCounts)
	analytics.Get("/jobs/by_employer", h.JobsByEmployer)
	analytics.Get("/users/registrations", h.UserRegistrations)
	analytics.Get("/jobs/by_date", h.JobsByDateRange)
	analytics.Get("/active-users", h.ActiveUsers)
}
